package repository

import (
	"context"
	"image"
)

// ImageRepository resolves remote image sources
type ImageRepository interface {
	// FetchImage retrieves and decodes an image from a URL
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// ArchiveRepository stores generated handwriting images
type ArchiveRepository interface {
	// Save stores a PNG and returns where it can be retrieved
	Save(ctx context.Context, name string, png []byte) (string, error)

	// Enabled reports whether Save persists anything
	Enabled() bool
}
