package repository

import (
	"context"
	"image"

	"github.com/anime-shed/text-converter-go/internal/storage"
	"github.com/anime-shed/text-converter-go/pkg/validation"
)

// RemoteImageRepository fetches over HTTP, or from Azure Blob Storage for
// blob URLs when a storage account is configured.
type RemoteImageRepository struct {
	fetcher   storage.ImageFetcher
	blobs     storage.BlobStorage
	validator *validation.URLValidator
}

// NewRemoteImageRepository builds the repository. blobs may be nil.
func NewRemoteImageRepository(fetcher storage.ImageFetcher, blobs storage.BlobStorage, validator *validation.URLValidator) *RemoteImageRepository {
	return &RemoteImageRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validator,
	}
}

func (r *RemoteImageRepository) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	if validation.IsBlobURL(imageURL) && r.blobs != nil {
		return r.blobs.GetImage(ctx, imageURL)
	}
	return r.fetcher.FetchImage(ctx, imageURL)
}

func (r *RemoteImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
