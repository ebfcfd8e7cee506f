package repository

import (
	"context"

	"github.com/anime-shed/text-converter-go/internal/codec"
	"github.com/anime-shed/text-converter-go/internal/storage"
)

// BlobArchive keeps generated images in blob storage.
type BlobArchive struct {
	blobs storage.BlobStorage
}

func NewBlobArchive(blobs storage.BlobStorage) *BlobArchive {
	return &BlobArchive{blobs: blobs}
}

func (a *BlobArchive) Save(ctx context.Context, name string, png []byte) (string, error) {
	return a.blobs.UploadImage(ctx, name, codec.MIMEPNG, png)
}

func (a *BlobArchive) Enabled() bool {
	return true
}

// NoopArchive is used when no storage account is configured.
type NoopArchive struct{}

func (NoopArchive) Save(context.Context, string, []byte) (string, error) {
	return "", ErrArchiveDisabled
}

func (NoopArchive) Enabled() bool {
	return false
}
