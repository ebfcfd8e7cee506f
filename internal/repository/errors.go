package repository

import "errors"

var (
	// ErrBlobStorageDisabled is returned for blob URLs when no storage account is configured
	ErrBlobStorageDisabled = errors.New("blob storage not configured")

	// ErrArchiveDisabled is returned by the no-op archive
	ErrArchiveDisabled = errors.New("image archive disabled")
)
