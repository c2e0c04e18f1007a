// Package storage persists uploaded review photos. The local backend is
// the default; S3 can be selected with STORAGE_DRIVER=s3.
package storage

import (
	"fmt"
	"mime/multipart"

	"ratehousing_backend/pkg/config"
)

// Storage saves processed review photos and deletes them on review removal.
// Save returns the public URL recorded on the image row.
type Storage interface {
	Save(file *multipart.FileHeader) (string, error)
	Delete(url string) error
}

// New builds the backend selected by configuration.
func New(cfg config.UploadsConfig) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStorage(cfg.Dir)
	case "s3":
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
