// Package storage uploads and removes photo binaries in external object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"member-directory-backend/internal/config"
)

// UploadResult locates an uploaded object
type UploadResult struct {
	URL        string
	ExternalID string
}

// PhotoStorage is the external store holding photo binaries. Delete of an
// object that no longer exists succeeds.
type PhotoStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*UploadResult, error)
	Delete(ctx context.Context, externalID string) error
}

// New creates the storage driver selected by the configuration
func New(ctx context.Context, cfg config.StorageConfig) (PhotoStorage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "minio":
		return NewMinioStorage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
