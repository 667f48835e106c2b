package storage

import (
	"context"
	"fmt"
	"io"

	"member-directory-backend/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStorage stores photos in a MinIO (or any S3-compatible) bucket
type MinioStorage struct {
	client  minioAPI
	bucket  string
	baseURL string
}

// NewMinioStorage creates a MinIO client with static credentials
func NewMinioStorage(cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// Upload puts the object under key and returns its public URL
func (s *MinioStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*UploadResult, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}
	return &UploadResult{URL: joinURL(s.baseURL, key), ExternalID: key}, nil
}

// Delete removes the object; a missing object is not an error
func (s *MinioStorage) Delete(ctx context.Context, externalID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, externalID, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			log.Warn().Str("key", externalID).Msg("Photo object already absent")
			return nil
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
