package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"member-directory-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

type mockMinio struct {
	mock.Mock
}

func (m *mockMinio) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, objectSize, opts.ContentType)
	return minio.UploadInfo{}, args.Error(0)
}

func (m *mockMinio) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func TestS3Upload(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "photos" &&
			aws.ToString(in.Key) == "users/u1/p1.jpg" &&
			aws.ToString(in.ContentType) == "image/jpeg" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Return(&s3.PutObjectOutput{}, nil)

	store := &S3Storage{client: client, bucket: "photos", region: "eu-west-1"}
	res, err := store.Upload(context.Background(), "users/u1/p1.jpg", "image/jpeg", bytes.NewReader([]byte("abc")), 3)
	require.NoError(t, err)

	assert.Equal(t, "users/u1/p1.jpg", res.ExternalID)
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com/users/u1/p1.jpg", res.URL)
	client.AssertExpectations(t)
}

func TestS3UploadPublicBaseURL(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)

	store := &S3Storage{client: client, bucket: "photos", publicBaseURL: "https://cdn.example.com/"}
	res, err := store.Upload(context.Background(), "k.png", "image/png", bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/k.png", res.URL)
}

func TestS3DeleteMissingObjectSucceeds(t *testing.T) {
	client := new(mockS3)
	client.On("DeleteObject", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "gone"})

	store := &S3Storage{client: client, bucket: "photos"}
	assert.NoError(t, store.Delete(context.Background(), "users/u1/p1.jpg"))
}

func TestS3DeleteFailure(t *testing.T) {
	client := new(mockS3)
	client.On("DeleteObject", mock.Anything, mock.Anything).
		Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "no"})

	store := &S3Storage{client: client, bucket: "photos"}
	assert.Error(t, store.Delete(context.Background(), "users/u1/p1.jpg"))
}

func TestMinioUploadAndDelete(t *testing.T) {
	client := new(mockMinio)
	client.On("PutObject", mock.Anything, "photos", "users/u1/p1.jpg", int64(3), "image/jpeg").Return(nil)
	client.On("RemoveObject", mock.Anything, "photos", "users/u1/p1.jpg").Return(nil).Once()
	client.On("RemoveObject", mock.Anything, "photos", "missing").
		Return(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
	client.On("RemoveObject", mock.Anything, "photos", "broken").Return(errors.New("connection refused"))

	store := &MinioStorage{client: client, bucket: "photos", baseURL: "http://minio:9000/photos"}

	res, err := store.Upload(context.Background(), "users/u1/p1.jpg", "image/jpeg", bytes.NewReader([]byte("abc")), 3)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/photos/users/u1/p1.jpg", res.URL)

	assert.NoError(t, store.Delete(context.Background(), "users/u1/p1.jpg"))
	assert.NoError(t, store.Delete(context.Background(), "missing"))
	assert.Error(t, store.Delete(context.Background(), "broken"))
	client.AssertExpectations(t)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestNewMinioBaseURL(t *testing.T) {
	store, err := NewMinioStorage(config.StorageConfig{Endpoint: "minio:9000", Bucket: "photos", UseSSL: true})
	require.NoError(t, err)
	assert.Equal(t, "https://minio:9000/photos", store.baseURL)
}
