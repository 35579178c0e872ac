package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// Storage uploads objects into a single bucket.
type Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewStorage makes sure the bucket exists. publicURL, when set, replaces the
// endpoint-derived URL returned for uploaded objects.
func NewStorage(ctx context.Context, client *minio.Client, bucket, publicURL string) (*Storage, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("minio: empty bucket name")
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio: create bucket %s: %w", bucket, err)
		}
	}
	return &Storage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(strings.TrimSpace(publicURL), "/"),
	}, nil
}

func (s *Storage) Upload(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio: put %s: %w", objectName, err)
	}
	return s.objectURL(objectName), nil
}

func (s *Storage) objectURL(objectName string) string {
	key := strings.TrimLeft(objectName, "/")
	if s.publicURL != "" {
		return s.publicURL + "/" + s.bucket + "/" + key
	}
	return s.client.EndpointURL().String() + "/" + s.bucket + "/" + key
}

var _ ports.ObjectStorage = (*Storage)(nil)
