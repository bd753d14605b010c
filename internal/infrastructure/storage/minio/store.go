// Package minio implements the document object store on MinIO (or any
// S3-compatible endpoint). The API hands out presigned URLs; file bytes never
// pass through the server.
package minio

import (
	"context"
	"net/url"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/buildmind/sitetrack/internal/config"
	"github.com/buildmind/sitetrack/internal/infrastructure/monitoring/logging"
	"github.com/buildmind/sitetrack/pkg/errors"
)

// Store implements document.ObjectStore.
type Store struct {
	client *miniogo.Client
	bucket string
	logger logging.Logger
}

// Connect builds the client and ensures the bucket exists.
func Connect(ctx context.Context, cfg config.MinIOConfig, logger logging.Logger) (*Store, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternalService, "failed to build minio client")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternalService, "failed to check bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, miniogo.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrap(err, errors.CodeExternalService, "failed to create bucket")
		}
	}

	logger.Info("object store connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
	)
	return &Store{client: client, bucket: cfg.Bucket, logger: logger.Named("object_store")}, nil
}

// PresignPut returns an upload URL for the key. The content type is pinned so
// the client cannot upload under a different one.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignHeader(ctx, "PUT", s.bucket, key, expiry, url.Values{}, map[string][]string{
		"Content-Type": {contentType},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternalService, "failed to presign upload")
	}
	return u.String(), nil
}

// PresignGet returns a download URL for the key.
func (s *Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternalService, "failed to presign download")
	}
	return u.String(), nil
}

// Remove deletes the object; removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeExternalService, "failed to remove object")
	}
	return nil
}
