// Package storage mirrors uploaded scan images to S3-compatible object
// storage using MinIO.
package storage

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Chandru2600/Vaidra/internal/config"
)

// Stored is the stable reference to an uploaded object.
type Stored struct {
	URL string
	Key string
}

// Service copies local files into a bucket. When remote storage is disabled
// it degenerates to returning the local path for both URL and key.
type Service struct {
	enabled  bool
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// New builds a Service. enabled=false yields a client-less service whose
// Store is a no-op passthrough.
func New(cfg config.Storage, enabled bool) (*Service, error) {
	if !enabled {
		return &Service{enabled: false}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &Service{
		enabled:  true,
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
	}, nil
}

// Enabled reports whether remote storage is configured.
func (s *Service) Enabled() bool {
	return s.enabled
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Service) EnsureBucket(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
	}
	return nil
}

// Store uploads the local file under objectName and returns its reference.
// Upload errors propagate to the caller; there is no retry.
func (s *Service) Store(ctx context.Context, localPath, objectName string) (Stored, error) {
	if !s.enabled {
		return Stored{URL: localPath, Key: localPath}, nil
	}

	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Stored{}, fmt.Errorf("uploading object: %w", err)
	}

	return Stored{URL: s.publicURL(objectName), Key: objectName}, nil
}

func (s *Service) publicURL(objectName string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   s.endpoint,
		Path:   "/" + s.bucket + "/" + objectName,
	}).String()
}
