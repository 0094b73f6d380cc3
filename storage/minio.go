package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"socialapi/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIO struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinIO(ctx context.Context, cfg config.MinIO) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinIO{
		client:  client,
		bucket:  cfg.BucketName,
		baseURL: publicBaseURL(cfg),
	}, nil
}

func publicBaseURL(cfg config.MinIO) string {
	if cfg.PublicURL != "" {
		return strings.TrimSuffix(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.BucketName)
}

func (m *MinIO) Upload(ctx context.Context, owner string, file io.Reader, size int64, contentType string) (Object, error) {
	now := time.Now()
	name := objectName(owner, contentType, now)

	_, err := m.client.PutObject(ctx, m.bucket, name, file, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"owner":       owner,
			"uploaded-at": now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return Object{}, fmt.Errorf("minio upload: %w", err)
	}

	return Object{Key: name, URL: m.baseURL + "/" + name}, nil
}

func (m *MinIO) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio delete: %w", err)
	}
	return nil
}
