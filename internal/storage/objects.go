package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorageOpts параметры S3-совместимого хранилища отчетов.
type ObjectStorageOpts struct {
	Endpoint  string `yaml:"endpoint" validate:"required"`
	AccessKey string `yaml:"accessKey" validate:"required"`
	SecretKey string `yaml:"secretKey" validate:"required"`
	Bucket    string `yaml:"bucket" validate:"required"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"useSSL"`
}

// ObjectStore выгружает готовые артефакты отчетов в объектное хранилище.
type ObjectStore struct {
	client *minio.Client
	opts   ObjectStorageOpts
	logger *slog.Logger
}

// NewObjectStore создает клиент объектного хранилища.
func NewObjectStore(opts ObjectStorageOpts, logger *slog.Logger) (*ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		logger.Error("failed to create object storage client", "endpoint", opts.Endpoint, "error", err)
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	logger.Info("object storage client created", "endpoint", opts.Endpoint, "bucket", opts.Bucket)

	return &ObjectStore{client: client, opts: opts, logger: logger}, nil
}

// Upload записывает объект в настроенный bucket, создавая bucket
// при первом обращении.
func (s *ObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("object key is required")
	}

	exists, err := s.client.BucketExists(ctx, s.opts.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.opts.Bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{Region: s.opts.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.opts.Bucket, err)
		}
		s.logger.Info("bucket created", "bucket", s.opts.Bucket)
	}

	_, err = s.client.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Info("report uploaded", "bucket", s.opts.Bucket, "key", key, "bytes", len(data))
	return nil
}
