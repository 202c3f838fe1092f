package store

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"play-extract/pkg/domain"
)

// ObjectStoreConfig holds S3-compatible storage settings
type ObjectStoreConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Prefix          string
	Ext             string
}

// ObjectStore uploads the same JSON bytes as FileStore to a bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
	ext    string
}

// NewObjectStore creates the client and makes sure the bucket exists
func NewObjectStore(ctx context.Context, cfg ObjectStoreConfig) (*ObjectStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("object store endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := newObjectStore(client, cfg)
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newObjectStore(client *minio.Client, cfg ObjectStoreConfig) *ObjectStore {
	ext := strings.TrimPrefix(cfg.Ext, ".")
	if ext == "" {
		ext = DefaultExt
	}
	return &ObjectStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, ext: ext}
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ObjectName returns the key a record is stored under
func (s *ObjectStore) ObjectName(name string) string {
	return s.prefix + name + "." + s.ext
}

// SaveRecord uploads the encoded transcript, replacing any existing object
func (s *ObjectStore) SaveRecord(ctx context.Context, record *domain.PlayRecord) (string, error) {
	if record == nil || record.Name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, "")
	}

	data, err := EncodeTranscript(record.Transcript)
	if err != nil {
		return "", err
	}

	objectName := s.ObjectName(record.Name)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json; charset=utf-8",
		UserMetadata: map[string]string{
			"source-url": record.SourceURL,
			"strategy":   string(record.Strategy),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, objectName), nil
}
