// AngelaMos | 2026
// minio.go

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/carterperez-dev/templates/roster-api/internal/config"
)

type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the object store and makes sure the bucket
// exists with anonymous read access, since avatars and character images
// are served straight from it.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &MinioStore{client: client, bucket: cfg.Bucket}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.ensureBucket(initCtx, cfg.Region); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region})
		if err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}

	policy, err := json.Marshal(map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Action":    []string{"s3:GetObject"},
			"Effect":    "Allow",
			"Principal": map[string]any{"AWS": []string{"*"}},
			"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", s.bucket)},
		}},
	})
	if err != nil {
		return fmt.Errorf("marshal bucket policy: %w", err)
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, string(policy)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}

	return nil
}

func (s *MinioStore) Put(
	ctx context.Context,
	key string,
	data []byte,
	contentType string,
) error {
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ok, err := s.client.BucketExists(pingCtx, s.bucket)
	if err != nil {
		return fmt.Errorf("storage ping failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("storage ping failed: bucket %s missing", s.bucket)
	}

	return nil
}
