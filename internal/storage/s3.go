package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hlsget/hlsget/internal/domain"
)

func (g *Gateway) uploadS3(ctx context.Context, localPath string, cfg *domain.StorageConfig) (*domain.StorageResult, error) {
	key := remoteTarget(cfg.Key, cfg.Path, filepath.Base(localPath), "")

	if cfg.Bucket == "" || key == "" {
		return nil, domain.Errf(domain.CodeStorage, "invalid S3 config: bucket and (key or path) are required")
	}

	endpoint := cfg.Endpoint
	secure := true
	if endpoint == "" {
		if cfg.Region != "" {
			endpoint = fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region)
		} else {
			endpoint = "s3.amazonaws.com"
		}
	} else {
		if strings.HasPrefix(endpoint, "http://") {
			secure = false
		}
		endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		endpoint = strings.TrimRight(endpoint, "/")
	}

	opts := &minio.Options{
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts.Creds = credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	} else {
		opts.Creds = credentials.NewIAM("")
	}
	if cfg.ForcePathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, fmt.Errorf("S3 client setup failed: %w", err))
	}

	if _, err := client.FPutObject(ctx, cfg.Bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "video/mp2t",
	}); err != nil {
		return nil, domain.WrapErr(domain.CodeStorage, fmt.Errorf("S3 upload failed: %w", err))
	}

	location := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, key)
	if cfg.Endpoint != "" {
		scheme := "https"
		if !secure {
			scheme = "http"
		}
		location = fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, cfg.Bucket, key)
	}

	g.log.Info("Uploaded to s3://%s/%s", cfg.Bucket, key)

	return &domain.StorageResult{
		Type:     domain.StorageS3,
		Bucket:   cfg.Bucket,
		Key:      key,
		Location: location,
	}, nil
}
