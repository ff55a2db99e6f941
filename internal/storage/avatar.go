// Package storage uploads user avatars to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"monetra/internal/config"
)

// AvatarStore persists avatar images and returns a publicly addressable URL.
type AvatarStore interface {
	Upload(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, error)
}

// S3AvatarStore stores avatars in a bucket under avatars/{userID}{ext}.
type S3AvatarStore struct {
	client   *s3.Client
	bucket   string
	endpoint string
	region   string
}

// NewS3AvatarStore builds an S3 client from the application config. A custom
// endpoint (e.g. MinIO) is honored when configured.
func NewS3AvatarStore(ctx context.Context, cfg *config.Config) (*S3AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey, cfg.S3SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3AvatarStore{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: cfg.S3Endpoint,
		region:   cfg.S3Region,
	}, nil
}

// Upload writes the avatar object and returns its URL.
func (s *S3AvatarStore) Upload(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, error) {
	key := "avatars/" + userID + extension(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put avatar object: %w", err)
	}

	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

// NullAvatarStore rejects uploads when no object storage is configured.
type NullAvatarStore struct {
	Logger *zap.SugaredLogger
}

// Upload always fails with a configuration error.
func (s *NullAvatarStore) Upload(_ context.Context, userID, filename, _ string, _ io.Reader) (string, error) {
	s.Logger.Warnw("avatar upload attempted without object storage configured",
		"user_id", userID,
		"filename", filename,
	)
	return "", fmt.Errorf("object storage is not configured")
}

func extension(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return strings.ToLower(filename[i:])
	}
	return ""
}
