// Package storage issues short-lived download URLs for content objects.
// Upload and streaming mechanics live outside this service; only grant
// issuance happens here.
package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ntumia/mediahub/pkg/config"
)

// ObjectSigner produces a pre-authorized download URL for an object key.
type ObjectSigner interface {
	SignDownload(ctx context.Context, key string) (string, error)
}

// S3Signer signs download URLs against an S3 bucket.
type S3Signer struct {
	presign *s3.PresignClient
	bucket  string
	cfg     *config.StorageConfig
}

func NewS3Signer(ctx context.Context, cfg *config.StorageConfig) (*S3Signer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Signer{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		cfg:     cfg,
	}, nil
}

func (s *S3Signer) SignDownload(ctx context.Context, key string) (string, error) {
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.URLExpiry()))
	if err != nil {
		return "", fmt.Errorf("presigning %s: %w", key, err)
	}
	return out.URL, nil
}

var _ ObjectSigner = (*S3Signer)(nil)
