package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sevenpm/date-backend/internal/config"
)

// PhotoStore issues pre-signed S3 URLs for profile photo uploads and builds
// public URLs for stored objects. The server never proxies image bytes.
type PhotoStore struct {
	client *s3.Client
	bucket string
	region string
}

// NewPhotoStore builds the S3-backed store. Returns (nil, nil) when no bucket
// is configured; callers treat a nil store as uploads-disabled.
func NewPhotoStore(ctx context.Context, cfg *config.Config) (*PhotoStore, error) {
	if cfg.AWS.S3Bucket == "" {
		return nil, nil
	}

	awsConfig, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &PhotoStore{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWS.S3Bucket,
		region: cfg.AWS.Region,
	}, nil
}

// PresignUpload returns a pre-signed PUT URL for the given object key.
func (s *PhotoStore) PresignUpload(ctx context.Context, objectKey, contentType string) (string, time.Duration, error) {
	const expiry = 5 * time.Minute

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return request.URL, expiry, nil
}

// PublicURL builds the canonical object URL for a stored photo.
func (s *PhotoStore) PublicURL(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
}

// Delete removes a photo object; a missing key is not an error.
func (s *PhotoStore) Delete(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}
