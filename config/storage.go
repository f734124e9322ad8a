package config

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
}

// NewS3Config initializes the S3 client for the configured bucket and region.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.S3BucketName,
	}, nil
}

// PresignGet returns a time-limited download URL for an object key.
func (s *S3Config) PresignGet(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PresignPut returns a time-limited upload URL for an object key.
func (s *S3Config) PresignPut(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
