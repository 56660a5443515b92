package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"rental-desk-backend/internal/logger"
)

// S3Storage implements photo storage on AWS S3
type S3Storage struct {
	bucket        string
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 storage service. Static credentials are used
// when configured; otherwise the default AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	opts := []func(*aws_config.LoadOptions) error{
		aws_config.WithRegion(cfg.S3Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		bucket:        cfg.S3Bucket,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

// SaveFile uploads the object. The body is buffered so the SDK can sign a
// seekable payload.
func (s *S3Storage) SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}

	logger.ExternalServiceCall("s3", "PutObject", "key", key, "size", len(data))
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	logger.ExternalServiceResult("s3", "PutObject", err, "key", key)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *S3Storage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned GET URL for key %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Storage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	out, err := s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, aws.ToInt64(out.ContentLength), nil
}

func (s *S3Storage) DeleteFile(ctx context.Context, key string) error {
	logger.ExternalServiceCall("s3", "DeleteObject", "key", key)
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	logger.ExternalServiceResult("s3", "DeleteObject", err, "key", key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
