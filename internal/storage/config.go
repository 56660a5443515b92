package storage

import (
	"context"
	"fmt"
)

// Config holds storage configuration
type Config struct {
	Type      string // "mock" or "s3"
	MockDir   string // Directory for mock storage
	BaseURL   string // Server base URL for generating mock URLs
	S3Region  string
	S3Bucket  string
	AccessKey string
	SecretKey string
	Endpoint  string // Optional S3-compatible endpoint
}

// New builds the storage backend named by cfg.Type
func New(ctx context.Context, cfg Config) (StorageInterface, error) {
	switch cfg.Type {
	case "", "mock":
		mock, err := NewMockStorageService(cfg.BaseURL, cfg.MockDir)
		if err != nil {
			return nil, err
		}
		return mock, nil
	case "s3":
		s3Store, err := NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
