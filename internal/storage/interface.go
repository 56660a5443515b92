package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrFileNotFound is returned when a key has no stored object
var ErrFileNotFound = errors.New("file not found")

// StorageInterface defines the interface for photo storage backends.
// Supports both mock (local filesystem) and S3.
type StorageInterface interface {
	// SaveFile stores the content of reader under key
	SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error

	// ReadFile opens the object stored under key
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)

	// GeneratePresignedDownloadURL generates a time-limited URL for downloading
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage
	DeleteFile(ctx context.Context, key string) error
}
