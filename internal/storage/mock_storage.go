package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rental-desk-backend/internal/logger"
)

// MockStorageService implements photo storage using the local filesystem.
// This is for demo/testing without AWS S3.
type MockStorageService struct {
	baseURL    string // Server URL (e.g., "http://localhost:8080")
	uploadsDir string // Local directory for uploads (e.g., "./uploads")
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &MockStorageService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		uploadsDir: uploadsDir,
	}, nil
}

// GeneratePresignedDownloadURL returns a URL served by the mock file handler.
// The mock URL does not expire.
func (m *MockStorageService) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := m.localPath(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/files?key=%s", m.baseURL, url.QueryEscape(key)), nil
}

// FileExists checks if file exists in local filesystem
func (m *MockStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return false, 0, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}

	logger.Debug("Mock storage file found", "key", key, "size", info.Size())
	return true, info.Size(), nil
}

// DeleteFile deletes file from local filesystem
func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.localPath(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// SaveFile saves an uploaded file to the local filesystem
func (m *MockStorageService) SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error {
	fullPath, err := m.localPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// ReadFile opens a stored file for reading
func (m *MockStorageService) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// localPath resolves key inside the uploads directory, rejecting keys that
// would escape it.
func (m *MockStorageService) localPath(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	if key == "" || cleaned == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(m.uploadsDir, cleaned), nil
}
