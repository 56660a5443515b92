package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/storage"
)

// fileStore is the part of the storage backend served over /files.
type fileStore interface {
	SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImageUploadHandler serves the local mock storage the way S3 serves
// presigned URLs.
type ImageUploadHandler struct {
	store   fileStore
	maxSize int64
}

func NewImageUploadHandler(store fileStore, maxSize int64) *ImageUploadHandler {
	return &ImageUploadHandler{
		store:   store,
		maxSize: maxSize,
	}
}

// HandleMockUpload stores the request body under the key query parameter.
func (h *ImageUploadHandler) HandleMockUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/gif" {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := h.store.SaveFile(r.Context(), key, contentType, body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.Error("Mock upload failed", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", `"mock-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleMockDownload streams the object stored under the key query parameter.
func (h *ImageUploadHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.store.ReadFile(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(key)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Mock download interrupted", "key", key, "error", err)
	}
}

// RegisterMockStorageRoutes registers the mock storage HTTP endpoints
func RegisterMockStorageRoutes(router *mux.Router, store fileStore, maxSize int64) {
	handler := NewImageUploadHandler(store, maxSize)
	router.HandleFunc("/files", handler.HandleMockUpload).Methods(http.MethodPut).Name("files.upload")
	router.HandleFunc("/files", handler.HandleMockDownload).Methods(http.MethodGet).Name("files.download")
}
