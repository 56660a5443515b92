package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/repository"
	"rental-desk-backend/internal/storage"
)

const sessionKeyPrefix = "sessions/"

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

type photoService struct {
	repo         repository.SessionRepository
	store        storage.StorageInterface
	allowedTypes map[string]bool
	maxBytes     int64
	thumbDim     int
	urlExpiry    time.Duration
}

// NewPhotoService stores session photos and their thumbnails in store.
func NewPhotoService(repo repository.SessionRepository, store storage.StorageInterface, allowedTypes []string, maxBytes int64, thumbDim int, urlExpiry time.Duration) PhotoService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &photoService{
		repo:         repo,
		store:        store,
		allowedTypes: allowed,
		maxBytes:     maxBytes,
		thumbDim:     thumbDim,
		urlExpiry:    urlExpiry,
	}
}

// Upload saves a photo for slot, writes its thumbnail next to it and records
// the photo key on the session.
func (s *photoService) Upload(ctx context.Context, sessionID string, slot domain.PhotoSlot, contentType string, body io.Reader) (*PhotoUpload, error) {
	logger.EnterMethod("photoService.Upload", "sessionID", sessionID, "slot", slot)

	if !slot.Valid() {
		return nil, invalidInput("unknown photo slot %q", slot)
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, known := photoExtensions[contentType]
	if !known || !s.allowedTypes[contentType] {
		return nil, invalidInput("content type %q is not allowed", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, invalidInput("empty upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, invalidInput("photo exceeds %d bytes", s.maxBytes)
	}

	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		err = translate(err, "session "+sessionID)
		logger.ExitMethodWithError("photoService.Upload", err)
		return nil, err
	}
	if sess.IsClosed() {
		return nil, ErrSessionClosed
	}

	thumb, err := storage.Thumbnail(bytes.NewReader(data), s.thumbDim)
	if err != nil {
		return nil, invalidInput("%v", err)
	}

	key := fmt.Sprintf("%s%s/%s_%s%s", sessionKeyPrefix, sess.ID, slot, uuid.NewString(), ext)
	thumbKey := storage.ThumbnailKey(key)

	if err := s.store.SaveFile(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		logger.ExitMethodWithError("photoService.Upload", err)
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}
	if err := s.store.SaveFile(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumb)); err != nil {
		s.cleanup(ctx, key)
		logger.ExitMethodWithError("photoService.Upload", err)
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	sess.Attach(slot, key)
	if err := s.repo.Update(ctx, sess); err != nil {
		s.cleanup(ctx, key, thumbKey)
		err = translate(err, "session "+sessionID)
		logger.ExitMethodWithError("photoService.Upload", err)
		return nil, err
	}

	url, err := s.store.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign photo url: %w", err)
	}

	logger.WithSession(sess.ID).Info("Photo stored", "slot", slot, "key", key, "bytes", len(data))
	logger.ExitMethod("photoService.Upload")
	return &PhotoUpload{
		Key:          key,
		ThumbnailKey: thumbKey,
		URL:          url,
		Session:      sess,
	}, nil
}

// DownloadURL signs a short-lived URL for a stored session photo or thumbnail.
func (s *photoService) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	key = strings.TrimSpace(key)
	if !isSessionPhotoKey(key) {
		return "", time.Time{}, invalidInput("invalid photo key %q", key)
	}
	exists, _, err := s.store.FileExists(ctx, key)
	if err != nil {
		return "", time.Time{}, err
	}
	if !exists {
		return "", time.Time{}, fmt.Errorf("%w: photo %s", ErrNotFound, key)
	}
	expiresAt := time.Now().Add(s.urlExpiry)
	url, err := s.store.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign photo url: %w", err)
	}
	return url, expiresAt, nil
}

func (s *photoService) cleanup(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if err := s.store.DeleteFile(ctx, k); err != nil {
			logger.Warn("Failed to remove orphaned photo", "key", k, "error", err)
		}
	}
}

func isSessionPhotoKey(key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, sessionKeyPrefix) ||
		strings.HasPrefix(key, "thumbnails/"+sessionKeyPrefix)
}
