package repository

import (
	"context"
	"errors"

	"rental-desk-backend/internal/domain"
)

// ErrNotFound is returned when no session matches the lookup.
var ErrNotFound = errors.New("record not found")

// SessionOrder selects the timestamp a session listing is sorted on, newest first.
type SessionOrder string

const (
	OrderByCreated SessionOrder = "created"
	OrderByUpdated SessionOrder = "updated"
)

type SessionRepository interface {
	// Create assigns the id and both timestamps.
	Create(ctx context.Context, s *domain.RentalSession) error
	GetByID(ctx context.Context, id string) (*domain.RentalSession, error)
	// Update overwrites every column and refreshes updated_at.
	Update(ctx context.Context, s *domain.RentalSession) error
	Delete(ctx context.Context, id string) error

	ListByStatus(ctx context.Context, statuses []domain.SessionStatus, orderBy SessionOrder, limit int) ([]domain.RentalSession, error)
	// Search matches the plate exactly on the upper-cased query, and name or
	// phone by case-insensitive substring. Newest first.
	Search(ctx context.Context, field domain.SearchField, query string, limit int) ([]domain.RentalSession, error)
	// LatestByPhone returns the most recently created session for phone.
	LatestByPhone(ctx context.Context, phone string) (*domain.RentalSession, error)
	// ListDueBefore returns sessions in status whose return date is strictly
	// before date (YYYY-MM-DD).
	ListDueBefore(ctx context.Context, status domain.SessionStatus, date string) ([]domain.RentalSession, error)
}
