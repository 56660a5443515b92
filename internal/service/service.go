package service

import (
	"context"
	"io"
	"time"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/utils"
)

type AuthService interface {
	// AuthenticateDevice exchanges the desk passcode for a device token.
	AuthenticateDevice(ctx context.Context, deviceID, passcode string) (string, time.Time, error)
}

type SessionService interface {
	NewSession() *domain.RentalSession
	Save(ctx context.Context, s *domain.RentalSession) (*domain.RentalSession, error)
	Get(ctx context.Context, id string) (*domain.RentalSession, error)
	Delete(ctx context.Context, id string) error
	ListOpen(ctx context.Context, limit int) ([]domain.RentalSession, error)
	ListClosed(ctx context.Context, limit int) ([]domain.RentalSession, error)
	Search(ctx context.Context, field domain.SearchField, query string) ([]domain.RentalSession, error)
	QuickFill(ctx context.Context, phone string) (*domain.CustomerProfile, error)
	UpdateReturn(ctx context.Context, id string, update domain.ReturnUpdate) (*domain.RentalSession, error)
	AdvanceStatus(ctx context.Context, id string, to domain.SessionStatus) (*domain.RentalSession, error)
	CloseRental(ctx context.Context, id string) (*domain.RentalSession, error)
	Preview(s *domain.RentalSession) Preview
}

// Preview is the live pricing shown while a form is being filled.
type Preview struct {
	RentalDays      int     `json:"rental_days"`
	TotalAmount     float64 `json:"total_amount"`
	DamageFeeAmount float64 `json:"damage_fee_amount"`
	utils.Reconciliation
}

type PhotoService interface {
	Upload(ctx context.Context, sessionID string, slot domain.PhotoSlot, contentType string, body io.Reader) (*PhotoUpload, error)
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// PhotoUpload describes a stored photo and the session it was attached to.
type PhotoUpload struct {
	Key          string                `json:"key"`
	ThumbnailKey string                `json:"thumbnail_key"`
	URL          string                `json:"url"`
	Session      *domain.RentalSession `json:"session"`
}

// Notifier sends customer emails about a rental.
type Notifier interface {
	SendReturnReceipt(ctx context.Context, s *domain.RentalSession) error
	SendOverdueReminder(ctx context.Context, s *domain.RentalSession) error
}
