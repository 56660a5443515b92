package http_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/service"
)

// MockSessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) NewSession() *domain.RentalSession {
	args := m.Called()
	return args.Get(0).(*domain.RentalSession)
}
func (m *MockSessionService) Save(ctx context.Context, s *domain.RentalSession) (*domain.RentalSession, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) Get(ctx context.Context, id string) (*domain.RentalSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockSessionService) ListOpen(ctx context.Context, limit int) ([]domain.RentalSession, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) ListClosed(ctx context.Context, limit int) ([]domain.RentalSession, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) Search(ctx context.Context, field domain.SearchField, query string) ([]domain.RentalSession, error) {
	args := m.Called(ctx, field, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) QuickFill(ctx context.Context, phone string) (*domain.CustomerProfile, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerProfile), args.Error(1)
}
func (m *MockSessionService) UpdateReturn(ctx context.Context, id string, update domain.ReturnUpdate) (*domain.RentalSession, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) AdvanceStatus(ctx context.Context, id string, to domain.SessionStatus) (*domain.RentalSession, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) CloseRental(ctx context.Context, id string) (*domain.RentalSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalSession), args.Error(1)
}
func (m *MockSessionService) Preview(s *domain.RentalSession) service.Preview {
	args := m.Called(s)
	return args.Get(0).(service.Preview)
}

// MockPhotoService
type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) Upload(ctx context.Context, sessionID string, slot domain.PhotoSlot, contentType string, body io.Reader) (*service.PhotoUpload, error) {
	args := m.Called(ctx, sessionID, slot, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PhotoUpload), args.Error(1)
}
func (m *MockPhotoService) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// MockAuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) AuthenticateDevice(ctx context.Context, deviceID, passcode string) (string, time.Time, error) {
	args := m.Called(ctx, deviceID, passcode)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
