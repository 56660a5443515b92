package service_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/repository"
	"rental-desk-backend/internal/security"
)

// MockSessionRepo
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, s *domain.RentalSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSessionRepo) GetByID(ctx context.Context, id string) (*domain.RentalSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalSession), args.Error(1)
}
func (m *MockSessionRepo) Update(ctx context.Context, s *domain.RentalSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSessionRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockSessionRepo) ListByStatus(ctx context.Context, statuses []domain.SessionStatus, orderBy repository.SessionOrder, limit int) ([]domain.RentalSession, error) {
	args := m.Called(ctx, statuses, orderBy, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSession), args.Error(1)
}
func (m *MockSessionRepo) Search(ctx context.Context, field domain.SearchField, query string, limit int) ([]domain.RentalSession, error) {
	args := m.Called(ctx, field, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSession), args.Error(1)
}
func (m *MockSessionRepo) LatestByPhone(ctx context.Context, phone string) (*domain.RentalSession, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalSession), args.Error(1)
}
func (m *MockSessionRepo) ListDueBefore(ctx context.Context, status domain.SessionStatus, date string) ([]domain.RentalSession, error) {
	args := m.Called(ctx, status, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSession), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReturnReceipt(ctx context.Context, s *domain.RentalSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockNotifier) SendOverdueReminder(ctx context.Context, s *domain.RentalSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveFile(ctx context.Context, key, contentType string, reader io.Reader) error {
	args := m.Called(ctx, key, contentType, reader)
	return args.Error(0)
}
func (m *MockStorage) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateDeviceToken(deviceID string) (string, time.Time, error) {
	args := m.Called(deviceID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
func (m *MockTokenManager) ValidateToken(token string) (*security.DeviceClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.DeviceClaims), args.Error(1)
}
