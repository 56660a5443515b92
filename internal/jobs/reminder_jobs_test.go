package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-desk-backend/internal/config"
	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/repository"
)

type mockSessionRepo struct {
	mock.Mock
	repository.SessionRepository
}

func (m *mockSessionRepo) ListDueBefore(ctx context.Context, status domain.SessionStatus, date string) ([]domain.RentalSession, error) {
	args := m.Called(ctx, status, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSession), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendReturnReceipt(ctx context.Context, s *domain.RentalSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockNotifier) SendOverdueReminder(ctx context.Context, s *domain.RentalSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func newTestRunner(repo *mockSessionRepo, notifier *mockNotifier) *JobRunner {
	cfg := &config.Config{}
	cfg.Business.Timezone = "America/New_York"
	jr := NewJobRunner(repo, notifier, cfg)
	// 02:30 UTC on the 10th is still the 9th in New York
	jr.now = func() time.Time { return time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC) }
	return jr
}

func TestRunOverdueReminders(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSessionRepo)
	notifier := new(mockNotifier)
	jr := newTestRunner(repo, notifier)

	overdue := []domain.RentalSession{
		{ID: "s1", CustomerEmail: "a@example.com", ReturnDate: "2026-03-07"},
		{ID: "s2", CustomerEmail: "", ReturnDate: "2026-03-08"},
		{ID: "s3", CustomerEmail: "c@example.com", ReturnDate: "2026-03-08"},
	}
	repo.On("ListDueBefore", ctx, domain.SessionStatusPickup, "2026-03-09").Return(overdue, nil)
	notifier.On("SendOverdueReminder", ctx, mock.MatchedBy(func(s *domain.RentalSession) bool { return s.ID == "s1" })).Return(nil)
	notifier.On("SendOverdueReminder", ctx, mock.MatchedBy(func(s *domain.RentalSession) bool { return s.ID == "s3" })).Return(errors.New("rejected"))

	sent, err := jr.RunOverdueReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	notifier.AssertNumberOfCalls(t, "SendOverdueReminder", 2)
}

func TestRunOverdueReminders_ListFails(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSessionRepo)
	jr := newTestRunner(repo, new(mockNotifier))
	repo.On("ListDueBefore", ctx, domain.SessionStatusPickup, "2026-03-09").Return(nil, errors.New("db down"))

	_, err := jr.RunOverdueReminders(ctx)
	assert.ErrorContains(t, err, "failed to list overdue sessions")
}

func TestSendOverdueReminders_RecoversPanic(t *testing.T) {
	repo := new(mockSessionRepo)
	jr := newTestRunner(repo, new(mockNotifier))
	// no expectation registered: the mock panics and the runner recovers
	assert.NotPanics(t, jr.SendOverdueReminders)
}
