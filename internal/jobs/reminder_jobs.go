package jobs

import (
	"context"
	"fmt"

	"rental-desk-backend/internal/domain"
	"rental-desk-backend/internal/logger"
)

// SendOverdueReminders emails customers whose vehicle is still out past its
// return date.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		sent, err := jr.RunOverdueReminders(context.Background())
		if err != nil {
			logger.Error("Overdue reminders failed", "error", err, "sent", sent)
			return
		}
		logger.Info("Overdue reminders sent", "count", sent)
	})
}

// RunOverdueReminders sends one reminder per session still in pickup whose
// return date is before today in the business timezone. A failed send is
// logged and skipped. It returns the number of reminders sent.
func (jr *JobRunner) RunOverdueReminders(ctx context.Context) (int, error) {
	today := jr.now().In(jr.config.Location()).Format(domain.DateLayout)

	overdue, err := jr.sessions.ListDueBefore(ctx, domain.SessionStatusPickup, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue sessions: %w", err)
	}

	sent := 0
	for i := range overdue {
		s := &overdue[i]
		log := logger.WithSession(s.ID)
		if s.CustomerEmail == "" {
			log.Debug("Overdue session has no customer email", "plate", s.VehiclePlate)
			continue
		}
		if err := jr.notifier.SendOverdueReminder(ctx, s); err != nil {
			log.Error("Failed to send overdue reminder", "error", err)
			continue
		}
		log.Info("Overdue reminder sent", "plate", s.VehiclePlate, "return_date", s.ReturnDate)
		sent++
	}
	return sent, nil
}
