package scheduler

import (
	"github.com/robfig/cron/v3"

	"rental-desk-backend/internal/jobs"
	"rental-desk-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler running in the business timezone with
// seconds precision. It fails if a configured schedule does not parse.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(jobRunner.Config().Location()),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	if _, err := s.cron.AddFunc(cfg.SendOverdueReminders, s.jobs.SendOverdueReminders); err != nil {
		logger.Error("Failed to register SendOverdueReminders job", "error", err)
		return err
	}

	logger.Info("All cron jobs registered successfully", "count", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has jobs registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
