package jobs

import (
	"time"

	"rental-desk-backend/internal/config"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/repository"
	"rental-desk-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	sessions repository.SessionRepository
	notifier service.Notifier
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(sessions repository.SessionRepository, notifier service.Notifier, cfg *config.Config) *JobRunner {
	return &JobRunner{
		sessions: sessions,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	log := logger.WithComponent("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	start := jr.now()
	log.Info("Starting job")
	jobFunc()
	log.Info("Job completed", "duration", time.Since(start))
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.SendOverdueReminders()
}
