package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-desk-backend/internal/config"
	"rental-desk-backend/internal/jobs"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	cfg := &config.Config{}
	cfg.Business.Timezone = "UTC"
	cfg.Scheduler.SendOverdueReminders = "0 0 9 * * *"

	s, err := NewScheduler(jobs.NewJobRunner(nil, nil, cfg))
	require.NoError(t, err)
	assert.True(t, s.IsRunning())
	assert.Len(t, s.cron.Entries(), 1)

	s.Start()
	s.Stop()
}

func TestNewScheduler_BadSpec(t *testing.T) {
	cfg := &config.Config{}
	cfg.Business.Timezone = "UTC"
	cfg.Scheduler.SendOverdueReminders = "every morning"

	_, err := NewScheduler(jobs.NewJobRunner(nil, nil, cfg))
	assert.Error(t, err)
}
