package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rental-desk-backend/internal/bootstrap"
	"rental-desk-backend/internal/config"
	"rental-desk-backend/internal/jobs"
	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'overdue-reminders', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Desk Cronjob Runner...", "log_level", cfg.Log.Level, "timezone", cfg.Business.Timezone)

	// Initialize Database
	ctx := context.Background()
	store, err := bootstrap.OpenSessionStore(ctx, cfg, false)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close(ctx)
	logger.Info("Database connection established")

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, bootstrap.NewNotifier(cfg), cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			printJobs()
			store.Close(ctx)
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once. It reports false for an unknown job.
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "overdue-reminders", "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		return false
	}
	return true
}

func printJobs() {
	fmt.Printf("Available jobs:\n")
	fmt.Printf("  - overdue-reminders\n")
	fmt.Printf("  - all-nightly\n")
}
