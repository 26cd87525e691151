// Package jobs runs the scheduled background work: morning occasion
// reminders, reminder digest emails, and a nightly stats line.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmaldonado/nestdesk/pkg/backup"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron   *cron.Cron
	runner *Runner
	logger *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(runner *Runner, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}
	return &CronManager{
		cron:   cron.New(),
		runner: runner,
		logger: logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Daily at 7 AM: birthday and home anniversary reminders
	_, err := cm.cron.AddFunc("0 7 * * *", func() {
		cm.logger.Println("🕐 Running occasion reminder job...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		created, err := cm.runner.GenerateOccasionReminders(ctx, time.Now())
		if err != nil {
			cm.logger.Printf("❌ Occasion reminder job failed: %v", err)
			return
		}
		cm.logger.Printf("✅ Occasion reminder job completed, %d reminders created", created)
	})
	if err != nil {
		return err
	}

	// Daily at 8 AM: email each user their reminders due today
	_, err = cm.cron.AddFunc("0 8 * * *", func() {
		cm.logger.Println("🕐 Running reminder digest job...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		sent, err := cm.runner.SendReminderDigests(ctx, time.Now())
		if err != nil {
			cm.logger.Printf("❌ Reminder digest job failed: %v", err)
			return
		}
		cm.logger.Printf("✅ Reminder digest job completed, %d digests sent", sent)
	})
	if err != nil {
		return err
	}

	// Daily at 11 PM: log activity statistics
	_, err = cm.cron.AddFunc("0 23 * * *", func() {
		cm.logger.Println("🕐 Logging activity statistics...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if err := cm.runner.LogActivityStats(ctx, time.Now()); err != nil {
			cm.logger.Printf("❌ Failed to log activity stats: %v", err)
		}
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Daily at 7 AM: Birthday and anniversary reminders")
	cm.logger.Println("  - Daily at 8 AM: Reminder digest emails")
	cm.logger.Println("  - Daily at 11 PM: Log activity statistics")

	return nil
}

// AddNightlyBackup schedules a database backup every night at 2 AM.
func (cm *CronManager) AddNightlyBackup(backups *backup.Service) error {
	_, err := cm.cron.AddFunc("0 2 * * *", func() {
		cm.logger.Println("🕐 Running backup job...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		result, err := backups.Create(ctx)
		if err != nil {
			cm.logger.Printf("❌ Backup job failed: %v", err)
			return
		}
		cm.logger.Printf("✅ Backup job completed: %s (%d bytes)", result.Filename, result.FileSize)
	})
	if err != nil {
		return err
	}
	cm.logger.Println("  - Daily at 2 AM: Database backup to S3")
	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}

// GetRunner returns the job runner (for manual triggers)
func (cm *CronManager) GetRunner() *Runner {
	return cm.runner
}
