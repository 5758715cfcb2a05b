// File: internal/jobs/reminder_scan.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"roadassist_backend/internal/config"
	"roadassist_backend/internal/reminder"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderScanJob holds dependencies for the periodic reminder scan.
type ReminderScanJob struct {
	reminderService *reminder.Service
	logger          *zap.Logger
	cfg             *config.Config
	cronScheduler   *cron.Cron
}

// NewReminderScanJob creates a new ReminderScanJob.
func NewReminderScanJob(
	reminderService *reminder.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *ReminderScanJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &ReminderScanJob{
		reminderService: reminderService,
		logger:          logger.Named("ReminderScanJob"),
		cfg:             cfg,
		cronScheduler:   scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *ReminderScanJob) SetupAndStart() error {
	jobSpec := j.cfg.ReminderScanSchedule // e.g. "@every 1m", "0 8 * * *"
	if jobSpec == "" {
		j.logger.Warn("Reminder scan schedule not defined (REMINDER_SCAN_SCHEDULE). Job will not run.")
		return nil // Not a fatal error, just won't run
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule reminder scan job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Reminder scan job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start() // Start the scheduler in the background
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *ReminderScanJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	emitted := j.reminderService.Scan(ctx, time.Now())
	if emitted > 0 {
		j.logger.Info("Reminder scan run completed", zap.Int("reminders_notified", emitted))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *ReminderScanJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping reminder scan scheduler...")
		stopCtx := j.cronScheduler.Stop() // Returns a context that is done when the scheduler has stopped
		select {
		case <-stopCtx.Done():
			j.logger.Info("Reminder scan scheduler stopped gracefully.")
		case <-time.After(10 * time.Second): // Timeout for stopping
			j.logger.Warn("Reminder scan scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
