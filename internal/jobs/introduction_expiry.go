// File: internal/jobs/introduction_expiry.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"carmatch_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout bounds one sweep.
const runTimeout = 5 * time.Minute

// Expirer is the part of the introduction service the job drives.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// IntroductionExpiryJob flips overdue pending introductions to expired on a schedule.
type IntroductionExpiryJob struct {
	expirer       Expirer
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewIntroductionExpiryJob creates a new IntroductionExpiryJob.
func NewIntroductionExpiryJob(expirer Expirer, logger *zap.Logger, cfg *config.Config) *IntroductionExpiryJob {
	cl := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cl),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cl)),
	)

	return &IntroductionExpiryJob{
		expirer:       expirer,
		logger:        logger.Named("IntroductionExpiryJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *IntroductionExpiryJob) SetupAndStart() error {
	jobSpec := j.cfg.IntroductionExpiryJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Introduction expiry job schedule not defined (INTRODUCTION_EXPIRY_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule introduction expiry job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Introduction expiry job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *IntroductionExpiryJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// RunOnce performs a single sweep. Overlapping sweeps are harmless: a row
// already expired no longer matches.
func (j *IntroductionExpiryJob) RunOnce(ctx context.Context) (int64, error) {
	j.logger.Info("Starting introduction expiry run...")
	expired, err := j.expirer.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Error("Introduction expiry run failed", zap.Error(err))
		return 0, err
	}
	j.logger.Info("Introduction expiry run completed", zap.Int64("introductions_expired", expired))
	return expired, nil
}

// Stop gracefully stops the cron scheduler.
func (j *IntroductionExpiryJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping introduction expiry job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Introduction expiry job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Introduction expiry job scheduler stop timed out.")
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

// Info logs routine messages from cron at debug level; cron is chatty.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Debug(msg, toFields(keysAndValues)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(toFields(keysAndValues), zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func toFields(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(key, keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(key, "MISSING_VALUE"))
		}
	}
	return fields
}
