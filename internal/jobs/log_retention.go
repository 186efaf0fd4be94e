package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SAP-F-2025/student-service/internal/repositories"
)

// DefaultRetentionSchedule runs the purge daily at 03:00
const DefaultRetentionSchedule = "0 3 * * *"

// LogRetentionJob purges system logs older than the retention window
type LogRetentionJob struct {
	logs      repositories.SystemLogRepository
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewLogRetentionJob(logs repositories.SystemLogRepository, retentionDays int, logger *slog.Logger) *LogRetentionJob {
	return &LogRetentionJob{
		logs:      logs,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
		now:       time.Now,
	}
}

// Run deletes every log created before now minus the retention window.
// A non-positive window disables the purge.
func (j *LogRetentionJob) Run(ctx context.Context) (int64, error) {
	if j.retention <= 0 {
		return 0, nil
	}

	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.logs.DeleteOlderThan(ctx, nil, cutoff)
	if err != nil {
		return 0, fmt.Errorf("log retention failed: %w", err)
	}

	j.logger.Info("System log retention completed", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

// Scheduler owns the cron runner for background jobs
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger: logger,
	}
}

// AddLogRetention registers the purge on the given cron spec
func (s *Scheduler) AddLogRetention(spec string, job *LogRetentionJob) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := job.Run(ctx); err != nil {
			s.logger.Error("Scheduled log retention failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Job scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
	}
}
