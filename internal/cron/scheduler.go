package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// pruneTimeout bounds one retention run.
const pruneTimeout = 2 * time.Minute

// WebhookLogPruner deletes stored webhook deliveries older than a cutoff.
type WebhookLogPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler manages all cron jobs.
type Scheduler struct {
	cron      *cron.Cron
	logger    *zap.Logger
	pruner    WebhookLogPruner
	retention time.Duration
	schedule  string
	now       func() time.Time
}

// New creates a new cron scheduler.
func New(pruner WebhookLogPruner, schedule string, retention time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.Named("cron"),
		pruner:    pruner,
		retention: retention,
		schedule:  schedule,
		now:       time.Now,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting cron scheduler...")

	// Webhook log retention
	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Debug("Running: prune webhook log")
		s.pruneWebhookLog()
	}); err != nil {
		return fmt.Errorf("schedule webhook log pruning %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("Cron scheduler started", zap.Int("jobs", len(s.cron.Entries())))
	return nil
}

// Stop stops the scheduler. The returned context is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) pruneWebhookLog() {
	defer s.recoverFromPanic("pruneWebhookLog")

	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.retention)
	deleted, err := s.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to prune webhook log", zap.Time("cutoff", cutoff), zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Pruned webhook log", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
}

func (s *Scheduler) recoverFromPanic(job string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", job), zap.Any("panic", r))
	}
}
