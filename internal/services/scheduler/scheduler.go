package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/services/embeddings"
)

// Runner performs one embedding backfill pass
type Runner interface {
	Run(ctx context.Context) (*embeddings.BackfillStats, error)
}

// Scheduler runs the corpus embedding backfill on a cron schedule
type Scheduler struct {
	runner  Runner
	cron    *cron.Cron
	timeout time.Duration
	logger  arbor.ILogger
}

// NewScheduler creates a new backfill scheduler
func NewScheduler(runner Runner, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		runner:  runner,
		cron:    cron.New(cron.WithSeconds()),
		timeout: 30 * time.Minute,
		logger:  logger,
	}
}

// Start begins the scheduled backfill
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		// Default: every 10 minutes
		schedule = "0 */10 * * * *"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runBackfill()
	})
	if err != nil {
		return fmt.Errorf("invalid backfill schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Embedding backfill scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running backfill to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Embedding backfill scheduler stopped")
}

// RunNow triggers an immediate backfill in the background
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate embedding backfill")
	common.SafeGo(s.logger, "embedding-backfill", s.runBackfill)
}

func (s *Scheduler) runBackfill() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	stats, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Scheduled embedding backfill failed")
		return
	}
	if stats.Skipped {
		return
	}

	s.logger.Debug().
		Int("embedded", stats.Embedded).
		Int("failed", stats.Failed).
		Dur("duration", stats.Duration).
		Msg("Scheduled embedding backfill finished")
}
