package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tinkerloft/errdoctor/internal/logging"
)

// DefaultPurgeSchedule runs the janitor once an hour.
const DefaultPurgeSchedule = "@hourly"

// Janitor periodically purges expired cache entries.
type Janitor struct {
	cron   *cron.Cron
	purger Purger
	logger *slog.Logger
}

// NewJanitor schedules purges of p on schedule (standard cron syntax or descriptors
// such as @hourly).
func NewJanitor(p Purger, schedule string, logger *slog.Logger) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	j := &Janitor{
		cron:   cron.New(cron.WithLogger(logging.NewCronAdapter(logger))),
		purger: p,
		logger: logger,
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule purge %q: %w", schedule, err)
	}
	return j, nil
}

// Start starts the scheduler in its own goroutine.
func (j *Janitor) Start() { j.cron.Start() }

// Stop stops the scheduler and waits for a running purge to finish.
func (j *Janitor) Stop() { <-j.cron.Stop().Done() }

// Run purges once.
func (j *Janitor) Run(ctx context.Context) int64 {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.WarnContext(ctx, "cache purge failed", "err", err)
		return 0
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "purged expired cache entries", "count", n)
	}
	return n
}
