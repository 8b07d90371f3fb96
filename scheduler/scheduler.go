// Package scheduler runs background maintenance over the memory
// service. The only job today is the janitor: a cron-driven sweep that
// compacts sessions left idle beyond a configured duration, keeping
// long-running deployments from accumulating unbounded history.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/attachehq/attache/logging"
	"github.com/attachehq/attache/memory"
)

// DefaultSchedule sweeps every five minutes.
const DefaultSchedule = "*/5 * * * *"

// DefaultIdleAfter is how long a session may sit untouched before a
// sweep compacts it.
const DefaultIdleAfter = 30 * time.Minute

// DefaultSweepTimeout bounds a single sweep.
const DefaultSweepTimeout = time.Minute

// Options configures a Janitor.
type Options struct {
	// Schedule is the cron expression driving sweeps. Defaults to
	// DefaultSchedule.
	Schedule string

	// IdleAfter is the inactivity threshold for compaction. Defaults to
	// DefaultIdleAfter. Zero treats every session as idle.
	IdleAfter time.Duration

	// SweepTimeout bounds each scheduled sweep. Defaults to
	// DefaultSweepTimeout.
	SweepTimeout time.Duration

	// Logger receives sweep events.
	Logger logging.Logger
}

// Janitor compacts idle sessions on a cron schedule. Compaction uses
// the memory service's default strategy, so a sweep is a no-op for
// sessions already within bounds.
type Janitor struct {
	mem       *memory.Service
	schedule  string
	idleAfter time.Duration
	timeout   time.Duration
	logger    logging.Logger

	cron *cron.Cron
}

// NewJanitor creates a janitor over the given memory service.
func NewJanitor(mem *memory.Service, optFns ...func(o *Options)) *Janitor {
	opts := Options{
		Schedule:     DefaultSchedule,
		IdleAfter:    DefaultIdleAfter,
		SweepTimeout: DefaultSweepTimeout,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Janitor{
		mem:       mem,
		schedule:  opts.Schedule,
		idleAfter: opts.IdleAfter,
		timeout:   opts.SweepTimeout,
		logger:    opts.Logger,
	}
}

// Start registers the sweep with a cron runner and starts it.
func (j *Janitor) Start() error {
	if j.cron != nil {
		return errors.New("janitor already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(j.schedule, j.run); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", j.schedule, err)
	}

	j.cron = c
	j.cron.Start()

	j.logger.Info("scheduler.start",
		"schedule", j.schedule,
		"idle_after", j.idleAfter.String(),
	)

	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}

	<-j.cron.Stop().Done()
	j.cron = nil

	j.logger.Info("scheduler.stop")
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.Sweep(ctx); err != nil {
		j.logger.Error("scheduler.sweep.error", "error", err.Error())
	}
}

// Sweep compacts every session idle longer than the configured
// threshold and returns how many sessions actually shrank. Individual
// failures are logged and skipped; only context cancellation aborts the
// sweep.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-j.idleAfter)
	compacted := 0

	for _, id := range j.mem.Sessions() {
		if err := ctx.Err(); err != nil {
			return compacted, err
		}

		sess, err := j.mem.Store().Get(id)
		if err != nil {
			// Deleted between listing and lookup.
			continue
		}

		if sess.LastActivity().After(cutoff) {
			continue
		}

		removed, err := j.mem.Compact(ctx, id)
		if err != nil {
			j.logger.Warn("scheduler.compact.failed",
				"session_id", id,
				"error", err.Error(),
			)
			continue
		}

		if removed > 0 {
			compacted++
			j.logger.Info("scheduler.compact",
				"session_id", id,
				"removed", removed,
			)
		}
	}

	return compacted, nil
}
