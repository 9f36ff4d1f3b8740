// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package maintenance schedules background housekeeping jobs.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultSchedule = "@daily"
	defaultGrace    = 30 * 24 * time.Hour
)

// Purger removes verification records that expired more than grace ago.
type Purger interface {
	PurgeExpired(ctx context.Context, grace time.Duration) (int64, error)
}

// Cleaner runs the token purge on a cron schedule.
type Cleaner struct {
	purger   Purger
	cron     *cron.Cron
	schedule string
	grace    time.Duration
	timeout  time.Duration
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron specification. An empty spec disables the job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		cleaner.schedule = spec
	}
}

// WithGrace sets how long expired records are kept.
func WithGrace(grace time.Duration) Option {
	return func(cleaner *Cleaner) {
		if grace > 0 {
			cleaner.grace = grace
		}
	}
}

// NewCleaner constructs a Cleaner with a daily schedule and a 30 day grace period.
func NewCleaner(purger Purger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		purger:   purger,
		schedule: defaultSchedule,
		grace:    defaultGrace,
		timeout:  time.Minute,
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.purger == nil || c.schedule == "" {
		slog.Info("token purge disabled")
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if _, err := c.RunOnce(ctx); err != nil {
			slog.Warn("token purge failed", "error", err)
		}
	}); err != nil {
		return err
	}

	slog.Info("token purge scheduled", "schedule", c.schedule, "grace", c.grace)
	c.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}

// RunOnce purges expired records immediately.
func (c *Cleaner) RunOnce(ctx context.Context) (int64, error) {
	n, err := c.purger.PurgeExpired(ctx, c.grace)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("purged expired verifications", "count", n)
	}
	return n, nil
}
