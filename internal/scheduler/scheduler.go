// Package scheduler periodically re-runs enrichment over a bounded batch of
// target companies. The loop only suspends at sleep boundaries and takes its
// clock from the config, so tests run without wall-clock delays.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/finprospect/internal/enrich"
	"github.com/sells-group/finprospect/internal/store"
)

// Config controls the refresh loop.
type Config struct {
	Interval    time.Duration // time between batch runs, default 6h
	WarmUp      time.Duration // delay before the first run, default 1m
	BatchSize   int           // companies per batch, default 20
	Delay       time.Duration // courtesy delay between companies, default 500ms
	MinTurnover *float64      // optional turnover band for batch selection
	MaxTurnover *float64
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 6 * time.Hour
	}
	if c.WarmUp <= 0 {
		c.WarmUp = time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.Delay <= 0 {
		c.Delay = 500 * time.Millisecond
	}
	return c
}

// Scheduler drives periodic batch refresh.
type Scheduler struct {
	cfg   Config
	store store.Store
	orch  *enrich.Orchestrator
	sleep func(ctx context.Context, d time.Duration) error // injectable for testing
}

// New creates a scheduler.
func New(cfg Config, st store.Store, orch *enrich.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:   cfg.withDefaults(),
		store: st,
		orch:  orch,
		sleep: sleepCtx,
	}
}

// WithSleep replaces the sleep function for testing.
func (s *Scheduler) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Scheduler {
	s.sleep = fn
	return s
}

// Run blocks until ctx is cancelled, refreshing one batch per interval after
// an initial warm-up delay. Per-company failures are logged, never fatal.
func (s *Scheduler) Run(ctx context.Context) error {
	zap.L().Info("scheduler: starting",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("warm_up", s.cfg.WarmUp),
		zap.Int("batch_size", s.cfg.BatchSize),
	)

	if err := s.sleep(ctx, s.cfg.WarmUp); err != nil {
		return nil
	}

	for {
		s.runBatch(ctx)
		if err := s.sleep(ctx, s.cfg.Interval); err != nil {
			return nil
		}
	}
}

// runBatch refreshes one batch of companies sequentially with a courtesy
// delay between enrichments, so a batch never hammers the upstream sources.
func (s *Scheduler) runBatch(ctx context.Context) {
	page, err := s.store.QueryCompanies(ctx, store.Filter{
		MinTurnover: s.cfg.MinTurnover,
		MaxTurnover: s.cfg.MaxTurnover,
		Page:        1,
		PageSize:    s.cfg.BatchSize,
		SortBy:      store.SortByTurnover,
		SortDesc:    true,
	})
	if err != nil {
		zap.L().Error("scheduler: batch selection failed", zap.Error(err))
		return
	}

	refreshed, failed := 0, 0
	for i, c := range page.Companies {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.orch.Enrich(ctx, c.BusinessID); err != nil {
			failed++
			zap.L().Warn("scheduler: refresh failed",
				zap.String("business_id", c.BusinessID),
				zap.Error(err),
			)
		} else {
			refreshed++
		}

		if i < len(page.Companies)-1 {
			if err := s.sleep(ctx, s.cfg.Delay); err != nil {
				return
			}
		}
	}

	zap.L().Info("scheduler: batch complete",
		zap.Int("refreshed", refreshed),
		zap.Int("failed", failed),
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
