// Package refresh wires up the cron job that periodically re-prices draft
// quotes whose materials are still missing prices.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Krank3n/QuoteMate-sub000/internal/pricing"
	"github.com/Krank3n/QuoteMate-sub000/internal/reconcile"
	"github.com/Krank3n/QuoteMate-sub000/internal/store"
)

// Refresher wraps robfig/cron and manages the re-pricing loop.
type Refresher struct {
	cron   *cron.Cron
	store  *store.Store
	lookup reconcile.Lookup
	delay  time.Duration
	spec   string // cron spec, e.g. "@every 6h"
	log    *slog.Logger
}

// New creates a Refresher firing on the given cron spec.
func New(st *store.Store, lookup reconcile.Lookup, delay time.Duration, spec string, log *slog.Logger) *Refresher {
	return &Refresher{
		cron:   cron.New(),
		store:  st,
		lookup: lookup,
		delay:  delay,
		spec:   spec,
		log:    log,
	}
}

// Start registers the job and starts the scheduler. Also runs one pass
// immediately so stale drafts don't wait for the first tick.
func (r *Refresher) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.spec, func() {
		r.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	r.cron.Start()
	r.log.Info("refresher started", "spec", r.spec)

	go r.runOnce(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (r *Refresher) Stop() {
	r.cron.Stop()
	r.log.Info("refresher stopped")
}

// runOnce re-prices every unpriced draft. A per-quote failure is logged and
// the loop moves on; an unavailable pricing source ends the cycle, since
// every remaining quote would hit the same wall.
func (r *Refresher) runOnce(ctx context.Context) {
	quotes, err := r.store.ListUnpricedDrafts()
	if err != nil {
		r.log.Error("refresh: list unpriced drafts", "err", err)
		return
	}
	if len(quotes) == 0 {
		return
	}
	r.log.Info("refresh pass starting", "quotes", len(quotes))

	rec := reconcile.New(r.lookup, reconcile.WithDelay(r.delay))
	for i := range quotes {
		q := &quotes[i]
		summary, runErr := rec.Run(ctx, q.Materials)

		if summary.Fetched > 0 {
			pricing.Recalculate(q)
			q.Touch()
			if err := r.store.SaveQuote(q); err != nil {
				r.log.Error("refresh: save quote", "quote", q.ID, "err", err)
			}
		}

		if runErr != nil {
			r.log.Warn("refresh: reconciliation stopped", "quote", q.ID, "err", runErr,
				"fetched", summary.Fetched, "skipped", summary.Skipped, "failed", summary.Failed)
			if errors.Is(runErr, reconcile.ErrUnavailable) || ctx.Err() != nil {
				return
			}
			continue
		}

		r.log.Info("refresh: quote repriced", "quote", q.ID,
			"fetched", summary.Fetched, "skipped", summary.Skipped, "failed", summary.Failed,
			"outcome", string(summary.Outcome()))
	}
}
