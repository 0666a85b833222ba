// Package reconcile fills in material prices from an external pricing source.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Krank3n/QuoteMate-sub000/internal/quote"
)

// ErrUnavailable marks the pricing source as unreachable for the whole pass.
// Lookups wrap it when continuing the batch is meaningless; any other lookup
// error only fails the single item it occurred on.
var ErrUnavailable = errors.New("pricing source unavailable")

// Result is the outcome of a single price lookup. Found reports whether the
// source had a price at all; "not found" is a normal outcome, not an error.
type Result struct {
	Found  bool
	Price  float64
	Name   string // corrected display name, optional
	ItemID string // external catalog identifier, optional
}

// Lookup resolves a free-text search term to a price.
type Lookup interface {
	Price(ctx context.Context, term string) (Result, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, term string) (Result, error)

// Price implements Lookup.
func (f LookupFunc) Price(ctx context.Context, term string) (Result, error) {
	return f(ctx, term)
}

// Summary tallies a reconciliation pass.
type Summary struct {
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Outcome buckets a summary for user-facing reporting.
type Outcome string

const (
	OutcomeEmpty       Outcome = "empty"
	OutcomeNothingToDo Outcome = "already_priced"
	OutcomeAllFailed   Outcome = "all_failed"
	OutcomeSuccess     Outcome = "success"
	OutcomePartial     Outcome = "partial"
)

// Outcome maps the counters onto the reporting bucket the caller's message
// depends on.
func (s Summary) Outcome() Outcome {
	switch {
	case s.Fetched == 0 && s.Skipped == 0 && s.Failed == 0:
		return OutcomeEmpty
	case s.Fetched == 0 && s.Failed == 0:
		return OutcomeNothingToDo
	case s.Fetched == 0:
		return OutcomeAllFailed
	case s.Failed == 0:
		return OutcomeSuccess
	default:
		return OutcomePartial
	}
}

// Message renders the user-facing text for the summary's outcome bucket.
func (s Summary) Message() string {
	switch s.Outcome() {
	case OutcomeEmpty:
		return "No materials to price."
	case OutcomeNothingToDo:
		return "All materials already have prices."
	case OutcomeAllFailed:
		return fmt.Sprintf("No prices found for %d material(s).", s.Failed)
	case OutcomeSuccess:
		return fmt.Sprintf("Fetched prices for %d material(s).", s.Fetched)
	default:
		return fmt.Sprintf("Fetched prices for %d material(s); %d could not be priced.", s.Fetched, s.Failed)
	}
}

// ProgressFunc is invoked after each material is processed with the index
// just handled, the (partially updated) list and the running counters.
type ProgressFunc func(index int, materials []quote.Material, s Summary)

// Reconciler runs throttled, strictly sequential price lookups over a
// material list. One lookup is in flight at a time; the delay between
// lookups keeps the external source's rate limits happy.
type Reconciler struct {
	lookup     Lookup
	delay      time.Duration
	onProgress ProgressFunc
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDelay overrides the pause applied after each attempted lookup.
func WithDelay(d time.Duration) Option {
	return func(r *Reconciler) { r.delay = d }
}

// WithProgress registers a callback fired after every processed material.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Reconciler) { r.onProgress = fn }
}

const defaultDelay = 500 * time.Millisecond

// New builds a Reconciler around a pricing lookup.
func New(lookup Lookup, opts ...Option) *Reconciler {
	r := &Reconciler{lookup: lookup, delay: defaultDelay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run attempts to fill in unit prices for every material, in list order,
// mutating the slice in place. It returns the counters accumulated so far
// together with any operation-level error.
//
// A material is skipped only when it has a positive price that was not
// manually overridden; overridden prices are always re-fetched. "Not found"
// and per-item lookup errors fail that item and the pass continues. An
// ErrUnavailable lookup error or context cancellation stops the pass, and
// updates already applied to the list are kept.
func (r *Reconciler) Run(ctx context.Context, materials []quote.Material) (Summary, error) {
	var s Summary
	for i := range materials {
		if err := ctx.Err(); err != nil {
			return s, err
		}

		m := &materials[i]
		if m.Price > 0 && !m.ManualPriceOverride {
			s.Skipped++
			r.progress(i, materials, s)
			continue
		}

		res, err := r.lookup.Price(ctx, m.LookupTerm())
		switch {
		case errors.Is(err, ErrUnavailable):
			return s, fmt.Errorf("lookup %q: %w", m.LookupTerm(), err)
		case err != nil, !res.Found:
			s.Failed++
		default:
			m.Price = res.Price
			m.TotalPrice = quote.Round2(m.Quantity * res.Price)
			m.ManualPriceOverride = false
			if res.Name != "" {
				m.Name = res.Name
			}
			if res.ItemID != "" {
				m.CatalogID = res.ItemID
			}
			s.Fetched++
		}
		r.progress(i, materials, s)

		// Throttle only after an actual lookup; skips sent nothing upstream.
		if i < len(materials)-1 {
			if err := sleep(ctx, r.delay); err != nil {
				return s, err
			}
		}
	}
	return s, nil
}

func (r *Reconciler) progress(i int, materials []quote.Material, s Summary) {
	if r.onProgress != nil {
		r.onProgress(i, materials, s)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
