// Package collect orchestrates one batch run: fetch readings for every
// tracked item, then upsert them into the time-series store.
//
// Fetches run concurrently with bounded parallelism; store writes go
// through a single writer goroutine so the (item, source, metric, date)
// uniqueness invariant never races. A failing or timed-out source is
// logged and skipped (prior values remain in the store) while a store
// write failure aborts the run before any report is rendered.
package collect

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
	"github.com/pkgpulse/pkgpulse/pkg/source"
	"github.com/pkgpulse/pkgpulse/pkg/store"
)

const (
	// DefaultConcurrency bounds parallel fetches across sources.
	DefaultConcurrency = 4

	// DefaultItemTimeout caps one item's fetch; a timed-out item is a
	// failure for that item only.
	DefaultItemTimeout = 30 * time.Second
)

// Runner executes batch collection runs.
//
// The Runner is stateless except for its collaborators; multiple
// goroutines can safely share one Runner.
type Runner struct {
	Store    store.Store
	Fetchers map[metrics.Source]source.Fetcher
	Logger   *log.Logger

	// Concurrency bounds parallel fetches. Zero means DefaultConcurrency.
	Concurrency int

	// ItemTimeout caps a single item's fetch. Zero means DefaultItemTimeout.
	ItemTimeout time.Duration
}

// NewRunner creates a runner with the given store and fetcher set.
// If logger is nil, log.Default() is used.
func NewRunner(st store.Store, fetchers map[metrics.Source]source.Fetcher, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:    st,
		Fetchers: fetchers,
		Logger:   logger,
	}
}

// ItemOutcome records what happened to one tracked item during a run.
type ItemOutcome struct {
	Item     metrics.TrackedItem
	Readings int   // readings appended for this item
	Err      error // nil on success
}

// Result summarizes a collection run.
type Result struct {
	Outcomes []ItemOutcome // one per tracked item, in input order
	Appended int           // total readings written
	Failed   int           // items that produced an error
	Duration time.Duration
}

// Run fetches readings for all items and appends them to the store.
//
// Per-source failures are recorded in the result and logged; they never
// fail the run. A store write failure is fatal and returned as a
// STORE_FAILED error so callers don't render a report from a
// partially-written store.
func (r *Runner) Run(ctx context.Context, items []metrics.TrackedItem, now time.Time) (*Result, error) {
	start := time.Now()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	itemTimeout := r.ItemTimeout
	if itemTimeout <= 0 {
		itemTimeout = DefaultItemTimeout
	}

	result := &Result{Outcomes: make([]ItemOutcome, len(items))}

	type batch struct {
		index    int
		readings []metrics.Reading
	}
	batches := make(chan batch)

	// Single writer serializes all store appends.
	writerDone := make(chan error, 1)
	go func() {
		for b := range batches {
			if err := r.Store.Append(ctx, b.readings...); err != nil {
				result.Outcomes[b.index].Err = err
				writerDone <- err
				// Drain so fetchers don't block on a dead writer.
				for range batches {
				}
				return
			}
			result.Outcomes[b.index].Readings = len(b.readings)
		}
		writerDone <- nil
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		result.Outcomes[i].Item = item

		fetcher, ok := r.Fetchers[item.Source]
		if !ok {
			result.Outcomes[i].Err = pperrors.New(pperrors.ErrCodeInvalidSource, "no fetcher for source %q", item.Source)
			continue
		}

		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, itemTimeout)
			defer cancel()

			readings, err := fetcher.Fetch(fetchCtx, item, now)
			if err != nil {
				// Non-fatal: record and move on to the next item.
				result.Outcomes[i].Err = err
				r.Logger.Warn("fetch failed",
					"item", item.Name,
					"source", item.Source,
					"error", err)
				return nil
			}
			if len(readings) == 0 {
				r.Logger.Debug("no readings", "item", item.Name, "source", item.Source)
				return nil
			}

			select {
			case batches <- batch{index: i, readings: readings}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	groupErr := g.Wait()
	close(batches)
	storeErr := <-writerDone

	if storeErr != nil {
		return nil, pperrors.Wrap(pperrors.ErrCodeStoreFailed, storeErr, "aborting run")
	}
	if groupErr != nil && ctx.Err() != nil {
		return nil, groupErr
	}

	for _, o := range result.Outcomes {
		if o.Err != nil {
			result.Failed++
		}
		result.Appended += o.Readings
	}
	result.Duration = time.Since(start)

	r.Logger.Info("collection complete",
		"items", len(items),
		"appended", result.Appended,
		"failed", result.Failed,
		"duration", result.Duration.Round(time.Millisecond))

	return result, nil
}
