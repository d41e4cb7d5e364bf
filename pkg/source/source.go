// Package source adapts the integration clients to the collector's
// Fetcher contract: given a tracked item, produce zero or more metric
// readings for recording.
//
// Download sources (pypi, npm) return the full daily history their API
// serves; the store's idempotent append deduplicates days already
// recorded. Snapshot sources (github, discord) return counters dated
// "today".
package source

import (
	"context"
	"errors"
	"time"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/integrations"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

// Fetcher produces readings for tracked items of one source.
//
// Implementations must be safe for concurrent use; the collector fans
// items out across a bounded worker pool.
type Fetcher interface {
	// Source identifies which tracked items this fetcher handles.
	Source() metrics.Source

	// Fetch returns readings for the item, or a coded fetch error.
	// A failure affects only this item; the collector logs it and
	// continues with the rest of the batch.
	Fetch(ctx context.Context, item metrics.TrackedItem, now time.Time) ([]metrics.Reading, error)
}

// classify maps integration and context errors onto fetch error codes so
// the collector can treat them uniformly as non-fatal.
func classify(err error, item metrics.TrackedItem) error {
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return pperrors.Wrap(pperrors.ErrCodeFetchNotFound, err, "%s/%s", item.Source, item.Name)
	case errors.Is(err, integrations.ErrRateLimited):
		return pperrors.Wrap(pperrors.ErrCodeRateLimited, err, "%s/%s", item.Source, item.Name)
	case errors.Is(err, context.DeadlineExceeded):
		return pperrors.Wrap(pperrors.ErrCodeFetchTimeout, err, "%s/%s", item.Source, item.Name)
	default:
		return pperrors.Wrap(pperrors.ErrCodeFetchFailed, err, "%s/%s", item.Source, item.Name)
	}
}
