// Package store persists metric readings as a time series keyed by
// (item, source, metric, date).
//
// Two backends are available:
//   - SQLite: the default, a single-file database
//   - CSV: the flat data/downloads.csv format, for repos that keep their
//     history in version control
//
// Both backends guarantee the uniqueness invariant: appending a reading
// whose key already exists overwrites the stored value instead of
// duplicating it, so re-running a day is safe.
package store

import (
	"context"
	"iter"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

// Store is the persistence interface for metric readings.
type Store interface {
	// Append upserts readings. For each (item, source, metric, date) key
	// the latest write wins. The batch is applied atomically; a failure
	// leaves the store unchanged.
	Append(ctx context.Context, readings ...metrics.Reading) error

	// Series returns the readings for one metric of one item inside the
	// window, ordered by date ascending. The sequence is lazy, finite,
	// and restartable: ranging it again re-reads the store.
	Series(ctx context.Context, item string, src metrics.Source, metric string, w metrics.Window, now time.Time) iter.Seq2[metrics.Reading, error]

	// Latest returns the newest reading per (item, source, metric) key,
	// sorted by item name then metric name.
	Latest(ctx context.Context) ([]metrics.Reading, error)

	// Close releases backend resources, flushing pending state.
	Close() error
}
