package store

import (
	"context"
	"encoding/csv"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

var csvHeader = []string{"date", "item", "source", "metric", "value"}

// CSVStore persists readings in a flat CSV file, the format used by
// dashboards that keep their history in version control.
//
// The whole file is loaded at open and rewritten atomically (temp file +
// rename) on every append batch, with rows sorted for stable diffs.
type CSVStore struct {
	mu   sync.RWMutex
	path string
	data map[string]metrics.Reading // keyed by Reading.Key()
}

// OpenCSV loads (or initializes) the CSV store at path. Parent
// directories are created as needed.
func OpenCSV(path string) (*CSVStore, error) {
	s := &CSVStore{
		path: path,
		data: make(map[string]metrics.Reading),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVStore) load() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "open %s", s.path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "read %s", s.path)
		}
		if first {
			first = false
			continue // header
		}
		if len(rec) != len(csvHeader) {
			return pperrors.New(pperrors.ErrCodeStoreFailed, "%s: row has %d fields, want %d", s.path, len(rec), len(csvHeader))
		}
		value, err := strconv.ParseInt(rec[4], 10, 64)
		if err != nil {
			return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "%s: bad value %q", s.path, rec[4])
		}
		reading := metrics.Reading{
			Date:   rec[0],
			Item:   rec[1],
			Source: metrics.Source(rec[2]),
			Metric: rec[3],
			Value:  value,
		}
		s.data[reading.Key()] = reading
	}
}

// Append implements Store. The in-memory map is updated and the file
// rewritten; on a write failure the previous map state is restored.
func (s *CSVStore) Append(ctx context.Context, readings ...metrics.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	for _, r := range readings {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := make(map[string]*metrics.Reading, len(readings))
	for _, r := range readings {
		key := r.Key()
		if _, seen := replaced[key]; !seen {
			if prev, ok := s.data[key]; ok {
				p := prev
				replaced[key] = &p
			} else {
				replaced[key] = nil
			}
		}
		s.data[key] = r
	}

	if err := s.flushLocked(); err != nil {
		for key, prev := range replaced {
			if prev == nil {
				delete(s.data, key)
			} else {
				s.data[key] = *prev
			}
		}
		return err
	}
	return nil
}

func (s *CSVStore) flushLocked() error {
	rows := make([]metrics.Reading, 0, len(s.data))
	for _, r := range s.data {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Item != b.Item {
			return a.Item < b.Item
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		return a.Date < b.Date
	})

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".downloads-*.csv")
	if err != nil {
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "write header")
	}
	for _, r := range rows {
		rec := []string{r.Date, r.Item, string(r.Source), r.Metric, strconv.FormatInt(r.Value, 10)}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "flush rows")
	}
	if err := tmp.Close(); err != nil {
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "replace %s", s.path)
	}
	return nil
}

// Series implements Store. Each range takes a fresh snapshot of the
// matching readings, so the sequence is restartable.
func (s *CSVStore) Series(ctx context.Context, item string, src metrics.Source, metric string, w metrics.Window, now time.Time) iter.Seq2[metrics.Reading, error] {
	return func(yield func(metrics.Reading, error) bool) {
		s.mu.RLock()
		var rows []metrics.Reading
		for _, r := range s.data {
			if r.Item != item || r.Source != src || r.Metric != metric {
				continue
			}
			if !w.Contains(r.Date, now) {
				continue
			}
			rows = append(rows, r)
		}
		s.mu.RUnlock()

		sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
		for _, r := range rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Latest implements Store.
func (s *CSVStore) Latest(ctx context.Context) ([]metrics.Reading, error) {
	s.mu.RLock()
	latest := make(map[string]metrics.Reading)
	for _, r := range s.data {
		groupKey := r.Item + "\x00" + string(r.Source) + "\x00" + r.Metric
		if prev, ok := latest[groupKey]; !ok || r.Date > prev.Date {
			latest[groupKey] = r
		}
	}
	s.mu.RUnlock()

	out := make([]metrics.Reading, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Item != out[j].Item {
			return out[i].Item < out[j].Item
		}
		return out[i].Metric < out[j].Metric
	})
	return out, nil
}

// Close implements Store. All writes are flushed eagerly, so Close has
// nothing left to do.
func (s *CSVStore) Close() error {
	return nil
}

// Ensure CSVStore implements Store.
var _ Store = (*CSVStore)(nil)
