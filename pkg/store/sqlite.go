package store

import (
	"context"
	"database/sql"
	"iter"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	item   TEXT NOT NULL,
	source TEXT NOT NULL,
	metric TEXT NOT NULL,
	date   TEXT NOT NULL,
	value  INTEGER NOT NULL,
	PRIMARY KEY (item, source, metric, date)
);
CREATE INDEX IF NOT EXISTS idx_readings_date ON readings (date);
`

// SQLiteStore persists readings in a single-file SQLite database.
// The composite primary key enforces the uniqueness invariant; appends
// use ON CONFLICT upserts so the latest write wins.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "init schema in %s", path)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store. The batch runs in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, readings ...metrics.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	for _, r := range readings {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "begin append")
	}
	defer tx.Rollback()

	for _, r := range readings {
		query, args, err := sq.Insert("readings").
			Columns("item", "source", "metric", "date", "value").
			Values(r.Item, string(r.Source), r.Metric, r.Date, r.Value).
			Suffix("ON CONFLICT(item, source, metric, date) DO UPDATE SET value = excluded.value").
			ToSql()
		if err != nil {
			return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "build append")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "append %s/%s/%s", r.Item, r.Metric, r.Date)
		}
	}

	if err := tx.Commit(); err != nil {
		return pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "commit append")
	}
	return nil
}

// Series implements Store. Each range of the returned sequence issues a
// fresh query, so the sequence is restartable and reflects later appends.
func (s *SQLiteStore) Series(ctx context.Context, item string, src metrics.Source, metric string, w metrics.Window, now time.Time) iter.Seq2[metrics.Reading, error] {
	return func(yield func(metrics.Reading, error) bool) {
		builder := sq.Select("item", "source", "metric", "date", "value").
			From("readings").
			Where(sq.Eq{"item": item, "source": string(src), "metric": metric}).
			OrderBy("date ASC")
		if cutoff := w.Cutoff(now); !cutoff.IsZero() {
			builder = builder.Where(sq.GtOrEq{"date": cutoff.Format(metrics.DateLayout)})
		}

		query, args, err := builder.ToSql()
		if err != nil {
			yield(metrics.Reading{}, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "build series query"))
			return
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(metrics.Reading{}, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "query series %s/%s", item, metric))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r metrics.Reading
			var srcStr string
			if err := rows.Scan(&r.Item, &srcStr, &r.Metric, &r.Date, &r.Value); err != nil {
				yield(metrics.Reading{}, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "scan series row"))
				return
			}
			r.Source = metrics.Source(srcStr)
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(metrics.Reading{}, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "iterate series"))
		}
	}
}

// Latest implements Store. SQLite's bare-column semantics with MAX(date)
// select the value from the newest row per group.
func (s *SQLiteStore) Latest(ctx context.Context) ([]metrics.Reading, error) {
	query, args, err := sq.Select("item", "source", "metric", "MAX(date) AS date", "value").
		From("readings").
		GroupBy("item", "source", "metric").
		OrderBy("item ASC", "metric ASC").
		ToSql()
	if err != nil {
		return nil, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "build latest query")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "query latest")
	}
	defer rows.Close()

	var out []metrics.Reading
	for rows.Next() {
		var r metrics.Reading
		var srcStr string
		if err := rows.Scan(&r.Item, &srcStr, &r.Metric, &r.Date, &r.Value); err != nil {
			return nil, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "scan latest row")
		}
		r.Source = metrics.Source(srcStr)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, pperrors.Wrap(pperrors.ErrCodeStoreFailed, err, "iterate latest")
	}
	return out, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
