// Package pkg provides the core libraries for pkgpulse metrics collection.
//
// # Overview
//
// pkgpulse tracks adoption metrics for a project's packages, repositories,
// and communities, and renders them as a Markdown dashboard. The pkg
// directory is organized into three main areas:
//
//  1. Domain logic: [metrics], [source], [collect], [report]
//  2. Persistence: [store]
//  3. Infrastructure: [cache], [httputil], [errors], [integrations]
//
// # Architecture
//
// The typical data flow through pkgpulse:
//
//	PyPI / npm / GitHub / Discord APIs
//	         ↓
//	    [integrations] package (HTTP clients with caching and retries)
//	         ↓
//	    [source] package (adapt API responses to metric readings)
//	         ↓
//	    [collect] package (bounded-parallel batch runs)
//	         ↓
//	    [store] package (time series keyed by item, source, metric, date)
//	         ↓
//	    [report] package (deterministic Markdown dashboard)
//
// # Quick Start
//
// Collect readings and render a dashboard:
//
//	backend, _ := cache.NewFileCache("/tmp/pkgpulse-cache")
//	fetchers := source.NewRegistry(backend, source.Options{CacheTTL: 6 * time.Hour})
//	st, _ := store.OpenSQLite("data/pulse.db")
//	defer st.Close()
//
//	runner := collect.NewRunner(st, fetchers, log.Default())
//	items := []metrics.TrackedItem{{Name: "armoriq-sdk", Source: metrics.SourcePyPI}}
//	result, _ := runner.Run(ctx, items, time.Now())
//
//	rep, _ := report.Build(ctx, st, items, time.Now(), report.Options{})
//	report.Render(os.Stdout, rep)
//
// # Main Packages
//
// [metrics] - Domain model: sources, metric names, readings, tracked items,
// and the fixed trend window set (7d, 14d, 30d, 365d, all).
//
// [source] - Fetcher implementations per source. Download sources return
// full daily history; snapshot sources return counters dated the run day.
//
// [collect] - Batch orchestration with bounded parallelism and a single
// store writer. Source failures are per-item; store failures abort the run.
//
// [store] - Time-series persistence with SQLite and CSV backends. Appends
// are idempotent upserts on the (item, source, metric, date) key.
//
// [report] - Markdown dashboard rendering, a pure function of the store
// contents and run date.
//
// [integrations] - HTTP clients for pypistats.org, api.npmjs.org, the
// GitHub API, and the Discord invite API, sharing one cached client core.
//
// [cache] - Response cache backends: file (CLI default), Redis, and null.
//
// [httputil] - Retry with exponential backoff for transient HTTP failures.
//
// [errors] - Coded errors shared across all packages.
//
// [metrics]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/metrics
// [source]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/source
// [collect]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/collect
// [store]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/store
// [report]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/report
// [integrations]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/pkgpulse/pkgpulse/pkg/errors
package pkg
