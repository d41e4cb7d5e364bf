package report

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

// stubStore serves a fixed Latest() answer.
type stubStore struct {
	latest []metrics.Reading
	err    error
}

func (s *stubStore) Append(ctx context.Context, readings ...metrics.Reading) error { return nil }

func (s *stubStore) Series(ctx context.Context, item string, src metrics.Source, metric string, w metrics.Window, now time.Time) iter.Seq2[metrics.Reading, error] {
	return func(yield func(metrics.Reading, error) bool) {}
}

func (s *stubStore) Latest(ctx context.Context) ([]metrics.Reading, error) {
	return s.latest, s.err
}

func (s *stubStore) Close() error { return nil }

var testNow = time.Date(2026, 2, 20, 15, 0, 0, 0, time.UTC)

func TestBuildFiltersUntrackedReadings(t *testing.T) {
	st := &stubStore{latest: []metrics.Reading{
		{Item: "armoriq-sdk", Source: metrics.SourcePyPI, Metric: metrics.MetricDownloads, Value: 3465, Date: "2026-02-20"},
		{Item: "retired-pkg", Source: metrics.SourcePyPI, Metric: metrics.MetricDownloads, Value: 42, Date: "2025-11-01"},
	}}
	items := []metrics.TrackedItem{{Name: "armoriq-sdk", Source: metrics.SourcePyPI}}

	rep, err := Build(context.Background(), st, items, testNow, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(rep.Rows) != 1 || rep.Rows[0].Item != "armoriq-sdk" {
		t.Errorf("rows = %+v, want only armoriq-sdk", rep.Rows)
	}
	if rep.Title != "Package Pulse Dashboard" {
		t.Errorf("default title = %q", rep.Title)
	}
	if rep.GeneratedAt != "2026-02-20" {
		t.Errorf("generated at = %q", rep.GeneratedAt)
	}
	if len(rep.Windows) != 5 {
		t.Fatalf("windows = %d, want 5", len(rep.Windows))
	}
	if rep.Windows[0].Image != "plots/downloads_7d.png" {
		t.Errorf("first plot = %q", rep.Windows[0].Image)
	}
}

func TestBuildFiltersUntrackedMetric(t *testing.T) {
	st := &stubStore{latest: []metrics.Reading{
		{Item: "armoriq/armoriq-sdk", Source: metrics.SourceGitHub, Metric: metrics.MetricStars, Value: 1280, Date: "2026-02-20"},
		{Item: "armoriq/armoriq-sdk", Source: metrics.SourceGitHub, Metric: metrics.MetricOpenIssues, Value: 17, Date: "2026-02-20"},
	}}
	items := []metrics.TrackedItem{{
		Name:    "armoriq/armoriq-sdk",
		Source:  metrics.SourceGitHub,
		Metrics: []string{metrics.MetricStars},
	}}

	rep, err := Build(context.Background(), st, items, testNow, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(rep.Rows) != 1 || rep.Rows[0].Metric != metrics.MetricStars {
		t.Errorf("rows = %+v, want only stars", rep.Rows)
	}
}

func TestBuildMalformedReadingFails(t *testing.T) {
	st := &stubStore{latest: []metrics.Reading{
		{Item: "armoriq-sdk", Source: metrics.SourcePyPI, Metric: metrics.MetricDownloads, Value: -1, Date: "2026-02-20"},
	}}
	items := []metrics.TrackedItem{{Name: "armoriq-sdk", Source: metrics.SourcePyPI}}

	_, err := Build(context.Background(), st, items, testNow, Options{})
	if pperrors.GetCode(err) != pperrors.ErrCodeRenderFailed {
		t.Errorf("error = %v, want RENDER_FAILED", err)
	}
}

func TestBuildPropagatesStoreError(t *testing.T) {
	storeErr := pperrors.New(pperrors.ErrCodeStoreFailed, "db locked")
	st := &stubStore{err: storeErr}

	_, err := Build(context.Background(), st, nil, testNow, Options{})
	if !errors.Is(err, storeErr) {
		t.Errorf("error = %v, want the store error", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	st := &stubStore{latest: []metrics.Reading{
		{Item: "armoriq-sdk", Source: metrics.SourcePyPI, Metric: metrics.MetricDownloads, Value: 3465, Date: "2026-02-20"},
		{Item: "armoriq/armoriq-sdk", Source: metrics.SourceGitHub, Metric: metrics.MetricStars, Value: 1280, Date: "2026-02-20"},
	}}
	items := []metrics.TrackedItem{
		{Name: "armoriq-sdk", Source: metrics.SourcePyPI},
		{Name: "armoriq/armoriq-sdk", Source: metrics.SourceGitHub, Metrics: []string{metrics.MetricStars}},
	}

	rep, err := Build(context.Background(), st, items, testNow, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf strings.Builder
	if err := Render(&buf, rep); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Package Pulse Dashboard\n",
		"**Last updated:** 2026-02-20\n",
		"| Item | Source | Metric | Value | Date |\n",
		"| armoriq-sdk | pypi | Downloads | 3,465 | 2026-02-20 |\n",
		"| armoriq/armoriq-sdk | github | Stars | 1,280 | 2026-02-20 |\n",
		"### Last 7 Days\n",
		"(plots/downloads_7d.png)",
		"### All Time\n",
		"(plots/downloads_all.png)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	st := &stubStore{latest: []metrics.Reading{
		{Item: "armoriq-sdk", Source: metrics.SourcePyPI, Metric: metrics.MetricDownloads, Value: 3465, Date: "2026-02-20"},
	}}
	items := []metrics.TrackedItem{{Name: "armoriq-sdk", Source: metrics.SourcePyPI}}

	render := func() string {
		rep, err := Build(context.Background(), st, items, testNow, Options{})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		var buf strings.Builder
		if err := Render(&buf, rep); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return buf.String()
	}

	first := render()
	for i := 0; i < 3; i++ {
		if got := render(); got != first {
			t.Fatalf("render #%d differs from the first", i+2)
		}
	}
}

func TestRenderEmptyStore(t *testing.T) {
	rep, err := Build(context.Background(), &stubStore{}, nil, testNow, Options{Title: "Empty"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf strings.Builder
	if err := Render(&buf, rep); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "_No readings recorded yet._") {
		t.Errorf("empty report missing placeholder:\n%s", buf.String())
	}
}
