// Package report renders the Markdown dashboard from stored readings.
//
// Rendering is a pure function of the store contents and the run date:
// it never fetches data and never writes to the store. The output is
// byte-deterministic (rows sorted by item then metric, fixed table
// schema, stable window ordering) so regenerated dashboards diff
// cleanly in version control.
package report

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
	"github.com/pkgpulse/pkgpulse/pkg/store"
)

// Report is the assembled dashboard data, ready to render.
type Report struct {
	Title       string
	GeneratedAt string          // run date, DateLayout
	Rows        []Row           // latest reading per tracked metric, sorted
	Windows     []WindowSection // plot references, shortest window first
}

// Row is one line of the summary table.
type Row struct {
	Item   string
	Source metrics.Source
	Metric string
	Value  int64
	Date   string
}

// WindowSection references one pre-rendered trend plot.
type WindowSection struct {
	Window metrics.Window
	Image  string // relative path to the plot image
}

// Options configures report assembly.
type Options struct {
	Title    string // defaults to "Package Pulse Dashboard"
	PlotsDir string // directory the plot images live in, defaults to "plots"
}

// Build assembles a Report from the store's latest readings. Only
// readings belonging to a tracked item's metric set are included, so
// retired items drop off the dashboard without touching the store.
//
// Malformed stored readings are a fatal RENDER_FAILED error.
func Build(ctx context.Context, st store.Store, items []metrics.TrackedItem, now time.Time, opts Options) (*Report, error) {
	if opts.Title == "" {
		opts.Title = "Package Pulse Dashboard"
	}
	if opts.PlotsDir == "" {
		opts.PlotsDir = "plots"
	}

	latest, err := st.Latest(ctx)
	if err != nil {
		return nil, err
	}

	tracked := make(map[string]bool, len(items))
	for _, item := range items {
		for _, m := range item.MetricNames() {
			tracked[trackKey(item.Name, item.Source, m)] = true
		}
	}

	rep := &Report{
		Title:       opts.Title,
		GeneratedAt: metrics.Today(now),
	}
	for _, r := range latest {
		if !tracked[trackKey(r.Item, r.Source, r.Metric)] {
			continue
		}
		if err := r.Validate(); err != nil {
			return nil, pperrors.Wrap(pperrors.ErrCodeRenderFailed, err, "stored reading for %s/%s", r.Item, r.Metric)
		}
		rep.Rows = append(rep.Rows, Row{
			Item:   r.Item,
			Source: r.Source,
			Metric: r.Metric,
			Value:  r.Value,
			Date:   r.Date,
		})
	}

	for _, w := range metrics.Windows() {
		rep.Windows = append(rep.Windows, WindowSection{
			Window: w,
			Image:  path.Join(opts.PlotsDir, fmt.Sprintf("downloads_%s.png", w.Label)),
		})
	}
	return rep, nil
}

func trackKey(item string, src metrics.Source, metric string) string {
	return item + "\x00" + string(src) + "\x00" + metric
}

// Render writes the report as Markdown.
func Render(w io.Writer, rep *Report) error {
	if rep == nil {
		return pperrors.New(pperrors.ErrCodeRenderFailed, "nil report")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rep.Title)
	b.WriteString("Automated daily tracking of package downloads and repository traction.\n\n")
	fmt.Fprintf(&b, "**Last updated:** %s\n\n", rep.GeneratedAt)

	b.WriteString("## Tracked Items\n\n")
	if len(rep.Rows) == 0 {
		b.WriteString("_No readings recorded yet._\n\n")
	} else {
		b.WriteString("| Item | Source | Metric | Value | Date |\n")
		b.WriteString("|------|--------|--------|-------|------|\n")
		for _, row := range rep.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				row.Item, row.Source, row.Metric, metrics.FormatValue(row.Value), row.Date)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Trends\n")
	for _, sec := range rep.Windows {
		fmt.Fprintf(&b, "\n### %s\n\n![Downloads %s](%s)\n",
			sec.Window.Name, sec.Window.Name, sec.Image)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return pperrors.Wrap(pperrors.ErrCodeRenderFailed, err, "write report")
	}
	return nil
}
