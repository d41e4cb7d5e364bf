// Package metrics defines the domain model for pkgpulse: tracked items,
// metric readings, and trailing time windows.
//
// A Reading is one dated integer value for one metric of one item. The
// store guarantees at most one Reading per (item, source, metric, date)
// key; re-recording the same key overwrites the previous value.
package metrics

import (
	"fmt"
	"time"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
)

// DateLayout is the canonical date format for readings ("2006-01-02").
const DateLayout = "2006-01-02"

// Source identifies where a metric reading comes from.
type Source string

// Supported metric sources.
const (
	SourcePyPI    Source = "pypi"
	SourceNPM     Source = "npm"
	SourceGitHub  Source = "github"
	SourceDiscord Source = "discord"
)

// Sources lists all supported sources in a stable order.
func Sources() []Source {
	return []Source{SourcePyPI, SourceNPM, SourceGitHub, SourceDiscord}
}

// ParseSource converts a string to a Source, validating it.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourcePyPI, SourceNPM, SourceGitHub, SourceDiscord:
		return Source(s), nil
	}
	return "", pperrors.New(pperrors.ErrCodeInvalidSource, "unknown source %q", s)
}

// Valid reports whether s is a supported source.
func (s Source) Valid() bool {
	_, err := ParseSource(string(s))
	return err == nil
}

// String returns the source identifier.
func (s Source) String() string { return string(s) }

// Metric names recorded by the built-in fetchers.
const (
	MetricDownloads     = "Downloads"
	MetricStars         = "Stars"
	MetricForks         = "Forks"
	MetricOpenIssues    = "Open Issues"
	MetricWatchers      = "Watchers"
	MetricTotalMembers  = "Total Members"
	MetricMembersOnline = "Members Online"
)

// DefaultMetrics returns the metric names collected for a source when the
// configuration doesn't narrow them.
func DefaultMetrics(s Source) []string {
	switch s {
	case SourcePyPI, SourceNPM:
		return []string{MetricDownloads}
	case SourceGitHub:
		return []string{MetricStars, MetricForks, MetricOpenIssues, MetricWatchers}
	case SourceDiscord:
		return []string{MetricTotalMembers, MetricMembersOnline}
	}
	return nil
}

// Reading is one dated value for one metric of one item.
// Readings are immutable once recorded.
type Reading struct {
	Item   string `json:"item"`
	Source Source `json:"source"`
	Metric string `json:"metric"`
	Value  int64  `json:"value"`
	Date   string `json:"date"` // DateLayout
}

// Key returns the uniqueness key (item, source, metric, date) as a single
// string, usable for deduplication.
func (r Reading) Key() string {
	return r.Item + "\x00" + string(r.Source) + "\x00" + r.Metric + "\x00" + r.Date
}

// Time parses the reading's date. Call Validate first if the reading
// comes from untrusted data.
func (r Reading) Time() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}

// Validate checks that all fields are well-formed.
func (r Reading) Validate() error {
	if r.Item == "" {
		return pperrors.New(pperrors.ErrCodeInvalidReading, "empty item name")
	}
	if !r.Source.Valid() {
		return pperrors.New(pperrors.ErrCodeInvalidReading, "unknown source %q for item %s", r.Source, r.Item)
	}
	if r.Metric == "" {
		return pperrors.New(pperrors.ErrCodeInvalidReading, "empty metric name for item %s", r.Item)
	}
	if r.Value < 0 {
		return pperrors.New(pperrors.ErrCodeInvalidReading, "negative value %d for %s/%s", r.Value, r.Item, r.Metric)
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return pperrors.New(pperrors.ErrCodeInvalidReading, "bad date %q for %s/%s", r.Date, r.Item, r.Metric)
	}
	return nil
}

// TrackedItem is a package, repository, or community being monitored.
// Items are configuration-level entities: created and removed by editing
// the configuration file, never at runtime.
type TrackedItem struct {
	Name    string   // package name, "owner/repo", or display name
	Source  Source   // where to fetch readings from
	Metrics []string // metric names to keep; nil means DefaultMetrics
	Invite  string   // discord invite code (discord source only)
}

// WantsMetric reports whether the item collects the named metric.
func (t TrackedItem) WantsMetric(name string) bool {
	if len(t.Metrics) == 0 {
		for _, m := range DefaultMetrics(t.Source) {
			if m == name {
				return true
			}
		}
		return false
	}
	for _, m := range t.Metrics {
		if m == name {
			return true
		}
	}
	return false
}

// MetricNames returns the effective metric list for the item.
func (t TrackedItem) MetricNames() []string {
	if len(t.Metrics) > 0 {
		return t.Metrics
	}
	return DefaultMetrics(t.Source)
}

// Validate checks that the item is well-formed.
func (t TrackedItem) Validate() error {
	if t.Name == "" {
		return pperrors.New(pperrors.ErrCodeInvalidConfig, "tracked item with empty name")
	}
	if !t.Source.Valid() {
		return pperrors.New(pperrors.ErrCodeInvalidConfig, "item %s: unknown source %q", t.Name, t.Source)
	}
	if t.Source == SourceDiscord && t.Invite == "" {
		return pperrors.New(pperrors.ErrCodeInvalidConfig, "item %s: discord items need an invite code", t.Name)
	}
	return nil
}

// Today formats now as a reading date in UTC.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// FormatValue renders v with thousands separators (e.g. 3454 -> "3,454"),
// matching the dashboard table format.
func FormatValue(v int64) string {
	s := fmt.Sprintf("%d", v)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
