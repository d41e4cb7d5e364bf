package metrics

import (
	"testing"
	"time"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{"pypi", SourcePyPI, false},
		{"npm", SourceNPM, false},
		{"github", SourceGitHub, false},
		{"discord", SourceDiscord, false},
		{"PyPI", "", true}, // case-sensitive
		{"cargo", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSource(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadingValidate(t *testing.T) {
	valid := Reading{
		Item:   "armoriq-sdk",
		Source: SourcePyPI,
		Metric: MetricDownloads,
		Value:  3454,
		Date:   "2026-02-19",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid reading rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Reading)
	}{
		{"empty item", func(r *Reading) { r.Item = "" }},
		{"bad source", func(r *Reading) { r.Source = "cargo" }},
		{"empty metric", func(r *Reading) { r.Metric = "" }},
		{"negative value", func(r *Reading) { r.Value = -1 }},
		{"bad date", func(r *Reading) { r.Date = "19/02/2026" }},
		{"empty date", func(r *Reading) { r.Date = "" }},
	}

	for _, tt := range tests {
		r := valid
		tt.mutate(&r)
		if err := r.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestReadingKey(t *testing.T) {
	a := Reading{Item: "a", Source: SourcePyPI, Metric: "Downloads", Date: "2026-02-19", Value: 1}
	b := a
	b.Value = 99

	if a.Key() != b.Key() {
		t.Error("key should ignore the value")
	}

	c := a
	c.Date = "2026-02-20"
	if a.Key() == c.Key() {
		t.Error("different dates should have different keys")
	}
}

func TestTrackedItemWantsMetric(t *testing.T) {
	// Default metric set
	item := TrackedItem{Name: "armoriq-sdk", Source: SourcePyPI}
	if !item.WantsMetric(MetricDownloads) {
		t.Error("pypi item should want Downloads by default")
	}
	if item.WantsMetric(MetricStars) {
		t.Error("pypi item should not want Stars")
	}

	// Narrowed metric set
	gh := TrackedItem{Name: "a/b", Source: SourceGitHub, Metrics: []string{MetricStars}}
	if !gh.WantsMetric(MetricStars) {
		t.Error("narrowed item should want Stars")
	}
	if gh.WantsMetric(MetricForks) {
		t.Error("narrowed item should not want Forks")
	}
}

func TestTrackedItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    TrackedItem
		wantErr bool
	}{
		{"valid pypi", TrackedItem{Name: "requests", Source: SourcePyPI}, false},
		{"valid discord", TrackedItem{Name: "Community", Source: SourceDiscord, Invite: "abc"}, false},
		{"empty name", TrackedItem{Source: SourcePyPI}, true},
		{"bad source", TrackedItem{Name: "x", Source: "cargo"}, true},
		{"discord without invite", TrackedItem{Name: "Community", Source: SourceDiscord}, true},
	}

	for _, tt := range tests {
		err := tt.item.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2026, 2, 20, 23, 30, 0, 0, time.UTC)
	if got := Today(now); got != "2026-02-20" {
		t.Errorf("Today = %q, want 2026-02-20", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{3454, "3,454"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
