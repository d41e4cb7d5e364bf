package metrics

import (
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	for _, w := range Windows() {
		got, err := ParseWindow(w.Label)
		if err != nil {
			t.Errorf("ParseWindow(%q) error: %v", w.Label, err)
		}
		if got != w {
			t.Errorf("ParseWindow(%q) = %+v, want %+v", w.Label, got, w)
		}
	}

	if _, err := ParseWindow("90d"); err == nil {
		t.Error("unknown window label should fail")
	}
	if _, err := ParseWindow(""); err == nil {
		t.Error("empty window label should fail")
	}
}

func TestWindowContains(t *testing.T) {
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		window Window
		date   string
		want   bool
	}{
		{Window7d, "2026-02-20", true},
		{Window7d, "2026-02-14", true},
		{Window7d, "2026-02-13", true}, // exactly on the cutoff
		{Window7d, "2026-02-12", false},
		{Window30d, "2026-01-25", true},
		{Window30d, "2025-12-01", false},
		{WindowAll, "1999-01-01", true},
		{Window7d, "not-a-date", false},
	}

	for _, tt := range tests {
		if got := tt.window.Contains(tt.date, now); got != tt.want {
			t.Errorf("%s.Contains(%q) = %v, want %v", tt.window.Label, tt.date, got, tt.want)
		}
	}
}

func TestWindowCutoffAllTime(t *testing.T) {
	if !WindowAll.Cutoff(time.Now()).IsZero() {
		t.Error("all-time cutoff should be the zero time")
	}
}
