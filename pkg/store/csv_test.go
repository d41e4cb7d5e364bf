package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

func TestCSVSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "downloads.csv")
	now := time.Date(2026, 2, 21, 9, 0, 0, 0, time.UTC)

	s, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	if err := s.Append(context.Background(),
		reading("armoriq-sdk", metrics.SourcePyPI, metrics.MetricDownloads, "2026-02-19", 3454),
		reading("armoriq-sdk", metrics.SourcePyPI, metrics.MetricDownloads, "2026-02-20", 3465),
	); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got := collectSeries(t, reopened, "armoriq-sdk", metrics.SourcePyPI, metrics.MetricDownloads, metrics.WindowAll, now)
	if len(got) != 2 || got[0].Value != 3454 || got[1].Value != 3465 {
		t.Errorf("reloaded series = %+v", got)
	}
}

func TestCSVFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloads.csv")

	s, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV: %v", err)
	}
	defer s.Close()

	// Appended out of order; the file must still come out sorted.
	if err := s.Append(context.Background(),
		reading("zlib-ng", metrics.SourcePyPI, metrics.MetricDownloads, "2026-02-20", 900),
		reading("armoriq-sdk", metrics.SourcePyPI, metrics.MetricDownloads, "2026-02-20", 3465),
		reading("armoriq-sdk", metrics.SourcePyPI, metrics.MetricDownloads, "2026-02-19", 3454),
	); err != nil {
		t.Fatalf("Append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	want := []string{
		"date,item,source,metric,value",
		"2026-02-19,armoriq-sdk,pypi,Downloads,3454",
		"2026-02-20,armoriq-sdk,pypi,Downloads,3465",
		"2026-02-20,zlib-ng,pypi,Downloads,900",
	}
	if len(lines) != len(want) {
		t.Fatalf("file has %d lines, want %d:\n%s", len(lines), len(want), raw)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestCSVRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloads.csv")
	content := "date,item,source,metric,value\n2026-02-20,armoriq-sdk,pypi,Downloads,not-a-number\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := OpenCSV(path); err == nil {
		t.Error("OpenCSV accepted a corrupt value column")
	}
}
