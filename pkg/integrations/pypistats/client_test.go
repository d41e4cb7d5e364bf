package pypistats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/integrations"
)

const overallResponse = `{
	"data": [
		{"category": "with_mirrors", "date": "2026-02-19", "downloads": 3454},
		{"category": "without_mirrors", "date": "2026-02-19", "downloads": 3000},
		{"category": "with_mirrors", "date": "2026-02-20", "downloads": 3465},
		{"category": "without_mirrors", "date": "2026-02-20", "downloads": 3100}
	],
	"package": "armoriq-sdk",
	"type": "overall_downloads"
}`

func newTestClient(ts *httptest.Server) *Client {
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = ts.URL
	return c
}

func TestFetchDownloads(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(overallResponse))
	}))
	defer ts.Close()

	points, err := newTestClient(ts).FetchDownloads(context.Background(), "ArmorIQ_SDK", false)
	if err != nil {
		t.Fatalf("FetchDownloads: %v", err)
	}

	// Name normalized per PEP 503
	if gotPath != "/packages/armoriq-sdk/overall" {
		t.Errorf("path = %q", gotPath)
	}

	// Only the with_mirrors category is kept
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}
	if points[0].Date != "2026-02-19" || points[0].Downloads != 3454 {
		t.Errorf("points[0] = %+v", points[0])
	}
	if points[1].Date != "2026-02-20" || points[1].Downloads != 3465 {
		t.Errorf("points[1] = %+v", points[1])
	}
}

func TestFetchDownloadsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).FetchDownloads(context.Background(), "no-such-package", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFetchDownloadsEmptyHistory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [], "package": "new-package"}`))
	}))
	defer ts.Close()

	points, err := newTestClient(ts).FetchDownloads(context.Background(), "new-package", false)
	if err != nil {
		t.Fatalf("FetchDownloads: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("points = %d, want 0", len(points))
	}
}
