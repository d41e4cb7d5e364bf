// Package pypistats provides an HTTP client for the pypistats.org API,
// which serves daily download counts for PyPI packages.
//
// # Overview
//
// The /api/packages/{pkg}/overall endpoint returns the full available
// daily history split into two categories: "with_mirrors" (all traffic)
// and "without_mirrors". Following the dashboard convention, only the
// with_mirrors series is kept.
//
// # Usage
//
//	client := pypistats.NewClient(backend, 6*time.Hour)
//	points, err := client.FetchDownloads(ctx, "requests", false)
//
// Package names are normalized following PEP 503 before the request.
package pypistats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/integrations"
)

// mirrorCategory selects the download series that includes mirror traffic.
const mirrorCategory = "with_mirrors"

// Point is one day of download counts for a package.
type Point struct {
	Date      string `json:"date"` // "2006-01-02"
	Downloads int64  `json:"downloads"`
}

// Client provides access to the pypistats.org download statistics API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a pypistats client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "pypistats:", cacheTTL, nil),
		baseURL: "https://pypistats.org/api",
	}
}

// FetchDownloads retrieves the full daily download history for a package.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - Points ordered as served by the API (ascending by date)
//   - [integrations.ErrNotFound] if the package doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchDownloads(ctx context.Context, pkg string, refresh bool) ([]Point, error) {
	pkg = integrations.NormalizePkgName(pkg)

	var points []Point
	err := c.Cached(ctx, pkg, refresh, &points, func() error {
		return c.fetch(ctx, pkg, &points)
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, points *[]Point) error {
	var data apiResponse
	url := fmt.Sprintf("%s/packages/%s/overall", c.baseURL, pkg)
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*points = (*points)[:0]
	for _, e := range data.Data {
		if e.Category == mirrorCategory {
			*points = append(*points, Point{Date: e.Date, Downloads: e.Downloads})
		}
	}
	return nil
}

type apiResponse struct {
	Data []apiEntry `json:"data"`
}

type apiEntry struct {
	Category  string `json:"category"`
	Date      string `json:"date"`
	Downloads int64  `json:"downloads"`
}
