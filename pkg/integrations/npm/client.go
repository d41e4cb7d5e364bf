// Package npm provides an HTTP client for the npm downloads API
// (https://api.npmjs.org), which serves daily download counts for
// packages published to the npm registry.
//
// The range endpoint serves at most 18 months per request; the client
// asks for the trailing 365 days ending yesterday, which covers every
// window the dashboard renders.
package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/integrations"
)

// rangeDays is the trailing history length requested per fetch.
const rangeDays = 365

// Point is one day of download counts for a package.
type Point struct {
	Date      string `json:"date"` // "2006-01-02"
	Downloads int64  `json:"downloads"`
}

// Client provides access to the npm downloads API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	now     func() time.Time // injectable for deterministic tests
}

// NewClient creates an npm downloads client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npm:", cacheTTL, nil),
		baseURL: "https://api.npmjs.org",
		now:     time.Now,
	}
}

// FetchDownloads retrieves daily download counts for the trailing 365 days
// ending yesterday. Counts for the current day are incomplete on the npm
// side, so the range deliberately stops one day short.
//
// Returns:
//   - Points in the order served by the API (ascending by date)
//   - [integrations.ErrNotFound] if the package doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures
func (c *Client) FetchDownloads(ctx context.Context, pkg string, refresh bool) ([]Point, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

	end := c.now().UTC().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(rangeDays - 1))
	key := fmt.Sprintf("%s:%s", pkg, end.Format("2006-01-02"))

	var points []Point
	err := c.Cached(ctx, key, refresh, &points, func() error {
		return c.fetch(ctx, pkg, start, end, &points)
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, start, end time.Time, points *[]Point) error {
	var data rangeResponse
	url := fmt.Sprintf("%s/downloads/range/%s:%s/%s",
		c.baseURL, start.Format("2006-01-02"), end.Format("2006-01-02"), pkg)
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	*points = (*points)[:0]
	for _, d := range data.Downloads {
		*points = append(*points, Point{Date: d.Day, Downloads: d.Downloads})
	}
	return nil
}

type rangeResponse struct {
	Package   string     `json:"package"`
	Downloads []dayCount `json:"downloads"`
}

type dayCount struct {
	Day       string `json:"day"`
	Downloads int64  `json:"downloads"`
}
