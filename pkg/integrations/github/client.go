// Package github provides an HTTP client for the GitHub repository API,
// used to track repository traction metrics (stars, forks, watchers,
// open issues).
//
// Unauthenticated requests work but are rate limited to 60 per hour;
// pass a token for the 5000/hour authenticated limit.
package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/integrations"
)

// RepoStats holds the traction counters for one repository.
type RepoStats struct {
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	Stars      int64  `json:"stars"`
	Forks      int64  `json:"forks"`
	Watchers   int64  `json:"watchers"` // subscribers, not the legacy watcher count
	OpenIssues int64  `json:"open_issues"`
	Archived   bool   `json:"archived"`
}

// Client provides access to the GitHub API for repository traction metrics.
// It handles HTTP requests with caching, automatic retries, and optional
// authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests.
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers),
		baseURL: "https://api.github.com",
	}
}

// FetchRepo retrieves traction counters for owner/repo.
// If refresh is true, cached data is bypassed.
func (c *Client) FetchRepo(ctx context.Context, owner, repo string, refresh bool) (*RepoStats, error) {
	key := owner + "/" + repo

	var stats RepoStats
	err := c.Cached(ctx, key, refresh, &stats, func() error {
		return c.fetch(ctx, owner, repo, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) fetch(ctx context.Context, owner, repo string, stats *RepoStats) error {
	var data repoResponse
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return err
	}

	*stats = RepoStats{
		Owner:      owner,
		Repo:       repo,
		Stars:      data.StargazersCount,
		Forks:      data.ForksCount,
		Watchers:   data.SubscribersCount,
		OpenIssues: data.OpenIssuesCount,
		Archived:   data.Archived,
	}
	return nil
}

type repoResponse struct {
	StargazersCount  int64 `json:"stargazers_count"`
	ForksCount       int64 `json:"forks_count"`
	SubscribersCount int64 `json:"subscribers_count"`
	OpenIssuesCount  int64 `json:"open_issues_count"`
	Archived         bool  `json:"archived"`
}
