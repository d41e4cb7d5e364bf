package source

import (
	"context"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/integrations/discord"
	"github.com/pkgpulse/pkgpulse/pkg/integrations/github"
	"github.com/pkgpulse/pkgpulse/pkg/integrations/npm"
	"github.com/pkgpulse/pkgpulse/pkg/integrations/pypistats"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

// Options configures the built-in fetcher set.
type Options struct {
	GitHubToken string        // optional; raises the GitHub rate limit
	CacheTTL    time.Duration // response cache TTL for all clients
	Refresh     bool          // bypass cached responses
}

// NewRegistry builds the default fetcher per source, all sharing one
// cache backend.
func NewRegistry(backend cache.Cache, opts Options) map[metrics.Source]Fetcher {
	return map[metrics.Source]Fetcher{
		metrics.SourcePyPI:    NewPyPI(pypistats.NewClient(backend, opts.CacheTTL), opts.Refresh),
		metrics.SourceNPM:     NewNPM(npm.NewClient(backend, opts.CacheTTL), opts.Refresh),
		metrics.SourceGitHub:  NewGitHub(github.NewClient(backend, opts.GitHubToken, opts.CacheTTL), opts.Refresh),
		metrics.SourceDiscord: NewDiscord(discord.NewClient(backend, opts.CacheTTL), opts.Refresh),
	}
}

// The client interfaces below name exactly what each fetcher needs from
// its integration package, so fetch logic stays testable without a
// network.
type pypiClient interface {
	FetchDownloads(ctx context.Context, pkg string, refresh bool) ([]pypistats.Point, error)
}

type npmClient interface {
	FetchDownloads(ctx context.Context, pkg string, refresh bool) ([]npm.Point, error)
}

type githubClient interface {
	FetchRepo(ctx context.Context, owner, repo string, refresh bool) (*github.RepoStats, error)
}

type discordClient interface {
	FetchCounts(ctx context.Context, invite string, refresh bool) (*discord.GuildCounts, error)
}

// PyPI fetches daily download history from pypistats.org.
type PyPI struct {
	client  pypiClient
	refresh bool
}

// NewPyPI creates a PyPI download fetcher.
func NewPyPI(client pypiClient, refresh bool) *PyPI {
	return &PyPI{client: client, refresh: refresh}
}

// Source implements Fetcher.
func (f *PyPI) Source() metrics.Source { return metrics.SourcePyPI }

// Fetch implements Fetcher. It returns one Downloads reading per day of
// available history.
func (f *PyPI) Fetch(ctx context.Context, item metrics.TrackedItem, now time.Time) ([]metrics.Reading, error) {
	if !item.WantsMetric(metrics.MetricDownloads) {
		return nil, nil
	}
	points, err := f.client.FetchDownloads(ctx, item.Name, f.refresh)
	if err != nil {
		return nil, classify(err, item)
	}
	readings := make([]metrics.Reading, 0, len(points))
	for _, p := range points {
		readings = append(readings, metrics.Reading{
			Item:   item.Name,
			Source: metrics.SourcePyPI,
			Metric: metrics.MetricDownloads,
			Value:  p.Downloads,
			Date:   p.Date,
		})
	}
	return readings, nil
}

// NPM fetches daily download history from api.npmjs.org.
type NPM struct {
	client  npmClient
	refresh bool
}

// NewNPM creates an npm download fetcher.
func NewNPM(client npmClient, refresh bool) *NPM {
	return &NPM{client: client, refresh: refresh}
}

// Source implements Fetcher.
func (f *NPM) Source() metrics.Source { return metrics.SourceNPM }

// Fetch implements Fetcher.
func (f *NPM) Fetch(ctx context.Context, item metrics.TrackedItem, now time.Time) ([]metrics.Reading, error) {
	if !item.WantsMetric(metrics.MetricDownloads) {
		return nil, nil
	}
	points, err := f.client.FetchDownloads(ctx, item.Name, f.refresh)
	if err != nil {
		return nil, classify(err, item)
	}
	readings := make([]metrics.Reading, 0, len(points))
	for _, p := range points {
		readings = append(readings, metrics.Reading{
			Item:   item.Name,
			Source: metrics.SourceNPM,
			Metric: metrics.MetricDownloads,
			Value:  p.Downloads,
			Date:   p.Date,
		})
	}
	return readings, nil
}

// GitHub fetches repository traction counters, dated the day of the run.
type GitHub struct {
	client  githubClient
	refresh bool
}

// NewGitHub creates a GitHub repo fetcher. Item names are "owner/repo".
func NewGitHub(client githubClient, refresh bool) *GitHub {
	return &GitHub{client: client, refresh: refresh}
}

// Source implements Fetcher.
func (f *GitHub) Source() metrics.Source { return metrics.SourceGitHub }

// Fetch implements Fetcher.
func (f *GitHub) Fetch(ctx context.Context, item metrics.TrackedItem, now time.Time) ([]metrics.Reading, error) {
	owner, repo, ok := splitRepo(item.Name)
	if !ok {
		return nil, classify(errBadRepoName(item.Name), item)
	}
	stats, err := f.client.FetchRepo(ctx, owner, repo, f.refresh)
	if err != nil {
		return nil, classify(err, item)
	}

	today := metrics.Today(now)
	counters := []struct {
		metric string
		value  int64
	}{
		{metrics.MetricStars, stats.Stars},
		{metrics.MetricForks, stats.Forks},
		{metrics.MetricWatchers, stats.Watchers},
		{metrics.MetricOpenIssues, stats.OpenIssues},
	}

	var readings []metrics.Reading
	for _, c := range counters {
		if !item.WantsMetric(c.metric) {
			continue
		}
		readings = append(readings, metrics.Reading{
			Item:   item.Name,
			Source: metrics.SourceGitHub,
			Metric: c.metric,
			Value:  c.value,
			Date:   today,
		})
	}
	return readings, nil
}

// Discord fetches community member counts, dated the day of the run.
type Discord struct {
	client  discordClient
	refresh bool
}

// NewDiscord creates a Discord community fetcher. Items carry the invite
// code in TrackedItem.Invite.
func NewDiscord(client discordClient, refresh bool) *Discord {
	return &Discord{client: client, refresh: refresh}
}

// Source implements Fetcher.
func (f *Discord) Source() metrics.Source { return metrics.SourceDiscord }

// Fetch implements Fetcher.
func (f *Discord) Fetch(ctx context.Context, item metrics.TrackedItem, now time.Time) ([]metrics.Reading, error) {
	counts, err := f.client.FetchCounts(ctx, item.Invite, f.refresh)
	if err != nil {
		return nil, classify(err, item)
	}

	today := metrics.Today(now)
	counters := []struct {
		metric string
		value  int64
	}{
		{metrics.MetricTotalMembers, counts.Members},
		{metrics.MetricMembersOnline, counts.Online},
	}

	var readings []metrics.Reading
	for _, c := range counters {
		if !item.WantsMetric(c.metric) {
			continue
		}
		readings = append(readings, metrics.Reading{
			Item:   item.Name,
			Source: metrics.SourceDiscord,
			Metric: c.metric,
			Value:  c.value,
			Date:   today,
		})
	}
	return readings, nil
}
