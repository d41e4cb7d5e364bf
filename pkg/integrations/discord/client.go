// Package discord provides an HTTP client for Discord's invite API,
// used to track community size for a server.
//
// The invite endpoint with with_counts=true reports approximate member
// and presence counts without requiring a bot token. Counts are
// approximate by design on the Discord side.
package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/integrations"
)

// GuildCounts holds the member counters for one server, resolved from an
// invite code.
type GuildCounts struct {
	GuildName string `json:"guild_name"`
	Members   int64  `json:"members"` // approximate total member count
	Online    int64  `json:"online"`  // approximate presence count
}

// Client provides access to the Discord invite API.
// It handles HTTP requests with caching and automatic retries.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Discord invite client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "discord:", cacheTTL, nil),
		baseURL: "https://discord.com/api/v9",
	}
}

// FetchCounts resolves an invite code to its guild's member counts.
// If refresh is true, cached data is bypassed.
func (c *Client) FetchCounts(ctx context.Context, invite string, refresh bool) (*GuildCounts, error) {
	var counts GuildCounts
	err := c.Cached(ctx, invite, refresh, &counts, func() error {
		return c.fetch(ctx, invite, &counts)
	})
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (c *Client) fetch(ctx context.Context, invite string, counts *GuildCounts) error {
	var data inviteResponse
	url := fmt.Sprintf("%s/invites/%s?with_counts=true", c.baseURL, invite)
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: discord invite %s", err, invite)
		}
		return err
	}

	*counts = GuildCounts{
		GuildName: data.Guild.Name,
		Members:   data.ApproximateMemberCount,
		Online:    data.ApproximatePresenceCount,
	}
	return nil
}

type inviteResponse struct {
	Guild                    guildInfo `json:"guild"`
	ApproximateMemberCount   int64     `json:"approximate_member_count"`
	ApproximatePresenceCount int64     `json:"approximate_presence_count"`
}

type guildInfo struct {
	Name string `json:"name"`
}
