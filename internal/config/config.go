// Package config loads the pkgpulse YAML configuration.
//
// Tracked items are configuration-level entities: adding or removing a
// package, repository, or community means editing the file and re-running
// the collector. Nothing mutates tracked items at runtime.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

const (
	githubTokenEnv = "GITHUB_TOKEN"

	defaultCacheTTL    = 6 * time.Hour
	defaultConcurrency = 4
	defaultItemTimeout = 30 * time.Second
)

// Config holds all settings for a collector run.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Fetch   FetchConfig   `yaml:"fetch"`
	GitHub  GitHubConfig  `yaml:"github"`
	Report  ReportConfig  `yaml:"report"`
	Items   ItemsConfig   `yaml:"items"`
}

// StorageConfig selects and locates the time-series store backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "csv"
	Path   string `yaml:"path"`
}

// CacheConfig controls HTTP response caching.
type CacheConfig struct {
	TTL   time.Duration `yaml:"ttl"`
	Dir   string        `yaml:"dir"`   // file cache directory; empty = XDG default
	Redis RedisConfig   `yaml:"redis"` // used instead of the file cache when Addr is set
}

// RedisConfig holds the optional Redis cache backend settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// FetchConfig bounds the collection run.
type FetchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	ItemTimeout time.Duration `yaml:"itemTimeout"`
}

// GitHubConfig holds GitHub API settings.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// ReportConfig locates the rendered dashboard and its plot images.
type ReportConfig struct {
	Title    string `yaml:"title"`
	Output   string `yaml:"output"`
	PlotsDir string `yaml:"plotsDir"`
}

// ItemsConfig declares what to track, grouped by source.
type ItemsConfig struct {
	PyPI    []ItemSpec    `yaml:"pypi"`
	NPM     []ItemSpec    `yaml:"npm"`
	GitHub  []ItemSpec    `yaml:"github"`
	Discord []DiscordSpec `yaml:"discord"`
}

// ItemSpec is a tracked package or repository. It unmarshals from either
// a bare string or a mapping that narrows the collected metrics:
//
//	pypi:
//	  - armoriq-sdk                 # default metrics
//	  - name: other-sdk
//	    metrics: ["Downloads"]
type ItemSpec struct {
	Name    string   `yaml:"name"`
	Metrics []string `yaml:"metrics"`
}

// UnmarshalYAML accepts both the scalar and mapping forms.
func (s *ItemSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Name = value.Value
		s.Metrics = nil
		return nil
	}
	type plain ItemSpec
	return value.Decode((*plain)(s))
}

// DiscordSpec is a tracked Discord community.
type DiscordSpec struct {
	Name    string   `yaml:"name"`
	Invite  string   `yaml:"invite"`
	Metrics []string `yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{Driver: "sqlite", Path: "data/pulse.db"},
		Cache:   CacheConfig{TTL: defaultCacheTTL},
		Fetch:   FetchConfig{Concurrency: defaultConcurrency, ItemTimeout: defaultItemTimeout},
		Report:  ReportConfig{Output: "README.md", PlotsDir: "plots"},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, pperrors.Wrap(pperrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, pperrors.Wrap(pperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv(githubTokenEnv)
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Storage.Driver == "" {
		c.Storage.Driver = def.Storage.Driver
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = def.Cache.TTL
	}
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = def.Fetch.Concurrency
	}
	if c.Fetch.ItemTimeout <= 0 {
		c.Fetch.ItemTimeout = def.Fetch.ItemTimeout
	}
	if c.Report.Output == "" {
		c.Report.Output = def.Report.Output
	}
	if c.Report.PlotsDir == "" {
		c.Report.PlotsDir = def.Report.PlotsDir
	}
}

// Validate checks the configuration for mistakes that would otherwise
// surface halfway through a run.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "csv":
	default:
		return pperrors.New(pperrors.ErrCodeInvalidConfig, "unknown storage driver %q (valid: sqlite, csv)", c.Storage.Driver)
	}

	items := c.TrackedItems()
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		key := fmt.Sprintf("%s/%s", item.Source, item.Name)
		if seen[key] {
			return pperrors.New(pperrors.ErrCodeInvalidConfig, "duplicate tracked item %s", key)
		}
		seen[key] = true
	}
	return nil
}

// TrackedItems flattens the per-source item lists into domain entities.
func (c *Config) TrackedItems() []metrics.TrackedItem {
	var items []metrics.TrackedItem
	for _, s := range c.Items.PyPI {
		items = append(items, metrics.TrackedItem{Name: s.Name, Source: metrics.SourcePyPI, Metrics: s.Metrics})
	}
	for _, s := range c.Items.NPM {
		items = append(items, metrics.TrackedItem{Name: s.Name, Source: metrics.SourceNPM, Metrics: s.Metrics})
	}
	for _, s := range c.Items.GitHub {
		items = append(items, metrics.TrackedItem{Name: s.Name, Source: metrics.SourceGitHub, Metrics: s.Metrics})
	}
	for _, s := range c.Items.Discord {
		items = append(items, metrics.TrackedItem{Name: s.Name, Source: metrics.SourceDiscord, Metrics: s.Metrics, Invite: s.Invite})
	}
	return items
}
