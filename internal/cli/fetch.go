package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgpulse/pkgpulse/internal/config"
	"github.com/pkgpulse/pkgpulse/pkg/collect"
	pperrors "github.com/pkgpulse/pkgpulse/pkg/errors"
	"github.com/pkgpulse/pkgpulse/pkg/store"
)

// fetchFlags holds options shared by the fetch and run commands.
type fetchFlags struct {
	refresh bool
	noCache bool
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached API responses")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the response cache entirely")
}

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	flags := &fetchFlags{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Collect today's readings into the time-series store",
		Long: `Fetch metrics for every tracked item and append them to the store.

Download sources (pypi, npm) return their full served history; days already
recorded are overwritten in place, so re-running is always safe. A failing
source is logged and skipped - its previous readings stay in the store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			_, err = c.collect(cmd.Context(), cfg, st, flags)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// collect runs one collection pass and prints the outcome.
func (c *CLI) collect(ctx context.Context, cfg config.Config, st store.Store, flags *fetchFlags) (*collect.Result, error) {
	backend, err := newCacheBackend(ctx, cfg, flags.noCache)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	items := cfg.TrackedItems()
	if len(items) == 0 {
		printWarning("No tracked items configured")
		return &collect.Result{}, nil
	}

	runner := c.newRunner(cfg, st, backend, flags.refresh)

	spin := newSpinnerWithContext(ctx, "Fetching metrics...")
	spin.Start()
	result, err := runner.Run(ctx, items, time.Now())
	spin.Stop()
	if err != nil {
		return nil, err
	}
	if spin.Cancelled() {
		return result, ctx.Err()
	}

	if result.Failed == len(items) {
		printError("All %d sources failed; store left untouched", len(items))
	} else {
		printSuccess("Appended %d readings from %d items (%s)",
			result.Appended, len(items)-result.Failed, result.Duration.Round(time.Millisecond))
	}
	for _, o := range result.Outcomes {
		switch {
		case o.Err == nil:
		case pperrors.IsFetchError(o.Err):
			printWarning("%s: %v", describeItem(o.Item), o.Err)
		default:
			printError("%s: %v", describeItem(o.Item), o.Err)
		}
	}
	return result, nil
}
