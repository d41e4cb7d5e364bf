package cli

import (
	"github.com/spf13/cobra"
)

// runCommand creates the run command: one full daily batch (fetch then
// report). This is the entry point external schedulers invoke.
func (c *CLI) runCommand() *cobra.Command {
	flags := &fetchFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch all metrics and regenerate the dashboard",
		Long: `Run one complete batch: fetch readings for every tracked item, append
them to the store, and regenerate the Markdown dashboard.

A store failure aborts before rendering so the dashboard is never built
from a partially-written store. Per-source fetch failures only omit that
source's metrics from today's snapshot.`,
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

			if _, err := c.collect(cmd.Context(), cfg, st, flags); err != nil {
				return err
			}

			if err := renderReport(cmd.Context(), cfg, st, cfg.Report.Output); err != nil {
				return err
			}
			printSuccess("Dashboard updated")
			printFile(cfg.Report.Output)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
