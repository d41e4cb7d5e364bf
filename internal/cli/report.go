package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgpulse/pkgpulse/internal/config"
	"github.com/pkgpulse/pkgpulse/pkg/report"
	"github.com/pkgpulse/pkgpulse/pkg/store"
)

// reportCommand creates the report command.
func (c *CLI) reportCommand() *cobra.Command {
	var (
		output   string
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the Markdown dashboard from stored readings",
		Long: `Render the dashboard from the time-series store without fetching.

The output contains a summary table with the latest reading per tracked
metric and references to the pre-rendered trend plots. Rendering is
deterministic: the same store state produces byte-identical output.`,
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

			if toStdout {
				return renderReport(cmd.Context(), cfg, st, "")
			}
			if output == "" {
				output = cfg.Report.Output
			}
			if err := renderReport(cmd.Context(), cfg, st, output); err != nil {
				return err
			}
			printSuccess("Report written")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default from config)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write the report to stdout")
	return cmd
}

// renderReport builds and writes the dashboard. An empty path writes to stdout.
func renderReport(ctx context.Context, cfg config.Config, st store.Store, path string) error {
	rep, err := report.Build(ctx, st, cfg.TrackedItems(), time.Now(), report.Options{
		Title:    cfg.Report.Title,
		PlotsDir: cfg.Report.PlotsDir,
	})
	if err != nil {
		return err
	}

	if path == "" {
		return report.Render(os.Stdout, rep)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Render(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
