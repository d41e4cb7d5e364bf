package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgpulse/pkgpulse/pkg/metrics"
)

// seriesCommand creates the series command: print one metric's trend for
// a tracked item straight from the store.
func (c *CLI) seriesCommand() *cobra.Command {
	var (
		sourceName string
		windowName string
		metric     string
	)

	cmd := &cobra.Command{
		Use:   "series ITEM",
		Short: "Print stored readings for one item and metric",
		Long: `Print the stored time series for one tracked item, oldest first.

Useful for spot-checking the store without regenerating the dashboard:

  pkgpulse series armoriq-sdk --source pypi --window 30d`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			src, err := metrics.ParseSource(sourceName)
			if err != nil {
				return err
			}
			window, err := metrics.ParseWindow(windowName)
			if err != nil {
				return err
			}
			if metric == "" {
				metric = metrics.MetricDownloads
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			item := args[0]
			count := 0
			for r, err := range st.Series(cmd.Context(), item, src, metric, window, time.Now()) {
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s\n", r.Date, metrics.FormatValue(r.Value))
				count++
			}
			if count == 0 {
				printInfo("No readings for %s/%s (%s, %s)", src, item, metric, window.Label)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceName, "source", "pypi", "source of the item (pypi, npm, github, discord)")
	cmd.Flags().StringVarP(&windowName, "window", "w", "all", "trend window (7d, 14d, 30d, 365d, all)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "metric name (default Downloads)")
	return cmd
}
