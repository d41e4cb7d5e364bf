package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(c.configValidateCommand())
	cmd.AddCommand(c.configItemsCommand())

	return cmd
}

// configValidateCommand creates the "config validate" subcommand.
func (c *CLI) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			items := cfg.TrackedItems()
			printSuccess("Configuration is valid")
			printKeyValue("storage", cfg.Storage.Driver+" ("+cfg.Storage.Path+")")
			printKeyValue("items", pluralize(len(items), "tracked item"))
			printKeyValue("output", cfg.Report.Output)
			return nil
		},
	}
}

// configItemsCommand creates the "config items" subcommand.
func (c *CLI) configItemsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "List the tracked items and their metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			items := cfg.TrackedItems()
			if len(items) == 0 {
				printWarning("No tracked items configured")
				return nil
			}
			for _, item := range items {
				printInfo("%s", describeItem(item))
				printDetail("metrics: %s", strings.Join(item.MetricNames(), ", "))
			}
			return nil
		},
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
