package cmd

import (
	"os"

	"github.com/trevmt/usagereport/cmd/commands/auth"
	cfgcmd "github.com/trevmt/usagereport/cmd/commands/config"
	reportcmd "github.com/trevmt/usagereport/cmd/commands/report"
	"github.com/trevmt/usagereport/internal/providers"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "usagereport",
		Short: "A CLI tool for collecting and reporting cloud utilization metrics",
		Long: `usagereport collects utilization metrics for a configured set of
entities from a cloud provider, aggregates them into per-entity and
fleet-wide statistics, and renders a periodic report with sizing
recommendations.

Supported providers: Hetzner (more coming soon).

Quick start:
  usagereport auth login hetzner                  # Store your API token
  usagereport config set entities 1234567,7654321 # Choose what to monitor
  usagereport report run                          # Generate this month's report
  usagereport report show                         # Print the latest report`,
	}

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(reportcmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	providers.RegisterHetzner()

	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
