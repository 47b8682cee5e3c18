package report

import (
	"fmt"

	"github.com/trevmt/usagereport/internal/config"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and inspect utilization reports",
		Long: `Generate utilization reports from collected metrics and inspect
previously published reports and run history.`,
		PersistentPreRunE: resolveProvider,
	}

	cmd.AddCommand(RunCommand())
	cmd.AddCommand(ShowCommand())
	cmd.AddCommand(HistoryCommand())

	cmd.PersistentFlags().String("provider", "", "Metric source provider to use (overrides default)")

	return cmd
}

// resolveProvider ensures the --provider flag has a value, falling back to the
// configured default when the flag was not explicitly passed.
func resolveProvider(cmd *cobra.Command, args []string) error {
	if cmd.Flag("provider").Changed {
		return nil // explicitly provided -- nothing to do
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DefaultProvider != "" {
		cmd.Flag("provider").Value.Set(cfg.DefaultProvider)
		return nil
	}

	return fmt.Errorf("no provider specified: use --provider flag or set a default with 'usagereport config set default-provider <name>'")
}
