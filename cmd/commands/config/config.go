package config

import (
	"github.com/trevmt/usagereport/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage usagereport configuration",
		Long: "View and modify persistent usagereport settings.\n\n" +
			"Configuration is stored at ~/.config/usagereport/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
