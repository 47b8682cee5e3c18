package report

import (
	"fmt"
	"strings"

	"github.com/trevmt/usagereport/internal/artifacts"

	"github.com/spf13/cobra"
)

func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a published report",
		Long: `Print a previously published report.

Without --period, prints the most recently published report.

Examples:
  usagereport report show
  usagereport report show --period 20260801T000000Z_20260815T000000Z
  usagereport report show --list`,
		RunE:         runShow,
		SilenceUsage: true,
	}

	cmd.Flags().String("period", "", "Period key of the report to print")
	cmd.Flags().Bool("list", false, "List available report periods instead")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := artifacts.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	if list, _ := cmd.Flags().GetBool("list"); list {
		periods, err := store.ListPeriods(artifacts.KindReport, 25)
		if err != nil {
			return err
		}
		if len(periods) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reports published yet.")
			return nil
		}
		for _, p := range periods {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	}

	periodKey, _ := cmd.Flags().GetString("period")
	periodKey = strings.TrimSpace(periodKey)
	if periodKey == "" {
		periods, err := store.ListPeriods(artifacts.KindReport, 1)
		if err != nil {
			return err
		}
		if len(periods) == 0 {
			return fmt.Errorf("no reports published yet; generate one with 'usagereport report run'")
		}
		periodKey = periods[0]
	}

	doc, err := store.Get(artifacts.KindReport, periodKey)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(doc))
	return nil
}
