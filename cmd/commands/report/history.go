package report

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/trevmt/usagereport/internal/runlog"

	"github.com/spf13/cobra"
)

func HistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent report runs",
		Long: `List recent report runs stored locally.

Examples:
  usagereport report history
  usagereport report history --limit 50
  usagereport report history --period 20260801T000000Z_20260815T000000Z
  usagereport report history -o json`,
		RunE:         runHistory,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of runs to display")
	cmd.Flags().String("period", "", "Filter by period key")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	periodKey, _ := cmd.Flags().GetString("period")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}

	repo, err := runlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	var records []runlog.RunRecord
	if periodKey != "" {
		records, err = repo.ListByPeriod(periodKey, limit)
	} else {
		records, err = repo.List(limit)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No report runs found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPROVIDER\tPERIOD\tOUTCOME\tSTAGE\tENTITIES\tMISSING\tDATAPOINTS\tDURATION")
	fmt.Fprintln(w, "----\t--------\t------\t-------\t-----\t--------\t-------\t----------\t--------")
	for _, record := range records {
		timeStr := record.StartedAt.Local().Format("2006-01-02 15:04:05")
		provider := record.Provider
		if provider == "" {
			provider = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			timeStr,
			provider,
			record.PeriodKey,
			record.Outcome,
			record.Stage,
			record.Entities,
			record.Missing,
			record.Datapoints,
			formatDuration(record.DurationMs),
		)
	}
	w.Flush()
	return nil
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}
