package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trevmt/usagereport/internal/aggregate"
	"github.com/trevmt/usagereport/internal/artifacts"
	"github.com/trevmt/usagereport/internal/config"
	"github.com/trevmt/usagereport/internal/domain"
	"github.com/trevmt/usagereport/internal/notify"
	"github.com/trevmt/usagereport/internal/pipeline"
	"github.com/trevmt/usagereport/internal/providers"
	"github.com/trevmt/usagereport/internal/registry"
	"github.com/trevmt/usagereport/internal/runlog"
	"github.com/trevmt/usagereport/internal/services/auth"

	"github.com/spf13/cobra"
)

func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect metrics and publish a report",
		Long: `Collect utilization metrics for the configured entities, aggregate
them and publish the rendered report.

The period defaults to month-to-date. Both artifacts (the raw snapshot
and the rendered document) are stored locally; re-running the same
period replaces them.

Examples:
  usagereport report run
  usagereport report run --start 2026-08-01T00:00:00Z --end 2026-08-15T00:00:00Z
  usagereport report run --entities 1234567 --print`,
		RunE:         runReport,
		SilenceUsage: true,
	}

	cmd.Flags().String("start", "", "Period start (RFC3339, default: start of current month)")
	cmd.Flags().String("end", "", "Period end (RFC3339, default: now)")
	cmd.Flags().String("entities", "", "Comma-separated entity ids (overrides configured list)")
	cmd.Flags().Bool("print", false, "Print the rendered report to stdout")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	providerName := cmd.Flag("provider").Value.String()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	period, err := resolvePeriod(cmd)
	if err != nil {
		return err
	}

	reg, err := resolveRegistry(cmd, cfg)
	if err != nil {
		return err
	}

	source, err := providers.Get(providerName, auth.DefaultStore())
	if err != nil {
		return err
	}

	store, err := artifacts.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	var notifier notify.Notifier
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.WebhookURL)
	} else {
		notifier = notify.NewLogNotifier(cmd.ErrOrStderr())
	}

	low, high := cfg.Thresholds()
	runner := pipeline.NewRunner(pipeline.Config{
		Provider:    providerName,
		Source:      source,
		Registry:    reg,
		Store:       store,
		Notifier:    notifier,
		Thresholds:  aggregate.Thresholds{Low: low, High: high},
		Concurrency: cfg.FetchConcurrency(),
	})

	started := time.Now()
	result, runErr := runner.Run(context.Background(), period)
	recordRun(cmd, providerName, started, result, runErr)

	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report published for period %s\n", period)
	fmt.Fprintf(cmd.OutOrStdout(), "  entities: %d (%d missing), datapoints: %d\n",
		len(result.Entities), len(result.Missing), result.Datapoints)
	fmt.Fprintf(cmd.OutOrStdout(), "  view it with: usagereport report show --period %s\n", period.Key())

	if print, _ := cmd.Flags().GetBool("print"); print {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), result.Document)
	}
	return nil
}

// resolvePeriod builds the reporting period from flags, defaulting to
// month-to-date in UTC.
func resolvePeriod(cmd *cobra.Command) (domain.Period, error) {
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")

	period := domain.MonthToDate(time.Now().UTC())

	if startFlag != "" {
		start, err := time.Parse(time.RFC3339, startFlag)
		if err != nil {
			return domain.Period{}, fmt.Errorf("invalid --start: %w", err)
		}
		period.Start = start.UTC()
	}
	if endFlag != "" {
		end, err := time.Parse(time.RFC3339, endFlag)
		if err != nil {
			return domain.Period{}, fmt.Errorf("invalid --end: %w", err)
		}
		period.End = end.UTC()
	}

	if !period.Start.Before(period.End) {
		return domain.Period{}, fmt.Errorf("period start %s must be before end %s", period.Start, period.End)
	}
	return period, nil
}

// resolveRegistry prefers the --entities flag over the configured list.
func resolveRegistry(cmd *cobra.Command, cfg *config.Config) (*registry.Static, error) {
	entitiesFlag, _ := cmd.Flags().GetString("entities")
	if entitiesFlag = strings.TrimSpace(entitiesFlag); entitiesFlag != "" {
		var ids []string
		for _, id := range strings.Split(entitiesFlag, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return registry.NewStatic(ids)
	}
	return registry.FromConfig(cfg)
}

// recordRun persists the run outcome to the local run log. Failures to
// record never fail the command.
func recordRun(cmd *cobra.Command, provider string, started time.Time, result *pipeline.Result, runErr error) {
	repo, err := runlog.Open()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not open run log: %v\n", err)
		return
	}
	defer repo.Close()

	record := &runlog.RunRecord{
		StartedAt:  started.UTC(),
		Provider:   provider,
		PeriodKey:  result.Period.Key(),
		Stage:      string(result.Stage),
		Outcome:    runlog.OutcomeSuccess,
		Entities:   len(result.Entities),
		Missing:    len(result.Missing),
		Datapoints: result.Datapoints,
		DurationMs: time.Since(started).Milliseconds(),
	}
	if runErr != nil {
		record.Outcome = runlog.OutcomeError
		record.Detail = runErr.Error()
	}

	if err := repo.Save(record); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record run: %v\n", err)
	}
}
