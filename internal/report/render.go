// Package report renders an aggregate report into a human-readable
// markdown document. Rendering is pure: the same report always yields
// the same bytes.
package report

import (
	"fmt"
	"strings"

	"github.com/trevmt/usagereport/internal/domain"
)

const noData = "no data"

// Render produces the markdown document for a report. The document has
// four sections in fixed order: executive summary, per-entity
// utilization, daily detail, recommendations.
func Render(r *domain.AggregateReport) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report: nil aggregate report")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Usage Report: %s\n\n", r.Period)
	fmt.Fprintf(&b, "Generated at %s.\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	writeSummary(&b, r)
	writePerEntity(&b, r)
	writeDetail(&b, r)
	writeRecommendations(&b, r)

	return b.String(), nil
}

func writeSummary(b *strings.Builder, r *domain.AggregateReport) {
	b.WriteString("## Executive Summary\n\n")

	counts := r.TierCounts()
	reporting := 0
	for _, stats := range r.PerEntity {
		if stats.HasData() {
			reporting++
		}
	}

	fmt.Fprintf(b, "- Entities reporting: %d of %d\n", reporting, len(r.PerEntity))
	if r.Overall.HasData() {
		fmt.Fprintf(b, "- Fleet mean utilization: %.2f%% (min %.2f%%, max %.2f%%, stddev %.2f)\n",
			r.Overall.Mean, r.Overall.Min, r.Overall.Max, r.Overall.StdDev)
	} else {
		fmt.Fprintf(b, "- Fleet mean utilization: %s\n", noData)
	}
	fmt.Fprintf(b, "- Tiers: %d high, %d medium, %d low\n\n",
		counts[domain.TierHigh], counts[domain.TierMedium], counts[domain.TierLow])
}

func writePerEntity(b *strings.Builder, r *domain.AggregateReport) {
	b.WriteString("## Per-Entity Utilization\n\n")

	if len(r.PerEntity) == 0 {
		fmt.Fprintf(b, "%s\n\n", noData)
		return
	}

	b.WriteString("| Entity | Samples | Mean | Min | Max | StdDev | Tier |\n")
	b.WriteString("|--------|---------|------|-----|-----|--------|------|\n")
	for _, stats := range r.PerEntity {
		if !stats.HasData() {
			fmt.Fprintf(b, "| %s | 0 | n/a | n/a | n/a | n/a | n/a |\n", stats.EntityID)
			continue
		}
		fmt.Fprintf(b, "| %s | %d | %.2f%% | %.2f%% | %.2f%% | %.2f | %s |\n",
			stats.EntityID, stats.Count, stats.Mean, stats.Min, stats.Max, stats.StdDev,
			strings.ToUpper(string(stats.Tier)))
	}
	b.WriteString("\n")
}

func writeDetail(b *strings.Builder, r *domain.AggregateReport) {
	b.WriteString("## Daily Detail\n\n")

	if len(r.Detail) == 0 {
		fmt.Fprintf(b, "%s\n\n", noData)
		return
	}

	for _, detail := range r.Detail {
		fmt.Fprintf(b, "### %s\n\n", detail.EntityID)
		if len(detail.Buckets) == 0 {
			fmt.Fprintf(b, "%s\n\n", noData)
			continue
		}
		b.WriteString("| Day | Samples | Mean | Min | Max |\n")
		b.WriteString("|-----|---------|------|-----|-----|\n")
		for _, bucket := range detail.Buckets {
			fmt.Fprintf(b, "| %s | %d | %.2f%% | %.2f%% | %.2f%% |\n",
				bucket.Day.Format("2006-01-02"), bucket.Count, bucket.Mean, bucket.Min, bucket.Max)
		}
		b.WriteString("\n")
	}
}

func writeRecommendations(b *strings.Builder, r *domain.AggregateReport) {
	b.WriteString("## Recommendations\n\n")

	if len(r.Recommendations) == 0 {
		fmt.Fprintf(b, "%s\n", noData)
		return
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(b, "- %s\n", rec)
	}
}
