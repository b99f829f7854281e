package report

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownReporter renders reports as Markdown tables.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a Markdown reporter.
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

// GenerateReport renders one run with a row per step.
func (MarkdownReporter) GenerateReport(run *RunRecord) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", run.Name)
	fmt.Fprintf(&sb, "**Run:** %s\n\n", run.ID)
	fmt.Fprintf(&sb, "**Status:** %s\n\n", strings.ToUpper(run.Status))
	if run.Message != "" {
		fmt.Fprintf(&sb, "**Error:** %s\n\n", run.Message)
	}

	sb.WriteString("| # | Policy | Condition | Status | Attempts | Elapsed |\n")
	sb.WriteString("|---|--------|-----------|--------|----------|---------|\n")
	for _, s := range run.Steps {
		fmt.Fprintf(&sb, "| %d | %s | `%s` | %s | %d | %v |\n",
			s.Index, s.Policy, s.Label,
			strings.ToUpper(s.Status), s.Attempts, s.Elapsed)
	}

	return []byte(sb.String()), nil
}

// GenerateSummary renders an overview table and statistics.
func (MarkdownReporter) GenerateSummary(summary *Summary) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("# Convergence Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Run | Status | Duration | Steps |\n")
	sb.WriteString("|-----|--------|----------|-------|\n")
	for _, r := range summary.Runs {
		fmt.Fprintf(&sb, "| %s | %s | %v | %d |\n",
			r.Name, strings.ToUpper(r.Status), r.Duration, len(r.Steps))
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total Runs | %d |\n", summary.TotalRuns)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.PassedRuns)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.FailedRuns)
	fmt.Fprintf(&sb, "| Steps | %d |\n", summary.TotalSteps)
	fmt.Fprintf(&sb, "| Checks | %d |\n", summary.TotalAttempts)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", summary.PassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	return []byte(sb.String()), nil
}
