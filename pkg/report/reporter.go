// Package report turns collected convergence events into run
// records and writes them as JSON or Markdown.
package report

// Reporter renders run records and summaries.
type Reporter interface {
	// GenerateReport renders a single run.
	GenerateReport(run *RunRecord) ([]byte, error)

	// GenerateSummary renders a summary of many runs.
	GenerateSummary(summary *Summary) ([]byte, error)
}
