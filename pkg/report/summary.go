package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Summary aggregates many runs.
type Summary struct {
	ID            string        `json:"id"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Runs          []*RunRecord  `json:"runs"`
	TotalRuns     int           `json:"total_runs"`
	PassedRuns    int           `json:"passed_runs"`
	FailedRuns    int           `json:"failed_runs"`
	TotalSteps    int           `json:"total_steps"`
	TotalAttempts int           `json:"total_attempts"`
	TotalDuration time.Duration `json:"total_duration"`
	PassRate      float64       `json:"pass_rate"`
}

// BuildSummary aggregates runs. Runs still in progress count
// towards the total only.
func BuildSummary(runs []*RunRecord) *Summary {
	now := time.Now()
	summary := &Summary{
		ID:          fmt.Sprintf("summary_%s", now.Format("20060102_150405")),
		GeneratedAt: now,
		Runs:        runs,
	}

	for _, r := range runs {
		summary.TotalRuns++
		summary.TotalDuration += r.Duration
		summary.TotalSteps += len(r.Steps)
		for _, s := range r.Steps {
			summary.TotalAttempts += s.Attempts
		}

		switch r.Status {
		case StatusPassed:
			summary.PassedRuns++
		case StatusFailed:
			summary.FailedRuns++
		}
	}

	if summary.TotalRuns > 0 {
		summary.PassRate = float64(summary.PassedRuns) /
			float64(summary.TotalRuns)
	}

	return summary
}

// SaveSummary writes the summary as JSON and Markdown into
// outputDir and points latest_summary.{json,md} at them.
func SaveSummary(summary *Summary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")
	files := []struct {
		reporter Reporter
		ext      string
	}{
		{NewJSONReporter(true), "json"},
		{NewMarkdownReporter(), "md"},
	}

	for _, f := range files {
		data, err := f.reporter.GenerateSummary(summary)
		if err != nil {
			return fmt.Errorf("failed to render %s summary: %w", f.ext, err)
		}

		name := fmt.Sprintf("summary_%s.%s", ts, f.ext)
		if err := os.WriteFile(filepath.Join(outputDir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s summary: %w", f.ext, err)
		}

		latest := filepath.Join(outputDir, "latest_summary."+f.ext)
		if err := os.Remove(latest); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to replace latest %s summary: %w", f.ext, err)
		}
		if err := os.Symlink(name, latest); err != nil {
			return fmt.Errorf("failed to link latest %s summary: %w", f.ext, err)
		}
	}

	return nil
}

// marshal is swapped in tests to exercise encoding failures. An
// empty indent selects compact output.
var marshal = func(v any, indent string) ([]byte, error) {
	if indent == "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", indent)
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return marshal(v, "  ")
	}
	return marshal(v, "")
}
