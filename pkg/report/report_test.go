package report

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.convergence/pkg/condition"
	"digital.vasic.convergence/pkg/convergence"
	"digital.vasic.convergence/pkg/convergence/convergencetest"
	"digital.vasic.convergence/pkg/monitor"
)

const ms = time.Millisecond

func collectRuns(t *testing.T) []monitor.Event {
	t.Helper()
	collector := monitor.NewEventCollector()
	runner := convergence.NewRunner(
		convergence.WithClock(convergencetest.NewVirtualClock()),
		convergence.WithObserver(collector),
	)
	ctx := context.Background()

	ok := condition.AssertionFunc(func() error { return nil })
	err := runner.Run(ctx, "Button(.save)", convergence.NewChain(
		convergence.Step{Policy: convergence.Eventually, Assertion: ok, Label: "isLoading"},
		convergence.Step{Policy: convergence.Always, Assertion: ok, Timeout: 20 * ms, Label: "!isLoading"},
	))
	require.NoError(t, err)

	never := condition.AssertionFunc(func() error {
		return errors.New("isVisible returned false")
	})
	err = runner.Run(ctx, "Modal(#confirm)", convergence.NewChain(
		convergence.Step{Policy: convergence.Eventually, Assertion: never, Timeout: 30 * ms, Label: "isVisible"},
	))
	require.Error(t, err)

	return collector.Events()
}

func TestBuildRunRecords(t *testing.T) {
	runs := BuildRunRecords(collectRuns(t))
	require.Len(t, runs, 2)

	passed := runs[0]
	assert.Equal(t, "Button(.save)", passed.Name)
	assert.Equal(t, StatusPassed, passed.Status)
	assert.Equal(t, 20*ms, passed.Duration)
	require.Len(t, passed.Steps, 2)
	assert.Equal(t, StepRecord{
		Index: 1, Policy: "always", Label: "!isLoading",
		Status: StatusPassed, Attempts: 3, Elapsed: 20 * ms,
	}, passed.Steps[1])

	failed := runs[1]
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Equal(t, "isVisible returned false", failed.Message)
	require.Len(t, failed.Steps, 1)
	assert.Equal(t, StatusTimedOut, failed.Steps[0].Status)
	assert.Equal(t, 4, failed.Steps[0].Attempts)
}

func TestBuildRunRecords_Unfinished(t *testing.T) {
	runs := BuildRunRecords([]monitor.Event{
		{Type: monitor.EventRunStarted, RunID: "r1", Name: "Button"},
		{Type: monitor.EventStepPassed, RunID: "r1", Attempts: 2},
		{Type: monitor.EventStepStarted, RunID: "r1", Label: "isLoading"},
	})
	require.Len(t, runs, 1)
	assert.Equal(t, StatusRunning, runs[0].Status)
	require.Len(t, runs[0].Steps, 1)
	assert.Equal(t, StatusRunning, runs[0].Steps[0].Status)
}

func TestBuildSummary(t *testing.T) {
	summary := BuildSummary(BuildRunRecords(collectRuns(t)))

	assert.Equal(t, 2, summary.TotalRuns)
	assert.Equal(t, 1, summary.PassedRuns)
	assert.Equal(t, 1, summary.FailedRuns)
	assert.Equal(t, 3, summary.TotalSteps)
	assert.Equal(t, 8, summary.TotalAttempts)
	assert.Equal(t, 50*ms, summary.TotalDuration)
	assert.InDelta(t, 0.5, summary.PassRate, 1e-9)
	assert.Contains(t, summary.ID, "summary_")

	empty := BuildSummary(nil)
	assert.Equal(t, 0, empty.TotalRuns)
	assert.Zero(t, empty.PassRate)
}

func TestJSONReporter(t *testing.T) {
	runs := BuildRunRecords(collectRuns(t))

	for _, pretty := range []bool{true, false} {
		data, err := NewJSONReporter(pretty).GenerateReport(runs[1])
		require.NoError(t, err)

		var decoded RunRecord
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, *runs[1], decoded)
		assert.Equal(t, pretty, json.Valid(data) && data[1] == '\n')
	}

	data, err := NewJSONReporter(false).GenerateSummary(BuildSummary(runs))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_runs":2`)
}

func TestJSONReporter_MarshalError(t *testing.T) {
	orig := marshal
	var indents []string
	marshal = func(_ any, indent string) ([]byte, error) {
		indents = append(indents, indent)
		return nil, errors.New("boom")
	}
	defer func() { marshal = orig }()

	for _, pretty := range []bool{false, true} {
		r := NewJSONReporter(pretty)

		_, err := r.GenerateReport(&RunRecord{})
		assert.EqualError(t, err, "boom")

		_, err = r.GenerateSummary(BuildSummary(nil))
		assert.EqualError(t, err, "boom")
	}
	assert.Equal(t, []string{"", "", "  ", "  "}, indents)

	err := SaveSummary(BuildSummary(nil), t.TempDir())
	assert.ErrorContains(t, err, "failed to render json summary: boom")
}

func TestMarkdownReporter(t *testing.T) {
	runs := BuildRunRecords(collectRuns(t))
	md := NewMarkdownReporter()

	data, err := md.GenerateReport(runs[1])
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# Modal(#confirm)")
	assert.Contains(t, out, "**Status:** FAILED")
	assert.Contains(t, out, "**Error:** isVisible returned false")
	assert.Contains(t, out, "| 0 | eventually | `isVisible` | TIMED_OUT | 4 | 30ms |")

	data, err = md.GenerateSummary(BuildSummary(runs))
	require.NoError(t, err)
	out = string(data)
	assert.Contains(t, out, "# Convergence Summary")
	assert.Contains(t, out, "| Button(.save) | PASSED | 20ms | 2 |")
	assert.Contains(t, out, "| Pass Rate | 50% |")
}

func TestSaveSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	summary := BuildSummary(BuildRunRecords(collectRuns(t)))

	require.NoError(t, SaveSummary(summary, dir))

	for _, ext := range []string{"json", "md"} {
		latest := filepath.Join(dir, "latest_summary."+ext)
		data, err := os.ReadFile(latest)
		require.NoError(t, err, ext)
		assert.NotEmpty(t, data)
	}

	data, err := os.ReadFile(filepath.Join(dir, "latest_summary.json"))
	require.NoError(t, err)
	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.TotalRuns)
}

func TestSaveSummary_ReplacesLatest(t *testing.T) {
	dir := t.TempDir()
	summary := BuildSummary(nil)

	require.NoError(t, SaveSummary(summary, dir))
	require.NoError(t, SaveSummary(summary, dir))

	target, err := os.Readlink(filepath.Join(dir, "latest_summary.md"))
	require.NoError(t, err)
	assert.Equal(t, "summary_"+summary.GeneratedAt.Format("20060102_150405")+".md", target)
}

func TestSaveSummary_LatestNotReplaceable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "latest_summary.json")
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "keep"), 0755))

	err := SaveSummary(BuildSummary(nil), dir)
	assert.ErrorContains(t, err, "failed to replace latest json summary")
}

func TestSaveSummary_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := SaveSummary(BuildSummary(nil), filepath.Join(file, "sub"))
	assert.ErrorContains(t, err, "failed to create output directory")
}
