package report

// JSONReporter renders reports as JSON.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a JSON reporter. When pretty is true,
// output is indented.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

// GenerateReport renders a single run.
func (r *JSONReporter) GenerateReport(run *RunRecord) ([]byte, error) {
	return marshalJSON(run, r.pretty)
}

// GenerateSummary renders a summary.
func (r *JSONReporter) GenerateSummary(summary *Summary) ([]byte, error) {
	return marshalJSON(summary, r.pretty)
}
