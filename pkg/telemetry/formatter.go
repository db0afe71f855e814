package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReportFormat selects the textual rendering of a RunReport.
type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatJSON ReportFormat = "json"
)

// Formatter renders RunReports to the shapes described by spec §6: a
// periodic block of "After <N> runs / NE <p> / CE <p> / DUE <vec> / SDC
// <vec>", or a machine-readable JSON dump.
type Formatter struct{}

// NewFormatter creates a new report formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// GenerateReport renders a report in the requested format.
func (f *Formatter) GenerateReport(report *RunReport, format ReportFormat) (string, error) {
	switch format {
	case FormatJSON:
		return f.generateJSONReport(report)
	case FormatText, "":
		return f.generateTextReport(report), nil
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}
}

func (f *Formatter) generateJSONReport(report *RunReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// generateTextReport reproduces the exact periodic-output block shape from
// spec §6 plus a one-line run summary header.
func (f *Formatter) generateTextReport(report *RunReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "run %s  system=%d  mode=%s  seed=%d  dram=%s\n",
		report.RunID, report.SystemID, report.Mode, report.Seed, report.DramType)
	fmt.Fprintf(&sb, "status: %s  duration: %s\n\n", report.Status, report.Duration)

	sb.WriteString(FormatOutcomeBlock(report.TrialsRun, report.Outcome))

	if len(report.Errors) > 0 {
		sb.WriteString("\nerrors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}

	return sb.String()
}

// FormatOutcomeBlock renders spec §6's exact periodic output block:
//
//	After <N> runs
//	NE   <probability>
//	CE   <probability>
//	DUE  <vector of per-year probabilities>
//	SDC  <vector of per-year probabilities>
func FormatOutcomeBlock(runs int64, o YearOutcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "After %d runs\n", runs)
	fmt.Fprintf(&sb, "NE   %g\n", o.NE)
	fmt.Fprintf(&sb, "CE   %g\n", o.CE)
	fmt.Fprintf(&sb, "DUE  %s\n", formatVector(o.DUE))
	fmt.Fprintf(&sb, "SDC  %s\n", formatVector(o.SDC))
	return sb.String()
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// CompareReports prints a side-by-side NE/CE comparison of multiple runs,
// e.g. to compare the same scenario across ECC schemes.
func (f *Formatter) CompareReports(reports []*RunReport) string {
	var sb strings.Builder
	sb.WriteString("run_id                          system  mode      NE         CE\n")
	for _, r := range reports {
		fmt.Fprintf(&sb, "%-30s  %6d  %-8s  %9g  %9g\n",
			r.RunID, r.SystemID, r.Mode, r.Outcome.NE, r.Outcome.CE)
	}
	return sb.String()
}
