package telemetry

import (
	"fmt"
	"os"
	"time"
)

// OutputFormat represents the progress output format.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// ProgressReporter prints the periodic outcome block spec §6 mandates:
// once every 100 runs up to 100 runs, then once every 1,000,000 runs.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
	writer *os.File

	lastMilestone int64
}

// NewProgressReporter creates a reporter writing to stdout.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger, writer: os.Stdout}
}

// ShouldReport implements spec §6's cadence rule.
func (p *ProgressReporter) ShouldReport(runs int64) bool {
	switch {
	case runs <= 100:
		return runs%100 == 0
	default:
		return runs%1_000_000 == 0
	}
}

// ReportProgress prints (or logs) the current outcome snapshot if the
// cadence rule says this run count is a milestone.
func (p *ProgressReporter) ReportProgress(runs int64, o YearOutcome) {
	if !p.ShouldReport(runs) {
		return
	}
	p.lastMilestone = runs

	switch p.format {
	case OutputJSON:
		fmt.Fprintf(p.writer, "{\"runs\":%d,\"ne\":%g,\"ce\":%g}\n", runs, o.NE, o.CE)
	default:
		fmt.Fprint(p.writer, FormatOutcomeBlock(runs, o))
	}
}

// ReportRunCompleted prints a final one-line summary once a run finishes.
func (p *ProgressReporter) ReportRunCompleted(report *RunReport) {
	icon := "✓"
	if report.Status == StatusFailed {
		icon = "✗"
	}
	fmt.Fprintf(p.writer, "%s run %s  (%s, %d trials, %s)\n",
		icon, report.RunID, report.Status, report.TrialsRun, report.Duration)
	p.logger.WithSystem(report.SystemID, report.Mode).WithOutcome(report.Outcome).Info("run completed",
		"run_id", report.RunID, "status", report.Status, "trials", report.TrialsRun,
		"duration", report.Duration, "elapsed", time.Since(report.StartTime).String())
}
