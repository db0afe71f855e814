package main

import (
	"fmt"

	"github.com/jihwankim/eccsim/pkg/telemetry"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Args:  cobra.NoArgs,
	Short: "List or inspect saved run reports",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().String("run-id", "", "show one report's full detail instead of the summary list")
	reportCmd.Flags().String("format", "text", "output format (text, json)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runID, _ := cmd.Flags().GetString("run-id")
	format, _ := cmd.Flags().GetString("format")

	logger := telemetry.NewLogger(telemetry.LoggerConfig{Level: verboseLevel(), Format: telemetry.LogFormatText})
	storage, err := telemetry.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
	if err != nil {
		return fmt.Errorf("failed to open report storage: %w", err)
	}

	if runID != "" {
		report, err := storage.FindReportByRunID(runID)
		if err != nil {
			return usageError(err)
		}
		formatter := telemetry.NewFormatter()
		text, err := formatter.GenerateReport(report, telemetry.ReportFormat(format))
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	summaries, err := storage.ListReports()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("no reports found in", cfg.Reporting.OutputDir)
		return nil
	}
	fmt.Printf("%-34s  %6s  %-10s  %s\n", "run_id", "system", "status", "start_time")
	for _, s := range summaries {
		fmt.Printf("%-34s  %6d  %-10s  %s\n", s.RunID, s.SystemID, s.Status, s.StartTime.Format("2006-01-02T15:04:05"))
	}
	return nil
}
