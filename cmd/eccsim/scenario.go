package main

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/jihwankim/eccsim/pkg/telemetry"
	"github.com/jihwankim/eccsim/pkg/tester"
	"github.com/spf13/cobra"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <system-id> <fault-kind-code>...",
	Args:  cobra.MinimumNArgs(2),
	Short: "Run scenario-evaluation mode (spec §6 mode = any non-\"S\" fault-kind code)",
	Long: `Injects the given fault-kind codes in order every trial (e.g. "sbit-p sbit-p"
for a two-single-bit-permanent-fault scenario) and tallies the resulting
outcome distribution.`,
	RunE: runScenarioEval,
}

func init() {
	scenarioCmd.Flags().Int64("num-trials", 1_000_000, "number of independent trials")
	scenarioCmd.Flags().Int64("seed", 1, "RNG seed")
	scenarioCmd.Flags().Int("module-id", 0, "FIT-rate profile (0-3 builtin, 4 = --fit-file)")
	scenarioCmd.Flags().String("fit-file", "", "FIT rate file (required when --module-id=4)")
	scenarioCmd.Flags().String("dram-type", "DDR5", "DRAM geometry")
	scenarioCmd.Flags().Bool("chip-overlap-check", false, "retry a fault draw until it doesn't collide with an earlier one's chip")
	scenarioCmd.Flags().String("format", "text", "output format (text, json)")
}

func runScenarioEval(cmd *cobra.Command, args []string) error {
	systemID, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError(fmt.Errorf("system-id must be an integer: %w", err))
	}
	codes := args[1:]

	numTrials, _ := cmd.Flags().GetInt64("num-trials")
	seed, _ := cmd.Flags().GetInt64("seed")
	moduleID, _ := cmd.Flags().GetInt("module-id")
	fitFile, _ := cmd.Flags().GetString("fit-file")
	dramType, _ := cmd.Flags().GetString("dram-type")
	chipOverlapCheck, _ := cmd.Flags().GetBool("chip-overlap-check")
	format, _ := cmd.Flags().GetString("format")

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	sys, err := lookupSystem(cat, systemID)
	if err != nil {
		return err
	}

	info, err := rateInfoForModule(moduleID, fitFile)
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger(telemetry.LoggerConfig{Level: verboseLevel(), Format: telemetry.LogFormatText})
	dg, ecc, err := buildSystem(sys, info, logger)
	if err != nil {
		return err
	}
	progress := telemetry.NewProgressReporter(telemetry.OutputFormat(format), logger)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tst := tester.NewScenario(systemID, seed, dramType, codes, chipOverlapCheck, progress)
	tst.SetMetrics(startMetrics(cfg, logger))

	rng := rand.New(rand.NewSource(seed))
	report, err := tst.Run(rng, dg, ecc, numTrials)
	if err != nil {
		return err
	}
	progress.ReportRunCompleted(report)

	return saveAndPrintReport(report, format)
}
