package main

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/jihwankim/eccsim/pkg/telemetry"
	"github.com/jihwankim/eccsim/pkg/tester"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <system-id>",
	Args:  cobra.ExactArgs(1),
	Short: "Run system-evaluation mode (spec §6 mode \"S\")",
	Long: `Advances simulated time via a Poisson process, injecting faults drawn from
the system's fault-rate table and bucketing DUE/SDC/retirement outcomes by
simulated year.`,
	RunE: runSystemEval,
}

func init() {
	runCmd.Flags().Int64("num-trials", 1_000_000, "number of independent trials")
	runCmd.Flags().Int64("seed", 1, "RNG seed")
	runCmd.Flags().Int("module-id", 0, "FIT-rate profile (0-3 builtin, 4 = --fit-file)")
	runCmd.Flags().String("fit-file", "", "FIT rate file (required when --module-id=4)")
	runCmd.Flags().String("dram-type", "DDR5", "DRAM geometry (HBM3, LPDDR5_SPLIT, LPDDR5_MERGE, DDR5, other)")
	runCmd.Flags().Float64("permanent-rate", 0, "weak-cell permanent fault rate")
	runCmd.Flags().Float64("permanent-activation", 0, "weak-cell permanent activation probability")
	runCmd.Flags().Float64("intermittent-rate", 0, "frequent-weak-cell intermittent fault rate")
	runCmd.Flags().Float64("intermittent-activation", 0, "frequent-weak-cell intermittent activation probability")
	runCmd.Flags().String("format", "text", "output format (text, json)")
	runCmd.Flags().String("legacy-args", "", "drop-in positional form: \"num-trials seed S p-rate p-act i-rate i-act module-id dram-type\"")
}

func runSystemEval(cmd *cobra.Command, args []string) error {
	systemID, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError(fmt.Errorf("system-id must be an integer: %w", err))
	}

	numTrials, _ := cmd.Flags().GetInt64("num-trials")
	seed, _ := cmd.Flags().GetInt64("seed")
	moduleID, _ := cmd.Flags().GetInt("module-id")
	fitFile, _ := cmd.Flags().GetString("fit-file")
	dramType, _ := cmd.Flags().GetString("dram-type")
	permRate, _ := cmd.Flags().GetFloat64("permanent-rate")
	permAct, _ := cmd.Flags().GetFloat64("permanent-activation")
	interRate, _ := cmd.Flags().GetFloat64("intermittent-rate")
	interAct, _ := cmd.Flags().GetFloat64("intermittent-activation")
	format, _ := cmd.Flags().GetString("format")

	if legacy, _ := cmd.Flags().GetString("legacy-args"); legacy != "" {
		la, err := parseLegacySystemArgs(legacy)
		if err != nil {
			return usageError(err)
		}
		numTrials, seed = la.numTrials, la.seed
		permRate, permAct, interRate, interAct = la.permRate, la.permAct, la.interRate, la.interAct
		moduleID, dramType = la.moduleID, la.dramType
	}

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

	accessRate := 1000.0 // accesses/hour; spec §6 leaves the exact access cadence to the front end
	tst := tester.NewSystem(systemID, seed, dramType, accessRate, progress)
	tst.SetMetrics(startMetrics(cfg, logger))
	tst.SetRatioWC(permRate)
	tst.SetActiveProbWC(permAct)
	tst.SetRatioFWC(interRate)
	tst.SetActiveProbFWC(interAct)

	rng := rand.New(rand.NewSource(seed))
	report, err := tst.Run(rng, dg, ecc, numTrials)
	if err != nil {
		return err
	}
	progress.ReportRunCompleted(report)

	return saveAndPrintReport(report, format)
}
