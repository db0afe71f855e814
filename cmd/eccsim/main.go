package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	catalogFile string
	verbose    bool
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "eccsim",
	Short: "DRAM ECC reliability simulator",
	Long: `eccsim Monte-Carlo simulates DRAM fault injection against a catalog of
ECC schemes, reporting outcome probabilities (NE/CE/DUE/SDC) per simulated
year in both system-evaluation and scenario-evaluation modes.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./eccsim.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "catalog.yaml", "system catalog YAML file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fuzzCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - scenarioCmd in scenario.go
// - reportCmd in report.go
// - fuzzCmd in fuzz.go

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "eccsim:", err)
	}
	os.Exit(exitCode(err))
}
