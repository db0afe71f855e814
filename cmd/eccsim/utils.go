package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jihwankim/eccsim/pkg/catalog"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/config"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
	"github.com/jihwankim/eccsim/pkg/faultrate"
	"github.com/jihwankim/eccsim/pkg/gf"
	"github.com/jihwankim/eccsim/pkg/telemetry"
)

// cliError tags an error with the exit code spec §6 assigns it: 1 usage
// error, 2 unsupported system-id, 3 FIT input file error. Core packages
// return Outcome/error only; this mapping is entirely the CLI's concern.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageError(err error) error    { return &cliError{code: 1, err: err} }
func systemIDError(err error) error { return &cliError{code: 2, err: err} }
func fitFileError(err error) error  { return &cliError{code: 3, err: err} }

// exitCode maps an error returned from rootCmd.Execute to spec §6's exit
// codes, defaulting unrecognized errors to 1 (usage error).
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// loadConfig loads eccsim.yaml, auto-generating a default if missing
// (teacher's cmd/chaos-runner/utils.go loadConfig pattern).
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "eccsim.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadCatalog loads the system catalog from --catalog.
func loadCatalog() (*catalog.Catalog, error) {
	c, err := catalog.Load(catalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", catalogFile, err)
	}
	return c, nil
}

// rateInfoForModule builds the FaultRateInfo for module-id/dram-type,
// resolving module 4 against fitFile (spec §6: "module-id 4 loads
// input_FIT.conf") instead of a builtin profile, and wrapping a missing or
// malformed file as a FIT-file exit-code-3 error.
func rateInfoForModule(moduleID int, fitFile string) (*faultrate.Info, error) {
	m := faultrate.DefaultMultipliers()
	if moduleID == 4 {
		if fitFile == "" {
			return nil, fitFileError(fmt.Errorf("module-id 4 requires --fit-file"))
		}
		info, lineErrors, err := faultrate.LoadFromFile(fitFile, m, false)
		if err != nil {
			return nil, fitFileError(err)
		}
		for _, e := range lineErrors {
			fmt.Fprintln(os.Stderr, "eccsim: warning:", e)
		}
		return info, nil
	}
	info, err := faultrate.NewFromModule(moduleID, m, false, false)
	if err != nil {
		return nil, usageError(err)
	}
	return info, nil
}

// buildSystem runs sys.BuildWithInfo, logging spec §7's two fatal
// codec-construction errors (CodecShapeMismatch, gf.ErrUnsupportedField) at
// Error level with their structured fields before wrapping the failure as a
// usage error for the CLI's exit-code mapping.
func buildSystem(sys *catalog.System, info *faultrate.Info, logger *telemetry.Logger) (*faultdomain.Group, faultdomain.ECC, error) {
	dg, ecc, err := sys.BuildWithInfo(info)
	if err != nil {
		var shapeErr *codec.CodecShapeMismatch
		var fieldErr *gf.ErrUnsupportedField
		switch {
		case errors.As(err, &shapeErr):
			logger.Error("codec shape mismatch", "codec_name", shapeErr.CodecName, "reason", shapeErr.Reason)
		case errors.As(err, &fieldErr):
			logger.Error("unsupported field size", "field_size", fieldErr.M)
		}
		return nil, nil, usageError(err)
	}
	return dg, ecc, nil
}

// lookupSystem resolves system-id via the catalog, tagging a miss as
// spec §6's exit code 2.
func lookupSystem(c *catalog.Catalog, systemID int) (*catalog.System, error) {
	sys, err := c.Lookup(systemID)
	if err != nil {
		return nil, systemIDError(err)
	}
	return sys, nil
}

// verboseLevel maps the --verbose persistent flag to a telemetry.LogLevel.
func verboseLevel() telemetry.LogLevel {
	if verbose {
		return telemetry.LogLevelDebug
	}
	return telemetry.LogLevelInfo
}

// legacySystemArgs is spec §6's positional "S"-mode tail:
// num-trials seed S perm-rate perm-act inter-rate inter-act module-id dram-type
// (system-id is cobra's own positional arg, not part of this tail).
type legacySystemArgs struct {
	numTrials int64
	seed      int64
	permRate  float64
	permAct   float64
	interRate float64
	interAct  float64
	moduleID  int
	dramType  string
}

func parseLegacySystemArgs(raw string) (legacySystemArgs, error) {
	fields := strings.Fields(raw)
	if len(fields) != 9 {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: want 9 whitespace-separated tokens (num-trials seed S perm-rate perm-act inter-rate inter-act module-id dram-type), got %d", len(fields))
	}
	if fields[2] != "S" {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: mode token must be \"S\" for system evaluation, got %q", fields[2])
	}

	var la legacySystemArgs
	var err error
	if la.numTrials, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: num-trials: %w", err)
	}
	if la.seed, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: seed: %w", err)
	}
	if la.permRate, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: permanent-rate: %w", err)
	}
	if la.permAct, err = strconv.ParseFloat(fields[4], 64); err != nil {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: permanent-activation: %w", err)
	}
	if la.interRate, err = strconv.ParseFloat(fields[5], 64); err != nil {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: intermittent-rate: %w", err)
	}
	if la.interAct, err = strconv.ParseFloat(fields[6], 64); err != nil {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: intermittent-activation: %w", err)
	}
	if la.moduleID, err = strconv.Atoi(fields[7]); err != nil {
		return legacySystemArgs{}, fmt.Errorf("--legacy-args: module-id: %w", err)
	}
	la.dramType = fields[8]
	return la, nil
}

// saveAndPrintReport persists report via pkg/telemetry.Storage and prints
// it in the requested format, the shared tail of run/scenario.
func saveAndPrintReport(report *telemetry.RunReport, format string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger(telemetry.LoggerConfig{Level: verboseLevel(), Format: telemetry.LogFormatText})
	storage, err := telemetry.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
	if err != nil {
		return fmt.Errorf("failed to create report storage: %w", err)
	}
	path, err := storage.SaveReport(report)
	if err != nil {
		logger.Warn("failed to save report", "error", err)
	} else {
		logger.Info("report saved", "path", path)
	}

	formatter := telemetry.NewFormatter()
	text, err := formatter.GenerateReport(report, telemetry.ReportFormat(format))
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	fmt.Println(text)
	return nil
}
