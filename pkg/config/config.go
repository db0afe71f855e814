package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root run configuration for the simulator, covering both the
// positional-CLI knobs from spec §6 and the ambient framework settings
// (reporting, metrics) the teacher's config.yaml shape always carries.
type Config struct {
	Framework  FrameworkConfig  `yaml:"framework"`
	Run        RunConfig        `yaml:"run"`
	FaultRates FaultRatesConfig `yaml:"fault_rates"`
	DRAM       DRAMConfig       `yaml:"dram"`
	Reporting  ReportingConfig  `yaml:"reporting"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// FrameworkConfig contains general framework settings.
type FrameworkConfig struct {
	Version   string `yaml:"version"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// RunConfig describes one Tester invocation: spec §6's positional CLI
// folded into structured fields.
type RunConfig struct {
	SystemID  int    `yaml:"system_id"`
	NumTrials int64  `yaml:"num_trials"`
	Seed      int64  `yaml:"seed"`
	Mode      string `yaml:"mode"` // "system" | fault-kind code for scenario eval
	Years     int    `yaml:"years"`

	// System-mode-only: the four doubles from spec §6's "S" mode.
	PermanentRate         float64 `yaml:"permanent_rate"`
	PermanentActivation   float64 `yaml:"permanent_activation"`
	IntermittentRate      float64 `yaml:"intermittent_rate"`
	IntermittentActivation float64 `yaml:"intermittent_activation"`

	// Scenario-mode-only: fault-kind codes injected in order.
	ScenarioFaults []string `yaml:"scenario_faults"`
}

// FaultRatesConfig selects the FIT-rate profile (spec §6 module-id).
type FaultRatesConfig struct {
	ModuleID int    `yaml:"module_id"` // 0-3 built-in, 4 = external file
	FITFile  string `yaml:"fit_file"`  // required when ModuleID == 4
}

// DRAMConfig selects the DRAM geometry (spec §6 dram-type).
type DRAMConfig struct {
	Type string `yaml:"type"` // HBM3, LPDDR5_SPLIT, LPDDR5_MERGE, DDR5, other
}

// ReportingConfig contains reporting and output settings.
type ReportingConfig struct {
	OutputDir string `yaml:"output_dir"`
	Prefix    string `yaml:"prefix"`
	KeepLastN int    `yaml:"keep_last_n"`
	Format    string `yaml:"format"` // text | json
}

// MetricsConfig controls the optional Prometheus metrics exporter.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			Version:   "v1",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Run: RunConfig{
			SystemID:  0,
			NumTrials: 1_000_000,
			Seed:      1,
			Mode:      "system",
			Years:     10,
		},
		FaultRates: FaultRatesConfig{
			ModuleID: 0,
		},
		DRAM: DRAMConfig{
			Type: "DDR5",
		},
		Reporting: ReportingConfig{
			OutputDir: "./reports",
			Prefix:    "run",
			KeepLastN: 50,
			Format:    "text",
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			ListenAddress: ":9464",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if
// the file does not exist, with environment-variable expansion the way the
// teacher's config loader does.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "eccsim.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(expandedData, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if seedEnv := os.Getenv("ECCSIM_SEED"); seedEnv != "" {
		var seed int64
		if _, err := fmt.Sscanf(seedEnv, "%d", &seed); err == nil {
			cfg.Run.Seed = seed
		}
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate aggregates every configuration error instead of failing on the
// first one, mirroring the teacher's validator Errors/Warnings pattern.
func (c *Config) Validate() error {
	var errs []string

	if c.Run.NumTrials < 1 {
		errs = append(errs, "run.num_trials must be at least 1")
	}
	if c.Run.Mode == "" {
		errs = append(errs, "run.mode is required")
	}
	if c.FaultRates.ModuleID < 0 || c.FaultRates.ModuleID > 4 {
		errs = append(errs, "fault_rates.module_id must be in [0,4]")
	}
	if c.FaultRates.ModuleID == 4 && c.FaultRates.FITFile == "" {
		errs = append(errs, "fault_rates.fit_file is required when module_id == 4")
	}
	if c.Reporting.OutputDir == "" {
		errs = append(errs, "reporting.output_dir is required")
	}

	if len(errs) == 0 {
		return nil
	}

	msg := "invalid configuration:"
	for _, e := range errs {
		msg += "\n  - " + e
	}
	return fmt.Errorf("%s", msg)
}
