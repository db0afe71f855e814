// Package fuzz sweeps randomized (system-id, seed) pairs from the catalog
// against pkg/tester, the way the teacher's pkg/fuzz sweeps randomized
// (fault-spec, seed) pairs against a live enclave: same seeded-rand
// round loop, JSONL audit log, and a reproduce-with-this-seed hint on
// failure.
package fuzz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jihwankim/eccsim/pkg/catalog"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/faultrate"
	"github.com/jihwankim/eccsim/pkg/gf"
	"github.com/jihwankim/eccsim/pkg/telemetry"
	"github.com/jihwankim/eccsim/pkg/tester"
)

// RoundResult is one entry in the JSONL run log.
type RoundResult struct {
	Session   string             `json:"session"`
	Seed      int64                 `json:"seed"`
	Round     int                   `json:"round"`
	SystemID  int                   `json:"system_id"`
	Outcome   telemetry.YearOutcome `json:"outcome,omitempty"`
	Result    string                `json:"result"` // "passed" | "failed" | "dry-run" | "interrupted"
	ElapsedS  float64               `json:"elapsed_s"`
	Timestamp string                `json:"timestamp"`
}

// Config holds all settings for a fuzz session.
type Config struct {
	SystemIDs   []int // empty = sweep every system in the catalog
	RoundTrials int64 // trials per round, kept small so a sweep covers many systems quickly
	Rounds      int
	RateInfo    *faultrate.Info
	DramType    string
	Seed        int64 // 0 = auto-generate
	DryRun      bool
	LogPath     string
}

// Runner executes randomized fuzz rounds against the system catalog.
type Runner struct {
	cfg     *Config
	catalog *catalog.Catalog
	logger  *telemetry.Logger
}

// NewRunner builds a Runner over cat's systems.
func NewRunner(cfg *Config, cat *catalog.Catalog, logger *telemetry.Logger) *Runner {
	return &Runner{cfg: cfg, catalog: cat, logger: logger}
}

// failThreshold is the worst DUE+SDC fraction in the final simulated year a
// round may reach before it's logged "failed" rather than "passed" — there is
// no pass/fail criterion in the domain model itself, so the runner treats any
// nonzero uncorrectable rate as noteworthy for a fuzz sweep.
const failThreshold = 0.0

// Run executes cfg.Rounds fuzz rounds sequentially, logging each to cfg.LogPath.
func (r *Runner) Run(ctx context.Context) error {
	ids := r.cfg.SystemIDs
	if len(ids) == 0 {
		for _, sys := range r.catalog.Systems {
			ids = append(ids, sys.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("fuzz: catalog has no systems to sweep")
	}

	seed := r.cfg.Seed
	if seed == 0 {
		seed = rand.Int63() //nolint:gosec
	}
	rng := rand.New(rand.NewSource(seed))

	sessionID := time.Now().Format(time.RFC3339)
	fmt.Printf("Seed: %d  (pass --seed %d to reproduce)\n\n", seed, seed)
	fmt.Printf("Starting %d fuzz rounds over %d system(s)\n", r.cfg.Rounds, len(ids))
	fmt.Println(strings.Repeat("─", 72))

	passed, failed := 0, 0
	interrupted := false

	for round := 1; round <= r.cfg.Rounds; round++ {
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		systemID := ids[rng.Intn(len(ids))]
		roundSeed := rng.Int63()

		fmt.Printf("\n[%d/%d] system %d  seed %d\n", round, r.cfg.Rounds, systemID, roundSeed)

		if r.cfg.DryRun {
			fmt.Println("  (dry-run)")
			r.appendLog(sessionID, seed, round, systemID, telemetry.YearOutcome{}, "dry-run", 0)
			continue
		}

		start := time.Now()
		outcome, runErr := r.execute(systemID, roundSeed)
		elapsed := time.Since(start).Seconds()

		if ctx.Err() != nil {
			r.appendLog(sessionID, seed, round, systemID, outcome, "interrupted", elapsed)
			interrupted = true
			break
		}

		status := "passed"
		if runErr != nil {
			status = "failed"
			r.logger.Error("round execution error", "round", round, "error", runErr)
		} else if worstDUESDC(outcome) > failThreshold {
			status = "failed"
		}
		fmt.Printf("  → %s  (%.2fs)\n", strings.ToUpper(status), elapsed)

		if status == "passed" {
			passed++
		} else {
			failed++
		}

		r.appendLog(sessionID, seed, round, systemID, outcome, status, elapsed)
	}

	fmt.Println("\n" + strings.Repeat("─", 72))
	if interrupted {
		fmt.Printf("Interrupted.  %d passed  %d failed  (seed=%d)\n", passed, failed, seed)
	} else {
		fmt.Printf("Done.  %d passed  %d failed  (seed=%d)\n", passed, failed, seed)
	}
	if failed > 0 {
		fmt.Printf("\nReproduce: eccsim fuzz --seed %d --rounds %d\n", seed, r.cfg.Rounds)
	}
	fmt.Printf("Log: %s\n", r.cfg.LogPath)
	return nil
}

// execute builds systemID's DomainGroup/ECC pair from the catalog and runs
// one system-evaluation trial batch against it.
func (r *Runner) execute(systemID int, seed int64) (telemetry.YearOutcome, error) {
	sys, err := r.catalog.Lookup(systemID)
	if err != nil {
		return telemetry.YearOutcome{}, err
	}
	dg, ecc, err := sys.BuildWithInfo(r.cfg.RateInfo)
	if err != nil {
		var shapeErr *codec.CodecShapeMismatch
		var fieldErr *gf.ErrUnsupportedField
		switch {
		case errors.As(err, &shapeErr):
			r.logger.Error("codec shape mismatch", "codec_name", shapeErr.CodecName, "reason", shapeErr.Reason)
		case errors.As(err, &fieldErr):
			r.logger.Error("unsupported field size", "field_size", fieldErr.M)
		}
		return telemetry.YearOutcome{}, err
	}

	dramType := r.cfg.DramType
	if dramType == "" {
		dramType = sys.DramType
	}
	tst := tester.NewSystem(systemID, seed, dramType, 1000, nil)
	rng := rand.New(rand.NewSource(seed))

	trials := r.cfg.RoundTrials
	if trials <= 0 {
		trials = 1000
	}
	report, err := tst.Run(rng, dg, ecc, trials)
	if err != nil {
		return telemetry.YearOutcome{}, err
	}
	return report.Outcome, nil
}

// worstDUESDC returns the highest DUE+SDC fraction across every simulated
// year in outcome.
func worstDUESDC(outcome telemetry.YearOutcome) float64 {
	worst := 0.0
	for y := 0; y < len(outcome.DUE) && y < len(outcome.SDC); y++ {
		if v := outcome.DUE[y] + outcome.SDC[y]; v > worst {
			worst = v
		}
	}
	return worst
}

// appendLog appends a RoundResult entry to the JSONL log file.
func (r *Runner) appendLog(session string, seed int64, round int, systemID int, outcome telemetry.YearOutcome, result string, elapsed float64) {
	entry := RoundResult{
		Session:   session,
		Seed:      seed,
		Round:     round,
		SystemID:  systemID,
		Outcome:   outcome,
		Result:    result,
		ElapsedS:  elapsed,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if err := os.MkdirAll(filepath.Dir(r.cfg.LogPath), 0755); err != nil {
		r.logger.Warn("failed to create log dir", "error", err)
		return
	}

	f, err := os.OpenFile(r.cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		r.logger.Warn("failed to open log file", "error", err)
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = f.WriteString(string(data) + "\n")
}
