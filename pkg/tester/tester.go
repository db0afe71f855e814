// Package tester implements the two Monte-Carlo evaluation modes spec §6's
// CLI contract exposes, grounded on dram_error_sim's Tester.hh: system
// evaluation advances simulated time with a Poisson process and buckets
// outcomes by year, while scenario evaluation injects a fixed fault-kind
// combination repeatedly and tallies outcome frequencies.
package tester

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jihwankim/eccsim/pkg/faultdomain"
	"github.com/jihwankim/eccsim/pkg/telemetry"
)

// MaxYear is Tester.hh's MAX_YEAR: the outcome tables are bucketed into 6
// simulated years.
const MaxYear = 6

// yearHours is the Poisson process's year length in hours, the unit
// FaultRateInfo's per-access rates and RunConfig's Years field both use.
const yearHours = 365 * 24

// Tester is Tester.hh's Tester base class: one entry point that runs
// runCount trials against a DomainGroup/ECC pair and returns a report.
type Tester interface {
	Run(rng *rand.Rand, dg *faultdomain.Group, ecc faultdomain.ECC, runCount int64) (*telemetry.RunReport, error)
}

// System is TesterSystem: advances simulated time access-by-access via a
// Poisson process driven by the aggregate per-access fault rate, bucketing
// DUE/SDC/retirement counts into MaxYear yearly slots per trial.
type System struct {
	SystemID int
	Seed     int64
	DramType string

	// TotalFaultRate is the module's access rate in accesses/hour, driving
	// advance's exponential inter-access time draw. Each AdvanceSystem call
	// already draws its own fault (or none) from the domain's FaultRateInfo
	// table internally, so this rate only governs how many accesses occur
	// before a simulated year boundary is crossed, not whether an individual
	// access carries a fault.
	TotalFaultRate float64

	Progress *telemetry.ProgressReporter
	Metrics  *telemetry.Metrics

	ratioWeakCells         float64
	actProbWeakCells       float64
	ratioFrequentWeakCells float64
	actProbFWCs            float64

	badCount      int64
	retireByYear  [MaxYear]int64
	dueByYear     [MaxYear]int64
	sdcByYear     [MaxYear]int64
}

// SetMetrics attaches a live Prometheus exporter; each trial's decode
// outcome and latency are observed as they're produced instead of only
// appearing in the report once the whole run completes.
func (s *System) SetMetrics(m *telemetry.Metrics) { s.Metrics = m }

// NewSystem builds a system-evaluation tester for a total per-access fault
// rate (hours^-1), matching TesterSystem's default-constructed state.
func NewSystem(systemID int, seed int64, dramType string, totalFaultRate float64, progress *telemetry.ProgressReporter) *System {
	return &System{SystemID: systemID, Seed: seed, DramType: dramType, TotalFaultRate: totalFaultRate, Progress: progress}
}

func (s *System) RatioWC() float64          { return s.ratioWeakCells }
func (s *System) SetRatioWC(p float64)      { s.ratioWeakCells = p }
func (s *System) ActiveProbWC() float64     { return s.actProbWeakCells }
func (s *System) SetActiveProbWC(r float64) { s.actProbWeakCells = r }
func (s *System) RatioFWC() float64         { return s.ratioFrequentWeakCells }
func (s *System) SetRatioFWC(p float64)     { s.ratioFrequentWeakCells = p }
func (s *System) ActiveProbFWC() float64    { return s.actProbFWCs }
func (s *System) SetActiveProbFWC(r float64) { s.actProbFWCs = r }

// reset zeros every counter between runs, mirroring TesterSystem::reset.
func (s *System) reset() {
	s.badCount = 0
	for y := 0; y < MaxYear; y++ {
		s.retireByYear[y] = 0
		s.dueByYear[y] = 0
		s.sdcByYear[y] = 0
	}
}

// advance draws the exponential inter-access time implied by faultRate
// (TesterSystem::advance): -ln(U)/rate hours until the next access that can
// possibly carry a fault.
func (s *System) advance(rng *rand.Rand, faultRate float64) float64 {
	if faultRate <= 0 {
		return math.Inf(1)
	}
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return -math.Log(u) / faultRate
}

// Run executes runCount independent trials, each simulating up to
// MaxYear*yearHours of elapsed time one Poisson-spaced access at a time.
func (s *System) Run(rng *rand.Rand, dg *faultdomain.Group, ecc faultdomain.ECC, runCount int64) (*telemetry.RunReport, error) {
	s.reset()
	start := time.Now()

	for run := int64(0); run < runCount; run++ {
		dg.Clear()
		elapsed := 0.0
		year := 0
		retiredAtYearStart := retiredBlkTotal(dg)

		for year < MaxYear {
			dt := s.advance(rng, s.TotalFaultRate)
			if elapsed+dt >= float64(year+1)*yearHours {
				retiredNow := retiredBlkTotal(dg)
				s.retireByYear[year] += retiredNow - retiredAtYearStart
				retiredAtYearStart = retiredNow
				year++
				continue
			}
			elapsed += dt

			decodeStart := time.Now()
			out, err := dg.AdvanceSystem(rng, ecc)
			if err != nil {
				return nil, err
			}
			if s.Metrics != nil {
				s.Metrics.DecodeLatency.Observe(time.Since(decodeStart).Seconds())
				s.Metrics.ObserveOutcome(out.String())
			}
			switch out {
			case faultdomain.DUE:
				s.dueByYear[year]++
				s.badCount++
			case faultdomain.SDC:
				s.sdcByYear[year]++
				s.badCount++
			case faultdomain.CE:
				s.badCount++
			}
		}

		if s.Progress != nil {
			s.Progress.ReportProgress(run+1, s.outcomeSnapshot(run+1))
		}
	}

	report := &telemetry.RunReport{
		RunID:     fmt.Sprintf("system-%d-seed%d-%d", s.SystemID, s.Seed, start.UnixNano()),
		SystemID:  s.SystemID,
		Mode:      "system",
		Seed:      s.Seed,
		DramType:  s.DramType,
		StartTime: start,
		EndTime:   time.Now(),
		Status:    telemetry.StatusCompleted,
		TrialsRun: runCount,
		YearsSim:  MaxYear,
		Outcome:   s.outcomeSnapshot(runCount),
	}
	report.Duration = report.EndTime.Sub(report.StartTime).String()
	return report, nil
}

// retiredBlkTotal sums RetiredBlkCount across every domain in the group,
// used to derive per-year retirement deltas since FaultDomain tracks
// retirement cumulatively rather than per-year.
func retiredBlkTotal(dg *faultdomain.Group) int64 {
	var total int64
	for _, d := range dg.Domains {
		total += int64(d.RetiredBlkCount)
	}
	return total
}

// RetiredPerYear returns the average number of blocks retired per trial in
// each simulated year (Tester.hh's RetireCntYear). telemetry.YearOutcome has
// no retirement field, so callers that need this (e.g. a report command
// wanting the full per-year breakdown) read it separately from the report.
func (s *System) RetiredPerYear(runs int64) [MaxYear]float64 {
	var out [MaxYear]float64
	if runs == 0 {
		return out
	}
	for y := 0; y < MaxYear; y++ {
		out[y] = float64(s.retireByYear[y]) / float64(runs)
	}
	return out
}

func (s *System) outcomeSnapshot(runs int64) telemetry.YearOutcome {
	due := make([]float64, MaxYear)
	sdc := make([]float64, MaxYear)
	if runs > 0 {
		for y := 0; y < MaxYear; y++ {
			due[y] = float64(s.dueByYear[y]) / float64(runs)
			sdc[y] = float64(s.sdcByYear[y]) / float64(runs)
		}
	}
	ne := 1.0
	if runs > 0 {
		ne = 1 - float64(s.badCount)/float64(runs)
	}
	return telemetry.YearOutcome{NE: ne, CE: 0, DUE: due, SDC: sdc}
}

// Scenario is TesterScenario: injects the same fixed fault-kind
// combination runCount times and tallies the resulting outcome
// distribution, spec §6's scenario-evaluation mode.
type Scenario struct {
	SystemID         int
	Seed             int64
	DramType         string
	Codes            []string
	ChipOverlapCheck bool

	Progress *telemetry.ProgressReporter
	Metrics  *telemetry.Metrics

	errorCount map[faultdomain.Outcome]int64
}

// SetMetrics attaches a live Prometheus exporter, matching System.SetMetrics.
func (s *Scenario) SetMetrics(m *telemetry.Metrics) { s.Metrics = m }

// NewScenario builds a scenario-evaluation tester for the given fault-kind
// codes, injected in order every trial (e.g. {"sbit-p","sbit-p"} for spec
// 4.H scenario B/C's two single-bit permanent faults).
func NewScenario(systemID int, seed int64, dramType string, codes []string, chipOverlapCheck bool, progress *telemetry.ProgressReporter) *Scenario {
	return &Scenario{SystemID: systemID, Seed: seed, DramType: dramType, Codes: codes, ChipOverlapCheck: chipOverlapCheck, Progress: progress}
}

// reset clears the outcome tally, mirroring TesterScenario::reset.
func (s *Scenario) reset() {
	s.errorCount = map[faultdomain.Outcome]int64{}
}

func (s *Scenario) Run(rng *rand.Rand, dg *faultdomain.Group, ecc faultdomain.ECC, runCount int64) (*telemetry.RunReport, error) {
	s.reset()
	start := time.Now()

	for run := int64(0); run < runCount; run++ {
		dg.Clear()
		decodeStart := time.Now()
		out, err := dg.AdvanceScenario(rng, ecc, s.Codes, s.ChipOverlapCheck)
		if err != nil {
			return nil, err
		}
		if s.Metrics != nil {
			s.Metrics.DecodeLatency.Observe(time.Since(decodeStart).Seconds())
			s.Metrics.ObserveOutcome(out.String())
		}
		s.errorCount[out]++

		if s.Progress != nil {
			s.Progress.ReportProgress(run+1, s.outcomeSnapshot(run+1))
		}
	}

	report := &telemetry.RunReport{
		RunID:     fmt.Sprintf("scenario-%d-seed%d-%d", s.SystemID, s.Seed, start.UnixNano()),
		SystemID:  s.SystemID,
		Mode:      fmt.Sprintf("scenario:%v", s.Codes),
		Seed:      s.Seed,
		DramType:  s.DramType,
		StartTime: start,
		EndTime:   time.Now(),
		Status:    telemetry.StatusCompleted,
		TrialsRun: runCount,
		Outcome:   s.outcomeSnapshot(runCount),
	}
	report.Duration = report.EndTime.Sub(report.StartTime).String()
	return report, nil
}

func (s *Scenario) outcomeSnapshot(runs int64) telemetry.YearOutcome {
	if runs == 0 {
		return telemetry.YearOutcome{NE: 1}
	}
	ne := float64(s.errorCount[faultdomain.NE]) / float64(runs)
	ce := float64(s.errorCount[faultdomain.CE]) / float64(runs)
	due := float64(s.errorCount[faultdomain.DUE]) / float64(runs)
	sdc := float64(s.errorCount[faultdomain.SDC]) / float64(runs)
	return telemetry.YearOutcome{NE: ne, CE: ce, DUE: []float64{due}, SDC: []float64{sdc}}
}
