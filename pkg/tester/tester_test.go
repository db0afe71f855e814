package tester

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec/linear"
	"github.com/jihwankim/eccsim/pkg/ecc"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
	"github.com/jihwankim/eccsim/pkg/faultrate"
)

func newTestGroup(t *testing.T) (*faultdomain.Group, *ecc.Single) {
	t.Helper()
	c, err := linear.NewHsiao("Hsiao(72,64)", 72, 8)
	if err != nil {
		t.Fatalf("NewHsiao() error = %v", err)
	}
	s := ecc.NewSingle(c)
	info, err := faultrate.NewFromModule(0, faultrate.DefaultMultipliers(), false, false)
	if err != nil {
		t.Fatalf("NewFromModule() error = %v", err)
	}
	fd := faultdomain.New(1, 9, 8, 1, block.MSGConfig{}, info)
	return faultdomain.NewGroup(fd), s
}

func TestSystemRunCompletesAndReturnsReport(t *testing.T) {
	dg, s := newTestGroup(t)
	rng := rand.New(rand.NewSource(1))
	tst := NewSystem(0, 1, "DDR4", 1000, nil)

	report, err := tst.Run(rng, dg, s, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.TrialsRun != 2 {
		t.Fatalf("TrialsRun = %d, want 2", report.TrialsRun)
	}
	if report.YearsSim != MaxYear {
		t.Fatalf("YearsSim = %d, want %d", report.YearsSim, MaxYear)
	}
	if len(report.Outcome.DUE) != MaxYear || len(report.Outcome.SDC) != MaxYear {
		t.Fatalf("Outcome DUE/SDC length = %d/%d, want %d", len(report.Outcome.DUE), len(report.Outcome.SDC), MaxYear)
	}
}

func TestSystemAdvanceZeroRateNeverCrossesYearBoundary(t *testing.T) {
	tst := NewSystem(0, 1, "DDR4", 0, nil)
	rng := rand.New(rand.NewSource(1))
	if dt := tst.advance(rng, 0); !math.IsInf(dt, 1) {
		t.Fatalf("advance(0) = %v, want +Inf", dt)
	}
}

func TestSystemWeakCellSettersRoundTrip(t *testing.T) {
	tst := NewSystem(0, 1, "DDR4", 1000, nil)
	tst.SetRatioWC(0.1)
	tst.SetActiveProbWC(0.2)
	tst.SetRatioFWC(0.3)
	tst.SetActiveProbFWC(0.4)

	if tst.RatioWC() != 0.1 || tst.ActiveProbWC() != 0.2 || tst.RatioFWC() != 0.3 || tst.ActiveProbFWC() != 0.4 {
		t.Fatalf("weak-cell getters did not round-trip: %v %v %v %v", tst.RatioWC(), tst.ActiveProbWC(), tst.RatioFWC(), tst.ActiveProbFWC())
	}
}

func TestScenarioRunTalliesOutcomes(t *testing.T) {
	dg, s := newTestGroup(t)
	rng := rand.New(rand.NewSource(1))
	tst := NewScenario(0, 1, "DDR4", []string{"sbit-p"}, false, nil)

	report, err := tst.Run(rng, dg, s, 5)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.TrialsRun != 5 {
		t.Fatalf("TrialsRun = %d, want 5", report.TrialsRun)
	}
	sum := report.Outcome.NE + report.Outcome.CE + report.Outcome.DUE[0] + report.Outcome.SDC[0]
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("Outcome fractions sum = %v, want ~1", sum)
	}
}

func TestScenarioResetClearsPriorTally(t *testing.T) {
	dg, s := newTestGroup(t)
	rng := rand.New(rand.NewSource(1))
	tst := NewScenario(0, 1, "DDR4", []string{"sbit-p"}, false, nil)

	if _, err := tst.Run(rng, dg, s, 3); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if _, err := tst.Run(rng, dg, s, 1); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	var total int64
	for _, c := range tst.errorCount {
		total += c
	}
	if total != 1 {
		t.Fatalf("errorCount total after second Run() = %d, want 1 (reset between runs)", total)
	}
}
