package faultdomain

import (
	"math/rand"
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultrate"
)

type fakeECC struct {
	decodeResult   Outcome
	doRetire       bool
	needRetire     bool
	maxRetired     uint64
	chipRand       bool
	decodeCalls    int
}

func (e *fakeECC) Decode(fd *FaultDomain, blk *block.CacheLine) Outcome {
	e.decodeCalls++
	return e.decodeResult
}
func (e *fakeECC) InDRAM() int                                      { return 1 }
func (e *fakeECC) InDRAMDown() int                                  { return 1 }
func (e *fakeECC) DoRetire() bool                                   { return e.doRetire }
func (e *fakeECC) NeedRetire(fd *FaultDomain, f *fault.Fault) bool  { return e.needRetire }
func (e *fakeECC) MaxRetiredBlkCount() uint64                       { return e.maxRetired }
func (e *fakeECC) ChipRand() bool                                   { return e.chipRand }
func (e *fakeECC) InitialRetiredBlkCount(fd *FaultDomain, rate float64) uint64 { return 0 }

func newTestDomain() *FaultDomain {
	info := faultrate.New(true)
	info.AddRate("sbit-t", 1e-9)
	return New(1, 9, 8, 8, block.MSGConfig{}, info)
}

func TestGeometrySatisfiesFaultGeometry(t *testing.T) {
	fd := newTestDomain()
	if fd.ChipWidth() != 8 {
		t.Fatalf("ChipWidth() = %d, want 8", fd.ChipWidth())
	}
	if fd.ChannelWidth() != 9*8 {
		t.Fatalf("ChannelWidth() = %d, want %d", fd.ChannelWidth(), 9*8)
	}
	if fd.BeatHeight() != 8 {
		t.Fatalf("BeatHeight() = %d, want 8", fd.BeatHeight())
	}
}

func TestChannelWidthShrinksAfterRetirement(t *testing.T) {
	fd := newTestDomain()
	before := fd.ChannelWidth()
	fd.RetireChip(0)
	if fd.ChannelWidth() != before-8 {
		t.Fatalf("ChannelWidth() after retiring a chip = %d, want %d", fd.ChannelWidth(), before-8)
	}
}

func TestRetireChipRemovesMatchingFaults(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		f, err := fault.GenRandomFault(rng, fd, "sbit-p")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fd.OperationalFaultList = append(fd.OperationalFaultList, f)
	}
	target := fd.OperationalFaultList[0].ChipPos
	fd.RetireChip(target)

	for _, f := range fd.OperationalFaultList {
		if f.ChipPos == target {
			t.Fatalf("found a surviving fault on retired chip %d", target)
		}
	}
	found := false
	for _, c := range fd.RetiredChipIDList {
		if c == target {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %d in RetiredChipIDList", target)
	}
}

func TestScrubDropsOnlyTransientFaults(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(2))
	transient, _ := fault.GenRandomFault(rng, fd, "sbit-t")
	permanent, _ := fault.GenRandomFault(rng, fd, "sbit-p")
	fd.OperationalFaultList = []*fault.Fault{transient, permanent}
	fd.ActiveFaultList = []*fault.Fault{transient, permanent}

	fd.Scrub()

	if len(fd.OperationalFaultList) != 1 || fd.OperationalFaultList[0] != permanent {
		t.Fatalf("expected only the permanent fault to survive scrub, got %v", fd.OperationalFaultList)
	}
}

func TestGenScenarioRandomFaultAndTestInjectsAndDecodes(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(3))
	ecc := &fakeECC{decodeResult: CE}

	out, err := fd.GenScenarioRandomFaultAndTest(rng, ecc, []string{"sbit-p"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != CE {
		t.Fatalf("outcome = %v, want CE", out)
	}
	if ecc.decodeCalls != 1 {
		t.Fatalf("decodeCalls = %d, want 1", ecc.decodeCalls)
	}
	if len(fd.OperationalFaultList) != 1 {
		t.Fatalf("expected 1 operational fault, got %d", len(fd.OperationalFaultList))
	}
}

func TestGenScenarioRandomFaultAndTestPropagatesUnknownCode(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(4))
	ecc := &fakeECC{decodeResult: NE}

	if _, err := fd.GenScenarioRandomFaultAndTest(rng, ecc, []string{"not_a_real_code"}, false); err == nil {
		t.Fatal("expected an error for an unknown fault code")
	}
}

func TestGenSystemRandomFaultAndTestDrawsAndDecodes(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(5))
	ecc := &fakeECC{decodeResult: CE, doRetire: false}

	out, err := fd.GenSystemRandomFaultAndTest(rng, ecc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != CE {
		t.Fatalf("outcome = %v, want CE", out)
	}
	if len(fd.OperationalFaultList) != 1 {
		t.Fatalf("expected 1 operational fault after one draw, got %d", len(fd.OperationalFaultList))
	}
}

// A fault drawn through fault.GenRandomFault always carries AffectedBlkCount
// == 0 (no fault-kind constructor in pkg/fault sets it otherwise), so the
// retire branch's `if newFault->getAffectedBlkCount() > 0` guard — ported
// faithfully from FaultDomain::genSystemRandomFaultAndTest — never actually
// moves a freshly drawn fault into the retired set even when every other
// retirement condition holds. This documents that preserved quirk rather
// than a still-missing feature.
func TestGenSystemRandomFaultAndTestDoesNotRetireZeroAffectedBlkCountFault(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(6))
	ecc := &fakeECC{decodeResult: CE, doRetire: true, needRetire: true, maxRetired: 1000}

	if _, err := fd.GenSystemRandomFaultAndTest(rng, ecc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fd.OperationalFaultList) != 1 {
		t.Fatalf("expected the fault to remain operational, got %d remaining", len(fd.OperationalFaultList))
	}
	if fd.RetiredBlkCount != 0 {
		t.Fatalf("RetiredBlkCount = %d, want 0", fd.RetiredBlkCount)
	}
}

func TestWorse(t *testing.T) {
	cases := []struct{ a, b, want Outcome }{
		{NE, CE, CE}, {CE, DUE, DUE}, {DUE, SDC, SDC}, {SDC, NE, SDC}, {CE, CE, CE},
	}
	for _, c := range cases {
		if got := Worse(c.a, c.b); got != c.want {
			t.Fatalf("Worse(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestFaultyChipDetectSingleFault(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(7))
	f, _ := fault.GenRandomFault(rng, fd, "c")
	fd.OperationalFaultList = []*fault.Fault{f}

	ids := fd.FaultyChipDetect()
	if len(ids) != 1 || ids[0] != f.ChipPos {
		t.Fatalf("FaultyChipDetect() = %v, want [%d]", ids, f.ChipPos)
	}
}

func TestFaultyChipDetectEmpty(t *testing.T) {
	fd := newTestDomain()
	if ids := fd.FaultyChipDetect(); ids != nil {
		t.Fatalf("FaultyChipDetect() on an empty domain = %v, want nil", ids)
	}
}

func TestFaultyChipDetectVariant1SingleFault(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(10))
	f, _ := fault.GenRandomFault(rng, fd, "c")
	fd.OperationalFaultList = []*fault.Fault{f}

	ids := fd.FaultyChipDetectVariant1()
	if len(ids) != 1 || ids[0] != f.ChipPos {
		t.Fatalf("FaultyChipDetectVariant1() = %v, want [%d]", ids, f.ChipPos)
	}
}

func TestFaultyChipDetectVariant2ReturnsAtMostOne(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(11))
	f, _ := fault.GenRandomFault(rng, fd, "c")
	fd.OperationalFaultList = []*fault.Fault{f}

	ids := fd.FaultyChipDetectVariant2()
	if len(ids) != 1 || ids[0] != f.ChipPos {
		t.Fatalf("FaultyChipDetectVariant2() = %v, want [%d]", ids, f.ChipPos)
	}
}

func TestOverlappedAddrCombinesMaskedBits(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(8))
	f, _ := fault.GenRandomFault(rng, fd, "sbit-p")
	fd.OperationalFaultList = []*fault.Fault{f}
	fd.CurrentPossibleFaultList = []*fault.Fault{f}

	if got, want := fd.OverlappedAddr(), f.Addr&^f.Mask; got != want {
		t.Fatalf("OverlappedAddr() = %#x, want %#x", got, want)
	}
}

func TestSetFaultStatsAndGetFaultStats(t *testing.T) {
	fd := newTestDomain()
	rng := rand.New(rand.NewSource(9))
	f, _ := fault.GenRandomFault(rng, fd, "sbit-p")
	fd.ActiveFaultList = []*fault.Fault{f}

	fd.SetFaultStats(SDC, 0)
	stats := fd.GetFaultStats(SDC, 1)
	if stats[bucketSbit] <= 0 {
		t.Fatalf("expected bucketSbit to be tallied, got stats=%v", stats)
	}
}
