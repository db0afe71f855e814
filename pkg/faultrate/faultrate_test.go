package faultrate

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromModuleBuildsNonEmptyTable(t *testing.T) {
	for module := 0; module <= 3; module++ {
		info, err := NewFromModule(module, DefaultMultipliers(), false, true)
		if err != nil {
			t.Fatalf("module %d: unexpected error %v", module, err)
		}
		if len(info.rates) == 0 {
			t.Fatalf("module %d: expected a populated rate table", module)
		}
		if info.totalRate <= 0 {
			t.Fatalf("module %d: totalRate = %v, want > 0", module, info.totalRate)
		}
	}
}

func TestNewFromModuleRejectsUnknownModule(t *testing.T) {
	if _, err := NewFromModule(7, DefaultMultipliers(), false, true); err == nil {
		t.Fatal("expected an error for an unknown module id")
	}
}

func TestNewFromModuleHBMSuppressesMultiRankTail(t *testing.T) {
	withTail, err := NewFromModule(0, DefaultMultipliers(), false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withoutTail, err := NewFromModule(0, DefaultMultipliers(), true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(withoutTail.rates) >= len(withTail.rates) {
		t.Fatalf("hbmSetup=true should drop the multi_rank tail: got %d vs %d entries",
			len(withoutTail.rates), len(withTail.rates))
	}
}

func TestPickRandomTypeRespectsWeights(t *testing.T) {
	info := New(true)
	info.AddRate("always", 1.0)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		name, rate, err := info.PickRandomType(rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != "always" || rate != 1.0 {
			t.Fatalf("got (%q, %v), want (\"always\", 1.0)", name, rate)
		}
	}
}

func TestPickRandomTypeEmptyTableErrors(t *testing.T) {
	info := New(true)
	if _, _, err := info.PickRandomType(rand.New(rand.NewSource(2))); err == nil {
		t.Fatal("expected an error picking from an empty rate table")
	}
}

func TestSimplifyNameFoldsDetailedVariants(t *testing.T) {
	info := New(false)
	info.AddRate("single_sense_amp-t", 1e-9)
	info.AddRate("not_clustered_single_bank-p", 1e-9)

	got := map[string]bool{}
	for _, r := range info.rates {
		got[r.name] = true
	}
	if !got["scol-t"] {
		t.Fatalf("expected single_sense_amp-t folded to scol-t, got %v", info.rates)
	}
	if !got["sbank-p"] {
		t.Fatalf("expected not_clustered_single_bank-p folded to sbank-p, got %v", info.rates)
	}
}

func TestRemoveLastRate(t *testing.T) {
	info := New(true)
	info.AddRate("a", 1.0)
	info.AddRate("b", 2.0)
	info.RemoveLastRate()

	if len(info.rates) != 1 || info.rates[0].name != "a" {
		t.Fatalf("expected only \"a\" to remain, got %v", info.rates)
	}
	if info.totalRate != 1.0 {
		t.Fatalf("totalRate = %v, want 1.0", info.totalRate)
	}
}

func TestOverlapProbBoundaryKinds(t *testing.T) {
	info := New(true)

	p, err := info.OverlapProb("Mrank", 0)
	if err != nil || p != 0 {
		t.Fatalf("Mrank at pWord=0: got (%v, %v), want (0, nil)", p, err)
	}
	p, err = info.OverlapProb("Mrank", 1e-10)
	if err != nil || p != 1 {
		t.Fatalf("Mrank at pWord=1e-10: got (%v, %v), want (1, nil)", p, err)
	}
	p, err = info.OverlapProb("Sbit", 0.5)
	if err != nil || p <= 0 || p >= 1 {
		t.Fatalf("Sbit overlap prob out of (0,1): got (%v, %v)", p, err)
	}
	if _, err := info.OverlapProb("NotAKind", 0.1); err == nil {
		t.Fatal("expected an error for an unrecognized overlap kind")
	}
}

func TestLoadFromFileParsesValidAndSkipsInvalidLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input_FIT.conf")
	content := "\"sbit-t\",1.5\n\"missing_quotes,2.0\nbadline\n\"sbit-p\",-1.0\n\"sbit-p\",0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}

	info, lineErrors, err := LoadFromFile(path, DefaultMultipliers(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lineErrors) != 3 {
		t.Fatalf("expected 3 skipped lines, got %d: %v", len(lineErrors), lineErrors)
	}
	if len(info.rates) != 2 {
		t.Fatalf("expected 2 valid entries, got %d: %v", len(info.rates), info.rates)
	}
}

func TestSetIFRateProducesMonotoneDecreasingSingleRates(t *testing.T) {
	ir := NewInherentRate()
	ir.SetIFRate(72, WeakCellParams{
		RatioWC: 1e-6, ActiveProbWC: 0.1, RatioFWC: 1e-5, ActiveProbFWC: 0.3,
	})

	if !ir.Computed() {
		t.Fatal("expected Computed() true after SetIFRate")
	}
	if ir.Rate(Single) <= 0 {
		t.Fatalf("Rate(Single) = %v, want > 0", ir.Rate(Single))
	}
	if ir.Rate(Single) <= ir.Rate(Double) {
		t.Fatalf("expected Rate(Single) > Rate(Double): got %v, %v", ir.Rate(Single), ir.Rate(Double))
	}
	if ir.PWordWC() <= 0 {
		t.Fatalf("PWordWC() = %v, want > 0", ir.PWordWC())
	}
}

func TestRatePanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an out-of-range ErrorPattern")
		}
	}()
	NewInherentRate().Rate(patternCount)
}
