package fault

import (
	"math/rand"
	"testing"
)

// testGeometry is a minimal Geometry satisfied by a fixed DDR4-shaped layout
// (8 chips x8, 64-bit channel, 8 beats) — independent of block.CacheLine so
// this package's tests don't need to import pkg/block.
type testGeometry struct{}

func (testGeometry) ChipWidth() int    { return 8 }
func (testGeometry) ChannelWidth() int { return 64 }
func (testGeometry) BeatHeight() int   { return 8 }

type fakeBlock struct{ flips map[int]int }

func newFakeBlock() *fakeBlock { return &fakeBlock{flips: map[int]int{}} }
func (b *fakeBlock) InvBit(pos int) { b.flips[pos]++ }

func TestNewSamplesWithinGeometryBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	geo := testGeometry{}

	for i := 0; i < 200; i++ {
		f := New(rng, geo, SBit, "single bit", permanent, 1, true, false, false, false, 0, 1)
		if f.BeatStart < 0 || f.BeatStart >= geo.BeatHeight() {
			t.Fatalf("beatStart %d out of range [0,%d)", f.BeatStart, geo.BeatHeight())
		}
		if f.ChipPos < 0 || f.ChipPos >= geo.ChannelWidth()/geo.ChipWidth() {
			t.Fatalf("chipPos %d out of range", f.ChipPos)
		}
		for _, pin := range f.PinPos {
			lo := f.ChipPos * geo.ChipWidth()
			hi := lo + geo.ChipWidth()
			if pin < lo || pin >= hi {
				t.Fatalf("pin %d outside chip's pin range [%d,%d)", pin, lo, hi)
			}
		}
	}
}

func TestUpdatePinPosDistinctPins(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	geo := testGeometry{}

	f := New(rng, geo, SWord, "single word", permanent, 4, true, false, false, false, 0, 1)
	seen := map[int]bool{}
	for _, pin := range f.PinPos {
		if seen[pin] {
			t.Fatalf("duplicate pin %d in PinPos %v", pin, f.PinPos)
		}
		seen[pin] = true
	}
}

func TestOverlapReflexive(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	geo := testGeometry{}
	f := New(rng, geo, SCol, "col", permanent, 1, false, false, true, false, 0, 1)

	if !Overlap(f, f) {
		t.Fatal("a fault must overlap itself")
	}
}

func TestOverlapSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	geo := testGeometry{}
	a := New(rng, geo, SBit, "a", permanent, 1, true, false, false, false, 0, 1)
	b := New(rng, geo, SRow, "b", permanent, 1, false, true, false, false, 0, 1)

	if Overlap(a, b) != Overlap(b, a) {
		t.Fatal("Overlap must be symmetric")
	}
}

func TestOverlapChannelMaskAlwaysTrue(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	geo := testGeometry{}
	a := New(rng, geo, Channel, "chan", permanent, 8, false, true, true, true, 0, 1)
	b := New(rng, geo, SBit, "bit", permanent, 1, true, false, false, false, 0, 1)

	// Channel's mask covers every address bit, so its fixed bits are empty
	// and it overlaps anything regardless of drawn address.
	if !Overlap(a, b) {
		t.Fatal("a CHANNEL-masked fault must overlap any other fault")
	}
}

func TestGenRandomErrorFlipsEveryBeatAndPin(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	geo := testGeometry{}
	f := New(rng, geo, SWord, "word", permanent, geo.ChipWidth(), true, false, false, false, 0, 1)
	f.BeatStart, f.BeatEnd = 2, 4

	blk := newFakeBlock()
	f.GenRandomError(blk)

	want := (f.BeatEnd - f.BeatStart + 1) * len(f.PinPos)
	if len(blk.flips) != want {
		t.Fatalf("flipped %d distinct bits, want %d", len(blk.flips), want)
	}
	for pos, n := range blk.flips {
		if n != 1 {
			t.Fatalf("bit %d flipped %d times, want 1", pos, n)
		}
	}
}

func TestGenRandomErrorsActivationProbabilityBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	geo := testGeometry{}
	f := New(rng, geo, SWord, "word", permanent, geo.ChipWidth(), true, false, false, false, 0, 1)
	f.BeatStart, f.BeatEnd = 0, 0

	never := newFakeBlock()
	f.GenRandomErrors(rng, never, 0, true)
	if len(never.flips) != 0 {
		t.Fatalf("activationProb=0 flipped %d bits, want 0", len(never.flips))
	}

	always := newFakeBlock()
	f.GenRandomErrors(rng, always, 1, true)
	if len(always.flips) != len(f.PinPos) {
		t.Fatalf("activationProb=1 flipped %d bits, want %d", len(always.flips), len(f.PinPos))
	}
}

func TestGenRandomFaultLiteralCodes(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	geo := testGeometry{}

	for _, code := range []string{"b", "w", "w2", "p", "c", "r", "sbit-t", "sbit-p"} {
		f, err := GenRandomFault(rng, geo, code)
		if err != nil {
			t.Fatalf("code %q: unexpected error %v", code, err)
		}
		if f == nil {
			t.Fatalf("code %q: nil fault with no error", code)
		}
	}
}

func TestGenRandomFaultInherentCodes(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	geo := testGeometry{}

	f, err := GenRandomFault(rng, geo, "i5")
	if err != nil {
		t.Fatalf("i5: unexpected error %v", err)
	}
	if !f.IsInherent || f.Kind != Inherent {
		t.Fatalf("i5: expected inherent Kind fault, got %+v", f)
	}
	if f.CellFaultRate != 1e-5 {
		t.Fatalf("i5: rate = %v, want 1e-5", f.CellFaultRate)
	}

	f2, err := GenRandomFault(rng, geo, "i7-2")
	if err != nil {
		t.Fatalf("i7-2: unexpected error %v", err)
	}
	if f2.CellFaultRate != 1e-7 {
		t.Fatalf("i7-2: rate = %v, want 1e-7", f2.CellFaultRate)
	}
}

func TestGenRandomFaultComponentCodes(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	geo := testGeometry{}

	cases := map[string]Kind{
		"bank_control_bank_8diff-t": BankPattern,
		"decoder_multi_col-p":       CDEC,
		"local_wordline-t":          LWL,
		"lwl_sel-p":                 RDEC,
		"row_decoder-t":             RDEC,
		"mutli_csls-p":              CSL,
		"single_sense_amp-t":        BLSA,
		"subarray_row_decoder-p":    SWD,
		"not_clustered_single_bank-t": SBank,
	}
	for code, wantKind := range cases {
		f, err := GenRandomFault(rng, geo, code)
		if err != nil {
			t.Fatalf("code %q: unexpected error %v", code, err)
		}
		if f.Kind != wantKind {
			t.Fatalf("code %q: kind = %v, want %v", code, f.Kind, wantKind)
		}
	}
}

func TestGenRandomFaultScaledPinCountCodes(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	geo := testGeometry{}

	f, err := GenRandomFault(rng, geo, "sword-3p-t")
	if err != nil {
		t.Fatalf("sword-3p-t: unexpected error %v", err)
	}
	if f.Kind != SWord || f.NumDQ != 3 || !f.IsTransient {
		t.Fatalf("sword-3p-t: got %+v", f)
	}

	f2, err := GenRandomFault(rng, geo, "scol-np-p")
	if err != nil {
		t.Fatalf("scol-np-p: unexpected error %v", err)
	}
	if f2.Kind != SCol || f2.NumDQ != geo.ChipWidth() || f2.IsTransient {
		t.Fatalf("scol-np-p: got %+v", f2)
	}
}

func TestGenRandomFaultWeightedBareCodes(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	geo := testGeometry{}

	for i := 0; i < 50; i++ {
		f, err := GenRandomFault(rng, geo, "scol-t")
		if err != nil {
			t.Fatalf("scol-t: unexpected error %v", err)
		}
		if f.Kind != SCol || f.NumDQ < 1 || f.NumDQ > 4 {
			t.Fatalf("scol-t: got %+v", f)
		}
	}
}

func TestGenRandomFaultDegenerateBankWeightedCodesFixedPins(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	geo := testGeometry{}

	for _, code := range []string{"sbank-t", "mbank-p", "mrank-t"} {
		for i := 0; i < 20; i++ {
			f, err := GenRandomFault(rng, geo, code)
			if err != nil {
				t.Fatalf("%s: unexpected error %v", code, err)
			}
			if f.NumDQ != 4 {
				t.Fatalf("%s: NumDQ = %d, want fixed 4 (degenerate weighted draw preserved from the original)", code, f.NumDQ)
			}
		}
	}
}

func TestGenRandomFaultNotImplementedCodes(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	geo := testGeometry{}

	_, err := GenRandomFault(rng, geo, "two_row_overlap-t")
	if _, ok := err.(ErrNotImplemented); !ok {
		t.Fatalf("two_row_overlap-t: got %v (%T), want ErrNotImplemented", err, err)
	}
}

func TestGenRandomFaultUnknownCode(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	geo := testGeometry{}

	_, err := GenRandomFault(rng, geo, "not_a_real_code")
	if _, ok := err.(ErrUnknownKind); !ok {
		t.Fatalf("not_a_real_code: got %v (%T), want ErrUnknownKind", err, err)
	}
}
