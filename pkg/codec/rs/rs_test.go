package rs

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/gf"
)

func newTestField(t *testing.T) *gf.Field {
	t.Helper()
	f, err := gf.NewField(8)
	if err != nil {
		t.Fatalf("NewField(8): %v", err)
	}
	return f
}

func TestRSRoundTripNoError(t *testing.T) {
	f := newTestField(t)
	r, err := NewRS("RS(16,12,2)", f, 16, 4, 2, 4)
	if err != nil {
		t.Fatalf("NewRS() error = %v", err)
	}

	data := block.NewBlock(r.SymK() * f.M)
	for i := 0; i < r.SymK(); i++ {
		data.SetSymbol(f.M, i, (i*7+1)%255)
	}

	encoded := block.NewECCWord(r.BitN(), r.BitK())
	r.Encode(data, encoded)

	decoded := block.NewECCWord(r.BitN(), r.BitK())
	if got := r.Decode(encoded, decoded, nil); got != codec.NE {
		t.Fatalf("got %v, want NE", got)
	}
	for i := 0; i < r.SymK(); i++ {
		if decoded.GetSymbol(f.M, i) != data.GetSymbol(f.M, i) {
			t.Fatalf("data symbol %d mismatch: got %d want %d", i, decoded.GetSymbol(f.M, i), data.GetSymbol(f.M, i))
		}
	}
}

func TestRSSingleSymbolErrorCorrects(t *testing.T) {
	f := newTestField(t)
	r, err := NewRS("RS(16,12,2)", f, 16, 4, 2, 4)
	if err != nil {
		t.Fatalf("NewRS() error = %v", err)
	}

	data := block.NewBlock(r.SymK() * f.M)

	encoded := block.NewECCWord(r.BitN(), r.BitK())
	r.Encode(data, encoded)
	encoded.InvSymbol(f.M, 3, 0x15)

	decoded := block.NewECCWord(r.BitN(), r.BitK())
	corrected := map[int]struct{}{}
	got := r.Decode(encoded, decoded, corrected)
	if got != codec.CE {
		t.Fatalf("got %v, want CE", got)
	}
	if _, ok := corrected[3]; !ok {
		t.Fatal("expected symbol 3 recorded as corrected")
	}
}

func TestRSDualNoError(t *testing.T) {
	f := newTestField(t)
	d := NewRSDual("RS_DUAL(16,4,4)", f, 16, 8, 4)

	msg := block.NewECCWord(d.BitN(), d.BitK())
	decoded := block.NewECCWord(d.BitN(), d.BitK())
	if got := d.Decode(msg, decoded, nil, nil); got != codec.NE {
		t.Fatalf("got %v, want NE", got)
	}
}
