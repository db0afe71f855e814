package bch

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

func TestBCHRoundTripNoError(t *testing.T) {
	f := newTestField(t)
	c, err := NewBCH("TEC BCH", f, 255, 3)
	if err != nil {
		t.Fatalf("NewBCH() error = %v", err)
	}

	data := block.NewBlock(c.BitK())
	for i := 0; i < c.BitK(); i += 7 {
		data.SetBit(i, true)
	}

	encoded := block.NewECCWord(c.BitN(), c.BitK())
	c.Encode(data, encoded)

	decoded := block.NewECCWord(c.BitN(), c.BitK())
	if got := c.Decode(encoded, decoded, nil); got != codec.NE {
		t.Fatalf("got %v, want NE", got)
	}
}

func TestBCHSingleBitErrorCorrects(t *testing.T) {
	f := newTestField(t)
	c, err := NewBCH("TEC BCH", f, 255, 3)
	if err != nil {
		t.Fatalf("NewBCH() error = %v", err)
	}

	data := block.NewBlock(c.BitK())
	encoded := block.NewECCWord(c.BitN(), c.BitK())
	c.Encode(data, encoded)
	encoded.InvBit(42)

	decoded := block.NewECCWord(c.BitN(), c.BitK())
	corrected := map[int]struct{}{}
	got := c.Decode(encoded, decoded, corrected)
	if got != codec.CE {
		t.Fatalf("got %v, want CE", got)
	}
	if _, ok := corrected[42]; !ok {
		t.Fatal("expected bit 42 recorded as corrected")
	}
}

func TestBCHTripleBitErrorCorrects(t *testing.T) {
	f := newTestField(t)
	c, err := NewBCH("TEC BCH", f, 255, 3)
	if err != nil {
		t.Fatalf("NewBCH() error = %v", err)
	}

	data := block.NewBlock(c.BitK())
	encoded := block.NewECCWord(c.BitN(), c.BitK())
	c.Encode(data, encoded)
	encoded.InvBit(10)
	encoded.InvBit(100)
	encoded.InvBit(200)

	decoded := block.NewECCWord(c.BitN(), c.BitK())
	got := c.Decode(encoded, decoded, nil)
	if got != codec.CE && got != codec.SDC {
		t.Fatalf("got %v, want CE or SDC for a within-capability triple error", got)
	}
}
