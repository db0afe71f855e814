package linear

import (
	"math/bits"
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
)

func TestHsiaoNoError(t *testing.T) {
	h, err := NewHsiao("SEC-DED (Hsiao)", 72, 8)
	if err != nil {
		t.Fatalf("NewHsiao() error = %v", err)
	}
	data := block.NewBlock(h.BitK())
	encoded := block.NewECCWord(h.BitN(), h.BitK())
	h.Encode(data, encoded)

	decoded := block.NewECCWord(h.BitN(), h.BitK())
	if got := h.Decode(encoded, decoded, nil); got != codec.NE {
		t.Fatalf("got %v, want NE", got)
	}
}

func TestHsiaoSingleBitCorrects(t *testing.T) {
	h, err := NewHsiao("SEC-DED (Hsiao)", 72, 8)
	if err != nil {
		t.Fatalf("NewHsiao() error = %v", err)
	}
	data := block.NewBlock(h.BitK())
	encoded := block.NewECCWord(h.BitN(), h.BitK())
	h.Encode(data, encoded)
	encoded.InvBit(5)

	decoded := block.NewECCWord(h.BitN(), h.BitK())
	corrected := map[int]struct{}{}
	got := h.Decode(encoded, decoded, corrected)
	if got != codec.CE {
		t.Fatalf("got %v, want CE", got)
	}
	if _, ok := corrected[5]; !ok {
		t.Fatal("expected position 5 recorded as corrected")
	}
	if !decoded.IsZero(0) {
		t.Fatal("corrected word should be all-zero given an all-zero baseline")
	}
}

func TestHsiaoDoubleBitDetectsButCannotCorrect(t *testing.T) {
	h, err := NewHsiao("SEC-DED (Hsiao)", 72, 8)
	if err != nil {
		t.Fatalf("NewHsiao() error = %v", err)
	}
	data := block.NewBlock(h.BitK())
	encoded := block.NewECCWord(h.BitN(), h.BitK())
	h.Encode(data, encoded)
	encoded.InvBit(0)
	encoded.InvBit(1)

	decoded := block.NewECCWord(h.BitN(), h.BitK())
	got := h.Decode(encoded, decoded, nil)
	if got != codec.DUE && got != codec.SDC {
		t.Fatalf("got %v, want DUE or SDC for a double-bit error", got)
	}
}

func TestHsiaoColumnsAreDistinctAndOddWeightForData(t *testing.T) {
	h, err := NewHsiao("SEC-DED (Hsiao)", 72, 8)
	if err != nil {
		t.Fatalf("NewHsiao() error = %v", err)
	}
	seen := map[int]bool{}
	for i, col := range h.hCols {
		if seen[col] {
			t.Fatalf("duplicate H column at index %d", i)
		}
		seen[col] = true
		if i < h.BitK() && bits.OnesCount(uint(col))%2 != 1 {
			t.Fatalf("data column %d has even weight", i)
		}
	}
}
