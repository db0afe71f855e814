package onchip

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

func TestAMD72bDecodeInternalNoErrorIsNE(t *testing.T) {
	a, err := NewAMD72b(true)
	if err != nil {
		t.Fatalf("NewAMD72b() error = %v", err)
	}
	blk := block.NewCacheLine(4, 72, 2, block.MSGConfig{})

	if got := a.DecodeInternal(nil, blk); got != faultdomain.NE {
		t.Fatalf("DecodeInternal() on zero block = %v, want NE", got)
	}
}

func TestNewAMD72bDisablesChipRand(t *testing.T) {
	a, err := NewAMD72b(true)
	if err != nil {
		t.Fatalf("NewAMD72b() error = %v", err)
	}
	if a.ChipRand() {
		t.Fatalf("ChipRand() = true, want false (OnChip72bAMD disables it in its constructor)")
	}
}
