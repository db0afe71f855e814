package duo

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

func TestDUO36bx4DecodeInternalNoErrorIsNE(t *testing.T) {
	d, err := NewDUO36bx4(4, true, false, 0)
	if err != nil {
		t.Fatalf("NewDUO36bx4() error = %v", err)
	}
	blk := block.NewCacheLine(4, 72, 9, block.MSGConfig{})

	if got := d.DecodeInternal(nil, blk); got != faultdomain.NE {
		t.Fatalf("DecodeInternal() on zero block = %v, want NE", got)
	}
}

func TestNewDUO36bx4RetirementBudgetEnablesDoRetire(t *testing.T) {
	d, err := NewDUO36bx4(4, true, true, 1000)
	if err != nil {
		t.Fatalf("NewDUO36bx4() error = %v", err)
	}
	if !d.DoRetire() {
		t.Fatalf("DoRetire() = false, want true after requesting a retirement budget")
	}
	if d.MaxRetiredBlkCount() != 1000 {
		t.Fatalf("MaxRetiredBlkCount() = %d, want 1000", d.MaxRetiredBlkCount())
	}
}

func TestNewDUO36bx4NoRetirementBudgetLeavesDoRetireFalse(t *testing.T) {
	d, err := NewDUO36bx4(4, true, false, 0)
	if err != nil {
		t.Fatalf("NewDUO36bx4() error = %v", err)
	}
	if d.DoRetire() {
		t.Fatalf("DoRetire() = true, want false when doRetire not requested")
	}
}
