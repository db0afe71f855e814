package chipkill

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

func TestAMDChipkill72bDecodeInternalNoErrorIsNE(t *testing.T) {
	c, err := NewAMDChipkill72b(true)
	if err != nil {
		t.Fatalf("NewAMDChipkill72b() error = %v", err)
	}
	blk := block.NewCacheLine(4, 72, 2, block.MSGConfig{})

	if got := c.DecodeInternal(nil, blk); got != faultdomain.NE {
		t.Fatalf("DecodeInternal() on zero block = %v, want NE", got)
	}
}

func TestAMDChipkill72bPostprocessKeepsSingleCorrection(t *testing.T) {
	c, err := NewAMDChipkill72b(true)
	if err != nil {
		t.Fatalf("NewAMDChipkill72b() error = %v", err)
	}
	c.MarkCorrected(3)

	if got := c.Postprocess(nil, faultdomain.CE); got != faultdomain.CE {
		t.Fatalf("Postprocess() with one corrected symbol = %v, want CE", got)
	}
}

func TestAMDChipkill72bPostprocessDowngradesMultipleCorrections(t *testing.T) {
	c, err := NewAMDChipkill72b(true)
	if err != nil {
		t.Fatalf("NewAMDChipkill72b() error = %v", err)
	}
	c.MarkCorrected(3)
	c.MarkCorrected(20)

	if got := c.Postprocess(nil, faultdomain.CE); got != faultdomain.DUE {
		t.Fatalf("Postprocess() with two corrected symbols = %v, want DUE", got)
	}
	if len(c.CorrectedPos()) != 0 {
		t.Fatalf("CorrectedPos() after downgrade = %v, want cleared", c.CorrectedPos())
	}
}
