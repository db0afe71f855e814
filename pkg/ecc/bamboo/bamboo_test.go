package bamboo

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

func TestQPC72bDecodeInternalNoErrorIsNE(t *testing.T) {
	q, err := NewQPC72b(4, 2, true)
	if err != nil {
		t.Fatalf("NewQPC72b() error = %v", err)
	}
	blk := block.NewCacheLine(4, 18, 1, block.MSGConfig{})

	if got := q.DecodeInternal(nil, blk); got != faultdomain.NE {
		t.Fatalf("DecodeInternal() on zero block = %v, want NE", got)
	}
}

func TestQPC72bPostprocessKeepsCorrectionWithinSameChip(t *testing.T) {
	q, err := NewQPC72b(4, 1, true)
	if err != nil {
		t.Fatalf("NewQPC72b() error = %v", err)
	}
	// Both positions fall in chip 0 (pos/4 == 0), so exceeding maxPins=1
	// should still stand.
	q.MarkCorrected(0)
	q.MarkCorrected(1)

	if got := q.Postprocess(nil, faultdomain.CE); got != faultdomain.CE {
		t.Fatalf("Postprocess() with same-chip correction = %v, want CE", got)
	}
}

func TestQPC72bPostprocessDowngradesCrossChipCorrection(t *testing.T) {
	q, err := NewQPC72b(4, 1, true)
	if err != nil {
		t.Fatalf("NewQPC72b() error = %v", err)
	}
	// Position 0 is chip 0, position 4 is chip 1.
	q.MarkCorrected(0)
	q.MarkCorrected(4)

	if got := q.Postprocess(nil, faultdomain.CE); got != faultdomain.DUE {
		t.Fatalf("Postprocess() with cross-chip correction = %v, want DUE", got)
	}
	if len(q.CorrectedPos()) != 0 {
		t.Fatalf("CorrectedPos() after downgrade = %v, want cleared", q.CorrectedPos())
	}
}

func TestQPC72bPostprocessPassesThroughUnderBudget(t *testing.T) {
	q, err := NewQPC72b(4, 2, true)
	if err != nil {
		t.Fatalf("NewQPC72b() error = %v", err)
	}
	q.MarkCorrected(0)

	if got := q.Postprocess(nil, faultdomain.CE); got != faultdomain.CE {
		t.Fatalf("Postprocess() under maxPins budget = %v, want CE", got)
	}
}
