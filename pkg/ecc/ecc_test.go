package ecc

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec/linear"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

func newTestSingle(t *testing.T) *Single {
	t.Helper()
	c, err := linear.NewHsiao("Hsiao(72,64)", 72, 8)
	if err != nil {
		t.Fatalf("NewHsiao() error = %v", err)
	}
	return NewSingle(c)
}

func TestSingleDecodeInternalNoErrorIsNE(t *testing.T) {
	s := newTestSingle(t)
	blk := block.NewCacheLine(8, 72, 1, block.MSGConfig{})

	if got := s.DecodeInternal(nil, blk); got != faultdomain.NE {
		t.Fatalf("DecodeInternal() on zero block = %v, want NE", got)
	}
}

func TestSingleNeedRetireMatchesDefault(t *testing.T) {
	s := newTestSingle(t)
	permanent := &fault.Fault{IsTransient: false}
	transient := &fault.Fault{IsTransient: true}

	if !s.NeedRetire(nil, permanent) {
		t.Fatalf("NeedRetire(permanent) = false, want true")
	}
	if s.NeedRetire(nil, transient) {
		t.Fatalf("NeedRetire(transient) = true, want false")
	}
}

func TestDefaultInitialRetiredBlkCountIgnoresPolicy(t *testing.T) {
	det := DefaultInitialRetiredBlkCount(Deterministic, 1000, 0.1)
	bin := DefaultInitialRetiredBlkCount(Binomial, 1000, 0.1)
	if det != 100 || bin != 100 {
		t.Fatalf("DefaultInitialRetiredBlkCount(Deterministic/Binomial) = %d/%d, want 100/100", det, bin)
	}
}

func TestEccStateDecodeClearsCorrectedPosBetweenCalls(t *testing.T) {
	s := newTestSingle(t)
	s.MarkCorrected(5)
	blk := block.NewCacheLine(8, 72, 1, block.MSGConfig{})

	s.Decode(nil, blk)
	if len(s.CorrectedPos()) != 0 {
		t.Fatalf("CorrectedPos() after Decode on zero block = %v, want empty", s.CorrectedPos())
	}
}
