package xed

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

func TestSDDCDecodeInternalNoErrorIsNE(t *testing.T) {
	s, err := NewSDDC(4, true)
	if err != nil {
		t.Fatalf("NewSDDC() error = %v", err)
	}
	blk := block.NewCacheLine(8, 72, 8, block.MSGConfig{})

	if got := s.DecodeInternal(nil, blk); got != faultdomain.NE {
		t.Fatalf("DecodeInternal() on zero block = %v, want NE", got)
	}
}

func TestSDDCNeedRetireSingleDQSingleBeatIsExempt(t *testing.T) {
	s, err := NewSDDC(4, true)
	if err != nil {
		t.Fatalf("NewSDDC() error = %v", err)
	}
	f := &fault.Fault{IsTransient: false, NumDQ: 1, IsSingleBeat: true}

	if s.NeedRetire(nil, f) {
		t.Fatalf("NeedRetire() for single-DQ single-beat permanent fault = true, want false")
	}
}

func TestSDDCNeedRetireMultiDQNeedsRetirement(t *testing.T) {
	s, err := NewSDDC(4, true)
	if err != nil {
		t.Fatalf("NewSDDC() error = %v", err)
	}
	f := &fault.Fault{IsTransient: false, NumDQ: 2, IsSingleBeat: true}

	if !s.NeedRetire(nil, f) {
		t.Fatalf("NeedRetire() for multi-DQ permanent fault = false, want true")
	}
}

func TestSDDCNeedRetireTransientNeverRetires(t *testing.T) {
	s, err := NewSDDC(4, true)
	if err != nil {
		t.Fatalf("NewSDDC() error = %v", err)
	}
	f := &fault.Fault{IsTransient: true, NumDQ: 4, IsSingleBeat: false}

	if s.NeedRetire(nil, f) {
		t.Fatalf("NeedRetire() for transient fault = true, want false")
	}
}
