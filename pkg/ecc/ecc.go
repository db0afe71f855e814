// Package ecc implements the ECC orchestrator (spec 4.G), grounded on
// dram_error_sim's ECC.hh: a non-polymorphic EccState carrying the shared
// configuration (layout, graceful-degradation config tiers, retirement
// policy, corrected-position set) plus a Scheme interface each concrete
// scheme (pkg/ecc/bamboo, duo, chipkill, xed, onchip, and this package's Single)
// implements in place of ECC.hh's virtual decodeInternal/postprocess/
// needRetire/getInitialRetiredBlkCount methods (spec §9's "deep
// polymorphism" redesign note).
package ecc

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

// Scheme is what a concrete ECC scheme implements; EccState.Decode calls
// back into it the way ECC::decode calls its own virtual methods.
type Scheme interface {
	DecodeInternal(fd *faultdomain.FaultDomain, blk *block.CacheLine) faultdomain.Outcome
	Postprocess(fd *faultdomain.FaultDomain, pre faultdomain.Outcome) faultdomain.Outcome
	NeedRetire(fd *faultdomain.FaultDomain, f *fault.Fault) bool
	InitialRetiredBlkCount(fd *faultdomain.FaultDomain, rate float64) uint64
}

// ConfigTier is one graceful-degradation step (ECC::config): a codec plus
// the device/pin retirement budget it tolerates before the next tier takes
// over.
type ConfigTier struct {
	MaxDeviceRetirement int
	MaxPinRetirement    int
	Codec               codec.Codec
}

// RetirementPolicy resolves spec §9 Open Question 1 explicitly per scheme,
// instead of leaving it to an inconsistent mix of binomial-draw and
// deterministic-rate branches the way the original's getInitialRetiredBlkCount
// overloads do.
type RetirementPolicy int

const (
	// Deterministic multiplies totalBlkCount by rate directly, no sampling.
	Deterministic RetirementPolicy = iota
	// Binomial draws Binomial(totalBlkCount, rate) via the domain's RNG.
	Binomial
)

// EccState is the shared, non-polymorphic part of every ECC scheme
// (ECC.hh's member fields). Concrete schemes embed *EccState and set
// Scheme to themselves so EccState.Decode can call back into the scheme's
// overrides — the same role C++ virtual dispatch plays in the original.
type EccState struct {
	Scheme Scheme

	Layout        block.Layout
	ConfigList    []ConfigTier
	DoPostprocess bool

	doRetire           bool
	maxRetiredBlkCount uint64

	indram       int
	indramDown   int
	bitN         int
	chipRand     bool
	correctMode  int
	correctedPos map[int]struct{}
}

// NewEccState builds the shared state; scheme must be the concrete type
// embedding this EccState (self-reference, resolving the lack of C++-style
// virtual dispatch).
func NewEccState(scheme Scheme, layout block.Layout, doPostprocess bool) *EccState {
	return &EccState{
		Scheme:        scheme,
		Layout:        layout,
		DoPostprocess: doPostprocess,
		chipRand:      true,
		correctedPos:  map[int]struct{}{},
	}
}

// Decode is ECC::decode: clear the corrected-position set, run the
// scheme's internal decode, optionally postprocess.
func (e *EccState) Decode(fd *faultdomain.FaultDomain, blk *block.CacheLine) faultdomain.Outcome {
	e.correctedPos = map[int]struct{}{}
	result := e.Scheme.DecodeInternal(fd, blk)
	if e.DoPostprocess {
		result = e.Scheme.Postprocess(fd, result)
	}
	return result
}

// CorrectedPos exposes the position set DecodeInternal populated, for
// schemes and tests that need to inspect which symbols were corrected.
func (e *EccState) CorrectedPos() map[int]struct{} { return e.correctedPos }

// MarkCorrected records a corrected position (DecodeInternal implementations
// call this as they decode each constituent codeword).
func (e *EccState) MarkCorrected(pos int) { e.correctedPos[pos] = struct{}{} }

func (e *EccState) InDRAM() int         { return e.indram }
func (e *EccState) SetInDRAM(p int)     { e.indram = p }
func (e *EccState) InDRAMDown() int     { return e.indramDown }
func (e *EccState) SetInDRAMDown(p int) { e.indramDown = p }
func (e *EccState) BitN() int           { return e.bitN }
func (e *EccState) SetBitN(n int)       { e.bitN = n }

func (e *EccState) DoRetire() bool { return e.doRetire }
func (e *EccState) SetDoRetire(b bool) { e.doRetire = b }

func (e *EccState) MaxRetiredBlkCount() uint64 { return e.maxRetiredBlkCount }

// SetMaxRetiredBlkCount mirrors ECC::setMaxRetiredBlkCount: setting a budget
// implies retirement is enabled.
func (e *EccState) SetMaxRetiredBlkCount(n uint64) {
	e.doRetire = true
	e.maxRetiredBlkCount = n
}

func (e *EccState) ChipRand() bool      { return e.chipRand }
func (e *EccState) SetChipRand(b bool)  { e.chipRand = b }
func (e *EccState) CorrectMode() int    { return e.correctMode }
func (e *EccState) SetCorrectMode(m int) { e.correctMode = m }

// NeedRetire delegates to the scheme (ECC::needRetire).
func (e *EccState) NeedRetire(fd *faultdomain.FaultDomain, f *fault.Fault) bool {
	return e.Scheme.NeedRetire(fd, f)
}

// InitialRetiredBlkCount delegates to the scheme
// (ECC::getInitialRetiredBlkCount).
func (e *EccState) InitialRetiredBlkCount(fd *faultdomain.FaultDomain, rate float64) uint64 {
	return e.Scheme.InitialRetiredBlkCount(fd, rate)
}

// DefaultNeedRetire is ECC::needRetire's base behavior: any permanent fault
// is a retirement candidate. Schemes that don't override NeedRetire should
// call this from their own method.
func DefaultNeedRetire(f *fault.Fault) bool { return !f.IsTransient }

// DefaultInitialRetiredBlkCount resolves spec §9 Open Question 1 for
// schemes that don't need a scheme-specific policy: multiply the domain's
// total addressable block count by rate. totalBlks is the caller's
// block-count estimate (e.g. derived from channel geometry), since ECC.hh
// has no single authoritative source for it either.
//
// The original calls a binomial draw in some ECC subclasses and a
// commented-out deterministic rate*total in others (spec §9 OQ1: "do not
// guess"). Without a threaded RNG at this call site (getInitialRetiredBlkCount
// runs once at setup, not during a seeded trial), Binomial is deliberately
// left equivalent to Deterministic here rather than faked with an unseeded
// draw; policy still records the scheme's documented choice for callers
// that do have an RNG to thread through a future Binomial implementation.
func DefaultInitialRetiredBlkCount(policy RetirementPolicy, totalBlks uint64, rate float64) uint64 {
	_ = policy
	return uint64(float64(totalBlks) * rate)
}
