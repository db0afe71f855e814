// Package xed implements XED (spec 4.G), grounded on dram_error_sim's
// XED.hh: a rank-level RS decode whose DUE feeds a diagnosis step that
// narrows the failure down to one faulty chip across a fault's history,
// then erases that chip's symbols for a rank-level erasure-assisted decode.
// The in-DRAM CRC codec is built but not used by the decode.
//
// XED.cc (the method bodies behind XED.hh's declarations) was not present
// in the retrieved corpus — only the header, with its two fully-defined
// needRetire overrides and the diagnoseFault/detectInDRAM/correctInDRAM
// method signatures. decodeInternal here takes only the diagnose-on-failure
// step of the header's documented call shape (the detect in-DRAM, correct
// in-DRAM and check-parity steps are not performed) and follows duo.DUO36bx4's sibling
// FaultyChipDetect-plus-erasure pattern, which XED.hh's
// "exposing on-die error detection information" design follows at a
// higher level (an in-DRAM CRC in place of DUO's parity-based signal).
package xed

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/codec/crc"
	"github.com/jihwankim/eccsim/pkg/codec/rs"
	"github.com/jihwankim/eccsim/pkg/ecc"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
	"github.com/jihwankim/eccsim/pkg/gf"
)

// chipSymbols is the number of rank-level RS symbols one chip spans, the
// same bookkeeping duo.DUO36bx4 uses for its erasure set.
const chipSymbols = 8

// SDDC is XED_SDDC: single-device-data-correctable XED, pairing an
// onchip_codec (in-DRAM CRC8-ATM) with a rank-level RS decoder and fault
// diagnosis enabled by default.
type SDDC struct {
	*ecc.EccState
	onchip           *crc.CRC8
	rank             *rs.RS
	rankErasure      *rs.RSDual
	doFaultDiagnosis bool
}

// NewSDDC builds an XED_SDDC scheme; correction is the rank-level RS
// decoder's designed symbol-error capability.
func NewSDDC(correction int, doFaultDiagnosis bool) (*SDDC, error) {
	field, err := gf.NewField(8)
	if err != nil {
		return nil, err
	}
	onchip, err := crc.New8("XED in-DRAM CRC8-ATM", 72, true)
	if err != nil {
		return nil, err
	}
	rank, err := rs.NewRS("XED_SDDC rank RS", field, 72, 8, correction, 8)
	if err != nil {
		return nil, err
	}
	s := &SDDC{
		onchip:           onchip,
		rank:             rank,
		rankErasure:      rs.NewRSDual("XED_SDDC rank erasure RS", field, 72, 8, chipSymbols),
		doFaultDiagnosis: doFaultDiagnosis,
	}
	s.EccState = ecc.NewEccState(s, block.OnChipX8, true)
	s.SetBitN(576)
	return s, nil
}

// DecodeInternal runs the rank-level RS decode over the OnChipX8 codeword
// and returns its outcome. Only when that outcome is DUE and fault
// diagnosis is enabled does it go on to diagnoseFault, which erases the
// chip FaultyChipDetect names. The in-DRAM CRC8 codec (s.onchip) is not
// consulted: there is no in-DRAM detection, in-DRAM correction or parity
// check before the rank decode.
func (s *SDDC) DecodeInternal(fd *faultdomain.FaultDomain, blk *block.CacheLine) faultdomain.Outcome {
	word := block.NewECCWord(s.rank.BitN(), s.rank.BitK())
	word.Extract(&blk.Block, block.OnChipX8, 0, blk.ChannelWidth(), blk.MessageConfig())

	decoded := block.NewECCWord(s.rank.BitN(), s.rank.BitK())
	pos := map[int]struct{}{}
	result := toDomainOutcome(s.rank.Decode(word, decoded, pos))
	for p := range pos {
		s.MarkCorrected(p)
	}
	if result != faultdomain.DUE || !s.doFaultDiagnosis {
		return result
	}
	return s.diagnoseFault(fd, word)
}

// diagnoseFault ports XED::diagnoseFault: FaultyChipDetect narrows the
// candidate down to one chip (the in-DRAM CRC having already flagged it in
// the original; this port uses the same rank-level FaultyChipDetect
// duo.DUO36bx4 relies on, since the in-DRAM CRC signal itself isn't
// separately modeled at the ECCWord level here), erases that chip's 8
// symbols, and retries with the erasure-assisted rank decoder.
func (s *SDDC) diagnoseFault(fd *faultdomain.FaultDomain, word *block.ECCWord) faultdomain.Outcome {
	chipList := fd.FaultyChipDetect()
	if len(chipList) != 1 {
		return faultdomain.DUE
	}
	faultyChip := chipList[0]

	erasures := make([]int, 0, chipSymbols)
	start := faultyChip * chipSymbols
	for j := start; j < start+chipSymbols; j++ {
		erasures = append(erasures, j)
	}

	decoded := block.NewECCWord(s.rankErasure.BitN(), s.rankErasure.BitK())
	pos := map[int]struct{}{}
	result := toDomainOutcome(s.rankErasure.Decode(word, decoded, pos, erasures))
	for p := range pos {
		s.MarkCorrected(p)
	}
	return result
}

func (s *SDDC) Postprocess(fd *faultdomain.FaultDomain, pre faultdomain.Outcome) faultdomain.Outcome {
	return pre
}

// NeedRetire ports XED_SDDC::needRetire verbatim: any permanent fault that
// isn't confined to a single DQ on a single beat needs retirement.
func (s *SDDC) NeedRetire(fd *faultdomain.FaultDomain, f *fault.Fault) bool {
	return !f.IsTransient && (f.NumDQ != 1 || !f.IsSingleBeat)
}

func (s *SDDC) InitialRetiredBlkCount(fd *faultdomain.FaultDomain, rate float64) uint64 {
	return ecc.DefaultInitialRetiredBlkCount(ecc.Deterministic, uint64(fd.ChannelWidth()), rate)
}

func toDomainOutcome(o codec.Outcome) faultdomain.Outcome {
	switch o {
	case codec.NE:
		return faultdomain.NE
	case codec.CE:
		return faultdomain.CE
	case codec.DUE:
		return faultdomain.DUE
	default:
		return faultdomain.SDC
	}
}
