package ecc

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

// Single wraps exactly one Codec over the whole cacheline with the Linear
// layout and no postprocessing — the degenerate ECC scheme spec 4.G's
// end-to-end scenarios A and F exercise directly (bare Hsiao(72,64),
// CRC8-ATM) without any chip-level hybrid structure on top.
type Single struct {
	*EccState
	codec codec.Codec
}

// NewSingle builds a Single-codec scheme. No original ECC subclass matches
// this one to the letter — it is the natural base case of ECC.hh's generic
// decodeInternal (one codec, one ECCWord, no postprocessing) that spec 4.G's
// scenario table needs as a standalone scheme rather than buried inside a
// chip-hybrid decoder.
func NewSingle(c codec.Codec) *Single {
	s := &Single{codec: c}
	s.EccState = NewEccState(s, block.Linear, false)
	s.SetBitN(c.BitN())
	return s
}

func (s *Single) DecodeInternal(fd *faultdomain.FaultDomain, blk *block.CacheLine) faultdomain.Outcome {
	word := block.NewECCWord(s.codec.BitN(), s.codec.BitK())
	word.Extract(&blk.Block, block.Linear, 0, blk.ChannelWidth(), blk.MessageConfig())

	decoded := block.NewECCWord(s.codec.BitN(), s.codec.BitK())
	pos := map[int]struct{}{}
	out := s.codec.Decode(word, decoded, pos)
	for p := range pos {
		s.MarkCorrected(p)
	}
	return toDomainOutcome(out)
}

func (s *Single) Postprocess(fd *faultdomain.FaultDomain, pre faultdomain.Outcome) faultdomain.Outcome {
	return pre
}

func (s *Single) NeedRetire(fd *faultdomain.FaultDomain, f *fault.Fault) bool {
	return DefaultNeedRetire(f)
}

func (s *Single) InitialRetiredBlkCount(fd *faultdomain.FaultDomain, rate float64) uint64 {
	return DefaultInitialRetiredBlkCount(Deterministic, uint64(fd.ChannelWidth()), rate)
}

// toDomainOutcome translates a codec-level Outcome into the domain-level
// lattice; both enumerate NE < CE < DUE < SDC in the same order, but the
// two packages intentionally keep distinct types (the codec layer has no
// notion of a FaultDomain to report through).
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
