// Package bamboo implements the QPC/OPC (Bamboo) family of chipkill-level
// ECC schemes (spec 4.G), grounded on dram_error_sim's Bamboo.cc: a single
// Reed-Solomon tier over the PIN layout, postprocessed so that a
// correction touching more than maxPins symbols only survives if every
// corrected symbol lives on the same chip.
package bamboo

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/codec/rs"
	"github.com/jihwankim/eccsim/pkg/ecc"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
	"github.com/jihwankim/eccsim/pkg/gf"
)

// QPC72b is Bamboo.cc's QPC72b: an 18-symbol, 4-bit-per-symbol RS code over
// the 72-bit PIN interface, correcting `correction` symbol errors and
// collapsing any correction spanning more than maxPins distinct chips to
// DUE.
type QPC72b struct {
	*ecc.EccState
	codec   *rs.RS
	maxPins int
}

// chipWidthBits is the PIN layout's symbol width Bamboo.cc hard-codes
// (pos/4 in QPC72b::postprocess, pos/8 in OPC80b/OPC144b::postprocess).
const chipWidthBits = 4

// NewQPC72b builds a QPC72b scheme: correction is the RS code's designed
// symbol-error capability, maxPins the postprocess chip-count budget.
// doPostprocess defaults true to match Bamboo.cc's constructor default for
// maxPins-bounded schemes; pass false only to inspect the raw RS decode.
func NewQPC72b(correction, maxPins int, doPostprocess bool) (*QPC72b, error) {
	field, err := gf.NewField(5) // 2^5-1=31 >= 18 symbol positions
	if err != nil {
		return nil, err
	}
	rsCodec, err := rs.NewRS("QPC72b", field, 18, 8, correction, 4)
	if err != nil {
		return nil, err
	}
	q := &QPC72b{
		codec:   rsCodec,
		maxPins: maxPins,
	}
	q.EccState = ecc.NewEccState(q, block.Pin, doPostprocess)
	q.SetBitN(72)
	q.ConfigList = []ecc.ConfigTier{{Codec: q.codec}}
	return q, nil
}

func (q *QPC72b) DecodeInternal(fd *faultdomain.FaultDomain, blk *block.CacheLine) faultdomain.Outcome {
	word := block.NewECCWord(q.codec.BitN(), q.codec.BitK())
	word.Extract(&blk.Block, block.Pin, 0, blk.ChannelWidth(), blk.MessageConfig())

	decoded := block.NewECCWord(q.codec.BitN(), q.codec.BitK())
	pos := map[int]struct{}{}
	out := q.codec.Decode(word, decoded, pos)
	for p := range pos {
		q.MarkCorrected(p)
	}
	return toDomainOutcome(out)
}

// Postprocess is Bamboo.cc's QPC72b::postprocess: if more symbols were
// corrected than maxPins allows, the correction only stands when every
// corrected symbol maps to the same chip (pos/chipWidthBits); otherwise
// the result downgrades to DUE and the corrected-position set is
// discarded, exactly as the original clears correctedPosSet before
// returning.
func (q *QPC72b) Postprocess(fd *faultdomain.FaultDomain, pre faultdomain.Outcome) faultdomain.Outcome {
	pos := q.CorrectedPos()
	if len(pos) > q.maxPins {
		chipPos := -1
		for p := range pos {
			newChipPos := p / chipWidthBits
			if chipPos == -1 {
				chipPos = newChipPos
			} else if chipPos != newChipPos {
				for k := range pos {
					delete(pos, k)
				}
				return faultdomain.DUE
			}
		}
	}
	return pre
}

func (q *QPC72b) NeedRetire(fd *faultdomain.FaultDomain, f *fault.Fault) bool {
	return ecc.DefaultNeedRetire(f)
}

func (q *QPC72b) InitialRetiredBlkCount(fd *faultdomain.FaultDomain, rate float64) uint64 {
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
