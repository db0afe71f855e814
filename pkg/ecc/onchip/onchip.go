// Package onchip implements the on-chip-ECC-plus-rank-level-code hybrid
// family (spec 4.G), grounded on dram_error_sim's REGB.cc/hh: each chip's
// own Hsiao SEC-DED first corrects what it can in place, and only once
// every chip is clean (or un-correctable at the chip level) does the
// rank-level code run over what remains.
package onchip

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec/linear"
	"github.com/jihwankim/eccsim/pkg/ecc"
	"github.com/jihwankim/eccsim/pkg/ecc/chipkill"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
)

// onchipCodecName matches REGB.cc's literal onchip_codec label ("SEC-DED
// (Hsiao)\t18\t4\t"), kept here only for fidelity; it has no behavioral
// effect.
const onchipCodecName = "SEC-DED (Hsiao)\t18\t4\t"

// AMD72b is REGB.cc's OnChip72bAMD: a per-chip Hsiao(72,64) on-chip ECC
// pass, falling through to AMDChipkill72b's rank-level RS decode for
// whatever the on-chip pass couldn't fix.
type AMD72b struct {
	*ecc.EccState
	onchip *linear.Hsiao
	rank   *chipkill.AMDChipkill72b
}

// NewAMD72b builds the hybrid scheme; doPostprocess is threaded into the
// embedded rank-level AMDChipkill72b exactly as OnChip72bAMD's constructor
// forwards _doPostprocess to AMDChipkill72b's.
func NewAMD72b(doPostprocess bool) (*AMD72b, error) {
	rank, err := chipkill.NewAMDChipkill72b(doPostprocess)
	if err != nil {
		return nil, err
	}
	onchip, err := linear.NewHsiao(onchipCodecName, 72, 8)
	if err != nil {
		return nil, err
	}
	a := &AMD72b{
		onchip: onchip,
		rank:   rank,
	}
	a.EccState = ecc.NewEccState(a, block.AMD, doPostprocess)
	a.SetBitN(136)
	a.SetChipRand(false)
	return a, nil
}

// DecodeInternal ports OnChip72bAMD::decodeInternal: walk every chip's
// on-chip codeword (OnChipX4 layout) from the highest index down (matching
// the original's descending loop), correct any single on-chip miscorrection
// in place by flipping the one bit the decode disagreed on, and only fall
// through to the rank-level AMDChipkill72b decode if the cacheline isn't
// already clean afterward. That decode goes through the rank scheme's own
// Decode, so its corrected-position set starts empty and its Postprocess
// runs only when doPostprocess was set.
func (a *AMD72b) DecodeInternal(fd *faultdomain.FaultDomain, blk *block.CacheLine) faultdomain.Outcome {
	if blk.IsZero(0) {
		return faultdomain.NE
	}

	chipCount := blk.ChipCount()
	for i := chipCount - 1; i >= 0; i-- {
		msg := block.NewECCWord(72, 64)
		msg.Extract(&blk.Block, block.OnChipX4, i, blk.ChannelWidth(), blk.MessageConfig())
		if msg.IsZero(0) {
			continue
		}

		decoded := block.NewECCWord(72, 64)
		pos := map[int]struct{}{}
		a.onchip.Decode(msg, decoded, pos)
		if len(pos) == 1 {
			for p := range pos {
				if p < 72 {
					blk.InvBit(i*4 + p%4 + (p/4)*blk.ChannelWidth())
				}
			}
		}
	}

	if blk.IsZero(0) {
		return faultdomain.CE
	}
	result := a.rank.Decode(fd, blk)
	for p := range a.rank.CorrectedPos() {
		a.MarkCorrected(p)
	}
	return result
}

func (a *AMD72b) Postprocess(fd *faultdomain.FaultDomain, pre faultdomain.Outcome) faultdomain.Outcome {
	return pre
}

func (a *AMD72b) NeedRetire(fd *faultdomain.FaultDomain, f *fault.Fault) bool {
	return ecc.DefaultNeedRetire(f)
}

func (a *AMD72b) InitialRetiredBlkCount(fd *faultdomain.FaultDomain, rate float64) uint64 {
	return ecc.DefaultInitialRetiredBlkCount(ecc.Deterministic, uint64(fd.ChannelWidth()), rate)
}
