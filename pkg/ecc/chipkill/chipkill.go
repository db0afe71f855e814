// Package chipkill implements AMD-style x4 chipkill ECC (spec 4.G),
// grounded on dram_error_sim's prior.cc AMDChipkill72b: four independent
// RS(18,16) decodes over the AMD layout's four sub-words, postprocessed so
// that more than one corrected symbol across all four collapses to DUE
// (codec.hh: "a general chipkill scheme (AMDChipkill72b) invokes decode of
// RS(18,16) 4 times").
package chipkill

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/codec/rs"
	"github.com/jihwankim/eccsim/pkg/ecc"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
	"github.com/jihwankim/eccsim/pkg/gf"
)

const subWords = 4

// AMDChipkill72b is prior.cc's AMDChipkill72b: RS(18,16) over GF(2^8),
// decoded independently 4 times (the AMD layout's 4 sub-words), with
// maxPins fixed at 1 symbol total across the whole cacheline.
type AMDChipkill72b struct {
	*ecc.EccState
	codec *rs.RS
}

// NewAMDChipkill72b builds the scheme; doPostprocess defaults to the
// original's constructor default of true.
func NewAMDChipkill72b(doPostprocess bool) (*AMDChipkill72b, error) {
	field, err := gf.NewField(8)
	if err != nil {
		return nil, err
	}
	rsCodec, err := rs.NewRS("AMDChipkill72b", field, 18, 2, 1, 4)
	if err != nil {
		return nil, err
	}
	c := &AMDChipkill72b{
		codec: rsCodec,
	}
	c.EccState = ecc.NewEccState(c, block.AMD, doPostprocess)
	c.SetBitN(136)
	c.ConfigList = []ecc.ConfigTier{{MaxDeviceRetirement: 0, MaxPinRetirement: 1, Codec: c.codec}}
	return c, nil
}

func (c *AMDChipkill72b) DecodeInternal(fd *faultdomain.FaultDomain, blk *block.CacheLine) faultdomain.Outcome {
	result := faultdomain.NE
	for sub := 0; sub < subWords; sub++ {
		word := block.NewECCWord(c.codec.BitN(), c.codec.BitK())
		word.Extract(&blk.Block, block.AMD, sub, blk.ChannelWidth(), blk.MessageConfig())

		decoded := block.NewECCWord(c.codec.BitN(), c.codec.BitK())
		pos := map[int]struct{}{}
		out := c.codec.Decode(word, decoded, pos)
		for p := range pos {
			c.MarkCorrected(sub*c.codec.SymN() + p)
		}
		result = faultdomain.Worse(result, toDomainOutcome(out))
	}
	return result
}

// Postprocess is AMDChipkill72b::postprocess: more than one corrected
// symbol across all four sub-word decodes downgrades to DUE.
func (c *AMDChipkill72b) Postprocess(fd *faultdomain.FaultDomain, pre faultdomain.Outcome) faultdomain.Outcome {
	pos := c.CorrectedPos()
	if len(pos) > 1 {
		for k := range pos {
			delete(pos, k)
		}
		return faultdomain.DUE
	}
	return pre
}

func (c *AMDChipkill72b) NeedRetire(fd *faultdomain.FaultDomain, f *fault.Fault) bool {
	return ecc.DefaultNeedRetire(f)
}

func (c *AMDChipkill72b) InitialRetiredBlkCount(fd *faultdomain.FaultDomain, rate float64) uint64 {
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
