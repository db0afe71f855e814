// Package crc implements the CRC-8-ATM and CRC-16 codecs (spec 4.B.3),
// grounded on dram_error_sim's b8CRC/b16CRC (FlipCorrection.cc): an LFSR
// shift register wired directly to each polynomial's tap positions, plus an
// optional single-bit-flip correction when the received word differs from a
// zero codeword in exactly one bit.
package crc

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
)

// CRC8 implements polynomial x^8+x^7+x^6+x^3+x^2+x+1 over a bitK-bit
// message with 8 check bits.
type CRC8 struct {
	name           string
	bitN, bitK     int
	enable1bitFix  bool
}

// New8 builds a CRC-8 codec over bitN total bits (bitK = bitN-8 data bits).
func New8(name string, bitN int, enable1bitFix bool) (*CRC8, error) {
	bitK := bitN - 8
	if err := codec.CheckBitShape(name, bitN, bitK, 8); err != nil {
		return nil, err
	}
	return &CRC8{name: name, bitN: bitN, bitK: bitK, enable1bitFix: enable1bitFix}, nil
}

func (c *CRC8) Name() string        { return c.name }
func (c *CRC8) BitN() int           { return c.bitN }
func (c *CRC8) BitR() int           { return 8 }
func (c *CRC8) BitK() int           { return c.bitK }
func (c *CRC8) ChipID(pos int) int  { return pos }

func shift8(reg *[8]bool, doInvert bool) {
	reg[7], reg[6], reg[5], reg[4], reg[3], reg[2], reg[1], reg[0] =
		reg[6] != doInvert,
		reg[5] != doInvert,
		reg[4],
		reg[3],
		reg[2] != doInvert,
		reg[1] != doInvert,
		reg[0] != doInvert,
		doInvert
}

// Encode runs the bitK data bits through the CRC-8 shift register and
// appends the resulting 8 check bits.
func (c *CRC8) Encode(data *block.Block, encoded *block.ECCWord) {
	var reg [8]bool
	encoded.Reset()
	for i := 0; i < c.bitK; i++ {
		doInvert := data.GetBit(i) != reg[7]
		shift8(&reg, doInvert)
		encoded.SetBit(i, data.GetBit(i))
	}
	for i := c.bitK; i < c.bitN; i++ {
		encoded.SetBit(i, reg[i-c.bitK])
	}
}

// Decode recomputes the syndrome and applies the single-bit-flip heuristic
// (spec 4.B.3): exactly one set bit across the whole received word (data or
// check) is treated as a flip, correctable only if enable1bitFix is set.
func (c *CRC8) Decode(msg, decoded *block.ECCWord, correctedPos map[int]struct{}) codec.Outcome {
	var reg [8]bool
	decoded.Reset()
	flips := 0
	for i := 0; i < c.bitK; i++ {
		bit := msg.GetBit(i)
		if bit {
			flips++
		}
		decoded.SetBit(i, bit)
		doInvert := bit != reg[7]
		shift8(&reg, doInvert)
	}
	syndrome := 0
	for i := c.bitK; i < c.bitN; i++ {
		syndrome = (syndrome << 1)
		if reg[i-c.bitK] != msg.GetBit(i) {
			syndrome |= 1
		}
		if msg.GetBit(i) {
			flips++
		}
		decoded.SetBit(i, false)
	}
	if flips == 1 {
		if c.enable1bitFix {
			return codec.CE
		}
		return codec.DUE
	}
	if syndrome == 0 {
		return codec.NE
	}
	return codec.DUE
}

// CRC16 implements polynomial
// x^16+x^14+x^12+x^11+x^8+x^5+x^4+x^2+1 over a bitK-bit message with 16
// check bits.
type CRC16 struct {
	name          string
	bitN, bitK    int
	enable1bitFix bool
}

// New16 builds a CRC-16 codec over bitN total bits (bitK = bitN-16 data bits).
func New16(name string, bitN int, enable1bitFix bool) (*CRC16, error) {
	bitK := bitN - 16
	if err := codec.CheckBitShape(name, bitN, bitK, 16); err != nil {
		return nil, err
	}
	return &CRC16{name: name, bitN: bitN, bitK: bitK, enable1bitFix: enable1bitFix}, nil
}

func (c *CRC16) Name() string       { return c.name }
func (c *CRC16) BitN() int          { return c.bitN }
func (c *CRC16) BitR() int          { return 16 }
func (c *CRC16) BitK() int          { return c.bitK }
func (c *CRC16) ChipID(pos int) int { return pos }

func shift16(reg *[16]bool, doInvert bool) {
	var next [16]bool
	next[15] = reg[14]
	next[14] = reg[13] != doInvert
	next[13] = reg[12]
	next[12] = reg[11] != doInvert
	next[11] = reg[10] != doInvert
	next[10] = reg[9]
	next[9] = reg[8]
	next[8] = reg[7] != doInvert
	next[7] = reg[6]
	next[6] = reg[5]
	next[5] = reg[4] != doInvert
	next[4] = reg[3] != doInvert
	next[3] = reg[2]
	next[2] = reg[1] != doInvert
	next[1] = reg[0]
	next[0] = doInvert
	*reg = next
}

func (c *CRC16) Encode(data *block.Block, encoded *block.ECCWord) {
	var reg [16]bool
	encoded.Reset()
	for i := 0; i < c.bitK; i++ {
		doInvert := data.GetBit(i) != reg[15]
		shift16(&reg, doInvert)
		encoded.SetBit(i, data.GetBit(i))
	}
	for i := c.bitK; i < c.bitN; i++ {
		encoded.SetBit(i, reg[i-c.bitK])
	}
}

func (c *CRC16) Decode(msg, decoded *block.ECCWord, correctedPos map[int]struct{}) codec.Outcome {
	var reg [16]bool
	decoded.Reset()
	flips := 0
	flipLocation := 0
	for i := 0; i < c.bitK; i++ {
		bit := msg.GetBit(i)
		if bit {
			flips++
		}
		decoded.SetBit(i, bit)
		doInvert := bit != reg[15]
		shift16(&reg, doInvert)
	}
	syndrome := 0
	for i := c.bitK; i < c.bitN; i++ {
		syndrome = (syndrome << 1)
		if reg[i-c.bitK] != msg.GetBit(i) {
			syndrome |= 1
		}
		if msg.GetBit(i) {
			flips++
			flipLocation = i
		}
	}
	if flips == 1 {
		if c.enable1bitFix {
			decoded.SetBit(flipLocation, false)
			return codec.CE
		}
		return codec.DUE
	}
	if syndrome == 0 {
		return codec.NE
	}
	return codec.DUE
}
