// Package codec defines the shared Codec interface and the decode-outcome
// lattice every concrete error-correcting code (CRC, Hsiao/SEC, Reed-Solomon,
// BCH) reports through, grounded on dram_error_sim's codec.hh.
package codec

import (
	"fmt"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/gf"
)

// CodecShapeMismatch is spec 4.B's fatal shape error: bitN/bitK/bitR are
// inconsistent (bitN != bitK+bitR, or either is non-positive), or a
// symbol-oriented codec's total symbol count exceeds the field's 2^m-1
// nonzero index range. Returned by every concrete constructor before any
// table/polynomial work is done, so a misconfigured codec never gets built.
type CodecShapeMismatch struct {
	CodecName string
	Reason    string
}

func (e *CodecShapeMismatch) Error() string {
	return fmt.Sprintf("codec: %s: shape mismatch: %s", e.CodecName, e.Reason)
}

// CheckBitShape validates n == k+r with all three positive, for the
// bitN/bitK/bitR triple of a bit-oriented codec (CRC, Hsiao) or the
// symN/symK/symR triple of a symbol-oriented one (RS, BCH treated in bits).
func CheckBitShape(name string, n, k, r int) error {
	if n <= 0 || k <= 0 || r <= 0 {
		return &CodecShapeMismatch{CodecName: name, Reason: fmt.Sprintf("n=%d, k=%d, r=%d must all be positive", n, k, r)}
	}
	if n != k+r {
		return &CodecShapeMismatch{CodecName: name, Reason: fmt.Sprintf("n=%d != k=%d + r=%d", n, k, r)}
	}
	return nil
}

// CheckSymCount validates a symbol-oriented codec's total symbol count
// against field's 2^m-1 nonzero index range (spec 4.B: "codeword longer
// than 2^m - 1" is a shape mismatch, not a silently truncated codeword).
func CheckSymCount(name string, field *gf.Field, symN int) error {
	if symN <= 0 {
		return &CodecShapeMismatch{CodecName: name, Reason: fmt.Sprintf("symN=%d must be positive", symN)}
	}
	if symN > field.MaxIndex {
		return &CodecShapeMismatch{CodecName: name, Reason: fmt.Sprintf("symN=%d exceeds field GF(2^%d)'s %d nonzero symbols", symN, field.M, field.MaxIndex)}
	}
	return nil
}

// Outcome is the decode-outcome lattice NE < CE < DUE < SDC.
type Outcome int

const (
	NE Outcome = iota
	CE
	DUE
	SDC
)

func (o Outcome) String() string {
	switch o {
	case NE:
		return "NE"
	case CE:
		return "CE"
	case DUE:
		return "DUE"
	case SDC:
		return "SDC"
	default:
		return "UNKNOWN"
	}
}

// Worse returns the more severe of two outcomes under NE < CE < DUE < SDC.
func Worse(a, b Outcome) Outcome {
	if b > a {
		return b
	}
	return a
}

// Codec is the common interface every concrete code implements: encode a
// message into a codeword, decode a (possibly corrupted) codeword back,
// reporting which symbol positions were corrected.
type Codec interface {
	Name() string
	BitN() int
	BitR() int
	BitK() int
	Encode(data *block.Block, encoded *block.ECCWord)
	Decode(msg *block.ECCWord, decoded *block.ECCWord, correctedPos map[int]struct{}) Outcome
	// ChipID maps a symbol position to the chip it lives on (identity unless
	// overridden, e.g. by multi-symbol-per-chip codecs).
	ChipID(pos int) int
}

// Base holds the bitN/bitR/bitK triple and name common to every Codec,
// grounded on codec.hh's Codec base class.
type Base struct {
	name string
	bitN int
	bitR int
	bitK int
}

// NewBase builds the shared (name, bitN, bitR) triple; bitK is derived.
func NewBase(name string, bitN, bitR int) Base {
	return Base{name: name, bitN: bitN, bitR: bitR, bitK: bitN - bitR}
}

func (b Base) Name() string { return b.name }
func (b Base) BitN() int    { return b.bitN }
func (b Base) BitR() int    { return b.bitR }
func (b Base) BitK() int    { return b.bitK }
func (b Base) ChipID(pos int) int { return pos }
