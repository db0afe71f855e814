// Package block implements the bit-level data containers and ECC layout
// engine: Block, CacheLine, and ECCWord, grounded on dram_error_sim's
// block.hh/message.hh/message.cc. Storage is backed by
// github.com/bits-and-blooms/bitset instead of a hand-rolled []bool array.
package block

import "github.com/bits-and-blooms/bitset"

// Block is a general fixed-size bit container. CacheLine and ECCWord embed
// it for the cases where their sizes differ (spec 3/4.C).
type Block struct {
	bitN    int
	bits    *bitset.BitSet
	ErrorDQ int
}

// NewBlock allocates a zeroed block of bitN bits.
func NewBlock(bitN int) *Block {
	return &Block{bitN: bitN, bits: bitset.New(uint(bitN))}
}

// BitN returns the block's bit width.
func (b *Block) BitN() int { return b.bitN }

// Reset clears every bit back to zero.
func (b *Block) Reset() { b.bits.ClearAll() }

// IsZero reports whether all bits except the trailing `redundancy` bits are
// clear.
func (b *Block) IsZero(redundancy int) bool {
	for i := 0; i < b.bitN-redundancy; i++ {
		if b.bits.Test(uint(i)) {
			return false
		}
	}
	return true
}

// IsZeroRange reports whether bits [from, to) are all clear.
func (b *Block) IsZeroRange(from, to int) bool {
	for i := from; i < to; i++ {
		if b.bits.Test(uint(i)) {
			return false
		}
	}
	return true
}

// Clone overwrites b's bits with src's (both must share the same width).
func (b *Block) Clone(src *Block) {
	if b.bitN != src.bitN {
		panic("block: clone size mismatch")
	}
	b.bits = src.bits.Clone()
	b.ErrorDQ = src.ErrorDQ
}

// Equal reports whether b and ref hold identical bits (sizes included).
func (b *Block) Equal(ref *Block) bool {
	if b.bitN != ref.bitN {
		return false
	}
	for i := 0; i < b.bitN; i++ {
		if b.bits.Test(uint(i)) != ref.bits.Test(uint(i)) {
			return false
		}
	}
	return true
}

// GetSymbol reads a `size`-bit little-endian symbol starting at bit
// pos*size.
func (b *Block) GetSymbol(size, pos int) int {
	result := 0
	for i := size - 1; i >= 0; i-- {
		bit := 0
		if b.bits.Test(uint(i + pos*size)) {
			bit = 1
		}
		result = (result << 1) | bit
	}
	return result
}

// SetSymbol writes a `size`-bit little-endian symbol at bit pos*size.
func (b *Block) SetSymbol(size, pos, value int) {
	for i := size - 1; i >= 0; i-- {
		b.setBitValue(i+pos*size, (value>>uint(i))&1 != 0)
	}
}

// InvSymbol XORs a `size`-bit little-endian symbol at bit pos*size.
func (b *Block) InvSymbol(size, pos, value int) {
	for i := size - 1; i >= 0; i-- {
		if (value>>uint(i))&1 != 0 {
			b.bits.Flip(uint(i + pos*size))
		}
	}
}

// GetBit returns bit pos.
func (b *Block) GetBit(pos int) bool { return b.bits.Test(uint(pos)) }

// SetBit sets bit pos to value.
func (b *Block) SetBit(pos int, value bool) { b.setBitValue(pos, value) }

// InvBit flips bit pos.
func (b *Block) InvBit(pos int) { b.bits.Flip(uint(pos)) }

func (b *Block) setBitValue(pos int, value bool) {
	if value {
		b.bits.Set(uint(pos))
	} else {
		b.bits.Clear(uint(pos))
	}
}

// Xor applies rhs onto b in place (Block::operator^= in the original).
func (b *Block) Xor(rhs *Block) {
	b.bits.InPlaceSymmetricDifference(rhs.bits)
}

// CopyFrom copies src's bits 1:1 into b (Block::copy).
func (b *Block) CopyFrom(src *Block) {
	for i := 0; i < b.bitN; i++ {
		b.setBitValue(i, src.GetBit(i))
	}
	b.ErrorDQ = src.ErrorDQ
}

// CopyFromOffset copies b.bitN bits of src starting at bit offset n
// (Block::copyfromN).
func (b *Block) CopyFromOffset(src *Block, n int) {
	for i := 0; i < b.bitN; i++ {
		b.setBitValue(i, src.GetBit(i+n))
	}
	b.ErrorDQ = src.ErrorDQ
}

// CopyFromOffsetCount copies count bits of src starting at bit offset n
// (Block::copyfromN_bringM).
func (b *Block) CopyFromOffsetCount(src *Block, n, count int) {
	for i := 0; i < count; i++ {
		b.setBitValue(i, src.GetBit(i+n))
	}
	b.ErrorDQ = src.ErrorDQ
}

// CopyFromStrided copies b.bitN bits of src taken with stride `stride`,
// offset by n (Block::copyfromN_strideM).
func (b *Block) CopyFromStrided(src *Block, n, stride int) {
	for i := 0; i < b.bitN; i++ {
		b.setBitValue(i, src.GetBit(i*stride+n))
	}
	b.ErrorDQ = src.ErrorDQ
}
