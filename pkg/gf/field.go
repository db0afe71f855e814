// Package gf implements GF(2^m) arithmetic for m in {1..10, 16}: element
// and polynomial operations plus the per-field primitive-polynomial table,
// grounded on the index/polynomial dual representation of
// dram_error_sim's gf.hh/gf.cc.
package gf

import "fmt"

// ErrUnsupportedField is returned by NewField for an m with no hard-coded
// primitive polynomial (spec 4.A: "request for an unsupported m fails").
type ErrUnsupportedField struct {
	M int
}

func (e *ErrUnsupportedField) Error() string {
	return fmt.Sprintf("gf: unsupported field size m=%d", e.M)
}

// Field holds the precomputed index<->polynomial tables for GF(2^m). Built
// once and never mutated afterward — safe to share by reference across
// concurrent workers (spec §5).
type Field struct {
	M             int
	PrimitivePoly int // the defining polynomial, as a bit-vector of coefficients
	MaxIndex      int // 2^m - 1; also the sentinel "zero" index
	index2poly    []int
	poly2index    []int
}

// primitivePolys hard-codes one primitive polynomial per supported m,
// verbatim from dram_error_sim's pickPrimitivePoly() (citing Fujiwara,
// "Code Design for Dependable Systems").
var primitivePolys = map[int]int{
	1:  0x3,
	2:  0x7,
	3:  0xB,
	4:  0x13,
	5:  0x25,
	6:  0x43,
	7:  0x83,
	8:  0x11D,
	9:  0x211,
	10: 0x409,
	16: 0x1100B,
}

// NewField builds the index2poly/poly2index tables for GF(2^m) by walking
// successive powers of alpha modulo the primitive polynomial. Index
// MaxIndex = 2^m-1 is reserved as the zero-element sentinel (spec 3, 4.A).
func NewField(m int) (*Field, error) {
	pp, ok := primitivePolys[m]
	if !ok {
		return nil, &ErrUnsupportedField{M: m}
	}

	size := 1 << m
	maxIndex := size - 1

	f := &Field{
		M:             m,
		PrimitivePoly: pp,
		MaxIndex:      maxIndex,
		index2poly:    make([]int, size),
		poly2index:    make([]int, size),
	}

	// alpha^0 = 1
	poly := 1
	for idx := 0; idx < maxIndex; idx++ {
		f.index2poly[idx] = poly
		f.poly2index[poly] = idx

		// multiply by alpha: shift left one bit; if it overflows m bits,
		// reduce modulo the primitive polynomial.
		poly <<= 1
		if poly&size != 0 {
			poly ^= pp
		}
	}

	f.index2poly[maxIndex] = 0
	f.poly2index[0] = maxIndex

	return f, nil
}

// IsZeroPoly reports whether a raw polynomial bit-vector is the zero element.
func (f *Field) IsZeroPoly(p int) bool { return p == 0 }

// IsZeroIndex reports whether an index is the zero-element sentinel.
func (f *Field) IsZeroIndex(idx int) bool { return idx == f.MaxIndex }

// Index2Poly converts an index (power of alpha) to its polynomial (bit-vector) form.
func (f *Field) Index2Poly(idx int) int { return f.index2poly[idx] }

// Poly2Index converts a polynomial (bit-vector) form to its index (power of alpha).
func (f *Field) Poly2Index(p int) int { return f.poly2index[p] }
