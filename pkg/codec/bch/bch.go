// Package bch implements a binary BCH codec (spec 4.B.4). dram_error_sim's
// Huawei.cc/Config.hh construct BCH<m>(name, bitN, bitR, symT) instances
// (e.g. "TEC BCH", 544, 30, 3) but bch.hh/bch.cc themselves were not part of
// the retrieved corpus — only the usage sites. This package is grounded on
// rs.hh's Berlekamp-Massey/Chien structure (the same decode shape a binary
// BCH code uses, minus Forney's algorithm: a binary error's magnitude is
// always 1, so locating a root is already the correction) plus
// pkg/gf/minimal.go's BCHGeneratorPoly for the generator polynomial itself.
package bch

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/gf"
)

// BCH is a binary (bitN, bitN-bitR) t-error-correcting BCH code: roots of
// the generator polynomial are alpha^1, alpha^3, ..., alpha^(2t-1) and
// their conjugates, over field.
type BCH struct {
	codec.Base
	field      *gf.Field
	bitN, bitK, t int
	genPoly    gf.Poly
}

// NewBCH builds a t-error-correcting BCH codec over field for a bitN-bit
// codeword. bitR (the actual redundancy) is derived from the generator
// polynomial's degree, which may be less than field.M*t when conjugate
// classes overlap (spec 4.B.4: BCH's parity length is data-dependent, unlike
// RS's fixed symR).
func NewBCH(name string, field *gf.Field, bitN, t int) (*BCH, error) {
	if err := codec.CheckSymCount(name, field, bitN); err != nil {
		return nil, err
	}
	genPoly := gf.BCHGeneratorPoly(field, t)
	bitR := genPoly.Degree()
	bitK := bitN - bitR
	if err := codec.CheckBitShape(name, bitN, bitK, bitR); err != nil {
		return nil, err
	}
	b := &BCH{
		Base:  codec.NewBase(name, bitN, bitR),
		field: field,
		bitN:  bitN, bitK: bitK, t: t,
		genPoly: genPoly,
	}
	return b, nil
}

func (b *BCH) T() int { return b.t }

// Encode performs systematic cyclic encoding: codeword = data(x)*x^bitR +
// ((data(x)*x^bitR) mod g(x)), with all arithmetic over GF(2) (bit
// coefficients embedded in field as Zero/one elements).
func (b *BCH) Encode(data *block.Block, encoded *block.ECCWord) {
	encoded.Reset()
	one := gf.FromValue(b.field, 1)
	coeffs := make([]gf.Elem, b.bitK)
	for i := 0; i < b.bitK; i++ {
		if data.GetBit(i) {
			coeffs[i] = one
		} else {
			coeffs[i] = gf.Zero(b.field)
		}
		encoded.SetBit(i, data.GetBit(i))
	}
	shifted := gf.FromElems(b.field, coeffs).ShiftSymbols(b.BitR())
	remainder := shifted.Mod(b.genPoly)
	for k := 0; k < b.BitR(); k++ {
		encoded.SetBit(b.bitK+k, !remainder.Coeff(k).IsZero())
	}
}

func (b *BCH) genSyndrome(msg *block.ECCWord) ([]gf.Elem, bool) {
	twoT := 2 * b.t
	syn := make([]gf.Elem, twoT)
	synError := false
	for i := 0; i < twoT; i++ {
		s := gf.Zero(b.field)
		root := gf.AlphaPow(b.field, i+1)
		power := gf.FromValue(b.field, 1)
		for j := 0; j < b.bitN; j++ {
			if msg.GetBit(j) {
				s = s.Add(power)
			}
			power = power.Mul(root)
		}
		syn[i] = s
		if !s.IsZero() {
			synError = true
		}
	}
	return syn, synError
}

// Decode runs Berlekamp-Massey over the 2t syndromes to find the error
// locator polynomial, then Chien search to flip the located bits directly
// (no Forney step: every binary BCH error has magnitude 1).
func (b *BCH) Decode(msg, decoded *block.ECCWord, correctedPos map[int]struct{}) codec.Outcome {
	decoded.Clone(&msg.Block)

	syndrome, synError := b.genSyndrome(msg)
	if !synError {
		if decoded.IsZero(0) {
			return codec.NE
		}
		return codec.SDC
	}

	twoT := 2 * b.t
	one := gf.FromValue(b.field, 1)
	elp := gf.NewPoly(b.field, twoT)
	prevElp := gf.NewPoly(b.field, twoT)
	elp.SetCoeff(0, one)
	prevElp.SetCoeff(0, one)
	prevDiscrepancy := one
	ll := 0
	mm := 1

	for n := 0; n < twoT; n++ {
		discrepancy := syndrome[n]
		for i := 1; i <= ll; i++ {
			discrepancy = discrepancy.Add(elp.Coeff(i).Mul(syndrome[n-i]))
		}
		if discrepancy.IsZero() {
			mm++
		} else if 2*ll <= n {
			temp := elp
			scale := discrepancy.Div(prevDiscrepancy)
			elp = elp.Add(prevElp.ShiftSymbols(mm).MulElem(scale))
			ll = n + 1 - ll
			prevElp = temp
			prevDiscrepancy = discrepancy
			mm = 1
		} else {
			scale := discrepancy.Div(prevDiscrepancy)
			elp = elp.Add(prevElp.ShiftSymbols(mm).MulElem(scale))
			mm++
		}
	}

	if ll > b.t {
		return codec.DUE
	}

	loc := make([]int, 0, ll)
	reg := make([]gf.Elem, ll+1)
	for j := 0; j <= ll; j++ {
		reg[j] = elp.Coeff(j)
	}
	for i := 0; i < b.field.MaxIndex; i++ {
		q := gf.Zero(b.field)
		for j := 0; j <= ll; j++ {
			q = q.Add(reg[j])
			reg[j] = reg[j].Mul(gf.AlphaPow(b.field, j))
		}
		if q.IsZero() {
			pos := b.field.MaxIndex - i
			if i == 0 {
				pos = 0
			}
			if pos >= b.bitN {
				return codec.DUE
			}
			loc = append(loc, pos)
			if len(loc) > ll {
				return codec.DUE
			}
		}
	}

	if len(loc) != ll {
		return codec.DUE
	}

	for _, pos := range loc {
		decoded.InvBit(pos)
		if correctedPos != nil {
			correctedPos[pos] = struct{}{}
		}
	}

	if decoded.IsZero(0) {
		return codec.CE
	}
	return codec.SDC
}
