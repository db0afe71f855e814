package rs

import (
	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec"
	"github.com/jihwankim/eccsim/pkg/gf"
)

// RSDual is a Reed-Solomon decoder that corrects errors and erasures
// concurrently (spec 4.B.2's "2L + |erasures| <= symR" rule), grounded on
// dram_error_sim's RS_DUAL: an inversion-less Berlekamp-Massey variant
// seeded from the erasure locator polynomial, followed by Chien search and
// an error-value evaluation shared between errors and erasures.
type RSDual struct {
	codec.Base
	field               *gf.Field
	symN, symK, symR, symB int
	indexMax            int
}

// NewRSDual builds an error+erasure RS decoder over field with symN total
// symbols, symR check symbols, and room for symB erasures alongside errors.
func NewRSDual(name string, field *gf.Field, symN, symR, symB int) *RSDual {
	return &RSDual{
		Base:  codec.NewBase(name, field.M*symN, field.M*symR),
		field: field,
		symN:  symN, symK: symN - symR, symR: symR, symB: symB,
		indexMax: field.MaxIndex,
	}
}

// Encode is a no-op in rs.hh's RS_DUAL (it only supports decode); data
// placement for this scheme is owned by the orchestrating ECC scheme.
func (d *RSDual) Encode(data *block.Block, encoded *block.ECCWord) {}

func (d *RSDual) genSyndrome(msg *block.ECCWord) ([]gf.Elem, bool) {
	synError := false
	received := make([]gf.Elem, d.symN)
	for i := 0; i < d.symN; i++ {
		received[i] = gf.FromValue(d.field, msg.GetSymbol(d.field.M, i))
	}
	syndrome := make([]gf.Elem, d.symR)
	for i := 0; i < d.symR; i++ {
		// Horner evaluation of the received-word polynomial at alpha^(i+1),
		// processing symbols from the highest degree down and folding in the
		// constant term unmultiplied on the final step.
		mult := gf.AlphaPow(d.field, i+1)
		s := gf.Zero(d.field)
		for j := 0; j < d.symK+d.symR; j++ {
			if j != d.symK+d.symR-1 {
				s = s.Add(received[d.symK+d.symR-1-j]).Mul(mult)
			} else {
				s = s.Add(received[0])
			}
		}
		syndrome[i] = s
		if !s.IsZero() {
			synError = true
		}
	}
	return syndrome, synError
}

// erasurePolyGen builds the partial error-locator polynomial seeded with
// known erasure positions (rs.hh's ErasurePolyGen).
func (d *RSDual) erasurePolyGen(erasureLocation []int) []gf.Elem {
	n := d.symR + d.symB
	erasure := make([]gf.Elem, n)
	if len(erasureLocation) == 0 {
		for i := range erasure {
			erasure[i] = gf.Zero(d.field)
		}
		erasure[0] = gf.AlphaPow(d.field, 0)
		return erasure
	}

	first := true
	for _, loc := range erasureLocation {
		if first {
			erasure[0] = gf.AlphaPow(d.field, 0)
			erasure[1] = gf.AlphaPow(d.field, loc)
			for i := 2; i < n; i++ {
				erasure[i] = gf.Zero(d.field)
			}
			first = false
			continue
		}
		tmp := make([]gf.Elem, n)
		for i := 0; i < n; i++ {
			tmp[i] = gf.AlphaPow(d.field, loc).Mul(erasure[i])
		}
		for i := 1; i < n; i++ {
			erasure[i] = erasure[i].Add(tmp[i-1])
		}
	}
	return erasure
}

type dualBMState struct {
	l       int
	errata  []gf.Elem
	errataRaw []gf.Elem
}

// berlekampMassey is the inversion-less BM variant from rs.hh: it begins
// from the erasure locator and walks forward only as far as symR-symB
// iterations allow.
func (d *RSDual) berlekampMassey(syndrome, erasure []gf.Elem) dualBMState {
	n := d.symR + d.symB
	indexMaxElem := gf.Zero(d.field)

	mu := make([]gf.Elem, n)
	la := make([]gf.Elem, n)
	for i := 0; i < n; i++ {
		mu[i] = erasure[i]
		la[i] = erasure[i]
	}
	ga := gf.AlphaPow(d.field, 0)
	// rs.hh initializes gamma to the zero element (index value 0, which in
	// the original's raw-index constructor means alpha^0=1); preserved as-is.
	l := 0

	for k := 1; k < d.symR; k++ {
		if k > d.symR-d.symB {
			break
		}
		de := indexMaxElem
		for j := 0; j <= k+d.symB; j++ {
			if j >= n {
				break
			}
			idx := k - j + d.symB - 1
			if idx < 0 || idx >= len(syndrome) {
				continue
			}
			de = de.Add(mu[j].Mul(syndrome[idx]))
		}

		tmpMu := make([]gf.Elem, n)
		for j := 0; j < n; j++ {
			if j == 0 {
				tmpMu[j] = ga.Mul(mu[j])
			} else {
				tmpMu[j] = ga.Mul(mu[j]).Add(de.Mul(la[j-1]))
			}
		}

		tmpLa := make([]gf.Elem, n)
		takeMu := de.Index() != d.indexMax && 2*l <= k-1
		if takeMu {
			copy(tmpLa, mu)
		} else {
			for j := 0; j < n; j++ {
				if j == 0 {
					tmpLa[j] = indexMaxElem
				} else {
					tmpLa[j] = la[j-1]
				}
			}
		}

		if takeMu {
			l = k - l
			ga = de
		}

		mu = tmpMu
		la = tmpLa
	}

	errata := make([]gf.Elem, n)
	errataRaw := make([]gf.Elem, n)
	for i := 0; i < n; i++ {
		errata[i] = mu[i].Div(mu[0])
		errataRaw[i] = mu[i]
	}
	return dualBMState{l: l, errata: errata, errataRaw: errataRaw}
}

// chien returns the error/erasure locator indices (as "indexMax-location"
// exponents the way rs.hh stores them) or false if the locator count
// doesn't match the expected weight.
func (d *RSDual) chien(st dualBMState) ([]int, bool) {
	want := st.l + d.symB
	reg := make([]gf.Elem, want+1)
	location := make([]int, 0, want)
	for i := 0; i < d.indexMax; i++ {
		sum := gf.Zero(d.field)
		for j := 0; j <= want; j++ {
			if i == 0 {
				reg[j] = st.errata[j+1]
			} else {
				reg[j] = reg[j].Mul(gf.AlphaPow(d.field, j+1))
			}
			sum = sum.Add(reg[j])
		}
		// rs.hh compares against the raw-index-0 element (alpha^0, "one") here
		// rather than the zero sentinel used by RS's own Chien search — an
		// inconsistency in the original between the two decoders, preserved
		// faithfully rather than "corrected" to isZero().
		if (i == 0 || i > d.indexMax-d.symN) && sum.Eq(gf.AlphaPow(d.field, 0)) {
			location = append(location, i)
		}
	}
	if len(location) != want {
		return nil, false
	}
	return location, true
}

// errorEval computes the error/erasure magnitude at each located position
// via rs.hh's ErrorEval (a direct evaluation of the error-evaluator
// polynomial, not full Forney since erasures share the locator here).
func (d *RSDual) errorEval(st dualBMState, syndrome []gf.Elem, location []int) []gf.Elem {
	l := st.l
	polyLen := d.symR + l + d.symB
	poly := make([]gf.Elem, polyLen)
	for i := range poly {
		poly[i] = gf.Zero(d.field)
	}
	for i := 0; i < d.symR; i++ {
		for j := 0; j <= l+d.symB; j++ {
			if i+j >= polyLen || j >= len(st.errataRaw) {
				continue
			}
			poly[i+j] = poly[i+j].Add(syndrome[i].Mul(st.errataRaw[j]))
		}
	}

	n := l + d.symB
	errs := make([]gf.Elem, n)
	for i := 0; i < n; i++ {
		numer := gf.Zero(d.field)
		denom := gf.Zero(d.field)
		for j := 0; j < d.symR; j++ {
			if j >= len(poly) {
				break
			}
			numer = numer.Add(poly[j].Mul(gf.AlphaPow(d.field, location[i]*(j+1))))
		}
		for j := 0; j < d.symR; j++ {
			if j%2 == 1 {
				denom = denom.Add(st.errataRaw[j].Mul(gf.AlphaPow(d.field, location[i]*(j-1))).Mul(gf.AlphaPow(d.field, location[i])))
			}
		}
		errs[i] = numer.Div(denom)
	}
	return errs
}

// Decode corrects up to (symR-|erasures|)/2 errors plus the supplied
// erasures, returning DUE when Berlekamp-Massey's locator degree exceeds
// what symR can support, and the baseline-zero CE/SDC split otherwise.
func (d *RSDual) Decode(msg, decoded *block.ECCWord, correctedPos map[int]struct{}, erasureLocation []int) codec.Outcome {
	syndrome, synError := d.genSyndrome(msg)
	if !synError {
		if msg.IsZero(0) {
			return codec.NE
		}
		return codec.SDC
	}

	decoded.Clone(&msg.Block)
	erasure := d.erasurePolyGen(erasureLocation)
	st := d.berlekampMassey(syndrome, erasure)

	if 2*st.l+len(erasureLocation) > d.symR {
		return codec.DUE
	}

	location, ok := d.chien(st)
	if !ok {
		return codec.DUE
	}

	errs := d.errorEval(st, syndrome, location)

	for i, loc := range location {
		symID := ((d.indexMax - loc) % d.indexMax + d.indexMax) % d.indexMax
		eIndex := errs[i].Index() + 1
		decoded.InvSymbol(d.field.M, symID, eIndex)
		if correctedPos != nil {
			correctedPos[symID] = struct{}{}
		}
	}

	if decoded.IsZero(0) {
		return codec.CE
	}
	return codec.SDC
}
