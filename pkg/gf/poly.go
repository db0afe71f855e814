package gf

// Poly is a dynamic-length polynomial over GF(2^m): coeffs[i] is the
// coefficient of x^i. Degrees grow as needed on +=/*=; grounded on
// dram_error_sim's GFPoly<p,m> (gf.hh/gf.cc).
type Poly struct {
	field  *Field
	coeffs []Elem
}

// NewPoly builds a zero polynomial with degree+1 coefficient slots.
func NewPoly(f *Field, degree int) Poly {
	coeffs := make([]Elem, degree+1)
	for i := range coeffs {
		coeffs[i] = Zero(f)
	}
	return Poly{field: f, coeffs: coeffs}
}

// FromElems builds a polynomial directly from a coefficient slice (index i
// is the coefficient of x^i). The slice is copied.
func FromElems(f *Field, coeffs []Elem) Poly {
	cp := make([]Elem, len(coeffs))
	copy(cp, coeffs)
	return Poly{field: f, coeffs: cp}
}

// Degree returns the highest valid coefficient index (not normalized: may
// include leading zero coefficients, matching the original's fixed-size
// coeffArr semantics).
func (p Poly) Degree() int { return len(p.coeffs) - 1 }

// Coeff returns the coefficient of x^i, or the zero element if i exceeds
// the polynomial's current capacity.
func (p Poly) Coeff(i int) Elem {
	if i < 0 || i >= len(p.coeffs) {
		return Zero(p.field)
	}
	return p.coeffs[i]
}

// SetCoeff sets the coefficient of x^i, growing the backing array if needed.
func (p *Poly) SetCoeff(i int, e Elem) {
	p.grow(i)
	p.coeffs[i] = e
}

func (p *Poly) grow(minDegree int) {
	if minDegree < len(p.coeffs) {
		return
	}
	next := make([]Elem, minDegree+1)
	for i := range next {
		next[i] = Zero(p.field)
	}
	copy(next, p.coeffs)
	p.coeffs = next
}

// Add returns p+rhs (coefficient-wise XOR over the union of both degrees).
func (p Poly) Add(rhs Poly) Poly {
	n := len(p.coeffs)
	if len(rhs.coeffs) > n {
		n = len(rhs.coeffs)
	}
	out := NewPoly(p.field, n-1)
	for i := 0; i < n; i++ {
		out.coeffs[i] = p.Coeff(i).Add(rhs.Coeff(i))
	}
	return out
}

// Sub is an alias for Add (characteristic 2).
func (p Poly) Sub(rhs Poly) Poly { return p.Add(rhs) }

// MulElem returns p scaled by the scalar e (element-wise multiply).
func (p Poly) MulElem(e Elem) Poly {
	out := NewPoly(p.field, p.Degree())
	for i, c := range p.coeffs {
		out.coeffs[i] = c.Mul(e)
	}
	return out
}

// Mul returns the polynomial product p*rhs (naive O(n^2) convolution,
// matching the original's unoptimized GFPoly::operator*=).
func (p Poly) Mul(rhs Poly) Poly {
	out := NewPoly(p.field, p.Degree()+rhs.Degree()+1)
	for i, a := range p.coeffs {
		if a.IsZero() {
			continue
		}
		for j, b := range rhs.coeffs {
			if b.IsZero() {
				continue
			}
			out.coeffs[i+j] = out.coeffs[i+j].Add(a.Mul(b))
		}
	}
	return out
}

// leadingDegree returns the index of the highest nonzero coefficient, or -1
// for the zero polynomial.
func (p Poly) leadingDegree() int {
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		if !p.coeffs[i].IsZero() {
			return i
		}
	}
	return -1
}

// DivMod performs polynomial long division, returning (quotient, remainder).
func (p Poly) DivMod(divisor Poly) (Poly, Poly) {
	dDeg := divisor.leadingDegree()
	if dDeg < 0 {
		panic("gf: division by zero polynomial")
	}
	remCoeffs := make([]Elem, len(p.coeffs))
	copy(remCoeffs, p.coeffs)
	rem := Poly{field: p.field, coeffs: remCoeffs}

	quotDeg := p.leadingDegree() - dDeg
	if quotDeg < 0 {
		quotDeg = 0
	}
	quot := NewPoly(p.field, quotDeg)

	leadDivisor := divisor.Coeff(dDeg)
	for {
		rDeg := rem.leadingDegree()
		if rDeg < dDeg {
			break
		}
		factor := rem.Coeff(rDeg).Div(leadDivisor)
		quot.SetCoeff(rDeg-dDeg, factor)
		for i := 0; i <= dDeg; i++ {
			rem.coeffs[rDeg-dDeg+i] = rem.coeffs[rDeg-dDeg+i].Add(divisor.Coeff(i).Mul(factor))
		}
	}
	return quot, rem
}

// Div returns p/rhs.
func (p Poly) Div(rhs Poly) Poly { q, _ := p.DivMod(rhs); return q }

// Mod returns p%rhs.
func (p Poly) Mod(rhs Poly) Poly { _, r := p.DivMod(rhs); return r }

// ShiftSymbols returns p shifted left by k symbols (<<= k in the original):
// multiplies by x^k.
func (p Poly) ShiftSymbols(k int) Poly {
	out := NewPoly(p.field, p.Degree()+k)
	for i, c := range p.coeffs {
		out.coeffs[i+k] = c
	}
	return out
}

// IsZero reports whether every coefficient is zero.
func (p Poly) IsZero() bool { return p.leadingDegree() < 0 }
