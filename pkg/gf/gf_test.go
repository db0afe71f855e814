package gf

import "testing"

func TestNewFieldRejectsUnsupportedM(t *testing.T) {
	if _, err := NewField(11); err == nil {
		t.Fatal("expected error for unsupported field size")
	}
}

func TestFieldTableRoundTrip(t *testing.T) {
	for _, m := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 16} {
		f, err := NewField(m)
		if err != nil {
			t.Fatalf("m=%d: %v", m, err)
		}
		for idx := 0; idx < f.MaxIndex; idx++ {
			p := f.Index2Poly(idx)
			if got := f.Poly2Index(p); got != idx {
				t.Fatalf("m=%d: index %d round-trips to %d via poly %d", m, idx, got, p)
			}
		}
	}
}

func TestElemArithmetic(t *testing.T) {
	f, err := NewField(8)
	if err != nil {
		t.Fatal(err)
	}

	a := AlphaPow(f, 3)
	b := AlphaPow(f, 200)

	if !a.Add(a).IsZero() {
		t.Fatal("a+a must be zero in characteristic 2")
	}

	prod := a.Mul(b)
	if got := prod.Div(b); !got.Eq(a) {
		t.Fatalf("(a*b)/b = %v, want %v", got, a)
	}

	zero := Zero(f)
	if !zero.Mul(a).IsZero() {
		t.Fatal("zero * a must be zero")
	}

	if got := a.Pow(0); got.Value() != 1 {
		t.Fatalf("a^0 = %v, want value 1", got)
	}
}

func TestPolyDivMod(t *testing.T) {
	f, err := NewField(4)
	if err != nil {
		t.Fatal(err)
	}

	one := FromValue(f, 1)
	// p(x) = (x + alpha^2) * (x + alpha^5)
	factorA := FromElems(f, []Elem{AlphaPow(f, 2), one})
	factorB := FromElems(f, []Elem{AlphaPow(f, 5), one})
	p := factorA.Mul(factorB)

	q, rem := p.DivMod(factorA)
	if !rem.IsZero() {
		t.Fatalf("expected zero remainder, got degree %d", rem.Degree())
	}
	if q.Coeff(0).Poly() != factorB.Coeff(0).Poly() || q.Coeff(1).Poly() != factorB.Coeff(1).Poly() {
		t.Fatalf("quotient mismatch")
	}
}

func TestMinimalPolyDividesXToMaxIndexMinusOne(t *testing.T) {
	f, err := NewField(4)
	if err != nil {
		t.Fatal(err)
	}

	m := MinimalPoly(f, 1)
	// Every root of a minimal polynomial of a nonzero field element is itself
	// a root of x^(2^m-1) - 1, so m(x) must evenly divide it.
	xMaxMinus1 := NewPoly(f, f.MaxIndex)
	xMaxMinus1.SetCoeff(f.MaxIndex, FromValue(f, 1))
	xMaxMinus1.SetCoeff(0, FromValue(f, 1))

	_, rem := xMaxMinus1.DivMod(m)
	if !rem.IsZero() {
		t.Fatalf("minimal polynomial does not divide x^%d+1", f.MaxIndex)
	}
}

func TestBCHGeneratorPolyDegreeGrowsWithT(t *testing.T) {
	f, err := NewField(4)
	if err != nil {
		t.Fatal(err)
	}

	g1 := BCHGeneratorPoly(f, 1)
	g2 := BCHGeneratorPoly(f, 2)

	if g2.leadingDegree() < g1.leadingDegree() {
		t.Fatalf("t=2 generator (degree %d) should not be smaller than t=1 (degree %d)",
			g2.leadingDegree(), g1.leadingDegree())
	}
}
