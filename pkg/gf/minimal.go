package gf

// MinimalPoly computes the minimal polynomial of alpha^power over GF(2) by
// finding its conjugacy class under repeated squaring (the Frobenius
// automorphism x -> x^2 in characteristic 2) and multiplying out
// (x - alpha^e) for every conjugate e. This is the general algorithm
// dram_error_sim's gf.cc keeps, commented out, in favor of a per-m
// hard-coded table; this implementation reconstructs it directly rather
// than guessing at undocumented hard-coded constants, and produces
// equivalent minimal polynomials for the generator-polynomial construction
// BCH (spec 4.B.4) needs.
func MinimalPoly(f *Field, power int) Poly {
	max := f.MaxIndex
	start := ((power % max) + max) % max

	seen := map[int]bool{}
	var conjugates []int
	e := start
	for !seen[e] {
		seen[e] = true
		conjugates = append(conjugates, e)
		e = (e * 2) % max
	}

	one := FromValue(f, 1)
	poly := FromElems(f, []Elem{one}) // constant polynomial "1"

	for _, exp := range conjugates {
		root := AlphaPow(f, exp)
		// factor = (x - root) = (x + root) in characteristic 2
		factor := FromElems(f, []Elem{root, one})
		poly = poly.Mul(factor)
	}

	return poly
}

// BCHGeneratorPoly builds g(x) = LCM of minimal polynomials of
// alpha^1, alpha^3, ..., alpha^(2t-1), the standard narrow-sense binary BCH
// generator (spec 4.B.4).
func BCHGeneratorPoly(f *Field, t int) Poly {
	one := FromValue(f, 1)
	g := FromElems(f, []Elem{one})

	for i := 0; i < t; i++ {
		power := 2*i + 1
		m := MinimalPoly(f, power)
		// Distinct odd powers can share a conjugacy class (e.g. alpha and
		// alpha^2^k are conjugates), so skip factors already folded into g.
		if _, rem := g.DivMod(m); !rem.IsZero() {
			g = g.Mul(m)
		}
	}
	return g
}
