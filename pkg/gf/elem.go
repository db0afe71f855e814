package gf

// Elem is one GF(2^m) element, stored as an index (power of alpha), with
// Field.MaxIndex reserved for zero. Spec 4.A: addition is
// index->poly, XOR, poly->index; multiplication is modular index addition;
// division negates the index of the divisor mod 2^m-1.
type Elem struct {
	field *Field
	index int
}

// NewElem wraps an already-known index value (e.g. a locator exponent).
func NewElem(f *Field, index int) Elem {
	return Elem{field: f, index: index}
}

// Zero returns the zero element of f.
func Zero(f *Field) Elem {
	return Elem{field: f, index: f.MaxIndex}
}

// FromValue builds an element from the "external" 1-based value convention
// used throughout the codec layer: v==0 maps to the zero element, v>0 maps
// to index v-1 (spec 3's GF element invariant + message symbol convention).
func FromValue(f *Field, v int) Elem {
	if v == 0 {
		return Zero(f)
	}
	return Elem{field: f, index: v - 1}
}

// FromPoly builds an element from its polynomial (bit-vector) representation.
func FromPoly(f *Field, p int) Elem {
	return Elem{field: f, index: f.Poly2Index(p)}
}

// Field returns the field this element belongs to.
func (e Elem) Field() *Field { return e.field }

// Index returns the element's index (power-of-alpha) representation.
func (e Elem) Index() int { return e.index }

// Poly returns the element's polynomial (bit-vector) representation.
func (e Elem) Poly() int { return e.field.Index2Poly(e.index) }

// Value returns the "external" 1-based value: 0 for the zero element, else index+1.
func (e Elem) Value() int {
	if e.IsZero() {
		return 0
	}
	return e.index + 1
}

// IsZero reports whether e is the field's zero element.
func (e Elem) IsZero() bool { return e.field.IsZeroIndex(e.index) }

// Add returns e+rhs (== e-rhs: GF(2^m) addition is its own inverse).
func (e Elem) Add(rhs Elem) Elem {
	return FromPoly(e.field, e.Poly()^rhs.Poly())
}

// Sub is an alias for Add: subtraction is XOR in characteristic 2.
func (e Elem) Sub(rhs Elem) Elem { return e.Add(rhs) }

// Mul returns e*rhs.
func (e Elem) Mul(rhs Elem) Elem {
	if e.IsZero() || rhs.IsZero() {
		return Zero(e.field)
	}
	idx := (e.index + rhs.index) % e.field.MaxIndex
	return Elem{field: e.field, index: idx}
}

// Div returns e/rhs. Panics if rhs is zero (caller invariant: divisors in
// decode loops are always checked non-zero first).
func (e Elem) Div(rhs Elem) Elem {
	if rhs.IsZero() {
		panic("gf: division by zero element")
	}
	if e.IsZero() {
		return Zero(e.field)
	}
	idx := ((e.index-rhs.index)%e.field.MaxIndex + e.field.MaxIndex) % e.field.MaxIndex
	return Elem{field: e.field, index: idx}
}

// Pow returns e raised to an integer exponent (negative exponents allowed).
func (e Elem) Pow(n int) Elem {
	if e.IsZero() {
		if n == 0 {
			return FromValue(e.field, 1)
		}
		return Zero(e.field)
	}
	idx := ((e.index*n)%e.field.MaxIndex + e.field.MaxIndex) % e.field.MaxIndex
	return Elem{field: e.field, index: idx}
}

// Eq reports whether e and rhs are the same element of the same field.
func (e Elem) Eq(rhs Elem) bool {
	return e.field == rhs.field && e.index == rhs.index
}

// AlphaPow returns alpha^n as an Elem of field f — shorthand used pervasively
// by codec syndrome/locator formulas (e.g. GFElem<p,m>(k) in the original).
func AlphaPow(f *Field, n int) Elem {
	idx := ((n % f.MaxIndex) + f.MaxIndex) % f.MaxIndex
	return Elem{field: f, index: idx}
}
