package faultrate

import "math"

// ErrorPattern names one of the multi-device error shapes InherentRate
// computes a rate for (InherentErrorPattern in FaultRateInfo.hh): k
// simultaneous bit errors within a single codeword (None..Twelv), plus a
// handful of named cross-chip patterns used by the multi-device ECC
// schemes.
type ErrorPattern int

const (
	None ErrorPattern = iota
	Single
	Double
	Triple
	Quad
	Penta
	Hexa
	Septa
	Octa
	Nona
	Deca
	Elev
	Twelv

	DoubleSingle9
	DoubleDouble9
	SingleSingle18
	SingleSingle10
	DoubleDouble18
	DoubleDouble10
	DoubleSingleSingle18
	SingleSingleOn18Symbol
	SingleSingleSingleOn18Symbol

	patternCount
)

// WeakCellParams are the four externally-measured weak-cell parameters
// InherentRate::setIFRate reads from the tester (spec 4.E): ratio and
// per-access activation probability of permanent weak cells, and of
// frequent-weak cells (cells that fail more often but not always).
type WeakCellParams struct {
	RatioWC       float64
	ActiveProbWC  float64
	RatioFWC      float64
	ActiveProbFWC float64
}

// InherentRate models weak-cell-driven multi-bit error rates (spec 4.E),
// grounded on InherentRate::setIFRate: a joint binomial over how many weak
// and frequent-weak cells land in one codeword, combined with each cell's
// independent activation probability.
type InherentRate struct {
	rates    [patternCount]float64
	pWordWC  float64
	bitN     int
	computed bool
}

func NewInherentRate() *InherentRate { return &InherentRate{} }

// Rate returns the per-access FIT-scaled rate for pattern, panicking if
// pattern is out of range (mirrors the original's assert(ePattern
// < InherrentPatterns) guard — a programming error, not a runtime one).
// Before SetIFRate has run, every pattern's rate is 0.
func (ir *InherentRate) Rate(pattern ErrorPattern) float64 {
	if pattern < 0 || pattern >= patternCount {
		panic("faultrate: error pattern out of range")
	}
	return ir.rates[pattern]
}

// PWordWC returns the rough per-codeword probability that at least one weak
// cell is present (pWordWC_ in the original) — used by FaultDomain to gate
// whether the inherent model activates at all for a trial.
func (ir *InherentRate) PWordWC() float64 { return ir.pWordWC }

const gb1 = 8589934592.0 // GB_1: 1GB in bits

// twelve is Twelv's plain-int value, used for array sizing and loop bounds
// (ErrorPattern is a distinct type from int, so arithmetic needs this).
const twelve = 12

// nchoosek is n choose k for the small integers setIFRate needs; ported
// directly from InherentRate::nchoosek's recursive definition (no
// memoization in the original either — SetIFRate calls it with k up to
// 2*(span-1) = 238, one recursion level per unit of k).
func nchoosek(n, k int) float64 {
	if k == 0 {
		return 1
	}
	return float64(n) * nchoosek(n-1, k-1) / float64(k)
}

// SetIFRate computes every inherent error-pattern rate from bitN (the
// codec's codeword width) and the weak-cell parameters (InherentRate::
// setIFRate): a joint distribution over (permanent, frequent) weak-cell
// counts per codeword, convolved with each population's independent
// activation probability, then scaled to a per-GB-per-access FIT rate.
func (ir *InherentRate) SetIFRate(bitN int, p WeakCellParams) {
	ir.bitN = bitN
	ir.pWordWC = float64(bitN) * (p.RatioWC + p.RatioFWC)

	const span = twelve * 10
	pWordWC := make([][]float64, span)
	pError1 := make([][]float64, span)
	pError2 := make([][]float64, span)
	for k1 := 0; k1 < span; k1++ {
		pWordWC[k1] = make([]float64, span)
		pError1[k1] = make([]float64, twelve+1)
		pError2[k1] = make([]float64, twelve+1)
		for k2 := 0; k2 < span; k2++ {
			comb := nchoosek(bitN, k1+k2) * nchoosek(k1+k2, k1)
			pWordWC[k1][k2] = comb * math.Pow(p.RatioWC, float64(k1)) *
				math.Pow(p.RatioFWC, float64(k2)) *
				math.Pow(1-p.RatioWC-p.RatioFWC, float64(bitN-k1-k2))
		}
		for j := 0; j <= twelve; j++ {
			if j > k1 {
				continue
			}
			pError1[k1][j] = nchoosek(k1, j) * math.Pow(p.ActiveProbWC, float64(j)) *
				math.Pow(1-p.ActiveProbWC, float64(k1-j))
			pError2[k1][j] = nchoosek(k1, j) * math.Pow(p.ActiveProbFWC, float64(j)) *
				math.Pow(1-p.ActiveProbFWC, float64(k1-j))
		}
	}

	var pErr [twelve*2 + 2]float64
	for k1 := 0; k1 < span; k1++ {
		for k2 := 0; k2 < span; k2++ {
			if pWordWC[k1][k2] == 0 {
				continue
			}
			for j1 := 0; j1 <= twelve; j1++ {
				if pError1[k1][j1] == 0 {
					continue
				}
				for j2 := 0; j2 <= twelve; j2++ {
					pErr[j1+j2] += pWordWC[k1][k2] * pError1[k1][j1] * pError2[k2][j2]
				}
			}
		}
	}

	scale := gb1 / (float64(bitN) / 1.0625) * 16 * 3600
	for i := 0; i <= twelve; i++ {
		ir.rates[i] = pErr[i] * scale
	}

	ir.rates[DoubleSingle9] = nchoosek(9, 1) * nchoosek(8, 1) * pErr[1] * pErr[2] *
		math.Pow(1-pErr[1]-pErr[2], 7) * scale
	ir.rates[DoubleDouble9] = nchoosek(9, 2) * math.Pow(pErr[2], 2) *
		math.Pow(1-pErr[2], 7) * scale
	ir.rates[SingleSingle18] = nchoosek(18, 2) * math.Pow(pErr[1], 2) *
		math.Pow(1-pErr[1], 16) * scale
	ir.rates[SingleSingle10] = nchoosek(10, 2) * math.Pow(pErr[1], 2) *
		math.Pow(1-pErr[1], 8) * scale
	ir.rates[SingleSingleOn18Symbol] = nchoosek(18, 2) * math.Pow(pErr[1], 2) *
		math.Pow(1-pErr[1], 16) * scale
	ir.rates[SingleSingleSingleOn18Symbol] = nchoosek(18, 3) * math.Pow(pErr[1], 3) *
		math.Pow(1-pErr[1], 16) * scale
	ir.rates[DoubleDouble18] = nchoosek(18, 2) * math.Pow(pErr[2], 2) *
		math.Pow(1-pErr[2], 16) * scale
	ir.rates[DoubleDouble10] = nchoosek(10, 2) * math.Pow(pErr[2], 2) *
		math.Pow(1-pErr[2], 8) * scale
	ir.rates[DoubleSingleSingle18] = nchoosek(18, 2) * nchoosek(16, 1) *
		math.Pow(pErr[2], 1) * math.Pow(pErr[1], 2) *
		math.Pow(1-pErr[1]-pErr[2], 15) * scale

	ir.computed = true
}

// Computed reports whether SetIFRate has run yet.
func (ir *InherentRate) Computed() bool { return ir.computed }
