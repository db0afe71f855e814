// Package faultrate implements FaultRateInfo and InherentRate (spec 4.E): a
// per-module table of (fault-kind, FIT-rate) pairs supporting weighted
// random draw, and the weak-cell-scaling model that turns a codec's bit
// width into inherent-fault activation rates.
package faultrate

import "strings"

// Multipliers carries the chip-geometry-derived per-chip counts
// FaultRateInfo.cc's module profiles scale their per-component FIT rates
// by (Config.cc: numofBanks, *_per_chip extern globals, set once from the
// selected DRAMTYPE). Ported as a value here instead of package globals,
// so a Monte-Carlo run can vary geometry across scenarios without mutating
// shared state.
type Multipliers struct {
	NumBanks           int
	CDECPerChip        int
	CSLPerChip         int
	RDECPerChip        int
	WLDPerChip         int
	BLSAPerChip        int
	RDECSubbankPerChip int
	BitsPerChip        int
}

// DefaultMultipliers mirrors Config.cc's DDR5 branch (BankperBankGroup=4,
// Bankgroup=4 default -> numofBanks=16) plus the DDR5 per-chip structural
// counts that branch assigns.
func DefaultMultipliers() Multipliers {
	return Multipliers{
		NumBanks:           16,
		CDECPerChip:        32,
		CSLPerChip:         512,
		RDECPerChip:        32,
		WLDPerChip:         20480,
		BLSAPerChip:        8388608,
		RDECSubbankPerChip: 32,
		BitsPerChip:        2,
	}
}

// HBM3Multipliers mirrors Config.cc's HBM3 branch.
func HBM3Multipliers() Multipliers {
	return Multipliers{
		NumBanks:           16,
		CDECPerChip:        64,
		CSLPerChip:         1024,
		RDECPerChip:        64,
		WLDPerChip:         20480,
		BLSAPerChip:        8388608,
		RDECSubbankPerChip: 32,
		BitsPerChip:        2,
	}
}

// multiplierFor reproduces getMultiplier's substring-keyed lookup
// (FaultRateInfo.cc): the first key found as a substring of name wins, in
// the original's map-iteration order is unspecified but the keys are
// disjoint in practice, so a deterministic ordered scan is equivalent.
func multiplierFor(name string, m Multipliers) float64 {
	for _, e := range multiplierTable {
		if strings.Contains(name, e.key) {
			return float64(e.value(m))
		}
	}
	return 1.0
}

type multiplierEntry struct {
	key   string
	value func(Multipliers) int
}

var multiplierTable = []multiplierEntry{
	{"bank_control_bank_8diff", func(m Multipliers) int { return m.NumBanks }},
	{"decoder_multi_col", func(m Multipliers) int { return m.CDECPerChip }},
	{"decoder_single_col", func(m Multipliers) int { return m.CDECPerChip }},
	{"local_wordline_two_clusters", func(m Multipliers) int { return m.WLDPerChip }},
	{"local_wordline", func(m Multipliers) int { return m.WLDPerChip }},
	{"lwl_sel2", func(m Multipliers) int { return m.RDECPerChip }},
	{"lwl_sel", func(m Multipliers) int { return m.RDECPerChip }},
	{"multiple_single_bit_failures_", func(m Multipliers) int { return m.BitsPerChip }},
	{"mutli_csls_", func(m Multipliers) int { return m.NumBanks }},
	{"not_clustered_single_bank", func(m Multipliers) int { return m.NumBanks }},
	{"not_clustered_single_column", func(m Multipliers) int { return m.BLSAPerChip }},
	{"row_decoder", func(m Multipliers) int { return m.RDECPerChip }},
	{"single_csl_", func(m Multipliers) int { return m.CSLPerChip }},
	{"single_sense_amp", func(m Multipliers) int { return m.BLSAPerChip }},
	{"subarray_row_decoder", func(m Multipliers) int { return m.RDECSubbankPerChip }},
	{"potential_sense_amp", func(m Multipliers) int { return m.BLSAPerChip }},
	{"potential_csl_column", func(m Multipliers) int { return m.CSLPerChip }},
	{"consequtive_rows", func(m Multipliers) int { return m.WLDPerChip }},
}
