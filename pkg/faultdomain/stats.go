package faultdomain

import (
	"github.com/jihwankim/eccsim/pkg/fault"
)

// Histogram buckets for setFaultStats/getFaultStats, ported from Config.hh's
// ERRORENUM family (one bucket per taxonomy kind, plus a run of buckets for
// "N simultaneous inherent faults").
const (
	bucketSword = iota
	bucketSbit
	bucketScol
	bucketLwl
	bucketSrow
	bucketSbank
	bucketMbank
	bucketMrank
	bucketChannel
	bucketBLSA
	bucketBankPattern
	bucketCDEC
	bucketCSL
	bucketMultiModule
	bucketRDEC
	bucketSWD
	bucketDistBit
	bucketMWL
	bucketInherentBase // one bucket per inherent multiplicity 1..12 follows
)

var faultBucket = map[string]int{
	"Sword":        bucketSword,
	"Sbit":         bucketSbit,
	"Spin":         bucketSbit,
	"Scol":         bucketScol,
	"Lwordline":    bucketLwl,
	"Srow":         bucketSrow,
	"Sbank":        bucketSbank,
	"Mbank":        bucketMbank,
	"Mrank":        bucketMrank,
	"Channel":      bucketChannel,
	"BLSA":         bucketBLSA,
	"Bank_pattern": bucketBankPattern,
	"CDEC":         bucketCDEC,
	"CSL":          bucketCSL,
	"Multi_module": bucketMultiModule,
	"RDEC":         bucketRDEC,
	"SWD":          bucketSWD,
	"Dist_bit":     bucketDistBit,
	"MWL":          bucketMWL,
}

// SetFaultStats tallies one trial's outcome into the domain's per-year
// SDC/DUE histograms (FaultDomain::setFaultStats): every active fault's
// taxonomy kind gets an equal share of one tally, plus one more share if the
// domain's inherent model contributed N>0 simultaneous faults.
func (fd *FaultDomain) SetFaultStats(outcome Outcome, year int) {
	var arr *[errorKindCount]float32
	switch outcome {
	case SDC:
		arr = &fd.sdcStats[year]
	case DUE:
		arr = &fd.dueStats[year]
	default:
		return
	}

	var hits [errorKindCount]int
	for _, f := range fd.ActiveFaultList {
		bucket, ok := faultBucket[overlapKindName[f.Kind]]
		if !ok {
			continue
		}
		hits[bucket]++
	}
	if fd.InherentFault != nil && fd.InherentFault.NumInherentFaults > 0 {
		bucket := bucketInherentBase + fd.InherentFault.NumInherentFaults - 1
		if bucket < errorKindCount {
			hits[bucket]++
		}
	}

	count := 0
	for _, h := range hits {
		if h > 0 {
			count++
		}
	}
	if count == 0 {
		return
	}
	for i, h := range hits {
		if h > 0 {
			arr[i] += 1 / float32(count)
		}
	}
}

// GetFaultStats returns the per-kind histogram for year (1-indexed, matching
// FaultDomain::getFaultStats).
func (fd *FaultDomain) GetFaultStats(outcome Outcome, year int) [errorKindCount]float32 {
	switch outcome {
	case SDC:
		return fd.sdcStats[year-1]
	case DUE:
		return fd.dueStats[year-1]
	default:
		return [errorKindCount]float32{}
	}
}

// GetFaultStatsAll returns every year's histogram for outcome
// (FaultDomain::getFaultStatsALL).
func (fd *FaultDomain) GetFaultStatsAll(outcome Outcome) [maxYear][errorKindCount]float32 {
	switch outcome {
	case SDC:
		return fd.sdcStats
	case DUE:
		return fd.dueStats
	default:
		return [maxYear][errorKindCount]float32{}
	}
}

// OverlappedAddr reports the fixed (mask-uncovered) address bits shared by
// the current trial's overlapping faults plus the most recent operational
// fault (FaultDomain::OverlappedAddr) — used by erasure-assisted decoders to
// report which physical location a DUE/SDC implicates.
func (fd *FaultDomain) OverlappedAddr() fault.Addr {
	var result fault.Addr
	for _, f := range fd.CurrentPossibleFaultList {
		result |= f.Addr &^ f.Mask
	}
	if n := len(fd.OperationalFaultList); n > 0 {
		mostRecent := fd.OperationalFaultList[n-1]
		result |= mostRecent.Addr &^ mostRecent.Mask
	}
	return result
}
