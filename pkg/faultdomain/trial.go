package faultdomain

import (
	"math/rand"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/fault"
)

// overlapKindName maps a taxonomy Kind to the capitalized name
// FaultRateInfo::overlap_prob switches on (FaultDomain.cc calls
// getName() on a freshly drawn Fault, which in the original returns this
// same capitalized taxonomy label, not the descriptive string this port
// keeps in Fault.Name for logging).
var overlapKindName = map[fault.Kind]string{
	fault.SBit:       "Sbit",
	fault.SWord:      "Sword",
	fault.SCol:       "Scol",
	fault.SRow:       "Srow",
	fault.SBank:      "Sbank",
	fault.MBank:      "Mbank",
	fault.MRank:      "Mrank",
	fault.Channel:    "Channel",
	fault.BLSA:       "BLSA",
	fault.CDEC:       "CDEC",
	fault.CSL:        "CSL",
	fault.RDEC:       "RDEC",
	fault.SWD:        "SWD",
	fault.LWL:        "Lwordline",
	fault.BankPattern: "Bank_pattern",
}

// GenScenarioRandomFaultAndTest injects exactly the fault kinds named by
// codes (spec §6's scenario-evaluation mode) rather than drawing from
// FaultRateInfo's weighted table: builds a fresh CacheLine, draws one fault
// per code, retrying each fault after the first until its chip position
// doesn't collide with an earlier one when chipOverlapCheck is set, then
// decodes the composed error (FaultDomain::genScenarioRandomFaultAndTest).
func (fd *FaultDomain) GenScenarioRandomFaultAndTest(rng *rand.Rand, ecc ECC, codes []string, chipOverlapCheck bool) (Outcome, error) {
	blk := fd.newCacheLine()

	var drawn []*fault.Fault
	for i, code := range codes {
		f, err := fault.GenRandomFault(rng, fd, code)
		if err != nil {
			return NE, err
		}
		if chipOverlapCheck && i > 0 {
			for chipCollides(f, drawn) {
				f, err = fault.GenRandomFault(rng, fd, code)
				if err != nil {
					return NE, err
				}
			}
		}
		drawn = append(drawn, f)
	}

	fd.OperationalFaultList = append(fd.OperationalFaultList, drawn...)
	fd.CurrentPossibleFaultList = append([]*fault.Fault(nil), drawn...)
	fd.ActiveFaultList = append([]*fault.Fault(nil), drawn...)

	for _, f := range drawn {
		f.GenRandomError(blk)
	}
	return ecc.Decode(fd, blk), nil
}

func chipCollides(f *fault.Fault, drawn []*fault.Fault) bool {
	for _, d := range drawn {
		if d.ChipPos == f.ChipPos {
			return true
		}
	}
	return false
}

// GenSystemRandomFaultAndTest draws one fault from FaultRateInfo's weighted
// table per access (spec §6's system-evaluation mode) and decodes the
// resulting error, composing it against prior operational faults whose
// address masks overlap (spec 4.F steps 1-6;
// FaultDomain::genSystemRandomFaultAndTest).
func (fd *FaultDomain) GenSystemRandomFaultAndTest(rng *rand.Rand, ecc ECC) (Outcome, error) {
	blk := fd.newCacheLine()
	result := NE

	name, _, err := fd.FaultRateInfo.PickRandomType(rng)
	if err != nil {
		return NE, err
	}
	byInherentFault := name == "inherent"

	var newFault *fault.Fault
	if !byInherentFault {
		newFault, err = fault.GenRandomFault(rng, fd, name)
		if err != nil {
			return NE, err
		}

		overlapProb, err := fd.FaultRateInfo.OverlapProb(overlapKindName[newFault.Kind], fd.FaultRateInfo.Inherent.PWordWC())
		if err != nil {
			return NE, err
		}
		newFault.Overlapped = rng.Float64() <= overlapProb

		fd.OperationalFaultList = append(fd.OperationalFaultList, newFault)
	} else {
		if len(fd.OperationalFaultList) > 0 {
			newFault = fd.OperationalFaultList[len(fd.OperationalFaultList)-1]
		} else {
			blk.Reset()
			if fd.InherentFault != nil {
				fd.InherentFault.GenRandomErrors(rng, blk, fd.FaultRateInfo.Inherent.PWordWC(), ecc.ChipRand())
			}
			return Worse(result, ecc.Decode(fd, blk)), nil
		}
	}

	fd.CurrentPossibleFaultList = nil
	fd.ActiveFaultList = []*fault.Fault{newFault}

	var overlapping []*fault.Fault
	for i := len(fd.OperationalFaultList) - 2; i >= 0; i-- {
		prior := fd.OperationalFaultList[i]
		if fault.Overlap(prior, newFault) {
			overlapping = append(overlapping, prior)
			fd.CurrentPossibleFaultList = append(fd.CurrentPossibleFaultList, prior)
			fd.ActiveFaultList = append(fd.ActiveFaultList, prior)
		}
	}

	if len(overlapping) == 0 {
		blk.Reset()
		fd.applyInherent(rng, ecc, blk, byInherentFault)
		newFault.GenRandomError(blk)
		result = Worse(result, ecc.Decode(fd, blk))
	} else {
		overlapped := append(append([]*fault.Fault(nil), overlapping...), newFault)
		for _, combo := range generateCombinations(overlapped) {
			pairwise := true
			for _, f := range combo {
				if !fault.Overlap(f, combo[0]) {
					pairwise = false
					break
				}
			}
			if !pairwise {
				continue
			}
			blk.Reset()
			fd.applyInherent(rng, ecc, blk, byInherentFault)
			for _, f := range combo {
				f.GenRandomError(blk)
			}
			result = Worse(result, ecc.Decode(fd, blk))
		}
	}

	if result == CE && ecc.DoRetire() && !byInherentFault && ecc.NeedRetire(fd, newFault) {
		if ecc.MaxRetiredBlkCount() > fd.RetiredBlkCount+newFault.AffectedBlkCount {
			if newFault.AffectedBlkCount > 0 {
				fd.RetiredBlkCount += newFault.AffectedBlkCount
				fd.OperationalFaultList = removeFault(fd.OperationalFaultList, newFault)
				fd.ActiveFaultList = removeFault(fd.ActiveFaultList, newFault)
			}
		} else {
			fd.RetiredBlkCount = ecc.MaxRetiredBlkCount()
		}
	}

	return result, nil
}

// applyInherent flips the weak-cell model's contribution into blk before a
// concrete fault's own bits are applied: the multi-cell GenRandomErrors draw
// when this trial was itself picked as "inherent", or a deterministic single
// GenRandomError otherwise (FaultDomain.cc's repeated
// `if (ByInherentFault) ... else if (inherentFault != NULL) ...` guard).
// The original reads the activation probability from `iRate->getEP()`, a
// getter on the currently-set error pattern whose body was not present in
// the retrieved corpus; PWordWC (the per-word weak-cell presence
// probability, already the quantity OverlapProb and SetInherentFault key
// off) is used in its place.
func (fd *FaultDomain) applyInherent(rng *rand.Rand, ecc ECC, blk *block.CacheLine, byInherentFault bool) {
	if fd.InherentFault == nil {
		return
	}
	if byInherentFault {
		fd.InherentFault.GenRandomErrors(rng, blk, fd.FaultRateInfo.Inherent.PWordWC(), ecc.ChipRand())
	} else {
		fd.InherentFault.GenRandomError(blk)
	}
}

func removeFault(list []*fault.Fault, target *fault.Fault) []*fault.Fault {
	out := list[:0]
	for _, f := range list {
		if f != target {
			out = append(out, f)
		}
	}
	return out
}

// generateCombinations enumerates every subset of size >= 2 of faults,
// ported directly from FaultDomain.cc's free function of the same name.
func generateCombinations(faults []*fault.Fault) [][]*fault.Fault {
	var combos [][]*fault.Fault
	var walk func(start int, current []*fault.Fault)
	walk = func(start int, current []*fault.Fault) {
		if len(current) > 1 {
			combos = append(combos, append([]*fault.Fault(nil), current...))
		}
		for i := start; i < len(faults); i++ {
			walk(i+1, append(current, faults[i]))
		}
	}
	walk(0, nil)
	return combos
}
