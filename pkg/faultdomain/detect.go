package faultdomain

import (
	"sort"

	"github.com/jihwankim/eccsim/pkg/fault"
)

// FaultyChipDetect walks the operational fault list newest-first looking
// for chip-level (non-single-beat) faults that overlap a prior one, for use
// by erasure-assisted decoders that need a short list of candidate faulty
// chips (spec 4.F). This ports FaultDomain::FaultyChipDetect's
// CORRECT_DETECT==3 branch — the original's compiled-in default. The other
// two variants (CORRECT_DETECT==1/2) are exposed separately as
// FaultyChipDetectVariant1/2, opt-in only, per spec §9 Open Question 4.
//
// The default branch has one quirk worth flagging: `prev_fault` is
// reassigned to the list's single most-recent fault after every loop
// iteration regardless of position, so in the original every candidate is
// really compared against that one fault, not its immediate predecessor.
// This port preserves that comparison target rather than "fixing" it into
// a predecessor-chain walk, with one change: the original's very first
// comparison runs against a still-NULL prev_fault pointer (undefined
// behavior in C++); this port skips that first comparison instead of
// dereferencing a nil fault.
func (fd *FaultDomain) FaultyChipDetect() []int {
	if len(fd.OperationalFaultList) == 1 {
		return []int{fd.OperationalFaultList[0].ChipPos}
	}
	if len(fd.OperationalFaultList) == 0 {
		return nil
	}

	mostRecent := fd.OperationalFaultList[len(fd.OperationalFaultList)-1]
	var prev *fault.Fault
	seen := map[int]bool{}
	var chipIDs []int

	for i := len(fd.OperationalFaultList) - 1; i >= 0; i-- {
		cur := fd.OperationalFaultList[i]
		if !cur.IsSingleBeat {
			if prev != nil && fault.Overlap(cur, prev) && !seen[cur.ChipPos] {
				seen[cur.ChipPos] = true
				chipIDs = append(chipIDs, cur.ChipPos)
			}
		}
		prev = mostRecent
	}

	switch len(chipIDs) {
	case 1:
		return chipIDs
	case 2:
		return chipIDs
	default:
		return nil
	}
}

// FaultyChipDetectVariant1 ports FaultyChipDetect's CORRECT_DETECT==1
// branch: every non-single-beat candidate is checked against *every* fault
// already walked (the walk runs from the end of the list, so these are the
// faults listed after it), not just the most recent one, and
// every distinct overlapping chip ID is returned rather than the 0/1/2 cap
// the default variant applies. Never selected at compile time in the
// original; kept here as an opt-in alternate per spec §9 Open Question 4.
func (fd *FaultDomain) FaultyChipDetectVariant1() []int {
	if len(fd.OperationalFaultList) == 1 {
		return []int{fd.OperationalFaultList[0].ChipPos}
	}
	if len(fd.OperationalFaultList) == 0 {
		return nil
	}

	seen := map[int]bool{}
	var chipIDs []int
	var older []*fault.Fault

	for i := len(fd.OperationalFaultList) - 1; i >= 0; i-- {
		cur := fd.OperationalFaultList[i]
		if !cur.IsSingleBeat {
			for _, prev := range older {
				if fault.Overlap(cur, prev) && !seen[cur.ChipPos] {
					seen[cur.ChipPos] = true
					chipIDs = append(chipIDs, cur.ChipPos)
				}
			}
		}
		older = append(older, cur)
	}
	sort.Ints(chipIDs)
	return chipIDs
}

// FaultyChipDetectVariant2 ports FaultyChipDetect's CORRECT_DETECT==2
// branch: the same every-walked-fault scan as Variant1, but returns only
// the lowest chip ID found (the original collects candidates into a
// std::set<int> and reports *begin(), its smallest member) instead of the
// full set. Never selected at compile time in the original; kept here as
// an opt-in alternate per spec §9 Open Question 4.
func (fd *FaultDomain) FaultyChipDetectVariant2() []int {
	ids := fd.FaultyChipDetectVariant1()
	if len(ids) == 0 {
		return nil
	}
	lowest := ids[0]
	for _, id := range ids[1:] {
		if id < lowest {
			lowest = id
		}
	}
	return []int{lowest}
}
