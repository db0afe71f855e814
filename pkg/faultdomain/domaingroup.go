package faultdomain

import "math/rand"

// Group is a collection of FaultDomains advanced together each trial
// (spec 4.G's DomainGroup): a rank-interleaved module is the common case,
// where every domain shares the trial loop but keeps its own fault state.
type Group struct {
	Domains []*FaultDomain
}

// NewGroup builds a Group owning domains.
func NewGroup(domains ...*FaultDomain) *Group {
	return &Group{Domains: domains}
}

// Clear resets every domain in the group.
func (g *Group) Clear() {
	for _, d := range g.Domains {
		d.Clear()
	}
}

// Scrub runs the periodic scrubber across every domain (spec 5).
func (g *Group) Scrub() {
	for _, d := range g.Domains {
		d.Scrub()
	}
}

// AdvanceSystem runs one system-evaluation access against each domain in
// turn, returning the worst outcome observed across the group for this
// trial (spec 4.F/4.G: a multi-domain module fails as badly as its worst
// domain).
func (g *Group) AdvanceSystem(rng *rand.Rand, ecc ECC) (Outcome, error) {
	result := NE
	for _, d := range g.Domains {
		out, err := d.GenSystemRandomFaultAndTest(rng, ecc)
		if err != nil {
			return NE, err
		}
		result = Worse(result, out)
	}
	return result, nil
}

// AdvanceScenario injects codes into every domain in the group and returns
// the worst outcome (spec 4.F/4.G, scenario-evaluation mode).
func (g *Group) AdvanceScenario(rng *rand.Rand, ecc ECC, codes []string, chipOverlapCheck bool) (Outcome, error) {
	result := NE
	for _, d := range g.Domains {
		out, err := d.GenScenarioRandomFaultAndTest(rng, ecc, codes, chipOverlapCheck)
		if err != nil {
			return NE, err
		}
		result = Worse(result, out)
	}
	return result, nil
}
