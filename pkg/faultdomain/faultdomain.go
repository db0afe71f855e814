// Package faultdomain implements FaultDomain and DomainGroup (spec 4.F,
// 4.G), grounded on dram_error_sim's FaultDomain.cc: per-rank fault
// bookkeeping, overlap detection, the composition rule that decides which
// fault subsets get decoded together, and retirement accounting.
package faultdomain

import (
	"math/rand"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/fault"
	"github.com/jihwankim/eccsim/pkg/faultrate"
)

// Outcome mirrors spec 4.H's severity lattice: NE < CE < DUE < SDC.
type Outcome int

const (
	NE Outcome = iota
	CE
	DUE
	SDC
)

func (o Outcome) String() string {
	switch o {
	case NE:
		return "NE"
	case CE:
		return "CE"
	case DUE:
		return "DUE"
	case SDC:
		return "SDC"
	default:
		return "UNKNOWN"
	}
}

// Worse returns the more severe of two outcomes (FaultDomain.cc's
// worseErrorType).
func Worse(a, b Outcome) Outcome {
	if a > b {
		return a
	}
	return b
}

// ECC is the surface a FaultDomain needs from an ECC scheme to run a trial
// (spec 4.G's decode entry point plus the retirement hooks
// genScenarioRandomFaultAndTest reads). Concrete schemes live in pkg/ecc.
type ECC interface {
	Decode(fd *FaultDomain, blk *block.CacheLine) Outcome
	InDRAM() int
	InDRAMDown() int
	DoRetire() bool
	NeedRetire(fd *FaultDomain, f *fault.Fault) bool
	MaxRetiredBlkCount() uint64
	ChipRand() bool
	InitialRetiredBlkCount(fd *FaultDomain, rate float64) uint64
}

// maxYear bounds the per-year SDC/DUE histograms (Config.hh's MAX_YEAR).
const maxYear = 10

// errorKindCount is the number of histogram buckets setFaultStats tallies
// into, one per taxonomy kind plus one per inherent-multiplicity bucket
// (Config.hh's ERRORENUM family); sized generously since only a handful are
// ever populated by any one scheme.
const errorKindCount = 32

// FaultDomain is a per-rank fault container: the operational/retired fault
// lists, the per-trial overlap scratch lists, the long-lived inherent-fault
// model, and a pointer to the FaultRateInfo it draws new faults from
// (FaultDomain.cc).
type FaultDomain struct {
	RanksPerDomain int
	DevicesPerRank int
	PinsPerDevice  int
	BlkHeight      int
	MessageConfig  block.MSGConfig

	FaultRateInfo *faultrate.Info
	InherentFault *fault.Fault

	OperationalFaultList    []*fault.Fault
	RetiredChipIDList       []int
	RetiredPinIDList        []int
	CurrentPossibleFaultList []*fault.Fault
	ActiveFaultList          []*fault.Fault

	RetiredBlkCount uint64

	sdcStats [maxYear][errorKindCount]float32
	dueStats [maxYear][errorKindCount]float32
}

// New builds a FaultDomain the way FaultDomainDDR's constructor does: the
// geometry parameters plus a FaultRateInfo it owns for the lifetime of the
// domain.
func New(ranksPerDomain, devicesPerRank, pinsPerDevice, blkHeight int, cfg block.MSGConfig, info *faultrate.Info) *FaultDomain {
	return &FaultDomain{
		RanksPerDomain: ranksPerDomain,
		DevicesPerRank: devicesPerRank,
		PinsPerDevice:  pinsPerDevice,
		BlkHeight:      blkHeight,
		MessageConfig:  cfg,
		FaultRateInfo:  info,
	}
}

// ChipWidth, ChannelWidth and BeatHeight satisfy fault.Geometry: a
// FaultDomain is itself a valid sampling geometry, exactly as
// Fault::genRandomFault(code, this) passes the owning FaultDomain in the
// original (spec §9's "cyclic graphs" note only forbids Fault holding a
// back-reference, not FaultDomain exposing its own geometry).
func (fd *FaultDomain) ChipWidth() int { return fd.PinsPerDevice }

func (fd *FaultDomain) ChannelWidth() int {
	return (fd.DevicesPerRank-len(fd.RetiredChipIDList))*fd.PinsPerDevice - len(fd.RetiredPinIDList)
}

func (fd *FaultDomain) BeatHeight() int { return fd.BlkHeight }

// newCacheLine allocates the trial's CacheLine with the domain's current
// (post-retirement) effective width.
func (fd *FaultDomain) newCacheLine() *block.CacheLine {
	return block.NewCacheLine(fd.PinsPerDevice, fd.ChannelWidth(), fd.BlkHeight, fd.MessageConfig)
}

// Clear empties every fault list (FaultDomain::clear, minus the C++ delete
// calls the garbage collector makes unnecessary).
func (fd *FaultDomain) Clear() {
	fd.OperationalFaultList = nil
	fd.RetiredChipIDList = nil
	fd.RetiredPinIDList = nil
	fd.CurrentPossibleFaultList = nil
	fd.ActiveFaultList = nil
}

// SetInherentFault installs the domain's long-lived weak-cell model and
// registers its current rate with FaultRateInfo (FaultDomain::
// setInherentFault).
func (fd *FaultDomain) SetInherentFault(f *fault.Fault, ecc ECC) {
	fd.InherentFault = f
	rate := fd.FaultRateInfo.Inherent.Rate(faultrate.ErrorPattern(ecc.InDRAM()))
	fd.FaultRateInfo.AddRate("inherent", rate)
}

// ResetInherentFault retracts the previously registered inherent rate and
// re-registers it (FaultDomain::resetInherentFault — used after
// UpdateInherentFault changes the effective rate).
func (fd *FaultDomain) ResetInherentFault(f *fault.Fault, ecc ECC) {
	fd.FaultRateInfo.RemoveLastRate()
	fd.SetInherentFault(f, ecc)
}

// UpdateInherentFault recomputes the inherent rate from every permanent,
// overlapped operational fault currently on the domain (FaultDomain::
// updateInherentFault): each contributes its kind's overlap probability
// times the down-graded inherent rate.
func (fd *FaultDomain) UpdateInherentFault(ecc ECC) error {
	needUpdate := false
	rate := 0.0
	downPattern := faultrate.ErrorPattern(ecc.InDRAMDown())
	for _, f := range fd.OperationalFaultList {
		if f.IsTransient || !f.Overlapped {
			continue
		}
		needUpdate = true
		overlap, err := fd.FaultRateInfo.OverlapProb(overlapKindName[f.Kind], fd.FaultRateInfo.Inherent.PWordWC())
		if err != nil {
			return err
		}
		rate += fd.FaultRateInfo.Inherent.Rate(downPattern) * overlap
	}
	if needUpdate {
		fd.FaultRateInfo.RemoveLastRate()
		fd.FaultRateInfo.AddRate("inherent", rate)
	}
	return nil
}

// Scrub drops every transient fault from the active and operational lists
// (FaultDomain::scrub, spec 5's scrubber contract).
func (fd *FaultDomain) Scrub() {
	fd.ActiveFaultList = filterFaults(fd.ActiveFaultList, func(f *fault.Fault) bool { return !f.IsTransient })
	fd.OperationalFaultList = filterFaults(fd.OperationalFaultList, func(f *fault.Fault) bool { return !f.IsTransient })
}

func filterFaults(list []*fault.Fault, keep func(*fault.Fault) bool) []*fault.Fault {
	out := list[:0]
	for _, f := range list {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// RetirePin removes every single-DQ operational fault on pinID and records
// the pin as retired (FaultDomain::retirePin).
func (fd *FaultDomain) RetirePin(pinID int) {
	fd.OperationalFaultList = filterFaults(fd.OperationalFaultList, func(f *fault.Fault) bool {
		return !(f.NumDQ == 1 && pinPos(f) == pinID)
	})
	fd.RetiredPinIDList = append(fd.RetiredPinIDList, pinID)
}

// RetireChip removes every operational fault on chipID and records the chip
// as retired (FaultDomain::retireChip). Spec invariant 9: afterwards no
// operational fault has ChipPos == chipID.
func (fd *FaultDomain) RetireChip(chipID int) {
	fd.OperationalFaultList = filterFaults(fd.OperationalFaultList, func(f *fault.Fault) bool {
		return f.ChipPos != chipID
	})
	fd.RetiredChipIDList = append(fd.RetiredChipIDList, chipID)
}

func pinPos(f *fault.Fault) int {
	if len(f.PinPos) == 0 {
		return -1
	}
	return f.PinPos[0]
}

// PermFaults reports whether any operational fault is permanent
// (FaultDomain::permFaults).
func (fd *FaultDomain) PermFaults() bool {
	for _, f := range fd.OperationalFaultList {
		if !f.IsTransient {
			return true
		}
	}
	return false
}

// OverlapTest reports whether any operational fault is currently flagged
// overlapped (FaultDomain::overlapTest).
func (fd *FaultDomain) OverlapTest() bool {
	for _, f := range fd.OperationalFaultList {
		if f.Overlapped {
			return true
		}
	}
	return false
}

// SetSingleChipFault seeds the domain with a single chip-kill fault
// (FaultDomain::setSingleChipFault — used by scenario setup, spec 4.F).
func (fd *FaultDomain) SetSingleChipFault(rng *rand.Rand) error {
	f, err := fault.GenRandomFault(rng, fd, "c")
	if err != nil {
		return err
	}
	fd.OperationalFaultList = append(fd.OperationalFaultList, f)
	return nil
}

// GetBadCount reports whether the domain's retired-block budget has been
// exceeded (FaultDomain::getBadCount).
func (fd *FaultDomain) GetBadCount(ecc ECC) bool {
	return fd.RetiredBlkCount > ecc.MaxRetiredBlkCount()
}
