// Package catalog loads the system-under-test table spec 4.H's scenarios
// run against: a YAML file mapping a system ID (dram_error_sim's
// main.cc "switch (atoi(argv[1]))" argument) to the DomainGroup geometry,
// ECC scheme, and fault-rate module that system exercises. Grounded on the
// teacher's pkg/scenario parser/types split (YAML struct tags, variable
// substitution not needed here since catalog entries carry no templating).
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/eccsim/pkg/block"
	"github.com/jihwankim/eccsim/pkg/codec/crc"
	"github.com/jihwankim/eccsim/pkg/codec/linear"
	"github.com/jihwankim/eccsim/pkg/ecc"
	"github.com/jihwankim/eccsim/pkg/ecc/bamboo"
	"github.com/jihwankim/eccsim/pkg/ecc/chipkill"
	"github.com/jihwankim/eccsim/pkg/ecc/duo"
	"github.com/jihwankim/eccsim/pkg/ecc/onchip"
	"github.com/jihwankim/eccsim/pkg/ecc/xed"
	"github.com/jihwankim/eccsim/pkg/faultdomain"
	"github.com/jihwankim/eccsim/pkg/faultrate"
)

// Catalog is the top-level YAML document: an ordered list of systems.
type Catalog struct {
	Systems []System `yaml:"systems"`
}

// System is one catalog entry, the data-driven replacement for one arm of
// main.cc's systemID switch: everything Build needs to construct that
// system's DomainGroup/ECC pair.
type System struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Geometry Geometry `yaml:"geometry"`
	ECC      ECCSpec  `yaml:"ecc"`

	// Module selects pkg/faultrate's builtin FIT profile (0-3), or 4 to
	// mean "load FITFile instead" (wired by the caller, not here).
	Module   int    `yaml:"module"`
	DramType string `yaml:"dram_type,omitempty"`
}

// Geometry mirrors DomainGroupDDR's constructor tuple: how many
// FaultDomains the group owns and each one's rank/device/pin/beat shape.
type Geometry struct {
	DomainCount    int `yaml:"domain_count"`
	RanksPerDomain int `yaml:"ranks_per_domain"`
	DevicesPerRank int `yaml:"devices_per_rank"`
	PinsPerDevice  int `yaml:"pins_per_device"`
	BlkHeight      int `yaml:"blk_height"`
}

// ECCSpec names a concrete pkg/ecc scheme and the constructor parameters it
// needs; not every field applies to every scheme (e.g. MaxRetiredBlkCount
// is DUO-only), unused fields are simply left at their zero value.
type ECCSpec struct {
	Scheme             string `yaml:"scheme"`
	Correction         int    `yaml:"correction,omitempty"`
	MaxPins            int    `yaml:"max_pins,omitempty"`
	DoPostprocess      bool   `yaml:"do_postprocess,omitempty"`
	DoRetire           bool   `yaml:"do_retire,omitempty"`
	MaxRetiredBlkCount uint64 `yaml:"max_retired_blk_count,omitempty"`
	DoFaultDiagnosis   bool   `yaml:"do_fault_diagnosis,omitempty"`
}

// Load parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	return &c, nil
}

// Lookup finds a system by ID, the catalog's counterpart to main.cc's
// switch dispatch.
func (c *Catalog) Lookup(id int) (*System, error) {
	for i := range c.Systems {
		if c.Systems[i].ID == id {
			return &c.Systems[i], nil
		}
	}
	return nil, fmt.Errorf("catalog: no system with id %d", id)
}

// Build constructs the DomainGroup and ECC scheme this entry names. m
// scales the builtin FIT profile the way main.cc's command-line
// multiplier arguments did.
func (s *System) Build(m faultrate.Multipliers) (*faultdomain.Group, faultdomain.ECC, error) {
	info, err := faultrate.NewFromModule(s.Module, m, false, false)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: system %d: %w", s.ID, err)
	}
	return s.BuildWithInfo(info)
}

// BuildWithInfo is Build's geometry/ECC half, taking an already-constructed
// FaultRateInfo instead of deriving one from s.Module — the path module-id
// 4 (external FIT file) needs, since faultrate.LoadFromFile builds an Info
// the catalog entry itself has no part in.
func (s *System) BuildWithInfo(info *faultrate.Info) (*faultdomain.Group, faultdomain.ECC, error) {
	if s.Geometry.DomainCount <= 0 {
		return nil, nil, fmt.Errorf("catalog: system %d: domain_count must be positive", s.ID)
	}
	domains := make([]*faultdomain.FaultDomain, s.Geometry.DomainCount)
	for i := range domains {
		domains[i] = faultdomain.New(
			s.Geometry.RanksPerDomain, s.Geometry.DevicesPerRank,
			s.Geometry.PinsPerDevice, s.Geometry.BlkHeight,
			block.MSGConfig{}, info,
		)
	}
	dg := faultdomain.NewGroup(domains...)

	scheme, err := s.ECC.build()
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: system %d: %w", s.ID, err)
	}
	return dg, scheme, nil
}

// build dispatches on Scheme to one of pkg/ecc's concrete constructors,
// the table-driven counterpart to main.cc's "ecc = new X(...)" arms.
func (spec *ECCSpec) build() (faultdomain.ECC, error) {
	switch spec.Scheme {
	case "single-hsiao72":
		c, err := linear.NewHsiao("Hsiao(72,64)", 72, 8)
		if err != nil {
			return nil, err
		}
		return ecc.NewSingle(c), nil
	case "single-crc8":
		c, err := crc.New8("CRC8-ATM", 72, true)
		if err != nil {
			return nil, err
		}
		return ecc.NewSingle(c), nil
	case "bamboo-qpc72b":
		e, err := bamboo.NewQPC72b(spec.Correction, spec.MaxPins, spec.DoPostprocess)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "chipkill-amd72b":
		e, err := chipkill.NewAMDChipkill72b(spec.DoPostprocess)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "duo-36bx4":
		e, err := duo.NewDUO36bx4(spec.MaxPins, spec.DoPostprocess, spec.DoRetire, spec.MaxRetiredBlkCount)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "xed-sddc":
		e, err := xed.NewSDDC(spec.Correction, spec.DoFaultDiagnosis)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "onchip-amd72b":
		e, err := onchip.NewAMD72b(spec.DoPostprocess)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown ecc scheme %q", spec.Scheme)
	}
}
