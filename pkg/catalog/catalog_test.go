package catalog

import (
	"testing"

	"github.com/jihwankim/eccsim/pkg/faultrate"
)

func TestLoadParsesAllEntries(t *testing.T) {
	c, err := Load("testdata/systems.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Systems) != 3 {
		t.Fatalf("len(Systems) = %d, want 3", len(c.Systems))
	}
}

func TestLookupFindsByID(t *testing.T) {
	c, err := Load("testdata/systems.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s, err := c.Lookup(100)
	if err != nil {
		t.Fatalf("Lookup(100) error = %v", err)
	}
	if s.Name != "onchip-amd72b" {
		t.Fatalf("Lookup(100).Name = %q, want onchip-amd72b", s.Name)
	}
}

func TestLookupUnknownIDErrors(t *testing.T) {
	c, err := Load("testdata/systems.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := c.Lookup(9999); err == nil {
		t.Fatalf("Lookup(9999) error = nil, want an error")
	}
}

func TestBuildConstructsGroupAndECCForEveryEntry(t *testing.T) {
	c, err := Load("testdata/systems.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, s := range c.Systems {
		dg, e, err := s.Build(faultrate.DefaultMultipliers())
		if err != nil {
			t.Fatalf("Build() for system %d (%s) error = %v", s.ID, s.Name, err)
		}
		if dg == nil || len(dg.Domains) != s.Geometry.DomainCount {
			t.Fatalf("Build() for system %d: domain count = %d, want %d", s.ID, len(dg.Domains), s.Geometry.DomainCount)
		}
		if e == nil {
			t.Fatalf("Build() for system %d: ECC scheme = nil", s.ID)
		}
	}
}

func TestECCSpecBuildUnknownSchemeErrors(t *testing.T) {
	spec := ECCSpec{Scheme: "does-not-exist"}
	if _, err := spec.build(); err == nil {
		t.Fatalf("build() for unknown scheme = nil error, want an error")
	}
}
