package material

import (
	"errors"
	"testing"
)

func newUO2(t *testing.T) *Material {
	t.Helper()
	m := New(1, "uo2")
	if err := m.AddEnrichedNuclide("U235", 1.0, AtomFraction, 4.25); err != nil {
		t.Fatalf("add U235: %v", err)
	}
	if err := m.AddNuclide("O16", 2.0, AtomFraction); err != nil {
		t.Fatalf("add O16: %v", err)
	}
	if err := m.SetDensity(10.29769, GramsPerCC); err != nil {
		t.Fatalf("set density: %v", err)
	}
	return m
}

func TestMaterialComposition(t *testing.T) {
	m := newUO2(t)

	comps := m.Components()
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d", len(comps))
	}
	if comps[0].Nuclide != "U235" || comps[0].Enrichment == nil {
		t.Errorf("unexpected first component: %+v", comps[0])
	}
	if *comps[0].Enrichment != 4.25 {
		t.Errorf("enrichment = %f, want 4.25", *comps[0].Enrichment)
	}
	if comps[1].Enrichment != nil {
		t.Error("O16 should be natural")
	}

	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMaterialDensityMutation(t *testing.T) {
	m := newUO2(t)

	if err := m.SetDensity(9.8, GramsPerCC); err != nil {
		t.Fatalf("SetDensity: %v", err)
	}
	d, u := m.Density()
	if d != 9.8 || u != GramsPerCC {
		t.Errorf("Density() = %f %v, want 9.8 g/cm3", d, u)
	}
}

func TestMaterialValidation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Material
		wantErr error
	}{
		{
			"empty name",
			func() *Material {
				m := New(1, "")
				m.AddNuclide("H1", 2.0, AtomFraction)
				m.SetDensity(1.0, GramsPerCC)
				return m
			},
			ErrEmptyName,
		},
		{
			"no components",
			func() *Material {
				m := New(2, "void")
				m.SetDensity(1.0, GramsPerCC)
				return m
			},
			ErrNoComponents,
		},
		{
			"missing density",
			func() *Material {
				m := New(3, "water")
				m.AddNuclide("H1", 2.0, AtomFraction)
				m.AddNuclide("O16", 1.0, AtomFraction)
				return m
			},
			ErrBadDensity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaterialRejectsBadInput(t *testing.T) {
	m := New(4, "junk")

	if err := m.AddNuclide("U238", -1.0, AtomFraction); !errors.Is(err, ErrBadFraction) {
		t.Errorf("negative fraction: err = %v", err)
	}
	if err := m.AddEnrichedNuclide("U235", 1.0, AtomFraction, 120); !errors.Is(err, ErrBadEnrichment) {
		t.Errorf("bad enrichment: err = %v", err)
	}
	if err := m.SetDensity(-2.0, GramsPerCC); !errors.Is(err, ErrBadDensity) {
		t.Errorf("negative density: err = %v", err)
	}
}

func TestParseDensityUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    DensityUnits
		wantErr bool
	}{
		{"g/cm3", GramsPerCC, false},
		{"g/cc", GramsPerCC, false},
		{"kg/m3", KgPerM3, false},
		{"atom/b-cm", AtomPerBarnCM, false},
		{"sum", Sum, false},
		{"furlongs", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDensityUnits(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownUnits) {
					t.Errorf("err = %v, want ErrUnknownUnits", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseDensityUnits(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}
