// Package material defines nuclide compositions for reactor cells.
//
// A [Material] is frozen with the rest of the topology except for its
// density, which is the single scalar that may change between
// simulation batches (live coupling to an external thermal solver).
package material

import (
	"errors"
	"fmt"
	"sync"
)

// Domain errors for material construction and mutation.
var (
	ErrUnknownUnits    = errors.New("material: unknown density units")
	ErrBadFraction     = errors.New("material: component fraction must be positive")
	ErrBadDensity      = errors.New("material: density must be positive")
	ErrEmptyName       = errors.New("material: name must not be empty")
	ErrNoComponents    = errors.New("material: at least one nuclide component required")
	ErrBadEnrichment   = errors.New("material: enrichment must be in [0, 100]")
	ErrUnknownFraction = errors.New("material: unknown fraction type")
)

// Nuclide names an isotope, e.g. "U235", "O16", "H1".
type Nuclide string

// FractionType distinguishes atom fractions from weight fractions.
type FractionType int

const (
	AtomFraction FractionType = iota
	WeightFraction
)

func (f FractionType) String() string {
	if f == AtomFraction {
		return "ao"
	}
	return "wo"
}

// DensityUnits tags the density scalar.
type DensityUnits int

const (
	GramsPerCC DensityUnits = iota
	KgPerM3
	AtomPerBarnCM
	Sum
)

func (u DensityUnits) String() string {
	switch u {
	case GramsPerCC:
		return "g/cm3"
	case KgPerM3:
		return "kg/m3"
	case AtomPerBarnCM:
		return "atom/b-cm"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("units(%d)", int(u))
	}
}

// ParseDensityUnits maps the textual unit tags used in config files.
func ParseDensityUnits(s string) (DensityUnits, error) {
	switch s {
	case "g/cm3", "g/cc":
		return GramsPerCC, nil
	case "kg/m3":
		return KgPerM3, nil
	case "atom/b-cm":
		return AtomPerBarnCM, nil
	case "sum":
		return Sum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnits, s)
	}
}

// Component is one nuclide entry of a material composition.
type Component struct {
	Nuclide    Nuclide
	Fraction   float64
	Type       FractionType
	Enrichment *float64 // percent, nil when natural
}

// Material is a named nuclide composition. Composition is immutable
// after topology freeze; density is the mutable overlay field and is
// guarded here so concurrent readers inside a batch never observe a
// torn value.
type Material struct {
	id         int
	name       string
	components []Component
	sab        []string

	mu      sync.RWMutex
	density float64
	units   DensityUnits
}

func New(id int, name string) *Material {
	return &Material{id: id, name: name, units: GramsPerCC}
}

func (m *Material) ID() int      { return m.id }
func (m *Material) Name() string { return m.name }

// AddNuclide appends a nuclide with the given fraction.
func (m *Material) AddNuclide(n Nuclide, fraction float64, typ FractionType) error {
	return m.addComponent(Component{Nuclide: n, Fraction: fraction, Type: typ})
}

// AddEnrichedNuclide appends a nuclide with an explicit enrichment
// percentage, e.g. 4.95 for low-enriched uranium.
func (m *Material) AddEnrichedNuclide(n Nuclide, fraction float64, typ FractionType, enrichment float64) error {
	if enrichment < 0 || enrichment > 100 {
		return fmt.Errorf("%w: %f", ErrBadEnrichment, enrichment)
	}
	e := enrichment
	return m.addComponent(Component{Nuclide: n, Fraction: fraction, Type: typ, Enrichment: &e})
}

func (m *Material) addComponent(c Component) error {
	if c.Fraction <= 0 {
		return fmt.Errorf("%w: %s=%f", ErrBadFraction, c.Nuclide, c.Fraction)
	}
	m.components = append(m.components, c)
	return nil
}

// AddSAlphaBeta attaches a thermal scattering law reference, e.g.
// "c_H_in_H2O".
func (m *Material) AddSAlphaBeta(name string) {
	m.sab = append(m.sab, name)
}

func (m *Material) Components() []Component {
	out := make([]Component, len(m.components))
	copy(out, m.components)
	return out
}

func (m *Material) SAlphaBeta() []string {
	out := make([]string, len(m.sab))
	copy(out, m.sab)
	return out
}

// SetDensity replaces the density scalar. Lifecycle gating (only
// between batches) is enforced by the simulation driver, not here.
func (m *Material) SetDensity(value float64, units DensityUnits) error {
	if units != Sum && value <= 0 {
		return fmt.Errorf("%w: %f", ErrBadDensity, value)
	}
	switch units {
	case GramsPerCC, KgPerM3, AtomPerBarnCM, Sum:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownUnits, int(units))
	}
	m.mu.Lock()
	m.density = value
	m.units = units
	m.mu.Unlock()
	return nil
}

// Density returns the current density scalar and its units.
func (m *Material) Density() (float64, DensityUnits) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.density, m.units
}

// Validate checks the composition is usable as part of a frozen
// topology.
func (m *Material) Validate() error {
	if m.name == "" {
		return fmt.Errorf("%w (id %d)", ErrEmptyName, m.id)
	}
	if len(m.components) == 0 {
		return fmt.Errorf("%w: %s", ErrNoComponents, m.name)
	}
	d, u := m.Density()
	if u != Sum && d <= 0 {
		return fmt.Errorf("%w: %s has density %f", ErrBadDensity, m.name, d)
	}
	return nil
}
