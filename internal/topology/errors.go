package topology

import (
	"errors"
	"fmt"

	"github.com/nuclab/mcell/internal/geom"
)

// Domain errors for topology construction and point location.
var (
	// ErrInvalidTopology indicates a freeze-time invariant violation.
	// Every construction failure wraps it.
	ErrInvalidTopology = errors.New("topology: invalid topology")

	// ErrDanglingReference indicates a region references a surface that
	// was never registered with the topology.
	ErrDanglingReference = errors.New("topology: dangling surface reference")

	// ErrUniverseCycle indicates a universe (transitively) contains
	// itself through cell fills.
	ErrUniverseCycle = errors.New("topology: universe fill cycle")

	// ErrOverlappingCells indicates two cells of one universe claimed
	// the same sampled point.
	ErrOverlappingCells = errors.New("topology: overlapping cells")

	// ErrDuplicateID indicates an entity ID was registered twice.
	ErrDuplicateID = errors.New("topology: duplicate id")

	// ErrFrozen indicates a construction call after Freeze.
	ErrFrozen = errors.New("topology: topology is frozen")

	// ErrNotFrozen indicates a lookup or location call before Freeze.
	ErrNotFrozen = errors.New("topology: topology not frozen")

	// ErrNoCellFound indicates a point not claimed by any cell
	// (geometry leak).
	ErrNoCellFound = errors.New("topology: no cell found")

	// ErrAmbiguousCell indicates a point claimed by more than one cell
	// of the same universe.
	ErrAmbiguousCell = errors.New("topology: ambiguous cell")

	// ErrNotFound indicates an unknown entity ID in a registry lookup.
	ErrNotFound = errors.New("topology: not found")
)

// LocateError carries the point and universe for a failed location.
type LocateError struct {
	Point    geom.Point
	Universe int
	Wrapped  error
}

func (e *LocateError) Error() string {
	return fmt.Sprintf("%v at (%g, %g, %g) in universe %d",
		e.Wrapped, e.Point.X, e.Point.Y, e.Point.Z, e.Universe)
}

func (e *LocateError) Unwrap() error {
	return e.Wrapped
}
