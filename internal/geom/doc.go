// Package geom provides the constructive solid geometry primitives for
// reactor model construction.
//
// A [Surface] is an implicit scalar function f(x,y,z); its sign splits
// space into two half-spaces. A [Region] is a boolean expression tree
// over half-spaces:
//
//   - [Neg] / [Pos]: half-space leaves referencing a surface
//   - [Intersect]: true iff every child contains the point
//   - [Unite]: true iff any child contains the point
//   - [Not]: negation of a single child
//
// # Example
//
//	fuel := geom.NewZCylinder(1, 0, 0, 0.39, geom.BoundaryNone)
//	top := geom.NewZPlane(2, 100, geom.BoundaryVacuum)
//	bottom := geom.NewZPlane(3, -100, geom.BoundaryVacuum)
//	rod := geom.Intersect(geom.Neg(fuel), geom.Neg(top), geom.Pos(bottom))
//
// # Zero Policy
//
// A point exactly on a surface (Evaluate == 0) always resolves to the
// positive side. This keeps cell ownership of shared boundary surfaces
// deterministic; see [SideOf].
package geom
