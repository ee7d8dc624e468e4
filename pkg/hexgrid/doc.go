// Package hexgrid converts between hexagonal cell addresses and planar coordinates.
//
// # Overview
//
// The grid is made of flat-topped regular hexagons addressed by (column, row)
// pairs. Columns alternate vertically: even columns sit half a cell lower than
// odd columns, producing the familiar "brick" offset pattern. The grid is
// infinite; every integer pair addresses exactly one cell.
//
// A [Grid] is immutable once built. Its layout is fully determined by the cell
// radius, the padding between neighboring cells and the origin point:
//
//	g := hexgrid.New(48, 16, hexgrid.Point{X: 0, Y: 160})
//	center := g.CellCenter(hexgrid.Cell{Col: 3, Row: 2})
//
// # Hit Testing
//
// [Grid.PointInCell] splits a hexagon into a left triangle, a central rectangle
// and a right triangle and tests them in that order. Points exactly on a shared
// boundary belong to whichever shape is tested first.
//
// [Grid.CellAtPoint] is the inverse of [Grid.CellCenter]. It guesses a cell by
// flooring the point against the hex spacing, then verifies the guess and two
// neighbors (below, bottom-right). Points in the padding between cells, and a
// narrow sliver near the upper-right neighbor, resolve to no cell. Callers must
// treat a miss as "no action".
//
// # Concurrency
//
// Grid values are read-only after [New] and safe for concurrent use.
package hexgrid
