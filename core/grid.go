package core

import (
	"github.com/Comcast/hexi/hex"
	"github.com/Comcast/hexi/match"
)

// Grid is a finite hex grid of cells.  Coordinates holding the empty
// state are not stored, so the map length is the active count.
//
// A Grid satisfies match.Grid.
type Grid struct {
	Radius int
	cells  map[hex.Coord]match.Cell
}

// NewGrid creates an empty grid of the given radius.
func NewGrid(radius int) *Grid {
	return &Grid{
		Radius: radius,
		cells:  make(map[hex.Coord]match.Cell, 32),
	}
}

// Cell returns the cell at c.  Out-of-bounds and unset coordinates
// are empty.
func (g *Grid) Cell(c hex.Coord) match.Cell {
	if cell, have := g.cells[c]; have {
		return cell
	}
	return match.EmptyCell
}

// Set stores a cell value.  Setting the empty state removes the
// entry.  An empty cell must not carry a direction, and directions
// must be 1..6 or absent.
func (g *Grid) Set(c hex.Coord, cell match.Cell) error {
	if !hex.InBounds(c, g.Radius) {
		return &BoundsError{Coord: c, Radius: g.Radius}
	}
	if cell.IsEmpty() {
		if cell.Dir != 0 {
			return &BadCellError{Coord: c, Msg: "empty cell with a direction"}
		}
		delete(g.cells, c)
		return nil
	}
	if cell.Dir != 0 && !hex.ValidDir(cell.Dir) {
		return &BadCellError{Coord: c, Msg: "direction out of 1..6"}
	}
	g.cells[c] = cell
	return nil
}

// Toggle flips a cell between empty and the default active state "a"
// with direction 1.
func (g *Grid) Toggle(c hex.Coord) error {
	if g.Cell(c).IsEmpty() {
		return g.Set(c, match.Cell{State: "a", Dir: 1})
	}
	return g.Set(c, match.EmptyCell)
}

// Clear empties every cell.
func (g *Grid) Clear() {
	g.cells = make(map[hex.Coord]match.Cell, 32)
}

// Active returns the number of non-empty cells.
func (g *Grid) Active() int {
	return len(g.cells)
}

// ActiveCoords returns the coordinates of the non-empty cells in
// (q,r) order.
func (g *Grid) ActiveCoords() []hex.Coord {
	cs := make([]hex.Coord, 0, len(g.cells))
	for c := range g.cells {
		cs = append(cs, c)
	}
	hex.Sort(cs)
	return cs
}

// Coords returns every in-bounds coordinate in (q,r) order.
func (g *Grid) Coords() []hex.Coord {
	return hex.Within(g.Radius)
}

// Copy makes a deep copy of the grid.
func (g *Grid) Copy() *Grid {
	cells := make(map[hex.Coord]match.Cell, len(g.cells))
	for c, cell := range g.cells {
		cells[c] = cell
	}
	return &Grid{
		Radius: g.Radius,
		cells:  cells,
	}
}

// Equal reports whether two grids have the same radius and cells.
func (g *Grid) Equal(h *Grid) bool {
	if g.Radius != h.Radius || len(g.cells) != len(h.cells) {
		return false
	}
	for c, cell := range g.cells {
		if h.cells[c] != cell {
			return false
		}
	}
	return true
}
