package core

import (
	"testing"

	"github.com/Comcast/hexi/hex"
	"github.com/Comcast/hexi/match"
)

func TestGridSetGet(t *testing.T) {
	g := NewGrid(2)

	if err := g.Set(hex.Coord{Q: 1, R: 1}, match.Cell{State: "a", Dir: 3}); err != nil {
		t.Fatal(err)
	}
	if got := g.Cell(hex.Coord{Q: 1, R: 1}); got != (match.Cell{State: "a", Dir: 3}) {
		t.Errorf("got %s", got)
	}
	if g.Active() != 1 {
		t.Errorf("active %d", g.Active())
	}

	// Setting empty removes the entry.
	if err := g.Set(hex.Coord{Q: 1, R: 1}, match.EmptyCell); err != nil {
		t.Fatal(err)
	}
	if g.Active() != 0 {
		t.Errorf("active %d after clearing the cell", g.Active())
	}
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(2)

	err := g.Set(hex.Coord{Q: 3, R: 0}, match.Cell{State: "a"})
	if _, is := err.(*BoundsError); !is {
		t.Errorf("error %T, wanted *BoundsError", err)
	}

	// Reads off the edge are empty.
	if got := g.Cell(hex.Coord{Q: 9, R: 9}); got != match.EmptyCell {
		t.Errorf("got %s", got)
	}
}

func TestGridRejectsBadCells(t *testing.T) {
	g := NewGrid(2)

	if err := g.Set(hex.Coord{}, match.Cell{State: "_", Dir: 2}); err == nil {
		t.Error("an empty cell must not carry a direction")
	}
	if err := g.Set(hex.Coord{}, match.Cell{State: "a", Dir: 7}); err == nil {
		t.Error("direction 7 should be rejected")
	}
}

func TestGridToggle(t *testing.T) {
	g := NewGrid(1)
	c := hex.Coord{Q: 0, R: 1}

	if err := g.Toggle(c); err != nil {
		t.Fatal(err)
	}
	if got := g.Cell(c); got != (match.Cell{State: "a", Dir: 1}) {
		t.Errorf("got %s", got)
	}
	if err := g.Toggle(c); err != nil {
		t.Fatal(err)
	}
	if !g.Cell(c).IsEmpty() {
		t.Error("second toggle should clear")
	}
}

func TestGridCopy(t *testing.T) {
	g := NewGrid(2)
	if err := g.Set(hex.Coord{}, match.Cell{State: "a", Dir: 1}); err != nil {
		t.Fatal(err)
	}

	h := g.Copy()
	if !h.Equal(g) {
		t.Fatal("copy differs")
	}
	if err := h.Set(hex.Coord{}, match.Cell{State: "b"}); err != nil {
		t.Fatal(err)
	}
	if g.Cell(hex.Coord{}).State != "a" {
		t.Error("copy shares storage with the original")
	}
}

func TestGridRadiusOne(t *testing.T) {
	g := NewGrid(1)
	if len(g.Coords()) != 7 {
		t.Errorf("radius-1 grid has %d cells", len(g.Coords()))
	}
}
