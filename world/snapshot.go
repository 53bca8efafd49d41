/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package world

import (
	"fmt"

	"github.com/Comcast/hexi/core"
	"github.com/Comcast/hexi/hex"
	"github.com/Comcast/hexi/match"
)

// CellEntry is one non-empty cell in the wire format.  Direction is
// null when the cell has none.
type CellEntry struct {
	Q         int    `json:"q"`
	R         int    `json:"r"`
	State     string `json:"state"`
	Direction *int   `json:"direction"`
}

// Snapshot is the stable wire form of a world: exactly the radius,
// the rule source, and the non-empty cells.
type Snapshot struct {
	Radius    int         `json:"radius"`
	RulesText string      `json:"rules_text"`
	Cells     []CellEntry `json:"cells"`
}

// Snapshot captures the world's current state.
func (w *World) Snapshot() *Snapshot {
	return &Snapshot{
		Radius:    w.Radius,
		RulesText: w.rulesText,
		Cells:     cellEntries(w.grid),
	}
}

func cellEntries(g *core.Grid) []CellEntry {
	entries := make([]CellEntry, 0, g.Active())
	for _, c := range g.ActiveCoords() {
		cell := g.Cell(c)
		e := CellEntry{Q: c.Q, R: c.R, State: cell.State}
		if cell.Dir != 0 {
			d := cell.Dir
			e.Direction = &d
		}
		entries = append(entries, e)
	}
	return entries
}

// FromSnapshot builds a world from a snapshot.  Out-of-range cells
// are dropped; a bad radius or rule text is an error.
func FromSnapshot(name string, s *Snapshot, seed int64) (*World, error) {
	if s.Radius < 1 {
		return nil, fmt.Errorf("snapshot radius %d out of range", s.Radius)
	}
	w, err := New(name, s.Radius, s.RulesText, seed)
	if err != nil {
		return nil, err
	}
	if err := w.restore(s.Cells); err != nil {
		return nil, err
	}
	// The initial history entry should reflect the loaded cells.
	w.history = newHistory()
	w.history.add(w.grid, []string{"Loaded world"})
	return w, nil
}

// restore writes the given cells, dropping any outside the grid.
func (w *World) restore(cells []CellEntry) error {
	w.grid.Clear()
	for _, e := range cells {
		c := hex.Coord{Q: e.Q, R: e.R}
		if !hex.InBounds(c, w.Radius) {
			continue
		}
		cell := match.Cell{State: e.State}
		if e.Direction != nil {
			cell.Dir = *e.Direction
		}
		if err := w.grid.Set(c, cell); err != nil {
			return err
		}
	}
	return nil
}
