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
	"github.com/Comcast/hexi/core"
	"github.com/Comcast/hexi/hex"
	"github.com/Comcast/hexi/match"
)

// DefaultHistoryLimit bounds the history ring.  When the limit is
// reached the oldest entry is dropped; indexes stay absolute.
var DefaultHistoryLimit = 512

// StepSnapshot is one history entry: the grid after a step (entry 0:
// the grid at creation or load), with the step's log.  When the next
// step starts from this entry, its cells are replaced by the pre-step
// grid, so edits made in between are kept.  Only active cells are
// stored.
type StepSnapshot struct {
	Index       int         `json:"index"`
	ActiveCount int         `json:"active_count"`
	Logs        []string    `json:"logs"`
	Cells       []CellEntry `json:"cells"`
}

// HistoryItem is the listing form of a history entry.
type HistoryItem struct {
	Index       int `json:"index"`
	ActiveCount int `json:"active_count"`
}

// history is a bounded ring of StepSnapshots with a cursor.
//
// Entries hold contiguous ascending indexes.  Stepping with the
// cursor rewound truncates the abandoned forward entries; prev, next,
// and go only move the cursor.
type history struct {
	entries []*StepSnapshot
	cursor  int // absolute index of the current entry
	limit   int
}

func newHistory() *history {
	return &history{
		cursor: -1,
		limit:  DefaultHistoryLimit,
	}
}

func (h *history) first() int {
	if len(h.entries) == 0 {
		return 0
	}
	return h.entries[0].Index
}

func (h *history) last() int {
	return h.first() + len(h.entries) - 1
}

func (h *history) at(index int) *StepSnapshot {
	if len(h.entries) == 0 || index < h.first() || h.last() < index {
		return nil
	}
	return h.entries[index-h.first()]
}

// add snapshots the grid as the entry after the cursor, discarding
// any forward entries first.
func (h *history) add(g *core.Grid, logs []string) *StepSnapshot {
	if 0 <= h.cursor && h.cursor < h.last() {
		h.entries = h.entries[:h.cursor-h.first()+1]
	}

	index := 0
	if 0 < len(h.entries) {
		index = h.last() + 1
	}
	snap := &StepSnapshot{
		Index:       index,
		ActiveCount: g.Active(),
		Logs:        logs,
		Cells:       cellEntries(g),
	}
	h.entries = append(h.entries, snap)
	if h.limit < len(h.entries) {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = index
	return snap
}

// History lists the entries, oldest first.
func (w *World) History() []HistoryItem {
	items := make([]HistoryItem, 0, len(w.history.entries))
	for _, s := range w.history.entries {
		items = append(items, HistoryItem{Index: s.Index, ActiveCount: s.ActiveCount})
	}
	return items
}

// HistoryIndex returns the index of the entry the cursor is on.
func (w *World) HistoryIndex() int {
	return w.history.cursor
}

// HistoryLogs returns the log of the entry at index, or nil.
func (w *World) HistoryLogs(index int) []string {
	if s := w.history.at(index); s != nil {
		return s.Logs
	}
	return nil
}

// HistoryCells returns the cells of the entry at index, or nil.
func (w *World) HistoryCells(index int) []CellEntry {
	if s := w.history.at(index); s != nil {
		return s.Cells
	}
	return nil
}

// Go moves the cursor to index and restores that grid.  No entries
// are lost.
func (w *World) Go(index int) error {
	s := w.history.at(index)
	if s == nil {
		return &NotFoundError{What: "history entry"}
	}
	g := core.NewGrid(w.Radius)
	for _, e := range s.Cells {
		cell := match.Cell{State: e.State}
		if e.Direction != nil {
			cell.Dir = *e.Direction
		}
		if err := g.Set(hex.Coord{Q: e.Q, R: e.R}, cell); err != nil {
			return err
		}
	}
	w.grid = g
	w.history.cursor = index
	return nil
}

// Prev moves the cursor one entry back.
func (w *World) Prev() error {
	return w.Go(w.history.cursor - 1)
}

// Next moves the cursor one entry forward.
func (w *World) Next() error {
	return w.Go(w.history.cursor + 1)
}
