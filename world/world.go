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

// Package world provides the façade over the rule engine: a grid, a
// compiled rule set, a history ring, a step log, and a deterministic
// RNG, with the operations an embedding needs.
//
// A World is not safe for concurrent use.  An embedding that serves
// several clients must serialize access, which is what the embedded
// mutex is for; no World method suspends mid-way.
package world

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/Comcast/hexi/core"
	"github.com/Comcast/hexi/hex"
	"github.com/Comcast/hexi/match"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// World holds one simulation.
type World struct {
	sync.Mutex

	// Name identifies the world within a session.
	Name string

	// Radius is the grid radius; fixed at creation.
	Radius int

	grid      *core.Grid
	rulesText string
	parsed    []*core.Rule
	rules     []*match.Rule

	seed int64
	rng  *rand.Rand

	history *history

	// log holds the lines of the most recent step.
	log []string
}

// New creates a world.  The rules text may be empty.  The RNG is
// seeded with seed so that behavior can be pinned.
func New(name string, radius int, rulesText string, seed int64) (*World, error) {
	if radius < 1 {
		return nil, fmt.Errorf("radius %d out of range", radius)
	}
	w := &World{
		Name:    name,
		Radius:  radius,
		grid:    core.NewGrid(radius),
		seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
		history: newHistory(),
	}
	if err := w.SetRules(rulesText); err != nil {
		return nil, err
	}
	w.history.add(w.grid, []string{"Initial state created"})
	return w, nil
}

// Seed returns the seed the RNG was last seeded with.
func (w *World) Seed() int64 {
	return w.seed
}

// Reseed resets the RNG.
func (w *World) Reseed(seed int64) {
	w.seed = seed
	w.rng = rand.New(rand.NewSource(seed))
}

// Rename changes the world's name.
func (w *World) Rename(name string) {
	w.Name = name
}

// RulesText returns the last accepted rule source.
func (w *World) RulesText() string {
	return w.rulesText
}

// Rules returns the compiled concrete rules.  Read-only.
func (w *World) Rules() []*match.Rule {
	return w.rules
}

// SetRules reparses and reexpands the rule text.  On failure the
// previous rule set is kept and the error is returned.
func (w *World) SetRules(text string) error {
	parsed, err := core.Parse(text)
	if err != nil {
		return err
	}
	rules, err := core.Expand(parsed)
	if err != nil {
		return err
	}
	w.rulesText = text
	w.parsed = parsed
	w.rules = rules
	return nil
}

// Cell returns the cell at (q,r); empty when out of bounds.
func (w *World) Cell(q, r int) match.Cell {
	return w.grid.Cell(hex.Coord{Q: q, R: r})
}

// SetCell writes a cell.
func (w *World) SetCell(q, r int, state string, dir int) error {
	return w.grid.Set(hex.Coord{Q: q, R: r}, match.Cell{State: state, Dir: dir})
}

// Toggle flips a cell between empty and the default active state.
func (w *World) Toggle(q, r int) error {
	return w.grid.Toggle(hex.Coord{Q: q, R: r})
}

// Clear empties the grid.
func (w *World) Clear() {
	w.grid.Clear()
}

// ActiveCount returns the number of non-empty cells.
func (w *World) ActiveCount() int {
	return w.grid.Active()
}

// Grid returns the live grid.  Callers must not mutate it directly;
// use SetCell and friends.
func (w *World) Grid() *core.Grid {
	return w.grid
}

// Log returns the log of the most recent step.
func (w *World) Log() []string {
	return w.log
}

// Randomize writes every in-bounds coordinate independently with
// probability p, picking the state uniformly from states (the empty
// state is ignored) with direction 1.  Coordinates that miss the
// probability are left alone.
func (w *World) Randomize(states []string, p float64) {
	pool := statePool(states)
	for _, c := range w.grid.Coords() {
		if p <= w.rng.Float64() {
			continue
		}
		state := pool[w.rng.Intn(len(pool))]
		w.grid.Set(c, match.Cell{State: state, Dir: 1})
	}
}

// SeedNoise writes cells where normalized opensimplex noise exceeds
// the threshold, which produces clustered rather than independent
// seeding.  The noise value picks the state, so neighboring cells
// tend to share one.  scale stretches the noise field; 0.1..0.5 is a
// reasonable range.
func (w *World) SeedNoise(states []string, threshold, scale float64, seed int64) {
	pool := statePool(states)
	noise := opensimplex.NewNormalized(seed)
	for _, c := range w.grid.Coords() {
		n := noise.Eval2(float64(c.Q)*scale, float64(c.R)*scale)
		if n <= threshold {
			continue
		}
		i := int((n - threshold) / (1 - threshold) * float64(len(pool)))
		if len(pool) <= i {
			i = len(pool) - 1
		}
		w.grid.Set(c, match.Cell{State: pool[i], Dir: 1})
	}
}

func statePool(states []string) []string {
	pool := make([]string, 0, len(states))
	for _, s := range states {
		if s != match.Empty && s != "" {
			pool = append(pool, s)
		}
	}
	if len(pool) == 0 {
		pool = []string{"a"}
	}
	return pool
}

// Step advances the world one generation with the compiled rules and
// returns the step log.  The history entry under the cursor is first
// refreshed with a deep copy of the pre-step grid (so edits made since
// the last step are kept), then a deep copy of the new grid is
// appended.
func (w *World) Step() []string {
	return w.step(w.rules, nil)
}

// StepText advances the world using the given rule text.  A parse
// failure short-circuits the step: no rules run, nothing changes, and
// the failure is logged once.  Otherwise the text replaces the
// world's rules.
func (w *World) StepText(text string) []string {
	if err := w.SetRules(text); err != nil {
		return w.step(nil, err)
	}
	return w.step(w.rules, nil)
}

func (w *World) step(rules []*match.Rule, parseErr error) []string {
	logs := make([]string, 0, 32)
	logs = append(logs, "STEP: starting")

	if parseErr != nil {
		logs = append(logs, fmt.Sprintf("parse error: %s", parseErr))
		rules = nil
	} else {
		logs = append(logs, fmt.Sprintf("%d concrete rules in %d groups",
			len(rules), countGroups(rules)))
	}

	// The entry under the cursor records the grid this step starts
	// from, including any edits made since it was taken.
	if cur := w.history.at(w.history.cursor); cur != nil {
		cur.Cells = cellEntries(w.grid)
		cur.ActiveCount = w.grid.Active()
	}

	before := w.grid.Active()
	beforeSet := activeSet(w.grid)
	logs = append(logs, fmt.Sprintf("active cells before: %d", before))

	stepped := core.Step(w.grid, rules, w.rng)
	logs = append(logs, stepped.Log...)

	w.grid = stepped.Next

	logs = append(logs, fmt.Sprintf("active cells after: %d", w.grid.Active()))
	logs = append(logs, summarize(beforeSet, activeSet(w.grid))...)
	logs = append(logs, "STEP: completed")

	w.log = logs
	w.history.add(w.grid, logs)
	return logs
}

func countGroups(rules []*match.Rule) int {
	seen := make(map[int]bool, len(rules))
	for _, r := range rules {
		seen[r.Group] = true
	}
	return len(seen)
}

func activeSet(g *core.Grid) map[hex.Coord]bool {
	set := make(map[hex.Coord]bool, g.Active())
	for _, c := range g.ActiveCoords() {
		set[c] = true
	}
	return set
}

// summarize reports births and deaths between two generations.
func summarize(before, after map[hex.Coord]bool) []string {
	var births, deaths, survivals []hex.Coord
	for c := range after {
		if before[c] {
			survivals = append(survivals, c)
		} else {
			births = append(births, c)
		}
	}
	for c := range before {
		if !after[c] {
			deaths = append(deaths, c)
		}
	}
	hex.Sort(births)
	hex.Sort(deaths)

	logs := []string{fmt.Sprintf("births=%d survivals=%d deaths=%d",
		len(births), len(survivals), len(deaths))}
	for _, c := range sample(births) {
		logs = append(logs, fmt.Sprintf("  + (%d,%d)", c.Q, c.R))
	}
	for _, c := range sample(deaths) {
		logs = append(logs, fmt.Sprintf("  - (%d,%d)", c.Q, c.R))
	}
	return logs
}

func sample(cs []hex.Coord) []hex.Coord {
	if 10 < len(cs) {
		return cs[:10]
	}
	return cs
}

// States returns the states in use on the grid, sorted.
func (w *World) States() []string {
	seen := make(map[string]bool, 8)
	for _, c := range w.grid.ActiveCoords() {
		seen[w.grid.Cell(c).State] = true
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}
