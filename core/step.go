package core

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/Comcast/hexi/hex"
	"github.com/Comcast/hexi/match"
)

// Applied records what happened to one cell during a step.
type Applied struct {
	Coord hex.Coord `json:"coord"`

	// Matched are the concrete rules that applied to the cell.
	Matched []*match.Rule `json:"-"`

	// Groups is the number of macro groups among Matched.
	Groups int `json:"groups"`

	// Rule is the chosen rule.
	Rule *match.Rule `json:"rule"`

	Was match.Cell `json:"was"`
	Now match.Cell `json:"now"`
}

// Stepped is the result of advancing a grid by one generation.
type Stepped struct {
	// Next is the new generation.  The input grid is not touched.
	Next *Grid

	// Applied has an entry for every cell some rule matched, in
	// (q,r) order.
	Applied []*Applied

	// Log is the textual step log.
	Log []string

	// Errors holds per-cell evaluation errors.  Such cells keep
	// their previous value.
	Errors []error
}

// Step computes the next generation of g under the given concrete
// rules.
//
// Phase one collects, for every in-bounds coordinate, the subset of
// rules that match.  Phase two picks one rule per cell: first a macro
// group uniformly at random among the matched groups, then a rule
// uniformly within that group.  Cells with no matching rule keep
// their value exactly.  All randomness comes from rng, so a fixed
// seed fixes the step.
func Step(g *Grid, rules []*match.Rule, rng *rand.Rand) *Stepped {
	stepped := &Stepped{
		Next: NewGrid(g.Radius),
	}

	for _, c := range g.Coords() {
		cell := g.Cell(c)

		applied, err := stepCell(g, c, cell, rules, rng)
		if err != nil {
			stepped.Errors = append(stepped.Errors, err)
			stepped.Log = append(stepped.Log, fmt.Sprintf("error: %s", err))
			applied = nil
		}

		now := cell
		if applied != nil {
			now = applied.Now
			stepped.Applied = append(stepped.Applied, applied)
			stepped.Log = append(stepped.Log, fmt.Sprintf(
				"(%d,%d) %s -> %s via %s (%d matched in %d groups)",
				c.Q, c.R, cell, now, applied.Rule,
				len(applied.Matched), applied.Groups))
		}

		if !now.IsEmpty() {
			if err := stepped.Next.Set(c, now); err != nil {
				// Can't happen: c is in bounds and now is well formed.
				stepped.Errors = append(stepped.Errors, err)
			}
		}
	}

	return stepped
}

// stepCell evaluates all rules for one cell.  A nil *Applied means no
// rule matched.  A panic during evaluation surfaces as a
// *RuleEvalError and the cell keeps its value.
func stepCell(g *Grid, c hex.Coord, cell match.Cell, rules []*match.Rule, rng *rand.Rand) (applied *Applied, err error) {
	defer func() {
		if r := recover(); r != nil {
			applied, err = nil, &RuleEvalError{Coord: c, Cause: r}
		}
	}()

	var matched []*match.Rule
	for _, r := range rules {
		if match.Applies(r, cell, c, g) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	// Partition by macro group; the group keys are sorted so that
	// rng consumption is reproducible.
	byGroup := make(map[int][]*match.Rule, len(matched))
	for _, r := range matched {
		byGroup[r.Group] = append(byGroup[r.Group], r)
	}
	groups := make([]int, 0, len(byGroup))
	for gid := range byGroup {
		groups = append(groups, gid)
	}
	sort.Ints(groups)

	siblings := byGroup[groups[rng.Intn(len(groups))]]
	chosen := siblings[rng.Intn(len(siblings))]

	return &Applied{
		Coord:   c,
		Matched: matched,
		Groups:  len(groups),
		Rule:    chosen,
		Was:     cell,
		Now:     applyTarget(chosen, cell, c, g, rng),
	}, nil
}

// applyTarget resolves the chosen rule's target into a cell value.
func applyTarget(r *match.Rule, cell match.Cell, c hex.Coord, g *Grid, rng *rand.Rand) match.Cell {
	now := match.Cell{State: r.Target.State}
	switch r.Target.Kind {
	case match.Fixed:
		now.Dir = r.Target.Dir
	case match.Rotate:
		now.Dir = hex.Rotate(cell.Dir, r.Target.Rot)
	case match.RandomAny:
		now.Dir = 1 + rng.Intn(6)
	case match.Transfer:
		in := g.Cell(hex.Neighbor(c, r.Target.Slot)).Dir
		if in != 0 {
			now.Dir = hex.Rotate(in, r.Target.Rot)
		}
	}
	if now.IsEmpty() {
		now.Dir = 0
	}
	return now
}
