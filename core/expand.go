package core

import (
	"strconv"

	"github.com/Comcast/hexi/match"
)

// ExpansionLimit bounds the number of variants considered for a
// single abstract rule.  Alternatives, '%' sources, and unpositioned
// conditions multiply, so a pathological rule could otherwise run
// away.
var ExpansionLimit = 100000

// Expand rewrites abstract rules into concrete rules.
//
// Each concrete rule carries the group id of the abstract rule it
// came from.  Duplicate variants within a group are discarded; they
// would match the same cells and write the same result, and keeping
// them would only skew the in-group choice.
func Expand(rules []*Rule) ([]*match.Rule, error) {
	var (
		acc  = make([]*match.Rule, 0, len(rules))
		seen = make(map[string]bool, len(rules))
	)
	for _, r := range rules {
		variants, err := expandRule(r)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			key := strconv.Itoa(v.Group) + "|" + v.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			acc = append(acc, v)
		}
	}
	return acc, nil
}

func expandRule(r *Rule) ([]*match.Rule, error) {
	if r.Target.Form == FormTransfer && !hasPointing(r) {
		return nil, &ExpandError{
			Rule: r.Text,
			Msg:  "target transfer needs a pointing condition",
		}
	}

	var srcDirs []int
	switch {
	case r.Source.AnyDir:
		srcDirs = []int{1, 2, 3, 4, 5, 6}
	case r.Source.Dir != 0:
		srcDirs = []int{r.Source.Dir}
	default:
		srcDirs = []int{0}
	}

	// [G]N first: N copies of [G].
	var altSets [][]Alt
	for _, g := range r.Source.Groups {
		repeat := g.Repeat
		if repeat < 1 {
			repeat = 1
		}
		for i := 0; i < repeat; i++ {
			altSets = append(altSets, g.Alts)
		}
	}

	var (
		variants []*match.Rule
		budget   = ExpansionLimit
		choice   = make([]int, len(altSets))
		chosen   = make([]Alt, len(altSets))
	)
	for {
		for i, ci := range choice {
			chosen[i] = altSets[i][ci]
		}

		condSets, err := placeConds(r, chosen, &budget)
		if err != nil {
			return nil, err
		}
		for _, conds := range condSets {
			for _, d := range srcDirs {
				target, ok := resolveTarget(r, d, conds)
				if !ok {
					continue
				}
				variants = append(variants, &match.Rule{
					SrcState: r.Source.State,
					SrcDir:   d,
					Conds:    conds,
					Target:   target,
					Group:    r.Group,
				})
			}
		}

		// Next combination of alternatives.
		i := len(choice) - 1
		for ; 0 <= i; i-- {
			choice[i]++
			if choice[i] < len(altSets[i]) {
				break
			}
			choice[i] = 0
		}
		if i < 0 {
			return variants, nil
		}
	}
}

func hasPointing(r *Rule) bool {
	for _, g := range r.Source.Groups {
		for _, a := range g.Alts {
			if !a.Negated && a.Orient == OrientDot {
				return true
			}
		}
	}
	return false
}

// placeConds assigns every chosen alternative to explicit positions
// and returns one condition list per legal placement.
//
// Positioned conditions keep their positions.  An unpositioned
// negated condition constrains all six neighbors.  Unpositioned
// positive conditions are assigned injectively to the remaining free
// positions: each consumes its own neighbor slot, so "[a][a]" demands
// two distinct 'a' neighbors.  Placements that collide are dropped.
func placeConds(r *Rule, chosen []Alt, budget *int) ([][]match.Cond, error) {
	var (
		fixed    []match.Cond
		taken    [7]bool // positions holding a positive condition
		floating []Alt
	)
	for _, a := range chosen {
		switch {
		case a.Pos != 0 && !a.Negated:
			c := condOf(a, a.Pos)
			if taken[a.Pos] {
				// Compatible duplicates merge; anything else can
				// never hold, so the whole combination is dropped.
				if !hasCond(fixed, c) {
					return nil, nil
				}
				continue
			}
			taken[a.Pos] = true
			fixed = append(fixed, c)
		case a.Pos != 0:
			fixed = append(fixed, condOf(a, a.Pos))
		case a.Negated:
			// No neighbor anywhere may match.
			for p := 1; p <= 6; p++ {
				fixed = append(fixed, condOf(a, p))
			}
		default:
			floating = append(floating, a)
		}
	}

	var (
		sets   [][]match.Cond
		assign = make([]int, len(floating))
		used   = taken
	)
	var place func(i int) error
	place = func(i int) error {
		if i == len(floating) {
			(*budget)--
			if *budget < 0 {
				return &ExpandError{Rule: r.Text, Msg: "too many variants"}
			}
			conds := make([]match.Cond, 0, len(fixed)+len(floating))
			conds = append(conds, fixed...)
			for j, a := range floating {
				conds = append(conds, condOf(a, assign[j]))
			}
			sets = append(sets, conds)
			return nil
		}
		for p := 1; p <= 6; p++ {
			if used[p] {
				continue
			}
			used[p] = true
			assign[i] = p
			if err := place(i + 1); err != nil {
				return err
			}
			used[p] = false
		}
		return nil
	}
	if err := place(0); err != nil {
		return nil, err
	}
	return sets, nil
}

func condOf(a Alt, pos int) match.Cond {
	c := match.Cond{
		Pos:     pos,
		State:   a.State,
		Negated: a.Negated,
	}
	switch a.Orient {
	case OrientDir:
		c.Orient = match.Dir
		c.Dir = a.Dir
	case OrientDot:
		c.Orient = match.PointingToCenter
	case OrientAny:
		c.Orient = match.AnyDirection
	}
	return c
}

func hasCond(conds []match.Cond, c match.Cond) bool {
	for _, have := range conds {
		if have == c {
			return true
		}
	}
	return false
}

// resolveTarget fixes the target descriptor for one variant.  The
// second result is false when the variant cannot carry the target
// (a transfer with no pointing condition in this combination).
func resolveTarget(r *Rule, srcDir int, conds []match.Cond) (match.Target, bool) {
	t := match.Target{State: r.Target.State}
	switch r.Target.Form {
	case FormPlain:
		t.Kind = match.None
	case FormDir:
		t.Kind = match.Fixed
		t.Dir = r.Target.Dir
	case FormPercent:
		if srcDir == 0 {
			t.Kind = match.RandomAny
		} else {
			t.Kind = match.Rotate
			t.Rot = r.Target.Rot
		}
	case FormTransfer:
		slot := 0
		for _, c := range conds {
			if !c.Negated && c.Orient == match.PointingToCenter {
				if slot == 0 || c.Pos < slot {
					slot = c.Pos
				}
			}
		}
		if slot == 0 {
			return t, false
		}
		t.Kind = match.Transfer
		t.Rot = r.Target.Rot
		t.Slot = slot
	}

	// The empty state never carries a direction.
	if t.State == match.Empty {
		return match.Target{State: match.Empty, Kind: match.None}, true
	}
	return t, true
}
