package core

// The abstract rule representation: what the parser emits and the
// expander consumes.  See the package doc for the notation.

import (
	"strconv"
	"strings"
)

// AltOrient is the orientation marker on a condition alternative.
type AltOrient int

const (
	// OrientNone accepts any direction, including none.
	OrientNone AltOrient = iota

	// OrientDir requires the literal direction in Alt.Dir.
	OrientDir

	// OrientDot requires the neighbor to point at the center.
	OrientDot

	// OrientAny ('%') requires the neighbor to have some direction.
	OrientAny
)

// Alt is one alternative inside a bracket group.
type Alt struct {
	// Negated means the neighbor must NOT hold the state.
	Negated bool

	// Pos is the explicit neighbor position 1..6, or 0 when the
	// alternative may match any neighbor.
	Pos int

	// State is the neighbor state token.
	State string

	Orient AltOrient

	// Dir is the literal direction for OrientDir.
	Dir int
}

// Group is one bracket group: a non-empty list of alternatives,
// possibly repeated.
type Group struct {
	Alts []Alt

	// Repeat is the [..]N suffix; 1 when absent.
	Repeat int
}

// Source is the left side of a rule.
type Source struct {
	State string

	// Dir is a literal source direction, 0 if none.
	Dir int

	// AnyDir is the '%' marker: the rule fans out over all six
	// source directions.
	AnyDir bool

	Groups []Group
}

// TargetForm discriminates the right side of a rule.
type TargetForm int

const (
	// FormPlain writes the state with no direction.
	FormPlain TargetForm = iota

	// FormDir writes the state with the literal direction Target.Dir.
	FormDir

	// FormPercent ('%' or '%N') rotates the source direction by
	// Target.Rot, or picks a random direction when the source has
	// none.
	FormPercent

	// FormTransfer ('.K') takes the direction of the pointing
	// neighbor that matched, rotated by Target.Rot.
	FormTransfer
)

// Target is the right side of a rule.
type Target struct {
	State string
	Form  TargetForm

	// Dir is the literal direction for FormDir.
	Dir int

	// Rot is the clockwise rotation for FormPercent and
	// FormTransfer.
	Rot int
}

// Rule is one abstract rule: source => target.
//
// Rules produced from the same authored line by top-level '|' share a
// Group id, as do the concrete variants expanded from them.
type Rule struct {
	Source Source
	Target Target

	// Group is the 0-based id of the authored rule.
	Group int

	// Text is the source text this rule was parsed from.
	Text string
}

func (a Alt) String() string {
	var b strings.Builder
	if a.Negated {
		b.WriteByte('-')
	}
	if a.Pos != 0 {
		b.WriteString(strconv.Itoa(a.Pos))
	}
	b.WriteString(a.State)
	switch a.Orient {
	case OrientDir:
		b.WriteString(strconv.Itoa(a.Dir))
	case OrientDot:
		b.WriteByte('.')
	case OrientAny:
		b.WriteByte('%')
	}
	return b.String()
}

func (g Group) String() string {
	alts := make([]string, len(g.Alts))
	for i, a := range g.Alts {
		alts[i] = a.String()
	}
	one := "[" + strings.Join(alts, "|") + "]"
	repeat := g.Repeat
	if repeat < 1 {
		repeat = 1
	}
	return strings.Repeat(one, repeat)
}

func (s Source) String() string {
	var b strings.Builder
	b.WriteString(s.State)
	if s.AnyDir {
		b.WriteByte('%')
	} else if s.Dir != 0 {
		b.WriteString(strconv.Itoa(s.Dir))
	}
	for _, g := range s.Groups {
		b.WriteString(g.String())
	}
	return b.String()
}

func (t Target) String() string {
	switch t.Form {
	case FormDir:
		return t.State + strconv.Itoa(t.Dir)
	case FormPercent:
		return t.State + "%" + strconv.Itoa(t.Rot)
	case FormTransfer:
		return t.State + "." + strconv.Itoa(t.Rot)
	}
	return t.State
}

// String renders the rule in canonical form.  Reparsing the result
// yields the same concrete rule set.
func (r *Rule) String() string {
	return r.Source.String() + " => " + r.Target.String()
}

// Format renders a parsed rule list as canonical source text.
// Sibling rules that share a group are rejoined with a top-level '|'
// so that reparsing preserves group identities.
func Format(rules []*Rule) string {
	var (
		lines []string
		i     = 0
	)
	for i < len(rules) {
		j := i + 1
		for j < len(rules) && rules[j].Group == rules[i].Group {
			j++
		}
		srcs := make([]string, 0, j-i)
		for _, r := range rules[i:j] {
			srcs = append(srcs, r.Source.String())
		}
		lines = append(lines, strings.Join(srcs, " | ")+" => "+rules[i].Target.String())
		i = j
	}
	return strings.Join(lines, "\n")
}
