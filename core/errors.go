package core

// These errors are user errors, not internal errors.

import (
	"fmt"

	"github.com/Comcast/hexi/hex"
)

// ParseError reports a rule that could not be parsed.  Offset is the
// byte offset of the trouble within the rule text.
type ParseError struct {
	Rule   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(`can't parse %q at %d: %s`, e.Rule, e.Offset, e.Msg)
}

// ExpandError reports an abstract rule that could not be expanded
// into concrete variants.
type ExpandError struct {
	Rule string
	Msg  string
}

func (e *ExpandError) Error() string {
	return fmt.Sprintf(`can't expand %q: %s`, e.Rule, e.Msg)
}

// BoundsError reports an access outside the grid.
type BoundsError struct {
	Coord  hex.Coord
	Radius int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("(%d,%d) is outside the radius-%d grid",
		e.Coord.Q, e.Coord.R, e.Radius)
}

// BadCellError reports an attempt to store an ill-formed cell, such
// as an empty cell with a direction.
type BadCellError struct {
	Coord hex.Coord
	Msg   string
}

func (e *BadCellError) Error() string {
	return fmt.Sprintf("bad cell at (%d,%d): %s", e.Coord.Q, e.Coord.R, e.Msg)
}

// RuleEvalError reports a failure while evaluating rules for a single
// cell.  The step survives: the cell keeps its previous value.
type RuleEvalError struct {
	Coord hex.Coord
	Cause interface{}
}

func (e *RuleEvalError) Error() string {
	return fmt.Sprintf("rule evaluation failed at (%d,%d): %v",
		e.Coord.Q, e.Coord.R, e.Cause)
}
