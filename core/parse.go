package core

import (
	"fmt"
	"strings"
)

// PresetB3S23 is the HexiDirect rendering of the classic B3/S23
// life rule on the hex neighborhood.  The token "b3s23" (or "B3/S23")
// on a line of its own expands to these rules at parse time.
var PresetB3S23 = []string{
	"_[a]3[_]3 => a",
	"a[a]2[_|a][_]3 => a",
	"a[_|a][_]5 | a[a]4[_|a][_|a] => _",
}

// Parse parses HexiDirect source text into abstract rules.
//
// Rules are separated by newlines or semicolons.  Blank lines and
// lines beginning with '#' are ignored.  A top-level '|' splits a
// rule into sibling rules that share a group id; each remaining line
// gets the next 0-based group id.
//
// The first offending rule aborts the parse with a *ParseError.
func Parse(text string) ([]*Rule, error) {
	var (
		rules []*Rule
		group int
	)
	for _, line := range splitRules(text) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if isPreset(line) {
			for _, p := range PresetB3S23 {
				rs, err := parseRule(p, group)
				if err != nil {
					// Presets are ours, so this is an internal error.
					return nil, err
				}
				rules = append(rules, rs...)
				group++
			}
			continue
		}
		rs, err := parseRule(line, group)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rs...)
		group++
	}
	return rules, nil
}

func isPreset(line string) bool {
	return strings.EqualFold(line, "b3s23") || strings.EqualFold(line, "b3/s23")
}

func splitRules(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ';'
	})
}

// splitTopLevelOr splits a source on '|' outside brackets.
func splitTopLevelOr(src string) []string {
	var (
		parts []string
		buf   strings.Builder
		depth = 0
	)
	for i := 0; i < len(src); i++ {
		switch ch := src[i]; {
		case ch == '[':
			depth++
			buf.WriteByte(ch)
		case ch == ']':
			if 0 < depth {
				depth--
			}
			buf.WriteByte(ch)
		case ch == '|' && depth == 0:
			parts = append(parts, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(ch)
		}
	}
	parts = append(parts, buf.String())
	acc := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			acc = append(acc, p)
		}
	}
	return acc
}

func parseRule(line string, group int) ([]*Rule, error) {
	at := strings.Index(line, "=>")
	if at < 0 {
		return nil, &ParseError{Rule: line, Offset: len(line), Msg: `missing "=>"`}
	}

	target, err := parseTarget(line, line[at+2:], at+2)
	if err != nil {
		return nil, err
	}

	srcs := splitTopLevelOr(line[:at])
	if len(srcs) == 0 {
		return nil, &ParseError{Rule: line, Offset: 0, Msg: "missing source"}
	}

	rules := make([]*Rule, 0, len(srcs))
	for _, s := range srcs {
		// Blank brackets mean an empty neighbor, and a source that
		// starts with a bracket is an implicit empty cell.
		s = strings.ReplaceAll(s, "[]", "[_]")
		if strings.HasPrefix(s, "[") {
			s = "_" + s
		}
		src, err := parseSource(line, s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, &Rule{
			Source: src,
			Target: target,
			Group:  group,
			Text:   s + " => " + strings.TrimSpace(line[at+2:]),
		})
	}
	return rules, nil
}

// scanner walks one side of a rule.  rule and base are kept so that
// errors can report the whole rule and a byte offset into it.
type scanner struct {
	rule string
	s    string
	i    int
	base int
}

func (sc *scanner) errf(format string, args ...interface{}) *ParseError {
	return &ParseError{
		Rule:   sc.rule,
		Offset: sc.base + sc.i,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (sc *scanner) ws() {
	for sc.i < len(sc.s) && (sc.s[sc.i] == ' ' || sc.s[sc.i] == '\t') {
		sc.i++
	}
}

func (sc *scanner) eof() bool {
	sc.ws()
	return len(sc.s) <= sc.i
}

func (sc *scanner) peek() byte {
	if sc.i < len(sc.s) {
		return sc.s[sc.i]
	}
	return 0
}

func isLower(ch byte) bool { return 'a' <= ch && ch <= 'z' }
func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

// state parses "_" or a lowercase identifier.
func (sc *scanner) state() (string, error) {
	sc.ws()
	switch ch := sc.peek(); {
	case ch == '_':
		sc.i++
		if isLower(sc.peek()) || sc.peek() == '_' {
			return "", sc.errf("the empty state takes no suffix")
		}
		return "_", nil
	case isLower(ch):
		start := sc.i
		for isLower(sc.peek()) || sc.peek() == '_' {
			sc.i++
		}
		return sc.s[start:sc.i], nil
	}
	return "", sc.errf("expected a state")
}

// dir parses a single direction digit 1..6.
func (sc *scanner) dir() (int, error) {
	ch := sc.peek()
	if ch < '1' || '6' < ch {
		return 0, sc.errf("direction out of 1..6")
	}
	sc.i++
	if isDigit(sc.peek()) {
		return 0, sc.errf("direction out of 1..6")
	}
	return int(ch - '0'), nil
}

func parseSource(rule, s string) (Source, error) {
	sc := &scanner{rule: rule, s: s}
	var src Source

	state, err := sc.state()
	if err != nil {
		return src, err
	}
	src.State = state

	sc.ws()
	switch ch := sc.peek(); {
	case ch == '%':
		sc.i++
		src.AnyDir = true
	case isDigit(ch):
		d, err := sc.dir()
		if err != nil {
			return src, err
		}
		src.Dir = d
	}

	for !sc.eof() {
		if sc.peek() != '[' {
			return src, sc.errf("unexpected %q", string(sc.peek()))
		}
		g, err := sc.group()
		if err != nil {
			return src, err
		}
		src.Groups = append(src.Groups, g)
	}
	return src, nil
}

func (sc *scanner) group() (Group, error) {
	g := Group{Repeat: 1}
	sc.i++ // '['
	for {
		alt, err := sc.alt()
		if err != nil {
			return g, err
		}
		g.Alts = append(g.Alts, alt)
		sc.ws()
		switch sc.peek() {
		case '|':
			sc.i++
			continue
		case ']':
			sc.i++
		default:
			return g, sc.errf("expected '|' or ']'")
		}
		break
	}
	sc.ws()
	if isDigit(sc.peek()) {
		start := sc.i
		for isDigit(sc.peek()) {
			sc.i++
		}
		n := 0
		for _, ch := range sc.s[start:sc.i] {
			n = n*10 + int(ch-'0')
		}
		if n < 1 || 6 < n {
			sc.i = start
			return g, sc.errf("repeat count out of 1..6")
		}
		g.Repeat = n
	}
	return g, nil
}

func (sc *scanner) alt() (Alt, error) {
	var a Alt
	sc.ws()
	if sc.peek() == '-' {
		sc.i++
		a.Negated = true
	}
	sc.ws()
	if isDigit(sc.peek()) {
		p, err := sc.dir()
		if err != nil {
			return a, err
		}
		a.Pos = p
	}
	state, err := sc.state()
	if err != nil {
		return a, err
	}
	a.State = state

	sc.ws()
	switch ch := sc.peek(); {
	case ch == '.':
		sc.i++
		if a.Pos != 0 {
			return a, sc.errf("pointing shorthand takes no position")
		}
		a.Orient = OrientDot
	case ch == '%':
		sc.i++
		a.Orient = OrientAny
	case isDigit(ch):
		d, err := sc.dir()
		if err != nil {
			return a, err
		}
		a.Orient = OrientDir
		a.Dir = d
	}
	return a, nil
}

func parseTarget(rule, s string, base int) (Target, error) {
	sc := &scanner{rule: rule, s: s, base: base}
	var t Target

	state, err := sc.state()
	if err != nil {
		return t, err
	}
	t.State = state

	if sc.eof() {
		t.Form = FormPlain
		return t, nil
	}

	switch ch := sc.peek(); {
	case ch == '%':
		sc.i++
		t.Form = FormPercent
		if sc.eof() {
			return t, nil
		}
		t.Rot, err = sc.rotation()
		if err != nil {
			return t, err
		}
	case ch == '.':
		sc.i++
		t.Form = FormTransfer
		t.Rot, err = sc.rotation()
		if err != nil {
			return t, err
		}
	case isDigit(ch):
		d, err := sc.dir()
		if err != nil {
			return t, err
		}
		t.Form = FormDir
		t.Dir = d
	default:
		return t, sc.errf("unexpected %q", string(ch))
	}

	if !sc.eof() {
		return t, sc.errf("unexpected %q", string(sc.peek()))
	}
	return t, nil
}

// rotation parses a single rotation digit 0..5.
func (sc *scanner) rotation() (int, error) {
	sc.ws()
	ch := sc.peek()
	if ch < '0' || '5' < ch {
		return 0, sc.errf("rotation out of 0..5")
	}
	sc.i++
	if isDigit(sc.peek()) {
		return 0, sc.errf("rotation out of 0..5")
	}
	return int(ch - '0'), nil
}
