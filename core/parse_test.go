package core

import (
	"strings"
	"testing"
)

func parseOne(t *testing.T, text string) *Rule {
	t.Helper()
	rules, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) error %v", text, err)
	}
	if len(rules) != 1 {
		t.Fatalf("Parse(%q) gave %d rules, wanted 1", text, len(rules))
	}
	return rules[0]
}

func TestParseSimple(t *testing.T) {
	r := parseOne(t, "a => b")
	if r.Source.State != "a" || r.Source.Dir != 0 || r.Source.AnyDir {
		t.Errorf("bad source %+v", r.Source)
	}
	if r.Target.State != "b" || r.Target.Form != FormPlain {
		t.Errorf("bad target %+v", r.Target)
	}
	if r.Group != 0 {
		t.Errorf("group %d", r.Group)
	}
}

func TestParseDirections(t *testing.T) {
	r := parseOne(t, "a3 => b1")
	if r.Source.Dir != 3 {
		t.Errorf("source dir %d", r.Source.Dir)
	}
	if r.Target.Form != FormDir || r.Target.Dir != 1 {
		t.Errorf("bad target %+v", r.Target)
	}
}

func TestParseSourceAnyDir(t *testing.T) {
	r := parseOne(t, "x% => y%5")
	if !r.Source.AnyDir {
		t.Error("source should be any-direction")
	}
	if r.Target.Form != FormPercent || r.Target.Rot != 5 {
		t.Errorf("bad target %+v", r.Target)
	}
}

func TestParsePercentAlone(t *testing.T) {
	r := parseOne(t, "a% => a%")
	if r.Target.Form != FormPercent || r.Target.Rot != 0 {
		t.Errorf("bare %% should mean rotation 0: %+v", r.Target)
	}
}

func TestParseConditions(t *testing.T) {
	r := parseOne(t, "a[1x] => b")
	if len(r.Source.Groups) != 1 {
		t.Fatalf("groups %d", len(r.Source.Groups))
	}
	a := r.Source.Groups[0].Alts[0]
	if a.Pos != 1 || a.State != "x" || a.Negated || a.Orient != OrientNone {
		t.Errorf("bad alt %+v", a)
	}

	r = parseOne(t, "a[2t5] => b")
	a = r.Source.Groups[0].Alts[0]
	if a.Pos != 2 || a.State != "t" || a.Orient != OrientDir || a.Dir != 5 {
		t.Errorf("bad alt %+v", a)
	}

	r = parseOne(t, "a[x%] => b")
	a = r.Source.Groups[0].Alts[0]
	if a.Orient != OrientAny {
		t.Errorf("bad alt %+v", a)
	}

	r = parseOne(t, "_[t.] => a")
	a = r.Source.Groups[0].Alts[0]
	if a.Pos != 0 || a.State != "t" || a.Orient != OrientDot {
		t.Errorf("bad alt %+v", a)
	}
}

func TestParseAlternativesAndRepeats(t *testing.T) {
	r := parseOne(t, "a[x|y][_]3 => b")
	if len(r.Source.Groups) != 2 {
		t.Fatalf("groups %d", len(r.Source.Groups))
	}
	if len(r.Source.Groups[0].Alts) != 2 {
		t.Errorf("alternatives %d", len(r.Source.Groups[0].Alts))
	}
	if r.Source.Groups[1].Repeat != 3 {
		t.Errorf("repeat %d", r.Source.Groups[1].Repeat)
	}
}

func TestParseNegation(t *testing.T) {
	r := parseOne(t, "t[-a] => t%")
	a := r.Source.Groups[0].Alts[0]
	if !a.Negated || a.Pos != 0 || a.State != "a" {
		t.Errorf("bad alt %+v", a)
	}

	r = parseOne(t, "t[-3a] => t")
	a = r.Source.Groups[0].Alts[0]
	if !a.Negated || a.Pos != 3 {
		t.Errorf("bad alt %+v", a)
	}
}

func TestParseBlankBrackets(t *testing.T) {
	// "[]" reads as "[_]", and a source that starts with a bracket
	// gets an implicit empty state.
	r := parseOne(t, "a[] => b")
	if got := r.Source.Groups[0].Alts[0].State; got != "_" {
		t.Errorf("blank bracket state %q", got)
	}

	r = parseOne(t, "[t.] => a")
	if r.Source.State != "_" {
		t.Errorf("implicit source state %q", r.Source.State)
	}
}

func TestParseTransferTarget(t *testing.T) {
	r := parseOne(t, "_[t.] => z.3")
	if r.Target.Form != FormTransfer || r.Target.Rot != 3 {
		t.Errorf("bad target %+v", r.Target)
	}
}

func TestParseSeparatorsAndComments(t *testing.T) {
	rules, err := Parse("a => b; b => c\n\n# comment\nc => a")
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 3 {
		t.Fatalf("rules %d", len(rules))
	}
	for i, r := range rules {
		if r.Group != i {
			t.Errorf("rule %d group %d", i, r.Group)
		}
	}
}

func TestParseTopLevelOr(t *testing.T) {
	rules, err := Parse("a[_|a][_]5 | a[a]4[_|a][_|a] => _")
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules %d", len(rules))
	}
	if rules[0].Group != rules[1].Group {
		t.Error("siblings should share a group")
	}
	if rules[0].Target != rules[1].Target {
		t.Error("siblings should share the target")
	}
}

func TestParsePreset(t *testing.T) {
	for _, text := range []string{"b3s23", "B3S23", "B3/S23"} {
		rules, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q) error %v", text, err)
		}
		// Three authored rules; the third splits into two siblings.
		if len(rules) != 4 {
			t.Fatalf("Parse(%q) gave %d rules", text, len(rules))
		}
		if rules[2].Group != 2 || rules[3].Group != 2 {
			t.Errorf("Parse(%q): death siblings have groups %d and %d",
				text, rules[2].Group, rules[3].Group)
		}
	}
}

func TestParseWhitespace(t *testing.T) {
	a, err := Parse("  a [ x | y ]  =>  b2 ")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("a[x|y] => b2")
	if err != nil {
		t.Fatal(err)
	}
	if Format(a) != Format(b) {
		t.Errorf("whitespace changed the parse: %q vs %q", Format(a), Format(b))
	}
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{
		"a[x]7 => b",   // repeat count out of 1..6
		"a[x]0 => b",   // repeat count out of 1..6
		"a => b%9",     // rotation out of 0..5
		"a => b%23",    // rotation out of 0..5
		"a => b7",      // direction out of 1..6
		"a7 => b",      // direction out of 1..6
		"a[7x] => b",   // position out of 1..6
		"a[2t.] => b",  // pointing shorthand with a position
		"a b => c",     // whitespace inside a rule head
		"aB => c",      // uppercase
		"_x => b",      // suffix on the empty state
		"a =>",         // missing target
		"a",            // missing "=>"
		"[x| ] => b",   // empty alternative
		"a => b.7",     // transfer rotation out of 0..5
	} {
		rules, err := Parse(text)
		if err == nil {
			t.Errorf("Parse(%q) = %d rules, wanted an error", text, len(rules))
			continue
		}
		if _, is := err.(*ParseError); !is {
			t.Errorf("Parse(%q) error %T, wanted *ParseError", text, err)
		}
	}
}

func TestParseErrorOffset(t *testing.T) {
	_, err := Parse("a => b%9")
	pe, is := err.(*ParseError)
	if !is {
		t.Fatalf("error %T", err)
	}
	if pe.Rule != "a => b%9" {
		t.Errorf("rule %q", pe.Rule)
	}
	if pe.Offset != strings.Index(pe.Rule, "9") {
		t.Errorf("offset %d", pe.Offset)
	}
}

func TestFormatStability(t *testing.T) {
	// Reparsing canonical text yields the same concrete rule set.
	for _, text := range []string{
		"a => b",
		"a3 => b1",
		"x% => y%5",
		"_[t.] => a",
		"t[-a] => t%",
		"a[x|y]2[_]3 => b",
		"b3s23",
		"a[_|a][_]5 | a[a]4[_|a][_|a] => _",
	} {
		first, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q) error %v", text, err)
		}
		second, err := Parse(Format(first))
		if err != nil {
			t.Fatalf("reparse of %q (%q) error %v", text, Format(first), err)
		}

		a, err := Expand(first)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Expand(second)
		if err != nil {
			t.Fatal(err)
		}
		if len(a) != len(b) {
			t.Errorf("%q: %d vs %d concrete rules", text, len(a), len(b))
			continue
		}
		counts := make(map[string]int, len(a))
		for _, r := range a {
			counts[r.Key()]++
		}
		for _, r := range b {
			counts[r.Key()]--
		}
		for k, n := range counts {
			if n != 0 {
				t.Errorf("%q: concrete multisets differ at %s", text, k)
			}
		}
	}
}
