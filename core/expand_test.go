package core

import (
	"testing"

	"github.com/Comcast/hexi/hex"
	"github.com/Comcast/hexi/match"
)

func expand(t *testing.T, text string) []*match.Rule {
	t.Helper()
	rules, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) error %v", text, err)
	}
	concrete, err := Expand(rules)
	if err != nil {
		t.Fatalf("Expand(%q) error %v", text, err)
	}
	return concrete
}

func TestExpandSimple(t *testing.T) {
	rs := expand(t, "a => b")
	if len(rs) != 1 {
		t.Fatalf("%d variants", len(rs))
	}
	r := rs[0]
	if r.SrcState != "a" || r.SrcDir != 0 || len(r.Conds) != 0 {
		t.Errorf("bad rule %s", r)
	}
	if r.Target.State != "b" || r.Target.Kind != match.None {
		t.Errorf("bad target %+v", r.Target)
	}
}

func TestExpandSourceAnyDir(t *testing.T) {
	rs := expand(t, "a% => b")
	if len(rs) != 6 {
		t.Fatalf("%d variants", len(rs))
	}
	seen := make(map[int]bool, 6)
	for _, r := range rs {
		seen[r.SrcDir] = true
		if r.Group != 0 {
			t.Errorf("variant %s group %d", r, r.Group)
		}
	}
	for d := 1; d <= 6; d++ {
		if !seen[d] {
			t.Errorf("no variant with source direction %d", d)
		}
	}
}

func TestExpandUnpositionedCondition(t *testing.T) {
	rs := expand(t, "a[x] => b")
	if len(rs) != 6 {
		t.Fatalf("%d variants", len(rs))
	}
	seen := make(map[int]bool, 6)
	for _, r := range rs {
		if len(r.Conds) != 1 {
			t.Fatalf("variant %s has %d conds", r, len(r.Conds))
		}
		seen[r.Conds[0].Pos] = true
	}
	if len(seen) != 6 {
		t.Errorf("positions covered: %d", len(seen))
	}
}

func TestExpandDistinctSlots(t *testing.T) {
	// Two unpositioned conditions occupy distinct neighbor slots.
	rs := expand(t, "a[x][y] => b")
	if len(rs) != 30 {
		t.Fatalf("%d variants, wanted 30", len(rs))
	}
	for _, r := range rs {
		if r.Conds[0].Pos == r.Conds[1].Pos {
			t.Fatalf("variant %s reuses a slot", r)
		}
	}

	// Identical conditions dedupe to unordered position pairs.
	rs = expand(t, "a[b][b] => d")
	if len(rs) != 15 {
		t.Fatalf("%d variants, wanted 15", len(rs))
	}
}

func TestExpandRepeats(t *testing.T) {
	// Three a's and three _'s over six slots: C(6,3) distinct
	// variants after deduplication.
	rs := expand(t, "_[a]3[_]3 => a")
	if len(rs) != 20 {
		t.Fatalf("%d variants, wanted 20", len(rs))
	}
	for _, r := range rs {
		if len(r.Conds) != 6 {
			t.Fatalf("variant %s has %d conds", r, len(r.Conds))
		}
	}
}

func TestExpandAlternatives(t *testing.T) {
	rs := expand(t, "a[1x|1y] => b")
	if len(rs) != 2 {
		t.Fatalf("%d variants", len(rs))
	}
}

func TestExpandPointing(t *testing.T) {
	rs := expand(t, "_[t.] => a")
	if len(rs) != 6 {
		t.Fatalf("%d variants", len(rs))
	}
	for _, r := range rs {
		c := r.Conds[0]
		if c.Orient != match.PointingToCenter {
			t.Errorf("variant %s orient %v", r, c.Orient)
		}
		// The matcher requires direction Opposite(pos); make sure
		// the condition agrees with the geometry.
		if !c.Satisfied(match.Cell{State: "t", Dir: hex.Opposite(c.Pos)}) {
			t.Errorf("variant %s rejects its own pointing neighbor", r)
		}
	}
}

func TestExpandRotationTargets(t *testing.T) {
	// A directional source resolves % to a rotation.
	rs := expand(t, "a% => a%1")
	if len(rs) != 6 {
		t.Fatalf("%d variants", len(rs))
	}
	for _, r := range rs {
		if r.Target.Kind != match.Rotate || r.Target.Rot != 1 {
			t.Errorf("variant %s target %+v", r, r.Target)
		}
	}

	// A directionless source turns % into a random direction.
	rs = expand(t, "a => b%2")
	if len(rs) != 1 || rs[0].Target.Kind != match.RandomAny {
		t.Fatalf("wanted one random-any variant, got %v", rs)
	}
}

func TestExpandNegation(t *testing.T) {
	// Unpositioned negation constrains all six neighbors and does
	// not consume a slot.
	rs := expand(t, "t[-a] => t%")
	if len(rs) != 1 {
		t.Fatalf("%d variants", len(rs))
	}
	r := rs[0]
	if len(r.Conds) != 6 {
		t.Fatalf("%d conds", len(r.Conds))
	}
	for _, c := range r.Conds {
		if !c.Negated || c.State != "a" {
			t.Errorf("bad cond %+v", c)
		}
	}
	if r.Target.Kind != match.RandomAny {
		t.Errorf("target %+v", r.Target)
	}

	// Positioned negation stays put.
	rs = expand(t, "t[-3a] => t")
	if len(rs) != 1 || len(rs[0].Conds) != 1 || rs[0].Conds[0].Pos != 3 {
		t.Fatalf("bad variants %v", rs)
	}
}

func TestExpandTransfer(t *testing.T) {
	rs := expand(t, "_[t.] => z.1")
	if len(rs) != 6 {
		t.Fatalf("%d variants", len(rs))
	}
	for _, r := range rs {
		if r.Target.Kind != match.Transfer || r.Target.Rot != 1 {
			t.Errorf("variant %s target %+v", r, r.Target)
		}
		if r.Target.Slot != r.Conds[0].Pos {
			t.Errorf("variant %s slot %d, cond at %d", r, r.Target.Slot, r.Conds[0].Pos)
		}
	}

	if _, err := Parse("_[x] => z.1"); err != nil {
		t.Fatal(err)
	}
	rules, _ := Parse("_[x] => z.1")
	if _, err := Expand(rules); err == nil {
		t.Error("transfer without a pointing condition should not expand")
	}
}

func TestExpandPositionCollisions(t *testing.T) {
	// Incompatible conditions on the same explicit position kill
	// the variant.
	if rs := expand(t, "a[1x][1y] => b"); len(rs) != 0 {
		t.Errorf("%d variants, wanted none", len(rs))
	}
	// Identical ones merge.
	rs := expand(t, "a[1x][1x] => b")
	if len(rs) != 1 || len(rs[0].Conds) != 1 {
		t.Errorf("bad variants %v", rs)
	}
}

func TestExpandEmptyTargetDropsDirection(t *testing.T) {
	rs := expand(t, "a% => _%")
	for _, r := range rs {
		if r.Target.State != match.Empty || r.Target.Kind != match.None {
			t.Errorf("variant %s target %+v", r, r.Target)
		}
	}
}

func TestExpandGroups(t *testing.T) {
	rs := expand(t, "a => b\nb% => c")
	groups := make(map[int]int, 2)
	for _, r := range rs {
		groups[r.Group]++
	}
	if groups[0] != 1 || groups[1] != 6 {
		t.Errorf("group sizes %v", groups)
	}
}
