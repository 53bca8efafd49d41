package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Comcast/hexi/core"
)

func TestRenderRulesPage(t *testing.T) {
	doc := &RulesDoc{
		Name:  "life",
		Doc:   "The **B3/S23** preset on a hex grid.",
		Rules: "b3s23",
	}

	var buf bytes.Buffer
	if err := RenderRulesPage(doc, &buf, nil, true); err != nil {
		t.Fatal(err)
	}
	html := buf.String()

	for _, want := range []string{
		"<title>life</title>",
		"<strong>B3/S23</strong>",
		"theseRules",
		"=> a", // at least one rendered rule
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRenderRejectsBadRules(t *testing.T) {
	doc := &RulesDoc{Name: "bad", Rules: "a => b%9"}
	var buf bytes.Buffer
	err := RenderRulesPage(doc, &buf, nil, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, is := err.(*core.ParseError); !is {
		t.Fatalf("error %T", err)
	}
}
