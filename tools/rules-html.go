package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Comcast/hexi/core"
	"github.com/Comcast/hexi/match"
	"github.com/jsccast/yaml"

	md "github.com/russross/blackfriday/v2"
)

// RulesDoc is a documented ruleset on disk: YAML with a name, a
// markdown doc, and HexiDirect rule source.
type RulesDoc struct {
	Name  string `yaml:"name"`
	Doc   string `yaml:"doc"`
	Rules string `yaml:"rules"`
}

// RenderRulesHTML writes an HTML fragment describing the ruleset: the
// doc as markdown, then each authored rule with its concrete
// variants.
func RenderRulesHTML(doc *RulesDoc, rules []*core.Rule, concrete []*match.Rule, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if doc.Doc != "" {
		f(`<div class="rulesDoc doc">%s</div>`, md.Run([]byte(doc.Doc)))
	}

	byGroup := make(map[int][]*match.Rule, len(rules))
	for _, r := range concrete {
		byGroup[r.Group] = append(byGroup[r.Group], r)
	}

	f(`<div class="rules"><table>`)
	printed := make(map[int]bool, len(rules))
	for _, r := range rules {
		f(`<tr class="rule"><td><code id="g%d">%s</code></td><td>`, r.Group, r.String())
		if !printed[r.Group] {
			printed[r.Group] = true
			f(`<div class="variants"><table>`)
			for i, v := range byGroup[r.Group] {
				f(`<tr><td><div class="variantNum">%d</div></td><td><code>%s</code></td></tr>`, i, v.String())
			}
			f(`</table></div>`)
		}
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderRulesPage writes a complete HTML page for the ruleset.
func RenderRulesPage(doc *RulesDoc, out io.Writer, cssFiles []string, includeData bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/rules-html.css"}
	}

	rules, err := core.Parse(doc.Rules)
	if err != nil {
		return err
	}
	concrete, err := core.Expand(rules)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, doc.Name)

	if includeData {
		js, err := json.Marshal(concrete)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, `
  <script>
  var theseRules = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, doc.Name)

	if err = RenderRulesHTML(doc, rules, concrete, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderRulesPage reads a RulesDoc YAML file and renders it.
func ReadAndRenderRulesPage(filename string, cssFiles []string, out io.Writer, includeData bool) error {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var doc RulesDoc
	if err = yaml.Unmarshal(bs, &doc); err != nil {
		return err
	}
	return RenderRulesPage(&doc, out, cssFiles, includeData)
}
