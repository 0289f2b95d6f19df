package scan

import (
	"context"
	"strings"
	"testing"

	"ably/internal/diag"
	"ably/internal/pass"
	"ably/internal/source"
)

func pick(t *testing.T, ids ...string) []Rule {
	t.Helper()
	var out []Rule
	for _, id := range ids {
		found := false
		for _, r := range DefaultRules() {
			if r.ID == id {
				out = append(out, r)
				found = true
			}
		}
		if !found {
			t.Fatalf("rule %s not found", id)
		}
	}
	return out
}

type run struct {
	file *source.File
	bag  *diag.Bag
	sc   *pass.ScanContext
	n    int
}

func scanText(t *testing.T, text string, max int, ids ...string) run {
	t.Helper()
	var rules []Rule
	if len(ids) > 0 {
		rules = pick(t, ids...)
	}
	s, err := New(Options{Rules: rules})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("page.html", []byte(text)))
	bag := diag.NewBag()
	sc := pass.NewScanContext(max, diag.BagReporter{Bag: bag})
	n := s.Scan(context.Background(), file, sc)
	return run{file: file, bag: bag, sc: sc, n: n}
}

func spanText(r run, d diag.Diagnostic) string {
	return string(r.file.Content[d.Primary.Start:d.Primary.End])
}

func TestDefaultRulesCompile(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rules := s.Rules()
	if len(rules) != 19 {
		t.Fatalf("got %d rules, want 19", len(rules))
	}
	seen := make(map[string]bool)
	for _, r := range rules {
		if seen[r.ID] {
			t.Fatalf("duplicate rule id %s", r.ID)
		}
		seen[r.ID] = true
		if !strings.HasPrefix(r.Citation, "WCAG 2.1 | ") || len(r.Suggestions) == 0 {
			t.Fatalf("rule %s incomplete: %+v", r.ID, r)
		}
	}
}

func TestNavWithoutList(t *testing.T) {
	text := "<body>\n<nav><a href=\"/\">Home</a></nav>\n<nav><ul><li>x</li></ul></nav>\n</body>"
	r := scanText(t, text, 0, "1.3.1a")
	items := r.bag.Items()
	if len(items) != 1 {
		t.Fatalf("got %d findings, want 1", len(items))
	}
	d := items[0]
	if got := spanText(r, d); got != `nav><a href="/">Home</a></nav` {
		t.Fatalf("span text = %q", got)
	}
	if d.Source != "WCAG 2.1 | 1.3.1" || d.Rule != "1.3.1a" || d.Code != diag.StrNavWithoutList {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if sug := d.Suggestions(); len(sug) != 1 || sug[0] != "Please use lists." {
		t.Fatalf("suggestions = %v", sug)
	}
	if d.Notes[0].Span != d.Primary {
		t.Fatal("suggestion must share the diagnostic range")
	}
}

func TestLandmarkRoleAnchorsAtDocumentStart(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"first line", "<main>\n<p>x</p>\n", 1},
		{"first line with role", "<main role=\"main\">\n<p>x</p>\n", 0},
		{"later line", "<p>x</p>\n<main>\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scanText(t, tt.text, 0, "1.3.1c")
			if r.bag.Len() != tt.want {
				t.Fatalf("got %d findings, want %d", r.bag.Len(), tt.want)
			}
		})
	}
	r := scanText(t, "<main>\n", 0, "1.3.1c")
	if got := r.bag.Items()[0].Message; got != "The main landmark element must have additional context." {
		t.Fatalf("message = %q", got)
	}
}

func TestUntypedControlOnlyAtEndOfInput(t *testing.T) {
	if r := scanText(t, "<p>x</p>\n<textarea></textarea>", 0, "1.3.5b"); r.bag.Len() != 1 {
		t.Fatalf("got %d findings at end of input, want 1", r.bag.Len())
	}
	if r := scanText(t, "<textarea></textarea>\n", 0, "1.3.5b"); r.bag.Len() != 0 {
		t.Fatalf("got %d findings before a trailing newline, want 0", r.bag.Len())
	}
	if r := scanText(t, "<textarea></textarea>\n<p>x</p>", 0, "1.3.5b"); r.bag.Len() != 0 {
		t.Fatalf("got %d findings mid-document, want 0", r.bag.Len())
	}
}

// Trimmed rules report the match without its first and last character, the
// others report raw match bounds.
func TestRuleSpans(t *testing.T) {
	tests := []struct {
		id   string
		text string
		want string
	}{
		{"1.3.1a", `<nav><a href="/">Home</a></nav>`, `nav><a href="/">Home</a></nav`},
		{"1.3.1b", "<body>\n<footer>f</footer>\n<main>m</main>\n</body>\n</html>", "footer>f</footer>\n<main>m</main>\n</body>\n</html"},
		{"1.3.1c", "<main>\n", "main"},
		{"1.3.1d", `<header class="top">`, `header class="top"`},
		{"1.3.1e", "<nav>", "nav"},
		{"1.3.1f", "<aside>", "aside"},
		{"1.3.1g", "<footer>", "footer"},
		{"1.3.1h", "span {\n  font-weight: bold;\n}", "pan {\n  font-weight: bold;\n"},
		{"1.3.4", "p { width: 100px; }", "width: 100px"},
		{"1.3.5a", `<input type="text">`, `<input type="text">`},
		{"1.3.5b", "<label>x</label>\n<textarea></textarea>", "<textarea></textarea>"},
		{"1.4.4", "p { font-size: 12px; }", "font-size: 12px"},
		{"2.1.1a", `<div class="button">Go</div>`, `<div class="button">`},
		{"2.1.1b", `<div class="form">x</div>`, `<div class="form">`},
		{"2.5.3a", `<button type="submit">Send</button>`, `button type="submit"`},
		{"2.5.3b", `<input type="text">`, `input type="text"`},
		{"2.5.3c", `<textarea rows="3"></textarea>`, `textarea rows="3"`},
		{"2.5.3d", `<select name="a"></select>`, `select name="a"`},
		{"4.1.3", `<div role="status">Saved</div>`, `<div role="status">`},
	}
	if len(tests) != len(DefaultRules()) {
		t.Fatalf("%d cases for %d rules", len(tests), len(DefaultRules()))
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r := scanText(t, tt.text, 0, tt.id)
			items := r.bag.Items()
			if len(items) != 1 {
				t.Fatalf("got %d findings, want 1", len(items))
			}
			if got := spanText(r, items[0]); got != tt.want {
				t.Fatalf("span text = %q, want %q", got, tt.want)
			}
			if items[0].Rule != tt.id {
				t.Fatalf("rule = %s", items[0].Rule)
			}
		})
	}
}

func TestFooterBeforeLandmarkOnly(t *testing.T) {
	ok := "<body>\n<main>m</main>\n<footer>f</footer>\n</body>\n</html>"
	if r := scanText(t, ok, 0, "1.3.1b"); r.bag.Len() != 0 {
		t.Fatalf("footer in last place reported %d findings", r.bag.Len())
	}
	twice := "<body>\n<footer>a</footer>\n<footer>b</footer>\n</body>\n</html>"
	if r := scanText(t, twice, 0, "1.3.1b"); r.bag.Len() != 1 {
		t.Fatalf("duplicated footer reported %d findings, want 1", r.bag.Len())
	}
}

func TestFixedPxSizingSkipsMaxWidth(t *testing.T) {
	r := scanText(t, "p { max-width: 50px; }\np { width: 100px; }", 0, "1.3.4")
	items := r.bag.Items()
	if len(items) != 1 {
		t.Fatalf("got %d findings, want 1", len(items))
	}
	if got := spanText(r, items[0]); got != "width: 100px" {
		t.Fatalf("span text = %q", got)
	}
}

func TestDivButtonHasTwoSuggestions(t *testing.T) {
	r := scanText(t, `<div class="button">Go</div>`, 0, "2.1.1a")
	items := r.bag.Items()
	if len(items) != 1 {
		t.Fatalf("got %d findings, want 1", len(items))
	}
	if got := spanText(r, items[0]); got != `<div class="button">` {
		t.Fatalf("span text = %q", got)
	}
	if len(items[0].Notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(items[0].Notes))
	}
}

func TestStatusWithoutAriaLive(t *testing.T) {
	text := "<div role=\"status\">Saved</div>\n<div role=\"status\" aria-live=\"polite\">Saved</div>"
	r := scanText(t, text, 0, "4.1.3")
	if r.bag.Len() != 1 {
		t.Fatalf("got %d findings, want 1", r.bag.Len())
	}
	if got := spanText(r, r.bag.Items()[0]); got != `<div role="status">` {
		t.Fatalf("span text = %q", got)
	}
}

func TestControlLabel(t *testing.T) {
	text := "<input type=\"text\">\n<input aria-label=\"Name\">"
	r := scanText(t, text, 0, "2.5.3b")
	if r.bag.Len() != 1 {
		t.Fatalf("got %d findings, want 1", r.bag.Len())
	}
	if got := spanText(r, r.bag.Items()[0]); got != `input type="text"` {
		t.Fatalf("span text = %q", got)
	}
}

func TestOffsetsAreBytesAfterMultibyteText(t *testing.T) {
	text := "<p>é😀</p><div class=\"form\">"
	r := scanText(t, text, 0, "2.1.1b")
	if r.bag.Len() != 1 {
		t.Fatalf("got %d findings, want 1", r.bag.Len())
	}
	d := r.bag.Items()[0]
	if want := uint32(strings.Index(text, "<div")); d.Primary.Start != want {
		t.Fatalf("start = %d, want %d", d.Primary.Start, want)
	}
	if d.Primary.End != uint32(len(text)) {
		t.Fatalf("end = %d, want %d", d.Primary.End, len(text))
	}
}

func TestBudgetStopsAllRules(t *testing.T) {
	text := "a { font-size: 12px; }\nb { font-size: 13px; }\nc { font-size: 14pt; }\n<div class=\"form\">"
	r := scanText(t, text, 2, "1.4.4", "2.1.1b")
	if r.n != 2 || r.bag.Len() != 2 {
		t.Fatalf("accepted %d, bag %d; want 2", r.n, r.bag.Len())
	}
	if !r.sc.Exhausted() {
		t.Fatal("budget must be exhausted")
	}
	for _, d := range r.bag.Items() {
		if d.Rule != "1.4.4" {
			t.Fatalf("rule %s ran after the budget was spent", d.Rule)
		}
	}
}

func TestMatchSpanClamps(t *testing.T) {
	offs := source.RuneOffsets("ab")
	sp := matchSpan(0, offs, 1, 1, TrimEdges)
	if sp.Start != 2 || sp.End != 2 {
		t.Fatalf("one-char match trimmed to %+v", sp)
	}
	sp = matchSpan(0, offs, 0, 2, TrimNone)
	if sp.Start != 0 || sp.End != 2 {
		t.Fatalf("raw match = %+v", sp)
	}
}

func TestCancelledContextStops(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("x.html", []byte(`<div class="form">`)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bag := diag.NewBag()
	if n := s.Scan(ctx, file, pass.NewScanContext(0, diag.BagReporter{Bag: bag})); n != 0 || bag.Len() != 0 {
		t.Fatalf("cancelled scan produced %d findings", n)
	}
}
