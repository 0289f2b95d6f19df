package contrast

import (
	"html"
	"regexp"
	"sort"
	"strings"

	nethtml "golang.org/x/net/html"
)

var (
	commentRE = regexp.MustCompile(`(?s)<!--.*?(?:-->|$)`)
	rawText   = []string{"script", "style", "textarea", "title", "xmp", "noscript", "noembed", "noframes", "iframe", "plaintext"}
	rawOpen   = make(map[string]*regexp.Regexp, len(rawText))
	rawClose  = make(map[string]*regexp.Regexp, len(rawText))
)

func init() {
	for _, name := range rawText {
		rawOpen[name] = regexp.MustCompile(`(?i)<` + name + `\b[^>]*>`)
		rawClose[name] = regexp.MustCompile(`(?i)</` + name + `\s*>`)
	}
}

// locator finds the source range of an element's opening tag. Tags are
// searched as text, so markup inside comments and raw-text elements is
// ignored.
type locator struct {
	text     string
	excluded [][2]int
	patterns map[string]*regexp.Regexp
	matches  map[string][][]int // by tagPattern.key
}

func newLocator(text string) *locator {
	return &locator{
		text:     text,
		excluded: excludedRanges(text),
		patterns: make(map[string]*regexp.Regexp),
		matches:  make(map[string][][]int),
	}
}

func excludedRanges(text string) [][2]int {
	var out [][2]int
	for _, m := range commentRE.FindAllStringIndex(text, -1) {
		out = append(out, [2]int{m[0], m[1]})
	}
	for _, name := range rawText {
		pos := 0
		for pos < len(text) {
			open := rawOpen[name].FindStringIndex(text[pos:])
			if open == nil {
				break
			}
			bodyStart := pos + open[1]
			end := len(text)
			if cl := rawClose[name].FindStringIndex(text[bodyStart:]); cl != nil {
				end = bodyStart + cl[0]
			}
			out = append(out, [2]int{bodyStart, end})
			pos = end
			if pos == bodyStart {
				pos++
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func (l *locator) isExcluded(off int) bool {
	for _, r := range l.excluded {
		if r[0] > off {
			return false
		}
		if off < r[1] {
			return true
		}
	}
	return false
}

// attrValue captures one attribute value in any quoting; groups 1-3 hold it.
const attrValue = `(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+)))?`

// tagPattern finds an opening tag in the source. The expression matches
// attribute names only; values are compared after entity decoding, since the
// source may spell them with any character reference.
type tagPattern struct {
	expr   string
	values []string
}

// key identifies the markup for the per-markup occurrence counter.
func (p tagPattern) key() string {
	return p.expr + "\x00" + strings.Join(p.values, "\x00")
}

// openTagPattern renders n's opening tag as a case-insensitive pattern that
// tolerates whitespace between tokens and any quoting of attribute values.
// Repeated attributes stay in the parsed node, so they appear in the pattern.
func openTagPattern(n *nethtml.Node) tagPattern {
	var (
		b strings.Builder
		p tagPattern
	)
	b.WriteString(`<(?i:`)
	b.WriteString(regexp.QuoteMeta(n.Data))
	b.WriteString(`)`)
	for _, a := range n.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		b.WriteString(`\s+(?i:`)
		b.WriteString(regexp.QuoteMeta(name))
		b.WriteString(`)`)
		b.WriteString(attrValue)
		p.values = append(p.values, a.Val)
	}
	b.WriteString(`\s*/?>`)
	p.expr = b.String()
	return p
}

// valuesMatch decodes the captured attribute values of m and compares them
// with the parsed ones.
func (p tagPattern) valuesMatch(text string, m []int) bool {
	for i, want := range p.values {
		got := ""
		for g := 0; g < 3; g++ {
			lo, hi := m[2*(1+3*i+g)], m[2*(1+3*i+g)+1]
			if lo >= 0 {
				got = text[lo:hi]
				break
			}
		}
		if html.UnescapeString(got) != want {
			return false
		}
	}
	return true
}

// locate returns the range of the ordinal-th occurrence of the tag: from the
// tag name to the closing '>' exclusive.
func (l *locator) locate(p tagPattern, ordinal int) (start, end int, ok bool) {
	key := p.key()
	found, cached := l.matches[key]
	if !cached {
		re, exists := l.patterns[p.expr]
		if !exists {
			var err error
			re, err = regexp.Compile(p.expr)
			if err != nil {
				return 0, 0, false
			}
			l.patterns[p.expr] = re
		}
		for _, m := range re.FindAllStringSubmatchIndex(l.text, -1) {
			if !l.isExcluded(m[0]) && p.valuesMatch(l.text, m) {
				found = append(found, m[:2])
			}
		}
		l.matches[key] = found
	}
	if ordinal < 0 || ordinal >= len(found) {
		return 0, 0, false
	}
	m := found[ordinal]
	return m[0] + 1, m[1] - 1, true
}
