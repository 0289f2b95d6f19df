package contrast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// StyleResolver answers the computed-style questions the analyzer asks about
// an element.
type StyleResolver interface {
	// EffectiveColor returns the inherited text color.
	EffectiveColor(n *html.Node) (RGB, error)
	// EffectiveBackground returns the nearest painted background between the
	// element and body, white when none is set.
	EffectiveBackground(n *html.Node) (RGB, error)
	ResolvedFontSizePx(n *html.Node) float64
}

const defaultFontPx = 16

// uaFontSize mirrors the browser default sheet for the elements whose size
// differs from their parent.
var uaFontSize = map[string]string{
	"h1":    "2em",
	"h2":    "1.5em",
	"h3":    "1.17em",
	"h4":    "1em",
	"h5":    "0.83em",
	"h6":    "0.67em",
	"small": "smaller",
}

var fontKeywords = map[string]float64{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    16,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

// Cascade resolves styles from <style> sheets and inline style attributes.
// It is bound to one parsed document and not safe for concurrent use.
type Cascade struct {
	root     *html.Node
	rules    []cssRule
	declared map[*html.Node]map[string]string
	colors   map[*html.Node]colorResult
	sizes    map[*html.Node]float64
}

type colorResult struct {
	rgb RGB
	err error
}

// candidate ranks one declaration for a property.
type candidate struct {
	value       string
	tier        int // 0 sheet, 1 inline, 2 sheet !important, 3 inline !important
	specificity cascadia.Specificity
	rule        int
	index       int
}

func (c candidate) beats(o candidate) bool {
	if c.tier != o.tier {
		return c.tier > o.tier
	}
	if c.specificity != o.specificity {
		return o.specificity.Less(c.specificity)
	}
	if c.rule != o.rule {
		return c.rule > o.rule
	}
	return c.index >= o.index
}

// NewCascade collects the document's style sheets.
func NewCascade(doc *html.Node) *Cascade {
	c := &Cascade{
		declared: make(map[*html.Node]map[string]string),
		colors:   make(map[*html.Node]colorResult),
		sizes:    make(map[*html.Node]float64),
	}
	order := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Namespace == "" {
			switch n.Data {
			case "html":
				if c.root == nil {
					c.root = n
				}
			case "style":
				c.rules = append(c.rules, parseStylesheet(childText(n), &order)...)
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return c
}

func childText(n *html.Node) string {
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.TextNode {
			b.WriteString(ch.Data)
		}
	}
	return b.String()
}

// props returns the winning declared values of the properties the analyzer
// reads: color, background-color and font-size.
func (c *Cascade) props(n *html.Node) map[string]string {
	if p, ok := c.declared[n]; ok {
		return p
	}
	best := make(map[string]candidate)
	offer := func(d declaration, tier int, specificity cascadia.Specificity, rule, index int) {
		prop, value, ok := normalizeDeclaration(d)
		if !ok {
			return
		}
		if d.important {
			tier += 2
		}
		cand := candidate{value: value, tier: tier, specificity: specificity, rule: rule, index: index}
		if cur, ok := best[prop]; !ok || cand.beats(cur) {
			best[prop] = cand
		}
	}
	for _, r := range c.rules {
		specificity, ok := matchSpecificity(r.selectors, n)
		if !ok {
			continue
		}
		for i, d := range r.decls {
			offer(d, 0, specificity, r.order, i)
		}
	}
	if style := attr(n, "style"); style != "" {
		for i, d := range parseDeclarations(style) {
			offer(d, 1, cascadia.Specificity{}, 0, i)
		}
	}
	out := make(map[string]string, len(best))
	for prop, cand := range best {
		out[prop] = cand.value
	}
	c.declared[n] = out
	return out
}

// normalizeDeclaration maps a declaration onto one of the tracked
// properties. The background shorthand contributes its color component, or
// transparent when it names none.
func normalizeDeclaration(d declaration) (prop, value string, ok bool) {
	switch d.prop {
	case "color", "background-color", "font-size":
		return d.prop, d.value, true
	case "background":
		for _, tok := range splitTopLevel(d.value) {
			switch strings.ToLower(tok) {
			case "inherit", "initial", "unset", "currentcolor":
				return "background-color", tok, true
			}
			if _, err := ParseColor(tok); err == nil {
				return "background-color", tok, true
			}
		}
		return "background-color", "transparent", true
	}
	return "", "", false
}

// splitTopLevel splits on whitespace outside parentheses.
func splitTopLevel(v string) []string {
	var (
		out   []string
		depth int
		start = -1
	)
	for i, r := range v {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n'):
			if start >= 0 {
				out = append(out, v[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, v[start:])
	}
	return out
}

// EffectiveColor fails only for an element whose own color is malformed.
// Descendants inheriting from it skip the bad declaration and see the color
// it would have inherited.
func (c *Cascade) EffectiveColor(n *html.Node) (RGB, error) {
	r := c.color(n)
	return r.rgb, r.err
}

func (c *Cascade) color(n *html.Node) colorResult {
	if n == nil || n.Type != html.ElementNode {
		return colorResult{rgb: Black}
	}
	if r, ok := c.colors[n]; ok {
		return r
	}
	var r colorResult
	v := strings.TrimSpace(c.props(n)["color"])
	switch strings.ToLower(v) {
	case "", "inherit", "currentcolor", "unset":
		r.rgb = c.color(elementParent(n)).rgb
	case "initial":
		r.rgb = Black
	default:
		col, err := ParseColor(v)
		if err != nil {
			r.rgb = c.color(elementParent(n)).rgb
			r.err = fmt.Errorf("<%s> color: %w", n.Data, err)
			break
		}
		r.rgb = col.RGB
	}
	c.colors[n] = r
	return r
}

// EffectiveBackground fails when the element's own background is malformed;
// a malformed ancestor background counts as not set.
func (c *Cascade) EffectiveBackground(n *html.Node) (RGB, error) {
	for e := n; e != nil; e = elementParent(e) {
		v := strings.TrimSpace(c.props(e)["background-color"])
		switch strings.ToLower(v) {
		case "", "transparent", "inherit", "initial", "unset":
		case "currentcolor":
			return c.color(e).rgb, nil
		default:
			col, err := ParseColor(v)
			if err != nil {
				if e == n {
					return White, fmt.Errorf("<%s> background: %w", e.Data, err)
				}
				break
			}
			if !col.Transparent() {
				return col.RGB, nil
			}
		}
		if e.Data == "body" {
			break
		}
	}
	return White, nil
}

func (c *Cascade) ResolvedFontSizePx(n *html.Node) float64 {
	if n == nil || n.Type != html.ElementNode {
		return defaultFontPx
	}
	if px, ok := c.sizes[n]; ok {
		return px
	}
	parent := c.ResolvedFontSizePx(elementParent(n))
	v := c.props(n)["font-size"]
	if v == "" {
		v = uaFontSize[n.Data]
	}
	rootPx := float64(defaultFontPx)
	if c.root != nil && n != c.root {
		rootPx = c.ResolvedFontSizePx(c.root)
	}
	px := fontSizePx(v, parent, rootPx)
	c.sizes[n] = px
	return px
}

// fontSizePx resolves a font-size value; anything unparseable keeps the
// parent size.
func fontSizePx(v string, parent, root float64) float64 {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "inherit", "unset":
		return parent
	case "initial":
		return defaultFontPx
	case "smaller":
		return parent / 1.2
	case "larger":
		return parent * 1.2
	}
	if px, ok := fontKeywords[v]; ok {
		return px
	}
	units := []struct {
		suffix string
		scale  func(f float64) float64
	}{
		{"rem", func(f float64) float64 { return f * root }},
		{"em", func(f float64) float64 { return f * parent }},
		{"px", func(f float64) float64 { return f }},
		{"pt", func(f float64) float64 { return f * 4 / 3 }},
		{"%", func(f float64) float64 { return f / 100 * parent }},
	}
	for _, u := range units {
		num, ok := strings.CutSuffix(v, u.suffix)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil || f < 0 {
			return parent
		}
		return u.scale(f)
	}
	return parent
}
