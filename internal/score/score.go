// Package score weighs how much accessibility-relevant markup a document
// carries.
package score

import (
	"regexp"
)

// Weight is one counted name.
type Weight struct {
	Name   string
	Weight int
}

// Weights lists the counted element and property names.
var Weights = []Weight{
	{"area", 1},
	{"background-position-x", 1},
	{"background-position-y", 1},
	{"background-size", 1},
	{"border-radius", 1},
	{"button", 1},
	{"font-size", 1},
	{"height", 1},
	{"html", 1},
	{"img", 1},
	{"input", 5},
	{"left", 1},
	{"letter-spacing", 1},
	{"line-height", 1},
	{"margin", 1},
	{"max-height", 1},
	{"min-height", 1},
	{"min-width", 1},
	{"opacity", 1},
	{"outline-offset", 1},
	{"padding", 1},
	{"right", 1},
	{"select", 3},
	{"text-indent", 1},
	{"textarea", 1},
	{"title", 1},
	{"top", 1},
	{"transform-origin", 1},
	{"width", 1},
	{"z-index", 1},
}

type matcher struct {
	Weight
	tag  *regexp.Regexp
	prop *regexp.Regexp
}

var matchers = func() []matcher {
	out := make([]matcher, 0, len(Weights))
	for _, w := range Weights {
		q := regexp.QuoteMeta(w.Name)
		out = append(out, matcher{
			Weight: w,
			tag:    regexp.MustCompile(`(?i)<` + q + `[^>]*>`),
			prop:   regexp.MustCompile(`(?i)` + q + `:`),
		})
	}
	return out
}()

// Entry is the contribution of one name.
type Entry struct {
	Name       string `json:"name"`
	Weight     int    `json:"weight"`
	Tags       int    `json:"tags"`
	Properties int    `json:"properties"`
}

// Points returns the weighted count.
func (e Entry) Points() int {
	return (e.Tags + e.Properties) * e.Weight
}

// Score is the weighted count of a document. Matching is plain text, so
// property names also count inside longer names ("max-width:" counts for
// width).
type Score struct {
	Total   int     `json:"total"`
	Entries []Entry `json:"entries,omitempty"`
}

// Compute scores text. Entries with no occurrences are left out.
func Compute(text string) Score {
	var s Score
	for _, m := range matchers {
		e := Entry{
			Name:       m.Name,
			Weight:     m.Weight.Weight,
			Tags:       len(m.tag.FindAllStringIndex(text, -1)),
			Properties: len(m.prop.FindAllStringIndex(text, -1)),
		}
		if e.Tags == 0 && e.Properties == 0 {
			continue
		}
		s.Total += e.Points()
		s.Entries = append(s.Entries, e)
	}
	return s
}
