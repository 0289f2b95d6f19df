package wcag

import (
	"strings"
)

// Citation is a parsed "WCAG <version> | <criteria>" source string.
type Citation struct {
	Version  string   // "2.1", "2.2"
	Criteria []string // "1.1.1", "2.4.4"; free text kept as a single entry
}

// ParseCitation splits a citation into version and criteria. Unknown shapes
// yield an empty version and the whole string as the only criterion.
func ParseCitation(s string) Citation {
	head, tail, ok := strings.Cut(s, "|")
	if !ok {
		return Citation{Criteria: []string{strings.TrimSpace(s)}}
	}
	head = strings.TrimSpace(head)
	version := strings.TrimSpace(strings.TrimPrefix(head, "WCAG"))
	tail = strings.TrimSpace(tail)

	// "Color Contrast (1.4.3, 1.4.6)"
	if open := strings.IndexByte(tail, '('); open >= 0 && strings.HasSuffix(tail, ")") {
		tail = tail[open+1 : len(tail)-1]
	}
	var criteria []string
	for _, part := range strings.Split(tail, ",") {
		if part = strings.TrimSpace(part); part != "" {
			criteria = append(criteria, part)
		}
	}
	return Citation{Version: version, Criteria: criteria}
}

// URL returns the W3C "Understanding" page of the first criterion, or "".
func (c Citation) URL() string {
	if len(c.Criteria) == 0 {
		return ""
	}
	slug, ok := criterionSlugs[c.Criteria[0]]
	if !ok {
		return ""
	}
	version := "WCAG22"
	if c.Version == "2.1" {
		version = "WCAG21"
	}
	return "https://www.w3.org/WAI/" + version + "/Understanding/" + slug
}

var criterionSlugs = map[string]string{
	"1.1.1":  "non-text-content",
	"1.3.1":  "info-and-relationships",
	"1.3.4":  "orientation",
	"1.3.5":  "identify-input-purpose",
	"1.4.2":  "audio-control",
	"1.4.3":  "contrast-minimum",
	"1.4.4":  "resize-text",
	"1.4.6":  "contrast-enhanced",
	"2.1.1":  "keyboard",
	"2.2.1":  "timing-adjustable",
	"2.2.2":  "pause-stop-hide",
	"2.2.4":  "interruptions",
	"2.4.2":  "page-titled",
	"2.4.3":  "focus-order",
	"2.4.4":  "link-purpose-in-context",
	"2.4.6":  "headings-and-labels",
	"2.4.9":  "link-purpose-link-only",
	"2.4.10": "section-headings",
	"2.5.3":  "label-in-name",
	"3.1.1":  "language-of-page",
	"3.2.2":  "on-input",
	"3.2.5":  "change-on-request",
	"3.3.2":  "labels-or-instructions",
	"4.1.1":  "parsing",
	"4.1.2":  "name-role-value",
	"4.1.3":  "status-messages",
}
