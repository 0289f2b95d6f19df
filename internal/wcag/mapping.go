// Package wcag holds the static rule dictionaries that translate external
// validator findings into WCAG-cited diagnostics.
package wcag

import (
	"strings"
)

// RuleMapping translates one validator rule into a WCAG finding.
type RuleMapping struct {
	RuleID       string
	Citation     string
	ErrorMessage string
	Suggestion   string
}

// ImageAltMarker identifies suggestions eligible for alt-text enrichment.
const ImageAltMarker = "Please add an 'alt' attribute to your image"

// ImageAltPrefix starts an enriched image suggestion.
const ImageAltPrefix = "Please add an 'alt' attribute to your image element to ensure accessibility"

// NeedsImageCaption reports whether the mapping asks for an image alt text.
func (m RuleMapping) NeedsImageCaption() bool {
	return strings.Contains(m.Suggestion, ImageAltMarker)
}

// LookupWHATWG returns the mapping for an exact WHATWG rule id.
func LookupWHATWG(ruleID string) (RuleMapping, bool) {
	m, ok := whatwgIndex[ruleID]
	return m, ok
}

// LookupW3C returns the first mapping whose rule id occurs in message.
func LookupW3C(message string) (RuleMapping, bool) {
	for _, m := range w3cRules {
		if strings.Contains(message, m.RuleID) {
			return m, true
		}
	}
	return RuleMapping{}, false
}

// WHATWGRules returns a copy of the WHATWG dictionary in declaration order.
func WHATWGRules() []RuleMapping {
	return append([]RuleMapping(nil), whatwgRules...)
}

// W3CRules returns a copy of the W3C dictionary in lookup order.
func W3CRules() []RuleMapping {
	return append([]RuleMapping(nil), w3cRules...)
}

var whatwgIndex = func() map[string]RuleMapping {
	idx := make(map[string]RuleMapping, len(whatwgRules))
	for _, m := range whatwgRules {
		idx[m.RuleID] = m
	}
	return idx
}()
