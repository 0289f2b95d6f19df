package wcag

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookupWHATWGExact(t *testing.T) {
	m, ok := LookupWHATWG("wcag/h37")
	if !ok {
		t.Fatal("wcag/h37 not found")
	}
	if m.Citation != "WCAG 2.2 | 1.1.1" || !m.NeedsImageCaption() {
		t.Fatalf("unexpected mapping %+v", m)
	}
	if _, ok := LookupWHATWG("wcag/h3"); ok {
		t.Fatal("prefix of a rule id must not match")
	}
	if _, ok := LookupWHATWG("no-inline-style"); ok {
		t.Fatal("unmapped rule must not match")
	}
}

func TestLookupW3CFirstMatchWins(t *testing.T) {
	tests := []struct {
		message  string
		citation string
		errMsg   string
	}{
		{
			message:  "An “img” element must have an “alt” attribute, except under certain conditions.",
			citation: "WCAG 2.2 | 1.1.1",
			errMsg:   "Image elements should have an alt attribute.",
		},
		{
			message:  "Element “head” is missing a required instance of child element “title”.",
			citation: "WCAG 2.2 | 2.4.2",
			errMsg:   "Element title cannot be empty, must have text content",
		},
		{
			message:  "Stray end tag “div”.",
			citation: "WCAG 2.2 | 4.1.1",
			errMsg:   "Element must have a proper opening/closing tag.",
		},
		{
			message:  "<select> element does not have a <label>",
			citation: "WCAG 2.2 | 3.3.2",
			errMsg:   "Select is missing a label",
		},
	}
	for _, tt := range tests {
		m, ok := LookupW3C(tt.message)
		if !ok {
			t.Fatalf("no mapping for %q", tt.message)
		}
		if m.Citation != tt.citation || m.ErrorMessage != tt.errMsg {
			t.Errorf("LookupW3C(%q) = %+v", tt.message, m)
		}
	}
	if _, ok := LookupW3C("Trailing slash on void elements has no effect"); ok {
		t.Fatal("unrelated message must not match")
	}
}

func TestDictionariesWellFormed(t *testing.T) {
	for _, rules := range [][]RuleMapping{WHATWGRules(), W3CRules()} {
		for _, m := range rules {
			if m.RuleID == "" || m.ErrorMessage == "" || m.Suggestion == "" {
				t.Errorf("incomplete mapping %+v", m)
			}
			if !strings.HasPrefix(m.Citation, "WCAG 2.2 | ") {
				t.Errorf("citation %q of %q", m.Citation, m.RuleID)
			}
		}
	}
}

func TestParseCitation(t *testing.T) {
	tests := []struct {
		in   string
		want Citation
	}{
		{"WCAG 2.2 | 1.1.1, 2.4.4, 2.4.9", Citation{Version: "2.2", Criteria: []string{"1.1.1", "2.4.4", "2.4.9"}}},
		{"WCAG 2.1 | Color Contrast (1.4.3, 1.4.6)", Citation{Version: "2.1", Criteria: []string{"1.4.3", "1.4.6"}}},
		{"custom", Citation{Criteria: []string{"custom"}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseCitation(tt.in)); diff != "" {
			t.Errorf("ParseCitation(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
	if url := ParseCitation("WCAG 2.1 | 4.1.3").URL(); url != "https://www.w3.org/WAI/WCAG21/Understanding/status-messages" {
		t.Fatalf("URL = %q", url)
	}
}
