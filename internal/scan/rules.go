package scan

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"ably/internal/diag"
)

// Trim selects how match bounds become a diagnostic range.
type Trim uint8

const (
	// TrimNone reports the raw match.
	TrimNone Trim = iota
	// TrimEdges drops one character at each end, so a match of "<nav ...>"
	// reports "nav ...".
	TrimEdges
)

// Rule is one structural check: a pattern plus the finding it produces.
type Rule struct {
	ID          string
	Code        diag.Code
	Citation    string
	Pattern     string
	Trim        Trim
	Message     string
	Suggestions []string
}

// compile builds the pattern without Multiline: ^ anchors at the start of the
// document only, and rules that need the end of input spell it \z.
func (r Rule) compile() (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(r.Pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	return re, nil
}

const (
	cite131 = "WCAG 2.1 | 1.3.1"
	cite134 = "WCAG 2.1 | 1.3.4"
	cite135 = "WCAG 2.1 | 1.3.5"
	cite144 = "WCAG 2.1 | 1.4.4"
	cite211 = "WCAG 2.1 | 2.1.1"
	cite253 = "WCAG 2.1 | 2.5.3"
	cite413 = "WCAG 2.1 | 4.1.3"

	keyboardMessage = "All functionality should be operable with a keyboard. Choose between the two options."
)

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	rules := []Rule{
		{
			ID:          "1.3.1a",
			Code:        diag.StrNavWithoutList,
			Citation:    cite131,
			Pattern:     `<nav[^>]*>(?:(?!<\/?ul)[\s\S])*<\/nav>`,
			Trim:        TrimEdges,
			Message:     "Navbars should be more accessible. Provide structure and semantic meaning to the navigation links.",
			Suggestions: []string{"Please use lists."},
		},
		{
			ID:       "1.3.1b",
			Code:     diag.StrFooterPlacement,
			Citation: cite131,
			Pattern: `<footer\b[\s\S]*?<\/footer>(?:(?!(header|main|nav|aside|article|section|footer)\b)[\s\S])*?` +
				`(<header\b[\s\S]*?<\/header>|<main\b[\s\S]*?<\/main>|<nav\b[\s\S]*?<\/nav>|<aside\b[\s\S]*?<\/aside>|` +
				`<article\b[\s\S]*?<\/article>|<section\b[\s\S]*?<\/section>|<footer\b[\s\S]*?<\/footer>)` +
				`[\s\S]*?<\/body>[\s\S]*?<\/html>`,
			Trim:        TrimEdges,
			Message:     "The footer element must be in its proper place. There should also be only one footer element per page.",
			Suggestions: []string{"Place the footer element after all other landmark elements and remove duplicates of the footer element, if any."},
		},
	}
	for _, lm := range []struct {
		id   string
		tag  string
		role string
		code diag.Code
	}{
		{"1.3.1c", "main", "main", diag.StrMainRole},
		{"1.3.1d", "header", "banner", diag.StrHeaderRole},
		{"1.3.1e", "nav", "navigation", diag.StrNavRole},
		{"1.3.1f", "aside", "complementary", diag.StrAsideRole},
		{"1.3.1g", "footer", "contentinfo", diag.StrFooterRole},
	} {
		rules = append(rules, Rule{
			ID:          lm.id,
			Code:        lm.code,
			Citation:    cite131,
			Pattern:     fmt.Sprintf(`^(?!.*<%[1]s.*role=["']%[2]s["'].*>).*<%[1]s.*>`, lm.tag, lm.role),
			Trim:        TrimEdges,
			Message:     fmt.Sprintf("The %s landmark element must have additional context.", lm.tag),
			Suggestions: []string{fmt.Sprintf("Add the appropriate role, %s, to the landmark element.", lm.role)},
		})
	}
	rules = append(rules,
		Rule{
			ID:          "1.3.1h",
			Code:        diag.StrSpanFont,
			Citation:    cite131,
			Pattern:     `(span \{[\s\S\n]+?.*?)(font-.*?)[\s\S\n]+?(\})`,
			Trim:        TrimEdges,
			Message:     "Span has a 'font' attribute. Try making it simpler and more intuitive.",
			Suggestions: []string{"Remove this from its style. Use the appropriate HTML tag instead of <span></span>."},
		},
		Rule{
			ID:       "1.3.4",
			Code:     diag.StrFixedPxSizing,
			Citation: cite134,
			Pattern: `(background-position-x|background-position-y|background-size|border-radius|height|left|` +
				`letter-spacing|line-height|margin|max-height|min-height|min-width|opacity|outline-offset|` +
				`padding|right|text-indent|top|transform-origin|(?<!max-)(width)|z-index):.*?\d+px.*?`,
			Message:     "Content should adapt to different screen sizes and display orientation.",
			Suggestions: []string{"Use % for sizes to ensure compatibility with different orientations and add a media query for other screen sizes."},
		},
		Rule{
			ID:          "1.3.5a",
			Code:        diag.StrInputName,
			Citation:    cite135,
			Pattern:     `(<input(?!.*?name=(['"]).*?\2)[^>]*)(>)`,
			Message:     "Headings and labels should be descriptive.",
			Suggestions: []string{"Please add a 'name' attribute (ex: <input name='/>)"},
		},
		Rule{
			ID:          "1.3.5b",
			Code:        diag.StrInputType,
			Citation:    cite135,
			Pattern:     `<(input|textarea|select)(?![^>]*\btype=)([^>]*|)>[ \n]*<\/\1\s*>\z`,
			Message:     "Input elements must have a type attributed to identify their purpose.",
			Suggestions: []string{"Use an appropriate type for input."},
		},
		Rule{
			ID:          "1.4.4",
			Code:        diag.StrFontSizeUnit,
			Citation:    cite144,
			Pattern:     `(font-size:.*?\d+(px|pt).*?)`,
			Message:     "Text content should be scalable to 200% without any loss of information or functionality.",
			Suggestions: []string{"Please change your font size unit from px to other much more flexible units such as rem or em to scale the content effectively."},
		},
		Rule{
			ID:       "2.1.1a",
			Code:     diag.StrDivButton,
			Citation: cite211,
			Pattern:  `(<div(?=.*?class="button")[^>]*)(>)`,
			Message:  keyboardMessage,
			Suggestions: []string{
				"Please change this to <button></button>",
				"Please change the `class` attribute to `role` and add `tabindex=\"0\"` (ex: <div role=\"button\" tabindex=\"0\"></div>)",
			},
		},
		Rule{
			ID:          "2.1.1b",
			Code:        diag.StrDivForm,
			Citation:    cite211,
			Pattern:     `(<div(?=.*?class="form")[^>]*)(>)`,
			Message:     keyboardMessage,
			Suggestions: []string{"Please change this to <form>"},
		},
	)
	for _, lb := range []struct {
		id   string
		tag  string
		code diag.Code
	}{
		{"2.5.3a", "button", diag.StrButtonLabel},
		{"2.5.3b", "input", diag.StrInputLabel},
		{"2.5.3c", "textarea", diag.StrTextareaLabel},
		{"2.5.3d", "select", diag.StrSelectLabel},
	} {
		rules = append(rules, Rule{
			ID:       lb.id,
			Code:     lb.code,
			Citation: cite253,
			Pattern: `<` + lb.tag + `(?![^>]*(?:aria-label|aria-labelledby)[^>]*)` +
				`(?:(?<=\sname=)[^>\s]+)?(?:(?<=\svalue=)['"][^'"]*['"])?(?:\s+aria-label=(?:""|''))?[^>]*>`,
			Trim:        TrimEdges,
			Message:     fmt.Sprintf("The %s element needs more context.", lb.tag),
			Suggestions: []string{fmt.Sprintf("Add the appropriate aria-label to the %s element.", lb.tag)},
		})
	}
	rules = append(rules, Rule{
		ID:          "4.1.3",
		Code:        diag.StrStatusLive,
		Citation:    cite413,
		Pattern:     `<div\s+(?=[^>]*\brole=["']status["'])(?![^>]*\baria-live=["'])[^\s>]*>`,
		Message:     "Status messages should both have an aria-live attribute and \"status\" as its role attribute.",
		Suggestions: []string{"Please add an `aria-live` attribute."},
	})
	return rules
}
