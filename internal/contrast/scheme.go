package contrast

import (
	"context"
	"strings"
)

// SchemeColor is one color proposed by a scheme service.
type SchemeColor struct {
	Name string
	Hex  string
}

// SchemeSource proposes colors that go with a page background.
type SchemeSource interface {
	Suggest(ctx context.Context, hex string) ([]SchemeColor, error)
}

// SchemeSuggestion is a proposed background with the text color that reads
// best on it.
type SchemeSuggestion struct {
	Name      string `json:"name"`
	Hex       string `json:"hex"`
	TextColor string `json:"textColor"`
}

const genericSuggestion = "Increase the contrast between the text color and its background color."

// buildScheme dedupes colors by name and pairs each with black or white text.
// Colors that do not parse are dropped.
func buildScheme(colors []SchemeColor) []SchemeSuggestion {
	seen := make(map[string]bool, len(colors))
	out := make([]SchemeSuggestion, 0, len(colors))
	for _, c := range colors {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if seen[key] {
			continue
		}
		rgb, err := ParseHex(c.Hex)
		if err != nil {
			continue
		}
		seen[key] = true
		text := White
		if Ratio(rgb, Black) > Ratio(rgb, White) {
			text = Black
		}
		out = append(out, SchemeSuggestion{Name: c.Name, Hex: rgb.Hex(), TextColor: text.Hex()})
	}
	return out
}

func schemeSentence(scheme []SchemeSuggestion) string {
	if len(scheme) == 0 {
		return genericSuggestion
	}
	parts := make([]string, 0, len(scheme))
	for _, s := range scheme {
		parts = append(parts, s.Name+" ("+s.Hex+") with "+s.TextColor+" text")
	}
	return "Consider a higher-contrast color scheme based on the page background: " + strings.Join(parts, ", ") + "."
}
