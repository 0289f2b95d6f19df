package contrast

import "math"

// Luminance returns the WCAG relative luminance of c.
func Luminance(c RGB) float64 {
	return 0.2126*channel(c.R) + 0.7152*channel(c.G) + 0.0722*channel(c.B)
}

func channel(v uint8) float64 {
	s := float64(v) / 255
	if s <= 0.03928 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// Ratio returns the contrast ratio of two colors rounded to two decimals,
// the precision thresholds are compared at.
func Ratio(a, b RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	hi, lo := math.Max(la, lb), math.Min(la, lb)
	return math.Round((hi+0.05)/(lo+0.05)*100) / 100
}

// LargeTextPx is the font size from which text counts as large.
const LargeTextPx = 24

// Threshold is one WCAG contrast requirement.
type Threshold struct {
	Level string // "AA", "AAA"
	Size  string // "Normal", "Large"
	Min   float64
}

var (
	normalThresholds = []Threshold{{"AA", "Normal", 4.5}, {"AAA", "Normal", 7}}
	largeThresholds  = []Threshold{{"AA", "Large", 3}, {"AAA", "Large", 4.5}}
)

// Failures returns the thresholds ratio misses for text of the given size.
func Failures(ratio, fontPx float64) []Threshold {
	set := normalThresholds
	if fontPx >= LargeTextPx {
		set = largeThresholds
	}
	var out []Threshold
	for _, t := range set {
		if ratio < t.Min {
			out = append(out, t)
		}
	}
	return out
}
