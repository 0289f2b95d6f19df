package contrast

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// RGB is an opaque sRGB color.
type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// Hex returns the lowercase #rrggbb form.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Color is a parsed CSS color value; Alpha 0 means transparent.
type Color struct {
	RGB
	Alpha float64
}

// Transparent reports whether the color paints nothing.
func (c Color) Transparent() bool {
	return c.Alpha == 0
}

// ErrBadColor is returned for values that are not CSS colors.
var ErrBadColor = errors.New("malformed color")

// rebeccapurple is the one CSS named color the SVG 1.1 table lacks.
var rebeccaPurple = RGB{0x66, 0x33, 0x99}

// ParseColor parses #rgb, #rgba, #rrggbb, #rrggbbaa, rgb()/rgba() and
// hsl()/hsla() in comma or space syntax, the transparent keyword and named
// colors. Alpha only decides transparency; partially transparent colors are
// treated as opaque.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return Color{}, ErrBadColor
	case v == "transparent":
		return Color{Alpha: 0}, nil
	case v == "rebeccapurple":
		return Color{RGB: rebeccaPurple, Alpha: 1}, nil
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		return parseRGBFunc(v)
	case strings.HasPrefix(v, "hsl(") || strings.HasPrefix(v, "hsla("):
		return parseHSLFunc(v)
	}
	if c, ok := colornames.Map[v]; ok {
		return Color{RGB: RGB{c.R, c.G, c.B}, Alpha: 1}, nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// ParseHex parses "#rrggbb", "rrggbb" and the short forms into an RGB.
func ParseHex(s string) (RGB, error) {
	c, err := parseHex(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	return c.RGB, err
}

func parseHex(h string) (Color, error) {
	var digits [8]uint8
	n := len(h)
	if n != 3 && n != 4 && n != 6 && n != 8 {
		return Color{}, fmt.Errorf("%w: #%s", ErrBadColor, h)
	}
	for i := 0; i < n; i++ {
		d, ok := hexDigit(h[i])
		if !ok {
			return Color{}, fmt.Errorf("%w: #%s", ErrBadColor, h)
		}
		digits[i] = d
	}
	c := Color{Alpha: 1}
	switch n {
	case 3, 4:
		c.R, c.G, c.B = digits[0]*17, digits[1]*17, digits[2]*17
		if n == 4 {
			c.Alpha = float64(digits[3]*17) / 255
		}
	case 6, 8:
		c.R = digits[0]<<4 | digits[1]
		c.G = digits[2]<<4 | digits[3]
		c.B = digits[4]<<4 | digits[5]
		if n == 8 {
			c.Alpha = float64(digits[6]<<4|digits[7]) / 255
		}
	}
	return c, nil
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// funcArgs splits the arguments of rgb()/hsl() in either syntax; it expects
// three channels and an optional alpha.
func funcArgs(v string) ([]string, error) {
	open := strings.IndexByte(v, '(')
	if !strings.HasSuffix(v, ")") {
		return nil, fmt.Errorf("%w: %q", ErrBadColor, v)
	}
	body := strings.ReplaceAll(v[open+1:len(v)-1], "/", " ")
	parts := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrBadColor, v)
	}
	return parts, nil
}

func parseAlpha(parts []string, c *Color) error {
	if len(parts) < 4 {
		return nil
	}
	a, err := parseChannel(parts[3], 1)
	if err != nil {
		return err
	}
	c.Alpha = clamp(a, 0, 1)
	return nil
}

func parseRGBFunc(v string) (Color, error) {
	parts, err := funcArgs(v)
	if err != nil {
		return Color{}, err
	}
	c := Color{Alpha: 1}
	channels := [3]*uint8{&c.R, &c.G, &c.B}
	for i, ch := range channels {
		f, err := parseChannel(parts[i], 255)
		if err != nil {
			return Color{}, err
		}
		*ch = uint8(math.Round(clamp(f, 0, 255)))
	}
	if err := parseAlpha(parts, &c); err != nil {
		return Color{}, err
	}
	return c, nil
}

// hueUnits are tried in order, so "grad" comes before "rad".
var hueUnits = []struct {
	suffix string
	deg    float64
}{
	{"deg", 1},
	{"grad", 0.9},
	{"rad", 180 / math.Pi},
	{"turn", 360},
}

func parseHue(s string) (float64, error) {
	scale := 1.0
	for _, u := range hueUnits {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			s, scale = num, u.deg
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: hue %q", ErrBadColor, s)
	}
	h := math.Mod(f*scale, 360)
	if h < 0 {
		h += 360
	}
	return h, nil
}

func parseHSLFunc(v string) (Color, error) {
	parts, err := funcArgs(v)
	if err != nil {
		return Color{}, err
	}
	h, err := parseHue(parts[0])
	if err != nil {
		return Color{}, err
	}
	// saturation и lightness: проценты, голое число читается так же
	var sl [2]float64
	for i := range sl {
		f, err := parseChannel(strings.TrimSuffix(parts[i+1], "%")+"%", 1)
		if err != nil {
			return Color{}, err
		}
		sl[i] = clamp(f, 0, 1)
	}
	c := Color{Alpha: 1}
	c.R, c.G, c.B = colorful.Hsl(h, sl[0], sl[1]).Clamped().RGB255()
	if err := parseAlpha(parts, &c); err != nil {
		return Color{}, err
	}
	return c, nil
}

// parseChannel reads a number or a percentage of full.
func parseChannel(s string, full float64) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		return f / 100 * full, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return f, nil
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}
