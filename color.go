package nib

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1] and is not premultiplied.
type RGBA struct {
	R, G, B, A float64
}

// RGBA implements color.Color.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return c.premul8().RGBA()
}

// NRGBA converts c to an 8-bit non-premultiplied color.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp255(c.R*255 + 0.5)),
		G: uint8(clamp255(c.G*255 + 0.5)),
		B: uint8(clamp255(c.B*255 + 0.5)),
		A: uint8(clamp255(c.A*255 + 0.5)),
	}
}

// premul8 converts c to an 8-bit premultiplied color.
func (c RGBA) premul8() color.RGBA {
	return color.RGBAModel.Convert(c.NRGBA()).(color.RGBA)
}

// Opaque returns c with alpha forced to 1.
func (c RGBA) Opaque() RGBA {
	c.A = 1
	return c
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with optional '#' prefix.
// Malformed input yields opaque black.
func Hex(hex string) RGBA {
	c, err := parseHexColor(hex)
	if err != nil {
		return Black
	}
	return c
}

// ParseColor parses a hex color (see Hex) or an SVG 1.1 color keyword such
// as "black" or "cornflowerblue".
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return FromColor(c), nil
	}
	return parseHexColor(s)
}

func parseHexColor(hex string) (RGBA, error) {
	digits := strings.TrimPrefix(hex, "#")

	var v [8]uint32
	for i := 0; i < len(digits); i++ {
		d, ok := hexDigit(digits[i])
		if !ok || i >= len(v) {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
		}
		v[i] = d
	}

	var r, g, b, a uint32
	switch len(digits) {
	case 3:
		r, g, b, a = v[0]*17, v[1]*17, v[2]*17, 255
	case 4:
		r, g, b, a = v[0]*17, v[1]*17, v[2]*17, v[3]*17
	case 6:
		r, g, b, a = v[0]<<4|v[1], v[2]<<4|v[3], v[4]<<4|v[5], 255
	case 8:
		r, g, b, a = v[0]<<4|v[1], v[2]<<4|v[3], v[4]<<4|v[5], v[6]<<4|v[7]
	default:
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, nil
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return uint32(c - 'A' + 10), true
	default:
		return 0, false
	}
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Transparent = RGBA{}
)
