package led

import (
	"errors"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidHex indicates a malformed #rrggbb string.
var ErrInvalidHex = errors.New("invalid hex color")

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

// Colors used as pattern seeds.
var (
	Black = Color{}
	Red   = Color{R: 255}
	Green = Color{G: 255}
)

// RGB builds a Color clamping each channel to [0,255].
func RGB(r, g, b int) Color {
	return Color{R: Clamp(r), G: Clamp(g), B: Clamp(b)}
}

// ParseHex parses "rrggbb" with or without a leading '#'.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, ErrInvalidHex
	}
	for _, ch := range s {
		if !isHexDigit(ch) {
			return Color{}, ErrInvalidHex
		}
	}
	c, err := colorful.Hex("#" + s)
	if err != nil {
		return Color{}, ErrInvalidHex
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex returns the lowercase "#rrggbb" form.
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Pixel returns the color with the given white level.
func (c Color) Pixel(white uint8) Pixel {
	return Pixel{R: c.R, G: c.G, B: c.B, W: white}
}

// Scale multiplies every channel by f, truncating.
func (c Color) Scale(f float64) Color {
	return Color{R: scale(c.R, f), G: scale(c.G, f), B: scale(c.B, f)}
}

// Hue returns the fully saturated color at hue h (degrees) with
// brightness v in [0,1].
func Hue(h, v float64) Color {
	c := colorful.Hsv(h, 1, 1)
	return Color{
		R: channel(c.R * 255 * v),
		G: channel(c.G * 255 * v),
		B: channel(c.B * 255 * v),
	}
}

// Clamp limits v to a channel value.
func Clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

func scale(v uint8, f float64) uint8 {
	return channel(float64(v) * f)
}

func lerp(a, b uint8, t float64) uint8 {
	return channel(float64(a) + (float64(b)-float64(a))*t)
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
