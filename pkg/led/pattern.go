package led

import (
	"fmt"
	"strings"
	"time"
)

// Pattern is a named animation behavior.
type Pattern string

// Patterns.
const (
	Solid   Pattern = "solid"
	Breathe Pattern = "breathe"
	Fade    Pattern = "fade"
	Rainbow Pattern = "rainbow"
	Fire    Pattern = "fire"
	Dream   Pattern = "dream"
)

// Patterns lists all known patterns.
var Patterns = []Pattern{Solid, Breathe, Fade, Rainbow, Fire, Dream}

// ParsePattern validates a pattern name, case-insensitively.
func ParsePattern(name string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Patterns {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown pattern %q", name)
}

// Cadence maps a pattern to its render interval.
type Cadence map[Pattern]time.Duration

// DefaultInterval is used for patterns missing from a Cadence.
const DefaultInterval = 100 * time.Millisecond

// DefaultCadence returns the stock render intervals.
func DefaultCadence() Cadence {
	return Cadence{
		Solid:   100 * time.Millisecond,
		Breathe: 30 * time.Millisecond,
		Fade:    50 * time.Millisecond,
		Rainbow: 50 * time.Millisecond,
		Fire:    60 * time.Millisecond,
		Dream:   30 * time.Millisecond,
	}
}

// Interval returns the render interval of p.
func (c Cadence) Interval(p Pattern) time.Duration {
	if d, ok := c[p]; ok && d > 0 {
		return d
	}
	return DefaultInterval
}

// Settings is the requested lighting. Only the serving layer writes it;
// the Engine reads it every tick.
type Settings struct {
	Pattern Pattern
	Color   Color
	White   uint8
	// Gen counts pattern selections. The Engine resets pattern state
	// whenever it differs from the one rendered last.
	Gen uint64
}

// WithPattern selects p. Selecting a different pattern starts a new
// generation even if the Engine has not rendered the previous one.
func (s Settings) WithPattern(p Pattern) Settings {
	if p != s.Pattern {
		s.Pattern = p
		s.Gen++
	}
	return s
}

// WithWhite sets the white level. Rings without a white channel show
// it as an RGB gray instead.
func (s Settings) WithWhite(brightness int, rgbw bool) Settings {
	v := Clamp(brightness)
	if rgbw {
		s.White = v
	} else {
		s.Color = Color{R: v, G: v, B: v}
	}
	return s
}
