package led

import (
	"math"
	"math/rand"
)

const (
	breatheStep = 0.1
	dreamStep   = 0.08
	dreamHueInc = 0.5
	rainbowInc  = 5.0

	fadeSteps = 100
	fireSteps = 150
)

// state is the private per-pattern state, reset on pattern change.
type state struct {
	breathePhase float64

	fadeCurrent  Color
	fadeTarget   Color
	fadeProgress int

	rainbowOffset float64

	fireCurrent  Pixel
	fireTarget   Pixel
	fireProgress int

	dreamPhase float64
	dreamHue   float64
}

func initialState() state {
	return state{
		fadeCurrent: Red,
		fadeTarget:  Green,
		fireCurrent: Pixel{R: 255, G: 180, B: 50, W: 100},
		fireTarget:  Pixel{R: 255, G: 200, B: 30, W: 120},
	}
}

type renderFunc func(e *Engine, s Settings) bool

var renderers = map[Pattern]renderFunc{
	Solid:   (*Engine).renderSolid,
	Breathe: (*Engine).renderBreathe,
	Fade:    (*Engine).renderFade,
	Rainbow: (*Engine).renderRainbow,
	Fire:    (*Engine).renderFire,
	Dream:   (*Engine).renderDream,
}

// Engine renders animation frames. It is not safe for concurrent use.
type Engine struct {
	frame  Frame
	rand   *rand.Rand
	active Pattern
	gen    uint64
	last   Settings
	drawn  bool
	st     state
}

// NewEngine creates an Engine for n LEDs drawing randomness from src.
func NewEngine(n int, src rand.Source) *Engine {
	return &Engine{
		frame: NewFrame(n),
		rand:  rand.New(src),
		st:    initialState(),
	}
}

// Pattern returns the pattern rendered last.
func (e *Engine) Pattern() Pattern {
	return e.active
}

// Render renders one tick of s and advances the pattern by one step.
// The returned bool reports whether the frame changed.
func (e *Engine) Render(s Settings) (Frame, bool) {
	if s.Pattern != e.active || s.Gen != e.gen {
		e.active, e.gen = s.Pattern, s.Gen
		e.st = initialState()
		e.drawn = false
	}
	render, ok := renderers[s.Pattern]
	if !ok {
		return e.frame.Clone(), false
	}
	changed := render(e, s)
	e.last, e.drawn = s, true
	return e.frame.Clone(), changed
}

func (e *Engine) renderSolid(s Settings) bool {
	if e.drawn && e.last == s {
		return false
	}
	e.frame.Fill(s.Color.Pixel(s.White))
	return true
}

// Brightness maps a phase to the breathing level in [0.3,1.0].
func Brightness(phase float64) float64 {
	return 0.3 + 0.7*((math.Sin(phase)+1)/2)
}

func advancePhase(phase, step float64) float64 {
	phase += step
	if phase >= 2*math.Pi {
		return 0
	}
	return phase
}

func (e *Engine) renderBreathe(s Settings) bool {
	b := Brightness(e.st.breathePhase)
	e.frame.Fill(s.Color.Scale(b).Pixel(scale(s.White, b)))
	e.st.breathePhase = advancePhase(e.st.breathePhase, breatheStep)
	return true
}

func (e *Engine) renderFade(Settings) bool {
	t := float64(e.st.fadeProgress) / fadeSteps
	from, to := e.st.fadeCurrent, e.st.fadeTarget
	e.frame.Fill(Pixel{R: lerp(from.R, to.R, t), G: lerp(from.G, to.G, t), B: lerp(from.B, to.B, t)})
	e.st.fadeProgress++
	if e.st.fadeProgress >= fadeSteps {
		e.st.fadeCurrent = e.st.fadeTarget
		e.st.fadeTarget = Color{R: e.between(50, 255), G: e.between(50, 255), B: e.between(50, 255)}
		e.st.fadeProgress = 0
	}
	return true
}

func (e *Engine) renderRainbow(Settings) bool {
	n := float64(len(e.frame))
	for i := range e.frame {
		hue := math.Mod(float64(i)*360/n+e.st.rainbowOffset, 360)
		e.frame.Set(i, Hue(hue, 1).Pixel(0))
	}
	e.st.rainbowOffset = math.Mod(e.st.rainbowOffset+rainbowInc, 360)
	return true
}

func (e *Engine) renderFire(Settings) bool {
	t := float64(e.st.fireProgress) / fireSteps
	from, to := e.st.fireCurrent, e.st.fireTarget
	e.frame.Fill(Pixel{
		R: lerp(from.R, to.R, t),
		G: lerp(from.G, to.G, t),
		B: lerp(from.B, to.B, t),
		W: lerp(from.W, to.W, t),
	})
	e.st.fireProgress++
	if e.st.fireProgress >= fireSteps {
		e.st.fireCurrent = e.st.fireTarget
		// warm spectrum: high red, mid green, low blue.
		e.st.fireTarget = Pixel{
			R: e.between(220, 255),
			G: e.between(100, 220),
			B: e.between(0, 60),
			W: e.between(50, 180),
		}
		e.st.fireProgress = 0
	}
	return true
}

func (e *Engine) renderDream(Settings) bool {
	e.frame.Fill(Hue(e.st.dreamHue, Brightness(e.st.dreamPhase)).Pixel(0))
	e.st.dreamPhase = advancePhase(e.st.dreamPhase, dreamStep)
	e.st.dreamHue = math.Mod(e.st.dreamHue+dreamHueInc, 360)
	return true
}

// between returns a random value in [lo,hi].
func (e *Engine) between(lo, hi int) uint8 {
	return uint8(lo + e.rand.Intn(hi-lo+1))
}
