package device

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/livelamp/pkg/hw"
)

// PumpState is the API view of Pump.
type PumpState struct {
	On bool `json:"on"`
}

// Pump is the on/off pump.
type Pump struct {
	out hw.Switch
	on  bool
}

// NewPump creates a Pump and switches it off.
func NewPump(out hw.Switch) *Pump {
	p := &Pump{out: out}
	p.Off()
	return p
}

// On turns the pump on.
func (p *Pump) On() { p.set(true) }

// Off turns the pump off.
func (p *Pump) Off() { p.set(false) }

// Toggle inverts the pump state.
func (p *Pump) Toggle() { p.set(!p.on) }

// IsOn reports whether the pump runs.
func (p *Pump) IsOn() bool { return p.on }

// State returns the API view.
func (p *Pump) State() PumpState {
	return PumpState{On: p.on}
}

func (p *Pump) set(on bool) {
	p.out.Set(on)
	p.on = on
}

// Defaults of the SMA driver.
const (
	DefaultSMAFreq       = 25000
	DefaultSafetyTimeout = 5 * time.Second
)

// SMAState is the API view of SMA.
type SMAState struct {
	Percent int `json:"percent"`
	Freq    int `json:"freq"`
}

// SMA drives the shape memory alloy wire by PWM duty.
type SMA struct {
	// SafetyTimeout switches the wire off after being powered this
	// long without a new command. 0 disables it.
	SafetyTimeout time.Duration
	Now           func() time.Time

	out     hw.PWM
	freq    int
	percent int
	since   time.Time
}

// NewSMA creates an SMA driver, off.
func NewSMA(out hw.PWM, freq int, safetyTimeout time.Duration) *SMA {
	if freq <= 0 {
		freq = DefaultSMAFreq
	}
	s := &SMA{out: out, freq: freq, SafetyTimeout: safetyTimeout}
	s.Off()
	return s
}

// SetPercent sets the power, clamped to [0,100].
func (s *SMA) SetPercent(percent int) {
	switch {
	case percent < 0:
		percent = 0
	case percent > 100:
		percent = 100
	}
	s.out.SetDuty(uint16(percent * hw.MaxDuty / 100))
	s.percent = percent
	s.since = s.now()
}

// Off sets 0%.
func (s *SMA) Off() {
	s.SetPercent(0)
}

// Percent returns the current power.
func (s *SMA) Percent() int { return s.percent }

// State returns the API view.
func (s *SMA) State() SMAState {
	return SMAState{Percent: s.percent, Freq: s.freq}
}

// CheckSafety turns the wire off when it has been powered longer than
// SafetyTimeout, and reports whether it did.
func (s *SMA) CheckSafety() bool {
	if s.SafetyTimeout <= 0 || s.percent == 0 {
		return false
	}
	if s.now().Sub(s.since) < s.SafetyTimeout {
		return false
	}
	glog.Warningf("sma powered at %d%% for %v, switching off", s.percent, s.SafetyTimeout)
	s.Off()
	return true
}

func (s *SMA) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
