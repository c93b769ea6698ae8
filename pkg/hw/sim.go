package hw

import (
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/livelamp/pkg/ld2410"
	"github.com/robotalks/livelamp/pkg/led"
)

// SimSwitch is a Switch only logging its state.
type SimSwitch struct {
	Name string
	On   bool
}

// Set implements Switch.
func (s *SimSwitch) Set(on bool) {
	if s.On != on {
		glog.V(2).Infof("sim %s: %v", s.Name, on)
	}
	s.On = on
}

// SimPWM is a PWM only logging its duty.
type SimPWM struct {
	Name string
	Duty uint16
}

// SetDuty implements PWM.
func (p *SimPWM) SetDuty(duty uint16) {
	if p.Duty != duty {
		glog.V(2).Infof("sim %s: duty %d", p.Name, duty)
	}
	p.Duty = duty
}

// SimLine is a DigitalLine with a settable level.
type SimLine struct {
	High bool
}

// Read implements DigitalLine.
func (l *SimLine) Read() bool {
	return l.High
}

// SimLEDSink records written frames.
type SimLEDSink struct {
	Writes int
	Last   led.Frame
}

// Write implements LEDSink.
func (s *SimLEDSink) Write(frame led.Frame) error {
	s.Writes++
	s.Last = frame.Clone()
	if glog.V(4) && len(frame) > 0 {
		glog.Infof("sim leds: %+v", frame[0])
	}
	return nil
}

// SimRadar produces an LD2410 byte stream of a target wandering in
// front of the radar, mixed with line noise and corrupt frames.
// It implements ld2410.ByteSource and can be read from any goroutine.
type SimRadar struct {
	// Period is the report rate.
	Period time.Duration
	// Noise is the probability of garbage or a corrupt frame before a
	// report.
	Noise float64
	// Now is the clock, defaults to time.Now.
	Now func() time.Time

	lock   sync.Mutex
	rand   *rand.Rand
	buf    []byte
	last   time.Time
	report ld2410.Report
}

// NewSimRadar creates a SimRadar.
func NewSimRadar(src rand.Source) *SimRadar {
	return &SimRadar{
		Period: 100 * time.Millisecond,
		Noise:  0.05,
		rand:   rand.New(src),
		report: ld2410.Report{
			Kind:              ld2410.KindTarget,
			TargetState:       ld2410.TargetStatic,
			StaticDistance:    150,
			StaticEnergy:      40,
			DetectionDistance: 150,
		},
	}
}

// Available implements ld2410.ByteSource.
func (r *SimRadar) Available() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	now := r.now()
	if now.Sub(r.last) >= r.Period {
		r.last = now
		r.emit()
	}
	return len(r.buf)
}

// Read implements ld2410.ByteSource.
func (r *SimRadar) Read(p []byte) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// Report returns the last emitted report.
func (r *SimRadar) Report() ld2410.Report {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.report
}

// Presence returns a DigitalLine following the simulated target.
func (r *SimRadar) Presence() DigitalLine {
	return simPresence{r}
}

type simPresence struct {
	radar *SimRadar
}

func (p simPresence) Read() bool {
	return p.radar.Report().Presence()
}

func (r *SimRadar) emit() {
	if r.rand.Float64() < r.Noise {
		garbage := make([]byte, 1+r.rand.Intn(8))
		r.rand.Read(garbage)
		r.buf = append(r.buf, garbage...)
	}
	if r.rand.Float64() < r.Noise {
		bad := ld2410.EncodeReport(r.report)
		bad[len(bad)-1] ^= 0x5A
		r.buf = append(r.buf, bad...)
	}
	r.wander()
	r.buf = append(r.buf, ld2410.EncodeReport(r.report)...)
}

func (r *SimRadar) wander() {
	rep := &r.report
	rep.StaticDistance = walk(r.rand, rep.StaticDistance, 10, 30, 600)
	rep.StaticEnergy = uint8(walk(r.rand, uint16(rep.StaticEnergy), 5, 0, 100))
	switch n := r.rand.Intn(100); {
	case n < 5:
		rep.TargetState = ld2410.TargetNone
	case n < 30:
		rep.TargetState = ld2410.TargetMoving
	case n < 40:
		rep.TargetState = ld2410.TargetBoth
	case n < 80:
		rep.TargetState = ld2410.TargetStatic
	}
	if rep.TargetState == ld2410.TargetNone {
		rep.MovingDistance, rep.MovingEnergy, rep.DetectionDistance = 0, 0, 0
		return
	}
	rep.MovingDistance = walk(r.rand, rep.MovingDistance, 20, 30, 600)
	rep.MovingEnergy = uint8(walk(r.rand, uint16(rep.MovingEnergy), 10, 0, 100))
	rep.DetectionDistance = rep.StaticDistance
	if rep.MovingDistance < rep.DetectionDistance {
		rep.DetectionDistance = rep.MovingDistance
	}
}

func walk(rnd *rand.Rand, v, step, lo, hi uint16) uint16 {
	n := int(v) + rnd.Intn(2*int(step)+1) - int(step)
	switch {
	case n < int(lo):
		return lo
	case n > int(hi):
		return hi
	}
	return uint16(n)
}

func (r *SimRadar) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
