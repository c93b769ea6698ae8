package device

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/livelamp/pkg/hw"
	"github.com/robotalks/livelamp/pkg/ld2410"
	"github.com/robotalks/livelamp/pkg/led"
)

// Activity names.
const (
	IngestActivity  = "ingest"
	AnimateActivity = "animate"
)

// Defaults of Ingestor.
const (
	DefaultIngestInterval = 100 * time.Millisecond
	DefaultIngestBudget   = 20 * time.Millisecond
)

// Ingestor decodes radar bytes into Store.Sensor.
type Ingestor struct {
	Store    *Store
	Source   ld2410.ByteSource
	Presence hw.DigitalLine
	Decoder  *ld2410.Decoder
	Interval time.Duration
	Budget   time.Duration
	Now      func() time.Time
}

// NewIngestor creates an Ingestor. presence may be nil.
func NewIngestor(store *Store, src ld2410.ByteSource, presence hw.DigitalLine) *Ingestor {
	return &Ingestor{
		Store:    store,
		Source:   src,
		Presence: presence,
		Decoder:  ld2410.NewDecoder(),
		Interval: DefaultIngestInterval,
		Budget:   DefaultIngestBudget,
	}
}

// Name implements framework.Activity.
func (g *Ingestor) Name() string {
	return IngestActivity
}

// Run implements framework.Activity.
func (g *Ingestor) Run(ctx context.Context) (time.Duration, error) {
	report, ok, err := g.Decoder.Poll(g.Source, g.Budget)
	if ok {
		g.Store.Sensor.Apply(report, g.now())
		glog.V(4).Infof("radar: %s moving=%d static=%d", report.TargetState, report.MovingDistance, report.StaticDistance)
	}
	if g.Presence != nil {
		g.Store.Sensor.PresenceGPIO = g.Presence.Read()
	}
	if err != nil {
		return 0, fmt.Errorf("radar read: %w", err)
	}
	return g.Interval, nil
}

func (g *Ingestor) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Animator renders Store.Lighting into Store.LEDs and the LED sink.
type Animator struct {
	Store   *Store
	Engine  *led.Engine
	Sink    hw.LEDSink
	Cadence led.Cadence

	// dirty is set while the last rendered change has not reached the sink.
	dirty bool
}

// NewAnimator creates an Animator.
func NewAnimator(store *Store, engine *led.Engine, sink hw.LEDSink, cadence led.Cadence) *Animator {
	if cadence == nil {
		cadence = led.DefaultCadence()
	}
	return &Animator{Store: store, Engine: engine, Sink: sink, Cadence: cadence}
}

// Name implements framework.Activity.
func (a *Animator) Name() string {
	return AnimateActivity
}

// Run implements framework.Activity.
func (a *Animator) Run(ctx context.Context) (time.Duration, error) {
	frame, changed := a.Engine.Render(a.Store.Lighting)
	a.Store.LEDs = frame
	a.dirty = a.dirty || changed
	if a.dirty && a.Sink != nil {
		if err := a.Sink.Write(frame); err != nil {
			return 0, fmt.Errorf("led write: %w", err)
		}
		a.dirty = false
	}
	return a.Cadence.Interval(a.Store.Lighting.Pattern), nil
}
