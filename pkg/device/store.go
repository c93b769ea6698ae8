// Package device holds the lamp state and the activities driving it.
//
// Every field group of Store has a single writer: Sensor is written by
// Ingestor, LEDs by Animator, and Lighting, Pump and SMA by the serving
// layer. All of them run as activities of one framework.Scheduler, so the
// store is never accessed concurrently and carries no locks. Code running
// on other goroutines must submit work to the scheduler instead of
// touching the store.
package device

import (
	"time"

	"github.com/robotalks/livelamp/pkg/hw"
	"github.com/robotalks/livelamp/pkg/ld2410"
	"github.com/robotalks/livelamp/pkg/led"
)

// SensorState caches the latest radar report.
type SensorState struct {
	ld2410.Report
	// PresenceGPIO is the level of the radar OUT pin.
	PresenceGPIO bool
	// Updated is the time the last report was applied.
	Updated time.Time
	// Frames counts applied reports.
	Frames uint64
}

// Apply overwrites the cached report.
func (s *SensorState) Apply(r ld2410.Report, at time.Time) {
	s.Report, s.Updated = r, at
	s.Frames++
}

// Store is the device state store.
type Store struct {
	Sensor   SensorState
	Lighting led.Settings
	LEDs     led.Frame
	Pump     *Pump
	SMA      *SMA

	// RGBW is false for rings without a white channel.
	RGBW    bool
	Started time.Time
}

// NewStore creates a Store with everything off.
func NewStore(numLEDs int, rgbw bool, pump *Pump, sma *SMA) *Store {
	return &Store{
		Lighting: led.Settings{Pattern: led.Solid},
		LEDs:     led.NewFrame(numLEDs),
		Pump:     pump,
		SMA:      sma,
		RGBW:     rgbw,
		Started:  time.Now(),
	}
}

// Shutdown turns pump, SMA and LEDs off.
func (s *Store) Shutdown(sink hw.LEDSink) error {
	s.Pump.Off()
	s.SMA.Off()
	s.Lighting = led.Settings{Pattern: led.Solid}
	s.LEDs = led.NewFrame(len(s.LEDs))
	if sink == nil {
		return nil
	}
	return sink.Write(s.LEDs)
}
