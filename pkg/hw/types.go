// Package hw defines the hardware contracts of the lamp and their
// simulated implementations.
package hw

import (
	"github.com/robotalks/livelamp/pkg/led"
)

// Switch is a digital output, e.g. the pump relay.
type Switch interface {
	Set(on bool)
}

// PWM is a PWM output with a 10-bit duty (0-1023).
type PWM interface {
	SetDuty(duty uint16)
}

// DigitalLine is a digital input, e.g. the radar OUT pin.
type DigitalLine interface {
	Read() bool
}

// LEDSink pushes a frame to the LED ring.
type LEDSink interface {
	Write(frame led.Frame) error
}

// MaxDuty is the full scale duty of PWM.
const MaxDuty = 1023
