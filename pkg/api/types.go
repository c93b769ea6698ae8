// Package api is the serving layer of the lamp: a request queue executed
// by the scheduler, the Service operating on device state, and the HTTP
// server and client.
package api

import (
	"fmt"
	"time"

	"github.com/robotalks/livelamp/pkg/device"
	"github.com/robotalks/livelamp/pkg/framework"
	"github.com/robotalks/livelamp/pkg/led"
)

// RequestError is a malformed request. No state was changed.
type RequestError struct {
	Msg string
}

// Error implements error.
func (e *RequestError) Error() string {
	return e.Msg
}

func badRequest(format string, args ...interface{}) error {
	return &RequestError{Msg: fmt.Sprintf(format, args...)}
}

// ErrorReply is the body of a failed request.
type ErrorReply struct {
	Error string `json:"error"`
}

// RadarState is the API view of the sensor cache.
type RadarState struct {
	Presence          bool      `json:"presence"`
	TargetState       uint8     `json:"target_state"`
	Target            string    `json:"target"`
	MovingDistance    uint16    `json:"moving_distance"`
	MovingEnergy      uint8     `json:"moving_energy"`
	StaticDistance    uint16    `json:"static_distance"`
	StaticEnergy      uint8     `json:"static_energy"`
	DetectionDistance uint16    `json:"detection_distance"`
	PresenceGPIO      bool      `json:"presence_gpio"`
	Frames            uint64    `json:"frames"`
	Updated           time.Time `json:"updated"`
}

// LightingState is the API view of the lighting settings.
type LightingState struct {
	R       uint8       `json:"r"`
	G       uint8       `json:"g"`
	B       uint8       `json:"b"`
	Hex     string      `json:"hex"`
	White   uint8       `json:"white"`
	Pattern led.Pattern `json:"pattern"`
}

// WhiteState is the reply of a white change.
type WhiteState struct {
	White int `json:"white"`
}

// Info describes the device.
type Info struct {
	DeviceID   string                    `json:"device_id"`
	LEDs       int                       `json:"leds"`
	RGBW       bool                      `json:"rgbw"`
	Uptime     string                    `json:"uptime"`
	Patterns   []led.Pattern             `json:"patterns"`
	Activities []framework.ActivityStats `json:"activities,omitempty"`
}

// LightingRequest sets the color, either as hex or as r, g, b.
// Pattern and White are optional.
type LightingRequest struct {
	Hex     *string `json:"hex,omitempty"`
	R       *int    `json:"r,omitempty"`
	G       *int    `json:"g,omitempty"`
	B       *int    `json:"b,omitempty"`
	Pattern *string `json:"pattern,omitempty"`
	White   *int    `json:"white,omitempty"`
}

// PatternRequest selects a pattern.
type PatternRequest struct {
	Pattern string `json:"pattern"`
}

// WhiteRequest sets the white channel.
type WhiteRequest struct {
	Brightness *int `json:"brightness"`
}

// PumpRequest switches the pump.
type PumpRequest struct {
	On *bool `json:"on"`
}

// SMARequest sets the SMA power.
type SMARequest struct {
	Percent *int `json:"percent"`
}

// Re-exported device views.
type (
	PumpState = device.PumpState
	SMAState  = device.SMAState
)
