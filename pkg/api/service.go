package api

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/livelamp/pkg/device"
	"github.com/robotalks/livelamp/pkg/framework"
	"github.com/robotalks/livelamp/pkg/led"
)

// Command targets shared by HTTP and MQTT.
const (
	TargetLEDs    = "leds"
	TargetPattern = "pattern"
	TargetWhite   = "white"
	TargetPump    = "pump"
	TargetSMA     = "sma"
)

// Service reads and mutates the device Store. It must only be called
// from an activity of the scheduler owning the Store, i.e. through Queue.
// Every mutating method validates its whole request before changing
// anything.
type Service struct {
	Store    *device.Store
	DeviceID string
	// Stats, when set, reports scheduler activity stats in Info.
	Stats func() []framework.ActivityStats
}

// NewService creates a Service.
func NewService(store *device.Store, deviceID string) *Service {
	return &Service{Store: store, DeviceID: deviceID}
}

// Radar returns the cached sensor state.
func (s *Service) Radar() RadarState {
	st := s.Store.Sensor
	return RadarState{
		Presence:          st.Presence(),
		TargetState:       uint8(st.TargetState),
		Target:            st.TargetState.String(),
		MovingDistance:    st.MovingDistance,
		MovingEnergy:      st.MovingEnergy,
		StaticDistance:    st.StaticDistance,
		StaticEnergy:      st.StaticEnergy,
		DetectionDistance: st.DetectionDistance,
		PresenceGPIO:      st.PresenceGPIO,
		Frames:            st.Frames,
		Updated:           st.Updated,
	}
}

// Lighting returns the lighting settings.
func (s *Service) Lighting() LightingState {
	l := s.Store.Lighting
	return LightingState{
		R:       l.Color.R,
		G:       l.Color.G,
		B:       l.Color.B,
		Hex:     l.Color.Hex(),
		White:   l.White,
		Pattern: l.Pattern,
	}
}

// SetLighting changes color, and optionally pattern and white.
func (s *Service) SetLighting(req LightingRequest) (LightingState, error) {
	settings := s.Store.Lighting
	switch {
	case req.Hex != nil:
		c, err := led.ParseHex(*req.Hex)
		if err != nil {
			return LightingState{}, badRequest("invalid hex %q", *req.Hex)
		}
		settings.Color = c
	case req.R != nil && req.G != nil && req.B != nil:
		settings.Color = led.RGB(*req.R, *req.G, *req.B)
	case req.Pattern == nil && req.White == nil:
		return LightingState{}, badRequest("invalid color format")
	case req.R != nil || req.G != nil || req.B != nil:
		return LightingState{}, badRequest("r, g and b are required together")
	}
	if req.Pattern != nil {
		p, err := led.ParsePattern(*req.Pattern)
		if err != nil {
			return LightingState{}, badRequest("%v", err)
		}
		settings = settings.WithPattern(p)
	}
	if req.White != nil {
		settings = settings.WithWhite(*req.White, s.Store.RGBW)
	}
	s.Store.Lighting = settings
	return s.Lighting(), nil
}

// SetPattern selects the animation pattern.
func (s *Service) SetPattern(req PatternRequest) (LightingState, error) {
	p, err := led.ParsePattern(req.Pattern)
	if err != nil {
		return LightingState{}, badRequest("%v", err)
	}
	s.Store.Lighting = s.Store.Lighting.WithPattern(p)
	return s.Lighting(), nil
}

// SetWhite sets the white channel, or an RGB gray on RGB-only rings.
func (s *Service) SetWhite(req WhiteRequest) (WhiteState, error) {
	if req.Brightness == nil {
		return WhiteState{}, badRequest("brightness is required")
	}
	s.Store.Lighting = s.Store.Lighting.WithWhite(*req.Brightness, s.Store.RGBW)
	return WhiteState{White: int(led.Clamp(*req.Brightness))}, nil
}

// Pump returns the pump state.
func (s *Service) Pump() PumpState {
	return s.Store.Pump.State()
}

// SetPump switches the pump.
func (s *Service) SetPump(req PumpRequest) (PumpState, error) {
	if req.On == nil {
		return PumpState{}, badRequest("on is required")
	}
	if *req.On {
		s.Store.Pump.On()
	} else {
		s.Store.Pump.Off()
	}
	return s.Pump(), nil
}

// SMA returns the SMA state.
func (s *Service) SMA() SMAState {
	return s.Store.SMA.State()
}

// SetSMA sets the SMA power, clamped to [0,100].
func (s *Service) SetSMA(req SMARequest) (SMAState, error) {
	if req.Percent == nil {
		return SMAState{}, badRequest("percent is required")
	}
	s.Store.SMA.SetPercent(*req.Percent)
	return s.SMA(), nil
}

// Info describes the device.
func (s *Service) Info() Info {
	info := Info{
		DeviceID: s.DeviceID,
		LEDs:     len(s.Store.LEDs),
		RGBW:     s.Store.RGBW,
		Uptime:   time.Since(s.Store.Started).Truncate(time.Second).String(),
		Patterns: led.Patterns,
	}
	if s.Stats != nil {
		info.Activities = s.Stats()
	}
	return info
}

// Maintain runs the periodic safety checks.
func (s *Service) Maintain() {
	s.Store.SMA.CheckSafety()
}

type commandFunc func(s *Service, payload []byte) (interface{}, error)

func command[T any](fn func(*Service, T) (interface{}, error)) commandFunc {
	return func(s *Service, payload []byte) (interface{}, error) {
		var req T
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, badRequest("invalid json: %v", err)
		}
		return fn(s, req)
	}
}

var commands = map[string]commandFunc{
	TargetLEDs: command(func(s *Service, req LightingRequest) (interface{}, error) {
		return s.SetLighting(req)
	}),
	TargetPattern: command(func(s *Service, req PatternRequest) (interface{}, error) {
		return s.SetPattern(req)
	}),
	TargetWhite: command(func(s *Service, req WhiteRequest) (interface{}, error) {
		return s.SetWhite(req)
	}),
	TargetPump: command(func(s *Service, req PumpRequest) (interface{}, error) {
		return s.SetPump(req)
	}),
	TargetSMA: command(func(s *Service, req SMARequest) (interface{}, error) {
		return s.SetSMA(req)
	}),
}

// Targets lists the command targets.
func Targets() []string {
	targets := make([]string, 0, len(commands))
	for name := range commands {
		targets = append(targets, name)
	}
	sort.Strings(targets)
	return targets
}

// Command decodes a JSON payload for target and executes it.
func (s *Service) Command(target string, payload []byte) (interface{}, error) {
	cmd, ok := commands[target]
	if !ok {
		return nil, badRequest("unknown target %q", target)
	}
	glog.V(2).Infof("command %s: %s", target, payload)
	return cmd(s, payload)
}
