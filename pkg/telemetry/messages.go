package telemetry

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/livelamp/pkg/device"
	"github.com/robotalks/livelamp/pkg/led"
)

// RadarReport is the protobuf telemetry of the sensor cache.
type RadarReport struct {
	TargetState       uint32 `protobuf:"varint,1,opt,name=target_state,proto3" json:"target_state,omitempty"`
	MovingDistance    uint32 `protobuf:"varint,2,opt,name=moving_distance,proto3" json:"moving_distance,omitempty"`
	MovingEnergy      uint32 `protobuf:"varint,3,opt,name=moving_energy,proto3" json:"moving_energy,omitempty"`
	StaticDistance    uint32 `protobuf:"varint,4,opt,name=static_distance,proto3" json:"static_distance,omitempty"`
	StaticEnergy      uint32 `protobuf:"varint,5,opt,name=static_energy,proto3" json:"static_energy,omitempty"`
	DetectionDistance uint32 `protobuf:"varint,6,opt,name=detection_distance,proto3" json:"detection_distance,omitempty"`
	PresenceGpio      bool   `protobuf:"varint,7,opt,name=presence_gpio,proto3" json:"presence_gpio,omitempty"`
	Frames            uint64 `protobuf:"varint,8,opt,name=frames,proto3" json:"frames,omitempty"`
	UpdatedMs         int64  `protobuf:"varint,9,opt,name=updated_ms,proto3" json:"updated_ms,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *RadarReport) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RadarReport) Reset() { *m = RadarReport{} }

// String implements proto.Message.
func (m *RadarReport) String() string { return proto.CompactTextString(m) }

// NewRadarReport converts the sensor cache.
func NewRadarReport(s *device.SensorState) *RadarReport {
	m := &RadarReport{
		TargetState:       uint32(s.TargetState),
		MovingDistance:    uint32(s.MovingDistance),
		MovingEnergy:      uint32(s.MovingEnergy),
		StaticDistance:    uint32(s.StaticDistance),
		StaticEnergy:      uint32(s.StaticEnergy),
		DetectionDistance: uint32(s.DetectionDistance),
		PresenceGpio:      s.PresenceGPIO,
		Frames:            s.Frames,
	}
	if !s.Updated.IsZero() {
		m.UpdatedMs = s.Updated.UnixNano() / 1e6
	}
	return m
}

// LightingState is the protobuf telemetry of the LED ring.
type LightingState struct {
	Pattern string `protobuf:"bytes,1,opt,name=pattern,proto3" json:"pattern,omitempty"`
	// Color is 0xRRGGBB.
	Color uint32 `protobuf:"varint,2,opt,name=color,proto3" json:"color,omitempty"`
	White uint32 `protobuf:"varint,3,opt,name=white,proto3" json:"white,omitempty"`
	// Pixels is the rendered frame, 4 bytes (RGBW) per LED.
	Pixels []byte `protobuf:"bytes,4,opt,name=pixels,proto3" json:"pixels,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *LightingState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LightingState) Reset() { *m = LightingState{} }

// String implements proto.Message.
func (m *LightingState) String() string { return proto.CompactTextString(m) }

// NewLightingState converts settings and the rendered frame.
func NewLightingState(s led.Settings, frame led.Frame) *LightingState {
	m := &LightingState{
		Pattern: string(s.Pattern),
		Color:   uint32(s.Color.R)<<16 | uint32(s.Color.G)<<8 | uint32(s.Color.B),
		White:   uint32(s.White),
		Pixels:  make([]byte, 0, len(frame)*4),
	}
	for _, p := range frame {
		m.Pixels = append(m.Pixels, p.R, p.G, p.B, p.W)
	}
	return m
}
