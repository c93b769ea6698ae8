package ld2410

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TargetState is the target classification reported by the radar.
type TargetState byte

// Target states.
const (
	TargetNone   TargetState = 0
	TargetMoving TargetState = 1
	TargetStatic TargetState = 2
	TargetBoth   TargetState = 3
)

var targetStateNames = [...]string{"none", "moving", "static", "both"}

// String implements fmt.Stringer.
func (s TargetState) String() string {
	if int(s) < len(targetStateNames) {
		return targetStateNames[s]
	}
	return fmt.Sprintf("unknown(%d)", byte(s))
}

// ReportKind identifies the type of a decoded payload.
type ReportKind int

// Report kinds.
const (
	KindOther ReportKind = iota
	KindTarget
)

// Report is one decoded radar report. It is only ever produced from a
// frame whose header, length and footer all validated.
type Report struct {
	Kind              ReportKind
	TargetState       TargetState
	MovingDistance    uint16 // cm
	MovingEnergy      uint8
	StaticDistance    uint16 // cm
	StaticEnergy      uint8
	DetectionDistance uint16 // cm
}

// Presence indicates any target was detected.
func (r Report) Presence() bool {
	return r.TargetState != TargetNone
}

// Report types carried in payload[0], followed by reportHead.
const (
	ReportTypeEngineering byte = 0x01
	ReportTypeTarget      byte = 0x02

	reportHead byte = 0xAA
	reportTail byte = 0x55
)

// TargetPayloadLen is the fixed payload size of a basic target report.
const TargetPayloadLen = 13

var (
	// ErrUnknownReport indicates the payload is not a basic target report.
	ErrUnknownReport = errors.New("unknown report type")
	// ErrReportLength indicates a target report with an unexpected size.
	ErrReportLength = errors.New("invalid target report length")
)

// ParseReport maps a frame payload to a Report.
//
// Only basic target reports (02 AA) are recognized. Their declared length
// must match TargetPayloadLen exactly rather than merely being large
// enough, so a frame whose length field was corrupted into another valid
// looking value is rejected.
func ParseReport(payload []byte) (Report, error) {
	if len(payload) < 2 || payload[0] != ReportTypeTarget || payload[1] != reportHead {
		return Report{Kind: KindOther}, ErrUnknownReport
	}
	if len(payload) != TargetPayloadLen {
		return Report{Kind: KindOther}, ErrReportLength
	}
	return Report{
		Kind:              KindTarget,
		TargetState:       TargetState(payload[2]),
		MovingDistance:    binary.LittleEndian.Uint16(payload[3:5]),
		MovingEnergy:      payload[5],
		StaticDistance:    binary.LittleEndian.Uint16(payload[6:8]),
		StaticEnergy:      payload[8],
		DetectionDistance: binary.LittleEndian.Uint16(payload[9:11]),
	}, nil
}

// Payload encodes the report as a basic target report payload.
func (r Report) Payload() []byte {
	p := make([]byte, TargetPayloadLen)
	p[0], p[1], p[2] = ReportTypeTarget, reportHead, byte(r.TargetState)
	binary.LittleEndian.PutUint16(p[3:5], r.MovingDistance)
	p[5] = r.MovingEnergy
	binary.LittleEndian.PutUint16(p[6:8], r.StaticDistance)
	p[8] = r.StaticEnergy
	binary.LittleEndian.PutUint16(p[9:11], r.DetectionDistance)
	p[11], p[12] = reportTail, 0
	return p
}
