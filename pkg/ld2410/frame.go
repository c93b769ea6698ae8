package ld2410

import (
	"encoding/binary"
	"io"
)

// Frame markers of data reports.
var (
	Header = [4]byte{0xF4, 0xF3, 0xF2, 0xF1}
	Footer = [4]byte{0xF8, 0xF7, 0xF6, 0xF5}
)

// Frame markers of command frames sent to the radar.
var (
	CommandHeader = [4]byte{0xFD, 0xFC, 0xFB, 0xFA}
	CommandFooter = [4]byte{0x04, 0x03, 0x02, 0x01}
)

// Command words.
var (
	CmdEnableConfig = []byte{0xFF, 0x00}
	CmdEndConfig    = []byte{0xFE, 0x00}
)

// MaxPayloadLen caps the declared payload length. A larger value can only
// come from a false header match and triggers a resync.
const MaxPayloadLen = 256

// frameOverhead is header + length field + footer.
const frameOverhead = len(Header) + 2 + len(Footer)

// Encode wraps a payload into a data report frame.
func Encode(payload []byte) []byte {
	return encode(Header, Footer, payload)
}

// EncodeReport encodes a Report as a complete frame.
func EncodeReport(r Report) []byte {
	return Encode(r.Payload())
}

// EncodeCommand builds a command frame from a command word and its value.
func EncodeCommand(word, value []byte) []byte {
	payload := make([]byte, 0, len(word)+len(value))
	payload = append(payload, word...)
	payload = append(payload, value...)
	return encode(CommandHeader, CommandFooter, payload)
}

// EndConfigMode writes the command returning the radar to reporting.
func EndConfigMode(w io.Writer) error {
	_, err := w.Write(EncodeCommand(CmdEndConfig, nil))
	return err
}

func encode(header, footer [4]byte, payload []byte) []byte {
	b := make([]byte, 0, len(payload)+frameOverhead)
	b = append(b, header[:]...)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(payload)))
	b = append(b, payload...)
	return append(b, footer[:]...)
}
