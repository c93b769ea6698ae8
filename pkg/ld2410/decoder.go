package ld2410

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/golang/glog"
)

// ByteSource is a non-blocking byte stream, e.g. a buffered UART.
type ByteSource interface {
	// Available returns the number of bytes readable without blocking.
	Available() int
	// Read reads up to len(p) bytes.
	Read(p []byte) (int, error)
}

type decodeState int

const (
	stateSeekHeader decodeState = iota // matching header bytes
	stateLength                        // header matched, reading u16 length
	stateBody                          // reading payload and footer
)

// DecoderStats counts decoder events.
type DecoderStats struct {
	Frames  uint64 // target reports emitted
	Ignored uint64 // valid frames with an unrecognized payload
	Resyncs uint64 // corrupt frames or false headers
}

// Decoder extracts Reports from a boundary-less byte stream.
//
// It never holds more than one frame worth of bytes: everything before a
// header is dropped as it arrives, and the bytes after a header are bounded
// by MaxPayloadLen.
type Decoder struct {
	Stats DecoderStats

	state   decodeState
	matched int    // header bytes matched in stateSeekHeader
	buf     []byte // bytes following the header: length, payload, footer
	need    int    // expected len(buf) in stateBody
	pending []Report
	readBuf []byte
}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, MaxPayloadLen+2+len(Footer))}
}

// Reset drops all partial state.
func (d *Decoder) Reset() {
	d.state, d.matched, d.need = stateSeekHeader, 0, 0
	d.buf, d.pending = d.buf[:0], nil
}

// Ingest consumes one byte and returns a report if one completed.
// When a resync uncovers more than one report, the extra ones are returned
// by subsequent calls.
func (d *Decoder) Ingest(b byte) (Report, bool) {
	d.parseByte(b)
	if len(d.pending) == 0 {
		return Report{}, false
	}
	r := d.pending[0]
	d.pending = d.pending[1:]
	return r, true
}

// Feed consumes a chunk and returns all reports completed by it.
func (d *Decoder) Feed(p []byte) []Report {
	for _, b := range p {
		d.parseByte(b)
	}
	reports := d.pending
	d.pending = nil
	return reports
}

// Poll drains bytes currently available from src, for at most budget,
// and returns the newest report decoded. It never waits for data.
// Read errors are returned after the bytes read so far are decoded; the
// decoder state stays valid either way.
func (d *Decoder) Poll(src ByteSource, budget time.Duration) (latest Report, ok bool, err error) {
	if d.readBuf == nil {
		d.readBuf = make([]byte, 64)
	}
	deadline := time.Now().Add(budget)
	for {
		avail := src.Available()
		if avail <= 0 {
			break
		}
		if avail > len(d.readBuf) {
			avail = len(d.readBuf)
		}
		n, rerr := src.Read(d.readBuf[:avail])
		if n > 0 {
			for _, r := range d.Feed(d.readBuf[:n]) {
				latest, ok = r, true
			}
		}
		if rerr != nil {
			return latest, ok, rerr
		}
		if n == 0 || !time.Now().Before(deadline) {
			break
		}
	}
	return
}

func (d *Decoder) parseByte(b byte) {
	switch d.state {
	case stateSeekHeader:
		switch {
		case b == Header[d.matched]:
			d.matched++
			if d.matched == len(Header) {
				d.matched = 0
				d.buf = d.buf[:0]
				d.state = stateLength
			}
		case b == Header[0]:
			// header bytes are distinct, so only a restart can overlap.
			d.matched = 1
		default:
			d.matched = 0
		}
	case stateLength:
		d.buf = append(d.buf, b)
		if len(d.buf) < 2 {
			return
		}
		size := int(binary.LittleEndian.Uint16(d.buf))
		if size > MaxPayloadLen {
			d.resync()
			return
		}
		d.need = 2 + size + len(Footer)
		d.state = stateBody
	case stateBody:
		d.buf = append(d.buf, b)
		if len(d.buf) >= d.need {
			d.frameReady()
		}
	}
}

func (d *Decoder) frameReady() {
	end := d.need - len(Footer)
	if !bytes.Equal(d.buf[end:d.need], Footer[:]) {
		d.resync()
		return
	}
	report, err := ParseReport(d.buf[2:end])
	d.state, d.buf = stateSeekHeader, d.buf[:0]
	if err != nil {
		d.Stats.Ignored++
		glog.V(3).Infof("ld2410: frame ignored: %v", err)
		return
	}
	d.Stats.Frames++
	d.pending = append(d.pending, report)
}

// resync abandons the current header and searches again starting right
// after it: only the 4 header bytes are discarded, every byte collected
// since is parsed again.
func (d *Decoder) resync() {
	d.Stats.Resyncs++
	glog.V(3).Infof("ld2410: resync, replaying %d bytes", len(d.buf))
	replay := append([]byte(nil), d.buf...)
	d.state, d.matched, d.buf = stateSeekHeader, 0, d.buf[:0]
	for _, b := range replay {
		d.parseByte(b)
	}
}
