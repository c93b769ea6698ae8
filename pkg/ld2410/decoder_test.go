package ld2410

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	staticFrame = []byte{
		0xF4, 0xF3, 0xF2, 0xF1, 0x0D, 0x00,
		0x02, 0xAA, 0x02, 0x32, 0x00, 0x0A, 0x64, 0x00, 0x64, 0x00, 0x00, 0x55, 0x00,
		0xF8, 0xF7, 0xF6, 0xF5,
	}
	staticReport = Report{
		Kind:           KindTarget,
		TargetState:    TargetStatic,
		MovingDistance: 0x32,
		MovingEnergy:   0x0A,
		StaticDistance: 0x64,
		StaticEnergy:   0x64,
	}
	movingReport = Report{
		Kind:              KindTarget,
		TargetState:       TargetMoving,
		MovingDistance:    120,
		MovingEnergy:      77,
		DetectionDistance: 135,
	}
)

func concat(chunks ...[]byte) []byte {
	var b []byte
	for _, c := range chunks {
		b = append(b, c...)
	}
	return b
}

func feedBytewise(d *Decoder, in []byte) (reports []Report) {
	for _, b := range in {
		if r, ok := d.Ingest(b); ok {
			reports = append(reports, r)
		}
	}
	return
}

func corruptFooter(frame []byte) []byte {
	b := append([]byte(nil), frame...)
	b[len(b)-1] ^= 0xFF
	return b
}

func TestDecoder(t *testing.T) {
	testCases := []struct {
		name    string
		in      []byte
		expect  []Report
		resyncs uint64
	}{
		{
			name:   "single frame",
			in:     staticFrame,
			expect: []Report{staticReport},
		},
		{
			name:   "garbage before frame",
			in:     concat([]byte{0x00, 0x13, 0xF4, 0xF3, 0x99, 0xF4}, staticFrame),
			expect: []Report{staticReport},
		},
		{
			name:   "back to back",
			in:     concat(staticFrame, EncodeReport(movingReport), staticFrame),
			expect: []Report{staticReport, movingReport, staticReport},
		},
		{
			name:    "corrupt footer then valid frame",
			in:      concat(corruptFooter(staticFrame), EncodeReport(movingReport)),
			expect:  []Report{movingReport},
			resyncs: 1,
		},
		{
			name: "frame hidden behind false header",
			// the false header declares a length covering the real frame.
			in:      concat([]byte{0xF4, 0xF3, 0xF2, 0xF1, 0x20, 0x00, 0x01}, staticFrame, make([]byte, 12)),
			expect:  []Report{staticReport},
			resyncs: 1,
		},
		{
			name:    "oversized length",
			in:      concat([]byte{0xF4, 0xF3, 0xF2, 0xF1, 0xFF, 0xFF}, staticFrame),
			expect:  []Report{staticReport},
			resyncs: 1,
		},
		{
			name: "length disagreeing with payload",
			// declared length 0x11 but only 10 payload bytes follow.
			in: []byte{
				0xF4, 0xF3, 0xF2, 0xF1, 0x11, 0x00,
				0x02, 0xAA, 0x02, 0x32, 0x00, 0x0A, 0x03, 0x64, 0x00, 0x64,
				0xF8, 0xF7, 0xF6, 0xF5,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDecoder()
			require.Equal(t, tc.expect, feedBytewise(d, tc.in))
			require.Equal(t, uint64(len(tc.expect)), d.Stats.Frames)
			require.Equal(t, tc.resyncs, d.Stats.Resyncs)
		})
	}
}

func TestDecoderChunkBoundaries(t *testing.T) {
	for i := 1; i < len(staticFrame)-1; i++ {
		for j := i + 1; j < len(staticFrame); j++ {
			d := NewDecoder()
			var reports []Report
			reports = append(reports, d.Feed(staticFrame[:i])...)
			reports = append(reports, d.Feed(staticFrame[i:j])...)
			reports = append(reports, d.Feed(staticFrame[j:])...)
			require.Equal(t, []Report{staticReport}, reports, "split at %d,%d", i, j)
		}
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	reports := []Report{
		staticReport,
		movingReport,
		{Kind: KindTarget, TargetState: TargetBoth, MovingDistance: 0xFFFF, MovingEnergy: 100, StaticDistance: 0x1234, StaticEnergy: 1, DetectionDistance: 0xABCD},
		{Kind: KindTarget},
	}
	d := NewDecoder()
	for _, r := range reports {
		require.Equal(t, []Report{r}, feedBytewise(d, EncodeReport(r)))
	}
}

func TestDecoderIgnoresOtherReports(t *testing.T) {
	engineering := Encode([]byte{ReportTypeEngineering, 0xAA, 0x03, 0x00})
	shortTarget := Encode([]byte{ReportTypeTarget, 0xAA, 0x02})
	d := NewDecoder()
	reports := d.Feed(concat(engineering, shortTarget, staticFrame))
	require.Equal(t, []Report{staticReport}, reports)
	require.Equal(t, uint64(2), d.Stats.Ignored)
	require.Equal(t, uint64(0), d.Stats.Resyncs)
}

func TestDecoderReset(t *testing.T) {
	d := NewDecoder()
	require.Empty(t, d.Feed(staticFrame[:10]))
	d.Reset()
	require.Empty(t, d.Feed(staticFrame[10:]))
	require.Equal(t, []Report{staticReport}, d.Feed(staticFrame))
}

type chunkSource struct {
	chunks [][]byte
	err    error
}

func (s *chunkSource) Available() int {
	if len(s.chunks) == 0 {
		return 0
	}
	return len(s.chunks[0])
}

func (s *chunkSource) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return 0, s.err
	}
	n := copy(p, s.chunks[0])
	s.chunks[0] = s.chunks[0][n:]
	if len(s.chunks[0]) == 0 {
		s.chunks = s.chunks[1:]
	}
	if len(s.chunks) == 0 {
		return n, s.err
	}
	return n, nil
}

func TestDecoderPoll(t *testing.T) {
	t.Run("newest report wins", func(t *testing.T) {
		src := &chunkSource{chunks: [][]byte{staticFrame[:5], staticFrame[5:], EncodeReport(movingReport)}}
		d := NewDecoder()
		r, ok, err := d.Poll(src, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, movingReport, r)
		require.Equal(t, uint64(2), d.Stats.Frames)
	})
	t.Run("partial frame", func(t *testing.T) {
		src := &chunkSource{chunks: [][]byte{staticFrame[:9]}}
		d := NewDecoder()
		_, ok, err := d.Poll(src, time.Second)
		require.NoError(t, err)
		require.False(t, ok)
		src.chunks = [][]byte{staticFrame[9:]}
		r, ok, err := d.Poll(src, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, staticReport, r)
	})
	t.Run("read error", func(t *testing.T) {
		failure := errors.New("uart overrun")
		src := &chunkSource{chunks: [][]byte{staticFrame}, err: failure}
		d := NewDecoder()
		r, ok, err := d.Poll(src, time.Second)
		require.Equal(t, failure, err)
		require.True(t, ok)
		require.Equal(t, staticReport, r)
	})
	t.Run("nothing available", func(t *testing.T) {
		_, ok, err := NewDecoder().Poll(&chunkSource{}, time.Second)
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestEncodeCommand(t *testing.T) {
	require.Equal(t,
		[]byte{0xFD, 0xFC, 0xFB, 0xFA, 0x04, 0x00, 0xFF, 0x00, 0x01, 0x00, 0x04, 0x03, 0x02, 0x01},
		EncodeCommand(CmdEnableConfig, []byte{0x01, 0x00}))
}

func TestEndConfigMode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EndConfigMode(&buf))
	require.Equal(t,
		[]byte{0xFD, 0xFC, 0xFB, 0xFA, 0x02, 0x00, 0xFE, 0x00, 0x04, 0x03, 0x02, 0x01},
		buf.Bytes())
}

func TestTargetStateString(t *testing.T) {
	require.Equal(t, "static", TargetStatic.String())
	require.Equal(t, "unknown(9)", TargetState(9).String())
	require.False(t, Report{}.Presence())
	require.True(t, staticReport.Presence())
}
