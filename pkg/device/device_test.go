package device

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/livelamp/pkg/framework"
	"github.com/robotalks/livelamp/pkg/hw"
	"github.com/robotalks/livelamp/pkg/ld2410"
	"github.com/robotalks/livelamp/pkg/led"
)

type testRig struct {
	store *Store
	pump  *hw.SimSwitch
	pwm   *hw.SimPWM
	sink  *hw.SimLEDSink
	now   time.Time
}

func newTestRig(numLEDs int) *testRig {
	r := &testRig{
		pump: &hw.SimSwitch{Name: "pump"},
		pwm:  &hw.SimPWM{Name: "sma"},
		sink: &hw.SimLEDSink{},
		now:  time.Unix(500, 0),
	}
	sma := NewSMA(r.pwm, 0, DefaultSafetyTimeout)
	sma.Now = r.clock
	r.store = NewStore(numLEDs, true, NewPump(r.pump), sma)
	return r
}

func (r *testRig) clock() time.Time { return r.now }

type failingSource struct {
	data []byte
	err  error
}

func (s *failingSource) Available() int { return len(s.data) + 1 }

func (s *failingSource) Read(p []byte) (int, error) {
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, s.err
}

func TestIngestor(t *testing.T) {
	rig := newTestRig(1)
	radar := hw.NewSimRadar(rand.NewSource(5))
	radar.Now = rig.clock
	line := &hw.SimLine{High: true}
	g := NewIngestor(rig.store, radar, line)
	g.Now = rig.clock

	interval, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultIngestInterval, interval)
	require.Equal(t, radar.Report(), rig.store.Sensor.Report)
	require.Equal(t, uint64(1), rig.store.Sensor.Frames)
	require.Equal(t, rig.now, rig.store.Sensor.Updated)
	require.True(t, rig.store.Sensor.PresenceGPIO)

	// nothing new within the period: the cache keeps the last report.
	line.High = false
	_, err = g.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(1), rig.store.Sensor.Frames)
	require.False(t, rig.store.Sensor.PresenceGPIO)
}

func TestIngestorReadError(t *testing.T) {
	rig := newTestRig(1)
	report := ld2410.Report{Kind: ld2410.KindTarget, TargetState: ld2410.TargetMoving, MovingDistance: 42}
	src := &failingSource{data: ld2410.EncodeReport(report), err: errors.New("framing error")}
	g := NewIngestor(rig.store, src, nil)
	_, err := g.Run(context.Background())
	require.Error(t, err)
	// bytes read before the error are still applied.
	require.Equal(t, report, rig.store.Sensor.Report)
}

func TestAnimatorCadence(t *testing.T) {
	rig := newTestRig(2)
	a := NewAnimator(rig.store, led.NewEngine(2, rand.NewSource(1)), rig.sink, nil)

	rig.store.Lighting = led.Settings{Pattern: led.Solid, Color: led.Red}
	interval, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, interval)
	require.Equal(t, 1, rig.sink.Writes)
	require.Equal(t, led.Frame{led.Red.Pixel(0), led.Red.Pixel(0)}, rig.store.LEDs)

	// unchanged solid color is not rewritten.
	_, err = a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, rig.sink.Writes)

	rig.store.Lighting.Pattern = led.Breathe
	interval, err = a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30*time.Millisecond, interval)
	require.Equal(t, 2, rig.sink.Writes)
}

type brokenSink struct{}

func (brokenSink) Write(led.Frame) error { return errors.New("spi busy") }

func TestAnimatorSinkError(t *testing.T) {
	rig := newTestRig(1)
	a := NewAnimator(rig.store, led.NewEngine(1, rand.NewSource(1)), brokenSink{}, nil)
	_, err := a.Run(context.Background())
	require.Error(t, err)
}

type flakySink struct {
	failures int
	hw.SimLEDSink
}

func (s *flakySink) Write(frame led.Frame) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("spi busy")
	}
	return s.SimLEDSink.Write(frame)
}

func TestAnimatorRetriesFailedWrite(t *testing.T) {
	rig := newTestRig(2)
	sink := &flakySink{failures: 1}
	a := NewAnimator(rig.store, led.NewEngine(2, rand.NewSource(1)), sink, nil)
	rig.store.Lighting = led.Settings{Pattern: led.Solid, Color: led.Red}

	_, err := a.Run(context.Background())
	require.Error(t, err)
	require.Zero(t, sink.Writes)

	// the solid frame is unchanged, but has never been written.
	_, err = a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sink.Writes)
	require.Equal(t, led.Frame{led.Red.Pixel(0), led.Red.Pixel(0)}, sink.Last)

	_, err = a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sink.Writes)
}

func TestScheduledActivities(t *testing.T) {
	rig := newTestRig(3)
	radar := hw.NewSimRadar(rand.NewSource(9))
	radar.Now = rig.clock
	ingest := NewIngestor(rig.store, radar, radar.Presence())
	ingest.Now = rig.clock
	animate := NewAnimator(rig.store, led.NewEngine(3, rand.NewSource(2)), rig.sink, nil)
	rig.store.Lighting = led.Settings{Pattern: led.Rainbow}

	s := framework.NewScheduler()
	s.Now = rig.clock
	s.Add(ingest, animate)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		s.RunDue(ctx, rig.now)
		rig.now = rig.now.Add(10 * time.Millisecond)
	}
	stats := s.Stats()
	require.Equal(t, IngestActivity, stats[0].Name)
	require.Equal(t, uint64(10), stats[0].Runs)
	require.Equal(t, AnimateActivity, stats[1].Name)
	require.Equal(t, uint64(20), stats[1].Runs)
	require.Equal(t, uint64(10), rig.store.Sensor.Frames)
	require.Equal(t, radar.Report(), rig.store.Sensor.Report)
	require.Equal(t, 20, rig.sink.Writes)
}

func TestPump(t *testing.T) {
	rig := newTestRig(1)
	p := rig.store.Pump
	require.False(t, p.IsOn())
	p.On()
	require.True(t, rig.pump.On)
	p.Toggle()
	require.Equal(t, PumpState{On: false}, p.State())
	require.False(t, rig.pump.On)
}

func TestSMA(t *testing.T) {
	testCases := []struct {
		percent int
		expect  int
		duty    uint16
	}{
		{0, 0, 0},
		{50, 50, 511},
		{100, 100, 1023},
		{150, 100, 1023},
		{-3, 0, 0},
	}
	rig := newTestRig(1)
	for _, tc := range testCases {
		rig.store.SMA.SetPercent(tc.percent)
		require.Equal(t, SMAState{Percent: tc.expect, Freq: DefaultSMAFreq}, rig.store.SMA.State())
		require.Equal(t, tc.duty, rig.pwm.Duty)
	}
}

func TestSMASafetyTimeout(t *testing.T) {
	rig := newTestRig(1)
	sma := rig.store.SMA
	sma.SetPercent(80)
	rig.now = rig.now.Add(4 * time.Second)
	require.False(t, sma.CheckSafety())
	require.Equal(t, 80, sma.Percent())

	// a new command restarts the timeout.
	sma.SetPercent(60)
	rig.now = rig.now.Add(4 * time.Second)
	require.False(t, sma.CheckSafety())
	rig.now = rig.now.Add(time.Second)
	require.True(t, sma.CheckSafety())
	require.Equal(t, 0, sma.Percent())
	require.Zero(t, rig.pwm.Duty)
	require.False(t, sma.CheckSafety())
}

func TestShutdown(t *testing.T) {
	rig := newTestRig(2)
	rig.store.Pump.On()
	rig.store.SMA.SetPercent(30)
	rig.store.Lighting = led.Settings{Pattern: led.Fire}
	rig.store.LEDs.Fill(led.Pixel{R: 9})
	require.NoError(t, rig.store.Shutdown(rig.sink))
	require.False(t, rig.pump.On)
	require.Zero(t, rig.pwm.Duty)
	require.Equal(t, led.Solid, rig.store.Lighting.Pattern)
	require.Equal(t, led.Frame{{}, {}}, rig.sink.Last)
}
