package lamp

import (
	"errors"
	"math/rand"

	"github.com/golang/glog"

	"github.com/robotalks/livelamp/pkg/api"
	"github.com/robotalks/livelamp/pkg/device"
	"github.com/robotalks/livelamp/pkg/framework"
	"github.com/robotalks/livelamp/pkg/hw"
	"github.com/robotalks/livelamp/pkg/ld2410"
	"github.com/robotalks/livelamp/pkg/led"
	"github.com/robotalks/livelamp/pkg/telemetry"
)

// Hardware is the set of device contracts the App drives.
type Hardware struct {
	Radar    ld2410.ByteSource
	Presence hw.DigitalLine
	Pump     hw.Switch
	SMA      hw.PWM
	LEDs     hw.LEDSink
	// Runnables are background readers, e.g. the UART.
	Runnables []framework.Runnable
}

// OpenHardware opens the radar UART, or builds simulated hardware when
// no serial port is configured. Pump, SMA and LED outputs are always
// simulated: GPIO access is outside the daemon.
func (c *Config) OpenHardware() (*Hardware, error) {
	h := &Hardware{
		Pump: &hw.SimSwitch{Name: "pump"},
		SMA:  &hw.SimPWM{Name: "sma"},
		LEDs: &hw.SimLEDSink{},
	}
	if c.Serial == "" {
		radar := hw.NewSimRadar(rand.NewSource(c.Seeded()))
		radar.Noise = c.SimNoise
		h.Radar, h.Presence = radar, radar.Presence()
		glog.Info("using simulated radar")
		return h, nil
	}
	uart, err := hw.OpenUART(c.Serial, c.BaudRate)
	if err != nil {
		return nil, err
	}
	// leave config mode in case a previous run was interrupted in it.
	if err := ld2410.EndConfigMode(uart); err != nil {
		glog.Warningf("radar end config: %v", err)
	}
	h.Radar = uart
	h.Runnables = append(h.Runnables, framework.NamedRun("uart", uart))
	glog.Infof("radar on %s at %d baud", c.Serial, c.BaudRate)
	return h, nil
}

// App is the assembled daemon.
type App struct {
	Config    *Config
	DeviceID  string
	Hardware  *Hardware
	Store     *device.Store
	Scheduler *framework.Scheduler
	Service   *api.Service
	Queue     *api.Queue
	Server    *api.Server
	Link      *telemetry.Link
}

// NewApp wires the activities over the given hardware.
func (c *Config) NewApp(h *Hardware) (*App, error) {
	deviceID, err := c.ResolveDeviceID()
	if err != nil {
		return nil, err
	}
	cadence, err := c.LEDCadence()
	if err != nil {
		return nil, err
	}

	sma := device.NewSMA(h.SMA, c.SMAFreq, c.SMASafetyTimeout)
	store := device.NewStore(c.LEDs, c.RGBW, device.NewPump(h.Pump), sma)
	engine := led.NewEngine(c.LEDs, rand.NewSource(c.Seeded()))

	a := &App{
		Config:    c,
		DeviceID:  deviceID,
		Hardware:  h,
		Store:     store,
		Scheduler: framework.NewScheduler(),
		Service:   api.NewService(store, deviceID),
	}
	a.Service.Stats = a.Scheduler.Stats
	a.Queue = api.NewQueue(a.Service, a.Scheduler, 0)
	a.Scheduler.Add(
		device.NewIngestor(store, h.Radar, h.Presence),
		device.NewAnimator(store, engine, h.LEDs, cadence),
		a.Queue,
	)
	a.Server = api.NewServer(c.HTTPAddr, a.Queue)
	a.Server.MaxConns = c.MaxConns

	if c.MQTTURL != "" {
		a.Link, err = telemetry.NewLink(c.MQTTURL, telemetry.Meta{
			DeviceID: deviceID,
			Name:     c.Name,
			HTTP:     c.HTTPAddr,
			LEDs:     c.LEDs,
			RGBW:     c.RGBW,
			Targets:  api.Targets(),
		})
		if err != nil {
			return nil, err
		}
		a.Scheduler.Add(telemetry.NewPublisher(store, a.Link, deviceID))
		telemetry.NewCommandBridge(a.Queue, a.Link, deviceID).Subscribe(a.Link)
	}
	return a, nil
}

// Runnables returns everything to run in a framework.Runner.
func (a *App) Runnables() []framework.Runnable {
	runnables := append([]framework.Runnable{
		framework.NamedRun("scheduler", a.Scheduler),
		framework.NamedRun("http", a.Server),
	}, a.Hardware.Runnables...)
	if a.Link != nil {
		runnables = append(runnables, framework.NamedRun("mqtt", a.Link))
	}
	return runnables
}

// Run runs the app in r until every Runnable stopped, then turns all
// outputs off. On a forced exit the scheduler may still be running, so
// the outputs are left untouched.
func (a *App) Run(r *framework.Runner) error {
	err := r.Go(a.Runnables()...).Wait()
	if errors.Is(err, framework.ErrForcedExit) {
		glog.Warning("forced exit, outputs left as is")
		return err
	}
	if shutdownErr := a.Shutdown(); shutdownErr != nil {
		glog.Errorf("shutdown: %v", shutdownErr)
	}
	return err
}

// Shutdown turns all outputs off. Only call it after the scheduler
// stopped.
func (a *App) Shutdown() error {
	glog.Info("switching outputs off")
	return a.Store.Shutdown(a.Hardware.LEDs)
}
