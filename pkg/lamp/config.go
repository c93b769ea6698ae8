// Package lamp wires configuration, hardware and activities into the
// livelamp daemon.
package lamp

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/livelamp/pkg/api"
	"github.com/robotalks/livelamp/pkg/device"
	"github.com/robotalks/livelamp/pkg/hw"
	"github.com/robotalks/livelamp/pkg/led"
)

// Config defines the configuration of the daemon.
type Config struct {
	Name     string `yaml:"name"`
	DeviceID string `yaml:"device_id"`

	HTTPAddr string `yaml:"http_addr"`
	MaxConns int    `yaml:"max_conns"`
	MQTTURL  string `yaml:"mqtt_url"`

	// Serial is the radar UART. Empty runs against simulated hardware.
	Serial   string  `yaml:"serial"`
	BaudRate int     `yaml:"baud_rate"`
	SimNoise float64 `yaml:"sim_noise"`
	Seed     int64   `yaml:"seed"`

	LEDs    int                      `yaml:"leds"`
	RGBW    bool                     `yaml:"rgbw"`
	Cadence map[string]time.Duration `yaml:"cadence"`

	SMAFreq          int           `yaml:"sma_freq"`
	SMASafetyTimeout time.Duration `yaml:"sma_safety_timeout"`
}

// Defaults
const (
	DefaultName     = "livelamp"
	DefaultHTTPAddr = ":80"
	DefaultLEDs     = 12
)

var defaultConfig = Config{
	Name:             DefaultName,
	HTTPAddr:         DefaultHTTPAddr,
	MaxConns:         api.DefaultMaxConns,
	BaudRate:         hw.DefaultBaudRate,
	SimNoise:         0.05,
	LEDs:             DefaultLEDs,
	RGBW:             true,
	SMAFreq:          device.DefaultSMAFreq,
	SMASafetyTimeout: device.DefaultSafetyTimeout,
}

var configFile string

func init() {
	if val := os.Getenv("LIVELAMP_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("LIVELAMP_SERIAL"); val != "" {
		defaultConfig.Serial = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file, its values override flags.")
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Lamp name.")
	flag.StringVar(&defaultConfig.DeviceID, "device-id", defaultConfig.DeviceID, "Device ID, defaults to one derived from the machine ID.")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "HTTP listen address.")
	flag.IntVar(&defaultConfig.MaxConns, "max-conns", defaultConfig.MaxConns, "Maximum concurrent HTTP connections, 0 for unlimited.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL, empty disables MQTT.")
	flag.StringVar(&defaultConfig.Serial, "serial", defaultConfig.Serial, "Radar serial port, empty for simulated hardware.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Radar baud rate.")
	flag.Float64Var(&defaultConfig.SimNoise, "sim-noise", defaultConfig.SimNoise, "Probability of line noise in simulated radar.")
	flag.Int64Var(&defaultConfig.Seed, "seed", defaultConfig.Seed, "Random seed, 0 for time based.")
	flag.IntVar(&defaultConfig.LEDs, "leds", defaultConfig.LEDs, "Number of LEDs in the ring.")
	flag.BoolVar(&defaultConfig.RGBW, "rgbw", defaultConfig.RGBW, "LEDs have a white channel.")
	flag.IntVar(&defaultConfig.SMAFreq, "sma-freq", defaultConfig.SMAFreq, "SMA PWM frequency (Hz).")
	flag.DurationVar(&defaultConfig.SMASafetyTimeout, "sma-safety", defaultConfig.SMASafetyTimeout, "Switch SMA off after powered this long, 0 disables.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config from defaults and flags, then the file given
// by -config if any.
func NewConfig() (*Config, error) {
	conf := defaultConfig
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	return &conf, conf.Validate()
}

// LoadFile overrides the config with values from a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.LEDs <= 0 {
		return fmt.Errorf("invalid LED count %d", c.LEDs)
	}
	if _, err := c.LEDCadence(); err != nil {
		return err
	}
	return nil
}

// LEDCadence returns the default cadence with configured overrides.
func (c *Config) LEDCadence() (led.Cadence, error) {
	cadence := led.DefaultCadence()
	for name, interval := range c.Cadence {
		p, err := led.ParsePattern(name)
		if err != nil {
			return nil, fmt.Errorf("cadence: %w", err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("cadence %s: invalid interval %v", name, interval)
		}
		cadence[p] = interval
	}
	return cadence, nil
}

// ResolveDeviceID returns DeviceID, deriving it from the machine ID when
// not configured.
func (c *Config) ResolveDeviceID() (string, error) {
	if c.DeviceID != "" {
		return c.DeviceID, nil
	}
	id, err := machineid.ProtectedID(c.Name)
	if err != nil {
		return "", fmt.Errorf("machine id: %w", err)
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id, nil
}

// Seeded returns the configured seed, or a time based one.
func (c *Config) Seeded() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
