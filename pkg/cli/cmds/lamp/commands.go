// Package lamp provides shell commands for the lamp HTTP API.
package lamp

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/livelamp/pkg/api"
	"github.com/robotalks/livelamp/pkg/cli/sh"
)

// LightingRequest builds a lighting change from command arguments:
// either HEX or R G B, optionally followed by a pattern.
func LightingRequest(args []string) (req api.LightingRequest, err error) {
	switch {
	case len(args) == 1 || len(args) == 2:
		req.Hex = &args[0]
		args = args[1:]
	case len(args) == 3 || len(args) == 4:
		var rgb []int
		if rgb, err = sh.ParseInts(args[:3]); err != nil {
			return
		}
		req.R, req.G, req.B = &rgb[0], &rgb[1], &rgb[2]
		args = args[3:]
	default:
		err = fmt.Errorf("expect HEX or R G B, then optional PATTERN")
		return
	}
	if len(args) > 0 {
		req.Pattern = &args[0]
	}
	return
}

var (
	// RadarCmd shows the sensor cache.
	RadarCmd = ishell.Cmd{
		Name:    "radar",
		Aliases: []string{"r"},
		Help:    "",
		Func: func(c *ishell.Context) {
			sh.Do(c, func(cl *api.Client) (interface{}, error) {
				return cl.Radar()
			})
		},
	}

	// LEDsCmd shows or changes the lighting.
	LEDsCmd = ishell.Cmd{
		Name:    "leds",
		Aliases: []string{"color"},
		Help:    "[HEX | R G B] [PATTERN]",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				sh.Do(c, func(cl *api.Client) (interface{}, error) {
					return cl.Lighting()
				})
				return
			}
			req, err := LightingRequest(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cl *api.Client) (interface{}, error) {
				return cl.SetLighting(req)
			})
		},
	}

	// PatternCmd selects a pattern.
	PatternCmd = ishell.Cmd{
		Name:    "pattern",
		Aliases: []string{"p"},
		Help:    "solid|breathe|fade|rainbow|fire|dream",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("pattern name expected"))
				return
			}
			sh.Do(c, func(cl *api.Client) (interface{}, error) {
				return cl.SetPattern(c.Args[0])
			})
		},
	}

	// WhiteCmd sets the white channel.
	WhiteCmd = ishell.Cmd{
		Name:    "white",
		Aliases: []string{"w"},
		Help:    "BRIGHTNESS",
		Func: func(c *ishell.Context) {
			vals, err := sh.ParseInts(c.Args)
			if err != nil || len(vals) != 1 {
				c.Err(fmt.Errorf("brightness 0-255 expected"))
				return
			}
			sh.Do(c, func(cl *api.Client) (interface{}, error) {
				return cl.SetWhite(vals[0])
			})
		},
	}

	// PumpCmd shows or switches the pump.
	PumpCmd = ishell.Cmd{
		Name: "pump",
		Help: "[on|off|toggle]",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				sh.Do(c, func(cl *api.Client) (interface{}, error) {
					return cl.Pump()
				})
				return
			}
			if c.Args[0] == "toggle" {
				sh.Do(c, func(cl *api.Client) (interface{}, error) {
					state, err := cl.Pump()
					if err != nil {
						return nil, err
					}
					return cl.SetPump(!state.On)
				})
				return
			}
			on, err := sh.ParseOnOff(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cl *api.Client) (interface{}, error) {
				return cl.SetPump(on)
			})
		},
	}

	// SMACmd shows or sets the SMA power.
	SMACmd = ishell.Cmd{
		Name: "sma",
		Help: "[PERCENT]",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				sh.Do(c, func(cl *api.Client) (interface{}, error) {
					return cl.SMA()
				})
				return
			}
			vals, err := sh.ParseInts(c.Args)
			if err != nil || len(vals) != 1 {
				c.Err(fmt.Errorf("percent 0-100 expected"))
				return
			}
			sh.Do(c, func(cl *api.Client) (interface{}, error) {
				return cl.SetSMA(vals[0])
			})
		},
	}

	// InfoCmd describes the device.
	InfoCmd = ishell.Cmd{
		Name:    "info",
		Aliases: []string{"i"},
		Help:    "",
		Func: func(c *ishell.Context) {
			sh.Do(c, func(cl *api.Client) (interface{}, error) {
				return cl.Info()
			})
		},
	}
)

func init() {
	sh.AddCmds(
		&RadarCmd,
		&LEDsCmd,
		&PatternCmd,
		&WhiteCmd,
		&PumpCmd,
		&SMACmd,
		&InfoCmd,
	)
}
