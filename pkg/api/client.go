package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// StatusError is a non-200 reply.
type StatusError struct {
	Code int
	Msg  string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Msg)
}

// Client talks to the HTTP API of a lamp.
type Client struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a Client for a server address or URL.
func NewClient(addr string) *Client {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{BaseURL: strings.TrimSuffix(addr, "/"), Timeout: 5 * time.Second}
}

func (c *Client) do(a *fiber.Agent, out interface{}) error {
	a.Timeout(c.Timeout)
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return errs[0]
	}
	if code != fiber.StatusOK {
		var reply ErrorReply
		if json.Unmarshal(body, &reply) != nil || reply.Error == "" {
			reply.Error = string(body)
		}
		return &StatusError{Code: code, Msg: reply.Error}
	}
	return json.Unmarshal(body, out)
}

func (c *Client) get(path string, out interface{}) error {
	return c.do(fiber.Get(c.BaseURL+path), out)
}

func (c *Client) post(path string, in, out interface{}) error {
	return c.do(fiber.Post(c.BaseURL+path).JSON(in), out)
}

// Radar fetches the radar state.
func (c *Client) Radar() (state RadarState, err error) {
	err = c.get("/api/radar", &state)
	return
}

// Lighting fetches the lighting settings.
func (c *Client) Lighting() (state LightingState, err error) {
	err = c.get("/api/leds", &state)
	return
}

// SetLighting changes the lighting.
func (c *Client) SetLighting(req LightingRequest) (state LightingState, err error) {
	err = c.post("/api/leds", req, &state)
	return
}

// SetPattern selects a pattern.
func (c *Client) SetPattern(pattern string) (state LightingState, err error) {
	err = c.post("/api/leds/pattern", PatternRequest{Pattern: pattern}, &state)
	return
}

// SetWhite sets the white channel.
func (c *Client) SetWhite(brightness int) (state WhiteState, err error) {
	err = c.post("/api/leds/white", WhiteRequest{Brightness: &brightness}, &state)
	return
}

// Pump fetches the pump state.
func (c *Client) Pump() (state PumpState, err error) {
	err = c.get("/api/pump", &state)
	return
}

// SetPump switches the pump.
func (c *Client) SetPump(on bool) (state PumpState, err error) {
	err = c.post("/api/pump", PumpRequest{On: &on}, &state)
	return
}

// SMA fetches the SMA state.
func (c *Client) SMA() (state SMAState, err error) {
	err = c.get("/api/sma", &state)
	return
}

// SetSMA sets the SMA power.
func (c *Client) SetSMA(percent int) (state SMAState, err error) {
	err = c.post("/api/sma", SMARequest{Percent: &percent}, &state)
	return
}

// Info fetches the device description.
func (c *Client) Info() (info Info, err error) {
	err = c.get("/api/info", &info)
	return
}
