package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"
)

// Topic names under <prefix><device-id>/.
const (
	TopicMeta  = "meta"
	TopicRadar = "radar"
	TopicLEDs  = "leds"
	TopicCmd   = "cmd"
	TopicReply = "reply"
)

// Meta is the retained device description on <device-id>/meta.
type Meta struct {
	DeviceID string   `json:"device_id"`
	Name     string   `json:"name"`
	HTTP     string   `json:"http,omitempty"`
	LEDs     int      `json:"leds"`
	RGBW     bool     `json:"rgbw"`
	Targets  []string `json:"targets"`
}

// Link is the MQTT connection of one lamp. While connected it keeps the
// retained meta published; the broker clears it through the last will
// when the lamp disappears.
type Link struct {
	*Broker
	DeviceID string

	meta []byte
}

// NewLink creates a Link from a broker URL.
func NewLink(brokerURL string, meta Meta) (*Link, error) {
	data, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+meta.DeviceID+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("livelamp:" + meta.DeviceID)
	}
	l := &Link{Broker: NewBroker(opts, prefix), DeviceID: meta.DeviceID, meta: data}
	l.Broker.OnConnect = func(*Broker) { l.announce() }
	return l, nil
}

// Topic returns the device scoped topic name.
func (l *Link) Topic(name string) string {
	return l.DeviceID + "/" + name
}

// Run implements framework.Runnable.
func (l *Link) Run(ctx context.Context) error {
	token := l.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			glog.Warningf("mqtt connect: %v", token.Error())
		}
	}()
	<-ctx.Done()
	if l.Connected() {
		l.PubWith(l.Topic(TopicMeta), nil, 1, true).WaitTimeout(time.Second)
	}
	return l.Close()
}

func (l *Link) announce() {
	l.PubWith(l.Topic(TopicMeta), l.meta, 1, true)
}
