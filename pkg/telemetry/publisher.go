package telemetry

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/livelamp/pkg/device"
	"github.com/robotalks/livelamp/pkg/led"
)

// PublishActivity is the name of the Publisher activity.
const PublishActivity = "telemetry"

// DefaultPublishInterval is the telemetry period.
const DefaultPublishInterval = time.Second

// Transport publishes messages.
type Transport interface {
	Connected() bool
	Pub(topic string, payload []byte) paho.Token
}

// Publisher is the activity publishing sensor and lighting telemetry.
// Publishing never waits for the broker.
type Publisher struct {
	Store     *device.Store
	Transport Transport
	DeviceID  string
	Interval  time.Duration

	frames   uint64
	lighting led.Settings
	sent     bool
}

// NewPublisher creates a Publisher.
func NewPublisher(store *device.Store, transport Transport, deviceID string) *Publisher {
	return &Publisher{
		Store:     store,
		Transport: transport,
		DeviceID:  deviceID,
		Interval:  DefaultPublishInterval,
	}
}

// Name implements framework.Activity.
func (p *Publisher) Name() string {
	return PublishActivity
}

// Run implements framework.Activity.
func (p *Publisher) Run(ctx context.Context) (time.Duration, error) {
	if !p.Transport.Connected() {
		// republish everything after reconnecting.
		p.sent = false
		return p.Interval, nil
	}
	if !p.sent || p.Store.Sensor.Frames != p.frames {
		if err := p.publish(TopicRadar, NewRadarReport(&p.Store.Sensor)); err != nil {
			return 0, err
		}
		p.frames = p.Store.Sensor.Frames
	}
	// animated patterns change every frame, so LEDs are sent each period.
	if !p.sent || p.Store.Lighting != p.lighting || p.Store.Lighting.Pattern != led.Solid {
		if err := p.publish(TopicLEDs, NewLightingState(p.Store.Lighting, p.Store.LEDs)); err != nil {
			return 0, err
		}
		p.lighting = p.Store.Lighting
	}
	p.sent = true
	return p.Interval, nil
}

func (p *Publisher) publish(name string, msg proto.Message) error {
	data, err := proto.Marshal(msg)
	if err != nil {
		return err
	}
	p.Transport.Pub(p.DeviceID+"/"+name, data)
	glog.V(4).Infof("PUB %s/%s %d bytes", p.DeviceID, name, len(data))
	return nil
}
