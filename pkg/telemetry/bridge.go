package telemetry

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/livelamp/pkg/api"
)

// CommandReply is published on <device-id>/reply/<target>.
type CommandReply struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Subscriber subscribes topic filters.
type Subscriber interface {
	Sub(filter string, handler Handler) *Subscription
}

// CommandBridge executes JSON commands received on <device-id>/cmd/<target>
// through the request queue, the same path HTTP requests take.
type CommandBridge struct {
	Queue     *api.Queue
	Transport Transport
	DeviceID  string
	Timeout   time.Duration
}

// NewCommandBridge creates a CommandBridge.
func NewCommandBridge(queue *api.Queue, transport Transport, deviceID string) *CommandBridge {
	return &CommandBridge{
		Queue:     queue,
		Transport: transport,
		DeviceID:  deviceID,
		Timeout:   api.DefaultRequestTimeout,
	}
}

// Subscribe subscribes the command topics.
func (b *CommandBridge) Subscribe(sub Subscriber) *Subscription {
	return sub.Sub(b.DeviceID+"/"+TopicCmd+"/+", b.HandleMessage)
}

// HandleMessage handles one command message. It returns immediately;
// the command executes and replies in the background.
func (b *CommandBridge) HandleMessage(topic string, payload []byte) {
	target := topic[strings.LastIndex(topic, "/")+1:]
	body := append([]byte(nil), payload...)
	go b.execute(target, body)
}

func (b *CommandBridge) execute(target string, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()
	result, err := b.Queue.Submit(ctx, "mqtt", func(svc *api.Service) (interface{}, error) {
		return svc.Command(target, payload)
	})
	var reply CommandReply
	if err != nil {
		glog.Warningf("mqtt command %s: %v", target, err)
		reply.Error = err.Error()
	} else {
		reply.Result = result
	}
	data, err := json.Marshal(&reply)
	if err != nil {
		glog.Errorf("mqtt reply %s: %v", target, err)
		return
	}
	if b.Transport.Connected() {
		b.Transport.Pub(b.DeviceID+"/"+TopicReply+"/"+target, data)
	}
}
