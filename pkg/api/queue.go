package api

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/livelamp/pkg/framework"
)

// ServeActivity is the name of the Queue activity.
const ServeActivity = "serve"

// Defaults of Queue.
const (
	DefaultQueueSize    = 32
	DefaultIdleInterval = 50 * time.Millisecond
)

var (
	// ErrQueueFull is returned when too many requests are pending.
	ErrQueueFull = errors.New("request queue full")
	// ErrInternal is returned to a request whose execution panicked.
	ErrInternal = errors.New("internal error")
)

// ExecFunc is executed on the scheduler goroutine.
type ExecFunc func(svc *Service) (interface{}, error)

type request struct {
	ctx    context.Context
	id     string
	source string
	exec   ExecFunc
	reply  chan reply
}

type reply struct {
	value interface{}
	err   error
}

// Queue carries requests from network goroutines to the scheduler. It is
// the "serve" activity: each run executes at most one request, so a
// burst of requests never starves ingest and animate.
type Queue struct {
	Service *Service
	Waker   framework.Waker
	Idle    time.Duration

	requests chan *request
}

// NewQueue creates a Queue. waker may be nil.
func NewQueue(svc *Service, waker framework.Waker, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		Service:  svc,
		Waker:    waker,
		Idle:     DefaultIdleInterval,
		requests: make(chan *request, size),
	}
}

// Name implements framework.Activity.
func (q *Queue) Name() string {
	return ServeActivity
}

// Pending returns the number of queued requests.
func (q *Queue) Pending() int {
	return len(q.requests)
}

// Submit queues exec and waits for its result. It is safe to call from
// any goroutine except the scheduler's own.
func (q *Queue) Submit(ctx context.Context, source string, exec ExecFunc) (interface{}, error) {
	req := &request{
		ctx:    ctx,
		id:     uuid.New().String(),
		source: source,
		exec:   exec,
		reply:  make(chan reply, 1),
	}
	select {
	case q.requests <- req:
	default:
		return nil, ErrQueueFull
	}
	if q.Waker != nil {
		q.Waker.Wake(ServeActivity)
	}
	glog.V(3).Infof("request %s from %s queued", req.id, source)
	select {
	case r := <-req.reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run implements framework.Activity.
func (q *Queue) Run(ctx context.Context) (time.Duration, error) {
	q.Service.Maintain()
	req := q.next()
	if req == nil {
		return q.Idle, nil
	}
	value, err := q.execute(req)
	if pe, ok := err.(*framework.PanicError); ok {
		req.reply <- reply{err: ErrInternal}
		return 0, pe
	}
	req.reply <- reply{value: value, err: err}
	if err != nil {
		glog.V(2).Infof("request %s from %s: %v", req.id, req.source, err)
	}
	if len(q.requests) > 0 {
		return 0, nil
	}
	return q.Idle, nil
}

// next dequeues the first request whose submitter is still waiting.
func (q *Queue) next() *request {
	for {
		select {
		case req := <-q.requests:
			if err := req.ctx.Err(); err != nil {
				glog.V(2).Infof("request %s from %s dropped: %v", req.id, req.source, err)
				continue
			}
			return req
		default:
			return nil
		}
	}
}

func (q *Queue) execute(req *request) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &framework.PanicError{Activity: ServeActivity + "/" + req.id, Value: r, Stack: debug.Stack()}
		}
	}()
	return req.exec(q.Service)
}
