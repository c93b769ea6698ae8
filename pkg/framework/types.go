package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Activity is a repeating unit of cooperative work driven by a Scheduler.
// Run performs exactly one unit of work and must not block; the returned
// duration is the delay before the activity is due again.
type Activity interface {
	Named
	Run(context.Context) (time.Duration, error)
}

// ActivityFunc is the func form of Activity.Run.
type ActivityFunc func(context.Context) (time.Duration, error)

type namedActivity struct {
	name string
	fn   ActivityFunc
}

func (a *namedActivity) Name() string { return a.name }

func (a *namedActivity) Run(ctx context.Context) (time.Duration, error) {
	return a.fn(ctx)
}

// NewActivity wraps an ActivityFunc with a name.
func NewActivity(name string, fn ActivityFunc) Activity {
	return &namedActivity{name: name, fn: fn}
}

// Waker makes a named activity due immediately.
type Waker interface {
	Wake(name string)
}

// ActivityStats reports the bookkeeping of one scheduled activity.
type ActivityStats struct {
	Name   string    `json:"name"`
	Runs   uint64    `json:"runs"`
	Faults uint64    `json:"faults"`
	Due    time.Time `json:"due"`
}
