package framework

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultBackoff is the delay before a failed activity is retried.
const DefaultBackoff = time.Second

// idleWait bounds the sleep when nothing is scheduled.
const idleWait = time.Second

// Scheduler interleaves Activities on a single goroutine.
//
// Activities never run concurrently with each other: the goroutine calling
// Run executes them one at a time, and an activity only gives control back
// by returning. State shared by activities therefore needs no locking as
// long as it is only touched from within Activity.Run.
type Scheduler struct {
	// Backoff is applied after an activity returns an error or panics.
	Backoff time.Duration
	// Now is the clock, defaults to time.Now.
	Now func() time.Time

	entries []*scheduled

	wakeLock sync.Mutex
	woken    map[string]bool
	wakeUpCh chan struct{}
}

type scheduled struct {
	activity Activity
	due      time.Time
	runs     uint64
	faults   uint64
}

// NewScheduler creates a Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		Backoff:  DefaultBackoff,
		woken:    make(map[string]bool),
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add registers activities. New activities are due immediately.
func (s *Scheduler) Add(activities ...Activity) *Scheduler {
	for _, a := range activities {
		s.entries = append(s.entries, &scheduled{activity: a})
	}
	return s
}

// Wake implements Waker. It is safe to call from any goroutine.
func (s *Scheduler) Wake(name string) {
	s.wakeLock.Lock()
	s.woken[name] = true
	s.wakeLock.Unlock()
	select {
	case s.wakeUpCh <- struct{}{}:
	default:
	}
}

// Stats reports per-activity counters. Only call it from an activity or
// when the scheduler is not running.
func (s *Scheduler) Stats() []ActivityStats {
	stats := make([]ActivityStats, len(s.entries))
	for n, e := range s.entries {
		stats[n] = ActivityStats{
			Name:   e.activity.Name(),
			Runs:   e.runs,
			Faults: e.faults,
			Due:    e.due,
		}
	}
	return stats
}

// Run implements Runnable. It returns when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		next := s.RunDue(ctx, s.now())
		wait := next.Sub(s.now())
		if wait < 0 {
			wait = 0
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		case <-s.wakeUpCh:
		}
	}
}

// RunDue runs every activity due at now exactly once, earliest first, and
// returns the time the next activity becomes due.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) time.Time {
	s.applyWakeUps(now)
	for _, e := range s.dueEntries(now) {
		if ctx.Err() != nil {
			break
		}
		s.runEntry(ctx, e)
	}
	return s.nextDue(now)
}

func (s *Scheduler) applyWakeUps(now time.Time) {
	s.wakeLock.Lock()
	woken := s.woken
	if len(woken) > 0 {
		s.woken = make(map[string]bool)
	}
	s.wakeLock.Unlock()
	if len(woken) == 0 {
		return
	}
	for _, e := range s.entries {
		if woken[e.activity.Name()] && e.due.After(now) {
			e.due = now
		}
	}
}

func (s *Scheduler) dueEntries(now time.Time) []*scheduled {
	var due []*scheduled
	for _, e := range s.entries {
		if e.due.After(now) {
			continue
		}
		// insertion keeps registration order for equal due times.
		pos := len(due)
		for pos > 0 && due[pos-1].due.After(e.due) {
			pos--
		}
		due = append(due, nil)
		copy(due[pos+1:], due[pos:])
		due[pos] = e
	}
	return due
}

func (s *Scheduler) nextDue(now time.Time) time.Time {
	next := now.Add(idleWait)
	for _, e := range s.entries {
		if e.due.Before(next) {
			next = e.due
		}
	}
	return next
}

func (s *Scheduler) runEntry(ctx context.Context, e *scheduled) {
	name := e.activity.Name()
	interval, err := s.invoke(ctx, e.activity)
	e.runs++
	if err != nil && ctx.Err() == nil {
		e.faults++
		glog.Errorf("activity %s failed: %v", name, err)
		if pe, ok := err.(*PanicError); ok {
			glog.V(1).Infof("activity %s stack:\n%s", name, pe.Stack)
		}
		interval = s.Backoff
		if interval <= 0 {
			interval = DefaultBackoff
		}
	}
	if interval < 0 {
		interval = 0
	}
	e.due = s.now().Add(interval)
	glog.V(5).Infof("activity %s next in %v", name, interval)
}

func (s *Scheduler) invoke(ctx context.Context, a Activity) (interval time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Activity: a.Name(), Value: r, Stack: debug.Stack()}
		}
	}()
	return a.Run(ctx)
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
