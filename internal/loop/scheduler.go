package loop

import (
	"sync/atomic"
	"time"
)

const (
	eventPending int32 = iota
	eventFired
	eventCancelled
)

// Scheduler arms one-shot timers whose actions run on a Loop.
type Scheduler struct {
	loop *Loop
}

// NewScheduler returns a scheduler posting into l.
func NewScheduler(l *Loop) *Scheduler {
	return &Scheduler{loop: l}
}

// Event is a scheduled action.  It fires at most once.
type Event struct {
	state atomic.Int32
	timer *time.Timer
}

// Schedule runs fn on the loop after d.
func (s *Scheduler) Schedule(d time.Duration, fn func()) *Event {
	ev := &Event{}
	ev.timer = time.AfterFunc(d, func() {
		s.loop.Post(func() {
			if ev.state.CompareAndSwap(eventPending, eventFired) {
				fn()
			}
		})
	})
	return ev
}

// Cancel prevents the action from running if it has not yet started.
// Calling it again, or after the event fired, does nothing.
func (e *Event) Cancel() {
	if e.state.CompareAndSwap(eventPending, eventCancelled) {
		e.timer.Stop()
	}
}

// Fired reports whether the action ran.
func (e *Event) Fired() bool { return e.state.Load() == eventFired }
