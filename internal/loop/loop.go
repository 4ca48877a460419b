// Package loop runs every ndnpoke callback on a single goroutine.
//
// Other goroutines (the face reader, timers) never touch responder or
// face state directly; they Post closures that Run executes in order.
package loop

import (
	"context"
	"sync"
)

// Loop is a FIFO of closures drained by one goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
}

// New returns an idle loop.  Call Run to start dispatching.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn for execution on the loop goroutine.  It never blocks
// and is safe from any goroutine.  Posts after Stop are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
}

// Stop makes Run return once the closure in progress finishes.
// Queued closures are discarded.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()
	l.signal()
}

// Run dispatches posted closures until Stop is called (returns nil) or
// ctx is done (returns ctx.Err()).
func (l *Loop) Run(ctx context.Context) error {
	for {
		fn, stopped := l.next()
		if stopped {
			return nil
		}
		if fn != nil {
			fn()
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return nil, true
	}
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, false
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
