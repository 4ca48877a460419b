package poke

import (
	"fmt"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"

	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/packet"
)

// Outcome is the result of a responder run.
type Outcome int

const (
	// OutcomeNone means the run has not finished, or finished with an
	// error reported by Err.
	OutcomeNone Outcome = iota
	OutcomeSent
	OutcomeTimedOut
	OutcomeRegistrationFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeRegistrationFailed:
		return "registration failed"
	default:
		return "none"
	}
}

// State is the responder lifecycle position.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateTerminal
)

// Responder answers the first matching Interest with one Data packet.
//
// All methods and callbacks must run on the same goroutine (the event
// loop).  At most one registration and one timeout are active at any
// time, and once the responder is terminal every later event is
// ignored.
type Responder struct {
	opts Options
	deps Deps

	state   State
	outcome Outcome
	err     error
	data    *packet.Data

	registration Handle
	timeout      Handle
	done         chan struct{}
}

// NewResponder returns an idle responder.  deps.Scheduler and
// deps.Reporter may be nil in force mode.
func NewResponder(opts Options, deps Deps) *Responder {
	return &Responder{
		opts: opts,
		deps: deps,
		done: make(chan struct{}),
	}
}

// Start builds and signs the Data, then either puts it immediately
// (force mode) or registers the prefix and waits for an Interest.
//
// Build and signing errors are returned and leave the responder Idle.
func (r *Responder) Start() error {
	if r.state != StateIdle {
		return fmt.Errorf("responder already started")
	}

	data, err := BuildContent(r.opts, r.deps.Payload, r.deps.Signer)
	if err != nil {
		return err
	}
	r.data = data
	r.state = StateArmed

	if r.opts.ForceSend {
		if err := r.deps.Transport.Put(data); err != nil {
			r.finish(OutcomeNone, err)
			return err
		}
		r.finish(OutcomeSent, nil)
		return nil
	}

	h := r.deps.Transport.RegisterPrefix(r.opts.Name, r.onInterest, r.onRegisterSuccess, r.onRegisterFailure)
	if r.state == StateTerminal {
		// A callback already finished the run from inside RegisterPrefix.
		h.Cancel()
		return nil
	}
	r.registration = h
	return nil
}

// Outcome returns the terminal outcome, OutcomeNone until then.
func (r *Responder) Outcome() Outcome { return r.outcome }

// State returns the current lifecycle state.
func (r *Responder) State() State { return r.state }

// Err returns the error that ended the run without an outcome, or the
// registration failure.
func (r *Responder) Err() error { return r.err }

// Done is closed on the terminal transition.
func (r *Responder) Done() <-chan struct{} { return r.done }

// Data returns the built packet, nil before Start.
func (r *Responder) Data() *packet.Data { return r.data }

// ── Callbacks ────────────────────────────────────────────────────────

func (r *Responder) onInterest(_ ndn.Interest) {
	if r.state != StateArmed {
		return
	}
	r.cancelTimeout()
	if err := r.deps.Transport.Put(r.data); err != nil {
		r.finish(OutcomeNone, err)
		return
	}
	r.finish(OutcomeSent, nil)
}

func (r *Responder) onRegisterSuccess(_ enc.Name) {
	if r.state != StateArmed || r.timeout != nil {
		return
	}
	if d, ok := r.opts.Timeout.Get(); ok {
		r.timeout = r.deps.Scheduler.Schedule(d, r.onTimeout)
	}
}

func (r *Responder) onRegisterFailure(prefix enc.Name, reason string) {
	if r.state != StateArmed {
		return
	}
	if r.deps.Reporter != nil {
		r.deps.Reporter.Error("Prefix registration failure (%s)", reason)
	}
	r.finish(OutcomeRegistrationFailed, &ncerr.RegistrationError{Prefix: prefix.String(), Reason: reason})
}

func (r *Responder) onTimeout() {
	if r.state != StateArmed {
		return
	}
	r.timeout = nil
	r.finish(OutcomeTimedOut, nil)
}

// ── Transitions ──────────────────────────────────────────────────────

func (r *Responder) cancelTimeout() {
	if r.timeout != nil {
		r.timeout.Cancel()
		r.timeout = nil
	}
}

func (r *Responder) finish(o Outcome, err error) {
	r.state = StateTerminal
	r.outcome = o
	r.err = err
	r.cancelTimeout()
	if r.registration != nil {
		r.registration.Cancel()
		r.registration = nil
	}
	close(r.done)
}
