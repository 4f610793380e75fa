package sever

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Pulser construction errors.
var (
	// ErrInvalidInterval reports a pulse interval below one nanosecond.
	ErrInvalidInterval = errors.New("interval must be positive, minimum 1ns")

	// ErrInvalidTarget reports a nil interrupt target.
	ErrInvalidTarget = errors.New("target must not be nil")
)

// Target receives the interrupts a Pulser raises. InterruptFlag implements
// Target, closing the loop between the pulser and a cancellation policy
// watching the same flag.
type Target interface {
	// Raise delivers one interrupt.
	Raise()
}

// Pulser raises an interrupt against a target at a fixed interval, once or
// repeatedly, from a dedicated background worker.
//
// Arm and Disarm are reentrant: nested scopes share one running worker, which
// starts only on the transition from depth 0 to 1 and stops, fully joined,
// only on the transition back to 0. No interrupt is raised after the Disarm
// that returns the pulser to idle.
type Pulser struct {
	target   Target
	clock    clockz.Clock
	interval time.Duration
	repeat   bool

	mu    sync.Mutex
	depth int
	stop  chan struct{}
	done  chan struct{}

	raised atomic.Uint64
}

// PulserOption configures a Pulser.
type PulserOption func(*Pulser)

// Once makes the pulser raise a single interrupt per armed period instead of
// repeating until disarmed.
func Once() PulserOption {
	return func(p *Pulser) {
		p.repeat = false
	}
}

// PulserClock sets a custom clock for pulse scheduling. Use this with
// clockz.FakeClock for deterministic tests.
func PulserClock(clock clockz.Clock) PulserOption {
	return func(p *Pulser) {
		p.clock = clock
	}
}

// NewPulser creates a Pulser that raises an interrupt against target every
// interval while armed. The interval must be at least one nanosecond and the
// target must not be nil; both are validated here, never left latent.
func NewPulser(interval time.Duration, target Target, opts ...PulserOption) (*Pulser, error) {
	if interval < time.Nanosecond {
		return nil, ErrInvalidInterval
	}
	if target == nil {
		return nil, ErrInvalidTarget
	}

	p := &Pulser{
		target:   target,
		clock:    clockz.RealClock,
		interval: interval,
		repeat:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Interval returns the configured pulse interval.
func (p *Pulser) Interval() time.Duration {
	return p.interval
}

// Repeat reports whether the pulser raises repeatedly until disarmed.
func (p *Pulser) Repeat() bool {
	return p.repeat
}

// Raised returns how many interrupts have been raised across all armed
// periods.
func (p *Pulser) Raised() uint64 {
	return p.raised.Load()
}

// State returns Idle or Armed.
func (p *Pulser) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.depth > 0 {
		return StateArmed
	}
	return StateIdle
}

// Arm starts raising interrupts. Nested calls only increment the entry
// depth; the worker is spawned on the first one. Every Arm must be paired
// with a Disarm; use Armed for a scope that guarantees the pairing.
func (p *Pulser) Arm() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.depth++
	if p.depth > 1 {
		return
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)

	capitan.Emit(context.Background(), PulserArmed,
		KeyInterval.Field(p.interval),
	)
}

// Disarm undoes one Arm. The call that returns the depth to zero requests
// the worker to stop and blocks until it has fully exited, guaranteeing no
// interrupt is raised after Disarm returns. Disarming an idle pulser is a
// no-op.
func (p *Pulser) Disarm() {
	p.mu.Lock()
	if p.depth == 0 {
		p.mu.Unlock()
		return
	}
	p.depth--
	if p.depth > 0 {
		p.mu.Unlock()
		return
	}

	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	close(stop)
	<-done

	capitan.Emit(context.Background(), PulserDisarmed,
		KeyRaised.Field(p.raised.Load()),
	)
}

// Armed runs fn inside an armed scope, disarming on every exit path
// including panics.
func (p *Pulser) Armed(fn func() error) error {
	p.Arm()
	defer p.Disarm()
	return fn()
}

// run is the background worker. Each wait targets an absolute next-fire
// deadline rather than a relative delay, so early wakeups cannot drift the
// period; the stop request is observed as a channel close, which cannot be
// missed no matter how the select wakes.
func (p *Pulser) run(stop, done chan struct{}) {
	defer close(done)

	next := p.clock.Now().Add(p.interval)
	timer := p.clock.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return

		case <-timer.C():
			p.target.Raise()
			p.raised.Add(1)
			capitan.Emit(context.Background(), PulserFired,
				KeyRaised.Field(p.raised.Load()),
			)

			if !p.repeat {
				// One-shot: hold the armed state without firing again
				// until the owner disarms.
				<-stop
				return
			}

			next = next.Add(p.interval)
			wait := next.Sub(p.clock.Now())
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
		}
	}
}
