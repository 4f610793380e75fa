package sever

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// InterruptSource is the host's pending-interrupt capability. The engine
// calls it with no arguments at stage boundaries; the caller owns the real
// source of truth and translates its own interrupt state into the boolean.
//
// A query that fails on the host side should report true: the computation
// halts either way, and the collaborator that knows the real error keeps
// the nuance.
type InterruptSource interface {
	// Pending reports whether an interrupt has been requested.
	Pending() bool
}

// InterruptFlag is an in-process interrupt condition. It implements both
// InterruptSource (for cancellation policies) and Target (for the pulser),
// so tests can inject synthetic interrupts without touching OS signal state.
//
// The zero value is ready to use and reports no pending interrupt.
type InterruptFlag struct {
	pending atomic.Bool
}

// Raise marks the interrupt as pending.
func (f *InterruptFlag) Raise() {
	f.pending.Store(true)
}

// Clear resets the flag so the next computation starts uninterrupted.
func (f *InterruptFlag) Clear() {
	f.pending.Store(false)
}

// Pending reports whether Raise has been called since the last Clear.
func (f *InterruptFlag) Pending() bool {
	return f.pending.Load()
}

// WatchContext adapts a context to an InterruptSource: the interrupt is
// pending once the context is canceled or its deadline passes.
func WatchContext(ctx context.Context) InterruptSource {
	return contextSource{ctx: ctx}
}

type contextSource struct {
	ctx context.Context
}

func (s contextSource) Pending() bool {
	return s.ctx.Err() != nil
}

// checkMode selects the cancellation checking strategy.
type checkMode int

const (
	modeNever checkMode = iota
	modeAlways
	modeEvery
	modeEveryCoarse
)

// Policy describes when a transform consults its interrupt source. A Policy
// is an immutable configuration value; the per-invocation state (last-check
// instant, check counter) lives inside the transform call.
type Policy struct {
	source   InterruptSource
	clock    clockz.Clock
	gate     sync.Locker
	interval time.Duration
	mode     checkMode
	release  bool
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithClock sets a custom clock for rate-limit windows and elapsed-time
// telemetry. Use this with clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) PolicyOption {
	return func(p *Policy) {
		p.clock = clock
	}
}

// WithGate sets the host's exclusive-execution lock. When set, every
// consultation of the interrupt source acquires the gate and releases it
// immediately after, on every exit path.
func WithGate(gate sync.Locker) PolicyOption {
	return func(p *Policy) {
		p.gate = gate
	}
}

// WithGateRelease tells the engine it is safe to release the gate for the
// duration of the numeric work. The caller must hold the gate when invoking
// the transform; it is re-acquired before the transform returns, and the
// periodic checks re-acquire it on their own.
func WithGateRelease() PolicyOption {
	return func(p *Policy) {
		p.release = true
	}
}

// Never returns a policy that never consults an interrupt source. A
// transform run under it can never be interrupted; its check counter still
// counts the stage boundaries that would have been checked.
func Never(opts ...PolicyOption) Policy {
	return newPolicy(modeNever, 0, nil, opts)
}

// Always returns a policy that consults source at every stage boundary.
// Most responsive, highest overhead: each consultation may synchronize with
// the host's exclusive-execution context.
func Always(source InterruptSource, opts ...PolicyOption) Policy {
	return newPolicy(modeAlways, 0, source, opts)
}

// Every returns a policy that consults source only when at least interval
// has elapsed since the previous consultation. The interval is a minimum
// gap between expensive checks, not a hard deadline. A zero interval checks
// unconditionally on every call.
func Every(interval time.Duration, source InterruptSource, opts ...PolicyOption) Policy {
	return newPolicy(modeEvery, interval, source, opts)
}

// EveryCoarse is Every on a coarse clock reading, trading timing precision
// for lower per-check cost where the platform offers a cheaper clock.
func EveryCoarse(interval time.Duration, source InterruptSource, opts ...PolicyOption) Policy {
	return newPolicy(modeEveryCoarse, interval, source, opts)
}

func newPolicy(mode checkMode, interval time.Duration, source InterruptSource, opts []PolicyOption) Policy {
	if interval < 0 {
		interval = 0
	}
	p := Policy{
		mode:     mode,
		interval: interval,
		source:   source,
		clock:    clockz.RealClock,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// checker is the per-invocation state of a Policy: created when a transform
// starts, mutated only by that invocation's checks, discarded when it ends.
type checker struct {
	policy Policy
	last   Instant
	checks uint64
}

// newChecker seeds the rate-limit window at the transform's start instant,
// so the first consultation happens only after a full interval.
func (p Policy) newChecker(start Instant) *checker {
	return &checker{policy: p, last: start}
}

// check reports whether the computation should abort. Every call increments
// the check counter, whether or not the interrupt source is consulted.
func (c *checker) check() bool {
	c.checks++

	switch c.policy.mode {
	case modeNever:
		return false

	case modeAlways:
		return c.query()

	case modeEvery:
		now := fineNow(c.policy.clock)
		if !ElapsedAtLeast(now, c.last, c.policy.interval) {
			return false
		}
		c.last = now
		return c.query()

	case modeEveryCoarse:
		now := coarseNow(c.policy.clock)
		if !ElapsedAtLeast(now, c.last, c.policy.interval) {
			return false
		}
		c.last = now
		return c.query()

	default:
		return false
	}
}

// query consults the interrupt source, holding the gate for exactly the
// duration of the consultation when one is configured.
func (c *checker) query() bool {
	if c.policy.source == nil {
		return false
	}
	if c.policy.gate != nil {
		c.policy.gate.Lock()
		defer c.policy.gate.Unlock()
	}
	return c.policy.source.Pending()
}
