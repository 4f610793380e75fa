/*
Package sever makes long-running numeric computations interruptible.

A divide-and-conquer transform over complex samples checks a cancellation
policy at its stage boundaries and abandons the remaining work as soon as
an interrupt is pending. An independent pulser raises interrupts at a
fixed period so the cancellation path can be exercised and benchmarked
without touching real OS signal state.

# Basic Usage

Run a transform under a rate-limited cancellation policy:

	flag := &sever.InterruptFlag{}

	in := make([]complex64, 1<<20)
	out := make([]complex64, 1<<20)

	res, err := sever.Transform(ctx, out, in,
	    sever.Every(5*time.Millisecond, flag))
	if err != nil {
	    return err
	}
	if res.Interrupted {
	    log.Printf("aborted after %v (%d checks)", res.Elapsed, res.Checks)
	}

Any source of truth for "an interrupt is pending" works; the policy only
needs a Pending() bool capability. InterruptFlag is the in-process
implementation, and WatchContext adapts a context.Context.

# Cancellation Policies

Never performs no checks and can never interrupt. Always consults the
interrupt source at every stage boundary, which is the most responsive
and the most expensive. Every(interval, src) consults the source only
when at least interval has elapsed since the previous consultation,
keeping the hot path nearly free of synchronization. EveryCoarse is the
same policy on a cheaper, lower-resolution clock reading where the
platform offers one.

When the interrupt source lives behind a host runtime's exclusive
execution context, pass the lock with WithGate; each consultation
acquires and releases it tightly. WithGateRelease additionally releases
the gate for the duration of the numeric work, re-acquiring it only
around checks.

# Driving Interrupts

Pulser raises an interrupt against a target at a fixed period, once or
repeatedly, from a dedicated worker:

	pulser, err := sever.NewPulser(10*time.Millisecond, flag)
	if err != nil {
	    return err
	}

	err = pulser.Armed(func() error {
	    _, err := sever.Transform(ctx, out, in, sever.Always(flag))
	    return err
	})

Arm and Disarm nest: the worker starts on the first Arm and is fully
joined by the Disarm that returns the pulser to idle. No interrupt is
raised after Disarm returns.

FileTrigger raises the interrupt when a watched file is written, for
cancelling a computation from outside the process.

# Deterministic Testing

Every time-dependent component accepts a clockz.Clock. Use
clockz.NewFakeClock() to drive rate-limit windows and pulse periods
deterministically, without sleeps.
*/
package sever
