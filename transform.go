package sever

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
)

// Result carries the telemetry of one transform invocation. It is populated
// whether the computation completed or was interrupted, so callers can
// distinguish "aborted early" from "failed outright".
type Result struct {
	// Elapsed is the time the invocation took, including plan construction
	// when the plan was built by Transform.
	Elapsed time.Duration

	// Checks is how many times the cancellation policy was queried.
	Checks uint64

	// Interrupted reports that the cancellation policy signaled abort and
	// the output buffer holds partial results.
	Interrupted bool
}

// Transform runs a forward decimation-in-time transform of src into dst
// under the given cancellation policy. Both buffers must have the same
// positive power-of-two length, at most MaxSamples.
//
// The plan is built fresh for this invocation and its construction time is
// included in the result's Elapsed, since for large lengths it is itself
// significant.
//
// Interruption is a recognized outcome, not an error: the result's
// Interrupted field is set and the error is nil. Errors are reserved for
// invalid configurations, which are detected before any output is written.
func Transform(ctx context.Context, dst, src []complex64, policy Policy) (Result, error) {
	if err := checkBuffers(dst, src); err != nil {
		return Result{}, err
	}

	start := policy.clock.Now()

	plan, err := NewPlan(len(src))
	if err != nil {
		return Result{}, err
	}

	return plan.run(ctx, dst, src, policy, start)
}

// Execute runs the planned transform of src into dst under the given
// cancellation policy. Both buffers must have exactly the plan's length.
// Unlike Transform, the factorization and twiddle table are reused as-is,
// which amortizes their cost across repeated invocations of equal length.
func (p *Plan) Execute(ctx context.Context, dst, src []complex64, policy Policy) (Result, error) {
	if err := checkBuffers(dst, src); err != nil {
		return Result{}, err
	}
	if len(src) != p.n {
		return Result{}, fmt.Errorf("%w: plan is for %d samples, have %d", ErrSizeMismatch, p.n, len(src))
	}

	return p.run(ctx, dst, src, policy, policy.clock.Now())
}

// checkBuffers validates the sample buffers eagerly, before any state is
// built or any output written.
func checkBuffers(dst, src []complex64) error {
	if len(dst) != len(src) {
		return ErrSizeMismatch
	}
	if len(src) == 0 {
		return ErrEmptyInput
	}
	if int64(len(src)) > MaxSamples {
		return fmt.Errorf("%w: have %d limit %d", ErrTooManySamples, len(src), MaxSamples)
	}
	return nil
}

func (p *Plan) run(ctx context.Context, dst, src []complex64, policy Policy, start time.Time) (Result, error) {
	capitan.Emit(ctx, TransformStarted,
		KeySamples.Field(p.n),
	)

	chk := policy.newChecker(instantOf(start))

	// The caller indicated it is safe to give up the host's exclusive
	// context for the numeric work; checks re-acquire it on their own.
	if policy.gate != nil && policy.release {
		policy.gate.Unlock()
		defer policy.gate.Lock()
	}

	var aborted bool
	if len(p.factors) == 0 {
		// Length 1: the transform is the identity.
		dst[0] = src[0]
	} else {
		aborted = p.work(dst, src, 0, 1, 0, chk)
	}

	res := Result{
		Elapsed:     policy.clock.Since(start),
		Checks:      chk.checks,
		Interrupted: aborted,
	}

	if aborted {
		capitan.Emit(ctx, TransformInterrupted,
			KeyElapsed.Field(res.Elapsed),
			KeyChecks.Field(res.Checks),
		)
	} else {
		capitan.Emit(ctx, TransformCompleted,
			KeyElapsed.Field(res.Elapsed),
			KeyChecks.Field(res.Checks),
		)
	}

	return res, nil
}

// work runs one stage of the recursion: split into radix sub-transforms of
// length m over a decimated view of the input, then merge them with the
// stage's butterfly. The return value reports abort, which propagates up
// through every enclosing level without performing their combines.
func (p *Plan) work(out, src []complex64, srcOff, stride, level int, chk *checker) bool {
	f := p.factors[level]
	radix := int(f.radix)
	m := int(f.stride)

	if m == 1 {
		for i := 0; i < radix; i++ {
			out[i] = src[srcOff+i*stride]
		}
	} else {
		for i := 0; i < radix; i++ {
			if p.work(out[i*m:(i+1)*m], src, srcOff+i*stride, stride*radix, level+1, chk) {
				return true
			}
		}
	}

	// Checking on both sides of the combine bounds the work wasted by a
	// late cancellation to one stage's butterfly pass.
	if chk.check() {
		return true
	}

	switch radix {
	case 2:
		p.bfly2(out, stride, m)
	case 4:
		p.bfly4(out, stride, m)
	}

	return chk.check()
}

// bfly2 merges two length-m sub-transforms pairwise, one twiddle factor per
// element.
func (p *Plan) bfly2(out []complex64, stride, m int) {
	tw := 0
	for i := 0; i < m; i++ {
		t := out[m+i] * p.twiddles[tw]
		tw += stride
		out[m+i] = out[i] - t
		out[i] += t
	}
}

// bfly4 merges four length-m sub-transforms, three twiddle factors per
// element, via the standard decimation identities.
func (p *Plan) bfly4(out []complex64, stride, m int) {
	m2 := 2 * m
	m3 := 3 * m
	tw1, tw2, tw3 := 0, 0, 0

	for i := 0; i < m; i++ {
		s0 := out[m+i] * p.twiddles[tw1]
		s1 := out[m2+i] * p.twiddles[tw2]
		s2 := out[m3+i] * p.twiddles[tw3]

		s5 := out[i] - s1
		out[i] += s1
		s3 := s0 + s2
		s4 := s0 - s2
		out[m2+i] = out[i] - s3
		tw1 += stride
		tw2 += 2 * stride
		tw3 += 3 * stride
		out[i] += s3

		out[m+i] = complex(real(s5)+imag(s4), imag(s5)-real(s4))
		out[m3+i] = complex(real(s5)-imag(s4), imag(s5)+real(s4))
	}
}
