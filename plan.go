package sever

import (
	"errors"
	"fmt"
	"math"
)

// MaxSamples is the largest supported transform length.
const MaxSamples = int64(1) << 31

// Transform length errors, detected before any output is written.
var (
	// ErrNotPowerOfTwo reports a length that does not factor entirely into
	// fours and twos.
	ErrNotPowerOfTwo = errors.New("sample count is not a power of two")

	// ErrTooManySamples reports a length above MaxSamples.
	ErrTooManySamples = errors.New("too many samples")

	// ErrEmptyInput reports a zero-length input.
	ErrEmptyInput = errors.New("not enough samples: have 0 need 1")

	// ErrSizeMismatch reports input and output buffers of different lengths.
	ErrSizeMismatch = errors.New("input and output must be same size")
)

// factor describes one stage of the decimation: the radix to split into and
// the length of each sub-problem.
type factor struct {
	radix  uint32
	stride uint32
}

// Plan holds the precomputed state for one transform invocation: the stage
// factorization and the twiddle table. A Plan fully describes the recursion
// structure and is immutable once built. It is not safe for concurrent use
// of Execute with overlapping buffers, but carries no mutable state itself.
type Plan struct {
	factors  []factor
	twiddles []complex64
	n        int
}

// NewPlan builds the factorization and twiddle table for an n-point
// transform. n must be a power of two between 1 and MaxSamples.
func NewPlan(n int) (*Plan, error) {
	if n <= 0 {
		return nil, ErrEmptyInput
	}
	if int64(n) > MaxSamples {
		return nil, fmt.Errorf("%w: have %d limit %d", ErrTooManySamples, n, MaxSamples)
	}

	factors, ok := factorize(uint32(n))
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}

	// Twiddles are computed in float64 from -2*pi*k/n and rounded once to
	// single precision, keeping accumulated phase error down.
	twiddles := make([]complex64, n-1)
	for k := range twiddles {
		phase := -2 * math.Pi * float64(k) / float64(n)
		twiddles[k] = complex(float32(math.Cos(phase)), float32(math.Sin(phase)))
	}

	return &Plan{factors: factors, twiddles: twiddles, n: n}, nil
}

// Len returns the transform length the plan was built for.
func (p *Plan) Len() int {
	return p.n
}

// factorize extracts all factors of four, then at most one factor of two.
// Each entry records the radix and the remaining sub-problem length, so
// radix*stride at one stage equals the stride of the stage before it. An n
// that does not reduce to exactly 1 is not a power of two.
func factorize(n uint32) ([]factor, bool) {
	// 2^31 samples need 16 factors; every smaller power of two needs fewer.
	factors := make([]factor, 0, 16)

	for n%4 == 0 {
		n /= 4
		factors = append(factors, factor{radix: 4, stride: n})
	}
	if n%2 == 0 {
		n /= 2
		factors = append(factors, factor{radix: 2, stride: n})
	}

	return factors, n == 1
}
