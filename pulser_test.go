package sever

import (
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestNewPulser_Validation(t *testing.T) {
	flag := &InterruptFlag{}

	if _, err := NewPulser(0, flag); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("zero interval = %v, want ErrInvalidInterval", err)
	}
	if _, err := NewPulser(-time.Second, flag); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("negative interval = %v, want ErrInvalidInterval", err)
	}
	if _, err := NewPulser(time.Millisecond, nil); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("nil target = %v, want ErrInvalidTarget", err)
	}

	// One nanosecond is the smallest valid interval.
	if _, err := NewPulser(time.Nanosecond, flag); err != nil {
		t.Errorf("1ns interval = %v, want nil", err)
	}
}

func TestPulser_Accessors(t *testing.T) {
	flag := &InterruptFlag{}

	p, err := NewPulser(25*time.Millisecond, flag)
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	if p.Interval() != 25*time.Millisecond {
		t.Errorf("Interval() = %v", p.Interval())
	}
	if !p.Repeat() {
		t.Error("expected repeat by default")
	}
	if p.State() != StateIdle {
		t.Errorf("State() = %v, want idle", p.State())
	}

	once, err := NewPulser(time.Millisecond, flag, Once())
	if err != nil {
		t.Fatalf("NewPulser(Once) failed: %v", err)
	}
	if once.Repeat() {
		t.Error("Once() must disable repeat")
	}
}

func TestPulser_NestedArmSharesOneWorker(t *testing.T) {
	clock := clockz.NewFakeClock()
	flag := &InterruptFlag{}

	p, err := NewPulser(10*time.Millisecond, flag, PulserClock(clock))
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	p.Arm()
	first := p.stop
	p.Arm()
	p.Arm()

	// Nested arms adjust the depth only; the worker from the first arm is
	// still the one running.
	if p.stop != first {
		t.Fatal("nested Arm started a second worker")
	}
	if p.State() != StateArmed {
		t.Fatalf("State() = %v, want armed", p.State())
	}

	p.Disarm()
	p.Disarm()
	if p.State() != StateArmed {
		t.Fatal("inner Disarm stopped the shared worker")
	}

	p.Disarm()
	if p.State() != StateIdle {
		t.Fatalf("State() = %v, want idle after matching disarms", p.State())
	}

	// Disarming an idle pulser is a no-op.
	p.Disarm()
	if p.State() != StateIdle {
		t.Fatal("Disarm on idle pulser changed state")
	}
}

func TestPulser_FiresEachInterval(t *testing.T) {
	const pulses = 10

	clock := clockz.NewFakeClock()
	flag := &InterruptFlag{}

	p, err := NewPulser(10*time.Millisecond, flag, PulserClock(clock))
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	p.Arm()
	defer p.Disarm()

	// Step the fake clock one interval at a time, giving the worker a
	// moment to re-arm its timer between steps. A couple of spare steps
	// absorb scheduling lag, mirroring the jitter a real timer would see.
	advances := 0
	for p.Raised() < pulses && advances < pulses+3 {
		clock.Advance(p.Interval())
		clock.BlockUntilReady()
		advances++
		waitBriefly(func() bool { return p.Raised() >= uint64(advances) })
	}

	// One pulse per elapsed interval: at least the ten we stepped through,
	// never more than the clock actually advanced.
	if got := p.Raised(); got < pulses || got > uint64(advances) {
		t.Fatalf("raised %d pulses after %d intervals, want about %d", got, advances, pulses)
	}
	if !flag.Pending() {
		t.Error("target flag not raised")
	}
}

func TestPulser_NoPulseAfterDisarmReturns(t *testing.T) {
	clock := clockz.NewFakeClock()
	flag := &InterruptFlag{}

	p, err := NewPulser(10*time.Millisecond, flag, PulserClock(clock))
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	p.Arm()
	waitFor(t, "first pulse", func() bool {
		clock.Advance(10 * time.Millisecond)
		clock.BlockUntilReady()
		return p.Raised() >= 1
	})

	p.Disarm()
	settled := p.Raised()

	// The worker is joined before Disarm returns, so no amount of clock
	// movement can produce another pulse.
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Millisecond)
		clock.BlockUntilReady()
	}
	time.Sleep(5 * time.Millisecond)

	if got := p.Raised(); got != settled {
		t.Fatalf("raised %d pulses after Disarm returned (was %d)", got, settled)
	}
}

func TestPulser_OnceFiresExactlyOnce(t *testing.T) {
	clock := clockz.NewFakeClock()
	flag := &InterruptFlag{}

	p, err := NewPulser(10*time.Millisecond, flag, PulserClock(clock), Once())
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	p.Arm()
	waitFor(t, "single pulse", func() bool {
		clock.Advance(10 * time.Millisecond)
		clock.BlockUntilReady()
		return p.Raised() >= 1
	})

	// More time passes; no further pulse in one-shot mode.
	for i := 0; i < 5; i++ {
		clock.Advance(10 * time.Millisecond)
		clock.BlockUntilReady()
	}
	time.Sleep(5 * time.Millisecond)

	if got := p.Raised(); got != 1 {
		t.Fatalf("raised %d pulses, want exactly 1", got)
	}

	p.Disarm()
	if p.State() != StateIdle {
		t.Fatal("pulser not idle after Disarm")
	}
}

func TestPulser_RearmAfterDisarm(t *testing.T) {
	clock := clockz.NewFakeClock()
	flag := &InterruptFlag{}

	p, err := NewPulser(10*time.Millisecond, flag, PulserClock(clock))
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	p.Arm()
	waitFor(t, "pulse in first armed period", func() bool {
		clock.Advance(10 * time.Millisecond)
		clock.BlockUntilReady()
		return p.Raised() >= 1
	})
	p.Disarm()

	afterFirst := p.Raised()

	p.Arm()
	waitFor(t, "pulse in second armed period", func() bool {
		clock.Advance(10 * time.Millisecond)
		clock.BlockUntilReady()
		return p.Raised() > afterFirst
	})
	p.Disarm()

	if p.State() != StateIdle {
		t.Fatal("pulser not idle after second period")
	}
}

func TestPulser_ArmedScope(t *testing.T) {
	flag := &InterruptFlag{}

	p, err := NewPulser(time.Hour, flag)
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	wantErr := errors.New("callback failed")
	err = p.Armed(func() error {
		if p.State() != StateArmed {
			t.Error("not armed inside Armed scope")
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Armed returned %v, want the callback's error", err)
	}
	if p.State() != StateIdle {
		t.Fatal("not disarmed after Armed scope")
	}
}

func TestPulser_ArmedDisarmsOnPanic(t *testing.T) {
	flag := &InterruptFlag{}

	p, err := NewPulser(time.Hour, flag)
	if err != nil {
		t.Fatalf("NewPulser failed: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the panic to propagate")
			}
		}()
		_ = p.Armed(func() error {
			panic("mid-scope failure")
		})
	}()

	if p.State() != StateIdle {
		t.Fatal("not disarmed after panic in Armed scope")
	}
}

// waitFor polls cond until it holds, failing the test after a bounded wait.
// cond may advance a fake clock as part of each attempt.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// waitBriefly polls cond for a short, non-fatal window; used where lag is
// tolerated rather than an error.
func waitBriefly(cond func() bool) {
	deadline := time.Now().Add(50 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
