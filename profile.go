package sever

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is the shared validator instance.
var validate = validator.New()

// Profile is a tuning profile for interruptible computations: how often the
// cancellation policy may consult its interrupt source, and how a driving
// pulser should be configured. Intervals are expressed as floating-point
// seconds, the conventional unit for host-level configuration; they are
// converted to nanosecond durations internally.
type Profile struct {
	// CheckInterval is the minimum gap between interrupt-source
	// consultations, in seconds. Zero checks unconditionally.
	CheckInterval float64 `yaml:"check_interval" json:"check_interval" validate:"gte=0"`

	// CoarseClock selects the lower-cost coarse clock reading for the
	// rate-limited policy.
	CoarseClock bool `yaml:"coarse_clock" json:"coarse_clock"`

	// PulseInterval is the period between raised interrupts, in seconds.
	PulseInterval float64 `yaml:"pulse_interval" json:"pulse_interval" validate:"gt=0"`

	// Repeat selects repeated delivery; false raises a single interrupt per
	// armed period.
	Repeat bool `yaml:"repeat" json:"repeat"`
}

// DefaultProfile matches the defaults of the original host bindings: check
// at most every 5ms, repeat pulses every 10ms.
func DefaultProfile() Profile {
	return Profile{
		CheckInterval: 0.005,
		PulseInterval: 0.010,
		Repeat:        true,
	}
}

// ParseProfile parses a profile from JSON or YAML, detecting the format
// from content, and validates it.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if err := json.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("unmarshal failed: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("unmarshal failed: %w", err)
		}
	}

	if err := validate.Struct(p); err != nil {
		return Profile{}, fmt.Errorf("validation failed: %w", err)
	}

	return p, nil
}

// Policy builds the cancellation policy this profile describes, watching
// the given interrupt source.
func (p Profile) Policy(source InterruptSource, opts ...PolicyOption) Policy {
	interval := secondsToDuration(p.CheckInterval)
	if p.CoarseClock {
		return EveryCoarse(interval, source, opts...)
	}
	return Every(interval, source, opts...)
}

// Pulser builds the pulser this profile describes, raising against the
// given target.
func (p Profile) Pulser(target Target, opts ...PulserOption) (*Pulser, error) {
	if !p.Repeat {
		opts = append([]PulserOption{Once()}, opts...)
	}
	return NewPulser(secondsToDuration(p.PulseInterval), target, opts...)
}

// CheckIntervalDuration returns the check interval as a Duration.
func (p Profile) CheckIntervalDuration() time.Duration {
	return secondsToDuration(p.CheckInterval)
}

// PulseIntervalDuration returns the pulse interval as a Duration.
func (p Profile) PulseIntervalDuration() time.Duration {
	return secondsToDuration(p.PulseInterval)
}
