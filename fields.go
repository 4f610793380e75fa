package sever

import "github.com/zoobzio/capitan"

// Field keys for transform and pulser events.
var (
	// KeySamples is the transform length in samples.
	KeySamples = capitan.NewIntKey("samples")

	// KeyElapsed is the time taken by a transform invocation.
	KeyElapsed = capitan.NewDurationKey("elapsed")

	// KeyChecks is the number of cancellation checks performed.
	KeyChecks = capitan.NewUint64Key("checks")

	// KeyInterval is the configured pulse interval.
	KeyInterval = capitan.NewDurationKey("interval")

	// KeyRaised is the number of interrupts raised so far.
	KeyRaised = capitan.NewUint64Key("raised")

	// KeyPath is the file path a trigger watches.
	KeyPath = capitan.NewStringKey("path")
)
