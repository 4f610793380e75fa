package sever

import "github.com/zoobzio/capitan"

// Transform lifecycle signals.
var (
	// TransformStarted is emitted when a transform invocation begins.
	TransformStarted = capitan.NewSignal(
		"sever.transform.started",
		"Transform invocation started",
	)

	// TransformCompleted is emitted when a transform runs to completion.
	TransformCompleted = capitan.NewSignal(
		"sever.transform.completed",
		"Transform completed",
	)

	// TransformInterrupted is emitted when the cancellation policy aborts a
	// transform mid-computation.
	TransformInterrupted = capitan.NewSignal(
		"sever.transform.interrupted",
		"Transform interrupted by cancellation policy",
	)
)

// Pulser lifecycle signals.
var (
	// PulserArmed is emitted when the background worker starts, on the
	// first of possibly nested Arm calls.
	PulserArmed = capitan.NewSignal(
		"sever.pulser.armed",
		"Pulser worker started",
	)

	// PulserDisarmed is emitted after the worker has fully stopped, on the
	// Disarm call that returns the pulser to idle.
	PulserDisarmed = capitan.NewSignal(
		"sever.pulser.disarmed",
		"Pulser worker stopped and joined",
	)

	// PulserFired is emitted each time the worker raises an interrupt.
	PulserFired = capitan.NewSignal(
		"sever.pulser.fired",
		"Interrupt raised against target",
	)
)

// Trigger signals.
var (
	// TriggerFired is emitted when a file trigger raises an interrupt.
	TriggerFired = capitan.NewSignal(
		"sever.trigger.fired",
		"File change raised an interrupt",
	)
)
