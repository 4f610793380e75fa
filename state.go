package sever

// State represents the lifecycle state of a Pulser.
type State int32

const (
	// StateIdle indicates no background worker is running.
	StateIdle State = iota

	// StateArmed indicates the background worker is running and interrupts
	// will be raised at the configured interval.
	StateArmed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	default:
		return "unknown"
	}
}
