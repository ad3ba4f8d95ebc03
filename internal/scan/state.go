// Package scan wraps a capture device with the scan-attempt state machine.
// All lifecycle decisions go through a single pure transition function so the
// "device is always released" invariant stays mechanically checkable.
package scan

// State is the current phase of the scan lifecycle.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateScanning
	StateResolving
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateScanning:
		return "scanning"
	case StateResolving:
		return "resolving"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

type eventKind int

const (
	evStart eventKind = iota
	evAcquired
	evAcquireFailed
	evResult
	evResolved
	evResolveFailed
	evStop
	evAck
)

// transition returns the state following e, and whether e is legal in s.
// Illegal events leave the state unchanged.
func transition(s State, e eventKind) (State, bool) {
	switch e {
	case evStart:
		if s == StateIdle {
			return StateAcquiring, true
		}
	case evAcquired:
		if s == StateAcquiring {
			return StateScanning, true
		}
	case evAcquireFailed:
		if s == StateAcquiring {
			return StateError, true
		}
	case evResult:
		if s == StateScanning {
			return StateResolving, true
		}
	case evResolved:
		if s == StateResolving {
			return StateIdle, true
		}
	case evResolveFailed:
		if s == StateResolving {
			return StateError, true
		}
	case evStop:
		// user cancel is legal from every state
		return StateIdle, true
	case evAck:
		if s == StateError {
			return StateIdle, true
		}
	}
	return s, false
}
