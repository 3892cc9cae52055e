package device

// Event is a condition the orchestrator observed this tick, driving
// the pure state transition function below. Per the Design Notes in
// §9, the state machine is small enough to express as a pure function
// of (state, event) rather than ad hoc mutation.
type Event int

const (
	// EventNone: nothing notable happened; stay put.
	EventNone Event = iota
	// EventAllocated: device allocation succeeded (NULL -> INIT).
	EventAllocated
	// EventAllocFailed: device allocation failed (-> FAIL).
	EventAllocFailed
	// EventCacheBuilt: build_progress == TileCount and both queues drained.
	EventCacheBuilt
	// EventJobValid: tcount!=0 && bnum!=btout.bnum && age(time0)<BridgeV3.
	EventJobValid
	// EventSolveFound: a queue's solve slot published a winning nonce.
	EventSolveFound
	// EventPhashChanged: the mirrored phash no longer matches the trailer's.
	EventPhashChanged
	// EventStale: the current job no longer satisfies EventJobValid's condition.
	EventStale
	// EventDeviceError: an enqueue/read/compile failure occurred.
	EventDeviceError
)

// Transition computes the next state for (current, ev), per the table
// in §4.5. Unrecognized (state, event) pairs are a no-op: the device
// stays in its current state.
func Transition(current State, ev Event) State {
	if ev == EventDeviceError {
		return StateFail
	}
	if current == StateFail {
		return StateFail // terminal
	}

	switch current {
	case StateNull:
		if ev == EventAllocated {
			return StateInit
		}
		if ev == EventAllocFailed {
			return StateFail
		}
	case StateInit:
		if ev == EventCacheBuilt {
			return StateIdle
		}
	case StateIdle:
		if ev == EventJobValid {
			return StateWork
		}
	case StateWork:
		switch ev {
		case EventPhashChanged:
			return StateInit
		case EventStale:
			return StateIdle
		case EventSolveFound:
			return StateWork // solve found returns VEOK but stays in WORK
		}
	}
	return current
}
