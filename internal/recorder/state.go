package recorder

import "fmt"

// State is a step of one recorder execution
type State int

const (
	StateIdle State = iota
	StateDeciding
	StateExecuting
	StateReconciling
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDeciding:
		return "DECIDING"
	case StateExecuting:
		return "EXECUTING"
	case StateReconciling:
		return "RECONCILING"
	case StateCommitted:
		return "COMMITTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateDeciding
	case StateDeciding:
		return to == StateExecuting || to == StateCommitted
	case StateExecuting:
		return to == StateReconciling
	case StateReconciling:
		return to == StateCommitted
	default:
		return false
	}
}

// execution tracks the state path of one notification
type execution struct {
	state State
	path  []State
}

func newExecution() *execution {
	return &execution{state: StateIdle, path: []State{StateIdle}}
}

// transition moves to the next state. An invalid transition is a bug in the
// recorder itself, so it panics.
func (e *execution) transition(to State) {
	if !isAllowedTransition(e.state, to) {
		panic(fmt.Sprintf("recorder: disallowed transition %s -> %s", e.state, to))
	}
	e.state = to
	e.path = append(e.path, to)
}
