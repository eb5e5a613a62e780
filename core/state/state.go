// Package state defines the flow kinds and the run state machine.
package state

import "fmt"

// FlowKind identifies one of the automation flows.
type FlowKind string

const (
	// FlowBadge clears notification badges in the collection window.
	FlowBadge FlowKind = "badge"
	// FlowStellar rerolls a single stat read by OCR.
	FlowStellar FlowKind = "stellar"
	// FlowArrival rerolls a pair of stats read by OCR.
	FlowArrival FlowKind = "arrival"
)

// Title returns the name shown to the user.
func (k FlowKind) Title() string {
	switch k {
	case FlowBadge:
		return "Collection"
	case FlowStellar:
		return "Stellar"
	case FlowArrival:
		return "Arrival"
	default:
		return string(k)
	}
}

// Kinds lists every flow kind in display order.
func Kinds() []FlowKind {
	return []FlowKind{FlowBadge, FlowStellar, FlowArrival}
}

// RunState represents the state of a flow run.
type RunState int

const (
	// StateIdle is the state before the worker starts.
	StateIdle RunState = iota
	// StateScanning indicates a detector is reading the screen.
	StateScanning
	// StateActing indicates the executor is clicking.
	StateActing
	// StatePaginating indicates a page button is being clicked.
	StatePaginating
	// StateScrolling indicates a panel is being scrolled.
	StateScrolling
	// StateCompleted indicates the flow reached its goal or ran out of work.
	StateCompleted
	// StateStopped indicates the run was cancelled.
	StateStopped
	// StateFaulted indicates the run ended on an unrecoverable failure.
	StateFaulted
)

// String returns the string representation of the state.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScanning:
		return "Scanning"
	case StateActing:
		return "Acting"
	case StatePaginating:
		return "Paginating"
	case StateScrolling:
		return "Scrolling"
	case StateCompleted:
		return "Completed"
	case StateStopped:
		return "Stopped"
	case StateFaulted:
		return "Faulted"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
var validTransitions = map[RunState][]RunState{
	StateIdle:       {StateScanning, StateActing, StateCompleted, StateStopped, StateFaulted},
	StateScanning:   {StateActing, StatePaginating, StateScrolling, StateCompleted, StateStopped, StateFaulted},
	StateActing:     {StateScanning, StatePaginating, StateScrolling, StateCompleted, StateStopped, StateFaulted},
	StatePaginating: {StateScanning, StateCompleted, StateStopped, StateFaulted},
	StateScrolling:  {StateScanning, StateCompleted, StateStopped, StateFaulted},
	StateCompleted:  {},
	StateStopped:    {},
	StateFaulted:    {},
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s RunState) CanTransitionTo(target RunState) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s RunState) ValidTransitions() []RunState {
	return validTransitions[s]
}

// IsTerminal returns true if the run has ended.
func (s RunState) IsTerminal() bool {
	return s == StateCompleted || s == StateStopped || s == StateFaulted
}

// IsActive returns true if a worker is driving the run.
func (s RunState) IsActive() bool {
	return s != StateIdle && !s.IsTerminal()
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   RunState
	To     RunState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to RunState, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}
