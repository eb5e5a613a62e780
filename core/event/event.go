// Package event defines all events that can be published by the application.
// Events represent state changes and are consumed by the presentation layer.
package event

import "cabal-assist/core/state"

// Event is the base interface for all events.
// Events are published by the application layer and consumed by subscribers.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// FlowEvent is an event that originates from a specific flow.
type FlowEvent interface {
	Event
	// FlowKind returns the source flow
	FlowKind() state.FlowKind
}

// baseFlowEvent provides common implementation for flow events.
type baseFlowEvent struct {
	kind state.FlowKind
}

func (e *baseFlowEvent) FlowKind() state.FlowKind {
	return e.kind
}

// StopReason indicates why a flow stopped.
type StopReason int

const (
	// StopReasonNormal indicates the flow completed normally.
	StopReasonNormal StopReason = iota
	// StopReasonManual indicates the flow was stopped by the user.
	StopReasonManual
	// StopReasonEmergency indicates the global emergency key stopped the flow.
	StopReasonEmergency
	// StopReasonReadFailure indicates OCR kept returning unusable text.
	StopReasonReadFailure
	// StopReasonError indicates the flow stopped due to an error.
	StopReasonError
	// StopReasonUnverified indicates a stat was found but its value could not be read.
	StopReasonUnverified
)

func (r StopReason) String() string {
	switch r {
	case StopReasonNormal:
		return "Normal"
	case StopReasonManual:
		return "Manual"
	case StopReasonEmergency:
		return "Emergency"
	case StopReasonReadFailure:
		return "ReadFailure"
	case StopReasonError:
		return "Error"
	case StopReasonUnverified:
		return "Unverified"
	default:
		return "Unknown"
	}
}

// FlowStarted is published when a flow worker starts.
type FlowStarted struct {
	baseFlowEvent
}

func NewFlowStarted(kind state.FlowKind) *FlowStarted {
	return &FlowStarted{baseFlowEvent{kind: kind}}
}

func (e *FlowStarted) EventName() string {
	return "FlowStarted"
}

// FlowStopped is published once when a flow worker exits.
type FlowStopped struct {
	baseFlowEvent
	Reason  StopReason
	Error   error // Non-nil if Reason is StopReasonError
	Message string
}

func NewFlowStopped(kind state.FlowKind, reason StopReason, err error, message string) *FlowStopped {
	return &FlowStopped{
		baseFlowEvent: baseFlowEvent{kind: kind},
		Reason:        reason,
		Error:         err,
		Message:       message,
	}
}

func (e *FlowStopped) EventName() string {
	return "FlowStopped"
}

// FlowStateChanged is published when a run changes state.
type FlowStateChanged struct {
	baseFlowEvent
	OldState state.RunState
	NewState state.RunState
}

func NewFlowStateChanged(kind state.FlowKind, oldState, newState state.RunState) *FlowStateChanged {
	return &FlowStateChanged{
		baseFlowEvent: baseFlowEvent{kind: kind},
		OldState:      oldState,
		NewState:      newState,
	}
}

func (e *FlowStateChanged) EventName() string {
	return "FlowStateChanged"
}

// StatusUpdated carries a human readable progress line.
type StatusUpdated struct {
	baseFlowEvent
	Message string
}

func NewStatusUpdated(kind state.FlowKind, message string) *StatusUpdated {
	return &StatusUpdated{
		baseFlowEvent: baseFlowEvent{kind: kind},
		Message:       message,
	}
}

func (e *StatusUpdated) EventName() string {
	return "StatusUpdated"
}

// AlertRaised asks the user interface to show a modal message.
type AlertRaised struct {
	baseFlowEvent
	Title   string
	Message string
}

func NewAlertRaised(kind state.FlowKind, title, message string) *AlertRaised {
	return &AlertRaised{
		baseFlowEvent: baseFlowEvent{kind: kind},
		Title:         title,
		Message:       message,
	}
}

func (e *AlertRaised) EventName() string {
	return "AlertRaised"
}

// SummaryEntry is one counted key of a run summary.
type SummaryEntry struct {
	Key   string
	Count int
}

// SummaryGroup is a titled block of a run summary.
type SummaryGroup struct {
	Title   string
	Entries []SummaryEntry
}

// SummaryReady is published at most once per run with the grouped counters.
type SummaryReady struct {
	baseFlowEvent
	Rolls  int
	Groups []SummaryGroup
}

func NewSummaryReady(kind state.FlowKind, rolls int, groups []SummaryGroup) *SummaryReady {
	return &SummaryReady{
		baseFlowEvent: baseFlowEvent{kind: kind},
		Rolls:         rolls,
		Groups:        groups,
	}
}

func (e *SummaryReady) EventName() string {
	return "SummaryReady"
}
