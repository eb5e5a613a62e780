package event

import (
	"errors"
	"testing"

	"cabal-assist/core/state"
)

func TestEvent_Names(t *testing.T) {
	tests := []struct {
		event    Event
		expected string
	}{
		{NewFlowStarted(state.FlowBadge), "FlowStarted"},
		{NewFlowStopped(state.FlowBadge, StopReasonNormal, nil, ""), "FlowStopped"},
		{NewFlowStateChanged(state.FlowBadge, state.StateIdle, state.StateScanning), "FlowStateChanged"},
		{NewStatusUpdated(state.FlowStellar, "hello"), "StatusUpdated"},
		{NewAlertRaised(state.FlowArrival, "t", "m"), "AlertRaised"},
		{NewSummaryReady(state.FlowArrival, 0, nil), "SummaryReady"},
		{&CalibrationCaptureStarted{}, "CalibrationCaptureStarted"},
		{&CalibrationUpdated{}, "CalibrationUpdated"},
		{&CalibrationFailed{}, "CalibrationFailed"},
		{&WindowConnectionChanged{}, "WindowConnectionChanged"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.event.EventName(); got != tt.expected {
				t.Errorf("EventName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFlowEvent_FlowKind(t *testing.T) {
	tests := []struct {
		name     string
		event    FlowEvent
		expected state.FlowKind
	}{
		{"FlowStarted", NewFlowStarted(state.FlowBadge), state.FlowBadge},
		{"FlowStopped", NewFlowStopped(state.FlowStellar, StopReasonManual, nil, ""), state.FlowStellar},
		{"FlowStateChanged", NewFlowStateChanged(state.FlowArrival, state.StateIdle, state.StateActing), state.FlowArrival},
		{"StatusUpdated", NewStatusUpdated(state.FlowStellar, ""), state.FlowStellar},
		{"AlertRaised", NewAlertRaised(state.FlowBadge, "", ""), state.FlowBadge},
		{"SummaryReady", NewSummaryReady(state.FlowArrival, 3, nil), state.FlowArrival},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.FlowKind(); got != tt.expected {
				t.Errorf("FlowKind() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStopReason_String(t *testing.T) {
	tests := []struct {
		reason   StopReason
		expected string
	}{
		{StopReasonNormal, "Normal"},
		{StopReasonManual, "Manual"},
		{StopReasonEmergency, "Emergency"},
		{StopReasonReadFailure, "ReadFailure"},
		{StopReasonError, "Error"},
		{StopReasonUnverified, "Unverified"},
		{StopReason(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.reason.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFlowStopped_Fields(t *testing.T) {
	testErr := errors.New("test error")
	e := NewFlowStopped(state.FlowStellar, StopReasonError, testErr, "boom")

	if e.Reason != StopReasonError {
		t.Errorf("Reason = %v, want Error", e.Reason)
	}
	if e.Error != testErr {
		t.Errorf("Error = %v, want %v", e.Error, testErr)
	}
	if e.Message != "boom" {
		t.Errorf("Message = %v, want boom", e.Message)
	}
}

func TestFlowStateChanged_States(t *testing.T) {
	e := NewFlowStateChanged(state.FlowBadge, state.StateScanning, state.StateActing)

	if e.OldState != state.StateScanning {
		t.Errorf("OldState = %v, want Scanning", e.OldState)
	}
	if e.NewState != state.StateActing {
		t.Errorf("NewState = %v, want Acting", e.NewState)
	}
}

func TestSummaryReady_Groups(t *testing.T) {
	groups := []SummaryGroup{{Title: "Offensive Stats", Entries: []SummaryEntry{{Key: "Add. Damage +45", Count: 2}}}}
	e := NewSummaryReady(state.FlowArrival, 5, groups)

	if e.Rolls != 5 || len(e.Groups) != 1 || e.Groups[0].Entries[0].Count != 2 {
		t.Errorf("SummaryReady = %+v", e)
	}
}
