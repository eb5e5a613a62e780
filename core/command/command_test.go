package command

import (
	"testing"

	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
)

func TestCommand_Names(t *testing.T) {
	tests := []struct {
		cmd      Command
		expected string
	}{
		{NewStartBadge(), "StartBadge"},
		{NewStartStellar("penetration", "50"), "StartStellar"},
		{NewStartArrival(StatTarget{}, StatTarget{}), "StartArrival"},
		{NewStopFlow(state.FlowBadge), "StopFlow"},
		{&EmergencyStop{}, "EmergencyStop"},
		{&CalibrateButton{Role: calibration.RoleYes}, "CalibrateButton"},
		{&CalibrateArea{Area: calibration.AreaDungeonList}, "CalibrateArea"},
		{&CancelCalibration{}, "CancelCalibration"},
		{&SetDelay{DelayMs: 500}, "SetDelay"},
		{&LoadProfile{Name: "main"}, "LoadProfile"},
		{&ConnectWindow{}, "ConnectWindow"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.cmd.CommandName(); got != tt.expected {
				t.Errorf("CommandName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFlowCommand_FlowKind(t *testing.T) {
	tests := []struct {
		name     string
		cmd      FlowCommand
		expected state.FlowKind
	}{
		{"StartBadge", NewStartBadge(), state.FlowBadge},
		{"StartStellar", NewStartStellar("x", ""), state.FlowStellar},
		{"StartArrival", NewStartArrival(StatTarget{}, StatTarget{}), state.FlowArrival},
		{"StopFlow", NewStopFlow(state.FlowArrival), state.FlowArrival},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.FlowKind(); got != tt.expected {
				t.Errorf("FlowKind() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStartArrival_Fields(t *testing.T) {
	c := NewStartArrival(StatTarget{Display: "Add. Damage (1)", MinValue: "40"}, StatTarget{})

	if c.Offensive.Display != "Add. Damage (1)" || c.Offensive.MinValue != "40" {
		t.Errorf("Offensive = %+v", c.Offensive)
	}
	if c.Defensive.Display != "" {
		t.Errorf("Defensive = %+v, want unset", c.Defensive)
	}
}
