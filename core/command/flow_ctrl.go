package command

import "cabal-assist/core/state"

// StartBadge starts the collection badge-clearing flow.
type StartBadge struct {
	baseFlowCommand
}

func NewStartBadge() *StartBadge {
	return &StartBadge{baseFlowCommand{kind: state.FlowBadge}}
}

func (c *StartBadge) CommandName() string {
	return "StartBadge"
}

// StartStellar starts the single-stat reroll.
type StartStellar struct {
	baseFlowCommand
	Keyword  string
	MinValue string
	// EffectDelayMs overrides the configured roll animation wait when positive.
	EffectDelayMs int
}

func NewStartStellar(keyword, minValue string) *StartStellar {
	return &StartStellar{
		baseFlowCommand: baseFlowCommand{kind: state.FlowStellar},
		Keyword:         keyword,
		MinValue:        minValue,
	}
}

func (c *StartStellar) CommandName() string {
	return "StartStellar"
}

// StatTarget names a stat by its display name and the smallest acceptable value.
// An empty Display leaves the slot unset.
type StatTarget struct {
	Display  string
	MinValue string
}

// StartArrival starts the dual-stat reroll.
type StartArrival struct {
	baseFlowCommand
	Offensive StatTarget
	Defensive StatTarget
}

func NewStartArrival(offensive, defensive StatTarget) *StartArrival {
	return &StartArrival{
		baseFlowCommand: baseFlowCommand{kind: state.FlowArrival},
		Offensive:       offensive,
		Defensive:       defensive,
	}
}

func (c *StartArrival) CommandName() string {
	return "StartArrival"
}

// StopFlow stops one running flow.
type StopFlow struct {
	baseFlowCommand
}

func NewStopFlow(kind state.FlowKind) *StopFlow {
	return &StopFlow{baseFlowCommand{kind: kind}}
}

func (c *StopFlow) CommandName() string {
	return "StopFlow"
}

// EmergencyStop halts whichever flow holds the run slot.
type EmergencyStop struct{}

func (c *EmergencyStop) CommandName() string {
	return "EmergencyStop"
}
