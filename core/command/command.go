// Package command defines all commands that can be sent to the application.
// Commands represent user intentions and are processed by the application layer.
package command

import "cabal-assist/core/state"

// Command is the base interface for all commands.
// Commands are sent from the presentation layer to the application layer.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// FlowCommand is a command that targets a specific flow.
type FlowCommand interface {
	Command
	// FlowKind returns the target flow
	FlowKind() state.FlowKind
}

// baseFlowCommand provides common implementation for flow commands.
type baseFlowCommand struct {
	kind state.FlowKind
}

func (c *baseFlowCommand) FlowKind() state.FlowKind {
	return c.kind
}
