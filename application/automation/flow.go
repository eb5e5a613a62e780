package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
)

// Flow is one automation strategy driven by a Runner.
type Flow interface {
	// Kind identifies the flow and its slot owner name.
	Kind() state.FlowKind

	// Validate checks the profile and parameters before a run.
	// Missing calibration is reported as *calibration.IncompleteError.
	Validate(profile *calibration.Profile) error

	// Pace returns the click pacing for a run with this profile.
	Pace(profile *calibration.Profile, timing Timing) Pace

	// Run executes the flow until it completes, faults or is cancelled.
	Run(rc *RunContext) Outcome
}

// Outcome is how a flow run ended.
type Outcome struct {
	State   state.RunState
	Reason  event.StopReason
	Message string
	Err     error
}

// RunContext is everything a flow can touch during one run.
type RunContext struct {
	ctx     context.Context
	runner  *Runner
	profile *calibration.Profile
	exec    *Executor
	timing  Timing
	summary *Summary
	logger  *slog.Logger
	state   state.RunState
}

// Context returns the run context, cancelled on stop.
func (rc *RunContext) Context() context.Context {
	return rc.ctx
}

// Executor returns the executor bound to the profile snapshot.
func (rc *RunContext) Executor() *Executor {
	return rc.exec
}

// Profile returns the profile snapshot taken at start.
func (rc *RunContext) Profile() *calibration.Profile {
	return rc.profile
}

// Timing returns the flow timing.
func (rc *RunContext) Timing() Timing {
	return rc.timing
}

// Summary returns the run counters.
func (rc *RunContext) Summary() *Summary {
	return rc.summary
}

// Logger returns the flow logger.
func (rc *RunContext) Logger() *slog.Logger {
	return rc.logger
}

// Area returns a calibrated area of the snapshot. Validate guarantees the
// areas a flow needs are present.
func (rc *RunContext) Area(a calibration.Area) screen.Region {
	r, _ := rc.profile.Area(a)
	return r
}

// Alive reports whether the run should keep going.
func (rc *RunContext) Alive() bool {
	return rc.runner.running.Load() && rc.ctx.Err() == nil
}

// Sleep waits d and reports whether the run is still alive afterwards.
func (rc *RunContext) Sleep(d time.Duration) bool {
	return sleep(rc.ctx, d) && rc.Alive()
}

// Enter moves the run to next and publishes the change.
// Invalid transitions are logged and ignored.
func (rc *RunContext) Enter(next state.RunState) {
	if next == rc.state {
		return
	}
	if !rc.state.CanTransitionTo(next) {
		rc.logger.Warn("Ignoring state change", "error", state.NewTransitionError(rc.state, next, ""))
		return
	}
	prev := rc.state
	rc.state = next
	rc.runner.setState(next)
	rc.runner.publish(event.NewFlowStateChanged(rc.runner.kind, prev, next))
}

// Status publishes a progress line.
func (rc *RunContext) Status(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	rc.logger.Info(msg)
	rc.runner.publish(event.NewStatusUpdated(rc.runner.kind, msg))
}

// Alert asks the user interface to show a message.
func (rc *RunContext) Alert(title, message string) {
	rc.runner.publish(event.NewAlertRaised(rc.runner.kind, title, message))
}

// Complete ends the run successfully.
func (rc *RunContext) Complete(message string) Outcome {
	return Outcome{State: state.StateCompleted, Reason: event.StopReasonNormal, Message: message}
}

// Stopped ends the run because it was cancelled.
func (rc *RunContext) Stopped() Outcome {
	return Outcome{State: state.StateStopped}
}

// Fault ends the run on an unrecoverable failure.
func (rc *RunContext) Fault(reason event.StopReason, message string, err error) Outcome {
	return Outcome{State: state.StateFaulted, Reason: reason, Message: message, Err: err}
}
