package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
	"cabal-assist/infrastructure/logging"
)

// Reporter receives run events. Publish must not block.
type Reporter interface {
	Publish(e event.Event)
}

// RunnerConfig holds runner dependencies.
type RunnerConfig struct {
	Kind     state.FlowKind
	Slot     *Slot
	Window   screen.Window
	Reporter Reporter
	Timing   Timing
	Logger   *slog.Logger
}

// Runner drives one flow kind on a dedicated worker goroutine.
type Runner struct {
	kind     state.FlowKind
	slot     *Slot
	window   screen.Window
	reporter Reporter
	timing   Timing
	logger   *slog.Logger

	// active is true from a successful Start until teardown finishes.
	active atomic.Bool
	// running is the keep-going flag cleared by Stop and EmergencyStop.
	running atomic.Bool

	mu     sync.Mutex
	state  state.RunState
	reason event.StopReason
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// NewRunner creates a runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Slot == nil {
		cfg.Slot = NewSlot()
	}
	return &Runner{
		kind:     cfg.Kind,
		slot:     cfg.Slot,
		window:   cfg.Window,
		reporter: cfg.Reporter,
		timing:   cfg.Timing,
		logger:   logger.With("flow", string(cfg.Kind)),
	}
}

// Kind returns the flow kind this runner drives.
func (r *Runner) Kind() state.FlowKind {
	return r.kind
}

// Start validates the run and launches the worker. It returns false, after
// reporting why, when nothing was started.
func (r *Runner) Start(flow Flow, profile *calibration.Profile) bool {
	if flow == nil || flow.Kind() != r.kind {
		r.logger.Error("Flow does not match runner")
		return false
	}
	if r.active.Load() {
		r.status("%s is already running", r.kind.Title())
		return false
	}
	if profile == nil {
		r.alert("Configuration incomplete", "No calibration profile is loaded.")
		return false
	}

	if err := flow.Validate(profile); err != nil {
		var incomplete *calibration.IncompleteError
		if errors.As(err, &incomplete) {
			r.alert("Configuration incomplete", err.Error())
		} else {
			r.alert("Cannot start", err.Error())
		}
		r.status("Cannot start %s: %v", r.kind.Title(), err)
		return false
	}

	if r.window == nil || !r.window.IsConnected() {
		r.alert("Game not found", "Connect to the game window first.")
		r.status("Cannot start %s: %v", r.kind.Title(), screen.ErrNotConnected)
		return false
	}

	if !r.slot.TryAcquire(r.kind) {
		r.status("Cannot start %s: %s is running", r.kind.Title(), r.slot.Owner().Title())
		return false
	}
	if !r.active.CompareAndSwap(false, true) {
		r.slot.Release(r.kind)
		return false
	}

	snapshot := profile.Clone()
	ctx, cancel := context.WithCancel(logging.With(context.Background(), r.logger))

	r.mu.Lock()
	r.cancel = cancel
	r.reason = event.StopReasonNormal
	r.state = state.StateIdle
	r.mu.Unlock()

	logger := logging.From(ctx)
	rc := &RunContext{
		ctx:     ctx,
		runner:  r,
		profile: snapshot,
		exec:    NewExecutor(r.window, snapshot, flow.Pace(snapshot, r.timing), logger),
		timing:  r.timing,
		summary: NewSummary(),
		logger:  logger,
		state:   state.StateIdle,
	}

	// Published before the worker starts so FlowStarted always precedes FlowStopped.
	r.publish(event.NewFlowStarted(r.kind))
	r.status("%s started", r.kind.Title())
	r.logger.Info("Flow started", "profile", snapshot.Name, "delay", snapshot.Delay())

	r.running.Store(true)
	r.wg.Add(1)
	go r.run(flow, rc)
	return true
}

// Stop asks the worker to finish. It returns immediately; repeated calls are no-ops.
func (r *Runner) Stop() {
	if r.requestStop(event.StopReasonManual) {
		r.status("Stopping %s...", r.kind.Title())
	}
}

// EmergencyStop is Stop with a louder report.
func (r *Runner) EmergencyStop() {
	if r.requestStop(event.StopReasonEmergency) {
		r.status("EMERGENCY STOP - %s stopped!", r.kind.Title())
	}
}

func (r *Runner) requestStop(reason event.StopReason) bool {
	if !r.running.CompareAndSwap(true, false) {
		return false
	}
	r.mu.Lock()
	r.reason = reason
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.logger.Info("Stop requested", "reason", reason.String())
	return true
}

// Wait blocks until the worker has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown stops the worker and waits up to timeout for it to exit.
func (r *Runner) Shutdown(timeout time.Duration) {
	r.Stop()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		r.logger.Warn("Flow stop timeout")
	}
}

// IsRunning returns true while a worker is active.
func (r *Runner) IsRunning() bool {
	return r.active.Load()
}

// State returns the current run state.
func (r *Runner) State() state.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s state.RunState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// run is the worker body. Every exit path, panics included, ends in finish.
func (r *Runner) run(flow Flow, rc *RunContext) {
	defer r.wg.Done()

	outcome := rc.Stopped()
	defer func() {
		if rec := recover(); rec != nil {
			rc.logger.Error("Flow panicked", "error", rec)
			outcome = rc.Fault(event.StopReasonError, fmt.Sprintf("%s failed: %v", r.kind.Title(), rec), fmt.Errorf("panic: %v", rec))
		}
		r.finish(rc, outcome)
	}()

	outcome = flow.Run(rc)
}

func (r *Runner) finish(rc *RunContext, outcome Outcome) {
	r.running.Store(false)

	r.mu.Lock()
	cancel := r.cancel
	if outcome.State == state.StateStopped {
		outcome.Reason = r.reason
		if outcome.Reason == event.StopReasonNormal {
			outcome.Reason = event.StopReasonManual
		}
	}
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if !outcome.State.IsTerminal() {
		outcome.State = state.StateStopped
	}
	prev := rc.state
	rc.state = outcome.State
	r.setState(outcome.State)
	r.publish(event.NewFlowStateChanged(r.kind, prev, outcome.State))

	r.slot.Release(r.kind)

	msg := outcome.Message
	if msg == "" {
		switch outcome.State {
		case state.StateCompleted:
			msg = fmt.Sprintf("%s finished", r.kind.Title())
		case state.StateFaulted:
			msg = fmt.Sprintf("%s failed", r.kind.Title())
		default:
			msg = fmt.Sprintf("%s stopped", r.kind.Title())
		}
	}
	r.status("%s", msg)

	if !rc.summary.Empty() {
		r.publish(event.NewSummaryReady(r.kind, rc.summary.Rolls(), rc.summary.Groups()))
	}
	r.publish(event.NewFlowStopped(r.kind, outcome.Reason, outcome.Err, msg))

	rc.logger.Info("Flow stopped", "state", outcome.State.String(), "reason", outcome.Reason.String())
	r.active.Store(false)
}

func (r *Runner) publish(e event.Event) {
	if r.reporter != nil {
		r.reporter.Publish(e)
	}
}

func (r *Runner) status(format string, args ...any) {
	r.publish(event.NewStatusUpdated(r.kind, fmt.Sprintf(format, args...)))
}

func (r *Runner) alert(title, message string) {
	r.publish(event.NewAlertRaised(r.kind, title, message))
}
