package automation

import (
	"context"
	"log/slog"
	"time"

	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
)

// ActionKind is the kind of an executor action.
type ActionKind int

const (
	ActionClick ActionKind = iota
	ActionDoubleClick
	ActionScroll
)

// Action is a single executor step on a calibrated button or area.
type Action struct {
	Kind   ActionKind
	Role   calibration.Role
	Area   calibration.Area
	Amount int
}

// Click returns a single-click action on role.
func Click(role calibration.Role) Action {
	return Action{Kind: ActionClick, Role: role}
}

// DoubleClick returns a double-click action on role.
func DoubleClick(role calibration.Role) Action {
	return Action{Kind: ActionDoubleClick, Role: role}
}

// Scroll returns a wheel action over the center of area.
func Scroll(area calibration.Area, amount int) Action {
	return Action{Kind: ActionScroll, Area: area, Amount: amount}
}

// Executor turns calibrated roles into window input.
// Every method reports success as a bool; failures are logged, never returned.
type Executor struct {
	window  screen.Window
	profile *calibration.Profile
	pace    Pace
	logger  *slog.Logger
}

// NewExecutor creates an executor over a profile snapshot.
func NewExecutor(window screen.Window, profile *calibration.Profile, pace Pace, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{window: window, profile: profile, pace: pace, logger: logger}
}

// Pace returns the executor pace.
func (e *Executor) Pace() Pace {
	return e.pace
}

// Perform runs one action.
func (e *Executor) Perform(ctx context.Context, a Action) bool {
	switch a.Kind {
	case ActionClick:
		return e.Click(ctx, a.Role, false)
	case ActionDoubleClick:
		return e.Click(ctx, a.Role, true)
	case ActionScroll:
		return e.Scroll(ctx, a.Area, a.Amount)
	default:
		e.logger.Warn("Unknown action kind", "kind", a.Kind)
		return false
	}
}

// Click clicks a calibrated button and waits the pace delay.
func (e *Executor) Click(ctx context.Context, role calibration.Role, double bool) bool {
	pt, ok := e.profile.Button(role)
	if !ok {
		e.logger.Warn("Button not calibrated", "role", role)
		return false
	}
	gap := time.Duration(0)
	if double && !e.pace.Fast() {
		gap = e.pace.DoubleClickGap
	}
	return e.click(ctx, pt, double, gap, string(role))
}

// ClickTwice clicks a calibrated button twice with an explicit gap,
// regardless of the pace.
func (e *Executor) ClickTwice(ctx context.Context, role calibration.Role, gap time.Duration) bool {
	pt, ok := e.profile.Button(role)
	if !ok {
		e.logger.Warn("Button not calibrated", "role", role)
		return false
	}
	return e.click(ctx, pt, true, gap, string(role))
}

// ClickAt clicks an absolute screen point, such as a detected badge.
func (e *Executor) ClickAt(ctx context.Context, abs screen.Point, double bool) bool {
	rel, ok := e.window.ToWindowRelative(abs)
	if !ok {
		e.logger.Debug("Point conversion failed", "point", abs.String())
		return false
	}
	gap := time.Duration(0)
	if double && !e.pace.Fast() {
		gap = e.pace.DoubleClickGap
	}
	return e.click(ctx, rel, double, gap, abs.String())
}

func (e *Executor) click(ctx context.Context, rel screen.Point, double bool, gap time.Duration, target string) bool {
	if ctx.Err() != nil {
		return false
	}
	if !e.window.IsConnected() {
		e.logger.Warn("Click skipped, window not connected", "target", target)
		return false
	}

	if err := e.window.Click(ctx, rel); err != nil {
		e.logger.Debug("Click failed", "target", target, "error", err)
		return false
	}
	if double {
		if !sleep(ctx, gap) {
			return false
		}
		if err := e.window.Click(ctx, rel); err != nil {
			e.logger.Debug("Second click failed", "target", target, "error", err)
			return false
		}
	}
	return sleep(ctx, e.pace.Delay)
}

// Scroll turns the wheel over the center of a calibrated area.
// Positive amounts scroll up.
func (e *Executor) Scroll(ctx context.Context, area calibration.Area, amount int) bool {
	region, ok := e.profile.Area(area)
	if !ok {
		e.logger.Warn("Area not calibrated", "area", area)
		return false
	}
	if ctx.Err() != nil || !e.window.IsConnected() {
		return false
	}
	if _, ok := e.window.Rect(); !ok {
		e.logger.Debug("Scroll skipped, window rectangle unavailable")
		return false
	}

	if err := e.window.Scroll(ctx, region.Center(), amount); err != nil {
		e.logger.Debug("Scroll failed", "area", area, "error", err)
		return false
	}
	return sleep(ctx, e.pace.Delay)
}
