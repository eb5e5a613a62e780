// Package application wires the automation flows to calibration, the game
// window and the event bus.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cabal-assist/application/automation"
	"cabal-assist/core/command"
	"cabal-assist/core/event"
	"cabal-assist/core/eventbus"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
	"cabal-assist/domain/stat"
)

// ErrNotStarted is returned by Dispatch when a flow refused to start. The
// reason has already been published as an alert or status line.
var ErrNotStarted = errors.New("flow not started")

// GameWindow is a screen.Window that can look up the game again.
type GameWindow interface {
	screen.Window
	Connect(ctx context.Context) error
}

// ClickCapturer records the user's next clicks on screen.
type ClickCapturer interface {
	CaptureClick(ctx context.Context) (screen.Point, error)
	CaptureRegion(ctx context.Context) (screen.Region, error)
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	EventBus    eventbus.EventBus
	Calibration *calibration.Service
	Catalog     *stat.Catalog
	Window      GameWindow
	Matcher     screen.TemplateMatcher
	Recognizer  screen.TextRecognizer
	Capturer    ClickCapturer
	Detector    automation.TemplateDetectorConfig
	Timing      automation.Timing
	Logger      *slog.Logger
}

// Coordinator owns one runner per flow kind. The runners share a slot so
// only one flow runs at a time.
type Coordinator struct {
	eventBus    eventbus.EventBus
	calibration *calibration.Service
	catalog     *stat.Catalog
	window      GameWindow
	recognizer  screen.TextRecognizer
	capturer    ClickCapturer
	badge       *automation.TemplateDetector
	logger      *slog.Logger

	slot    *automation.Slot
	runners map[state.FlowKind]*automation.Runner

	captureMu     sync.Mutex
	captureCancel context.CancelFunc
	captureDone   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCoordinator creates a new coordinator.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Detector.Logger == nil {
		cfg.Detector.Logger = cfg.Logger
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		eventBus:    cfg.EventBus,
		calibration: cfg.Calibration,
		catalog:     cfg.Catalog,
		window:      cfg.Window,
		recognizer:  cfg.Recognizer,
		capturer:    cfg.Capturer,
		badge:       automation.NewTemplateDetector(cfg.Window, cfg.Matcher, cfg.Detector),
		logger:      cfg.Logger,
		slot:        automation.NewSlot(),
		runners:     make(map[state.FlowKind]*automation.Runner),
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, kind := range state.Kinds() {
		c.runners[kind] = automation.NewRunner(automation.RunnerConfig{
			Kind:     kind,
			Slot:     c.slot,
			Window:   cfg.Window,
			Reporter: c,
			Timing:   cfg.Timing,
			Logger:   cfg.Logger,
		})
	}

	return c
}

// Start begins the coordinator.
func (c *Coordinator) Start() {
	c.logger.Info("Coordinator started")
}

// Stop cancels any pending capture and stops every flow.
func (c *Coordinator) Stop() {
	c.cancelCapture()
	c.cancel()

	var wg sync.WaitGroup
	for _, r := range c.runners {
		wg.Add(1)
		go func(r *automation.Runner) {
			defer wg.Done()
			r.Shutdown(5 * time.Second)
		}(r)
	}
	wg.Wait()

	c.logger.Info("Coordinator stopped")
}

// Publish implements automation.Reporter.
func (c *Coordinator) Publish(e event.Event) {
	if c.eventBus != nil {
		c.eventBus.Publish(e)
	}
}

// Catalog returns the loaded stat vocabularies.
func (c *Coordinator) Catalog() *stat.Catalog {
	return c.catalog
}

// Profile returns a copy of the active calibration profile, or nil.
func (c *Coordinator) Profile() *calibration.Profile {
	p, err := c.calibration.Snapshot()
	if err != nil {
		return nil
	}
	return p
}

// IsRunning reports whether a flow of the given kind is active.
func (c *Coordinator) IsRunning(kind state.FlowKind) bool {
	r, ok := c.runners[kind]
	return ok && r.IsRunning()
}

// RunningFlow returns the flow holding the run slot, or "".
func (c *Coordinator) RunningFlow() state.FlowKind {
	return c.slot.Owner()
}

// Dispatch sends a command to the appropriate handler.
func (c *Coordinator) Dispatch(cmd command.Command) error {
	c.logger.Debug("Dispatching command", "command", cmd.CommandName())

	switch cmd := cmd.(type) {
	// Flows
	case *command.StartBadge:
		return c.startFlow(automation.NewBadgeFlow(c.badge))
	case *command.StartStellar:
		return c.handleStartStellar(cmd)
	case *command.StartArrival:
		return c.handleStartArrival(cmd)
	case *command.StopFlow:
		return c.handleStopFlow(cmd)
	case *command.EmergencyStop:
		c.handleEmergencyStop()
		return nil

	// Calibration
	case *command.CalibrateButton:
		return c.handleCalibrateButton(cmd)
	case *command.CalibrateArea:
		return c.handleCalibrateArea(cmd)
	case *command.CancelCalibration:
		c.cancelCapture()
		return nil
	case *command.SetDelay:
		return c.handleSetDelay(cmd)
	case *command.LoadProfile:
		return c.handleLoadProfile(cmd)
	case *command.ConnectWindow:
		return c.handleConnectWindow()

	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}
}

// Flow handlers

func (c *Coordinator) handleStartStellar(cmd *command.StartStellar) error {
	params := automation.StellarParams{
		Keyword:     cmd.Keyword,
		MinValue:    cmd.MinValue,
		EffectDelay: time.Duration(cmd.EffectDelayMs) * time.Millisecond,
	}
	detector := automation.NewTextDetector(c.window, c.recognizer, automation.SingleStatParser{}, c.logger)
	return c.startFlow(automation.NewStellarFlow(detector, c.catalog.Stellar, params))
}

func (c *Coordinator) handleStartArrival(cmd *command.StartArrival) error {
	vocab := c.catalog.Arrival
	goal := automation.DualStatGoal{
		Offensive: automation.NewStatGoal(vocab, cmd.Offensive.Display, cmd.Offensive.MinValue),
		Defensive: automation.NewStatGoal(vocab, cmd.Defensive.Display, cmd.Defensive.MinValue),
	}
	detector := automation.NewTextDetector(c.window, c.recognizer, automation.NewDualStatParser(vocab), c.logger)
	return c.startFlow(automation.NewArrivalFlow(detector, vocab, goal))
}

func (c *Coordinator) startFlow(flow automation.Flow) error {
	runner := c.runners[flow.Kind()]

	// The runner reports a missing window itself; try once to find it first.
	c.ensureConnected()

	profile, err := c.calibration.Snapshot()
	if err != nil {
		profile = nil
	}
	if !runner.Start(flow, profile) {
		return ErrNotStarted
	}
	return nil
}

func (c *Coordinator) handleStopFlow(cmd *command.StopFlow) error {
	runner, ok := c.runners[cmd.FlowKind()]
	if !ok {
		return fmt.Errorf("unknown flow: %s", cmd.FlowKind())
	}
	runner.Stop()
	return nil
}

func (c *Coordinator) handleEmergencyStop() {
	c.cancelCapture()
	for _, r := range c.runners {
		r.EmergencyStop()
	}
}

// Calibration handlers

func (c *Coordinator) handleCalibrateButton(cmd *command.CalibrateButton) error {
	target := cmd.Role.Label()
	prompt := fmt.Sprintf("Click the %s in the game", target)

	return c.capture(target, prompt, func(ctx context.Context) error {
		abs, err := c.capturer.CaptureClick(ctx)
		if err != nil {
			return err
		}
		rel, ok := c.window.ToWindowRelative(abs)
		if !ok {
			return fmt.Errorf("click at %s is outside the game window: %w", abs, screen.ErrNotConnected)
		}
		return c.calibration.SetButton(ctx, cmd.Role, rel)
	})
}

func (c *Coordinator) handleCalibrateArea(cmd *command.CalibrateArea) error {
	target := cmd.Area.Label()
	prompt := fmt.Sprintf("Click the top-left and then the bottom-right corner of the %s", target)

	return c.capture(target, prompt, func(ctx context.Context) error {
		region, err := c.capturer.CaptureRegion(ctx)
		if err != nil {
			return err
		}
		return c.calibration.SetArea(ctx, cmd.Area, region)
	})
}

// capture runs fn on its own goroutine, replacing any pending capture.
func (c *Coordinator) capture(target, prompt string, fn func(ctx context.Context) error) error {
	if c.capturer == nil {
		return errors.New("click capture is not available")
	}
	if owner := c.slot.Owner(); owner != "" {
		return fmt.Errorf("cannot calibrate while %s is running", owner.Title())
	}
	c.ensureConnected()
	c.cancelCapture()

	ctx, cancel := context.WithCancel(c.ctx)
	done := make(chan struct{})

	c.captureMu.Lock()
	c.captureCancel = cancel
	c.captureDone = done
	c.captureMu.Unlock()

	c.Publish(&event.CalibrationCaptureStarted{Target: target, Prompt: prompt})

	go func() {
		defer close(done)
		defer cancel()

		err := fn(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			c.logger.Info("Calibration capture cancelled", "target", target)
		case err != nil:
			c.logger.Warn("Calibration capture failed", "target", target, "error", err)
			c.Publish(&event.CalibrationFailed{Target: target, Error: err})
		default:
			c.logger.Info("Calibration updated", "target", target)
			c.publishProfile()
		}
	}()
	return nil
}

// cancelCapture aborts a pending capture and waits for it to finish.
func (c *Coordinator) cancelCapture() {
	c.captureMu.Lock()
	cancel, done := c.captureCancel, c.captureDone
	c.captureCancel, c.captureDone = nil, nil
	c.captureMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (c *Coordinator) handleSetDelay(cmd *command.SetDelay) error {
	if err := c.calibration.SetDelayMs(c.ctx, cmd.DelayMs); err != nil {
		return fmt.Errorf("failed to set delay: %w", err)
	}
	c.publishProfile()
	return nil
}

func (c *Coordinator) handleLoadProfile(cmd *command.LoadProfile) error {
	p, err := c.calibration.Load(c.ctx, cmd.Name)
	if err != nil {
		return fmt.Errorf("failed to load profile %q: %w", cmd.Name, err)
	}
	c.logger.Info("Profile loaded", "name", p.Name, "buttons", len(p.Buttons), "areas", len(p.Areas))
	c.Publish(&event.CalibrationUpdated{Profile: p})
	return nil
}

func (c *Coordinator) handleConnectWindow() error {
	if c.window == nil {
		return screen.ErrNotConnected
	}
	err := c.window.Connect(c.ctx)
	c.Publish(&event.WindowConnectionChanged{Connected: err == nil})
	if err != nil {
		return fmt.Errorf("failed to connect to game window: %w", err)
	}
	return nil
}

func (c *Coordinator) ensureConnected() {
	if c.window == nil || c.window.IsConnected() {
		return
	}
	if err := c.window.Connect(c.ctx); err != nil {
		c.logger.Debug("Game window not found", "error", err)
		return
	}
	c.Publish(&event.WindowConnectionChanged{Connected: true})
}

func (c *Coordinator) publishProfile() {
	if p := c.Profile(); p != nil {
		c.Publish(&event.CalibrationUpdated{Profile: p})
	}
}

// Ensure Coordinator implements automation.Reporter
var _ automation.Reporter = (*Coordinator)(nil)
