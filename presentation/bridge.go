// Package presentation provides the UI layer with event bridging to the application layer.
package presentation

import (
	"log/slog"
	"sync"

	"cabal-assist/application"
	"cabal-assist/core/command"
	"cabal-assist/core/event"
	"cabal-assist/core/eventbus"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/stat"
)

// UIEventBridge bridges UI events to the application layer and routes events back to UI.
// It provides a clean separation between UI and business logic.
type UIEventBridge struct {
	coordinator *application.Coordinator
	eventBus    eventbus.EventBus
	logger      *slog.Logger

	// UI callbacks - set by UI components
	callbacks   *UICallbacks
	callbacksMu sync.RWMutex

	// Subscription management
	subscriptionID string
}

// UICallbacks contains callbacks for UI updates.
// They run on the event bus goroutine; UI code must hop to the main thread.
type UICallbacks struct {
	// Flow lifecycle
	OnFlowStarted      func(kind state.FlowKind)
	OnFlowStopped      func(kind state.FlowKind, reason event.StopReason, message string)
	OnFlowStateChanged func(kind state.FlowKind, oldState, newState state.RunState)

	// Flow output
	OnStatus  func(kind state.FlowKind, message string)
	OnAlert   func(kind state.FlowKind, title, message string)
	OnSummary func(kind state.FlowKind, rolls int, groups []event.SummaryGroup)

	// Calibration
	OnCaptureStarted     func(target, prompt string)
	OnCalibrationUpdated func(profile *calibration.Profile)
	OnCalibrationFailed  func(target string, err error)
	OnWindowConnection   func(connected bool)
}

// BridgeConfig holds configuration for UIEventBridge.
type BridgeConfig struct {
	Coordinator *application.Coordinator
	EventBus    eventbus.EventBus
	Logger      *slog.Logger
}

// NewUIEventBridge creates a new UI event bridge.
func NewUIEventBridge(cfg *BridgeConfig) *UIEventBridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &UIEventBridge{
		coordinator: cfg.Coordinator,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
		callbacks:   &UICallbacks{},
	}

	// Subscribe to events
	if b.eventBus != nil {
		b.subscriptionID = b.eventBus.Subscribe(b.handleEvent)
	}

	return b
}

// SetCallbacks sets the UI callbacks.
func (b *UIEventBridge) SetCallbacks(callbacks *UICallbacks) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = callbacks
}

// Close unsubscribes from the event bus.
func (b *UIEventBridge) Close() {
	if b.eventBus != nil && b.subscriptionID != "" {
		b.eventBus.Unsubscribe(b.subscriptionID)
	}
}

// Command dispatching methods

// StartBadge starts the collection flow.
func (b *UIEventBridge) StartBadge() error {
	return b.coordinator.Dispatch(command.NewStartBadge())
}

// StartStellar starts the stellar reroll. effectDelayMs <= 0 keeps the configured wait.
func (b *UIEventBridge) StartStellar(keyword, minValue string, effectDelayMs int) error {
	cmd := command.NewStartStellar(keyword, minValue)
	cmd.EffectDelayMs = effectDelayMs
	return b.coordinator.Dispatch(cmd)
}

// StartArrival starts the arrival reroll.
func (b *UIEventBridge) StartArrival(offensive, defensive command.StatTarget) error {
	return b.coordinator.Dispatch(command.NewStartArrival(offensive, defensive))
}

// StopFlow stops one flow.
func (b *UIEventBridge) StopFlow(kind state.FlowKind) error {
	return b.coordinator.Dispatch(command.NewStopFlow(kind))
}

// EmergencyStop stops whichever flow is running.
func (b *UIEventBridge) EmergencyStop() error {
	return b.coordinator.Dispatch(&command.EmergencyStop{})
}

// CalibrateButton records the next click as a button position.
func (b *UIEventBridge) CalibrateButton(role calibration.Role) error {
	return b.coordinator.Dispatch(&command.CalibrateButton{Role: role})
}

// CalibrateArea records the next two clicks as an area.
func (b *UIEventBridge) CalibrateArea(area calibration.Area) error {
	return b.coordinator.Dispatch(&command.CalibrateArea{Area: area})
}

// CancelCalibration abandons a pending capture.
func (b *UIEventBridge) CancelCalibration() error {
	return b.coordinator.Dispatch(&command.CancelCalibration{})
}

// SetDelay changes the action delay.
func (b *UIEventBridge) SetDelay(delayMs int) error {
	return b.coordinator.Dispatch(&command.SetDelay{DelayMs: delayMs})
}

// LoadProfile switches the active calibration profile.
func (b *UIEventBridge) LoadProfile(name string) error {
	return b.coordinator.Dispatch(&command.LoadProfile{Name: name})
}

// ConnectWindow looks up the game window.
func (b *UIEventBridge) ConnectWindow() error {
	return b.coordinator.Dispatch(&command.ConnectWindow{})
}

// Query methods

// Profile returns a copy of the active profile, or nil.
func (b *UIEventBridge) Profile() *calibration.Profile {
	return b.coordinator.Profile()
}

// Catalog returns the stat vocabularies.
func (b *UIEventBridge) Catalog() *stat.Catalog {
	return b.coordinator.Catalog()
}

// IsRunning reports whether a flow is active.
func (b *UIEventBridge) IsRunning(kind state.FlowKind) bool {
	return b.coordinator.IsRunning(kind)
}

// Event handling

func (b *UIEventBridge) handleEvent(e event.Event) {
	b.callbacksMu.RLock()
	callbacks := b.callbacks
	b.callbacksMu.RUnlock()

	if callbacks == nil {
		return
	}

	switch evt := e.(type) {
	case *event.FlowStarted:
		if callbacks.OnFlowStarted != nil {
			callbacks.OnFlowStarted(evt.FlowKind())
		}

	case *event.FlowStopped:
		if callbacks.OnFlowStopped != nil {
			callbacks.OnFlowStopped(evt.FlowKind(), evt.Reason, evt.Message)
		}

	case *event.FlowStateChanged:
		if callbacks.OnFlowStateChanged != nil {
			callbacks.OnFlowStateChanged(evt.FlowKind(), evt.OldState, evt.NewState)
		}

	case *event.StatusUpdated:
		if callbacks.OnStatus != nil {
			callbacks.OnStatus(evt.FlowKind(), evt.Message)
		}

	case *event.AlertRaised:
		if callbacks.OnAlert != nil {
			callbacks.OnAlert(evt.FlowKind(), evt.Title, evt.Message)
		}

	case *event.SummaryReady:
		if callbacks.OnSummary != nil {
			callbacks.OnSummary(evt.FlowKind(), evt.Rolls, evt.Groups)
		}

	case *event.CalibrationCaptureStarted:
		if callbacks.OnCaptureStarted != nil {
			callbacks.OnCaptureStarted(evt.Target, evt.Prompt)
		}

	case *event.CalibrationUpdated:
		if callbacks.OnCalibrationUpdated != nil {
			callbacks.OnCalibrationUpdated(evt.Profile)
		}

	case *event.CalibrationFailed:
		if callbacks.OnCalibrationFailed != nil {
			callbacks.OnCalibrationFailed(evt.Target, evt.Error)
		}

	case *event.WindowConnectionChanged:
		if callbacks.OnWindowConnection != nil {
			callbacks.OnWindowConnection(evt.Connected)
		}
	}
}
