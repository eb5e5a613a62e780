package presentation

import (
	"fmt"
	"log/slog"
	"sync"

	"cabal-assist/core/event"
	"cabal-assist/core/state"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/stat"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the main application window.
type MainWindow struct {
	window fyne.Window
	bridge *UIEventBridge
	logger *slog.Logger

	// UI components
	tabs        map[state.FlowKind]*FlowTab
	calibration *CalibrationPanel
	windowLabel *widget.Label

	// Cleanup
	cleanupOnce sync.Once
}

// MainWindowConfig holds configuration for MainWindow.
type MainWindowConfig struct {
	App     fyne.App
	Bridge  *UIEventBridge
	Catalog *stat.Catalog
	Logger  *slog.Logger
}

// NewMainWindow creates a new main window.
func NewMainWindow(cfg *MainWindowConfig) *MainWindow {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &MainWindow{
		window: cfg.App.NewWindow("Cabal Assist"),
		bridge: cfg.Bridge,
		logger: cfg.Logger,
		tabs:   make(map[state.FlowKind]*FlowTab),
	}

	w.init(cfg.Catalog)
	w.setupEventCallbacks()

	if w.bridge != nil {
		w.calibration.SetProfile(w.bridge.Profile())
	}

	w.window.SetOnClosed(func() {
		w.Cleanup()
		cfg.App.Quit()
	})

	return w
}

func (w *MainWindow) init(catalog *stat.Catalog) {
	appTabs := container.NewAppTabs()
	for _, kind := range state.Kinds() {
		tab := NewFlowTab(&FlowTabConfig{
			Kind:    kind,
			Bridge:  w.bridge,
			Parent:  w.window,
			Catalog: catalog,
			Logger:  w.logger,
		})
		w.tabs[kind] = tab
		appTabs.Append(container.NewTabItem(kind.Title(), tab.Container()))
	}

	w.calibration = NewCalibrationPanel(&CalibrationPanelConfig{
		Bridge: w.bridge,
		Parent: w.window,
		Logger: w.logger,
	})
	appTabs.Append(container.NewTabItemWithIcon("Calibration", theme.SettingsIcon(), w.calibration.Container()))

	w.windowLabel = widget.NewLabel("Game window: not connected")
	stopAll := widget.NewButtonWithIcon("Stop all (Esc)", theme.MediaStopIcon(), func() {
		if w.bridge != nil {
			_ = w.bridge.EmergencyStop()
		}
	})
	statusBar := container.NewBorder(nil, nil, nil, stopAll, w.windowLabel)

	w.window.SetContent(container.NewBorder(nil, statusBar, nil, nil, appTabs))
	w.window.Resize(fyne.NewSize(720, 640))
}

func (w *MainWindow) setupEventCallbacks() {
	if w.bridge == nil {
		return
	}

	w.bridge.SetCallbacks(&UICallbacks{
		OnFlowStarted: func(kind state.FlowKind) {
			// UI update must run on main thread
			fyne.Do(func() {
				w.withTab(kind, func(t *FlowTab) { t.SetRunning(true) })
			})
		},
		OnFlowStopped: func(kind state.FlowKind, reason event.StopReason, message string) {
			w.logger.Info("Flow stopped", "flow", string(kind), "reason", reason.String())
			fyne.Do(func() {
				w.withTab(kind, func(t *FlowTab) { t.SetRunning(false) })
			})
		},
		OnFlowStateChanged: func(kind state.FlowKind, oldState, newState state.RunState) {
			fyne.Do(func() {
				w.withTab(kind, func(t *FlowTab) { t.SetState(newState) })
			})
		},
		OnStatus: func(kind state.FlowKind, message string) {
			fyne.Do(func() {
				w.withTab(kind, func(t *FlowTab) { t.AppendLog(message) })
			})
		},
		OnAlert: func(kind state.FlowKind, title, message string) {
			fyne.Do(func() {
				dialog.ShowInformation(title, message, w.window)
			})
		},
		OnSummary: func(kind state.FlowKind, rolls int, groups []event.SummaryGroup) {
			text := formatSummary(kind.Title(), rolls, groups)
			fyne.Do(func() {
				w.withTab(kind, func(t *FlowTab) { t.AppendLog(text) })
			})
		},
		OnCaptureStarted: func(target, prompt string) {
			fyne.Do(func() {
				w.calibration.ShowPrompt(prompt)
			})
		},
		OnCalibrationUpdated: func(profile *calibration.Profile) {
			fyne.Do(func() {
				w.calibration.SetProfile(profile)
			})
		},
		OnCalibrationFailed: func(target string, err error) {
			fyne.Do(func() {
				w.calibration.ShowPrompt("")
				dialog.ShowError(fmt.Errorf("%s: %w", target, err), w.window)
			})
		},
		OnWindowConnection: func(connected bool) {
			fyne.Do(func() {
				w.windowLabel.SetText(connectionText(connected))
			})
		},
	})
}

func (w *MainWindow) withTab(kind state.FlowKind, fn func(t *FlowTab)) {
	if t, ok := w.tabs[kind]; ok {
		fn(t)
	}
}

func connectionText(connected bool) string {
	if connected {
		return "Game window: connected"
	}
	return "Game window: not connected"
}

// Public methods

// Show displays the main window.
func (w *MainWindow) Show() {
	w.window.Show()
}

// Cleanup stops running flows.
func (w *MainWindow) Cleanup() {
	w.cleanupOnce.Do(func() {
		w.logger.Info("Starting cleanup...")

		if w.bridge != nil {
			w.bridge.SetCallbacks(nil)
			for kind := range w.tabs {
				if w.bridge.IsRunning(kind) {
					_ = w.bridge.StopFlow(kind)
				}
			}
		}

		w.logger.Info("Cleanup completed")
	})
}
