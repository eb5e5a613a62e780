package event

import (
	"cabal-assist/domain/calibration"
)

// CalibrationCaptureStarted is published when the next mouse click will be
// recorded for a button or an area corner.
type CalibrationCaptureStarted struct {
	Target string
	Prompt string
}

func (e *CalibrationCaptureStarted) EventName() string {
	return "CalibrationCaptureStarted"
}

// CalibrationUpdated is published after the active profile has been saved.
type CalibrationUpdated struct {
	Profile *calibration.Profile
}

func (e *CalibrationUpdated) EventName() string {
	return "CalibrationUpdated"
}

// CalibrationFailed is published when a capture could not be stored.
type CalibrationFailed struct {
	Target string
	Error  error
}

func (e *CalibrationFailed) EventName() string {
	return "CalibrationFailed"
}

// WindowConnectionChanged is published when the game window is found or lost.
type WindowConnectionChanged struct {
	Connected bool
}

func (e *WindowConnectionChanged) EventName() string {
	return "WindowConnectionChanged"
}
