package command

import "cabal-assist/domain/calibration"

// CalibrateButton records the next mouse click as a button position.
type CalibrateButton struct {
	Role calibration.Role
}

func (c *CalibrateButton) CommandName() string {
	return "CalibrateButton"
}

// CalibrateArea records the next two mouse clicks as the corners of an area.
type CalibrateArea struct {
	Area calibration.Area
}

func (c *CalibrateArea) CommandName() string {
	return "CalibrateArea"
}

// CancelCalibration abandons a pending capture.
type CancelCalibration struct{}

func (c *CancelCalibration) CommandName() string {
	return "CancelCalibration"
}

// SetDelay changes the delay after every click, in milliseconds.
type SetDelay struct {
	DelayMs int
}

func (c *SetDelay) CommandName() string {
	return "SetDelay"
}

// LoadProfile switches the active calibration profile.
type LoadProfile struct {
	Name string
}

func (c *LoadProfile) CommandName() string {
	return "LoadProfile"
}

// ConnectWindow looks up the game window again.
type ConnectWindow struct{}

func (c *ConnectWindow) CommandName() string {
	return "ConnectWindow"
}
