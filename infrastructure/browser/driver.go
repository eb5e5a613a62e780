// Package browser hosts the game client in a Chrome instance and exposes it
// as a screen.Window.
package browser

import (
	"context"
	"image"
)

// Driver defines the interface for browser automation.
type Driver interface {
	// Start initializes the browser instance.
	Start(ctx context.Context) error

	// Stop closes the browser and releases resources.
	Stop() error

	// IsRunning returns true if the browser is active.
	IsRunning() bool

	// Navigate navigates to the specified URL.
	Navigate(ctx context.Context, url string) error

	// Reload refreshes the current page.
	Reload(ctx context.Context) error

	// Click performs a mouse click at the specified page coordinates.
	Click(ctx context.Context, x, y float64) error

	// Wheel turns the mouse wheel at the specified page coordinates.
	// Positive notches scroll up.
	Wheel(ctx context.Context, x, y float64, notches int) error

	// CaptureClip captures part of the page in CSS pixels.
	CaptureClip(ctx context.Context, x, y, width, height float64) (image.Image, error)

	// SetViewport sets the browser viewport size.
	SetViewport(ctx context.Context, width, height int) error

	// Viewport returns the configured viewport size.
	Viewport() (width, height int)
}

// DriverConfig holds configuration for browser drivers.
type DriverConfig struct {
	// Headless runs the browser without a visible window.
	Headless bool

	// WindowWidth is the browser window width.
	WindowWidth int

	// WindowHeight is the browser window height.
	WindowHeight int

	// ViewportWidth is the viewport width.
	ViewportWidth int

	// ViewportHeight is the viewport height.
	ViewportHeight int

	// DisableGPU disables GPU acceleration.
	DisableGPU bool

	// MuteAudio mutes browser audio.
	MuteAudio bool

	// HideScrollbars hides scrollbars.
	HideScrollbars bool

	// UserDataDir specifies a custom user data directory.
	UserDataDir string

	// WheelStep is the pixel delta of one wheel notch.
	WheelStep float64
}

// DefaultDriverConfig returns default browser configuration.
// The game is played in the browser, so it is not headless.
func DefaultDriverConfig() *DriverConfig {
	return &DriverConfig{
		Headless:       false,
		WindowWidth:    1280,
		WindowHeight:   900,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		DisableGPU:     false,
		MuteAudio:      true,
		HideScrollbars: true,
		WheelStep:      100,
	}
}
