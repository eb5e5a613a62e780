package browser

import (
	"context"
	"image"
	"log/slog"

	"cabal-assist/domain/screen"
)

// WindowConfig places the browser page on the screen.
type WindowConfig struct {
	// URL is opened by Connect when set.
	URL string
	// Origin is the screen position of the page's top-left corner. Screen
	// coordinates captured during calibration are converted with it.
	Origin screen.Point
	Logger *slog.Logger
}

// Window adapts a browser Driver to screen.Window. Page coordinates are
// window-relative coordinates.
type Window struct {
	driver Driver
	cfg    WindowConfig
}

var _ screen.Window = (*Window)(nil)

// NewWindow creates a browser-backed window.
func NewWindow(driver Driver, cfg WindowConfig) *Window {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Window{driver: driver, cfg: cfg}
}

// Connect starts the browser if needed and opens the configured URL.
func (w *Window) Connect(ctx context.Context) error {
	if w.driver.IsRunning() {
		return nil
	}
	if err := w.driver.Start(ctx); err != nil {
		return err
	}
	if w.cfg.URL != "" {
		if err := w.driver.Navigate(ctx, w.cfg.URL); err != nil {
			return err
		}
	}
	w.cfg.Logger.Info("Browser window connected", "url", w.cfg.URL)
	return nil
}

// Close stops the browser.
func (w *Window) Close() error {
	return w.driver.Stop()
}

// IsConnected implements screen.Window.
func (w *Window) IsConnected() bool {
	return w.driver.IsRunning()
}

// Rect implements screen.Window.
func (w *Window) Rect() (screen.Region, bool) {
	if !w.driver.IsRunning() {
		return screen.Region{}, false
	}
	width, height := w.driver.Viewport()
	return screen.Region{Left: w.cfg.Origin.X, Top: w.cfg.Origin.Y, Width: width, Height: height}, true
}

// Click implements screen.Window.
func (w *Window) Click(ctx context.Context, rel screen.Point) error {
	return w.driver.Click(ctx, float64(rel.X), float64(rel.Y))
}

// Scroll implements screen.Window.
func (w *Window) Scroll(ctx context.Context, abs screen.Point, amount int) error {
	p := abs.Sub(w.cfg.Origin)
	return w.driver.Wheel(ctx, float64(p.X), float64(p.Y), amount)
}

// Capture implements screen.Window.
func (w *Window) Capture(ctx context.Context, region screen.Region) (image.Image, error) {
	if !w.driver.IsRunning() {
		return nil, screen.ErrNotConnected
	}
	p := region.Origin().Sub(w.cfg.Origin)
	return w.driver.CaptureClip(ctx, float64(p.X), float64(p.Y), float64(region.Width), float64(region.Height))
}

// ToWindowRelative implements screen.Window.
func (w *Window) ToWindowRelative(abs screen.Point) (screen.Point, bool) {
	rect, ok := w.Rect()
	if !ok || !rect.Contains(abs) {
		return screen.Point{}, false
	}
	return screen.RelativeTo(rect, abs), true
}
