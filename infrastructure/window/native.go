// Package window attaches to the native game client window.
package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"cabal-assist/domain/screen"
)

// ErrProcessNotFound is returned when no process matches the configured name.
var ErrProcessNotFound = errors.New("game process not found")

// Config holds the native window configuration.
type Config struct {
	// ProcessName is the executable name of the game client.
	ProcessName string
	// Activate brings the window to the front on connect.
	Activate bool
	Logger   *slog.Logger
}

// DefaultConfig returns the default native window configuration.
func DefaultConfig() *Config {
	return &Config{
		ProcessName: "cabalmain.exe",
		Activate:    true,
	}
}

// platform is the slice of OS automation the window needs.
type platform interface {
	processes() ([]process, error)
	pidExists(pid int) bool
	bounds(pid int) screen.Region
	activate(pid int) error
	click(x, y int)
	scroll(x, y, amount int)
	capture(r image.Rectangle) (image.Image, error)
}

type process struct {
	Pid  int
	Name string
}

// NativeWindow implements screen.Window on top of robotgo and screenshot.
type NativeWindow struct {
	cfg *Config
	os  platform

	mu  sync.RWMutex
	pid int
}

var _ screen.Window = (*NativeWindow)(nil)

// NewNativeWindow creates a window bound to the OS desktop.
func NewNativeWindow(cfg *Config) *NativeWindow {
	return newNativeWindow(cfg, robotgoPlatform{})
}

func newNativeWindow(cfg *Config, os platform) *NativeWindow {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &NativeWindow{cfg: cfg, os: os}
}

// Connect finds the game process and remembers its pid.
func (w *NativeWindow) Connect(ctx context.Context) error {
	procs, err := w.os.processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	pid := 0
	for _, p := range procs {
		if strings.EqualFold(p.Name, w.cfg.ProcessName) {
			pid = p.Pid
			break
		}
	}
	if pid == 0 {
		w.setPid(0)
		return fmt.Errorf("%w: %s", ErrProcessNotFound, w.cfg.ProcessName)
	}

	if r := w.os.bounds(pid); !r.Valid() {
		w.setPid(0)
		return fmt.Errorf("game window of %s has no size", w.cfg.ProcessName)
	}

	if w.cfg.Activate {
		if err := w.os.activate(pid); err != nil {
			w.cfg.Logger.Warn("Failed to activate game window", "pid", pid, "error", err)
		}
	}

	w.setPid(pid)
	w.cfg.Logger.Info("Game window connected", "process", w.cfg.ProcessName, "pid", pid)
	return nil
}

func (w *NativeWindow) setPid(pid int) {
	w.mu.Lock()
	w.pid = pid
	w.mu.Unlock()
}

func (w *NativeWindow) currentPid() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pid
}

// IsConnected implements screen.Window.
func (w *NativeWindow) IsConnected() bool {
	pid := w.currentPid()
	return pid != 0 && w.os.pidExists(pid)
}

// Rect implements screen.Window. The bounds are read on every call so a
// moved window is followed.
func (w *NativeWindow) Rect() (screen.Region, bool) {
	pid := w.currentPid()
	if pid == 0 {
		return screen.Region{}, false
	}
	r := w.os.bounds(pid)
	return r, r.Valid()
}

// Click implements screen.Window.
func (w *NativeWindow) Click(ctx context.Context, rel screen.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rect, ok := w.Rect()
	if !ok {
		return screen.ErrNotConnected
	}
	abs := rect.Origin().Add(rel)
	w.os.click(abs.X, abs.Y)
	return nil
}

// Scroll implements screen.Window.
func (w *NativeWindow) Scroll(ctx context.Context, abs screen.Point, amount int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !w.IsConnected() {
		return screen.ErrNotConnected
	}
	w.os.scroll(abs.X, abs.Y, amount)
	return nil
}

// Capture implements screen.Window.
func (w *NativeWindow) Capture(ctx context.Context, region screen.Region) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !region.Valid() {
		return nil, fmt.Errorf("invalid capture region %s", region.String())
	}
	img, err := w.os.capture(region.Rectangle())
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s: %w", region.String(), err)
	}
	return img, nil
}

// ToWindowRelative implements screen.Window.
func (w *NativeWindow) ToWindowRelative(abs screen.Point) (screen.Point, bool) {
	rect, ok := w.Rect()
	if !ok {
		return screen.Point{}, false
	}
	return screen.RelativeTo(rect, abs), true
}

// robotgoPlatform is the real desktop.
type robotgoPlatform struct{}

func (robotgoPlatform) processes() ([]process, error) {
	procs, err := robotgo.Process()
	if err != nil {
		return nil, err
	}
	out := make([]process, 0, len(procs))
	for _, p := range procs {
		out = append(out, process{Pid: p.Pid, Name: p.Name})
	}
	return out, nil
}

func (robotgoPlatform) pidExists(pid int) bool {
	ok, err := robotgo.PidExists(pid)
	return err == nil && ok
}

func (robotgoPlatform) bounds(pid int) screen.Region {
	x, y, w, h := robotgo.GetBounds(pid)
	return screen.Region{Left: x, Top: y, Width: w, Height: h}
}

func (robotgoPlatform) activate(pid int) error {
	return robotgo.ActivePid(pid)
}

func (robotgoPlatform) click(x, y int) {
	robotgo.Move(x, y)
	robotgo.Click()
}

func (robotgoPlatform) scroll(x, y, amount int) {
	robotgo.Move(x, y)
	switch {
	case amount > 0:
		robotgo.ScrollDir(amount, "up")
	case amount < 0:
		robotgo.ScrollDir(-amount, "down")
	}
}

func (robotgoPlatform) capture(r image.Rectangle) (image.Image, error) {
	return screenshot.CaptureRect(r)
}
