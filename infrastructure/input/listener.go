// Package input listens to global keyboard and mouse events, without needing
// the focus, for the emergency stop and for click-to-calibrate.
package input

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	hook "github.com/robotn/gohook"

	"cabal-assist/domain/screen"
)

// ErrCaptureBusy is returned when a calibration capture is already waiting.
var ErrCaptureBusy = errors.New("another capture is in progress")

// Config holds listener options.
type Config struct {
	// EmergencyKey is the gohook key name that stops every flow.
	EmergencyKey string
	Logger       *slog.Logger
}

// DefaultConfig returns the default listener options.
func DefaultConfig() *Config {
	return &Config{EmergencyKey: "esc"}
}

// source produces global input events.
type source interface {
	start() chan hook.Event
	end()
}

type gohookSource struct{}

func (gohookSource) start() chan hook.Event { return hook.Start() }
func (gohookSource) end()                   { hook.End() }

// Listener dispatches global input events. Only one capture can wait for a
// click at a time; the emergency key is always live.
type Listener struct {
	cfg         *Config
	src         source
	keycode     uint16
	onEmergency func()

	running atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex
	waiting chan screen.Point
}

// NewListener creates a listener that calls onEmergency when the emergency
// key is pressed.
func NewListener(cfg *Config, onEmergency func()) *Listener {
	return newListener(cfg, gohookSource{}, onEmergency)
}

func newListener(cfg *Config, src source, onEmergency func()) *Listener {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	key := strings.ToLower(cfg.EmergencyKey)
	if key == "" {
		key = "esc"
	}
	return &Listener{
		cfg:         cfg,
		src:         src,
		keycode:     hook.Keycode[key],
		onEmergency: onEmergency,
	}
}

// Start begins listening. It is a no-op when already started.
func (l *Listener) Start() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	events := l.src.start()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for ev := range events {
			l.dispatch(ev)
		}
	}()
	l.cfg.Logger.Info("Global input listener started", "emergency_key", l.cfg.EmergencyKey)
}

// Stop ends listening and waits for the dispatch goroutine.
func (l *Listener) Stop() {
	if !l.running.CompareAndSwap(true, false) {
		return
	}
	l.src.end()
	l.wg.Wait()
}

func (l *Listener) dispatch(ev hook.Event) {
	defer func() {
		if r := recover(); r != nil {
			l.cfg.Logger.Error("Input handler panicked", "panic", r)
		}
	}()

	switch ev.Kind {
	case hook.KeyDown, hook.KeyHold:
		if ev.Keycode == l.keycode && l.onEmergency != nil {
			l.onEmergency()
		}
	case hook.MouseDown:
		l.deliver(screen.Point{X: int(ev.X), Y: int(ev.Y)})
	}
}

func (l *Listener) deliver(p screen.Point) {
	l.mu.Lock()
	ch := l.waiting
	l.waiting = nil
	l.mu.Unlock()

	if ch != nil {
		ch <- p
	}
}

// CaptureClick waits for the next mouse press anywhere on screen and returns
// its absolute position.
func (l *Listener) CaptureClick(ctx context.Context) (screen.Point, error) {
	ch := make(chan screen.Point, 1)

	l.mu.Lock()
	if l.waiting != nil {
		l.mu.Unlock()
		return screen.Point{}, ErrCaptureBusy
	}
	l.waiting = ch
	l.mu.Unlock()

	select {
	case p := <-ch:
		return p, nil
	case <-ctx.Done():
		l.mu.Lock()
		if l.waiting == ch {
			l.waiting = nil
		}
		l.mu.Unlock()
		return screen.Point{}, ctx.Err()
	}
}

// CaptureRegion waits for two clicks, the top-left then the bottom-right
// corner, and returns the region between them.
func (l *Listener) CaptureRegion(ctx context.Context) (screen.Region, error) {
	first, err := l.CaptureClick(ctx)
	if err != nil {
		return screen.Region{}, err
	}
	second, err := l.CaptureClick(ctx)
	if err != nil {
		return screen.Region{}, err
	}
	return screen.RegionFromCorners(first, second), nil
}
