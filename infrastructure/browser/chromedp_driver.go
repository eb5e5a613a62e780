package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeDPDriver implements Driver using chromedp.
type ChromeDPDriver struct {
	config      *DriverConfig
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	running     bool
}

var _ Driver = (*ChromeDPDriver)(nil)

// NewChromeDPDriver creates a new ChromeDP-based browser driver.
func NewChromeDPDriver(config *DriverConfig) *ChromeDPDriver {
	if config == nil {
		config = DefaultDriverConfig()
	}
	return &ChromeDPDriver{
		config: config,
	}
}

// buildExecAllocatorOptions builds chromedp options from config.
func (d *ChromeDPDriver) buildExecAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.config.Headless),
		chromedp.Flag("hide-scrollbars", d.config.HideScrollbars),
		chromedp.Flag("mute-audio", d.config.MuteAudio),
		chromedp.Flag("disable-gpu", d.config.DisableGPU),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(d.config.WindowWidth, d.config.WindowHeight),
	)

	if d.config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(d.config.UserDataDir))
	}

	return opts
}

// Start initializes the browser instance.
func (d *ChromeDPDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("browser already running")
	}

	// The browser outlives the caller's context.
	d.allocCtx, d.allocCancel = chromedp.NewExecAllocator(
		context.Background(),
		d.buildExecAllocatorOptions()...,
	)
	d.ctx, d.cancel = chromedp.NewContext(d.allocCtx)

	if err := chromedp.Run(d.ctx, chromedp.EmulateViewport(int64(d.config.ViewportWidth), int64(d.config.ViewportHeight))); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	d.running = true
	return nil
}

// Stop closes the browser and releases resources.
func (d *ChromeDPDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.cleanup()
	return nil
}

func (d *ChromeDPDriver) cleanup() {
	d.running = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.allocCancel != nil {
		d.allocCancel()
		d.allocCancel = nil
	}
	d.ctx = nil
	d.allocCtx = nil
}

// IsRunning returns true if the browser is active.
func (d *ChromeDPDriver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *ChromeDPDriver) browserContext() (context.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running || d.ctx == nil {
		return nil, fmt.Errorf("browser not running")
	}
	return d.ctx, nil
}

// runContext derives a context for one browser operation. chromedp needs the
// browser context as parent; the caller's ctx can still cancel it. A zero
// timeout means no deadline.
func (d *ChromeDPDriver) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	browserCtx, err := d.browserContext()
	if err != nil {
		return nil, nil, err
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(browserCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(browserCtx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

// Navigate navigates to the specified URL.
func (d *ChromeDPDriver) Navigate(ctx context.Context, url string) error {
	runCtx, cancel, err := d.runContext(ctx, 0)
	if err != nil {
		return err
	}
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Navigate(url))
}

// Reload refreshes the current page.
func (d *ChromeDPDriver) Reload(ctx context.Context) error {
	runCtx, cancel, err := d.runContext(ctx, 0)
	if err != nil {
		return err
	}
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Reload())
}

// Click performs a mouse click at the specified coordinates.
func (d *ChromeDPDriver) Click(ctx context.Context, x, y float64) error {
	runCtx, cancel, err := d.runContext(ctx, 5*time.Second)
	if err != nil {
		return err
	}
	defer cancel()

	return chromedp.Run(runCtx,
		chromedp.MouseClickXY(x, y, chromedp.ButtonLeft),
	)
}

// Wheel dispatches a mouse wheel event.
func (d *ChromeDPDriver) Wheel(ctx context.Context, x, y float64, notches int) error {
	runCtx, cancel, err := d.runContext(ctx, 5*time.Second)
	if err != nil {
		return err
	}
	defer cancel()

	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		p := &input.DispatchMouseEventParams{
			Type:   input.MouseWheel,
			X:      x,
			Y:      y,
			DeltaX: 0,
			DeltaY: wheelDelta(notches, d.config.WheelStep),
		}
		return p.Do(ctx)
	}))
}

// wheelDelta converts notches to a CDP delta. CDP scrolls down for positive
// deltas, the opposite of our notch convention.
func wheelDelta(notches int, step float64) float64 {
	return -float64(notches) * step
}

// CaptureClip captures part of the page.
func (d *ChromeDPDriver) CaptureClip(ctx context.Context, x, y, width, height float64) (image.Image, error) {
	runCtx, cancel, err := d.runContext(ctx, 3*time.Second)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf []byte
	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&page.Viewport{X: x, Y: y, Width: width, Height: height, Scale: 1}).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	return img, nil
}

// SetViewport sets the browser viewport size.
func (d *ChromeDPDriver) SetViewport(ctx context.Context, width, height int) error {
	runCtx, cancel, err := d.runContext(ctx, 0)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.EmulateViewport(int64(width), int64(height))); err != nil {
		return err
	}

	d.mu.Lock()
	d.config.ViewportWidth = width
	d.config.ViewportHeight = height
	d.mu.Unlock()
	return nil
}

// Viewport returns the configured viewport size.
func (d *ChromeDPDriver) Viewport() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config.ViewportWidth, d.config.ViewportHeight
}
