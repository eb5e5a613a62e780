package browser

import (
	"context"
	"image"
	"testing"

	"cabal-assist/domain/screen"
)

type clip struct {
	x, y, w, h float64
}

// mockDriver records calls instead of driving a browser.
type mockDriver struct {
	running  bool
	navURL   string
	clicks   [][2]float64
	wheels   [][3]float64
	clips    []clip
	viewport [2]int
}

func (m *mockDriver) Start(ctx context.Context) error { m.running = true; return nil }
func (m *mockDriver) Stop() error                     { m.running = false; return nil }
func (m *mockDriver) IsRunning() bool                 { return m.running }
func (m *mockDriver) Navigate(ctx context.Context, url string) error {
	m.navURL = url
	return nil
}
func (m *mockDriver) Reload(ctx context.Context) error { return nil }
func (m *mockDriver) Click(ctx context.Context, x, y float64) error {
	m.clicks = append(m.clicks, [2]float64{x, y})
	return nil
}
func (m *mockDriver) Wheel(ctx context.Context, x, y float64, notches int) error {
	m.wheels = append(m.wheels, [3]float64{x, y, float64(notches)})
	return nil
}
func (m *mockDriver) CaptureClip(ctx context.Context, x, y, w, h float64) (image.Image, error) {
	m.clips = append(m.clips, clip{x, y, w, h})
	return image.NewRGBA(image.Rect(0, 0, int(w), int(h))), nil
}
func (m *mockDriver) SetViewport(ctx context.Context, w, h int) error {
	m.viewport = [2]int{w, h}
	return nil
}
func (m *mockDriver) Viewport() (int, int) { return m.viewport[0], m.viewport[1] }

func TestWindow_Connect(t *testing.T) {
	d := &mockDriver{viewport: [2]int{800, 600}}
	w := NewWindow(d, WindowConfig{URL: "https://example.com/play"})

	if w.IsConnected() {
		t.Fatal("IsConnected() before Connect")
	}
	if _, ok := w.Rect(); ok {
		t.Error("Rect() should be unavailable before Connect")
	}
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !w.IsConnected() || d.navURL != "https://example.com/play" {
		t.Errorf("connected=%v url=%q", w.IsConnected(), d.navURL)
	}
}

func TestWindow_Coordinates(t *testing.T) {
	d := &mockDriver{running: true, viewport: [2]int{800, 600}}
	w := NewWindow(d, WindowConfig{Origin: screen.Point{X: 100, Y: 50}})
	ctx := context.Background()

	rel, ok := w.ToWindowRelative(screen.Point{X: 150, Y: 80})
	if !ok || rel != (screen.Point{X: 50, Y: 30}) {
		t.Errorf("ToWindowRelative() = %v, %v", rel, ok)
	}
	if _, ok := w.ToWindowRelative(screen.Point{X: 10, Y: 10}); ok {
		t.Error("ToWindowRelative() accepted a point outside the page")
	}

	if _, err := w.Capture(ctx, screen.Region{Left: 120, Top: 70, Width: 40, Height: 20}); err != nil {
		t.Fatal(err)
	}
	if got := d.clips[0]; got != (clip{20, 20, 40, 20}) {
		t.Errorf("capture clip = %+v, want {20 20 40 20}", got)
	}

	if err := w.Scroll(ctx, screen.Point{X: 300, Y: 250}, -8); err != nil {
		t.Fatal(err)
	}
	if got := d.wheels[0]; got != [3]float64{200, 200, -8} {
		t.Errorf("wheel = %v", got)
	}

	if err := w.Click(ctx, screen.Point{X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}
	if got := d.clicks[0]; got != [2]float64{5, 6} {
		t.Errorf("click = %v", got)
	}
}

func TestWindow_CaptureDisconnected(t *testing.T) {
	w := NewWindow(&mockDriver{}, WindowConfig{})
	if _, err := w.Capture(context.Background(), screen.Region{Width: 1, Height: 1}); err == nil {
		t.Error("Capture() should fail while disconnected")
	}
}
