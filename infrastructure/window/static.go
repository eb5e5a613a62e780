package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"

	// Register decoders for screenshot files.
	_ "image/jpeg"
	_ "image/png"

	"cabal-assist/domain/screen"
)

// ErrReadOnly is returned by input operations on a StaticWindow.
var ErrReadOnly = errors.New("static window does not accept input")

// StaticWindow is a screen.Window over a still screenshot. Image pixel
// (0,0) is screen (0,0). It is used to tune detection offline.
type StaticWindow struct {
	img image.Image
}

var _ screen.Window = (*StaticWindow)(nil)

// NewStaticWindow wraps an image.
func NewStaticWindow(img image.Image) *StaticWindow {
	return &StaticWindow{img: img}
}

// LoadStaticWindow decodes a PNG or JPEG screenshot.
func LoadStaticWindow(path string) (*StaticWindow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot %s: %w", path, err)
	}
	return NewStaticWindow(img), nil
}

// IsConnected implements screen.Window.
func (w *StaticWindow) IsConnected() bool {
	return w.img != nil
}

// Rect implements screen.Window.
func (w *StaticWindow) Rect() (screen.Region, bool) {
	if w.img == nil {
		return screen.Region{}, false
	}
	b := w.img.Bounds()
	return screen.Region{Left: b.Min.X, Top: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, true
}

// Click implements screen.Window.
func (w *StaticWindow) Click(ctx context.Context, rel screen.Point) error {
	return ErrReadOnly
}

// Scroll implements screen.Window.
func (w *StaticWindow) Scroll(ctx context.Context, abs screen.Point, amount int) error {
	return ErrReadOnly
}

// Capture copies the part of the screenshot inside region.
func (w *StaticWindow) Capture(ctx context.Context, region screen.Region) (image.Image, error) {
	if w.img == nil {
		return nil, screen.ErrNotConnected
	}
	r := region.Rectangle().Intersect(w.img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("region %s is outside the screenshot", region)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), w.img, r.Min, draw.Src)
	return out, nil
}

// ToWindowRelative implements screen.Window.
func (w *StaticWindow) ToWindowRelative(abs screen.Point) (screen.Point, bool) {
	rect, ok := w.Rect()
	if !ok || !rect.Contains(abs) {
		return screen.Point{}, false
	}
	return screen.RelativeTo(rect, abs), true
}
