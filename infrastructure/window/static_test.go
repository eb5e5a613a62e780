package window

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cabal-assist/domain/screen"
)

func testScreenshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))
	img.Set(30, 40, color.RGBA{R: 255, A: 255})
	return img
}

func TestStaticWindow_Capture(t *testing.T) {
	w := NewStaticWindow(testScreenshot())

	img, err := w.Capture(context.Background(), screen.Region{Left: 20, Top: 30, Width: 20, Height: 20})
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Errorf("Capture() bounds = %v", img.Bounds())
	}
	if r, _, _, _ := img.At(10, 10).RGBA(); r != 0xffff {
		t.Error("captured pixel (10,10) should be the red marker")
	}

	if _, err := w.Capture(context.Background(), screen.Region{Left: 500, Top: 500, Width: 5, Height: 5}); err == nil {
		t.Error("Capture() outside the screenshot should fail")
	}
}

func TestStaticWindow_ReadOnly(t *testing.T) {
	w := NewStaticWindow(testScreenshot())

	if err := w.Click(context.Background(), screen.Point{}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Click() error = %v, want ErrReadOnly", err)
	}
	if err := w.Scroll(context.Background(), screen.Point{}, 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Scroll() error = %v, want ErrReadOnly", err)
	}
	if _, ok := w.ToWindowRelative(screen.Point{X: 200, Y: 10}); ok {
		t.Error("ToWindowRelative() outside the screenshot should fail")
	}
}

func TestLoadStaticWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testScreenshot()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	w, err := LoadStaticWindow(path)
	if err != nil {
		t.Fatalf("LoadStaticWindow() error = %v", err)
	}
	if rect, ok := w.Rect(); !ok || rect.Width != 100 || rect.Height != 80 {
		t.Errorf("Rect() = %v, %v", rect, ok)
	}

	if _, err := LoadStaticWindow(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("LoadStaticWindow() should fail for a missing file")
	}
}
