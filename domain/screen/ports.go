package screen

import (
	"context"
	"errors"
	"image"
)

// ErrNotConnected is returned by window operations when no game window is attached.
var ErrNotConnected = errors.New("game window not connected")

// Window is the game window the automation drives.
type Window interface {
	// IsConnected reports whether a target window is attached.
	IsConnected() bool

	// Rect returns the window rectangle in absolute coordinates.
	// The second value is false when the rectangle cannot be obtained.
	Rect() (Region, bool)

	// Click clicks at a window-relative point.
	Click(ctx context.Context, rel Point) error

	// Scroll issues a wheel event at an absolute point.
	// Positive amounts scroll up, negative amounts scroll down.
	Scroll(ctx context.Context, abs Point, amount int) error

	// Capture grabs the pixels of an absolute region.
	Capture(ctx context.Context, region Region) (image.Image, error)

	// ToWindowRelative converts an absolute point to window-relative space.
	// It fails when the window rectangle is unavailable.
	ToWindowRelative(abs Point) (Point, bool)
}

// TextRecognizer extracts text from an image.
type TextRecognizer interface {
	ExtractText(ctx context.Context, img image.Image) (string, error)
}

// TemplateMatcher correlates a fixed template against images.
type TemplateMatcher interface {
	// FindMatches returns the top-left corner, in image coordinates, of every
	// location whose normalized correlation is at or above confidence.
	FindMatches(ctx context.Context, img image.Image, confidence float64) ([]Point, error)

	// TemplateSize returns the template width and height.
	TemplateSize() (width, height int)

	// Available reports whether a template is loaded.
	Available() bool
}
