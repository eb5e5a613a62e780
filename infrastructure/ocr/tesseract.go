package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract"
)

// TesseractConfig configures the embedded Tesseract backend.
type TesseractConfig struct {
	// Languages passed to Tesseract, e.g. "eng".
	Languages []string
	// PageSegMode is the Tesseract page segmentation mode.
	// Zero keeps the library default.
	PageSegMode int
}

// DefaultTesseractConfig returns the defaults used for stat panels.
func DefaultTesseractConfig() *TesseractConfig {
	return &TesseractConfig{
		Languages:   []string{"eng"},
		PageSegMode: int(gosseract.PSM_AUTO),
	}
}

// TesseractClient recognizes text with a local Tesseract installation.
// A gosseract client is not safe for concurrent use, so calls are serialized.
type TesseractClient struct {
	mu     sync.Mutex
	client *gosseract.Client
	closed bool
}

var _ Client = (*TesseractClient)(nil)

// NewTesseractClient creates a Tesseract backed client.
func NewTesseractClient(cfg *TesseractConfig) (*TesseractClient, error) {
	if cfg == nil {
		cfg = DefaultTesseractConfig()
	}

	client := gosseract.NewClient()
	if len(cfg.Languages) > 0 {
		if err := client.SetLanguage(cfg.Languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set language %s: %w", strings.Join(cfg.Languages, "+"), err)
		}
	}
	if cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}

	return &TesseractClient{client: client}, nil
}

// ExtractText implements screen.TextRecognizer.
func (c *TesseractClient) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrUnavailable
	}

	if err := c.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}
	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}

// IsHealthy returns true until the client is closed.
func (c *TesseractClient) IsHealthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close releases the Tesseract handle.
func (c *TesseractClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.client.Close()
}
