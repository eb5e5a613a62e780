// Package vision implements template matching with OpenCV.
package vision

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"cabal-assist/domain/screen"
)

// MatcherConfig holds template matcher options.
type MatcherConfig struct {
	// TemplatePath overrides the embedded template when set.
	TemplatePath string
	// Template is the encoded template used when TemplatePath is empty.
	Template []byte
	Logger   *slog.Logger
}

// TemplateMatcher finds every occurrence of one template image using
// normalized correlation.
type TemplateMatcher struct {
	mu       sync.Mutex
	template gocv.Mat
	width    int
	height   int
	loaded   bool
	logger   *slog.Logger
}

var _ screen.TemplateMatcher = (*TemplateMatcher)(nil)

// NewTemplateMatcher loads the template. A matcher whose template failed to
// load is still returned; it reports Available() == false.
func NewTemplateMatcher(cfg MatcherConfig) *TemplateMatcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	m := &TemplateMatcher{logger: cfg.Logger}
	if err := m.load(cfg); err != nil {
		cfg.Logger.Warn("Badge template not loaded", "path", cfg.TemplatePath, "error", err)
	}
	return m
}

func (m *TemplateMatcher) load(cfg MatcherConfig) error {
	data := cfg.Template
	if cfg.TemplatePath != "" {
		b, err := os.ReadFile(cfg.TemplatePath)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		data = b
	}
	if len(data) == 0 {
		return fmt.Errorf("no template configured")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("failed to decode template: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return fmt.Errorf("template image is empty")
	}

	m.template = mat
	m.width = mat.Cols()
	m.height = mat.Rows()
	m.loaded = true
	return nil
}

// Available implements screen.TemplateMatcher.
func (m *TemplateMatcher) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// TemplateSize implements screen.TemplateMatcher.
func (m *TemplateMatcher) TemplateSize() (int, int) {
	return m.width, m.height
}

// FindMatches implements screen.TemplateMatcher. Matches are top-left
// corners in row-major order.
func (m *TemplateMatcher) FindMatches(ctx context.Context, img image.Image, confidence float64) ([]screen.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return nil, fmt.Errorf("template not loaded")
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	if src.Cols() < m.width || src.Rows() < m.height {
		return nil, nil
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, m.template, &result, gocv.TmCcoeffNormed, mask)

	return collectMatches(result.Rows(), result.Cols(), func(y, x int) float32 {
		return result.GetFloatAt(y, x)
	}, confidence), nil
}

// collectMatches returns every score location at or above confidence.
func collectMatches(rows, cols int, score func(y, x int) float32, confidence float64) []screen.Point {
	var out []screen.Point
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if float64(score(y, x)) >= confidence {
				out = append(out, screen.Point{X: x, Y: y})
			}
		}
	}
	return out
}

// Close releases the template.
func (m *TemplateMatcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		m.template.Close()
		m.loaded = false
	}
}
