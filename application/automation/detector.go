package automation

import (
	"context"
	"fmt"
	"log/slog"

	"cabal-assist/domain/screen"
)

// Field is one stat read from a dual-stat panel.
type Field struct {
	Name     string
	Value    int
	HasValue bool
	Percent  bool
}

// Key is the summary key of the field, e.g. "Add. Damage +45".
func (f Field) Key() string {
	if !f.HasValue {
		return f.Name + " +?"
	}
	if f.Percent {
		return fmt.Sprintf("%s +%d%%", f.Name, f.Value)
	}
	return fmt.Sprintf("%s +%d", f.Name, f.Value)
}

// Display is the value as shown in roll status lines.
func (f Field) Display() string {
	switch {
	case !f.HasValue:
		return "?"
	case f.Percent:
		return fmt.Sprintf("%d%%", f.Value)
	default:
		return fmt.Sprintf("%d", f.Value)
	}
}

// Detection is the result of one detector pass. It is built fresh on every
// pass; an empty detection means nothing was found.
type Detection struct {
	// Points are absolute centers of template matches.
	Points []screen.Point
	// Raw is the unprocessed OCR text.
	Raw string
	// Text is the normalized OCR text.
	Text string
	// Numbers are the digit runs of Text.
	Numbers []string
	// Fields are the recognized stats, keyed by base name, in read order.
	Fields []Field
	// Unmapped holds "name +value" keys that matched no known stat.
	Unmapped []string
	// Err is set when capture or recognition failed for this pass.
	Err error
}

// Field returns the field with the given base name.
func (d Detection) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TargetDetector finds targets inside an absolute screen region.
type TargetDetector interface {
	Detect(ctx context.Context, region screen.Region) Detection
}

// TemplateDetectorConfig holds template matching options.
type TemplateDetectorConfig struct {
	// Confidence is the minimum normalized correlation of a match.
	Confidence float64
	// MinDistance merges matches whose centers are closer than this.
	MinDistance float64
	// Logger for detector logs.
	Logger *slog.Logger
}

// DefaultTemplateDetectorConfig returns the default template options.
func DefaultTemplateDetectorConfig() TemplateDetectorConfig {
	return TemplateDetectorConfig{
		Confidence:  0.8,
		MinDistance: 10,
		Logger:      slog.Default(),
	}
}

// TemplateDetector finds badge indicators by template matching.
type TemplateDetector struct {
	window  screen.Window
	matcher screen.TemplateMatcher
	cfg     TemplateDetectorConfig
}

var _ TargetDetector = (*TemplateDetector)(nil)

// NewTemplateDetector creates a template detector.
func NewTemplateDetector(window screen.Window, matcher screen.TemplateMatcher, cfg TemplateDetectorConfig) *TemplateDetector {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TemplateDetector{window: window, matcher: matcher, cfg: cfg}
}

// Available reports whether the badge template is loaded.
func (d *TemplateDetector) Available() bool {
	return d.matcher != nil && d.matcher.Available()
}

// Detect returns the deduplicated absolute centers of every match in region.
// Failures are logged and yield an empty detection.
func (d *TemplateDetector) Detect(ctx context.Context, region screen.Region) Detection {
	if !d.Available() || !region.Valid() {
		return Detection{}
	}

	img, err := d.window.Capture(ctx, region)
	if err != nil {
		d.cfg.Logger.Debug("Capture failed", "region", region.String(), "error", err)
		return Detection{}
	}

	matches, err := d.matcher.FindMatches(ctx, img, d.cfg.Confidence)
	if err != nil {
		d.cfg.Logger.Debug("Template matching failed", "error", err)
		return Detection{}
	}

	w, h := d.matcher.TemplateSize()
	centers := make([]screen.Point, 0, len(matches))
	for _, m := range matches {
		centers = append(centers, screen.Point{
			X: region.Left + m.X + w/2,
			Y: region.Top + m.Y + h/2,
		})
	}

	return Detection{Points: dedupe(centers, d.cfg.MinDistance)}
}

// dedupe keeps points in order, dropping any closer than minDistance to a
// point already kept.
func dedupe(points []screen.Point, minDistance float64) []screen.Point {
	kept := make([]screen.Point, 0, len(points))
	for _, p := range points {
		dup := false
		for _, k := range kept {
			if p.DistanceTo(k) < minDistance {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, p)
		}
	}
	return kept
}

// TextParser turns recognized text into a detection.
type TextParser interface {
	Parse(raw string) Detection
}

// TextDetector reads a region with OCR and parses the text.
type TextDetector struct {
	window     screen.Window
	recognizer screen.TextRecognizer
	parser     TextParser
	logger     *slog.Logger
}

var _ TargetDetector = (*TextDetector)(nil)

// NewTextDetector creates an OCR detector.
func NewTextDetector(window screen.Window, recognizer screen.TextRecognizer, parser TextParser, logger *slog.Logger) *TextDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextDetector{window: window, recognizer: recognizer, parser: parser, logger: logger}
}

// Detect captures region and parses its text. Failures are reported in
// Detection.Err rather than returned.
func (d *TextDetector) Detect(ctx context.Context, region screen.Region) Detection {
	img, err := d.window.Capture(ctx, region)
	if err != nil {
		return Detection{Err: fmt.Errorf("capture: %w", err)}
	}

	raw, err := d.recognizer.ExtractText(ctx, img)
	if err != nil {
		return Detection{Err: fmt.Errorf("ocr: %w", err)}
	}
	d.logger.Debug("Raw OCR text", "text", raw)

	det := d.parser.Parse(raw)
	det.Raw = raw
	return det
}
