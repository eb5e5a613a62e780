package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"cabal-assist/application/automation"
	"cabal-assist/domain/screen"
	"cabal-assist/domain/stat"
)

// Probe modes.
const (
	modeBadge   = "badge"
	modeStellar = "stellar"
	modeArrival = "arrival"
)

// parseRegion reads "x,y,w,h".
func parseRegion(s string) (screen.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return screen.Region{}, fmt.Errorf("region %q: want x,y,w,h", s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return screen.Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}

	r := screen.Region{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}
	if !r.Valid() {
		return screen.Region{}, fmt.Errorf("region %q has no area", s)
	}
	return r, nil
}

// detectorDeps are the backends a probe mode may need.
type detectorDeps struct {
	window     screen.Window
	matcher    screen.TemplateMatcher
	recognizer screen.TextRecognizer
	catalog    *stat.Catalog
	confidence float64
	logger     *slog.Logger
}

// newDetector builds the detector a flow of the given mode would use.
func newDetector(mode string, deps detectorDeps) (automation.TargetDetector, error) {
	switch mode {
	case modeBadge:
		if deps.matcher == nil || !deps.matcher.Available() {
			return nil, fmt.Errorf("badge template not loaded")
		}
		cfg := automation.DefaultTemplateDetectorConfig()
		if deps.confidence > 0 {
			cfg.Confidence = deps.confidence
		}
		cfg.Logger = deps.logger
		return automation.NewTemplateDetector(deps.window, deps.matcher, cfg), nil
	case modeStellar:
		return automation.NewTextDetector(deps.window, deps.recognizer, automation.SingleStatParser{}, deps.logger), nil
	case modeArrival:
		if deps.catalog == nil || deps.catalog.Arrival == nil {
			return nil, fmt.Errorf("arrival vocabulary not loaded")
		}
		parser := automation.NewDualStatParser(deps.catalog.Arrival)
		return automation.NewTextDetector(deps.window, deps.recognizer, parser, deps.logger), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// writeDetection prints what a detector saw.
func writeDetection(w io.Writer, det automation.Detection) {
	if det.Err != nil {
		fmt.Fprintf(w, "error: %v\n", det.Err)
		return
	}

	if len(det.Points) > 0 {
		fmt.Fprintf(w, "matches: %d\n", len(det.Points))
		for _, p := range det.Points {
			fmt.Fprintf(w, "  (%d, %d)\n", p.X, p.Y)
		}
	}
	if det.Raw != "" {
		fmt.Fprintf(w, "raw: %q\n", det.Raw)
		fmt.Fprintf(w, "text: %q\n", det.Text)
	}
	if len(det.Numbers) > 0 {
		fmt.Fprintf(w, "numbers: %s\n", strings.Join(det.Numbers, " "))
	}
	for _, f := range det.Fields {
		fmt.Fprintf(w, "field: %s\n", f.Key())
	}
	for _, u := range det.Unmapped {
		fmt.Fprintf(w, "unmapped: %s\n", u)
	}
	if len(det.Points) == 0 && det.Raw == "" {
		fmt.Fprintln(w, "nothing detected")
	}
}
