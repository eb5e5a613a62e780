package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"

	"cabal-assist/application/automation"
	"cabal-assist/domain/screen"
	"cabal-assist/domain/stat"
	"cabal-assist/infrastructure/window"
)

type stubMatcher struct {
	matches []screen.Point
}

func (m *stubMatcher) FindMatches(ctx context.Context, img image.Image, confidence float64) ([]screen.Point, error) {
	return m.matches, nil
}

func (m *stubMatcher) TemplateSize() (int, int) { return 10, 10 }

func (m *stubMatcher) Available() bool { return true }

type stubRecognizer struct {
	text string
}

func (r stubRecognizer) ExtractText(ctx context.Context, img image.Image) (string, error) {
	return r.text, nil
}

func testDeps() detectorDeps {
	return detectorDeps{
		window: window.NewStaticWindow(image.NewRGBA(image.Rect(0, 0, 400, 300))),
		catalog: &stat.Catalog{
			Arrival: stat.NewVocabulary(nil, []stat.Option{
				{Display: "Defense", Category: stat.CategoryDefensive},
				{Display: "Attack Rate", Category: stat.CategoryOffensive},
			}, nil),
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in      string
		want    screen.Region
		wantErr bool
	}{
		{"10,20,30,40", screen.Region{Left: 10, Top: 20, Width: 30, Height: 40}, false},
		{" 1, 2, 3, 4 ", screen.Region{Left: 1, Top: 2, Width: 3, Height: 4}, false},
		{"1,2,3", screen.Region{}, true},
		{"a,2,3,4", screen.Region{}, true},
		{"1,2,0,4", screen.Region{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRegion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRegion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseRegion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDetector_Badge(t *testing.T) {
	deps := testDeps()
	deps.matcher = &stubMatcher{matches: []screen.Point{{X: 0, Y: 0}, {X: 50, Y: 0}}}

	d, err := newDetector(modeBadge, deps)
	if err != nil {
		t.Fatalf("newDetector() error = %v", err)
	}

	det := d.Detect(context.Background(), screen.Region{Left: 100, Top: 100, Width: 100, Height: 50})
	want := []screen.Point{{X: 105, Y: 105}, {X: 155, Y: 105}}
	if len(det.Points) != len(want) {
		t.Fatalf("Points = %v, want %v", det.Points, want)
	}
	for i := range want {
		if det.Points[i] != want[i] {
			t.Errorf("Points[%d] = %v, want %v", i, det.Points[i], want[i])
		}
	}

	deps.matcher = nil
	if _, err := newDetector(modeBadge, deps); err == nil {
		t.Error("newDetector(badge) without a matcher should fail")
	}
}

func TestNewDetector_Arrival(t *testing.T) {
	deps := testDeps()
	deps.recognizer = stubRecognizer{text: "Defense +30\nMystery +5"}

	d, err := newDetector(modeArrival, deps)
	if err != nil {
		t.Fatalf("newDetector() error = %v", err)
	}

	var out bytes.Buffer
	writeDetection(&out, d.Detect(context.Background(), screen.Region{Left: 0, Top: 0, Width: 200, Height: 40}))

	got := out.String()
	for _, want := range []string{"field: Defense +30", "unmapped:", `raw: "Defense +30\nMystery +5"`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestNewDetector_UnknownMode(t *testing.T) {
	if _, err := newDetector("sparkle", testDeps()); err == nil {
		t.Error("newDetector() with an unknown mode should fail")
	}
}

func TestWriteDetection(t *testing.T) {
	tests := []struct {
		name string
		det  automation.Detection
		want string
	}{
		{"error", automation.Detection{Err: errors.New("capture: boom")}, "error: capture: boom"},
		{"empty", automation.Detection{}, "nothing detected"},
		{"stellar", automation.Detection{Raw: "Penetration +12", Text: "penetration+12", Numbers: []string{"12"}}, "numbers: 12"},
		{"points", automation.Detection{Points: []screen.Point{{X: 3, Y: 4}}}, "(3, 4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			writeDetection(&out, tt.det)
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("writeDetection() = %q, want it to contain %q", out.String(), tt.want)
			}
		})
	}
}
