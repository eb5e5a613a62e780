package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"cabal-assist/infrastructure/config"
	"cabal-assist/infrastructure/ocr"
	"cabal-assist/infrastructure/repository"
)

func TestTimingFrom(t *testing.T) {
	got := timingFrom(config.TimingConfig{
		EffectDelayMs: 1500,
		MaxBadReads:   5,
		TabTolerance:  30,
	})

	if got.EffectDelay != 1500*time.Millisecond {
		t.Errorf("EffectDelay = %v, want 1.5s", got.EffectDelay)
	}
	if got.MaxBadReads != 5 {
		t.Errorf("MaxBadReads = %d, want 5", got.MaxBadReads)
	}
	if got.TabTolerance != 30 {
		t.Errorf("TabTolerance = %v, want 30", got.TabTolerance)
	}
	// Unset values keep their defaults
	if got.InitialDelay != 3*1e9 {
		t.Errorf("InitialDelay = %v, want 3s", got.InitialDelay)
	}
	if got.MaxPageGroups != 20 {
		t.Errorf("MaxPageGroups = %d, want 20", got.MaxPageGroups)
	}
}

func TestDetectorConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Vision.MinDistance = 25

	dc := detectorConfig(cfg, nil)
	if dc.Confidence != 0.8 || dc.MinDistance != 25 {
		t.Errorf("detectorConfig() = %+v", dc)
	}
}

func TestNewRepository_File(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = t.TempDir() + "/profiles.yaml"

	repo, closeRepo, err := newRepository(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("newRepository() error = %v", err)
	}
	defer closeRepo()

	if _, ok := repo.(*repository.FileProfileRepository); !ok {
		t.Errorf("repository = %T, want *FileProfileRepository", repo)
	}
}

func TestNewRecognizer_HTTP(t *testing.T) {
	cfg := config.Default()
	cfg.OCR.Backend = config.OCRHTTP
	cfg.OCR.BaseURL = "http://127.0.0.1:1"

	client := newRecognizer(cfg, testLogger())
	defer client.Close()

	if _, ok := client.(*ocr.HTTPClient); !ok {
		t.Errorf("recognizer = %T, want *HTTPClient", client)
	}
}

func TestProfileName(t *testing.T) {
	cfg := config.Default()
	cfg.Profile.Name = ""
	if got := profileName(cfg); got != "default" {
		t.Errorf("profileName() = %q, want default", got)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
