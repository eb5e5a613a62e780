package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cabal-assist/application"
	"cabal-assist/application/automation"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/screen"
	"cabal-assist/infrastructure/browser"
	"cabal-assist/infrastructure/config"
	"cabal-assist/infrastructure/ocr"
	"cabal-assist/infrastructure/repository"
	"cabal-assist/infrastructure/window"
)

// closer releases a backend on shutdown.
type closer func()

// newRepository opens the configured profile store.
func newRepository(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (calibration.Repository, closer, error) {
	if cfg.Storage.Backend == config.StorageMongo {
		mongoCfg := repository.DefaultMongoDBConfig()
		mongoCfg.URI = cfg.Storage.MongoURI
		mongoCfg.Database = cfg.Storage.MongoDatabase

		db, err := repository.NewMongoDB(ctx, mongoCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoProfileRepository(db, logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, nil, err
		}
		return repo, func() { _ = db.Close(ctx) }, nil
	}

	path := cfg.ProfilesPath()
	logger.Info("Using profile file", "path", path)
	return repository.NewFileProfileRepository(path, logger), func() {}, nil
}

// newGameWindow builds the configured window backend.
func newGameWindow(cfg *config.AppConfig, logger *slog.Logger) (application.GameWindow, closer) {
	if cfg.Window.Backend == config.WindowBrowser {
		driverCfg := browser.DefaultDriverConfig()
		driverCfg.Headless = cfg.Window.Headless
		if cfg.Window.ViewportWidth > 0 && cfg.Window.ViewportHeight > 0 {
			driverCfg.ViewportWidth = cfg.Window.ViewportWidth
			driverCfg.ViewportHeight = cfg.Window.ViewportHeight
		}

		w := browser.NewWindow(browser.NewChromeDPDriver(driverCfg), browser.WindowConfig{
			URL:    cfg.Window.URL,
			Origin: screen.Point{X: cfg.Window.OriginX, Y: cfg.Window.OriginY},
			Logger: logger,
		})
		return w, func() { _ = w.Close() }
	}

	w := window.NewNativeWindow(&window.Config{
		ProcessName: cfg.Window.ProcessName,
		Activate:    cfg.Window.Activate,
		Logger:      logger,
	})
	return w, func() {}
}

// newRecognizer builds the configured OCR backend. A Tesseract setup
// failure falls back to the no-op client so the badge flow stays usable.
func newRecognizer(cfg *config.AppConfig, logger *slog.Logger) ocr.Client {
	if cfg.OCR.Backend == config.OCRHTTP {
		httpCfg := ocr.DefaultClientConfig()
		httpCfg.BaseURL = cfg.OCR.BaseURL
		if len(cfg.OCR.Languages) > 0 {
			httpCfg.Language = cfg.OCR.Languages[0]
		}
		return ocr.NewHTTPClient(httpCfg)
	}

	tessCfg := ocr.DefaultTesseractConfig()
	if len(cfg.OCR.Languages) > 0 {
		tessCfg.Languages = cfg.OCR.Languages
	}
	if cfg.OCR.PageSegMode > 0 {
		tessCfg.PageSegMode = cfg.OCR.PageSegMode
	}
	client, err := ocr.NewTesseractClient(tessCfg)
	if err != nil {
		logger.Warn("Tesseract unavailable, OCR flows disabled", "error", err)
		return ocr.NewNoOpClient()
	}
	return client
}

// detectorConfig maps the vision section onto the template detector.
func detectorConfig(cfg *config.AppConfig, logger *slog.Logger) automation.TemplateDetectorConfig {
	dc := automation.DefaultTemplateDetectorConfig()
	if cfg.Vision.Confidence > 0 {
		dc.Confidence = cfg.Vision.Confidence
	}
	if cfg.Vision.MinDistance > 0 {
		dc.MinDistance = cfg.Vision.MinDistance
	}
	dc.Logger = logger
	return dc
}

// timingFrom applies the configured overrides to the default timing.
func timingFrom(tc config.TimingConfig) automation.Timing {
	t := automation.DefaultTiming()

	ms := func(dst *time.Duration, v int) {
		if v > 0 {
			*dst = time.Duration(v) * time.Millisecond
		}
	}
	ms(&t.InitialDelay, tc.InitialDelayMs)
	ms(&t.EffectDelay, tc.EffectDelayMs)
	ms(&t.Settle, tc.SettleMs)
	ms(&t.RerollGap, tc.RerollGapMs)
	ms(&t.Reschedule, tc.RescheduleMs)
	ms(&t.BadReadRetry, tc.BadReadRetryMs)
	ms(&t.ChangeDelay, tc.ChangeDelayMs)
	ms(&t.ApplyDelay, tc.ApplyDelayMs)
	ms(&t.CaptureRetry, tc.CaptureRetryMs)
	ms(&t.DoubleClickGap, tc.DoubleClickGapMs)

	if tc.MaxBadReads > 0 {
		t.MaxBadReads = tc.MaxBadReads
	}
	if tc.MaxPageGroups > 0 {
		t.MaxPageGroups = tc.MaxPageGroups
	}
	if tc.MaxEntryPasses > 0 {
		t.MaxEntryPasses = tc.MaxEntryPasses
	}
	if tc.TabTolerance > 0 {
		t.TabTolerance = tc.TabTolerance
	}
	return t
}

func profileName(cfg *config.AppConfig) string {
	if cfg.Profile.Name == "" {
		return calibration.DefaultProfileName
	}
	return cfg.Profile.Name
}

func describeBackends(cfg *config.AppConfig) string {
	return fmt.Sprintf("window=%s ocr=%s storage=%s", cfg.Window.Backend, cfg.OCR.Backend, cfg.Storage.Backend)
}
