// Package main is the entry point for Cabal Assist.
package main

import (
	"context"
	"os"
	"time"

	"cabal-assist/application"
	"cabal-assist/core/command"
	"cabal-assist/core/eventbus"
	"cabal-assist/domain/calibration"
	"cabal-assist/domain/stat"
	"cabal-assist/infrastructure/config"
	"cabal-assist/infrastructure/input"
	"cabal-assist/infrastructure/logging"
	"cabal-assist/infrastructure/vision"
	"cabal-assist/presentation"
	"cabal-assist/resources"

	"fyne.io/fyne/v2/app"
)

func main() {
	// Load config before logging so the level applies from the start
	cfgPath := config.Path()
	appCfg, err := config.Load(cfgPath)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logging (dev: console only, prod: rotating file)
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(appCfg.Logging.Level)
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		// Fallback to stderr if logging setup fails
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting Cabal Assist", "config", cfgPath, "backends", describeBackends(appCfg))

	ctx := context.Background()

	// Load stat vocabularies
	catalog, err := stat.LoadFromFS(resources.StatFiles)
	if err != nil {
		logger.Error("Failed to load stat vocabularies", "error", err)
		os.Exit(1)
	}
	logger.Info("Stat vocabularies loaded",
		"arrival", len(catalog.Arrival.Known()),
		"stellar", len(catalog.Stellar.Options))

	// Initialize profile storage
	repo, closeRepo, err := newRepository(ctx, appCfg, logger)
	if err != nil {
		logger.Error("Failed to initialize profile storage", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	calibrationService := calibration.NewService(repo)

	// Initialize adapters
	gameWindow, closeWindow := newGameWindow(appCfg, logger)
	defer closeWindow()

	ocrClient := newRecognizer(appCfg, logger)
	defer ocrClient.Close()

	matcher := vision.NewTemplateMatcher(vision.MatcherConfig{
		TemplatePath: appCfg.Vision.TemplatePath,
		Template:     resources.RedDotPNG,
		Logger:       logger,
	})
	defer matcher.Close()

	// Initialize event bus
	eventBus := eventbus.NewWithLogger(100, logger)
	defer eventBus.Close()

	// The listener is created first; it reaches the coordinator through this variable.
	var coordinator *application.Coordinator
	listener := input.NewListener(&input.Config{
		EmergencyKey: appCfg.Hotkey.Emergency,
		Logger:       logger,
	}, func() {
		if coordinator != nil {
			_ = coordinator.Dispatch(&command.EmergencyStop{})
		}
	})

	// Initialize coordinator
	coordinator = application.NewCoordinator(&application.CoordinatorConfig{
		EventBus:    eventBus,
		Calibration: calibrationService,
		Catalog:     catalog,
		Window:      gameWindow,
		Matcher:     matcher,
		Recognizer:  ocrClient,
		Capturer:    listener,
		Detector:    detectorConfig(appCfg, logger),
		Timing:      timingFrom(appCfg.Timing),
		Logger:      logger,
	})
	coordinator.Start()
	defer coordinator.Stop()

	listener.Start()
	defer listener.Stop()

	// Initialize UI event bridge
	bridge := presentation.NewUIEventBridge(&presentation.BridgeConfig{
		Coordinator: coordinator,
		EventBus:    eventBus,
		Logger:      logger,
	})
	defer bridge.Close()

	if err := coordinator.Dispatch(&command.LoadProfile{Name: profileName(appCfg)}); err != nil {
		logger.Error("Failed to load calibration profile", "error", err)
	}
	if err := coordinator.Dispatch(&command.ConnectWindow{}); err != nil {
		logger.Warn("Game window not found at startup", "error", err)
	}

	// Initialize Fyne app
	fyneApp := app.New()
	fyneApp.SetIcon(resources.GetAppIcon())

	// Initialize main window
	mainWindow := presentation.NewMainWindow(&presentation.MainWindowConfig{
		App:     fyneApp,
		Bridge:  bridge,
		Catalog: catalog,
		Logger:  logger,
	})
	defer mainWindow.Cleanup()

	// Show and run
	mainWindow.Show()
	fyneApp.Run()

	// Start shutdown timeout - force exit after 10 seconds if cleanup hangs
	go func() {
		time.Sleep(10 * time.Second)
		logger.Warn("Shutdown timeout, forcing exit")
		os.Exit(0)
	}()

	logger.Info("Application shutdown complete")
}
