// Command detect-probe runs one detector pass against a saved screenshot.
// It is used to tune template confidence and OCR regions without the game.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cabal-assist/domain/stat"
	"cabal-assist/infrastructure/logging"
	"cabal-assist/infrastructure/ocr"
	"cabal-assist/infrastructure/vision"
	"cabal-assist/infrastructure/window"
	"cabal-assist/resources"
)

func main() {
	image := flag.String("image", "", "screenshot to read (png or jpeg)")
	region := flag.String("region", "", "absolute region as x,y,w,h")
	mode := flag.String("mode", modeBadge, "badge, stellar or arrival")
	template := flag.String("template", "", "badge template path (default: embedded red dot)")
	confidence := flag.Float64("confidence", 0, "template match confidence (default 0.8)")
	lang := flag.String("lang", "eng", "tesseract language")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if err := run(*image, *region, *mode, *template, *confidence, *lang, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "detect-probe:", err)
		os.Exit(1)
	}
}

func run(imagePath, regionArg, mode, templatePath string, confidence float64, lang string, verbose bool) error {
	if imagePath == "" || regionArg == "" {
		return fmt.Errorf("-image and -region are required")
	}

	logCfg := logging.DefaultConfig()
	logCfg.FileName = "detect-probe.log"
	logCfg.Console = os.Stderr
	if verbose {
		logCfg.Level = logging.ParseLevel("debug")
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := parseRegion(regionArg)
	if err != nil {
		return err
	}
	win, err := window.LoadStaticWindow(imagePath)
	if err != nil {
		return err
	}

	deps := detectorDeps{window: win, confidence: confidence, logger: logger}

	switch mode {
	case modeBadge:
		matcher := vision.NewTemplateMatcher(vision.MatcherConfig{
			TemplatePath: templatePath,
			Template:     resources.RedDotPNG,
			Logger:       logger,
		})
		defer matcher.Close()
		deps.matcher = matcher
	default:
		catalog, err := stat.LoadFromFS(resources.StatFiles)
		if err != nil {
			return err
		}
		tessCfg := ocr.DefaultTesseractConfig()
		tessCfg.Languages = []string{lang}
		client, err := ocr.NewTesseractClient(tessCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.catalog = catalog
		deps.recognizer = client
	}

	detector, err := newDetector(mode, deps)
	if err != nil {
		return err
	}

	logger.Debug("Probing", "mode", mode, "region", r.String(), "image", imagePath)
	writeDetection(os.Stdout, detector.Detect(context.Background(), r))
	return nil
}
