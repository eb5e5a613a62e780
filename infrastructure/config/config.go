// Package config loads the application configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "CABAL_ASSIST_CONFIG"

// Window backends.
const (
	WindowNative  = "native"
	WindowBrowser = "browser"
)

// OCR backends.
const (
	OCRTesseract = "tesseract"
	OCRHTTP      = "http"
)

// Storage backends.
const (
	StorageFile  = "file"
	StorageMongo = "mongo"
)

// AppConfig is the content of config.yaml.
type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Window  WindowConfig  `yaml:"window"`
	OCR     OCRConfig     `yaml:"ocr"`
	Vision  VisionConfig  `yaml:"vision"`
	Storage StorageConfig `yaml:"storage"`
	Profile ProfileConfig `yaml:"profile"`
	Hotkey  HotkeyConfig  `yaml:"hotkey"`
	Timing  TimingConfig  `yaml:"timing"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WindowConfig selects how the game window is reached.
type WindowConfig struct {
	Backend     string `yaml:"backend"`
	ProcessName string `yaml:"process_name"`
	Activate    bool   `yaml:"activate"`

	// Browser backend only.
	URL            string `yaml:"url"`
	Headless       bool   `yaml:"headless"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	OriginX        int    `yaml:"origin_x"`
	OriginY        int    `yaml:"origin_y"`
}

// OCRConfig selects the text recognizer.
type OCRConfig struct {
	Backend     string   `yaml:"backend"`
	BaseURL     string   `yaml:"base_url"`
	Languages   []string `yaml:"languages"`
	PageSegMode int      `yaml:"page_seg_mode"`
}

// VisionConfig holds template matching options.
type VisionConfig struct {
	TemplatePath string  `yaml:"template_path"`
	Confidence   float64 `yaml:"confidence"`
	MinDistance  float64 `yaml:"min_distance"`
}

// StorageConfig selects where calibration profiles are kept.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// ProfileConfig names the calibration profile loaded at startup.
type ProfileConfig struct {
	Name string `yaml:"name"`
}

// HotkeyConfig holds global key bindings.
type HotkeyConfig struct {
	Emergency string `yaml:"emergency"`
}

// TimingConfig overrides flow waits in milliseconds and flow caps.
// Zero keeps the built-in value.
type TimingConfig struct {
	InitialDelayMs   int     `yaml:"initial_delay_ms"`
	EffectDelayMs    int     `yaml:"effect_delay_ms"`
	SettleMs         int     `yaml:"settle_ms"`
	RerollGapMs      int     `yaml:"reroll_gap_ms"`
	RescheduleMs     int     `yaml:"reschedule_ms"`
	BadReadRetryMs   int     `yaml:"bad_read_retry_ms"`
	ChangeDelayMs    int     `yaml:"change_delay_ms"`
	ApplyDelayMs     int     `yaml:"apply_delay_ms"`
	CaptureRetryMs   int     `yaml:"capture_retry_ms"`
	DoubleClickGapMs int     `yaml:"double_click_gap_ms"`
	MaxBadReads      int     `yaml:"max_bad_reads"`
	MaxPageGroups    int     `yaml:"max_page_groups"`
	MaxEntryPasses   int     `yaml:"max_entry_passes"`
	TabTolerance     float64 `yaml:"tab_tolerance"`
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Window: WindowConfig{
			Backend:        WindowNative,
			ProcessName:    "cabalmain.exe",
			Activate:       true,
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		OCR: OCRConfig{
			Backend:   OCRTesseract,
			BaseURL:   "http://localhost:8000",
			Languages: []string{"eng"},
		},
		Vision: VisionConfig{
			Confidence:  0.8,
			MinDistance: 10,
		},
		Storage: StorageConfig{
			Backend:       StorageFile,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "cabal_assist",
		},
		Profile: ProfileConfig{Name: "default"},
		Hotkey:  HotkeyConfig{Emergency: "esc"},
	}
}

// DefaultDir returns the directory holding config.yaml and profiles.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "cabal-assist")
}

// Path returns the config file path, honoring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads the config file at path on top of Default. A missing file is
// not an error.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the backend selections.
func (c *AppConfig) Validate() error {
	switch c.Window.Backend {
	case WindowNative, WindowBrowser:
	default:
		return fmt.Errorf("unknown window backend %q", c.Window.Backend)
	}
	switch c.OCR.Backend {
	case OCRTesseract, OCRHTTP:
	default:
		return fmt.Errorf("unknown ocr backend %q", c.OCR.Backend)
	}
	switch c.Storage.Backend {
	case StorageFile, StorageMongo:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Window.Backend == WindowBrowser && c.Window.URL == "" {
		return errors.New("window.url is required for the browser backend")
	}
	if c.Vision.Confidence < 0 || c.Vision.Confidence > 1 {
		return fmt.Errorf("vision.confidence %v out of range [0,1]", c.Vision.Confidence)
	}
	return nil
}

// ProfilesPath returns the profile file used by the file storage backend.
func (c *AppConfig) ProfilesPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DefaultDir(), "profiles.yaml")
}
