// Package config handles importer and viewer configuration loading.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/ifcscene/pkg/encoding"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds element stream import settings.
type ImportConfig struct {
	Workers      int      `yaml:"workers"`       // 1 imports sequentially
	SlotLimit    int      `yaml:"slot_limit"`    // Material editor slots to fill
	HiddenTypes  []string `yaml:"hidden_types"`  // Element types imported hidden
	Charset      string   `yaml:"charset"`       // Stream file encoding, empty for UTF-8
	ProgressStep float64  `yaml:"progress_step"` // Fraction between progress log lines
}

// ViewerConfig holds display settings.
type ViewerConfig struct {
	Width            int        `yaml:"width"`
	Height           int        `yaml:"height"`
	VSync            bool       `yaml:"vsync"`
	ShowHidden       bool       `yaml:"show_hidden"`
	ShowEdges        bool       `yaml:"show_edges"`
	EdgeColor        [3]float64 `yaml:"edge_color,flow"`
	ScreenshotDir    string     `yaml:"screenshot_dir"`
	ScreenshotFormat string     `yaml:"screenshot_format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Workers:      1,
			SlotLimit:    24,
			HiddenTypes:  []string{"IfcOpeningElement", "IfcSpace"},
			Charset:      "",
			ProgressStep: 0.1,
		},
		Viewer: ViewerConfig{
			Width:            1280,
			Height:           720,
			VSync:            true,
			ShowHidden:       false,
			ShowEdges:        true,
			EdgeColor:        [3]float64{0.05, 0.05, 0.05},
			ScreenshotDir:    "screenshots",
			ScreenshotFormat: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Import.Workers < 1 {
		add("import.workers must be at least 1, got %d", c.Import.Workers)
	}
	if c.Import.SlotLimit < 0 {
		add("import.slot_limit must not be negative, got %d", c.Import.SlotLimit)
	}
	if c.Import.ProgressStep <= 0 || c.Import.ProgressStep > 1 {
		add("import.progress_step must be in (0, 1], got %g", c.Import.ProgressStep)
	}
	if _, err := encoding.Lookup(c.Import.Charset); err != nil {
		add("import.charset: %v", err)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		add("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	switch c.Viewer.ScreenshotFormat {
	case "png", "bmp":
	default:
		add("viewer.screenshot_format must be png or bmp, got %q", c.Viewer.ScreenshotFormat)
	}
	for i, v := range c.Viewer.EdgeColor {
		if v < 0 || v > 1 {
			add("viewer.edge_color[%d] must be in [0, 1], got %g", i, v)
		}
	}
	return errs
}
