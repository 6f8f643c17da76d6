// Package config loads hearth's HCL configuration: the engine settings file
// and component manifests used to pack unit images.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap/zapcore"
)

// Config is the decoded engine configuration.
type Config struct {
	// UnitPath is the code unit to load, resolved against the config file's
	// directory.
	UnitPath  string
	LogLevel  string
	LogFormat string
	Reload    Reload
	Window    Window
}

// Reload controls how the unit is watched and unloaded.
type Reload struct {
	Watch          bool
	UnloadAttempts int
	UnloadInterval time.Duration
}

// Window is the initial game window.
type Window struct {
	Title  string
	Width  int
	Height int
}

// Default returns the configuration used for anything a file leaves out.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		Reload: Reload{
			Watch:          true,
			UnloadAttempts: 10,
			UnloadInterval: 10 * time.Millisecond,
		},
		Window: Window{
			Title:  "hearth",
			Width:  640,
			Height: 480,
		},
	}
}

// hclConfig mirrors the file layout for gohcl.
type hclConfig struct {
	Unit      string     `hcl:"unit"`
	LogLevel  *string    `hcl:"log_level,optional"`
	LogFormat *string    `hcl:"log_format,optional"`
	Reload    *hclReload `hcl:"reload,block"`
	Window    *hclWindow `hcl:"window,block"`
}

type hclReload struct {
	Watch    *bool   `hcl:"watch,optional"`
	Attempts *int    `hcl:"attempts,optional"`
	Interval *string `hcl:"interval,optional"`
}

type hclWindow struct {
	Title  *string `hcl:"title,optional"`
	Width  *int    `hcl:"width,optional"`
	Height *int    `hcl:"height,optional"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	return decode(f, path)
}

// Parse decodes configuration from src. filename is used in diagnostics and
// to resolve a relative unit path.
func Parse(src []byte, filename string) (Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	return decode(f, filename)
}

func decode(f *hcl.File, filename string) (Config, error) {
	var raw hclConfig
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	cfg := Default()
	cfg.UnitPath = raw.Unit
	if cfg.UnitPath != "" && !filepath.IsAbs(cfg.UnitPath) {
		cfg.UnitPath = filepath.Join(filepath.Dir(filename), cfg.UnitPath)
	}
	setIf(&cfg.LogLevel, raw.LogLevel)
	setIf(&cfg.LogFormat, raw.LogFormat)

	if r := raw.Reload; r != nil {
		setIf(&cfg.Reload.Watch, r.Watch)
		setIf(&cfg.Reload.UnloadAttempts, r.Attempts)
		if r.Interval != nil {
			d, err := time.ParseDuration(*r.Interval)
			if err != nil {
				return Config{}, fmt.Errorf("%s: reload.interval: %w", filename, err)
			}
			cfg.Reload.UnloadInterval = d
		}
	}

	if w := raw.Window; w != nil {
		setIf(&cfg.Window.Title, w.Title)
		setIf(&cfg.Window.Width, w.Width)
		setIf(&cfg.Window.Height, w.Height)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks value ranges that the HCL schema cannot express.
func (c Config) Validate() error {
	if c.UnitPath == "" {
		return fmt.Errorf("unit must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be \"console\" or \"json\", got %q", c.LogFormat)
	}
	if c.Reload.UnloadAttempts < 1 {
		return fmt.Errorf("reload.attempts must be at least 1, got %d", c.Reload.UnloadAttempts)
	}
	if c.Reload.UnloadInterval < 0 {
		return fmt.Errorf("reload.interval must not be negative, got %s", c.Reload.UnloadInterval)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}
