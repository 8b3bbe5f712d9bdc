package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-sheet2png/internal/fileutil"
	"github.com/alnah/go-sheet2png/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength     = 4096
	MaxScaleFactor    = 8.0
	MaxViewportLength = 16384
	MaxTimeout        = 10 * time.Minute
)

// Built-in defaults applied to every field left empty in a config file.
const (
	DefaultOutputDir   = "output"
	DefaultScaleFactor = 2.0
	DefaultWidth       = 1920
	DefaultHeight      = 1080
	DefaultTimeout     = "30s"
	DefaultIdleWindow  = "500ms"
	DefaultVariant     = "precise"
	DefaultCollision   = "overwrite"
)

// Accepted enumerations.
var (
	styleVariants     = []string{"precise", "standard"}
	collisionPolicies = []string{"overwrite", "suffix"}
)

// Config holds all configuration for an export run.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	Style  StyleConfig  `yaml:"style"`
	Naming NamingConfig `yaml:"naming"`
	Report ReportConfig `yaml:"report"`
}

// OutputConfig defines where images are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// RenderConfig defines browser session settings.
type RenderConfig struct {
	ScaleFactor float64        `yaml:"scaleFactor"`
	Viewport    ViewportConfig `yaml:"viewport"`
	Timeout     string         `yaml:"timeout"`    // Go duration, per sheet
	IdleWindow  string         `yaml:"idleWindow"` // Go duration, DOM stability window
}

// ViewportConfig is the emulated window size in CSS pixels.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// StyleConfig selects the document CSS.
type StyleConfig struct {
	Variant string `yaml:"variant"` // "precise" or "standard"
	CSS     string `yaml:"css"`     // Path to extra CSS appended after the variant
}

// NamingConfig defines output file naming.
type NamingConfig struct {
	Collision string `yaml:"collision"` // "overwrite" or "suffix"
}

// ReportConfig toggles the index.md / index.html run report.
type ReportConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Render.ScaleFactor == 0 {
		c.Render.ScaleFactor = DefaultScaleFactor
	}
	if c.Render.Viewport.Width == 0 {
		c.Render.Viewport.Width = DefaultWidth
	}
	if c.Render.Viewport.Height == 0 {
		c.Render.Viewport.Height = DefaultHeight
	}
	if c.Render.Timeout == "" {
		c.Render.Timeout = DefaultTimeout
	}
	if c.Render.IdleWindow == "" {
		c.Render.IdleWindow = DefaultIdleWindow
	}
	if c.Style.Variant == "" {
		c.Style.Variant = DefaultVariant
	}
	if c.Naming.Collision == "" {
		c.Naming.Collision = DefaultCollision
	}
}

// Validate checks ranges, enumerations and field lengths.
// Called automatically by LoadConfig, but available for callers
// who construct or override a Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("style.css", c.Style.CSS, MaxPathLength); err != nil {
		return err
	}

	if c.Render.ScaleFactor <= 0 || c.Render.ScaleFactor > MaxScaleFactor {
		return fmt.Errorf("%w: render.scaleFactor must be in (0, %g], got %g",
			ErrInvalidValue, MaxScaleFactor, c.Render.ScaleFactor)
	}
	if err := validateLength("render.viewport.width", c.Render.Viewport.Width); err != nil {
		return err
	}
	if err := validateLength("render.viewport.height", c.Render.Viewport.Height); err != nil {
		return err
	}
	if _, err := parseDuration("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if _, err := parseDuration("render.idleWindow", c.Render.IdleWindow); err != nil {
		return err
	}

	if err := validateOneOf("style.variant", c.Style.Variant, styleVariants); err != nil {
		return err
	}
	return validateOneOf("naming.collision", c.Naming.Collision, collisionPolicies)
}

// Timeout returns render.timeout as a duration. Call after Validate.
func (c *Config) Timeout() time.Duration {
	d, _ := parseDuration("render.timeout", c.Render.Timeout)
	return d
}

// IdleWindow returns render.idleWindow as a duration. Call after Validate.
func (c *Config) IdleWindow() time.Duration {
	d, _ := parseDuration("render.idleWindow", c.Render.IdleWindow)
	return d
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateLength(fieldName string, px int) error {
	if px <= 0 || px > MaxViewportLength {
		return fmt.Errorf("%w: %s must be between 1 and %d, got %d", ErrInvalidValue, fieldName, MaxViewportLength, px)
	}
	return nil
}

func validateOneOf(fieldName, value string, allowed []string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q",
		ErrInvalidValue, fieldName, strings.Join(allowed, ", "), value)
}

func parseDuration(fieldName, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d <= 0 || d > MaxTimeout {
		return 0, fmt.Errorf("%w: %s must be in (0, %s], got %s", ErrInvalidValue, fieldName, MaxTimeout, d)
	}
	return d, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CandidatePaths lists the locations searched for a config name, in order:
// current directory first, then ~/.config/sheet2png/, each with .yaml and .yml.
func CandidatePaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "sheet2png", name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing candidate for name.
func resolveConfigPath(name string) (string, error) {
	tried := CandidatePaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
