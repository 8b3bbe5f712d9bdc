package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	sheet2png "github.com/alnah/go-sheet2png"
	"github.com/alnah/go-sheet2png/internal/config"
)

// dotEnvFile is loaded from the working directory at start-up.
const dotEnvFile = ".env"

// envPrefix starts every variable sheet2png reads.
const envPrefix = "SHEET2PNG_"

// ErrInvalidEnv indicates a SHEET2PNG_* variable holds an unusable value.
var ErrInvalidEnv = errors.New("invalid environment variable")

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string             // SHEET2PNG_CONFIG: config file name or path
	OutputDir  string             // SHEET2PNG_OUTPUT_DIR: image directory
	Style      string             // SHEET2PNG_STYLE: precise or standard
	Scale      float64            // SHEET2PNG_SCALE: device scale factor
	ScaleSet   bool               // SHEET2PNG_SCALE was given, even as 0
	Timeout    time.Duration      // SHEET2PNG_TIMEOUT: per-sheet render timeout
	Viewport   sheet2png.Viewport // SHEET2PNG_VIEWPORT: WIDTHxHEIGHT
}

// knownEnvVars lists valid SHEET2PNG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"SHEET2PNG_CONFIG":     true,
	"SHEET2PNG_OUTPUT_DIR": true,
	"SHEET2PNG_STYLE":      true,
	"SHEET2PNG_SCALE":      true,
	"SHEET2PNG_TIMEOUT":    true,
	"SHEET2PNG_VIEWPORT":   true,
	"SHEET2PNG_CONTAINER":  true, // read by doctor
}

// loadDotEnv loads .env into the process environment.
// Variables already set in the real environment win.
func loadDotEnv(w io.Writer) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "warning: ignoring %s: %v\n", dotEnvFile, err)
	}
}

// loadEnvConfig reads configuration from environment variables.
// Malformed values are errors, unlike unknown names which only warn.
func loadEnvConfig() (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: os.Getenv("SHEET2PNG_CONFIG"),
		OutputDir:  os.Getenv("SHEET2PNG_OUTPUT_DIR"),
		Style:      os.Getenv("SHEET2PNG_STYLE"),
	}

	if v := os.Getenv("SHEET2PNG_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: SHEET2PNG_SCALE=%q", ErrInvalidEnv, v)
		}
		cfg.Scale = f
		cfg.ScaleSet = true
	}

	if v := os.Getenv("SHEET2PNG_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: SHEET2PNG_TIMEOUT=%q", ErrInvalidEnv, v)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv("SHEET2PNG_VIEWPORT"); v != "" {
		vp, err := sheet2png.ParseViewport(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SHEET2PNG_VIEWPORT: %w", ErrInvalidEnv, err)
		}
		cfg.Viewport = vp
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized SHEET2PNG_* variables.
// Helps catch typos like SHEET2PNG_SCALEFACTOR instead of SHEET2PNG_SCALE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overwrites config values with every variable that is set.
// CLI flags are applied afterwards by mergeFlags, giving
// flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Style != "" {
		cfg.Style.Variant = env.Style
	}
	if env.ScaleSet {
		cfg.Render.ScaleFactor = env.Scale
	}
	if env.Timeout != 0 {
		cfg.Render.Timeout = env.Timeout.String()
	}
	if env.Viewport != (sheet2png.Viewport{}) {
		cfg.Render.Viewport.Width = env.Viewport.Width
		cfg.Render.Viewport.Height = env.Viewport.Height
	}
}
