package main

import (
	"errors"
	"os"

	sheet2png "github.com/alnah/go-sheet2png"
	"github.com/alnah/go-sheet2png/internal/config"
)

// Exit codes for the sheet2png CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
// Per-sheet failures never change the exit code.
const (
	ExitSuccess = 0 // Run completed, possibly with failed sheets
	ExitGeneral = 1 // General/unexpected error, or interrupted
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Workbook missing or unreadable, output dir not creatable
	ExitBrowser = 4 // Chrome could not be launched
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, sheet2png.ErrBrowserLaunch) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, sheet2png.ErrInputNotFound) ||
		errors.Is(err, sheet2png.ErrOutputDir) ||
		errors.Is(err, sheet2png.ErrWorkbookOpen) ||
		errors.Is(err, ErrReadCSS) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidEnv) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, sheet2png.ErrInvalidScaleFactor) ||
		errors.Is(err, sheet2png.ErrInvalidViewport) ||
		errors.Is(err, sheet2png.ErrInvalidTimeout) ||
		errors.Is(err, sheet2png.ErrInvalidStyle) ||
		errors.Is(err, sheet2png.ErrInvalidCollisionPolicy) {
		return ExitUsage
	}

	return ExitGeneral
}
