package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	sheet2png "github.com/alnah/go-sheet2png"
	"github.com/alnah/go-sheet2png/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},

		{"browser launch", sheet2png.ErrBrowserLaunch, ExitBrowser},
		{"wrapped browser launch", fmt.Errorf("%w: chrome exited", sheet2png.ErrBrowserLaunch), ExitBrowser},

		{"input not found", sheet2png.ErrInputNotFound, ExitIO},
		{"output dir", sheet2png.ErrOutputDir, ExitIO},
		{"workbook open", sheet2png.ErrWorkbookOpen, ExitIO},
		{"css read", fmt.Errorf("%w: %w", ErrReadCSS, os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},

		{"usage", fmt.Errorf("%w: %w", ErrUsage, ErrNoInput), ExitUsage},
		{"env", ErrInvalidEnv, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"config field length", config.ErrFieldTooLong, ExitUsage},
		{"scale factor", sheet2png.ErrInvalidScaleFactor, ExitUsage},
		{"viewport", sheet2png.ErrInvalidViewport, ExitUsage},
		{"timeout", sheet2png.ErrInvalidTimeout, ExitUsage},
		{"style", sheet2png.ErrInvalidStyle, ExitUsage},
		{"collision policy", sheet2png.ErrInvalidCollisionPolicy, ExitUsage},

		{"interrupted", ErrInterrupted, ExitGeneral},
		{"context canceled", context.Canceled, ExitGeneral},
		{"report", ErrWriteReport, ExitGeneral},
		{"unknown", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
