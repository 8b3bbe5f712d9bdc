package main

// Notes:
// - runExport past ExportAll needs Chrome; successful runs are covered by
//   the root package integration tests. Here we test settings resolution
//   and the output helpers in isolation.
// - resolveSettings tests use t.Setenv() and cannot run in parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	sheet2png "github.com/alnah/go-sheet2png"
	"github.com/alnah/go-sheet2png/internal/config"
)

func mustParseFlags(t *testing.T, args ...string) (*exportFlags, []string) {
	t.Helper()
	f, positional, err := parseExportFlags(args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseExportFlags(%v): %v", args, err)
	}
	return f, positional
}

// ---------------------------------------------------------------------------
// TestResolveSettings - flags > env > config file > defaults
// ---------------------------------------------------------------------------

func TestResolveSettings_Precedence(t *testing.T) {
	clearSheet2pngEnv(t)

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "sheet2png.yaml", `output:
  dir: from-file
render:
  scaleFactor: 1
  timeout: 10s
style:
  variant: standard
naming:
  collision: suffix
`)
	css := writeFile(t, dir, "extra.css", "td { color: navy; }")

	t.Setenv("SHEET2PNG_OUTPUT_DIR", filepath.Join(dir, "from-env"))
	t.Setenv("SHEET2PNG_SCALE", "3")

	flags, positional := mustParseFlags(t, "-c", cfgPath, "-s", "4", "--css", css, "--report", "book.xlsx")

	s, err := resolveSettings(flags, positional)
	if err != nil {
		t.Fatalf("resolveSettings() unexpected error: %v", err)
	}

	if s.input != "book.xlsx" {
		t.Errorf("input = %q, want book.xlsx", s.input)
	}
	if s.outputDir != filepath.Join(dir, "from-env") {
		t.Errorf("outputDir = %q, want env value", s.outputDir)
	}
	if s.cfg.Render.ScaleFactor != 4 {
		t.Errorf("ScaleFactor = %v, want 4 from flag", s.cfg.Render.ScaleFactor)
	}
	if s.cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s from file", s.cfg.Timeout())
	}
	if s.cfg.Style.Variant != "standard" {
		t.Errorf("Style.Variant = %q, want standard from file", s.cfg.Style.Variant)
	}
	if s.cfg.Naming.Collision != "suffix" {
		t.Errorf("Naming.Collision = %q, want suffix from file", s.cfg.Naming.Collision)
	}
	if s.cfg.Render.Viewport.Width != config.DefaultWidth {
		t.Errorf("Viewport.Width = %d, want default", s.cfg.Render.Viewport.Width)
	}
	if !s.cfg.Report.Enabled {
		t.Error("Report.Enabled should be set by --report")
	}
	if s.extraCSS != "td { color: navy; }" {
		t.Errorf("extraCSS = %q, want file content", s.extraCSS)
	}
}

func TestResolveSettings_Defaults(t *testing.T) {
	clearSheet2pngEnv(t)

	flags, positional := mustParseFlags(t, "book.xlsx")

	s, err := resolveSettings(flags, positional)
	if err != nil {
		t.Fatalf("resolveSettings() unexpected error: %v", err)
	}

	wantDir, _ := filepath.Abs(config.DefaultOutputDir)
	if s.outputDir != wantDir {
		t.Errorf("outputDir = %q, want %q", s.outputDir, wantDir)
	}
	if s.cfg.Render.ScaleFactor != config.DefaultScaleFactor {
		t.Errorf("ScaleFactor = %v, want default", s.cfg.Render.ScaleFactor)
	}
	if s.cfg.Style.Variant != config.DefaultVariant {
		t.Errorf("Style.Variant = %q, want default", s.cfg.Style.Variant)
	}
	if s.extraCSS != "" {
		t.Errorf("extraCSS = %q, want empty", s.extraCSS)
	}
}

func TestResolveSettings_ConfigFromEnv(t *testing.T) {
	clearSheet2pngEnv(t)

	cfgPath := writeFile(t, t.TempDir(), "ci.yaml", "render:\n  scaleFactor: 1.5\n")
	t.Setenv("SHEET2PNG_CONFIG", cfgPath)

	flags, positional := mustParseFlags(t, "book.xlsx")

	s, err := resolveSettings(flags, positional)
	if err != nil {
		t.Fatalf("resolveSettings() unexpected error: %v", err)
	}
	if s.cfg.Render.ScaleFactor != 1.5 {
		t.Errorf("ScaleFactor = %v, want 1.5 from SHEET2PNG_CONFIG", s.cfg.Render.ScaleFactor)
	}
}

func TestResolveSettings_InvalidEnv(t *testing.T) {
	clearSheet2pngEnv(t)
	t.Setenv("SHEET2PNG_VIEWPORT", "huge")

	flags, positional := mustParseFlags(t, "book.xlsx")

	if _, err := resolveSettings(flags, positional); !errors.Is(err, ErrInvalidEnv) {
		t.Errorf("resolveSettings() error = %v, want ErrInvalidEnv", err)
	}
}

func TestResolveSettings_ZeroScaleFromEnv(t *testing.T) {
	clearSheet2pngEnv(t)
	t.Setenv("SHEET2PNG_SCALE", "0")

	flags, positional := mustParseFlags(t, "book.xlsx")

	_, err := resolveSettings(flags, positional)
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Fatalf("resolveSettings() error = %v, want ErrInvalidValue", err)
	}
	if got := exitCodeFor(err); got != ExitUsage {
		t.Errorf("exitCodeFor() = %d, want %d", got, ExitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Only explicit flags override
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.Dir = "keep"
		flags, _ := mustParseFlags(t, "book.xlsx")

		if err := mergeFlags(flags, cfg); err != nil {
			t.Fatalf("mergeFlags() unexpected error: %v", err)
		}
		if cfg.Output.Dir != "keep" {
			t.Errorf("Output.Dir = %q, want keep", cfg.Output.Dir)
		}
		if cfg.Report.Enabled {
			t.Error("Report.Enabled should stay false")
		}
	})

	t.Run("viewport flag is parsed", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		flags, _ := mustParseFlags(t, "--viewport", "1024x768", "book.xlsx")

		if err := mergeFlags(flags, cfg); err != nil {
			t.Fatalf("mergeFlags() unexpected error: %v", err)
		}
		if cfg.Render.Viewport.Width != 1024 || cfg.Render.Viewport.Height != 768 {
			t.Errorf("Viewport = %+v, want 1024x768", cfg.Render.Viewport)
		}
	})

	t.Run("bad viewport flag", func(t *testing.T) {
		t.Parallel()

		flags, _ := mustParseFlags(t, "--viewport", "0x768", "book.xlsx")

		err := mergeFlags(flags, config.DefaultConfig())
		if !errors.Is(err, sheet2png.ErrInvalidViewport) {
			t.Errorf("mergeFlags() error = %v, want ErrInvalidViewport", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildReport - Summary to report conversion
// ---------------------------------------------------------------------------

func TestBuildReport(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	summary := &sheet2png.RunSummary{
		Total:     2,
		Succeeded: 1,
		Results: []sheet2png.ExportResult{
			{Sheet: "Q1 Report", OutputPath: "/srv/out/Q1_Report.png", Duration: time.Second},
			{Sheet: "Notes", Err: &sheet2png.SheetError{Sheet: "Notes", Stage: sheet2png.StageCapture, Err: sheet2png.ErrNoTableFound}},
		},
	}

	rep := buildReport("book.xlsx", summary, now)

	if rep.Workbook != "book.xlsx" || rep.Total != 2 || rep.Succeeded != 1 || !rep.Generated.Equal(now) {
		t.Errorf("report header = %+v", rep)
	}
	if len(rep.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(rep.Entries))
	}
	if rep.Entries[0].File != "Q1_Report.png" || rep.Entries[0].Err != "" {
		t.Errorf("Entries[0] = %+v, want relative file and no error", rep.Entries[0])
	}
	if rep.Entries[1].File != "" || rep.Entries[1].Err != "no table found" {
		t.Errorf("Entries[1] = %+v, want no file and the cause", rep.Entries[1])
	}
}

// ---------------------------------------------------------------------------
// TestWriteJSONSummary - --json output
// ---------------------------------------------------------------------------

func TestWriteJSONSummary(t *testing.T) {
	t.Parallel()

	settings := &exportSettings{input: "book.xlsx", outputDir: "/srv/out"}
	summary := &sheet2png.RunSummary{
		Total:     2,
		Succeeded: 1,
		Results: []sheet2png.ExportResult{
			{Sheet: "Summary", OutputPath: "/srv/out/Summary.png", Duration: 1500 * time.Millisecond},
			{Sheet: "Empty", Err: &sheet2png.SheetError{Sheet: "Empty", Stage: sheet2png.StageCapture, Err: sheet2png.ErrNoTableFound}},
		},
	}

	var buf bytes.Buffer
	if err := writeJSONSummary(&buf, settings, summary); err != nil {
		t.Fatalf("writeJSONSummary() unexpected error: %v", err)
	}

	var got jsonSummary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if got.Total != 2 || got.Succeeded != 1 || got.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", got.Total, got.Succeeded, got.Failed)
	}
	if got.OutputDir != "/srv/out" {
		t.Errorf("OutputDir = %q, want /srv/out", got.OutputDir)
	}
	if got.Sheets[0].File != "/srv/out/Summary.png" || got.Sheets[0].DurationMS != 1500 {
		t.Errorf("Sheets[0] = %+v", got.Sheets[0])
	}
	if got.Sheets[1].Stage != "capture" || got.Sheets[1].Error != "no table found" {
		t.Errorf("Sheets[1] = %+v, want capture stage and cause", got.Sheets[1])
	}
}

// ---------------------------------------------------------------------------
// TestWithHint - Hints for run-level errors
// ---------------------------------------------------------------------------

func TestWithHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint bool
	}{
		{"browser launch", fmt.Errorf("%w: exec failed", sheet2png.ErrBrowserLaunch), true},
		{"input not found", sheet2png.ErrInputNotFound, true},
		{"output dir", sheet2png.ErrOutputDir, true},
		{"workbook open", sheet2png.ErrWorkbookOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := withHint(tt.err)
			if !errors.Is(got, tt.err) {
				t.Errorf("withHint() lost the error chain: %v", got)
			}
			if hasHint := strings.Contains(got.Error(), "hint:"); hasHint != tt.wantHint {
				t.Errorf("withHint(%v) hint present = %v, want %v", tt.err, hasHint, tt.wantHint)
			}
		})
	}
}

func TestHasTimeout(t *testing.T) {
	t.Parallel()

	timedOut := &sheet2png.RunSummary{Results: []sheet2png.ExportResult{
		{Sheet: "A", OutputPath: "A.png"},
		{Sheet: "B", Err: &sheet2png.SheetError{Sheet: "B", Stage: sheet2png.StageCapture, Err: sheet2png.ErrRenderTimeout}},
	}}
	if !hasTimeout(timedOut) {
		t.Error("hasTimeout() = false, want true")
	}

	clean := &sheet2png.RunSummary{Results: []sheet2png.ExportResult{{Sheet: "A", OutputPath: "A.png"}}}
	if hasTimeout(clean) {
		t.Error("hasTimeout() = true, want false")
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - Level selection
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags commonFlags
		want  zerolog.Level
	}{
		{"default", commonFlags{}, zerolog.WarnLevel},
		{"verbose", commonFlags{verbose: true}, zerolog.DebugLevel},
		{"quiet", commonFlags{quiet: true}, zerolog.Disabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := newLogger(&bytes.Buffer{}, tt.flags)
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("GetLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLogger_WritesWarnings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(&buf, commonFlags{noColor: true})

	logger.Debug().Msg("hidden")
	logger.Warn().Str("sheet", "Q1").Msg("output name collision")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered, got %q", out)
	}
	if !strings.Contains(out, "output name collision") || !strings.Contains(out, "sheet=Q1") {
		t.Errorf("warning should be written, got %q", out)
	}
}
