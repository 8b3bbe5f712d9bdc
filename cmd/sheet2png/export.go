package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	sheet2png "github.com/alnah/go-sheet2png"
	"github.com/alnah/go-sheet2png/internal/config"
	"github.com/alnah/go-sheet2png/internal/fileutil"
	"github.com/alnah/go-sheet2png/internal/hints"
	"github.com/alnah/go-sheet2png/internal/report"
)

// Sentinel errors for the export command.
var (
	ErrNoInput       = errors.New("no workbook given")
	ErrUnsupported   = errors.New("unsupported workbook extension")
	ErrReadCSS       = errors.New("cannot read CSS file")
	ErrWriteReport   = errors.New("cannot write report")
	ErrInterrupted   = errors.New("interrupted")
	errTooManyInputs = errors.New("expected exactly one workbook")
)

// exportSettings is the fully resolved configuration of one run.
type exportSettings struct {
	input     string
	outputDir string // absolute
	cfg       *config.Config
	extraCSS  string
}

// runExportCmd parses flags, runs the export and returns an exit code.
func runExportCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		fmt.Fprintln(env.Stderr, "Run 'sheet2png help export' for usage.")
		return exitCodeFor(err)
	}

	if err := runExport(ctx, flags, positional, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runExport resolves settings, exports every sheet and reports the outcome.
func runExport(ctx context.Context, flags *exportFlags, positional []string, env *Environment) error {
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	settings, err := resolveSettings(flags, positional)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common)
	out := newConsole(env.Stdout, flags.common.quiet, flags.common.noColor)

	opts := []sheet2png.Option{
		sheet2png.WithLogger(logger),
		sheet2png.WithViewport(sheet2png.Viewport{
			Width:  settings.cfg.Render.Viewport.Width,
			Height: settings.cfg.Render.Viewport.Height,
		}),
		sheet2png.WithTimeout(settings.cfg.Timeout()),
		sheet2png.WithIdleWindow(settings.cfg.IdleWindow()),
		sheet2png.WithStyle(strings.ToLower(settings.cfg.Style.Variant)),
		sheet2png.WithExtraCSS(settings.extraCSS),
		sheet2png.WithCollisionPolicy(sheet2png.CollisionPolicy(strings.ToLower(settings.cfg.Naming.Collision))),
	}
	if !flags.json {
		opts = append(opts, sheet2png.WithProgress(out.progress))
	}

	exporter, err := sheet2png.NewExporter(opts...)
	if err != nil {
		return err
	}

	start := env.Now()
	summary, err := exporter.ExportAll(ctx, settings.input, settings.outputDir, settings.cfg.Render.ScaleFactor)
	if err != nil {
		return withHint(err)
	}
	logger.Debug().Dur("took", env.Now().Sub(start)).Int("sheets", summary.Total).Msg("run finished")

	if settings.cfg.Report.Enabled {
		rep := buildReport(settings.input, summary, env.Now())
		mdPath, htmlPath, err := report.Write(ctx, settings.outputDir, rep)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteReport, err)
		}
		logger.Debug().Str("markdown", mdPath).Str("html", htmlPath).Msg("report written")
	}

	if flags.json {
		if err := writeJSONSummary(env.Stdout, settings, summary); err != nil {
			return err
		}
	} else {
		out.complete(summary, settings.outputDir)
	}

	if hasTimeout(summary) {
		fmt.Fprintln(env.Stderr, strings.TrimPrefix(hints.ForTimeout(), "\n"))
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%w: %d/%d sheets exported", ErrInterrupted, summary.Succeeded, summary.Total)
	}
	return nil
}

// resolveSettings merges defaults, config file, environment and flags,
// then validates the result.
func resolveSettings(flags *exportFlags, positional []string) (*exportSettings, error) {
	input, err := resolveInput(positional)
	if err != nil {
		return nil, err
	}

	envCfg, err := loadEnvConfig()
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	extraCSS, err := readCSS(cfg.Style.CSS)
	if err != nil {
		return nil, err
	}

	outputDir, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheet2png.ErrOutputDir, err)
	}

	return &exportSettings{
		input:     input,
		outputDir: outputDir,
		cfg:       cfg,
		extraCSS:  extraCSS,
	}, nil
}

func resolveInput(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return "", fmt.Errorf("%w: %w", ErrUsage, ErrNoInput)
	case 1:
	default:
		return "", fmt.Errorf("%w: %w, got %d", ErrUsage, errTooManyInputs, len(positional))
	}

	input := positional[0]
	if !looksLikeWorkbook(input) {
		return "", fmt.Errorf("%w: %w: %s (want %s)",
			ErrUsage, ErrUnsupported, input, strings.Join(workbookExtensions, ", "))
	}
	return input, nil
}

// loadConfig loads the config named by the flag, else by SHEET2PNG_CONFIG.
// With neither, built-in defaults are used.
func loadConfig(flagValue, envValue string) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = envValue
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.CandidatePaths(name)))
		}
		return nil, err
	}
	return cfg, nil
}

// mergeFlags overwrites config values with flags given on the command line.
func mergeFlags(flags *exportFlags, cfg *config.Config) error {
	if flags.set("output") {
		cfg.Output.Dir = flags.output
	}
	if flags.set("scale") {
		cfg.Render.ScaleFactor = flags.render.scale
	}
	if flags.set("viewport") {
		vp, err := sheet2png.ParseViewport(flags.render.viewport)
		if err != nil {
			return err
		}
		cfg.Render.Viewport.Width = vp.Width
		cfg.Render.Viewport.Height = vp.Height
	}
	if flags.set("timeout") {
		cfg.Render.Timeout = flags.render.timeout
	}
	if flags.set("style") {
		cfg.Style.Variant = flags.style.variant
	}
	if flags.set("css") {
		cfg.Style.CSS = flags.style.css
	}
	if flags.set("on-collision") {
		cfg.Naming.Collision = flags.collision
	}
	if flags.report {
		cfg.Report.Enabled = true
	}
	return nil
}

func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided CSS path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	return string(data), nil
}

// newLogger builds the stderr logger: warnings by default, debug with
// --verbose, nothing with --quiet.
func newLogger(w io.Writer, f commonFlags) zerolog.Logger {
	if f.quiet {
		return zerolog.Nop()
	}
	level := zerolog.WarnLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    f.noColor,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
}

// withHint appends an actionable hint to run-level errors.
func withHint(err error) error {
	var hint string
	switch {
	case errors.Is(err, sheet2png.ErrBrowserLaunch):
		hint = hints.ForBrowserLaunch()
	case errors.Is(err, sheet2png.ErrInputNotFound):
		hint = hints.ForInputNotFound()
	case errors.Is(err, sheet2png.ErrOutputDir):
		hint = hints.ForOutputDirectory()
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}

func hasTimeout(s *sheet2png.RunSummary) bool {
	for _, r := range s.Failed() {
		if errors.Is(r.Err, sheet2png.ErrRenderTimeout) {
			return true
		}
	}
	return false
}

// buildReport converts a summary into report entries.
// Image links are relative because the report sits in the output directory.
func buildReport(input string, s *sheet2png.RunSummary, now time.Time) report.Report {
	rep := report.Report{
		Workbook:  input,
		Generated: now,
		Total:     s.Total,
		Succeeded: s.Succeeded,
		Entries:   make([]report.Entry, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		e := report.Entry{Sheet: r.Sheet, Duration: r.Duration}
		if r.Err != nil {
			e.Err = failureCause(r.Err).Error()
		} else {
			e.File = filepath.Base(r.OutputPath)
		}
		rep.Entries = append(rep.Entries, e)
	}
	return rep
}

// jsonSummary is the --json output.
type jsonSummary struct {
	Workbook  string      `json:"workbook"`
	OutputDir string      `json:"output_dir"`
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Sheets    []jsonSheet `json:"sheets"`
}

type jsonSheet struct {
	Sheet      string `json:"sheet"`
	File       string `json:"file,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func writeJSONSummary(w io.Writer, settings *exportSettings, s *sheet2png.RunSummary) error {
	out := jsonSummary{
		Workbook:  settings.input,
		OutputDir: settings.outputDir,
		Total:     s.Total,
		Succeeded: s.Succeeded,
		Failed:    s.Total - s.Succeeded,
		Sheets:    make([]jsonSheet, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		js := jsonSheet{
			Sheet:      r.Sheet,
			File:       r.OutputPath,
			DurationMS: r.Duration.Milliseconds(),
		}
		var se *sheet2png.SheetError
		if errors.As(r.Err, &se) {
			js.Stage = string(se.Stage)
			js.Error = se.Err.Error()
		} else if r.Err != nil {
			js.Error = r.Err.Error()
		}
		out.Sheets = append(out.Sheets, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
