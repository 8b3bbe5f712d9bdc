package sheet2png

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Default and limit values.
const (
	DefaultScaleFactor = 2.0
	MaxScaleFactor     = 8.0
	DefaultTimeout     = 30 * time.Second
	DefaultIdleWindow  = 500 * time.Millisecond
)

// Viewport is the emulated browser window size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// DefaultViewport is a 1080p desktop window.
var DefaultViewport = Viewport{Width: 1920, Height: 1080}

// Validate checks that both dimensions are positive.
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, v.Width, v.Height)
	}
	return nil
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// ParseViewport parses "WIDTHxHEIGHT", e.g. "1920x1080".
func ParseViewport(s string) (Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Viewport{}, fmt.Errorf("%w: %q (want WIDTHxHEIGHT)", ErrInvalidViewport, s)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return Viewport{}, fmt.Errorf("%w: %q (want WIDTHxHEIGHT)", ErrInvalidViewport, s)
	}
	v := Viewport{Width: width, Height: height}
	return v, v.Validate()
}

// CollisionPolicy decides what happens when two sheets map to the same file.
type CollisionPolicy string

const (
	// CollisionOverwrite lets the later sheet replace the earlier image.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionSuffix appends _2, _3, ... to later names.
	CollisionSuffix CollisionPolicy = "suffix"
)

// ParseCollisionPolicy accepts "overwrite" or "suffix", case-insensitively.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CollisionOverwrite, CollisionSuffix:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCollisionPolicy, s)
	}
}

// SessionOptions configures a render session.
type SessionOptions struct {
	ScaleFactor float64       // device pixel ratio, (0, MaxScaleFactor]
	Viewport    Viewport      // zero value means DefaultViewport
	Timeout     time.Duration // per capture; zero means DefaultTimeout
	IdleWindow  time.Duration // DOM stability window; zero means DefaultIdleWindow
	Logger      zerolog.Logger
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.Viewport == (Viewport{}) {
		o.Viewport = DefaultViewport
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.IdleWindow == 0 {
		o.IdleWindow = DefaultIdleWindow
	}
	return o
}

func (o SessionOptions) validate() error {
	if err := validateScaleFactor(o.ScaleFactor); err != nil {
		return err
	}
	if err := o.Viewport.Validate(); err != nil {
		return err
	}
	if o.Timeout < 0 || o.IdleWindow < 0 {
		return fmt.Errorf("%w: timeout %s, idle window %s", ErrInvalidTimeout, o.Timeout, o.IdleWindow)
	}
	return nil
}

func validateScaleFactor(f float64) error {
	if f <= 0 || f > MaxScaleFactor {
		return fmt.Errorf("%w: %g (must be > 0 and <= %g)", ErrInvalidScaleFactor, f, MaxScaleFactor)
	}
	return nil
}

// ExportResult is the outcome of one sheet.
type ExportResult struct {
	Sheet      string
	OutputPath string // empty on failure
	Err        error  // *SheetError on failure
	Duration   time.Duration
}

// RunSummary aggregates an ExportAll run. Results follow workbook order.
type RunSummary struct {
	Total     int
	Succeeded int
	Results   []ExportResult
}

// Failed returns the results that carry an error.
func (s *RunSummary) Failed() []ExportResult {
	var failed []ExportResult
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// ProgressFunc is called once per sheet, after it finished.
// index is 1-based.
type ProgressFunc func(index, total int, result ExportResult)

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds the validated settings of an Exporter.
type exporterConfig struct {
	viewport   Viewport
	timeout    time.Duration
	idleWindow time.Duration
	style      string
	extraCSS   string
	collision  CollisionPolicy
}

// WithLogger sets the structured logger. Defaults to a disabled logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// WithProgress registers a per-sheet callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Exporter) {
		e.progress = fn
	}
}

// WithViewport sets the emulated window size.
func WithViewport(v Viewport) Option {
	return func(e *Exporter) {
		e.cfg.viewport = v
	}
}

// WithTimeout sets the per-sheet capture timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithIdleWindow sets how long the DOM must stay unchanged before capture.
func WithIdleWindow(d time.Duration) Option {
	return func(e *Exporter) {
		e.cfg.idleWindow = d
	}
}

// WithStyle selects the document CSS variant ("precise" or "standard").
func WithStyle(name string) Option {
	return func(e *Exporter) {
		e.cfg.style = name
	}
}

// WithExtraCSS appends CSS after the style variant.
func WithExtraCSS(css string) Option {
	return func(e *Exporter) {
		e.cfg.extraCSS = css
	}
}

// WithCollisionPolicy sets how duplicate output names are resolved.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(e *Exporter) {
		e.cfg.collision = p
	}
}
