package sheet2png

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/alnah/go-sheet2png/internal/fileutil"
	"github.com/alnah/go-sheet2png/internal/process"
)

// firstTableSelector matches table elements; the first match in document
// order is the one captured.
const firstTableSelector = "table"

// tableBoxJS returns the element's border box in document coordinates.
const tableBoxJS = `() => {
	const r = this.getBoundingClientRect();
	return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height};
}`

// capturer is the part of a Session the export pipeline depends on.
type capturer interface {
	CaptureTable(ctx context.Context, document string) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ capturer = (*Session)(nil)

// Session is one headless Chrome process with one isolated browsing context.
// Every capture opens a fresh page in that context. A Session is not safe
// for concurrent captures.
type Session struct {
	opts      SessionOptions
	logger    zerolog.Logger
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser

	mu       sync.Mutex
	closed   bool
	closeErr error
}

type box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OpenSession launches headless Chrome and creates an isolated context.
// Set ROD_BROWSER_BIN to use an installed browser; the sandbox is disabled
// when CI=true, ROD_NO_SANDBOX=1 or a custom binary is set.
// The caller must Close the session.
func OpenSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &Session{opts: opts, logger: opts.Logger}

	s.launcher = newLauncher()
	u, err := s.launcher.Launch()
	if err != nil {
		s.killProcess()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	s.browser = rod.New().ControlURL(u)
	if err := s.browser.Connect(); err != nil {
		s.killProcess()
		return nil, fmt.Errorf("%w: connecting: %v", ErrBrowserLaunch, err)
	}

	s.incognito, err = s.browser.Incognito()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: creating browser context: %v", ErrBrowserLaunch, err)
	}

	s.logger.Debug().
		Int("pid", s.launcher.PID()).
		Float64("scale", opts.ScaleFactor).
		Stringer("viewport", opts.Viewport).
		Msg("render session opened")

	return s, nil
}

func newLauncher() *launcher.Launcher {
	l := launcher.New().Headless(true)

	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}
	return l
}

// CaptureTable loads document in a fresh page and returns a PNG of the
// first table's bounding box, scaled by the session's device scale factor.
// The transient document file and the page are released on every path.
func (s *Session) CaptureTable(ctx context.Context, document string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	path, cleanup, err := fileutil.WriteTempFile(document, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	page, err := s.incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.opts.Viewport.Width,
		Height:            s.opts.Viewport.Height,
		DeviceScaleFactor: s.opts.ScaleFactor,
	}); err != nil {
		return nil, s.pageError(ctx, ErrPageCreate, err)
	}

	networkIdle := p.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := p.Navigate("file://" + path); err != nil {
		return nil, s.pageError(ctx, ErrPageLoad, err)
	}
	networkIdle()
	if err := p.WaitStable(s.opts.IdleWindow); err != nil {
		return nil, s.pageError(ctx, ErrPageLoad, err)
	}

	found, table, err := p.Has(firstTableSelector)
	if err != nil {
		return nil, s.pageError(ctx, ErrPageLoad, err)
	}
	if !found {
		return nil, ErrNoTableFound
	}

	obj, err := table.Eval(tableBoxJS)
	if err != nil {
		return nil, s.pageError(ctx, ErrScreenshot, err)
	}
	var b box
	if err := obj.Value.Unmarshal(&b); err != nil {
		return nil, fmt.Errorf("%w: reading table box: %v", ErrScreenshot, err)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return nil, fmt.Errorf("%w: table has zero area (%gx%g)", ErrScreenshot, b.Width, b.Height)
	}

	img, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      b.X,
			Y:      b.Y,
			Width:  b.Width,
			Height: b.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, s.pageError(ctx, ErrScreenshot, err)
	}

	return img, nil
}

// pageError maps a failed page operation to a timeout, the caller's
// cancellation, or sentinel.
func (s *Session) pageError(ctx context.Context, sentinel, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrRenderTimeout, s.opts.Timeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// Close disposes the browsing context, closes the browser and removes the
// launcher's profile directory. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.closeErr
	}
	s.closed = true

	var errs []error
	if s.incognito != nil {
		if err := s.incognito.Close(); err != nil {
			errs = append(errs, fmt.Errorf("disposing browser context: %w", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing browser: %w", err))
		}
	}
	s.killProcess()

	s.closeErr = errors.Join(errs...)
	s.logger.Debug().Err(s.closeErr).Msg("render session closed")
	return s.closeErr
}

// killProcess makes sure no Chrome process outlives the session.
func (s *Session) killProcess() {
	if s.launcher == nil || s.launcher.PID() <= 0 {
		return
	}
	process.KillProcessGroup(s.launcher.PID())
	s.launcher.Kill()
	// Cleanup blocks until the process exited, so it needs a started process.
	s.launcher.Cleanup()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
