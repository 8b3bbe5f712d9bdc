package sheet2png

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-sheet2png/internal/fileutil"
	"github.com/alnah/go-sheet2png/internal/workbook"
)

// imagePermissions is the mode of every written PNG.
const imagePermissions = 0o644

// Workbook is a read-only spreadsheet opened for one run.
type Workbook interface {
	// SheetNames returns sheet names in document order.
	SheetNames() []string
	// SheetMarkup converts one sheet to an HTML table fragment.
	SheetMarkup(ctx context.Context, name string) (string, error)
	Close() error
}

// Compile-time interface check.
var _ Workbook = (*workbook.Workbook)(nil)

// Exporter renders every sheet of a workbook to its own PNG file.
// Sheets are processed one at a time, in workbook order.
type Exporter struct {
	cfg      exporterConfig
	stylist  *Stylist
	logger   zerolog.Logger
	progress ProgressFunc

	openWorkbook func(path string) (Workbook, error)
	openSession  func(ctx context.Context, opts SessionOptions) (capturer, error)
}

// NewExporter creates an Exporter. Options are validated here so that
// ExportAll only fails for run-level reasons.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			viewport:   DefaultViewport,
			timeout:    DefaultTimeout,
			idleWindow: DefaultIdleWindow,
			collision:  CollisionOverwrite,
		},
		logger:       zerolog.Nop(),
		openWorkbook: openXLSX,
		openSession:  openRodSession,
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.viewport.Validate(); err != nil {
		return nil, err
	}
	if e.cfg.timeout <= 0 || e.cfg.idleWindow <= 0 {
		return nil, fmt.Errorf("%w: timeout %s, idle window %s", ErrInvalidTimeout, e.cfg.timeout, e.cfg.idleWindow)
	}
	if _, err := ParseCollisionPolicy(string(e.cfg.collision)); err != nil {
		return nil, err
	}

	stylist, err := NewStylist(e.cfg.style, e.cfg.extraCSS)
	if err != nil {
		return nil, err
	}
	e.stylist = stylist

	return e, nil
}

func openXLSX(path string) (Workbook, error) {
	return workbook.Open(path)
}

func openRodSession(ctx context.Context, opts SessionOptions) (capturer, error) {
	return OpenSession(ctx, opts)
}

// ExportAll writes one PNG per sheet of workbookPath into outputDir.
//
// It fails only when the run cannot start: invalid scale factor, missing
// workbook, output directory not creatable, workbook not readable, or
// browser launch failure. Per-sheet failures are recorded in the summary
// and never stop the batch. If ctx is cancelled, sheets not yet started are
// recorded as failed with the context error.
func (e *Exporter) ExportAll(ctx context.Context, workbookPath, outputDir string, scaleFactor float64) (*RunSummary, error) {
	if err := validateScaleFactor(scaleFactor); err != nil {
		return nil, err
	}
	if !fileutil.FileExists(workbookPath) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, workbookPath)
	}
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	wb, err := e.openWorkbook(workbookPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookOpen, err)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			e.logger.Warn().Err(err).Str("workbook", workbookPath).Msg("closing workbook")
		}
	}()

	sheets := wb.SheetNames()
	summary := &RunSummary{Total: len(sheets), Results: make([]ExportResult, 0, len(sheets))}
	e.logger.Debug().Str("workbook", workbookPath).Int("sheets", len(sheets)).Msg("workbook opened")

	if len(sheets) == 0 {
		return summary, nil
	}

	sess, err := e.openSession(ctx, SessionOptions{
		ScaleFactor: scaleFactor,
		Viewport:    e.cfg.viewport,
		Timeout:     e.cfg.timeout,
		IdleWindow:  e.cfg.idleWindow,
		Logger:      e.logger,
	})
	if err != nil {
		if !errors.Is(err, ErrBrowserLaunch) {
			err = fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}
		return nil, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			e.logger.Warn().Err(err).Msg("closing render session")
		}
	}()

	names := newNameAllocator(e.cfg.collision)

	for i, sheet := range sheets {
		var res ExportResult
		if err := ctx.Err(); err != nil {
			res = ExportResult{Sheet: sheet, Err: &SheetError{Sheet: sheet, Stage: StageSkipped, Err: err}}
		} else {
			res = e.exportSheet(ctx, wb, sess, names, sheet, outputDir)
		}

		if res.Err == nil {
			summary.Succeeded++
			e.logger.Debug().Str("sheet", sheet).Str("file", res.OutputPath).Dur("took", res.Duration).Msg("sheet exported")
		} else {
			e.logger.Warn().Err(res.Err).Str("sheet", sheet).Msg("sheet failed")
		}
		summary.Results = append(summary.Results, res)

		if e.progress != nil {
			e.progress(i+1, len(sheets), res)
		}
	}

	return summary, nil
}

// exportSheet runs convert, style, capture and write for one sheet.
// Errors and panics are confined to the returned result.
func (e *Exporter) exportSheet(ctx context.Context, wb Workbook, sess capturer, names *nameAllocator, sheet, outputDir string) (res ExportResult) {
	start := time.Now()
	res.Sheet = sheet
	stage := StageConvert

	fail := func(err error) {
		res.OutputPath = ""
		res.Err = &SheetError{Sheet: sheet, Stage: stage, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("%w: %v", ErrSheetPanic, r))
		}
		res.Duration = time.Since(start)
	}()

	markup, err := wb.SheetMarkup(ctx, sheet)
	if err != nil {
		fail(err)
		return res
	}

	stage = StageStyle
	document := e.stylist.Style(markup)

	stage = StageCapture
	img, err := sess.CaptureTable(ctx, document)
	if err != nil {
		fail(err)
		return res
	}

	stage = StageWrite
	name, collided := names.allocate(sheet)
	if collided {
		e.logger.Warn().Str("sheet", sheet).Str("file", name).Str("policy", string(e.cfg.collision)).
			Msg("output name collision")
	}
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, img, imagePermissions); err != nil { // #nosec G306 -- images are shareable output
		fail(fmt.Errorf("%w: %v", ErrWriteImage, err))
		return res
	}

	res.OutputPath = path
	return res
}
