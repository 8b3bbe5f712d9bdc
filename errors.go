package sheet2png

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Run-level errors. Any of these aborts ExportAll before or instead of
	// the per-sheet loop.
	ErrInvalidScaleFactor = errors.New("invalid scale factor")
	ErrInputNotFound      = errors.New("workbook not found")
	ErrOutputDir          = errors.New("cannot create output directory")
	ErrWorkbookOpen       = errors.New("cannot open workbook")
	ErrBrowserLaunch      = errors.New("failed to launch browser")

	// Capture errors.
	ErrSessionClosed = errors.New("render session is closed")
	ErrPageCreate    = errors.New("failed to create browser page")
	ErrPageLoad      = errors.New("failed to load page")
	ErrRenderTimeout = errors.New("page did not settle before timeout")
	ErrNoTableFound  = errors.New("no table found")
	ErrScreenshot    = errors.New("screenshot failed")

	// Per-sheet errors.
	ErrWriteImage = errors.New("cannot write image")
	ErrSheetPanic = errors.New("unexpected panic")

	// Option validation errors.
	ErrInvalidStyle           = errors.New("invalid style")
	ErrInvalidViewport        = errors.New("invalid viewport")
	ErrInvalidTimeout         = errors.New("invalid timeout")
	ErrInvalidCollisionPolicy = errors.New("invalid collision policy")
)

// Stage names the pipeline step a sheet failed in.
type Stage string

// Pipeline stages, in execution order.
const (
	StageConvert Stage = "convert"
	StageStyle   Stage = "style"
	StageCapture Stage = "capture"
	StageWrite   Stage = "write"
	StageSkipped Stage = "skipped" // run cancelled before the sheet started
)

// SheetError records why one sheet failed. The batch continues after it.
type SheetError struct {
	Sheet string
	Stage Stage
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %s: %v", e.Sheet, e.Stage, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}
