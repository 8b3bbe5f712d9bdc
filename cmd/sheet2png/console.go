package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	sheet2png "github.com/alnah/go-sheet2png"
)

// console prints human progress lines on stdout.
type console struct {
	w     io.Writer
	quiet bool

	okColor   *color.Color
	failColor *color.Color
	warnColor *color.Color
}

// newConsole creates a console. Colors are also disabled by fatih/color
// itself when NO_COLOR is set or stdout is not a terminal.
func newConsole(w io.Writer, quiet, noColor bool) *console {
	c := &console{
		w:         w,
		quiet:     quiet,
		okColor:   color.New(color.FgGreen),
		failColor: color.New(color.FgRed),
		warnColor: color.New(color.FgYellow),
	}
	if noColor {
		c.okColor.DisableColor()
		c.failColor.DisableColor()
		c.warnColor.DisableColor()
	}
	return c
}

// progress is a sheet2png.ProgressFunc. Failures are printed even in quiet mode.
func (c *console) progress(index, total int, res sheet2png.ExportResult) {
	if res.Err != nil {
		fmt.Fprintf(c.w, "[%d/%d] %s -> %s\n", index, total, res.Sheet,
			c.failColor.Sprintf("Error: %v", failureCause(res.Err)))
		return
	}
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, "[%d/%d] %s -> %s\n", index, total, res.Sheet,
		c.okColor.Sprint(filepath.Base(res.OutputPath)))
}

// complete prints the final summary line, also in quiet mode.
func (c *console) complete(s *sheet2png.RunSummary, outputDir string) {
	col := c.okColor
	if s.Succeeded < s.Total {
		col = c.warnColor
	}
	fmt.Fprintf(c.w, "%s: %d/%d sheets exported to %s\n",
		col.Sprint("Complete"), s.Succeeded, s.Total, outputDir)
}

// failureCause unwraps a *SheetError to the underlying error.
func failureCause(err error) error {
	var se *sheet2png.SheetError
	if errors.As(err, &se) {
		return se.Err
	}
	return err
}
