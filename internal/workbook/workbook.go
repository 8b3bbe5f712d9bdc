// Package workbook reads spreadsheet files with excelize and converts each
// worksheet into a single HTML <table> fragment.
//
// Only cached cell values are read; formulas are never evaluated.
package workbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors for workbook operations.
var (
	ErrOpen          = errors.New("cannot open workbook")
	ErrSheetNotFound = errors.New("sheet not found")
	ErrReadSheet     = errors.New("cannot read sheet")
)

// Workbook is a read-only handle on an opened spreadsheet file.
// It is not safe for concurrent use.
type Workbook struct {
	file       *excelize.File
	stylesByID map[int]cellStyle
}

// Open opens the workbook at path. The caller must Close it.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return &Workbook{file: f, stylesByID: make(map[int]cellStyle)}, nil
}

// SheetNames returns worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// SheetMarkup converts the named sheet to a <table> fragment.
// An empty sheet yields an empty string.
func (w *Workbook) SheetMarkup(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	idx, err := w.file.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	rows, err := w.file.GetRows(name)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrReadSheet, name, err)
	}
	merges, err := w.file.GetMergeCells(name)
	if err != nil {
		return "", fmt.Errorf("%w %q: merged cells: %v", ErrReadSheet, name, err)
	}

	g, err := newGrid(rows, merges)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrReadSheet, name, err)
	}
	if g.empty() {
		return "", nil
	}

	return w.renderTable(ctx, name, g)
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}
