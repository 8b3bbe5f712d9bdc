package workbook

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Excel's default row height in points.
const defaultRowHeight = 15.0

func (w *Workbook) renderTable(ctx context.Context, sheet string, g *grid) (string, error) {
	colNames := make([]string, g.cols+1)
	colVisible := make([]bool, g.cols+1)
	for c := 1; c <= g.cols; c++ {
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return "", err
		}
		colNames[c] = name
		if colVisible[c], err = w.file.GetColVisible(sheet, name); err != nil {
			return "", fmt.Errorf("%w %q: column %s: %v", ErrReadSheet, sheet, name, err)
		}
	}

	rowVisible := make([]bool, g.rows+1)
	for r := 1; r <= g.rows; r++ {
		visible, err := w.file.GetRowVisible(sheet, r)
		if err != nil {
			return "", fmt.Errorf("%w %q: row %d: %v", ErrReadSheet, sheet, r, err)
		}
		rowVisible[r] = visible
	}

	anchors := g.anchors(rowVisible, colVisible)

	var b strings.Builder
	b.WriteString("<table>\n<colgroup>\n")
	for c := 1; c <= g.cols; c++ {
		if !colVisible[c] {
			continue
		}
		width, err := w.file.GetColWidth(sheet, colNames[c])
		if err != nil {
			return "", fmt.Errorf("%w %q: column %s width: %v", ErrReadSheet, sheet, colNames[c], err)
		}
		fmt.Fprintf(&b, "<col style=\"width:%dpx\">\n", columnPixels(width))
	}
	b.WriteString("</colgroup>\n")

	for r := 1; r <= g.rows; r++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !rowVisible[r] {
			continue
		}

		height, err := w.file.GetRowHeight(sheet, r)
		if err != nil {
			return "", fmt.Errorf("%w %q: row %d height: %v", ErrReadSheet, sheet, r, err)
		}
		if height != defaultRowHeight {
			fmt.Fprintf(&b, "<tr style=\"height:%dpx\">\n", rowPixels(height))
		} else {
			b.WriteString("<tr>\n")
		}

		for c := 1; c <= g.cols; c++ {
			pos := cellPos{r, c}
			if !colVisible[c] {
				continue
			}
			if mr, ok := anchors[pos]; ok {
				err = w.writeMerged(&b, sheet, g, mr, rowVisible, colVisible)
			} else if !g.covered[pos] {
				err = w.writeCell(&b, sheet, g, pos, "")
			}
			if err != nil {
				return "", err
			}
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")

	return b.String(), nil
}

// writeMerged emits a merge at its first visible cell, carrying the value
// and style of the top-left cell and spanning only visible rows and columns.
func (w *Workbook) writeMerged(b *strings.Builder, sheet string, g *grid, mr mergedRange, rowVisible, colVisible []bool) error {
	var spans string
	if span := countVisible(colVisible, mr.left, mr.right); span > 1 {
		spans += fmt.Sprintf(" colspan=\"%d\"", span)
	}
	if span := countVisible(rowVisible, mr.top, mr.bottom); span > 1 {
		spans += fmt.Sprintf(" rowspan=\"%d\"", span)
	}
	return w.writeCell(b, sheet, g, cellPos{mr.top, mr.left}, spans)
}

// writeCell emits the cell at src with optional span attributes.
func (w *Workbook) writeCell(b *strings.Builder, sheet string, g *grid, src cellPos, spans string) error {
	axis, err := excelize.CoordinatesToCellName(src.col, src.row)
	if err != nil {
		return err
	}
	value := g.value(src.row, src.col)

	css, err := w.cellCSS(sheet, axis, value)
	if err != nil {
		return err
	}

	b.WriteString("<td")
	b.WriteString(spans)
	if css != "" {
		fmt.Fprintf(b, " style=\"%s\"", css)
	}
	b.WriteString(">")
	b.WriteString(cellText(value))
	b.WriteString("</td>\n")
	return nil
}

// cellText escapes a value and keeps its line breaks.
func cellText(value string) string {
	escaped := html.EscapeString(value)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

func countVisible(visible []bool, from, to int) int {
	n := 0
	for i := from; i <= to && i < len(visible); i++ {
		if visible[i] {
			n++
		}
	}
	return n
}

// columnPixels converts a width in characters of the default font to pixels.
func columnPixels(chars float64) int {
	return int(math.Round(chars*7 + 5))
}

// rowPixels converts a height in points to pixels at 96 DPI.
func rowPixels(points float64) int {
	return int(math.Round(points * 4 / 3))
}
