package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// solidPattern is the excelize pattern index for a solid fill.
const solidPattern = 1

type cellStyle struct {
	css     string
	aligned bool // explicit horizontal alignment
}

// cellCSS returns the inline style for a cell. Numbers without an explicit
// horizontal alignment are right-aligned, like Excel's "General" alignment.
func (w *Workbook) cellCSS(sheet, axis, value string) (string, error) {
	id, err := w.file.GetCellStyle(sheet, axis)
	if err != nil {
		return "", fmt.Errorf("%w %q: style of %s: %v", ErrReadSheet, sheet, axis, err)
	}

	cs, err := w.lookupStyle(id)
	if err != nil {
		return "", fmt.Errorf("%w %q: style %d: %v", ErrReadSheet, sheet, id, err)
	}

	if !cs.aligned && isNumeric(value) {
		return cs.css + "text-align:right;", nil
	}
	return cs.css, nil
}

func (w *Workbook) lookupStyle(id int) (cellStyle, error) {
	if cs, ok := w.stylesByID[id]; ok {
		return cs, nil
	}
	style, err := w.file.GetStyle(id)
	if err != nil {
		return cellStyle{}, err
	}
	cs := styleCSS(style)
	w.stylesByID[id] = cs
	return cs, nil
}

func styleCSS(s *excelize.Style) cellStyle {
	var cs cellStyle
	if s == nil {
		return cs
	}

	var b strings.Builder
	if f := s.Font; f != nil {
		if f.Bold {
			b.WriteString("font-weight:bold;")
		}
		if f.Italic {
			b.WriteString("font-style:italic;")
		}
		var deco []string
		if f.Underline != "" && f.Underline != "none" {
			deco = append(deco, "underline")
		}
		if f.Strike {
			deco = append(deco, "line-through")
		}
		if len(deco) > 0 {
			b.WriteString("text-decoration:" + strings.Join(deco, " ") + ";")
		}
		if c := cssColor(f.Color); c != "" {
			b.WriteString("color:" + c + ";")
		}
	}

	if s.Fill.Type == "pattern" && s.Fill.Pattern == solidPattern && len(s.Fill.Color) > 0 {
		if c := cssColor(s.Fill.Color[0]); c != "" {
			b.WriteString("background-color:" + c + ";")
		}
	}

	if a := s.Alignment; a != nil {
		switch a.Horizontal {
		case "left", "right", "center", "justify":
			b.WriteString("text-align:" + a.Horizontal + ";")
			cs.aligned = true
		case "centerContinuous", "distributed":
			b.WriteString("text-align:center;")
			cs.aligned = true
		}
		switch a.Vertical {
		case "top", "bottom":
			b.WriteString("vertical-align:" + a.Vertical + ";")
		case "center", "justify", "distributed":
			b.WriteString("vertical-align:middle;")
		}
		if a.WrapText {
			b.WriteString("white-space:pre-wrap;")
		}
	}

	cs.css = b.String()
	return cs
}

// cssColor normalizes RGB, #RGB and ARGB hex strings to "#RRGGBB".
// Anything else, such as theme or indexed colors, yields "".
func cssColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(c) == 8 {
		c = c[2:]
	}
	if len(c) != 6 {
		return ""
	}
	if _, err := strconv.ParseUint(c, 16, 32); err != nil {
		return ""
	}
	return "#" + strings.ToUpper(c)
}

func isNumeric(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
