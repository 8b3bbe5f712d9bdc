package workbook

import "github.com/xuri/excelize/v2"

type cellPos struct{ row, col int } // 1-based

// mergedRange is a merge region in 1-based inclusive coordinates.
type mergedRange struct {
	top, left, bottom, right int
}

// grid is the rectangular cell area of a sheet with merge bookkeeping.
// The area is the used range of cell values; merges are clamped to it.
type grid struct {
	values  [][]string
	rows    int
	cols    int
	merges  []mergedRange
	covered map[cellPos]bool // every cell of a merge
}

func newGrid(values [][]string, merges []excelize.MergeCell) (*grid, error) {
	g := &grid{
		values:  values,
		rows:    len(values),
		covered: make(map[cellPos]bool),
	}
	for _, row := range values {
		g.cols = max(g.cols, len(row))
	}

	for _, mc := range merges {
		left, top, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		right, bottom, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}

		// A merge anchored outside the used range only spans empty cells.
		if top > g.rows || left > g.cols {
			continue
		}
		mr := mergedRange{
			top:    top,
			left:   left,
			bottom: min(bottom, g.rows),
			right:  min(right, g.cols),
		}
		g.merges = append(g.merges, mr)
		for r := mr.top; r <= mr.bottom; r++ {
			for c := mr.left; c <= mr.right; c++ {
				g.covered[cellPos{r, c}] = true
			}
		}
	}

	return g, nil
}

func (g *grid) empty() bool {
	return g.rows == 0 || g.cols == 0
}

// anchors maps the first visible cell of each merge to its range.
// A merge with no visible row or no visible column is left out.
func (g *grid) anchors(rowVisible, colVisible []bool) map[cellPos]mergedRange {
	out := make(map[cellPos]mergedRange, len(g.merges))
	for _, mr := range g.merges {
		row := firstVisible(rowVisible, mr.top, mr.bottom)
		col := firstVisible(colVisible, mr.left, mr.right)
		if row == 0 || col == 0 {
			continue
		}
		out[cellPos{row, col}] = mr
	}
	return out
}

// value returns the cached display value at 1-based (row, col).
func (g *grid) value(row, col int) string {
	if row-1 >= len(g.values) {
		return ""
	}
	r := g.values[row-1]
	if col-1 >= len(r) {
		return ""
	}
	return r[col-1]
}

// firstVisible returns the first visible index in [from, to], or 0.
func firstVisible(visible []bool, from, to int) int {
	for i := from; i <= to && i < len(visible); i++ {
		if visible[i] {
			return i
		}
	}
	return 0
}
