// Package selection tracks the user-highlighted rectangular cell region
// within the currently rendered page. It is purely a function of cursor
// movement events and knows nothing about data fetching or rendering: the
// TUI feeds it movement deltas and page bounds, and reads back the
// normalized rectangle, the dirty-cell diff, and the serialized block.
package selection

import "strings"

// Cell addresses one cell in the current page.
type Cell struct {
	Row, Col int
}

// Rect is a normalized rectangle: MinRow <= MaxRow and MinCol <= MaxCol
// always hold. The zero value is the single cell (0,0).
type Rect struct {
	MinRow, MinCol int
	MaxRow, MaxCol int
}

// Contains reports whether the cell at (row, col) is inside the rectangle.
func (r Rect) Contains(row, col int) bool {
	return row >= r.MinRow && row <= r.MaxRow && col >= r.MinCol && col <= r.MaxCol
}

// Rows returns the height of the rectangle in cells.
func (r Rect) Rows() int { return r.MaxRow - r.MinRow + 1 }

// Cols returns the width of the rectangle in cells.
func (r Rect) Cols() int { return r.MaxCol - r.MinCol + 1 }

// Selection is an anchor cell plus a moving cursor. When inactive, the
// selection is the single cell under the cursor.
type Selection struct {
	active    bool
	anchorRow int
	anchorCol int
	cursorRow int
	cursorCol int
}

// Active reports whether an extended (multi-cell capable) selection exists.
func (s *Selection) Active() bool { return s.active }

// CursorRow returns the cursor's row within the current page.
func (s *Selection) CursorRow() int { return s.cursorRow }

// CursorCol returns the cursor's column within the current page.
func (s *Selection) CursorCol() int { return s.cursorCol }

// Move shifts the cursor by (dRow, dCol), clamped to a rows x cols page.
// A plain move (extend false) collapses the selection to the new cursor
// cell. An extended move keeps the anchor fixed — starting a new selection
// at the pre-move cursor if none was active — and the rectangle between
// anchor and cursor becomes the selection.
func (s *Selection) Move(dRow, dCol int, extend bool, rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}

	if extend && !s.active {
		s.active = true
		s.anchorRow = s.cursorRow
		s.anchorCol = s.cursorCol
	}

	s.cursorRow = clamp(s.cursorRow+dRow, 0, rows-1)
	s.cursorCol = clamp(s.cursorCol+dCol, 0, cols-1)

	if !extend {
		s.active = false
		s.anchorRow = s.cursorRow
		s.anchorCol = s.cursorCol
	}
}

// Reset collapses the selection to the cursor cell. Called whenever the
// page changes or filters change: a selection never survives across page
// boundaries.
func (s *Selection) Reset() {
	s.active = false
	s.anchorRow = s.cursorRow
	s.anchorCol = s.cursorCol
}

// Clamp forces the anchor and cursor inside a rows x cols page. Used when
// a newly loaded page is smaller than the cursor position.
func (s *Selection) Clamp(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		s.cursorRow, s.cursorCol = 0, 0
		s.anchorRow, s.anchorCol = 0, 0
		s.active = false
		return
	}
	s.cursorRow = clamp(s.cursorRow, 0, rows-1)
	s.cursorCol = clamp(s.cursorCol, 0, cols-1)
	s.anchorRow = clamp(s.anchorRow, 0, rows-1)
	s.anchorCol = clamp(s.anchorCol, 0, cols-1)
}

// Rect returns the normalized rectangle between anchor and cursor,
// independent of which corner the anchor is. When inactive it is the
// single cell under the cursor.
func (s *Selection) Rect() Rect {
	if !s.active {
		return Rect{
			MinRow: s.cursorRow, MaxRow: s.cursorRow,
			MinCol: s.cursorCol, MaxCol: s.cursorCol,
		}
	}
	return Rect{
		MinRow: min(s.anchorRow, s.cursorRow),
		MaxRow: max(s.anchorRow, s.cursorRow),
		MinCol: min(s.anchorCol, s.cursorCol),
		MaxCol: max(s.anchorCol, s.cursorCol),
	}
}

// Diff returns the symmetric difference between the cell sets of two
// rectangles: exactly the cells whose selected status changed, in
// row-major order. This is the dirty-cell list for incremental redraw and
// is a pure function of the two rectangles.
func Diff(old, new Rect) []Cell {
	minRow := min(old.MinRow, new.MinRow)
	maxRow := max(old.MaxRow, new.MaxRow)
	minCol := min(old.MinCol, new.MinCol)
	maxCol := max(old.MaxCol, new.MaxCol)

	var cells []Cell
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if old.Contains(row, col) != new.Contains(row, col) {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}
	return cells
}

// Serialize renders the rectangle over the given page rows as a
// copy-friendly text block: tab-separated cells, newline-separated rows,
// in ascending row/column order regardless of which corner the anchor is.
// The rectangle is clamped to the available rows and columns.
func Serialize(rect Rect, rows [][]string) string {
	var lines []string
	for r := rect.MinRow; r <= rect.MaxRow && r < len(rows); r++ {
		if r < 0 {
			continue
		}
		row := rows[r]
		var cells []string
		for c := rect.MinCol; c <= rect.MaxCol && c < len(row); c++ {
			if c < 0 {
				continue
			}
			cells = append(cells, row[c])
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
