package tui

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/wesm/csvpeek/internal/query"
)

// widthSampleClamp bounds for column widths, in display cells.
const (
	minColWidth = 10
	maxColWidth = 50
)

// formatCount renders an integer with thousands separators.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// computeColWidths picks a fixed display width per column: the larger of
// the header (plus room for a sort arrow) and the widest sampled cell on
// the first page, clamped to reasonable bounds. Widths are sampled once
// at load and stay fixed for the session so the grid doesn't jitter
// across pages.
func computeColWidths(columns []query.Column, page *query.Page) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = runewidth.StringWidth(col.Name) + 3
	}
	if page != nil {
		for _, row := range page.Rows {
			for i := range columns {
				if i >= len(row) {
					break
				}
				if w := runewidth.StringWidth(row[i]); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	for i := range widths {
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return widths
}

// fitCell truncates and pads a value to the given display width.
func fitCell(value string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(value, width, "…"), width)
}
