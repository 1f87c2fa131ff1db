package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/wesm/csvpeek/internal/query"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle   = lipgloss.NewStyle().Faint(true)
	flashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// renderCell styles one cell of the grid. Selected cells render reversed;
// cells matching their column's active filter are highlighted. The result
// is cached in the styled buffer and only recomputed for dirty cells.
func (m *Model) renderCell(row, col int, selected bool) string {
	page := m.ctrl.Page()
	value := ""
	if page != nil && row < len(page.Rows) && col < len(page.Rows[row]) {
		value = page.Rows[row][col]
	}
	text := fitCell(value, m.colWidths[col])

	if selected {
		return selectedStyle.Render(text)
	}
	if expr, ok := m.ctrl.State().Filters.Get(m.columns[col].Name); ok && expr.Matches(value) {
		return matchStyle.Render(text)
	}
	return text
}

// renderHeader renders the header line for columns [start, end) with sort
// arrows.
func (m *Model) renderHeader(start, end int) string {
	sort := m.ctrl.State().Sort
	cells := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		col := m.columns[i]
		label := col.Name
		if col.Name == sort.Column {
			if sort.Direction == query.SortDesc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		cells = append(cells, headerStyle.Render(fitCell(label, m.colWidths[i])))
	}
	return strings.Join(cells, " ")
}

// visibleColRange picks the half-open column window to render so the
// cursor column is always on screen: the window ends at or after the
// cursor, extends left as far as the terminal width allows, then fills
// rightward with whatever width remains.
func (m *Model) visibleColRange() (int, int) {
	n := len(m.columns)
	if m.width <= 0 || n == 0 {
		return 0, n
	}
	cursor := m.sel.CursorCol()
	start := cursor
	used := m.colWidths[cursor]
	for start > 0 && used+m.colWidths[start-1]+1 <= m.width {
		start--
		used += m.colWidths[start] + 1
	}
	end := cursor + 1
	for end < n && used+m.colWidths[end]+1 <= m.width {
		used += m.colWidths[end] + 1
		end++
	}
	return start, end
}

// renderStatus renders the status bar: selection dimensions, match count
// under the active filter, page position, and column count.
func (m *Model) renderStatus() string {
	st := m.ctrl.State()
	pageSize := m.ctrl.PageSize()

	var b strings.Builder
	if m.sel.Active() {
		rect := m.sel.Rect()
		fmt.Fprintf(&b, "-- SELECT (%dx%d) -- | ", rect.Rows(), rect.Cols())
	}
	if !st.Filters.Empty() {
		fmt.Fprintf(&b, "%s matches | ", formatCount(st.Total))
	}

	startRow := int64(st.PageIndex)*int64(pageSize) + 1
	endRow := int64(st.PageIndex+1) * int64(pageSize)
	if endRow > st.Total {
		endRow = st.Total
	}
	if st.Total == 0 {
		startRow = 0
	}
	fmt.Fprintf(&b, "Page %d/%d (%s-%s of %s records) | %d columns",
		st.PageIndex+1, st.LastPage(pageSize)+1,
		formatCount(startRow), formatCount(endRow), formatCount(st.Total),
		len(m.columns))
	return statusStyle.Render(b.String())
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case modeFilter:
		return m.renderFilterDialog()
	case modeSave:
		return m.renderSavePrompt()
	default:
		return m.renderGrid()
	}
}

// renderGrid renders the main table view with the cursor row kept
// visible inside the terminal height.
func (m Model) renderGrid() string {
	var b strings.Builder

	colStart, colEnd := m.visibleColRange()

	title := fmt.Sprintf("csvpeek %s — %s", m.version, m.fileName)
	b.WriteString(m.clip(titleStyle.Render(title)))
	b.WriteString("\n")
	b.WriteString(m.clip(m.renderHeader(colStart, colEnd)))
	b.WriteString("\n")

	// Reserve lines for title, header, status, and hint.
	visible := m.height - 4
	if visible < 1 {
		visible = len(m.styled)
	}
	start := 0
	if cursor := m.sel.CursorRow(); cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(m.styled) {
		end = len(m.styled)
	}

	for r := start; r < end; r++ {
		b.WriteString(m.clip(strings.Join(m.styled[r][colStart:colEnd], " ")))
		b.WriteString("\n")
	}
	if len(m.styled) == 0 {
		b.WriteString(dimStyle.Render("(no rows)"))
		b.WriteString("\n")
	}

	b.WriteString(m.clip(m.renderStatus()))
	b.WriteString("\n")
	if m.flashMessage != "" {
		b.WriteString(m.clip(flashStyle.Render(m.flashMessage)))
	} else {
		hint := "/ filter · r reset · s sort · ctrl+d/ctrl+u page · shift+arrows select · c copy · w save · q quit"
		b.WriteString(m.clip(dimStyle.Render(hint)))
	}
	return b.String()
}

// renderFilterDialog renders the per-column filter form.
func (m Model) renderFilterDialog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Filter columns"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("substring matches case-insensitively; prefix with / for regex"))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, col := range m.columns {
		if len(col.Name) > labelWidth {
			labelWidth = len(col.Name)
		}
	}
	for i, col := range m.columns {
		marker := "  "
		if i == m.filterFocus {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%-*s %s  %s\n",
			marker, labelWidth, col.Name, dimStyle.Render("("+col.Type.String()+")"),
			m.filterInputs[i].View())
	}

	b.WriteString("\n")
	if m.filterErr != "" {
		b.WriteString(errorStyle.Render(m.filterErr))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("enter apply · esc cancel · tab/↓ next · shift+tab/↑ previous"))
	return b.String()
}

// renderSavePrompt renders the filename prompt for saving the selection.
func (m Model) renderSavePrompt() string {
	rect := m.sel.Rect()
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Save selection (%dx%d)", rect.Rows(), rect.Cols())))
	b.WriteString("\n\n")
	b.WriteString(m.saveInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter save · esc cancel"))
	return b.String()
}

// clip truncates a rendered line to the terminal width, ANSI-aware.
func (m Model) clip(line string) string {
	if m.width <= 0 {
		return line
	}
	return ansi.Truncate(line, m.width, "")
}
