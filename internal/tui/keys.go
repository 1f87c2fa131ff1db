package tui

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/csvpeek/internal/filter"
	"github.com/wesm/csvpeek/internal/selection"
)

// handleBrowseKeys handles keys in the main grid view.
func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	// Plain navigation collapses the selection to the new cursor cell.
	case "up":
		m.moveCursor(-1, 0, false)
	case "down":
		m.moveCursor(1, 0, false)
	case "left":
		m.moveCursor(0, -1, false)
	case "right":
		m.moveCursor(0, 1, false)

	// Shift-navigation extends the selection, anchor fixed.
	case "shift+up":
		m.moveCursor(-1, 0, true)
	case "shift+down":
		m.moveCursor(1, 0, true)
	case "shift+left":
		m.moveCursor(0, -1, true)
	case "shift+right":
		m.moveCursor(0, 1, true)

	case "ctrl+d":
		moved, err := m.ctrl.NavigateNext(context.Background())
		if err != nil {
			return m, m.setFlash(fmt.Sprintf("Error loading page: %v", err))
		}
		if moved {
			m.afterPageChange()
		}

	case "ctrl+u":
		moved, err := m.ctrl.NavigatePrevious(context.Background())
		if err != nil {
			return m, m.setFlash(fmt.Sprintf("Error loading page: %v", err))
		}
		if moved {
			m.afterPageChange()
		}

	case "s":
		col := m.columns[m.sel.CursorCol()].Name
		if err := m.ctrl.ToggleSort(context.Background(), col); err != nil {
			return m, m.setFlash(fmt.Sprintf("Error sorting: %v", err))
		}
		m.afterPageChange()
		sort := m.ctrl.State().Sort
		return m, m.setFlash(fmt.Sprintf("Sorted by %s %s", sort.Column, sort.Direction))

	case "r":
		if err := m.ctrl.ResetFilters(context.Background()); err != nil {
			return m, m.setFlash(fmt.Sprintf("Error resetting filters: %v", err))
		}
		m.rawFilters = make(map[string]string)
		m.afterPageChange()
		return m, m.setFlash("Filters reset")

	case "/":
		m.openFilterDialog()

	case "c":
		return m.copySelection()

	case "w":
		if !m.sel.Active() {
			return m, m.setFlash("Select a range of cells first")
		}
		m.saveInput.SetValue("")
		m.saveInput.Focus()
		m.mode = modeSave
	}

	return m, nil
}

// openFilterDialog builds one text input per column, pre-filled with the
// currently applied raw filter text, and focuses the cursor's column.
func (m *Model) openFilterDialog() {
	m.filterInputs = make([]textinput.Model, len(m.columns))
	for i, col := range m.columns {
		ti := textinput.New()
		ti.Placeholder = "substring or /regex"
		ti.CharLimit = 200
		ti.Width = 40
		ti.SetValue(m.rawFilters[col.Name])
		m.filterInputs[i] = ti
	}
	m.filterFocus = m.sel.CursorCol()
	m.filterInputs[m.filterFocus].Focus()
	m.filterErr = ""
	m.mode = modeFilter
}

// handleFilterKeys handles keys while the filter dialog is open.
func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "enter":
		raw := make(map[string]string, len(m.columns))
		for i, col := range m.columns {
			raw[col.Name] = m.filterInputs[i].Value()
		}
		err := m.ctrl.ApplyFilters(context.Background(), raw)
		var ferr *filter.Error
		if errors.As(err, &ferr) {
			// Bad pattern: keep the dialog open, previous spec stays active.
			m.filterErr = ferr.Error()
			return m, nil
		}
		if err != nil {
			m.mode = modeBrowse
			return m, m.setFlash(fmt.Sprintf("Error applying filters: %v", err))
		}
		m.rawFilters = raw
		m.mode = modeBrowse
		m.afterPageChange()
		return m, m.setFlash(fmt.Sprintf("%s matches", formatCount(m.ctrl.State().Total)))

	case "up", "shift+tab":
		m.filterInputs[m.filterFocus].Blur()
		m.filterFocus = (m.filterFocus + len(m.filterInputs) - 1) % len(m.filterInputs)
		m.filterInputs[m.filterFocus].Focus()
		return m, nil

	case "down", "tab":
		m.filterInputs[m.filterFocus].Blur()
		m.filterFocus = (m.filterFocus + 1) % len(m.filterInputs)
		m.filterInputs[m.filterFocus].Focus()
		return m, nil

	default:
		var cmd tea.Cmd
		m.filterInputs[m.filterFocus], cmd = m.filterInputs[m.filterFocus].Update(msg)
		return m, cmd
	}
}

// handleSaveKeys handles keys while the save-filename prompt is open.
func (m Model) handleSaveKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.mode = modeBrowse
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.saveInput.Value())
		if name == "" {
			return m, m.setFlash("Please enter a filename")
		}
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			name += ".csv"
		}
		m.mode = modeBrowse
		rect := m.sel.Rect()
		if err := m.saveSelection(name, rect); err != nil {
			return m, m.setFlash(fmt.Sprintf("Error saving file: %v", err))
		}
		m.sel.Reset()
		m.rebuildStyledCells()
		return m, m.setFlash(fmt.Sprintf("Saved %d rows, %d columns to %s", rect.Rows(), rect.Cols(), name))

	default:
		var cmd tea.Cmd
		m.saveInput, cmd = m.saveInput.Update(msg)
		return m, cmd
	}
}

// copySelection writes the selected rectangle to the system clipboard as
// tab-separated text with a header line, or the single cell under the
// cursor when no selection is active. Clipboard failure leaves the
// selection untouched.
func (m Model) copySelection() (tea.Model, tea.Cmd) {
	cells := m.pageCells()
	if len(cells) == 0 {
		return m, nil
	}

	rect := m.sel.Rect()
	var text string
	if m.sel.Active() {
		headers := make([]string, 0, rect.Cols())
		for c := rect.MinCol; c <= rect.MaxCol && c < len(m.columns); c++ {
			headers = append(headers, m.columns[c].Name)
		}
		text = strings.Join(headers, "\t") + "\n" + selection.Serialize(rect, cells)
	} else {
		text = cells[m.sel.CursorRow()][m.sel.CursorCol()]
	}

	if err := clipboard.WriteAll(text); err != nil {
		return m, m.setFlash(fmt.Sprintf("Clipboard unavailable: %v", err))
	}

	if !m.sel.Active() {
		if text == "" {
			text = "(empty)"
		}
		return m, m.setFlash(fmt.Sprintf("Copied %s to clipboard", text))
	}
	m.sel.Reset()
	m.rebuildStyledCells()
	return m, m.setFlash(fmt.Sprintf("Copied %d rows, %d columns", rect.Rows(), rect.Cols()))
}

// saveSelection writes the selected rectangle to a CSV file with a header
// row, properly quoted via encoding/csv.
func (m Model) saveSelection(path string, rect selection.Rect) error {
	cells := m.pageCells()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, 0, rect.Cols())
	for c := rect.MinCol; c <= rect.MaxCol && c < len(m.columns); c++ {
		header = append(header, m.columns[c].Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for r := rect.MinRow; r <= rect.MaxRow && r < len(cells); r++ {
		record := make([]string, 0, rect.Cols())
		for c := rect.MinCol; c <= rect.MaxCol && c < len(cells[r]); c++ {
			record = append(record, cells[r][c])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
