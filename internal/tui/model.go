// Package tui provides the interactive terminal viewer for csvpeek.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/csvpeek/internal/query"
	"github.com/wesm/csvpeek/internal/selection"
	"github.com/wesm/csvpeek/internal/view"
)

// flashDuration is how long transient status messages stay visible.
const flashDuration = 2 * time.Second

// uiMode is the current input mode.
type uiMode int

const (
	modeBrowse uiMode = iota
	modeFilter // per-column filter dialog
	modeSave   // filename prompt for saving the selection
)

// Options configuration for the TUI.
type Options struct {
	FileName string // display name of the opened file
	Version  string
}

// Model is the main TUI model following the Elm architecture. All query
// adapter calls happen synchronously inside Update: the backend answers
// bounded LIMIT/OFFSET queries well within the interactive latency
// budget, so there is no async fetch machinery to race with.
type Model struct {
	ctrl     *view.Controller
	columns  []query.Column
	fileName string
	version  string

	// Selection overlay on the current page
	sel selection.Selection

	// Last applied raw filter text, used to refill the filter dialog
	rawFilters map[string]string

	// Input mode state
	mode         uiMode
	filterInputs []textinput.Model
	filterFocus  int
	filterErr    string
	saveInput    textinput.Model

	// Rendering state: fixed column widths sampled at load, and the
	// styled-cell buffer for the current page. Selection changes restyle
	// only the dirty cells reported by selection.Diff.
	colWidths []int
	styled    [][]string

	width  int
	height int

	// Flash message (temporary notification)
	flashMessage   string
	flashExpiresAt time.Time

	quitting bool
}

// New creates the TUI model. The controller must already hold its first
// page (Load is called before the interactive loop so open failures are
// fatal at startup).
func New(ctrl *view.Controller, opts Options) Model {
	si := textinput.New()
	si.Placeholder = "filename to save (e.g. output.csv)"
	si.CharLimit = 200
	si.Width = 50

	m := Model{
		ctrl:       ctrl,
		columns:    ctrl.Columns(),
		fileName:   opts.FileName,
		version:    opts.Version,
		rawFilters: make(map[string]string),
		saveInput:  si,
	}
	m.colWidths = computeColWidths(m.columns, ctrl.Page())
	m.rebuildStyledCells()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// flashClearMsg clears the flash message after its timeout.
type flashClearMsg struct{}

// setFlash shows a transient message and schedules its removal.
func (m *Model) setFlash(msg string) tea.Cmd {
	m.flashMessage = msg
	m.flashExpiresAt = time.Now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case flashClearMsg:
		if !time.Now().Before(m.flashExpiresAt) {
			m.flashMessage = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.handleFilterKeys(msg)
		case modeSave:
			return m.handleSaveKeys(msg)
		default:
			return m.handleBrowseKeys(msg)
		}
	}
	return m, nil
}

// pageCells returns the current page's rows as plain string slices.
func (m *Model) pageCells() [][]string {
	page := m.ctrl.Page()
	if page == nil {
		return nil
	}
	cells := make([][]string, len(page.Rows))
	for i, row := range page.Rows {
		cells[i] = row
	}
	return cells
}

// afterPageChange resets the selection overlay and restyles the grid.
// Called whenever the visible page content changed: paging, filter apply,
// filter reset, or sort. A selection never survives a page change.
func (m *Model) afterPageChange() {
	rows := 0
	if page := m.ctrl.Page(); page != nil {
		rows = len(page.Rows)
	}
	m.sel.Clamp(rows, len(m.columns))
	m.sel.Reset()
	m.rebuildStyledCells()
}

// moveCursor applies a cursor movement to the selection overlay and
// restyles exactly the cells whose selected status changed.
func (m *Model) moveCursor(dRow, dCol int, extend bool) {
	page := m.ctrl.Page()
	if page == nil || len(page.Rows) == 0 {
		return
	}
	old := m.sel.Rect()
	m.sel.Move(dRow, dCol, extend, len(page.Rows), len(m.columns))
	m.restyleDirty(old, m.sel.Rect())
}

// restyleDirty re-renders only the cells in the symmetric difference of
// the two rectangles; the rest of the styled buffer is untouched.
func (m *Model) restyleDirty(old, cur selection.Rect) {
	page := m.ctrl.Page()
	if page == nil {
		return
	}
	for _, cell := range selection.Diff(old, cur) {
		if cell.Row >= len(m.styled) || cell.Col >= len(m.columns) {
			continue
		}
		m.styled[cell.Row][cell.Col] = m.renderCell(cell.Row, cell.Col, cur.Contains(cell.Row, cell.Col))
	}
}

// rebuildStyledCells re-renders the whole styled buffer for the current
// page and selection.
func (m *Model) rebuildStyledCells() {
	page := m.ctrl.Page()
	if page == nil {
		m.styled = nil
		return
	}
	rect := m.sel.Rect()
	m.styled = make([][]string, len(page.Rows))
	for r := range page.Rows {
		m.styled[r] = make([]string, len(m.columns))
		for c := range m.columns {
			m.styled[r][c] = m.renderCell(r, c, rect.Contains(r, c))
		}
	}
}
