package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wesm/csvpeek/internal/query"
	"github.com/wesm/csvpeek/internal/view"
)

func TestStatusBarPagePosition(t *testing.T) {
	m := newTestModel(t, 250, 100)

	status := m.renderStatus()
	if !strings.Contains(status, "Page 1/3 (1-100 of 250 records)") {
		t.Errorf("status = %q, want page position", status)
	}
	if !strings.Contains(status, "2 columns") {
		t.Errorf("status = %q, want column count", status)
	}

	m = sendKey(t, m, special(tea.KeyCtrlD))
	m = sendKey(t, m, special(tea.KeyCtrlD))
	status = m.renderStatus()
	if !strings.Contains(status, "Page 3/3 (201-250 of 250 records)") {
		t.Errorf("status = %q, want clamped final page range", status)
	}
}

func TestStatusBarSelectionAndMatches(t *testing.T) {
	m := newTestModel(t, 10, 100)

	m = sendKey(t, m, special(tea.KeyShiftDown))
	m = sendKey(t, m, special(tea.KeyShiftRight))
	if status := m.renderStatus(); !strings.Contains(status, "-- SELECT (2x2) --") {
		t.Errorf("status = %q, want selection dimensions", status)
	}

	m = sendKey(t, m, keyRunes("/"))
	m.filterInputs[1].SetValue("john")
	m = sendKey(t, m, special(tea.KeyEnter))
	if status := m.renderStatus(); !strings.Contains(status, "2 matches") {
		t.Errorf("status = %q, want match count", status)
	}
}

func TestStatusBarEmptyResult(t *testing.T) {
	m := newTestModel(t, 10, 100)

	m = sendKey(t, m, keyRunes("/"))
	m.filterInputs[1].SetValue("nosuchname")
	m = sendKey(t, m, special(tea.KeyEnter))

	status := m.renderStatus()
	if !strings.Contains(status, "0 matches") {
		t.Errorf("status = %q, want zero matches", status)
	}
	if !strings.Contains(status, "(0-0 of 0 records)") {
		t.Errorf("status = %q, want empty range", status)
	}
}

func TestRenderGridShowsHeaderAndSortArrow(t *testing.T) {
	m := newTestModel(t, 10, 100)

	out := m.renderGrid()
	if !strings.Contains(out, "csvpeek test — test.csv") {
		t.Errorf("grid missing title:\n%s", out)
	}

	m = sendKey(t, m, keyRunes("s"))
	if out := m.renderHeader(0, len(m.columns)); !strings.Contains(out, "id ▲") {
		t.Errorf("header = %q, want ascending arrow on id", out)
	}
	m = sendKey(t, m, keyRunes("s"))
	if out := m.renderHeader(0, len(m.columns)); !strings.Contains(out, "id ▼") {
		t.Errorf("header = %q, want descending arrow on id", out)
	}
}

func TestRenderGridEmptyPlaceholder(t *testing.T) {
	m := newTestModel(t, 10, 100)

	m = sendKey(t, m, keyRunes("/"))
	m.filterInputs[1].SetValue("nosuchname")
	m = sendKey(t, m, special(tea.KeyEnter))

	if out := m.renderGrid(); !strings.Contains(out, "(no rows)") {
		t.Errorf("grid missing empty placeholder:\n%s", out)
	}
}

// newWideModel builds a model over a six-column single-row dataset for
// horizontal scrolling tests.
func newWideModel(t *testing.T) Model {
	t.Helper()
	columns := make([]query.Column, 6)
	row := make(query.Row, 6)
	for i := range columns {
		columns[i] = query.Column{Name: "c" + string(rune('0'+i))}
		row[i] = "v" + string(rune('0'+i))
	}
	ctrl, err := view.NewController(&stubAdapter{columns: columns, rows: []query.Row{row}}, 100, 4)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return New(ctrl, Options{FileName: "wide.csv", Version: "test"})
}

func TestRenderGridFollowsCursorColumn(t *testing.T) {
	m := newWideModel(t)

	// Each column is the minimum width (10) plus a separator, so a
	// 24-cell terminal fits exactly two columns.
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 24, Height: 40})
	m = updated.(Model)

	out := m.renderGrid()
	if !strings.Contains(out, "v0") {
		t.Errorf("grid missing first column at cursor 0:\n%s", out)
	}
	if strings.Contains(out, "v5") {
		t.Errorf("grid shows off-screen last column at cursor 0:\n%s", out)
	}

	for i := 0; i < 5; i++ {
		m = sendKey(t, m, special(tea.KeyRight))
	}
	out = m.renderGrid()
	if !strings.Contains(out, "v5") {
		t.Errorf("grid does not follow cursor to last column:\n%s", out)
	}
	if strings.Contains(out, "v0") {
		t.Errorf("grid still shows scrolled-out first column:\n%s", out)
	}
}

func TestVisibleColRangeUnboundedWithoutWidth(t *testing.T) {
	m := newWideModel(t)
	start, end := m.visibleColRange()
	if start != 0 || end != 6 {
		t.Errorf("range = [%d,%d) before first WindowSizeMsg, want [0,6)", start, end)
	}
}

func TestFilterDialogRendersColumnTypes(t *testing.T) {
	m := newTestModel(t, 10, 100)
	m = sendKey(t, m, keyRunes("/"))

	out := m.renderFilterDialog()
	if !strings.Contains(out, "(numeric)") || !strings.Contains(out, "(text)") {
		t.Errorf("dialog missing column types:\n%s", out)
	}
	if !strings.Contains(out, "> ") {
		t.Errorf("dialog missing focus marker:\n%s", out)
	}
}
