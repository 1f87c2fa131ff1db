// Package view owns what should currently be visible: the page index,
// active filters, and active sort. Every user action flows through the
// Controller, which derives a new immutable State value per transition and
// pulls the matching page through the cache. Errors from the query layer
// never corrupt state: on any fetch or compile failure the previous state
// and page remain active.
package view

import (
	"context"
	"fmt"

	"github.com/wesm/csvpeek/internal/filter"
	"github.com/wesm/csvpeek/internal/pagecache"
	"github.com/wesm/csvpeek/internal/query"
)

// State is the immutable view state. Transitions produce a new State value
// rather than mutating fields in place.
type State struct {
	PageIndex int
	Filters   filter.Spec
	Sort      query.SortSpec
	Total     int64
}

// LastPage returns the highest valid page index for the current total.
func (s State) LastPage(pageSize int) int {
	if s.Total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((s.Total - 1) / int64(pageSize))
}

// Controller orchestrates state transitions. It is the single owner of
// the page cache and the only component that talks to the query adapter.
type Controller struct {
	adapter  query.Adapter
	cache    *pagecache.Cache
	pageSize int

	state State
	page  *query.Page
}

// NewController creates a controller with a fixed page size for the
// session. cachePages bounds the page cache (<=0 means the default).
func NewController(adapter query.Adapter, pageSize, cachePages int) (*Controller, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}
	return &Controller{
		adapter:  adapter,
		cache:    pagecache.New(cachePages),
		pageSize: pageSize,
	}, nil
}

// State returns the current view state.
func (c *Controller) State() State { return c.state }

// Columns returns the dataset schema from the adapter.
func (c *Controller) Columns() []query.Column { return c.adapter.Columns() }

// Page returns the currently loaded page, nil before Load.
func (c *Controller) Page() *query.Page { return c.page }

// PageSize returns the session's fixed page size.
func (c *Controller) PageSize() int { return c.pageSize }

// Load performs the initial fetch of page 0 with no filters or sort.
func (c *Controller) Load(ctx context.Context) error {
	return c.commit(ctx, State{})
}

// NavigateNext advances one page, clamped to the last valid page. The
// boolean result is false when the transition was a no-op (already on the
// last page).
func (c *Controller) NavigateNext(ctx context.Context) (bool, error) {
	next := c.state.PageIndex + 1
	if next > c.state.LastPage(c.pageSize) {
		return false, nil
	}
	st := c.state
	st.PageIndex = next
	if err := c.commit(ctx, st); err != nil {
		return false, err
	}
	return true, nil
}

// NavigatePrevious goes back one page, clamped to page 0.
func (c *Controller) NavigatePrevious(ctx context.Context) (bool, error) {
	if c.state.PageIndex == 0 {
		return false, nil
	}
	st := c.state
	st.PageIndex--
	if err := c.commit(ctx, st); err != nil {
		return false, err
	}
	return true, nil
}

// ApplyFilters compiles the raw per-column filter text and, on success,
// replaces the whole FilterSpec and resets to page 0. Compilation is
// atomic: a *filter.Error leaves the previous spec active and is returned
// for the caller to surface.
func (c *Controller) ApplyFilters(ctx context.Context, raw map[string]string) error {
	spec, err := filter.CompileSpec(raw)
	if err != nil {
		return err
	}
	st := c.state
	st.PageIndex = 0
	st.Filters = spec
	return c.commit(ctx, st)
}

// ResetFilters clears all filters and the active sort, back to page 0.
func (c *Controller) ResetFilters(ctx context.Context) error {
	return c.commit(ctx, State{})
}

// ToggleSort sorts by column ascending, or flips the direction when the
// column is already the sort key. Sorting changes row order, so the page
// index always resets to 0.
func (c *Controller) ToggleSort(ctx context.Context, column string) error {
	st := c.state
	if st.Sort.Column == column {
		if st.Sort.Direction == query.SortAsc {
			st.Sort.Direction = query.SortDesc
		} else {
			st.Sort.Direction = query.SortAsc
		}
	} else {
		st.Sort = query.SortSpec{Column: column, Direction: query.SortAsc}
	}
	st.PageIndex = 0
	return c.commit(ctx, st)
}

// fetchPage pulls the page for st through the cache.
func (c *Controller) fetchPage(ctx context.Context, st State) (*query.Page, error) {
	key := query.PageKey{
		FilterSig: st.Filters.Signature(),
		SortSig:   st.Sort.Signature(),
		Index:     st.PageIndex,
		Size:      c.pageSize,
	}
	return c.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*query.Page, error) {
		return c.adapter.Fetch(ctx, st.Filters, st.Sort, st.PageIndex*c.pageSize, c.pageSize)
	})
}

// commit fetches the page for the candidate state, re-derives the total
// from the result, and re-clamps the page index (filters can shrink the
// result set below the requested page). Only on success does the
// controller adopt the new state and page.
func (c *Controller) commit(ctx context.Context, st State) error {
	page, err := c.fetchPage(ctx, st)
	if err != nil {
		return err
	}
	st.Total = page.Total

	if last := st.LastPage(c.pageSize); st.PageIndex > last {
		st.PageIndex = last
		page, err = c.fetchPage(ctx, st)
		if err != nil {
			return err
		}
		st.Total = page.Total
	}

	c.state = st
	c.page = page
	return nil
}
