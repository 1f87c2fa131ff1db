// Package query provides the data access layer for csvpeek. It submits
// bounded, parameterized row requests against an embedded DuckDB backend
// and translates results into an internal row representation. The backend
// does the actual scanning, filtering, and sorting; this package only
// builds requests and never loads more than one page into memory.
package query

import (
	"context"
	"fmt"

	"github.com/wesm/csvpeek/internal/filter"
)

// ColumnType is the inferred type of a column. Filtering treats every
// column as text; the type only influences sort order (numeric columns
// sort numerically) and is shown in the filter dialog.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeNumeric
)

func (t ColumnType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// Column describes one column of the loaded dataset. Immutable after load.
type Column struct {
	Name string
	Type ColumnType
}

// Row is one fetched row, cell values aligned to column ordinals.
// Rows are immutable snapshots; NULLs are rendered as empty strings.
type Row []string

// SortDirection is ascending or descending.
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

func (d SortDirection) String() string {
	if d == SortDesc {
		return "descending"
	}
	return "ascending"
}

// SortSpec names the single active sort column and direction. The zero
// value (empty Column) means unsorted: backend iteration order, which for
// a CSV scan is file order.
type SortSpec struct {
	Column    string
	Direction SortDirection
}

// None reports whether no sort is active.
func (s SortSpec) None() bool { return s.Column == "" }

// Signature returns a canonical identity string for cache keys.
func (s SortSpec) Signature() string {
	if s.None() {
		return ""
	}
	dir := "a"
	if s.Direction == SortDesc {
		dir = "d"
	}
	return s.Column + ":" + dir
}

// PageKey is the composite identity of a fetched page. Two keys are equal
// iff all components are equal; the page cache uses it as its lookup key,
// so filter or sort changes miss naturally without explicit invalidation.
type PageKey struct {
	FilterSig string
	SortSig   string
	Index     int
	Size      int
}

func (k PageKey) String() string {
	return fmt.Sprintf("page %d (size %d, filter %q, sort %q)", k.Index, k.Size, k.FilterSig, k.SortSig)
}

// Page is a bounded window of rows fetched under a specific key, plus the
// total row count estimate for that filter signature.
type Page struct {
	Key   PageKey
	Rows  []Row
	Total int64
}

// Adapter is the query-submission interface consumed by the view layer.
// Implementations answer bounded LIMIT/OFFSET requests synchronously.
type Adapter interface {
	// Fetch returns at most limit rows starting at offset under the given
	// filters and sort, along with the total row count for the filters.
	Fetch(ctx context.Context, filters filter.Spec, sort SortSpec, offset, limit int) (*Page, error)

	// Columns returns the dataset schema, fixed after load.
	Columns() []Column

	// Close releases any resources held by the adapter.
	Close() error
}
