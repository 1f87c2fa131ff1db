package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/wesm/csvpeek/internal/filter"
)

// DuckDBAdapter implements Adapter using an in-memory DuckDB instance that
// scans the delimited file lazily through a view over read_csv_auto. No
// table is materialized: every fetch is a bounded LIMIT/OFFSET query
// against the scan, so memory use stays proportional to the page size
// regardless of file size.
type DuckDBAdapter struct {
	db      *sql.DB
	columns []Column
}

// Open creates a DuckDB-backed adapter for the given delimited file.
// Delimiter, header, and column types are auto-detected by DuckDB. An
// unreadable or malformed file fails here, before the interactive loop
// starts.
func Open(path string) (*DuckDBAdapter, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	// Constrain to single connection so session state (the dataset view)
	// is visible to every query. DuckDB session objects don't propagate
	// across pooled connections.
	db.SetMaxOpenConns(1)

	// Escape single quotes in the path to keep the literal well-formed.
	escapedPath := strings.ReplaceAll(path, "'", "''")
	createSQL := fmt.Sprintf("CREATE VIEW dataset AS SELECT * FROM read_csv_auto('%s')", escapedPath)
	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	columns, err := describeColumns(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	if len(columns) == 0 {
		db.Close()
		return nil, fmt.Errorf("read %s: no columns detected", path)
	}

	return &DuckDBAdapter{db: db, columns: columns}, nil
}

// Close releases DuckDB resources.
func (a *DuckDBAdapter) Close() error {
	return a.db.Close()
}

// Columns returns the dataset schema.
func (a *DuckDBAdapter) Columns() []Column {
	return a.columns
}

// describeColumns introspects the dataset view's schema.
func describeColumns(db *sql.DB) ([]Column, error) {
	rows, err := db.Query("DESCRIBE dataset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var name, typ string
		var null, key, dflt, extra sql.NullString
		if err := rows.Scan(&name, &typ, &null, &key, &dflt, &extra); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, Column{Name: name, Type: columnTypeOf(typ)})
	}
	return columns, rows.Err()
}

// columnTypeOf maps a DuckDB type name onto text/numeric.
func columnTypeOf(duckType string) ColumnType {
	t := strings.ToUpper(duckType)
	for _, numeric := range []string{"INT", "DECIMAL", "FLOAT", "DOUBLE", "NUMERIC", "REAL"} {
		if strings.Contains(t, numeric) {
			return TypeNumeric
		}
	}
	return TypeText
}

// escapeILIKE escapes ILIKE wildcard characters (% and _) in user input.
func escapeILIKE(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslash first
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// quoteIdent quotes a column name for use in generated SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildPredicates translates a filter spec into WHERE conditions and bound
// arguments. Literal filters become case-insensitive ILIKE substring
// predicates; regex filters become case-insensitive regexp_matches calls.
// One predicate per filtered column, conjoined with AND. Cells are cast to
// VARCHAR so numeric columns filter on their text rendering.
func buildPredicates(filters filter.Spec) (string, []interface{}) {
	if filters.Empty() {
		return "1=1", nil
	}

	var conditions []string
	var args []interface{}
	for _, expr := range filters.Exprs() {
		col := quoteIdent(expr.Column)
		switch expr.Mode {
		case filter.Regex:
			conditions = append(conditions, fmt.Sprintf("regexp_matches(CAST(%s AS VARCHAR), ?, 'i')", col))
			args = append(args, expr.Pattern)
		default:
			conditions = append(conditions, fmt.Sprintf(`CAST(%s AS VARCHAR) ILIKE ? ESCAPE '\'`, col))
			args = append(args, "%"+escapeILIKE(expr.Pattern)+"%")
		}
	}
	return strings.Join(conditions, " AND "), args
}

// orderClause builds the ORDER BY clause, or "" when no sort is active so
// the scan's natural file order is preserved. Sorting is on the typed
// column, so numeric columns sort numerically; NULLS LAST keeps empty
// cells at the bottom in both directions.
func orderClause(sort SortSpec) string {
	if sort.None() {
		return ""
	}
	dir := "ASC"
	if sort.Direction == SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST", quoteIdent(sort.Column), dir)
}

// Fetch runs a bounded page query plus a count query under the same
// predicates and returns the page. It never loads more than limit rows.
func (a *DuckDBAdapter) Fetch(ctx context.Context, filters filter.Spec, sort SortSpec, offset, limit int) (*Page, error) {
	if offset < 0 {
		return nil, fmt.Errorf("fetch: negative offset %d", offset)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("fetch: non-positive limit %d", limit)
	}

	where, args := buildPredicates(filters)

	selectList := make([]string, len(a.columns))
	for i, col := range a.columns {
		selectList[i] = fmt.Sprintf("COALESCE(CAST(%s AS VARCHAR), '')", quoteIdent(col.Name))
	}

	querySQL := fmt.Sprintf(
		"SELECT %s FROM dataset WHERE %s %s LIMIT ? OFFSET ?",
		strings.Join(selectList, ", "), where, orderClause(sort),
	)
	queryArgs := append(append([]interface{}{}, args...), limit, offset)

	rows, err := a.db.QueryContext(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer rows.Close()

	var pageRows []Row
	for rows.Next() {
		row := make(Row, len(a.columns))
		dest := make([]interface{}, len(a.columns))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		pageRows = append(pageRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM dataset WHERE %s", where)
	var total int64
	if err := a.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	return &Page{
		Key: PageKey{
			FilterSig: filters.Signature(),
			SortSig:   sort.Signature(),
			Index:     offset / limit,
			Size:      limit,
		},
		Rows:  pageRows,
		Total: total,
	}, nil
}
