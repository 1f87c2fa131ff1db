// Package filter compiles user-entered per-column filter strings into
// typed expressions. A raw value starting with "/" is a case-insensitive
// regular expression; anything else is a case-insensitive literal
// substring match. Empty values mean "no filter on this column".
package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// RegexPrefix marks a raw filter value as a regular expression.
const RegexPrefix = "/"

// Mode distinguishes literal substring filters from regex filters.
type Mode int

const (
	Literal Mode = iota
	Regex
)

func (m Mode) String() string {
	switch m {
	case Literal:
		return "literal"
	case Regex:
		return "regex"
	default:
		return "unknown"
	}
}

// Expr is a compiled filter expression for a single column.
// Regex expressions carry a pre-compiled case-insensitive matcher so the
// renderer can highlight matches without recompiling per cell.
type Expr struct {
	Column  string
	Mode    Mode
	Pattern string

	re *regexp.Regexp // set for Mode == Regex
}

// Matches reports whether the expression matches the given cell value.
// Used for display highlighting; the backend applies the same semantics
// via SQL predicates.
func (e Expr) Matches(value string) bool {
	if e.Mode == Regex {
		return e.re != nil && e.re.MatchString(value)
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(e.Pattern))
}

// Error reports a filter value that failed to compile, naming the column
// so the UI can point the user at the offending input.
type Error struct {
	Column string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid filter for column %q: %v", e.Column, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Compile turns a raw filter value into an expression. The boolean result
// is false when the value is empty (after trimming) and no filter should
// be applied for the column. A "/" followed by nothing is also absent,
// matching how a user types a regex incrementally.
func Compile(column, raw string) (Expr, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Expr{}, false, nil
	}

	if strings.HasPrefix(raw, RegexPrefix) {
		pattern := raw[len(RegexPrefix):]
		if pattern == "" {
			return Expr{}, false, nil
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return Expr{}, false, &Error{Column: column, Err: err}
		}
		return Expr{Column: column, Mode: Regex, Pattern: pattern, re: re}, true, nil
	}

	return Expr{Column: column, Mode: Literal, Pattern: raw}, true, nil
}

// Spec is the full set of active per-column filters. Specs are built
// atomically by CompileSpec and never patched in place; the zero value is
// the empty spec.
type Spec struct {
	exprs map[string]Expr
}

// CompileSpec compiles every non-empty value in raw. Compilation is
// all-or-nothing: if any column fails, the error names that column and no
// partial spec is returned, so callers can keep their previous spec active.
func CompileSpec(raw map[string]string) (Spec, error) {
	// Deterministic error selection when several columns are invalid.
	columns := make([]string, 0, len(raw))
	for col := range raw {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	exprs := make(map[string]Expr, len(raw))
	for _, col := range columns {
		expr, ok, err := Compile(col, raw[col])
		if err != nil {
			return Spec{}, err
		}
		if ok {
			exprs[col] = expr
		}
	}
	if len(exprs) == 0 {
		return Spec{}, nil
	}
	return Spec{exprs: exprs}, nil
}

// Empty reports whether no column filter is active.
func (s Spec) Empty() bool { return len(s.exprs) == 0 }

// Len returns the number of active column filters.
func (s Spec) Len() int { return len(s.exprs) }

// Get returns the expression for a column, if one is active.
func (s Spec) Get(column string) (Expr, bool) {
	e, ok := s.exprs[column]
	return e, ok
}

// Exprs returns the active expressions sorted by column name. The stable
// order keeps generated SQL and cache signatures deterministic.
func (s Spec) Exprs() []Expr {
	out := make([]Expr, 0, len(s.exprs))
	for _, e := range s.exprs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// sigEscaper escapes the signature's structural characters inside column
// names and patterns, so the encoding stays injective: two distinct specs
// can never share a signature and collide in the page cache.
var sigEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, "=", `\=`, ":", `\:`)

// Signature returns a canonical identity string for the spec. Two specs
// with the same active filters produce the same signature regardless of
// construction order, distinct specs never share one, and the empty spec
// signs as "".
func (s Spec) Signature() string {
	if len(s.exprs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range s.Exprs() {
		if i > 0 {
			b.WriteByte(';')
		}
		mode := "l"
		if e.Mode == Regex {
			mode = "r"
		}
		fmt.Fprintf(&b, "%s=%s:%s", sigEscaper.Replace(e.Column), mode, sigEscaper.Replace(e.Pattern))
	}
	return b.String()
}
