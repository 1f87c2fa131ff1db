package filter

import (
	"errors"
	"testing"
)

func TestCompileLiteral(t *testing.T) {
	expr, ok, err := Compile("city", "scranton")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !ok {
		t.Fatal("expected an active filter")
	}
	if expr.Mode != Literal {
		t.Errorf("Mode = %v, want Literal", expr.Mode)
	}
	if expr.Pattern != "scranton" {
		t.Errorf("Pattern = %q, want %q", expr.Pattern, "scranton")
	}
}

func TestCompileRegex(t *testing.T) {
	expr, ok, err := Compile("name", "/^j")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !ok {
		t.Fatal("expected an active filter")
	}
	if expr.Mode != Regex {
		t.Errorf("Mode = %v, want Regex", expr.Mode)
	}
	if expr.Pattern != "^j" {
		t.Errorf("Pattern = %q, want %q", expr.Pattern, "^j")
	}
}

func TestCompileAbsent(t *testing.T) {
	// Empty and whitespace-only values mean "no filter on this column",
	// as does a bare regex prefix with no pattern yet.
	for _, raw := range []string{"", "   ", "\t", "/"} {
		if _, ok, err := Compile("col", raw); err != nil || ok {
			t.Errorf("Compile(%q) = ok=%v err=%v, want absent", raw, ok, err)
		}
	}
}

func TestCompileBadRegex(t *testing.T) {
	_, _, err := Compile("name", "/[unclosed")
	if err == nil {
		t.Fatal("expected error for malformed pattern")
	}
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if ferr.Column != "name" {
		t.Errorf("Error.Column = %q, want %q", ferr.Column, "name")
	}
}

func TestCompileTrimsWhitespace(t *testing.T) {
	expr, ok, err := Compile("city", "  paris  ")
	if err != nil || !ok {
		t.Fatalf("Compile: ok=%v err=%v", ok, err)
	}
	if expr.Pattern != "paris" {
		t.Errorf("Pattern = %q, want %q", expr.Pattern, "paris")
	}
}

func TestMatchesLiteralCaseInsensitive(t *testing.T) {
	expr, _, err := Compile("city", "scranton")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !expr.Matches("Scranton, PA") {
		t.Error("literal filter should match case-insensitively")
	}
	if expr.Matches("Paris, TX") {
		t.Error("literal filter should not match unrelated value")
	}
}

func TestMatchesRegexCaseInsensitive(t *testing.T) {
	expr, _, err := Compile("name", "/^j")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !expr.Matches("John") {
		t.Error("regex ^j should match John")
	}
	if expr.Matches("Mary") {
		t.Error("regex ^j should not match Mary")
	}
}

func TestCompileSpecAtomic(t *testing.T) {
	// One bad column rejects the whole spec: a partially valid spec is
	// never returned.
	spec, err := CompileSpec(map[string]string{
		"name": "john",
		"age":  "/[bad",
	})
	if err == nil {
		t.Fatal("expected error for spec with malformed pattern")
	}
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if ferr.Column != "age" {
		t.Errorf("Error.Column = %q, want %q", ferr.Column, "age")
	}
	if !spec.Empty() {
		t.Error("rejected spec should be empty")
	}
}

func TestCompileSpecSkipsEmptyColumns(t *testing.T) {
	spec, err := CompileSpec(map[string]string{
		"name": "john",
		"city": "",
		"age":  "  ",
	})
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	if spec.Len() != 1 {
		t.Fatalf("Len = %d, want 1", spec.Len())
	}
	if _, ok := spec.Get("city"); ok {
		t.Error("empty filter value should leave the column unfiltered")
	}
}

func TestSpecSignatureDeterministic(t *testing.T) {
	a, err := CompileSpec(map[string]string{"name": "john", "city": "/^s"})
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	b, err := CompileSpec(map[string]string{"city": "/^s", "name": "john"})
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	if a.Signature() != b.Signature() {
		t.Errorf("signatures differ: %q vs %q", a.Signature(), b.Signature())
	}
	if a.Signature() == "" {
		t.Error("non-empty spec should have a non-empty signature")
	}
}

func TestSpecSignatureDistinguishesModes(t *testing.T) {
	lit, _ := CompileSpec(map[string]string{"name": "john"})
	re, _ := CompileSpec(map[string]string{"name": "/john"})
	if lit.Signature() == re.Signature() {
		t.Error("literal and regex filters with the same pattern must sign differently")
	}
}

func TestSignatureInjectiveAcrossSeparatorChars(t *testing.T) {
	// A pattern containing the signature's own separators must not make
	// one spec sign identically to a different multi-column spec.
	single, err := CompileSpec(map[string]string{"city": "y;name=l:x"})
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	double, err := CompileSpec(map[string]string{"city": "y", "name": "x"})
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	if single.Signature() == double.Signature() {
		t.Errorf("distinct specs share signature %q", single.Signature())
	}
}

func TestSignatureEscapesColumnNames(t *testing.T) {
	a, err := CompileSpec(map[string]string{"a=l": "x"})
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	b, err := CompileSpec(map[string]string{"a": "l:x"})
	if err != nil {
		t.Fatalf("CompileSpec: %v", err)
	}
	if a.Signature() == b.Signature() {
		t.Errorf("distinct specs share signature %q", a.Signature())
	}
}

func TestEmptySpecSignature(t *testing.T) {
	var s Spec
	if s.Signature() != "" {
		t.Errorf("empty spec signature = %q, want empty", s.Signature())
	}
	if !s.Empty() {
		t.Error("zero-value spec should be empty")
	}
}
