package diagnostic

import (
	"strings"
	"testing"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityWarning,
		Category: CategoryTypeMismatch,
		Span:     Span{File: "module.pkl", Line: 10, Column: 5},
		Message:  "expected type 'Int', got 'String'",
		Hint:     "did you mean to quote this as a string literal type?",
	}

	s := d.String()
	if !strings.Contains(s, "module.pkl:10:5") {
		t.Errorf("expected file:line:col, got %q", s)
	}
	if !strings.Contains(s, "warning") {
		t.Errorf("expected 'warning', got %q", s)
	}
	if !strings.Contains(s, "[type-mismatch]") {
		t.Errorf("expected category, got %q", s)
	}
	if !strings.Contains(s, "hint:") {
		t.Errorf("expected hint, got %q", s)
	}
}

func TestDiagnostic_String_NoSpan(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, Category: CategoryInternal, Message: "boom"}
	s := d.String()
	if strings.Contains(s, " - ") {
		t.Errorf("expected no location separator for an empty span, got %q", s)
	}
}

func TestDiagnostic_String_Children(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityError,
		Category: CategoryUnionMismatch,
		Message:  "value does not match Union(String, Int)",
		Children: []Diagnostic{
			{Message: "expected String, got Boolean"},
			{Message: "expected Int, got Boolean"},
		},
	}
	s := d.String()
	if strings.Count(s, "because") != 2 {
		t.Errorf("expected 2 'because' lines, got %q", s)
	}
}

func TestCollector_ErrorAndWarn(t *testing.T) {
	c := NewCollector()
	c.Warn(CategoryConstraintMismatch, Span{File: "a.pkl", Line: 1}, "constraint failed")
	c.Error(CategoryNothingAssignment, Span{}, "cannot assign to Nothing")

	diags := c.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
	if !c.HasErrors() {
		t.Error("expected HasErrors() = true")
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Warn(CategoryTypeMismatch, Span{}, "test")
	c.Error(CategoryInternal, Span{}, "test")
	if c.HasErrors() {
		t.Error("nil collector should not have errors")
	}
	if c.FormatAll() != "" {
		t.Error("nil collector should format to empty string")
	}
	if len(c.Diagnostics()) != 0 {
		t.Error("nil collector should have no diagnostics")
	}
}

func TestCollector_FormatAll(t *testing.T) {
	c := NewCollector()
	c.Error(CategoryDuplicateMember, Span{File: "b.pkl", Line: 3}, "duplicate property \"x\"")

	formatted := c.FormatAll()
	if !strings.Contains(formatted, "b.pkl:3") {
		t.Errorf("expected formatted output with file:line, got %q", formatted)
	}
}

func TestPowerAssertion_Render(t *testing.T) {
	pa := &PowerAssertion{
		Expression: "this.length > 0",
		Steps:      []PowerAssertionStep{{SubExpression: "this.length", Rendered: "0"}},
	}
	out := pa.Render("false")
	if out == "" {
		t.Error("expected non-empty power-assertion rendering")
	}
}

func TestPowerAssertion_Render_Nil(t *testing.T) {
	var pa *PowerAssertion
	if pa.Render("x") != "" {
		t.Error("expected empty rendering for nil power assertion")
	}
}

func TestTruncateValue(t *testing.T) {
	tests := []struct {
		name          string
		rendered      string
		width, indent int
		want          string
	}{
		{"fits", "short", 80, 0, "short"},
		{"truncated", strings.Repeat("a", 100), 20, 0, strings.Repeat("a", 17) + "..."},
		{"tiny-limit", "abcdef", 2, 0, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateValue(tt.rendered, tt.width, tt.indent)
			if got != tt.want {
				t.Errorf("TruncateValue(%q, %d, %d) = %q, want %q", tt.rendered, tt.width, tt.indent, got, tt.want)
			}
		})
	}
}

func TestSpan_String(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want string
	}{
		{"empty", Span{}, ""},
		{"file-only", Span{File: "a.pkl"}, "a.pkl"},
		{"file-line", Span{File: "a.pkl", Line: 4}, "a.pkl:4"},
		{"file-line-col", Span{File: "a.pkl", Line: 4, Column: 2}, "a.pkl:4:2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.String(); got != tt.want {
				t.Errorf("Span.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
