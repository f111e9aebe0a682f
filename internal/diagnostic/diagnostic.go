// Package diagnostic defines the structured diagnostic format surfaced by
// type checking and evaluation (spec §7/§C8): severities, categories, a
// source span, and an optional power-assertion rendering of intermediate
// values for constraint mismatches.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering and template selection.
type Category string

const (
	CategoryTypeMismatch       Category = "type-mismatch"
	CategoryUnionMismatch      Category = "union-mismatch"
	CategoryConstraintMismatch Category = "constraint-mismatch"
	CategoryNothingAssignment  Category = "nothing-assignment"
	CategoryDuplicateMember    Category = "duplicate-definition"
	CategoryConstViolation     Category = "const-property"
	CategoryFixedViolation     Category = "fixed-property"
	CategoryCyclicEvaluation   Category = "cyclic-evaluation"
	CategoryInternal           Category = "internal"
)

// Span is a 1-based source location, as produced by the external parser
// (spec §6: "a syntax tree whose nodes expose source spans").
type Span struct {
	File   string
	Line   int
	Column int
	Length int
}

func (s Span) String() string {
	if s.File == "" {
		return ""
	}
	if s.Line <= 0 {
		return s.File
	}
	if s.Column <= 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// PowerAssertion optionally renders tracked intermediate values for a failed
// constraint predicate (spec §7 glossary: "power assertion").
type PowerAssertion struct {
	Expression string
	Steps      []PowerAssertionStep
}

// PowerAssertionStep is one tracked intermediate value in a predicate
// expression, e.g. evaluating `this.length > 0` tracks `this.length`.
type PowerAssertionStep struct {
	SubExpression string
	Rendered      string
}

// Render produces a unified-diff-style rendering of the predicate's expected
// shape versus what was actually observed, using the tracked steps as the
// "before" side and the final rejection as the "after" side.
func (p *PowerAssertion) Render(rejected string) string {
	if p == nil {
		return ""
	}
	before := make([]string, 0, len(p.Steps)+1)
	before = append(before, p.Expression)
	for _, s := range p.Steps {
		before = append(before, fmt.Sprintf("%s = %s", s.SubExpression, s.Rendered))
	}
	diff := difflib.UnifiedDiff{
		A:        before,
		B:        []string{p.Expression, rejected},
		FromFile: "expected",
		ToFile:   "actual",
		Context:  len(before),
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return strings.Join(before, "\n")
	}
	return out
}

// Diagnostic is one structured evaluation diagnostic.
type Diagnostic struct {
	Severity       Severity
	Category       Category
	Span           Span
	Message        string
	Hint           string
	PowerAssertion *PowerAssertion
	// Children holds per-branch mismatches for a union check (spec §7:
	// "a list of child mismatches used to produce a 'because ...' hint").
	Children []Diagnostic
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder

	if loc := d.Span.String(); loc != "" {
		sb.WriteString(loc)
		sb.WriteString(" - ")
	}

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")

	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}

	sb.WriteString(d.Message)

	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}

	for _, c := range d.Children {
		sb.WriteString("\n  because ")
		sb.WriteString(c.Message)
	}

	if d.PowerAssertion != nil {
		sb.WriteString("\n")
		sb.WriteString(d.PowerAssertion.Render(d.Message))
	}

	return sb.String()
}

// Collector collects diagnostics raised during a single evaluation.
// Never shared between evaluations (spec §5: per-object cache tables are
// owned exclusively by the object and never shared between evaluations —
// the same discipline applies to the collector that observes them).
type Collector struct {
	diagnostics []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) add(d Diagnostic) {
	if c == nil {
		return
	}
	c.diagnostics = append(c.diagnostics, d)
}

// Error records an error-severity diagnostic.
func (c *Collector) Error(category Category, span Span, message string) {
	c.add(Diagnostic{Severity: SeverityError, Category: category, Span: span, Message: message})
}

// Warn records a warning-severity diagnostic.
func (c *Collector) Warn(category Category, span Span, message string) {
	c.add(Diagnostic{Severity: SeverityWarning, Category: category, Span: span, Message: message})
}

// Diagnostics returns all collected diagnostics in order.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// HasErrors reports whether any error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.Diagnostics() {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FormatAll renders every diagnostic, one per line (plus wrapped detail).
func (c *Collector) FormatAll() string {
	if c == nil || len(c.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range c.diagnostics {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// TruncateValue bounds a rendered value to width columns minus indent,
// appending an ellipsis marker (spec §7: "a truncating renderer bounded to
// 80 columns minus indent").
func TruncateValue(rendered string, width, indent int) string {
	limit := width - indent
	if limit <= 0 {
		limit = 1
	}
	if len(rendered) <= limit {
		return rendered
	}
	if limit <= 3 {
		return rendered[:limit]
	}
	return rendered[:limit-3] + "..."
}
