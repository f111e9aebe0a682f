// Package evalerr defines the evaluation error taxonomy (spec §7):
// type-mismatch, duplicate-definition, const/fixed-property, and
// cyclic-evaluation errors, each wrapping a diagnostic.Diagnostic.
package evalerr

import (
	"errors"
	"fmt"

	"github.com/pklcore/typedcore/internal/diagnostic"
)

// EvalError is a single evaluation-boundary error carrying its diagnostic.
type EvalError struct {
	Diagnostic diagnostic.Diagnostic
	// Wrapped is an optional underlying cause (e.g. an I/O error from a
	// resource loader callback, spec §6).
	Wrapped error
}

func (e *EvalError) Error() string {
	if e == nil {
		return ""
	}
	return e.Diagnostic.String()
}

func (e *EvalError) Unwrap() error { return e.Wrapped }

// New constructs an EvalError from a category, span and message.
func New(category diagnostic.Category, span diagnostic.Span, format string, args ...any) *EvalError {
	return &EvalError{Diagnostic: diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Category: category,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	}}
}

// TypeMismatch builds a "simple" type-mismatch error (spec §7): actual value
// vs. expected class/alias/literal/literal-set.
func TypeMismatch(span diagnostic.Span, expected, actualRendered string) *EvalError {
	return New(diagnostic.CategoryTypeMismatch, span,
		"expected value of type %q, but got %s", expected, actualRendered)
}

// UnionMismatch builds a union-mismatch error carrying each branch's
// captured Mismatch as a child diagnostic (spec §7/§9: "union checking
// collects per-branch Mismatch records").
func UnionMismatch(span diagnostic.Span, expected, actualRendered string, children []diagnostic.Diagnostic) *EvalError {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Category: diagnostic.CategoryUnionMismatch,
		Span:     span,
		Message:  fmt.Sprintf("expected value matching %s, but got %s", expected, actualRendered),
		Children: children,
	}
	return &EvalError{Diagnostic: d}
}

// ConstraintMismatch builds a constraint-mismatch error, optionally carrying
// a power-assertion rendering of tracked intermediate values.
func ConstraintMismatch(span diagnostic.Span, predicateSource, valueRendered string, pa *diagnostic.PowerAssertion) *EvalError {
	return &EvalError{Diagnostic: diagnostic.Diagnostic{
		Severity:       diagnostic.SeverityError,
		Category:       diagnostic.CategoryConstraintMismatch,
		Span:           span,
		Message:        fmt.Sprintf("value %s did not satisfy constraint %q", valueRendered, predicateSource),
		PowerAssertion: pa,
	}}
}

// NothingAssignment builds the "any assignment to a Nothing-typed slot" error.
func NothingAssignment(span diagnostic.Span) *EvalError {
	return New(diagnostic.CategoryNothingAssignment, span, "cannot assign a value to a member of type Nothing")
}

// DuplicateDefinition builds the duplicate-definition error (spec §4.7).
func DuplicateDefinition(span diagnostic.Span, key string) *EvalError {
	return New(diagnostic.CategoryDuplicateMember, span, "duplicate definition of member %q", key)
}

// CannotAssignConstProperty builds the const-violation error (spec §4.3).
func CannotAssignConstProperty(span diagnostic.Span, name string) *EvalError {
	return New(diagnostic.CategoryConstViolation, span, "cannot assign to const property %q", name)
}

// CannotAssignFixedProperty builds the fixed-violation error (spec §4.3).
func CannotAssignFixedProperty(span diagnostic.Span, name string) *EvalError {
	return New(diagnostic.CategoryFixedViolation, span, "cannot assign to fixed property %q", name)
}

// CyclicEvaluation builds the cyclic-evaluation error (spec §4.6/§8).
func CyclicEvaluation(span diagnostic.Span, key string) *EvalError {
	return New(diagnostic.CategoryCyclicEvaluation, span, "cyclic evaluation of member %q", key)
}

// Internal builds an internal-error diagnostic for conservative fallback
// behaviors (spec §9 open question on VarArgs<T> defaults).
func Internal(span diagnostic.Span, format string, args ...any) *EvalError {
	return New(diagnostic.CategoryInternal, span, format, args...)
}

// As is a thin re-export of errors.As for callers that don't want to import
// both packages.
func As(err error, target **EvalError) bool {
	return errors.As(err, target)
}
