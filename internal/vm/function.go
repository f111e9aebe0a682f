package vm

import (
	"fmt"

	"github.com/pklcore/typedcore/internal/ident"
)

// Function is a closure over a parameter arity, a captured this, a body
// reference, and a parent frame (spec §3.1); it is itself amendable
// (internal/amend wraps it into an amend-function).
type Function struct {
	Arity  int
	Params []Type
	Result Type

	This        Value
	Body        Body
	ParentFrame *Frame

	// Native, when set, is a builtin implementation (e.g. the Mixin<T>
	// identity function synthesized in types.go) that bypasses Body
	// evaluation entirely.
	Native func(args []Value) (Value, error)
}

func (*Function) Kind() Kind { return KindFunction }

// Call invokes the function with positional arguments.
func (f *Function) Call(args []Value) (Value, error) {
	if f.Native != nil {
		return f.Native(args)
	}
	if f.Body == nil {
		return nil, fmt.Errorf("function has no body")
	}
	frame := f.ParentFrame
	if frame == nil {
		frame = &Frame{}
	}
	frame = frame.WithCustomThis(f.This)
	return f.Body.Evaluate(frame)
}

func defaultPropertyIdent() *ident.Identifier {
	return ident.Regular("default")
}
