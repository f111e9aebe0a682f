// Package check implements the type checker (spec §4.5/C5): value-against-
// type checking with union short-circuit and constraint evaluation. It
// layers on top of internal/vm's type algebra (C4) without vm needing to
// know about it.
package check

import (
	"github.com/pklcore/typedcore/internal/diagnostic"
	"github.com/pklcore/typedcore/internal/evalerr"
	"github.com/pklcore/typedcore/internal/vm"
)

// Check validates v against t, raising a type-mismatch error (one of the
// four shapes in spec §7) on failure. frame supplies the "custom this"
// binding a Constrained predicate closure reads from (spec §9); it may be
// nil for top-level checks with no enclosing predicate context.
func Check(reg *vm.Registry, t vm.Type, v vm.Value, frame *vm.Frame, span diagnostic.Span) error {
	if t == nil {
		return nil
	}
	if t.SkipChecks() {
		return nil
	}

	switch tt := t.(type) {
	case vm.UnknownType, vm.AnyType, vm.TypeVariableType:
		return nil

	case vm.NothingType:
		return evalerr.NothingAssignment(span)

	case vm.StringLiteralType:
		s, ok := v.(vm.String)
		if !ok || string(s) != tt.Value {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		return nil

	case vm.UnionOfStringLiteralsType:
		s, ok := v.(vm.String)
		if ok {
			for _, cand := range tt.Values {
				if cand == string(s) {
					return nil
				}
			}
		}
		return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))

	case vm.ModuleType:
		return checkClassMembership(reg, tt.Class, tt.Final, v, frame, span)

	case vm.FinalClassType:
		return checkClassMembership(reg, tt.Class, true, v, frame, span)

	case vm.NonFinalClassType:
		return checkClassMembership(reg, tt.Class, false, v, frame, span)

	case vm.NullableType:
		if isNull(v) {
			return nil
		}
		return Check(reg, tt.Elem, v, frame, span)

	case vm.UnionType:
		return checkUnion(reg, tt, v, frame, span)

	case vm.CollectionType:
		return checkAnyCollection(reg, tt.Elem, v, frame, span)

	case vm.ListType:
		lst, ok := v.(*vm.List)
		if !ok {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		if tt.Elem.SkipChecks() {
			return nil
		}
		for i, e := range lst.Elements {
			if err := Check(reg, tt.Elem, e, frame, span); err != nil {
				return wrapElementError(err, i)
			}
		}
		return nil

	case vm.SetType:
		set, ok := v.(*vm.Set)
		if !ok {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		if tt.Elem.SkipChecks() {
			return nil
		}
		for i, e := range set.Elements() {
			if err := Check(reg, tt.Elem, e, frame, span); err != nil {
				return wrapElementError(err, i)
			}
		}
		return nil

	case vm.MapType:
		m, ok := v.(*vm.Map)
		if !ok {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		keys, vals := m.Entries()
		for i := range keys {
			if !tt.Key.SkipChecks() {
				if err := Check(reg, tt.Key, keys[i], frame, span); err != nil {
					return err
				}
			}
			if !tt.Val.SkipChecks() {
				if err := Check(reg, tt.Val, vals[i], frame, span); err != nil {
					return err
				}
			}
		}
		return nil

	case vm.ListingType:
		obj, ok := v.(*vm.Object)
		if !ok || obj.Variant != vm.ObjectListing {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		return checkListingElements(reg, tt.Elem, obj, frame, span)

	case vm.MappingType:
		obj, ok := v.(*vm.Object)
		if !ok || obj.Variant != vm.ObjectMapping {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		return checkMappingEntries(reg, tt.Key, tt.Val, obj, frame, span)

	case vm.FunctionType:
		if _, ok := v.(*vm.Function); !ok {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		return nil

	case vm.FunctionNType:
		fn, ok := v.(*vm.Function)
		if !ok || fn.Arity != len(tt.Params) {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		return nil

	case vm.FunctionClassType:
		fn, ok := v.(*vm.Function)
		if !ok || fn.Arity != tt.Arity {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		return nil

	case vm.PairType:
		p, ok := v.(vm.Pair)
		if !ok {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		if err := Check(reg, tt.First, p.First, frame, span); err != nil {
			return err
		}
		return Check(reg, tt.Second, p.Second, frame, span)

	case vm.VarArgsType:
		// never instantiable (spec §3.3); any attempt to check against it
		// is an internal error, not a user-facing mismatch.
		return evalerr.Internal(span, "VarArgs<%s> is not instantiable and cannot be checked against", tt.Elem)

	case vm.IntAliasType:
		i, ok := v.(vm.Int)
		if !ok {
			return evalerr.TypeMismatch(span, "Int", frame.RenderValue(v))
		}
		if !tt.InRange(int64(i)) {
			return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
		}
		return nil

	case vm.TypeAliasType:
		if tt.Alias.IsMixin {
			if _, ok := v.(*vm.Function); !ok {
				return evalerr.TypeMismatch(span, tt.String(), frame.RenderValue(v))
			}
			return nil
		}
		return Check(reg, tt.InstantiatedReg(reg), v, frame, span)

	case vm.ConstrainedType:
		if err := Check(reg, tt.Base, v, frame, span); err != nil {
			return err
		}
		return checkConstraints(tt, v, frame, span)

	default:
		return evalerr.Internal(span, "unrecognized type shape %T", t)
	}
}

func isNull(v vm.Value) bool {
	_, ok := v.(vm.Null)
	return ok
}

func checkClassMembership(reg *vm.Registry, class *vm.Class, final bool, v vm.Value, frame *vm.Frame, span diagnostic.Span) error {
	actual := vm.ClassOf(reg, v)
	ok := actual == class
	if !final {
		ok = vm.IsSubclass(actual, class)
	}
	if !ok {
		return evalerr.TypeMismatch(span, class.String(), frame.RenderValue(v))
	}
	return nil
}

func checkAnyCollection(reg *vm.Registry, elem vm.Type, v vm.Value, frame *vm.Frame, span diagnostic.Span) error {
	switch c := v.(type) {
	case *vm.List:
		if elem.SkipChecks() {
			return nil
		}
		for i, e := range c.Elements {
			if err := Check(reg, elem, e, frame, span); err != nil {
				return wrapElementError(err, i)
			}
		}
		return nil
	case *vm.Set:
		if elem.SkipChecks() {
			return nil
		}
		for i, e := range c.Elements() {
			if err := Check(reg, elem, e, frame, span); err != nil {
				return wrapElementError(err, i)
			}
		}
		return nil
	default:
		return evalerr.TypeMismatch(span, "Collection<"+elem.String()+">", frame.RenderValue(v))
	}
}

func wrapElementError(err error, index int) error {
	var ee *evalerr.EvalError
	if evalerr.As(err, &ee) {
		ee.Diagnostic.Message = ee.Diagnostic.Message + " (at element " + itoa(index) + ")"
		return ee
	}
	return err
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// checkListingElements descends the parent chain, forcing every non-property
// member (spec §4.5: "for each member that is not a property, force it ...
// then check ... its materialized value against V").
func checkListingElements(reg *vm.Registry, elem vm.Type, obj *vm.Object, frame *vm.Frame, span diagnostic.Span) error {
	if elem.SkipChecks() {
		return nil
	}
	for cur := obj; cur != nil; cur = cur.Parent {
		base := cur.ElementCount() - len(cur.OwnElements())
		for i := range cur.OwnElements() {
			idx := base + i
			// Always resolve by the freshly computed absolute index, never
			// the element's own stored key: an appended element's key may
			// be stale or parent-relative, and an integer entry key
			// resolves purely positionally (Object.ownMember), so trusting
			// it first risks silently matching a different element earlier
			// in the chain instead of erroring.
			v, err := vm.ReadMemberReg(obj, vm.MemberKey{Entry: vm.Int(idx)}, reg)
			if err != nil {
				return err
			}
			if err := Check(reg, elem, v, frame, span); err != nil {
				return wrapElementError(err, idx)
			}
		}
	}
	return nil
}

// checkMappingEntries descends the parent chain, checking every entry's key
// (against K) and materialized value (against V).
func checkMappingEntries(reg *vm.Registry, keyT, valT vm.Type, obj *vm.Object, frame *vm.Frame, span diagnostic.Span) error {
	for cur := obj; cur != nil; cur = cur.Parent {
		for _, m := range cur.OwnEntries() {
			if !keyT.SkipChecks() {
				if err := Check(reg, keyT, m.Key.Entry, frame, span); err != nil {
					return err
				}
			}
			if valT.SkipChecks() {
				continue
			}
			v, err := vm.ReadMemberReg(obj, m.Key, reg)
			if err != nil {
				return err
			}
			if err := Check(reg, valT, v, frame, span); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkUnion tries each member in declaration order, short-circuiting on the
// first success; on total failure it raises a union mismatch carrying each
// branch's captured Mismatch (spec §4.5/§7/§9: "exceptions used for union
// control flow").
func checkUnion(reg *vm.Registry, t vm.UnionType, v vm.Value, frame *vm.Frame, span diagnostic.Span) error {
	var children []diagnostic.Diagnostic
	for _, member := range t.Members {
		err := Check(reg, member, v, frame, span)
		if err == nil {
			return nil
		}
		var ee *evalerr.EvalError
		if evalerr.As(err, &ee) {
			children = append(children, ee.Diagnostic)
		} else {
			children = append(children, diagnostic.Diagnostic{Message: err.Error()})
		}
	}
	return evalerr.UnionMismatch(span, t.String(), frame.RenderValue(v), children)
}

// checkConstraints establishes the "custom this" binding and evaluates each
// predicate (spec §4.5/§9).
func checkConstraints(t vm.ConstrainedType, v vm.Value, frame *vm.Frame, span diagnostic.Span) error {
	predFrame := frame.WithCustomThis(v)
	for _, p := range t.Predicates {
		if p.Eval == nil {
			continue
		}
		ok, pa, err := p.Eval(predFrame, v)
		if err != nil {
			return err
		}
		if !ok {
			return evalerr.ConstraintMismatch(span, p.Source, frame.RenderValue(v), pa)
		}
	}
	return nil
}
