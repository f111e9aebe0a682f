// Package amend implements the amendment engine (spec §4.7/C7): the
// protocol that applies an object literal to a parent value, producing a
// child value whose variant is derived from the parent.
package amend

import (
	"github.com/pklcore/typedcore/internal/diagnostic"
	"github.com/pklcore/typedcore/internal/evalerr"
	"github.com/pklcore/typedcore/internal/vm"
)

// Literal is the declared member set of an object literal (spec §4.7):
// properties/methods, elements, and entries. Generator expansions
// (spread/for/when) are modeled as members appended to these slices by the
// (external) evaluator before Amend is called; AppendGenerated adds members
// discovered only at runtime, which still need duplicate detection against
// what's already present (spec: "outside of for/when generator expansions,
// where duplication at runtime raises a duplicate-definition error").
type Literal struct {
	Span       diagnostic.Span
	Properties []*vm.Member
	Elements   []*vm.Member
	Entries    []*vm.Member
}

// validateNoDuplicates enforces "a key may appear at most once per literal"
// (spec §4.7).
func validateNoDuplicates(lit *Literal) error {
	seen := make(map[string]diagnostic.Span)
	for _, m := range lit.Properties {
		name := m.Key.Ident.Text()
		if prev, ok := seen[name]; ok {
			_ = prev
			return evalerr.DuplicateDefinition(m.HeaderSpan, name)
		}
		seen[name] = m.HeaderSpan
	}
	for _, m := range lit.Entries {
		key := "entry:" + vm.Render(m.Key.Entry)
		if _, ok := seen[key]; ok {
			return evalerr.DuplicateDefinition(m.HeaderSpan, key)
		}
		seen[key] = m.HeaderSpan
	}
	return nil
}

// AppendGenerated appends a runtime-discovered member (from a for/when
// generator expansion) to the literal, raising a duplicate-definition error
// if its key collides with anything already present (spec §4.7).
func (lit *Literal) AppendGenerated(m *vm.Member) error {
	switch m.Kind {
	case vm.MemberProperty, vm.MemberMethod:
		name := m.Key.Ident.Text()
		for _, existing := range lit.Properties {
			if existing.Key.Ident.Text() == name {
				return evalerr.DuplicateDefinition(m.HeaderSpan, name)
			}
		}
		lit.Properties = append(lit.Properties, m)
	case vm.MemberEntry:
		for _, existing := range lit.Entries {
			if vm.Equal(existing.Key.Entry, m.Key.Entry) {
				return evalerr.DuplicateDefinition(m.HeaderSpan, vm.Render(m.Key.Entry))
			}
		}
		lit.Entries = append(lit.Entries, m)
	case vm.MemberElement:
		lit.Elements = append(lit.Elements, m)
	}
	return nil
}

// Amend applies lit to parent, producing the amended child value per the
// dispatch table in spec §4.7.
func Amend(reg *vm.Registry, parent vm.Value, lit *Literal) (vm.Value, error) {
	if err := validateNoDuplicates(lit); err != nil {
		return nil, err
	}

	switch p := parent.(type) {
	case vm.Null:
		if p.Default == nil {
			return nil, evalerr.New(diagnostic.CategoryInternal, lit.Span, "cannot amend null with no default")
		}
		return Amend(reg, p.Default, lit)

	case *vm.Class:
		return amendTyped(reg, reg.PrototypeOf(p), p, lit)

	case *vm.Function:
		return amendFunction(reg, p, lit), nil

	case *vm.Object:
		switch p.Variant {
		case vm.ObjectTyped:
			return amendTyped(reg, p, p.Class, lit)
		case vm.ObjectDynamic:
			return amendDynamic(p, lit)
		case vm.ObjectListing:
			return amendListing(p, lit)
		case vm.ObjectMapping:
			return amendMapping(p, lit)
		}
	}
	return nil, evalerr.New(diagnostic.CategoryInternal, lit.Span, "value of type %T cannot be amended", parent)
}

// amendTyped implements the Typed(C) -> Typed(C) row: every non-local
// property must be declared on C and not const/fixed from outside its
// declaring class; no elements or entries may be present.
func amendTyped(reg *vm.Registry, parent *vm.Object, class *vm.Class, lit *Literal) (*vm.Object, error) {
	if len(lit.Elements) > 0 || len(lit.Entries) > 0 {
		return nil, evalerr.New(diagnostic.CategoryInternal, lit.Span, "typed object literal cannot declare elements or entries")
	}
	child := vm.NewObject(vm.ObjectTyped, class, parent)
	for _, m := range lit.Properties {
		name := m.Key.Ident.Text()
		if m.Modifiers.Local {
			child.SetProperty(m)
			continue
		}
		prop, declClass := vm.PropertyOf(class, name)
		if prop == nil {
			return nil, evalerr.New(diagnostic.CategoryInternal, m.HeaderSpan,
				"property %q is not declared on class %s", name, class)
		}
		if prop.Modifiers.Const && declClass != class {
			return nil, evalerr.CannotAssignConstProperty(m.HeaderSpan, name)
		}
		if prop.Modifiers.Fixed && declClass != class {
			return nil, evalerr.CannotAssignFixedProperty(m.HeaderSpan, name)
		}
		if m.Declared == nil {
			m.Declared = prop.Declared
		}
		child.SetProperty(m)
	}
	return child, nil
}

// amendDynamic implements the Dynamic -> Dynamic row: any members allowed;
// element count is parent's count plus literal's element count.
func amendDynamic(parent *vm.Object, lit *Literal) (*vm.Object, error) {
	child := vm.NewObject(vm.ObjectDynamic, parent.Class, parent)
	for _, m := range lit.Properties {
		child.SetProperty(m)
	}
	for _, m := range lit.Elements {
		child.AppendElement(m)
	}
	for _, m := range lit.Entries {
		child.AppendEntry(m)
	}
	return child, nil
}

// amendListing implements the Listing -> Listing row: no property members
// other than "default"; element indices in the literal append after the
// parent's element count.
func amendListing(parent *vm.Object, lit *Literal) (*vm.Object, error) {
	for _, m := range lit.Properties {
		if m.Key.Ident.Text() != "default" {
			return nil, evalerr.New(diagnostic.CategoryInternal, m.HeaderSpan,
				"listing literal may not declare property %q", m.Key.Ident.Text())
		}
	}
	if len(lit.Entries) > 0 {
		return nil, evalerr.New(diagnostic.CategoryInternal, lit.Span, "listing literal may not declare entries")
	}
	child := vm.NewObject(vm.ObjectListing, parent.Class, parent)
	for _, m := range lit.Properties {
		child.SetProperty(m)
	}
	for i, m := range lit.Elements {
		// Element lookup resolves purely by position (Object.ownMember), so
		// a key the literal happened to carry from parsing is meaningless
		// once appended here; give it the absolute index it actually lives
		// at so nothing downstream can mistake it for a different key.
		m.Key = vm.MemberKey{Entry: vm.Int(parent.ElementCount() + i)}
		child.AppendElement(m)
	}
	return child, nil
}

// amendMapping implements the Mapping -> Mapping row: no property members
// other than "default"; entries may use arbitrary keys.
func amendMapping(parent *vm.Object, lit *Literal) (*vm.Object, error) {
	for _, m := range lit.Properties {
		if m.Key.Ident.Text() != "default" {
			return nil, evalerr.New(diagnostic.CategoryInternal, m.HeaderSpan,
				"mapping literal may not declare property %q", m.Key.Ident.Text())
		}
	}
	if len(lit.Elements) > 0 {
		return nil, evalerr.New(diagnostic.CategoryInternal, lit.Span, "mapping literal may not declare elements")
	}
	child := vm.NewObject(vm.ObjectMapping, parent.Class, parent)
	for _, m := range lit.Properties {
		child.SetProperty(m)
	}
	for _, m := range lit.Entries {
		child.AppendEntry(m)
	}
	return child, nil
}

// amendFunction implements the Function -> Function row: the literal is
// wrapped into an amend-function that, when called, amends the call's
// result with the literal's members, preserving `this`.
func amendFunction(reg *vm.Registry, parent *vm.Function, lit *Literal) *vm.Function {
	return &vm.Function{
		Arity:  parent.Arity,
		Params: parent.Params,
		Result: parent.Result,
		This:   parent.This,
		Native: func(args []vm.Value) (vm.Value, error) {
			result, err := parent.Call(args)
			if err != nil {
				return nil, err
			}
			return Amend(reg, result, lit)
		},
	}
}
