package vm

import (
	"fmt"
	"strings"

	"github.com/pklcore/typedcore/internal/diagnostic"
	"github.com/pklcore/typedcore/internal/evalerr"
)

// Type is the common interface over the closed sum of type shapes in
// spec §3.3/C4. Each variant implements its own default-value synthesis
// (§4.4) and skip-checks flag; internal/check implements the actual
// checking algorithm (§4.5/C5) via a type switch over the concrete structs
// below, kept exported so that package can reach their fields.
type Type interface {
	// SkipChecks reports whether check(T, v) is provably a no-op for every
	// v (spec §4.4's "skip-checks propagation"). Only true for Unknown,
	// Any, TypeVariable, and an all-no-op Union — never for a container
	// type merely because its element type is a no-op (§8 invariant:
	// SkipChecks==true must mean check succeeds for ALL v, including
	// values of the wrong structural kind).
	SkipChecks() bool

	// Default synthesizes this type's default value per spec §4.4.
	// (nil, nil) means "no default"; a non-nil error means defaulting
	// itself fails (e.g. VarArgs<T>, spec §9).
	Default(reg *Registry) (Value, error)

	String() string
}

// ---- Unknown / Nothing / Any ----

type UnknownType struct{}

func (UnknownType) SkipChecks() bool                    { return true }
func (UnknownType) Default(*Registry) (Value, error)    { return nil, nil }
func (UnknownType) String() string                      { return "unknown" }

type NothingType struct{}

func (NothingType) SkipChecks() bool                 { return false }
func (NothingType) Default(*Registry) (Value, error) { return nil, nil }
func (NothingType) String() string                   { return "nothing" }

type AnyType struct{}

func (AnyType) SkipChecks() bool                 { return true }
func (AnyType) Default(*Registry) (Value, error) { return nil, nil }
func (AnyType) String() string                   { return "any" }

// ---- Module ----

// ModuleType accepts instances whose class equals (final) or descends from
// (non-final) the module class.
type ModuleType struct {
	Class *Class
	Final bool
}

func (ModuleType) SkipChecks() bool { return false }
func (t ModuleType) Default(reg *Registry) (Value, error) {
	v, ok := reg.InstantiableDefault(t.Class)
	if !ok {
		return nil, nil
	}
	return v, nil
}
func (t ModuleType) String() string { return "module:" + t.Class.String() }

// ---- String literal / union of string literals ----

type StringLiteralType struct {
	Value string
}

func (StringLiteralType) SkipChecks() bool { return false }
func (t StringLiteralType) Default(*Registry) (Value, error) { return String(t.Value), nil }
func (t StringLiteralType) String() string { return fmt.Sprintf("%q", t.Value) }

// UnionOfStringLiteralsType accepts any of Values; DefaultIdx == -1 means no
// default.
type UnionOfStringLiteralsType struct {
	Values     []string
	DefaultIdx int
}

func (UnionOfStringLiteralsType) SkipChecks() bool { return false }
func (t UnionOfStringLiteralsType) Default(*Registry) (Value, error) {
	if t.DefaultIdx < 0 || t.DefaultIdx >= len(t.Values) {
		return nil, nil
	}
	return String(t.Values[t.DefaultIdx]), nil
}
func (t UnionOfStringLiteralsType) String() string {
	parts := make([]string, len(t.Values))
	for i, s := range t.Values {
		mark := ""
		if i == t.DefaultIdx {
			mark = "*"
		}
		parts[i] = fmt.Sprintf("%s%q", mark, s)
	}
	return strings.Join(parts, "|")
}

// ---- Classes ----

// FinalClassType accepts values whose class equals C exactly.
type FinalClassType struct{ Class *Class }

func (FinalClassType) SkipChecks() bool { return false }
func (t FinalClassType) Default(reg *Registry) (Value, error) {
	v, ok := reg.InstantiableDefault(t.Class)
	if !ok {
		return nil, nil
	}
	return v, nil
}
func (t FinalClassType) String() string { return t.Class.String() }

// NonFinalClassType accepts values whose class is C or a descendant.
type NonFinalClassType struct{ Class *Class }

func (NonFinalClassType) SkipChecks() bool { return false }
func (t NonFinalClassType) Default(reg *Registry) (Value, error) {
	v, ok := reg.InstantiableDefault(t.Class)
	if !ok {
		return nil, nil
	}
	return v, nil
}
func (t NonFinalClassType) String() string { return t.Class.String() }

// ---- Nullable ----

type NullableType struct{ Elem Type }

func (NullableType) SkipChecks() bool { return false }
func (t NullableType) Default(reg *Registry) (Value, error) {
	hint, _ := t.Elem.Default(reg) // errors swallowed: Nullable always succeeds (spec §4.4)
	return Null{Default: hint}, nil
}
func (t NullableType) String() string { return t.Elem.String() + "?" }

// ---- Union ----

// UnionType accepts any of Members; DefaultIdx == -1 means no default.
type UnionType struct {
	Members    []Type
	DefaultIdx int
}

func (t UnionType) SkipChecks() bool {
	for _, m := range t.Members {
		if !m.SkipChecks() {
			return false
		}
	}
	return true
}
func (t UnionType) Default(reg *Registry) (Value, error) {
	if t.DefaultIdx < 0 || t.DefaultIdx >= len(t.Members) {
		return nil, nil
	}
	return t.Members[t.DefaultIdx].Default(reg)
}
func (t UnionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, "|")
}

// ---- Collections ----

type CollectionType struct{ Elem Type }

func (CollectionType) SkipChecks() bool                    { return false }
func (t CollectionType) Default(*Registry) (Value, error)  { return &List{}, nil }
func (t CollectionType) String() string                    { return "Collection<" + t.Elem.String() + ">" }

type ListType struct{ Elem Type }

func (ListType) SkipChecks() bool                   { return false }
func (t ListType) Default(*Registry) (Value, error) { return &List{}, nil }
func (t ListType) String() string                   { return "List<" + t.Elem.String() + ">" }

type SetType struct{ Elem Type }

func (SetType) SkipChecks() bool                   { return false }
func (t SetType) Default(*Registry) (Value, error) { return NewSet(), nil }
func (t SetType) String() string                   { return "Set<" + t.Elem.String() + ">" }

type MapType struct{ Key, Val Type }

func (MapType) SkipChecks() bool                   { return false }
func (t MapType) Default(*Registry) (Value, error) { return NewMap(), nil }
func (t MapType) String() string {
	return fmt.Sprintf("Map<%s, %s>", t.Key.String(), t.Val.String())
}

// ---- Listing / Mapping ----

// ListingType's default is the hard case of spec §4.4: if V is Unknown,
// return an empty listing with no "default" member; else construct a
// listing whose sole member is a hidden "default" property.
type ListingType struct{ Elem Type }

func (ListingType) SkipChecks() bool { return false }
func (t ListingType) Default(reg *Registry) (Value, error) {
	return listingMappingDefault(reg, ObjectListing, reg.Builtins().Listing, t.Elem, nil, nil)
}
func (t ListingType) String() string { return "Listing<" + t.Elem.String() + ">" }

// MappingType's default mirrors ListingType's but has no key member; the
// Key type never influences defaulting (spec §4.4 only conditions on V).
type MappingType struct{ Key, Val Type }

func (MappingType) SkipChecks() bool { return false }
func (t MappingType) Default(reg *Registry) (Value, error) {
	return listingMappingDefault(reg, ObjectMapping, reg.Builtins().Mapping, t.Val, nil, nil)
}
func (t MappingType) String() string {
	return fmt.Sprintf("Mapping<%s, %s>", t.Key.String(), t.Val.String())
}

func listingMappingDefault(reg *Registry, variant ObjectVariant, class *Class, elem Type, _, _ Type) (Value, error) {
	if _, ok := elem.(UnknownType); ok {
		return NewObject(variant, class, nil), nil
	}
	obj := NewObject(variant, class, nil)
	vDefault, err := elem.Default(reg)
	if err != nil {
		return nil, err
	}
	defaultIdent := defaultPropertyIdent()
	if vDefault != nil {
		captured := vDefault
		obj.SetProperty(&Member{
			Kind:          MemberProperty,
			Key:           MemberKey{Ident: defaultIdent},
			QualifiedName: "default",
			Modifiers:     Modifiers{Hidden: true},
			BodyKind:      BodyConstant,
			Constant: &Function{
				Arity:  0,
				Result: elem,
				Native: func([]Value) (Value, error) { return captured, nil },
			},
		})
	} else {
		obj.SetProperty(&Member{
			Kind:          MemberProperty,
			Key:           MemberKey{Ident: defaultIdent},
			QualifiedName: "default",
			Modifiers:     Modifiers{Hidden: true},
			Declared:      elem,
			BodyKind:      BodyDefault,
		})
	}
	return obj, nil
}

// ---- Functions ----

type FunctionType struct {
	Params []Type
	Result Type
}

func (FunctionType) SkipChecks() bool                   { return false }
func (FunctionType) Default(*Registry) (Value, error)   { return nil, nil }
func (t FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Result.String())
}

// FunctionNType checks function arity only (spec §3.3 row: "FunctionN(T*)").
type FunctionNType struct{ Params []Type }

func (FunctionNType) SkipChecks() bool                 { return false }
func (FunctionNType) Default(*Registry) (Value, error) { return nil, nil }
func (t FunctionNType) String() string {
	return fmt.Sprintf("Function%d", len(t.Params))
}

// FunctionClassType is the bare `Function` class parameterized only by
// arity, with no declared parameter/result types.
type FunctionClassType struct{ Arity int }

func (FunctionClassType) SkipChecks() bool                 { return false }
func (FunctionClassType) Default(*Registry) (Value, error) { return nil, nil }
func (t FunctionClassType) String() string                 { return fmt.Sprintf("Function%d", t.Arity) }

// ---- Pair ----

type PairType struct{ First, Second Type }

func (PairType) SkipChecks() bool { return false }
func (t PairType) Default(*Registry) (Value, error) { return nil, nil }
func (t PairType) String() string {
	return fmt.Sprintf("Pair<%s, %s>", t.First.String(), t.Second.String())
}

// ---- VarArgs ----

// VarArgsType is internal and never instantiable. Per spec §9's resolved
// open question, requesting its default conservatively raises an
// internalStdLibClass-style error rather than silently returning an empty
// list.
type VarArgsType struct{ Elem Type }

func (VarArgsType) SkipChecks() bool { return false }
func (t VarArgsType) Default(*Registry) (Value, error) {
	return nil, evalerr.Internal(diagnostic.Span{}, "internalStdLibClass: VarArgs<%s> has no default", t.Elem)
}
func (t VarArgsType) String() string { return "VarArgs<" + t.Elem.String() + ">" }

// ---- Type variable ----

// TypeVariableType is a no-op at runtime (spec §3.3: generic type
// parameters are erased).
type TypeVariableType struct{ Param string }

func (TypeVariableType) SkipChecks() bool                 { return true }
func (TypeVariableType) Default(*Registry) (Value, error) { return nil, nil }
func (t TypeVariableType) String() string                 { return t.Param }

// ---- Integer aliases ----

// IntAliasType represents UInt/Int8/Int16/Int32/UIntN: accepts integers
// whose value fits Bits/Signed (see InRange). Defaulting delegates to the base
// Int type, which has no default.
type IntAliasType struct {
	Name    string
	Bits    int
	Signed  bool
}

func (IntAliasType) SkipChecks() bool                 { return false }
func (IntAliasType) Default(*Registry) (Value, error) { return nil, nil }
func (t IntAliasType) String() string                 { return t.Name }

// InRange reports whether v fits the alias's bit width/signedness.
func (t IntAliasType) InRange(v int64) bool {
	if t.Bits <= 0 || t.Bits >= 64 {
		return true
	}
	if t.Signed {
		min := int64(-1) << (t.Bits - 1)
		max := (int64(1) << (t.Bits - 1)) - 1
		return v >= min && v <= max
	}
	if v < 0 {
		return false
	}
	max := (uint64(1) << t.Bits) - 1
	return uint64(v) <= max
}

// ---- Type alias ----

// TypeAliasDef is a named, possibly-parametric type alias declaration
// (spec §3.4/§4.4: "TypeAlias(A, T*)").
type TypeAliasDef struct {
	Name    string
	Params  []string
	Target  Type // nil for the built-in Mixin<T> alias
	IsMixin bool
}

// TypeAliasType instantiates a TypeAliasDef with concrete type arguments.
type TypeAliasType struct {
	Alias *TypeAliasDef
	Args  []Type
}

func (TypeAliasType) SkipChecks() bool { return false }

// Default delegates to the instantiated aliased type, except for Mixin<T>,
// which produces an identity-mixin function value (spec §4.4).
func (t TypeAliasType) Default(reg *Registry) (Value, error) {
	if t.Alias.IsMixin {
		var argType Type = AnyType{}
		if len(t.Args) > 0 {
			argType = t.Args[0]
		}
		return &Function{
			Arity:  1,
			Params: []Type{argType},
			Result: argType,
			Native: func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("mixin expects exactly 1 argument, got %d", len(args))
				}
				return args[0], nil
			},
		}, nil
	}
	return t.instantiated(defaultMaxTypeParameterDepth).Default(reg)
}

// Instantiated substitutes this alias's type parameters with Args in its
// target type, returning the resulting concrete type.
func (t TypeAliasType) Instantiated() Type {
	return t.instantiated(defaultMaxTypeParameterDepth)
}

// InstantiatedReg is Instantiated bounded by reg's configured
// MaxTypeParameterDepth (spec §A.3), rather than the package default.
func (t TypeAliasType) InstantiatedReg(reg *Registry) Type {
	max := defaultMaxTypeParameterDepth
	if reg != nil {
		max = reg.MaxTypeParameterDepth()
	}
	return t.instantiated(max)
}

func (t TypeAliasType) instantiated(maxDepth int) Type {
	if t.Alias.Target == nil {
		return AnyType{}
	}
	subst := make(map[string]Type, len(t.Alias.Params))
	for i, p := range t.Alias.Params {
		if i < len(t.Args) {
			subst[p] = t.Args[i]
		}
	}
	return substitute(t.Alias.Target, subst, 0, maxDepth)
}

// substitute recurses through t's structure replacing type variables per
// subst. depth/maxDepth bound the recursion (spec §9's recursion discipline
// for, e.g., a parametric type nested arbitrarily deep through its own type
// arguments); maxDepth <= 0 means unbounded. Exceeding the bound returns the
// type unsubstituted rather than panicking - a safety valve, not a reported
// diagnostic, since substitution has no span to attach one to.
func substitute(t Type, subst map[string]Type, depth, maxDepth int) Type {
	if maxDepth > 0 && depth > maxDepth {
		return t
	}
	switch v := t.(type) {
	case TypeVariableType:
		if s, ok := subst[v.Param]; ok {
			return s
		}
		return v
	case NullableType:
		return NullableType{Elem: substitute(v.Elem, subst, depth+1, maxDepth)}
	case UnionType:
		members := make([]Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = substitute(m, subst, depth+1, maxDepth)
		}
		return UnionType{Members: members, DefaultIdx: v.DefaultIdx}
	case ListType:
		return ListType{Elem: substitute(v.Elem, subst, depth+1, maxDepth)}
	case SetType:
		return SetType{Elem: substitute(v.Elem, subst, depth+1, maxDepth)}
	case CollectionType:
		return CollectionType{Elem: substitute(v.Elem, subst, depth+1, maxDepth)}
	case MapType:
		return MapType{Key: substitute(v.Key, subst, depth+1, maxDepth), Val: substitute(v.Val, subst, depth+1, maxDepth)}
	case ListingType:
		return ListingType{Elem: substitute(v.Elem, subst, depth+1, maxDepth)}
	case MappingType:
		return MappingType{Key: substitute(v.Key, subst, depth+1, maxDepth), Val: substitute(v.Val, subst, depth+1, maxDepth)}
	case PairType:
		return PairType{First: substitute(v.First, subst, depth+1, maxDepth), Second: substitute(v.Second, subst, depth+1, maxDepth)}
	case ConstrainedType:
		return ConstrainedType{Base: substitute(v.Base, subst, depth+1, maxDepth), Predicates: v.Predicates}
	default:
		return t
	}
}

func (t TypeAliasType) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	if len(parts) == 0 {
		return t.Alias.Name
	}
	return fmt.Sprintf("%s<%s>", t.Alias.Name, strings.Join(parts, ", "))
}

// ---- Constrained ----

// Predicate is an opaque constraint predicate over a value, evaluated with
// the "custom this" frame binding (spec §4.5/§9). Its evaluation is
// produced by the (external) expression evaluator; the core only invokes
// it and renders the result.
type Predicate struct {
	Source string
	Eval   func(frame *Frame, v Value) (bool, *diagnostic.PowerAssertion, error)
}

// ConstrainedType accepts when Base accepts and every predicate holds.
type ConstrainedType struct {
	Base       Type
	Predicates []Predicate
}

func (ConstrainedType) SkipChecks() bool { return false }
func (t ConstrainedType) Default(reg *Registry) (Value, error) {
	return t.Base.Default(reg) // constraints are not applied to defaults (spec §4.4)
}
func (t ConstrainedType) String() string {
	srcs := make([]string, len(t.Predicates))
	for i, p := range t.Predicates {
		srcs[i] = p.Source
	}
	return fmt.Sprintf("%s(%s)", t.Base.String(), strings.Join(srcs, ", "))
}
