package vm

import "testing"

func assertRoundTrip(t *testing.T, reg *Registry, orig Type) {
	t.Helper()
	mirror := ToMirror(reg, orig)
	got, err := FromMirror(reg, mirror)
	if err != nil {
		t.Fatalf("FromMirror: %v", err)
	}
	if got.String() != orig.String() {
		t.Errorf("round-trip mismatch: got %s, want %s", got.String(), orig.String())
	}
}

func TestMirror_RoundTripScalarsAndContainers(t *testing.T) {
	reg := NewRegistry()
	cases := []Type{
		UnknownType{},
		NothingType{},
		AnyType{},
		StringLiteralType{Value: "ok"},
		NullableType{Elem: AnyType{}},
		ListType{Elem: StringLiteralType{Value: "x"}},
		SetType{Elem: AnyType{}},
		MapType{Key: AnyType{}, Val: AnyType{}},
		ListingType{Elem: AnyType{}},
		MappingType{Key: AnyType{}, Val: AnyType{}},
		CollectionType{Elem: AnyType{}},
		PairType{First: AnyType{}, Second: AnyType{}},
		VarArgsType{Elem: AnyType{}},
		TypeVariableType{Param: "T"},
		IntAliasType{Name: "UInt8", Bits: 8, Signed: false},
		FunctionType{Params: []Type{AnyType{}}, Result: AnyType{}},
		FunctionNType{Params: []Type{AnyType{}, AnyType{}}},
		FunctionClassType{Arity: 2},
		UnionType{Members: []Type{StringLiteralType{Value: "a"}, AnyType{}}, DefaultIdx: -1},
	}
	for _, c := range cases {
		t.Run(c.String(), func(t *testing.T) {
			assertRoundTrip(t, reg, c)
		})
	}
}

func TestMirror_RoundTripUnionOfStringLiterals(t *testing.T) {
	reg := NewRegistry()
	orig := UnionOfStringLiteralsType{Values: []string{"a", "b", "c"}, DefaultIdx: 1}
	mirror := ToMirror(reg, orig)
	got, err := FromMirror(reg, mirror)
	if err != nil {
		t.Fatalf("FromMirror: %v", err)
	}
	back, ok := got.(UnionOfStringLiteralsType)
	if !ok {
		t.Fatalf("expected round-trip to recover UnionOfStringLiteralsType, got %T", got)
	}
	if back.DefaultIdx != 1 || len(back.Values) != 3 {
		t.Errorf("got %+v, want Values len 3 with DefaultIdx 1", back)
	}
}

func TestMirror_RoundTripClass(t *testing.T) {
	reg := NewRegistry()
	c := NewClass("pkg.Widget", "pkg", nil, OpenOpen)
	reg.RegisterClass(c)

	assertRoundTrip(t, reg, FinalClassType{Class: c})
	assertRoundTrip(t, reg, NonFinalClassType{Class: c})
}

func TestMirror_RoundTripConstrained(t *testing.T) {
	reg := NewRegistry()
	constrained := ConstrainedType{
		Base:       NonFinalClassType{Class: reg.Builtins().Int},
		Predicates: []Predicate{{Source: "this > 0"}},
	}
	mirror := ToMirror(reg, constrained)
	got, err := FromMirror(reg, mirror)
	if err != nil {
		t.Fatalf("FromMirror: %v", err)
	}
	back, ok := got.(ConstrainedType)
	if !ok {
		t.Fatalf("expected ConstrainedType, got %T", got)
	}
	if len(back.Predicates) != 1 || back.Predicates[0].Source != "this > 0" {
		t.Errorf("predicate source lost in round-trip: %+v", back.Predicates)
	}
}

func TestMirror_RoundTripTypeAlias(t *testing.T) {
	reg := NewRegistry()
	alias := &TypeAliasDef{Name: "pkg.Meters", Params: nil, Target: AnyType{}}
	reg.RegisterAlias(alias)

	assertRoundTrip(t, reg, TypeAliasType{Alias: alias, Args: nil})
}

func TestMirror_UnrecognizedKindErrors(t *testing.T) {
	reg := NewRegistry()
	dyn := reg.Builtins().Dynamic
	bogus := NewObject(ObjectDynamic, dyn, nil)
	setConst(bogus, "kind", String("not-a-real-kind"))

	if _, err := FromMirror(reg, bogus); err == nil {
		t.Error("expected an unrecognized mirror kind to error")
	}
}
