package check

import (
	"testing"

	"github.com/pklcore/typedcore/internal/diagnostic"
	"github.com/pklcore/typedcore/internal/ident"
	"github.com/pklcore/typedcore/internal/vm"
)

func TestCheck_NullableAcceptsNullOrElem(t *testing.T) {
	reg := vm.NewRegistry()
	t1 := vm.NullableType{Elem: vm.FinalClassType{Class: reg.Builtins().Int}}

	if err := Check(reg, t1, vm.Null{}, nil, diagnostic.Span{}); err != nil {
		t.Errorf("expected null to satisfy Nullable(T), got %v", err)
	}
	if err := Check(reg, t1, vm.Int(5), nil, diagnostic.Span{}); err != nil {
		t.Errorf("expected an Int to satisfy Nullable(Int), got %v", err)
	}
	if err := Check(reg, t1, vm.String("x"), nil, diagnostic.Span{}); err == nil {
		t.Error("expected a String to fail Nullable(Int)")
	}
}

func TestCheck_SkipChecksAlwaysSucceeds(t *testing.T) {
	reg := vm.NewRegistry()
	if err := Check(reg, vm.UnknownType{}, vm.String("anything"), nil, diagnostic.Span{}); err != nil {
		t.Errorf("Unknown.SkipChecks() should make any value pass, got %v", err)
	}
	if err := Check(reg, vm.AnyType{}, vm.Int(1), nil, diagnostic.Span{}); err != nil {
		t.Errorf("Any.SkipChecks() should make any value pass, got %v", err)
	}
	if err := Check(reg, nil, vm.Int(1), nil, diagnostic.Span{}); err != nil {
		t.Errorf("a nil declared type should never fail a check, got %v", err)
	}
}

func TestCheck_UnionSucceedsIfAnyBranchSucceeds(t *testing.T) {
	reg := vm.NewRegistry()
	u := vm.UnionType{
		Members:    []vm.Type{vm.FinalClassType{Class: reg.Builtins().Int}, vm.FinalClassType{Class: reg.Builtins().String}},
		DefaultIdx: -1,
	}
	if err := Check(reg, u, vm.Int(1), nil, diagnostic.Span{}); err != nil {
		t.Errorf("expected Int to satisfy Union(Int, String), got %v", err)
	}
	if err := Check(reg, u, vm.String("x"), nil, diagnostic.Span{}); err != nil {
		t.Errorf("expected String to satisfy Union(Int, String), got %v", err)
	}
	if err := Check(reg, u, vm.Bool(true), nil, diagnostic.Span{}); err == nil {
		t.Error("expected Bool to fail Union(Int, String) for every branch")
	}
}

func TestCheck_ConstrainedRequiresBaseAndPredicate(t *testing.T) {
	reg := vm.NewRegistry()
	positive := vm.Predicate{
		Source: "this > 0",
		Eval: func(frame *vm.Frame, v vm.Value) (bool, *diagnostic.PowerAssertion, error) {
			return int64(v.(vm.Int)) > 0, nil, nil
		},
	}
	ct := vm.ConstrainedType{Base: vm.FinalClassType{Class: reg.Builtins().Int}, Predicates: []vm.Predicate{positive}}

	if err := Check(reg, ct, vm.Int(5), nil, diagnostic.Span{}); err != nil {
		t.Errorf("expected 5 to satisfy Constrained(Int, this>0), got %v", err)
	}
	if err := Check(reg, ct, vm.Int(-1), nil, diagnostic.Span{}); err == nil {
		t.Error("expected -1 to fail the predicate")
	}
	if err := Check(reg, ct, vm.String("x"), nil, diagnostic.Span{}); err == nil {
		t.Error("expected a non-Int to fail the base check before the predicate runs")
	}
}

func TestCheck_NonFinalTransitiveFinalExact(t *testing.T) {
	base := vm.NewClass("pkg.Base", "pkg", nil, vm.OpenOpen)
	mid := vm.NewClass("pkg.Mid", "pkg", base, vm.OpenOpen)
	leaf := vm.NewClass("pkg.Leaf", "pkg", mid, vm.OpenClosed)
	reg := vm.NewRegistry()

	nonFinal := vm.NonFinalClassType{Class: base}
	obj := vm.NewObject(vm.ObjectTyped, leaf, nil)
	if err := Check(reg, nonFinal, obj, nil, diagnostic.Span{}); err != nil {
		t.Errorf("expected a Leaf instance to satisfy NonFinalClass(Base), got %v", err)
	}

	finalBase := vm.FinalClassType{Class: base}
	if err := Check(reg, finalBase, obj, nil, diagnostic.Span{}); err == nil {
		t.Error("expected a Leaf instance to fail FinalClass(Base): final class membership is exact")
	}
}

func TestCheck_ReadMemberIdempotence(t *testing.T) {
	obj := vm.NewObject(vm.ObjectDynamic, nil, nil)
	obj.SetProperty(&vm.Member{
		Kind: vm.MemberProperty, Key: vm.MemberKey{Ident: ident.Regular("n")},
		BodyKind: vm.BodyConstant, Constant: vm.Int(7),
	})
	v1, err1 := vm.ReadMember(obj, vm.MemberKey{Ident: ident.Regular("n")})
	v2, err2 := vm.ReadMember(obj, vm.MemberKey{Ident: ident.Regular("n")})
	if err1 != nil || err2 != nil || v1 != v2 {
		t.Errorf("expected idempotent reads to return the same value, got (%v,%v) (%v,%v)", v1, err1, v2, err2)
	}
}

func TestCheck_ListingElementTypeMismatch(t *testing.T) {
	reg := vm.NewRegistry()
	listing := vm.NewObject(vm.ObjectListing, reg.Builtins().Listing, nil)
	listing.AppendElement(&vm.Member{Kind: vm.MemberElement, Key: vm.MemberKey{Entry: vm.Int(0)}, BodyKind: vm.BodyConstant, Constant: vm.String("oops")})

	lt := vm.ListingType{Elem: vm.FinalClassType{Class: reg.Builtins().Int}}
	if err := Check(reg, lt, listing, nil, diagnostic.Span{}); err == nil {
		t.Error("expected a String element to fail Listing<Int>")
	}
}
