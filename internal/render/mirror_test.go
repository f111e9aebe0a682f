package render

import (
	"testing"

	"github.com/pklcore/typedcore/internal/metadata"
	"github.com/pklcore/typedcore/internal/vm"
)

func TestMetadataOf_Scalars(t *testing.T) {
	reg := metadata.NewTypeRegistry()
	if got := MetadataOf(reg, vm.UnknownType{}); got.Kind != metadata.KindUnknown {
		t.Errorf("Kind = %v, want KindUnknown", got.Kind)
	}
	if got := MetadataOf(reg, vm.StringLiteralType{Value: "x"}); got.Kind != metadata.KindStringLiteral || got.LiteralValue != "x" {
		t.Errorf("unexpected metadata for StringLiteralType: %+v", got)
	}
}

func TestMetadataOf_Nullable(t *testing.T) {
	reg := metadata.NewTypeRegistry()
	got := MetadataOf(reg, vm.NullableType{Elem: vm.AnyType{}})
	if got.Kind != metadata.KindNullable || got.ElementType == nil || got.ElementType.Kind != metadata.KindAny {
		t.Errorf("unexpected metadata for NullableType: %+v", got)
	}
}

func TestMetadataOf_ClassRefOnRepeat(t *testing.T) {
	reg := metadata.NewTypeRegistry()
	class := vm.NewClass("pkg.Node", "pkg", nil, vm.OpenOpen)
	ct := vm.NonFinalClassType{Class: class}

	first := MetadataOf(reg, ct)
	if first.Kind != metadata.KindNonFinalClass {
		t.Fatalf("expected first encounter to be inline, got %v", first.Kind)
	}
	second := MetadataOf(reg, ct)
	if second.Kind != metadata.KindRef || second.Ref != "pkg.Node" {
		t.Errorf("expected a repeat encounter to return a $ref, got %+v", second)
	}
}

func TestMetadataOf_ConstrainedCarriesPredicateSources(t *testing.T) {
	reg := metadata.NewTypeRegistry()
	ct := vm.ConstrainedType{
		Base:       vm.AnyType{},
		Predicates: []vm.Predicate{{Source: "this > 0"}, {Source: "this < 100"}},
	}
	got := MetadataOf(reg, ct)
	if got.Kind != metadata.KindConstrained || len(got.Predicates) != 2 {
		t.Fatalf("unexpected metadata: %+v", got)
	}
	if got.Predicates[0] != "this > 0" || got.Predicates[1] != "this < 100" {
		t.Errorf("predicate sources not preserved verbatim: %v", got.Predicates)
	}
}

func TestMetadataOf_UnionMembers(t *testing.T) {
	reg := metadata.NewTypeRegistry()
	u := vm.UnionType{Members: []vm.Type{vm.AnyType{}, vm.StringLiteralType{Value: "x"}}, DefaultIdx: 0}
	got := MetadataOf(reg, u)
	if got.Kind != metadata.KindUnion || len(got.UnionMembers) != 2 || got.DefaultIdx != 0 {
		t.Errorf("unexpected union metadata: %+v", got)
	}
}
