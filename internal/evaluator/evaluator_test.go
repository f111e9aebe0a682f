package evaluator

import (
	"context"
	"fmt"
	"testing"

	"github.com/pklcore/typedcore/internal/ident"
	"github.com/pklcore/typedcore/internal/vm"
)

type fakeResolver struct {
	modules map[string]vm.Value
	calls   map[string]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{modules: make(map[string]vm.Value), calls: make(map[string]int)}
}

func (f *fakeResolver) Resolve(uri string) (vm.Value, error) {
	f.calls[uri]++
	v, ok := f.modules[uri]
	if !ok {
		return nil, fmt.Errorf("no module registered for %q", uri)
	}
	return v, nil
}

type denyAll struct{}

func (denyAll) Allow(string) (bool, error) { return false, nil }

func TestEvaluate_MemoizesAcrossCalls(t *testing.T) {
	resolver := newFakeResolver()
	obj := vm.NewObject(vm.ObjectDynamic, nil, nil)
	resolver.modules["mod:a"] = obj

	ev := New(resolver, nil, nil)
	v1, err := ev.Evaluate("mod:a")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	v2, err := ev.Evaluate("mod:a")
	if err != nil {
		t.Fatalf("Evaluate() second call error: %v", err)
	}
	if v1 != v2 {
		t.Error("expected repeated Evaluate() on the same uri to return the memoized value")
	}
	if resolver.calls["mod:a"] != 1 {
		t.Errorf("expected the resolver to be called exactly once, got %d", resolver.calls["mod:a"])
	}
}

func TestEvaluate_DeniedBySecurityManager(t *testing.T) {
	resolver := newFakeResolver()
	ev := New(resolver, denyAll{}, nil)
	if _, err := ev.Evaluate("mod:restricted"); err == nil {
		t.Error("expected a denied module uri to error")
	}
}

func TestEvaluate_ResolverErrorPropagates(t *testing.T) {
	resolver := newFakeResolver()
	ev := New(resolver, nil, nil)
	_, err := ev.Evaluate("mod:missing")
	if err == nil {
		t.Error("expected resolving an unregistered uri to error")
	}
}

func TestReadProperty_MaterializesObjectProperty(t *testing.T) {
	resolver := newFakeResolver()
	ev := New(resolver, nil, nil)

	obj := vm.NewObject(vm.ObjectDynamic, nil, nil)
	obj.SetProperty(&vm.Member{
		Kind: vm.MemberProperty, Key: vm.MemberKey{Ident: ident.Regular("name")},
		BodyKind: vm.BodyConstant, Constant: vm.String("widget"),
	})

	v, err := ev.ReadProperty(obj, "name")
	if err != nil {
		t.Fatalf("ReadProperty() error: %v", err)
	}
	if v != vm.String("widget") {
		t.Errorf("got %v, want widget", v)
	}
}

func TestReadProperty_NonObjectErrors(t *testing.T) {
	ev := New(newFakeResolver(), nil, nil)
	if _, err := ev.ReadProperty(vm.Int(1), "name"); err == nil {
		t.Error("expected reading a property of a scalar value to error")
	}
}

func TestRender_DelegatesToRendererRegistry(t *testing.T) {
	ev := New(newFakeResolver(), nil, nil)
	out, err := ev.Render(vm.String("hi"), "json")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(out) != `"hi"` {
		t.Errorf("Render() = %s, want \"hi\"", out)
	}
}

func TestMirrorOf_ScalarAndObjectShape(t *testing.T) {
	ev := New(newFakeResolver(), nil, nil)

	scalarMirror := ev.MirrorOf(vm.Int(1))
	mObj, ok := scalarMirror.(*vm.Object)
	if !ok {
		t.Fatalf("expected MirrorOf to return an Object, got %T", scalarMirror)
	}
	kindV, err := vm.ReadMemberReg(mObj, vm.MemberKey{Ident: ident.Regular("valueKind")}, ev.Registry)
	if err != nil || kindV != vm.String("int") {
		t.Errorf("valueKind = %v, %v; want int, nil", kindV, err)
	}

	obj := vm.NewObject(vm.ObjectDynamic, ev.Registry.Builtins().Dynamic, nil)
	obj.SetProperty(&vm.Member{
		Kind: vm.MemberProperty, Key: vm.MemberKey{Ident: ident.Regular("x")},
		Declared: vm.AnyType{}, BodyKind: vm.BodyConstant, Constant: vm.Int(1),
	})
	objMirror := ev.MirrorOf(obj).(*vm.Object)
	membersV, err := vm.ReadMemberReg(objMirror, vm.MemberKey{Ident: ident.Regular("members")}, ev.Registry)
	if err != nil {
		t.Fatalf("read members: %v", err)
	}
	lst, ok := membersV.(*vm.List)
	if !ok || len(lst.Elements) != 1 {
		t.Fatalf("expected exactly one member descriptor, got %#v", membersV)
	}
}

func TestBatchEvaluate_PartialFailureDoesNotCancelSiblings(t *testing.T) {
	resolver := newFakeResolver()
	resolver.modules["mod:ok"] = vm.NewObject(vm.ObjectDynamic, nil, nil)
	ev := New(resolver, nil, nil)

	results := ev.BatchEvaluate(context.Background(), []string{"mod:ok", "mod:missing"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URI != "mod:ok" || results[0].Err != nil || results[0].Value == nil {
		t.Errorf("expected mod:ok to succeed, got %+v", results[0])
	}
	if results[1].URI != "mod:missing" || results[1].Err == nil {
		t.Errorf("expected mod:missing to fail independently, got %+v", results[1])
	}
}

func TestAllowAll_AlwaysPermits(t *testing.T) {
	ok, err := AllowAll{}.Allow("anything")
	if !ok || err != nil {
		t.Errorf("AllowAll.Allow() = %v, %v; want true, nil", ok, err)
	}
}
