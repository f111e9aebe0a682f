package vm

import "testing"

func TestIsSubclass_ReflexiveAndTransitive(t *testing.T) {
	base := NewClass("pkg.Base", "pkg", nil, OpenOpen)
	mid := NewClass("pkg.Mid", "pkg", base, OpenOpen)
	leaf := NewClass("pkg.Leaf", "pkg", mid, OpenClosed)

	if !IsSubclass(leaf, leaf) {
		t.Error("expected IsSubclass to be reflexive")
	}
	if !IsSubclass(leaf, base) {
		t.Error("expected IsSubclass to be transitive across two levels")
	}
	if IsSubclass(base, leaf) {
		t.Error("expected IsSubclass(base, leaf) = false: a superclass is not a subclass")
	}
}

func TestDeclareProperty_RejectsConstOverride(t *testing.T) {
	base := NewClass("pkg.Base", "pkg", nil, OpenOpen)
	if err := base.DeclareProperty(&Property{Name: mustIdent("id"), Modifiers: Modifiers{Const: true}}); err != nil {
		t.Fatalf("declare base property: %v", err)
	}

	sub := NewClass("pkg.Sub", "pkg", base, OpenOpen)
	err := sub.DeclareProperty(&Property{Name: mustIdent("id")})
	if err == nil {
		t.Error("expected redeclaring a const property in a subclass to be rejected")
	}
}

func TestPropertyOf_WalksSuperclassChain(t *testing.T) {
	base := NewClass("pkg.Base", "pkg", nil, OpenOpen)
	base.DeclareProperty(&Property{Name: mustIdent("name")})
	sub := NewClass("pkg.Sub", "pkg", base, OpenClosed)
	sub.DeclareProperty(&Property{Name: mustIdent("age")})

	p, owner := PropertyOf(sub, "name")
	if p == nil || owner != base {
		t.Errorf("expected PropertyOf to find inherited property owned by base, got %v, %v", p, owner)
	}

	p2, owner2 := PropertyOf(sub, "age")
	if p2 == nil || owner2 != sub {
		t.Errorf("expected PropertyOf to find own property owned by sub, got %v, %v", p2, owner2)
	}

	if p3, _ := PropertyOf(sub, "missing"); p3 != nil {
		t.Error("expected PropertyOf to return nil for an undeclared property")
	}
}

func TestClassOf_ScalarsTagBuiltinClasses(t *testing.T) {
	reg := NewRegistry()
	b := reg.Builtins()

	tests := []struct {
		name string
		v    Value
		want *Class
	}{
		{"bool", Bool(true), b.Boolean},
		{"int", Int(1), b.Int},
		{"string", String("x"), b.String},
		{"null", Null{}, b.Null},
		{"list", &List{}, b.List},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassOf(reg, tt.v); got != tt.want {
				t.Errorf("ClassOf(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestPrototypeOf_InheritsSuperProperties(t *testing.T) {
	reg := NewRegistry()
	base := NewClass("pkg.Base", "pkg", nil, OpenOpen)
	base.DeclareProperty(&Property{Name: mustIdent("name"), Declared: StringLiteralType{Value: "x"}})
	reg.RegisterClass(base)

	sub := NewClass("pkg.Sub", "pkg", base, OpenClosed)
	sub.DeclareProperty(&Property{Name: mustIdent("age"), Declared: NullableType{Elem: AnyType{}}})
	reg.RegisterClass(sub)

	proto := reg.PrototypeOf(sub)
	if _, ok := proto.OwnProperty("age"); !ok {
		t.Error("expected sub's own prototype to carry its own declared property")
	}
	v, err := ReadMemberReg(proto, MemberKey{Ident: mustIdent("name")}, reg)
	if err != nil {
		t.Fatalf("read inherited default property: %v", err)
	}
	if s, ok := v.(String); !ok || s != "x" {
		t.Errorf("expected inherited default 'name' = \"x\", got %v", v)
	}
}

func TestInstantiableDefault_ListingAndNull(t *testing.T) {
	reg := NewRegistry()
	b := reg.Builtins()

	v, ok := reg.InstantiableDefault(b.Listing)
	if !ok {
		t.Fatal("expected Listing to have an instantiable default")
	}
	obj, ok := v.(*Object)
	if !ok || obj.Variant != ObjectListing {
		t.Errorf("expected a fresh ObjectListing, got %#v", v)
	}

	v2, _ := reg.InstantiableDefault(b.Null)
	if _, ok := v2.(Null); !ok {
		t.Errorf("expected Null class default to be Null{}, got %#v", v2)
	}
}

func TestInstantiableDefault_AbstractHasNoDefault(t *testing.T) {
	reg := NewRegistry()
	abstract := NewClass("pkg.Abstract", "pkg", nil, OpenAbstract)
	reg.RegisterClass(abstract)

	_, ok := reg.InstantiableDefault(abstract)
	if ok {
		t.Error("expected an abstract class to have no instantiable default")
	}
}
