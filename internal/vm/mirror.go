package vm

import "fmt"

// ToMirror exports a type as a first-class reflective value (spec §4.4
// "mirror export"): a Dynamic object whose "kind" property discriminates
// the shape, with shape-specific properties for whatever else the shape
// needs to reconstruct. String-literal-union types export as a union of
// literal-type mirrors, per spec.
func ToMirror(reg *Registry, t Type) Value {
	dyn := reg.Builtins().Dynamic
	obj := func(kind string, props map[string]Value) *Object {
		o := NewObject(ObjectDynamic, dyn, nil)
		setConst(o, "kind", String(kind))
		for k, v := range props {
			setConst(o, k, v)
		}
		return o
	}

	switch v := t.(type) {
	case UnknownType:
		return obj("unknown", nil)
	case NothingType:
		return obj("nothing", nil)
	case AnyType:
		return obj("any", nil)
	case ModuleType:
		return obj("module", map[string]Value{"class": String(v.Class.QualifiedName), "final": Bool(v.Final)})
	case StringLiteralType:
		return obj("stringLiteral", map[string]Value{"value": String(v.Value)})
	case UnionOfStringLiteralsType:
		members := &List{}
		for _, s := range v.Values {
			members.Elements = append(members.Elements, ToMirror(reg, StringLiteralType{Value: s}))
		}
		return obj("union", map[string]Value{"members": members, "defaultIdx": Int(v.DefaultIdx)})
	case FinalClassType:
		return obj("finalClass", map[string]Value{"class": String(v.Class.QualifiedName)})
	case NonFinalClassType:
		return obj("nonFinalClass", map[string]Value{"class": String(v.Class.QualifiedName)})
	case NullableType:
		return obj("nullable", map[string]Value{"elem": ToMirror(reg, v.Elem)})
	case UnionType:
		members := &List{}
		for _, m := range v.Members {
			members.Elements = append(members.Elements, ToMirror(reg, m))
		}
		return obj("union", map[string]Value{"members": members, "defaultIdx": Int(v.DefaultIdx)})
	case CollectionType:
		return obj("collection", map[string]Value{"elem": ToMirror(reg, v.Elem)})
	case ListType:
		return obj("list", map[string]Value{"elem": ToMirror(reg, v.Elem)})
	case SetType:
		return obj("set", map[string]Value{"elem": ToMirror(reg, v.Elem)})
	case MapType:
		return obj("map", map[string]Value{"key": ToMirror(reg, v.Key), "val": ToMirror(reg, v.Val)})
	case ListingType:
		return obj("listing", map[string]Value{"elem": ToMirror(reg, v.Elem)})
	case MappingType:
		return obj("mapping", map[string]Value{"key": ToMirror(reg, v.Key), "val": ToMirror(reg, v.Val)})
	case FunctionType:
		params := &List{}
		for _, p := range v.Params {
			params.Elements = append(params.Elements, ToMirror(reg, p))
		}
		return obj("function", map[string]Value{"params": params, "result": ToMirror(reg, v.Result)})
	case FunctionNType:
		params := &List{}
		for _, p := range v.Params {
			params.Elements = append(params.Elements, ToMirror(reg, p))
		}
		return obj("functionN", map[string]Value{"params": params})
	case FunctionClassType:
		return obj("functionClass", map[string]Value{"arity": Int(v.Arity)})
	case PairType:
		return obj("pair", map[string]Value{"first": ToMirror(reg, v.First), "second": ToMirror(reg, v.Second)})
	case VarArgsType:
		return obj("varArgs", map[string]Value{"elem": ToMirror(reg, v.Elem)})
	case TypeVariableType:
		return obj("typeVariable", map[string]Value{"param": String(v.Param)})
	case IntAliasType:
		return obj("intAlias", map[string]Value{"name": String(v.Name), "bits": Int(v.Bits), "signed": Bool(v.Signed)})
	case TypeAliasType:
		args := &List{}
		for _, a := range v.Args {
			args.Elements = append(args.Elements, ToMirror(reg, a))
		}
		return obj("typeAlias", map[string]Value{"name": String(v.Alias.Name), "args": args})
	case ConstrainedType:
		preds := &List{}
		for _, p := range v.Predicates {
			preds.Elements = append(preds.Elements, String(p.Source))
		}
		return obj("constrained", map[string]Value{"base": ToMirror(reg, v.Base), "predicates": preds})
	default:
		return obj("unknown", nil)
	}
}

func setConst(o *Object, name string, v Value) {
	o.SetProperty(&Member{
		Kind:          MemberProperty,
		Key:           MemberKey{Ident: mustIdent(name)},
		QualifiedName: name,
		BodyKind:      BodyConstant,
		Constant:      v,
	})
}

func mirrorField(o *Object, name string) (Value, bool) {
	m, ok := o.OwnProperty(name)
	if !ok {
		return nil, false
	}
	v, err := m.evaluate(&Frame{Receiver: o, Owner: o}, DefaultRegistry())
	if err != nil {
		return nil, false
	}
	return v, true
}

// FromMirror reconstructs a Type from a mirror value produced by ToMirror.
// Together they satisfy the round-trip law of spec §8: "the mirror of a
// type round-trips back to a semantically equivalent type under
// from_mirror . to_mirror (structural equality, ignoring source positions)".
func FromMirror(reg *Registry, v Value) (Type, error) {
	o, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("mirror value must be an object, got %T", v)
	}
	kindV, ok := mirrorField(o, "kind")
	if !ok {
		return nil, fmt.Errorf("mirror object missing kind")
	}
	kind := string(kindV.(String))

	field := func(name string) (Value, bool) { return mirrorField(o, name) }
	elemType := func(name string) (Type, error) {
		fv, ok := field(name)
		if !ok {
			return nil, fmt.Errorf("mirror %q missing field %q", kind, name)
		}
		return FromMirror(reg, fv)
	}
	str := func(name string) (string, error) {
		fv, ok := field(name)
		if !ok {
			return "", fmt.Errorf("mirror %q missing field %q", kind, name)
		}
		return string(fv.(String)), nil
	}
	listOfTypes := func(name string) ([]Type, error) {
		fv, ok := field(name)
		if !ok {
			return nil, nil
		}
		lst, ok := fv.(*List)
		if !ok {
			return nil, fmt.Errorf("mirror %q field %q is not a list", kind, name)
		}
		out := make([]Type, len(lst.Elements))
		for i, e := range lst.Elements {
			t, err := FromMirror(reg, e)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}

	switch kind {
	case "unknown":
		return UnknownType{}, nil
	case "nothing":
		return NothingType{}, nil
	case "any":
		return AnyType{}, nil
	case "module":
		className, err := str("class")
		if err != nil {
			return nil, err
		}
		c, _ := reg.Class(className)
		finalV, _ := field("final")
		return ModuleType{Class: c, Final: bool(finalV.(Bool))}, nil
	case "stringLiteral":
		s, err := str("value")
		if err != nil {
			return nil, err
		}
		return StringLiteralType{Value: s}, nil
	case "finalClass":
		className, err := str("class")
		if err != nil {
			return nil, err
		}
		c, _ := reg.Class(className)
		return FinalClassType{Class: c}, nil
	case "nonFinalClass":
		className, err := str("class")
		if err != nil {
			return nil, err
		}
		c, _ := reg.Class(className)
		return NonFinalClassType{Class: c}, nil
	case "nullable":
		elem, err := elemType("elem")
		if err != nil {
			return nil, err
		}
		return NullableType{Elem: elem}, nil
	case "union":
		members, err := listOfTypes("members")
		if err != nil {
			return nil, err
		}
		idxV, _ := field("defaultIdx")
		idx := -1
		if idxV != nil {
			idx = int(idxV.(Int))
		}
		allStringLiterals := len(members) > 0
		for _, m := range members {
			if _, ok := m.(StringLiteralType); !ok {
				allStringLiterals = false
				break
			}
		}
		if allStringLiterals {
			values := make([]string, len(members))
			for i, m := range members {
				values[i] = m.(StringLiteralType).Value
			}
			return UnionOfStringLiteralsType{Values: values, DefaultIdx: idx}, nil
		}
		return UnionType{Members: members, DefaultIdx: idx}, nil
	case "collection":
		elem, err := elemType("elem")
		if err != nil {
			return nil, err
		}
		return CollectionType{Elem: elem}, nil
	case "list":
		elem, err := elemType("elem")
		if err != nil {
			return nil, err
		}
		return ListType{Elem: elem}, nil
	case "set":
		elem, err := elemType("elem")
		if err != nil {
			return nil, err
		}
		return SetType{Elem: elem}, nil
	case "map":
		k, err := elemType("key")
		if err != nil {
			return nil, err
		}
		val, err := elemType("val")
		if err != nil {
			return nil, err
		}
		return MapType{Key: k, Val: val}, nil
	case "listing":
		elem, err := elemType("elem")
		if err != nil {
			return nil, err
		}
		return ListingType{Elem: elem}, nil
	case "mapping":
		k, err := elemType("key")
		if err != nil {
			return nil, err
		}
		val, err := elemType("val")
		if err != nil {
			return nil, err
		}
		return MappingType{Key: k, Val: val}, nil
	case "function":
		params, err := listOfTypes("params")
		if err != nil {
			return nil, err
		}
		result, err := elemType("result")
		if err != nil {
			return nil, err
		}
		return FunctionType{Params: params, Result: result}, nil
	case "functionN":
		params, err := listOfTypes("params")
		if err != nil {
			return nil, err
		}
		return FunctionNType{Params: params}, nil
	case "functionClass":
		arityV, _ := field("arity")
		return FunctionClassType{Arity: int(arityV.(Int))}, nil
	case "pair":
		first, err := elemType("first")
		if err != nil {
			return nil, err
		}
		second, err := elemType("second")
		if err != nil {
			return nil, err
		}
		return PairType{First: first, Second: second}, nil
	case "varArgs":
		elem, err := elemType("elem")
		if err != nil {
			return nil, err
		}
		return VarArgsType{Elem: elem}, nil
	case "typeVariable":
		p, err := str("param")
		if err != nil {
			return nil, err
		}
		return TypeVariableType{Param: p}, nil
	case "intAlias":
		name, err := str("name")
		if err != nil {
			return nil, err
		}
		bitsV, _ := field("bits")
		signedV, _ := field("signed")
		return IntAliasType{Name: name, Bits: int(bitsV.(Int)), Signed: bool(signedV.(Bool))}, nil
	case "typeAlias":
		name, err := str("name")
		if err != nil {
			return nil, err
		}
		alias, ok := reg.Alias(name)
		if !ok {
			return nil, fmt.Errorf("unknown type alias %q", name)
		}
		args, err := listOfTypes("args")
		if err != nil {
			return nil, err
		}
		return TypeAliasType{Alias: alias, Args: args}, nil
	case "constrained":
		base, err := elemType("base")
		if err != nil {
			return nil, err
		}
		predsV, _ := field("predicates")
		var preds []Predicate
		if lst, ok := predsV.(*List); ok {
			for _, e := range lst.Elements {
				preds = append(preds, Predicate{Source: string(e.(String))})
			}
		}
		return ConstrainedType{Base: base, Predicates: preds}, nil
	default:
		return nil, fmt.Errorf("unrecognized type mirror kind %q", kind)
	}
}
