package render

import (
	"github.com/pklcore/typedcore/internal/metadata"
	"github.com/pklcore/typedcore/internal/vm"
)

// MetadataOf projects t into the JSON-friendly metadata.Metadata shape,
// following $ref for classes/aliases already present in reg so a
// self-referential class hierarchy terminates. This is distinct from
// vm.ToMirror: that function produces a first-class vm.Value mirror (spec
// §8's "mirror_of" value-to-value law); this one produces the wire format a
// host serializes over the network or to disk.
func MetadataOf(reg *metadata.TypeRegistry, t vm.Type) metadata.Metadata {
	switch v := t.(type) {
	case vm.UnknownType:
		return metadata.Metadata{Kind: metadata.KindUnknown}
	case vm.NothingType:
		return metadata.Metadata{Kind: metadata.KindNothing}
	case vm.AnyType:
		return metadata.Metadata{Kind: metadata.KindAny}
	case vm.ModuleType:
		return metadata.Metadata{Kind: metadata.KindModule, Name: v.Class.QualifiedName, Final: v.Final}
	case vm.StringLiteralType:
		return metadata.Metadata{Kind: metadata.KindStringLiteral, LiteralValue: v.Value}
	case vm.UnionOfStringLiteralsType:
		return metadata.Metadata{Kind: metadata.KindUnionOfStringLiterals, UnionValues: v.Values, DefaultIdx: v.DefaultIdx}
	case vm.FinalClassType:
		return refOrInline(reg, v.Class.QualifiedName, metadata.Metadata{Kind: metadata.KindFinalClass, Name: v.Class.QualifiedName})
	case vm.NonFinalClassType:
		return refOrInline(reg, v.Class.QualifiedName, metadata.Metadata{Kind: metadata.KindNonFinalClass, Name: v.Class.QualifiedName})
	case vm.NullableType:
		elem := MetadataOf(reg, v.Elem)
		return metadata.Metadata{Kind: metadata.KindNullable, ElementType: &elem}
	case vm.UnionType:
		members := make([]metadata.Metadata, len(v.Members))
		for i, m := range v.Members {
			members[i] = MetadataOf(reg, m)
		}
		return metadata.Metadata{Kind: metadata.KindUnion, UnionMembers: members, DefaultIdx: v.DefaultIdx}
	case vm.CollectionType:
		elem := MetadataOf(reg, v.Elem)
		return metadata.Metadata{Kind: metadata.KindCollection, ElementType: &elem}
	case vm.ListType:
		elem := MetadataOf(reg, v.Elem)
		return metadata.Metadata{Kind: metadata.KindList, ElementType: &elem}
	case vm.SetType:
		elem := MetadataOf(reg, v.Elem)
		return metadata.Metadata{Kind: metadata.KindSet, ElementType: &elem}
	case vm.MapType:
		key, val := MetadataOf(reg, v.Key), MetadataOf(reg, v.Val)
		return metadata.Metadata{Kind: metadata.KindMap, KeyType: &key, ValueType: &val}
	case vm.ListingType:
		elem := MetadataOf(reg, v.Elem)
		return metadata.Metadata{Kind: metadata.KindListing, ElementType: &elem}
	case vm.MappingType:
		key, val := MetadataOf(reg, v.Key), MetadataOf(reg, v.Val)
		return metadata.Metadata{Kind: metadata.KindMapping, KeyType: &key, ValueType: &val}
	case vm.FunctionType:
		params := make([]metadata.Metadata, len(v.Params))
		for i, p := range v.Params {
			params[i] = MetadataOf(reg, p)
		}
		result := MetadataOf(reg, v.Result)
		return metadata.Metadata{Kind: metadata.KindFunction, Params: params, ResultType: &result}
	case vm.FunctionNType:
		params := make([]metadata.Metadata, len(v.Params))
		for i, p := range v.Params {
			params[i] = MetadataOf(reg, p)
		}
		return metadata.Metadata{Kind: metadata.KindFunctionN, Params: params}
	case vm.FunctionClassType:
		return metadata.Metadata{Kind: metadata.KindFunctionClass, Arity: v.Arity}
	case vm.PairType:
		first, second := MetadataOf(reg, v.First), MetadataOf(reg, v.Second)
		return metadata.Metadata{Kind: metadata.KindPair, FirstType: &first, SecondType: &second}
	case vm.VarArgsType:
		elem := MetadataOf(reg, v.Elem)
		return metadata.Metadata{Kind: metadata.KindVarArgs, ElementType: &elem}
	case vm.TypeVariableType:
		return metadata.Metadata{Kind: metadata.KindTypeVariable, Name: v.Param}
	case vm.IntAliasType:
		return metadata.Metadata{Kind: metadata.KindIntAlias, Name: v.Name, IntBits: v.Bits, IntSigned: v.Signed}
	case vm.TypeAliasType:
		args := make([]metadata.Metadata, len(v.Args))
		for i, a := range v.Args {
			args[i] = MetadataOf(reg, a)
		}
		return metadata.Metadata{Kind: metadata.KindTypeAlias, Name: v.Alias.Name, TypeArgs: args}
	case vm.ConstrainedType:
		base := MetadataOf(reg, v.Base)
		preds := make([]string, len(v.Predicates))
		for i, p := range v.Predicates {
			preds[i] = p.Source
		}
		return metadata.Metadata{
			Kind:        metadata.KindConstrained,
			Base:        &base,
			Predicates:  preds,
			Constraints: recognizeConstraints(preds),
		}
	default:
		return metadata.Metadata{Kind: metadata.KindUnknown}
	}
}

// refOrInline registers name in reg on first encounter and returns the
// inline metadata; on a repeat encounter (a class reachable again through a
// recursive hierarchy) it returns a $ref instead of recursing forever.
func refOrInline(reg *metadata.TypeRegistry, name string, m metadata.Metadata) metadata.Metadata {
	if reg == nil {
		return m
	}
	if reg.Has(name) {
		return metadata.Metadata{Kind: metadata.KindRef, Ref: name}
	}
	reg.Register(name, &m)
	return m
}

// recognizeConstraints always returns nil: no predicate source text is
// matched against Pkl's stdlib constraint functions, so every predicate is
// carried only in the caller's Predicates slice.
func recognizeConstraints(preds []string) *metadata.Constraints {
	if len(preds) == 0 {
		return nil
	}
	// Recognizing exact predicate shapes requires the predicate AST, which
	// this core never constructs (spec §1 Non-goals: parsing). A host
	// embedding the evaluator can populate a richer Constraints value
	// itself once it renders a mirror; the core only guarantees Predicates
	// carries every source string untouched.
	return nil
}
