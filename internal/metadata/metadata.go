// Package metadata defines the JSON wire shape for exported type mirrors
// (spec §6 render/mirror surface). It is a normalized, JSON-tagged
// projection of internal/vm's Type algebra — kept separate from
// vm.ToMirror/vm.FromMirror (which operate on vm.Value, per spec §8's
// "mirror_of(value) -> value") so internal/vm never depends on a
// JSON-specific wire format.
package metadata

// Metadata is the JSON projection of a single vm.Type node. Exactly the
// fields relevant to Kind are populated; the rest are left zero and
// omitted on marshal.
type Metadata struct {
	// Kind identifies which of the ~20 type shapes this node represents.
	Kind Kind `json:"kind"`

	// Name carries a class/alias/type-variable name, when Kind needs one
	// (finalClass, nonFinalClass, module, typeAlias, typeVariable, intAlias).
	Name string `json:"name,omitempty"`

	// Final is set for KindModule to record whether the module class is final.
	Final bool `json:"final,omitempty"`

	// LiteralValue holds the literal string for KindStringLiteral.
	LiteralValue string `json:"literalValue,omitempty"`

	// UnionValues holds the member literals for KindUnionOfStringLiterals.
	UnionValues []string `json:"unionValues,omitempty"`

	// UnionMembers holds the member types for KindUnion.
	UnionMembers []Metadata `json:"unionMembers,omitempty"`

	// DefaultIdx is the index (into UnionValues/UnionMembers) Pkl picks
	// when no type annotation narrows an ambiguous default. -1 if none.
	DefaultIdx int `json:"defaultIdx,omitempty"`

	// ElementType holds the element type for Collection/List/Set/Listing/VarArgs.
	ElementType *Metadata `json:"elementType,omitempty"`

	// KeyType/ValueType hold the key/value types for Map/Mapping.
	KeyType   *Metadata `json:"keyType,omitempty"`
	ValueType *Metadata `json:"valueType,omitempty"`

	// FirstType/SecondType hold Pair's component types.
	FirstType  *Metadata `json:"firstType,omitempty"`
	SecondType *Metadata `json:"secondType,omitempty"`

	// Params holds function parameter types (Function/FunctionN).
	Params []Metadata `json:"params,omitempty"`

	// ResultType holds the return type for Function.
	ResultType *Metadata `json:"resultType,omitempty"`

	// Arity holds the parameter count for FunctionClass.
	Arity int `json:"arity,omitempty"`

	// IntBits/IntSigned describe an IntAlias's range (e.g. UInt8, Int32).
	IntBits   int  `json:"intBits,omitempty"`
	IntSigned bool `json:"intSigned,omitempty"`

	// TypeArgs holds a type alias's instantiation arguments.
	TypeArgs []Metadata `json:"typeArgs,omitempty"`

	// Base holds the underlying type for Constrained.
	Base *Metadata `json:"base,omitempty"`

	// Constraints is a structured form of Constrained's predicates
	// (length/range/pattern checks). render.MetadataOf recognizes no
	// predicate shapes and always leaves it nil; Predicates carries the
	// predicate set.
	Constraints *Constraints `json:"constraints,omitempty"`

	// Predicates holds the source text of every predicate on a Constrained
	// type, in declaration order, regardless of whether it was recognized
	// as a well-known constraint. Always populated for KindConstrained;
	// Constraints is a best-effort structured subset of the same list.
	Predicates []string `json:"predicates,omitempty"`

	// Ref names a class registered elsewhere in the enclosing TypeRegistry,
	// breaking what would otherwise be infinite recursion through a
	// self-referential class hierarchy.
	Ref string `json:"$ref,omitempty"`
}

// Kind identifies which type shape (spec §4.4) a Metadata node represents.
type Kind string

const (
	KindUnknown               Kind = "unknown"
	KindNothing               Kind = "nothing"
	KindAny                   Kind = "any"
	KindModule                Kind = "module"
	KindStringLiteral         Kind = "stringLiteral"
	KindUnionOfStringLiterals Kind = "unionOfStringLiterals"
	KindFinalClass            Kind = "finalClass"
	KindNonFinalClass         Kind = "nonFinalClass"
	KindNullable              Kind = "nullable"
	KindUnion                 Kind = "union"
	KindCollection            Kind = "collection"
	KindList                  Kind = "list"
	KindSet                   Kind = "set"
	KindMap                   Kind = "map"
	KindListing               Kind = "listing"
	KindMapping               Kind = "mapping"
	KindFunction              Kind = "function"
	KindFunctionN             Kind = "functionN"
	KindFunctionClass         Kind = "functionClass"
	KindPair                  Kind = "pair"
	KindVarArgs               Kind = "varArgs"
	KindTypeVariable          Kind = "typeVariable"
	KindIntAlias              Kind = "intAlias"
	KindTypeAlias             Kind = "typeAlias"
	KindConstrained           Kind = "constrained"
	KindRef                   Kind = "ref"
)

// Constraints is a structured subset of a Constrained type's predicates,
// recognized from Pkl's standard-library constraint functions (e.g.
// `String(s.length >= 1)`, pkl:base's `Int8`-style range checks). Predicates
// that don't match a known shape are carried only in Metadata.Predicates.
type Constraints struct {
	// String length / content checks.
	MinLength  *int    `json:"minLength,omitempty"`
	MaxLength  *int    `json:"maxLength,omitempty"`
	Pattern    *string `json:"pattern,omitempty"`
	StartsWith *string `json:"startsWith,omitempty"`
	EndsWith   *string `json:"endsWith,omitempty"`

	// Numeric range checks (isBetween / >= / <=).
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	// Collection length checks.
	MinItems *int `json:"minItems,omitempty"`
	MaxItems *int `json:"maxItems,omitempty"`

	// IsDistinct on a Listing/Set-shaped constraint.
	Distinct *bool `json:"distinct,omitempty"`
}

// TypeRegistry tracks named classes/aliases already rendered, to support
// $ref and to stop recursive class hierarchies from rendering forever.
type TypeRegistry struct {
	Types map[string]*Metadata
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{Types: make(map[string]*Metadata)}
}

// Register adds a named type to the registry.
func (r *TypeRegistry) Register(name string, m *Metadata) {
	r.Types[name] = m
}

// Has checks if a named type is already registered.
func (r *TypeRegistry) Has(name string) bool {
	_, ok := r.Types[name]
	return ok
}
