package vm

import (
	"fmt"
	"sync"

	"github.com/pklcore/typedcore/internal/diagnostic"
	"github.com/pklcore/typedcore/internal/evalerr"
	"github.com/pklcore/typedcore/internal/ident"
)

// Openness is a class's declared openness (spec §3.4).
type Openness int

const (
	OpenClosed Openness = iota
	OpenOpen
	OpenAbstract
)

// Property is a declared property on a class: name, declared type and
// modifiers (spec §3.4).
type Property struct {
	Name      *ident.Identifier
	Declared  Type
	Modifiers Modifiers
}

// Class is a class descriptor (spec §3.4): qualified name, module, type
// parameters, superclass, openness, a property table, and membership
// predicates consumed by the amendment engine.
type Class struct {
	QualifiedName string
	Module        string
	TypeParams    []string
	Super         *Class
	Openness      Openness

	properties map[string]*Property
	propOrder  []string

	// Membership predicates (spec §3.4), set true for the handful of
	// built-in base classes; ordinary Typed user classes leave all false.
	IsListingClass bool
	IsMappingClass bool
	IsDynamicClass bool
	IsNullClass    bool
	IsFunctionClass bool

	protoOnce sync.Once
	prototype *Object
	protoBase ObjectVariant
}

// NewClass constructs a class descriptor with no declared properties.
func NewClass(qualifiedName, module string, super *Class, openness Openness) *Class {
	return &Class{
		QualifiedName: qualifiedName,
		Module:        module,
		Super:         super,
		Openness:      openness,
		properties:    make(map[string]*Property),
		protoBase:     ObjectTyped,
	}
}

// DeclareProperty adds a property to the class's own property table. It
// rejects an attempt to redeclare a property the superclass marked const
// (spec §4.3: "a subclass may not override a const property").
func (c *Class) DeclareProperty(p *Property) error {
	if c.Super != nil {
		if super, _ := c.Super.propertyOf(p.Name.Text()); super != nil && super.Modifiers.Const {
			return evalerr.CannotAssignConstProperty(diagnostic.Span{}, p.Name.Text())
		}
	}
	if _, exists := c.properties[p.Name.Text()]; !exists {
		c.propOrder = append(c.propOrder, p.Name.Text())
	}
	c.properties[p.Name.Text()] = p
	return nil
}

func (c *Class) propertyOf(name string) (*Property, *Class) {
	for k := c; k != nil; k = k.Super {
		if p, ok := k.properties[name]; ok {
			return p, k
		}
	}
	return nil, nil
}

// OwnPropertyOrder returns this class's own declared property names, in
// declaration order (not including inherited ones).
func (c *Class) OwnPropertyOrder() []string {
	return c.propOrder
}

// AllPropertyNames returns every property name declared anywhere in the
// class's Super chain, most-derived class first, with a name redeclared in
// a subclass appearing once, at its most-derived declaration's position,
// rather than twice. Two instances of the same class always materialize
// this same set of names regardless of which ones either instance
// restated explicitly (spec §4.2), so this - not either object's own set
// of explicit overrides - is the set equality must compare.
func (c *Class) AllPropertyNames() []string {
	seen := make(map[string]bool)
	var names []string
	for k := c; k != nil; k = k.Super {
		for _, name := range k.propOrder {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// IsAbstract reports whether the class cannot be instantiated directly.
func (c *Class) IsAbstract() bool { return c.Openness == OpenAbstract }

// String renders the class's qualified name for diagnostics.
func (c *Class) String() string {
	if c == nil {
		return "Unknown"
	}
	return c.QualifiedName
}

func (*Class) Kind() Kind { return KindClass }

// Registry is the class registry (spec §3.4/C3): built once per module
// load and immutable thereafter, safe for concurrent reads (spec §5).
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
	aliases map[string]*TypeAliasDef

	builtins *Builtins

	// maxMemberCacheDepth/maxTypeParameterDepth mirror a host's
	// config.LimitsConfig (spec §A.3/§9). They default to the same values
	// config.DefaultConfig() uses and are set once via SetLimits before an
	// Evaluator starts handing the registry to concurrent readers.
	maxMemberCacheDepth   int
	maxTypeParameterDepth int
}

// defaultMaxMemberCacheDepth/defaultMaxTypeParameterDepth match
// config.DefaultConfig()'s limits, duplicated here (rather than imported)
// since internal/vm must not depend on internal/config.
const (
	defaultMaxMemberCacheDepth   = 1000
	defaultMaxTypeParameterDepth = 64
)

// NewRegistry constructs a registry preloaded with the built-in class
// hierarchy (Any, Boolean, Number/Int/Float, String, Null, Duration,
// DataSize, Pair, Regex, IntSeq, Collection/List/Set, Map, Listing, Mapping,
// Function, Class, TypeAlias, Module, Dynamic/Typed) and the Mixin<T>
// type alias.
func NewRegistry() *Registry {
	r := &Registry{
		classes:               make(map[string]*Class),
		aliases:                make(map[string]*TypeAliasDef),
		maxMemberCacheDepth:   defaultMaxMemberCacheDepth,
		maxTypeParameterDepth: defaultMaxTypeParameterDepth,
	}
	r.builtins = newBuiltins(r)
	return r
}

// SetLimits overrides the registry's recursion limits (spec §A.3), e.g.
// from a host's loaded config. Call before the registry is shared across
// concurrent evaluations; it is not safe to call concurrently with reads.
func (r *Registry) SetLimits(maxMemberCacheDepth, maxTypeParameterDepth int) {
	if maxMemberCacheDepth > 0 {
		r.maxMemberCacheDepth = maxMemberCacheDepth
	}
	if maxTypeParameterDepth > 0 {
		r.maxTypeParameterDepth = maxTypeParameterDepth
	}
}

// MaxMemberCacheDepth returns the configured parent-chain recursion bound
// for read_member (spec §4.6/§A.3).
func (r *Registry) MaxMemberCacheDepth() int { return r.maxMemberCacheDepth }

// MaxTypeParameterDepth returns the configured type-alias instantiation
// recursion bound (spec §4.4/§A.3).
func (r *Registry) MaxTypeParameterDepth() int { return r.maxTypeParameterDepth }

var (
	defaultRegistryOnce sync.Once
	defaultRegistryVal  *Registry
)

// DefaultRegistry returns a process-wide registry for call sites (like
// BodyDefault evaluation deep in member.go) that don't carry one through
// explicitly. Prefer passing a Registry explicitly; this exists so the
// member-cache algorithm in spec §4.6 doesn't need a registry parameter
// threaded through every Body.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistryVal = NewRegistry()
	})
	return defaultRegistryVal
}

// Builtins returns the registry's built-in class set.
func (r *Registry) Builtins() *Builtins { return r.builtins }

// RegisterClass adds a class descriptor to the registry.
func (r *Registry) RegisterClass(c *Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.QualifiedName] = c
}

// Class looks up a class by qualified name.
func (r *Registry) Class(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// RegisterAlias adds a type alias definition to the registry.
func (r *Registry) RegisterAlias(a *TypeAliasDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[a.Name] = a
}

// Alias looks up a type alias by name.
func (r *Registry) Alias(name string) (*TypeAliasDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.aliases[name]
	return a, ok
}

// IsSubclass reports whether c descends from (or equals) d (spec §4.3:
// reflexive, transitive).
func IsSubclass(c, d *Class) bool {
	for k := c; k != nil; k = k.Super {
		if k == d {
			return true
		}
	}
	return false
}

// PropertyOf walks c's superclass chain for a declared property named name
// (spec §4.3).
func PropertyOf(c *Class, name string) (*Property, *Class) {
	if c == nil {
		return nil, nil
	}
	return c.propertyOf(name)
}

// ClassOf returns the class tag of any value, including scalars and
// containers which are tagged with the registry's built-in classes
// (spec §4.3: "class_of(value) -> Class").
func ClassOf(reg *Registry, v Value) *Class {
	b := reg.Builtins()
	switch vv := v.(type) {
	case Bool:
		return b.Boolean
	case Int:
		return b.Int
	case Float:
		return b.Float
	case String:
		return b.String
	case Null:
		return b.Null
	case Duration:
		return b.Duration
	case DataSize:
		return b.DataSize
	case Pair:
		return b.Pair
	case *Regex:
		return b.Regex
	case IntSeq:
		return b.IntSeq
	case *List:
		return b.List
	case *Set:
		return b.Set
	case *Map:
		return b.Map
	case *Object:
		return vv.Class
	case *Function:
		return b.Function
	case *Class:
		return b.Class
	default:
		return b.Any
	}
}

// PrototypeOf returns the class's prototype object (spec §3.4: "the
// prototype object carrying declared properties with default bodies"),
// constructing it lazily on first instantiation and caching thereafter.
func (r *Registry) PrototypeOf(c *Class) *Object {
	c.protoOnce.Do(func() {
		var parent *Object
		if c.Super != nil {
			parent = r.PrototypeOf(c.Super)
		}
		proto := NewObject(c.protoBase, c, parent)
		for _, name := range c.propOrder {
			p := c.properties[name]
			proto.SetProperty(&Member{
				Kind:          MemberProperty,
				Key:           MemberKey{Ident: p.Name},
				QualifiedName: fmt.Sprintf("%s.%s", c.QualifiedName, p.Name.Text()),
				Declared:      p.Declared,
				Modifiers:     p.Modifiers,
				BodyKind:      BodyDefault,
			})
		}
		c.prototype = proto
	})
	return c.prototype
}

// InstantiableDefault returns the class's default value per spec §4.4's
// FinalClass/NonFinalClass default rule: empty listing/mapping for the
// listing/mapping base classes, null-without-default for Null, the
// prototype for any other instantiable class, or (nil, false) if the class
// is abstract and has no instantiable default.
func (r *Registry) InstantiableDefault(c *Class) (Value, bool) {
	switch {
	case c.IsListingClass:
		return NewObject(ObjectListing, c, nil), true
	case c.IsMappingClass:
		return NewObject(ObjectMapping, c, nil), true
	case c.IsNullClass:
		return Null{}, true
	case c.IsAbstract():
		return nil, false
	default:
		return r.PrototypeOf(c), true
	}
}
