package vm

// Builtins holds the registry's built-in class hierarchy (spec §3.4/§4.4):
// the base classes every scalar, container and object variant is tagged
// with for class_of()/is_subclass() purposes.
type Builtins struct {
	Any        *Class
	Boolean    *Class
	Number     *Class
	Int        *Class
	Float      *Class
	String     *Class
	Null       *Class
	Duration   *Class
	DataSize   *Class
	Pair       *Class
	Regex      *Class
	IntSeq     *Class
	Collection *Class
	List       *Class
	Set        *Class
	Map        *Class
	Listing    *Class
	Mapping    *Class
	Function   *Class
	Class      *Class
	TypeAlias  *Class
	Module     *Class
	Dynamic    *Class
	Typed      *Class
}

func newBuiltins(r *Registry) *Builtins {
	b := &Builtins{}
	mk := func(name string, super *Class, openness Openness) *Class {
		c := NewClass(name, "pkl.base", super, openness)
		r.RegisterClass(c)
		return c
	}

	b.Any = mk("Any", nil, OpenAbstract)
	b.Boolean = mk("Boolean", b.Any, OpenClosed)
	b.Number = mk("Number", b.Any, OpenAbstract)
	b.Int = mk("Int", b.Number, OpenClosed)
	b.Float = mk("Float", b.Number, OpenClosed)
	b.String = mk("String", b.Any, OpenClosed)
	b.Null = mk("Null", b.Any, OpenClosed)
	b.Null.IsNullClass = true
	b.Duration = mk("Duration", b.Any, OpenClosed)
	b.DataSize = mk("DataSize", b.Any, OpenClosed)
	b.Pair = mk("Pair", b.Any, OpenClosed)
	b.Regex = mk("Regex", b.Any, OpenClosed)
	b.IntSeq = mk("IntSeq", b.Any, OpenClosed)
	b.Collection = mk("Collection", b.Any, OpenAbstract)
	b.List = mk("List", b.Collection, OpenClosed)
	b.Set = mk("Set", b.Collection, OpenClosed)
	b.Map = mk("Map", b.Any, OpenClosed)
	b.Listing = mk("Listing", b.Any, OpenOpen)
	b.Listing.IsListingClass = true
	b.Mapping = mk("Mapping", b.Any, OpenOpen)
	b.Mapping.IsMappingClass = true
	b.Function = mk("Function", b.Any, OpenClosed)
	b.Function.IsFunctionClass = true
	b.Class = mk("Class", b.Any, OpenClosed)
	b.TypeAlias = mk("TypeAlias", b.Any, OpenClosed)
	b.Module = mk("Module", b.Any, OpenOpen)
	b.Dynamic = mk("Dynamic", b.Any, OpenOpen)
	b.Dynamic.IsDynamicClass = true
	b.Dynamic.protoBase = ObjectDynamic
	b.Typed = mk("Typed", b.Dynamic, OpenAbstract)

	r.RegisterAlias(&TypeAliasDef{
		Name:    "Mixin",
		Params:  []string{"T"},
		IsMixin: true,
	})

	return b
}
