package vm

import "sync"

// ObjectVariant distinguishes the four composite shapes of spec §3.1.
type ObjectVariant int

const (
	ObjectTyped ObjectVariant = iota
	ObjectDynamic
	ObjectListing
	ObjectMapping
)

func (v ObjectVariant) String() string {
	switch v {
	case ObjectTyped:
		return "Typed"
	case ObjectDynamic:
		return "Dynamic"
	case ObjectListing:
		return "Listing"
	case ObjectMapping:
		return "Mapping"
	default:
		return "?"
	}
}

// Object is a member-bearing composite value (spec §3.1). Every object has a
// parent forming a chain terminating at a class prototype or a base
// dynamic, an own member table, and a per-object cache (spec §4.6).
type Object struct {
	Variant ObjectVariant
	Class   *Class
	Parent  *Object

	properties map[string]*Member
	propOrder  []string
	elements   []*Member
	entries    []*Member

	// baseElementCount is the element count inherited from Parent at
	// construction time (spec §3.1 invariant: "a Listing's element count
	// equals the number of member keys that are integer-indexed elements").
	baseElementCount int

	cacheMu sync.Mutex
	cache   map[string]*cacheSlot
}

func (*Object) Kind() Kind { return KindObject }

// NewObject constructs a bare object of the given variant with no own
// members, chained to parent.
func NewObject(variant ObjectVariant, class *Class, parent *Object) *Object {
	o := &Object{Variant: variant, Class: class, Parent: parent}
	if parent != nil {
		o.baseElementCount = parent.ElementCount()
	}
	return o
}

func (o *Object) ensureCache() {
	if o.cache == nil {
		o.cache = make(map[string]*cacheSlot)
	}
}

// ElementCount returns the total number of integer-indexed elements visible
// on this object, counting inherited elements (spec §3.1 invariant).
func (o *Object) ElementCount() int {
	if o == nil {
		return 0
	}
	return o.baseElementCount + len(o.elements)
}

// SetProperty installs an own property/method member, keyed by identifier.
func (o *Object) SetProperty(m *Member) {
	if o.properties == nil {
		o.properties = make(map[string]*Member)
	}
	name := m.Key.Ident.Text()
	if _, exists := o.properties[name]; !exists {
		o.propOrder = append(o.propOrder, name)
	}
	o.properties[name] = m
}

// AppendElement appends an own element member (Listing/Dynamic).
func (o *Object) AppendElement(m *Member) {
	o.elements = append(o.elements, m)
}

// AppendEntry appends an own entry member (Mapping), keyed by an arbitrary
// value carried in m.Key.Entry.
func (o *Object) AppendEntry(m *Member) {
	o.entries = append(o.entries, m)
}

// OwnProperty returns the own (non-inherited) property/method member named
// name, if present.
func (o *Object) OwnProperty(name string) (*Member, bool) {
	if o == nil || o.properties == nil {
		return nil, false
	}
	m, ok := o.properties[name]
	return m, ok
}

// OwnPropertyNames returns own property names in declaration order.
func (o *Object) OwnPropertyNames() []string {
	if o == nil {
		return nil
	}
	return o.propOrder
}

// OwnElements returns own (non-inherited) element members in order.
func (o *Object) OwnElements() []*Member {
	if o == nil {
		return nil
	}
	return o.elements
}

// OwnEntries returns own (non-inherited) entry members in order.
func (o *Object) OwnEntries() []*Member {
	if o == nil {
		return nil
	}
	return o.entries
}

// ownMember looks up key among this object's own members only (no parent
// recursion — see findDescriptor in member.go for the chain walk).
func (o *Object) ownMember(key MemberKey) *Member {
	if key.Ident != nil {
		if m, ok := o.OwnProperty(key.Ident.Text()); ok {
			return m
		}
		return nil
	}
	for _, m := range o.entries {
		if Equal(m.Key.Entry, key.Entry) {
			return m
		}
	}
	// Integer-indexed element lookup: Entry carries the requested index.
	if idx, ok := key.Entry.(Int); ok {
		i := int(idx) - o.baseElementCount
		if i >= 0 && i < len(o.elements) {
			return o.elements[i]
		}
		return nil
	}
	return nil
}

// AllOwnMembers returns every own member: properties in declaration order,
// then elements, then entries.
func (o *Object) AllOwnMembers() []*Member {
	out := make([]*Member, 0, len(o.propOrder)+len(o.elements)+len(o.entries))
	for _, name := range o.propOrder {
		out = append(out, o.properties[name])
	}
	out = append(out, o.elements...)
	out = append(out, o.entries...)
	return out
}
