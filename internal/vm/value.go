// Package vm implements the Typed Object Core's value model (spec §3.1/C2),
// class registry (§3.4/C3), type algebra (§3.3/C4) and member table & cache
// (§3.2/C6). These four components are mutually recursive in the source
// spec (values carry classes, classes carry declared types, types default to
// values) and are kept in one package for that reason; internal/check layers
// the type-checking algorithm (C5) on top without needing to reach back in.
package vm

import (
	"fmt"
	"strconv"

	"github.com/dlclark/regexp2"
	"github.com/zeebo/xxh3"
)

// Kind tags the runtime shape of a Value.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindNull
	KindDuration
	KindDataSize
	KindPair
	KindRegex
	KindIntSeq
	KindList
	KindSet
	KindMap
	KindObject
	KindFunction
	KindClass
	KindTypeAlias
	KindModule
)

// Value is the closed tagged union of runtime values (spec §3.1).
type Value interface {
	Kind() Kind
}

// Bool is the boolean scalar.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Int is the signed 64-bit integer scalar.
type Int int64

func (Int) Kind() Kind { return KindInt }

// Float is the IEEE-754 double scalar.
type Float float64

func (Float) Kind() Kind { return KindFloat }

// String is the string scalar.
type String string

func (String) Kind() Kind { return KindString }

// Null is the null-with-default scalar: null carries an optional default
// hint synthesized by Nullable(T).Default() (spec §4.4).
type Null struct {
	Default Value
}

func (Null) Kind() Kind { return KindNull }

// Duration is an opaque domain value (spec §3.1).
type Duration struct {
	Value float64
	Unit  string // "ns", "us", "ms", "s", "min", "h", "d"
}

func (Duration) Kind() Kind { return KindDuration }

// DataSize is an opaque domain value.
type DataSize struct {
	Value float64
	Unit  string // "b", "kb", "mb", "gb", "tb", "pb", "kib", "mib", ...
}

func (DataSize) Kind() Kind { return KindDataSize }

// Pair is an opaque 2-tuple domain value.
type Pair struct {
	First  Value
	Second Value
}

func (Pair) Kind() Kind { return KindPair }

// Regex is an opaque domain value backed by regexp2, which (unlike Go's
// RE2-based regexp) supports the lookaround and backreference constructs
// Pkl's Java-flavored regex syntax allows.
type Regex struct {
	Pattern string
	re      *regexp2.Regexp
}

func (Regex) Kind() Kind { return KindRegex }

// NewRegex compiles a Regex value.
func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		return nil, err
	}
	return &Regex{Pattern: pattern, re: re}, nil
}

// MatchString reports whether the regex matches s anywhere.
func (r *Regex) MatchString(s string) (bool, error) {
	if r.re == nil {
		return false, fmt.Errorf("regex %q not compiled", r.Pattern)
	}
	m, err := r.re.MatchString(s)
	if err != nil {
		return false, err
	}
	return m, nil
}

// IntSeq is an opaque domain value representing an integer range with step.
type IntSeq struct {
	Start, End, Step int64
}

func (IntSeq) Kind() Kind { return KindIntSeq }

// List is an ordered sequence.
type List struct {
	Elements []Value
}

func (*List) Kind() Kind { return KindList }

// Set is an unordered, unique collection, kept here with a deterministic
// insertion order for rendering/iteration convenience; membership is by
// structural equality (spec §4.2).
type Set struct {
	elements []Value
	seen     map[uint64][]int // hash -> indices into elements, for collision handling
}

func (*Set) Kind() Kind { return KindSet }

// NewSet builds a Set from values, discarding structural duplicates and
// keeping first-seen order.
func NewSet(values ...Value) *Set {
	s := &Set{seen: make(map[uint64][]int)}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v if no structurally-equal element is already present.
// Returns true if v was newly added.
func (s *Set) Add(v Value) bool {
	h := Hash(v)
	for _, idx := range s.seen[h] {
		if Equal(s.elements[idx], v) {
			return false
		}
	}
	s.elements = append(s.elements, v)
	s.seen[h] = append(s.seen[h], len(s.elements)-1)
	return true
}

// Elements returns the set's elements in insertion order.
func (s *Set) Elements() []Value {
	if s == nil {
		return nil
	}
	return s.elements
}

// Len returns the number of elements.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.elements)
}

// Map is an ordered key->value mapping; iteration order is insertion order
// (spec §3.1).
type Map struct {
	keys     []Value
	values   []Value
	keyIndex map[uint64][]int
}

func (*Map) Kind() Kind { return KindMap }

// NewMap builds an empty Map.
func NewMap() *Map {
	return &Map{keyIndex: make(map[uint64][]int)}
}

// Put inserts or replaces the value for key, preserving first-insertion
// position on replace.
func (m *Map) Put(key, value Value) {
	h := Hash(key)
	for _, idx := range m.keyIndex[h] {
		if Equal(m.keys[idx], key) {
			m.values[idx] = value
			return
		}
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	m.keyIndex[h] = append(m.keyIndex[h], len(m.keys)-1)
}

// Get looks up a value by structural key equality.
func (m *Map) Get(key Value) (Value, bool) {
	if m == nil {
		return nil, false
	}
	h := Hash(key)
	for _, idx := range m.keyIndex[h] {
		if Equal(m.keys[idx], key) {
			return m.values[idx], true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Entries returns the keys and values in insertion order.
func (m *Map) Entries() ([]Value, []Value) {
	if m == nil {
		return nil, nil
	}
	return m.keys, m.values
}

// Equal reports structural equality between two values (spec §4.2).
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case String:
		return av == b.(String)
	case Null:
		return true
	case Duration:
		bv := b.(Duration)
		return av.Value == bv.Value && av.Unit == bv.Unit
	case DataSize:
		bv := b.(DataSize)
		return av.Value == bv.Value && av.Unit == bv.Unit
	case Pair:
		bv := b.(Pair)
		return Equal(av.First, bv.First) && Equal(av.Second, bv.Second)
	case *Regex:
		bv := b.(*Regex)
		return av.Pattern == bv.Pattern
	case IntSeq:
		bv := b.(IntSeq)
		return av == bv
	case *List:
		bv := b.(*List)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Set:
		bv := b.(*Set)
		if av.Len() != bv.Len() {
			return false
		}
		for _, e := range av.elements {
			found := false
			for _, e2 := range bv.elements {
				if Equal(e, e2) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case *Map:
		bv := b.(*Map)
		if av.Len() != bv.Len() {
			return false
		}
		for i, k := range av.keys {
			v2, ok := bv.Get(k)
			if !ok || !Equal(av.values[i], v2) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		return objectsEqual(av, bv)
	case *Function:
		bv := b.(*Function)
		return av == bv
	case *Class:
		return av == b.(*Class)
	default:
		return a == b
	}
}

func objectsEqual(a, b *Object) bool {
	if a.Variant != b.Variant || a.Class != b.Class {
		return false
	}
	// Typed instances of the same class always materialize the same
	// property set regardless of which properties either side restated
	// explicitly (spec §4.2): one may amend a property back to its own
	// default while the other leaves it to inherit silently, and the two
	// still compare equal. Comparing each side's own override set instead
	// (as Dynamic objects must, having no fixed class schema) would reject
	// that pair merely for differing in override shape, not in value.
	var names []string
	if a.Variant == ObjectTyped && a.Class != nil {
		names = a.Class.AllPropertyNames()
	} else {
		ap, bp := a.OwnPropertyNames(), b.OwnPropertyNames()
		if len(ap) != len(bp) {
			return false
		}
		names = ap
	}
	for _, name := range names {
		av, aerr := ReadMember(a, MemberKey{Ident: mustIdent(name)})
		bv, berr := ReadMember(b, MemberKey{Ident: mustIdent(name)})
		if aerr != nil || berr != nil {
			return aerr == nil && berr == nil
		}
		if !Equal(av, bv) {
			return false
		}
	}
	return true
}

// Hash returns a structural hash consistent with Equal (spec §4.2:
// "Hashing mirrors equality"), backed by xxh3 for speed on large object
// graphs and string-heavy member tables.
func Hash(v Value) uint64 {
	if v == nil {
		return 0
	}
	switch vv := v.(type) {
	case Bool:
		if vv {
			return 1
		}
		return 2
	case Int:
		return xxh3.Hash([]byte(strconv.FormatInt(int64(vv), 10)))
	case Float:
		return xxh3.Hash([]byte(strconv.FormatFloat(float64(vv), 'g', -1, 64)))
	case String:
		return xxh3.HashString(string(vv))
	case Null:
		return 3
	case Duration:
		return xxh3.HashString(fmt.Sprintf("dur:%g%s", vv.Value, vv.Unit))
	case DataSize:
		return xxh3.HashString(fmt.Sprintf("size:%g%s", vv.Value, vv.Unit))
	case Pair:
		return Hash(vv.First)*31 + Hash(vv.Second)
	case *Regex:
		return xxh3.HashString("re:" + vv.Pattern)
	case IntSeq:
		return xxh3.HashString(fmt.Sprintf("seq:%d:%d:%d", vv.Start, vv.End, vv.Step))
	case *List:
		h := uint64(17)
		for _, e := range vv.Elements {
			h = h*31 + Hash(e)
		}
		return h
	case *Set:
		var h uint64
		for _, e := range vv.elements {
			h += Hash(e) // order-independent
		}
		return h
	case *Map:
		var h uint64
		for i, k := range vv.keys {
			h += Hash(k)*31 ^ Hash(vv.values[i])
		}
		return h
	case *Object:
		return xxh3.HashString(fmt.Sprintf("obj:%p", vv))
	default:
		return xxh3.HashString(fmt.Sprintf("%p", v))
	}
}
