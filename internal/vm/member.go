package vm

import (
	"fmt"
	"strconv"

	"github.com/pklcore/typedcore/internal/diagnostic"
	"github.com/pklcore/typedcore/internal/evalerr"
	"github.com/pklcore/typedcore/internal/ident"
)

// MemberKind distinguishes the four member flavors named in spec §3.2.
type MemberKind int

const (
	MemberProperty MemberKind = iota
	MemberElement
	MemberEntry
	MemberMethod
)

// Modifiers is the member modifier set (spec §3.2: local, hidden, fixed,
// const, external).
type Modifiers struct {
	Local    bool
	Hidden   bool
	Fixed    bool
	Const    bool
	External bool
}

// MemberKey is either an identifier (property/method) or an arbitrary value
// (element/entry index), per spec §3.1/§4.1.
type MemberKey struct {
	Ident *ident.Identifier
	Entry Value // used when Ident == nil
}

// IsProperty reports whether the key names a property (vs. an entry/element).
func (k MemberKey) IsProperty() bool { return k.Ident != nil }

func mustIdent(name string) *ident.Identifier { return ident.Regular(name) }

// lookupString renders a MemberKey to the string used to index the owning
// object's member and cache tables (spec §4.1: "an identifier key is
// normalized to its string text for lookup in a map whose keys are strings").
func (k MemberKey) lookupString() string {
	if k.Ident != nil {
		return "p:" + k.Ident.Text()
	}
	return "e:" + strconv.FormatUint(Hash(k.Entry), 16) + ":" + renderShallow(k.Entry)
}

// BodyKind distinguishes a member's evaluation strategy.
type BodyKind int

const (
	BodyConstant BodyKind = iota // Constant holds the already-materialized value
	BodyExpr                     // ExprBody evaluates to a value
	BodyDefault                  // "default body" marker: request Declared's type default
)

// Body is an evaluable member expression. The core consumes bodies produced
// by the (external) parser/evaluator front-end; it never constructs one from
// source text itself (spec §1 Non-goals: parsing).
type Body interface {
	Evaluate(frame *Frame) (Value, error)
}

// BodyFunc adapts a plain function to Body.
type BodyFunc func(frame *Frame) (Value, error)

func (f BodyFunc) Evaluate(frame *Frame) (Value, error) { return f(frame) }

// Frame carries the bindings visible to a member body during evaluation
// (spec §4.6 step 4, §9 "late-bound this").
type Frame struct {
	Receiver *Object
	Owner    *Object
	Key      MemberKey
	// CustomThis is the per-evaluation "custom this" slot a constrained
	// type's predicate closure reads from (spec §9), rather than the lexical
	// receiver.
	CustomThis Value
	// RenderWidth is the host-configured diagnostics truncation width (spec
	// §A.3), threaded in by the evaluator. Zero means "use DefaultRenderWidth".
	RenderWidth int
}

// RenderValue renders v for a diagnostic message, honoring the frame's
// configured RenderWidth if one was threaded in (nil frame or zero width
// falls back to DefaultRenderWidth).
func (f *Frame) RenderValue(v Value) string {
	if f != nil && f.RenderWidth > 0 {
		return RenderWidth(v, f.RenderWidth)
	}
	return Render(v)
}

// WithCustomThis returns a copy of the frame with CustomThis rebound, used
// when entering a Constrained(T, preds) predicate evaluation.
func (f *Frame) WithCustomThis(v Value) *Frame {
	if f == nil {
		return &Frame{CustomThis: v}
	}
	cp := *f
	cp.CustomThis = v
	return &cp
}

// Member is a member descriptor (spec §3.2): source/header spans, modifiers,
// kind, key, qualified name, and one of a constant value / body reference /
// default-body marker. A descriptor may be shared by many objects through
// the inheritance/amendment chain; per-object results live in the owning
// object's cache slot, never here.
type Member struct {
	Span          diagnostic.Span
	HeaderSpan    diagnostic.Span
	Modifiers     Modifiers
	Kind          MemberKind
	Key           MemberKey
	QualifiedName string
	Declared      Type // may be nil (undeclared/inferred)

	BodyKind BodyKind
	Constant Value
	ExprBody Body
}

func (m *Member) evaluate(frame *Frame, reg *Registry) (Value, error) {
	switch m.BodyKind {
	case BodyConstant:
		return m.Constant, nil
	case BodyExpr:
		if m.ExprBody == nil {
			return nil, evalerr.Internal(m.Span, "member %s has no body", m.displayName())
		}
		return m.ExprBody.Evaluate(frame)
	case BodyDefault:
		if m.Declared == nil {
			return nil, evalerr.Internal(m.Span, "member %s requests a default with no declared type", m.displayName())
		}
		v, err := m.Declared.Default(reg)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, evalerr.New(diagnostic.CategoryInternal, m.Span,
				"member %s has no value and type %s has no default", m.displayName(), m.Declared)
		}
		return v, nil
	default:
		return nil, evalerr.Internal(m.Span, "unknown body kind for member %s", m.displayName())
	}
}

func (m *Member) displayName() string {
	if m.QualifiedName != "" {
		return m.QualifiedName
	}
	if m.Key.Ident != nil {
		return m.Key.Ident.Text()
	}
	return "<entry>"
}

type cacheState int

const (
	cacheEmpty cacheState = iota
	cacheInProgress
	cacheDone
)

type cacheSlot struct {
	state cacheState
	value Value
	err   error
}

// ReadMember implements the member-read algorithm of spec §4.6:
//  1. if cached, return the cached value;
//  2. look up the key, recursing into the parent chain if absent on obj;
//  3. if the descriptor is a constant, cache and return it;
//  4. otherwise evaluate the body with frame bindings (receiver, owner, key),
//     cache, and return.
//
// Cycle detection marks the key in-progress on the receiver for the duration
// of body evaluation; re-entrant reads of the same key on the same object
// raise a cyclic-evaluation error.
func ReadMember(receiver *Object, key MemberKey) (Value, error) {
	return ReadMemberReg(receiver, key, DefaultRegistry())
}

// ReadMemberReg is ReadMember parameterized over an explicit registry
// (needed when a default-body marker must synthesize a type default).
func ReadMemberReg(receiver *Object, key MemberKey, reg *Registry) (Value, error) {
	if receiver == nil {
		return nil, fmt.Errorf("read member %v on nil object", key)
	}
	k := key.lookupString()

	receiver.cacheMu.Lock()
	if slot, ok := receiver.cache[k]; ok {
		switch slot.state {
		case cacheDone:
			receiver.cacheMu.Unlock()
			return slot.value, slot.err
		case cacheInProgress:
			receiver.cacheMu.Unlock()
			return nil, evalerr.CyclicEvaluation(diagnostic.Span{}, key.displayString())
		}
	}
	receiver.ensureCache()
	receiver.cache[k] = &cacheSlot{state: cacheInProgress}
	receiver.cacheMu.Unlock()

	maxDepth := 0
	if reg != nil {
		maxDepth = reg.MaxMemberCacheDepth()
	}
	desc, owner, err := findDescriptor(receiver, key, maxDepth)
	if err != nil {
		receiver.cacheMu.Lock()
		delete(receiver.cache, k)
		receiver.cacheMu.Unlock()
		return nil, err
	}
	if desc == nil {
		receiver.cacheMu.Lock()
		delete(receiver.cache, k)
		receiver.cacheMu.Unlock()
		return nil, fmt.Errorf("no member %v found", key)
	}

	frame := &Frame{Receiver: receiver, Owner: owner, Key: key}
	v, err := desc.evaluate(frame, reg)

	receiver.cacheMu.Lock()
	if err == nil {
		receiver.cache[k] = &cacheSlot{state: cacheDone, value: v}
	} else {
		delete(receiver.cache, k)
	}
	receiver.cacheMu.Unlock()

	return v, err
}

func (k MemberKey) displayString() string {
	if k.Ident != nil {
		return k.Ident.Text()
	}
	return renderShallow(k.Entry)
}

// DescriptorOf returns the member descriptor key resolves to on obj's
// parent chain (the same lookup ReadMemberReg performs internally), without
// evaluating or caching it. Hosts use this to inspect a member's Declared
// type before or after reading its value - e.g. the evaluator checking a
// materialized value against it (spec §4.5).
func DescriptorOf(obj *Object, key MemberKey) *Member {
	m, _, _ := findDescriptor(obj, key, 0)
	return m
}

// findDescriptor walks the parent chain starting at obj, returning the
// descriptor and the object that actually owns it. maxDepth bounds how many
// parent hops it will take before giving up with an internal error (spec
// §9's recursion discipline for cyclic parent/class/prototype graphs);
// maxDepth <= 0 means unbounded.
func findDescriptor(obj *Object, key MemberKey, maxDepth int) (*Member, *Object, error) {
	depth := 0
	for o := obj; o != nil; o = o.Parent {
		if maxDepth > 0 && depth > maxDepth {
			return nil, nil, evalerr.Internal(diagnostic.Span{},
				"read_member exceeded max parent-chain depth %d for %s", maxDepth, key.displayString())
		}
		if m := o.ownMember(key); m != nil {
			return m, o, nil
		}
		depth++
	}
	return nil, nil, nil
}
