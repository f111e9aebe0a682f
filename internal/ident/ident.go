// Package ident provides canonical, interned identifiers and the
// regular/local-property distinction used to key object members.
package ident

import "sync"

// Identifier is an interned name. Two identifiers with the same text and the
// same localProperty bit always compare equal by pointer.
type Identifier struct {
	text  string
	local bool
}

// Text returns the identifier's underlying name.
func (i *Identifier) Text() string {
	if i == nil {
		return ""
	}
	return i.text
}

// IsLocalProperty reports whether this identifier names a module-scoped
// local type or local property rather than a regular user-visible property.
func (i *Identifier) IsLocalProperty() bool {
	return i != nil && i.local
}

// String implements fmt.Stringer for diagnostics rendering.
func (i *Identifier) String() string {
	return i.Text()
}

type internKey struct {
	text  string
	local bool
}

var (
	mu      sync.Mutex
	table   = make(map[internKey]*Identifier)
)

// Intern returns the canonical Identifier for (text, local), constructing it
// on first use. The intern table is safe for concurrent use by multiple
// module evaluations (§5: the registry is read-only after construction, but
// interning itself may still race during concurrent first-use).
func Intern(text string, local bool) *Identifier {
	key := internKey{text: text, local: local}

	mu.Lock()
	defer mu.Unlock()
	if id, ok := table[key]; ok {
		return id
	}
	id := &Identifier{text: text, local: local}
	table[key] = id
	return id
}

// Regular interns a regular (non-local) property identifier.
func Regular(text string) *Identifier { return Intern(text, false) }

// Local interns a local-property identifier.
func Local(text string) *Identifier { return Intern(text, true) }

// NormalizeKey reduces a member key to its lookup text: identifiers
// normalize to their Text(); any other value should already carry its own
// equality/hash and is not handled here (see vm.MemberKey).
func NormalizeKey(id *Identifier) string {
	return id.Text()
}
