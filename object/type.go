package object

import (
	"fmt"
	"sync"
)

// Kind distinguishes how a type relates to its native classes and whether
// its member table may change after publication.
type Kind int

const (
	// KindSimple types own exactly one representation: native class and
	// type are in 1:1 correspondence.
	KindSimple Kind = iota
	// KindAdoptive types funnel several native classes into one type.
	KindAdoptive
	// KindReplaceable types share a representation with other types (their
	// instances carry a type reference) and may legally gain or change
	// members after publication.
	KindReplaceable
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindAdoptive:
		return "adoptive"
	case KindReplaceable:
		return "replaceable"
	default:
		return "unknown"
	}
}

// Flags carries boolean properties of a type.
type Flags uint8

const (
	// FlagAbstract marks a type with no representation of its own; values
	// are only ever instances of concrete subtypes.
	FlagAbstract Flags = 1 << iota
)

// Type is a named unit of dynamic behaviour: its bases, its member table
// and its representations. Except for replaceable types, a Type is
// immutable once the factory publishes it.
type Type struct {
	name  string
	kind  Kind
	flags Flags
	bases []*Type
	mro   []*Type // linearized lookup order, self first; set at finalize

	reprs []*Representation // canonical first; empty for abstract types

	mu      sync.RWMutex // guards members for replaceable types only
	members map[string]Member
	order   []string // member construction order, kept for diagnostics

	complete bool // member table finalized; set once by the factory

	// typeType is the type of this type object, recorded by the factory
	// that created it so TypeObject can answer without ambient globals.
	typeType *Type
}

// Name returns the type's name.
func (t *Type) Name() string { return t.name }

// Kind returns the type's kind.
func (t *Type) Kind() Kind { return t.kind }

// Flags returns the type's flag set.
func (t *Type) Flags() Flags { return t.flags }

// Bases returns the declared base types in specification order.
func (t *Type) Bases() []*Type { return t.bases }

// Representations returns the type's representations, canonical first.
// Adoptive types have several; abstract types none.
func (t *Type) Representations() []*Representation { return t.reprs }

// Canonical returns the canonical representation, or nil for an abstract
// or replaceable type.
func (t *Type) Canonical() *Representation {
	if len(t.reprs) == 0 {
		return nil
	}
	return t.reprs[0]
}

// TypeObject makes *Type a Carrier: the type of every type is 'type'.
// The binding of the *Type class to the 'type' type itself is made by the
// factory during bootstrap.
func (t *Type) TypeObject() *Type {
	if t.typeType == nil {
		panic(fmt.Sprintf("object: type '%s' used before construction completed", t.name))
	}
	return t.typeType
}

// MRO returns the linearized base order used for member lookup: the type
// itself first, then its bases depth-first with repeated ancestors removed.
func (t *Type) MRO() []*Type {
	t.checkComplete()
	return t.mro
}

// IsSubtype reports whether t is other or a transitive subtype of other.
func (t *Type) IsSubtype(other *Type) bool {
	t.checkComplete()
	for _, a := range t.mro {
		if a == other {
			return true
		}
	}
	return false
}

// Lookup finds a member by name along the MRO, returning the member and the
// type that defines it. A member on the type itself or an earlier type in
// linearization order shadows later definitions.
func (t *Type) Lookup(name string) (Member, *Type, bool) {
	t.checkComplete()
	for _, a := range t.mro {
		if m, ok := a.localMember(name); ok {
			return m, a, true
		}
	}
	return nil, nil, false
}

// Members returns the names in the type's own member table in construction
// order.
func (t *Type) Members() []string {
	t.checkComplete()
	if t.kind == KindReplaceable {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// SetMember installs or replaces a member on a replaceable type after
// publication. Any other kind is frozen once published.
func (t *Type) SetMember(m Member) error {
	t.checkComplete()
	if t.kind != KindReplaceable {
		return configErrorf(t.name, "cannot modify member table of %s type after publication", t.kind)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	name := m.MemberName()
	if _, exists := t.members[name]; !exists {
		t.order = append(t.order, name)
	}
	t.members[name] = m
	return nil
}

// localMember reads the type's own member table, taking the read lock only
// for replaceable types, whose tables may be mutated concurrently.
func (t *Type) localMember(name string) (Member, bool) {
	if t.kind == KindReplaceable {
		t.mu.RLock()
		defer t.mu.RUnlock()
	}
	m, ok := t.members[name]
	return m, ok
}

// checkComplete guards against a half-built type escaping the factory's
// reentrant construction window into dispatch. That would mean the
// factory's own invariants broke, so it fails loudly.
func (t *Type) checkComplete() {
	if !t.complete {
		panic(fmt.Sprintf("object: type '%s' used for dispatch before construction completed", t.name))
	}
}

func (t *Type) String() string {
	return fmt.Sprintf("<type '%s'>", t.name)
}
