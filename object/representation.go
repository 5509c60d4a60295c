package object

import (
	"fmt"
	"reflect"
)

// Representation binds one concrete native Go type (its "class") to the
// Type that gives values of that class their dynamic behaviour. Every class
// maps to exactly one Representation: it is computed or registered once and
// is immutable for the life of the process.
type Representation struct {
	class reflect.Type
	typ   *Type // owning type; nil for shared representations
	index int   // 0 = canonical, >0 = adopted alternate
}

// Carrier is implemented by values that know their own Type. Instances of
// replaceable types carry a type reference because many such types share a
// single native class, so the class alone cannot identify the type.
type Carrier interface {
	TypeObject() *Type
}

// Class returns the native Go type this representation describes.
func (r *Representation) Class() reflect.Type { return r.class }

// Canonical reports whether this is the canonical representation of its
// type, as opposed to an adopted alternate.
func (r *Representation) Canonical() bool { return r.index == 0 }

// Index identifies which representation of the owning type this is.
// The canonical representation is index 0.
func (r *Representation) Index() int { return r.index }

// Shared reports whether this representation is shared between types whose
// instances carry their own type reference.
func (r *Representation) Shared() bool { return r.typ == nil }

// TypeOf returns the Type of a value known to have this representation.
// For a shared representation the value itself is consulted.
func (r *Representation) TypeOf(v any) *Type {
	if r.typ != nil {
		return r.typ
	}
	c, ok := v.(Carrier)
	if !ok {
		// A shared representation is only ever bound to classes that
		// implement Carrier; reaching here means the registry's own
		// invariant broke.
		panic(fmt.Sprintf("object: shared representation for %v bound to non-carrier %T", r.class, v))
	}
	return c.TypeObject()
}

func (r *Representation) String() string {
	if r.typ == nil {
		return fmt.Sprintf("shared representation of %v", r.class)
	}
	if r.index == 0 {
		return fmt.Sprintf("representation of %v as '%s'", r.class, r.typ.name)
	}
	return fmt.Sprintf("adopted representation %d of %v as '%s'", r.index, r.class, r.typ.name)
}
