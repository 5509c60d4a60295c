package object

import (
	"fmt"
	"sync"
)

// Instance is the stock native class for values of replaceable types. All
// such types share this one class, so each instance carries its type
// reference; the shared Representation consults it through the Carrier
// interface.
type Instance struct {
	typ *Type

	mu    sync.RWMutex
	attrs map[string]any
}

// NewInstance creates a value of the given replaceable type.
func NewInstance(t *Type) *Instance {
	return &Instance{typ: t, attrs: make(map[string]any)}
}

// TypeObject returns the type this instance belongs to.
func (obj *Instance) TypeObject() *Type { return obj.typ }

// Get reads an instance attribute, falling back to the type's member table
// (attributes only) when the instance does not define it.
func (obj *Instance) Get(name string) (any, bool) {
	obj.mu.RLock()
	v, ok := obj.attrs[name]
	obj.mu.RUnlock()
	if ok {
		return v, true
	}
	if m, _, found := obj.typ.Lookup(name); found {
		if a, isAttr := m.(*Attribute); isAttr {
			return a.Value, true
		}
	}
	return nil, false
}

// Set writes an instance attribute.
func (obj *Instance) Set(name string, v any) {
	obj.mu.Lock()
	obj.attrs[name] = v
	obj.mu.Unlock()
}

func (obj *Instance) String() string {
	return fmt.Sprintf("<%s instance>", obj.typ.Name())
}
