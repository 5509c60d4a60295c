package object

import (
	"reflect"
	"sort"
	"sync"

	"stable/trace"
)

// carrierIface is the reflected Carrier interface, used to recognize
// classes whose values carry their own type reference.
var carrierIface = reflect.TypeOf((*Carrier)(nil)).Elem()

// Registry maps a native Go class to the single Representation that gives
// its values dynamic behaviour. Entries are computed or registered once and
// never change; concurrent first lookups for the same class converge on one
// cached Representation. Removal is supported only as a whole-registry
// Reset, used for test isolation, because representations may already be
// referenced from cached type data.
type Registry struct {
	mu      sync.RWMutex
	classes map[reflect.Type]*Representation
}

// NewRegistry creates an empty registry. In normal operation one registry
// exists per Factory.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[reflect.Type]*Representation)}
}

// Of returns the Representation for a value, classifying it by its concrete
// Go type.
func (r *Registry) Of(v any) (*Representation, error) {
	return r.ForClass(reflect.TypeOf(v))
}

// ForClass returns the Representation registered or computed for a native
// class. The first call for a class implementing Carrier computes a shared
// Representation and caches it; concurrent first calls see the same
// instance. Any other unknown class is a classification error: a missing
// specification, not a language-level condition.
func (r *Registry) ForClass(c reflect.Type) (*Representation, error) {
	r.mu.RLock()
	rep, ok := r.classes[c]
	r.mu.RUnlock()
	if ok {
		return rep, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have won the race to compute it.
	if rep, ok = r.classes[c]; ok {
		return rep, nil
	}
	if c != nil && c.Implements(carrierIface) {
		// Values of this class know their own type; one shared
		// representation serves every type using the class.
		rep = &Representation{class: c}
		r.classes[c] = rep
		trace.Publish(c.String(), "(shared)")
		return rep, nil
	}
	return nil, &ClassificationError{Class: c}
}

// TypeOf returns the Type of a native value.
func (r *Registry) TypeOf(v any) (*Type, error) {
	rep, err := r.Of(v)
	if err != nil {
		return nil, err
	}
	return rep.TypeOf(v), nil
}

// register binds one class to a representation. It is an error to bind a
// class twice.
func (r *Registry) register(c reflect.Type, rep *Representation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, exists := r.classes[c]; exists && old != rep {
		return configErrorf("", "native class %v already bound to %s", c, old)
	}
	r.classes[c] = rep
	return nil
}

// registerAll publishes a batch of class bindings. All succeed or fail
// together: on any clash nothing from the batch remains registered.
// Bindings land in class-name order so trace output for one batch is
// stable across runs.
func (r *Registry) registerAll(batch map[reflect.Type]*Representation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c, rep := range batch {
		if old, exists := r.classes[c]; exists && old != rep {
			return configErrorf("", "native class %v already bound to %s", c, old)
		}
	}
	order := make([]reflect.Type, 0, len(batch))
	for c := range batch {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].String() < order[j].String()
	})
	for _, c := range order {
		rep := batch[c]
		r.classes[c] = rep
		trace.Publish(c.String(), rep.String())
	}
	return nil
}

// lookup reads the registry without computing anything, for the factory's
// clash checks.
func (r *Registry) lookup(c reflect.Type) (*Representation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.classes[c]
	return rep, ok
}

// Reset empties the registry. Per-entry removal is deliberately not
// offered; reset the whole registry (normally only in tests) and rebuild.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.classes = make(map[reflect.Type]*Representation)
	r.mu.Unlock()
}

// Size returns the number of classes currently bound.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}
