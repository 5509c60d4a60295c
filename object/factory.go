package object

import (
	"fmt"
	"reflect"
	"sync"

	"stable/trace"
)

// instanceClass is the default primary class for replaceable types.
var instanceClass = reflect.TypeOf((*Instance)(nil))

// typeClass is the native class of type objects themselves.
var typeClass = reflect.TypeOf((*Type)(nil))

// Factory is the home of type creation. It owns the registry its types are
// published into, the table of constructions in progress, and the batch of
// representations awaiting publication. A single lock serializes all
// construction; reentrant needs of one construction (type A requiring type
// B mid-build) are met on the same goroutine through the in-progress table,
// counted by a depth field rather than a second lock.
//
// Nothing a construction creates is visible to dispatch until the outermost
// frame completes and publishes the whole batch. Reentrant frames may see
// partial types, but only for identity-level use; a partial type reaching
// dispatch panics rather than misbehaving quietly.
type Factory struct {
	mu       sync.Mutex
	registry *Registry

	depth int // construction nesting on the goroutine holding mu

	pending      map[string]*TypeSpec // submitted, not yet built
	pendingOrder []string

	built       map[string]*Type // published, indexed by name
	inProgress  map[string]*Type // shells under construction
	tasks       []*buildTask     // shells awaiting finalize, in creation order
	unpublished map[reflect.Type]*Representation

	objectType *Type // universal base
	typeType   *Type // the type of types
}

// buildTask pairs a shell with its spec between the two construction
// phases.
type buildTask struct {
	t    *Type
	spec *TypeSpec
}

// NewFactory creates a factory with a fresh registry and bootstraps the two
// types the generic construction path itself depends on: 'object', the
// universal base, and 'type', the type of types. These are hand-assembled
// because the factory machinery needs them to exist before it can run.
func NewFactory() *Factory {
	f := &Factory{
		registry:    NewRegistry(),
		pending:     make(map[string]*TypeSpec),
		built:       make(map[string]*Type),
		inProgress:  make(map[string]*Type),
		unpublished: make(map[reflect.Type]*Representation),
	}

	obj := &Type{
		name:  "object",
		kind:  KindSimple,
		flags: FlagAbstract,
	}
	obj.mro = []*Type{obj}
	obj.members = map[string]Member{
		"repr": NewUnaryOp("repr", func(v any) (any, error) {
			return fmt.Sprintf("%v", v), nil
		}),
	}
	obj.order = []string{"repr"}
	obj.complete = true

	typ := &Type{
		name:  "type",
		kind:  KindSimple,
		bases: []*Type{obj},
	}
	typ.mro = []*Type{typ, obj}
	typ.members = map[string]Member{
		"repr": NewUnaryOp("repr", func(v any) (any, error) {
			t, ok := v.(*Type)
			if !ok {
				return nil, ErrNotApplicable
			}
			return t.String(), nil
		}),
	}
	typ.order = []string{"repr"}
	typ.complete = true

	rep := &Representation{class: typeClass, typ: typ}
	typ.reprs = []*Representation{rep}

	obj.typeType = typ
	typ.typeType = typ

	// Publishing by hand cannot clash: the registry is empty.
	if err := f.registry.register(typeClass, rep); err != nil {
		panic("object: bootstrap registration failed: " + err.Error())
	}

	f.objectType = obj
	f.typeType = typ
	f.built["object"] = obj
	f.built["type"] = typ
	return f
}

// Registry returns the registry this factory publishes into.
func (f *Factory) Registry() *Registry { return f.registry }

// ObjectType returns the universal base type.
func (f *Factory) ObjectType() *Type { return f.objectType }

// TypeType returns the type of types.
func (f *Factory) TypeType() *Type { return f.typeType }

// Lookup finds a published type by name.
func (f *Factory) Lookup(name string) (*Type, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.built[name]
	return t, ok
}

// Define submits a specification without building it. The type is built
// when BuildAll runs or when another construction references it by name,
// so forward references between specifications resolve regardless of
// submission order.
func (f *Factory) Define(spec *TypeSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := spec.name
	if _, dup := f.pending[name]; dup {
		return configErrorf(name, "type specified twice")
	}
	if _, dup := f.built[name]; dup {
		return configErrorf(name, "type already built")
	}
	f.pending[name] = spec
	f.pendingOrder = append(f.pendingOrder, name)
	return nil
}

// BuildAll constructs every pending specification. Construction order
// follows submission order, except that a reference from one type pulls in
// another ahead of its turn.
func (f *Factory) BuildAll() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < len(f.pendingOrder); i++ {
		name := f.pendingOrder[i]
		spec, ok := f.pending[name]
		if !ok {
			continue // already built through a reference
		}
		delete(f.pending, name)
		if _, err := f.buildLocked(spec); err != nil {
			return err
		}
	}
	f.pendingOrder = f.pendingOrder[:0]
	return nil
}

// FromSpec constructs a type from the given specification and publishes it
// (and anything its construction pulled in) before returning. Malformed
// specifications fail here, never at first use.
func (f *Factory) FromSpec(spec *TypeSpec) (*Type, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buildLocked(spec)
}

// buildLocked runs one construction frame. The outermost frame finalizes
// member tables for the whole cluster and publishes the batched
// representations; inner (reentrant) frames only build shells.
func (f *Factory) buildLocked(spec *TypeSpec) (*Type, error) {
	f.depth++
	trace.Construct(spec.name, f.depth)
	t, err := f.buildShell(spec)
	if err == nil && f.depth == 1 {
		if err = f.finalizeAll(); err == nil {
			err = f.publishAll()
		}
	}
	f.depth--
	if err != nil {
		if f.depth == 0 {
			f.discardLocked()
		}
		return nil, err
	}
	return t, nil
}

// buildShell creates the identity of a type: name, kind, bases and
// representations. The member table is left for the finalize phase.
func (f *Factory) buildShell(spec *TypeSpec) (*Type, error) {
	spec.frozen = true
	if err := spec.validate(); err != nil {
		return nil, err
	}
	name := spec.name
	if _, dup := f.built[name]; dup {
		return nil, configErrorf(name, "type already built")
	}
	if _, dup := f.inProgress[name]; dup {
		return nil, configErrorf(name, "type already under construction")
	}

	// Resolve bases; an empty list defaults to the universal base.
	var bases []*Type
	if len(spec.bases) == 0 {
		bases = []*Type{f.objectType}
	} else {
		for _, ref := range spec.bases {
			b := ref.t
			if b == nil {
				var err error
				if b, err = f.resolveTypeLocked(ref.name); err != nil {
					return nil, &ConfigError{TypeName: name, Reason: "base " + err.Error()}
				}
			}
			bases = append(bases, b)
		}
	}

	t := &Type{
		name:     name,
		kind:     spec.kind(),
		flags:    spec.flags,
		bases:    bases,
		typeType: f.typeType,
	}

	switch {
	case spec.flags&FlagAbstract != 0:
		// No representation: values of this type are always instances of
		// a concrete subtype.

	case t.kind == KindReplaceable:
		primary := spec.primary
		if primary == nil {
			primary = instanceClass
		}
		rep, err := f.sharedRepresentation(name, primary)
		if err != nil {
			return nil, err
		}
		t.reprs = []*Representation{rep}

	default:
		rep := &Representation{class: spec.primary, typ: t}
		if err := f.addRepresentation(name, spec.primary, rep); err != nil {
			return nil, err
		}
		t.reprs = []*Representation{rep}
		for i, c := range spec.adopted {
			adopted := &Representation{class: c, typ: t, index: i + 1}
			if err := f.addRepresentation(name, c, adopted); err != nil {
				return nil, err
			}
			t.reprs = append(t.reprs, adopted)
		}
	}

	f.inProgress[name] = t
	f.tasks = append(f.tasks, &buildTask{t: t, spec: spec})
	return t, nil
}

// sharedRepresentation finds or creates the shared representation of a
// replaceable type's primary class. The class may already be bound, but
// only to a shared representation; anything else is a clash.
func (f *Factory) sharedRepresentation(typeName string, primary reflect.Type) (*Representation, error) {
	if !primary.Implements(carrierIface) {
		return nil, configErrorf(typeName,
			"replaceable type's class %v does not carry a type reference", primary)
	}
	if rep, ok := f.unpublished[primary]; ok {
		if !rep.Shared() {
			return nil, configErrorf(typeName, "native class %v already bound to %s", primary, rep)
		}
		return rep, nil
	}
	if rep, ok := f.registry.lookup(primary); ok {
		if !rep.Shared() {
			return nil, configErrorf(typeName, "native class %v already bound to %s", primary, rep)
		}
		return rep, nil
	}
	rep := &Representation{class: primary}
	f.unpublished[primary] = rep
	return rep, nil
}

// addRepresentation records a class binding in the unpublished batch,
// checking both the batch and the published registry for a clash. A native
// class claimed twice is a fatal configuration error.
func (f *Factory) addRepresentation(typeName string, c reflect.Type, rep *Representation) error {
	if c == nil {
		return configErrorf(typeName, "nil native class")
	}
	if old, ok := f.unpublished[c]; ok {
		return configErrorf(typeName, "native class %v already bound to %s", c, old)
	}
	if old, ok := f.registry.lookup(c); ok {
		return configErrorf(typeName, "native class %v already bound to %s", c, old)
	}
	f.unpublished[c] = rep
	return nil
}

// resolveTypeLocked finds a type by name for use during construction:
// already built, under construction (identity only), or pending (built now,
// reentrantly). A name matching nothing is a dangling reference.
func (f *Factory) resolveTypeLocked(name string) (*Type, error) {
	if t, ok := f.built[name]; ok {
		return t, nil
	}
	if t, ok := f.inProgress[name]; ok {
		return t, nil
	}
	if spec, ok := f.pending[name]; ok {
		delete(f.pending, name)
		return f.buildLocked(spec)
	}
	return nil, configErrorf(name, "type name resolves to nothing")
}

// finalizeAll computes linearizations and fills member tables for every
// shell awaiting completion. Member providers may pull new shells into the
// task list; the loop keeps going until everything is finalized.
func (f *Factory) finalizeAll() error {
	for i := 0; i < len(f.tasks); i++ {
		if err := f.finalizeType(f.tasks[i]); err != nil {
			return err
		}
	}
	return nil
}

// finalizeType completes one type: linearized bases, then the member table.
// After this no caller can observe a half-populated table.
func (f *Factory) finalizeType(task *buildTask) error {
	t, spec := task.t, task.spec
	if t.complete {
		return nil
	}

	mro, err := linearize(t)
	if err != nil {
		return err
	}

	members := make(map[string]Member)
	var order []string
	install := func(m Member) error {
		name := m.MemberName()
		if _, dup := members[name]; dup {
			return configErrorf(t.name, "duplicate member '%s'", name)
		}
		members[name] = m
		order = append(order, name)
		return nil
	}
	for _, m := range spec.members {
		if err := install(m); err != nil {
			return err
		}
	}
	if spec.memberFn != nil {
		extra, err := spec.memberFn(&resolver{f})
		if err != nil {
			return &ConfigError{TypeName: t.name, Reason: "member provider: " + err.Error()}
		}
		for _, m := range extra {
			if err := install(m); err != nil {
				return err
			}
		}
	}

	t.mro = mro
	t.members = members
	t.order = order
	t.complete = true
	trace.Finalize(t.name, t.kind.String())
	return nil
}

// publishAll registers the batched representations, all or nothing, and
// moves the cluster's types from in-progress to built. Only now does the
// cluster become visible to dispatch.
func (f *Factory) publishAll() error {
	if err := f.registry.registerAll(f.unpublished); err != nil {
		return err
	}
	for name, t := range f.inProgress {
		f.built[name] = t
	}
	f.inProgress = make(map[string]*Type)
	f.unpublished = make(map[reflect.Type]*Representation)
	f.tasks = f.tasks[:0]
	return nil
}

// discardLocked abandons all work in progress after a construction error.
// Nothing partial has been published, so dropping it restores the factory.
func (f *Factory) discardLocked() {
	f.inProgress = make(map[string]*Type)
	f.unpublished = make(map[reflect.Type]*Representation)
	f.tasks = f.tasks[:0]
}

// resolver adapts the factory for member providers running at finalize.
type resolver struct{ f *Factory }

// Ref resolves a type by name. The result may be identity-only if the type
// is itself still under construction.
func (r *resolver) Ref(name string) (*Type, error) {
	return r.f.resolveTypeLocked(name)
}
