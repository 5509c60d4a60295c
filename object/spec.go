package object

import "reflect"

// Resolver gives member providers access to types by name during the
// finalize phase of construction. The type returned may still be under
// construction: it is valid for identity-level use (recording a reference,
// comparing pointers) but not for member lookup or dispatch.
type Resolver interface {
	Ref(name string) (*Type, error)
}

// MemberFunc supplies a type's members at finalize time. It runs once the
// whole cluster of types under construction has its identities settled, so
// it may reference other types in the cluster through the resolver.
type MemberFunc func(res Resolver) ([]Member, error)

// baseRef is a base type given either directly or by name, resolved during
// shell construction.
type baseRef struct {
	t    *Type
	name string
}

// TypeSpec describes a type for the factory: name, bases, the native
// classes it owns, its members and its kind. A spec is frozen when the
// factory starts work on it; later changes have no effect on the type.
type TypeSpec struct {
	name     string
	flags    Flags
	bases    []baseRef
	primary  reflect.Type
	adopted  []reflect.Type
	replace  bool
	members  []Member
	memberFn MemberFunc
	frozen   bool
}

// NewTypeSpec starts a specification for a type of the given name.
func NewTypeSpec(name string) *TypeSpec {
	return &TypeSpec{name: name}
}

// Name returns the name of the type being specified.
func (s *TypeSpec) Name() string { return s.name }

// Primary sets the canonical native class of the type.
func (s *TypeSpec) Primary(c reflect.Type) *TypeSpec {
	if !s.frozen {
		s.primary = c
	}
	return s
}

// Adopt adds native classes the type adopts as alternate representations.
func (s *TypeSpec) Adopt(classes ...reflect.Type) *TypeSpec {
	if !s.frozen {
		s.adopted = append(s.adopted, classes...)
	}
	return s
}

// Base adds base types given directly, in specification order.
func (s *TypeSpec) Base(bases ...*Type) *TypeSpec {
	if !s.frozen {
		for _, b := range bases {
			s.bases = append(s.bases, baseRef{t: b})
		}
	}
	return s
}

// BaseNamed adds base types by name, resolved against types already built,
// in progress, or still pending when construction runs.
func (s *TypeSpec) BaseNamed(names ...string) *TypeSpec {
	if !s.frozen {
		for _, n := range names {
			s.bases = append(s.bases, baseRef{name: n})
		}
	}
	return s
}

// Replaceable marks the type's member table as legally mutable after
// publication. A replaceable type shares its representation with other
// types whose instances carry a type reference.
func (s *TypeSpec) Replaceable() *TypeSpec {
	if !s.frozen {
		s.replace = true
	}
	return s
}

// Abstract marks the type as owning no representation of its own.
func (s *TypeSpec) Abstract() *TypeSpec {
	if !s.frozen {
		s.flags |= FlagAbstract
	}
	return s
}

// Member adds members known up front.
func (s *TypeSpec) Member(members ...Member) *TypeSpec {
	if !s.frozen {
		s.members = append(s.members, members...)
	}
	return s
}

// MembersFrom sets a provider called at finalize time for members that need
// to reference other types under construction.
func (s *TypeSpec) MembersFrom(fn MemberFunc) *TypeSpec {
	if !s.frozen {
		s.memberFn = fn
	}
	return s
}

// kind derives the type kind from what the spec declares.
func (s *TypeSpec) kind() Kind {
	switch {
	case s.replace:
		return KindReplaceable
	case len(s.adopted) > 0:
		return KindAdoptive
	default:
		return KindSimple
	}
}

// validate checks the spec's internal consistency before construction.
func (s *TypeSpec) validate() error {
	if s.name == "" {
		return configErrorf("", "type specification has no name")
	}
	if s.flags&FlagAbstract != 0 {
		if s.primary != nil || len(s.adopted) > 0 {
			return configErrorf(s.name, "abstract type cannot own native classes")
		}
		if s.replace {
			return configErrorf(s.name, "abstract type cannot be replaceable")
		}
		return nil
	}
	if s.replace && len(s.adopted) > 0 {
		return configErrorf(s.name, "replaceable type cannot adopt classes")
	}
	if !s.replace && s.primary == nil {
		return configErrorf(s.name, "type specification names no primary class")
	}
	return nil
}
