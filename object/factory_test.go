package object

import (
	"errors"
	"reflect"
	"testing"
)

type eVal struct{}
type fVal struct{}
type gVal struct{}

func TestBootstrapTypes(t *testing.T) {
	f := NewFactory()

	typeType := f.TypeType()
	objectType := f.ObjectType()

	// The type of any type, including 'type' and 'object' themselves, is
	// 'type' — with no explicit construction beforehand.
	got, err := f.Registry().TypeOf(typeType)
	if err != nil {
		t.Fatalf("TypeOf(type) failed: %v", err)
	}
	if got != typeType {
		t.Errorf("TypeOf(type) = %v, want %v", got, typeType)
	}
	got, err = f.Registry().TypeOf(objectType)
	if err != nil {
		t.Fatalf("TypeOf(object) failed: %v", err)
	}
	if got != typeType {
		t.Errorf("TypeOf(object) = %v, want %v", got, typeType)
	}

	// The hand-built types are indistinguishable from factory output:
	// complete MROs and working member lookup.
	mro := typeType.MRO()
	if len(mro) != 2 || mro[0] != typeType || mro[1] != objectType {
		t.Errorf("type MRO = %v, want [type, object]", mro)
	}
	if _, _, ok := typeType.Lookup("repr"); !ok {
		t.Error("bootstrap 'type' has no repr member")
	}
	if _, _, ok := objectType.Lookup("repr"); !ok {
		t.Error("bootstrap 'object' has no repr member")
	}
	if !typeType.IsSubtype(objectType) {
		t.Error("'type' should be a subtype of 'object'")
	}
}

func TestSimpleTypeCreation(t *testing.T) {
	f := NewFactory()
	typ, err := f.FromSpec(NewTypeSpec("E").Primary(reflect.TypeOf(eVal{})))
	if err != nil {
		t.Fatalf("FromSpec failed: %v", err)
	}
	if typ.Kind() != KindSimple {
		t.Errorf("kind = %v, want simple", typ.Kind())
	}
	rep, err := f.Registry().Of(eVal{})
	if err != nil {
		t.Fatalf("Of failed: %v", err)
	}
	if rep.TypeOf(eVal{}) != typ || !rep.Canonical() {
		t.Error("canonical representation not bound to the new type")
	}
	if len(typ.Bases()) != 1 || typ.Bases()[0] != f.ObjectType() {
		t.Error("empty base list should default to the universal base")
	}
}

func TestAdoptiveTypeCreation(t *testing.T) {
	f := NewFactory()
	typ, err := f.FromSpec(NewTypeSpec("EF").
		Primary(reflect.TypeOf(eVal{})).
		Adopt(reflect.TypeOf(fVal{})))
	if err != nil {
		t.Fatalf("FromSpec failed: %v", err)
	}
	if typ.Kind() != KindAdoptive {
		t.Errorf("kind = %v, want adoptive", typ.Kind())
	}

	er, _ := f.Registry().Of(eVal{})
	fr, _ := f.Registry().Of(fVal{})
	if er == fr {
		t.Fatal("distinct classes should have distinct representations")
	}
	if er.TypeOf(eVal{}) != typ || fr.TypeOf(fVal{}) != typ {
		t.Error("both representations should map to the one adoptive type")
	}
	if !er.Canonical() || fr.Canonical() {
		t.Error("canonical/adopted marking is wrong")
	}
	if fr.Index() != 1 {
		t.Errorf("adopted index = %d, want 1", fr.Index())
	}
}

func TestDuplicateClassBinding(t *testing.T) {
	f := NewFactory()
	if _, err := f.FromSpec(NewTypeSpec("first").Primary(reflect.TypeOf(eVal{}))); err != nil {
		t.Fatalf("first FromSpec failed: %v", err)
	}
	_, err := f.FromSpec(NewTypeSpec("second").Primary(reflect.TypeOf(eVal{})))
	if err == nil {
		t.Fatal("claiming a bound class twice should fail")
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	// The failed construction must not have published anything.
	if _, ok := f.Lookup("second"); ok {
		t.Error("failed type was published")
	}
}

func TestDuplicateMemberName(t *testing.T) {
	f := NewFactory()
	_, err := f.FromSpec(NewTypeSpec("dup").
		Primary(reflect.TypeOf(eVal{})).
		Member(&Attribute{Name: "x", Value: 1}, &Attribute{Name: "x", Value: 2}))
	if err == nil {
		t.Fatal("duplicate member names should fail at construction")
	}
}

func TestCyclicBases(t *testing.T) {
	f := NewFactory()
	if err := f.Define(NewTypeSpec("P").BaseNamed("Q").Primary(reflect.TypeOf(eVal{}))); err != nil {
		t.Fatal(err)
	}
	if err := f.Define(NewTypeSpec("Q").BaseNamed("P").Primary(reflect.TypeOf(fVal{}))); err != nil {
		t.Fatal(err)
	}
	err := f.BuildAll()
	if err == nil {
		t.Fatal("cyclic bases should fail during linearization")
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if _, ok := f.Lookup("P"); ok {
		t.Error("type from a cyclic cluster was published")
	}
}

func TestDanglingBaseName(t *testing.T) {
	f := NewFactory()
	_, err := f.FromSpec(NewTypeSpec("R").BaseNamed("no_such_type").
		Primary(reflect.TypeOf(eVal{})))
	if err == nil {
		t.Fatal("dangling base name should fail")
	}
}

func TestReentrantConstruction(t *testing.T) {
	f := NewFactory()

	// B's members need A's identity while A — which pulled B in as its
	// base — is still mid-construction.
	var seenDuringB *Type
	specB := NewTypeSpec("A2").
		Primary(reflect.TypeOf(fVal{})).
		MembersFrom(func(res Resolver) ([]Member, error) {
			a, err := res.Ref("A1")
			if err != nil {
				return nil, err
			}
			seenDuringB = a
			return []Member{&Attribute{Name: "partner", Value: a}}, nil
		})
	if err := f.Define(specB); err != nil {
		t.Fatal(err)
	}

	a, err := f.FromSpec(NewTypeSpec("A1").BaseNamed("A2").
		Primary(reflect.TypeOf(eVal{})).
		Member(&Attribute{Name: "own", Value: true}))
	if err != nil {
		t.Fatalf("FromSpec failed: %v", err)
	}

	if seenDuringB != a {
		t.Fatal("reentrant reference did not resolve to the type under construction")
	}

	// After construction returns, both member tables are complete and
	// mutually consistent.
	b, ok := f.Lookup("A2")
	if !ok {
		t.Fatal("A2 not published")
	}
	m, _, ok := b.Lookup("partner")
	if !ok || m.(*Attribute).Value != a {
		t.Error("A2's member table does not reference A1")
	}
	if _, _, ok := a.Lookup("own"); !ok {
		t.Error("A1's own member table incomplete")
	}
	if _, _, ok := a.Lookup("partner"); !ok {
		t.Error("A1 does not inherit through its base")
	}
	if !a.IsSubtype(b) {
		t.Error("A1 should be a subtype of its base A2")
	}
}

func TestBuildAllForwardReference(t *testing.T) {
	f := NewFactory()
	// Submitted in the "wrong" order: the base comes last.
	if err := f.Define(NewTypeSpec("leaf").BaseNamed("root").Primary(reflect.TypeOf(eVal{}))); err != nil {
		t.Fatal(err)
	}
	if err := f.Define(NewTypeSpec("root").Abstract()); err != nil {
		t.Fatal(err)
	}
	if err := f.BuildAll(); err != nil {
		t.Fatalf("BuildAll failed: %v", err)
	}
	leaf, _ := f.Lookup("leaf")
	root, _ := f.Lookup("root")
	if leaf == nil || root == nil {
		t.Fatal("types not published")
	}
	if leaf.Bases()[0] != root {
		t.Error("forward base reference not resolved")
	}
	if len(root.Representations()) != 0 {
		t.Error("abstract type should own no representation")
	}
}

func TestReplaceableSharedClass(t *testing.T) {
	f := NewFactory()
	t1, err := f.FromSpec(NewTypeSpec("first").Replaceable())
	if err != nil {
		t.Fatal(err)
	}
	t2, err := f.FromSpec(NewTypeSpec("second").Replaceable())
	if err != nil {
		t.Fatalf("two replaceable types should share the instance class: %v", err)
	}

	v1, v2 := NewInstance(t1), NewInstance(t2)
	r1, err := f.Registry().Of(v1)
	if err != nil {
		t.Fatal(err)
	}
	r2, _ := f.Registry().Of(v2)
	if r1 != r2 {
		t.Error("instances of replaceable types should share one representation")
	}
	if r1.TypeOf(v1) != t1 || r2.TypeOf(v2) != t2 {
		t.Error("shared representation should consult the instance for its type")
	}
}

func TestReplaceableClassMustCarry(t *testing.T) {
	f := NewFactory()
	_, err := f.FromSpec(NewTypeSpec("bad").Replaceable().Primary(reflect.TypeOf(gVal{})))
	if err == nil {
		t.Fatal("replaceable type over a non-carrier class should fail")
	}
}

func TestDefineDuplicateName(t *testing.T) {
	f := NewFactory()
	if err := f.Define(NewTypeSpec("twice").Primary(reflect.TypeOf(eVal{}))); err != nil {
		t.Fatal(err)
	}
	if err := f.Define(NewTypeSpec("twice").Primary(reflect.TypeOf(fVal{}))); err == nil {
		t.Fatal("defining the same name twice should fail")
	}
}
