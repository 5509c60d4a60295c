package dispatch

import (
	"reflect"
	"testing"

	"stable/object"
)

type redVal struct{}
type blueVal struct{}

var (
	redClass  = reflect.TypeOf(redVal{})
	blueClass = reflect.TypeOf(blueVal{})
)

// colorFactory builds two unrelated types that both answer "combine" and
// "flip", for exercising the call-site guard.
func colorFactory(t *testing.T) *object.Factory {
	t.Helper()
	f := object.NewFactory()
	for _, c := range []struct {
		name  string
		class reflect.Type
	}{
		{"red", redClass},
		{"blue", blueClass},
	} {
		name := c.name
		if _, err := f.FromSpec(object.NewTypeSpec(c.name).Primary(c.class).
			Member(object.NewBinaryOp("combine").Fallback(
				func(left, right any) (any, error) { return name, nil })).
			Member(object.NewUnaryOp("flip",
				func(v any) (any, error) { return name, nil }))); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func TestSiteCachesStablePair(t *testing.T) {
	f := colorFactory(t)
	eng := New(f.Registry())
	site := eng.BinarySite("combine")

	for i := 0; i < 10; i++ {
		got, err := site.Invoke(redVal{}, redVal{})
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if got != "red" {
			t.Fatalf("call %d = %v, want red", i, got)
		}
	}
	if n := eng.Resolutions(); n != 1 {
		t.Errorf("resolutions = %d, want 1 (guard hit on repeat calls)", n)
	}
}

func TestSiteReresolvesOnPairChange(t *testing.T) {
	f := colorFactory(t)
	eng := New(f.Registry())
	site := eng.BinarySite("combine")

	if _, err := site.Invoke(redVal{}, redVal{}); err != nil {
		t.Fatal(err)
	}
	got, err := site.Invoke(blueVal{}, blueVal{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "blue" {
		t.Errorf("after pair change got %v, want blue", got)
	}
	if n := eng.Resolutions(); n != 2 {
		t.Errorf("resolutions = %d, want 2 (exactly one re-resolution)", n)
	}

	// The new pair is now the cached one.
	if _, err := site.Invoke(blueVal{}, blueVal{}); err != nil {
		t.Fatal(err)
	}
	if n := eng.Resolutions(); n != 2 {
		t.Errorf("resolutions = %d, want 2 (new pair cached)", n)
	}
}

func TestSiteMonomorphicThrash(t *testing.T) {
	f := colorFactory(t)
	eng := New(f.Registry())
	site := eng.BinarySite("combine")

	// Alternating pairs defeat a single-entry cache: every call resolves.
	const rounds = 4
	for i := 0; i < rounds; i++ {
		if _, err := site.Invoke(redVal{}, redVal{}); err != nil {
			t.Fatal(err)
		}
		if _, err := site.Invoke(blueVal{}, blueVal{}); err != nil {
			t.Fatal(err)
		}
	}
	if n := eng.Resolutions(); n != 2*rounds {
		t.Errorf("resolutions = %d, want %d (alternation thrashes the slot)", n, 2*rounds)
	}
}

func TestSitesAreIndependent(t *testing.T) {
	f := colorFactory(t)
	eng := New(f.Registry())
	a := eng.BinarySite("combine")
	b := eng.BinarySite("combine")

	if _, err := a.Invoke(redVal{}, redVal{}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Invoke(redVal{}, redVal{}); err != nil {
		t.Fatal(err)
	}
	// Each site resolved for itself; neither saw the other's cache.
	if n := eng.Resolutions(); n != 2 {
		t.Errorf("resolutions = %d, want 2 (one per site)", n)
	}
}

func TestSiteDoesNotCacheFailures(t *testing.T) {
	f := object.NewFactory()
	if _, err := f.FromSpec(object.NewTypeSpec("mute").Primary(redClass)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.FromSpec(object.NewTypeSpec("loud").Primary(blueClass).
		Member(object.NewBinaryOp("combine").Fallback(
			func(left, right any) (any, error) { return "loud", nil }))); err != nil {
		t.Fatal(err)
	}

	eng := New(f.Registry())
	site := eng.BinarySite("combine")

	if _, err := site.Invoke(redVal{}, redVal{}); err == nil {
		t.Fatal("expected failure for type without the operation")
	}
	// A failed resolution must not poison the site for other pairs.
	got, err := site.Invoke(blueVal{}, blueVal{})
	if err != nil {
		t.Fatalf("Invoke after failure: %v", err)
	}
	if got != "loud" {
		t.Errorf("result = %v, want loud", got)
	}
}

func TestUnarySiteCaches(t *testing.T) {
	f := colorFactory(t)
	eng := New(f.Registry())
	site := eng.UnarySite("flip")

	for i := 0; i < 5; i++ {
		got, err := site.Invoke(redVal{})
		if err != nil {
			t.Fatal(err)
		}
		if got != "red" {
			t.Fatalf("call %d = %v, want red", i, got)
		}
	}
	got, err := site.Invoke(blueVal{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "blue" {
		t.Errorf("after operand change got %v, want blue", got)
	}
	if n := eng.Resolutions(); n != 2 {
		t.Errorf("resolutions = %d, want 2", n)
	}
}

func TestSharedRepresentationReresolvesPerCall(t *testing.T) {
	f := object.NewFactory()
	mk := func(name, who string) *object.Type {
		typ, err := f.FromSpec(object.NewTypeSpec(name).Replaceable().
			Member(object.NewBinaryOp("combine").Fallback(
				func(left, right any) (any, error) { return who, nil })))
		if err != nil {
			t.Fatal(err)
		}
		return typ
	}
	first := mk("first", "first")
	second := mk("second", "second")

	eng := New(f.Registry())
	site := eng.BinarySite("combine")

	a := object.NewInstance(first)
	b := object.NewInstance(second)

	// Both instances share one representation class, so the guard alone
	// cannot tell them apart. Dispatch must still reach each one's own type.
	got, err := site.Invoke(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if got != "first" {
		t.Errorf("first ? first = %v, want first", got)
	}
	got, err = site.Invoke(b, b)
	if err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Errorf("second ? second = %v, want second", got)
	}
}
