package typespec

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"stable/object"
)

// ClassIndex maps the class names a specification file may use to native
// Go types. The host registers every class it wants specifications to be
// able to claim; an unknown name in a file is an error at load time.
type ClassIndex struct {
	mu sync.RWMutex
	m  map[string]reflect.Type
}

// NewClassIndex creates an empty index.
func NewClassIndex() *ClassIndex {
	return &ClassIndex{m: make(map[string]reflect.Type)}
}

// Register names a native class for use in specification files.
func (ix *ClassIndex) Register(name string, class reflect.Type) {
	ix.mu.Lock()
	ix.m[name] = class
	ix.mu.Unlock()
}

// Lookup resolves a class name.
func (ix *ClassIndex) Lookup(name string) (reflect.Type, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	c, ok := ix.m[name]
	return c, ok
}

// Names returns the registered class names, sorted.
func (ix *ClassIndex) Names() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	names := make([]string, 0, len(ix.m))
	for n := range ix.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load parses a specification document.
func Load(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing type specifications: %w", err)
	}
	return &f, nil
}

// LoadFile parses a specification file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

// Define submits every definition in the file to the factory and builds
// them. Definitions may reference each other by name in any order; the
// factory resolves forward references during construction, so a file is
// valid as long as no reference is left dangling once all definitions are
// submitted.
func (f *File) Define(fac *object.Factory, classes *ClassIndex) error {
	for _, def := range f.Types {
		spec, err := def.toSpec(classes)
		if err != nil {
			return err
		}
		if err := fac.Define(spec); err != nil {
			return err
		}
	}
	return fac.BuildAll()
}

// toSpec translates one definition into a factory specification.
func (d *TypeDef) toSpec(classes *ClassIndex) (*object.TypeSpec, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("type definition missing a name")
	}
	spec := object.NewTypeSpec(d.Name).BaseNamed(d.Bases...)

	switch d.Kind {
	case "", "simple", "adoptive":
		// Adoptive is implied by more than one class; naming it in the
		// file is allowed for clarity but adds nothing.
	case "replaceable":
		spec.Replaceable()
	default:
		return nil, fmt.Errorf("type '%s': unknown kind '%s'", d.Name, d.Kind)
	}

	if d.Abstract {
		if len(d.Classes) > 0 {
			return nil, fmt.Errorf("type '%s': abstract but claims classes", d.Name)
		}
		spec.Abstract()
	}

	for i, name := range d.Classes {
		c, ok := classes.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("type '%s': unknown native class '%s' (known: %s)",
				d.Name, name, strings.Join(classes.Names(), ", "))
		}
		if i == 0 {
			spec.Primary(c)
		} else {
			spec.Adopt(c)
		}
	}
	if d.Kind == "adoptive" && len(d.Classes) < 2 {
		return nil, fmt.Errorf("type '%s': adoptive kind needs at least two classes", d.Name)
	}

	// Attribute names sorted so member construction order is stable.
	attrNames := make([]string, 0, len(d.Attrs))
	for n := range d.Attrs {
		attrNames = append(attrNames, n)
	}
	sort.Strings(attrNames)
	for _, n := range attrNames {
		spec.Member(&object.Attribute{Name: n, Value: d.Attrs[n]})
	}

	return spec, nil
}
