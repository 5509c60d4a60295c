package typespec

// File is the top-level YAML document: a list of type definitions. The
// core imposes no file format; this package is the collaborator that maps
// one concrete format onto factory specifications.
type File struct {
	Types []TypeDef `yaml:"types"`
}

// TypeDef is one declarative type specification.
type TypeDef struct {
	Name     string         `yaml:"name"`
	Kind     string         `yaml:"kind"`    // simple (default), adoptive, replaceable
	Bases    []string       `yaml:"bases"`   // base type names; empty = universal base
	Classes  []string       `yaml:"classes"` // native class names, canonical first
	Abstract bool           `yaml:"abstract"`
	Attrs    map[string]any `yaml:"attrs"` // constant attribute members
}
