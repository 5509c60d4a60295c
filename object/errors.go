package object

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotApplicable is the signal an operation implementation returns when it
// does not handle the operand pair it was given. It is not an error seen by
// language-level code: the dispatcher catches it and tries the other
// operand's implementation before giving up.
var ErrNotApplicable = errors.New("operation not applicable to operands")

// ConfigError reports a malformed type specification: a native class claimed
// by two types, a cyclic base list, a duplicate member name, or a base name
// that resolves to nothing. These are raised at construction time and abort
// the run; they are never deferred to first use.
type ConfigError struct {
	TypeName string // type being constructed, "" if none
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.TypeName == "" {
		return "type configuration: " + e.Reason
	}
	return fmt.Sprintf("type configuration for '%s': %s", e.TypeName, e.Reason)
}

// ClassificationError reports a native value whose class has no registered
// Representation. It indicates a missing specification, not a condition the
// running program can handle.
type ClassificationError struct {
	Class reflect.Type
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("no representation registered for native class %v", e.Class)
}

// configErrorf builds a ConfigError for the named type.
func configErrorf(typeName, format string, args ...interface{}) *ConfigError {
	return &ConfigError{TypeName: typeName, Reason: fmt.Sprintf(format, args...)}
}
