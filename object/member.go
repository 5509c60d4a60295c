package object

import "reflect"

// UnaryFunc implements a unary operation on one operand.
type UnaryFunc func(v any) (any, error)

// BinaryFunc implements a binary operation. Operands arrive in their
// original left/right positions regardless of which type's implementation
// was selected. Returning ErrNotApplicable tells the dispatcher to try the
// other operand's implementation.
type BinaryFunc func(left, right any) (any, error)

// ClassPair keys a binary implementation by the concrete native classes of
// its operands. A type with several adopted representations can register a
// different implementation per pair.
type ClassPair struct {
	Left  reflect.Type
	Right reflect.Type
}

// Member is an entry in a type's member table: either a plain attribute or
// an operation descriptor.
type Member interface {
	MemberName() string
}

// Attribute is a named constant member of a type.
type Attribute struct {
	Name  string
	Value any
}

// MemberName returns the attribute's name.
func (a *Attribute) MemberName() string { return a.Name }

// Operation describes one named operator defined by a type: the
// representation-specific implementations and the representation-independent
// fallback, for either one or two operands.
type Operation struct {
	name string

	// Unary forms
	unary    UnaryFunc                  // representation-independent
	unaryFor map[reflect.Type]UnaryFunc // per-representation

	// Binary forms
	binary BinaryFunc               // representation-independent
	pairs  map[ClassPair]BinaryFunc // per operand-class pair
}

// NewUnaryOp creates an operation descriptor for a unary operator with a
// representation-independent implementation. fn may be nil if only
// per-representation implementations will be added with For.
func NewUnaryOp(name string, fn UnaryFunc) *Operation {
	return &Operation{name: name, unary: fn}
}

// NewBinaryOp creates an operation descriptor for a binary operator.
// Implementations are attached with Pair and Fallback.
func NewBinaryOp(name string) *Operation {
	return &Operation{name: name}
}

// MemberName returns the operator name.
func (op *Operation) MemberName() string { return op.name }

// For registers a unary implementation specific to one representation class.
func (op *Operation) For(class reflect.Type, fn UnaryFunc) *Operation {
	if op.unaryFor == nil {
		op.unaryFor = make(map[reflect.Type]UnaryFunc)
	}
	op.unaryFor[class] = fn
	return op
}

// Pair registers a binary implementation specific to one operand class pair.
func (op *Operation) Pair(left, right reflect.Type, fn BinaryFunc) *Operation {
	if op.pairs == nil {
		op.pairs = make(map[ClassPair]BinaryFunc)
	}
	op.pairs[ClassPair{left, right}] = fn
	return op
}

// Fallback registers the representation-independent binary implementation,
// used when no pair-specific implementation matches.
func (op *Operation) Fallback(fn BinaryFunc) *Operation {
	op.binary = fn
	return op
}

// Unary selects the unary implementation for an operand of the given class:
// the representation-specific one if registered, else the
// representation-independent one. Returns nil if the operation does not
// define a unary form for the class.
func (op *Operation) Unary(class reflect.Type) UnaryFunc {
	if fn, ok := op.unaryFor[class]; ok {
		return fn
	}
	return op.unary
}

// Binary selects the binary implementation for operands of the given
// classes: the pair-specific one if registered, else the fallback. Returns
// nil if the operation defines neither for this pair.
func (op *Operation) Binary(left, right reflect.Type) BinaryFunc {
	if fn, ok := op.pairs[ClassPair{left, right}]; ok {
		return fn
	}
	return op.binary
}

// IsBinary reports whether the operation has any binary implementation.
func (op *Operation) IsBinary() bool { return op.binary != nil || len(op.pairs) > 0 }

// IsUnary reports whether the operation has any unary implementation.
func (op *Operation) IsUnary() bool { return op.unary != nil || len(op.unaryFor) > 0 }
