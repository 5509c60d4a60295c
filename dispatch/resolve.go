package dispatch

import (
	"errors"
	"fmt"
	"sync/atomic"

	"stable/object"
	"stable/trace"
)

// OperandTypeError reports that an operation is defined by neither operand's
// type, or that every candidate implementation declined the pair. It is an
// ordinary language-level error, recoverable by the caller; both operand
// type names are preserved for the message.
type OperandTypeError struct {
	Op    string
	Left  string
	Right string // empty for unary operations
}

func (e *OperandTypeError) Error() string {
	if e.Right == "" {
		return fmt.Sprintf("unsupported operand type for %s: '%s'", e.Op, e.Left)
	}
	return fmt.Sprintf("unsupported operand types for %s: '%s' and '%s'", e.Op, e.Left, e.Right)
}

// Engine resolves operator implementations against a registry of types. It
// exists so call sites share one resolution-counting point; the counter is
// only observable, never consulted for behaviour.
type Engine struct {
	reg         *object.Registry
	resolutions atomic.Uint64
}

// New creates an engine over the given registry.
func New(reg *object.Registry) *Engine {
	return &Engine{reg: reg}
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() *object.Registry { return e.reg }

// Resolutions returns how many times full resolution has run, counting
// both binary and unary operations. Used by tests to observe cache
// behaviour.
func (e *Engine) Resolutions() uint64 { return e.resolutions.Load() }

// ResolveBinary finds the implementation to run for op on operands with the
// given representations. When either representation is shared between
// types, the returned implementation re-resolves from the operands' actual
// types on every call, since the representation alone cannot identify them.
func (e *Engine) ResolveBinary(op string, left, right *object.Representation) (object.BinaryFunc, error) {
	e.resolutions.Add(1)
	if left.Shared() || right.Shared() {
		return func(l, r any) (any, error) {
			e.resolutions.Add(1)
			fn, err := e.resolveBinaryTypes(op, left.TypeOf(l), right.TypeOf(r), left, right)
			if err != nil {
				return nil, err
			}
			return fn(l, r)
		}, nil
	}
	return e.resolveBinaryTypes(op, left.TypeOf(nil), right.TypeOf(nil), left, right)
}

// resolveBinaryTypes applies the resolution protocol proper:
//
//  1. the left type's definition of op is the first candidate;
//  2. unless the right type is a strict subtype of the left type and
//     defines op itself, in which case right goes first;
//  3. the loser of the ordering is kept as the fallback candidate, tried
//     when the first signals it is not applicable;
//  4. no candidate at all, or both declining, is an unsupported-operand
//     error naming both types.
//
// Candidates are narrowed to the implementation registered for the exact
// operand class pair when the defining type has one, falling back to the
// type-level implementation otherwise.
func (e *Engine) resolveBinaryTypes(op string, lt, rt *object.Type, left, right *object.Representation) (object.BinaryFunc, error) {
	leftOp, leftDef := lookupBinary(lt, op)
	rightOp, rightDef := lookupBinary(rt, op)

	var leftFn, rightFn object.BinaryFunc
	if leftOp != nil {
		leftFn = leftOp.Binary(left.Class(), right.Class())
	}
	if rightOp != nil && rightDef != leftDef {
		// The same inherited definition is one candidate, not two.
		rightFn = rightOp.Binary(left.Class(), right.Class())
	}

	first, second := leftFn, rightFn
	chosen := lt.Name()
	if rightFn != nil && rt != lt && rt.IsSubtype(lt) {
		// The right operand's type is more specific: it answers first.
		first, second = rightFn, leftFn
		chosen = rt.Name()
	}

	if first == nil && second == nil {
		trace.Resolve(op, lt.Name(), rt.Name(), "unsupported")
		return nil, &OperandTypeError{Op: op, Left: lt.Name(), Right: rt.Name()}
	}
	if first == nil {
		first, second = second, nil
		chosen = "other operand"
	}
	trace.Resolve(op, lt.Name(), rt.Name(), chosen)

	if second == nil {
		one := first
		return func(l, r any) (any, error) {
			res, err := one(l, r)
			if errors.Is(err, object.ErrNotApplicable) {
				return nil, &OperandTypeError{Op: op, Left: lt.Name(), Right: rt.Name()}
			}
			return res, err
		}, nil
	}

	a, b := first, second
	return func(l, r any) (any, error) {
		res, err := a(l, r)
		if !errors.Is(err, object.ErrNotApplicable) {
			return res, err
		}
		res, err = b(l, r)
		if errors.Is(err, object.ErrNotApplicable) {
			return nil, &OperandTypeError{Op: op, Left: lt.Name(), Right: rt.Name()}
		}
		return res, err
	}, nil
}

// ResolveUnary finds the implementation of a unary op for one operand
// representation, with the same shared-representation handling as
// ResolveBinary.
func (e *Engine) ResolveUnary(op string, r *object.Representation) (object.UnaryFunc, error) {
	e.resolutions.Add(1)
	if r.Shared() {
		return func(v any) (any, error) {
			e.resolutions.Add(1)
			fn, err := e.resolveUnaryType(op, r.TypeOf(v), r)
			if err != nil {
				return nil, err
			}
			return fn(v)
		}, nil
	}
	return e.resolveUnaryType(op, r.TypeOf(nil), r)
}

func (e *Engine) resolveUnaryType(op string, t *object.Type, r *object.Representation) (object.UnaryFunc, error) {
	opDesc, _ := lookupUnary(t, op)
	var fn object.UnaryFunc
	if opDesc != nil {
		fn = opDesc.Unary(r.Class())
	}
	if fn == nil {
		trace.Resolve(op, t.Name(), "", "unsupported")
		return nil, &OperandTypeError{Op: op, Left: t.Name()}
	}
	trace.Resolve(op, t.Name(), "", t.Name())
	inner := fn
	name := t.Name()
	return func(v any) (any, error) {
		res, err := inner(v)
		if errors.Is(err, object.ErrNotApplicable) {
			return nil, &OperandTypeError{Op: op, Left: name}
		}
		return res, err
	}, nil
}

// lookupBinary walks a type's MRO for an operation member with a binary
// form, returning the descriptor and the type defining it.
func lookupBinary(t *object.Type, op string) (*object.Operation, *object.Type) {
	m, def, ok := t.Lookup(op)
	if !ok {
		return nil, nil
	}
	o, isOp := m.(*object.Operation)
	if !isOp || !o.IsBinary() {
		return nil, nil
	}
	return o, def
}

// lookupUnary is the unary counterpart of lookupBinary.
func lookupUnary(t *object.Type, op string) (*object.Operation, *object.Type) {
	m, def, ok := t.Lookup(op)
	if !ok {
		return nil, nil
	}
	o, isOp := m.(*object.Operation)
	if !isOp || !o.IsUnary() {
		return nil, nil
	}
	return o, def
}
