package dispatch

import (
	"sync/atomic"

	"stable/object"
)

// binaryEntry is one resolved result with its guard: the operand
// representations it was resolved for. The entry is replaced as a unit, so
// no reader ever sees a guard paired with the wrong implementation.
type binaryEntry struct {
	left, right *object.Representation
	fn          object.BinaryFunc
}

// BinarySite is the per-call-site cache for one binary operator. It holds a
// single entry: a site alternating between operand pairs re-resolves on
// every call, a deliberate trade of polymorphic-cache machinery for
// simplicity.
type BinarySite struct {
	op   string
	eng  *Engine
	cell atomic.Pointer[binaryEntry]
}

// BinarySite creates a call site for op.
func (e *Engine) BinarySite(op string) *BinarySite {
	return &BinarySite{op: op, eng: e}
}

// Op returns the operator this site dispatches.
func (s *BinarySite) Op() string { return s.op }

// Invoke runs the operator on two operands. If the operands'
// representations match the cached guard, the cached implementation runs
// directly; otherwise resolution runs and the cache entry is replaced.
// Resolution failures are surfaced, not cached.
func (s *BinarySite) Invoke(left, right any) (any, error) {
	lr, err := s.eng.reg.Of(left)
	if err != nil {
		return nil, err
	}
	rr, err := s.eng.reg.Of(right)
	if err != nil {
		return nil, err
	}

	if entry := s.cell.Load(); entry != nil && entry.left == lr && entry.right == rr {
		return entry.fn(left, right)
	}

	fn, err := s.eng.ResolveBinary(s.op, lr, rr)
	if err != nil {
		return nil, err
	}
	s.cell.Store(&binaryEntry{left: lr, right: rr, fn: fn})
	return fn(left, right)
}

// unaryEntry is the single-operand analogue of binaryEntry.
type unaryEntry struct {
	r  *object.Representation
	fn object.UnaryFunc
}

// UnarySite is the per-call-site cache for one unary operator.
type UnarySite struct {
	op   string
	eng  *Engine
	cell atomic.Pointer[unaryEntry]
}

// UnarySite creates a call site for a unary op.
func (e *Engine) UnarySite(op string) *UnarySite {
	return &UnarySite{op: op, eng: e}
}

// Op returns the operator this site dispatches.
func (s *UnarySite) Op() string { return s.op }

// Invoke runs the unary operator on one operand, with the same guarded
// single-entry caching as BinarySite.Invoke.
func (s *UnarySite) Invoke(v any) (any, error) {
	r, err := s.eng.reg.Of(v)
	if err != nil {
		return nil, err
	}

	if entry := s.cell.Load(); entry != nil && entry.r == r {
		return entry.fn(v)
	}

	fn, err := s.eng.ResolveUnary(s.op, r)
	if err != nil {
		return nil, err
	}
	s.cell.Store(&unaryEntry{r: r, fn: fn})
	return fn(v)
}
