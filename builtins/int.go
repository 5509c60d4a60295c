package builtins

import (
	"math"
	"math/big"
	"strconv"

	"stable/object"
)

// normInt returns a big integer result in the preferred encoding: int64
// when the value fits, *big.Int otherwise. Keeping small results in the
// small representation is what makes the adoptive split pay off.
func normInt(z *big.Int) any {
	if z.IsInt64() {
		return z.Int64()
	}
	return z
}

// MakeInt returns the preferred encoding of an arbitrary integer literal.
func MakeInt(z *big.Int) any { return normInt(new(big.Int).Set(z)) }

// toBig coerces an integer-valued operand to *big.Int. The bool case makes
// bool values usable wherever ints are, as a subtype of 'int' should be.
func toBig(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int64:
		return big.NewInt(n), true
	case *big.Int:
		return n, true
	case bool:
		if n {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	default:
		return nil, false
	}
}

// intFallback builds the representation-independent implementation of an
// integer operation from its big-integer form.
func intFallback(fn func(a, b *big.Int) (any, error)) object.BinaryFunc {
	return func(left, right any) (any, error) {
		a, ok := toBig(left)
		if !ok {
			return nil, object.ErrNotApplicable
		}
		b, ok := toBig(right)
		if !ok {
			return nil, object.ErrNotApplicable
		}
		return fn(a, b)
	}
}

// Overflow-checked small-integer arithmetic. The second result reports
// whether the operation stayed within int64.
func addSmall(a, b int64) (int64, bool) {
	s := a + b
	if (s > a) == (b > 0) {
		return s, true
	}
	return 0, false
}

func subSmall(a, b int64) (int64, bool) {
	d := a - b
	if (d < a) == (b > 0) {
		return d, true
	}
	return 0, false
}

func mulSmall(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// smallPair wraps a checked small-integer operation, promoting to the big
// representation on overflow.
func smallPair(small func(a, b int64) (int64, bool), big func(a, b *big.Int) (any, error)) object.BinaryFunc {
	return func(left, right any) (any, error) {
		a, ok := left.(int64)
		if !ok {
			return nil, object.ErrNotApplicable
		}
		b, ok := right.(int64)
		if !ok {
			return nil, object.ErrNotApplicable
		}
		if r, fits := small(a, b); fits {
			return r, nil
		}
		ba, _ := toBig(a)
		bb, _ := toBig(b)
		return big(ba, bb)
	}
}

func bigAdd(a, b *big.Int) (any, error) { return normInt(new(big.Int).Add(a, b)), nil }
func bigSub(a, b *big.Int) (any, error) { return normInt(new(big.Int).Sub(a, b)), nil }
func bigMul(a, b *big.Int) (any, error) { return normInt(new(big.Int).Mul(a, b)), nil }

func bigDiv(a, b *big.Int) (any, error) {
	if b.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	q := new(big.Int)
	m := new(big.Int)
	q.QuoRem(a, b, m)
	// Floored division: the quotient rounds toward negative infinity.
	if m.Sign() != 0 && (m.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return normInt(q), nil
}

// intMembers assembles the operation table of the 'int' type. The
// (int64, int64) pair has a dedicated fast implementation per operator;
// every other pairing of the adopted representations goes through the
// big-integer fallback.
func intMembers() []object.Member {
	add := object.NewBinaryOp("add").
		Pair(ClassInt64, ClassInt64, smallPair(addSmall, bigAdd)).
		Fallback(intFallback(bigAdd))
	sub := object.NewBinaryOp("sub").
		Pair(ClassInt64, ClassInt64, smallPair(subSmall, bigSub)).
		Fallback(intFallback(bigSub))
	mul := object.NewBinaryOp("mul").
		Pair(ClassInt64, ClassInt64, smallPair(mulSmall, bigMul)).
		Fallback(intFallback(bigMul))
	div := object.NewBinaryOp("div").
		Fallback(intFallback(bigDiv))

	lt := object.NewBinaryOp("lt").
		Pair(ClassInt64, ClassInt64, func(left, right any) (any, error) {
			a, aok := left.(int64)
			b, bok := right.(int64)
			if !aok || !bok {
				return nil, object.ErrNotApplicable
			}
			return a < b, nil
		}).
		Fallback(intFallback(func(a, b *big.Int) (any, error) {
			return a.Cmp(b) < 0, nil
		}))

	neg := object.NewUnaryOp("neg", func(v any) (any, error) {
		// Generic form covers adopted representations and bool.
		z, ok := toBig(v)
		if !ok {
			return nil, object.ErrNotApplicable
		}
		return normInt(new(big.Int).Neg(z)), nil
	}).For(ClassInt64, func(v any) (any, error) {
		n := v.(int64)
		if n == math.MinInt64 {
			return new(big.Int).Neg(big.NewInt(n)), nil
		}
		return -n, nil
	})

	repr := object.NewUnaryOp("repr", nil).
		For(ClassInt64, func(v any) (any, error) {
			return strconv.FormatInt(v.(int64), 10), nil
		}).
		For(ClassBigInt, func(v any) (any, error) {
			return v.(*big.Int).String(), nil
		})

	return []object.Member{add, sub, mul, div, lt, neg, repr}
}
