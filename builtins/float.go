package builtins

import (
	"math/big"
	"strconv"

	"stable/object"
)

// toFloat coerces a numeric operand to float64. Accepting the integer
// encodings here is what gives mixed int/float arithmetic its Python-like
// shape: 'int' declines a float operand, then 'float' answers for the pair.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// floatFallback builds the representation-independent implementation of a
// float operation.
func floatFallback(fn func(a, b float64) (any, error)) object.BinaryFunc {
	return func(left, right any) (any, error) {
		a, ok := toFloat(left)
		if !ok {
			return nil, object.ErrNotApplicable
		}
		b, ok := toFloat(right)
		if !ok {
			return nil, object.ErrNotApplicable
		}
		return fn(a, b)
	}
}

// floatMembers assembles the operation table of the 'float' type.
func floatMembers() []object.Member {
	add := object.NewBinaryOp("add").Fallback(floatFallback(func(a, b float64) (any, error) {
		return a + b, nil
	}))
	sub := object.NewBinaryOp("sub").Fallback(floatFallback(func(a, b float64) (any, error) {
		return a - b, nil
	}))
	mul := object.NewBinaryOp("mul").Fallback(floatFallback(func(a, b float64) (any, error) {
		return a * b, nil
	}))
	div := object.NewBinaryOp("div").Fallback(floatFallback(func(a, b float64) (any, error) {
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return a / b, nil
	}))
	lt := object.NewBinaryOp("lt").Fallback(floatFallback(func(a, b float64) (any, error) {
		return a < b, nil
	}))

	neg := object.NewUnaryOp("neg", nil).For(ClassFloat64, func(v any) (any, error) {
		return -v.(float64), nil
	})

	repr := object.NewUnaryOp("repr", nil).For(ClassFloat64, func(v any) (any, error) {
		return strconv.FormatFloat(v.(float64), 'g', -1, 64), nil
	})

	return []object.Member{add, sub, mul, div, lt, neg, repr}
}
