package builtins

import (
	"math"
	"strconv"
	"strings"

	"stable/object"
)

// repeat implements string repetition for either operand order. The count
// is bounded before strings.Repeat runs: an oversized result is a
// language-level error, not a runtime abort, and the bound also keeps the
// count within int on 32-bit platforms.
func repeat(s string, n int64) (any, error) {
	if n <= 0 || s == "" {
		return "", nil
	}
	if n > int64(math.MaxInt/len(s)) {
		return nil, ErrRepeatTooLarge
	}
	return strings.Repeat(s, int(n)), nil
}

// strMembers assembles the operation table of the 'str' type. All
// implementations are registered per class pair; a simple type does not
// need a representation-independent fallback.
func strMembers() []object.Member {
	add := object.NewBinaryOp("add").
		Pair(ClassString, ClassString, func(left, right any) (any, error) {
			return left.(string) + right.(string), nil
		})

	mul := object.NewBinaryOp("mul").
		Pair(ClassString, ClassInt64, func(left, right any) (any, error) {
			return repeat(left.(string), right.(int64))
		}).
		Pair(ClassInt64, ClassString, func(left, right any) (any, error) {
			return repeat(right.(string), left.(int64))
		})

	lt := object.NewBinaryOp("lt").
		Pair(ClassString, ClassString, func(left, right any) (any, error) {
			return left.(string) < right.(string), nil
		})

	repr := object.NewUnaryOp("repr", nil).For(ClassString, func(v any) (any, error) {
		return strconv.Quote(v.(string)), nil
	})

	return []object.Member{add, mul, lt, repr}
}
