package builtins

import "stable/object"

// boolMembers assembles the operation table of the 'bool' type. 'bool' is
// a subtype of 'int', so arithmetic on bool values resolves to the
// inherited integer operations through their coercing fallbacks; only the
// logical operators and the printed form are bool's own.
func boolMembers() []object.Member {
	and := object.NewBinaryOp("and").
		Pair(ClassBool, ClassBool, func(left, right any) (any, error) {
			return left.(bool) && right.(bool), nil
		})
	or := object.NewBinaryOp("or").
		Pair(ClassBool, ClassBool, func(left, right any) (any, error) {
			return left.(bool) || right.(bool), nil
		})

	not := object.NewUnaryOp("not", nil).For(ClassBool, func(v any) (any, error) {
		return !v.(bool), nil
	})

	repr := object.NewUnaryOp("repr", nil).For(ClassBool, func(v any) (any, error) {
		if v.(bool) {
			return "true", nil
		}
		return "false", nil
	})

	return []object.Member{and, or, not, repr}
}
