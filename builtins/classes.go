package builtins

import (
	"errors"
	"math/big"
	"reflect"
)

// Native classes of the built-in types. The small integer encoding is
// int64; values outside its range use *big.Int, an adopted alternate
// representation of the same logical 'int' type.
var (
	ClassInt64   = reflect.TypeOf(int64(0))
	ClassBigInt  = reflect.TypeOf((*big.Int)(nil))
	ClassFloat64 = reflect.TypeOf(float64(0))
	ClassString  = reflect.TypeOf("")
	ClassBool    = reflect.TypeOf(false)
)

// ErrDivisionByZero is the language-level division error.
var ErrDivisionByZero = errors.New("division by zero")

// ErrRepeatTooLarge reports a string repetition whose result would not fit
// in memory.
var ErrRepeatTooLarge = errors.New("repeated string too long")
