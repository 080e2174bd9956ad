package brain

import (
	"math"
	"sort"
)

type opKind int

const (
	opConstant opKind = iota
	opUnary
	opBinary
	opEquals
	opRandom
)

// operation is one entry of the keypad operation table. Only the fields
// matching kind are set; a nil check function never reports an advisory.
type operation struct {
	kind        opKind
	value       float64
	unary       func(float64) float64
	checkUnary  func(float64) string
	binary      func(float64, float64) float64
	checkBinary func(float64, float64) string
}

// Advisory messages reported by the operation validators.
const (
	ErrSqrtDomain   = "Argument of sqrt should be positive"
	ErrLogDomain    = "Argument of log should be strictly positive"
	ErrDivideByZero = "Cannot divide by zero"
)

func constant(v float64) operation {
	return operation{kind: opConstant, value: v}
}

func unary(fn func(float64) float64, check func(float64) string) operation {
	return operation{kind: opUnary, unary: fn, checkUnary: check}
}

func binary(fn func(float64, float64) float64, check func(float64, float64) string) operation {
	return operation{kind: opBinary, binary: fn, checkBinary: check}
}

func subtract(x, y float64) float64 { return x - y }

// operations maps keypad symbols to their semantics. It is never mutated.
var operations = map[string]operation{
	"π": constant(math.Pi),
	"e": constant(math.E),
	"√": unary(math.Sqrt, func(x float64) string {
		if x < 0 {
			return ErrSqrtDomain
		}
		return ""
	}),
	"tan": unary(math.Tan, nil),
	"cos": unary(math.Cos, nil),
	"sin": unary(math.Sin, nil),
	"exp": unary(math.Exp, nil),
	"log": unary(math.Log, func(x float64) string {
		if x <= 0 {
			return ErrLogDomain
		}
		return ""
	}),
	"abs": unary(math.Abs, nil),
	"±":   unary(func(x float64) float64 { return -x }, nil),
	"+":   binary(func(x, y float64) float64 { return x + y }, nil),
	"−":   binary(subtract, nil),
	"-":   binary(subtract, nil),
	"×":   binary(func(x, y float64) float64 { return x * y }, nil),
	"÷": binary(func(x, y float64) float64 { return x / y }, func(_, y float64) string {
		if y == 0 {
			return ErrDivideByZero
		}
		return ""
	}),
	"^": binary(math.Pow, nil),
	"=": {kind: opEquals},
	"?": {kind: opRandom},
}

// IsOperation reports whether symbol names a known operation.
func IsOperation(symbol string) bool {
	_, ok := operations[symbol]
	return ok
}

// Symbols returns every recognised operation symbol in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(operations))
	for s := range operations {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
