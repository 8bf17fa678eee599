package ref

import (
	"fmt"
	"strings"

	"github.com/stateffect/stateffect-go/path"
)

// Fn is a resolved update function: it receives the current value at the
// target path (or the function's documented absent default when the path
// is missing) plus the resolved arguments, and returns the value to write
// back.
type Fn func(current any, args []any) (any, error)

// Func pairs an update function with its absent-value policy. Absent
// returns the stand-in for a missing target path; a nil Absent means the
// function sees nil.
type Func struct {
	Apply  Fn
	Absent func(args []any) any
}

// ResolveFn resolves a symbolic function reference: a built-in name maps
// through the table below, an already-callable value passes through, and
// anything else reports false (the caller surfaces unknown-function).
func ResolveFn(ref any) (*Func, bool) {
	switch v := ref.(type) {
	case string:
		f, ok := builtins[v]
		if !ok {
			return nil, false
		}
		return f, true
	case Fn:
		return &Func{Apply: v}, true
	case func(any, []any) (any, error):
		return &Func{Apply: v}, true
	}
	return nil, false
}

// builtins maps symbolic function names to implementations. Each entry
// documents its own absent-value policy, since no universal default is
// correct for all of them.
var builtins = map[string]*Func{
	// + sums current with every argument. Absent target counts as 0.
	"+": {Apply: addFn, Absent: zeroNumber},
	// - subtracts every argument from current. Absent target counts as 0.
	"-": {Apply: subFn, Absent: zeroNumber},
	// * multiplies current by every argument. Absent target counts as 1.
	"*": {Apply: mulFn, Absent: oneNumber},
	// inc adds one. Absent target counts as 0.
	"inc": {
		Apply:  func(current any, _ []any) (any, error) { return arith(current, 1, addOp) },
		Absent: zeroNumber,
	},
	// dec subtracts one. Absent target counts as 0.
	"dec": {
		Apply:  func(current any, _ []any) (any, error) { return arith(current, 1, subOp) },
		Absent: zeroNumber,
	},
	// conj appends/adds each argument, preserving collection kind.
	// An absent target becomes a new ordered collection.
	"conj": {
		Apply: func(current any, args []any) (any, error) {
			out := current
			var err error
			for _, arg := range args {
				out, err = path.Conj(out, arg)
				if err != nil {
					return nil, err
				}
			}
			return out, nil
		},
	},
	// merge shallow-merges each map argument into current. An absent
	// target counts as an empty map.
	"merge": {
		Apply: func(current any, args []any) (any, error) {
			out := current
			for _, arg := range args {
				m, ok := arg.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("merge argument is %T, not a map", arg)
				}
				merged, err := path.MergeValue(out, m)
				if err != nil {
					return nil, err
				}
				out = merged
			}
			return out, nil
		},
		Absent: func([]any) any { return map[string]any{} },
	},
	// str concatenates the string rendering of current and all arguments.
	// An absent target counts as the empty string.
	"str": {
		Apply: func(current any, args []any) (any, error) {
			var b strings.Builder
			fmt.Fprint(&b, current)
			for _, arg := range args {
				fmt.Fprint(&b, arg)
			}
			return b.String(), nil
		},
		Absent: func([]any) any { return "" },
	},
	// max keeps the largest of current and the arguments. An absent
	// target resolves to the first argument.
	"max": {Apply: maxFn, Absent: firstArg},
	// min keeps the smallest of current and the arguments. An absent
	// target resolves to the first argument.
	"min": {Apply: minFn, Absent: firstArg},
	// not inverts truthiness (nil and false are the only falsy values).
	// An absent target is falsy, so not(absent) is true.
	"not": {
		Apply: func(current any, _ []any) (any, error) { return !Truthy(current), nil },
	},
	// identity writes the current value back unchanged.
	"identity": {
		Apply: func(current any, _ []any) (any, error) { return current, nil },
	},
}

func zeroNumber([]any) any { return 0 }
func oneNumber([]any) any  { return 1 }

func firstArg(args []any) any {
	if len(args) > 0 {
		return args[0]
	}
	return nil
}

// Truthy follows open-data semantics: only nil and false are falsy;
// zero and the empty string are truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

type numOp func(float64, float64) float64

func addOp(a, b float64) float64 { return a + b }
func subOp(a, b float64) float64 { return a - b }
func mulOp(a, b float64) float64 { return a * b }

func toNumber(v any) (float64, bool, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case float64:
		return n, false, true
	case float32:
		return float64(n), false, true
	}
	return 0, false, false
}

// arith applies op to two numeric values, keeping integer results when
// both operands are integers.
func arith(a, b any, op numOp) (any, error) {
	af, aInt, ok := toNumber(a)
	if !ok {
		return nil, fmt.Errorf("%v (%T) is not a number", a, a)
	}
	bf, bInt, ok := toNumber(b)
	if !ok {
		return nil, fmt.Errorf("%v (%T) is not a number", b, b)
	}
	result := op(af, bf)
	if aInt && bInt && result == float64(int(result)) {
		return int(result), nil
	}
	return result, nil
}

func foldArith(current any, args []any, op numOp) (any, error) {
	out := current
	var err error
	for _, arg := range args {
		out, err = arith(out, arg, op)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func addFn(current any, args []any) (any, error) { return foldArith(current, args, addOp) }
func subFn(current any, args []any) (any, error) { return foldArith(current, args, subOp) }
func mulFn(current any, args []any) (any, error) { return foldArith(current, args, mulOp) }

func maxFn(current any, args []any) (any, error) {
	return foldArith(current, args, func(a, b float64) float64 {
		if a >= b {
			return a
		}
		return b
	})
}

func minFn(current any, args []any) (any, error) {
	return foldArith(current, args, func(a, b float64) float64 {
		if a <= b {
			return a
		}
		return b
	})
}
