package eval

import (
	"fmt"
	"reflect"
	"strings"

	stateffect "github.com/stateffect/stateffect-go"
)

// Compare applies a comparison operator to a document value and a
// resolved literal. Unknown operators are an error, not false.
func Compare(value any, op string, literal any) (bool, error) {
	switch op {
	case "==", "=":
		return Equal(value, literal), nil
	case "!=":
		return !Equal(value, literal), nil
	case "<":
		return LessThan(value, literal), nil
	case "<=":
		return LessThan(value, literal) || Equal(value, literal), nil
	case ">":
		return GreaterThan(value, literal), nil
	case ">=":
		return GreaterThan(value, literal) || Equal(value, literal), nil
	case "in":
		return Contains(literal, value), nil
	case "contains":
		return Contains(value, literal), nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Equal compares two values, treating numeric representations of the
// same quantity as equal regardless of Go type.
func Equal(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	return reflect.DeepEqual(a, b)
}

// LessThan orders numbers numerically and strings lexicographically.
func LessThan(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af < bf
		}
		return false
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as < bs
		}
	}
	return false
}

// GreaterThan orders numbers numerically and strings lexicographically.
func GreaterThan(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af > bf
		}
		return false
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as > bs
		}
	}
	return false
}

// Contains reports whether container holds item: element membership for
// slices, substring for strings.
func Contains(container, item any) bool {
	switch c := container.(type) {
	case []any:
		for _, el := range c {
			if Equal(el, item) {
				return true
			}
		}
	case stateffect.Set:
		for _, el := range c.Values() {
			if Equal(el, item) {
				return true
			}
		}
	case string:
		if s, ok := item.(string); ok {
			return strings.Contains(c, s)
		}
	}
	return false
}
