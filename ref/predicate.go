package ref

import (
	"fmt"
	"reflect"

	stateffect "github.com/stateffect/stateffect-go"
)

// Predicate tests one element of a collection, for remove-in and move.
type Predicate func(any) bool

// ResolvePredicate resolves a predicate spec:
//
//   - a field name tests truthiness of that field in a map element
//   - an associative spec requires structural equality on every listed
//     field; extra fields in the tested element are ignored
//   - a callable passes through unchanged
func ResolvePredicate(spec any) (Predicate, error) {
	switch s := spec.(type) {
	case Predicate:
		return s, nil
	case func(any) bool:
		return s, nil
	case string:
		return func(el any) bool {
			m, ok := elementMap(el)
			if !ok {
				return false
			}
			return Truthy(m[s])
		}, nil
	case stateffect.Document:
		return fieldsPredicate(map[string]any(s)), nil
	case map[string]any:
		return fieldsPredicate(s), nil
	}
	return nil, fmt.Errorf("cannot use %T as a predicate", spec)
}

func fieldsPredicate(want map[string]any) Predicate {
	return func(el any) bool {
		m, ok := elementMap(el)
		if !ok {
			return false
		}
		for field, expected := range want {
			got, present := m[field]
			if !present || !fieldEqual(got, expected) {
				return false
			}
		}
		return true
	}
}

func elementMap(el any) (map[string]any, bool) {
	switch m := el.(type) {
	case stateffect.Document:
		return map[string]any(m), true
	case map[string]any:
		return m, true
	}
	return nil, false
}

// fieldEqual compares loosely across numeric representations, since
// decoded documents mix int and float64 for the same logical value.
func fieldEqual(a, b any) bool {
	if af, _, aok := toNumber(a); aok {
		if bf, _, bok := toNumber(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
