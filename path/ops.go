package path

import (
	"fmt"

	stateffect "github.com/stateffect/stateffect-go"
)

// asIndex normalizes a segment into a slice index. JSON decoding produces
// float64 for numbers, so those are accepted when integral.
func asIndex(seg any) (int, bool) {
	switch v := seg.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// mapKey renders a segment as a map key. Document maps are keyed by
// string, so non-string segments (e.g. a bound variable resolved to a
// numeric id) are stringified.
func mapKey(seg any) string {
	if s, ok := seg.(string); ok {
		return s
	}
	return fmt.Sprint(seg)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case stateffect.Document:
		return map[string]any(m), true
	case map[string]any:
		return m, true
	}
	return nil, false
}

// GetIn reads the value at path. The second return distinguishes an
// absent path from a present nil value; that distinction is what makes
// three-valued condition evaluation possible.
func GetIn(data any, segments []any) (any, bool) {
	current := data
	for _, seg := range segments {
		if m, ok := asMap(current); ok {
			v, ok := m[mapKey(seg)]
			if !ok {
				return nil, false
			}
			current = v
			continue
		}
		if arr, ok := current.([]any); ok {
			idx, ok := asIndex(seg)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
			continue
		}
		return nil, false
	}
	return current, true
}

// AssocIn writes value at path, creating intermediate maps for missing
// containers. Containers along the path are shallow-copied, so the input
// and its retained aliases are never modified.
func AssocIn(data any, segments []any, value any) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	seg := segments[0]

	if m, ok := asMap(data); ok {
		key := mapKey(seg)
		child, err := AssocIn(m[key], segments[1:], value)
		if err != nil {
			return nil, err
		}
		copied := make(map[string]any, len(m)+1)
		for k, v := range m {
			copied[k] = v
		}
		copied[key] = child
		if _, wasDoc := data.(stateffect.Document); wasDoc {
			return stateffect.Document(copied), nil
		}
		return copied, nil
	}

	if arr, ok := data.([]any); ok {
		idx, ok := asIndex(seg)
		if !ok {
			return nil, fmt.Errorf("non-integer segment %v into collection", seg)
		}
		if idx < 0 || idx > len(arr) {
			return nil, fmt.Errorf("index %d out of bounds (len %d)", idx, len(arr))
		}
		copied := make([]any, len(arr), len(arr)+1)
		copy(copied, arr)
		if idx == len(arr) {
			copied = append(copied, nil)
		}
		child, err := AssocIn(copied[idx], segments[1:], value)
		if err != nil {
			return nil, err
		}
		copied[idx] = child
		return copied, nil
	}

	if data == nil {
		if idx, isIdx := asIndex(seg); isIdx {
			if idx != 0 {
				return nil, fmt.Errorf("index %d into absent collection", idx)
			}
			child, err := AssocIn(nil, segments[1:], value)
			if err != nil {
				return nil, err
			}
			return []any{child}, nil
		}
		child, err := AssocIn(nil, segments[1:], value)
		if err != nil {
			return nil, err
		}
		return map[string]any{mapKey(seg): child}, nil
	}

	return nil, fmt.Errorf("cannot descend into %T at segment %v", data, seg)
}

// DissocIn removes the key at path. An absent path is a no-op returning
// the original value.
func DissocIn(data any, segments []any) (any, error) {
	if len(segments) == 0 {
		return data, nil
	}
	seg := segments[0]

	if m, ok := asMap(data); ok {
		key := mapKey(seg)
		existing, present := m[key]
		if !present {
			return data, nil
		}
		copied := make(map[string]any, len(m))
		for k, v := range m {
			copied[k] = v
		}
		if len(segments) == 1 {
			delete(copied, key)
		} else {
			child, err := DissocIn(existing, segments[1:])
			if err != nil {
				return nil, err
			}
			copied[key] = child
		}
		if _, wasDoc := data.(stateffect.Document); wasDoc {
			return stateffect.Document(copied), nil
		}
		return copied, nil
	}

	if arr, ok := data.([]any); ok {
		idx, ok := asIndex(seg)
		if !ok || idx < 0 || idx >= len(arr) {
			return data, nil
		}
		if len(segments) == 1 {
			copied := make([]any, 0, len(arr)-1)
			copied = append(copied, arr[:idx]...)
			copied = append(copied, arr[idx+1:]...)
			return copied, nil
		}
		child, err := DissocIn(arr[idx], segments[1:])
		if err != nil {
			return nil, err
		}
		copied := make([]any, len(arr))
		copy(copied, arr)
		copied[idx] = child
		return copied, nil
	}

	if data == nil {
		return data, nil
	}
	return nil, fmt.Errorf("cannot descend into %T at segment %v", data, seg)
}

// Conj adds an element to a collection, preserving its kind: slices stay
// ordered (append), sets stay unordered (membership add). An absent
// collection becomes an ordered one.
func Conj(coll any, value any) (any, error) {
	switch c := coll.(type) {
	case nil:
		return []any{value}, nil
	case []any:
		copied := make([]any, len(c), len(c)+1)
		copy(copied, c)
		return append(copied, value), nil
	case stateffect.Set:
		if !stateffect.Hashable(value) {
			return nil, fmt.Errorf("%T cannot be a member of an unordered collection", value)
		}
		copied := make(stateffect.Set, len(c)+1)
		for m := range c {
			copied[m] = struct{}{}
		}
		copied[value] = struct{}{}
		return copied, nil
	default:
		return nil, fmt.Errorf("conj target is %T, not a collection", coll)
	}
}

// RemoveMatching removes every element satisfying pred, preserving the
// collection kind and, for ordered collections, the relative order of the
// survivors. Removed elements come back in encounter order.
func RemoveMatching(coll any, pred func(any) bool) (removed []any, rest any, err error) {
	switch c := coll.(type) {
	case nil:
		return nil, nil, nil
	case []any:
		kept := make([]any, 0, len(c))
		for _, el := range c {
			if pred(el) {
				removed = append(removed, el)
			} else {
				kept = append(kept, el)
			}
		}
		return removed, kept, nil
	case stateffect.Set:
		kept := make(stateffect.Set, len(c))
		for _, el := range c.Values() {
			switch {
			case pred(el):
				removed = append(removed, el)
			case !stateffect.Hashable(el):
				return nil, nil, fmt.Errorf("%T cannot be a member of an unordered collection", el)
			default:
				kept[el] = struct{}{}
			}
		}
		return removed, kept, nil
	default:
		return nil, nil, fmt.Errorf("remove target is %T, not a collection", coll)
	}
}

// MergeValue shallow-merges src into target, which must be a map or
// absent. The target map is copied, not modified.
func MergeValue(target any, src map[string]any) (any, error) {
	if target == nil {
		copied := make(map[string]any, len(src))
		for k, v := range src {
			copied[k] = v
		}
		return copied, nil
	}
	m, ok := asMap(target)
	if !ok {
		return nil, fmt.Errorf("merge target is %T, not a map", target)
	}
	copied := make(map[string]any, len(m)+len(src))
	for k, v := range m {
		copied[k] = v
	}
	for k, v := range src {
		copied[k] = v
	}
	if _, wasDoc := target.(stateffect.Document); wasDoc {
		return stateffect.Document(copied), nil
	}
	return copied, nil
}
