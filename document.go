package stateffect

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Document is the associative state value effects are applied to. It is
// treated as immutable: every operation returns a new document that shares
// unmodified structure with the original.
type Document map[string]any

// Set is an unordered collection inside a document. JSON has no set type,
// so sets marshal as {"$set": [...]} with deterministically ordered
// members; the loader package decodes the same shape back.
type Set map[any]struct{}

// Hashable reports whether a value can be a Set member. Maps, slices,
// and functions cannot key a Go map; inserting one would panic, so set
// operations check first and report the problem as data.
func Hashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// NewSet builds a set from its members.
func NewSet(members ...any) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(v any) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members ordered by their string rendering, for
// deterministic output.
func (s Set) Values() []any {
	out := make([]any, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
	})
	return out
}

// MarshalJSON renders the set as {"$set": [...]}.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"$set": s.Values()})
}

// Clone deep-copies the document. Callers holding a reference to the
// original are never affected by edits to the copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a document value. Primitives pass through by
// value; maps, slices, and sets are copied recursively.
func CloneValue(value any) any {
	switch v := value.(type) {
	case Document:
		return v.Clone()
	case map[string]any:
		copied := make(map[string]any, len(v))
		for k, item := range v {
			copied[k] = CloneValue(item)
		}
		return copied
	case []any:
		copied := make([]any, len(v))
		for i, item := range v {
			copied[i] = CloneValue(item)
		}
		return copied
	case Set:
		copied := make(Set, len(v))
		for m := range v {
			copied[m] = struct{}{}
		}
		return copied
	default:
		return v
	}
}
