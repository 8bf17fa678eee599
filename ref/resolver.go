// Package ref resolves the symbolic placeholders that appear inside
// effect descriptions: bound-variable names, state-relative and
// context-relative paths, parameter lookups, symbolic function names, and
// predicate specs. Anything that is not a reference passes through as a
// literal.
package ref

import (
	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/path"
)

// Reference vector tags. A []any value whose first element is one of
// these is a path reference; any other vector is a literal.
const (
	TagState = "state"
	TagCtx   = "ctx"
	TagParam = "param"
)

// Resolve resolves a reference value against the context.
//
//   - a string resolves to its bound value if bound, otherwise to itself
//     (so unbound names remain usable as literal path segments)
//   - ["state", ...path] reads from the pre-effect state snapshot, with
//     bound-variable segments substituted as dynamic keys
//   - ["ctx", ...path] reads from the context structure itself; its
//     segments are literal, since they name the context's own keys
//     (a binding's name must stay a key, never its value)
//   - ["param", name] reads a caller parameter
//   - anything else is returned unchanged
//
// A path read over absent data resolves to nil.
func Resolve(value any, ctx *stateffect.Context) any {
	switch v := value.(type) {
	case string:
		if bound, ok := ctx.Lookup(v); ok {
			return bound
		}
		return v
	case []any:
		if len(v) == 0 {
			return v
		}
		tag, ok := v[0].(string)
		if !ok {
			return v
		}
		switch tag {
		case TagState:
			got, _ := path.GetIn(ctx.State, ResolvePath(v[1:], ctx))
			return got
		case TagCtx:
			got, _ := path.GetIn(ctx.AsDocument(), v[1:])
			return got
		case TagParam:
			if len(v) == 2 {
				if name, ok := v[1].(string); ok {
					return ctx.Params[name]
				}
			}
			return nil
		}
		return v
	default:
		return value
	}
}

// ResolvePath maps each path segment independently: a bound-variable
// segment resolves to its bound value (used as a dynamic key), everything
// else stays a literal segment. Unlike Resolve, segment resolution never
// interprets ["state" ...] or ["ctx" ...] tags; those only apply to a
// whole reference used as a value.
func ResolvePath(segments []any, ctx *stateffect.Context) []any {
	if segments == nil {
		return nil
	}
	resolved := make([]any, len(segments))
	for i, seg := range segments {
		if name, ok := seg.(string); ok {
			if bound, bok := ctx.Lookup(name); bok {
				resolved[i] = bound
				continue
			}
		}
		resolved[i] = seg
	}
	return resolved
}
