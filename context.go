package stateffect

import "github.com/google/uuid"

// Provenance identifies one top-level apply invocation.
type Provenance struct {
	InvocationID string `json:"invocation_id"`
	Source       string `json:"source,omitempty"`
}

// Context is the ephemeral per-invocation environment an effect tree is
// interpreted in: variable bindings, a snapshot of the pre-effect state
// document (what [state ...] references read from), caller parameters,
// and provenance metadata.
//
// A context lives for one top-level apply call. Let effects extend it by
// deriving a child context; a context is never mutated once handed to a
// handler.
type Context struct {
	Bindings map[string]any
	State    Document
	Params   map[string]any
	Prov     Provenance
}

// NewContext builds a context for one apply call over the given pre-effect
// state.
func NewContext(state Document) *Context {
	return &Context{
		State: state,
		Prov:  Provenance{InvocationID: uuid.NewString()},
	}
}

// WithParams returns a copy of the context carrying the given parameters.
func (c *Context) WithParams(params map[string]any) *Context {
	child := *c
	child.Params = params
	return &child
}

// WithBindings derives a child context whose bindings extend (and shadow)
// the receiver's. The receiver is not modified.
func (c *Context) WithBindings(bindings map[string]any) *Context {
	child := *c
	merged := make(map[string]any, len(c.Bindings)+len(bindings))
	for k, v := range c.Bindings {
		merged[k] = v
	}
	for k, v := range bindings {
		merged[k] = v
	}
	child.Bindings = merged
	return &child
}

// Lookup resolves a bound variable name.
func (c *Context) Lookup(name string) (any, bool) {
	if c == nil || c.Bindings == nil {
		return nil, false
	}
	v, ok := c.Bindings[name]
	return v, ok
}

// AsDocument exposes the context as an associative structure so that
// [ctx ...] references can navigate it like any other document.
func (c *Context) AsDocument() Document {
	if c == nil {
		return nil
	}
	return Document{
		"bindings": map[string]any(c.Bindings),
		"state":    map[string]any(c.State),
		"params":   map[string]any(c.Params),
		"provenance": map[string]any{
			"invocation_id": c.Prov.InvocationID,
			"source":        c.Prov.Source,
		},
	}
}
