// Package interp is the effect interpreter: it applies tagged effect
// descriptions to an immutable state document and returns a new document
// plus a structured record of what happened. Dispatch goes through a
// registry of tag handlers, pre-populated with the built-in effects and
// extensible with domain-specific ones.
package interp

import (
	"sync"

	stateffect "github.com/stateffect/stateffect-go"
)

// Handler interprets one effect against a document. Handlers must not
// mutate doc or ctx; they return a result carrying the next document.
type Handler func(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, opts Options) stateffect.ApplyResult

// Registry maps effect tags to handlers. Registration is expected to
// finish before concurrent dispatch begins; the RWMutex makes the
// register-before-dispatch contract safe rather than merely advisory.
type Registry struct {
	mu       sync.RWMutex
	handlers map[stateffect.EffectType]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[stateffect.EffectType]Handler)}
}

// NewBuiltinRegistry returns a registry pre-populated with every
// built-in effect tag.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.Register(stateffect.Noop, applyNoop)
	r.Register(stateffect.AssocIn, applyAssocIn)
	r.Register(stateffect.DissocIn, applyDissocIn)
	r.Register(stateffect.UpdateIn, applyUpdateIn)
	r.Register(stateffect.ConjIn, applyConjIn)
	r.Register(stateffect.RemoveIn, applyRemoveIn)
	r.Register(stateffect.Move, applyMove)
	r.Register(stateffect.MergeIn, applyMergeIn)
	r.Register(stateffect.Sequence, applySequence)
	r.Register(stateffect.Transaction, applyTransaction)
	r.Register(stateffect.Let, applyLet)
	r.Register(stateffect.Conditional, applyConditional)
	return r
}

// Register adds or overwrites the handler for a tag.
func (r *Registry) Register(tag stateffect.EffectType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[tag] = h
}

// Lookup returns the handler for a tag.
func (r *Registry) Lookup(tag stateffect.EffectType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[tag]
	return h, ok
}

// Tags returns the registered tags, for introspection.
func (r *Registry) Tags() []stateffect.EffectType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]stateffect.EffectType, 0, len(r.handlers))
	for tag := range r.handlers {
		tags = append(tags, tag)
	}
	return tags
}

// defaultRegistry serves every Apply call that does not bring its own
// registry. Host applications extend it through RegisterEffect during
// startup, before concurrent dispatch.
var defaultRegistry = NewBuiltinRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// RegisterEffect registers a domain-specific effect tag on the
// process-wide registry. It is the extension entry point for host
// applications (e.g. game-specific abilities) and overwrites any
// existing handler for the tag.
func RegisterEffect(tag string, h Handler) {
	defaultRegistry.Register(stateffect.EffectType(tag), h)
}
