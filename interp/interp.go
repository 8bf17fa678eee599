package interp

import (
	"fmt"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/schema"
)

// Options configures one apply call.
type Options struct {
	// Validate runs the schema validator on every effect before it is
	// dispatched. On by default.
	Validate bool

	// Registry resolves effect tags. Defaults to the process-wide
	// registry.
	Registry *Registry

	// Journal, when set, observes transaction step lifecycles.
	Journal Journal
}

// Option mutates Options, in the functional-option style.
type Option func(*Options)

// WithValidation turns schema validation on or off.
func WithValidation(v bool) Option {
	return func(o *Options) { o.Validate = v }
}

// WithRegistry dispatches through the given registry instead of the
// process-wide one.
func WithRegistry(r *Registry) Option {
	return func(o *Options) { o.Registry = r }
}

// WithJournal records transaction step lifecycles to j.
func WithJournal(j Journal) Option {
	return func(o *Options) { o.Journal = j }
}

func buildOptions(opts []Option) Options {
	o := Options{Validate: true, Registry: defaultRegistry}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Registry == nil {
		o.Registry = defaultRegistry
	}
	return o
}

// Apply interprets one effect tree against a state document and returns
// the result. The input document is never mutated; on failure the
// returned state is the input value.
//
// ctx may be nil, in which case a fresh context is created with the
// given document as the pre-effect state snapshot.
func Apply(state stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, opts ...Option) stateffect.ApplyResult {
	o := buildOptions(opts)
	if ctx == nil {
		ctx = stateffect.NewContext(state)
	} else if ctx.State == nil {
		child := *ctx
		child.State = state
		ctx = &child
	}
	return apply(state, eff, ctx, o)
}

// ApplyAll interprets a list of effects in order, threading state. It is
// equivalent to wrapping the list in a Sequence effect.
func ApplyAll(state stateffect.Document, effects []stateffect.Effect, ctx *stateffect.Context, opts ...Option) stateffect.ApplyResult {
	return Apply(state, stateffect.Effect{Type: stateffect.Sequence, Effects: effects}, ctx, opts...)
}

// apply is the recursive entry used by composite handlers: validate,
// then dispatch by tag.
func apply(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, o Options) stateffect.ApplyResult {
	if o.Validate {
		if ex := schema.Explain(eff); ex != nil {
			return stateffect.Failure(doc, eff, stateffect.ErrInvalidEffect, ex.String())
		}
	}
	handler, ok := o.Registry.Lookup(eff.Type)
	if !ok {
		return stateffect.Failure(doc, eff, stateffect.ErrUnknownEffectType,
			fmt.Sprintf("no handler registered for tag %q", eff.Type))
	}
	return handler(doc, eff, ctx, o)
}
