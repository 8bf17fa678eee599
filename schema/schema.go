// Package schema structurally validates effect descriptions before
// interpretation. Validation is catalog-driven: each built-in tag lists
// its required fields and their structural kinds. Unrecognized tags are
// treated as custom effects and pass optimistically, since the shape a
// third-party handler expects cannot be known here.
package schema

import (
	"fmt"

	stateffect "github.com/stateffect/stateffect-go"
)

// Explanation describes why an effect failed validation: which field is
// wrong and how. Validation explains instead of throwing.
type Explanation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Explanation) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Valid reports whether the effect passes structural validation.
func Valid(e stateffect.Effect) bool {
	return Explain(e) == nil
}

// Explain returns nil for a valid effect, or an explanation of the first
// problem found. Children of composite effects are validated when they
// are interpreted, not here; this checks one effect description.
func Explain(e stateffect.Effect) *Explanation {
	if e.Type == "" {
		return &Explanation{Field: "type", Message: "effect has no type tag"}
	}
	checks, known := catalog[e.Type]
	if !known {
		// Custom tag: the registry decides whether it is dispatchable.
		return nil
	}
	for _, check := range checks {
		if ex := check(e); ex != nil {
			return ex
		}
	}
	return nil
}

type fieldCheck func(stateffect.Effect) *Explanation

var catalog = map[stateffect.EffectType][]fieldCheck{
	stateffect.Noop:     {},
	stateffect.AssocIn:  {requirePath("path", pathOf)},
	stateffect.DissocIn: {requirePath("path", pathOf)},
	stateffect.UpdateIn: {requirePath("path", pathOf), requireFn},
	stateffect.ConjIn:   {requirePath("path", pathOf)},
	stateffect.RemoveIn: {requirePath("path", pathOf), requirePredicate},
	stateffect.Move: {
		requirePath("from", func(e stateffect.Effect) []any { return e.From }),
		requirePath("to", func(e stateffect.Effect) []any { return e.To }),
		requirePredicate,
	},
	stateffect.MergeIn:     {requirePath("path", pathOf), requireMergeValue},
	stateffect.Sequence:    {requireEffects},
	stateffect.Transaction: {requireEffects, checkFailurePolicy},
	stateffect.Let:         {requireBindings, requireBody},
	stateffect.Conditional: {requireCondition, checkResidualPolicy},
}

func pathOf(e stateffect.Effect) []any { return e.Path }

// requirePath checks presence and that every segment is a scalar; maps
// and nested vectors cannot act as path segments.
func requirePath(field string, get func(stateffect.Effect) []any) fieldCheck {
	return func(e stateffect.Effect) *Explanation {
		p := get(e)
		if len(p) == 0 {
			return &Explanation{Field: field, Message: "required path is missing or empty"}
		}
		for i, seg := range p {
			switch seg.(type) {
			case string, int, int64, float64, bool:
			default:
				return &Explanation{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Message: fmt.Sprintf("segment must be a scalar, got %T", seg),
				}
			}
		}
		return nil
	}
}

func requireFn(e stateffect.Effect) *Explanation {
	if e.Fn == nil {
		return &Explanation{Field: "fn", Message: "update-in requires a function reference"}
	}
	return nil
}

func requirePredicate(e stateffect.Effect) *Explanation {
	if e.Predicate == nil {
		return &Explanation{Field: "predicate", Message: "a predicate spec is required"}
	}
	return nil
}

// requireMergeValue rejects scalar merge values outright. Maps are
// merged directly; strings and vectors may be references resolving to a
// map, so they pass here and fail at apply time if they resolve wrong.
func requireMergeValue(e stateffect.Effect) *Explanation {
	switch e.Value.(type) {
	case map[string]any, stateffect.Document, []any, string:
		return nil
	case nil:
		return &Explanation{Field: "value", Message: "merge-in requires a map value"}
	default:
		return &Explanation{
			Field:   "value",
			Message: fmt.Sprintf("merge-in value must be a map or reference, got %T", e.Value),
		}
	}
}

func requireEffects(e stateffect.Effect) *Explanation {
	if e.Effects == nil {
		return &Explanation{Field: "effects", Message: "an effect list is required"}
	}
	return nil
}

func requireBindings(e stateffect.Effect) *Explanation {
	if len(e.Bindings) == 0 {
		return &Explanation{Field: "bindings", Message: "let requires at least one binding"}
	}
	for i, b := range e.Bindings {
		if b.Name == "" {
			return &Explanation{
				Field:   fmt.Sprintf("bindings[%d].name", i),
				Message: "binding name must not be empty",
			}
		}
	}
	return nil
}

func requireBody(e stateffect.Effect) *Explanation {
	if e.Body == nil {
		return &Explanation{Field: "body", Message: "let requires an inner effect"}
	}
	return nil
}

func requireCondition(e stateffect.Effect) *Explanation {
	if e.Condition == nil {
		return &Explanation{Field: "condition", Message: "conditional requires a condition"}
	}
	return nil
}

func checkResidualPolicy(e stateffect.Effect) *Explanation {
	switch e.OnResidual {
	case "", stateffect.ResidualBlock, stateffect.ResidualDefer,
		stateffect.ResidualProceed, stateffect.ResidualSpeculate:
		return nil
	}
	return &Explanation{
		Field:   "on_residual",
		Message: fmt.Sprintf("unknown residual policy %q", e.OnResidual),
	}
}

func checkFailurePolicy(e stateffect.Effect) *Explanation {
	switch e.OnFailure {
	case "", stateffect.FailureRollback, stateffect.FailurePartial:
		return nil
	}
	return &Explanation{
		Field:   "on_failure",
		Message: fmt.Sprintf("unknown failure policy %q", e.OnFailure),
	}
}
