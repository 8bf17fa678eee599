package interp

import (
	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/eval"
	"github.com/stateffect/stateffect-go/ref"
)

// applySequence folds apply over the effect list, threading state.
// Failures and pendings are accumulated, never aborting later steps;
// atomicity is Transaction's job.
func applySequence(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, o Options) stateffect.ApplyResult {
	result := stateffect.ApplyResult{State: doc}
	for _, step := range eff.Effects {
		stepRes := apply(result.State, step, ctx, o)
		result.State = stepRes.State
		result.Applied = append(result.Applied, stepRes.Applied...)
		result.Failed = append(result.Failed, stepRes.Failed...)
		result.Speculative = append(result.Speculative, stepRes.Speculative...)
		if result.Pending == nil {
			result.Pending = stepRes.Pending
		}
	}
	return result
}

// applyLet resolves bindings left to right, each value expression seeing
// the bindings before it, then interprets the body in the extended
// context. Scoping is lexical: the child context shadows outer bindings
// of the same name only for the body's lifetime.
func applyLet(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, o Options) stateffect.ApplyResult {
	scope := ctx
	for _, b := range eff.Bindings {
		value := ref.Resolve(b.Value, scope)
		scope = scope.WithBindings(map[string]any{b.Name: value})
	}
	return apply(doc, *eff.Body, scope, o)
}

// applyConditional evaluates the condition against the current document
// and branches three ways. A Residual outcome follows the effect's
// residual policy; the default (block) treats unknown as not-holding.
func applyConditional(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, o Options) stateffect.ApplyResult {
	out, err := eval.Evaluate(eff.Condition, doc, ctx)
	if err != nil {
		return stateffect.Failure(doc, eff, stateffect.ErrInvalidCondition, err.Error())
	}

	branch := func(e *stateffect.Effect) stateffect.ApplyResult {
		if e == nil {
			return stateffect.ApplyResult{State: doc}
		}
		return apply(doc, *e, ctx, o)
	}

	switch out.Status {
	case eval.StatusSatisfied:
		return branch(eff.Then)
	case eval.StatusConflicted:
		return branch(eff.Else)
	}

	policy := eff.OnResidual
	if policy == "" {
		policy = stateffect.ResidualBlock
	}
	switch policy {
	case stateffect.ResidualBlock:
		return branch(eff.Else)

	case stateffect.ResidualDefer:
		return stateffect.ApplyResult{
			State: doc,
			Pending: &stateffect.PendingEffect{
				Type:     "deferred",
				Effect:   eff,
				Residual: out.Missing,
			},
		}

	case stateffect.ResidualProceed:
		result := branch(eff.Then)
		for i := range result.Applied {
			result.Applied[i].ConditionResidual = out.Missing
		}
		return result

	case stateffect.ResidualSpeculate:
		result := branch(eff.Then)
		for i := range result.Applied {
			result.Applied[i].ConditionResidual = out.Missing
			result.Applied[i].Speculative = true
			result.Applied[i].SpeculationCondition = eff.Condition
		}
		result.Speculative = append(result.Speculative, stateffect.SpeculativeCondition{
			Condition: *eff.Condition,
			Bound:     snapshotBindings(ctx),
		})
		return result
	}

	// Policy already validated; unreachable with validation on.
	return branch(eff.Else)
}

func snapshotBindings(ctx *stateffect.Context) map[string]any {
	if ctx == nil || len(ctx.Bindings) == 0 {
		return nil
	}
	bound := make(map[string]any, len(ctx.Bindings))
	for k, v := range ctx.Bindings {
		bound[k] = v
	}
	return bound
}
