package interp

import (
	"fmt"

	"github.com/google/uuid"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/eval"
)

// applyTransaction is Sequence plus atomicity. Steps run in order
// against a running snapshot; the first failing or pending step stops
// the transaction. Under rollback (the default) the starting state is
// restored and only that step's failure is reported; under partial the
// state produced by the preceding steps is kept.
//
// Speculative conditions recorded by speculate conditionals inside the
// transaction are re-verified against the final state on every path
// that keeps applied state, including a partial stop. A contradicted
// assumption fails the whole transaction with speculation-conflict and
// rolls it back regardless of the failure policy.
func applyTransaction(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, o Options) stateffect.ApplyResult {
	start := doc
	policy := eff.OnFailure
	if policy == "" {
		policy = stateffect.FailureRollback
	}

	var txID string
	if o.Journal != nil {
		txID = "tx-" + uuid.NewString()
		o.Journal.Begin(txID)
	}

	result := stateffect.ApplyResult{State: start}
	for _, step := range eff.Effects {
		stepRes := apply(result.State, step, ctx, o)

		if len(stepRes.Failed) > 0 {
			if o.Journal != nil {
				o.Journal.Record(txID, step, StepFailed)
			}
			if policy == stateffect.FailurePartial {
				result.State = stepRes.State
				result.Applied = append(result.Applied, stepRes.Applied...)
				result.Speculative = append(result.Speculative, stepRes.Speculative...)
				result.Failed = stepRes.Failed
				if fail := verifySpeculations(&result, start, eff, ctx, o, txID); fail != nil {
					return *fail
				}
				if o.Journal != nil {
					o.Journal.Commit(txID)
				}
				return result
			}
			if o.Journal != nil {
				o.Journal.Rollback(txID)
			}
			return stateffect.ApplyResult{State: start, Failed: stepRes.Failed}
		}

		if stepRes.Pending != nil {
			// A deferred conditional leaves the outcome of the whole
			// transaction unknown; propagate the pending upward.
			if policy == stateffect.FailurePartial {
				result.Pending = stepRes.Pending
				if fail := verifySpeculations(&result, start, eff, ctx, o, txID); fail != nil {
					return *fail
				}
				// The prefix state is kept and returned.
				if o.Journal != nil {
					o.Journal.Commit(txID)
				}
				return result
			}
			if o.Journal != nil {
				o.Journal.Rollback(txID)
			}
			return stateffect.ApplyResult{State: start, Pending: stepRes.Pending}
		}

		result.State = stepRes.State
		result.Applied = append(result.Applied, stepRes.Applied...)
		result.Speculative = append(result.Speculative, stepRes.Speculative...)
		if o.Journal != nil {
			o.Journal.Record(txID, step, StepApplied)
		}
	}

	if fail := verifySpeculations(&result, start, eff, ctx, o, txID); fail != nil {
		return *fail
	}
	if o.Journal != nil {
		o.Journal.Commit(txID)
	}
	return result
}

// verifySpeculations re-evaluates every recorded speculative condition
// against the transaction's final state. A definite contradiction or an
// evaluation error retracts the whole transaction; nil means every
// assumption held (still-unverifiable assumptions commit).
func verifySpeculations(result *stateffect.ApplyResult, start stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, o Options, txID string) *stateffect.ApplyResult {
	for _, sc := range result.Speculative {
		verifyCtx := ctx
		if sc.Bound != nil {
			verifyCtx = ctx.WithBindings(sc.Bound)
		}
		cond := sc.Condition
		out, err := eval.Evaluate(&cond, result.State, verifyCtx)
		if err != nil {
			if o.Journal != nil {
				o.Journal.Rollback(txID)
			}
			fail := stateffect.Failure(start, eff, stateffect.ErrInvalidCondition, err.Error())
			return &fail
		}
		if out.Conflicted() {
			if o.Journal != nil {
				o.Journal.Rollback(txID)
			}
			fail := stateffect.Failure(start, eff, stateffect.ErrSpeculationConflict,
				fmt.Sprintf("speculative condition %s no longer holds against the final state", describeCondition(cond)))
			return &fail
		}
	}
	return nil
}

func describeCondition(c stateffect.Condition) string {
	switch {
	case c.Expr != "":
		return fmt.Sprintf("(%s)", c.Expr)
	case c.Op != "":
		return fmt.Sprintf("(%v %s %v)", c.Path, c.Op, c.Value)
	case len(c.All) > 0:
		return "(all ...)"
	case len(c.Any) > 0:
		return "(any ...)"
	case c.Not != nil:
		return "(not " + describeCondition(*c.Not) + ")"
	}
	return "(empty)"
}
