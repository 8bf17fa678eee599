package eval

import (
	"fmt"
	"strings"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/path"
	"github.com/stateffect/stateffect-go/ref"
)

// docNamespace is the optional leading segment of a string condition path
// that names the document root, as in "doc.health".
const docNamespace = "doc"

// Evaluate evaluates a condition against the current state document,
// producing a three-valued outcome. A nil condition is Satisfied.
//
// The returned error covers malformed conditions (unknown operator,
// unparseable expression); absent data is never an error, it is a
// Residual outcome.
func Evaluate(cond *stateffect.Condition, doc stateffect.Document, ctx *stateffect.Context) (Outcome, error) {
	if cond == nil {
		return satisfied(), nil
	}

	switch {
	case len(cond.All) > 0:
		return evaluateAll(cond.All, doc, ctx)
	case len(cond.Any) > 0:
		return evaluateAny(cond.Any, doc, ctx)
	case cond.Not != nil:
		return evaluateNot(cond.Not, doc, ctx)
	case cond.Expr != "":
		return evaluateExpr(cond.Expr, doc)
	case cond.Op != "":
		return evaluateComparison(cond, doc, ctx)
	}
	return Outcome{}, fmt.Errorf("condition has no recognizable form")
}

func evaluateComparison(cond *stateffect.Condition, doc stateffect.Document, ctx *stateffect.Context) (Outcome, error) {
	value, exists, rendered, err := readConditionPath(cond.Path, doc, ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		return residual(rendered), nil
	}

	literal := ref.Resolve(cond.Value, ctx)
	holds, err := Compare(value, cond.Op, literal)
	if err != nil {
		return Outcome{}, err
	}
	if holds {
		return satisfied(), nil
	}
	return conflicted(), nil
}

// readConditionPath reads a condition path from the document. Structured
// segment slices navigate directly (with bound-variable segments
// resolved); string paths strip the optional "doc" namespace and
// navigate structurally, falling back to a gjson query for paths using
// query syntax such as `cards.#(rarity=="rare").name`.
func readConditionPath(p any, doc stateffect.Document, ctx *stateffect.Context) (value any, exists bool, rendered string, err error) {
	switch pv := p.(type) {
	case []any:
		segments := ref.ResolvePath(pv, ctx)
		value, exists = path.GetIn(doc, segments)
		return value, exists, path.Render(segments), nil
	case string:
		trimmed := strings.TrimPrefix(pv, docNamespace+".")
		if isGjsonQuery(trimmed) {
			provider, perr := path.NewProvider(doc)
			if perr != nil {
				return nil, false, "", perr
			}
			value, exists = provider.Get(trimmed)
			return value, exists, pv, nil
		}
		segments, perr := path.Parse(trimmed)
		if perr != nil {
			return nil, false, "", fmt.Errorf("condition path %q: %w", pv, perr)
		}
		value, exists = path.GetIn(doc, ref.ResolvePath(segments, ctx))
		return value, exists, pv, nil
	case nil:
		return nil, false, "", fmt.Errorf("condition is missing a path")
	default:
		return nil, false, "", fmt.Errorf("condition path is %T, want string or segments", p)
	}
}

func isGjsonQuery(p string) bool {
	return strings.ContainsAny(p, "#*?(|@")
}

// evaluateAll combines conjunctively: Conflicted if any member is
// Conflicted (one definite failure decides), else Residual if any member
// is Residual (missing paths unioned), else Satisfied.
func evaluateAll(conds []stateffect.Condition, doc stateffect.Document, ctx *stateffect.Context) (Outcome, error) {
	var missing []string
	sawResidual := false
	for i := range conds {
		out, err := Evaluate(&conds[i], doc, ctx)
		if err != nil {
			return Outcome{}, err
		}
		switch out.Status {
		case StatusConflicted:
			return conflicted(), nil
		case StatusResidual:
			sawResidual = true
			missing = append(missing, out.Missing...)
		}
	}
	if sawResidual {
		return residual(missing...), nil
	}
	return satisfied(), nil
}

// evaluateAny combines disjunctively: Satisfied if any member is
// Satisfied, else Residual if any member is Residual, else Conflicted.
func evaluateAny(conds []stateffect.Condition, doc stateffect.Document, ctx *stateffect.Context) (Outcome, error) {
	var missing []string
	sawResidual := false
	for i := range conds {
		out, err := Evaluate(&conds[i], doc, ctx)
		if err != nil {
			return Outcome{}, err
		}
		switch out.Status {
		case StatusSatisfied:
			return satisfied(), nil
		case StatusResidual:
			sawResidual = true
			missing = append(missing, out.Missing...)
		}
	}
	if sawResidual {
		return residual(missing...), nil
	}
	return conflicted(), nil
}

// evaluateNot swaps Satisfied and Conflicted. Residual stays Residual:
// the negation of an unknown is still unknown.
func evaluateNot(cond *stateffect.Condition, doc stateffect.Document, ctx *stateffect.Context) (Outcome, error) {
	out, err := Evaluate(cond, doc, ctx)
	if err != nil {
		return Outcome{}, err
	}
	switch out.Status {
	case StatusSatisfied:
		return conflicted(), nil
	case StatusConflicted:
		return satisfied(), nil
	default:
		return out, nil
	}
}
