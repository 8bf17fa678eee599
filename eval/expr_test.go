package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stateffect "github.com/stateffect/stateffect-go"
)

func evaluateExprCond(t *testing.T, expression string, doc stateffect.Document) Outcome {
	t.Helper()
	ctx := stateffect.NewContext(doc)
	out, err := Evaluate(&stateffect.Condition{Expr: expression}, doc, ctx)
	require.NoError(t, err)
	return out
}

func TestExprSatisfiedAndConflicted(t *testing.T) {
	doc := stateffect.Document{"health": 10, "status": "active"}

	out := evaluateExprCond(t, `health > 5 && status == "active"`, doc)
	assert.True(t, out.Satisfied())

	out = evaluateExprCond(t, `health > 50`, doc)
	assert.True(t, out.Conflicted())
}

func TestExprResidualOnMissingVariable(t *testing.T) {
	doc := stateffect.Document{"health": 10}

	out := evaluateExprCond(t, `health > 5 && mana >= 2`, doc)
	assert.True(t, out.Residual())
	assert.Equal(t, []string{"mana"}, out.Missing)
}

func TestExprResidualOnMissingMemberChain(t *testing.T) {
	doc := stateffect.Document{
		"stats": map[string]any{"atk": 3},
	}

	out := evaluateExprCond(t, `stats.atk > 1`, doc)
	assert.True(t, out.Satisfied())

	out = evaluateExprCond(t, `stats.def > 1`, doc)
	assert.True(t, out.Residual())
	assert.Equal(t, []string{"stats.def"}, out.Missing)
}

func TestExprReportsAllMissingPathsSorted(t *testing.T) {
	out := evaluateExprCond(t, `zeta > 1 || alpha > 1`, stateffect.Document{})
	assert.True(t, out.Residual())
	assert.Equal(t, []string{"alpha", "zeta"}, out.Missing)
}

func TestExprBuiltinCalleesAreNotPaths(t *testing.T) {
	doc := stateffect.Document{"tags": []any{"a", "b"}}

	out := evaluateExprCond(t, `len(tags) == 2`, doc)
	assert.True(t, out.Satisfied())
}

func TestExprErrors(t *testing.T) {
	doc := stateffect.Document{"health": 10}
	ctx := stateffect.NewContext(doc)

	_, err := Evaluate(&stateffect.Condition{Expr: `health >`}, doc, ctx)
	assert.Error(t, err)

	// Non-boolean result is a malformed condition, not false.
	_, err = Evaluate(&stateffect.Condition{Expr: `health + 1`}, doc, ctx)
	assert.Error(t, err)
}
