package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/path"
)

func getIn(t *testing.T, doc stateffect.Document, segments ...any) any {
	t.Helper()
	v, ok := path.GetIn(doc, segments)
	require.True(t, ok, "path %v should exist", segments)
	return v
}

func TestNoopIsIdentity(t *testing.T) {
	doc := stateffect.Document{"a": 1}

	result := Apply(doc, stateffect.Effect{Type: stateffect.Noop}, nil)

	assert.Equal(t, doc, result.State)
	assert.Empty(t, result.Applied)
	assert.Empty(t, result.Failed)
}

func TestAssocInWritesAndCreatesIntermediates(t *testing.T) {
	doc := stateffect.Document{}

	result := Apply(doc, stateffect.Effect{
		Type:  stateffect.AssocIn,
		Path:  []any{"player", "health"},
		Value: 10,
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, 10, getIn(t, result.State, "player", "health"))
	assert.Len(t, result.Applied, 1)
	// Input untouched.
	assert.Empty(t, doc)
}

func TestAssocInResolvesReferences(t *testing.T) {
	doc := stateffect.Document{"source": 42}
	ctx := stateffect.NewContext(doc).WithParams(map[string]any{"who": "p1"})

	result := Apply(doc, stateffect.Effect{
		Type:  stateffect.AssocIn,
		Path:  []any{"copied"},
		Value: []any{"state", "source"},
	}, ctx)
	require.Empty(t, result.Failed)
	assert.Equal(t, 42, getIn(t, result.State, "copied"))

	result = Apply(doc, stateffect.Effect{
		Type:  stateffect.AssocIn,
		Path:  []any{"owner"},
		Value: []any{"param", "who"},
	}, ctx)
	require.Empty(t, result.Failed)
	assert.Equal(t, "p1", getIn(t, result.State, "owner"))
}

func TestDissocIn(t *testing.T) {
	doc := stateffect.Document{"a": map[string]any{"b": 1, "c": 2}}

	result := Apply(doc, stateffect.Effect{
		Type: stateffect.DissocIn,
		Path: []any{"a", "b"},
	}, nil)

	require.Empty(t, result.Failed)
	_, ok := path.GetIn(result.State, []any{"a", "b"})
	assert.False(t, ok)
}

func TestUpdateInWithBuiltin(t *testing.T) {
	doc := stateffect.Document{"counter": 3}

	result := Apply(doc, stateffect.Effect{
		Type: stateffect.UpdateIn,
		Path: []any{"counter"},
		Fn:   "+",
		Args: []any{2},
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, 5, getIn(t, result.State, "counter"))
}

func TestUpdateInAbsentTargetUsesFunctionDefault(t *testing.T) {
	result := Apply(stateffect.Document{}, stateffect.Effect{
		Type: stateffect.UpdateIn,
		Path: []any{"counter"},
		Fn:   "inc",
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, 1, getIn(t, result.State, "counter"))

	result = Apply(stateffect.Document{}, stateffect.Effect{
		Type: stateffect.UpdateIn,
		Path: []any{"total"},
		Fn:   "*",
		Args: []any{5},
	}, nil)
	require.Empty(t, result.Failed)
	assert.Equal(t, 5, getIn(t, result.State, "total"))
}

func TestUpdateInUnknownFunction(t *testing.T) {
	doc := stateffect.Document{"x": 1}

	result := Apply(doc, stateffect.Effect{
		Type: stateffect.UpdateIn,
		Path: []any{"x"},
		Fn:   "frobnicate",
	}, nil)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, stateffect.ErrUnknownFunction, result.Failed[0].Error)
	assert.Equal(t, doc, result.State)
}

func TestConjInCreatesOrderedCollection(t *testing.T) {
	result := Apply(stateffect.Document{}, stateffect.Effect{
		Type:  stateffect.ConjIn,
		Path:  []any{"log"},
		Value: "first",
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, []any{"first"}, getIn(t, result.State, "log"))
}

func TestConjInPreservesSetKind(t *testing.T) {
	doc := stateffect.Document{"tags": stateffect.NewSet("a")}

	result := Apply(doc, stateffect.Effect{
		Type:  stateffect.ConjIn,
		Path:  []any{"tags"},
		Value: "b",
	}, nil)

	require.Empty(t, result.Failed)
	set, ok := getIn(t, result.State, "tags").(stateffect.Set)
	require.True(t, ok)
	assert.True(t, set.Has("a"))
	assert.True(t, set.Has("b"))
}

func TestConjInUnhashableValueIntoSetFailsAsData(t *testing.T) {
	doc := stateffect.Document{"tags": stateffect.NewSet("a")}

	result := Apply(doc, stateffect.Effect{
		Type:  stateffect.ConjIn,
		Path:  []any{"tags"},
		Value: map[string]any{"name": "bolt"},
	}, nil)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, stateffect.ErrNotACollection, result.Failed[0].Error)
	// Original set untouched.
	set := getIn(t, result.State, "tags").(stateffect.Set)
	assert.True(t, set.Has("a"))
}

func TestRemoveIn(t *testing.T) {
	doc := stateffect.Document{"cards": []any{
		map[string]any{"name": "bolt", "cost": 1},
		map[string]any{"name": "aegis", "cost": 3},
	}}

	result := Apply(doc, stateffect.Effect{
		Type:      stateffect.RemoveIn,
		Path:      []any{"cards"},
		Predicate: map[string]any{"name": "bolt"},
	}, nil)

	require.Empty(t, result.Failed)
	cards := getIn(t, result.State, "cards").([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, "aegis", cards[0].(map[string]any)["name"])
}

func TestRemoveInAbsentTargetSucceeds(t *testing.T) {
	doc := stateffect.Document{}

	result := Apply(doc, stateffect.Effect{
		Type:      stateffect.RemoveIn,
		Path:      []any{"cards"},
		Predicate: map[string]any{"name": "bolt"},
	}, nil)

	assert.Empty(t, result.Failed)
	assert.Len(t, result.Applied, 1)
	assert.Equal(t, doc, result.State)
}

func TestMoveRelocatesMatchingElements(t *testing.T) {
	doc := stateffect.Document{
		"hand": []any{
			map[string]any{"name": "bolt"},
			map[string]any{"name": "aegis"},
		},
		"discard": []any{},
	}

	result := Apply(doc, stateffect.Effect{
		Type:      stateffect.Move,
		From:      []any{"hand"},
		To:        []any{"discard"},
		Predicate: map[string]any{"name": "bolt"},
	}, nil)

	require.Empty(t, result.Failed)
	hand := getIn(t, result.State, "hand").([]any)
	discard := getIn(t, result.State, "discard").([]any)
	require.Len(t, hand, 1)
	require.Len(t, discard, 1)
	assert.Equal(t, "aegis", hand[0].(map[string]any)["name"])
	assert.Equal(t, "bolt", discard[0].(map[string]any)["name"])
}

func TestMoveIntoAbsentDestinationCreatesOrdered(t *testing.T) {
	doc := stateffect.Document{"hand": []any{map[string]any{"name": "bolt"}}}

	result := Apply(doc, stateffect.Effect{
		Type:      stateffect.Move,
		From:      []any{"hand"},
		To:        []any{"graveyard"},
		Predicate: map[string]any{"name": "bolt"},
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, []any{map[string]any{"name": "bolt"}}, getIn(t, result.State, "graveyard"))
	assert.Empty(t, getIn(t, result.State, "hand"))
}

func TestMergeIn(t *testing.T) {
	doc := stateffect.Document{"player": map[string]any{"health": 10, "mana": 2}}

	result := Apply(doc, stateffect.Effect{
		Type:  stateffect.MergeIn,
		Path:  []any{"player"},
		Value: map[string]any{"mana": 5, "shield": 1},
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, 10, getIn(t, result.State, "player", "health"))
	assert.Equal(t, 5, getIn(t, result.State, "player", "mana"))
	assert.Equal(t, 1, getIn(t, result.State, "player", "shield"))
}

func TestMergeInRejectsNonMapValue(t *testing.T) {
	doc := stateffect.Document{"scalar": 7}

	result := Apply(doc, stateffect.Effect{
		Type:  stateffect.MergeIn,
		Path:  []any{"player"},
		Value: []any{"state", "scalar"},
	}, nil)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, stateffect.ErrNotAMap, result.Failed[0].Error)
}

func TestSequenceThreadsStateAndCollectsFailures(t *testing.T) {
	doc := stateffect.Document{}

	result := Apply(doc, stateffect.Effect{
		Type: stateffect.Sequence,
		Effects: []stateffect.Effect{
			{Type: stateffect.AssocIn, Path: []any{"a"}, Value: 1},
			{Type: stateffect.UpdateIn, Path: []any{"a"}, Fn: "bogus"},
			{Type: stateffect.AssocIn, Path: []any{"b"}, Value: 2},
		},
	}, nil)

	// A sequence never aborts; the failing step is recorded and later
	// steps still run.
	assert.Equal(t, 1, getIn(t, result.State, "a"))
	assert.Equal(t, 2, getIn(t, result.State, "b"))
	assert.Len(t, result.Applied, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, stateffect.ErrUnknownFunction, result.Failed[0].Error)
}

func TestApplyAllIsSequence(t *testing.T) {
	result := ApplyAll(stateffect.Document{}, []stateffect.Effect{
		{Type: stateffect.AssocIn, Path: []any{"x"}, Value: 1},
		{Type: stateffect.UpdateIn, Path: []any{"x"}, Fn: "inc"},
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, 2, getIn(t, result.State, "x"))
}

func TestUnknownEffectTypeFailsAsData(t *testing.T) {
	doc := stateffect.Document{"a": 1}

	result := Apply(doc, stateffect.Effect{Type: "summon-dragon"}, nil)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, stateffect.ErrUnknownEffectType, result.Failed[0].Error)
	assert.Equal(t, doc, result.State)
}

func TestValidationRejectsMalformedEffect(t *testing.T) {
	result := Apply(stateffect.Document{}, stateffect.Effect{
		Type: stateffect.AssocIn, // no path
	}, nil)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, stateffect.ErrInvalidEffect, result.Failed[0].Error)
}

func TestValidationCanBeDisabled(t *testing.T) {
	// With validation off a malformed assoc-in surfaces as a path error
	// instead of a validation failure.
	result := Apply(stateffect.Document{}, stateffect.Effect{
		Type: stateffect.AssocIn,
	}, nil, WithValidation(false))

	require.Len(t, result.Failed, 1)
	assert.NotEqual(t, stateffect.ErrInvalidEffect, result.Failed[0].Error)
}

func TestCustomEffectRegistration(t *testing.T) {
	registry := NewBuiltinRegistry()
	registry.Register("draw-card", func(doc stateffect.Document, eff stateffect.Effect, ctx *stateffect.Context, o Options) stateffect.ApplyResult {
		n, _ := eff.Payload["count"].(int)
		next, err := path.AssocIn(doc, []any{"drawn"}, n)
		if err != nil {
			return stateffect.Failure(doc, eff, stateffect.ErrInvalidPath, err.Error())
		}
		return stateffect.Applied(next.(stateffect.Document), eff)
	})

	result := Apply(stateffect.Document{}, stateffect.Effect{
		Type:    "draw-card",
		Payload: map[string]any{"count": 3},
	}, nil, WithRegistry(registry))

	require.Empty(t, result.Failed)
	assert.Equal(t, 3, getIn(t, result.State, "drawn"))
}

func TestLetBindsAndShadows(t *testing.T) {
	doc := stateffect.Document{"stock": 9}
	ctx := stateffect.NewContext(doc).WithBindings(map[string]any{"n": 1})

	result := Apply(doc, stateffect.Effect{
		Type: stateffect.Let,
		Bindings: []stateffect.Binding{
			{Name: "n", Value: []any{"state", "stock"}},
			{Name: "double", Value: "n"}, // sees the binding above
		},
		Body: &stateffect.Effect{
			Type:  stateffect.AssocIn,
			Path:  []any{"out"},
			Value: "double",
		},
	}, ctx)

	require.Empty(t, result.Failed)
	assert.Equal(t, 9, getIn(t, result.State, "out"))
	// The outer context still sees its own binding.
	v, _ := ctx.Lookup("n")
	assert.Equal(t, 1, v)
}

func TestConditionalBranches(t *testing.T) {
	doc := stateffect.Document{"health": 10}

	eff := stateffect.Effect{
		Type:      stateffect.Conditional,
		Condition: stateffect.Compare(">", "doc.health", 5),
		Then:      &stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"branch"}, Value: "then"},
		Else:      &stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"branch"}, Value: "else"},
	}

	result := Apply(doc, eff, nil)
	require.Empty(t, result.Failed)
	assert.Equal(t, "then", getIn(t, result.State, "branch"))

	eff.Condition = stateffect.Compare(">", "doc.health", 50)
	result = Apply(doc, eff, nil)
	require.Empty(t, result.Failed)
	assert.Equal(t, "else", getIn(t, result.State, "branch"))
}

func TestConditionalMissingElseIsNoop(t *testing.T) {
	doc := stateffect.Document{"health": 1}

	result := Apply(doc, stateffect.Effect{
		Type:      stateffect.Conditional,
		Condition: stateffect.Compare(">", "doc.health", 5),
		Then:      &stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"x"}, Value: 1},
	}, nil)

	assert.Empty(t, result.Failed)
	assert.Empty(t, result.Applied)
	assert.Equal(t, doc, result.State)
}

func TestResidualDefaultsToBlock(t *testing.T) {
	doc := stateffect.Document{}

	result := Apply(doc, stateffect.Effect{
		Type:      stateffect.Conditional,
		Condition: stateffect.Compare(">", "doc.health", 0),
		Then:      &stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"x"}, Value: 1},
		Else:      &stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"blocked"}, Value: true},
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, true, getIn(t, result.State, "blocked"))
	_, ok := path.GetIn(result.State, []any{"x"})
	assert.False(t, ok)
}

func TestResidualDefer(t *testing.T) {
	doc := stateffect.Document{"a": 1}

	result := Apply(doc, stateffect.Effect{
		Type:       stateffect.Conditional,
		Condition:  stateffect.Compare(">", "doc.health", 0),
		OnResidual: stateffect.ResidualDefer,
		Then:       &stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"x"}, Value: 1},
	}, nil)

	assert.Equal(t, doc, result.State)
	assert.Empty(t, result.Applied)
	require.NotNil(t, result.Pending)
	assert.Equal(t, "deferred", result.Pending.Type)
	assert.Equal(t, []string{"doc.health"}, result.Pending.Residual)
}

func TestResidualProceedAnnotates(t *testing.T) {
	doc := stateffect.Document{}

	result := Apply(doc, stateffect.Effect{
		Type:       stateffect.Conditional,
		Condition:  stateffect.Compare(">", "doc.health", 0),
		OnResidual: stateffect.ResidualProceed,
		Then:       &stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"x"}, Value: 1},
	}, nil)

	require.Empty(t, result.Failed)
	assert.Equal(t, 1, getIn(t, result.State, "x"))
	require.Len(t, result.Applied, 1)
	assert.Equal(t, []string{"doc.health"}, result.Applied[0].ConditionResidual)
	assert.False(t, result.Applied[0].Speculative)
}

func TestUnknownResidualPolicyFailsValidation(t *testing.T) {
	result := Apply(stateffect.Document{}, stateffect.Effect{
		Type:       stateffect.Conditional,
		Condition:  stateffect.Compare(">", "doc.health", 0),
		OnResidual: "guess",
		Then:       &stateffect.Effect{Type: stateffect.Noop},
	}, nil)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, stateffect.ErrInvalidEffect, result.Failed[0].Error)
}
