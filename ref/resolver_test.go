package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"

	stateffect "github.com/stateffect/stateffect-go"
)

func TestResolveBoundVariable(t *testing.T) {
	ctx := stateffect.NewContext(stateffect.Document{}).
		WithBindings(map[string]any{"target": "player-2"})

	assert.Equal(t, "player-2", Resolve("target", ctx))
	// Unbound names stay literal.
	assert.Equal(t, "health", Resolve("health", ctx))
}

func TestResolveStateReference(t *testing.T) {
	ctx := stateffect.NewContext(stateffect.Document{
		"player": map[string]any{"health": 10},
	})

	assert.Equal(t, 10, Resolve([]any{"state", "player", "health"}, ctx))
	// Absent state path resolves to nil, not an error.
	assert.Nil(t, Resolve([]any{"state", "player", "mana"}, ctx))
}

func TestResolveStateReferenceWithBoundSegment(t *testing.T) {
	ctx := stateffect.NewContext(stateffect.Document{
		"players": map[string]any{"p2": map[string]any{"health": 4}},
	}).WithBindings(map[string]any{"who": "p2"})

	assert.Equal(t, 4, Resolve([]any{"state", "players", "who", "health"}, ctx))
}

func TestResolveCtxReference(t *testing.T) {
	ctx := stateffect.NewContext(stateffect.Document{}).
		WithBindings(map[string]any{"x": 1})

	assert.Equal(t, 1, Resolve([]any{"ctx", "bindings", "x"}, ctx))
	assert.Equal(t, ctx.Prov.InvocationID, Resolve([]any{"ctx", "provenance", "invocation_id"}, ctx))
}

func TestResolveCtxSegmentsAreLiteral(t *testing.T) {
	// A binding whose name collides with a context segment must not
	// rewrite the lookup path; the segment names the context's own key.
	ctx := stateffect.NewContext(stateffect.Document{}).
		WithBindings(map[string]any{"x": 1, "bindings": "shadow"})

	assert.Equal(t, 1, Resolve([]any{"ctx", "bindings", "x"}, ctx))
	assert.Equal(t, "shadow", Resolve([]any{"ctx", "bindings", "bindings"}, ctx))
}

func TestResolveParamReference(t *testing.T) {
	ctx := stateffect.NewContext(stateffect.Document{}).
		WithParams(map[string]any{"amount": 5})

	assert.Equal(t, 5, Resolve([]any{"param", "amount"}, ctx))
	assert.Nil(t, Resolve([]any{"param", "missing"}, ctx))
}

func TestResolveLiteralsPassThrough(t *testing.T) {
	ctx := stateffect.NewContext(stateffect.Document{})

	assert.Equal(t, 42, Resolve(42, ctx))
	assert.Equal(t, []any{1, 2, 3}, Resolve([]any{1, 2, 3}, ctx))
	assert.Equal(t, map[string]any{"k": "v"}, Resolve(map[string]any{"k": "v"}, ctx))
	assert.Nil(t, Resolve(nil, ctx))
}

func TestResolvePathOnlyResolvesBoundSegments(t *testing.T) {
	ctx := stateffect.NewContext(stateffect.Document{}).
		WithBindings(map[string]any{"idx": 2})

	resolved := ResolvePath([]any{"cards", "idx", "name"}, ctx)
	assert.Equal(t, []any{"cards", 2, "name"}, resolved)

	// Segment resolution never interprets reference tags.
	resolved = ResolvePath([]any{"state", "cards"}, ctx)
	assert.Equal(t, []any{"state", "cards"}, resolved)
}
