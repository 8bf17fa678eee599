package interp

import (
	"testing"

	stateffect "github.com/stateffect/stateffect-go"
)

func benchState() stateffect.Document {
	return stateffect.Document{
		"players": map[string]any{
			"p1": map[string]any{"health": 10, "mana": 3},
			"p2": map[string]any{"health": 8, "mana": 2},
		},
		"hand": []any{
			map[string]any{"name": "bolt", "cost": 1},
			map[string]any{"name": "aegis", "cost": 3},
		},
		"discard": []any{},
	}
}

func BenchmarkApplyAssocIn(b *testing.B) {
	doc := benchState()
	eff := stateffect.Effect{Type: stateffect.AssocIn, Path: []any{"players", "p1", "health"}, Value: 7}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := Apply(doc, eff, nil)
		if len(res.Failed) > 0 {
			b.Fatal(res.Failed[0].Detail)
		}
	}
}

func BenchmarkApplyTransaction(b *testing.B) {
	doc := benchState()
	eff := stateffect.Effect{
		Type: stateffect.Transaction,
		Effects: []stateffect.Effect{
			{Type: stateffect.UpdateIn, Path: []any{"players", "p1", "mana"}, Fn: "-", Args: []any{1}},
			{Type: stateffect.Move, From: []any{"hand"}, To: []any{"discard"}, Predicate: map[string]any{"name": "bolt"}},
			{Type: stateffect.UpdateIn, Path: []any{"players", "p2", "health"}, Fn: "-", Args: []any{3}},
		},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := Apply(doc, eff, nil)
		if len(res.Failed) > 0 {
			b.Fatal(res.Failed[0].Detail)
		}
	}
}

func BenchmarkApplyConditional(b *testing.B) {
	doc := benchState()
	eff := stateffect.Effect{
		Type:      stateffect.Conditional,
		Condition: stateffect.Compare(">", []any{"players", "p1", "mana"}, 0),
		Then:      &stateffect.Effect{Type: stateffect.UpdateIn, Path: []any{"players", "p1", "mana"}, Fn: "dec"},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := Apply(doc, eff, nil)
		if len(res.Failed) > 0 {
			b.Fatal(res.Failed[0].Detail)
		}
	}
}
