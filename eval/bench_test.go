package eval

import (
	"testing"

	stateffect "github.com/stateffect/stateffect-go"
)

var benchDoc = stateffect.Document{
	"health": 10,
	"status": "active",
	"stats":  map[string]any{"atk": 3, "def": 2},
	"cards": []any{
		map[string]any{"name": "bolt", "rarity": "common"},
		map[string]any{"name": "aegis", "rarity": "rare"},
	},
}

func BenchmarkEvaluateComparison(b *testing.B) {
	ctx := stateffect.NewContext(benchDoc)
	cond := stateffect.Compare(">", "doc.health", 5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(cond, benchDoc, ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluateComposite(b *testing.B) {
	ctx := stateffect.NewContext(benchDoc)
	cond := &stateffect.Condition{All: []stateffect.Condition{
		*stateffect.Compare(">", "doc.health", 5),
		*stateffect.Compare("==", "doc.status", "active"),
		{Any: []stateffect.Condition{
			*stateffect.Compare(">", []any{"stats", "atk"}, 1),
			*stateffect.Compare(">", []any{"stats", "def"}, 5),
		}},
	}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(cond, benchDoc, ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluateExpr(b *testing.B) {
	ctx := stateffect.NewContext(benchDoc)
	cond := &stateffect.Condition{Expr: `health > 5 && stats.atk >= 3`}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(cond, benchDoc, ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluateResidual(b *testing.B) {
	ctx := stateffect.NewContext(benchDoc)
	cond := stateffect.Compare(">", "doc.mana", 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(cond, benchDoc, ctx); err != nil {
			b.Fatal(err)
		}
	}
}
