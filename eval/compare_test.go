package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stateffect "github.com/stateffect/stateffect-go"
)

func TestCompareOperators(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		op      string
		literal any
		want    bool
	}{
		{"eq numbers cross type", 3, "==", float64(3), true},
		{"eq alias", 3, "=", 3, true},
		{"neq", 3, "!=", 4, true},
		{"lt", 2, "<", 3, true},
		{"lte equal", 3, "<=", 3, true},
		{"gt", 5, ">", 3, true},
		{"gte", 5, ">=", 5, true},
		{"string order", "apple", "<", "banana", true},
		{"in slice", "b", "in", []any{"a", "b"}, true},
		{"in set", "b", "in", stateffect.NewSet("a", "b"), true},
		{"contains slice", []any{1, 2}, "contains", 2, true},
		{"contains substring", "hello", "contains", "ell", true},
		{"eq strings", "x", "==", "y", false},
		{"number vs string never equal", 3, "==", "3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.value, tt.op, tt.literal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareUnknownOperatorIsError(t *testing.T) {
	_, err := Compare(1, "~=", 2)
	assert.Error(t, err)
}

func TestEqualDeepValues(t *testing.T) {
	assert.True(t, Equal(map[string]any{"a": 1}, map[string]any{"a": 1}))
	assert.False(t, Equal(map[string]any{"a": 1}, map[string]any{"a": 2}))
	assert.True(t, Equal(nil, nil))
}
