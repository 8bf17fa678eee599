package path

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Provider answers string-path queries against a snapshot of a document
// using gjson syntax, including query paths such as
// `cards.#(rarity=="rare").name`. The document is marshalled once at
// construction; a Provider is therefore cheap to query repeatedly but
// must be rebuilt after the document changes.
type Provider struct {
	raw string
}

// NewProvider snapshots the given document.
func NewProvider(doc any) (*Provider, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}
	return &Provider{raw: string(raw)}, nil
}

// NewProviderFromJSON wraps an already-encoded document.
func NewProviderFromJSON(raw string) *Provider {
	return &Provider{raw: raw}
}

// Get returns the value at the gjson path and whether it exists.
func (p *Provider) Get(pathStr string) (any, bool) {
	result := gjson.Get(p.raw, pathStr)
	if !result.Exists() {
		return nil, false
	}
	return resultToValue(result), true
}

// Exists reports whether the gjson path resolves.
func (p *Provider) Exists(pathStr string) bool {
	return gjson.Get(p.raw, pathStr).Exists()
}

// resultToValue converts a gjson result into plain Go values matching
// what encoding/json produces (map[string]any, []any, float64, ...).
func resultToValue(result gjson.Result) any {
	switch {
	case result.IsObject():
		m := make(map[string]any)
		result.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = resultToValue(value)
			return true
		})
		return m
	case result.IsArray():
		var arr []any
		result.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, resultToValue(value))
			return true
		})
		return arr
	default:
		return result.Value()
	}
}
