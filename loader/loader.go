// Package loader decodes effect descriptions and state documents from
// their serialized form (JSON or YAML). The effect description is the
// boundary artifact of the interpreter: authored by upstream tooling,
// handed to apply at runtime.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/path"
)

// ParseEffect decodes one effect tree from JSON or YAML.
func ParseEffect(data []byte) (stateffect.Effect, error) {
	raw, err := parseRaw(data)
	if err != nil {
		return stateffect.Effect{}, err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return stateffect.Effect{}, fmt.Errorf("effect must decode to a map, got %T", raw)
	}
	return DecodeEffect(m)
}

// ParseEffects decodes either a single effect or a top-level list of
// effects.
func ParseEffects(data []byte) ([]stateffect.Effect, error) {
	raw, err := parseRaw(data)
	if err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case []any:
		effects := make([]stateffect.Effect, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("effect %d must be a map, got %T", i, item)
			}
			eff, err := DecodeEffect(m)
			if err != nil {
				return nil, fmt.Errorf("effect %d: %w", i, err)
			}
			effects = append(effects, eff)
		}
		return effects, nil
	case map[string]any:
		eff, err := DecodeEffect(v)
		if err != nil {
			return nil, err
		}
		return []stateffect.Effect{eff}, nil
	default:
		return nil, fmt.Errorf("effects must decode to a map or list, got %T", raw)
	}
}

// ParseDocument decodes a state document. A map of the shape
// {"$set": [...]} anywhere in the document becomes an unordered
// collection.
func ParseDocument(data []byte) (stateffect.Document, error) {
	raw, err := parseRaw(data)
	if err != nil {
		return nil, err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document must decode to a map, got %T", raw)
	}
	return stateffect.Document(m), nil
}

// parseRaw sniffs JSON vs YAML, decodes, and normalizes the result to
// plain map[string]any / []any values with $set markers converted.
func parseRaw(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	var raw any
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("decoding JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding YAML: %w", err)
		}
	}
	return normalize(raw)
}

// normalize converts YAML's map[any]any maps to map[string]any,
// descends into containers, and materializes $set markers as sets.
func normalize(v any) (any, error) {
	switch value := v.(type) {
	case map[string]any:
		if set, matched, err := setMembers(value); matched {
			return set, err
		}
		out := make(map[string]any, len(value))
		for k, item := range value {
			norm, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[fmt.Sprint(k)] = item
		}
		return normalize(out)
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			norm, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	default:
		return v, nil
	}
}

func setMembers(m map[string]any) (stateffect.Set, bool, error) {
	if len(m) != 1 {
		return nil, false, nil
	}
	raw, ok := m["$set"]
	if !ok {
		return nil, false, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false, nil
	}
	set := make(stateffect.Set, len(list))
	for _, member := range list {
		norm, err := normalize(member)
		if err != nil {
			return nil, true, err
		}
		if !stateffect.Hashable(norm) {
			return nil, true, fmt.Errorf("$set member %v (%T) cannot be a member of an unordered collection", norm, norm)
		}
		set[norm] = struct{}{}
	}
	return set, true, nil
}

// DecodeEffect converts a decoded map into an effect. Keys that are not
// part of the built-in shape are preserved in Payload so custom handlers
// can see them.
func DecodeEffect(m map[string]any) (stateffect.Effect, error) {
	tag, _ := m["type"].(string)
	if tag == "" {
		return stateffect.Effect{}, fmt.Errorf("effect is missing a type tag")
	}

	eff := stateffect.Effect{Type: stateffect.EffectType(tag)}
	payload := make(map[string]any)

	for key, value := range m {
		switch key {
		case "type":
		case "path":
			segs, err := asSegments(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("path: %w", err)
			}
			eff.Path = segs
		case "from":
			segs, err := asSegments(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("from: %w", err)
			}
			eff.From = segs
		case "to":
			segs, err := asSegments(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("to: %w", err)
			}
			eff.To = segs
		case "value":
			eff.Value = value
		case "fn":
			eff.Fn = value
		case "args":
			args, ok := value.([]any)
			if !ok {
				return stateffect.Effect{}, fmt.Errorf("args must be a list, got %T", value)
			}
			eff.Args = args
		case "predicate":
			eff.Predicate = value
		case "effects":
			children, err := decodeChildren(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("effects: %w", err)
			}
			eff.Effects = children
		case "on_failure":
			s, _ := value.(string)
			eff.OnFailure = stateffect.FailurePolicy(s)
		case "bindings":
			bindings, err := decodeBindings(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("bindings: %w", err)
			}
			eff.Bindings = bindings
		case "body":
			child, err := decodeChild(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("body: %w", err)
			}
			eff.Body = child
		case "condition":
			cond, err := DecodeCondition(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("condition: %w", err)
			}
			eff.Condition = cond
		case "then":
			child, err := decodeChild(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("then: %w", err)
			}
			eff.Then = child
		case "else":
			child, err := decodeChild(value)
			if err != nil {
				return stateffect.Effect{}, fmt.Errorf("else: %w", err)
			}
			eff.Else = child
		case "on_residual":
			s, _ := value.(string)
			eff.OnResidual = stateffect.ResidualPolicy(s)
		case "payload":
			// Round trip of a marshalled effect.
			if m, ok := value.(map[string]any); ok {
				for k, v := range m {
					payload[k] = v
				}
			}
		default:
			payload[key] = value
		}
	}

	if len(payload) > 0 {
		eff.Payload = payload
	}
	return eff, nil
}

func asSegments(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case string:
		// A dotted string path is convenient shorthand in authored files.
		return path.Parse(v)
	}
	return nil, fmt.Errorf("must be a segment list or dotted string, got %T", value)
}

func decodeChildren(value any) ([]stateffect.Effect, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list, got %T", value)
	}
	children := make([]stateffect.Effect, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d must be a map, got %T", i, item)
		}
		child, err := DecodeEffect(m)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func decodeChild(value any) (*stateffect.Effect, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("must be a map, got %T", value)
	}
	child, err := DecodeEffect(m)
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func decodeBindings(value any) ([]stateffect.Binding, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list, got %T", value)
	}
	bindings := make([]stateffect.Binding, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("binding %d must be a map, got %T", i, item)
		}
		name, _ := m["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("binding %d has no name", i)
		}
		bindings = append(bindings, stateffect.Binding{Name: name, Value: m["value"]})
	}
	return bindings, nil
}

// DecodeCondition accepts the map form
// {op, path, value} / {expr} / {all} / {any} / {not}
// and the compact vector form [op, path, value].
func DecodeCondition(value any) (*stateffect.Condition, error) {
	switch v := value.(type) {
	case []any:
		if len(v) < 2 || len(v) > 3 {
			return nil, fmt.Errorf("vector condition must be [op, path, value?], got %d elements", len(v))
		}
		op, ok := v[0].(string)
		if !ok {
			return nil, fmt.Errorf("vector condition operator must be a string, got %T", v[0])
		}
		cond := &stateffect.Condition{Op: op, Path: v[1]}
		if len(v) == 3 {
			cond.Value = v[2]
		}
		return cond, nil

	case map[string]any:
		cond := &stateffect.Condition{}
		if expr, ok := v["expr"].(string); ok {
			cond.Expr = expr
			return cond, nil
		}
		if raw, ok := v["all"]; ok {
			children, err := decodeConditionList(raw)
			if err != nil {
				return nil, fmt.Errorf("all: %w", err)
			}
			cond.All = children
			return cond, nil
		}
		if raw, ok := v["any"]; ok {
			children, err := decodeConditionList(raw)
			if err != nil {
				return nil, fmt.Errorf("any: %w", err)
			}
			cond.Any = children
			return cond, nil
		}
		if raw, ok := v["not"]; ok {
			child, err := DecodeCondition(raw)
			if err != nil {
				return nil, fmt.Errorf("not: %w", err)
			}
			cond.Not = child
			return cond, nil
		}
		op, _ := v["op"].(string)
		if op == "" {
			return nil, fmt.Errorf("condition map needs op, expr, all, any, or not")
		}
		cond.Op = op
		cond.Path = v["path"]
		cond.Value = v["value"]
		return cond, nil
	}
	return nil, fmt.Errorf("condition must be a map or vector, got %T", value)
}

func decodeConditionList(value any) ([]stateffect.Condition, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list, got %T", value)
	}
	conds := make([]stateffect.Condition, 0, len(list))
	for i, item := range list {
		cond, err := DecodeCondition(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		conds = append(conds, *cond)
	}
	return conds, nil
}
