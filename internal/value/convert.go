package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrUnconvertible = errors.New("value: unable to convert native value")

// Of converts a native Go value into a Value. It accepts the shapes produced
// by encoding/json (including json.Number) plus the common integer, float and collection kinds.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Integer(x), nil
	case int8:
		return Integer(x), nil
	case int16:
		return Integer(x), nil
	case int32:
		return Integer(x), nil
	case int64:
		return Integer(x), nil
	case uint8:
		return Integer(x), nil
	case uint16:
		return Integer(x), nil
	case uint32:
		return Integer(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: uint64 %d overflows int64", ErrUnconvertible, x)
		}
		return Integer(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Integer(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrUnconvertible, x.String())
		}
		return Float(f), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case []string:
		out := make(List, len(x))
		for i, s := range x {
			out[i] = String(s)
		}
		return out, nil
	case []any:
		out := make(List, len(x))
		for i, item := range x {
			cv, err := Of(item)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	case map[string]string:
		out := make(Map, len(x))
		for k, s := range x {
			out[k] = String(s)
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(x))
		for k, item := range x {
			cv, err := Of(item)
			if err != nil {
				return nil, fmt.Errorf("map[%q]: %w", k, err)
			}
			out[k] = cv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnconvertible, v)
	}
}

// Native converts v back into plain Go values (nil, bool, string, int64,
// float64, []any, map[string]any). Graph entities become maps.
func Native(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case String:
		return string(x)
	case Integer:
		return int64(x)
	case Float:
		return float64(x)
	case Identity:
		return int64(x)
	case List:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Native(item)
		}
		return out
	case Map:
		return nativeMap(x)
	case Node:
		return map[string]any{
			"id":     int64(x.ID),
			"labels": append([]string(nil), x.Labels...),
			"props":  nativeMap(x.Props),
		}
	case Relationship:
		return map[string]any{
			"id":       int64(x.ID),
			"start_id": int64(x.StartID),
			"end_id":   int64(x.EndID),
			"type":     x.Type,
			"props":    nativeMap(x.Props),
		}
	case Path:
		nodes := make([]any, len(x.Nodes))
		for i, n := range x.Nodes {
			nodes[i] = Native(n)
		}
		rels := make([]any, len(x.Relationships))
		for i, r := range x.Relationships {
			rels[i] = Native(r)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	default:
		return nil
	}
}

func nativeMap(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, item := range m {
		out[k] = Native(item)
	}
	return out
}
