package compliance

import (
	"encoding/json"
	"math"
)

// Rule values arrive either from Go callers (int, bool) or decoded JSON
// (float64, json.Number). The accessors accept both and fall back to def on
// a missing or mistyped key.

func (r Rules) Int(key string, def int) int {
	f, ok := r.number(key)
	if !ok {
		return def
	}
	return int(math.Round(f))
}

func (r Rules) Float(key string, def float64) float64 {
	f, ok := r.number(key)
	if !ok {
		return def
	}
	return f
}

func (r Rules) number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (r Rules) Bool(key string, def bool) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return def
}

// Strings returns a string list rule, or nil if absent.
func (r Rules) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func (r Rules) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Clone returns a shallow copy so stored policies are not aliased by callers.
func (r Rules) Clone() Rules {
	if r == nil {
		return Rules{}
	}
	out := make(Rules, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
