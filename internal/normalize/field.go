// Package normalize maps loosely shaped records coming from the upstream API
// or from local storage into the canonical domain types. Nothing here returns
// an error: missing or malformed input degrades to defaults.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is a decoded JSON object of unknown shape.
type Record map[string]any

// Field extracts one candidate value from a record.
type Field func(Record) (any, bool)

// Key is the candidate stored under a top-level name.
func Key(name string) Field {
	return func(r Record) (any, bool) {
		v, ok := r[name]
		return v, ok && v != nil
	}
}

// Path walks nested objects, e.g. Path("product", "price").
func Path(names ...string) Field {
	return func(r Record) (any, bool) {
		cur := r
		for i, name := range names {
			v, ok := cur[name]
			if !ok || v == nil {
				return nil, false
			}
			if i == len(names)-1 {
				return v, true
			}
			next, ok := asRecord(v)
			if !ok {
				return nil, false
			}
			cur = next
		}
		return nil, false
	}
}

// Keys is shorthand for a list of top-level candidates.
func Keys(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = Key(n)
	}
	return out
}

// FirstDefined returns the first candidate that is present and not nil.
func FirstDefined(r Record, fields ...Field) (any, bool) {
	if r == nil {
		return nil, false
	}
	for _, f := range fields {
		if v, ok := f(r); ok {
			return v, true
		}
	}
	return nil, false
}

// OptionalString resolves a string candidate; numbers are formatted.
// Empty strings count as defined, matching nullish-coalescing semantics.
func OptionalString(r Record, fields ...Field) (string, bool) {
	v, ok := FirstDefined(r, fields...)
	if !ok {
		return "", false
	}
	return toString(v)
}

func String(r Record, def string, fields ...Field) string {
	if s, ok := OptionalString(r, fields...); ok {
		return s
	}
	return def
}

// OptionalFloat resolves a numeric candidate; numeric strings are parsed.
func OptionalFloat(r Record, fields ...Field) (float64, bool) {
	v, ok := FirstDefined(r, fields...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func Float(r Record, def float64, fields ...Field) float64 {
	if f, ok := OptionalFloat(r, fields...); ok {
		return f
	}
	return def
}

func Int(r Record, def int, fields ...Field) int {
	if f, ok := OptionalFloat(r, fields...); ok {
		return int(math.Trunc(f))
	}
	return def
}

// Bool resolves a boolean candidate using JS-like truthiness for non-bools.
func Bool(r Record, def bool, fields ...Field) bool {
	v, ok := FirstDefined(r, fields...)
	if !ok {
		return def
	}
	return truthy(v)
}

// List unwraps a collection payload: a bare array or one nested under
// content, data or items. Non-object elements are dropped.
func List(raw any) []Record {
	switch v := raw.(type) {
	case []any:
		out := make([]Record, 0, len(v))
		for _, el := range v {
			if r, ok := asRecord(el); ok {
				out = append(out, r)
			}
		}
		return out
	case []Record:
		return v
	case []map[string]any:
		out := make([]Record, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	}
	if r, ok := asRecord(raw); ok {
		for _, k := range []string{"content", "data", "items"} {
			if inner, ok := r[k]; ok {
				if _, isList := inner.([]any); isList {
					return List(inner)
				}
			}
		}
	}
	return []Record{}
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b != ""
	case nil:
		return false
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}
