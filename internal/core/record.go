package core

import "fmt"

// Record is a flat JSON object as decoded from a request or the store.
// Values are whatever the JSON decoder produced (string, float64, bool,
// []interface{}, map[string]interface{} or nil).
type Record map[string]interface{}

// Truthy reports whether v counts as set: nil, false, zero numbers,
// empty strings and empty collections are all falsy.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// Has reports whether key is present, even with a null value
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Clone returns a shallow copy of r
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Display renders a scalar JSON value as text. Null renders as "null".
func Display(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
