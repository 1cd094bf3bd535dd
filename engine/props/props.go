// Package props normalizes an object's heterogeneous property bag into a
// single case-insensitive string-keyed table.
package props

import (
	"strconv"
	"strings"
)

// Table maps lowercased property names to scalar values
// (string, number, or bool).
type Table map[string]any

// Parse accepts either an array of {name, value} pairs or an
// already-keyed map and returns a normalized table. Unknown or
// malformed input yields an empty table, never an error. Key
// collisions silently overwrite; the authoring tool guarantees
// uniqueness, so no order is promised.
func Parse(raw any) Table {
	t := Table{}
	switch v := raw.(type) {
	case map[string]any:
		for k, val := range v {
			t[strings.ToLower(k)] = val
		}
	case []any:
		for _, entry := range v {
			pair, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name, ok := pair["name"].(string)
			if !ok || name == "" {
				continue
			}
			t[strings.ToLower(name)] = pair["value"]
		}
	case Table:
		for k, val := range v {
			t[strings.ToLower(k)] = val
		}
	}
	return t
}

// Has reports whether the key is present.
func (t Table) Has(key string) bool {
	_, ok := t[strings.ToLower(key)]
	return ok
}

// Str returns the value as a string, or "" when absent.
// Numbers and bools are formatted.
func (t Table) Str(key string) string {
	v, ok := t[strings.ToLower(key)]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// Int returns the value coerced to int, or 0 when absent or non-numeric.
func (t Table) Int(key string) int {
	return int(t.Float(key))
}

// Float returns the value coerced to float64, or 0 when absent.
func (t Table) Float(key string) float64 {
	v, ok := t[strings.ToLower(key)]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool returns the value coerced to bool. Strings "true"/"1"/"yes" and
// non-zero numbers are true; anything else, including absence, is false.
func (t Table) Bool(key string) bool {
	v, ok := t[strings.ToLower(key)]
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		}
		return false
	case float64:
		return b != 0
	case int:
		return b != 0
	default:
		return false
	}
}

// List splits a comma-separated string value into trimmed, non-empty
// entries. A missing key yields nil.
func (t Table) List(key string) []string {
	s := t.Str(key)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
