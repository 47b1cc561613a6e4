package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// A Condition is one parsed, typed filter predicate: a column, an
// operator, and the payload shape the operator requires. Parsing happens
// in exactly one place (the compiler's condition loop) so the rest of the
// code never inspects key suffixes.
type Condition struct {
	Field  string // resolved column name, pre-validation
	Op     Op
	Value  any   // scalar payload for comparison and like operators
	Values []any // list payload for in/nin/between
}

// ParseKey splits a filter key into its column name and operator. The
// operator is the trailing underscore-separated token when it matches a
// recognized operator; otherwise the whole key is the column name with an
// implicit equality operator.
func ParseKey(key string) (field string, op Op) {
	if i := strings.LastIndex(key, "_"); i > 0 {
		if o, ok := opByToken(key[i+1:]); ok {
			return key[:i], o
		}
	}
	return key, OpEQ
}

// Parse turns one filter map entry into a typed Condition. ok is false
// when the value cannot satisfy the operator's shape (a between without
// two bounds, an empty list). The field is as written in the key; the
// compiler validates it against the column whitelist before use.
func Parse(key string, raw any) (Condition, bool) {
	field, op := ParseKey(key)
	return newCondition(field, op, raw)
}

// newCondition builds the typed payload for a parsed key. ok is false
// when the raw value cannot satisfy the operator's shape; the caller
// decides whether that drops the condition or raises an error.
func newCondition(field string, op Op, raw any) (c Condition, ok bool) {
	c = Condition{Field: field, Op: op}
	switch {
	case op.Nullary():
		return c, true
	case op == OpBetween:
		vs := toList(raw)
		if len(vs) < 2 {
			return c, false
		}
		c.Values = vs[:2]
		return c, true
	case op.List():
		vs := toList(raw)
		if len(vs) == 0 {
			return c, false
		}
		c.Values = vs
		return c, true
	default:
		c.Value = raw
		return c, true
	}
}

// toList coerces a raw filter value into a list payload. Strings are
// comma-split with empty elements dropped; slices pass through with nil
// and empty-string elements dropped; any other scalar becomes a
// one-element list.
func toList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(v))
		for _, e := range v {
			if e == nil || e == "" {
				continue
			}
			out = append(out, e)
		}
		return out
	case []string:
		out := make([]any, 0, len(v))
		for _, e := range v {
			if e == "" {
				continue
			}
			out = append(out, e)
		}
		return out
	case string:
		parts := strings.Split(v, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
		return out
	default:
		return []any{raw}
	}
}

// toInt coerces a pagination value to an integer. Unparsable values
// resolve to ok=false and are ignored rather than raised, keeping queries
// resilient to partially invalid client input.
func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// toString renders a raw value for like-pattern wrapping.
func toString(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}
