package alerting

import (
	"strings"

	"salesdash/internal/sales"
)

// Evaluate reports whether a record value triggers op against comparand.
// Null record values never trigger. Ordering operators coerce both sides to
// numbers and fail closed; equality compares string forms; contains is
// case-insensitive.
func Evaluate(value sales.Value, op Operator, comparand sales.Value) bool {
	if value.IsNull() {
		return false
	}

	switch op {
	case OpGreater, OpLess:
		a, okA := value.ToNumber()
		b, okB := comparand.ToNumber()
		if !okA || !okB {
			return false
		}
		if op == OpGreater {
			return a > b
		}
		return a < b
	case OpEquals:
		return value.String() == comparandString(comparand)
	case OpNotEquals:
		return value.String() != comparandString(comparand)
	case OpContains:
		return strings.Contains(strings.ToLower(value.String()), strings.ToLower(comparandString(comparand)))
	default:
		return false
	}
}

func comparandString(v sales.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.String()
}
