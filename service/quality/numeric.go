/*
 * @module service/quality/numeric
 * @description Permissive numeric coercion for attribute values. Accepts
 *              values that are already numeric, numeric strings and decimal
 *              strings with a trailing ".0".
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Raw attribute value -> coercion -> float64 or coercion failure
 * @rules A coercion failure is surfaced as a dedicated "not numeric" issue by
 *        the caller, never treated as out-of-range
 * @dependencies github.com/spf13/cast
 * @refs service/quality/consistency.go
 */

package quality

import (
	"strings"

	"github.com/spf13/cast"
)

// toFloat coerces an attribute value to float64. The second return is
// false when the value is present but not numeric.
func toFloat(value interface{}) (float64, bool) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, false
	}
	return f, true
}

// isBlank reports whether an attribute value is absent for validation
// purposes: nil, an empty string, or whitespace only.
func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// asString renders an attribute value for comparisons and messages.
func asString(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(value))
}
