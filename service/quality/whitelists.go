/*
 * @module service/quality/whitelists
 * @description Category whitelist configuration for the thematic-accuracy
 *              rules: a field -> allowed-values mapping loaded once at startup
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Load at construction -> read-only during validation
 * @rules A missing or unreadable source degrades thematic coverage to no-ops,
 *        it never aborts the validator
 * @dependencies encoding/json, os
 * @refs service/quality/thematic.go
 */

package quality

import (
	"encoding/json"
	"fmt"
	"os"
)

// Whitelists maps a categorical field name to its allowed values.
// A field with no entry (or an empty list) is not checked.
type Whitelists map[string][]string

// Allowed reports whether value is in the whitelist for field, and
// whether the field is covered by the configuration at all.
func (w Whitelists) Allowed(field, value string) (allowed bool, covered bool) {
	values, ok := w[field]
	if !ok || len(values) == 0 {
		return false, false
	}
	for _, v := range values {
		if v == value {
			return true, true
		}
	}
	return false, true
}

// Values returns the configured values for a field.
func (w Whitelists) Values(field string) []string {
	return w[field]
}

// LoadWhitelists reads a field -> allowed-values JSON mapping from disk.
// Callers are expected to log the error and continue with empty
// whitelists; thematic checks then degrade to no-ops for every field.
func LoadWhitelists(path string) (Whitelists, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Whitelists{}, fmt.Errorf("read whitelist source: %w", err)
	}

	var lists Whitelists
	if err := json.Unmarshal(data, &lists); err != nil {
		return Whitelists{}, fmt.Errorf("parse whitelist source: %w", err)
	}
	return lists, nil
}
