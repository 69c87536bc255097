/*
 * @module service/quality/thematic
 * @description Thematic-accuracy rule group: categorical whitelist membership
 *              with fuzzy nearest-match suggestions, and URL well-formedness
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Categorical attributes -> whitelist lookup -> fuzzy suggestion
 * @rules A field the whitelist configuration does not cover is silently
 *        skipped; a best match clearing 0.6 similarity becomes the suggestion,
 *        otherwise the full whitelist is suggested
 * @dependencies net/url, geoquality-service/service/models
 * @refs service/quality/similarity.go, service/quality/whitelists.go
 */

package quality

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"geoquality-service/service/models"
)

func (v *Validator) checkThematicAccuracy(col *collector, rec models.Record) {
	ruleIDs := make([]string, 0, len(v.opts.ThematicFields))
	for id := range v.opts.ThematicFields {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	for _, ruleID := range ruleIDs {
		field := v.opts.ThematicFields[ruleID]
		value := asString(rec[field])
		if value == "" {
			continue
		}

		allowed, covered := v.whitelists.Allowed(field, value)
		if !covered || allowed {
			continue
		}

		col.add(ruleID, field, value, "whitelisted value",
			fmt.Sprintf("value %q is not in the whitelist for %s", value, field),
			v.suggestFor(field, value))
	}

	// TA009: URL well-formedness
	for _, field := range v.opts.URLFields {
		value := asString(rec[field])
		if value == "" {
			continue
		}
		if !isWellFormedURL(value) {
			col.add("TA009", field, value, "absolute http(s) URL",
				fmt.Sprintf("value in %s is not a well-formed absolute URL", field), "")
		}
	}
}

// suggestFor computes the "did you mean" suggestion for a value that
// missed the whitelist.
func (v *Validator) suggestFor(field, value string) string {
	candidates := v.whitelists.Values(field)
	best, score := BestMatch(v.sim, value, candidates)
	if best != "" && score >= SuggestionThreshold {
		return fmt.Sprintf("did you mean %q?", best)
	}
	return fmt.Sprintf("allowed values: %s", strings.Join(candidates, ", "))
}

func isWellFormedURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
