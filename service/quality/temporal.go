/*
 * @module service/quality/temporal
 * @description Temporal-quality rule group: date parseability across multiple
 *              accepted layouts, ordering, plausibility window, terminal-status
 *              end dates and overall duration
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Date attributes -> parse -> TQ rule checks -> issues
 * @rules An unparsable date raises TQ002 and suppresses the range rules for
 *        that field, so garbage dates are never also scored as out-of-window
 * @dependencies time, geoquality-service/service/models
 * @refs service/quality/validator.go
 */

package quality

import (
	"fmt"
	"time"

	"geoquality-service/service/models"
)

// acceptedDateLayouts are the formats the municipal sources emit.
var acceptedDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
	time.RFC3339,
}

// ParseDate parses a date attribute against every accepted layout.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (v *Validator) checkTemporalQuality(col *collector, rec models.Record) {
	start, startOK := v.checkDateField(col, rec, v.opts.StartDateField)
	end, endOK := v.checkDateField(col, rec, v.opts.EndDateField)

	// TQ001: ordering
	if startOK && endOK && start.After(end) {
		col.add("TQ001", v.opts.StartDateField, asString(rec[v.opts.StartDateField]),
			fmt.Sprintf("on or before %s", end.Format("2006-01-02")),
			"start date is later than the end date", "")
	}

	// TQ005: overall duration
	if startOK && endOK && !start.After(end) {
		days := int(end.Sub(start).Hours() / 24)
		if days > v.opts.MaxDurationDays {
			col.add("TQ005", v.opts.EndDateField, asString(rec[v.opts.EndDateField]),
				fmt.Sprintf("duration <= %d days", v.opts.MaxDurationDays),
				fmt.Sprintf("project spans %d days, beyond the plausible bound", days), "")
		}
	}

	// TQ004: terminal status with an end date in the future
	status := asString(rec[v.opts.StatusField])
	if endOK && status != "" && statusIn(status, v.opts.TerminalStatuses) && end.After(time.Now()) {
		col.add("TQ004", v.opts.EndDateField, asString(rec[v.opts.EndDateField]),
			"end date in the past",
			fmt.Sprintf("status %q is terminal but the end date lies in the future", status), "")
	}
}

// checkDateField parses one date attribute, raising TQ002 for garbage
// and TQ003 for dates outside the plausibility window.
func (v *Validator) checkDateField(col *collector, rec models.Record, field string) (time.Time, bool) {
	raw := rec[field]
	if isBlank(raw) {
		return time.Time{}, false
	}

	value := asString(raw)
	parsed, ok := ParseDate(value)
	if !ok {
		col.add("TQ002", field, raw, "parseable date",
			fmt.Sprintf("value in %s does not match any accepted date format", field), "")
		return time.Time{}, false
	}

	if parsed.Before(v.opts.DateMin) || parsed.After(v.opts.DateMax) {
		col.add("TQ003", field, raw,
			fmt.Sprintf("[%s, %s]", v.opts.DateMin.Format("2006-01-02"), v.opts.DateMax.Format("2006-01-02")),
			fmt.Sprintf("date in %s falls outside the plausible window", field), "")
	}
	return parsed, true
}
