/*
 * @module service/quality/consistency
 * @description Logical-consistency rule group: status/progress congruence with
 *              explicit status carve-outs, numeric range and type checks,
 *              geometry self-validity and year plausibility
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Record attributes -> LC rule checks -> issues
 * @rules The LC001 carve-outs are an explicit exempt-status set checked before
 *        the generic congruence rule, never a fallthrough default
 * @dependencies geoquality-service/service/geospatial, github.com/paulmach/orb
 * @refs service/quality/validator.go
 */

package quality

import (
	"fmt"

	"github.com/paulmach/orb"

	"geoquality-service/service/geospatial"
	"geoquality-service/service/models"
)

func (v *Validator) checkLogicalConsistency(col *collector, rec models.Record, geom orb.Geometry) {
	v.checkNumericFields(col, rec)
	v.checkStatusProgress(col, rec)

	// LC004: negative monetary values
	for _, field := range v.opts.MonetaryFields {
		if isBlank(rec[field]) {
			continue
		}
		if amount, ok := toFloat(rec[field]); ok && amount < 0 {
			col.add("LC004", field, rec[field], ">= 0",
				fmt.Sprintf("monetary field %s holds a negative amount", field), "")
		}
	}

	// LC005: non-positive quantities
	for _, field := range v.opts.QuantityFields {
		if isBlank(rec[field]) {
			continue
		}
		if qty, ok := toFloat(rec[field]); ok && qty <= 0 {
			col.add("LC005", field, rec[field], "> 0",
				fmt.Sprintf("quantity field %s must be positive", field), "")
		}
	}

	// LC007: fiscal year plausibility
	for _, field := range v.opts.YearFields {
		if isBlank(rec[field]) {
			continue
		}
		if year, ok := toFloat(rec[field]); ok {
			if int(year) < v.opts.YearMin || int(year) > v.opts.YearMax {
				col.add("LC007", field, rec[field],
					fmt.Sprintf("[%d, %d]", v.opts.YearMin, v.opts.YearMax),
					fmt.Sprintf("year %d is outside the plausible window", int(year)), "")
			}
		}
	}

	// LC006: geometry self-validity
	if geom != nil {
		if err := geospatial.CheckGeometry(geom); err != nil {
			col.add("LC006", "geometry", geom.GeoJSONType(), "valid geometry", err.Error(), "")
		}
	}
}

// checkNumericFields coerces every numeric-expected field and raises
// LC003 on the first coercion failure. Range rules for those fields are
// skipped when coercion fails so garbage data is never double-counted
// as out-of-range.
func (v *Validator) checkNumericFields(col *collector, rec models.Record) {
	fields := []string{v.opts.ProgressField}
	fields = append(fields, v.opts.MonetaryFields...)
	fields = append(fields, v.opts.QuantityFields...)
	fields = append(fields, v.opts.YearFields...)

	for _, field := range fields {
		if isBlank(rec[field]) {
			continue
		}
		if _, ok := toFloat(rec[field]); !ok {
			col.add("LC003", field, rec[field], "numeric value",
				fmt.Sprintf("field %s could not be coerced to a number", field), "")
		}
	}
}

// checkStatusProgress implements LC001 and LC002. The paused and
// inaugurated statuses are exempt from the generic congruence rule:
// paused accepts any progress, inaugurated requires exactly 100.
func (v *Validator) checkStatusProgress(col *collector, rec models.Record) {
	status := asString(rec[v.opts.StatusField])
	raw := rec[v.opts.ProgressField]
	if isBlank(raw) {
		return
	}

	progress, ok := toFloat(raw)
	if !ok {
		// LC003 already raised; congruence is unverifiable.
		return
	}

	// LC002 fires independently of any LC001 carve-out.
	if progress < 0 || progress > 100 {
		col.add("LC002", v.opts.ProgressField, raw, "[0, 100]",
			fmt.Sprintf("progress %.1f%% is outside [0, 100]", progress), "")
	}

	if status == "" {
		return
	}

	// Explicit carve-outs, checked before the generic rule.
	if statusIn(status, v.opts.PausedStatuses) {
		return
	}
	if statusIn(status, v.opts.InauguratedStatuses) {
		if progress != 100 {
			col.add("LC001", v.opts.ProgressField, raw, "100",
				fmt.Sprintf("status %q requires exactly 100%% progress, found %.1f%%", status, progress),
				fmt.Sprintf("set %s to 100", v.opts.ProgressField))
		}
		return
	}

	terminal := statusIn(status, v.opts.TerminalStatuses)
	switch {
	case terminal && progress != 100:
		col.add("LC001", v.opts.ProgressField, raw, "100",
			fmt.Sprintf("status %q implies finished work but progress is %.1f%%", status, progress),
			fmt.Sprintf("set %s to 100 or change %s to \"En ejecución\"", v.opts.ProgressField, v.opts.StatusField))
	case !terminal && progress == 100:
		col.add("LC001", v.opts.StatusField, status, "terminal status",
			"progress is 100% but the status does not mark the work as finished",
			fmt.Sprintf("change %s to \"Terminado\"", v.opts.StatusField))
	case !terminal && progress == 0 && !statusIn(status, v.opts.StartStatuses):
		col.add("LC001", v.opts.ProgressField, raw, "> 0",
			fmt.Sprintf("status %q implies work in progress but progress is 0%%", status),
			fmt.Sprintf("review %s or change %s to a planning status", v.opts.ProgressField, v.opts.StatusField))
	}
}
