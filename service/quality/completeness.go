/*
 * @module service/quality/completeness
 * @description Completeness rule group: required fields, identifier presence,
 *              geometry-expected-given-address and status-conditioned fields
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Record attributes -> CP rule checks -> issues
 * @dependencies geoquality-service/service/models, github.com/paulmach/orb
 * @refs service/quality/validator.go
 */

package quality

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"geoquality-service/service/models"
)

func (v *Validator) checkCompleteness(col *collector, rec models.Record, geom orb.Geometry) {
	// CP001: required attributes
	var missing []string
	for _, field := range v.opts.RequiredFields {
		if isBlank(rec[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		col.add("CP001", missing[0], nil, "non-empty value",
			fmt.Sprintf("required fields absent or blank: %s", strings.Join(missing, ", ")), "")
	}

	// CP003: at least one identifier
	if col.key == "" {
		col.add("CP003", strings.Join(v.opts.IdentifierFields, "|"), nil, "at least one identifier",
			"none of the identifier fields is populated", "")
	}

	// CP002: a record with an address should carry a geometry
	address := asString(rec[v.opts.AddressField])
	if address != "" && geom == nil {
		col.add("CP002", v.opts.AddressField, address, "geometry present",
			"record declares an address but carries no geometry",
			"geocode the address or attach the surveyed coordinates")
	}

	// CP006: address presence
	if address == "" {
		col.add("CP006", v.opts.AddressField, nil, "non-empty address",
			"record has no address attribute", "")
	}

	status := asString(rec[v.opts.StatusField])
	if status == "" {
		return
	}

	// CP004: paired dates conditioned on status
	startBlank := isBlank(rec[v.opts.StartDateField])
	endBlank := isBlank(rec[v.opts.EndDateField])
	if statusIn(status, v.opts.TerminalStatuses) && (startBlank || endBlank) {
		col.add("CP004", v.opts.EndDateField, nil, "both dates present",
			fmt.Sprintf("status %q implies both %s and %s", status, v.opts.StartDateField, v.opts.EndDateField), "")
	} else if !statusIn(status, v.opts.StartStatuses) && startBlank {
		col.add("CP004", v.opts.StartDateField, nil, "start date present",
			fmt.Sprintf("status %q implies work has started but %s is absent", status, v.opts.StartDateField), "")
	}

	// CP005: contracting reference conditioned on status
	if !statusIn(status, v.opts.StartStatuses) && !statusIn(status, v.opts.PausedStatuses) {
		hasRef := false
		for _, field := range v.opts.ContractRefFields {
			if !isBlank(rec[field]) {
				hasRef = true
				break
			}
		}
		if !hasRef {
			col.add("CP005", strings.Join(v.opts.ContractRefFields, "|"), nil, "contracting reference present",
				fmt.Sprintf("status %q implies an awarded contract but no contracting reference is present", status), "")
		}
	}
}
