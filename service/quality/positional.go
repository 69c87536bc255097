/*
 * @module service/quality/positional
 * @description Positional-accuracy rule group: bounding box, CRS consistency,
 *              degenerate coordinates and administrative containment
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Geometry + declared location attributes -> PA rule checks -> issues
 * @rules Absence of the boundary provider disables PA004/PA005 only; every
 *        other positional rule stays active
 * @dependencies geoquality-service/service/geospatial, github.com/paulmach/orb
 * @refs service/quality/validator.go, service/geospatial/boundaries.go
 */

package quality

import (
	"fmt"

	"github.com/paulmach/orb"

	"geoquality-service/service/geospatial"
	"geoquality-service/service/models"
)

func (v *Validator) checkPositionalAccuracy(col *collector, rec models.Record, geom orb.Geometry) {
	// PA002 inspects attributes only and applies with or without geometry.
	if crs := asString(rec[v.opts.CRSField]); crs != "" && !equalsFold(crs, v.opts.ExpectedCRS) {
		col.add("PA002", v.opts.CRSField, crs, v.opts.ExpectedCRS,
			fmt.Sprintf("declared CRS %q differs from the expected %q", crs, v.opts.ExpectedCRS), "")
	}

	if geom == nil {
		return
	}

	point := geospatial.RepresentativePoint(geom)

	// PA003: degenerate coordinates
	if geospatial.IsDegenerate(point) {
		col.add("PA003", "geometry", fmt.Sprintf("(%.6f, %.6f)", point.Lon(), point.Lat()),
			"coordinates inside the valid lat/lon domain",
			"coordinates are (0,0) or outside the valid lat/lon domain", "")
		// Containment against (0,0) would only produce noise.
		return
	}

	// PA001: municipal bounding box
	if !v.opts.CityBound.Contains(point) {
		col.add("PA001", "geometry", fmt.Sprintf("(%.6f, %.6f)", point.Lon(), point.Lat()),
			"coordinates inside the municipal bounding box",
			"geometry falls outside the configured municipal bounding box",
			"verify the coordinate order (lon, lat) and the source datum")
	}

	if v.boundaries == nil {
		return
	}

	// PA004: declared comuna containment
	if comuna := asString(rec[v.opts.ComunaField]); comuna != "" {
		if contained, found := v.boundaries.ComunaContains(comuna, point); found && !contained {
			col.add("PA004", v.opts.ComunaField, comuna,
				fmt.Sprintf("point inside %q", comuna),
				fmt.Sprintf("point does not fall inside declared comuna %q", comuna),
				"re-geocode the record or correct the declared comuna")
		}
	}

	// PA005: declared barrio containment
	if barrio := asString(rec[v.opts.BarrioField]); barrio != "" {
		if contained, found := v.boundaries.BarrioContains(barrio, point); found && !contained {
			col.add("PA005", v.opts.BarrioField, barrio,
				fmt.Sprintf("point inside %q", barrio),
				fmt.Sprintf("point does not fall inside declared barrio %q", barrio),
				"re-geocode the record or correct the declared barrio")
		}
	}
}

func equalsFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
