/*
 * @module service/geospatial/geometry
 * @description Geometry predicates for the validation engine: representative
 *              points, degenerate-coordinate detection and ring validity
 *              (closure and self-intersection) over orb geometries
 * @architecture Layered architecture - geospatial support layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Geometry input -> predicate evaluation -> error description
 * @rules orb ships geometry types without validity predicates, so the ring
 *        checks are implemented here on top of its types
 * @dependencies github.com/paulmach/orb, github.com/paulmach/orb/planar
 * @refs service/quality/consistency.go, service/quality/positional.go
 */

package geospatial

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RepresentativePoint reduces any geometry to a single point: the point
// itself, or the planar centroid for lines and polygons.
func RepresentativePoint(geom orb.Geometry) orb.Point {
	if p, ok := geom.(orb.Point); ok {
		return p
	}
	center, _ := planar.CentroidArea(geom)
	return center
}

// IsDegenerate reports whether a point is (0,0) or outside the valid
// lat/lon domain.
func IsDegenerate(p orb.Point) bool {
	if p.Lon() == 0 && p.Lat() == 0 {
		return true
	}
	return p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90
}

// CheckGeometry verifies structural validity: polygon rings must be
// closed, hold at least four positions and not self-intersect. A nil
// error means the geometry is usable for containment tests.
func CheckGeometry(geom orb.Geometry) error {
	switch g := geom.(type) {
	case orb.Point, orb.MultiPoint:
		return nil
	case orb.LineString:
		if len(g) < 2 {
			return fmt.Errorf("line string holds %d positions, need at least 2", len(g))
		}
		return nil
	case orb.MultiLineString:
		for i, ls := range g {
			if len(ls) < 2 {
				return fmt.Errorf("line string %d holds %d positions, need at least 2", i, len(ls))
			}
		}
		return nil
	case orb.Polygon:
		return checkPolygon(g)
	case orb.MultiPolygon:
		for i, poly := range g {
			if err := checkPolygon(poly); err != nil {
				return fmt.Errorf("polygon %d: %w", i, err)
			}
		}
		return nil
	case orb.Collection:
		for i, member := range g {
			if err := CheckGeometry(member); err != nil {
				return fmt.Errorf("collection member %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported geometry type %s", geom.GeoJSONType())
	}
}

func checkPolygon(poly orb.Polygon) error {
	for i, ring := range poly {
		if len(ring) < 4 {
			return fmt.Errorf("ring %d holds %d positions, need at least 4", i, len(ring))
		}
		if !ring.Closed() {
			return fmt.Errorf("ring %d is not closed", i)
		}
		if ringSelfIntersects(ring) {
			return fmt.Errorf("ring %d self-intersects", i)
		}
	}
	return nil
}

// ringSelfIntersects scans every non-adjacent segment pair of a closed
// ring for a proper crossing.
func ringSelfIntersects(ring orb.Ring) bool {
	n := len(ring) - 1 // last position repeats the first
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Adjacent segments share an endpoint by construction,
			// including the closing segment against the first.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsCross(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
