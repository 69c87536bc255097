/*
 * @module service/geospatial/boundaries
 * @description Administrative boundary layers (comuna and barrio) loaded from
 *              GeoJSON, with accent-insensitive name lookup and point-in-polygon
 *              membership tests
 * @architecture Layered architecture - geospatial support layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Layer load at startup -> read-only containment tests per record
 * @rules A missing layer disables only the containment rules that depend on
 *        it; every lookup is safe for concurrent readers
 * @dependencies github.com/paulmach/orb/geojson, github.com/paulmach/orb/planar, golang.org/x/text
 * @refs service/quality/positional.go
 */

package geospatial

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Layer is one administrative subdivision layer: named polygons keyed
// by their folded name.
type Layer struct {
	name     string
	polygons map[string]orb.Geometry
}

// LoadLayer reads a GeoJSON feature collection whose features carry the
// subdivision name under nameProperty.
func LoadLayer(name, path, nameProperty string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary layer %s: %w", name, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundary layer %s: %w", name, err)
	}

	layer := &Layer{name: name, polygons: make(map[string]orb.Geometry, len(fc.Features))}
	for _, feature := range fc.Features {
		unitName := feature.Properties.MustString(nameProperty, "")
		if unitName == "" {
			continue
		}
		switch feature.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			layer.polygons[foldName(unitName)] = feature.Geometry
		}
	}

	if len(layer.polygons) == 0 {
		return nil, fmt.Errorf("boundary layer %s holds no named polygons", name)
	}
	return layer, nil
}

// NewLayer builds a layer from named geometries directly.
func NewLayer(name string, polygons map[string]orb.Geometry) *Layer {
	folded := make(map[string]orb.Geometry, len(polygons))
	for unitName, geom := range polygons {
		folded[foldName(unitName)] = geom
	}
	return &Layer{name: name, polygons: folded}
}

// Contains tests point membership for one named unit. found is false
// when the layer does not know the unit.
func (l *Layer) Contains(unitName string, point orb.Point) (contained bool, found bool) {
	geom, ok := l.polygons[foldName(unitName)]
	if !ok {
		return false, false
	}

	switch g := geom.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, point), true
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, point), true
	default:
		return false, false
	}
}

// Size returns the number of named units in the layer.
func (l *Layer) Size() int {
	return len(l.polygons)
}

// BoundaryIndex bundles the two administrative layers the containment
// rules test against. Either layer may be nil.
type BoundaryIndex struct {
	comunas *Layer
	barrios *Layer
}

// NewBoundaryIndex builds the index from pre-loaded layers.
func NewBoundaryIndex(comunas, barrios *Layer) *BoundaryIndex {
	return &BoundaryIndex{comunas: comunas, barrios: barrios}
}

// LoadBoundaryIndex loads both layers from GeoJSON files. An empty path
// leaves that layer disabled.
func LoadBoundaryIndex(comunaPath, barrioPath, nameProperty string) (*BoundaryIndex, error) {
	index := &BoundaryIndex{}

	if comunaPath != "" {
		layer, err := LoadLayer("comunas", comunaPath, nameProperty)
		if err != nil {
			return nil, err
		}
		index.comunas = layer
	}
	if barrioPath != "" {
		layer, err := LoadLayer("barrios", barrioPath, nameProperty)
		if err != nil {
			return nil, err
		}
		index.barrios = layer
	}
	return index, nil
}

// ComunaContains tests membership against the coarse layer.
func (b *BoundaryIndex) ComunaContains(name string, point orb.Point) (bool, bool) {
	if b.comunas == nil {
		return false, false
	}
	return b.comunas.Contains(name, point)
}

// BarrioContains tests membership against the fine layer.
func (b *BoundaryIndex) BarrioContains(name string, point orb.Point) (bool, bool) {
	if b.barrios == nil {
		return false, false
	}
	return b.barrios.Contains(name, point)
}

var nameFoldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName normalizes a subdivision name for lookup: lowercase, no
// diacritics, collapsed whitespace.
func foldName(s string) string {
	folded, _, err := transform.String(nameFoldChain, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
