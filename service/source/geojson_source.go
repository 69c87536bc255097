/*
 * @module service/source/geojson_source
 * @description Record source reading a GeoJSON FeatureCollection from disk and
 *              yielding attribute maps plus decoded geometries for validation
 * @architecture Layered architecture - data access layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow File -> geojson.FeatureCollection -> []quality.SourceRecord
 * @rules A feature with broken geometry still yields its attributes; it is the
 *        validator's job to flag it, not the source's job to drop it
 * @dependencies github.com/paulmach/orb/geojson
 * @refs service/quality/batch.go
 */

package source

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"geoquality-service/service/models"
	"geoquality-service/service/quality"
)

// GeoJSONSource reads municipal project records from a GeoJSON file.
type GeoJSONSource struct {
	path string
}

// NewGeoJSONSource creates a source over one FeatureCollection file.
func NewGeoJSONSource(path string) *GeoJSONSource {
	return &GeoJSONSource{path: path}
}

// Name identifies the source in logs and run metadata.
func (s *GeoJSONSource) Name() string {
	return fmt.Sprintf("geojson:%s", s.path)
}

// Load reads and decodes the whole collection. Feature properties map
// directly onto validation records; geometry decode failures degrade
// the individual record instead of failing the load.
func (s *GeoJSONSource) Load() ([]quality.SourceRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read geojson source %s: %w", s.path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson source %s: %w", s.path, err)
	}

	records := make([]quality.SourceRecord, 0, len(fc.Features))
	for _, feature := range fc.Features {
		if feature == nil {
			continue
		}
		// A null geometry is valid input: the record gets attribute-only
		// validation and the completeness rules flag the gap.
		records = append(records, quality.SourceRecord{
			Attributes: featureRecord(feature),
			Geometry:   feature.Geometry,
		})
	}
	return records, nil
}

func featureRecord(feature *geojson.Feature) models.Record {
	rec := make(models.Record, len(feature.Properties)+1)
	for k, v := range feature.Properties {
		rec[k] = v
	}
	if _, ok := rec["identificador"]; !ok && feature.ID != nil {
		rec["identificador"] = feature.ID
	}
	return rec
}
