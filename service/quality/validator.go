/*
 * @module service/quality/validator
 * @description Record validator: applies every applicable catalog rule to one
 *              record plus optional geometry and returns the detected issues
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Record input -> per-dimension rule groups -> issue list
 * @rules Pure function of its inputs; inapplicable rules are silently skipped,
 *        never scored; malformed input surfaces as issues, never as errors
 * @dependencies geoquality-service/service/models, github.com/paulmach/orb
 * @refs service/quality/catalog.go, service/quality/batch.go
 */

package quality

import (
	"time"

	"github.com/paulmach/orb"

	"geoquality-service/service/models"
)

// UnassignedGroup is the sentinel substituted when a record carries no
// grouping-key value.
const UnassignedGroup = "Sin Asignar"

// BoundaryProvider is the administrative boundary collaborator used by
// the two containment rules. A nil provider disables PA004 and PA005;
// found=false skips the rule for that record only.
type BoundaryProvider interface {
	ComunaContains(name string, point orb.Point) (contained bool, found bool)
	BarrioContains(name string, point orb.Point) (contained bool, found bool)
}

// Options configures the field layout and thresholds of the validator.
type Options struct {
	StatusField       string
	ProgressField     string
	AddressField      string
	ComunaField       string
	BarrioField       string
	CRSField          string
	GroupingKey       string
	RequiredFields    []string
	IdentifierFields  []string
	MonetaryFields    []string
	QuantityFields    []string
	YearFields        []string
	ContractRefFields []string
	URLFields         []string
	StartDateField    string
	EndDateField      string

	// Whitelisted thematic fields checked by TA001..TA008, in rule order.
	ThematicFields map[string]string

	TerminalStatuses    []string
	StartStatuses       []string
	PausedStatuses      []string
	InauguratedStatuses []string

	ExpectedCRS     string
	CityBound       orb.Bound
	YearMin         int
	YearMax         int
	DateMin         time.Time
	DateMax         time.Time
	MaxDurationDays int
}

// DefaultOptions returns the field layout of the municipal projects
// dataset and the Cali bounding box.
func DefaultOptions() Options {
	return Options{
		StatusField:       "estado",
		ProgressField:     "avance_obra",
		AddressField:      "direccion",
		ComunaField:       "comuna",
		BarrioField:       "barrio",
		CRSField:          "crs",
		GroupingKey:       "organismo",
		RequiredFields:    []string{"nombre", "estado", "organismo"},
		IdentifierFields:  []string{"bpin", "identificador", "id_proyecto"},
		MonetaryFields:    []string{"presupuesto", "valor_contrato", "costo_total"},
		QuantityFields:    []string{"cantidad"},
		YearFields:        []string{"vigencia", "anio"},
		ContractRefFields: []string{"referencia_contrato", "codigo_proceso"},
		URLFields:         []string{"url", "enlace_secop"},
		StartDateField:    "fecha_inicio",
		EndDateField:      "fecha_fin",
		ThematicFields: map[string]string{
			"TA001": "estado",
			"TA002": "tipo_intervencion",
			"TA003": "plataforma_contratacion",
			"TA004": "unidad_medida",
			"TA005": "clase_obra",
			"TA006": "tipo_equipamiento",
			"TA007": "fuente_financiacion",
			"TA008": "organismo",
		},
		TerminalStatuses:    []string{"Terminado", "Entregado"},
		StartStatuses:       []string{"En planeación", "Por iniciar", "En estructuración"},
		PausedStatuses:      []string{"Suspendido"},
		InauguratedStatuses: []string{"Inaugurada"},
		ExpectedCRS:         "EPSG:4326",
		CityBound: orb.Bound{
			Min: orb.Point{-76.94, 3.05},
			Max: orb.Point{-76.46, 3.56},
		},
		YearMin:         2000,
		YearMax:         time.Now().Year() + 10,
		DateMin:         time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		DateMax:         time.Now().AddDate(10, 0, 0),
		MaxDurationDays: 3650,
	}
}

// Validator applies the rule catalog to individual records.
type Validator struct {
	catalog    *Catalog
	whitelists Whitelists
	boundaries BoundaryProvider
	sim        Similarity
	opts       Options
}

// NewValidator creates a record validator. whitelists may be empty
// (thematic checks degrade to no-ops), boundaries may be nil (the two
// containment rules are disabled), opts may be nil for defaults.
func NewValidator(whitelists Whitelists, boundaries BoundaryProvider, opts *Options) *Validator {
	if whitelists == nil {
		whitelists = Whitelists{}
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	return &Validator{
		catalog:    NewCatalog(),
		whitelists: whitelists,
		boundaries: boundaries,
		sim:        CharOverlap{},
		opts:       o,
	}
}

// SetSimilarity swaps the string-distance strategy used for thematic
// suggestions.
func (v *Validator) SetSimilarity(sim Similarity) {
	if sim != nil {
		v.sim = sim
	}
}

// Catalog exposes the validator's rule catalog.
func (v *Validator) Catalog() *Catalog {
	return v.catalog
}

// Options exposes the effective configuration.
func (v *Validator) Options() Options {
	return v.opts
}

// Validate applies every applicable rule to one record and optional
// geometry. Pure: it never mutates the record and has no side effects.
func (v *Validator) Validate(rec models.Record, geom orb.Geometry) []models.QualityIssue {
	col := v.newCollector(rec)

	v.checkLogicalConsistency(col, rec, geom)
	v.checkCompleteness(col, rec, geom)
	v.checkPositionalAccuracy(col, rec, geom)
	v.checkThematicAccuracy(col, rec)
	v.checkTemporalQuality(col, rec)

	return col.issues
}

// RecordKey extracts the first populated identifier attribute.
func (v *Validator) RecordKey(rec models.Record) string {
	for _, field := range v.opts.IdentifierFields {
		if val := asString(rec[field]); val != "" {
			return val
		}
	}
	return ""
}

// RecordGroup extracts the grouping-key value, substituting the
// documented sentinel when absent.
func (v *Validator) RecordGroup(rec models.Record) string {
	if val := asString(rec[v.opts.GroupingKey]); val != "" {
		return val
	}
	return UnassignedGroup
}

// collector accumulates issues for one record and enforces the at most
// one issue per (record, rule) invariant.
type collector struct {
	validator *Validator
	key       string
	name      string
	group     string
	seen      map[string]bool
	issues    []models.QualityIssue
}

func (v *Validator) newCollector(rec models.Record) *collector {
	return &collector{
		validator: v,
		key:       v.RecordKey(rec),
		name:      asString(rec["nombre"]),
		group:     v.RecordGroup(rec),
		seen:      make(map[string]bool),
	}
}

// add records one issue for ruleID unless that rule already fired for
// this record.
func (c *collector) add(ruleID, field string, current interface{}, expected, details, suggestion string) {
	if c.seen[ruleID] {
		return
	}
	c.seen[ruleID] = true

	c.issues = append(c.issues, models.QualityIssue{
		Rule:          c.validator.catalog.MustRule(ruleID),
		FieldName:     field,
		CurrentValue:  current,
		ExpectedValue: expected,
		Details:       details,
		Suggestion:    suggestion,
		DetectedAt:    time.Now().UTC(),
		RecordKey:     c.key,
		RecordName:    c.name,
		Group:         c.group,
	})
}

// statusIn matches a status against a configured set, accent- and
// case-insensitively.
func statusIn(status string, set []string) bool {
	folded := Fold(status)
	for _, s := range set {
		if Fold(s) == folded {
			return true
		}
	}
	return false
}
