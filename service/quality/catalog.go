/*
 * @module service/quality/catalog
 * @description Static catalog of validation rules organized by quality
 *              dimension. Read-only configuration created once per validator.
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Catalog construction -> rule lookup during validation
 * @rules Rule IDs are stable keys and must never be reused for a different
 *        definition; stored issues depend on them for backward compatibility
 * @dependencies geoquality-service/service/models
 * @refs service/quality/validator.go
 */

package quality

import (
	"fmt"

	"geoquality-service/service/models"
)

// Catalog holds the fixed set of validation rules.
type Catalog struct {
	rules []models.ValidationRule
	byID  map[string]models.ValidationRule
}

// NewCatalog builds the built-in rule catalog.
func NewCatalog() *Catalog {
	rules := []models.ValidationRule{
		// Logical consistency
		{ID: "LC001", Name: "Status/progress mismatch", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityCritical,
			Description: "Project status and physical progress percentage are incongruent", ChecksAttributes: true},
		{ID: "LC002", Name: "Progress out of range", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityHigh,
			Description: "Progress percentage falls outside [0, 100]", ChecksAttributes: true},
		{ID: "LC003", Name: "Non-numeric value", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityHigh,
			Description: "A field expected to be numeric could not be coerced to a number", ChecksAttributes: true},
		{ID: "LC004", Name: "Negative monetary value", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityHigh,
			Description: "A budget or cost field holds a negative amount", ChecksAttributes: true},
		{ID: "LC005", Name: "Non-positive quantity", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityMedium,
			Description: "A quantity field holds zero or a negative amount", ChecksAttributes: true},
		{ID: "LC006", Name: "Invalid geometry", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityHigh,
			Description: "Geometry is self-intersecting or has unclosed rings", ChecksGeometry: true},
		{ID: "LC007", Name: "Year out of range", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityMedium,
			Description: "A fiscal-year field falls outside the plausible window", ChecksAttributes: true},
		{ID: "LC008", Name: "Duplicated record", Dimension: models.DimensionLogicalConsistency, Severity: models.SeverityHigh,
			Description: "Record shares identical non-volatile content with another record", ChecksAttributes: true, ChecksGeometry: true},

		// Completeness
		{ID: "CP001", Name: "Required field missing", Dimension: models.DimensionCompleteness, Severity: models.SeverityHigh,
			Description: "A required attribute is absent or blank", ChecksAttributes: true},
		{ID: "CP002", Name: "Geometry expected", Dimension: models.DimensionCompleteness, Severity: models.SeverityMedium,
			Description: "Record declares an address but carries no geometry", ChecksAttributes: true},
		{ID: "CP003", Name: "No identifier present", Dimension: models.DimensionCompleteness, Severity: models.SeverityCritical,
			Description: "None of the identifier fields is populated", ChecksAttributes: true},
		{ID: "CP004", Name: "Paired date missing", Dimension: models.DimensionCompleteness, Severity: models.SeverityMedium,
			Description: "Status implies both start and end dates but one is absent", ChecksAttributes: true},
		{ID: "CP005", Name: "Contracting reference missing", Dimension: models.DimensionCompleteness, Severity: models.SeverityMedium,
			Description: "Status implies an awarded contract but no contracting reference is present", ChecksAttributes: true},
		{ID: "CP006", Name: "Address missing", Dimension: models.DimensionCompleteness, Severity: models.SeverityLow,
			Description: "Record has no address attribute", ChecksAttributes: true},

		// Positional accuracy
		{ID: "PA001", Name: "Coordinates outside bounding box", Dimension: models.DimensionPositionalAccuracy, Severity: models.SeverityCritical,
			Description: "Geometry falls outside the configured municipal bounding box", ChecksGeometry: true},
		{ID: "PA002", Name: "Inconsistent coordinate reference system", Dimension: models.DimensionPositionalAccuracy, Severity: models.SeverityHigh,
			Description: "Declared CRS differs from the expected geographic system", ChecksAttributes: true},
		{ID: "PA003", Name: "Degenerate coordinates", Dimension: models.DimensionPositionalAccuracy, Severity: models.SeverityCritical,
			Description: "Coordinates are (0,0) or outside the valid lat/lon domain", ChecksGeometry: true},
		{ID: "PA004", Name: "Point outside declared comuna", Dimension: models.DimensionPositionalAccuracy, Severity: models.SeverityHigh,
			Description: "Point does not fall inside the administrative unit the record declares", ChecksGeometry: true, ChecksAttributes: true},
		{ID: "PA005", Name: "Point outside declared barrio", Dimension: models.DimensionPositionalAccuracy, Severity: models.SeverityMedium,
			Description: "Point does not fall inside the neighborhood the record declares", ChecksGeometry: true, ChecksAttributes: true},

		// Thematic accuracy
		{ID: "TA001", Name: "Unknown status value", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Status value is not in the configured whitelist", ChecksAttributes: true},
		{ID: "TA002", Name: "Unknown intervention type", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Intervention type is not in the configured whitelist", ChecksAttributes: true},
		{ID: "TA003", Name: "Unknown procurement platform", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Procurement platform is not in the configured whitelist", ChecksAttributes: true},
		{ID: "TA004", Name: "Unknown unit of measure", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Unit of measure is not in the configured whitelist", ChecksAttributes: true},
		{ID: "TA005", Name: "Unknown asset class", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Asset class is not in the configured whitelist", ChecksAttributes: true},
		{ID: "TA006", Name: "Unknown facility type", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Facility type is not in the configured whitelist", ChecksAttributes: true},
		{ID: "TA007", Name: "Unknown funding source", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Funding source is not in the configured whitelist", ChecksAttributes: true},
		{ID: "TA008", Name: "Unknown managing unit", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityMedium,
			Description: "Managing unit is not in the configured catalog", ChecksAttributes: true},
		{ID: "TA009", Name: "Malformed URL", Dimension: models.DimensionThematicAccuracy, Severity: models.SeverityLow,
			Description: "URL attribute is not a well-formed absolute URL", ChecksAttributes: true},

		// Temporal quality
		{ID: "TQ001", Name: "Start date after end date", Dimension: models.DimensionTemporalQuality, Severity: models.SeverityHigh,
			Description: "Project start date is later than its end date", ChecksAttributes: true},
		{ID: "TQ002", Name: "Unparsable date", Dimension: models.DimensionTemporalQuality, Severity: models.SeverityMedium,
			Description: "Date value does not match any accepted format", ChecksAttributes: true},
		{ID: "TQ003", Name: "Date outside plausible window", Dimension: models.DimensionTemporalQuality, Severity: models.SeverityMedium,
			Description: "Date falls outside the plausible multi-year window", ChecksAttributes: true},
		{ID: "TQ004", Name: "End date in the future for terminal status", Dimension: models.DimensionTemporalQuality, Severity: models.SeverityMedium,
			Description: "Status is terminal but the end date lies in the future", ChecksAttributes: true},
		{ID: "TQ005", Name: "Excessive project duration", Dimension: models.DimensionTemporalQuality, Severity: models.SeverityLow,
			Description: "Interval between start and end exceeds the plausible bound", ChecksAttributes: true},
	}

	byID := make(map[string]models.ValidationRule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}
	return &Catalog{rules: rules, byID: byID}
}

// Rules returns all rules in catalog order.
func (c *Catalog) Rules() []models.ValidationRule {
	out := make([]models.ValidationRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Rule looks up one rule by its stable ID.
func (c *Catalog) Rule(id string) (models.ValidationRule, error) {
	rule, ok := c.byID[id]
	if !ok {
		return models.ValidationRule{}, fmt.Errorf("rule %s is not in the catalog", id)
	}
	return rule, nil
}

// MustRule looks up one rule by ID and panics when absent. Reserved for
// the validator itself, whose rule references are fixed at compile time.
func (c *Catalog) MustRule(id string) models.ValidationRule {
	rule, err := c.Rule(id)
	if err != nil {
		panic(err)
	}
	return rule
}
