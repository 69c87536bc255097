/*
 * @module service/models/quality_models
 * @description Core domain types for the quality validation engine: severity and
 *              dimension enums, validation rules, quality issues and batch results
 * @architecture Layered architecture - domain model layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Rule catalog -> record validation -> issue collection -> statistics
 * @rules Severity is a totally ordered enum; rule IDs are stable and never reused
 * @dependencies encoding/json, time
 * @refs service/quality, service/models/report_models.go
 */

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Severity is the ordered impact tier of a single quality issue.
// CRITICAL > HIGH > MEDIUM > LOW > INFO.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "INFO",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

// severityWeights are the per-record penalties used by the quality score.
// A record is weighted by its single worst issue, not by issue volume.
var severityWeights = map[Severity]float64{
	SeverityCritical: 1.0,
	SeverityHigh:     0.7,
	SeverityMedium:   0.3,
	SeverityLow:      0.1,
	SeverityInfo:     0.0,
}

// String returns the canonical uppercase name of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "INFO"
}

// Weight returns the quality-score penalty carried by this severity.
func (s Severity) Weight() float64 {
	return severityWeights[s]
}

// ParseSeverity resolves a canonical name back to its Severity value.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if n == name {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity: %s", name)
}

// MarshalJSON serializes the severity as its canonical name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON restores a severity from its canonical name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Dimension is one of the five ISO-19157-inspired quality dimensions.
type Dimension string

const (
	DimensionLogicalConsistency Dimension = "logical_consistency"
	DimensionCompleteness       Dimension = "completeness"
	DimensionPositionalAccuracy Dimension = "positional_accuracy"
	DimensionThematicAccuracy   Dimension = "thematic_accuracy"
	DimensionTemporalQuality    Dimension = "temporal_quality"
)

// AllDimensions lists the five dimensions in catalog order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionLogicalConsistency,
		DimensionCompleteness,
		DimensionPositionalAccuracy,
		DimensionThematicAccuracy,
		DimensionTemporalQuality,
	}
}

// ValidationRule is an immutable rule definition from the catalog.
// Rule IDs are stable keys used downstream for deduplication, filtering
// and UI display; an ID must never be reused for a different definition.
type ValidationRule struct {
	ID               string    `json:"rule_id"`
	Name             string    `json:"name"`
	Dimension        Dimension `json:"dimension"`
	Severity         Severity  `json:"severity"`
	Description      string    `json:"description"`
	ChecksGeometry   bool      `json:"checks_geometry"`
	ChecksAttributes bool      `json:"checks_attributes"`
}

// Record is the flat attribute mapping of one business entity.
// The validator only reads it, never mutates it.
type Record map[string]interface{}

// QualityIssue is one detected rule violation, immutable once created.
// RecordKey, RecordName, Group and RecordIndex reference the offending
// record so the flat issue list can be re-aggregated downstream.
type QualityIssue struct {
	Rule          ValidationRule `json:"rule"`
	FieldName     string         `json:"field_name"`
	CurrentValue  interface{}    `json:"current_value"`
	ExpectedValue string         `json:"expected_value"`
	Details       string         `json:"details"`
	Suggestion    string         `json:"suggestion,omitempty"`
	DetectedAt    time.Time      `json:"detected_at"`

	RecordIndex int    `json:"record_index"`
	RecordKey   string `json:"record_key"`
	RecordName  string `json:"record_name"`
	Group       string `json:"group"`
}

// RuleCount pairs a rule ID with its occurrence count.
type RuleCount struct {
	RuleID string `json:"rule_id"`
	Count  int    `json:"count"`
}

// FieldCount pairs a field name with its occurrence count.
type FieldCount struct {
	FieldName string `json:"field_name"`
	Count     int    `json:"count"`
}

// DuplicateGroup is a set of two or more records sharing identical
// non-volatile attribute and geometry content.
type DuplicateGroup struct {
	Hash          string   `json:"hash"`
	RecordIndexes []int    `json:"record_indexes"`
	RecordKeys    []string `json:"record_keys"`
	Size          int      `json:"size"`
}

// QualityStatistics is the aggregate snapshot of a validation run.
type QualityStatistics struct {
	TotalRecords      int            `json:"total_records"`
	TotalIssues       int            `json:"total_issues"`
	RecordsWithIssues int            `json:"records_with_issues"`
	AffectedFraction  float64        `json:"affected_fraction"`
	BySeverity        map[string]int `json:"by_severity"`
	ByDimension       map[string]int `json:"by_dimension"`
	ByRule            map[string]int `json:"by_rule"`
	ByField           map[string]int `json:"by_field"`
	TopRules          []RuleCount    `json:"top_rules"`
	QualityScore      float64        `json:"quality_score"`
	Rating            string         `json:"rating"`
}

// BatchValidationResult aggregates one full validation run.
type BatchValidationResult struct {
	TotalRecords    int               `json:"total_records"`
	Issues          []QualityIssue    `json:"issues"`
	DuplicateGroups []DuplicateGroup  `json:"duplicate_groups"`
	Statistics      QualityStatistics `json:"statistics"`
	// GroupTotals counts all records per grouping-key value, including
	// records with no issues, so group reports can compute error rates.
	GroupTotals map[string]int `json:"group_totals"`
	GroupingKey string         `json:"grouping_key"`
	RunAt       time.Time      `json:"run_at"`
}

// Quality rating bands over the 0-100 score.
const (
	RatingExcellent        = "EXCELLENT"
	RatingGood             = "GOOD"
	RatingAcceptable       = "ACCEPTABLE"
	RatingNeedsImprovement = "NEEDS-IMPROVEMENT"
	RatingCritical         = "CRITICAL"
)

// RatingForScore maps a quality score to its qualitative band.
func RatingForScore(score float64) string {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingAcceptable
	case score >= 40:
		return RatingNeedsImprovement
	default:
		return RatingCritical
	}
}
