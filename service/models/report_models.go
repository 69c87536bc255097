/*
 * @module service/models/report_models
 * @description Derived report projections built by the reporter: record-level,
 *              group-level and global summary views plus UI-facing metadata
 * @architecture Layered architecture - domain model layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow BatchValidationResult -> reporter -> three report tiers -> sink
 * @rules Reports are write-once documents; priority tiers derive from worst
 *        severity plus issue volume with fixed thresholds
 * @dependencies time
 * @refs service/quality/reporter.go, service/sink
 */

package models

import "time"

// Priority is the derived urgency classification of one record.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Group status bands combining score and error-rate thresholds.
const (
	GroupStatusExcellent = "EXCELLENT"
	GroupStatusGood      = "GOOD"
	GroupStatusFair      = "FAIR"
	GroupStatusPoor      = "POOR"
	GroupStatusCritical  = "CRITICAL"
)

// RecordReport is the record-level view: one document per record that
// has at least one issue.
type RecordReport struct {
	RunID         string         `json:"run_id"`
	RecordKey     string         `json:"record_key"`
	RecordName    string         `json:"record_name"`
	Group         string         `json:"group"`
	Priority      Priority       `json:"priority"`
	WorstSeverity Severity       `json:"worst_severity"`
	IssueCount    int            `json:"issue_count"`
	Issues        []QualityIssue `json:"issues"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// GroupScore pairs a group with its quality score for rankings.
type GroupScore struct {
	Group        string  `json:"group"`
	QualityScore float64 `json:"quality_score"`
}

// GroupReport is the group-level view: one document per value of the
// grouping key (organizational unit).
type GroupReport struct {
	RunID             string         `json:"run_id"`
	Group             string         `json:"group"`
	TotalRecords      int            `json:"total_records"`
	RecordsWithIssues int            `json:"records_with_issues"`
	ErrorRate         float64        `json:"error_rate"`
	QualityScore      float64        `json:"quality_score"`
	Status            string         `json:"status"`
	SeverityCounts    map[string]int `json:"severity_counts"`
	TopFields         []FieldCount   `json:"top_fields"`
	TopRules          []RuleCount    `json:"top_rules"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// SummaryReport is the single global roll-up of a validation run.
type SummaryReport struct {
	RunID              string         `json:"run_id"`
	TotalRecords       int            `json:"total_records"`
	TotalIssues        int            `json:"total_issues"`
	RecordsWithIssues  int            `json:"records_with_issues"`
	QualityScore       float64        `json:"quality_score"`
	Rating             string         `json:"rating"`
	SeverityHistogram  map[string]int `json:"severity_histogram"`
	DimensionHistogram map[string]int `json:"dimension_histogram"`
	DuplicateGroups    int            `json:"duplicate_groups"`
	TopGroups          []GroupScore   `json:"top_groups"`
	BottomGroups       []GroupScore   `json:"bottom_groups"`
	Recommendations    []string       `json:"recommendations"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// NumericRange describes the spread of a numeric axis for UI sliders.
type NumericRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// CategoricalMetadata carries the distinct values per categorical axis
// and numeric ranges needed to populate UI filters. No business logic.
type CategoricalMetadata struct {
	RunID          string            `json:"run_id"`
	Severities     []string          `json:"severities"`
	Dimensions     []string          `json:"dimensions"`
	RuleIDs        []string          `json:"rule_ids"`
	Groups         []string          `json:"groups"`
	Priorities     []string          `json:"priorities"`
	ScoreRange     NumericRange      `json:"score_range"`
	ErrorRateRange NumericRange      `json:"error_rate_range"`
	SeverityColors map[string]string `json:"severity_colors"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// SeverityPalette is the fixed severity color palette handed to UIs.
var SeverityPalette = map[string]string{
	"CRITICAL": "#d32f2f",
	"HIGH":     "#f57c00",
	"MEDIUM":   "#fbc02d",
	"LOW":      "#7cb342",
	"INFO":     "#90a4ae",
}
