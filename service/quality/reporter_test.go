package quality

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquality-service/service/models"
	"geoquality-service/testutil"
)

func issueFor(index int, ruleID, key, group string) models.QualityIssue {
	catalog := NewCatalog()
	return models.QualityIssue{
		Rule:        catalog.MustRule(ruleID),
		FieldName:   "f",
		DetectedAt:  time.Now().UTC(),
		RecordIndex: index,
		RecordKey:   key,
		Group:       group,
	}
}

func resultWith(totalRecords int, groupTotals map[string]int, issues ...models.QualityIssue) *models.BatchValidationResult {
	return &models.BatchValidationResult{
		TotalRecords: totalRecords,
		Issues:       issues,
		GroupTotals:  groupTotals,
		GroupingKey:  "organismo",
		RunAt:        time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC),
	}
}

func TestPriorityTiers(t *testing.T) {
	tests := []struct {
		name string
		mix  map[models.Severity]int
		want models.Priority
	}{
		{"five criticals is P0", map[models.Severity]int{models.SeverityCritical: 5}, models.PriorityP0},
		{"four criticals is P1 not P0", map[models.Severity]int{models.SeverityCritical: 4}, models.PriorityP1},
		{"one critical is P1", map[models.Severity]int{models.SeverityCritical: 1}, models.PriorityP1},
		{"ten highs is P1", map[models.Severity]int{models.SeverityHigh: 10}, models.PriorityP1},
		{"one high is P2", map[models.Severity]int{models.SeverityHigh: 1}, models.PriorityP2},
		{"fifteen mediums is P2", map[models.Severity]int{models.SeverityMedium: 15}, models.PriorityP2},
		{"a few mediums is P3", map[models.Severity]int{models.SeverityMedium: 3}, models.PriorityP3},
		{"lows only is P3", map[models.Severity]int{models.SeverityLow: 30}, models.PriorityP3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, priorityFor(tt.mix))
		})
	}
}

func TestRecordLevelReports(t *testing.T) {
	result := resultWith(3, map[string]int{"A": 3},
		issueFor(0, "CP006", "r0", "A"), // LOW
		issueFor(1, "LC001", "r1", "A"), // CRITICAL
		issueFor(1, "CP006", "r1", "A"),
		issueFor(2, "LC002", "r2", "A"), // HIGH
	)
	reports := NewReporter(result).RecordLevelReports()

	require.Len(t, reports, 3)
	assert.Equal(t, "r1", reports[0].RecordKey, "worst severity sorts first")
	assert.Equal(t, models.SeverityCritical, reports[0].WorstSeverity)
	assert.Equal(t, 2, reports[0].IssueCount)
	assert.Equal(t, models.PriorityP1, reports[0].Priority)
	assert.Equal(t, "r2", reports[1].RecordKey)
	assert.Equal(t, "r0", reports[2].RecordKey)
	assert.Equal(t, models.PriorityP3, reports[2].Priority)
}

func TestRecordReportFallbackKey(t *testing.T) {
	result := resultWith(1, map[string]int{"A": 1}, issueFor(7, "CP003", "", "A"))
	reports := NewReporter(result).RecordLevelReports()

	require.Len(t, reports, 1)
	assert.Equal(t, "record-7", reports[0].RecordKey)
}

func TestGroupLevelReports(t *testing.T) {
	result := resultWith(50,
		map[string]int{"Obras": 10, "Salud": 40},
		issueFor(0, "LC001", "r0", "Obras"),
		issueFor(1, "LC002", "r1", "Obras"),
	)
	reports := NewReporter(result).GroupLevelReports()

	require.Len(t, reports, 2)

	obras := reports[0]
	assert.Equal(t, "Obras", obras.Group)
	assert.Equal(t, 10, obras.TotalRecords)
	assert.Equal(t, 2, obras.RecordsWithIssues)
	assert.InDelta(t, 0.2, obras.ErrorRate, 1e-9)
	assert.InDelta(t, 100*(1-1.7/10), obras.QualityScore, 1e-9)

	// A group with zero issues still gets a report.
	salud := reports[1]
	assert.Equal(t, "Salud", salud.Group)
	assert.Zero(t, salud.RecordsWithIssues)
	assert.Zero(t, salud.ErrorRate)
	assert.Equal(t, 100.0, salud.QualityScore)
	assert.Equal(t, models.GroupStatusExcellent, salud.Status)
}

func TestGroupStatusBands(t *testing.T) {
	tests := []struct {
		score     float64
		errorRate float64
		want      string
	}{
		{95, 0.05, models.GroupStatusExcellent},
		{95, 0.20, models.GroupStatusGood},
		{80, 0.20, models.GroupStatusGood},
		{80, 0.50, models.GroupStatusFair},
		{65, 0.10, models.GroupStatusFair},
		{45, 0.90, models.GroupStatusPoor},
		{20, 1.00, models.GroupStatusCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, groupStatus(tt.score, tt.errorRate),
			"score=%.0f errorRate=%.2f", tt.score, tt.errorRate)
	}
}

func TestRunIDDeterminism(t *testing.T) {
	build := func() *models.BatchValidationResult {
		return resultWith(5, map[string]int{"A": 5},
			issueFor(0, "LC001", "r0", "A"),
			issueFor(2, "CP006", "r2", "A"),
		)
	}

	first := NewReporter(build())
	second := NewReporter(build())
	assert.Equal(t, first.RunID(), second.RunID())
	assert.Contains(t, first.RunID(), "20260310T020000Z-")

	changed := build()
	changed.Issues = changed.Issues[:1]
	assert.NotEqual(t, first.RunID(), NewReporter(changed).RunID())
}

func TestSummaryReportAndRecommendations(t *testing.T) {
	b := NewBatchValidator(NewValidator(nil, nil, nil), nil)
	result := b.ValidateAll(attributeRecords(
		testutil.ValidRecord(),
		testutil.ValidRecord(), // duplicate pair
		testutil.ValidRecord(testutil.WithField("bpin", "2024760010009"),
			testutil.WithField("estado", "Terminado"),
			testutil.WithField("avance_obra", 10.0),
			testutil.WithField("fecha_fin", "2025-06-30")),
	))

	reporter := NewReporter(result)
	groups := reporter.GroupLevelReports()
	summary := reporter.SummaryReport(groups)

	assert.Equal(t, reporter.RunID(), summary.RunID)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 1, summary.DuplicateGroups)
	assert.Equal(t, result.Statistics.QualityScore, summary.QualityScore)
	assert.NotEmpty(t, summary.TopGroups)

	var sawCritical, sawDuplicates bool
	for _, rec := range summary.Recommendations {
		if strings.Contains(rec, "CRITICAL") {
			sawCritical = true
		}
		if strings.Contains(rec, "duplicate") {
			sawDuplicates = true
		}
	}
	assert.True(t, sawCritical, "critical issues demand a recommendation")
	assert.True(t, sawDuplicates, "duplicates demand a consolidation recommendation")
}

func TestCategoricalMetadata(t *testing.T) {
	result := resultWith(10,
		map[string]int{"Obras": 5, "Salud": 5},
		issueFor(0, "LC001", "r0", "Obras"),
		issueFor(1, "TQ002", "r1", "Salud"),
	)
	reporter := NewReporter(result)
	groups := reporter.GroupLevelReports()
	metadata := reporter.Metadata(groups)

	assert.Equal(t, reporter.RunID(), metadata.RunID)
	assert.Equal(t, []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"}, metadata.Severities)
	assert.Equal(t, []string{"LC001", "TQ002"}, metadata.RuleIDs)
	assert.Equal(t, []string{"Obras", "Salud"}, metadata.Groups)
	assert.Equal(t, "#d32f2f", metadata.SeverityColors["CRITICAL"])
	assert.Equal(t, 100.0, metadata.ScoreRange.Max)
	assert.LessOrEqual(t, metadata.ScoreRange.Min, metadata.ScoreRange.Max)
}
