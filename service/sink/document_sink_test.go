package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquality-service/service/models"
	"geoquality-service/testutil"
)

func recordReport(key string, priority models.Priority, worst models.Severity, issueCount int) models.RecordReport {
	return models.RecordReport{
		RunID:         "20260310T020000Z-abcd1234",
		RecordKey:     key,
		RecordName:    "Mejoramiento vial Calle 5",
		Group:         "Secretaría de Infraestructura",
		Priority:      priority,
		WorstSeverity: worst,
		IssueCount:    issueCount,
		Issues: []models.QualityIssue{{
			Rule:       models.ValidationRule{ID: "LC001", Severity: worst},
			FieldName:  "avance_obra",
			DetectedAt: time.Now().UTC(),
			RecordKey:  key,
		}},
		GeneratedAt: time.Now().UTC(),
	}
}

func TestSaveRecordReportsUpsert(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	sink := NewDocumentSink(tdb.DB)

	report := recordReport("2024760010001", models.PriorityP1, models.SeverityCritical, 3)

	changelog, err := sink.SaveRecordReports([]models.RecordReport{report})
	require.NoError(t, err)
	assert.Empty(t, changelog, "first write of a document produces no changelog")

	var count int64
	tdb.DB.Model(&models.RecordReportDocument{}).Count(&count)
	assert.EqualValues(t, 1, count)

	// Re-persisting identical content stays idempotent.
	changelog, err = sink.SaveRecordReports([]models.RecordReport{report})
	require.NoError(t, err)
	assert.Empty(t, changelog)

	tdb.DB.Model(&models.RecordReportDocument{}).Count(&count)
	assert.EqualValues(t, 1, count, "same natural key upserts in place")
}

func TestChangelogOnMonitoredFieldChange(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	sink := NewDocumentSink(tdb.DB)

	first := recordReport("2024760010001", models.PriorityP2, models.SeverityHigh, 2)
	_, err := sink.SaveRecordReports([]models.RecordReport{first})
	require.NoError(t, err)

	second := recordReport("2024760010001", models.PriorityP1, models.SeverityCritical, 2)
	second.RunID = "20260311T020000Z-ef567890"
	changelog, err := sink.SaveRecordReports([]models.RecordReport{second})
	require.NoError(t, err)

	require.Len(t, changelog, 2, "priority and worst_severity changed, issue_count did not")
	fields := map[string][2]string{}
	for _, entry := range changelog {
		assert.Equal(t, "2024760010001", entry.DocumentID)
		assert.Equal(t, second.RunID, entry.RunID)
		fields[entry.FieldName] = [2]string{entry.OldValue, entry.NewValue}
	}
	assert.Equal(t, [2]string{"P2", "P1"}, fields["priority"])
	assert.Equal(t, [2]string{"HIGH", "CRITICAL"}, fields["worst_severity"])

	var stored int64
	tdb.DB.Model(&models.ChangelogEntry{}).Count(&stored)
	assert.EqualValues(t, 2, stored, "changelog entries are persisted")
}

func TestGroupAndSummaryPersistence(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	sink := NewDocumentSink(tdb.DB)

	group := models.GroupReport{
		RunID:             "run-1",
		Group:             "Secretaría de Salud",
		TotalRecords:      40,
		RecordsWithIssues: 0,
		QualityScore:      100,
		Status:            models.GroupStatusExcellent,
		GeneratedAt:       time.Now().UTC(),
	}
	require.NoError(t, sink.SaveGroupReports([]models.GroupReport{group}))

	group.RunID = "run-2"
	group.QualityScore = 83
	group.Status = models.GroupStatusGood
	require.NoError(t, sink.SaveGroupReports([]models.GroupReport{group}))

	docs, err := sink.ListGroupReports()
	require.NoError(t, err)
	require.Len(t, docs, 1, "group documents upsert by group name")
	assert.Equal(t, "run-2", docs[0].RunID)
	assert.Equal(t, models.GroupStatusGood, docs[0].Status)

	summary := models.SummaryReport{
		RunID:        "run-2",
		TotalRecords: 40,
		QualityScore: 83,
		Rating:       models.RatingGood,
		GeneratedAt:  time.Now().UTC(),
	}
	require.NoError(t, sink.SaveSummaryReport(summary))
	require.NoError(t, sink.SaveSummaryReport(summary), "same run id inserts once")

	var count int64
	tdb.DB.Model(&models.SummaryReportDocument{}).Count(&count)
	assert.EqualValues(t, 1, count)

	latest, err := sink.LatestSummary()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-2", latest.RunID)
}

func TestListRecordReportsFilters(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	sink := NewDocumentSink(tdb.DB)

	a := recordReport("r1", models.PriorityP1, models.SeverityCritical, 5)
	b := recordReport("r2", models.PriorityP3, models.SeverityLow, 1)
	b.Group = "Secretaría de Salud"
	_, err := sink.SaveRecordReports([]models.RecordReport{a, b})
	require.NoError(t, err)

	docs, total, err := sink.ListRecordReports("", "P1", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "r1", docs[0].ID)

	docs, total, err = sink.ListRecordReports("Secretaría de Salud", "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "r2", docs[0].ID)

	doc, err := sink.GetRecordReport("r1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "P1", doc.Priority)

	missing, err := sink.GetRecordReport("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
