package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquality-service/service/models"
	"geoquality-service/testutil"
)

func newBatch(t *testing.T) *BatchValidator {
	t.Helper()
	return NewBatchValidator(NewValidator(nil, nil, nil), nil)
}

func attributeRecords(recs ...models.Record) []SourceRecord {
	out := make([]SourceRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, SourceRecord{Attributes: rec})
	}
	return out
}

func TestDuplicateDetection(t *testing.T) {
	b := newBatch(t)

	t.Run("identical records form one group", func(t *testing.T) {
		result := b.ValidateAll(attributeRecords(
			testutil.ValidRecord(),
			testutil.ValidRecord(),
			testutil.ValidRecord(testutil.WithField("bpin", "2024760010002")),
		))

		require.Len(t, result.DuplicateGroups, 1)
		assert.Equal(t, []int{0, 1}, result.DuplicateGroups[0].RecordIndexes)
		assert.Equal(t, 2, result.DuplicateGroups[0].Size)

		counts := make(map[int]int)
		for _, issue := range result.Issues {
			if issue.Rule.ID == "LC008" {
				counts[issue.RecordIndex]++
			}
		}
		assert.Equal(t, map[int]int{0: 1, 1: 1}, counts, "every member gets one LC008 issue")
	})

	t.Run("volatile fields do not break equality", func(t *testing.T) {
		result := b.ValidateAll(attributeRecords(
			testutil.ValidRecord(testutil.WithField("fecha_actualizacion", "2024-05-01")),
			testutil.ValidRecord(testutil.WithField("fecha_actualizacion", "2024-06-15")),
		))
		require.Len(t, result.DuplicateGroups, 1)
	})

	t.Run("numeric normalization equates string and number", func(t *testing.T) {
		result := b.ValidateAll(attributeRecords(
			testutil.ValidRecord(testutil.WithField("avance_obra", "45")),
			testutil.ValidRecord(testutil.WithField("avance_obra", 45.0)),
		))
		require.Len(t, result.DuplicateGroups, 1)
	})

	t.Run("distinct content stays ungrouped", func(t *testing.T) {
		result := b.ValidateAll(attributeRecords(
			testutil.ValidRecord(),
			testutil.ValidRecord(testutil.WithField("nombre", "Otra obra")),
		))
		assert.Empty(t, result.DuplicateGroups)
	})

	t.Run("input order does not change group content", func(t *testing.T) {
		a := testutil.ValidRecord()
		dup := testutil.ValidRecord()
		c := testutil.ValidRecord(testutil.WithField("bpin", "2024760010003"))

		first := b.ValidateAll(attributeRecords(a, dup, c))
		second := b.ValidateAll(attributeRecords(c, a, dup))

		require.Len(t, first.DuplicateGroups, 1)
		require.Len(t, second.DuplicateGroups, 1)
		assert.Equal(t, first.DuplicateGroups[0].Hash, second.DuplicateGroups[0].Hash)
		assert.Equal(t, first.Statistics.TotalIssues, second.Statistics.TotalIssues)
		assert.Equal(t, first.Statistics.QualityScore, second.Statistics.QualityScore)
	})
}

func TestQualityScore(t *testing.T) {
	t.Run("empty batch scores 100", func(t *testing.T) {
		assert.Equal(t, 100.0, Score(nil, 0))
	})

	t.Run("clean batch scores 100", func(t *testing.T) {
		assert.Equal(t, 100.0, Score(map[int]models.Severity{}, 50))
	})

	t.Run("worst severity per record, not issue volume", func(t *testing.T) {
		// One critical record out of ten: 100 * (1 - 1.0/10).
		worst := map[int]models.Severity{3: models.SeverityCritical}
		assert.InDelta(t, 90.0, Score(worst, 10), 1e-9)
	})

	t.Run("mixed severities", func(t *testing.T) {
		worst := map[int]models.Severity{
			0: models.SeverityCritical, // 1.0
			1: models.SeverityHigh,     // 0.7
			2: models.SeverityLow,      // 0.1
		}
		assert.InDelta(t, 100*(1-1.8/10), Score(worst, 10), 1e-9)
	})

	t.Run("all critical clamps to zero", func(t *testing.T) {
		worst := make(map[int]models.Severity)
		for i := 0; i < 4; i++ {
			worst[i] = models.SeverityCritical
		}
		assert.Equal(t, 0.0, Score(worst, 4))
	})

	t.Run("fifty critical out of a thousand", func(t *testing.T) {
		worst := make(map[int]models.Severity)
		for i := 0; i < 50; i++ {
			worst[i] = models.SeverityCritical
		}
		assert.InDelta(t, 95.0, Score(worst, 1000), 1e-9)
	})
}

func TestBatchStatistics(t *testing.T) {
	b := newBatch(t)

	result := b.ValidateAll(attributeRecords(
		testutil.ValidRecord(testutil.WithoutField("direccion")), // CP006 (LOW), no CP002
		testutil.ValidRecord(testutil.WithField("bpin", "2024760010005"),
			testutil.WithField("estado", "Terminado"),
			testutil.WithField("avance_obra", 60.0),
			testutil.WithField("fecha_fin", "2025-06-30")), // LC001 (CRITICAL), CP002 from address
	))

	stats := result.Statistics
	assert.Equal(t, 2, stats.TotalRecords)
	assert.Equal(t, 2, stats.RecordsWithIssues)
	assert.Equal(t, 1.0, stats.AffectedFraction)
	assert.Equal(t, models.RatingForScore(stats.QualityScore), stats.Rating)
	assert.NotZero(t, stats.BySeverity["CRITICAL"])
	assert.NotZero(t, stats.ByDimension["logical_consistency"])
	assert.NotEmpty(t, stats.TopRules)

	// Penalty: one CRITICAL record (1.0) + one LOW record (0.1) over 2.
	assert.InDelta(t, 100*(1-1.1/2), stats.QualityScore, 1e-9)
}

func TestGroupTotalsIncludeCleanGroups(t *testing.T) {
	b := newBatch(t)

	result := b.ValidateAll(attributeRecords(
		testutil.ValidRecord(testutil.WithField("direccion", "")),
		testutil.ValidRecord(testutil.WithField("bpin", "2024760010006"),
			testutil.WithField("organismo", "Secretaría de Salud")),
		testutil.ValidRecord(testutil.WithField("bpin", "2024760010007"),
			testutil.WithoutField("organismo")),
	))

	assert.Equal(t, map[string]int{
		"Secretaría de Infraestructura": 1,
		"Secretaría de Salud":           1,
		UnassignedGroup:                 1,
	}, result.GroupTotals)
}

func TestGeometryErrorDegradesRecord(t *testing.T) {
	b := newBatch(t)

	result := b.ValidateAll([]SourceRecord{{
		Attributes:  testutil.ValidRecord(),
		GeometryErr: assert.AnError,
	}})

	// The record validates attribute-only: address without geometry.
	counts := make(map[string]int)
	for _, issue := range result.Issues {
		counts[issue.Rule.ID]++
	}
	assert.Equal(t, 1, counts["CP002"])
	assert.Equal(t, 1, result.TotalRecords)
}

func TestObserverReceivesEvents(t *testing.T) {
	b := newBatch(t)

	var issues int
	var completed bool
	b.SetObserver(funcObserver{
		onIssue:    func(models.QualityIssue) { issues++ },
		onComplete: func(models.QualityStatistics) { completed = true },
	})

	result := b.ValidateAll(attributeRecords(testutil.ValidRecord(testutil.WithoutField("nombre"))))
	assert.Equal(t, len(result.Issues), issues)
	assert.True(t, completed)
}

type funcObserver struct {
	onIssue    func(models.QualityIssue)
	onComplete func(models.QualityStatistics)
}

func (f funcObserver) OnIssue(issue models.QualityIssue)            { f.onIssue(issue) }
func (f funcObserver) OnRunComplete(stats models.QualityStatistics) { f.onComplete(stats) }
