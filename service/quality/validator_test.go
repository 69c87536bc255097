package quality

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquality-service/service/models"
	"geoquality-service/testutil"
)

func ruleCounts(issues []models.QualityIssue) map[string]int {
	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Rule.ID]++
	}
	return counts
}

func findIssue(issues []models.QualityIssue, ruleID string) (models.QualityIssue, bool) {
	for _, issue := range issues {
		if issue.Rule.ID == ruleID {
			return issue, true
		}
	}
	return models.QualityIssue{}, false
}

func TestStatusProgressCongruence(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	tests := []struct {
		name      string
		status    string
		progress  interface{}
		wantLC001 bool
		wantLC002 bool
	}{
		{"finished at 100 is congruent", "Terminado", 100.0, false, false},
		{"finished below 100 is incongruent", "Terminado", 60.0, true, false},
		{"delivered below 100 is incongruent", "Entregado", 35.0, true, false},
		{"suspended accepts partial progress", "Suspendido", 40.0, false, false},
		{"suspended accepts zero progress", "Suspendido", 0.0, false, false},
		{"inaugurated at 100 is congruent", "Inaugurada", 100.0, false, false},
		{"inaugurated below 100 is incongruent", "Inaugurada", 70.0, true, false},
		{"in progress at 100 needs terminal status", "En ejecución", 100.0, true, false},
		{"in progress at zero is incongruent", "En ejecución", 0.0, true, false},
		{"planning at zero is congruent", "En planeación", 0.0, false, false},
		{"range violation fires independently", "Suspendido", 150.0, false, true},
		{"finished above range fires both", "Terminado", 150.0, true, true},
		{"numeric string coerces before comparison", "Terminado", "85", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.ValidRecord(
				testutil.WithField("estado", tt.status),
				testutil.WithField("avance_obra", tt.progress),
			)
			counts := ruleCounts(v.Validate(rec, testutil.SquareAround(testutil.CaliPoint(), 0.001)))

			if tt.wantLC001 {
				assert.Equal(t, 1, counts["LC001"], "expected LC001")
			} else {
				assert.Zero(t, counts["LC001"], "unexpected LC001")
			}
			if tt.wantLC002 {
				assert.Equal(t, 1, counts["LC002"], "expected LC002")
			} else {
				assert.Zero(t, counts["LC002"], "unexpected LC002")
			}
		})
	}
}

func TestStatusProgressSuggestions(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	rec := testutil.ValidRecord(
		testutil.WithField("estado", "Terminado"),
		testutil.WithField("avance_obra", 60.0),
	)
	issues := v.Validate(rec, nil)

	issue, found := findIssue(issues, "LC001")
	require.True(t, found)
	assert.Contains(t, issue.Suggestion, "set avance_obra to 100")
	assert.Contains(t, issue.Suggestion, `"En ejecución"`)
	assert.Equal(t, models.SeverityCritical, issue.Rule.Severity)
}

func TestNonNumericProgressSuppressesCongruence(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	rec := testutil.ValidRecord(
		testutil.WithField("estado", "Terminado"),
		testutil.WithField("avance_obra", "sin dato"),
	)
	counts := ruleCounts(v.Validate(rec, nil))

	assert.Equal(t, 1, counts["LC003"])
	assert.Zero(t, counts["LC001"], "congruence is unverifiable for garbage progress")
	assert.Zero(t, counts["LC002"])
}

func TestNumericRangeRules(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	t.Run("negative budget", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("presupuesto", -5000.0))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["LC004"])
	})

	t.Run("zero quantity", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("cantidad", 0))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["LC005"])
	})

	t.Run("implausible fiscal year", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("vigencia", 1990))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["LC007"])
	})

	t.Run("one issue per rule per record", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithField("presupuesto", -1.0),
			testutil.WithField("valor_contrato", -2.0),
		)
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["LC004"], "a rule fires at most once per record")
	})
}

func TestCompletenessRules(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	t.Run("missing required fields collapse into one issue", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithoutField("nombre"),
			testutil.WithField("organismo", "  "),
		)
		issues := v.Validate(rec, nil)
		counts := ruleCounts(issues)
		assert.Equal(t, 1, counts["CP001"])

		issue, _ := findIssue(issues, "CP001")
		assert.Contains(t, issue.Details, "nombre")
		assert.Contains(t, issue.Details, "organismo")
	})

	t.Run("no identifier at all", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithoutField("bpin"),
			testutil.WithoutField("identificador"),
		)
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["CP003"])
	})

	t.Run("address without geometry", func(t *testing.T) {
		rec := testutil.ValidRecord()
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["CP002"])
	})

	t.Run("address with geometry passes", func(t *testing.T) {
		rec := testutil.ValidRecord()
		counts := ruleCounts(v.Validate(rec, testutil.SquareAround(testutil.CaliPoint(), 0.001)))
		assert.Zero(t, counts["CP002"])
	})

	t.Run("terminal status needs both dates", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithField("estado", "Terminado"),
			testutil.WithField("avance_obra", 100.0),
			testutil.WithField("fecha_fin", "2025-01-15"),
			testutil.WithoutField("fecha_inicio"),
		)
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["CP004"])
	})

	t.Run("missing contracting reference", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithoutField("referencia_contrato"))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["CP005"])
	})

	t.Run("planning status needs no contracting reference", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithField("estado", "En planeación"),
			testutil.WithField("avance_obra", 0.0),
			testutil.WithoutField("referencia_contrato"),
			testutil.WithoutField("fecha_inicio"),
			testutil.WithoutField("fecha_fin"),
		)
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Zero(t, counts["CP005"])
		assert.Zero(t, counts["CP004"])
	})
}

func TestTemporalRules(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	t.Run("start after end", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithField("fecha_inicio", "2025-06-30"),
			testutil.WithField("fecha_fin", "2024-02-01"),
		)
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["TQ001"])
	})

	t.Run("garbage date suppresses the window rule", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("fecha_inicio", "mañana"))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["TQ002"])
		assert.Zero(t, counts["TQ003"])
	})

	t.Run("date outside plausible window", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("fecha_inicio", "1995-05-10"))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["TQ003"])
	})

	t.Run("latin american layout parses", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("fecha_inicio", "01/02/2024"))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Zero(t, counts["TQ002"])
	})

	t.Run("terminal status with future end date", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithField("estado", "Terminado"),
			testutil.WithField("avance_obra", 100.0),
			testutil.WithField("fecha_fin", "2031-12-31"),
		)
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["TQ004"])
	})

	t.Run("excessive duration", func(t *testing.T) {
		rec := testutil.ValidRecord(
			testutil.WithField("fecha_inicio", "2010-01-01"),
			testutil.WithField("fecha_fin", "2030-01-01"),
		)
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["TQ005"])
	})
}

func TestThematicWhitelists(t *testing.T) {
	whitelists := Whitelists{
		"estado":            {"Terminado", "En ejecución", "Suspendido", "Inaugurada", "En planeación"},
		"tipo_intervencion": {"Mantenimiento", "Construcción", "Adecuación"},
	}
	v := NewValidator(whitelists, nil, nil)

	t.Run("whitelisted value passes", func(t *testing.T) {
		rec := testutil.ValidRecord()
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Zero(t, counts["TA001"])
		assert.Zero(t, counts["TA002"])
	})

	t.Run("near miss gets a targeted suggestion", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("tipo_intervencion", "Mantenimineto"))
		issues := v.Validate(rec, nil)

		issue, found := findIssue(issues, "TA002")
		require.True(t, found)
		assert.Equal(t, `did you mean "Mantenimiento"?`, issue.Suggestion)
	})

	t.Run("accent variant matches its canonical form", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("tipo_intervencion", "Construccion"))
		issues := v.Validate(rec, nil)

		issue, found := findIssue(issues, "TA002")
		require.True(t, found)
		assert.Equal(t, `did you mean "Construcción"?`, issue.Suggestion)
	})

	t.Run("distant value lists the whitelist", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("tipo_intervencion", "xyz"))
		issues := v.Validate(rec, nil)

		issue, found := findIssue(issues, "TA002")
		require.True(t, found)
		assert.Contains(t, issue.Suggestion, "allowed values:")
	})

	t.Run("uncovered field is skipped", func(t *testing.T) {
		rec := testutil.ValidRecord(testutil.WithField("clase_obra", "cualquier cosa"))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Zero(t, counts["TA005"])
	})
}

func TestURLWellFormedness(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	rec := testutil.ValidRecord(testutil.WithField("url", "secop.gov.co/process/1"))
	counts := ruleCounts(v.Validate(rec, nil))
	assert.Equal(t, 1, counts["TA009"])

	rec = testutil.ValidRecord(testutil.WithField("url", "https://secop.gov.co/process/1"))
	counts = ruleCounts(v.Validate(rec, nil))
	assert.Zero(t, counts["TA009"])
}

type fakeBoundaries struct {
	comunas map[string]bool
	barrios map[string]bool
}

func (f fakeBoundaries) ComunaContains(name string, point orb.Point) (bool, bool) {
	contained, found := f.comunas[name]
	return contained, found
}

func (f fakeBoundaries) BarrioContains(name string, point orb.Point) (bool, bool) {
	contained, found := f.barrios[name]
	return contained, found
}

func TestPositionalRules(t *testing.T) {
	t.Run("point outside the municipal bounding box", func(t *testing.T) {
		v := NewValidator(nil, nil, nil)
		rec := testutil.ValidRecord()
		counts := ruleCounts(v.Validate(rec, orb.Point{-74.07, 4.61})) // Bogotá
		assert.Equal(t, 1, counts["PA001"])
	})

	t.Run("unexpected CRS", func(t *testing.T) {
		v := NewValidator(nil, nil, nil)
		rec := testutil.ValidRecord(testutil.WithField("crs", "EPSG:3857"))
		counts := ruleCounts(v.Validate(rec, nil))
		assert.Equal(t, 1, counts["PA002"], "CRS rule applies without geometry")
	})

	t.Run("degenerate coordinates suppress containment noise", func(t *testing.T) {
		v := NewValidator(nil, fakeBoundaries{comunas: map[string]bool{"Comuna 19": false}}, nil)
		rec := testutil.ValidRecord()
		counts := ruleCounts(v.Validate(rec, orb.Point{0, 0}))
		assert.Equal(t, 1, counts["PA003"])
		assert.Zero(t, counts["PA001"])
		assert.Zero(t, counts["PA004"])
	})

	t.Run("point outside declared comuna", func(t *testing.T) {
		boundaries := fakeBoundaries{
			comunas: map[string]bool{"comuna 19": false},
			barrios: map[string]bool{"el lido": true},
		}
		v := NewValidator(nil, boundaries, nil)
		rec := testutil.ValidRecord(
			testutil.WithField("comuna", "comuna 19"),
			testutil.WithField("barrio", "el lido"),
		)
		counts := ruleCounts(v.Validate(rec, testutil.CaliPoint()))
		assert.Equal(t, 1, counts["PA004"])
		assert.Zero(t, counts["PA005"])
	})

	t.Run("unknown boundary name skips the rule", func(t *testing.T) {
		v := NewValidator(nil, fakeBoundaries{}, nil)
		rec := testutil.ValidRecord()
		counts := ruleCounts(v.Validate(rec, testutil.CaliPoint()))
		assert.Zero(t, counts["PA004"])
		assert.Zero(t, counts["PA005"])
	})

	t.Run("nil provider disables containment", func(t *testing.T) {
		v := NewValidator(nil, nil, nil)
		rec := testutil.ValidRecord()
		counts := ruleCounts(v.Validate(rec, testutil.CaliPoint()))
		assert.Zero(t, counts["PA004"])
		assert.Zero(t, counts["PA005"])
	})
}

func TestValidRecordIsClean(t *testing.T) {
	v := NewValidator(nil, nil, nil)
	issues := v.Validate(testutil.ValidRecord(), testutil.SquareAround(testutil.CaliPoint(), 0.001))
	assert.Empty(t, issues)
}

func TestRecordGroupSentinel(t *testing.T) {
	v := NewValidator(nil, nil, nil)

	assert.Equal(t, "Secretaría de Infraestructura", v.RecordGroup(testutil.ValidRecord()))
	assert.Equal(t, UnassignedGroup, v.RecordGroup(models.Record{}))
	assert.Equal(t, UnassignedGroup, v.RecordGroup(models.Record{"organismo": "  "}))
}
