package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "educacion", Fold("Educación"))
	assert.Equal(t, "en ejecucion", Fold("  En Ejecución "))
	assert.Equal(t, Fold("Peñón"), Fold("penon"))
	assert.Equal(t, "", Fold("   "))
}

func TestCharOverlapScore(t *testing.T) {
	sim := CharOverlap{}

	assert.Equal(t, 1.0, sim.Score("Terminado", "terminado"))
	assert.Equal(t, 1.0, sim.Score("Construcción", "construccion"))
	assert.Equal(t, 0.0, sim.Score("", "algo"))
	assert.Equal(t, 1.0, sim.Score("", ""))

	// A one-letter typo stays close to 1.
	assert.Greater(t, sim.Score("Mantenimineto", "Mantenimiento"), 0.9)

	// Unrelated strings stay below the suggestion threshold.
	assert.Less(t, sim.Score("xyz", "Mantenimiento"), SuggestionThreshold)
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"Terminado", "En ejecución", "Suspendido"}

	best, score := BestMatch(CharOverlap{}, "Terminaddo", candidates)
	assert.Equal(t, "Terminado", best)
	assert.GreaterOrEqual(t, score, SuggestionThreshold)

	best, score = BestMatch(CharOverlap{}, "qqq", candidates)
	assert.Equal(t, "", best)
	assert.Less(t, score, SuggestionThreshold)

	best, score = BestMatch(CharOverlap{}, "algo", nil)
	assert.Equal(t, "", best)
	assert.Equal(t, 0.0, score)
}
