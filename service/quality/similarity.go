/*
 * @module service/quality/similarity
 * @description Pluggable string-similarity strategy behind the "did you mean"
 *              suggestions of the thematic-accuracy rules
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Candidate value -> accent folding -> overlap ratio -> best match
 * @rules Matching is accent- and case-insensitive; the default strategy is a
 *        normalized character-overlap ratio
 * @dependencies golang.org/x/text/runes, golang.org/x/text/transform, golang.org/x/text/unicode/norm
 * @refs service/quality/thematic.go
 */

package quality

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SuggestionThreshold is the minimum similarity for a single-entry
// "did you mean" suggestion.
const SuggestionThreshold = 0.6

// Similarity scores how close two strings are, in [0, 1].
type Similarity interface {
	Score(a, b string) float64
}

// CharOverlap is the default strategy: a normalized character-overlap
// ratio over folded strings. 2*|common| / (len(a)+len(b)).
type CharOverlap struct{}

// Score implements Similarity.
func (CharOverlap) Score(a, b string) float64 {
	fa := Fold(a)
	fb := Fold(b)
	if fa == "" && fb == "" {
		return 1
	}
	if fa == "" || fb == "" {
		return 0
	}

	counts := make(map[rune]int)
	for _, r := range fa {
		counts[r]++
	}
	common := 0
	for _, r := range fb {
		if counts[r] > 0 {
			counts[r]--
			common++
		}
	}
	return 2 * float64(common) / float64(len([]rune(fa))+len([]rune(fb)))
}

// BestMatch returns the whitelist entry closest to value and its score.
func BestMatch(sim Similarity, value string, candidates []string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if score := sim.Score(value, c); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best, bestScore
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases a string and strips diacritics, so "Educación" and
// "educacion" compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
