/*
 * @module service/quality/batch
 * @description Batch validator: iterates a record collection, invokes the
 *              record validator, detects full-record duplicates via canonical
 *              content hashing and computes aggregate quality statistics
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Record collection -> per-record validation -> duplicate scan ->
 *            statistics -> BatchValidationResult
 * @rules Input order must not affect result content; an unreadable geometry
 *        degrades that record to attribute-only validation, never aborts
 * @dependencies crypto/sha256, github.com/paulmach/orb/geojson
 * @refs service/quality/validator.go, service/quality/reporter.go
 */

package quality

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"geoquality-service/service/models"
)

// SourceRecord is one record yielded by a record source. GeometryErr
// marks a geometry the source could not read; the record then degrades
// to attribute-only validation.
type SourceRecord struct {
	Attributes  models.Record
	Geometry    orb.Geometry
	GeometryErr error
}

// BatchOptions configures the batch-level behavior.
type BatchOptions struct {
	// VolatileFields are bookkeeping attributes excluded from the
	// duplicate-detection hash. New upstream auto-generated fields must
	// be added here; there is no structural way to detect them.
	VolatileFields []string
	// TopN bounds the most-frequent-rules list in the statistics.
	TopN int
}

// DefaultBatchOptions returns the documented volatile-field exclusions.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		VolatileFields: []string{
			"fecha_creacion",
			"fecha_actualizacion",
			"created_at",
			"updated_at",
			"geocoding_status",
		},
		TopN: 5,
	}
}

// BatchValidator runs the record validator over whole collections.
type BatchValidator struct {
	validator *Validator
	opts      BatchOptions
	observer  RunObserver
}

// NewBatchValidator creates a batch validator; nil opts means defaults.
func NewBatchValidator(validator *Validator, opts *BatchOptions) *BatchValidator {
	o := DefaultBatchOptions()
	if opts != nil {
		o = *opts
	}
	return &BatchValidator{validator: validator, opts: o, observer: SlogObserver{}}
}

// SetObserver replaces the default slog observer.
func (b *BatchValidator) SetObserver(obs RunObserver) {
	if obs != nil {
		b.observer = obs
	}
}

// ValidateAll validates every record, detects duplicate groups and
// computes the aggregate statistics. It always returns a complete
// result; "all records are bad" is a valid outcome, not an error.
func (b *BatchValidator) ValidateAll(records []SourceRecord) *models.BatchValidationResult {
	result := &models.BatchValidationResult{
		TotalRecords: len(records),
		GroupTotals:  make(map[string]int),
		GroupingKey:  b.validator.opts.GroupingKey,
		RunAt:        time.Now().UTC(),
	}

	worst := make(map[int]models.Severity)
	hashes := make(map[string][]int)
	degraded := 0

	for i, rec := range records {
		group := b.validator.RecordGroup(rec.Attributes)
		result.GroupTotals[group]++

		geom := rec.Geometry
		if rec.GeometryErr != nil {
			geom = nil
			degraded++
		}

		issues := b.validator.Validate(rec.Attributes, geom)
		for _, issue := range issues {
			issue.RecordIndex = i
			b.recordIssue(result, worst, issue)
		}

		hash := b.canonicalHash(rec.Attributes, geom)
		hashes[hash] = append(hashes[hash], i)
	}

	if degraded > 0 {
		slog.Warn("records degraded to attribute-only validation",
			"count", degraded, "reason", "unreadable geometry")
	}

	b.collectDuplicates(result, records, hashes, worst)
	result.Statistics = b.computeStatistics(result, worst)
	b.observer.OnRunComplete(result.Statistics)
	return result
}

func (b *BatchValidator) recordIssue(result *models.BatchValidationResult, worst map[int]models.Severity, issue models.QualityIssue) {
	result.Issues = append(result.Issues, issue)
	if sev, ok := worst[issue.RecordIndex]; !ok || issue.Rule.Severity > sev {
		worst[issue.RecordIndex] = issue.Rule.Severity
	}
	b.observer.OnIssue(issue)
}

// collectDuplicates turns identical canonical hashes into duplicate
// groups and raises one LC008 issue per member record. Groups of size
// one are not reported, and membership is mutually exclusive by
// construction (one hash per record).
func (b *BatchValidator) collectDuplicates(result *models.BatchValidationResult, records []SourceRecord, hashes map[string][]int, worst map[int]models.Severity) {
	groupHashes := make([]string, 0)
	for hash, indexes := range hashes {
		if len(indexes) > 1 {
			groupHashes = append(groupHashes, hash)
		}
	}
	sort.Strings(groupHashes)

	for _, hash := range groupHashes {
		indexes := hashes[hash]
		sort.Ints(indexes)

		group := models.DuplicateGroup{Hash: hash, RecordIndexes: indexes, Size: len(indexes)}
		for _, idx := range indexes {
			rec := records[idx].Attributes
			key := b.validator.RecordKey(rec)
			group.RecordKeys = append(group.RecordKeys, key)

			issue := models.QualityIssue{
				Rule:          b.validator.catalog.MustRule("LC008"),
				FieldName:     "*",
				CurrentValue:  hash[:12],
				ExpectedValue: "unique record content",
				Details:       fmt.Sprintf("record shares identical non-volatile content with %d other record(s)", len(indexes)-1),
				Suggestion:    "consolidate the duplicated records before publication",
				DetectedAt:    time.Now().UTC(),
				RecordIndex:   idx,
				RecordKey:     key,
				RecordName:    asString(rec["nombre"]),
				Group:         b.validator.RecordGroup(rec),
			}
			b.recordIssue(result, worst, issue)
		}
		result.DuplicateGroups = append(result.DuplicateGroups, group)
	}
}

// canonicalHash hashes the record's full non-volatile attribute and
// geometry content. Numeric values are normalized first so "85" and 85
// hash identically.
func (b *BatchValidator) canonicalHash(rec models.Record, geom orb.Geometry) string {
	volatile := make(map[string]bool, len(b.opts.VolatileFields))
	for _, f := range b.opts.VolatileFields {
		volatile[f] = true
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		if !volatile[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\n", k, canonicalValue(rec[k]))
	}
	if geom != nil {
		if data, err := json.Marshal(geojson.NewGeometry(geom)); err == nil {
			h.Write(data)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalValue(value interface{}) string {
	if isBlank(value) {
		return ""
	}
	if f, ok := toFloat(value); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return asString(value)
}

func (b *BatchValidator) computeStatistics(result *models.BatchValidationResult, worst map[int]models.Severity) models.QualityStatistics {
	stats := models.QualityStatistics{
		TotalRecords:      result.TotalRecords,
		TotalIssues:       len(result.Issues),
		RecordsWithIssues: len(worst),
		BySeverity:        make(map[string]int),
		ByDimension:       make(map[string]int),
		ByRule:            make(map[string]int),
		ByField:           make(map[string]int),
	}

	for _, issue := range result.Issues {
		stats.BySeverity[issue.Rule.Severity.String()]++
		stats.ByDimension[string(issue.Rule.Dimension)]++
		stats.ByRule[issue.Rule.ID]++
		stats.ByField[issue.FieldName]++
	}

	stats.TopRules = topRules(stats.ByRule, b.opts.TopN)

	if stats.TotalRecords > 0 {
		stats.AffectedFraction = float64(stats.RecordsWithIssues) / float64(stats.TotalRecords)
	}
	stats.QualityScore = Score(worst, stats.TotalRecords)
	stats.Rating = models.RatingForScore(stats.QualityScore)
	return stats
}

// Score computes the 0-100 quality score: every affected record is
// weighted by its single worst severity, so a record with twenty LOW
// issues is penalized identically to one with a single LOW issue.
func Score(worstPerRecord map[int]models.Severity, totalRecords int) float64 {
	if totalRecords == 0 {
		return 100
	}
	penalty := 0.0
	for _, sev := range worstPerRecord {
		penalty += sev.Weight()
	}
	score := 100 * (1 - penalty/float64(totalRecords))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func topRules(byRule map[string]int, n int) []models.RuleCount {
	counts := make([]models.RuleCount, 0, len(byRule))
	for id, count := range byRule {
		counts = append(counts, models.RuleCount{RuleID: id, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].RuleID < counts[j].RuleID
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
