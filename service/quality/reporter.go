/*
 * @module service/quality/reporter
 * @description Reporter: projects one BatchValidationResult into the three
 *              report tiers (record, group, summary) plus UI filter metadata
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow BatchValidationResult -> Reporter -> RecordReport / GroupReport /
 *            SummaryReport / CategoricalMetadata -> sinks
 * @rules Identical input produces identical report content and run ID; reports
 *        never feed back into validation
 * @dependencies crypto/sha256, sort
 * @refs service/quality/batch.go, service/sink
 */

package quality

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"geoquality-service/service/models"
)

// Reporter turns one validation result into downstream report documents.
type Reporter struct {
	result *models.BatchValidationResult
	runID  string

	byRecord map[int][]models.QualityIssue
	byGroup  map[string][]models.QualityIssue
}

// NewReporter indexes one result for report generation. RunID is
// deterministic: the run timestamp plus a content hash, so re-reporting
// the same result always names the same run.
func NewReporter(result *models.BatchValidationResult) *Reporter {
	r := &Reporter{
		result:   result,
		byRecord: make(map[int][]models.QualityIssue),
		byGroup:  make(map[string][]models.QualityIssue),
	}
	for _, issue := range result.Issues {
		r.byRecord[issue.RecordIndex] = append(r.byRecord[issue.RecordIndex], issue)
		r.byGroup[issue.Group] = append(r.byGroup[issue.Group], issue)
	}
	r.runID = buildRunID(result)
	return r
}

// RunID returns the deterministic identifier of this run.
func (r *Reporter) RunID() string {
	return r.runID
}

func buildRunID(result *models.BatchValidationResult) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s\n", result.TotalRecords, len(result.Issues), result.GroupingKey)
	for _, issue := range result.Issues {
		fmt.Fprintf(h, "%d|%s|%s\n", issue.RecordIndex, issue.Rule.ID, issue.FieldName)
	}
	digest := hex.EncodeToString(h.Sum(nil))
	return result.RunAt.UTC().Format("20060102T150405Z") + "-" + digest[:8]
}

// RecordLevelReports builds one report per record with at least one
// issue, sorted worst severity first, then issue count, then key.
func (r *Reporter) RecordLevelReports() []models.RecordReport {
	now := time.Now().UTC()
	reports := make([]models.RecordReport, 0, len(r.byRecord))

	for idx, issues := range r.byRecord {
		worst := models.SeverityInfo
		counts := make(map[models.Severity]int)
		for _, issue := range issues {
			counts[issue.Rule.Severity]++
			if issue.Rule.Severity > worst {
				worst = issue.Rule.Severity
			}
		}

		key := issues[0].RecordKey
		if key == "" {
			// Records without any identifier still need a stable key.
			key = fmt.Sprintf("record-%d", idx)
		}

		reports = append(reports, models.RecordReport{
			RunID:         r.runID,
			RecordKey:     key,
			RecordName:    issues[0].RecordName,
			Group:         issues[0].Group,
			Priority:      priorityFor(counts),
			WorstSeverity: worst,
			IssueCount:    len(issues),
			Issues:        issues,
			GeneratedAt:   now,
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].WorstSeverity != reports[j].WorstSeverity {
			return reports[i].WorstSeverity > reports[j].WorstSeverity
		}
		if reports[i].IssueCount != reports[j].IssueCount {
			return reports[i].IssueCount > reports[j].IssueCount
		}
		return reports[i].RecordKey < reports[j].RecordKey
	})
	return reports
}

// priorityFor derives the urgency tier from the severity histogram of
// one record. Thresholds are fixed product policy.
func priorityFor(counts map[models.Severity]int) models.Priority {
	switch {
	case counts[models.SeverityCritical] >= 5:
		return models.PriorityP0
	case counts[models.SeverityCritical] > 0 || counts[models.SeverityHigh] >= 10:
		return models.PriorityP1
	case counts[models.SeverityHigh] > 0 || counts[models.SeverityMedium] >= 15:
		return models.PriorityP2
	default:
		return models.PriorityP3
	}
}

// GroupLevelReports builds one report per grouping-key value, including
// groups whose records are all clean, sorted by group name.
func (r *Reporter) GroupLevelReports() []models.GroupReport {
	now := time.Now().UTC()

	groups := make([]string, 0, len(r.result.GroupTotals))
	for group := range r.result.GroupTotals {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	reports := make([]models.GroupReport, 0, len(groups))
	for _, group := range groups {
		total := r.result.GroupTotals[group]
		issues := r.byGroup[group]

		worstByRecord := make(map[int]models.Severity)
		sevCounts := make(map[string]int)
		fieldCounts := make(map[string]int)
		ruleCounts := make(map[string]int)
		for _, issue := range issues {
			if sev, ok := worstByRecord[issue.RecordIndex]; !ok || issue.Rule.Severity > sev {
				worstByRecord[issue.RecordIndex] = issue.Rule.Severity
			}
			sevCounts[issue.Rule.Severity.String()]++
			fieldCounts[issue.FieldName]++
			ruleCounts[issue.Rule.ID]++
		}

		errorRate := 0.0
		if total > 0 {
			errorRate = float64(len(worstByRecord)) / float64(total)
		}
		score := Score(worstByRecord, total)

		reports = append(reports, models.GroupReport{
			RunID:             r.runID,
			Group:             group,
			TotalRecords:      total,
			RecordsWithIssues: len(worstByRecord),
			ErrorRate:         errorRate,
			QualityScore:      score,
			Status:            groupStatus(score, errorRate),
			SeverityCounts:    sevCounts,
			TopFields:         topFields(fieldCounts, 5),
			TopRules:          topRules(ruleCounts, 5),
			GeneratedAt:       now,
		})
	}
	return reports
}

// groupStatus combines score and error rate into the group status band.
// The stricter condition wins: a high score with a high error rate
// drops out of the top bands.
func groupStatus(score, errorRate float64) string {
	switch {
	case score >= 90 && errorRate <= 0.10:
		return models.GroupStatusExcellent
	case score >= 75 && errorRate <= 0.25:
		return models.GroupStatusGood
	case score >= 60:
		return models.GroupStatusFair
	case score >= 40:
		return models.GroupStatusPoor
	default:
		return models.GroupStatusCritical
	}
}

func topFields(byField map[string]int, n int) []models.FieldCount {
	counts := make([]models.FieldCount, 0, len(byField))
	for field, count := range byField {
		counts = append(counts, models.FieldCount{FieldName: field, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].FieldName < counts[j].FieldName
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// SummaryReport builds the single global roll-up with actionable
// recommendations.
func (r *Reporter) SummaryReport(groupReports []models.GroupReport) models.SummaryReport {
	stats := r.result.Statistics

	ranked := make([]models.GroupScore, 0, len(groupReports))
	for _, gr := range groupReports {
		ranked = append(ranked, models.GroupScore{Group: gr.Group, QualityScore: gr.QualityScore})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].QualityScore != ranked[j].QualityScore {
			return ranked[i].QualityScore > ranked[j].QualityScore
		}
		return ranked[i].Group < ranked[j].Group
	})

	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	bottom := make([]models.GroupScore, 0, 5)
	for i := len(ranked) - 1; i >= 0 && len(bottom) < 5; i-- {
		bottom = append(bottom, ranked[i])
	}

	return models.SummaryReport{
		RunID:              r.runID,
		TotalRecords:       stats.TotalRecords,
		TotalIssues:        stats.TotalIssues,
		RecordsWithIssues:  stats.RecordsWithIssues,
		QualityScore:       stats.QualityScore,
		Rating:             stats.Rating,
		SeverityHistogram:  stats.BySeverity,
		DimensionHistogram: stats.ByDimension,
		DuplicateGroups:    len(r.result.DuplicateGroups),
		TopGroups:          top,
		BottomGroups:       bottom,
		Recommendations:    r.recommendations(groupReports),
		GeneratedAt:        time.Now().UTC(),
	}
}

func (r *Reporter) recommendations(groupReports []models.GroupReport) []string {
	stats := r.result.Statistics
	recs := make([]string, 0, 4)

	if critical := stats.BySeverity[models.SeverityCritical.String()]; critical > 0 {
		recs = append(recs, fmt.Sprintf("resolve the %d CRITICAL issue(s) before the next publication", critical))
	}

	if dominant, count := dominantDimension(stats.ByDimension); count > 0 && stats.TotalIssues > 0 &&
		float64(count)/float64(stats.TotalIssues) >= 0.4 {
		recs = append(recs, fmt.Sprintf("%s accounts for %d of %d issues; prioritize fixes in that dimension", dominant, count, stats.TotalIssues))
	}

	var weak []string
	for _, gr := range groupReports {
		if gr.QualityScore < 60 {
			weak = append(weak, gr.Group)
		}
	}
	if len(weak) > 0 {
		recs = append(recs, fmt.Sprintf("schedule data-entry training for %d unit(s) scoring below 60: %s", len(weak), joinLimited(weak, 5)))
	}

	if n := len(r.result.DuplicateGroups); n > 0 {
		recs = append(recs, fmt.Sprintf("consolidate %d duplicate record group(s) before publication", n))
	}
	return recs
}

func dominantDimension(byDimension map[string]int) (string, int) {
	best, bestCount := "", 0
	for dim, count := range byDimension {
		if count > bestCount || (count == bestCount && dim < best) {
			best, bestCount = dim, count
		}
	}
	return best, bestCount
}

func joinLimited(items []string, n int) string {
	sort.Strings(items)
	if len(items) <= n {
		data, _ := json.Marshal(items)
		return string(data)
	}
	data, _ := json.Marshal(items[:n])
	return fmt.Sprintf("%s and %d more", data, len(items)-n)
}

// Metadata collects the distinct categorical values and numeric ranges a
// UI needs to build filters over this run's reports.
func (r *Reporter) Metadata(groupReports []models.GroupReport) models.CategoricalMetadata {
	ruleIDs := make(map[string]bool)
	groups := make(map[string]bool)
	for _, issue := range r.result.Issues {
		ruleIDs[issue.Rule.ID] = true
	}
	for group := range r.result.GroupTotals {
		groups[group] = true
	}

	scores := make([]float64, 0, len(groupReports))
	errorRates := make([]float64, 0, len(groupReports))
	for _, gr := range groupReports {
		scores = append(scores, gr.QualityScore)
		errorRates = append(errorRates, gr.ErrorRate)
	}

	dims := make([]string, 0, 5)
	for _, d := range models.AllDimensions() {
		dims = append(dims, string(d))
	}

	return models.CategoricalMetadata{
		RunID:      r.runID,
		Severities: []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"},
		Dimensions: dims,
		RuleIDs:    sortedKeys(ruleIDs),
		Groups:     sortedKeys(groups),
		Priorities: []string{
			string(models.PriorityP0), string(models.PriorityP1),
			string(models.PriorityP2), string(models.PriorityP3),
		},
		ScoreRange:     rangeOf(scores),
		ErrorRateRange: rangeOf(errorRates),
		SeverityColors: models.SeverityPalette,
		GeneratedAt:    time.Now().UTC(),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rangeOf(values []float64) models.NumericRange {
	if len(values) == 0 {
		return models.NumericRange{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return models.NumericRange{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: median,
	}
}
