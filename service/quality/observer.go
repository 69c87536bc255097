/*
 * @module service/quality/observer
 * @description Run observer extension points: callers supply a structured
 *              observer invoked per detected issue and per completed run,
 *              decoupling the engine from any output format
 * @architecture Layered architecture - quality engine layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Issue detected -> OnIssue; run finished -> OnRunComplete
 * @dependencies log/slog
 * @refs service/quality/batch.go
 */

package quality

import (
	"log/slog"

	"geoquality-service/service/models"
)

// RunObserver receives engine events at well-defined extension points.
type RunObserver interface {
	OnIssue(issue models.QualityIssue)
	OnRunComplete(stats models.QualityStatistics)
}

// SlogObserver is the default observer: issues at debug level, the run
// summary at info level.
type SlogObserver struct{}

// OnIssue implements RunObserver.
func (SlogObserver) OnIssue(issue models.QualityIssue) {
	slog.Debug("quality issue detected",
		"rule_id", issue.Rule.ID,
		"severity", issue.Rule.Severity.String(),
		"field", issue.FieldName,
		"record_key", issue.RecordKey,
		"group", issue.Group,
	)
}

// OnRunComplete implements RunObserver.
func (SlogObserver) OnRunComplete(stats models.QualityStatistics) {
	slog.Info("validation run complete",
		"total_records", stats.TotalRecords,
		"total_issues", stats.TotalIssues,
		"records_with_issues", stats.RecordsWithIssues,
		"quality_score", stats.QualityScore,
		"rating", stats.Rating,
	)
}
