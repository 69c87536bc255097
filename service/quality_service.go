/*
 * @module service/quality_service
 * @description Orchestration service for validation runs: loads records from
 *              the configured source, runs the batch validator, builds the
 *              three report tiers and fans results out to the sinks
 * @architecture Layered architecture - service layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Source load -> batch validation -> reports -> database upsert ->
 *            cache -> changelog publish
 * @rules Database persistence is authoritative; cache and Kafka are
 *        best-effort and only log on failure
 * @dependencies service/quality, service/sink, service/source,
 *               github.com/prometheus/client_golang
 * @refs service/init.go, api/controllers/quality_controller.go
 */

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"geoquality-service/service/models"
	"geoquality-service/service/quality"
	"geoquality-service/service/sink"
)

var (
	metricRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoquality_validation_runs_total",
		Help: "Validation runs by outcome.",
	}, []string{"outcome"})
	metricRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geoquality_records_validated_total",
		Help: "Records processed by the batch validator.",
	})
	metricIssues = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geoquality_issues_detected_total",
		Help: "Issues detected, by severity.",
	}, []string{"severity"})
	metricScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "geoquality_last_run_score",
		Help: "Quality score of the most recent run.",
	})
)

// RecordSource yields the records of one dataset for validation.
type RecordSource interface {
	Name() string
	Load() ([]quality.SourceRecord, error)
}

// RunOutcome is the API-facing summary of one completed run.
type RunOutcome struct {
	RunID            string    `json:"run_id"`
	Source           string    `json:"source"`
	TotalRecords     int       `json:"total_records"`
	TotalIssues      int       `json:"total_issues"`
	DuplicateGroups  int       `json:"duplicate_groups"`
	QualityScore     float64   `json:"quality_score"`
	Rating           string    `json:"rating"`
	RecordReports    int       `json:"record_reports"`
	GroupReports     int       `json:"group_reports"`
	ChangelogEntries int       `json:"changelog_entries"`
	StartedAt        time.Time `json:"started_at"`
	Duration         string    `json:"duration"`
}

// QualityService wires the validation engine to its sources and sinks.
type QualityService struct {
	validator *quality.Validator
	batch     *quality.BatchValidator
	source    RecordSource
	documents *sink.DocumentSink
	cache     *sink.ReportCache
	publisher *sink.ChangelogPublisher

	mu      sync.Mutex
	lastRun *RunOutcome
}

// NewQualityService assembles the orchestration service. cache and
// publisher may be nil; those sinks are then skipped.
func NewQualityService(db *gorm.DB, src RecordSource, validator *quality.Validator,
	cache *sink.ReportCache, publisher *sink.ChangelogPublisher) *QualityService {
	return &QualityService{
		validator: validator,
		batch:     quality.NewBatchValidator(validator, nil),
		source:    src,
		documents: sink.NewDocumentSink(db),
		cache:     cache,
		publisher: publisher,
	}
}

// Validator exposes the configured record validator.
func (s *QualityService) Validator() *quality.Validator {
	return s.validator
}

// Documents exposes the database sink for read endpoints.
func (s *QualityService) Documents() *sink.DocumentSink {
	return s.documents
}

// Cache exposes the report cache; may be nil.
func (s *QualityService) Cache() *sink.ReportCache {
	return s.cache
}

// LastRun returns the outcome of the most recent run, or nil.
func (s *QualityService) LastRun() *RunOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// RunValidation executes one full run: load, validate, report, persist.
func (s *QualityService) RunValidation(ctx context.Context) (*RunOutcome, error) {
	started := time.Now()
	slog.Info("validation run starting", "source", s.source.Name())

	records, err := s.source.Load()
	if err != nil {
		metricRuns.WithLabelValues("load_error").Inc()
		return nil, fmt.Errorf("load records from %s: %w", s.source.Name(), err)
	}

	result := s.batch.ValidateAll(records)
	metricRecords.Add(float64(result.TotalRecords))
	for sev, count := range result.Statistics.BySeverity {
		metricIssues.WithLabelValues(sev).Add(float64(count))
	}
	metricScore.Set(result.Statistics.QualityScore)

	reporter := quality.NewReporter(result)
	recordReports := reporter.RecordLevelReports()
	groupReports := reporter.GroupLevelReports()
	summary := reporter.SummaryReport(groupReports)
	metadata := reporter.Metadata(groupReports)

	changelog, err := s.persist(recordReports, groupReports, summary)
	if err != nil {
		metricRuns.WithLabelValues("persist_error").Inc()
		return nil, err
	}

	s.fanOut(ctx, summary, metadata, changelog)

	outcome := &RunOutcome{
		RunID:            reporter.RunID(),
		Source:           s.source.Name(),
		TotalRecords:     result.TotalRecords,
		TotalIssues:      len(result.Issues),
		DuplicateGroups:  len(result.DuplicateGroups),
		QualityScore:     result.Statistics.QualityScore,
		Rating:           result.Statistics.Rating,
		RecordReports:    len(recordReports),
		GroupReports:     len(groupReports),
		ChangelogEntries: len(changelog),
		StartedAt:        started.UTC(),
		Duration:         time.Since(started).String(),
	}

	s.mu.Lock()
	s.lastRun = outcome
	s.mu.Unlock()

	metricRuns.WithLabelValues("success").Inc()
	slog.Info("validation run finished",
		"run_id", outcome.RunID,
		"records", outcome.TotalRecords,
		"issues", outcome.TotalIssues,
		"score", outcome.QualityScore,
		"rating", outcome.Rating,
		"duration", outcome.Duration)
	return outcome, nil
}

func (s *QualityService) persist(recordReports []models.RecordReport,
	groupReports []models.GroupReport, summary models.SummaryReport) ([]models.ChangelogEntry, error) {
	changelog, err := s.documents.SaveRecordReports(recordReports)
	if err != nil {
		return nil, fmt.Errorf("persist record reports: %w", err)
	}
	if err := s.documents.SaveGroupReports(groupReports); err != nil {
		return nil, fmt.Errorf("persist group reports: %w", err)
	}
	if err := s.documents.SaveSummaryReport(summary); err != nil {
		return nil, fmt.Errorf("persist summary report: %w", err)
	}
	return changelog, nil
}

// fanOut pushes run outputs to the best-effort sinks.
func (s *QualityService) fanOut(ctx context.Context, summary models.SummaryReport,
	metadata models.CategoricalMetadata, changelog []models.ChangelogEntry) {
	if s.cache != nil {
		if err := s.cache.StoreRun(ctx, summary, metadata); err != nil {
			slog.Warn("report cache update failed", "error", err)
		}
	}
	if s.publisher != nil && len(changelog) > 0 {
		if err := s.publisher.Publish(ctx, changelog); err != nil {
			slog.Warn("changelog publish failed", "error", err, "entries", len(changelog))
		}
	}
}
