/*
 * @module service/sink/document_sink
 * @description Database sink: upserts report documents keyed by their natural
 *              identifier and appends changelog entries when monitored fields
 *              of an existing document change between runs
 * @architecture Layered architecture - persistence layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Reports -> diff against stored documents -> upsert + changelog
 * @rules Writes are idempotent per run: re-persisting identical reports
 *        produces no new changelog entries
 * @dependencies gorm.io/gorm, gorm.io/gorm/clause
 * @refs service/models/document_models.go, service/quality/reporter.go
 */

package sink

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"geoquality-service/service/models"
)

// DocumentSink persists report documents through gorm.
type DocumentSink struct {
	db *gorm.DB
}

// NewDocumentSink creates a sink over an initialized database handle.
func NewDocumentSink(db *gorm.DB) *DocumentSink {
	return &DocumentSink{db: db}
}

// SaveRecordReports upserts the record-level documents and returns the
// changelog entries produced by monitored-field changes.
func (s *DocumentSink) SaveRecordReports(reports []models.RecordReport) ([]models.ChangelogEntry, error) {
	var changelog []models.ChangelogEntry

	for _, report := range reports {
		doc := models.RecordReportDocument{
			ID:            report.RecordKey,
			RunID:         report.RunID,
			RecordName:    report.RecordName,
			GroupName:     report.Group,
			Priority:      string(report.Priority),
			WorstSeverity: report.WorstSeverity.String(),
			IssueCount:    report.IssueCount,
			RuleIDs:       ruleIDsOf(report.Issues),
			Payload: models.JSONB{
				"issues":       report.Issues,
				"generated_at": report.GeneratedAt,
			},
		}

		var existing models.RecordReportDocument
		err := s.db.Where("id = ?", doc.ID).First(&existing).Error
		switch {
		case err == nil:
			changelog = append(changelog, diffRecordDocument(existing, doc)...)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("load record report %s: %w", doc.ID, err)
		}

		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&doc).Error; err != nil {
			return nil, fmt.Errorf("upsert record report %s: %w", doc.ID, err)
		}
	}

	if len(changelog) > 0 {
		if err := s.db.Create(&changelog).Error; err != nil {
			return nil, fmt.Errorf("append changelog entries: %w", err)
		}
	}
	return changelog, nil
}

// diffRecordDocument compares the monitored fields of the stored and
// incoming documents. Only real changes produce entries; the run ID
// changing alone does not.
func diffRecordDocument(old, new models.RecordReportDocument) []models.ChangelogEntry {
	now := time.Now().UTC()
	var entries []models.ChangelogEntry

	addEntry := func(field, oldVal, newVal string) {
		if oldVal == newVal {
			return
		}
		entries = append(entries, models.ChangelogEntry{
			DocumentID: new.ID,
			RunID:      new.RunID,
			FieldName:  field,
			OldValue:   oldVal,
			NewValue:   newVal,
			ChangedAt:  now,
		})
	}

	addEntry("priority", old.Priority, new.Priority)
	addEntry("worst_severity", old.WorstSeverity, new.WorstSeverity)
	addEntry("issue_count", strconv.Itoa(old.IssueCount), strconv.Itoa(new.IssueCount))
	return entries
}

func ruleIDsOf(issues []models.QualityIssue) []string {
	set := make(map[string]bool, len(issues))
	for _, issue := range issues {
		set[issue.Rule.ID] = true
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SaveGroupReports upserts the group-level documents keyed by group name.
func (s *DocumentSink) SaveGroupReports(reports []models.GroupReport) error {
	for _, report := range reports {
		doc := models.GroupReportDocument{
			ID:                report.Group,
			RunID:             report.RunID,
			TotalRecords:      report.TotalRecords,
			RecordsWithIssues: report.RecordsWithIssues,
			ErrorRate:         report.ErrorRate,
			QualityScore:      report.QualityScore,
			Status:            report.Status,
			Payload: models.JSONB{
				"severity_counts": report.SeverityCounts,
				"top_fields":      report.TopFields,
				"top_rules":       report.TopRules,
				"generated_at":    report.GeneratedAt,
			},
		}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&doc).Error; err != nil {
			return fmt.Errorf("upsert group report %s: %w", doc.ID, err)
		}
	}
	return nil
}

// SaveSummaryReport inserts the summary document for one run. Summaries
// are historical: one row per run ID, never updated.
func (s *DocumentSink) SaveSummaryReport(report models.SummaryReport) error {
	doc := models.SummaryReportDocument{
		RunID:        report.RunID,
		TotalRecords: report.TotalRecords,
		TotalIssues:  report.TotalIssues,
		QualityScore: report.QualityScore,
		Rating:       report.Rating,
		Payload: models.JSONB{
			"records_with_issues": report.RecordsWithIssues,
			"severity_histogram":  report.SeverityHistogram,
			"dimension_histogram": report.DimensionHistogram,
			"duplicate_groups":    report.DuplicateGroups,
			"top_groups":          report.TopGroups,
			"bottom_groups":       report.BottomGroups,
			"recommendations":     report.Recommendations,
			"generated_at":        report.GeneratedAt,
		},
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}},
		DoNothing: true,
	}).Create(&doc).Error; err != nil {
		return fmt.Errorf("insert summary report %s: %w", report.RunID, err)
	}
	return nil
}

// ListRecordReports pages stored record documents, optionally filtered
// by group and priority.
func (s *DocumentSink) ListRecordReports(group, priority string, page, size int) ([]models.RecordReportDocument, int64, error) {
	query := s.db.Model(&models.RecordReportDocument{})
	if group != "" {
		query = query.Where("group_name = ?", group)
	}
	if priority != "" {
		query = query.Where("priority = ?", priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count record reports: %w", err)
	}

	var docs []models.RecordReportDocument
	if err := query.Order("priority asc, issue_count desc").
		Offset((page - 1) * size).Limit(size).Find(&docs).Error; err != nil {
		return nil, 0, fmt.Errorf("list record reports: %w", err)
	}
	return docs, total, nil
}

// GetRecordReport loads one record document by its natural key.
func (s *DocumentSink) GetRecordReport(id string) (*models.RecordReportDocument, error) {
	var doc models.RecordReportDocument
	err := s.db.Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load record report %s: %w", id, err)
	}
	return &doc, nil
}

// ListGroupReports returns all stored group documents ordered by score.
func (s *DocumentSink) ListGroupReports() ([]models.GroupReportDocument, error) {
	var docs []models.GroupReportDocument
	if err := s.db.Order("quality_score asc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list group reports: %w", err)
	}
	return docs, nil
}

// LatestSummary returns the most recent summary document.
func (s *DocumentSink) LatestSummary() (*models.SummaryReportDocument, error) {
	var doc models.SummaryReportDocument
	err := s.db.Order("created_at desc").First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest summary: %w", err)
	}
	return &doc, nil
}

// ListChangelog pages the append-only changelog, newest first.
func (s *DocumentSink) ListChangelog(documentID string, page, size int) ([]models.ChangelogEntry, int64, error) {
	query := s.db.Model(&models.ChangelogEntry{})
	if documentID != "" {
		query = query.Where("document_id = ?", documentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count changelog entries: %w", err)
	}

	var entries []models.ChangelogEntry
	if err := query.Order("changed_at desc").
		Offset((page - 1) * size).Limit(size).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list changelog entries: %w", err)
	}
	return entries, total, nil
}
