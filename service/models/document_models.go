/*
 * @module service/models/document_models
 * @description Persisted report documents and the append-only changelog. Record
 *              and group documents are keyed by their natural identifier so
 *              reruns upsert in place; the run ID is stamped for audit.
 * @architecture Layered architecture - persistence model layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Reporter output -> sink upsert -> changelog append on field change
 * @dependencies gorm.io/gorm, github.com/lib/pq, time
 * @refs service/sink/document_sink.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RecordReportDocument is the persisted record-level report, one row per
// offending record, keyed by the record's natural identifier (BPIN).
type RecordReportDocument struct {
	ID            string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	RunID         string         `gorm:"type:varchar(100);not null;index" json:"run_id"`
	RecordName    string         `gorm:"type:varchar(500)" json:"record_name"`
	GroupName     string         `gorm:"type:varchar(200);index" json:"group_name"`
	Priority      string         `gorm:"type:varchar(10);index" json:"priority"`
	WorstSeverity string         `gorm:"type:varchar(20)" json:"worst_severity"`
	IssueCount    int            `json:"issue_count"`
	RuleIDs       pq.StringArray `gorm:"type:text[]" json:"rule_ids"`
	Payload       JSONB          `gorm:"type:jsonb" json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName specifies the table name.
func (RecordReportDocument) TableName() string {
	return "record_report_documents"
}

// GroupReportDocument is the persisted group-level report, keyed by the
// grouping key value (organizational unit name).
type GroupReportDocument struct {
	ID                string    `gorm:"type:varchar(200);primaryKey" json:"id"`
	RunID             string    `gorm:"type:varchar(100);not null;index" json:"run_id"`
	TotalRecords      int       `json:"total_records"`
	RecordsWithIssues int       `json:"records_with_issues"`
	ErrorRate         float64   `json:"error_rate"`
	QualityScore      float64   `json:"quality_score"`
	Status            string    `gorm:"type:varchar(20)" json:"status"`
	Payload           JSONB     `gorm:"type:jsonb" json:"payload"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name.
func (GroupReportDocument) TableName() string {
	return "group_report_documents"
}

// SummaryReportDocument is the persisted global summary, one row per run.
type SummaryReportDocument struct {
	ID           string    `gorm:"type:varchar(100);primaryKey" json:"id"`
	RunID        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"run_id"`
	TotalRecords int       `json:"total_records"`
	TotalIssues  int       `json:"total_issues"`
	QualityScore float64   `json:"quality_score"`
	Rating       string    `gorm:"type:varchar(30)" json:"rating"`
	Payload      JSONB     `gorm:"type:jsonb" json:"payload"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name.
func (SummaryReportDocument) TableName() string {
	return "summary_report_documents"
}

// BeforeCreate assigns an ID when none was provided.
func (s *SummaryReportDocument) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// ChangelogEntry is one append-only old-value/new-value entry, emitted
// only when a monitored field of an existing document actually changed.
type ChangelogEntry struct {
	ID         string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	DocumentID string    `gorm:"type:varchar(200);not null;index" json:"document_id"`
	RunID      string    `gorm:"type:varchar(100);not null" json:"run_id"`
	FieldName  string    `gorm:"type:varchar(100);not null" json:"field_name"`
	OldValue   string    `gorm:"type:text" json:"old_value"`
	NewValue   string    `gorm:"type:text" json:"new_value"`
	ChangedAt  time.Time `json:"changed_at"`
}

// TableName specifies the table name.
func (ChangelogEntry) TableName() string {
	return "report_changelog_entries"
}

// BeforeCreate assigns an ID when none was provided.
func (c *ChangelogEntry) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
