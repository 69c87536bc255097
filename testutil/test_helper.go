/*
 * @module testutil/test_helper
 * @description Test utilities: in-memory database, record factories and
 *              geometry builders shared across package tests
 * @architecture Test infrastructure - shared tools and data factories
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Test environment setup -> test data creation -> execution -> cleanup
 * @rules Factories produce valid records by default; tests break exactly the
 *        fields they exercise
 * @dependencies gorm, sqlite, github.com/paulmach/orb
 * @refs service/models, service/quality
 */

package testutil

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"geoquality-service/service/models"
)

// TestDB wraps an in-memory sqlite database with the report schema.
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB creates and migrates an in-memory test database.
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	err = db.AutoMigrate(
		&models.RecordReportDocument{},
		&models.GroupReportDocument{},
		&models.SummaryReportDocument{},
		&models.ChangelogEntry{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB truncates every table.
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"record_report_documents",
		"group_report_documents",
		"summary_report_documents",
		"report_changelog_entries",
	}
	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close releases the database connection.
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// RecordOption mutates a factory-built record.
type RecordOption func(models.Record)

// WithField sets one attribute.
func WithField(name string, value interface{}) RecordOption {
	return func(rec models.Record) {
		rec[name] = value
	}
}

// WithoutField removes one attribute.
func WithoutField(name string) RecordOption {
	return func(rec models.Record) {
		delete(rec, name)
	}
}

// ValidRecord builds a municipal project record that passes every rule.
func ValidRecord(opts ...RecordOption) models.Record {
	rec := models.Record{
		"bpin":                "2024760010001",
		"identificador":       "OBR-0001",
		"nombre":              "Mejoramiento vial Calle 5",
		"estado":              "En ejecución",
		"avance_obra":         45.0,
		"organismo":           "Secretaría de Infraestructura",
		"direccion":           "Calle 5 # 38-25",
		"comuna":              "Comuna 19",
		"barrio":              "El Lido",
		"crs":                 "EPSG:4326",
		"presupuesto":         1500000000.0,
		"vigencia":            2024,
		"fecha_inicio":        "2024-02-01",
		"fecha_fin":           "2025-06-30",
		"tipo_intervencion":   "Mantenimiento",
		"referencia_contrato": "CO1.PCCNTR.5551234",
		"fecha_creacion":      "2024-01-15",
	}
	for _, opt := range opts {
		opt(rec)
	}
	return rec
}

// CaliPoint returns a point inside the Cali urban bounding box.
func CaliPoint() orb.Point {
	return orb.Point{-76.53, 3.42}
}

// SquareAround builds a closed square polygon centered on p.
func SquareAround(p orb.Point, half float64) orb.Polygon {
	ring := orb.Ring{
		{p[0] - half, p[1] - half},
		{p[0] + half, p[1] - half},
		{p[0] + half, p[1] + half},
		{p[0] - half, p[1] + half},
		{p[0] - half, p[1] - half},
	}
	return orb.Polygon{ring}
}

// GenerateID builds a unique test identifier with a prefix.
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
