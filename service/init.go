/*
 * @module service/init
 * @description Service initialization: database connection, schema migration
 *              and assembly of the validation engine with its sources and sinks
 * @architecture Layered architecture - service layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Connect database -> migrate -> load whitelists and boundaries ->
 *            wire services -> start scheduler
 * @rules All hard dependencies must be ready before the API serves requests;
 *        Redis and Kafka are optional and degrade with a warning
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs main.go, service/quality_service.go
 */

package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"geoquality-service/service/geospatial"
	"geoquality-service/service/models"
	"geoquality-service/service/quality"
	"geoquality-service/service/scheduler"
	"geoquality-service/service/sink"
	"geoquality-service/service/source"
)

var (
	DB                   *gorm.DB
	GlobalQualityService *QualityService
	GlobalScheduler      *scheduler.QualityScheduler
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase connects to PostgreSQL using DATABASE_URL or the split
// DB_* environment variables.
func initDatabase() {
	var dsn string

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "geoquality")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=America/Bogota",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	log.Println("database connected")
}

// getEnvWithDefault reads an environment variable with a fallback.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations migrates the report document schema.
func runMigrations() {
	log.Println("running database migrations...")

	if err := DB.AutoMigrate(
		&models.RecordReportDocument{},
		&models.GroupReportDocument{},
		&models.SummaryReportDocument{},
		&models.ChangelogEntry{},
	); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	log.Println("database migrations complete")
}

// initServices wires the validation engine, sources, sinks and scheduler.
func initServices() {
	whitelists := loadWhitelists()
	boundaries := loadBoundaries()

	validator := quality.NewValidator(whitelists, boundaries, nil)

	var cache *sink.ReportCache
	if os.Getenv("REDIS_HOST") != "" {
		var err error
		if cache, err = sink.NewReportCache(); err != nil {
			slog.Warn("report cache disabled", "error", err)
			cache = nil
		}
	}

	var publisher *sink.ChangelogPublisher
	if os.Getenv("KAFKA_BROKERS") != "" {
		publisher = sink.NewChangelogPublisher()
	}

	src := source.NewGeoJSONSource(getEnvWithDefault("SOURCE_GEOJSON_PATH", "data/obras.geojson"))
	GlobalQualityService = NewQualityService(DB, src, validator, cache, publisher)

	spec := getEnvWithDefault("VALIDATION_CRON", "0 0 2 * * *")
	GlobalScheduler = scheduler.NewQualityScheduler(spec, func(ctx context.Context) error {
		_, err := GlobalQualityService.RunValidation(ctx)
		return err
	})
	if err := GlobalScheduler.Start(); err != nil {
		log.Printf("scheduler start failed: %v", err)
	}

	log.Println("service initialization complete")
}

// loadWhitelists reads the controlled-vocabulary file; an absent file
// disables the whitelist-backed thematic rules.
func loadWhitelists() quality.Whitelists {
	path := getEnvWithDefault("WHITELISTS_PATH", "data/whitelists.json")
	whitelists, err := quality.LoadWhitelists(path)
	if err != nil {
		slog.Warn("whitelists unavailable, thematic vocabulary rules disabled", "path", path, "error", err)
		return quality.Whitelists{}
	}
	slog.Info("whitelists loaded", "path", path, "fields", len(whitelists))
	return whitelists
}

// loadBoundaries reads the comuna and barrio boundary layers; absent
// files disable the two containment rules.
func loadBoundaries() quality.BoundaryProvider {
	comunaPath := getEnvWithDefault("COMUNAS_GEOJSON_PATH", "data/comunas.geojson")
	barrioPath := getEnvWithDefault("BARRIOS_GEOJSON_PATH", "data/barrios.geojson")
	nameProperty := getEnvWithDefault("BOUNDARY_NAME_PROPERTY", "nombre")

	index, err := geospatial.LoadBoundaryIndex(comunaPath, barrioPath, nameProperty)
	if err != nil {
		slog.Warn("boundary layers unavailable, containment rules disabled", "error", err)
		return nil
	}
	slog.Info("boundary layers loaded", "comunas", comunaPath, "barrios", barrioPath)
	return index
}
