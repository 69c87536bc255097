/*
 * @module service/sink/report_cache
 * @description Redis cache for the latest summary report and filter metadata so
 *              dashboards read hot data without touching the database
 * @architecture Layered architecture - caching layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Reporter output -> JSON -> Redis SET with TTL -> dashboard GET
 * @rules Cache writes are best-effort; a Redis outage never fails a run
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/quality_service.go
 */

package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"geoquality-service/service/models"
)

const (
	latestSummaryKey  = "geoquality:summary:latest"
	latestMetadataKey = "geoquality:metadata:latest"
)

// ReportCache caches the freshest run outputs in Redis.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates the cache from environment configuration and
// verifies the connection.
func NewReportCache() (*ReportCache, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	slog.Info("report cache initialized", "redis_host", host, "redis_port", port)
	return &ReportCache{client: client, ttl: 24 * time.Hour}, nil
}

// StoreRun caches the summary and metadata of the latest run.
func (c *ReportCache) StoreRun(ctx context.Context, summary models.SummaryReport, metadata models.CategoricalMetadata) error {
	if err := c.setJSON(ctx, latestSummaryKey, summary); err != nil {
		return fmt.Errorf("cache summary report: %w", err)
	}
	if err := c.setJSON(ctx, latestMetadataKey, metadata); err != nil {
		return fmt.Errorf("cache run metadata: %w", err)
	}
	return nil
}

// LatestSummary loads the cached summary; found=false means cache miss.
func (c *ReportCache) LatestSummary(ctx context.Context) (models.SummaryReport, bool, error) {
	var summary models.SummaryReport
	found, err := c.getJSON(ctx, latestSummaryKey, &summary)
	return summary, found, err
}

// LatestMetadata loads the cached filter metadata.
func (c *ReportCache) LatestMetadata(ctx context.Context) (models.CategoricalMetadata, bool, error) {
	var metadata models.CategoricalMetadata
	found, err := c.getJSON(ctx, latestMetadataKey, &metadata)
	return metadata, found, err
}

func (c *ReportCache) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *ReportCache) getJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, out)
}

// Close releases the Redis connection pool.
func (c *ReportCache) Close() error {
	return c.client.Close()
}

func getEnvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
