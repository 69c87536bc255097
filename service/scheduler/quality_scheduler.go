/*
 * @module service/scheduler/quality_scheduler
 * @description Cron scheduler for recurring validation runs over the configured
 *              record source, with overlap protection
 * @architecture Layered architecture - service layer
 * @documentReference dev_docs/quality_engine_design.md
 * @stateFlow Start scheduler -> cron fires -> trigger validation run -> persist
 * @rules At most one run executes at a time; an overdue fire is skipped, never
 *        queued
 * @dependencies github.com/robfig/cron/v3
 * @refs service/quality_service.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc executes one full validation run.
type RunFunc func(ctx context.Context) error

// QualityScheduler triggers validation runs on a cron schedule.
type QualityScheduler struct {
	cron    *cron.Cron
	run     RunFunc
	spec    string
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	running int32
}

// NewQualityScheduler creates a scheduler with a six-field cron spec
// (seconds included), e.g. "0 0 2 * * *" for daily 02:00 runs.
func NewQualityScheduler(spec string, run RunFunc) *QualityScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &QualityScheduler{
		cron:   cron.New(cron.WithSeconds()),
		run:    run,
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the schedule and starts the cron loop.
func (qs *QualityScheduler) Start() error {
	if qs.started {
		return fmt.Errorf("scheduler already started")
	}

	if _, err := qs.cron.AddFunc(qs.spec, qs.fire); err != nil {
		return fmt.Errorf("register cron spec %q: %w", qs.spec, err)
	}

	qs.cron.Start()
	qs.started = true
	slog.Info("quality scheduler started", "spec", qs.spec)
	return nil
}

// Stop halts the cron loop and cancels any in-flight run.
func (qs *QualityScheduler) Stop() {
	if !qs.started {
		return
	}
	qs.cancel()
	qs.cron.Stop()
	qs.started = false
	slog.Info("quality scheduler stopped")
}

// fire executes one run unless another is still in flight.
func (qs *QualityScheduler) fire() {
	if !atomic.CompareAndSwapInt32(&qs.running, 0, 1) {
		slog.Warn("scheduled validation run skipped, previous run still in flight")
		return
	}
	defer atomic.StoreInt32(&qs.running, 0)

	started := time.Now()
	slog.Info("scheduled validation run starting")

	if err := qs.run(qs.ctx); err != nil {
		slog.Error("scheduled validation run failed", "error", err, "duration", time.Since(started))
		return
	}
	slog.Info("scheduled validation run finished", "duration", time.Since(started))
}

// TriggerNow runs immediately with the same overlap protection.
func (qs *QualityScheduler) TriggerNow() error {
	if !atomic.CompareAndSwapInt32(&qs.running, 0, 1) {
		return fmt.Errorf("a validation run is already in flight")
	}
	defer atomic.StoreInt32(&qs.running, 0)
	return qs.run(qs.ctx)
}
