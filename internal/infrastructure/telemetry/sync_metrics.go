// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	domainsync "github.com/shop/backend/internal/domain/sync"
)

// SyncMetrics records catalog synchronization telemetry. It tracks how often
// each category match strategy fires and the per-run record outcomes, so
// drifting provider taxonomies show up as a shift in strategy distribution
// before they show up as unmatched products.
type SyncMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	matchTotal       *Counter
	runTotal         *Counter
	recordsProcessed *Counter
	recordsCreated   *Counter
	recordsUpdated   *Counter
	recordErrors     *Counter
}

// NewSyncMetrics creates a new SyncMetrics instance.
func NewSyncMetrics(meter metric.Meter, logger *zap.Logger) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &SyncMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	sm.matchTotal, err = NewCounter(
		meter,
		"catalog_sync_category_match_total",
		"Total category match attempts by resolution strategy",
		"{matches}",
	)
	if err != nil {
		return nil, err
	}

	sm.runTotal, err = NewCounter(
		meter,
		"catalog_sync_run_total",
		"Total finished sync runs by type and status",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	sm.recordsProcessed, err = NewCounter(
		meter,
		"catalog_sync_records_processed_total",
		"Total records examined by sync runs",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	sm.recordsCreated, err = NewCounter(
		meter,
		"catalog_sync_records_created_total",
		"Total records created by sync runs",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	sm.recordsUpdated, err = NewCounter(
		meter,
		"catalog_sync_records_updated_total",
		"Total records updated by sync runs",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	sm.recordErrors, err = NewCounter(
		meter,
		"catalog_sync_record_errors_total",
		"Total record failures during sync runs",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// RecordMatch counts one category match by the strategy that produced it
func (sm *SyncMetrics) RecordMatch(ctx context.Context, strategy string) {
	sm.matchTotal.Inc(ctx, AttrMatchStrategy.String(strategy))
}

// RecordRun records the outcome of a finished sync run
func (sm *SyncMetrics) RecordRun(ctx context.Context, syncType, status string, counters domainsync.Counters) {
	typeAttr := AttrSyncType.String(syncType)
	statusAttr := AttrSyncStatus.String(status)

	sm.runTotal.Inc(ctx, typeAttr, statusAttr)
	sm.recordsProcessed.Add(ctx, int64(counters.Processed), typeAttr)
	sm.recordsCreated.Add(ctx, int64(counters.Created), typeAttr)
	sm.recordsUpdated.Add(ctx, int64(counters.Updated), typeAttr)
	sm.recordErrors.Add(ctx, int64(counters.Errors), typeAttr)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewSyncMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
