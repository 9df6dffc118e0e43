package sqlengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

// Metric and span names of the SQL layer.
const (
	MetricQueryDuration = "legisnapshot_sql_query_duration_seconds"
	MetricQueryErrors   = "legisnapshot_sql_query_errors_total"
	SpanNamePrefix      = "legisnapshot.sql."
)

const (
	spanAttrAction   = "action"
	spanAttrStatus   = "status"
	spanAttrRows     = "row_count"
	spanAttrDuration = "duration_ms"
	spanAttrPhase    = "phase"
	phaseBuild       = "build"
	phaseQuery       = "query"
	phaseScan        = "scan"
)

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (s SnapshotStore) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (s SnapshotStore) logWarn(ctx context.Context, message string, err error) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}
}

// logError logs error information at the error level.
func (s SnapshotStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// queryObserver carries the span and start time of one store call.
type queryObserver struct {
	store  SnapshotStore
	ctx    context.Context
	span   legisnapshot.SpanContext
	action string
	start  time.Time
}

func (s SnapshotStore) startQuery(ctx context.Context, action string) (context.Context, *queryObserver) {
	o := &queryObserver{store: s, ctx: ctx, action: action, start: time.Now()}

	if s.tracingCollector != nil {
		o.ctx, o.span = s.tracingCollector.StartSpan(ctx, SpanNamePrefix+action, map[string]string{
			spanAttrAction: action,
		})
	}

	return o.ctx, o
}

func (o *queryObserver) finishSuccess(rowCount int) {
	duration := time.Since(o.start)
	o.recordDuration(duration, legisnapshot.StatusSuccess)

	if o.span != nil {
		o.store.tracingCollector.FinishSpan(o.span, legisnapshot.StatusSuccess, map[string]string{
			spanAttrRows:     fmt.Sprintf("%d", rowCount),
			spanAttrDuration: fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6),
		})
	}
}

func (o *queryObserver) finishError(phase string) {
	o.recordDuration(time.Since(o.start), legisnapshot.StatusError)

	if collector := o.store.metricsCollector; collector != nil {
		labels := map[string]string{spanAttrAction: o.action, spanAttrPhase: phase}
		if contextual, ok := collector.(legisnapshot.ContextualMetricsCollector); ok {
			contextual.IncrementCounterContext(o.ctx, MetricQueryErrors, labels)
		} else {
			collector.IncrementCounter(MetricQueryErrors, labels)
		}
	}

	if o.span != nil {
		o.store.tracingCollector.FinishSpan(o.span, legisnapshot.StatusError, map[string]string{
			spanAttrPhase: phase,
		})
	}
}

func (o *queryObserver) recordDuration(duration time.Duration, status string) {
	collector := o.store.metricsCollector
	if collector == nil {
		return
	}

	labels := map[string]string{spanAttrAction: o.action, spanAttrStatus: status}
	if contextual, ok := collector.(legisnapshot.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, MetricQueryDuration, duration, labels)
		return
	}

	collector.RecordDuration(MetricQueryDuration, duration, labels)
}
