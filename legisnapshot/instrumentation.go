package legisnapshot

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Log messages.
const (
	logMsgOperation        = "legisnapshot operation: "
	logMsgOperationFailed  = "legisnapshot operation failed: "
	logMsgClosureLevel     = "closure level expanded"
	logMsgDuplicateDropped = "duplicate adjacency row dropped"
	logMsgBatchFetched     = "typed elements fetched"
	logMsgDanglingRef      = "dangling reference: element missing from its type table"
	logMsgCycleSkipped     = "element already on the current path, not expanded again"
)

// Log attribute keys.
const (
	logAttrDurationMS  = "duration_ms"
	logAttrError       = "error"
	logAttrRequestID   = "request_id"
	logAttrRootID      = "root_id"
	logAttrScope       = "scope"
	logAttrDate        = "reference_date"
	logAttrLevel       = "level"
	logAttrRowCount    = "row_count"
	logAttrNodeCount   = "node_count"
	logAttrDateCount   = "date_count"
	logAttrTextCount   = "text_count"
	logAttrDangling    = "dangling_count"
	logAttrElementID   = "element_id"
	logAttrParentID    = "parent_id"
	logAttrKind        = "kind"
	logAttrIDCount     = "id_count"
	logAttrNature      = "nature"
	logAttrStates      = "states"
	logAttrParentCount = "parent_count"
)

// instrumentation bundles the optional observability collaborators. All of them may be nil.
type instrumentation struct {
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// logDebug logs at debug level, preferring the contextual logger when configured.
func (in *instrumentation) logDebug(ctx context.Context, msg string, args ...any) {
	if in.contextualLogger != nil {
		in.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if in.logger != nil {
		in.logger.Debug(msg, args...)
	}
}

// logInfo logs at info level, preferring the contextual logger when configured.
func (in *instrumentation) logInfo(ctx context.Context, msg string, args ...any) {
	if in.contextualLogger != nil {
		in.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if in.logger != nil {
		in.logger.Info(msg, args...)
	}
}

// logWarn logs at warn level, preferring the contextual logger when configured.
func (in *instrumentation) logWarn(ctx context.Context, msg string, args ...any) {
	if in.contextualLogger != nil {
		in.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if in.logger != nil {
		in.logger.Warn(msg, args...)
	}
}

// logError logs err at error level, preferring the contextual logger when configured.
func (in *instrumentation) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if in.contextualLogger != nil {
		in.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if in.logger != nil {
		in.logger.Error(msg, allArgs...)
	}
}

// recordDuration records a duration metric, with context if the collector supports it.
func (in *instrumentation) recordDuration(
	ctx context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	if in.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := in.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	in.metricsCollector.RecordDuration(metric, duration, labels)
}

// incrementCounter increments a counter metric, with context if the collector supports it.
func (in *instrumentation) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if in.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := in.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	in.metricsCollector.IncrementCounter(metric, labels)
}

// recordValue records a value metric, with context if the collector supports it.
func (in *instrumentation) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if in.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := in.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	in.metricsCollector.RecordValue(metric, value, labels)
}

// startSpan starts a tracing span if the tracing collector is configured.
func (in *instrumentation) startSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, SpanContext) {
	if in.tracingCollector != nil {
		return in.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishSpan finishes a tracing span if the tracing collector is configured.
func (in *instrumentation) finishSpan(span SpanContext, status string, attrs map[string]string) {
	if in.tracingCollector != nil && span != nil {
		in.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", toMilliseconds(d))
}

// === Request Observer ===
// requestObserver ties together span, metrics and the completion log line of one service call.

type requestObserver struct {
	in        *instrumentation
	ctx       context.Context
	span      SpanContext
	operation string
	requestID string
	rootID    string
	start     time.Time
}

func (in *instrumentation) startRequest(
	ctx context.Context,
	spanName string,
	operation string,
	requestID string,
	rootID string,
	date Date,
) (*requestObserver, context.Context) {
	attrs := map[string]string{
		spanAttrOperation: operation,
		spanAttrRequestID: requestID,
	}

	if rootID != "" {
		attrs[spanAttrRootID] = rootID
	}

	if !date.IsZero() {
		attrs[spanAttrDate] = date.String()
	}

	newCtx, span := in.startSpan(ctx, spanName, attrs)

	return &requestObserver{
		in:        in,
		ctx:       newCtx,
		span:      span,
		operation: operation,
		requestID: requestID,
		rootID:    rootID,
		start:     time.Now(),
	}, newCtx
}

// finishSuccess closes the span, records the duration and the node count, and logs the completion.
func (ro *requestObserver) finishSuccess(nodeCount int, args ...any) {
	duration := time.Since(ro.start)

	ro.in.recordDuration(ro.ctx, MetricRequestDuration, duration, map[string]string{
		spanAttrOperation: ro.operation,
		spanAttrStatus:    StatusSuccess,
	})

	if nodeCount >= 0 {
		ro.in.recordValue(ro.ctx, MetricNodesAssembled, float64(nodeCount), map[string]string{
			spanAttrOperation: ro.operation,
			spanAttrStatus:    StatusSuccess,
		})
	}

	if ro.span != nil {
		ro.span.SetStatus(StatusSuccess)
		ro.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(duration))
		if nodeCount >= 0 {
			ro.span.AddAttribute(spanAttrNodeCount, fmt.Sprintf("%d", nodeCount))
		}
	}

	ro.in.finishSpan(ro.span, StatusSuccess, map[string]string{spanAttrOperation: ro.operation})

	logArgs := []any{logAttrRequestID, ro.requestID, logAttrDurationMS, toMilliseconds(duration)}
	if ro.rootID != "" {
		logArgs = append(logArgs, logAttrRootID, ro.rootID)
	}
	logArgs = append(logArgs, args...)

	ro.in.logInfo(ro.ctx, logMsgOperation+ro.operation, logArgs...)
}

// finishError closes the span with the classified error, records error metrics and logs the failure.
// Not-found and invalid-date outcomes are caller errors and are logged at info level only.
func (ro *requestObserver) finishError(err error) {
	duration := time.Since(ro.start)
	errorType := classifyError(err)

	ro.in.recordDuration(ro.ctx, MetricRequestDuration, duration, map[string]string{
		spanAttrOperation: ro.operation,
		spanAttrStatus:    StatusError,
	})

	ro.in.incrementCounter(ro.ctx, MetricRequestErrors, map[string]string{
		spanAttrOperation: ro.operation,
		spanAttrStatus:    StatusError,
		spanAttrErrorType: errorType,
	})

	if ro.span != nil {
		ro.span.SetStatus(StatusError)
		ro.span.AddAttribute(spanAttrErrorType, errorType)
		ro.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(duration))
	}

	ro.in.finishSpan(ro.span, StatusError, map[string]string{spanAttrErrorType: errorType})

	args := []any{logAttrRequestID, ro.requestID, logAttrDurationMS, toMilliseconds(duration)}
	if ro.rootID != "" {
		args = append(args, logAttrRootID, ro.rootID)
	}

	switch errorType {
	case ErrorTypeNotFound, ErrorTypeInvalidDate:
		ro.in.logInfo(ro.ctx, logMsgOperationFailed+ro.operation, append(args, logAttrError, err.Error())...)
	default:
		ro.in.logError(ro.ctx, logMsgOperationFailed+ro.operation, err, args...)
	}
}
