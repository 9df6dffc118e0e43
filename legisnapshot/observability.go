package legisnapshot

import (
	"context"
	"time"
)

// Logger interface for query logging, operational information, warnings, and error reporting.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace correlation.
// *slog.Logger satisfies it, as does oteladapters.SlogBridgeLogger.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting snapshot performance and operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// ContextualMetricsCollector extends MetricsCollector with context-aware methods for trace correlation.
// When a configured MetricsCollector also implements this interface, the context-aware methods are used.
type ContextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information.
// Follows the same dependency-free pattern as MetricsCollector; see oteladapters for an OpenTelemetry implementation.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// Metric names.
const (
	MetricRequestDuration    = "legisnapshot_request_duration_seconds"
	MetricRequestErrors      = "legisnapshot_request_errors_total"
	MetricNodesAssembled     = "legisnapshot_nodes_assembled"
	MetricClosureLevels      = "legisnapshot_closure_levels"
	MetricDanglingReferences = "legisnapshot_dangling_references_total"
	MetricBatchDuration      = "legisnapshot_batch_duration_seconds"
)

// Status values used for span status and the status metric label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Span names.
const (
	SpanNameStructure  = "legisnapshot.structure"
	SpanNameFull       = "legisnapshot.full"
	SpanNameDates      = "legisnapshot.validity_dates"
	SpanNameArticle    = "legisnapshot.article"
	SpanNameTexts      = "legisnapshot.texts"
	SpanNameContainers = "legisnapshot.containers"
	SpanNameParents    = "legisnapshot.parents"
)

// Operation names used as the operation label and span attribute.
const (
	OperationStructure  = "structure"
	OperationFull       = "full"
	OperationDates      = "validity_dates"
	OperationArticle    = "article"
	OperationTexts      = "texts"
	OperationContainers = "containers"
	OperationParents    = "parents"
	OperationBatch      = "batch"
)

// Error types used as the error_type label and span attribute.
const (
	ErrorTypeNotFound    = "not_found"
	ErrorTypeInvalidDate = "invalid_date"
	ErrorTypeStore       = "store_error"
	ErrorTypeCanceled    = "context_canceled"
	ErrorTypeTimeout     = "context_timeout"
)

// Span and metric attribute keys.
const (
	spanAttrOperation  = "operation"
	spanAttrStatus     = "status"
	spanAttrErrorType  = "error_type"
	spanAttrRootID     = "root_id"
	spanAttrDate       = "reference_date"
	spanAttrRequestID  = "request_id"
	spanAttrNodeCount  = "node_count"
	spanAttrDurationMS = "duration_ms"
	spanAttrKind       = "kind"
)
