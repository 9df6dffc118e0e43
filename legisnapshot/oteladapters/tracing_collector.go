package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

// TracingCollector implements legisnapshot.TracingCollector using the OpenTelemetry tracing API.
// Spans started by the service become parents of the spans started by the SQL store, since the
// returned context is handed down.
type TracingCollector struct {
	tracer trace.Tracer
}

var _ legisnapshot.TracingCollector = (*TracingCollector)(nil)

// NewTracingCollector creates a collector that starts its spans on tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs as string attributes.
func (t *TracingCollector) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, legisnapshot.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds attrs, sets the status and ends the span.
// Span contexts not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx legisnapshot.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

// OTelSpanContext implements legisnapshot.SpanContext around an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

var _ legisnapshot.SpanContext = (*OTelSpanContext)(nil)

// SetStatus maps legisnapshot status values to span status codes.
// Unknown values are kept as a "status" attribute and leave the code unset.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case legisnapshot.StatusSuccess:
		s.span.SetStatus(codes.Ok, "")
	case legisnapshot.StatusError:
		s.span.SetStatus(codes.Error, "snapshot operation failed")
	case legisnapshot.ErrorTypeCanceled:
		s.span.SetStatus(codes.Error, "snapshot operation canceled")
	case legisnapshot.ErrorTypeTimeout:
		s.span.SetStatus(codes.Error, "snapshot operation timed out")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}
