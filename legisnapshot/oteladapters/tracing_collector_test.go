package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
	"github.com/legilibre/legi-snapshot-go/legisnapshot/oteladapters"
)

func givenTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("legisnap")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// setup
	collector, exporter := givenTracingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), legisnapshot.SpanNameFull, map[string]string{
		"operation": legisnapshot.OperationFull,
		"root_id":   "LEGITEXT000006072050",
	})
	spanCtx.AddAttribute("node_count", "12")
	collector.FinishSpan(spanCtx, legisnapshot.StatusSuccess, map[string]string{"duration_ms": "3.000"})

	// assert
	assert.NotNil(t, ctx)
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, legisnapshot.SpanNameFull, spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, expected := range map[string]string{
		"operation":   legisnapshot.OperationFull,
		"root_id":     "LEGITEXT000006072050",
		"node_count":  "12",
		"duration_ms": "3.000",
	} {
		value, found := spanAttribute(spans[0], key)
		assert.True(t, found, key)
		assert.Equal(t, expected, value, key)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status      string
		code        codes.Code
		description string
	}{
		{status: legisnapshot.StatusSuccess, code: codes.Ok},
		{status: legisnapshot.StatusError, code: codes.Error, description: "snapshot operation failed"},
		{status: legisnapshot.ErrorTypeCanceled, code: codes.Error, description: "snapshot operation canceled"},
		{status: legisnapshot.ErrorTypeTimeout, code: codes.Error, description: "snapshot operation timed out"},
		{status: "partial", code: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// setup
			collector, exporter := givenTracingCollector()

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.code, spans[0].Status.Code)
			assert.Equal(t, tc.description, spans[0].Status.Description)
		})
	}

	t.Run("unknown status is kept as attribute", func(t *testing.T) {
		collector, exporter := givenTracingCollector()
		_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
		collector.FinishSpan(spanCtx, "partial", nil)

		value, found := spanAttribute(exporter.GetSpans()[0], "status")
		assert.True(t, found)
		assert.Equal(t, "partial", value)
	})
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	collector, exporter := givenTracingCollector()

	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpan{}, legisnapshot.StatusSuccess, map[string]string{"k": "v"})
	})
	assert.Empty(t, exporter.GetSpans())
}

func Test_TracingCollector_NestedSpansShareTheTrace(t *testing.T) {
	// setup
	collector, exporter := givenTracingCollector()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "parent", nil)
	_, child := collector.StartSpan(ctx, "child", map[string]string{"k": "v"})
	collector.FinishSpan(child, legisnapshot.StatusSuccess, nil)
	collector.FinishSpan(parent, legisnapshot.StatusSuccess, nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}
