package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "ledger", "recalculate", SpanAttrBranch, "Nairobi", "rows", 3)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, "closing", "120.00", "dangling")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ledger.recalculate", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String(SpanAttrBranch, "Nairobi"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("rows", 3))
	assert.Contains(t, spans[0].Attributes(), attribute.String("closing", "120.00"))
}

func TestRecordError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "parcel", "register")
	RecordError(span, errors.New("duplicate waybill"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "duplicate waybill", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
