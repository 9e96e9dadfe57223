package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// useSpanRecorder installs an in-memory tracer provider as the global one
func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := useSpanRecorder(t)
	unitID := uuid.MustParse("6b0c2a1e-3f7d-4c55-9e2a-0d1f4b8e7a10")

	_, span := StartServiceSpan(context.Background(), "ingestion", "cash_in",
		WithAttribute(SpanAttrUnitID, unitID),
		WithAttribute(SpanAttrRows, 12),
		WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ingestion.cash_in", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, unitID.String(), attrs[SpanAttrUnitID].AsString())
	assert.Equal(t, int64(12), attrs[SpanAttrRows].AsInt64())
}

func TestStartSpan_NestsUnderParent(t *testing.T) {
	sr := useSpanRecorder(t)

	ctx, parent := StartSpan(context.Background(), "analytics.scores")
	_, child := StartSpan(ctx, "analytics.load")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestSetAttributes(t *testing.T) {
	sr := useSpanRecorder(t)

	_, span := StartSpan(context.Background(), "x")
	SetAttributes(span,
		SpanAttrReportKind, "inventory",
		SpanAttrDegraded, true,
		42, "non-string key skipped",
		"dangling",
	)
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Len(t, attrs, 2)
	assert.Equal(t, "inventory", attrs[SpanAttrReportKind].AsString())
	assert.True(t, attrs[SpanAttrDegraded].AsBool())
}

func TestRecordError(t *testing.T) {
	sr := useSpanRecorder(t)

	_, span := StartSpan(context.Background(), "ingestion.cash_out")
	RecordError(span, errors.New("duplicate period"))
	RecordError(span, nil)
	span.End()

	s := sr.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "duplicate period", s.Status().Description)
	require.Len(t, s.Events(), 1)
}

func TestAddEvent(t *testing.T) {
	sr := useSpanRecorder(t)

	_, span := StartSpan(context.Background(), "ingestion.inventory")
	AddEvent(span, "counts_linked", "linked", int64(4), "ratio", 0.5)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "counts_linked", events[0].Name)
	attrs := attrMap(events[0].Attributes)
	assert.Equal(t, int64(4), attrs["linked"].AsInt64())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "a", 1)
		RecordError(nil, errors.New("x"))
		AddEvent(nil, "e")
	})
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		value any
		want  attribute.Type
	}{
		{"s", attribute.STRING},
		{1, attribute.INT64},
		{int64(1), attribute.INT64},
		{1.5, attribute.FLOAT64},
		{true, attribute.BOOL},
		{[]string{"a"}, attribute.STRINGSLICE},
		{uuid.Nil, attribute.STRING},
		{struct{}{}, attribute.STRING},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toAttribute("k", tt.value).Value.Type())
	}
}
