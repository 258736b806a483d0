package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"salesdash/internal/config"
)

func TestKafkaHeaderRoundTrip(t *testing.T) {
	_, err := Init(config.TracingConfig{}, "test")
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	headers := InjectTraceContext(ctx, []kafka.Header{{Key: "event_type", Value: []byte("alert_triggered")}})
	require.Len(t, headers, 2)
	assert.Equal(t, "event_type", headers[0].Key)
	assert.Equal(t, "traceparent", headers[1].Key)

	extracted := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), headers))
	assert.Equal(t, span.SpanContext().TraceID(), extracted.TraceID())
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceID(ctx))
}

func TestTraceID_Empty(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestCreateSampler(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), createSampler(config.SamplerConfig{Type: "always_off"}).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), createSampler(config.SamplerConfig{}).Description())
}
