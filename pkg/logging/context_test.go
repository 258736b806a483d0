package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetLogFields(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithServiceName(ctx, "dashboard-service")

	assert.Equal(t, []interface{}{
		"trace_id", "trace-1",
		"request_id", "req-1",
		"service_name", "dashboard-service",
	}, GetLogFields(ctx))
}

func TestGetters_NilContext(t *testing.T) {
	assert.Equal(t, "", GetRequestID(nil))
}
