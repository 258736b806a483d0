package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(ctx context.Context) error   { return nil }
func fail(ctx context.Context) error { return errors.New("down") }

func TestCheckerRegistry(t *testing.T) {
	tests := []struct {
		name     string
		required []func(context.Context) error
		optional []func(context.Context) error
		want     Status
	}{
		{"empty", nil, nil, StatusHealthy},
		{"all ok", []func(context.Context) error{ok}, []func(context.Context) error{ok}, StatusHealthy},
		{"optional down", []func(context.Context) error{ok}, []func(context.Context) error{fail}, StatusDegraded},
		{"required down", []func(context.Context) error{fail}, []func(context.Context) error{ok}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCheckerRegistry()
			for i, fn := range tt.required {
				r.Register(NewCheckFunc("req"+string(rune('a'+i)), fn))
			}
			for i, fn := range tt.optional {
				r.RegisterOptional(NewCheckFunc("opt"+string(rune('a'+i)), fn))
			}
			h := r.Check(context.Background())
			assert.Equal(t, tt.want, h.Status)
			assert.Len(t, h.Checks, len(tt.required)+len(tt.optional))
		})
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewCheckerRegistry()
	r.Register(NewCheckFunc("sales", fail))

	router := gin.New()
	router.GET("/health", Handler(r))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var h Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, "down", h.Checks["sales"].Message)
}
