package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesdash/internal/logger"
	pkgerrors "salesdash/pkg/errors"
	"salesdash/pkg/logging"
	"salesdash/pkg/tracing"
)

const (
	HeaderRequestID = "X-Request-ID"
	ContextKeyID    = "request_id"
)

// RequestIDMiddleware propagates or assigns a request id and stores it in the
// request context so *wCtx log calls pick it up.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyID, requestID)
		c.Header(HeaderRequestID, requestID)

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		if traceID := tracing.TraceID(ctx); traceID != "" {
			ctx = logging.WithTraceID(ctx, traceID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
		}
		if errMsg := c.Errors.ByType(gin.ErrorTypePrivate).String(); errMsg != "" {
			fields = append(fields, "error", errMsg)
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			log.ErrorwCtx(ctx, "HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			log.WarnwCtx(ctx, "HTTP Request", fields...)
		default:
			log.InfowCtx(ctx, "HTTP Request", fields...)
		}
	}
}

// RecoveryMiddleware converts a handler panic into a 500 response. The stack
// goes to the log only.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := pkgerrors.RecoverPanic(recovered)
		log.ErrorwCtx(c.Request.Context(), "Panic recovered",
			"error", err,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, pkgerrors.ErrorResponse{
			Error:     pkgerrors.ErrInternal.Message,
			ErrorCode: pkgerrors.ErrInternal.Code,
		})
	})
}
