package admin

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oyaguma3/nib-server-poc/pkg/httputil"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
)

const (
	traceIDHeader = "X-Trace-ID"
	traceIDKey    = "trace_id"
)

// TraceIDMiddleware はX-Trace-IDヘッダからトレースIDを取得する。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		c.Set(traceIDKey, traceID)
		c.Next()
	}
}

// LoggingMiddleware はリクエストログを出力する。
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		traceID, _ := c.Get(traceIDKey)
		logger.Info("request completed",
			logging.WithEventID("ADMIN_REQUEST"),
			"trace_id", traceID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"http_status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RecoveryMiddleware はパニックからの復旧を行う。
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				traceID, _ := c.Get(traceIDKey)
				logger.Error("panic recovered",
					logging.WithEventID("ADMIN_PANIC"),
					"trace_id", traceID,
					slog.Any(logging.FieldError, err),
				)
				httputil.AbortWithError(c, httputil.InternalServerError("An unexpected error occurred"))
			}
		}()
		c.Next()
	}
}
