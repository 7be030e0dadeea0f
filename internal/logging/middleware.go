package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	contextKey      = "logger"
)

// Middleware tags every request with an id, stores a request-scoped logger in
// the gin context and logs one line when the request completes.
func Middleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		reqLog := log.WithField("request_id", requestID)
		c.Set(contextKey, reqLog)

		start := time.Now()
		c.Next()

		entry := reqLog.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request completed")
			return
		}
		entry.Info("request completed")
	}
}

// FromContext returns the request-scoped logger, or the standard logger when
// Middleware did not run.
func FromContext(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(contextKey); ok {
		if log, ok := v.(logrus.FieldLogger); ok {
			return log
		}
	}
	return logrus.StandardLogger()
}
