package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID returns the id assigned to the request by Middleware.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Middleware tags every request with an id and logs one line once it is served.
func (l *Logger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= 500 {
			l.Warn("request_failed", requestID, "request served with server error", attrs...)
			return
		}
		l.Info("request_served", requestID, "request served", attrs...)
	}
}
