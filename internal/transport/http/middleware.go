package http

import (
	"time"

	"dcaportfolio/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an id and logs method, path, status and latency.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL += "?" + c.Request.URL.RawQuery
		}

		c.Next()

		entry := log.WithRequestID(requestID).WithFields(logrus.Fields{
			"component": "http",
			"method":    c.Request.Method,
			"url":       fullURL,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
		})
		if c.Writer.Status() >= 400 {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	}
}
