package admin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"
)

// LogRequest returns a gin middleware that writes one activity log entry per admin
// request once it has been handled.
func LogRequest(logger *logharbour.Logger) gin.HandlerFunc {
	logger = logger.WithModule("http")
	return func(c *gin.Context) {
		startTime := time.Now()
		requestSize := c.Request.ContentLength

		c.Next()

		duration := time.Since(startTime)
		status := c.Writer.Status()

		data := map[string]any{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        status,
			"start_time":    startTime.UTC().Format(time.RFC3339),
			"duration_ms":   duration.Milliseconds(),
			"request_size":  requestSize,
			"response_size": c.Writer.Size(),
		}
		if traceID := c.GetHeader("X-Trace-ID"); traceID != "" {
			data["trace_id"] = traceID
		}
		if job, ok := c.Get(ctxKeyJob); ok {
			data["job"] = job
		}

		logger.WithOp("request").
			WithRemoteIP(c.ClientIP()).
			WithClass(c.Request.Method).
			WithInstanceId(c.Request.URL.Path).
			WithStatus(getStatus(status)).
			Info().LogActivity("HTTP request completed", data)
	}
}

// getStatus converts an HTTP status code to a logharbour Status.
func getStatus(statusCode int) logharbour.Status {
	if statusCode >= 200 && statusCode < 400 {
		return logharbour.Success
	}
	return logharbour.Failure
}
