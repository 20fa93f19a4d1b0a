package middleware

import (
	"net/http"
	"time"

	"instacord/internal/metrics"

	"github.com/sirupsen/logrus"
)

// ObservabilityMiddleware logs each request and records its duration
// in the metrics registry.
func ObservabilityMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			duration := time.Since(started)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   wrapper.statusCode,
				"duration": duration.String(),
			}).Debug("Handled request")

			metrics.IncrementCounter("http_requests", map[string]string{"path": r.URL.Path}, "handled HTTP requests")
			metrics.RecordTimer("http_request_duration", duration)
		})
	}
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
