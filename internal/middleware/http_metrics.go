package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// normalizePath converts paths with dynamic segments to route patterns to
// prevent cardinality explosion in metrics.
func normalizePath(path string) string {
	staticRoutes := map[string]bool{
		"/":              true,
		"/trending":      true,
		"/suggestions":   true,
		"/feed":          true,
		"/swipes":        true,
		"/swipes/rewind": true,
		"/swipes/boost":  true,
		"/health":        true,
		"/ready":         true,
		"/metrics":       true,
	}

	if staticRoutes[path] {
		return path
	}

	// /profiles/{id} and /posts/{id}
	for _, prefix := range []string{"/profiles/", "/posts/"} {
		if strings.HasPrefix(path, prefix) {
			parts := strings.Split(path, "/")
			if len(parts) == 3 && parts[2] != "" {
				return prefix + "{id}"
			}
		}
	}

	// Fallback: return as-is for unknown patterns so new routes still
	// show up in metrics.
	return path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code
// and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

// HTTPMetrics is a middleware that records HTTP request metrics: duration,
// response size, and request counts. Health check endpoints (/health,
// /ready) are excluded to avoid noise.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			mrw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(mrw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				time.Since(start).Seconds(),
				mrw.size,
			)
		})
	}
}
