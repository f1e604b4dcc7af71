package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/masterblog/masterblog/internal/observability"
)

// statusRecorder captures the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog tags every request with a generated id, logs its
// outcome, and feeds the request counters and latency points.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.metrics.Increment("http_requests")
		s.metrics.Record(observability.MetricLatencyMS,
			float64(elapsed.Milliseconds()), observability.Labels{"path": r.URL.Path})
		if rec.status >= http.StatusInternalServerError {
			s.metrics.Increment("http_errors")
		}

		s.log.Request(requestID, r.Method, r.URL.Path, rec.status,
			"duration_ms", elapsed.Milliseconds(), "remote", clientIP(r))
	})
}

// visitorLimiter keeps one token bucket per client address.
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newVisitorLimiter(limit rate.Limit, burst int) *visitorLimiter {
	return &visitorLimiter{
		visitors: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (v *visitorLimiter) allow(ip string) bool {
	v.mu.Lock()
	lim, ok := v.visitors[ip]
	if !ok {
		lim = rate.NewLimiter(v.limit, v.burst)
		v.visitors[ip] = lim
	}
	v.mu.Unlock()
	return lim.Allow()
}

// rateLimited rejects clients that exceed the per-address budget.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			s.metrics.Increment("rate_limited")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
