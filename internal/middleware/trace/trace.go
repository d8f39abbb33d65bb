package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"expensetracker/internal/log"

	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

type contextKey struct{}

// Middleware assigns every request an id, puts a request-scoped logger in its
// context and logs completion at a level matching the status code.
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.Logger

	total      atomic.Int64
	totalMicro atomic.Int64
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime time.Duration
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	return &Middleware{
		extractIP: extractIP,
		logger:    logger.WithComponent(log.ComponentHTTP),
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		reqLogger := m.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), contextKey{}, requestID)
		ctx = log.NewContext(ctx, reqLogger)
		r = r.WithContext(ctx)

		reqLogger.DebugContext(ctx, "HTTP request started",
			log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()).
				WithClientIP(clientIP).
				ToSlice()...)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		m.total.Add(1)
		m.totalMicro.Add(duration.Microseconds())

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}
		fields := log.NewFields().
			WithComponent(log.ComponentHTTP).
			WithClientIP(clientIP).
			WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < 400).
			With(log.FieldMethod, r.Method).
			With(log.FieldPath, r.URL.Path).
			With(log.FieldDurationHuman, duration.String())
		reqLogger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// validRequestID accepts caller supplied ids that are short and printable.
func validRequestID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	total := m.total.Load()
	var avg time.Duration
	if total > 0 {
		avg = time.Duration(m.totalMicro.Load()/total) * time.Microsecond
	}
	return Metrics{TotalRequests: total, AverageResponseTime: avg}
}
