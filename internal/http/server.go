package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
)

// Options tune the middleware shared by both servers.
type Options struct {
	RequestsPerMinute int
	TrustedProxies    []string
	Logger            *log.Logger
	// Ready backs /readyz; nil means always ready.
	Ready func(context.Context) error
}

// server is the http.Server plus the middleware state both surfaces share.
type server struct {
	http.Server
	logger       *log.Logger
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	ready        func(context.Context) error
	shutdownOnce sync.Once
}

func newServer(addr string, opts Options) (*server, *http.ServeMux, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	ips, err := security.NewIPExtractor(opts.TrustedProxies...)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	s := &server{
		logger:  logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}, logger),
		tracer:  trace.NewMiddleware(logger, ips.ClientIP),
		ready:   opts.Ready,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// outermost first: trace sees rate-limited requests too
	var h http.Handler = mux
	h = s.limiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
	})(h)
	h = security.Headers(security.APIHeadersConfig())(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, mux, nil
}

// Shutdown stops the limiter cleanup and drains the server.
func (s *server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics exposes request and rate limit counters.
func (s *server) Metrics() (trace.Metrics, ratelimit.Metrics) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
