package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"expensetracker/internal/log"
)

// Limiter allows each client a fixed number of requests per window.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*window
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time
	logger       *log.Logger

	limit           int
	window          time.Duration
	cleanupInterval time.Duration

	allowed  atomic.Int64
	rejected atomic.Int64
}

type window struct {
	start    time.Time
	requests int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	Window            time.Duration
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 120,
		Window:            time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter starts a limiter and its cleanup goroutine. Call Stop when done.
func NewLimiter(config Config, logger *log.Logger) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if logger == nil {
		logger = log.Discard()
	}

	rl := &Limiter{
		clients:         make(map[string]*window),
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
		logger:          logger.WithComponent(log.ComponentRateLimit),
		limit:           config.RequestsPerMinute,
		window:          config.Window,
		cleanupInterval: config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow reports whether clientIP may make another request in its current window.
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[clientIP]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.clients[clientIP] = &window{start: now, requests: 1}
		rl.allowed.Add(1)
		return true
	}

	if w.requests >= rl.limit {
		rl.rejected.Add(1)
		return false
	}
	w.requests++
	rl.allowed.Add(1)
	return true
}

// retryAfter is the number of seconds until clientIP's window resets.
func (rl *Limiter) retryAfter(clientIP string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.clients[clientIP]
	if !ok {
		return 0
	}
	remaining := rl.window - rl.now().Sub(w.start)
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries drops clients whose window ended long ago.
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for ip, w := range rl.clients {
		if w.start.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	Allowed     int64
	Rejected    int64
	ClientCount int64
}

func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		Allowed:     rl.allowed.Load(),
		Rejected:    rl.rejected.Load(),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// Middleware rejects over-limit clients with 429 and a Retry-After header.
// onLimit, when set, writes the rejection body.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := extractIP(r)
			if rl.Allow(clientIP) {
				next.ServeHTTP(w, r)
				return
			}

			rl.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter(clientIP)))
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})
	}
}
