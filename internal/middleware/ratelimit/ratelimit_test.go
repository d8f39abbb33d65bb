package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, limit int) (*Limiter, *clock) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: limit, Window: time.Minute, CleanupInterval: time.Hour}, nil)
	t.Cleanup(rl.Stop)
	c := &clock{t: time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)}
	rl.now = c.now
	return rl, c
}

func TestLimiter_Allow(t *testing.T) {
	rl, c := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("4th request should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own window")
	}

	// rejected requests do not extend the window
	c.t = c.t.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("new window should allow again")
	}

	m := rl.GetMetrics()
	if m.Allowed != 5 || m.Rejected != 1 || m.ClientCount != 2 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	rl, c := newTestLimiter(t, 3)
	rl.Allow("1.2.3.4")
	c.t = c.t.Add(90 * time.Second)
	rl.Allow("5.6.7.8")
	c.t = c.t.Add(60 * time.Second)

	rl.cleanupStaleEntries()
	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients() = %d, want 1", got)
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, c := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "9.9.9.9" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d", rr.Code)
	}

	c.t = c.t.Add(15 * time.Second)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "45" {
		t.Errorf("Retry-After = %q, want 45", got)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	rl := NewLimiter(DefaultConfig(), nil)
	rl.Stop()
	rl.Stop()
}
