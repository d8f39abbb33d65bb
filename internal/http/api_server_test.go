package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expensetracker/internal/collection/memory"
	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

var errNotReady = errors.New("not ready")

func newTestAPIServer(t *testing.T) (*APIServer, *memory.Store) {
	t.Helper()
	repo := memory.NewSeeded()
	s, err := NewAPIServer(":0", services.NewExpenseService(repo, nil, nil), Options{})
	if err != nil {
		t.Fatalf("NewAPIServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, repo
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPIServer_List(t *testing.T) {
	s, _ := newTestAPIServer(t)

	rr := do(t, s.Handler, http.MethodGet, "/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var got []core.ExpenseRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 || got[0].ID != "1" || got[1].Title != "Bus Ticket" {
		t.Errorf("unexpected list %+v", got)
	}
	if !strings.Contains(rr.Body.String(), `"_id":"1"`) {
		t.Errorf("wire format should use _id: %s", rr.Body)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestAPIServer_Create(t *testing.T) {
	s, repo := newTestAPIServer(t)

	rr := do(t, s.Handler, http.MethodPost, "/expenses",
		`{"title":"Coffee","amount":"3.50","category":"Food","date":"2025-08-16"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var rec core.ExpenseRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ID == "" || rec.Amount.String() != "3.5" {
		t.Errorf("created = %+v", rec)
	}
	if loc := rr.Header().Get("Location"); loc != "/expenses/"+rec.ID {
		t.Errorf("Location = %q", loc)
	}
	list, _ := repo.List(context.Background())
	if len(list) != 4 {
		t.Errorf("repo has %d records, want 4", len(list))
	}
}

func TestAPIServer_ValidationErrors(t *testing.T) {
	s, repo := newTestAPIServer(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		field  string
	}{
		{"short title", http.MethodPost, "/expenses", `{"title":"ab","amount":5,"category":"Food","date":"2025-08-16"}`, "title"},
		{"zero amount", http.MethodPost, "/expenses", `{"title":"Coffee","amount":0,"category":"Food","date":"2025-08-16"}`, "amount"},
		{"huge exponent amount", http.MethodPost, "/expenses", `{"title":"Coffee","amount":1e50000000,"category":"Food","date":"2025-08-16"}`, "amount"},
		{"patch to huge amount", http.MethodPatch, "/expenses/1", `{"amount":"1e50000000"}`, "amount"},
		{"bad date", http.MethodPost, "/expenses", `{"title":"Coffee","amount":1,"category":"Food","date":"tomorrow"}`, "date"},
		{"malformed json", http.MethodPost, "/expenses", `{`, "body"},
		{"patch to empty category", http.MethodPatch, "/expenses/1", `{"category":""}`, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s.Handler, tt.method, tt.target, tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (%s)", rr.Code, rr.Body)
			}
			var body errorBody
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Field != tt.field || body.Error == "" {
				t.Errorf("error body = %+v, want field %q", body, tt.field)
			}
		})
	}

	list, _ := repo.List(context.Background())
	if len(list) != 3 {
		t.Errorf("failed validation must not store anything, have %d records", len(list))
	}
}

func TestAPIServer_PatchAndReplace(t *testing.T) {
	s, repo := newTestAPIServer(t)

	rr := do(t, s.Handler, http.MethodPatch, "/expenses/2", `{"amount":10}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body %s", rr.Code, rr.Body)
	}
	rec, _ := repo.Get(context.Background(), "2")
	if rec.Amount.String() != "10" || rec.Title != "Bus Ticket" {
		t.Errorf("after patch = %+v", rec)
	}

	rr = do(t, s.Handler, http.MethodPut, "/expenses/2",
		`{"title":"Train","amount":12,"category":"Transport","date":"2025-08-20"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rr.Code, rr.Body)
	}
	rec, _ = repo.Get(context.Background(), "2")
	if rec.Title != "Train" || rec.Date.String() != "2025-08-20" {
		t.Errorf("after put = %+v", rec)
	}
}

func TestAPIServer_NotFound(t *testing.T) {
	s, _ := newTestAPIServer(t)

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodGet, "/expenses/nope", ""},
		{http.MethodPatch, "/expenses/nope", `{"amount":1}`},
		{http.MethodPut, "/expenses/nope", `{"title":"Train","amount":12,"category":"Transport","date":"2025-08-20"}`},
		{http.MethodDelete, "/expenses/nope", ""},
	} {
		rr := do(t, s.Handler, tc.method, tc.target, tc.body)
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", tc.method, tc.target, rr.Code)
		}
	}
}

func TestAPIServer_Delete(t *testing.T) {
	s, repo := newTestAPIServer(t)

	rr := do(t, s.Handler, http.MethodDelete, "/expenses/3", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if _, err := repo.Get(context.Background(), "3"); err == nil {
		t.Error("record 3 should be gone")
	}
	if rr := do(t, s.Handler, http.MethodDelete, "/expenses/3", ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestAPIServer_MethodNotAllowed(t *testing.T) {
	s, _ := newTestAPIServer(t)
	if rr := do(t, s.Handler, http.MethodDelete, "/expenses", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestServer_HealthAndReady(t *testing.T) {
	ready := errNotReady
	s, err := NewAPIServer(":0", services.NewExpenseService(memory.New(), nil, nil), Options{
		Ready: func(context.Context) error { return ready },
	})
	if err != nil {
		t.Fatalf("NewAPIServer: %v", err)
	}
	defer s.Shutdown(context.Background())

	if rr := do(t, s.Handler, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rr.Code, rr.Body)
	}
	if rr := do(t, s.Handler, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz while failing = %d, want 503", rr.Code)
	}
	ready = nil
	if rr := do(t, s.Handler, http.MethodGet, "/readyz", ""); rr.Code != http.StatusOK {
		t.Errorf("readyz = %d, want 200", rr.Code)
	}
}

func TestServer_RateLimit(t *testing.T) {
	s, err := NewAPIServer(":0", services.NewExpenseService(memory.New(), nil, nil), Options{RequestsPerMinute: 2})
	if err != nil {
		t.Fatalf("NewAPIServer: %v", err)
	}
	defer s.Shutdown(context.Background())

	for i := 0; i < 2; i++ {
		if rr := do(t, s.Handler, http.MethodGet, "/expenses", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rr.Code)
		}
	}
	rr := do(t, s.Handler, http.MethodGet, "/expenses", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	_, limits := s.Metrics()
	if limits.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", limits.Rejected)
	}
}

func TestServer_ShutdownTwice(t *testing.T) {
	s, _ := newTestAPIServer(t)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}
