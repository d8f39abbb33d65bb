package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/expenses", 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRejectsBadScheme(t *testing.T) {
	if _, err := New("ftp://example.com/expenses", time.Second); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
}

func TestListDecodesLenientRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/expenses" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `[
			{"_id":"1","title":"Lunch","amount":15,"category":"Food","date":"2025-08-14"},
			{"id":2,"title":"Bus Ticket","amount":"5","category":"Transport","date":"2025-08-15"},
			{"_id":"3","title":"Broken","amount":"abc","category":"Misc","date":"soon"},
			{"_id":"4","title":"Numeric date","amount":7,"category":"Misc","date":20250815}
		]`)
	})

	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	if got[1].ID != "2" || !got[1].Amount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("numeric id / string amount not decoded: %+v", got[1])
	}
	if !got[2].Amount.IsZero() || got[2].Date.Valid() {
		t.Errorf("malformed record should decode with zero amount and invalid date: %+v", got[2])
	}
	if got[3].Date.Valid() || got[3].Date.String() != "20250815" {
		t.Errorf("numeric date should decode as invalid raw text: %+v", got[3])
	}
}

func TestListEmptyBodyIsEmptySlice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `null`)
	})
	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestCreatePostsDraftWithoutID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if _, ok := body["_id"]; ok {
			t.Error("create body must not carry an id")
		}
		if body["title"] != "Coffee" {
			t.Errorf("title = %v", body["title"])
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"_id":"abc","title":"Coffee","amount":3.5,"category":"Food","date":"2025-08-16"}`)
	})

	rec, err := c.Create(context.Background(), core.Draft{
		Title: "Coffee", Amount: decimal.RequireFromString("3.5"), Category: core.Food, Date: core.NewDate(2025, 8, 16),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != "abc" || !rec.Amount.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestUpdateUsesPatchOnRecordURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/expenses/42" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"_id":"42","title":"Train","amount":9,"category":"Transport","date":"2025-08-16"}`)
	})
	rec, err := c.Update(context.Background(), "42", core.Draft{Title: "Train"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.ID != "42" || rec.Title != "Train" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, "", func(err error) bool { return errors.Is(err, core.ErrNotFound) }},
		{"server error", http.StatusInternalServerError, "boom", core.IsTransport},
		{"bad gateway", http.StatusBadGateway, "", core.IsTransport},
		{"validation", http.StatusUnprocessableEntity, `{"error":"title too short","field":"title"}`, core.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			err := c.Delete(context.Background(), "1")
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error mapping: %v", err)
			}
		})
	}
}

func TestDeleteNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/expenses/1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url+"/expenses", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.List(context.Background())
	if !core.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestMalformedListBodyIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"not":"an array"}`)
	})
	if _, err := c.List(context.Background()); !core.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
