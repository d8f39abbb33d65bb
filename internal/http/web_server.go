package http

import (
	"context"
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Dashboard is the record store the web surface drives.
type Dashboard interface {
	Records() []core.ExpenseRecord
	Refresh(ctx context.Context) ([]core.ExpenseRecord, error)
	Submit(ctx context.Context, sub core.Submission) (core.ExpenseRecord, error)
	Delete(ctx context.Context, id string) error
}

// WebServer is the dashboard's JSON surface. Each request builds a fresh
// core.State from the store, applies one transition and renders the result.
type WebServer struct {
	*server
	store Dashboard
}

func NewWebServer(addr string, store Dashboard, opts Options) (*WebServer, error) {
	base, mux, err := newServer(addr, opts)
	if err != nil {
		return nil, err
	}
	s := &WebServer{server: base, store: store}

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/expenses", s.handleCreate)
	mux.HandleFunc("GET /api/expenses/{id}/edit", s.handleEdit)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDelete)
	return s, nil
}

// handleView refreshes the store and renders the filtered dashboard. A failed
// refresh still renders the previous records, flagged as stale.
func (s *WebServer) handleView(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, refreshErr := s.store.Refresh(r.Context())
	state := core.State{}.WithRecords(records).WithCriteria(criteria)
	payload := newViewPayload(state.View())
	if refreshErr != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Serving stale expenses",
			log.FieldError, refreshErr.Error(),
			log.FieldRecordCount, len(records))
		payload.Stale = true
		payload.Error = staleMessage
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *WebServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": categoryOptions()})
}

func (s *WebServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form core.FormDraft
	if err := decodeBody(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	s.submit(w, r, core.State{}.WithForm(form), http.StatusCreated)
}

func (s *WebServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var form core.FormDraft
	if err := decodeBody(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	s.submit(w, r, core.State{EditingID: r.PathValue("id")}.WithForm(form), http.StatusOK)
}

// submit validates the form before anything reaches the store and resets it
// on success.
func (s *WebServer) submit(w http.ResponseWriter, r *http.Request, state core.State, status int) {
	sub, err := state.Submission()
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.store.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	state = state.ResetForm()
	writeJSON(w, status, formPayload{
		Record:      &rec,
		Form:        state.Form,
		SubmitLabel: state.View().SubmitLabel,
	})
}

// handleEdit loads a record into the form. The local copy is tried first;
// an unknown id triggers one refresh before giving up.
func (s *WebServer) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, err := core.State{}.WithRecords(s.store.Records()).BeginEdit(id)
	if errors.Is(err, core.ErrNotFound) {
		records, refreshErr := s.store.Refresh(r.Context())
		if refreshErr != nil {
			writeError(w, r, refreshErr)
			return
		}
		state, err = core.State{}.WithRecords(records).BeginEdit(id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formPayload{
		Form:        state.Form,
		EditingID:   state.EditingID,
		SubmitLabel: state.View().SubmitLabel,
	})
}

func (s *WebServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
