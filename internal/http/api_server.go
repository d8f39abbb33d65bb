package http

import (
	"context"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// ExpenseAPI is the collection service behind the REST surface.
type ExpenseAPI interface {
	List(ctx context.Context) ([]core.ExpenseRecord, error)
	Get(ctx context.Context, id string) (core.ExpenseRecord, error)
	Create(ctx context.Context, d core.Draft) (core.ExpenseRecord, error)
	Update(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error)
	Patch(ctx context.Context, id string, body []byte) (core.ExpenseRecord, error)
	Delete(ctx context.Context, id string) error
}

// APIServer serves the remote expense collection:
//
//	GET    /expenses       full list
//	POST   /expenses       create, 201
//	GET    /expenses/{id}  one record
//	PATCH  /expenses/{id}  partial merge
//	PUT    /expenses/{id}  full replacement
//	DELETE /expenses/{id}  204
type APIServer struct {
	*server
	api ExpenseAPI
}

func NewAPIServer(addr string, api ExpenseAPI, opts Options) (*APIServer, error) {
	base, mux, err := newServer(addr, opts)
	if err != nil {
		return nil, err
	}
	s := &APIServer{server: base, api: api}

	mux.HandleFunc("GET /expenses", s.handleList)
	mux.HandleFunc("POST /expenses", s.handleCreate)
	mux.HandleFunc("GET /expenses/{id}", s.handleGet)
	mux.HandleFunc("PATCH /expenses/{id}", s.handlePatch)
	mux.HandleFunc("PUT /expenses/{id}", s.handleReplace)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDelete)
	return s, nil
}

func (s *APIServer) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.api.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []core.ExpenseRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *APIServer) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.api.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *APIServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var d core.Draft
	if err := decodeBody(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.api.Create(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/expenses/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *APIServer) handlePatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.api.Patch(r.Context(), r.PathValue("id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *APIServer) handleReplace(w http.ResponseWriter, r *http.Request) {
	var d core.Draft
	if err := decodeBody(w, r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := s.api.Update(r.Context(), r.PathValue("id"), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *APIServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.api.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Expense deleted", log.FieldRecordID, id)
	w.WriteHeader(http.StatusNoContent)
}
