package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expensetracker/internal/collection"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

var _ collection.Collection = (*Client)(nil)

// StatusError is an unexpected HTTP status from the collection service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Client talks to the remote expense collection at a single base URL:
// GET base, POST base, PATCH base/{id}, DELETE base/{id}.
type Client struct {
	base       string
	httpClient *http.Client
	logger     *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentRemote) }
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:       strings.TrimRight(u.String(), "/"),
		httpClient: newHTTPClientWithPooling(timeout),
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func (c *Client) List(ctx context.Context) ([]core.ExpenseRecord, error) {
	var out []core.ExpenseRecord
	if err := c.do(ctx, log.OpList, http.MethodGet, c.base, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.ExpenseRecord{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, d core.Draft) (core.ExpenseRecord, error) {
	var out core.ExpenseRecord
	err := c.do(ctx, log.OpCreate, http.MethodPost, c.base, d, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, d core.Draft) (core.ExpenseRecord, error) {
	var out core.ExpenseRecord
	err := c.do(ctx, log.OpUpdate, http.MethodPatch, c.recordURL(id), d, &out)
	if err == nil && out.ID == "" {
		out.ID = id
	}
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, log.OpDelete, http.MethodDelete, c.recordURL(id), nil, nil)
}

func (c *Client) recordURL(id string) string {
	return c.base + "/" + url.PathEscape(id)
}

// do performs one round trip. 404 maps to core.ErrNotFound, 422 to a
// *core.ValidationError and everything else that fails to a *core.TransportError.
func (c *Client) do(ctx context.Context, op, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &core.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Collection request failed",
			log.FieldOperation, op,
			log.FieldMethod, method,
			log.FieldError, err.Error())
		return &core.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Collection request completed",
		log.FieldOperation, op,
		log.FieldMethod, method,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return core.ErrNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return decodeValidation(resp.Body)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &core.TransportError{Op: op, Err: &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &core.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeValidation(r io.Reader) error {
	var payload struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil || payload.Error == "" {
		return &core.ValidationError{Field: "record", Err: errors.New("rejected by collection service")}
	}
	return &core.ValidationError{Field: payload.Field, Err: errors.New(payload.Error)}
}
