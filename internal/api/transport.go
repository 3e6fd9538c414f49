package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoicedesk/idesk/internal/logging"
)

// TokenSource returns the current bearer token, or "" when no session is
// active. It is consulted on every request, never cached by the transport.
type TokenSource func() string

// Config holds transport construction parameters. Tokens, Authenticated and
// OnUnauthorized are injected accessors so the transport never reaches into
// ambient session state.
type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	Tokens         TokenSource
	Authenticated  func() bool
	OnUnauthorized func()
	Logger         logging.Logger
}

// Transport is the single configured request client every resource module
// shares. It attaches the bearer token at call time, reacts to 401 while a
// session is active by firing the injected logout side effect, and otherwise
// passes failures upward untouched. No retries, no caching, no dedup.
type Transport struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	authenticated  func() bool
	onUnauthorized func()
	log            logging.Logger
}

// NewTransport builds a Transport from cfg. BaseURL is required; a default
// HTTP client with a 30s timeout is used when none is supplied.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewDiscard()
	}

	return &Transport{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		http:           httpClient,
		tokens:         cfg.Tokens,
		authenticated:  cfg.Authenticated,
		onUnauthorized: cfg.OnUnauthorized,
		log:            log,
	}, nil
}

// Response is a decoded-enough HTTP response: status, raw body, headers.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// ExpectContentType returns an error unless the response carries the given
// media type. Used by binary endpoints (PDF, CSV export).
func (r *Response) ExpectContentType(want string) error {
	got, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || got != want {
		return fmt.Errorf("%w: unexpected content type %q", ErrInvalidResponse, r.Header.Get("Content-Type"))
	}
	return nil
}

// StatusError is returned when the server answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

type requestOptions struct {
	header http.Header
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// WithIfMatch attaches an If-Match header with the caller-supplied record
// version, enabling server-side optimistic-locking conflict detection.
func WithIfMatch(version int64) RequestOption {
	return func(o *requestOptions) {
		o.header.Set("If-Match", strconv.FormatInt(version, 10))
	}
}

// WithAccept overrides the Accept header (binary downloads).
func WithAccept(contentType string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set("Accept", contentType)
	}
}

// Get issues a GET request for path with optional query parameters.
func (t *Transport) Get(ctx context.Context, path string, query url.Values, opts ...RequestOption) (*Response, error) {
	return t.do(ctx, http.MethodGet, path, query, nil, opts...)
}

// Post issues a POST request with a JSON-encoded body (nil for empty).
func (t *Transport) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return t.do(ctx, http.MethodPost, path, nil, body, opts...)
}

// Put issues a PUT request with a JSON-encoded body.
func (t *Transport) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return t.do(ctx, http.MethodPut, path, nil, body, opts...)
}

// Delete issues a DELETE request.
func (t *Transport) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return t.do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

func (t *Transport) do(ctx context.Context, method, path string, query url.Values, body any, opts ...RequestOption) (*Response, error) {
	o := requestOptions{header: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}

	reqURL := t.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %v", ErrRequestSetup, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestSetup, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range o.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	// The token is read at call time, never at construction.
	if t.tokens != nil {
		if token := t.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	t.log.Debug(ctx, "api request", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && t.authenticated != nil && t.authenticated() {
			// The session believed it was valid: force a logout, but the
			// caller still observes the original failure.
			if t.onUnauthorized != nil {
				t.onUnauthorized()
			}
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: data}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Header:     resp.Header,
	}, nil
}
