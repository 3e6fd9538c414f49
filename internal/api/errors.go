package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/invoicedesk/idesk/internal/logging"
)

// MsgNoResponse is the fixed user-facing message for requests that went out
// but never received a response. It deliberately ignores the caller-supplied
// default so the UI can always tell "offline" apart from a server error.
const MsgNoResponse = "no response from server, please check your connection"

var (
	// ErrRequestSetup marks failures that happened before the request was
	// ever dispatched (bad URL, unencodable body).
	ErrRequestSetup = errors.New("request setup failed")

	// ErrInvalidResponse marks a 2xx response whose envelope is missing or
	// carries success=false.
	ErrInvalidResponse = errors.New("invalid server response")
)

// Error is the uniform shape every API failure is converted into before it
// reaches store or UI code. Exactly one of three wire conditions produced it:
// the server responded with an error status (Status > 0), the request was
// sent but nothing came back (IsNetworkError), or the request never left the
// client. IsCancelled labels a context cancellation so callers can treat it
// as a no-op instead of a real failure.
type Error struct {
	Message        string
	Status         int
	Details        map[string]string
	IsNetworkError bool
	IsCancelled    bool
	Err            error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err is (or wraps) a cancellation-tagged Error
// or a bare context.Canceled.
func IsCancelled(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.IsCancelled
	}
	return errors.Is(err, context.Canceled)
}

// Op identifies the calling module and operation for diagnostic logging.
type Op struct {
	Name   string // e.g. "clients.List"
	Method string
	Path   string
}

// Normalize converts any failure coming out of the transport or the envelope
// decoding into the uniform *Error. It never returns nil. Classification, in
// order: server-responded (StatusError), cancelled, sent-but-unanswered
// (url.Error with no response), request setup failure, anything else.
// The operation context is logged before returning.
func Normalize(err error, defaultMessage string, op Op, log logging.Logger) *Error {
	uniform := &Error{Message: defaultMessage, Err: err}

	var statusErr *StatusError
	var urlErr *url.Error
	switch {
	case errors.As(err, &statusErr):
		uniform.Status = statusErr.StatusCode
		if msg, details := parseErrorBody(statusErr.Body); msg != "" || details != nil {
			if msg != "" {
				uniform.Message = msg
			}
			uniform.Details = details
		}
	case errors.Is(err, context.Canceled):
		uniform.IsCancelled = true
		uniform.Message = "request cancelled"
	case errors.As(err, &urlErr):
		// The request was dispatched and nothing came back.
		uniform.IsNetworkError = true
		uniform.Message = MsgNoResponse
	case errors.Is(err, ErrRequestSetup):
		if msg := err.Error(); msg != "" {
			uniform.Message = msg
		}
	default:
		if err != nil && err.Error() != "" {
			uniform.Message = err.Error()
		}
	}

	if uniform.Message == "" {
		uniform.Message = defaultMessage
	}

	if log != nil {
		log.Error(context.Background(), "api request failed",
			"op", op.Name,
			"method", op.Method,
			"path", op.Path,
			"status", uniform.Status,
			"message", uniform.Message,
			"details", uniform.Details,
			"network", uniform.IsNetworkError,
			"cancelled", uniform.IsCancelled,
		)
	}

	return uniform
}

// parseErrorBody extracts a user-facing message and optional field-keyed
// validation details from a server error body. Message precedence: top-level
// "message", then nested "error.message" (or a bare "error" string). Details
// come from "errors" first, then "details".
func parseErrorBody(body []byte) (string, map[string]string) {
	var raw struct {
		Message string            `json:"message"`
		Error   json.RawMessage   `json:"error"`
		Errors  map[string]string `json:"errors"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil
	}

	msg := raw.Message
	if msg == "" && len(raw.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw.Error, &nested); err == nil && nested.Message != "" {
			msg = nested.Message
		} else {
			var s string
			if err := json.Unmarshal(raw.Error, &s); err == nil {
				msg = s
			}
		}
	}

	details := raw.Errors
	if len(details) == 0 {
		details = raw.Details
	}
	if len(details) == 0 {
		details = nil
	}
	return msg, details
}
