package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is the typed failure for any non-2xx backend response. The raw body is
// kept so validation detail can be surfaced verbatim to the user.
type Error struct {
	StatusCode int
	Message    string
	// Fields holds field-level validation detail when the backend supplies it
	// (DRF-style {"field": ["msg", ...]}). Empty otherwise.
	Fields map[string][]string
	Body   []byte
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// IsAuthError reports whether the error is a 401 from the backend.
func (e *Error) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsValidation reports whether the error carries field-level detail that a
// form can render inline.
func (e *Error) IsValidation() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && len(e.Fields) > 0
}

// IsTransient reports whether a retry could plausibly succeed.
func (e *Error) IsTransient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// FieldMessages joins the validation detail for one field into a single line.
func (e *Error) FieldMessages(field string) string {
	return strings.Join(e.Fields[field], "; ")
}

// newError builds an *Error from a response body, pulling out the common
// backend error shapes: {"detail": "..."}, {"message": "..."}, or a map of
// field -> list of messages.
func newError(statusCode int, body []byte) *Error {
	apiErr := &Error{StatusCode: statusCode, Body: body}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		apiErr.Message = http.StatusText(statusCode)
		return apiErr
	}

	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			apiErr.Message = msg
			delete(envelope, key)
			break
		}
	}

	// Remaining string-list values are field validation detail.
	for field, raw := range envelope {
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err == nil && len(msgs) > 0 {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[field] = msgs
			continue
		}
		var single string
		if err := json.Unmarshal(raw, &single); err == nil && single != "" {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[field] = []string{single}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}

// AsError unwraps err into an *Error if there is one in the chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
