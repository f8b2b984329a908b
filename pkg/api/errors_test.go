package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantFields  map[string][]string
	}{
		{
			name:        "detail message",
			status:      401,
			body:        `{"detail": "token is invalid or expired"}`,
			wantMessage: "token is invalid or expired",
		},
		{
			name:        "message key",
			status:      400,
			body:        `{"message": "invalid request body"}`,
			wantMessage: "invalid request body",
		},
		{
			name:        "error key",
			status:      500,
			body:        `{"error": "something broke"}`,
			wantMessage: "something broke",
		},
		{
			name:        "field validation lists",
			status:      400,
			body:        `{"email": ["a user with this email already exists"], "password": ["too short"]}`,
			wantMessage: "Bad Request",
			wantFields: map[string][]string{
				"email":    {"a user with this email already exists"},
				"password": {"too short"},
			},
		},
		{
			name:        "single string field detail",
			status:      400,
			body:        `{"detail": "fix the form", "role": "this account is registered as company"}`,
			wantMessage: "fix the form",
			wantFields: map[string][]string{
				"role": {"this account is registered as company"},
			},
		},
		{
			name:        "non JSON body",
			status:      502,
			body:        `<html>Bad Gateway</html>`,
			wantMessage: "Bad Gateway",
		},
		{
			name:        "empty object",
			status:      404,
			body:        `{}`,
			wantMessage: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := newError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantFields, apiErr.Fields)
			assert.Equal(t, []byte(tt.body), apiErr.Body)
		})
	}
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, (&Error{StatusCode: http.StatusUnauthorized}).IsAuthError())
	assert.False(t, (&Error{StatusCode: http.StatusForbidden}).IsAuthError())

	withFields := &Error{StatusCode: 400, Fields: map[string][]string{"email": {"bad"}}}
	assert.True(t, withFields.IsValidation())
	assert.False(t, (&Error{StatusCode: 400}).IsValidation())
	assert.False(t, (&Error{StatusCode: 500, Fields: map[string][]string{"x": {"y"}}}).IsValidation())

	assert.True(t, (&Error{StatusCode: 503}).IsTransient())
	assert.True(t, (&Error{StatusCode: http.StatusTooManyRequests}).IsTransient())
	assert.False(t, (&Error{StatusCode: 400}).IsTransient())
}

func TestFieldMessages(t *testing.T) {
	apiErr := &Error{Fields: map[string][]string{"email": {"required", "must be valid"}}}
	assert.Equal(t, "required; must be valid", apiErr.FieldMessages("email"))
	assert.Empty(t, apiErr.FieldMessages("missing"))
}

func TestAsError(t *testing.T) {
	orig := &Error{StatusCode: 409, Message: "you have already applied to this vacancy"}
	wrapped := fmt.Errorf("apply: %w", orig)

	apiErr, ok := AsError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 409, apiErr.StatusCode)

	_, ok = AsError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
