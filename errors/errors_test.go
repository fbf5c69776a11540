package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Not found", NewError("no row").Mark(ErrNotFound), http.StatusNotFound},
		{"Validation", NewError("bad").Mark(ErrValidation), http.StatusBadRequest},
		{"Unauthorized", NewError("bad token").Mark(ErrUnauthorized), http.StatusUnauthorized},
		{"Permission", NewError("role").Mark(ErrPermissionDenied), http.StatusForbidden},
		{"Database", WithError(fmt.Errorf("conn reset")).Mark(ErrDatabase), http.StatusInternalServerError},
		{"Extraction", NewError("xref").Mark(ErrExtraction), http.StatusUnprocessableEntity},
		{"Unmarked", fmt.Errorf("plain"), http.StatusInternalServerError},
		{"Wrapped", fmt.Errorf("outer: %w", NewError("no row").Mark(ErrNotFound)), http.StatusNotFound},
		{"Nil", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestMarkedErrorsKeepTheirCause(t *testing.T) {
	cause := fmt.Errorf("duplicate key")
	err := WithError(cause).WithHint("Database error").Mark(ErrDatabase)

	assert.True(t, IsDatabase(err))
	assert.False(t, IsNotFound(err))
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestNewErrorResponse(t *testing.T) {
	err := NewError("row 3 bad").
		WithHint("Malformed number").
		WithReportableDetails(map[string]any{"field": "amount"}).
		Mark(ErrValidation)

	resp := NewErrorResponse(err)
	assert.Equal(t, "Malformed number", resp.Detail)
	assert.Equal(t, ErrCodeValidation, resp.Code)
	assert.Equal(t, map[string]any{"field": "amount"}, resp.Details)

	plain := NewErrorResponse(fmt.Errorf("boom"))
	assert.Equal(t, "system error", plain.Detail)
	assert.Equal(t, ErrCodeSystemError, plain.Code)
	assert.Nil(t, plain.Details)
}
