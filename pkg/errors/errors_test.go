package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NotFound("profile", nil), http.StatusNotFound},
		{BadRequest("bad input", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("admin role required"), http.StatusForbidden},
		{Conflict("duplicate email", nil), http.StatusConflict},
		{Transport(assert.AnError), http.StatusBadGateway},
		{Internal(assert.AnError), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestIsTransport(t *testing.T) {
	assert.True(t, IsTransport(Transport(assert.AnError)))
	assert.True(t, IsTransport(fmt.Errorf("listing users: %w", Transport(assert.AnError))))
	assert.False(t, IsTransport(NotFound("profile", nil)))
	assert.False(t, IsTransport(assert.AnError))
}

func TestAsAppErrorUnwrapsNested(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Forbidden("admin role required"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrForbidden, appErr.Code)

	_, ok = AsAppError(assert.AnError)
	assert.False(t, ok)
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := BadRequest("invalid role", assert.AnError)
	assert.Contains(t, err.Error(), "invalid role")
	assert.Contains(t, err.Error(), assert.AnError.Error())
	assert.ErrorIs(t, err, assert.AnError)
}
