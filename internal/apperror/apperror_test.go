package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("name is required"), http.StatusBadRequest},
		{NotFound("Project not found"), http.StatusNotFound},
		{Unauthenticated("Token expired"), http.StatusUnauthorized},
		{Forbidden("Insufficient permissions"), http.StatusForbidden},
		{Conflict("slug already in use"), http.StatusConflict},
		{Unavailable("store not provisioned", errors.New("code 5")), http.StatusServiceUnavailable},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Skill not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}

func TestPublicMessage_HidesInternalCause(t *testing.T) {
	cause := errors.New("pq: password authentication failed")
	assert.Equal(t, "Internal server error", PublicMessage(Internal("list projects", cause)))
	assert.Equal(t, "Internal server error", PublicMessage(cause))
	assert.Equal(t, "Name is required", PublicMessage(Validation("Name is required")))

	err := Unavailable("Service temporarily unavailable", cause)
	assert.Equal(t, "Service temporarily unavailable", PublicMessage(err))
	assert.ErrorIs(t, err, cause)
}
