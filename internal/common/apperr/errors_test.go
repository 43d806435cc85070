package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("%w: bad status", ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("report %w", ErrNotFound), http.StatusNotFound},
		{"self action", fmt.Errorf("%w: cannot report yourself", ErrSelfAction), http.StatusUnprocessableEntity},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"conflict", fmt.Errorf("update user 4: %w", ErrConflict), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrConflict)))
	assert.False(t, IsRetryable(ErrNotFound))
}
