package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"bad request", BadRequest("Duplicate username: %s", "u1"), http.StatusBadRequest},
		{"invalid", Invalid([]string{"a", "b"}), http.StatusBadRequest},
		{"unauthorized", Unauthorized("Unauthorized"), http.StatusUnauthorized},
		{"not found", NotFound("No user: %s", "u1"), http.StatusNotFound},
		{"internal", Wrap(errors.New("boom"), "failed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	err := fmt.Errorf("failed to load user: %w", NotFound("No user: %s", "u9"))

	typed := As(err)
	if assert.NotNil(t, typed) {
		assert.Equal(t, []string{"No user: u9"}, typed.Messages)
	}
	assert.True(t, IsNotFound(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, "failed to query places")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to query places: connection refused", err.Error())
}

func TestIsList(t *testing.T) {
	assert.True(t, Invalid([]string{"stars is required"}).IsList())
	assert.False(t, BadRequest("No data to update").IsList())
}
