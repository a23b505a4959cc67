package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("name is required"), http.StatusBadRequest},
		{"conflict", Conflict("time is vinculado"), http.StatusBadRequest},
		{"not found", NotFound("order %d not found", 3), http.StatusNotFound},
		{"stock", InsufficientStock("no stock"), http.StatusConflict},
		{"unauthorized", Unauthorized("login required"), http.StatusUnauthorized},
		{"plain", errors.New("db down"), http.StatusInternalServerError},
		{"pkg wrapped", errors.Wrap(NotFound("cake not found"), "load cake"), http.StatusNotFound},
		{"fmt wrapped", fmt.Errorf("tx: %w", Validation("bad")), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("x"), KindNotFound))
	assert.False(t, Is(nil, KindInternal))
	assert.Equal(t, "order 3 not found", NotFound("order %d not found", 3).Error())
}
