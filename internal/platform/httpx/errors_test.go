package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcpedia/leasing-api/internal/shared"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("get quote: %w", shared.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: already accepted", shared.ErrConflict), http.StatusConflict},
		{"validation", fmt.Errorf("%w: quantity", shared.ErrValidation), http.StatusBadRequest},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden},
		{"credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
			assert.Equal(t, tc.status, problem.Status)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: connection refused"))

	var problem ProblemDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
	assert.Empty(t, problem.Detail)
}
