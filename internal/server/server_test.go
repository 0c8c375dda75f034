package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ricordi/internal/models"
	"ricordi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessCheck(t *testing.T) {
	st := testutil.NewMemStore()
	_, app := newTestServer(t, st)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestReadinessCheck(t *testing.T) {
	st := testutil.NewMemStore()
	_, app := newTestServer(t, st)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Store string `json:"store"`
			Redis string `json:"redis"`
		} `json:"checks"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks.Store)
	assert.Equal(t, "unavailable", body.Checks.Redis)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForError(models.NewEmptySubmitError()))
	assert.Equal(t, http.StatusBadRequest, statusForError(models.NewMissingInputError("name")))
	assert.Equal(t, http.StatusConflict, statusForError(models.NewSubmitInFlightError()))
	assert.Equal(t, http.StatusNotFound, statusForError(models.NewNotFoundError("Photo", "x")))
	assert.Equal(t, http.StatusBadGateway, statusForError(models.NewFetchError("photos", errors.New("boom"))))
	assert.Equal(t, http.StatusBadGateway, statusForError(models.NewStorageFailureError(errors.New("boom"))))
	assert.Equal(t, http.StatusInternalServerError, statusForError(errors.New("plain")))
}
