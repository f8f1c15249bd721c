package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/robogamehub/internal/model"
	"github.com/mcoot/robogamehub/internal/services/auth"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
		{auth.ErrInvalidSession, http.StatusUnauthorized, "Unauthorized"},
		{fmt.Errorf("create user: %w", model.ErrUsernameTaken), http.StatusConflict, "Username already exists"},
		{model.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, tc.message, decode(t, rec)["message"])
	}
}

func TestStoreErrorDetailIsNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("get user: %w: %w", model.ErrStoreUnavailable, errors.New("dial tcp 10.0.0.5:5432")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestDescribeReplacesGenericMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, Describe(model.ErrStoreUnavailable, "Failed to fetch games"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch games", decode(t, rec)["message"])
}

func TestDescribeKeepsSpecificStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, Describe(model.ErrUserNotFound, "Failed to fetch summary"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}

func TestConstructedErrorsKeepStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewInvalidRequestError("bad"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidRequest, decode(t, rec)["code"])

	rec = httptest.NewRecorder()
	WriteError(rec, NewUnavailableError("down"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "down", decode(t, rec)["message"])
}
