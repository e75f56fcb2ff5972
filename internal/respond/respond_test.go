package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/ctxkeys"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, "Not authenticated.")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Not authenticated."}`, rec.Body.String())
}

func TestInternalError_HidesDetailOutsideDebug(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req = req.WithContext(ctxkeys.WithConfig(req.Context(), &config.Config{Debug: false}))
	rec := httptest.NewRecorder()

	InternalError(rec, req, errors.New(`no such column 'secret_col'`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestInternalError_DebugDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req = req.WithContext(ctxkeys.WithConfig(req.Context(), &config.Config{Debug: true}))
	rec := httptest.NewRecorder()

	InternalError(rec, req, errors.New(`table goals has no column named 'foo' in INSERT`))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, InternalErrorCode, body.Error)
	assert.Equal(t, "foo", body.Detail)
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, ContentTypeCSV, "csv", time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, ContentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="training-data-2024-05-03.csv"`, rec.Header().Get("Content-Disposition"))
}
