// Package respond writes JSON and CSV responses and the shared error envelope.
package respond

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/db"
)

const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeCSV  = "text/csv; charset=utf-8"

	// InternalErrorCode is the error value of debug-mode 500 bodies.
	InternalErrorCode = "INTERNAL_SERVER_ERROR"
)

// ErrorBody is the error envelope returned by every endpoint.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// InternalError logs err and answers 500. With debug enabled the body carries
// the sanitized driver message; otherwise the body is empty.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)

	cfg := ctxkeys.Config(r.Context())
	if cfg != nil && cfg.Debug {
		JSON(w, http.StatusInternalServerError, ErrorBody{
			Error:  InternalErrorCode,
			Detail: db.SanitizeError(err),
		})
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

// Attachment sets the download headers for a date-stamped export file.
func Attachment(w http.ResponseWriter, contentType, ext string, now time.Time) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="training-data-%s.%s"`, now.Format("2006-01-02"), ext))
}
