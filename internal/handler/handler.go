package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
	"github.com/trainlog/trainlog/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// readBody reads the request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// pathID parses a numeric path parameter, answering 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, name+" must be a positive number.")
		return 0, false
	}
	return id, true
}

// queryInt returns the integer query parameter key, or 0 when absent or invalid.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

// handleError maps domain errors to status codes. Anything unrecognized is
// logged and answered with 500.
func handleError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case validation.IsValidation(err):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, normalize.ErrNotObject):
		respond.Error(w, http.StatusBadRequest, "Request body must be a JSON object.")
	case errors.Is(err, repository.ErrNoFields):
		respond.Error(w, http.StatusBadRequest, "No writable fields in request body.")
	case errors.Is(err, errBodyTooLarge):
		respond.Error(w, http.StatusRequestEntityTooLarge, "Request body too large.")
	case errors.Is(err, repository.ErrNotFound):
		respond.Error(w, http.StatusNotFound, repository.ErrNotFound.Error())
	case errors.Is(err, service.ErrForbidden):
		respond.Error(w, http.StatusForbidden, "Forbidden.")
	case errors.Is(err, service.ErrSelfModification):
		respond.Error(w, http.StatusForbidden, "Admins cannot change their own account.")
	case errors.Is(err, service.ErrUserExists):
		respond.Error(w, http.StatusConflict, "User already exists.")
	case errors.Is(err, service.ErrExerciseInUse):
		respond.Error(w, http.StatusConflict, "Exercise is used by workouts.")
	case errors.Is(err, service.ErrStorageDisabled):
		respond.Error(w, http.StatusServiceUnavailable, "Export storage is not configured.")
	default:
		respond.InternalError(w, r, fmt.Errorf("failed to %s: %w", action, err))
	}
}
