package middleware

import (
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/respond"
)

const (
	msgNotAuthenticated = "Not authenticated."
	msgForbidden        = "Forbidden."
)

// RequireAuth admits requests carrying the user injected by CurrentUser.
// Everything else gets 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			respond.Error(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}
		next(w, r)
	}
}

// RequireAdmin is RequireAuth plus an admin role check.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !ctxkeys.User(r.Context()).IsAdmin() {
			respond.Error(w, http.StatusForbidden, msgForbidden)
			return
		}
		next(w, r)
	})
}
