package middleware

import (
	"log/slog"
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/session"
)

// Session resolves the request's session once and stores it in the context.
// When session storage fails the request continues without a session.
func Session(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ctxkeys.Session(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			s, err := manager.Resolve(w, r)
			if err != nil {
				slog.Error("failed to resolve session", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithSession(r.Context(), s)))
		})
	}
}

// sessionUser reads the logged-in user stored in the session, if any.
func sessionUser(r *http.Request) *model.PublicUser {
	s := ctxkeys.Session(r.Context())
	if s == nil {
		return nil
	}

	var user model.PublicUser
	ok, err := s.Get(session.UserKey, &user)
	if err != nil {
		slog.Warn("invalid session user", "error", err, "session_id", s.ID)
		return nil
	}
	if !ok || user.ID == 0 {
		return nil
	}
	return &user
}
