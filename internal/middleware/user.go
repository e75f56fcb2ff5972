package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/session"
)

// UserLookup loads the current state of an account.
type UserLookup interface {
	ByID(ctx context.Context, id int64) (*model.PublicUser, error)
}

// CurrentUser reloads the user named by the session and injects the fresh
// record into the context. Role changes apply on the next request. A user
// that no longer exists is logged out.
func CurrentUser(users UserLookup, manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			stored := sessionUser(r)
			if stored == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.ByID(r.Context(), stored.ID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				s := ctxkeys.Session(r.Context())
				if err := manager.Clear(r.Context(), s, session.UserKey); err != nil {
					slog.Error("failed to clear deleted session user", "error", err, "session_id", s.ID)
				}
				slog.Info("session user no longer exists", "user_id", stored.ID)
				next.ServeHTTP(w, r)
				return
			case err != nil:
				slog.Error("failed to load session user", "error", err, "user_id", stored.ID)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		})
	}
}
