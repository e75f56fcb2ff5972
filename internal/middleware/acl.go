package middleware

import (
	"log/slog"
	"net/http"

	"github.com/trainlog/trainlog/internal/acl"
	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/respond"
)

// ACL rejects requests the rule set does not allow for the caller's role.
func ACL(checker *acl.Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			role := acl.AnonymousRole
			if user := ctxkeys.User(r.Context()); user != nil {
				role = user.Role
			}

			if !checker.Allowed(role, r.Method, r.URL.Path) {
				slog.Warn("acl denied request", "role", role, "method", r.Method, "path", r.URL.Path)
				respond.Error(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
