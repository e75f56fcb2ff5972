package ctxkeys

import (
	"context"

	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/session"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey    contextKey = "user"
	SessionKey contextKey = "session"
	ConfigKey  contextKey = "config"
)

// User returns the authenticated user injected by the auth guard, or nil.
func User(ctx context.Context) *model.PublicUser {
	user, _ := ctx.Value(UserKey).(*model.PublicUser)
	return user
}

func WithUser(ctx context.Context, user *model.PublicUser) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// Session returns the session resolved for this request, or nil when
// session storage was unavailable.
func Session(ctx context.Context) *session.Session {
	s, _ := ctx.Value(SessionKey).(*session.Session)
	return s
}

func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}
