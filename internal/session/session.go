// Package session maps an opaque cookie token to a JSON blob stored in the
// sessions table.
//
// Session data is read, modified and written back without a transaction or
// version check. Two concurrent requests carrying the same token can
// therefore overwrite each other's changes; the last write wins.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/trainlog/trainlog/internal/repository"
)

const (
	CookieName = "session"

	// UserKey holds the logged-in model.PublicUser.
	UserKey = "user"
)

// Session is one resolved session. It is bound to a single request.
type Session struct {
	ID   string
	data string
	// New is true when the session was minted by this request.
	New bool
}

// Get decodes the value stored under key into dst. It reports false when the
// key is missing or null.
func (s *Session) Get(key string, dst any) (bool, error) {
	res := gjson.Get(s.data, key)
	if !res.Exists() || res.Type == gjson.Null {
		return false, nil
	}
	if err := json.Unmarshal([]byte(res.Raw), dst); err != nil {
		return false, fmt.Errorf("failed to decode session key %q: %w", key, err)
	}
	return true, nil
}

// Data returns the raw JSON blob.
func (s *Session) Data() string {
	return s.data
}

type Manager struct {
	repo     repository.SessionRepository
	lifetime time.Duration
	now      func() time.Time
}

func NewManager(repo repository.SessionRepository, lifetime time.Duration) *Manager {
	return &Manager{
		repo:     repo,
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// Resolve loads the session named by the request cookie. A missing cookie or
// an unknown token gets a freshly minted session and a Set-Cookie header.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) (*Session, error) {
	ctx := r.Context()

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		data, err := m.repo.Data(ctx, cookie.Value)
		if err == nil {
			return &Session{ID: cookie.Value, data: data}, nil
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}

	id := uuid.NewString()
	if err := m.repo.Create(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.lifetime.Seconds()),
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})

	return &Session{ID: id, data: "{}", New: true}, nil
}

// Set stores value under key and writes the blob back immediately. When the
// sessions table has a modified column it is refreshed too; a failing schema
// check is treated as "no modified column".
func (m *Manager) Set(ctx context.Context, s *Session, key string, value any) error {
	data := s.data
	if data == "" {
		data = "{}"
	}
	updated, err := sjson.Set(data, key, value)
	if err != nil {
		return fmt.Errorf("failed to encode session key %q: %w", key, err)
	}

	touchModified, err := m.repo.HasModifiedColumn(ctx)
	if err != nil {
		slog.Debug("session modified column check failed", "error", err)
		touchModified = false
	}

	if err := m.repo.UpdateData(ctx, s.ID, updated, touchModified); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.data = updated
	return nil
}

// Clear sets key to null.
func (m *Manager) Clear(ctx context.Context, s *Session, key string) error {
	return m.Set(ctx, s, key, nil)
}

// Sweep deletes sessions older than the configured lifetime.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.repo.DeleteCreatedBefore(ctx, m.now().Add(-m.lifetime))
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
