package session

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/testutil"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(repository.NewSessionRepository(testutil.NewDB(t)), 2*time.Hour)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestResolve_MintsSessionAndCookie(t *testing.T) {
	m := newManager(t)

	rec := httptest.NewRecorder()
	s, err := m.Resolve(rec, httptest.NewRequest(http.MethodGet, "/api/login", nil))
	require.NoError(t, err)
	assert.True(t, s.New)
	assert.Equal(t, "{}", s.Data())

	c := sessionCookie(t, rec)
	assert.Equal(t, s.ID, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 7200, c.MaxAge)
}

func TestResolve_SecureCookieOverHTTPS(t *testing.T) {
	m := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	_, err := m.Resolve(rec, req)
	require.NoError(t, err)
	assert.True(t, sessionCookie(t, rec).Secure)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = httptest.NewRecorder()
	_, err = m.Resolve(rec, req)
	require.NoError(t, err)
	assert.True(t, sessionCookie(t, rec).Secure)
}

func TestResolve_UnknownTokenGetsFreshSession(t *testing.T) {
	m := newManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged-token"})
	rec := httptest.NewRecorder()

	s, err := m.Resolve(rec, req)
	require.NoError(t, err)
	assert.True(t, s.New)
	assert.NotEqual(t, "forged-token", s.ID)
	assert.Equal(t, s.ID, sessionCookie(t, rec).Value)
}

func TestSetGet_RoundTripAcrossRequests(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	s, err := m.Resolve(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	user := &model.PublicUser{ID: 1, Email: "a@x.com", Username: "a", Role: model.RoleAdmin}
	require.NoError(t, m.Set(ctx, s, UserKey, user))
	require.NoError(t, m.Set(ctx, s, "theme", "dark"))

	// Same request.
	var got model.PublicUser
	ok, err := s.Get(UserKey, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *user, got)

	// Subsequent request with the same cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, rec))
	rec2 := httptest.NewRecorder()
	again, err := m.Resolve(rec2, req)
	require.NoError(t, err)
	assert.False(t, again.New)
	assert.Equal(t, s.ID, again.ID)
	assert.Empty(t, rec2.Result().Cookies())

	var theme string
	ok, err = again.Get("theme", &theme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", theme)

	require.NoError(t, m.Clear(ctx, again, UserKey))
	ok, err = again.Get(UserKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_MissingKey(t *testing.T) {
	s := &Session{ID: "x", data: `{"user":null}`}
	var u model.PublicUser
	ok, err := s.Get("user", &u)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Get("other", &u)
	require.NoError(t, err)
	assert.False(t, ok)

	s = &Session{ID: "x", data: `{"user":"not an object"}`}
	_, err = s.Get("user", &u)
	assert.Error(t, err)
}

// schemaCheckFailingRepo wraps a real repository but fails the schema check.
type schemaCheckFailingRepo struct {
	repository.SessionRepository
	touched []bool
}

func (r *schemaCheckFailingRepo) HasModifiedColumn(context.Context) (bool, error) {
	return false, errors.New("database is locked")
}

func (r *schemaCheckFailingRepo) UpdateData(ctx context.Context, id, data string, touchModified bool) error {
	r.touched = append(r.touched, touchModified)
	return r.SessionRepository.UpdateData(ctx, id, data, touchModified)
}

func TestSet_SchemaCheckFailureDegradesGracefully(t *testing.T) {
	repo := &schemaCheckFailingRepo{SessionRepository: repository.NewSessionRepository(testutil.NewDB(t))}
	m := NewManager(repo, time.Hour)

	s, err := m.Resolve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	require.NoError(t, m.Set(context.Background(), s, "k", 42))
	assert.Equal(t, []bool{false}, repo.touched)

	var v int
	ok, err := s.Get("k", &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestSweep_DeletesExpiredSessions(t *testing.T) {
	db := testutil.NewDB(t)
	m := NewManager(repository.NewSessionRepository(db), 2*time.Hour)

	fresh, err := m.Resolve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO sessions (id, data, created) VALUES ('stale', '{}', DATETIME('now', '-1 day'))`)
	require.NoError(t, err)

	n, err := m.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: fresh.ID})
	s, err := m.Resolve(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, s.ID)
}
