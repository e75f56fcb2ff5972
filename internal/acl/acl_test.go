package acl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainlog/trainlog/internal/model"
)

type stubRepo struct {
	rules []*model.ACLRule
	err   error
}

func (s *stubRepo) Rules(context.Context) ([]*model.ACLRule, error) {
	return s.rules, s.err
}

func rule(roles, method, route, allow string) *model.ACLRule {
	return &model.ACLRule{UserRoles: roles, Method: method, Route: route, Allow: allow}
}

func TestChecker_Disabled(t *testing.T) {
	c := NewChecker(&stubRepo{}, false)
	assert.True(t, c.Allowed(AnonymousRole, "DELETE", "/api/admin/users/1"))
}

func TestChecker_Rules(t *testing.T) {
	repo := &stubRepo{rules: []*model.ACLRule{
		rule("anonymous,user,admin", "*", "/api/login", model.ACLAllow),
		rule("anonymous", "POST", "/api/register", model.ACLAllow),
		rule("user, admin", "*", "/api", model.ACLAllow),
		rule("user", "*", "/api/admin", model.ACLDisallow),
	}}
	c := NewChecker(repo, true)
	require.NoError(t, c.Refresh(context.Background()))

	tests := []struct {
		role, method, path string
		want               bool
	}{
		{"anonymous", "POST", "/api/login", true},
		{"anonymous", "post", "/api/register", true},
		{"anonymous", "GET", "/api/register", false},
		{"anonymous", "GET", "/api/goals", false},
		{"user", "GET", "/api/goals/3", true},
		{"user", "GET", "/api/admin/users", false},
		{"admin", "GET", "/api/admin/users", true},
		{"user", "GET", "/apix", false},
		{"user", "GET", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Allowed(tt.role, tt.method, tt.path))
		})
	}
}

func TestChecker_RefreshFailureKeepsRules(t *testing.T) {
	repo := &stubRepo{rules: []*model.ACLRule{rule("user", "*", "/api", model.ACLAllow)}}
	c := NewChecker(repo, true)
	require.NoError(t, c.Refresh(context.Background()))

	repo.err = errors.New("database is locked")
	repo.rules = nil
	require.Error(t, c.Refresh(context.Background()))

	assert.True(t, c.Allowed("user", "GET", "/api/goals"))
}
