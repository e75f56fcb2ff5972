package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trainlog/trainlog/internal/db"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/repository"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.db")

	out, err := run(t, "migrate", "up", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
}

func TestACLCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.db")

	out, err := run(t, "acl", "add", "--db", path, "--roles", "anonymous", "--route", "/api/admin", "--deny")
	require.NoError(t, err)
	assert.Contains(t, out, "added rule 1")

	out, err = run(t, "acl", "list", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "/api/admin")
	assert.Contains(t, out, "disallow")

	_, err = run(t, "acl", "add", "--db", path, "--roles", "user")
	assert.Error(t, err)

	out, err = run(t, "acl", "remove", "1", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "removed rule 1")

	_, err = run(t, "acl", "remove", "1", "--db", path)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsersRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.db")
	_, err := run(t, "migrate", "up", "--db", path)
	require.NoError(t, err)

	database, err := db.Init(path)
	require.NoError(t, err)
	repo := repository.NewUserRepository(database)
	n := normalize.New(normalize.BcryptHasher{Cost: bcrypt.MinCost})
	for _, body := range []string{
		`{"email":"first@example.com","username":"first","password":"secret1"}`,
		`{"email":"second@example.com","username":"second","password":"secret1"}`,
	} {
		res, err := n.Normalize(normalize.UsersTable, []byte(body))
		require.NoError(t, err)
		_, err = repo.Create(context.Background(), res)
		require.NoError(t, err)
	}
	require.NoError(t, database.Close())

	out, err := run(t, "users", "role", "second@example.com", "admin", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "second@example.com is now admin")

	out, err = run(t, "users", "list", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "first@example.com")
	assert.NotContains(t, out, "PasswordHash")

	_, err = run(t, "users", "role", "second@example.com", "owner", "--db", path)
	assert.Error(t, err)

	_, err = run(t, "users", "role", "nobody@example.com", "admin", "--db", path)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionsSweep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.db")

	out, err := run(t, "sessions", "sweep", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0 expired sessions")
}
