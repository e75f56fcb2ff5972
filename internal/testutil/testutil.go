// Package testutil provides migrated throwaway databases and fixtures for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trainlog/trainlog/internal/db"
)

// NewDB opens a file-backed SQLite database in t.TempDir with all migrations applied.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB))
	return database
}

// CreateUser inserts a user with password "secret1" and returns its id.
func CreateUser(t *testing.T, database *sqlx.DB, email, username, role string) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	res, err := database.Exec(`INSERT INTO users (Email, Username, PasswordHash, Role) VALUES (?, ?, ?, ?)`,
		email, username, string(hash), role)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CreateExercise inserts an exercise owned by createdBy (nil for a public catalog entry).
func CreateExercise(t *testing.T, database *sqlx.DB, name, category string, createdBy *int64) int64 {
	t.Helper()
	isPublic := createdBy == nil
	res, err := database.Exec(`INSERT INTO exercises (name, category, isPublic, createdBy) VALUES (?, ?, ?, ?)`,
		name, category, isPublic, createdBy)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CreateWorkout inserts a workout and returns its id.
func CreateWorkout(t *testing.T, database *sqlx.DB, userID int64, name, date string, duration int) int64 {
	t.Helper()
	res, err := database.Exec(`INSERT INTO workouts (userId, name, date, duration) VALUES (?, ?, ?, ?)`,
		userID, name, date, duration)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// AddSet inserts a workout_exercises row; weight 0 is stored as NULL.
func AddSet(t *testing.T, database *sqlx.DB, workoutID, exerciseID int64, sets, reps int, weight float64) int64 {
	t.Helper()
	var w any
	if weight != 0 {
		w = weight
	}
	res, err := database.Exec(`INSERT INTO workout_exercises (workoutId, exerciseId, sets, reps, weight) VALUES (?, ?, ?, ?, ?)`,
		workoutID, exerciseID, sets, reps, w)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
