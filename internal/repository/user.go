package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
)

var ErrUserNotFound = notFound("user")

// userColumns are the users columns a client body may write.
var userColumns = []string{"Email", "Username", "PasswordHash"}

const userPublicColumns = `Id, Email, Username, Role, CreatedAt`

type UserRepository interface {
	Create(ctx context.Context, res normalize.Result) (int64, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Users(ctx context.Context) ([]*model.PublicUser, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	Delete(ctx context.Context, id int64) error
	AdminStats(ctx context.Context) (*model.AdminStats, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user. The role is decided inside the statement: the first
// user in an empty table becomes admin, everyone after is a regular user.
func (r *userRepository) Create(ctx context.Context, res normalize.Result) (int64, error) {
	res = res.Only(userColumns...)
	if res.Empty() {
		return 0, ErrNoFields
	}
	query := fmt.Sprintf(`INSERT INTO users (%s, Role)
	          VALUES (%s, CASE WHEN EXISTS (SELECT 1 FROM users) THEN '%s' ELSE '%s' END)`,
		res.InsertColumns(), res.InsertValues(), model.RoleUser, model.RoleAdmin)

	result, err := sqlx.NamedExecContext(ctx, r.db, query, res.Body)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (r *userRepository) ByID(ctx context.Context, id int64) (*model.User, error) {
	return one[model.User](ctx, r.db, ErrUserNotFound, `SELECT * FROM users WHERE Id = ?`, id)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return one[model.User](ctx, r.db, ErrUserNotFound, `SELECT * FROM users WHERE LOWER(Email) = LOWER(?)`, email)
}

func (r *userRepository) Exists(ctx context.Context, email, username string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM users WHERE LOWER(Email) = LOWER(?) OR LOWER(Username) = LOWER(?)`,
		email, username)
	return n > 0, err
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}

func (r *userRepository) Users(ctx context.Context) ([]*model.PublicUser, error) {
	return many[model.PublicUser](ctx, r.db, `SELECT `+userPublicColumns+` FROM users ORDER BY Id`)
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET Role = ? WHERE Id = ?`, role, id)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrUserNotFound)
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE Id = ?`, id)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrUserNotFound)
}

func (r *userRepository) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	stats := &model.AdminStats{}
	err := r.db.GetContext(ctx, stats, `SELECT
		(SELECT COUNT(*) FROM users) AS totalUsers,
		(SELECT COUNT(*) FROM users WHERE Role = 'admin') AS adminUsers,
		(SELECT COUNT(*) FROM workouts) AS totalWorkouts,
		(SELECT COUNT(*) FROM exercises) AS totalExercises,
		(SELECT COUNT(*) FROM goals) AS totalGoals,
		(SELECT COUNT(*) FROM sessions) AS activeSessions`)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
