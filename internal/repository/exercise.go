package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
)

var ErrExerciseNotFound = notFound("exercise")

// ExerciseColumns are the exercise columns a client body may write.
var ExerciseColumns = []string{"name", "category", "description", "isPublic"}

type ExerciseFilter struct {
	Query    string
	Category string
}

type ExerciseRepository interface {
	Create(ctx context.Context, createdBy int64, res normalize.Result) (int64, error)
	ByID(ctx context.Context, userID, id int64) (*model.Exercise, error)
	Exercises(ctx context.Context, userID int64, filter ExerciseFilter) ([]*model.Exercise, error)
	Update(ctx context.Context, id int64, res normalize.Result) error
	Delete(ctx context.Context, id int64) error
}

type exerciseRepository struct {
	db *sqlx.DB
}

func NewExerciseRepository(db *sqlx.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) Create(ctx context.Context, createdBy int64, res normalize.Result) (int64, error) {
	res = res.Only(ExerciseColumns...).With("createdBy", createdBy)
	return insertRow(ctx, r.db, "exercises", res)
}

// ByID returns an exercise visible to userID: public ones and the user's own.
func (r *exerciseRepository) ByID(ctx context.Context, userID, id int64) (*model.Exercise, error) {
	return one[model.Exercise](ctx, r.db, ErrExerciseNotFound,
		`SELECT * FROM exercises WHERE id = ? AND (isPublic = 1 OR createdBy = ?)`, id, userID)
}

func (r *exerciseRepository) Exercises(ctx context.Context, userID int64, filter ExerciseFilter) ([]*model.Exercise, error) {
	query := `SELECT * FROM exercises WHERE (isPublic = 1 OR createdBy = ?)`
	args := []any{userID}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`
		args = append(args, likePattern(q), likePattern(q))
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		query += ` AND LOWER(category) = LOWER(?)`
		args = append(args, c)
	}
	query += ` ORDER BY LOWER(name) ASC`

	return many[model.Exercise](ctx, r.db, query, args...)
}

func (r *exerciseRepository) Update(ctx context.Context, id int64, res normalize.Result) error {
	res = res.Only(ExerciseColumns...)
	return updateRow(ctx, r.db, "exercises", res, "id = :where_id", map[string]any{"where_id": id}, ErrExerciseNotFound)
}

func (r *exerciseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrExerciseNotFound)
}
