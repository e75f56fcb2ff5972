package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
)

var ErrGoalNotFound = notFound("goal")

// GoalColumns are the goal columns a client body may write.
var GoalColumns = []string{"title", "description", "targetValue", "currentValue", "unit", "targetDate", "isCompleted"}

type GoalRepository interface {
	Create(ctx context.Context, userID int64, res normalize.Result) (int64, error)
	ByID(ctx context.Context, userID, id int64) (*model.Goal, error)
	Goals(ctx context.Context, userID int64) ([]*model.Goal, error)
	Update(ctx context.Context, userID, id int64, res normalize.Result) error
	SetProgress(ctx context.Context, userID, id int64, current float64) error
	Complete(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID, id int64) error
	Stats(ctx context.Context, userID int64) (*model.GoalStats, error)
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, userID int64, res normalize.Result) (int64, error) {
	res = res.Only(GoalColumns...).With("userId", userID)
	return insertRow(ctx, r.db, "goals", res)
}

func (r *goalRepository) ByID(ctx context.Context, userID, id int64) (*model.Goal, error) {
	return one[model.Goal](ctx, r.db, ErrGoalNotFound, `SELECT * FROM goals WHERE id = ? AND userId = ?`, id, userID)
}

func (r *goalRepository) Goals(ctx context.Context, userID int64) ([]*model.Goal, error) {
	return many[model.Goal](ctx, r.db,
		`SELECT * FROM goals WHERE userId = ? ORDER BY isCompleted ASC, createdAt DESC, id DESC`, userID)
}

func (r *goalRepository) Update(ctx context.Context, userID, id int64, res normalize.Result) error {
	res = res.Only(GoalColumns...)
	return updateRow(ctx, r.db, "goals", res,
		"id = :where_id AND userId = :where_user_id",
		map[string]any{"where_id": id, "where_user_id": userID},
		ErrGoalNotFound)
}

// SetProgress stores current and derives completion from it, so lowering
// progress below the target reopens a goal.
func (r *goalRepository) SetProgress(ctx context.Context, userID, id int64, current float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE goals SET currentValue = ?, isCompleted = CASE WHEN ? >= targetValue THEN 1 ELSE 0 END
		 WHERE id = ? AND userId = ?`,
		current, current, id, userID)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrGoalNotFound)
}

func (r *goalRepository) Complete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE goals SET isCompleted = 1 WHERE id = ? AND userId = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrGoalNotFound)
}

func (r *goalRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND userId = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrGoalNotFound)
}

func (r *goalRepository) Stats(ctx context.Context, userID int64) (*model.GoalStats, error) {
	stats := &model.GoalStats{}
	err := r.db.GetContext(ctx, stats, `SELECT
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN isCompleted = 1 THEN 1 ELSE 0 END), 0) AS completed,
		COALESCE(SUM(CASE WHEN isCompleted = 1 THEN 0 ELSE 1 END), 0) AS inProgress,
		COALESCE(AVG(CASE WHEN targetValue > 0 THEN currentValue * 100.0 / targetValue ELSE 0.0 END), 0.0) AS averageProgress
		FROM goals WHERE userId = ?`, userID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
