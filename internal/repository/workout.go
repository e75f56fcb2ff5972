package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/db"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
)

var (
	ErrWorkoutNotFound         = notFound("workout")
	ErrWorkoutExerciseNotFound = notFound("workout exercise")
)

// WorkoutColumns and WorkoutExerciseColumns are the columns a client body may write.
var (
	WorkoutColumns         = []string{"name", "date", "duration", "notes"}
	WorkoutExerciseColumns = []string{"exerciseId", "sets", "reps", "weight", "restTime", "notes", "orderIndex"}
)

const workoutExerciseSelect = `SELECT we.*,
	COALESCE(e.name, '') AS exerciseName,
	COALESCE(e.category, '') AS exerciseCategory
	FROM workout_exercises we
	JOIN workouts w ON w.id = we.workoutId
	LEFT JOIN exercises e ON e.id = we.exerciseId`

type WorkoutFilter struct {
	Query string
	From  string
	To    string
}

type WorkoutRepository interface {
	Create(ctx context.Context, userID int64, workout normalize.Result, exercises []normalize.Result) (int64, error)
	ByID(ctx context.Context, userID, id int64) (*model.Workout, error)
	Workouts(ctx context.Context, userID int64, filter WorkoutFilter) ([]*model.Workout, error)
	Update(ctx context.Context, userID, id int64, res normalize.Result) error
	Delete(ctx context.Context, userID, id int64) error

	AddExercise(ctx context.Context, userID, workoutID int64, res normalize.Result) (int64, error)
	Exercise(ctx context.Context, userID, workoutID, id int64) (*model.WorkoutExercise, error)
	Exercises(ctx context.Context, userID, workoutID int64) ([]*model.WorkoutExercise, error)
	AllExercises(ctx context.Context, userID int64) ([]*model.WorkoutExercise, error)
	UpdateExercise(ctx context.Context, userID, workoutID, id int64, res normalize.Result) error
	DeleteExercise(ctx context.Context, userID, workoutID, id int64) error
}

type workoutRepository struct {
	db *sqlx.DB
}

func NewWorkoutRepository(db *sqlx.DB) WorkoutRepository {
	return &workoutRepository{db: db}
}

// Create inserts a workout and its exercise rows in one transaction.
func (r *workoutRepository) Create(ctx context.Context, userID int64, workout normalize.Result, exercises []normalize.Result) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		id, err = insertRow(ctx, tx, "workouts", workout.Only(WorkoutColumns...).With("userId", userID))
		if err != nil {
			return err
		}
		for i, ex := range exercises {
			row := ex.Only(WorkoutExerciseColumns...).With("workoutId", id)
			if !row.Has("orderIndex") {
				row = row.With("orderIndex", int64(i))
			}
			if _, err := insertRow(ctx, tx, "workout_exercises", row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *workoutRepository) ByID(ctx context.Context, userID, id int64) (*model.Workout, error) {
	return one[model.Workout](ctx, r.db, ErrWorkoutNotFound, `SELECT * FROM workouts WHERE id = ? AND userId = ?`, id, userID)
}

func (r *workoutRepository) Workouts(ctx context.Context, userID int64, filter WorkoutFilter) ([]*model.Workout, error) {
	query := `SELECT * FROM workouts WHERE userId = ?`
	args := []any{userID}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(notes, '')) LIKE ? ESCAPE '\')`
		args = append(args, likePattern(q), likePattern(q))
	}
	if filter.From != "" {
		query += ` AND date >= ?`
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += ` AND date <= ?`
		args = append(args, filter.To)
	}
	query += ` ORDER BY date DESC, id DESC`

	return many[model.Workout](ctx, r.db, query, args...)
}

func (r *workoutRepository) Update(ctx context.Context, userID, id int64, res normalize.Result) error {
	res = res.Only(WorkoutColumns...)
	return updateRow(ctx, r.db, "workouts", res,
		"id = :where_id AND userId = :where_user_id",
		map[string]any{"where_id": id, "where_user_id": userID},
		ErrWorkoutNotFound)
}

func (r *workoutRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ? AND userId = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrWorkoutNotFound)
}

func (r *workoutRepository) AddExercise(ctx context.Context, userID, workoutID int64, res normalize.Result) (int64, error) {
	if _, err := r.ByID(ctx, userID, workoutID); err != nil {
		return 0, err
	}
	row := res.Only(WorkoutExerciseColumns...).With("workoutId", workoutID)
	if !row.Has("orderIndex") {
		var next int64
		err := r.db.GetContext(ctx, &next,
			`SELECT COALESCE(MAX(orderIndex) + 1, 0) FROM workout_exercises WHERE workoutId = ?`, workoutID)
		if err != nil {
			return 0, err
		}
		row = row.With("orderIndex", next)
	}
	return insertRow(ctx, r.db, "workout_exercises", row)
}

func (r *workoutRepository) Exercise(ctx context.Context, userID, workoutID, id int64) (*model.WorkoutExercise, error) {
	return one[model.WorkoutExercise](ctx, r.db, ErrWorkoutExerciseNotFound,
		workoutExerciseSelect+` WHERE we.id = ? AND we.workoutId = ? AND w.userId = ?`, id, workoutID, userID)
}

func (r *workoutRepository) Exercises(ctx context.Context, userID, workoutID int64) ([]*model.WorkoutExercise, error) {
	return many[model.WorkoutExercise](ctx, r.db,
		workoutExerciseSelect+` WHERE we.workoutId = ? AND w.userId = ? ORDER BY we.orderIndex, we.id`, workoutID, userID)
}

// AllExercises returns every exercise row across the user's workouts.
func (r *workoutRepository) AllExercises(ctx context.Context, userID int64) ([]*model.WorkoutExercise, error) {
	return many[model.WorkoutExercise](ctx, r.db,
		workoutExerciseSelect+` WHERE w.userId = ? ORDER BY we.workoutId, we.orderIndex, we.id`, userID)
}

func (r *workoutRepository) UpdateExercise(ctx context.Context, userID, workoutID, id int64, res normalize.Result) error {
	res = res.Only(WorkoutExerciseColumns...)
	return updateRow(ctx, r.db, "workout_exercises", res,
		`id = :where_id AND workoutId = :where_workout_id
		 AND workoutId IN (SELECT id FROM workouts WHERE userId = :where_user_id)`,
		map[string]any{"where_id": id, "where_workout_id": workoutID, "where_user_id": userID},
		ErrWorkoutExerciseNotFound)
}

func (r *workoutRepository) DeleteExercise(ctx context.Context, userID, workoutID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM workout_exercises WHERE id = ? AND workoutId = ?
		 AND workoutId IN (SELECT id FROM workouts WHERE userId = ?)`,
		id, workoutID, userID)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrWorkoutExerciseNotFound)
}
