package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/rowmap"
)

// volumeExpr is the per-row training volume; rows without a weight count as zero.
const volumeExpr = `we.sets * we.reps * COALESCE(we.weight, 0)`

// StatsRepository serves read-only aggregates as dynamic records. Every query
// is scoped to the given user's workouts.
type StatsRepository interface {
	TopExercises(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error)
	ExerciseProgression(ctx context.Context, userID, exerciseID int64, limit int) ([]rowmap.Record, error)
	VolumeProgression(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error)
	PersonalRecords(ctx context.Context, userID int64) ([]rowmap.Record, error)
	Summary(ctx context.Context, userID int64) (rowmap.Record, error)

	ExerciseUsage(ctx context.Context, userID int64) ([]rowmap.Record, error)
	ExerciseUsageByID(ctx context.Context, userID, exerciseID int64) (rowmap.Record, error)
	PopularExercises(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error)
	Categories(ctx context.Context, userID int64) ([]rowmap.Record, error)
}

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) TopExercises(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error) {
	return records(ctx, r.db, `SELECT e.id, e.name, e.category,
		COUNT(DISTINCT we.workoutId) AS times_used,
		COALESCE(SUM(we.sets), 0) AS total_sets,
		COALESCE(SUM(we.sets * we.reps), 0) AS total_reps,
		COALESCE(SUM(`+volumeExpr+`), 0) AS total_volume
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workoutId
		JOIN exercises e ON e.id = we.exerciseId
		WHERE w.userId = ?
		GROUP BY e.id, e.name, e.category
		ORDER BY times_used DESC, total_volume DESC, e.id ASC
		LIMIT ?`, userID, limit)
}

func (r *statsRepository) ExerciseProgression(ctx context.Context, userID, exerciseID int64, limit int) ([]rowmap.Record, error) {
	return records(ctx, r.db, `SELECT w.date, w.name AS workout_name, we.sets, we.reps, we.weight,
		`+volumeExpr+` AS volume
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workoutId
		WHERE w.userId = ? AND we.exerciseId = ? AND we.weight > 0
		ORDER BY w.date DESC, w.id DESC, we.id DESC
		LIMIT ?`, userID, exerciseID, limit)
}

func (r *statsRepository) VolumeProgression(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error) {
	return records(ctx, r.db, `SELECT w.date, w.name,
		COALESCE(SUM(`+volumeExpr+`), 0) AS total_volume,
		COUNT(DISTINCT we.exerciseId) AS exercise_count
		FROM workouts w
		LEFT JOIN workout_exercises we ON we.workoutId = w.id
		WHERE w.userId = ?
		GROUP BY w.id, w.date, w.name
		ORDER BY w.date DESC, w.id DESC
		LIMIT ?`, userID, limit)
}

// PersonalRecords reports per-exercise maxima. record_date is the date of the
// highest-volume set.
func (r *statsRepository) PersonalRecords(ctx context.Context, userID int64) ([]rowmap.Record, error) {
	return records(ctx, r.db, `WITH lifts AS (
			SELECT we.exerciseId, w.date, we.reps, we.weight, `+volumeExpr+` AS volume
			FROM workout_exercises we
			JOIN workouts w ON w.id = we.workoutId
			WHERE w.userId = ? AND we.weight > 0
		),
		best AS (
			SELECT exerciseId, date,
				ROW_NUMBER() OVER (PARTITION BY exerciseId ORDER BY volume DESC, date DESC) AS rn
			FROM lifts
		)
		SELECT e.id AS exercise_id, e.name AS exercise_name, e.category,
			MAX(lifts.weight) AS max_weight,
			MAX(lifts.reps) AS max_reps,
			MAX(lifts.volume) AS max_volume,
			(SELECT best.date FROM best WHERE best.exerciseId = e.id AND best.rn = 1) AS record_date
		FROM lifts
		JOIN exercises e ON e.id = lifts.exerciseId
		GROUP BY e.id, e.name, e.category
		ORDER BY max_weight DESC, e.id ASC`, userID)
}

func (r *statsRepository) Summary(ctx context.Context, userID int64) (rowmap.Record, error) {
	return rowmap.One(ctx, r.db, rowmap.Dynamic(), `SELECT
		(SELECT COUNT(*) FROM workouts WHERE userId = ?) AS totalWorkouts,
		(SELECT COALESCE(SUM(duration), 0) FROM workouts WHERE userId = ?) AS totalDuration,
		(SELECT COUNT(*) FROM workouts WHERE userId = ? AND date >= DATE('now', '-7 days')) AS workoutsThisWeek,
		(SELECT COUNT(*) FROM workouts WHERE userId = ? AND strftime('%Y-%m', date) = strftime('%Y-%m', 'now')) AS workoutsThisMonth,
		(SELECT COALESCE(SUM(`+volumeExpr+`), 0)
			FROM workout_exercises we JOIN workouts w ON w.id = we.workoutId
			WHERE w.userId = ?) AS totalVolume,
		(SELECT e.name
			FROM workout_exercises we
			JOIN workouts w ON w.id = we.workoutId
			JOIN exercises e ON e.id = we.exerciseId
			WHERE w.userId = ?
			GROUP BY e.id, e.name
			ORDER BY COUNT(*) DESC, e.id ASC
			LIMIT 1) AS favoriteExercise`,
		userID, userID, userID, userID, userID, userID)
}

func (r *statsRepository) ExerciseUsage(ctx context.Context, userID int64) ([]rowmap.Record, error) {
	return records(ctx, r.db, `SELECT we.exerciseId AS exercise_id,
		COUNT(*) AS times_used,
		COALESCE(SUM(`+volumeExpr+`), 0) AS total_volume,
		MAX(w.date) AS last_used
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workoutId
		WHERE w.userId = ?
		GROUP BY we.exerciseId
		ORDER BY times_used DESC, we.exerciseId ASC`, userID)
}

func (r *statsRepository) ExerciseUsageByID(ctx context.Context, userID, exerciseID int64) (rowmap.Record, error) {
	rec, err := rowmap.One(ctx, r.db, rowmap.Dynamic(), `SELECT e.id AS exercise_id, e.name AS exercise_name,
		COUNT(we.id) AS times_used,
		COALESCE(SUM(`+volumeExpr+`), 0) AS total_volume,
		MAX(w.date) AS last_used,
		AVG(we.weight) AS avg_weight,
		MAX(we.weight) AS max_weight,
		MIN(we.weight) AS min_weight
		FROM exercises e
		LEFT JOIN workout_exercises we ON we.exerciseId = e.id
			AND we.workoutId IN (SELECT id FROM workouts WHERE userId = ?)
		LEFT JOIN workouts w ON w.id = we.workoutId
		WHERE e.id = ? AND (e.isPublic = 1 OR e.createdBy = ?)
		GROUP BY e.id, e.name`, userID, exerciseID, userID)
	if errors.Is(err, rowmap.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	return rec, err
}

func (r *statsRepository) PopularExercises(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error) {
	return records(ctx, r.db, `SELECT e.id, e.name, e.category,
		COUNT(we.id) AS times_used,
		COALESCE(SUM(`+volumeExpr+`), 0) AS total_volume
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workoutId
		JOIN exercises e ON e.id = we.exerciseId
		WHERE w.userId = ?
		GROUP BY e.id, e.name, e.category
		ORDER BY times_used DESC, total_volume DESC, e.id ASC
		LIMIT ?`, userID, limit)
}

func (r *statsRepository) Categories(ctx context.Context, userID int64) ([]rowmap.Record, error) {
	return records(ctx, r.db, `SELECT category, COUNT(*) AS count
		FROM exercises
		WHERE isPublic = 1 OR createdBy = ?
		GROUP BY category
		ORDER BY category ASC`, userID)
}
