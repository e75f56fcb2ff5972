package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/validation"
)

const (
	workoutsTable         = "workouts"
	workoutExercisesTable = "workout_exercises"

	dateLayout = "2006-01-02"
)

type WorkoutService struct {
	workoutRepository  repository.WorkoutRepository
	exerciseRepository repository.ExerciseRepository
	normalizer         *normalize.Normalizer
	now                func() time.Time
}

func NewWorkoutService(
	workoutRepository repository.WorkoutRepository,
	exerciseRepository repository.ExerciseRepository,
	normalizer *normalize.Normalizer,
) *WorkoutService {
	return &WorkoutService{
		workoutRepository:  workoutRepository,
		exerciseRepository: exerciseRepository,
		normalizer:         normalizer,
		now:                time.Now,
	}
}

func (s *WorkoutService) Workouts(ctx context.Context, userID int64, filter repository.WorkoutFilter) ([]*model.Workout, error) {
	return s.workoutRepository.Workouts(ctx, userID, filter)
}

// Workout returns the workout with its exercise rows attached.
func (s *WorkoutService) Workout(ctx context.Context, userID, id int64) (*model.Workout, error) {
	workout, err := s.workoutRepository.ByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	workout.Exercises, err = s.workoutRepository.Exercises(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load workout exercises: %w", err)
	}
	return workout, nil
}

// Create stores a workout. An optional "exercises" array is validated up
// front and inserted in the same transaction.
func (s *WorkoutService) Create(ctx context.Context, userID int64, body []byte) (*model.Workout, error) {
	parsed, err := parseObject(body)
	if err != nil {
		return nil, err
	}

	res, err := s.normalizer.Normalize(workoutsTable, body)
	if err != nil {
		return nil, err
	}
	if err := s.validateWorkout(res, true); err != nil {
		return nil, err
	}
	if res.String("date") == "" {
		res = res.Without("date").With("date", s.now().Format(dateLayout))
	}

	var rows []normalize.Result
	if nested := parsed.Get("exercises"); nested.Exists() && nested.Type != gjson.Null {
		if !nested.IsArray() {
			return nil, &validation.Error{Field: "exercises", Message: "exercises must be an array."}
		}
		for _, item := range nested.Array() {
			row, err := s.normalizer.Normalize(workoutExercisesTable, []byte(item.Raw))
			if err != nil {
				return nil, err
			}
			if err := s.validateExerciseRow(ctx, userID, row, true); err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	}

	id, err := s.workoutRepository.Create(ctx, userID, res, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to create workout: %w", err)
	}
	return s.Workout(ctx, userID, id)
}

func (s *WorkoutService) Update(ctx context.Context, userID, id int64, body []byte) (*model.Workout, error) {
	res, err := s.normalizer.Normalize(workoutsTable, body)
	if err != nil {
		return nil, err
	}
	if err := s.validateWorkout(res, false); err != nil {
		return nil, err
	}

	if err := s.workoutRepository.Update(ctx, userID, id, res); err != nil {
		return nil, err
	}
	return s.Workout(ctx, userID, id)
}

func (s *WorkoutService) Delete(ctx context.Context, userID, id int64) error {
	return s.workoutRepository.Delete(ctx, userID, id)
}

func (s *WorkoutService) Exercises(ctx context.Context, userID, workoutID int64) ([]*model.WorkoutExercise, error) {
	if _, err := s.workoutRepository.ByID(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	return s.workoutRepository.Exercises(ctx, userID, workoutID)
}

func (s *WorkoutService) AddExercise(ctx context.Context, userID, workoutID int64, body []byte) (*model.WorkoutExercise, error) {
	res, err := s.normalizer.Normalize(workoutExercisesTable, body)
	if err != nil {
		return nil, err
	}
	if err := s.validateExerciseRow(ctx, userID, res, true); err != nil {
		return nil, err
	}

	id, err := s.workoutRepository.AddExercise(ctx, userID, workoutID, res)
	if err != nil {
		return nil, err
	}
	return s.workoutRepository.Exercise(ctx, userID, workoutID, id)
}

func (s *WorkoutService) UpdateExercise(ctx context.Context, userID, workoutID, id int64, body []byte) (*model.WorkoutExercise, error) {
	res, err := s.normalizer.Normalize(workoutExercisesTable, body)
	if err != nil {
		return nil, err
	}
	if err := s.validateExerciseRow(ctx, userID, res, false); err != nil {
		return nil, err
	}

	if err := s.workoutRepository.UpdateExercise(ctx, userID, workoutID, id, res); err != nil {
		return nil, err
	}
	return s.workoutRepository.Exercise(ctx, userID, workoutID, id)
}

func (s *WorkoutService) DeleteExercise(ctx context.Context, userID, workoutID, id int64) error {
	return s.workoutRepository.DeleteExercise(ctx, userID, workoutID, id)
}

func (s *WorkoutService) validateWorkout(res normalize.Result, create bool) error {
	if create || res.Has("name") {
		if err := validation.ValidateName("name", res.String("name")); err != nil {
			return err
		}
	}
	if d := res.String("date"); d != "" {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return &validation.Error{Field: "date", Message: "date must be formatted as YYYY-MM-DD."}
		}
	}
	if res.Has("duration") && res.Body["duration"] != nil {
		if _, ok := toFloat64(res.Body["duration"]); !ok {
			return &validation.Error{Field: "duration", Message: "duration must be a number."}
		}
	}
	return nil
}

// validateExerciseRow checks a workout_exercises body. With create set,
// exerciseId, sets and reps are required. A referenced exercise must be
// visible to the user.
func (s *WorkoutService) validateExerciseRow(ctx context.Context, userID int64, res normalize.Result, create bool) error {
	for _, field := range []string{"exerciseId", "sets", "reps"} {
		v, present := res.Body[field]
		if create {
			if err := validation.Required(field, present && v != nil); err != nil {
				return err
			}
		}
		if present {
			if _, ok := toInt64(v); !ok {
				return &validation.Error{Field: field, Message: field + " must be a whole number."}
			}
		}
	}
	if res.Has("weight") && res.Body["weight"] != nil {
		if _, ok := toFloat64(res.Body["weight"]); !ok {
			return &validation.Error{Field: "weight", Message: "weight must be a number."}
		}
	}

	if !res.Has("exerciseId") {
		return nil
	}
	exerciseID, _ := toInt64(res.Body["exerciseId"])
	if _, err := s.exerciseRepository.ByID(ctx, userID, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &validation.Error{Field: "exerciseId", Message: "exerciseId does not name an available exercise."}
		}
		return fmt.Errorf("failed to check exercise: %w", err)
	}
	return nil
}
