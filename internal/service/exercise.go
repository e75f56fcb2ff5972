package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/trainlog/trainlog/internal/db"
	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/rowmap"
	"github.com/trainlog/trainlog/internal/validation"
)

const exercisesTable = "exercises"

// ErrExerciseInUse is returned when deleting an exercise that workouts still reference.
var ErrExerciseInUse = errors.New("exercise is used by workouts")

type ExerciseService struct {
	exerciseRepository repository.ExerciseRepository
	statsRepository    repository.StatsRepository
	normalizer         *normalize.Normalizer
}

func NewExerciseService(
	exerciseRepository repository.ExerciseRepository,
	statsRepository repository.StatsRepository,
	normalizer *normalize.Normalizer,
) *ExerciseService {
	return &ExerciseService{
		exerciseRepository: exerciseRepository,
		statsRepository:    statsRepository,
		normalizer:         normalizer,
	}
}

func (s *ExerciseService) Exercises(ctx context.Context, userID int64, filter repository.ExerciseFilter) ([]*model.Exercise, error) {
	return s.exerciseRepository.Exercises(ctx, userID, filter)
}

func (s *ExerciseService) Exercise(ctx context.Context, userID, id int64) (*model.Exercise, error) {
	return s.exerciseRepository.ByID(ctx, userID, id)
}

// Create adds an exercise owned by user. Only admins can publish to the
// shared catalog; everyone else creates private exercises.
func (s *ExerciseService) Create(ctx context.Context, user *model.PublicUser, body []byte) (*model.Exercise, error) {
	res, err := s.normalizer.Normalize(exercisesTable, body)
	if err != nil {
		return nil, err
	}

	if err := validation.First(
		validation.ValidateName("name", res.String("name")),
		validation.ValidateName("category", res.String("category")),
	); err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		res = res.With("isPublic", false)
	}

	id, err := s.exerciseRepository.Create(ctx, user.ID, res)
	if err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}
	return s.exerciseRepository.ByID(ctx, user.ID, id)
}

func (s *ExerciseService) Update(ctx context.Context, user *model.PublicUser, id int64, body []byte) (*model.Exercise, error) {
	exercise, err := s.editable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	res, err := s.normalizer.Normalize(exercisesTable, body)
	if err != nil {
		return nil, err
	}
	for _, field := range []string{"name", "category"} {
		if res.Has(field) {
			if err := validation.ValidateName(field, res.String(field)); err != nil {
				return nil, err
			}
		}
	}
	if !user.IsAdmin() {
		res = res.Without("isPublic")
	}

	if err := s.exerciseRepository.Update(ctx, exercise.ID, res); err != nil {
		return nil, err
	}
	return s.exerciseRepository.ByID(ctx, user.ID, id)
}

func (s *ExerciseService) Delete(ctx context.Context, user *model.PublicUser, id int64) error {
	exercise, err := s.editable(ctx, user, id)
	if err != nil {
		return err
	}

	err = s.exerciseRepository.Delete(ctx, exercise.ID)
	if db.IsForeignKeyViolation(err) {
		return ErrExerciseInUse
	}
	return err
}

// editable loads an exercise the user can see and checks they may change it.
func (s *ExerciseService) editable(ctx context.Context, user *model.PublicUser, id int64) (*model.Exercise, error) {
	exercise, err := s.exerciseRepository.ByID(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if !exercise.OwnedBy(user.ID) && !user.IsAdmin() {
		return nil, ErrForbidden
	}
	return exercise, nil
}

// Usage returns per-exercise usage across the user's workouts.
func (s *ExerciseService) Usage(ctx context.Context, userID int64) ([]rowmap.Record, error) {
	return s.statsRepository.ExerciseUsage(ctx, userID)
}

func (s *ExerciseService) UsageByID(ctx context.Context, userID, exerciseID int64) (rowmap.Record, error) {
	return s.statsRepository.ExerciseUsageByID(ctx, userID, exerciseID)
}

func (s *ExerciseService) Popular(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error) {
	return s.statsRepository.PopularExercises(ctx, userID, clampLimit(limit, 10, 50))
}

func (s *ExerciseService) Categories(ctx context.Context, userID int64) ([]rowmap.Record, error) {
	return s.statsRepository.Categories(ctx, userID)
}
