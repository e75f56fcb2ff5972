package service

import (
	"context"
	"fmt"

	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/validation"
)

const goalsTable = "goals"

type GoalService struct {
	goalRepository repository.GoalRepository
	normalizer     *normalize.Normalizer
}

func NewGoalService(goalRepository repository.GoalRepository, normalizer *normalize.Normalizer) *GoalService {
	return &GoalService{
		goalRepository: goalRepository,
		normalizer:     normalizer,
	}
}

func (s *GoalService) Goals(ctx context.Context, userID int64) ([]*model.Goal, error) {
	return s.goalRepository.Goals(ctx, userID)
}

func (s *GoalService) Goal(ctx context.Context, userID, id int64) (*model.Goal, error) {
	return s.goalRepository.ByID(ctx, userID, id)
}

// Create starts a goal at zero progress.
func (s *GoalService) Create(ctx context.Context, userID int64, body []byte) (*model.Goal, error) {
	res, err := s.normalizer.Normalize(goalsTable, body)
	if err != nil {
		return nil, err
	}

	_, numeric := toFloat64(res.Body["targetValue"])
	if err := validation.First(
		validation.ValidateName("title", res.String("title")),
		validation.Required("targetValue", res.Has("targetValue") && res.Body["targetValue"] != nil),
	); err != nil {
		return nil, err
	}
	if !numeric {
		return nil, &validation.Error{Field: "targetValue", Message: "targetValue must be a number."}
	}

	res = res.Without("currentValue", "isCompleted").
		With("currentValue", int64(0)).
		With("isCompleted", false)

	id, err := s.goalRepository.Create(ctx, userID, res)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return s.goalRepository.ByID(ctx, userID, id)
}

func (s *GoalService) Update(ctx context.Context, userID, id int64, body []byte) (*model.Goal, error) {
	res, err := s.normalizer.Normalize(goalsTable, body)
	if err != nil {
		return nil, err
	}
	if res.Has("title") {
		if err := validation.ValidateName("title", res.String("title")); err != nil {
			return nil, err
		}
	}
	for _, field := range []string{"targetValue", "currentValue"} {
		if res.Has(field) {
			if _, ok := toFloat64(res.Body[field]); !ok {
				return nil, &validation.Error{Field: field, Message: field + " must be a number."}
			}
		}
	}

	if err := s.goalRepository.Update(ctx, userID, id, res); err != nil {
		return nil, err
	}
	return s.goalRepository.ByID(ctx, userID, id)
}

// UpdateProgress sets currentValue from body; the goal completes once it
// reaches its target.
func (s *GoalService) UpdateProgress(ctx context.Context, userID, id int64, body []byte) (*model.Goal, error) {
	res, err := s.normalizer.Normalize(goalsTable, body)
	if err != nil {
		return nil, err
	}

	v := res.Body["currentValue"]
	if err := validation.Required("currentValue", v != nil); err != nil {
		return nil, err
	}
	current, ok := toFloat64(v)
	if !ok {
		return nil, &validation.Error{Field: "currentValue", Message: "currentValue must be a number."}
	}

	if err := s.goalRepository.SetProgress(ctx, userID, id, current); err != nil {
		return nil, err
	}
	return s.goalRepository.ByID(ctx, userID, id)
}

func (s *GoalService) Complete(ctx context.Context, userID, id int64) (*model.Goal, error) {
	if err := s.goalRepository.Complete(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.goalRepository.ByID(ctx, userID, id)
}

func (s *GoalService) Delete(ctx context.Context, userID, id int64) error {
	return s.goalRepository.Delete(ctx, userID, id)
}

func (s *GoalService) Stats(ctx context.Context, userID int64) (*model.GoalStats, error) {
	return s.goalRepository.Stats(ctx, userID)
}
