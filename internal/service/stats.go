package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/rowmap"
	"github.com/trainlog/trainlog/internal/validation"
)

const (
	PeriodWeeks  = "weeks"
	PeriodMonths = "months"

	// noFavoriteExercise is reported by Summary before any exercise was logged.
	noFavoriteExercise = "none yet"
)

// FrequencyBucket counts workouts in one ISO week or calendar month.
type FrequencyBucket struct {
	Period        string  `json:"period"`
	PeriodStart   string  `json:"period_start"`
	Workouts      int64   `json:"workouts"`
	TotalDuration float64 `json:"total_duration"`
}

type StatsService struct {
	statsRepository   repository.StatsRepository
	workoutRepository repository.WorkoutRepository
}

func NewStatsService(statsRepository repository.StatsRepository, workoutRepository repository.WorkoutRepository) *StatsService {
	return &StatsService{
		statsRepository:   statsRepository,
		workoutRepository: workoutRepository,
	}
}

// WorkoutFrequency groups the user's workouts by ISO week ("2024-W09") or
// month ("2024-03"), newest first.
func (s *StatsService) WorkoutFrequency(ctx context.Context, userID int64, period string, limit int) ([]FrequencyBucket, error) {
	if period == "" {
		period = PeriodWeeks
	}
	if period != PeriodWeeks && period != PeriodMonths {
		return nil, &validation.Error{Field: "period", Message: "period must be weeks or months."}
	}
	limit = clampLimit(limit, 12, 520)

	workouts, err := s.workoutRepository.Workouts(ctx, userID, repository.WorkoutFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	buckets := map[string]*FrequencyBucket{}
	for _, w := range workouts {
		date, err := time.Parse(dateLayout, w.Date)
		if err != nil {
			slog.Debug("skipping workout with unparsable date", "workout_id", w.ID, "date", w.Date)
			continue
		}

		key, start := periodOf(date, period)
		b, ok := buckets[key]
		if !ok {
			b = &FrequencyBucket{Period: key, PeriodStart: start}
			buckets[key] = b
		}
		b.Workouts++
		if w.Duration != nil {
			b.TotalDuration += *w.Duration
		}
	}

	out := make([]FrequencyBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period > out[j].Period })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// periodOf returns the bucket key and its first day.
func periodOf(date time.Time, period string) (string, string) {
	if period == PeriodMonths {
		first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		return date.Format("2006-01"), first.Format(dateLayout)
	}
	year, week := date.ISOWeek()
	offset := (int(date.Weekday()) + 6) % 7
	monday := date.AddDate(0, 0, -offset)
	return fmt.Sprintf("%d-W%02d", year, week), monday.Format(dateLayout)
}

func (s *StatsService) TopExercises(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error) {
	return s.statsRepository.TopExercises(ctx, userID, clampLimit(limit, 10, 100))
}

func (s *StatsService) ExerciseProgression(ctx context.Context, userID, exerciseID int64, limit int) ([]rowmap.Record, error) {
	return s.statsRepository.ExerciseProgression(ctx, userID, exerciseID, clampLimit(limit, 50, 500))
}

func (s *StatsService) VolumeProgression(ctx context.Context, userID int64, limit int) ([]rowmap.Record, error) {
	return s.statsRepository.VolumeProgression(ctx, userID, clampLimit(limit, 30, 365))
}

func (s *StatsService) PersonalRecords(ctx context.Context, userID int64) ([]rowmap.Record, error) {
	return s.statsRepository.PersonalRecords(ctx, userID)
}

func (s *StatsService) Summary(ctx context.Context, userID int64) (rowmap.Record, error) {
	rec, err := s.statsRepository.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec["favoriteExercise"] == nil {
		rec["favoriteExercise"] = noFavoriteExercise
	}
	return rec, nil
}
