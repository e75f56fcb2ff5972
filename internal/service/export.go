package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/storage"
)

// unknownExercise names rows whose exercise no longer resolves.
const unknownExercise = "Unknown"

// ErrStorageDisabled is returned by Archive when no bucket is configured.
var ErrStorageDisabled = errors.New("export storage is not configured")

var csvHeader = []string{
	"Workout Name", "Date", "Duration (min)", "Exercise", "Category",
	"Sets", "Reps", "Weight (kg)", "Volume (kg)", "Notes",
}

// ExportWorkout is one workout in the JSON export.
type ExportWorkout struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Date      string           `json:"date"`
	Duration  *float64         `json:"duration"`
	Notes     *string          `json:"notes"`
	Exercises []ExportExercise `json:"exercises"`
}

type ExportExercise struct {
	Exercise string   `json:"exercise"`
	Category string   `json:"category"`
	Sets     int64    `json:"sets"`
	Reps     int64    `json:"reps"`
	Weight   *float64 `json:"weight"`
	Volume   float64  `json:"volume"`
	Notes    *string  `json:"notes"`
}

// Archive describes an uploaded export.
type Archive struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ExportService struct {
	workoutRepository repository.WorkoutRepository
	storage           storage.Storage
	now               func() time.Time
}

// NewExportService builds the export service. store may be nil, which
// disables Archive.
func NewExportService(workoutRepository repository.WorkoutRepository, store storage.Storage) *ExportService {
	return &ExportService{
		workoutRepository: workoutRepository,
		storage:           store,
		now:               time.Now,
	}
}

// Workouts returns the user's workouts, newest first, each with its exercise rows.
func (s *ExportService) Workouts(ctx context.Context, userID int64) ([]*model.Workout, error) {
	workouts, err := s.workoutRepository.Workouts(ctx, userID, repository.WorkoutFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	rows, err := s.workoutRepository.AllExercises(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout exercises: %w", err)
	}

	byWorkout := make(map[int64][]*model.WorkoutExercise, len(workouts))
	for _, row := range rows {
		byWorkout[row.WorkoutID] = append(byWorkout[row.WorkoutID], row)
	}
	for _, w := range workouts {
		w.Exercises = byWorkout[w.ID]
	}
	return workouts, nil
}

func (s *ExportService) JSON(ctx context.Context, userID int64) ([]ExportWorkout, error) {
	workouts, err := s.Workouts(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ExportWorkout, 0, len(workouts))
	for _, w := range workouts {
		ew := ExportWorkout{
			ID:        w.ID,
			Name:      w.Name,
			Date:      w.Date,
			Duration:  w.Duration,
			Notes:     w.Notes,
			Exercises: make([]ExportExercise, 0, len(w.Exercises)),
		}
		for _, we := range w.Exercises {
			ew.Exercises = append(ew.Exercises, ExportExercise{
				Exercise: exerciseName(we),
				Category: we.ExerciseCategory,
				Sets:     we.Sets,
				Reps:     we.Reps,
				Weight:   we.Weight,
				Volume:   we.Volume(),
				Notes:    we.Notes,
			})
		}
		out = append(out, ew)
	}
	return out, nil
}

// CSV writes one row per workout exercise. A workout without exercises
// still gets exactly one row with the exercise columns left empty.
func (s *ExportService) CSV(ctx context.Context, userID int64, w io.Writer) error {
	workouts, err := s.Workouts(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, workout := range workouts {
		duration := ""
		if workout.Duration != nil {
			duration = formatNumber(*workout.Duration)
		}

		if len(workout.Exercises) == 0 {
			row := []string{workout.Name, workout.Date, duration, "", "", "", "", "", "", ""}
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}

		for _, we := range workout.Exercises {
			weight := "0"
			if we.Weight != nil {
				weight = formatNumber(*we.Weight)
			}
			notes := ""
			if we.Notes != nil {
				notes = *we.Notes
			}
			row := []string{
				workout.Name, workout.Date, duration,
				exerciseName(we), we.ExerciseCategory,
				strconv.FormatInt(we.Sets, 10), strconv.FormatInt(we.Reps, 10),
				weight, formatNumber(we.Volume()), notes,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Archive uploads the JSON export and returns a presigned download URL.
func (s *ExportService) Archive(ctx context.Context, userID int64) (*Archive, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	data, err := s.JSON(ctx, userID)
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%d/training-data-%s-%s.json",
		userID, s.now().Format(dateLayout), uuid.NewString()[:8])
	if err := s.storage.Save(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		return nil, err
	}

	url, err := s.storage.PresignedURL(ctx, key)
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove unreachable export", "key", key, "error", delErr)
		}
		return nil, err
	}

	slog.Info("export archived", "user_id", userID, "key", key, "bytes", len(payload))
	return &Archive{Key: key, URL: url}, nil
}

func exerciseName(we *model.WorkoutExercise) string {
	if we.ExerciseName == "" {
		return unknownExercise
	}
	return we.ExerciseName
}

// formatNumber prints whole numbers without a decimal point.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
