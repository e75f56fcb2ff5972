package model

type Workout struct {
	ID        int64    `db:"id" json:"id"`
	UserID    int64    `db:"userId" json:"userId"`
	Name      string   `db:"name" json:"name"`
	Date      string   `db:"date" json:"date"`
	Duration  *float64 `db:"duration" json:"duration"`
	Notes     *string  `db:"notes" json:"notes"`
	CreatedAt string   `db:"createdAt" json:"createdAt"`

	Exercises []*WorkoutExercise `db:"-" json:"exercises,omitempty"`
}

type WorkoutExercise struct {
	ID         int64    `db:"id" json:"id"`
	WorkoutID  int64    `db:"workoutId" json:"workoutId"`
	ExerciseID int64    `db:"exerciseId" json:"exerciseId"`
	Sets       int64    `db:"sets" json:"sets"`
	Reps       int64    `db:"reps" json:"reps"`
	Weight     *float64 `db:"weight" json:"weight"`
	RestTime   *int64   `db:"restTime" json:"restTime"`
	Notes      *string  `db:"notes" json:"notes"`
	OrderIndex int64    `db:"orderIndex" json:"orderIndex"`

	// Joined from exercises when listing a workout's rows.
	ExerciseName     string `db:"exerciseName" json:"exerciseName,omitempty"`
	ExerciseCategory string `db:"exerciseCategory" json:"exerciseCategory,omitempty"`
}

// Volume is sets*reps*weight, zero when no weight was recorded.
func (we *WorkoutExercise) Volume() float64 {
	if we.Weight == nil {
		return 0
	}
	return float64(we.Sets) * float64(we.Reps) * *we.Weight
}
