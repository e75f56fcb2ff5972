package handler

import (
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
)

type WorkoutHandler struct {
	workoutService *service.WorkoutService
}

func NewWorkoutHandler(workoutService *service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
	}
}

func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	q := r.URL.Query()

	workouts, err := h.workoutService.Workouts(r.Context(), user.ID, repository.WorkoutFilter{
		Query: q.Get("q"),
		From:  q.Get("from"),
		To:    q.Get("to"),
	})
	if err != nil {
		handleError(w, r, err, "list workouts")
		return
	}
	respond.OK(w, workouts)
}

func (h *WorkoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.Workout(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err, "get workout")
		return
	}
	respond.OK(w, workout)
}

func (h *WorkoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read workout body")
		return
	}

	workout, err := h.workoutService.Create(r.Context(), user.ID, body)
	if err != nil {
		handleError(w, r, err, "create workout")
		return
	}
	respond.JSON(w, http.StatusCreated, workout)
}

func (h *WorkoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read workout body")
		return
	}

	workout, err := h.workoutService.Update(r.Context(), user.ID, id, body)
	if err != nil {
		handleError(w, r, err, "update workout")
		return
	}
	respond.OK(w, workout)
}

func (h *WorkoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.workoutService.Delete(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err, "delete workout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkoutHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rows, err := h.workoutService.Exercises(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err, "list workout exercises")
		return
	}
	respond.OK(w, rows)
}

func (h *WorkoutHandler) AddExercise(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read workout exercise body")
		return
	}

	row, err := h.workoutService.AddExercise(r.Context(), user.ID, id, body)
	if err != nil {
		handleError(w, r, err, "add workout exercise")
		return
	}
	respond.JSON(w, http.StatusCreated, row)
}

func (h *WorkoutHandler) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rowID, ok := pathID(w, r, "rowId")
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read workout exercise body")
		return
	}

	row, err := h.workoutService.UpdateExercise(r.Context(), user.ID, id, rowID, body)
	if err != nil {
		handleError(w, r, err, "update workout exercise")
		return
	}
	respond.OK(w, row)
}

func (h *WorkoutHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rowID, ok := pathID(w, r, "rowId")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteExercise(r.Context(), user.ID, id, rowID); err != nil {
		handleError(w, r, err, "delete workout exercise")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
