package handler

import (
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
)

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
	}
}

func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	q := r.URL.Query()

	exercises, err := h.exerciseService.Exercises(r.Context(), user.ID, repository.ExerciseFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
	})
	if err != nil {
		handleError(w, r, err, "list exercises")
		return
	}
	respond.OK(w, exercises)
}

func (h *ExerciseHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Exercise(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err, "get exercise")
		return
	}
	respond.OK(w, exercise)
}

func (h *ExerciseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read exercise body")
		return
	}

	exercise, err := h.exerciseService.Create(r.Context(), user, body)
	if err != nil {
		handleError(w, r, err, "create exercise")
		return
	}
	respond.JSON(w, http.StatusCreated, exercise)
}

func (h *ExerciseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read exercise body")
		return
	}

	exercise, err := h.exerciseService.Update(r.Context(), user, id, body)
	if err != nil {
		handleError(w, r, err, "update exercise")
		return
	}
	respond.OK(w, exercise)
}

func (h *ExerciseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.Delete(r.Context(), user, id); err != nil {
		handleError(w, r, err, "delete exercise")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExerciseHandler) Usage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	usage, err := h.exerciseService.Usage(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "get exercise usage")
		return
	}
	respond.OK(w, usage)
}

func (h *ExerciseHandler) UsageByID(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	usage, err := h.exerciseService.UsageByID(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err, "get exercise usage")
		return
	}
	respond.OK(w, usage)
}

func (h *ExerciseHandler) Popular(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	popular, err := h.exerciseService.Popular(r.Context(), user.ID, queryInt(r, "limit"))
	if err != nil {
		handleError(w, r, err, "get popular exercises")
		return
	}
	respond.OK(w, popular)
}

func (h *ExerciseHandler) Categories(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	categories, err := h.exerciseService.Categories(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "get exercise categories")
		return
	}
	respond.OK(w, categories)
}
