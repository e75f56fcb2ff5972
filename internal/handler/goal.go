package handler

import (
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Goals(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "list goals")
		return
	}
	respond.OK(w, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	goal, err := h.goalService.Goal(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err, "get goal")
		return
	}
	respond.OK(w, goal)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read goal body")
		return
	}

	goal, err := h.goalService.Create(r.Context(), user.ID, body)
	if err != nil {
		handleError(w, r, err, "create goal")
		return
	}
	respond.JSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read goal body")
		return
	}

	goal, err := h.goalService.Update(r.Context(), user.ID, id, body)
	if err != nil {
		handleError(w, r, err, "update goal")
		return
	}
	respond.OK(w, goal)
}

func (h *GoalHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read goal progress body")
		return
	}

	goal, err := h.goalService.UpdateProgress(r.Context(), user.ID, id, body)
	if err != nil {
		handleError(w, r, err, "update goal progress")
		return
	}
	respond.OK(w, goal)
}

func (h *GoalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	goal, err := h.goalService.Complete(r.Context(), user.ID, id)
	if err != nil {
		handleError(w, r, err, "complete goal")
		return
	}
	respond.OK(w, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.goalService.Delete(r.Context(), user.ID, id); err != nil {
		handleError(w, r, err, "delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	stats, err := h.goalService.Stats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "get goal stats")
		return
	}
	respond.OK(w, stats)
}
