package handler

import (
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

func (h *StatsHandler) WorkoutFrequency(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	buckets, err := h.statsService.WorkoutFrequency(r.Context(), user.ID, r.URL.Query().Get("period"), queryInt(r, "limit"))
	if err != nil {
		handleError(w, r, err, "get workout frequency")
		return
	}
	respond.OK(w, buckets)
}

func (h *StatsHandler) TopExercises(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	top, err := h.statsService.TopExercises(r.Context(), user.ID, queryInt(r, "limit"))
	if err != nil {
		handleError(w, r, err, "get top exercises")
		return
	}
	respond.OK(w, top)
}

func (h *StatsHandler) ExerciseProgression(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	exerciseID, ok := pathID(w, r, "exerciseId")
	if !ok {
		return
	}

	progression, err := h.statsService.ExerciseProgression(r.Context(), user.ID, exerciseID, queryInt(r, "limit"))
	if err != nil {
		handleError(w, r, err, "get exercise progression")
		return
	}
	respond.OK(w, progression)
}

func (h *StatsHandler) VolumeProgression(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	progression, err := h.statsService.VolumeProgression(r.Context(), user.ID, queryInt(r, "limit"))
	if err != nil {
		handleError(w, r, err, "get volume progression")
		return
	}
	respond.OK(w, progression)
}

func (h *StatsHandler) PersonalRecords(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	records, err := h.statsService.PersonalRecords(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "get personal records")
		return
	}
	respond.OK(w, records)
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	summary, err := h.statsService.Summary(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err, "get stats summary")
		return
	}
	respond.OK(w, summary)
}
