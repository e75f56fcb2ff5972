package handler

import (
	"encoding/json"
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
)

type roleRequest struct {
	Role string `json:"role"`
}

type AdminHandler struct {
	userService *service.UserService
}

func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		userService: userService,
	}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Users(r.Context())
	if err != nil {
		handleError(w, r, err, "list users")
		return
	}
	respond.OK(w, users)
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	admin := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read role body")
		return
	}
	var req roleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Request body must be a JSON object.")
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), admin.ID, id, req.Role)
	if err != nil {
		handleError(w, r, err, "update user role")
		return
	}
	respond.OK(w, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := ctxkeys.User(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), admin.ID, id); err != nil {
		handleError(w, r, err, "delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userService.Stats(r.Context())
	if err != nil {
		handleError(w, r, err, "get admin stats")
		return
	}
	respond.OK(w, stats)
}

// DevUsers lists users without password hashes. Mounted only in debug mode.
func (h *AdminHandler) DevUsers(w http.ResponseWriter, r *http.Request) {
	h.Users(w, r)
}
