package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/trainlog/trainlog/internal/ctxkeys"
	"github.com/trainlog/trainlog/internal/respond"
	"github.com/trainlog/trainlog/internal/service"
	"github.com/trainlog/trainlog/internal/session"
)

var errNoSession = errors.New("session unavailable")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// Login replaces any logged-in user with the one matching the credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s := ctxkeys.Session(r.Context())
	if s == nil {
		respond.InternalError(w, r, errNoSession)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read login body")
		return
	}
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Request body must be a JSON object.")
		return
	}

	if err := h.sessions.Clear(r.Context(), s, session.UserKey); err != nil {
		handleError(w, r, err, "clear session user")
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			slog.Info("login failed", "session_id", s.ID)
			respond.Error(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		handleError(w, r, err, "log in")
		return
	}

	if err := h.sessions.Set(r.Context(), s, session.UserKey, user); err != nil {
		handleError(w, r, err, "store session user")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	respond.OK(w, user)
}

func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	if user := ctxkeys.User(r.Context()); user != nil {
		respond.OK(w, user)
		return
	}
	respond.Error(w, http.StatusUnauthorized, "No user is logged in.")
}

// Logout clears the session user. Logging out twice is not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := ctxkeys.Session(r.Context()); s != nil {
		if err := h.sessions.Clear(r.Context(), s, session.UserKey); err != nil {
			handleError(w, r, err, "clear session user")
			return
		}
	}
	respond.OK(w, statusResponse{Status: "Successful logout."})
}

// Register creates the account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err, "read register body")
		return
	}

	user, err := h.authService.Register(r.Context(), body)
	if err != nil {
		handleError(w, r, err, "register user")
		return
	}

	if s := ctxkeys.Session(r.Context()); s != nil {
		if err := h.sessions.Set(r.Context(), s, session.UserKey, user); err != nil {
			slog.Error("failed to log in new user", "error", err, "user_id", user.ID)
		}
	}

	respond.OK(w, user)
}
