package routes

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/trainlog/trainlog/internal/app"
	"github.com/trainlog/trainlog/internal/handler"
	"github.com/trainlog/trainlog/internal/middleware"
	"github.com/trainlog/trainlog/internal/respond"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Sessions)
	workout := handler.NewWorkoutHandler(app.WorkoutService)
	exercise := handler.NewExerciseHandler(app.ExerciseService)
	goal := handler.NewGoalHandler(app.GoalService)
	stats := handler.NewStatsHandler(app.StatsService)
	export := handler.NewExportHandler(app.ExportService)
	admin := handler.NewAdminHandler(app.UserService)

	mux := http.NewServeMux()

	// ============================================================================
	// AUTH
	// ============================================================================

	rateLimiter := middleware.NewRateLimiter(app.Cfg.LoginRatePerMinute, app.Cfg.TrustProxy)

	mux.HandleFunc("POST /api/login", rateLimiter.Limit(auth.Login))
	mux.HandleFunc("GET /api/login", auth.Current)
	mux.HandleFunc("DELETE /api/login", auth.Logout)
	mux.HandleFunc("POST /api/register", auth.Register)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Workouts
	mux.HandleFunc("GET /api/workouts", middleware.RequireAuth(workout.List))
	mux.HandleFunc("GET /api/workouts/{id}", middleware.RequireAuth(workout.Get))
	mux.HandleFunc("POST /api/workouts", middleware.RequireAuth(workout.Create))
	mux.HandleFunc("PUT /api/workouts/{id}", middleware.RequireAuth(workout.Update))
	mux.HandleFunc("DELETE /api/workouts/{id}", middleware.RequireAuth(workout.Delete))
	mux.HandleFunc("GET /api/workouts/{id}/exercises", middleware.RequireAuth(workout.ListExercises))
	mux.HandleFunc("POST /api/workouts/{id}/exercises", middleware.RequireAuth(workout.AddExercise))
	mux.HandleFunc("PUT /api/workouts/{id}/exercises/{rowId}", middleware.RequireAuth(workout.UpdateExercise))
	mux.HandleFunc("DELETE /api/workouts/{id}/exercises/{rowId}", middleware.RequireAuth(workout.DeleteExercise))

	// Exercises
	mux.HandleFunc("GET /api/exercises", middleware.RequireAuth(exercise.List))
	mux.HandleFunc("GET /api/exercises/stats", middleware.RequireAuth(exercise.Usage))
	mux.HandleFunc("GET /api/exercises/stats/{id}", middleware.RequireAuth(exercise.UsageByID))
	mux.HandleFunc("GET /api/exercises/popular", middleware.RequireAuth(exercise.Popular))
	mux.HandleFunc("GET /api/exercises/categories", middleware.RequireAuth(exercise.Categories))
	mux.HandleFunc("GET /api/exercises/{id}", middleware.RequireAuth(exercise.Get))
	mux.HandleFunc("POST /api/exercises", middleware.RequireAuth(exercise.Create))
	mux.HandleFunc("PUT /api/exercises/{id}", middleware.RequireAuth(exercise.Update))
	mux.HandleFunc("DELETE /api/exercises/{id}", middleware.RequireAuth(exercise.Delete))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("GET /api/goals/stats", middleware.RequireAuth(goal.Stats))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("PATCH /api/goals/{id}/progress", middleware.RequireAuth(goal.Progress))
	mux.HandleFunc("PATCH /api/goals/{id}/complete", middleware.RequireAuth(goal.Complete))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))

	// Stats
	mux.HandleFunc("GET /api/stats/workout-frequency", middleware.RequireAuth(stats.WorkoutFrequency))
	mux.HandleFunc("GET /api/stats/top-exercises", middleware.RequireAuth(stats.TopExercises))
	mux.HandleFunc("GET /api/stats/exercise-progression/{exerciseId}", middleware.RequireAuth(stats.ExerciseProgression))
	mux.HandleFunc("GET /api/stats/volume-progression", middleware.RequireAuth(stats.VolumeProgression))
	mux.HandleFunc("GET /api/stats/personal-records", middleware.RequireAuth(stats.PersonalRecords))
	mux.HandleFunc("GET /api/stats/summary", middleware.RequireAuth(stats.Summary))

	// Export
	mux.HandleFunc("GET /api/export/workouts/json", middleware.RequireAuth(export.JSON))
	mux.HandleFunc("GET /api/export/workouts/csv", middleware.RequireAuth(export.CSV))
	mux.HandleFunc("POST /api/export/archive", middleware.RequireAuth(export.Archive))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/admin/users", middleware.RequireAdmin(admin.Users))
	mux.HandleFunc("PATCH /api/admin/users/{id}/role", middleware.RequireAdmin(admin.UpdateRole))
	mux.HandleFunc("DELETE /api/admin/users/{id}", middleware.RequireAdmin(admin.DeleteUser))
	mux.HandleFunc("GET /api/admin/stats", middleware.RequireAdmin(admin.Stats))

	if app.Cfg.Debug {
		mux.HandleFunc("GET /api/dev/users", admin.DevUsers)
	}

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found.")
	})

	// Frontend build, when present
	if info, err := os.Stat(app.Cfg.FrontendPath); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(app.Cfg.FrontendPath)))
	} else {
		slog.Debug("frontend directory not found, serving API only", "path", app.Cfg.FrontendPath)
	}

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (read by Recover and error responses)
		middleware.RequestLogging,
		middleware.Recover,
		middleware.Session(app.Sessions),
		middleware.CurrentUser(app.UserService, app.Sessions),
		middleware.ACL(app.ACL),
	)

	return handler
}
