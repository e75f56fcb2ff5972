package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/acl"
	"github.com/trainlog/trainlog/internal/config"
	"github.com/trainlog/trainlog/internal/db"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/scheduler"
	"github.com/trainlog/trainlog/internal/service"
	"github.com/trainlog/trainlog/internal/session"
	"github.com/trainlog/trainlog/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Sessions        *session.Manager
	ACL             *acl.Checker
	Scheduler       *scheduler.Scheduler
	AuthService     *service.AuthService
	UserService     *service.UserService
	EmailService    *service.EmailService
	WorkoutService  *service.WorkoutService
	ExerciseService *service.ExerciseService
	GoalService     *service.GoalService
	StatsService    *service.StatsService
	ExportService   *service.ExportService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	aclRepository := repository.NewACLRepository(database)
	exerciseRepository := repository.NewExerciseRepository(database)
	workoutRepository := repository.NewWorkoutRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	statsRepository := repository.NewStatsRepository(database)

	// Storage is optional; without a bucket the archive export answers 503.
	var exportStorage storage.Storage
	if cfg.StorageEnabled() {
		s3Storage, err := storage.New(ctx, cfg)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			slog.Warn("export bucket not reachable", "bucket", cfg.S3Bucket, "error", err)
		}
		exportStorage = s3Storage
	}

	// Access control
	checker := acl.NewChecker(aclRepository, cfg.ACLOn)
	if checker.Enabled() {
		if err := checker.Refresh(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to load ACL rules: %w", err)
		}
	}

	// Services
	hasher := normalize.BcryptHasher{}
	normalizer := normalize.New(hasher)
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService, err := service.NewAuthService(userRepository, hasher, emailService)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	userService := service.NewUserService(userRepository, emailService)
	workoutService := service.NewWorkoutService(workoutRepository, exerciseRepository, normalizer)
	exerciseService := service.NewExerciseService(exerciseRepository, statsRepository, normalizer)
	goalService := service.NewGoalService(goalRepository, normalizer)
	statsService := service.NewStatsService(statsRepository, workoutRepository)
	exportService := service.NewExportService(workoutRepository, exportStorage)

	sessions := session.NewManager(sessionRepository, cfg.SessionLifetime())

	// Background jobs
	opts := scheduler.Options{SweepSchedule: cfg.SessionSweepSchedule}
	if checker.Enabled() {
		opts.ACL = checker
		opts.ACLInterval = cfg.ACLRefreshInterval
	}
	jobs := scheduler.New(sessions, opts, slog.Default())

	return &App{
		Cfg:             cfg,
		DB:              database,
		Sessions:        sessions,
		ACL:             checker,
		Scheduler:       jobs,
		AuthService:     authService,
		UserService:     userService,
		EmailService:    emailService,
		WorkoutService:  workoutService,
		ExerciseService: exerciseService,
		GoalService:     goalService,
		StatsService:    statsService,
		ExportService:   exportService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
