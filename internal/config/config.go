package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is built once at startup and passed by pointer. Nothing mutates it after Load.
type Config struct {
	// Application
	AppName      string `env:"APP_NAME" envDefault:"Trainlog"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
	AppURL       string `env:"APP_URL" envDefault:"http://localhost:3001"`
	Port         string `env:"PORT" envDefault:"3001"`
	FrontendPath string `env:"FRONTEND_PATH" envDefault:"./dist"`
	Debug        bool   `env:"DEBUG" envDefault:"false"`

	// Database
	DBPath string `env:"DB_PATH" envDefault:"./data/_db.sqlite3"`

	// Sessions
	SessionLifetimeHours int    `env:"SESSION_LIFETIME_HOURS" envDefault:"2"`
	SessionSweepSchedule string `env:"SESSION_SWEEP_SCHEDULE" envDefault:"@every 15m"`

	// Access control
	ACLOn              bool          `env:"ACL_ON" envDefault:"false"`
	ACLRefreshInterval time.Duration `env:"ACL_REFRESH_INTERVAL" envDefault:"60s"`

	// Security
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	// TrustProxy honors X-Forwarded-For and X-Real-IP for client IPs.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// Email (RESEND_API_KEY optional in development)
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"noreply@example.com"`
	ResendAPIKey string `env:"RESEND_API_KEY"`

	// Observability (optional)
	SentryDSN string `env:"SENTRY_DSN"`

	// Export archive storage (S3-compatible, optional)
	S3Region        string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string        `env:"S3_BUCKET"`
	S3AccessKey     string        `env:"S3_ACCESS_KEY"`
	S3SecretKey     string        `env:"S3_SECRET_KEY"`
	S3Endpoint      string        `env:"S3_ENDPOINT"` // MinIO, R2, DO Spaces, etc.
	S3PresignExpiry time.Duration `env:"S3_PRESIGN_EXPIRY" envDefault:"1h"`
}

// Load reads .env (if present) and the environment, then applies positional
// arguments in the order: port, frontend path, database path.
func Load(args []string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(args) > 0 && args[0] != "" {
		if _, err := strconv.Atoi(args[0]); err != nil {
			return nil, fmt.Errorf("invalid port argument %q", args[0])
		}
		cfg.Port = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		cfg.FrontendPath = args[1]
	}
	if len(args) > 2 && args[2] != "" {
		cfg.DBPath = args[2]
	}

	if cfg.SessionLifetimeHours <= 0 {
		return nil, fmt.Errorf("SESSION_LIFETIME_HOURS must be positive, got %d", cfg.SessionLifetimeHours)
	}

	if cfg.IsProduction() && cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, welcome emails are disabled")
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeHours) * time.Hour
}

// StorageEnabled reports whether an export archive bucket is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy with secrets and credentials removed, safe to log.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:              c.AppName,
		AppEnv:               c.AppEnv,
		AppURL:               c.AppURL,
		Port:                 c.Port,
		FrontendPath:         c.FrontendPath,
		Debug:                c.Debug,
		DBPath:               c.DBPath,
		SessionLifetimeHours: c.SessionLifetimeHours,
		SessionSweepSchedule: c.SessionSweepSchedule,
		ACLOn:                c.ACLOn,
		ACLRefreshInterval:   c.ACLRefreshInterval,
		LoginRatePerMinute:   c.LoginRatePerMinute,
		TrustProxy:           c.TrustProxy,
		EmailFrom:            c.EmailFrom,
		S3Region:             c.S3Region,
		S3Bucket:             c.S3Bucket,
		S3Endpoint:           c.S3Endpoint,
		S3PresignExpiry:      c.S3PresignExpiry,
	}
}
