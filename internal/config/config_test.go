package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("SESSION_LIFETIME_HOURS", "")
	t.Setenv("TRUST_PROXY", "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "./data/_db.sqlite3", cfg.DBPath)
	assert.Equal(t, 2*time.Hour, cfg.SessionLifetime())
	assert.Equal(t, 60*time.Second, cfg.ACLRefreshInterval)
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_PositionalArgsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PATH", "/tmp/env.db")

	cfg, err := Load([]string{"4000", "/srv/www", "/var/lib/trainlog.db"})
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "/srv/www", cfg.FrontendPath)
	assert.Equal(t, "/var/lib/trainlog.db", cfg.DBPath)
}

func TestLoad_InvalidPortArg(t *testing.T) {
	_, err := Load([]string{"not-a-port"})
	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveLifetime(t *testing.T) {
	t.Setenv("SESSION_LIFETIME_HOURS", "0")

	_, err := Load(nil)
	require.Error(t, err)
}

func TestSanitized_DropsSecrets(t *testing.T) {
	cfg := &Config{
		AppName:      "Trainlog",
		ResendAPIKey: "re_secret",
		SentryDSN:    "https://key@sentry.example/1",
		S3AccessKey:  "AKIA",
		S3SecretKey:  "shh",
		S3Bucket:     "exports",
		TrustProxy:   true,
	}

	safe := cfg.Sanitized()
	assert.True(t, safe.TrustProxy)

	assert.Equal(t, "Trainlog", safe.AppName)
	assert.Equal(t, "exports", safe.S3Bucket)
	assert.Empty(t, safe.ResendAPIKey)
	assert.Empty(t, safe.SentryDSN)
	assert.Empty(t, safe.S3AccessKey)
	assert.Empty(t, safe.S3SecretKey)
}
