package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_ProductionWritesJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := Init(Options{Output: &buf})

	log.Debug("hidden")
	log.Info("workout created", "workout_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "workout created", line["msg"])
	assert.EqualValues(t, 7, line["workout_id"])
}

func TestInit_DevelopmentLogsDebug(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Init(Options{Development: true, Output: &buf})

	slog.Debug("session resolved", "session_id", "abc")
	assert.Contains(t, buf.String(), "session resolved")
	assert.Contains(t, buf.String(), "session_id=abc")
}
