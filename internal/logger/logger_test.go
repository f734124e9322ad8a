package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production", "info")
	log.Info("recipe created", "recipe_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "recipe created", entry["msg"])
	assert.EqualValues(t, 7, entry["recipe_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "development", "warn")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
