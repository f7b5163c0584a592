package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Level: "debug", Format: "auto"}.New(&buf, false)

	l.Debug().Str("map", "x").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "x", entry["map"])
	assert.Contains(t, entry, "time")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Level: "info", Format: "console", NoColor: true}.New(&buf, false)

	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "INF hello")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Level: "warn", Format: "json"}.New(&buf, true)

	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestLevelDefault(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, Logger{}.level())
	assert.Equal(t, zerolog.InfoLevel, Logger{Level: "loud"}.level())
	assert.Equal(t, zerolog.TraceLevel, Logger{Level: "trace"}.level())
}
