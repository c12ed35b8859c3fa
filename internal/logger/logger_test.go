package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"upper case", "DEBUG", zerolog.DebugLevel},
		{"default level", "", zerolog.WarnLevel},
		{"invalid level", "loud", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetForTesting()
			t.Cleanup(ResetForTesting)

			var buf bytes.Buffer
			Setup(Config{Level: tt.level, Output: &buf})

			logger := Get()
			require.NotNil(t, logger)
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseLogFormat("json"))
	assert.Equal(t, FormatJSON, ParseLogFormat("JSON"))
	assert.Equal(t, FormatConsole, ParseLogFormat("console"))
	assert.Equal(t, FormatConsole, ParseLogFormat(""))
	assert.Equal(t, FormatConsole, ParseLogFormat("xml"))
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: FormatJSON, Output: &buf})

	logger.Info("chapter generated", map[string]interface{}{
		"chapter": "The Storm",
		"index":   1,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "chapter generated", entry["message"])
	assert.Equal(t, "The Storm", entry["chapter"])
	assert.Equal(t, float64(1), entry["index"])
	assert.Contains(t, entry, "time")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: FormatJSON, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"warn"`)
	assert.Contains(t, lines[1], `"level":"error"`)
}

func TestLogger_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: FormatConsole, Output: &buf})

	logger.Info("hello", map[string]interface{}{"run_id": "abc"})

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "run_id=")
	assert.Contains(t, out, "abc")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Format: FormatJSON, Output: &buf})

	child := base.WithFields(map[string]interface{}{"command": "create-book"})
	assert.Equal(t, base.GetLevel(), child.GetLevel())
	assert.Same(t, base, base.WithFields(nil))

	child.Info("started")
	assert.Contains(t, buf.String(), `"command":"create-book"`)
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("nothing")
		l.Error("nothing")
	})
	assert.Equal(t, zerolog.NoLevel, l.GetLevel())
}
