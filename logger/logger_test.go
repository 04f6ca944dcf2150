package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessage = "test message"

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line, "expected a log line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestNewWithWriterLevels(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		expectedLevel zerolog.Level
	}{
		{name: "debug", level: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "warn", level: "warn", expectedLevel: zerolog.WarnLevel},
		{name: "invalid_level_defaults_to_info", level: "loud", expectedLevel: zerolog.InfoLevel},
		{name: "empty_level_defaults_to_info", level: "", expectedLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(&buf, tt.level, false)
			assert.Equal(t, tt.expectedLevel, l.Level())
		})
	}
}

func TestEventFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", false)

	l.Warn().
		Str("position", "items.go:3").
		Int("count", 2).
		Bool("strict", true).
		Dur("elapsed", 1500*time.Millisecond).
		Interface("kinds", []string{"a"}).
		Err(errors.New("boom")).
		Msg(testMessage)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, testMessage, entry["message"])
	assert.Equal(t, "items.go:3", entry["position"])
	assert.EqualValues(t, 2, entry["count"])
	assert.Equal(t, true, entry["strict"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "caller")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", false)

	l.Info().Msg("hidden")
	l.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Error().Msgf("shown %d", 1)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "shown 1", entry["message"])
}

func TestSensitiveValuesAreMasked(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", false)

	l.WithFields(map[string]any{"registry_token": "abc", "run": "r1"}).
		Info().
		Str("password", "hunter2").
		Interface("api_key", map[string]string{"k": "v"}).
		Msg(testMessage)

	entry := decodeLine(t, &buf)
	assert.Equal(t, DefaultMaskValue, entry["registry_token"])
	assert.Equal(t, "r1", entry["run"])
	assert.Equal(t, DefaultMaskValue, entry["password"])
	assert.Equal(t, DefaultMaskValue, entry["api_key"])
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", true)

	l.Info().Msg(testMessage)
	assert.Contains(t, buf.String(), testMessage)
	assert.False(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"), "pretty output is not JSON")
}

func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Warn().Str("k", "v").Msg(testMessage)
		l.WithFields(map[string]any{"k": "v"}).Info().Msg(testMessage)
	})
}

func TestFilterFieldsNil(t *testing.T) {
	f := NewSensitiveDataFilter(&FilterConfig{SensitiveFields: []string{"pin"}})
	assert.Nil(t, f.FilterFields(nil))
	assert.Equal(t, DefaultMaskValue, f.FilterString("PIN", "1234"))
	assert.Equal(t, "x", f.FilterString("name", "x"))
}
