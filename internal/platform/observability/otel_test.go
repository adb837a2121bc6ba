package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFromEnv_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "")

	s, err := SettingsFromEnv("orders-api")
	require.NoError(t, err)
	assert.Equal(t, "orders-api", s.ServiceName)
	assert.Equal(t, "local", s.Environment)
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, 1.0, s.SampleRatio)
}

func TestSettingsFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")

	s, err := SettingsFromEnv("orders-worker")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, "staging", s.Environment)
	assert.Equal(t, 0.25, s.SampleRatio)
}

func TestSettingsFromEnv_RejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"level":  {"LOG_LEVEL", "loud"},
		"format": {"LOG_FORMAT", "xml"},
		"ratio":  {"OTEL_TRACES_SAMPLE_RATIO", "1.5"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc[0], tc[1])
			_, err := SettingsFromEnv("orders-api")
			assert.Error(t, err)
		})
	}
}

func TestNewLogger_TagsServiceAndHonoursLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := NewLogger(Settings{ServiceName: "orders-api", LogLevel: slog.LevelWarn, LogFormat: "json", Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record), buf.String())
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "orders-api", record["service"])
}

func TestInstruments_NilFallsBackToNoop(t *testing.T) {
	var i *Instruments
	assert.NotNil(t, i.Tracer("test"))
	meter := i.Meter("test")
	counter, err := meter.Int64Counter("noop")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
}
