package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Defaults(t *testing.T) {
	logger, err := New(nil)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Level = "loud"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRedactingEncoder_RedactsConfiguredFields(t *testing.T) {
	encoderCfg := zap.NewProductionEncoderConfig()
	enc := newRedactingEncoder(zapcore.NewJSONEncoder(encoderCfg), []string{"birth_year", "gender"})

	buf, err := enc.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Message: "collected"}, []zapcore.Field{
		zap.String("birth_year", "1990"),
		zap.String("gender", "male"),
		zap.String("stage", "collect"),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "1990")
	assert.NotContains(t, out, "male")
	assert.Contains(t, out, "[REDACTED:4]")
	assert.Contains(t, out, "collect")
}

func TestRedactedString(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	logger.Info("saved", RedactedString("api_key", "sk-12345"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[REDACTED:8]", entries[0].ContextMap()["api_key"])
}
