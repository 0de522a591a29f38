package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestLoggerRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core), LogLevelWarn)

	logger.Debug("hidden %d", 1)
	logger.Info("hidden %d", 2)
	logger.Warn("shown %s", "warn")
	logger.Error("shown %s", "error")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "shown warn", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "shown error", entries[1].Message)
	}
}

func TestLoggerWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewLoggerFromZap(zap.New(core), LogLevelInfo).With("session", "abc")

	logger.Info("navigated to %s", "predict")

	entries := logs.FilterField(zap.String("session", "abc")).All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "navigated to predict", entries[0].Message)
	}
}
