package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoggerNew(t *testing.T) {
	testCases := []struct {
		name   string
		level  string
		format string
		want   zapcore.Level
	}{
		{"debug level", "debug", FormatJSON, zap.DebugLevel},
		{"info level", "info", FormatJSON, zap.InfoLevel},
		{"warn level", "warn", FormatConsole, zap.WarnLevel},
		{"error level", "error", FormatJSON, zap.ErrorLevel},
		{"empty level defaults to info", "", FormatJSON, zap.InfoLevel},
		{"invalid level defaults to info", "invalid", "", zap.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := NewWithFormat(tc.level, tc.format)
			assert.NoError(t, err)
			if assert.NotNil(t, logger) {
				assert.True(t, logger.Core().Enabled(tc.want))
				if tc.want > zap.DebugLevel {
					assert.False(t, logger.Core().Enabled(tc.want-1))
				}
			}
		})
	}
}

func TestNewDefaultsToJSON(t *testing.T) {
	logger, err := New("info")
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}
