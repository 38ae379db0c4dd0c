package infrastructure

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsecli/internal/config"
)

func TestInitializeLogger_Console(t *testing.T) {
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestInitializeLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "stage.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("fetch completed", slog.String("date", "1402-05-01"))
	CloseLogFile()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"fetch completed"`)
	assert.Contains(t, string(data), `"date":"1402-05-01"`)
}

func TestInitializeLogger_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "warn",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("suppressed")
	logger.Warn("kept")
	CloseLogFile()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed")
	assert.Contains(t, string(data), "kept")
}

func TestInitializeLogger_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.log")
	cfg := config.LoggingConfig{Level: "info", Output: "file", FilePath: path}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	logger.Info("first run")
	CloseLogFile()

	logger, err = InitializeLogger(cfg)
	require.NoError(t, err)
	logger.Info("second run")
	CloseLogFile()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), `"msg"`))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "ERROR", want: slog.LevelError},
		{input: "unknown", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}
