package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")

	cfg := logging.ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestNewLoggerFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheetsync.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "reconciler"},
	})
	logger.Info().Msg("hidden")
	logger.Warn().Msg("visible")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(content)
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"component":"reconciler"`)
	assert.NotContains(t, out, "hidden")
}

func TestNewLoggerFromConfigLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARNING", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := logging.NewLoggerFromConfig(&logging.Config{Level: tt.level, Output: "discard", Format: "json"})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := logging.WithLogger(context.Background(), &logger)
	ctx = logging.WithRow(ctx, "row-7")
	ctx = logging.WithIssue(ctx, 41)

	logging.FromContext(ctx).Info().Msg("updated")
	out := buf.String()
	assert.Contains(t, out, `"row_id":"row-7"`)
	assert.Contains(t, out, `"issue":41`)
}

func TestFromContextOr(t *testing.T) {
	nop := logging.NewNopLogger()
	assert.Same(t, nop, logging.FromContextOr(context.Background(), nop))
	assert.Same(t, logging.Default(), logging.FromContextOr(context.Background(), nil))

	other := logging.NewNopLogger()
	ctx := logging.WithLogger(context.Background(), other)
	assert.Same(t, other, logging.FromContextOr(ctx, nop))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.OrDefault(nil))
	nop := logging.NewNopLogger()
	assert.Same(t, nop, logging.OrDefault(nop))
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	tl.Info().Str("row_id", "row-2").Msg("created issue")
	tl.Warn().Msg("skipped")

	assert.Len(t, tl.Lines(), 2)
	tl.AssertContains(t, "created issue")
	tl.AssertNotContains(t, "deleted")
}
