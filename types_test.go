package hmsservices

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(ctx context.Context, message []byte) []byte { return nil }

func TestChannelRegistry(t *testing.T) {
	reg := NewChannelRegistry()
	assert.Equal(t, 0, reg.Count())

	require.NoError(t, reg.Bind("b", noopHandler))
	require.NoError(t, reg.Bind("a", noopHandler))

	err := reg.Bind("a", noopHandler)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChannelBound)

	assert.Error(t, reg.Bind("", noopHandler))
	assert.Error(t, reg.Bind("c", nil))

	assert.Equal(t, []string{"a", "b"}, reg.Channels())
	assert.Equal(t, 2, reg.Count())

	_, ok := reg.Lookup("a")
	assert.True(t, ok)
	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{" error ", ERROR, false},
		{"loud", INFO, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogConfig_Level(t *testing.T) {
	cfg := &LogConfig{LogLevel: ERROR}
	assert.Equal(t, slog.LevelError, cfg.Level())

	cfg.DebugMode = true
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestNewLogger_File(t *testing.T) {
	dir := t.TempDir()
	logger, level, closer, err := NewLogger(&LogConfig{LogLevel: WARN, LogDir: dir, ServiceName: "bridge"})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	level.Set(slog.LevelInfo)
	logger.Info("kept after level change")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "bridge.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), "kept after level change")
	assert.Contains(t, string(data), `"service":"bridge"`)
}
