package hmsservices

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ChannelName, cfg.Channel)
	assert.Equal(t, CodecStandard, cfg.MethodCodec().Name())
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
channel: hms_services
codec: json
server:
  port_range: [6000, 6010]
  shutdown_timeout: 2s
gateway:
  enabled: true
  address: 127.0.0.1:9090
log:
  log_level: debug
  service_name: bridge
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, CodecJSON, cfg.MethodCodec().Name())
	assert.Equal(t, []int{6000, 6010}, cfg.Server.PortRange)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Gateway.Enabled)
	assert.Equal(t, "127.0.0.1:9090", cfg.Gateway.Address)
	assert.Equal(t, DEBUG, cfg.Log.LogLevel)
	assert.Equal(t, "bridge", cfg.Log.ServiceName)

	// untouched sections keep their defaults
	assert.Equal(t, DefaultClientConfig().Address, cfg.Client.Address)
	assert.Equal(t, DefaultClientConfig().CallTimeout, cfg.Client.CallTimeout)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown codec", "codec: xml", "Codec"},
		{"empty channel", `channel: ""`, "Channel"},
		{"reversed port range", "server:\n  port_range: [7000, 6000]", "端口范围"},
		{"short port range", "server:\n  port_range: [7000]", "PortRange"},
		{"gateway without address", "gateway:\n  enabled: true\n  address: \"\"", "Address"},
		{"bad log level", "log:\n  log_level: loud", "日志级别"},
		{"not yaml", "channel: [", "解析配置文件失败"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchConfig_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  log_level: info\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var latest atomic.Value
	err := WatchConfig(ctx, path, testLogger(), func(cfg *Config) {
		latest.Store(cfg.Log.LogLevel)
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  log_level: error\n"), 0o600))

	assert.Eventually(t, func() bool {
		level, ok := latest.Load().(LogLevel)
		return ok && level == ERROR
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatchConfig_MissingFile(t *testing.T) {
	err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), testLogger(), func(*Config) {})
	require.Error(t, err)
}
