package hmsservices

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewLogger 根据日志配置创建记录器
//
// LogDir 为空时以文本格式输出到 stderr；否则以JSON格式追加写入
// LogDir/<ServiceName>.log。返回的 LevelVar 可在运行时调整级别，
// closer 用于关闭日志文件（输出到 stderr 时为空操作）。
func NewLogger(cfg *LogConfig) (*slog.Logger, *slog.LevelVar, io.Closer, error) {
	if cfg == nil {
		cfg = DefaultLogConfig()
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Level())
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.DebugMode}

	service := cfg.ServiceName
	if service == "" {
		service = ChannelName
	}

	if cfg.LogDir == "" {
		handler := slog.NewTextHandler(os.Stderr, opts)
		return slog.New(handler).With("service", service), level, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	file, err := os.OpenFile(filepath.Join(cfg.LogDir, service+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}

	handler := slog.NewJSONHandler(file, opts)
	return slog.New(handler).With("service", service), level, file, nil
}

// Level 实际生效的日志级别，Debug模式下总是debug
func (c *LogConfig) Level() slog.Level {
	if c.DebugMode {
		return slog.LevelDebug
	}
	return c.LogLevel.slogLevel()
}
