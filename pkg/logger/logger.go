// Package logger 进程级日志初始化
// 基于log/slog：配置解析级别/格式/输出后设置为默认Logger，
// 各包直接使用slog包级函数，不传递logger实例
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config 日志配置（由infrastructure/config填充）
type Config struct {
	Level  string // debug | info | warn | error
	Format string // console | json
	Output string // stdout | stderr | 文件路径
}

// Setup 按配置初始化默认Logger
// 输出文件打开失败时回退到stderr并返回错误，进程可自行决定是否继续
func Setup(cfg Config) error {
	level := parseLevel(cfg.Level)

	var out io.Writer
	var openErr error
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			out = os.Stderr
			openErr = err
		} else {
			out = f
		}
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
	return openErr
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
