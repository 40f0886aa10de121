// Package logging 构造 gocda 使用的 slog.Logger。
// 日志统一写到 stderr，stdout 只留给报告内容。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options 描述日志输出方式。
type Options struct {
	// Level 取值 debug、info、warn、error 或 off。
	Level   string
	NoColor bool
	// Writer 为空时使用 os.Stderr。
	Writer io.Writer
}

// levelOff 高于所有内置级别，用于关闭日志。
const levelOff = slog.Level(99)

// ParseLevel 解析日志级别名，大小写不敏感。
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "err", "error":
		return slog.LevelError, nil
	case "off", "none", "quiet":
		return levelOff, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q, allowed values: debug, info, warn, error, off", name)
	}
}

// New 按 Options 构造 Logger。
// 输出是终端时使用带颜色的 tint 处理器，否则使用 slog 文本处理器。
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	if IsTerminal(writer) {
		return slog.New(newTerminalHandler(writer, level, opts.NoColor)), nil
	}
	return slog.New(newTextHandler(writer, level)), nil
}

// Discard 返回丢弃所有记录的 Logger。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelOff}))
}

// IsTerminal 判断 writer 是否为终端，非 *os.File 一律视为非终端。
func IsTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newTextHandler(writer io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					return slog.String(a.Key, strings.ToLower(lvl.String()))
				}
			}
			return a
		},
	})
}

func newTerminalHandler(writer io.Writer, level slog.Level, noColor bool) slog.Handler {
	return tint.NewHandler(writer, &tint.Options{
		Level:   level,
		NoColor: noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// 终端上不显示时间戳。
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
}
