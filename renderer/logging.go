package renderer

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

const (
	LevelTrace    = slog.Level(-8)
	LevelCritical = slog.Level(12)
)

var levelNames = map[slog.Level]string{
	LevelTrace:    "TRACE",
	LevelCritical: "CRITICAL",
}

// NewLogger returns a text logger that knows the trace and critical levels.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey {
				return a
			}

			level, ok := a.Value.Any().(slog.Level)
			if !ok {
				return a
			}

			if name, named := levelNames[level]; named {
				a.Value = slog.StringValue(name)
			}
			return a
		},
	}))
}

func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical":
		return LevelCritical, nil
	}

	return slog.LevelInfo, errors.Newf("unknown log level %q", name)
}

// LogCritical writes err at the critical level, including the native result code
// when the error carries one.
func LogCritical(logger *slog.Logger, msg string, err error) {
	attrs := []any{"err", err}

	var initErr *InitializationError
	if errors.As(err, &initErr) {
		attrs = append(attrs, "stage", initErr.Stage, "result", initErr.Result)
	}

	logger.Log(context.Background(), LevelCritical, msg, attrs...)
}
