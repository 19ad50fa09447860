package renderer

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"golang.org/x/exp/slog"
)

func TestParseLevel(t *testing.T) {
	for name, expected := range map[string]slog.Level{
		"trace":    LevelTrace,
		"DEBUG":    slog.LevelDebug,
		"info":     slog.LevelInfo,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": LevelCritical,
	} {
		level, err := ParseLevel(name)
		require.NoError(t, err, name)
		require.Equal(t, expected, level, name)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestLoggerNamesCustomLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, LevelTrace)

	logger.Log(context.Background(), LevelTrace, "tiny")
	logger.Log(context.Background(), LevelCritical, "huge")

	require.Contains(t, buf.String(), "level=TRACE msg=tiny")
	require.Contains(t, buf.String(), "level=CRITICAL msg=huge")
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, slog.LevelInfo)

	logger.Log(context.Background(), LevelTrace, "hidden")
	logger.Debug("hidden too")
	require.Empty(t, buf.String())
}

func TestLogCriticalIncludesResult(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, slog.LevelInfo)

	err := initError("device", core1_0.VKErrorDeviceLost, errors.New("no driver"))
	LogCritical(logger, "startup failed", errors.Wrap(err, "renderer"))

	out := buf.String()
	require.Contains(t, out, "level=CRITICAL")
	require.Contains(t, out, "stage=device")
	require.Contains(t, out, "result=")
}

func TestSeverityLevel(t *testing.T) {
	require.Equal(t, slog.LevelError, severityLevel(ext_debug_utils.SeverityError))
	require.Equal(t, slog.LevelWarn, severityLevel(ext_debug_utils.SeverityWarning))
	require.Equal(t, slog.LevelInfo, severityLevel(ext_debug_utils.SeverityInfo))
	require.Equal(t, LevelTrace, severityLevel(ext_debug_utils.SeverityVerbose))
	require.Equal(t, slog.LevelError, severityLevel(ext_debug_utils.SeverityError|ext_debug_utils.SeverityWarning))
}

func TestDebugCallbackLogsAndContinues(t *testing.T) {
	buf := &bytes.Buffer{}
	callback := debugCallback(NewLogger(buf, LevelTrace), false)

	abort := callback(ext_debug_utils.TypeValidation, ext_debug_utils.SeverityError, &ext_debug_utils.DebugUtilsMessengerCallbackData{
		Message: "vkCreateBuffer: size is zero",
	})
	require.False(t, abort)
	require.Contains(t, buf.String(), "level=ERROR")
	require.Contains(t, buf.String(), "size is zero")
}

func TestInitializationError(t *testing.T) {
	inner := errors.Wrap(ErrNoSuitableDevice, "3 adapters rejected")
	err := initError("physical device", core1_0.VKSuccess, inner)

	var initErr *InitializationError
	require.True(t, errors.As(err, &initErr))
	require.Equal(t, "physical device", initErr.Stage)
	require.True(t, errors.Is(err, ErrNoSuitableDevice))
	require.Equal(t, "initialize physical device: 3 adapters rejected: failed to find a suitable GPU", err.Error())

	require.Same(t, err, initError("outer", core1_0.VKSuccess, err))
	require.NoError(t, initError("unused", core1_0.VKSuccess, nil))
}
