package renderer

import (
	"context"
	"runtime"

	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"golang.org/x/exp/slog"
)

type DebugMessenger struct {
	Handle ext_debug_utils.DebugUtilsMessenger
}

func severityLevel(severity ext_debug_utils.DebugUtilsMessageSeverityFlags) slog.Level {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return slog.LevelError
	case severity&ext_debug_utils.SeverityWarning != 0:
		return slog.LevelWarn
	case severity&ext_debug_utils.SeverityInfo != 0:
		return slog.LevelInfo
	default:
		return LevelTrace
	}
}

func debugCallback(logger *slog.Logger, breakOnError bool) func(ext_debug_utils.DebugUtilsMessageTypeFlags, ext_debug_utils.DebugUtilsMessageSeverityFlags, *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	return func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
		level := severityLevel(severity)
		logger.Log(context.Background(), level, data.Message, "type", msgType)

		if level == slog.LevelError && breakOnError {
			runtime.Breakpoint()
		}

		// Returning true would abort the call that triggered the message.
		return false
	}
}

func debugMessengerOptions(logger *slog.Logger, breakOnError bool) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityInfo | ext_debug_utils.SeverityVerbose,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    debugCallback(logger, breakOnError),
	}
}

func BuildDebugMessenger(instance Instance, logger *slog.Logger) (DebugMessenger, error) {
	debugLoader := ext_debug_utils.CreateExtensionFromInstance(instance.Handle)
	messenger, res, err := debugLoader.CreateDebugUtilsMessenger(instance.Handle, nil, debugMessengerOptions(logger, instance.Builder.BreakOnValidationError))
	if err != nil {
		return DebugMessenger{}, initError("debug messenger", res, err)
	}

	return DebugMessenger{Handle: messenger}, nil
}

func (m DebugMessenger) Destroy() {
	if m.Handle != nil {
		m.Handle.Destroy(nil)
	}
}
