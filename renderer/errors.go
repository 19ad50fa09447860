package renderer

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

var (
	ErrDeviceLost       = errors.New("device lost")
	ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")
	ErrMissingLayer     = errors.New("missing instance layer")
	ErrMissingExtension = errors.New("missing extension")
)

// InitializationError reports a failure while building the device context chain or
// one of the resources created up front. These are configuration problems: the caller
// decides whether to exit or retry with a different setup.
type InitializationError struct {
	Stage  string
	Result common.VkResult
	Err    error
}

func (e *InitializationError) Error() string {
	if e.Result != core1_0.VKSuccess {
		return fmt.Sprintf("initialize %s (%v): %v", e.Stage, e.Result, e.Err)
	}
	return fmt.Sprintf("initialize %s: %v", e.Stage, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

func initError(stage string, res common.VkResult, err error) error {
	if err == nil {
		return nil
	}

	var existing *InitializationError
	if errors.As(err, &existing) {
		return err
	}

	return &InitializationError{Stage: stage, Result: res, Err: err}
}

// SwapchainStaleError is returned by the frame loop when the presentation engine
// reports that the swapchain no longer matches the surface.
type SwapchainStaleError struct {
	Phase  string
	Result common.VkResult
}

func (e *SwapchainStaleError) Error() string {
	return fmt.Sprintf("swapchain stale during %s: %v", e.Phase, e.Result)
}

// markResult tags errors coming out of native calls that signal a lost device.
func markResult(res common.VkResult, err error) error {
	if res == core1_0.VKErrorDeviceLost {
		return errors.Mark(err, ErrDeviceLost)
	}
	return err
}
