package utils

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emberforge/vkframe/renderer"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := ParseFlags("test", nil, io.Discard)
	require.NoError(t, err)
	require.Equal(t, DefaultOptions(), opts)
}

func TestParseFlags(t *testing.T) {
	opts, err := ParseFlags("test", []string{
		"-validation",
		"-frames", "3",
		"-discrete=false",
		"-shaders", "build/shaders",
		"-pipeline-cache", "cache.bin",
		"-log-level", "trace",
		"-width", "1920",
		"-height", "1080",
		"-frame-limit", "500",
		"-texture", "crate.png",
		"-fence-timeout", "250ms",
	}, io.Discard)
	require.NoError(t, err)

	require.True(t, opts.Validation)
	require.Equal(t, 3, opts.Frames)
	require.False(t, opts.Discrete)
	require.Equal(t, "build/shaders", opts.Shaders)
	require.Equal(t, "cache.bin", opts.PipelineCache)
	require.Equal(t, renderer.LevelTrace, opts.LogLevel)
	require.Equal(t, 1920, opts.Width)
	require.Equal(t, 1080, opts.Height)
	require.Equal(t, uint64(500), opts.FrameLimit)
	require.Equal(t, "crate.png", opts.Texture)
	require.Equal(t, 250*time.Millisecond, opts.FenceTimeout)

	cfg := opts.Config("Test Sample")
	require.Equal(t, "Test Sample", cfg.AppName)
	require.True(t, cfg.Validation)
	require.False(t, cfg.RequireDiscreteGPU)
	require.Equal(t, 3, cfg.FramesInFlight)
	require.Equal(t, 250*time.Millisecond, cfg.FenceTimeout)
	require.Equal(t, "cache.bin", cfg.PipelineCachePath)
	require.NotNil(t, cfg.Shaders)
}

func TestParseFlagsErrors(t *testing.T) {
	testCases := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{name: "zero frames", args: []string{"-frames", "0"}, errMsg: "-frames"},
		{name: "bad size", args: []string{"-width", "0"}, errMsg: "window size"},
		{name: "bad level", args: []string{"-log-level", "loud"}, errMsg: "unknown log level"},
		{name: "positional", args: []string{"extra"}, errMsg: "unrecognized argument"},
		{name: "unknown flag", args: []string{"-save-images"}, errMsg: "save-images"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFlags("test", tc.args, io.Discard)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	_, err := ParseFlags("test", []string{"-h"}, io.Discard)
	require.True(t, errors.Is(err, flag.ErrHelp))
}

func TestDefaultOptionsLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelInfo, DefaultOptions().LogLevel)
}
