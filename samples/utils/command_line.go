package utils

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emberforge/vkframe/renderer"
	"golang.org/x/exp/slog"
)

// Options is everything a sample can be told from the command line.
type Options struct {
	Validation    bool
	Frames        int
	Discrete      bool
	Shaders       string
	Assets        string
	PipelineCache string
	LogLevel      slog.Level
	Width         int
	Height        int
	FrameLimit    uint64
	Texture       string
	FenceTimeout  time.Duration
}

func DefaultOptions() Options {
	return Options{
		Frames:       renderer.DefaultFramesInFlight,
		Discrete:     true,
		Shaders:      "shaders",
		Assets:       "assets",
		LogLevel:     slog.LevelInfo,
		Width:        800,
		Height:       600,
		FenceTimeout: renderer.DefaultFenceTimeout,
	}
}

// ParseFlags parses args (without the program name). -h returns flag.ErrHelp after
// printing usage to output.
func ParseFlags(name string, args []string, output io.Writer) (Options, error) {
	opts := DefaultOptions()
	logLevel := "info"

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)
	flags.BoolVar(&opts.Validation, "validation", opts.Validation, "enable the khronos validation layer")
	flags.IntVar(&opts.Frames, "frames", opts.Frames, "frames in flight")
	flags.BoolVar(&opts.Discrete, "discrete", opts.Discrete, "only accept discrete GPUs")
	flags.StringVar(&opts.Shaders, "shaders", opts.Shaders, "directory holding compiled SPIR-V")
	flags.StringVar(&opts.Assets, "assets", opts.Assets, "directory holding meshes and images")
	flags.StringVar(&opts.PipelineCache, "pipeline-cache", opts.PipelineCache, "pipeline cache file, read at startup and written at exit")
	flags.StringVar(&logLevel, "log-level", logLevel, "trace, debug, info, warn, error or critical")
	flags.IntVar(&opts.Width, "width", opts.Width, "initial window width")
	flags.IntVar(&opts.Height, "height", opts.Height, "initial window height")
	flags.Uint64Var(&opts.FrameLimit, "frame-limit", opts.FrameLimit, "exit after this many frames, 0 runs until closed")
	flags.StringVar(&opts.Texture, "texture", opts.Texture, "image to use instead of the built-in texture")
	flags.DurationVar(&opts.FenceTimeout, "fence-timeout", opts.FenceTimeout, "longest wait on a frame fence before the device counts as lost")

	err := flags.Parse(args)
	if err != nil {
		return opts, err
	}
	if flags.NArg() > 0 {
		return opts, errors.Newf("unrecognized argument: %s", flags.Arg(0))
	}

	opts.LogLevel, err = renderer.ParseLevel(logLevel)
	if err != nil {
		return opts, err
	}

	if opts.Frames < 1 {
		return opts, errors.Newf("-frames must be at least 1, got %d", opts.Frames)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return opts, errors.Newf("window size must be positive, got %dx%d", opts.Width, opts.Height)
	}

	return opts, nil
}

// Config turns the options into a renderer configuration named after the sample.
func (o Options) Config(name string) renderer.Config {
	cfg := renderer.DefaultConfig()
	cfg.AppName = name
	cfg.Validation = o.Validation
	cfg.RequireDiscreteGPU = o.Discrete
	cfg.FramesInFlight = o.Frames
	cfg.FenceTimeout = o.FenceTimeout
	cfg.Shaders = os.DirFS(o.Shaders)
	cfg.PipelineCachePath = o.PipelineCache
	return cfg
}
