package utils

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emberforge/vkframe/renderer"
	"github.com/emberforge/vkframe/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// statsInterval is how many frames pass between frame time reports.
const statsInterval = 240

// statsSchedule reports every statsInterval frames. Loop iterations that draw nothing
// leave the frame number where it is and are not reported twice.
type statsSchedule struct {
	reported uint64
}

func (s *statsSchedule) due(frames uint64) bool {
	if frames <= s.reported || frames%statsInterval != 0 {
		return false
	}
	s.reported = frames
	return true
}

// Scene is what a sample contributes: its assets, its GPU objects and what to draw
// each frame.
type Scene interface {
	Assets() []AssetRequest
	Setup(r *renderer.Renderer, assets *Assets) error
	Update(dt time.Duration)
	Camera(extent core1_0.Extent2D) (view, projection mgl32.Mat4)
	Objects() []renderer.RenderObject
}

// depthRemap takes GL's [-1,1] clip depth to Vulkan's [0,1].
var depthRemap = mgl32.Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0.5, 0, 0, 0, 0.5, 1}

// Perspective is mgl32.Perspective with depth mapped to [0,1].
func Perspective(fovy, aspect, near, far float32) mgl32.Mat4 {
	return depthRemap.Mul4(mgl32.Perspective(fovy, aspect, near, far))
}

// DefaultCamera looks at the origin from eye with a 70 degree vertical field of view.
func DefaultCamera(eye mgl32.Vec3, extent core1_0.Extent2D) (view, projection mgl32.Mat4) {
	aspect := float32(1)
	if extent.Height > 0 {
		aspect = float32(extent.Width) / float32(extent.Height)
	}

	view = mgl32.LookAtV(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	projection = Perspective(mgl32.DegToRad(70), aspect, 0.1, 200)
	return view, projection
}

// Main parses the command line, runs the scene and exits the process. It must be
// called from main.
func Main(name string, newScene func(opts Options) Scene) {
	runtime.LockOSThread()

	opts, err := ParseFlags(name, os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}

	logger := renderer.NewLogger(os.Stderr, opts.LogLevel)
	if err != nil {
		renderer.LogCritical(logger, "bad command line", err)
		os.Exit(2)
	}

	err = Run(name, opts, newScene(opts), logger)
	if err != nil {
		renderer.LogCritical(logger, "sample failed", err)
		os.Exit(1)
	}
}

// Run opens a window, builds a renderer and draws scene until the window closes or
// the frame limit is reached.
func Run(name string, opts Options, scene Scene, logger *slog.Logger) (err error) {
	requests := scene.Assets()
	shaders := os.DirFS(opts.Shaders)
	for i := range requests {
		if requests[i].Kind == AssetShader && requests[i].FS == nil {
			requests[i].FS = shaders
		}
	}

	loadStart := hrtime.Now()
	assets, err := LoadAssets(context.Background(), os.DirFS(opts.Assets), requests)
	if err != nil {
		return err
	}
	logger.Debug("assets loaded", "count", len(requests), "elapsed", hrtime.Since(loadStart))

	win, err := window.New(name, opts.Width, opts.Height)
	if err != nil {
		return err
	}
	defer win.Destroy()

	r, err := renderer.New(win.Loader(), win, opts.Config(name), logger)
	if err != nil {
		return err
	}
	defer func() {
		destroyErr := r.Destroy()
		if err == nil {
			err = destroyErr
		}
	}()

	err = scene.Setup(r, assets)
	if err != nil {
		return errors.Wrap(err, "scene setup")
	}

	var schedule statsSchedule
	last := hrtime.Now()
	for !win.PollEvents() {
		if opts.FrameLimit > 0 && r.FrameNumber() >= opts.FrameLimit {
			break
		}

		now := hrtime.Now()
		scene.Update(now - last)
		last = now

		if win.Minimized() {
			win.Idle(16)
			continue
		}

		err = r.Frame(func(rec renderer.Recorder, frame *renderer.CameraFrameData) error {
			frame.View.SetCamera(scene.Camera(r.Extent()))
			err := frame.View.Upload()
			if err != nil {
				return errors.Wrap(err, "upload camera")
			}

			return renderer.DrawObjects(rec, frame.View, scene.Objects())
		})
		if err != nil {
			return err
		}

		if schedule.due(r.FrameNumber()) {
			stats := r.Stats()
			logger.Info("frame stats", "frames", stats.Frames, "last", stats.Last, "average", stats.Average)
			win.SetTitle(fmt.Sprintf("%s - %.1f fps", name, float64(time.Second)/float64(stats.Average)))
		}
	}

	logger.Info("exiting", "frames", r.FrameNumber())
	return nil
}
