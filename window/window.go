// Package window provides the SDL2 window the renderer presents into.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v2"
)

// Window owns the SDL video subsystem. Create at most one, on the main thread.
type Window struct {
	handle *sdl.Window
	loader core.Loader

	onResize  []func(width, height int)
	minimized bool
}

func New(title string, width, height int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl")
	}

	handle, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	loader, err := core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		handle.Destroy()
		sdl.Quit()
		return nil, errors.Wrap(err, "create vulkan loader")
	}

	return &Window{handle: handle, loader: loader}, nil
}

func (w *Window) Loader() core.Loader { return w.loader }

func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.VulkanGetInstanceExtensions()
}

func (w *Window) CreateSurface(instance core1_0.Instance) (khr_surface.Surface, error) {
	surfaceLoader := khr_surface.CreateExtensionFromInstance(instance)
	return vkng_sdl2.CreateSurface(instance, surfaceLoader, w.handle)
}

func (w *Window) FramebufferSize() (int, int) {
	width, height := w.handle.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) OnResize(callback func(width, height int)) {
	w.onResize = append(w.onResize, callback)
}

func (w *Window) Minimized() bool {
	return w.minimized || (w.handle.GetFlags()&sdl.WINDOW_MINIMIZED) != 0
}

// PollEvents drains the event queue and reports whether the user asked to quit.
func (w *Window) PollEvents() (quit bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_MINIMIZED:
				w.minimized = true
			case sdl.WINDOWEVENT_RESTORED:
				w.minimized = false
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
				width, height := w.FramebufferSize()
				w.minimized = width == 0 || height == 0
				for _, callback := range w.onResize {
					callback(width, height)
				}
			}
		}
	}

	return quit
}

func (w *Window) SetTitle(title string) {
	w.handle.SetTitle(title)
}

func (w *Window) Destroy() {
	w.handle.Destroy()
	sdl.Quit()
}

// Idle sleeps for ms milliseconds. The loop calls it while minimized, when there is
// nothing to present to.
func (w *Window) Idle(ms uint32) {
	sdl.Delay(ms)
}
