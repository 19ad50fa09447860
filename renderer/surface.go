package renderer

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_surface"
)

// SurfaceProvider is the windowing layer as the renderer sees it.
type SurfaceProvider interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance core1_0.Instance) (khr_surface.Surface, error)
	// FramebufferSize is in pixels, which may differ from window coordinates.
	FramebufferSize() (width, height int)
	OnResize(callback func(width, height int))
}

type Surface struct {
	Handle khr_surface.Surface
}

func BuildSurface(instance Instance, provider SurfaceProvider) (Surface, error) {
	handle, err := provider.CreateSurface(instance.Handle)
	if err != nil {
		return Surface{}, initError("surface", core1_0.VKSuccess, err)
	}

	return Surface{Handle: handle}, nil
}

func (s Surface) Destroy() {
	s.Handle.Destroy(nil)
}
