package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// Context holds every stage of the device chain, in the order they are built.
// Nothing in it refers to another stage; teardown runs through an explicit stack
// instead.
type Context struct {
	Instance       Instance
	DebugMessenger DebugMessenger
	Surface        Surface
	PhysicalDevice PhysicalDevice
	Device         Device
	Allocator      Allocator
	Swapchain      Swapchain

	logger   *slog.Logger
	teardown []func()
}

func (c *Context) push(stage string, destroy func()) {
	c.teardown = append(c.teardown, func() {
		c.logger.Debug("destroying context stage", "stage", stage)
		destroy()
	})
}

func NewContext(loader core.Loader, provider SurfaceProvider, cfg Config, logger *slog.Logger) (*Context, error) {
	ctx := &Context{logger: logger}
	err := ctx.build(loader, provider, cfg)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}

	return ctx, nil
}

func (c *Context) build(loader core.Loader, provider SurfaceProvider, cfg Config) error {
	var err error

	c.Instance, err = BuildInstance(loader, InstanceBuilder{
		AppName:                cfg.AppName,
		Validation:             cfg.Validation,
		Layers:                 cfg.ValidationLayers,
		Extensions:             cfg.InstanceExtensions,
		ProviderExtensions:     provider.RequiredInstanceExtensions(),
		BreakOnValidationError: cfg.BreakOnValidationError,
	}, c.logger)
	if err != nil {
		return err
	}
	c.push("instance", c.Instance.Destroy)

	if cfg.Validation {
		c.DebugMessenger, err = BuildDebugMessenger(c.Instance, c.logger)
		if err != nil {
			return err
		}
		c.push("debug messenger", c.DebugMessenger.Destroy)
	}

	c.Surface, err = BuildSurface(c.Instance, provider)
	if err != nil {
		return err
	}
	c.push("surface", c.Surface.Destroy)

	c.PhysicalDevice, err = SelectPhysicalDevice(c.Instance, c.Surface, PhysicalDeviceBuilder{
		Extensions:      cfg.DeviceExtensions,
		Features:        cfg.Features,
		RequireDiscrete: cfg.RequireDiscreteGPU,
	})
	if err != nil {
		return err
	}
	c.logger.Info("selected physical device", "name", c.PhysicalDevice.Info.Name,
		"type", c.PhysicalDevice.Info.Type)

	c.Device, err = BuildDevice(c.PhysicalDevice, DeviceBuilder{
		Extensions: cfg.DeviceExtensions,
		Features:   cfg.Features,
	})
	if err != nil {
		return err
	}
	c.push("device", c.Device.Destroy)

	c.Allocator, err = BuildAllocator(c.Instance, c.PhysicalDevice, c.Device, c.logger)
	if err != nil {
		return err
	}
	c.push("allocator", c.Allocator.Destroy)

	width, height := provider.FramebufferSize()
	c.Swapchain, err = BuildSwapchain(c.Surface, c.PhysicalDevice, c.Device, SwapchainBuilder{
		FramebufferWidth:  width,
		FramebufferHeight: height,
	})
	if err != nil {
		return err
	}
	// Looked up at teardown time since rebuilds replace the swapchain.
	c.push("swapchain", func() { c.Swapchain.Destroy() })

	c.logger.Info("created swapchain", "format", c.Swapchain.Info.Format,
		"extent", c.Swapchain.Info.Extent, "images", c.Swapchain.Info.ImageCount,
		"present mode", c.Swapchain.Info.PresentMode)
	return nil
}

// RebuildSwapchain replaces the swapchain for a new framebuffer size. The device must
// not be executing work that references the old swapchain images.
func (c *Context) RebuildSwapchain(width, height int) error {
	_, err := c.Device.Handle.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "wait idle before swapchain rebuild")
	}

	old := c.Swapchain
	for _, view := range old.ImageViews {
		view.Destroy(nil)
	}
	old.ImageViews = nil

	next, err := BuildSwapchain(c.Surface, c.PhysicalDevice, c.Device, SwapchainBuilder{
		FramebufferWidth:  width,
		FramebufferHeight: height,
		Old:               old.Handle,
	})
	if old.Handle != nil {
		old.Handle.Destroy(nil)
	}
	if err != nil {
		c.Swapchain = Swapchain{}
		return err
	}
	c.Swapchain = next

	if next.Info.Format != old.Info.Format {
		return initError("swapchain", core1_0.VKSuccess,
			errors.Newf("surface format changed from %v to %v", old.Info.Format, next.Info.Format))
	}

	c.logger.Debug("rebuilt swapchain", "extent", next.Info.Extent, "images", next.Info.ImageCount)
	return nil
}

func (c *Context) WaitIdle() error {
	_, err := c.Device.Handle.WaitIdle()
	return err
}

// Destroy tears down every stage built so far, newest first.
func (c *Context) Destroy() {
	for i := len(c.teardown) - 1; i >= 0; i-- {
		c.teardown[i]()
	}
	c.teardown = nil
}
