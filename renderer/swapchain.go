package renderer

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_surface"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
)

// SwapchainInfo is what render passes, pipelines and framebuffers need to know about
// the current swapchain.
type SwapchainInfo struct {
	Format      core1_0.Format
	ColorSpace  khr_surface.ColorSpace
	Extent      core1_0.Extent2D
	DepthFormat core1_0.Format
	PresentMode khr_surface.PresentMode
	ImageCount  int
}

type SwapchainBuilder struct {
	FramebufferWidth  int
	FramebufferHeight int

	// Old is handed to the driver so in-flight presentation can finish on it.
	Old khr_swapchain.Swapchain
}

type Swapchain struct {
	Extension  khr_swapchain.Extension
	Handle     khr_swapchain.Swapchain
	Images     []core1_0.Image
	ImageViews []core1_0.ImageView
	Info       SwapchainInfo
	Builder    SwapchainBuilder
}

func chooseSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

func choosePresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// chooseExtent uses the surface's current extent unless the surface leaves sizing to
// the swapchain, in which case the framebuffer size is clamped to the allowed range.
func chooseExtent(capabilities *khr_surface.SurfaceCapabilities, width, height int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	return core1_0.Extent2D{
		Width:  clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// chooseImageCount asks for one image beyond the minimum. A max of zero means unbounded.
func chooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func createImageView(device core1_0.Device, image core1_0.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags) (core1_0.ImageView, error) {
	imageView, _, err := device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		Components: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleIdentity,
			G: core1_0.ComponentSwizzleIdentity,
			B: core1_0.ComponentSwizzleIdentity,
			A: core1_0.ComponentSwizzleIdentity,
		},
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, err
}

func BuildSwapchain(surface Surface, physical PhysicalDevice, device Device, b SwapchainBuilder) (Swapchain, error) {
	support, err := querySwapchainSupport(surface.Handle, physical.Handle)
	if err != nil {
		return Swapchain{}, initError("swapchain", core1_0.VKSuccess, err)
	}

	depthFormat, err := findDepthFormat(physical.Handle)
	if err != nil {
		return Swapchain{}, initError("swapchain", core1_0.VKSuccess, err)
	}

	surfaceFormat := chooseSurfaceFormat(support.Formats)
	info := SwapchainInfo{
		Format:      surfaceFormat.Format,
		ColorSpace:  surfaceFormat.ColorSpace,
		Extent:      chooseExtent(support.Capabilities, b.FramebufferWidth, b.FramebufferHeight),
		DepthFormat: depthFormat,
		PresentMode: choosePresentMode(support.PresentModes),
		ImageCount:  chooseImageCount(support.Capabilities),
	}

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int
	if device.Families.Graphics != device.Families.Present {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, device.Families.Graphics, device.Families.Present)
	}

	extension := khr_swapchain.CreateExtensionFromDevice(device.Handle)
	handle, res, err := extension.CreateSwapchain(device.Handle, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: surface.Handle,

		MinImageCount:    info.ImageCount,
		ImageFormat:      info.Format,
		ImageColorSpace:  info.ColorSpace,
		ImageExtent:      info.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   support.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    info.PresentMode,
		Clipped:        true,
		OldSwapchain:   b.Old,
	})
	if err != nil {
		return Swapchain{}, initError("swapchain", res, err)
	}

	images, res, err := handle.SwapchainImages()
	if err != nil {
		handle.Destroy(nil)
		return Swapchain{}, initError("swapchain images", res, err)
	}

	swapchain := Swapchain{
		Extension: extension,
		Handle:    handle,
		Images:    images,
		Info:      info,
		Builder:   b,
	}

	for _, image := range images {
		view, err := createImageView(device.Handle, image, info.Format, core1_0.ImageAspectColor)
		if err != nil {
			swapchain.Destroy()
			return Swapchain{}, initError("swapchain image views", core1_0.VKSuccess, err)
		}
		swapchain.ImageViews = append(swapchain.ImageViews, view)
	}
	// The images themselves belong to the swapchain.
	swapchain.Info.ImageCount = len(images)

	return swapchain, nil
}

func (s Swapchain) Destroy() {
	for _, view := range s.ImageViews {
		view.Destroy(nil)
	}
	if s.Handle != nil {
		s.Handle.Destroy(nil)
	}
}
