package renderer

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_surface"
)

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

type SwapchainSupportDetails struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

func (d SwapchainSupportDetails) Adequate() bool {
	return len(d.Formats) > 0 && len(d.PresentModes) > 0
}

// AdapterInfo is everything selection needs to know about one adapter, gathered up
// front so the selection rules can run without touching the driver.
type AdapterInfo struct {
	Name       string
	Type       core1_0.PhysicalDeviceType
	Families   QueueFamilyIndices
	Extensions map[string]struct{}
	Swapchain  SwapchainSupportDetails
	Features   core1_0.PhysicalDeviceFeatures
}

type PhysicalDeviceBuilder struct {
	Extensions      []string
	Features        core1_0.PhysicalDeviceFeatures
	RequireDiscrete bool
}

type PhysicalDevice struct {
	Handle     core1_0.PhysicalDevice
	Builder    PhysicalDeviceBuilder
	Properties *core1_0.PhysicalDeviceProperties
	Memory     *core1_0.PhysicalDeviceMemoryProperties
	Info       AdapterInfo
}

// rejectReason returns why an adapter cannot be used, or the empty string.
func (b PhysicalDeviceBuilder) rejectReason(info AdapterInfo) string {
	if !info.Families.IsComplete() {
		return "no graphics and present queue families"
	}

	for _, ext := range b.Extensions {
		if _, hasExt := info.Extensions[ext]; !hasExt {
			return fmt.Sprintf("missing device extension %s", ext)
		}
	}

	if !info.Swapchain.Adequate() {
		return "inadequate swapchain support"
	}

	if b.RequireDiscrete && info.Type != core1_0.PhysicalDeviceTypeDiscreteGPU {
		return "not a discrete GPU"
	}

	if missing := missingFeatures(b.Features, info.Features); len(missing) > 0 {
		return fmt.Sprintf("missing features %v", missing)
	}

	return ""
}

// missingFeatures lists the names of requested boolean features the adapter lacks.
func missingFeatures(requested, supported core1_0.PhysicalDeviceFeatures) []string {
	var missing []string

	req := reflect.ValueOf(requested)
	sup := reflect.ValueOf(supported)
	for i := 0; i < req.NumField(); i++ {
		field := req.Field(i)
		if field.Kind() != reflect.Bool || !field.Bool() {
			continue
		}

		if !sup.Field(i).Bool() {
			missing = append(missing, req.Type().Field(i).Name)
		}
	}

	return missing
}

// selectAdapter returns the index of the first adapter passing every check. Adapters
// are never ranked against each other.
func (b PhysicalDeviceBuilder) selectAdapter(adapters []AdapterInfo) (int, []string) {
	var rejections []string
	for i, info := range adapters {
		reason := b.rejectReason(info)
		if reason == "" {
			return i, rejections
		}
		rejections = append(rejections, fmt.Sprintf("%s: %s", info.Name, reason))
	}

	return -1, rejections
}

func findQueueFamilies(surface khr_surface.Surface, device core1_0.PhysicalDevice) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}
	queueFamilies := device.QueueFamilyProperties()

	for queueFamilyIdx, queueFamily := range queueFamilies {
		if (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0 {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		supported, _, err := surface.PhysicalDeviceSurfaceSupport(device, queueFamilyIdx)
		if err != nil {
			return indices, err
		}

		if supported {
			indices.PresentFamily = new(int)
			*indices.PresentFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

func querySwapchainSupport(surface khr_surface.Surface, device core1_0.PhysicalDevice) (SwapchainSupportDetails, error) {
	var details SwapchainSupportDetails
	var err error

	details.Capabilities, _, err = surface.PhysicalDeviceSurfaceCapabilities(device)
	if err != nil {
		return details, err
	}

	details.Formats, _, err = surface.PhysicalDeviceSurfaceFormats(device)
	if err != nil {
		return details, err
	}

	details.PresentModes, _, err = surface.PhysicalDeviceSurfacePresentModes(device)
	return details, err
}

func inspectAdapter(surface khr_surface.Surface, device core1_0.PhysicalDevice) (AdapterInfo, *core1_0.PhysicalDeviceProperties, error) {
	properties, err := device.Properties()
	if err != nil {
		return AdapterInfo{}, nil, err
	}

	info := AdapterInfo{
		Name:     properties.DeviceName,
		Type:     properties.Type,
		Features: *device.Features(),
	}

	info.Families, err = findQueueFamilies(surface, device)
	if err != nil {
		return info, nil, err
	}

	extensions, _, err := device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return info, nil, err
	}
	info.Extensions = nameSet(extensions)

	info.Swapchain, err = querySwapchainSupport(surface, device)
	if err != nil {
		return info, nil, err
	}

	return info, properties, nil
}

func SelectPhysicalDevice(instance Instance, surface Surface, b PhysicalDeviceBuilder) (PhysicalDevice, error) {
	devices, res, err := instance.Handle.EnumeratePhysicalDevices()
	if err != nil {
		return PhysicalDevice{}, initError("physical device", res, err)
	}

	adapters := make([]AdapterInfo, 0, len(devices))
	properties := make([]*core1_0.PhysicalDeviceProperties, 0, len(devices))
	for _, device := range devices {
		info, props, err := inspectAdapter(surface.Handle, device)
		if err != nil {
			return PhysicalDevice{}, initError("physical device", core1_0.VKSuccess, err)
		}
		adapters = append(adapters, info)
		properties = append(properties, props)
	}

	selected, rejections := b.selectAdapter(adapters)
	if selected < 0 {
		return PhysicalDevice{}, initError("physical device", core1_0.VKSuccess,
			errors.Wrapf(ErrNoSuitableDevice, "%d adapters rejected %v", len(adapters), rejections))
	}

	return PhysicalDevice{
		Handle:     devices[selected],
		Builder:    b,
		Properties: properties[selected],
		Memory:     devices[selected].MemoryProperties(),
		Info:       adapters[selected],
	}, nil
}

// findSupportedFormat returns the first candidate whose optimal tiling supports features.
func findSupportedFormat(physical core1_0.PhysicalDevice, candidates []core1_0.Format, features core1_0.FormatFeatureFlags) (core1_0.Format, error) {
	for _, format := range candidates {
		props := physical.FormatProperties(format)
		if props.OptimalTilingFeatures&features == features {
			return format, nil
		}
	}

	return 0, errors.Newf("no supported format among %v", candidates)
}

func findDepthFormat(physical core1_0.PhysicalDevice) (core1_0.Format, error) {
	return findSupportedFormat(physical,
		[]core1_0.Format{core1_0.FormatD32SignedFloat, core1_0.FormatD32SignedFloatS8UnsignedInt, core1_0.FormatD24UnsignedNormalizedS8UnsignedInt},
		core1_0.FormatFeatureDepthStencilAttachment)
}
