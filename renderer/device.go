package renderer

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_portability_subset"
)

type DeviceBuilder struct {
	Extensions []string
	Features   core1_0.PhysicalDeviceFeatures
}

// QueueFamilies are the resolved family indices the device's queues came from.
type QueueFamilies struct {
	Graphics int
	Present  int
}

type Device struct {
	Handle        core1_0.Device
	GraphicsQueue core1_0.Queue
	PresentQueue  core1_0.Queue
	Families      QueueFamilies
	Builder       DeviceBuilder
}

// uniqueFamilies returns graphics then present, collapsed when they are the same family.
func uniqueFamilies(families QueueFamilies) []int {
	unique := []int{families.Graphics}
	if families.Present != families.Graphics {
		unique = append(unique, families.Present)
	}
	return unique
}

func BuildDevice(physical PhysicalDevice, b DeviceBuilder) (Device, error) {
	families := QueueFamilies{
		Graphics: *physical.Info.Families.GraphicsFamily,
		Present:  *physical.Info.Families.PresentFamily,
	}

	var queueCreateInfos []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range uniqueFamilies(families) {
		queueCreateInfos = append(queueCreateInfos, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	extensionNames := append([]string{}, b.Extensions...)
	// Required wherever the driver advertises it, which is the case on portability
	// implementations such as MoltenVK.
	if _, supported := physical.Info.Extensions[khr_portability_subset.ExtensionName]; supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	features := b.Features
	handle, res, err := physical.Handle.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueCreateInfos,
		EnabledFeatures:       &features,
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return Device{}, initError("logical device", res, err)
	}

	return Device{
		Handle:        handle,
		GraphicsQueue: handle.GetQueue(families.Graphics, 0),
		PresentQueue:  handle.GetQueue(families.Present, 0),
		Families:      families,
		Builder:       b,
	}, nil
}

func (d Device) Destroy() {
	d.Handle.Destroy(nil)
}
