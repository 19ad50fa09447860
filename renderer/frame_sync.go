package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// FrameSync is one frame-in-flight slot: everything needed to record, submit and
// present one frame without touching any other slot.
type FrameSync struct {
	Slot int

	CommandPool   core1_0.CommandPool
	CommandBuffer core1_0.CommandBuffer

	ImageAvailable core1_0.Semaphore
	RenderComplete core1_0.Semaphore
	// InFlight is created signaled so the first wait on a fresh slot returns at once.
	InFlight core1_0.Fence
}

func NewFrameSync(device core1_0.Device, graphicsFamily int, slot int) (*FrameSync, error) {
	sync := &FrameSync{Slot: slot}
	var err error

	sync.CommandPool, _, err = device.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: graphicsFamily,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d command pool", slot)
	}

	buffers, _, err := device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        sync.CommandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		sync.Destroy()
		return nil, errors.Wrapf(err, "frame %d command buffer", slot)
	}
	sync.CommandBuffer = buffers[0]

	sync.ImageAvailable, _, err = device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		sync.Destroy()
		return nil, errors.Wrapf(err, "frame %d image available semaphore", slot)
	}

	sync.RenderComplete, _, err = device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		sync.Destroy()
		return nil, errors.Wrapf(err, "frame %d render complete semaphore", slot)
	}

	sync.InFlight, _, err = device.CreateFence(nil, core1_0.FenceCreateInfo{
		Flags: core1_0.FenceCreateSignaled,
	})
	if err != nil {
		sync.Destroy()
		return nil, errors.Wrapf(err, "frame %d in flight fence", slot)
	}

	return sync, nil
}

// Register hands every handle to d. The command buffer is freed along with its pool.
func (s *FrameSync) Register(d *Destroyer) {
	d.Add(CommandPoolResource(s.CommandPool))
	d.AddSemaphores(s.ImageAvailable, s.RenderComplete)
	d.AddFences(s.InFlight)
}

// Destroy releases whatever has been created so far.
func (s *FrameSync) Destroy() {
	if s.InFlight != nil {
		s.InFlight.Destroy(nil)
	}
	if s.RenderComplete != nil {
		s.RenderComplete.Destroy(nil)
	}
	if s.ImageAvailable != nil {
		s.ImageAvailable.Destroy(nil)
	}
	if s.CommandPool != nil {
		s.CommandPool.Destroy(nil)
	}
}

func (s *FrameSync) Sync() *FrameSync { return s }
