package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// uploadCommands records and synchronously executes short transfer command buffers.
type uploadCommands struct {
	device core1_0.Device
	pool   core1_0.CommandPool
	queue  core1_0.Queue
}

func newUploadCommands(device Device) (uploadCommands, error) {
	pool, _, err := device.Handle.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateTransient,
		QueueFamilyIndex: device.Families.Graphics,
	})
	if err != nil {
		return uploadCommands{}, errors.Wrap(err, "create upload command pool")
	}

	return uploadCommands{device: device.Handle, pool: pool, queue: device.GraphicsQueue}, nil
}

func (c uploadCommands) begin() (core1_0.CommandBuffer, error) {
	buffers, _, err := c.device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return nil, err
	}

	buffer := buffers[0]
	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		c.device.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})
		return nil, err
	}
	return buffer, nil
}

func (c uploadCommands) end(buffer core1_0.CommandBuffer) error {
	defer c.device.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})

	_, err := buffer.End()
	if err != nil {
		return err
	}

	_, err = c.queue.Submit(nil, []core1_0.SubmitInfo{
		{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	})
	if err != nil {
		return err
	}

	_, err = c.queue.WaitIdle()
	return err
}

// run records with fn and waits for the queue to finish executing it.
func (c uploadCommands) run(fn func(buffer core1_0.CommandBuffer) error) error {
	buffer, err := c.begin()
	if err != nil {
		return errors.Wrap(err, "begin upload commands")
	}

	err = fn(buffer)
	if err != nil {
		c.device.FreeCommandBuffers([]core1_0.CommandBuffer{buffer})
		return err
	}

	return errors.Wrap(c.end(buffer), "execute upload commands")
}

func (c uploadCommands) destroy() {
	c.pool.Destroy(nil)
}
