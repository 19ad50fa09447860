package renderer

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
	"golang.org/x/exp/slog"
)

// FrameDevice is the GPU side of one frame, split at the points the orchestrator has
// to make decisions. Every call acts on the slot's own sync bundle.
type FrameDevice interface {
	WaitForFence(sync *FrameSync, timeout time.Duration) (common.VkResult, error)
	ResetFence(sync *FrameSync) error
	AcquireNextImage(sync *FrameSync) (int, common.VkResult, error)
	// BeginRecording resets and begins the slot's command buffer and opens the render
	// pass on the framebuffer for imageIndex.
	BeginRecording(sync *FrameSync, imageIndex int, clearValues []core1_0.ClearValue) (Recorder, error)
	EndRecording(sync *FrameSync, rec Recorder) error
	Submit(sync *FrameSync) error
	Present(sync *FrameSync, imageIndex int) (common.VkResult, error)
}

// RecordFunc fills in the frame's commands. slot identifies the frame data in use.
type RecordFunc func(rec Recorder, slot int) error

type OrchestratorConfig struct {
	FenceTimeout time.Duration
	ClearValues  []core1_0.ClearValue
}

type FrameStats struct {
	Frames  uint64
	Last    time.Duration
	Average time.Duration
	total   time.Duration
}

func (s *FrameStats) record(d time.Duration) {
	s.Frames++
	s.Last = d
	s.total += d
	s.Average = s.total / time.Duration(s.Frames)
}

// Orchestrator drives frames through a fixed ring of slots. Slot n%K is reused only
// once its fence shows the GPU is done with it, so at most K frames are in flight.
type Orchestrator struct {
	device FrameDevice
	frames []FrameData
	cfg    OrchestratorConfig
	logger *slog.Logger

	frameNumber uint64
	stats       FrameStats
}

func NewOrchestrator(device FrameDevice, frames []FrameData, cfg OrchestratorConfig, logger *slog.Logger) (*Orchestrator, error) {
	if len(frames) == 0 {
		return nil, errors.New("orchestrator needs at least one frame slot")
	}
	if cfg.FenceTimeout <= 0 {
		cfg.FenceTimeout = DefaultFenceTimeout
	}

	return &Orchestrator{
		device: device,
		frames: frames,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (o *Orchestrator) FrameNumber() uint64 { return o.frameNumber }

// Slot is the frame data index the next frame will use.
func (o *Orchestrator) Slot() int { return int(o.frameNumber % uint64(len(o.frames))) }

func (o *Orchestrator) Frames() []FrameData { return o.frames }

func (o *Orchestrator) Stats() FrameStats { return o.stats }

// DrawFrame runs one wait, acquire, record, submit, present cycle. A stale swapchain
// is reported as *SwapchainStaleError: on acquire the slot is left untouched and the
// frame is retried after a rebuild, on present the frame already counts.
func (o *Orchestrator) DrawFrame(record RecordFunc) error {
	start := hrtime.Now()
	slot := o.Slot()
	sync := o.frames[slot].Sync()

	res, err := o.device.WaitForFence(sync, o.cfg.FenceTimeout)
	if err == nil && res == core1_0.VKTimeout {
		err = errors.Newf("fence for slot %d not signaled after %s", slot, o.cfg.FenceTimeout)
	}
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "frame %d", o.frameNumber), ErrDeviceLost)
	}

	imageIndex, res, err := o.device.AcquireNextImage(sync)
	if res == khr_swapchain.VKErrorOutOfDate {
		return &SwapchainStaleError{Phase: "acquire", Result: res}
	}
	if err != nil {
		return errors.Wrapf(markResult(res, err), "frame %d: acquire image", o.frameNumber)
	}
	suboptimal := res == khr_swapchain.VKSuboptimal

	rec, err := o.device.BeginRecording(sync, imageIndex, o.cfg.ClearValues)
	if err != nil {
		return errors.Wrapf(err, "frame %d: begin recording", o.frameNumber)
	}

	err = record(rec, slot)
	if err != nil {
		return errors.Wrapf(err, "frame %d: record", o.frameNumber)
	}

	err = o.device.EndRecording(sync, rec)
	if err != nil {
		return errors.Wrapf(err, "frame %d: end recording", o.frameNumber)
	}

	// The fence stays signaled until the submit that will signal it again, so a frame
	// that fails before submitting can be retried without waiting out the timeout.
	err = o.device.ResetFence(sync)
	if err != nil {
		return errors.Wrapf(err, "frame %d: reset fence", o.frameNumber)
	}

	err = o.device.Submit(sync)
	if err != nil {
		return errors.Wrapf(err, "frame %d: submit", o.frameNumber)
	}

	res, err = o.device.Present(sync, imageIndex)
	o.frameNumber++
	o.stats.record(hrtime.Since(start))

	if res == khr_swapchain.VKErrorOutOfDate || res == khr_swapchain.VKSuboptimal {
		return &SwapchainStaleError{Phase: "present", Result: res}
	}
	if err != nil {
		return errors.Wrapf(markResult(res, err), "frame %d: present", o.frameNumber-1)
	}
	if suboptimal {
		return &SwapchainStaleError{Phase: "present", Result: khr_swapchain.VKSuboptimal}
	}

	return nil
}

// vulkanFrameDevice runs frames against the context's device and swapchain and the
// renderer's current framebuffers.
type vulkanFrameDevice struct {
	ctx     *Context
	targets *RenderTargets
}

func (d *vulkanFrameDevice) WaitForFence(sync *FrameSync, timeout time.Duration) (common.VkResult, error) {
	return d.ctx.Device.Handle.WaitForFences(true, timeout, []core1_0.Fence{sync.InFlight})
}

func (d *vulkanFrameDevice) ResetFence(sync *FrameSync) error {
	_, err := d.ctx.Device.Handle.ResetFences([]core1_0.Fence{sync.InFlight})
	return err
}

func (d *vulkanFrameDevice) AcquireNextImage(sync *FrameSync) (int, common.VkResult, error) {
	return d.ctx.Swapchain.Handle.AcquireNextImage(common.NoTimeout, sync.ImageAvailable, nil)
}

func (d *vulkanFrameDevice) BeginRecording(sync *FrameSync, imageIndex int, clearValues []core1_0.ClearValue) (Recorder, error) {
	buffer := sync.CommandBuffer

	_, err := buffer.Reset(0)
	if err != nil {
		return nil, err
	}

	_, err = buffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return nil, err
	}

	err = buffer.CmdBeginRenderPass(core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  d.targets.RenderPass,
			Framebuffer: d.targets.Framebuffers[imageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: d.targets.Extent,
			},
			ClearValues: clearValues,
		})
	if err != nil {
		return nil, err
	}

	rec := NewRecorder(buffer)
	rec.SetViewport(d.targets.Extent)
	return rec, nil
}

func (d *vulkanFrameDevice) EndRecording(sync *FrameSync, rec Recorder) error {
	buffer := rec.CommandBuffer()
	buffer.CmdEndRenderPass()

	_, err := buffer.End()
	return err
}

func (d *vulkanFrameDevice) Submit(sync *FrameSync) error {
	res, err := d.ctx.Device.GraphicsQueue.Submit(sync.InFlight, []core1_0.SubmitInfo{
		{
			WaitSemaphores:   []core1_0.Semaphore{sync.ImageAvailable},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{sync.CommandBuffer},
			SignalSemaphores: []core1_0.Semaphore{sync.RenderComplete},
		},
	})
	return markResult(res, err)
}

func (d *vulkanFrameDevice) Present(sync *FrameSync, imageIndex int) (common.VkResult, error) {
	return d.ctx.Swapchain.Extension.QueuePresent(d.ctx.Device.PresentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{sync.RenderComplete},
		Swapchains:     []khr_swapchain.Swapchain{d.ctx.Swapchain.Handle},
		ImageIndices:   []int{imageIndex},
	})
}
