package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// FrameFunc records one frame's draws. The frame's camera view may be updated and
// uploaded freely: the GPU is done with this slot.
type FrameFunc func(rec Recorder, frame *CameraFrameData) error

// Renderer owns the device context and everything created from it. All methods must
// be called from the goroutine that created it.
type Renderer struct {
	Context   *Context
	Destroyer *Destroyer
	Frames    []*CameraFrameData

	cfg      Config
	logger   *slog.Logger
	provider SurfaceProvider

	// swapchainDestroyer holds what a swapchain rebuild replaces.
	swapchainDestroyer *Destroyer
	targets            *RenderTargets
	orchestrator       *Orchestrator
	uploads            uploadCommands

	descriptorPool   core1_0.DescriptorPool
	cameraSetLayout  core1_0.DescriptorSetLayout
	textureSetLayout core1_0.DescriptorSetLayout
	pipelineCache    core1_0.PipelineCache

	meshes    map[string]*Mesh
	materials map[string]*Material
	textures  map[string]*Texture

	resized bool
}

func New(loader core.Loader, provider SurfaceProvider, cfg Config, logger *slog.Logger) (*Renderer, error) {
	err := cfg.validate()
	if err != nil {
		return nil, initError("config", core1_0.VKSuccess, err)
	}

	ctx, err := NewContext(loader, provider, cfg, logger)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		Context:            ctx,
		Destroyer:          NewDestroyer(logger),
		cfg:                cfg,
		logger:             logger,
		provider:           provider,
		swapchainDestroyer: NewDestroyer(logger),
		targets:            &RenderTargets{},
		meshes:             make(map[string]*Mesh),
		materials:          make(map[string]*Material),
		textures:           make(map[string]*Texture),
	}

	err = r.init()
	if err != nil {
		r.teardown()
		return nil, initError("renderer", core1_0.VKSuccess, err)
	}

	provider.OnResize(func(width, height int) {
		r.logger.Debug("framebuffer resized", "width", width, "height", height)
		r.resized = true
	})

	return r, nil
}

func (r *Renderer) init() error {
	device := r.Context.Device.Handle
	var err error

	r.uploads, err = newUploadCommands(r.Context.Device)
	if err != nil {
		return err
	}

	r.targets.RenderPass, err = CreateRenderPass(device, r.Context.Swapchain.Info)
	if err != nil {
		return err
	}
	r.Destroyer.AddRenderPass(r.targets.RenderPass)

	err = r.createSwapchainTargets()
	if err != nil {
		return err
	}

	r.pipelineCache, err = LoadPipelineCache(device, r.Context.PhysicalDevice, r.cfg.PipelineCachePath, r.logger)
	if err != nil {
		return err
	}
	r.Destroyer.Add(PipelineCacheResource(r.pipelineCache))

	r.cameraSetLayout, err = CreateCameraSetLayout(device)
	if err != nil {
		return err
	}
	r.Destroyer.Add(DescriptorSetLayoutResource(r.cameraSetLayout))

	r.textureSetLayout, err = CreateTextureSetLayout(device)
	if err != nil {
		return err
	}
	r.Destroyer.Add(DescriptorSetLayoutResource(r.textureSetLayout))

	maxTextures := r.cfg.MaxTextures
	if maxTextures < 1 {
		maxTextures = 1
	}
	r.descriptorPool, err = CreateDescriptorPool(device, r.cfg.FramesInFlight, maxTextures)
	if err != nil {
		return err
	}
	r.Destroyer.Add(DescriptorPoolResource(r.descriptorPool))

	frames := make([]FrameData, 0, r.cfg.FramesInFlight)
	for slot := 0; slot < r.cfg.FramesInFlight; slot++ {
		frame, err := r.createFrame(slot)
		if err != nil {
			return err
		}
		r.Frames = append(r.Frames, frame)
		frames = append(frames, frame)
	}

	clear := r.cfg.ClearColor
	r.orchestrator, err = NewOrchestrator(&vulkanFrameDevice{ctx: r.Context, targets: r.targets}, frames, OrchestratorConfig{
		FenceTimeout: r.cfg.FenceTimeout,
		ClearValues: []core1_0.ClearValue{
			core1_0.ClearValueFloat{clear[0], clear[1], clear[2], clear[3]},
			core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0},
		},
	}, r.logger)
	return err
}

func (r *Renderer) createFrame(slot int) (*CameraFrameData, error) {
	device := r.Context.Device.Handle

	sync, err := NewFrameSync(device, r.Context.Device.Families.Graphics, slot)
	if err != nil {
		return nil, err
	}
	sync.Register(r.Destroyer)

	uniform, err := r.Context.Allocator.CreateBuffer(cameraDataSize, core1_0.BufferUsageUniformBuffer, true)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d camera buffer", slot)
	}
	r.Destroyer.AddAllocatedBuffers(uniform)

	set, err := AllocateDescriptorSet(device, r.descriptorPool, r.cameraSetLayout)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d", slot)
	}

	err = WriteUniformDescriptor(device, set, uniform)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d camera descriptor", slot)
	}

	return &CameraFrameData{
		BaseFrameData: BaseFrameData{FrameSync: sync},
		View:          &RenderView{Uniform: uniform, DescriptorSet: set},
	}, nil
}

// createSwapchainTargets builds the depth image and framebuffers for the current
// swapchain.
func (r *Renderer) createSwapchainTargets() error {
	device := r.Context.Device.Handle
	info := r.Context.Swapchain.Info

	depth, depthView, err := CreateDepthImage(device, r.Context.Allocator, info)
	if err != nil {
		return err
	}
	r.swapchainDestroyer.AddAllocatedImage(depth)
	r.swapchainDestroyer.AddImageViews(depthView)

	framebuffers, err := CreateFramebuffers(device, r.targets.RenderPass, r.Context.Swapchain.ImageViews, depthView, info.Extent)
	if err != nil {
		return err
	}
	r.swapchainDestroyer.AddFramebuffers(framebuffers...)

	r.targets.Depth = depth
	r.targets.DepthView = depthView
	r.targets.Framebuffers = framebuffers
	r.targets.Extent = info.Extent
	return nil
}

// rebuildSwapchain reports false when the framebuffer has no area, which is the case
// while the window is minimized.
func (r *Renderer) rebuildSwapchain() (bool, error) {
	width, height := r.provider.FramebufferSize()
	if width == 0 || height == 0 {
		return false, nil
	}

	err := r.Context.WaitIdle()
	if err != nil {
		return false, errors.Wrap(err, "wait idle before swapchain rebuild")
	}
	r.swapchainDestroyer.DestroyAll()

	err = r.Context.RebuildSwapchain(width, height)
	if err != nil {
		return false, err
	}

	err = r.createSwapchainTargets()
	if err != nil {
		return false, initError("swapchain targets", core1_0.VKSuccess, err)
	}

	r.resized = false
	r.logger.Info("swapchain rebuilt", "extent", r.targets.Extent)
	return true, nil
}

// Frame draws one frame with record. Resizes and stale swapchains are handled here:
// the swapchain is rebuilt and the caller simply draws again next time.
func (r *Renderer) Frame(record FrameFunc) error {
	if r.resized {
		rebuilt, err := r.rebuildSwapchain()
		if err != nil {
			return err
		}
		if !rebuilt {
			return nil
		}
	}

	err := r.orchestrator.DrawFrame(func(rec Recorder, slot int) error {
		return record(rec, r.Frames[slot])
	})

	var stale *SwapchainStaleError
	if errors.As(err, &stale) {
		r.logger.Debug("swapchain stale", "phase", stale.Phase, "result", stale.Result)
		r.resized = true
		_, err = r.rebuildSwapchain()
	}
	return err
}

func (r *Renderer) Extent() core1_0.Extent2D { return r.targets.Extent }

func (r *Renderer) Stats() FrameStats { return r.orchestrator.Stats() }

func (r *Renderer) FrameNumber() uint64 { return r.orchestrator.FrameNumber() }

func (r *Renderer) Mesh(name string) *Mesh { return r.meshes[name] }

func (r *Renderer) Material(name string) *Material { return r.materials[name] }

func (r *Renderer) Texture(name string) *Texture { return r.textures[name] }

func (r *Renderer) WaitIdle() error { return r.Context.WaitIdle() }

func (r *Renderer) teardown() {
	r.swapchainDestroyer.DestroyAll()
	r.Destroyer.DestroyAll()
	if r.uploads.pool != nil {
		r.uploads.destroy()
	}
	r.Context.Destroy()
}

// Destroy waits for the GPU, saves the pipeline cache when configured and releases
// everything in reverse creation order.
func (r *Renderer) Destroy() error {
	err := r.WaitIdle()
	if err != nil {
		r.logger.Error("wait idle before destroy", "err", err)
	}

	if r.cfg.PipelineCachePath != "" && r.pipelineCache != nil {
		saveErr := SavePipelineCache(r.pipelineCache, r.cfg.PipelineCachePath)
		if saveErr != nil {
			r.logger.Warn("pipeline cache not saved", "err", saveErr)
		} else {
			r.logger.Info("pipeline cache saved", "path", r.cfg.PipelineCachePath)
		}
	}

	r.teardown()
	return err
}
