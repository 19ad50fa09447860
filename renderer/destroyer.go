package renderer

import (
	"context"

	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

type ResourceKind int

const (
	KindRenderPass ResourceKind = iota
	KindFramebuffer
	KindImage
	KindImageView
	KindBuffer
	KindAllocatedBuffer
	KindAllocatedImage
	KindPipeline
	KindPipelineLayout
	KindPipelineCache
	KindShaderModule
	KindDescriptorPool
	KindDescriptorSetLayout
	KindSampler
	KindSemaphore
	KindFence
	KindCommandPool
)

var resourceKindNames = map[ResourceKind]string{
	KindRenderPass:          "render pass",
	KindFramebuffer:         "framebuffer",
	KindImage:               "image",
	KindImageView:           "image view",
	KindBuffer:              "buffer",
	KindAllocatedBuffer:     "allocated buffer",
	KindAllocatedImage:      "allocated image",
	KindPipeline:            "pipeline",
	KindPipelineLayout:      "pipeline layout",
	KindPipelineCache:       "pipeline cache",
	KindShaderModule:        "shader module",
	KindDescriptorPool:      "descriptor pool",
	KindDescriptorSetLayout: "descriptor set layout",
	KindSampler:             "sampler",
	KindSemaphore:           "semaphore",
	KindFence:               "fence",
	KindCommandPool:         "command pool",
}

func (k ResourceKind) String() string {
	name, ok := resourceKindNames[k]
	if !ok {
		return "unknown"
	}
	return name
}

// Resource is one destroyable handle. Exactly the field matching Kind is set.
type Resource struct {
	Kind ResourceKind
	seq  int

	renderPass          core1_0.RenderPass
	framebuffer         core1_0.Framebuffer
	image               core1_0.Image
	imageView           core1_0.ImageView
	buffer              core1_0.Buffer
	allocatedBuffer     AllocatedBuffer
	allocatedImage      AllocatedImage
	pipeline            core1_0.Pipeline
	pipelineLayout      core1_0.PipelineLayout
	pipelineCache       core1_0.PipelineCache
	shaderModule        core1_0.ShaderModule
	descriptorPool      core1_0.DescriptorPool
	descriptorSetLayout core1_0.DescriptorSetLayout
	sampler             core1_0.Sampler
	semaphore           core1_0.Semaphore
	fence               core1_0.Fence
	commandPool         core1_0.CommandPool
}

func RenderPassResource(h core1_0.RenderPass) Resource {
	return Resource{Kind: KindRenderPass, renderPass: h}
}
func FramebufferResource(h core1_0.Framebuffer) Resource {
	return Resource{Kind: KindFramebuffer, framebuffer: h}
}
func ImageResource(h core1_0.Image) Resource { return Resource{Kind: KindImage, image: h} }
func ImageViewResource(h core1_0.ImageView) Resource {
	return Resource{Kind: KindImageView, imageView: h}
}
func BufferResource(h core1_0.Buffer) Resource { return Resource{Kind: KindBuffer, buffer: h} }
func AllocatedBufferResource(b AllocatedBuffer) Resource {
	return Resource{Kind: KindAllocatedBuffer, allocatedBuffer: b}
}
func AllocatedImageResource(i AllocatedImage) Resource {
	return Resource{Kind: KindAllocatedImage, allocatedImage: i}
}
func PipelineResource(h core1_0.Pipeline) Resource {
	return Resource{Kind: KindPipeline, pipeline: h}
}
func PipelineLayoutResource(h core1_0.PipelineLayout) Resource {
	return Resource{Kind: KindPipelineLayout, pipelineLayout: h}
}
func PipelineCacheResource(h core1_0.PipelineCache) Resource {
	return Resource{Kind: KindPipelineCache, pipelineCache: h}
}
func ShaderModuleResource(h core1_0.ShaderModule) Resource {
	return Resource{Kind: KindShaderModule, shaderModule: h}
}
func DescriptorPoolResource(h core1_0.DescriptorPool) Resource {
	return Resource{Kind: KindDescriptorPool, descriptorPool: h}
}
func DescriptorSetLayoutResource(h core1_0.DescriptorSetLayout) Resource {
	return Resource{Kind: KindDescriptorSetLayout, descriptorSetLayout: h}
}
func SamplerResource(h core1_0.Sampler) Resource { return Resource{Kind: KindSampler, sampler: h} }
func SemaphoreResource(h core1_0.Semaphore) Resource {
	return Resource{Kind: KindSemaphore, semaphore: h}
}
func FenceResource(h core1_0.Fence) Resource { return Resource{Kind: KindFence, fence: h} }
func CommandPoolResource(h core1_0.CommandPool) Resource {
	return Resource{Kind: KindCommandPool, commandPool: h}
}

func destroyResource(r Resource) {
	switch r.Kind {
	case KindRenderPass:
		r.renderPass.Destroy(nil)
	case KindFramebuffer:
		r.framebuffer.Destroy(nil)
	case KindImage:
		r.image.Destroy(nil)
	case KindImageView:
		r.imageView.Destroy(nil)
	case KindBuffer:
		r.buffer.Destroy(nil)
	case KindAllocatedBuffer:
		r.allocatedBuffer.destroy()
	case KindAllocatedImage:
		r.allocatedImage.destroy()
	case KindPipeline:
		r.pipeline.Destroy(nil)
	case KindPipelineLayout:
		r.pipelineLayout.Destroy(nil)
	case KindPipelineCache:
		r.pipelineCache.Destroy(nil)
	case KindShaderModule:
		r.shaderModule.Destroy(nil)
	case KindDescriptorPool:
		r.descriptorPool.Destroy(nil)
	case KindDescriptorSetLayout:
		r.descriptorSetLayout.Destroy(nil)
	case KindSampler:
		r.sampler.Destroy(nil)
	case KindSemaphore:
		r.semaphore.Destroy(nil)
	case KindFence:
		r.fence.Destroy(nil)
	case KindCommandPool:
		r.commandPool.Destroy(nil)
	default:
		panic("destroyer: unknown resource kind")
	}
}

// Destroyer records handles in creation order and destroys them in reverse. It must
// be drained before the device that owns the handles is destroyed.
type Destroyer struct {
	logger    *slog.Logger
	resources []Resource
	next      int
	destroy   func(Resource)
}

func NewDestroyer(logger *slog.Logger) *Destroyer {
	return &Destroyer{logger: logger, destroy: destroyResource}
}

func (d *Destroyer) Add(resources ...Resource) {
	for _, r := range resources {
		r.seq = d.next
		d.next++
		d.resources = append(d.resources, r)
	}
}

func (d *Destroyer) AddRenderPass(h core1_0.RenderPass) { d.Add(RenderPassResource(h)) }

func (d *Destroyer) AddFramebuffers(hs ...core1_0.Framebuffer) {
	for _, h := range hs {
		d.Add(FramebufferResource(h))
	}
}

func (d *Destroyer) AddImageViews(hs ...core1_0.ImageView) {
	for _, h := range hs {
		d.Add(ImageViewResource(h))
	}
}

func (d *Destroyer) AddAllocatedBuffers(bs ...AllocatedBuffer) {
	for _, b := range bs {
		d.Add(AllocatedBufferResource(b))
	}
}

func (d *Destroyer) AddAllocatedImage(i AllocatedImage) { d.Add(AllocatedImageResource(i)) }

func (d *Destroyer) AddPipeline(p core1_0.Pipeline, layout core1_0.PipelineLayout) {
	d.Add(PipelineLayoutResource(layout), PipelineResource(p))
}

func (d *Destroyer) AddSemaphores(hs ...core1_0.Semaphore) {
	for _, h := range hs {
		d.Add(SemaphoreResource(h))
	}
}

func (d *Destroyer) AddFences(hs ...core1_0.Fence) {
	for _, h := range hs {
		d.Add(FenceResource(h))
	}
}

func (d *Destroyer) Len() int { return len(d.resources) }

// DestroyAll destroys every recorded handle, newest first, and forgets them.
func (d *Destroyer) DestroyAll() {
	for i := len(d.resources) - 1; i >= 0; i-- {
		r := d.resources[i]
		if d.logger != nil {
			d.logger.Log(context.Background(), LevelTrace, "destroying resource", "kind", r.Kind, "seq", r.seq)
		}
		d.destroy(r)
	}
	d.resources = nil
}
