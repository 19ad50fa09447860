package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
)

// RenderTargets is what a frame renders into. Everything but the render pass is
// recreated with the swapchain.
type RenderTargets struct {
	RenderPass   core1_0.RenderPass
	Framebuffers []core1_0.Framebuffer
	Depth        AllocatedImage
	DepthView    core1_0.ImageView
	Extent       core1_0.Extent2D
}

func CreateRenderPass(device core1_0.Device, info SwapchainInfo) (core1_0.RenderPass, error) {
	renderPass, _, err := device.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         info.Format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
			{
				Format:         info.DepthFormat,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpDontCare,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    core1_0.ImageLayoutDepthStencilAttachmentOptimal,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
				DepthStencilAttachment: &core1_0.AttachmentReference{
					Attachment: 1,
					Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				DstAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,
			},
		},
	})
	return renderPass, errors.Wrap(err, "create render pass")
}

func CreateDepthImage(device core1_0.Device, allocator Allocator, info SwapchainInfo) (AllocatedImage, core1_0.ImageView, error) {
	image, err := allocator.CreateImage(info.DepthFormat, info.Extent, core1_0.ImageUsageDepthStencilAttachment)
	if err != nil {
		return AllocatedImage{}, nil, errors.Wrap(err, "create depth image")
	}

	view, err := createImageView(device, image.Image, info.DepthFormat, core1_0.ImageAspectDepth)
	if err != nil {
		image.destroy()
		return AllocatedImage{}, nil, errors.Wrap(err, "create depth image view")
	}

	return image, view, nil
}

// CreateFramebuffers makes one framebuffer per swapchain image view, all sharing the
// depth attachment.
func CreateFramebuffers(device core1_0.Device, renderPass core1_0.RenderPass, views []core1_0.ImageView, depthView core1_0.ImageView, extent core1_0.Extent2D) ([]core1_0.Framebuffer, error) {
	var framebuffers []core1_0.Framebuffer
	for _, imageView := range views {
		framebuffer, _, err := device.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass: renderPass,
			Layers:     1,
			Attachments: []core1_0.ImageView{
				imageView,
				depthView,
			},
			Width:  extent.Width,
			Height: extent.Height,
		})
		if err != nil {
			for _, created := range framebuffers {
				created.Destroy(nil)
			}
			return nil, errors.Wrap(err, "create framebuffer")
		}

		framebuffers = append(framebuffers, framebuffer)
	}

	return framebuffers, nil
}
