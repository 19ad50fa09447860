package renderer

import (
	"image"
	"image/draw"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const textureFormat = core1_0.FormatR8G8B8A8SRGB

type Texture struct {
	Name    string
	Image   AllocatedImage
	View    core1_0.ImageView
	Sampler core1_0.Sampler
}

// rgbaPixels returns the image as tightly packed 8-bit RGBA rows.
func rgbaPixels(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == rgba.Rect.Dx()*4 && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

func transitionImageLayout(buffer core1_0.CommandBuffer, image core1_0.Image, oldLayout, newLayout core1_0.ImageLayout) error {
	var sourceStage, destStage core1_0.PipelineStageFlags
	var sourceAccess, destAccess core1_0.AccessFlags

	if oldLayout == core1_0.ImageLayoutUndefined && newLayout == core1_0.ImageLayoutTransferDstOptimal {
		sourceAccess = 0
		destAccess = core1_0.AccessTransferWrite
		sourceStage = core1_0.PipelineStageTopOfPipe
		destStage = core1_0.PipelineStageTransfer
	} else if oldLayout == core1_0.ImageLayoutTransferDstOptimal && newLayout == core1_0.ImageLayoutShaderReadOnlyOptimal {
		sourceAccess = core1_0.AccessTransferWrite
		destAccess = core1_0.AccessShaderRead
		sourceStage = core1_0.PipelineStageTransfer
		destStage = core1_0.PipelineStageFragmentShader
	} else {
		return errors.Newf("unexpected layout transition: %s -> %s", oldLayout, newLayout)
	}

	return buffer.CmdPipelineBarrier(sourceStage, destStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
		{
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			Image:               image,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			SrcAccessMask: sourceAccess,
			DstAccessMask: destAccess,
		},
	})
}

func copyBufferToImage(cmdBuffer core1_0.CommandBuffer, buffer core1_0.Buffer, image core1_0.Image, extent core1_0.Extent2D) error {
	return cmdBuffer.CmdCopyBufferToImage(buffer, image, core1_0.ImageLayoutTransferDstOptimal, []core1_0.BufferImageCopy{
		{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,

			ImageSubresource: core1_0.ImageSubresourceLayers{
				AspectMask:     core1_0.ImageAspectColor,
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: core1_0.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		},
	})
}

// UploadTexture stages img through a host-visible buffer into a device-local sampled
// image and registers it under name.
func (r *Renderer) UploadTexture(name string, img image.Image) (*Texture, error) {
	if _, exists := r.textures[name]; exists {
		return nil, errors.Newf("texture %s already uploaded", name)
	}

	pixels := rgbaPixels(img)
	extent := core1_0.Extent2D{Width: pixels.Rect.Dx(), Height: pixels.Rect.Dy()}
	if extent.Width == 0 || extent.Height == 0 {
		return nil, errors.Newf("texture %s is empty", name)
	}

	allocator := r.Context.Allocator
	staging, err := allocator.CreateBuffer(len(pixels.Pix), core1_0.BufferUsageTransferSrc, true)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s staging buffer", name)
	}
	defer staging.destroy()

	err = staging.Write(0, pixels.Pix)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s staging buffer", name)
	}

	texture := &Texture{Name: name}
	texture.Image, err = allocator.CreateImage(textureFormat, extent, core1_0.ImageUsageTransferDst|core1_0.ImageUsageSampled)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s", name)
	}
	r.Destroyer.AddAllocatedImage(texture.Image)

	err = r.uploads.run(func(buffer core1_0.CommandBuffer) error {
		err := transitionImageLayout(buffer, texture.Image.Image, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
		if err != nil {
			return err
		}

		err = copyBufferToImage(buffer, staging.Buffer, texture.Image.Image, extent)
		if err != nil {
			return err
		}

		return transitionImageLayout(buffer, texture.Image.Image, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s", name)
	}

	device := r.Context.Device.Handle
	texture.View, err = createImageView(device, texture.Image.Image, textureFormat, core1_0.ImageAspectColor)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s view", name)
	}
	r.Destroyer.AddImageViews(texture.View)

	texture.Sampler, _, err = device.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,

		AnisotropyEnable: r.Context.Device.Builder.Features.SamplerAnisotropy,
		MaxAnisotropy:    r.Context.PhysicalDevice.Properties.Limits.MaxSamplerAnisotropy,

		BorderColor: core1_0.BorderColorIntOpaqueBlack,

		MipmapMode: core1_0.SamplerMipmapModeLinear,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "texture %s sampler", name)
	}
	r.Destroyer.Add(SamplerResource(texture.Sampler))

	r.textures[name] = texture
	r.logger.Debug("uploaded texture", "name", name, "width", extent.Width, "height", extent.Height)
	return texture, nil
}
