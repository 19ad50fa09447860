package renderer

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// CameraData is the layout of the camera uniform block.
type CameraData struct {
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4
}

var cameraDataSize = int(unsafe.Sizeof(CameraData{}))

// RenderView is one camera: its matrices and the uniform buffer and descriptor set
// shaders read them through.
type RenderView struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4

	Uniform       AllocatedBuffer
	DescriptorSet core1_0.DescriptorSet
}

// SetCamera stores view and projection. The projection's Y axis is flipped here,
// since Vulkan's clip space points Y down. Depth is left alone: the projection must
// already map depth to [0,1].
func (v *RenderView) SetCamera(view, projection mgl32.Mat4) {
	v.View = view
	v.Projection = projection
	v.Projection[5] *= -1
}

func (v *RenderView) ViewProjection() mgl32.Mat4 {
	return v.Projection.Mul4(v.View)
}

// Upload writes the current matrices into the uniform buffer.
func (v *RenderView) Upload() error {
	return v.Uniform.Write(0, CameraData{
		View:           v.View,
		Projection:     v.Projection,
		ViewProjection: v.ViewProjection(),
	})
}
