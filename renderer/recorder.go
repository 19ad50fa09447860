package renderer

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Recorder is the subset of command recording the draw path uses. Frames hand one
// to the record callback while the render pass is open.
type Recorder interface {
	CommandBuffer() core1_0.CommandBuffer

	SetViewport(extent core1_0.Extent2D)
	BindMaterial(material *Material)
	BindMesh(mesh *Mesh)
	BindDescriptorSet(layout core1_0.PipelineLayout, set int, descriptorSet core1_0.DescriptorSet)
	PushConstants(layout core1_0.PipelineLayout, stages core1_0.ShaderStageFlags, data []byte)
	Draw(vertexCount int)
}

type commandRecorder struct {
	buffer core1_0.CommandBuffer
}

func NewRecorder(buffer core1_0.CommandBuffer) Recorder {
	return &commandRecorder{buffer: buffer}
}

func (r *commandRecorder) CommandBuffer() core1_0.CommandBuffer { return r.buffer }

func (r *commandRecorder) SetViewport(extent core1_0.Extent2D) {
	r.buffer.CmdSetViewport([]core1_0.Viewport{
		{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		},
	})
	r.buffer.CmdSetScissor([]core1_0.Rect2D{
		{
			Offset: core1_0.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
	})
}

func (r *commandRecorder) BindMaterial(material *Material) {
	r.buffer.CmdBindPipeline(core1_0.PipelineBindPointGraphics, material.Pipeline)
}

func (r *commandRecorder) BindMesh(mesh *Mesh) {
	r.buffer.CmdBindVertexBuffers(0, []core1_0.Buffer{mesh.VertexBuffer.Buffer}, []int{0})
}

func (r *commandRecorder) BindDescriptorSet(layout core1_0.PipelineLayout, set int, descriptorSet core1_0.DescriptorSet) {
	r.buffer.CmdBindDescriptorSets(core1_0.PipelineBindPointGraphics, layout, set,
		[]core1_0.DescriptorSet{descriptorSet}, nil)
}

func (r *commandRecorder) PushConstants(layout core1_0.PipelineLayout, stages core1_0.ShaderStageFlags, data []byte) {
	r.buffer.CmdPushConstants(layout, stages, 0, data)
}

func (r *commandRecorder) Draw(vertexCount int) {
	r.buffer.CmdDraw(vertexCount, 1, 0, 0)
}
