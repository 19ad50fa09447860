package renderer

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v2/core1_0"
)

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec3
	UV       mgl32.Vec2
}

var vertexStride = int(unsafe.Sizeof(Vertex{}))

type VertexInputDescription struct {
	Bindings   []core1_0.VertexInputBindingDescription
	Attributes []core1_0.VertexInputAttributeDescription
}

func VertexDescription() VertexInputDescription {
	v := Vertex{}
	return VertexInputDescription{
		Bindings: []core1_0.VertexInputBindingDescription{
			{
				Binding:   0,
				Stride:    vertexStride,
				InputRate: core1_0.VertexInputRateVertex,
			},
		},
		Attributes: []core1_0.VertexInputAttributeDescription{
			{
				Binding:  0,
				Location: 0,
				Format:   core1_0.FormatR32G32B32SignedFloat,
				Offset:   int(unsafe.Offsetof(v.Position)),
			},
			{
				Binding:  0,
				Location: 1,
				Format:   core1_0.FormatR32G32B32SignedFloat,
				Offset:   int(unsafe.Offsetof(v.Normal)),
			},
			{
				Binding:  0,
				Location: 2,
				Format:   core1_0.FormatR32G32B32SignedFloat,
				Offset:   int(unsafe.Offsetof(v.Color)),
			},
			{
				Binding:  0,
				Location: 3,
				Format:   core1_0.FormatR32G32SignedFloat,
				Offset:   int(unsafe.Offsetof(v.UV)),
			},
		},
	}
}

// Mesh is a non-indexed triangle list. VertexBuffer is valid once the mesh has been
// uploaded.
type Mesh struct {
	Name         string
	Vertices     []Vertex
	VertexBuffer AllocatedBuffer
}

func (m *Mesh) Size() int { return len(m.Vertices) * vertexStride }

// UploadMesh copies the mesh into a host-visible vertex buffer and registers it under
// name. The buffer is destroyed with the renderer.
func (r *Renderer) UploadMesh(name string, mesh *Mesh) error {
	if len(mesh.Vertices) == 0 {
		return errors.Newf("mesh %s has no vertices", name)
	}
	if _, exists := r.meshes[name]; exists {
		return errors.Newf("mesh %s already uploaded", name)
	}

	buffer, err := r.Context.Allocator.CreateBuffer(mesh.Size(), core1_0.BufferUsageVertexBuffer, true)
	if err != nil {
		return errors.Wrapf(err, "mesh %s", name)
	}
	r.Destroyer.AddAllocatedBuffers(buffer)

	err = buffer.Write(0, mesh.Vertices)
	if err != nil {
		return errors.Wrapf(err, "mesh %s", name)
	}

	mesh.Name = name
	mesh.VertexBuffer = buffer
	r.meshes[name] = mesh

	r.logger.Debug("uploaded mesh", "name", name, "vertices", len(mesh.Vertices), "bytes", buffer.Size)
	return nil
}
