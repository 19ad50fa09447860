package renderer

import (
	"sort"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// RenderObject borrows its mesh and material from the renderer's registries for the
// duration of a frame.
type RenderObject struct {
	Mesh      *Mesh
	Material  *Material
	Transform mgl32.Mat4
	Data      mgl32.Vec4
}

type MeshPushConstants struct {
	Data         mgl32.Vec4
	RenderMatrix mgl32.Mat4
}

var meshPushConstantsSize = int(unsafe.Sizeof(MeshPushConstants{}))

// DrawObjects records one draw per object, in the order given. Pipelines and vertex
// buffers are only rebound when they differ from the previous object's, so callers
// wanting fewer binds should sort first (see SortObjects).
func DrawObjects(rec Recorder, view *RenderView, objects []RenderObject) error {
	viewProjection := view.ViewProjection()

	var lastMaterial *Material
	var lastMesh *Mesh
	for i := range objects {
		object := &objects[i]
		if object.Mesh == nil || object.Material == nil {
			return errors.Newf("render object %d is missing its mesh or material", i)
		}

		material := object.Material
		if material != lastMaterial {
			rec.BindMaterial(material)

			textureSet := 0
			if material.UsesCameraSet {
				textureSet = 1
				if view.DescriptorSet != nil {
					rec.BindDescriptorSet(material.Layout, 0, view.DescriptorSet)
				}
			}
			if material.TextureSet != nil {
				rec.BindDescriptorSet(material.Layout, textureSet, material.TextureSet)
			}

			lastMaterial = material
		}

		constants, err := encode(MeshPushConstants{
			Data:         object.Data,
			RenderMatrix: viewProjection.Mul4(object.Transform),
		})
		if err != nil {
			return errors.Wrapf(err, "render object %d push constants", i)
		}
		rec.PushConstants(material.Layout, core1_0.StageVertex, constants)

		if object.Mesh != lastMesh {
			rec.BindMesh(object.Mesh)
			lastMesh = object.Mesh
		}

		rec.Draw(len(object.Mesh.Vertices))
	}

	return nil
}

// SortObjects groups objects by material and then by mesh, keeping first-appearance
// order between groups and input order within them.
func SortObjects(objects []RenderObject) {
	materialRank := make(map[*Material]int)
	meshRank := make(map[*Mesh]int)
	for _, object := range objects {
		if _, seen := materialRank[object.Material]; !seen {
			materialRank[object.Material] = len(materialRank)
		}
		if _, seen := meshRank[object.Mesh]; !seen {
			meshRank[object.Mesh] = len(meshRank)
		}
	}

	sort.SliceStable(objects, func(i, j int) bool {
		mi, mj := materialRank[objects[i].Material], materialRank[objects[j].Material]
		if mi != mj {
			return mi < mj
		}
		return meshRank[objects[i].Mesh] < meshRank[objects[j].Mesh]
	})
}
