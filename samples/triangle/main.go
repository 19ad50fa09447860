package main

import (
	"time"

	"github.com/emberforge/vkframe/renderer"
	"github.com/emberforge/vkframe/samples/utils"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v2/core1_0"
)

//go:generate glslc shaders/colored.vert -o shaders/colored.vert.spv
//go:generate glslc shaders/colored.frag -o shaders/colored.frag.spv

type triangleScene struct {
	angle  float32
	object renderer.RenderObject
}

func (s *triangleScene) Assets() []utils.AssetRequest {
	return []utils.AssetRequest{
		{Kind: utils.AssetShader, Name: "colored.vert", Path: "colored.vert.spv"},
		{Kind: utils.AssetShader, Name: "colored.frag", Path: "colored.frag.spv"},
	}
}

func (s *triangleScene) Setup(r *renderer.Renderer, assets *utils.Assets) error {
	mesh := &renderer.Mesh{
		Vertices: []renderer.Vertex{
			{Position: mgl32.Vec3{1, 1, 0}, Color: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{-1, 1, 0}, Color: mgl32.Vec3{0, 1, 0}},
			{Position: mgl32.Vec3{0, -1, 0}, Color: mgl32.Vec3{0, 0, 1}},
		},
	}
	err := r.UploadMesh("triangle", mesh)
	if err != nil {
		return err
	}

	material, err := r.CreateMaterial("colored", renderer.MaterialConfig{
		VertexShader:   "colored.vert.spv",
		FragmentShader: "colored.frag.spv",
		PolygonMode:    core1_0.PolygonModeFill,
		// No culling, the triangle spins through both faces.
	})
	if err != nil {
		return err
	}

	s.object = renderer.RenderObject{
		Mesh:      mesh,
		Material:  material,
		Transform: mgl32.Ident4(),
	}
	return nil
}

func (s *triangleScene) Update(dt time.Duration) {
	s.angle += float32(dt.Seconds()) * mgl32.DegToRad(45)
	s.object.Transform = mgl32.HomogRotate3DY(s.angle)
}

func (s *triangleScene) Camera(extent core1_0.Extent2D) (mgl32.Mat4, mgl32.Mat4) {
	return utils.DefaultCamera(mgl32.Vec3{0, 0, 3}, extent)
}

func (s *triangleScene) Objects() []renderer.RenderObject {
	return []renderer.RenderObject{s.object}
}

func main() {
	utils.Main("Triangle", func(opts utils.Options) utils.Scene {
		return &triangleScene{}
	})
}
