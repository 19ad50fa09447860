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
//go:generate glslc shaders/tinted.vert -o shaders/tinted.vert.spv
//go:generate glslc shaders/tinted.frag -o shaders/tinted.frag.spv

const gridSize = 12

// batchedScene draws a grid that alternates between two meshes and two materials.
// Objects are sorted once, so each frame binds each material and mesh pair once.
type batchedScene struct {
	elapsed float32
	objects []renderer.RenderObject
	base    []mgl32.Mat4
}

func (s *batchedScene) Assets() []utils.AssetRequest {
	var requests []utils.AssetRequest
	for _, name := range []string{"colored.vert", "colored.frag", "tinted.vert", "tinted.frag"} {
		requests = append(requests, utils.AssetRequest{Kind: utils.AssetShader, Name: name, Path: name + ".spv"})
	}
	return requests
}

func triangleMesh() *renderer.Mesh {
	return &renderer.Mesh{
		Vertices: []renderer.Vertex{
			{Position: mgl32.Vec3{0.4, 0.4, 0}, Color: mgl32.Vec3{1, 0.3, 0.3}},
			{Position: mgl32.Vec3{-0.4, 0.4, 0}, Color: mgl32.Vec3{0.3, 1, 0.3}},
			{Position: mgl32.Vec3{0, -0.4, 0}, Color: mgl32.Vec3{0.3, 0.3, 1}},
		},
	}
}

func quadMesh() *renderer.Mesh {
	corners := []mgl32.Vec3{{-0.4, -0.4, 0}, {0.4, -0.4, 0}, {0.4, 0.4, 0}, {-0.4, 0.4, 0}}
	color := mgl32.Vec3{0.9, 0.9, 0.9}

	mesh := &renderer.Mesh{}
	for _, i := range []int{0, 1, 2, 0, 2, 3} {
		mesh.Vertices = append(mesh.Vertices, renderer.Vertex{Position: corners[i], Color: color})
	}
	return mesh
}

func (s *batchedScene) Setup(r *renderer.Renderer, assets *utils.Assets) error {
	meshes := []*renderer.Mesh{triangleMesh(), quadMesh()}
	for i, name := range []string{"triangle", "quad"} {
		err := r.UploadMesh(name, meshes[i])
		if err != nil {
			return err
		}
	}

	colored, err := r.CreateMaterial("colored", renderer.MaterialConfig{
		VertexShader:   "colored.vert.spv",
		FragmentShader: "colored.frag.spv",
		PolygonMode:    core1_0.PolygonModeFill,
	})
	if err != nil {
		return err
	}

	tinted, err := r.CreateMaterial("tinted", renderer.MaterialConfig{
		VertexShader:   "tinted.vert.spv",
		FragmentShader: "tinted.frag.spv",
		PolygonMode:    core1_0.PolygonModeFill,
	})
	if err != nil {
		return err
	}
	materials := []*renderer.Material{colored, tinted}

	for x := 0; x < gridSize; x++ {
		for y := 0; y < gridSize; y++ {
			position := mgl32.Vec3{float32(x) - gridSize/2, float32(y) - gridSize/2, 0}
			s.objects = append(s.objects, renderer.RenderObject{
				Mesh:      meshes[(x+y)%2],
				Material:  materials[x%2],
				Transform: mgl32.Translate3D(position.X(), position.Y(), position.Z()),
				Data:      mgl32.Vec4{float32(x) / gridSize, float32(y) / gridSize, 1, 1},
			})
		}
	}

	renderer.SortObjects(s.objects)
	for _, object := range s.objects {
		s.base = append(s.base, object.Transform)
	}
	return nil
}

func (s *batchedScene) Update(dt time.Duration) {
	s.elapsed += float32(dt.Seconds())
	for i := range s.objects {
		spin := mgl32.HomogRotate3DZ(s.elapsed * (1 + float32(i%5)*0.25))
		s.objects[i].Transform = s.base[i].Mul4(spin)
	}
}

func (s *batchedScene) Camera(extent core1_0.Extent2D) (mgl32.Mat4, mgl32.Mat4) {
	return utils.DefaultCamera(mgl32.Vec3{0, 0, gridSize}, extent)
}

func (s *batchedScene) Objects() []renderer.RenderObject {
	return s.objects
}

func main() {
	utils.Main("Batched Draw", func(opts utils.Options) utils.Scene {
		return &batchedScene{}
	})
}
