package main

import (
	"embed"
	"image"
	"image/color"
	"io/fs"
	"time"

	"github.com/emberforge/vkframe/renderer"
	"github.com/emberforge/vkframe/samples/utils"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v2/core1_0"
)

//go:generate glslc shaders/textured.vert -o shaders/textured.vert.spv
//go:generate glslc shaders/textured.frag -o shaders/textured.frag.spv

//go:embed assets
var fileSystem embed.FS

type modelScene struct {
	texturePath string

	angle  float32
	object renderer.RenderObject
}

func (s *modelScene) Assets() []utils.AssetRequest {
	models, err := fs.Sub(fileSystem, "assets")
	if err != nil {
		panic(err)
	}

	requests := []utils.AssetRequest{
		{Kind: utils.AssetShader, Name: "textured.vert", Path: "textured.vert.spv"},
		{Kind: utils.AssetShader, Name: "textured.frag", Path: "textured.frag.spv"},
		{Kind: utils.AssetMesh, Name: "crate", Path: "crate.obj", MaterialPath: "crate.mtl", FS: models},
	}
	if s.texturePath != "" {
		requests = append(requests, utils.AssetRequest{Kind: utils.AssetImage, Name: "crate", Path: s.texturePath})
	}
	return requests
}

// checkerboard is the texture used when none is given on the command line.
func checkerboard(size, cell int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 230, G: 200, B: 150, A: 255}
	dark := color.RGBA{R: 110, G: 70, B: 40, A: 255}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}

func (s *modelScene) Setup(r *renderer.Renderer, assets *utils.Assets) error {
	mesh := assets.Meshes["crate"]
	err := r.UploadMesh("crate", mesh)
	if err != nil {
		return err
	}

	img, ok := assets.Images["crate"]
	if !ok {
		img = checkerboard(256, 32)
	}
	_, err = r.UploadTexture("crate", img)
	if err != nil {
		return err
	}

	material, err := r.CreateMaterial("textured", renderer.MaterialConfig{
		VertexShader:   "textured.vert.spv",
		FragmentShader: "textured.frag.spv",
		PolygonMode:    core1_0.PolygonModeFill,
		CullMode:       core1_0.CullModeBack,
		UseCamera:      true,
		Texture:        "crate",
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

func (s *modelScene) Update(dt time.Duration) {
	s.angle += float32(dt.Seconds()) * mgl32.DegToRad(30)
	s.object.Transform = mgl32.HomogRotate3D(s.angle, mgl32.Vec3{0.3, 1, 0}.Normalize())
}

func (s *modelScene) Camera(extent core1_0.Extent2D) (mgl32.Mat4, mgl32.Mat4) {
	return utils.DefaultCamera(mgl32.Vec3{3, 2.5, 4}, extent)
}

func (s *modelScene) Objects() []renderer.RenderObject {
	return []renderer.RenderObject{s.object}
}

func main() {
	utils.Main("Textured Model", func(opts utils.Options) utils.Scene {
		return &modelScene{texturePath: opts.Texture}
	})
}
