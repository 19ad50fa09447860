package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Material is a pipeline plus whatever descriptor sets it binds besides the camera.
type Material struct {
	Name     string
	Pipeline core1_0.Pipeline
	Layout   core1_0.PipelineLayout

	// UsesCameraSet puts the frame's camera set at set 0 and shifts the texture to set 1.
	UsesCameraSet bool
	TextureSet    core1_0.DescriptorSet
}

type MaterialConfig struct {
	VertexShader   string
	FragmentShader string
	PolygonMode    core1_0.PolygonMode
	CullMode       core1_0.CullModeFlags

	UseCamera bool
	// Texture names a texture uploaded earlier. Empty means untextured.
	Texture string
}

// CreateMaterial builds a pipeline for cfg and registers it under name. Every
// material takes MeshPushConstants at the vertex stage.
func (r *Renderer) CreateMaterial(name string, cfg MaterialConfig) (*Material, error) {
	if _, exists := r.materials[name]; exists {
		return nil, errors.Newf("material %s already exists", name)
	}

	material := &Material{Name: name, UsesCameraSet: cfg.UseCamera}

	var setLayouts []core1_0.DescriptorSetLayout
	if cfg.UseCamera {
		setLayouts = append(setLayouts, r.cameraSetLayout)
	}

	var texture *Texture
	if cfg.Texture != "" {
		var ok bool
		texture, ok = r.textures[cfg.Texture]
		if !ok {
			return nil, errors.Newf("material %s: unknown texture %s", name, cfg.Texture)
		}
		setLayouts = append(setLayouts, r.textureSetLayout)
	}

	pipeline, err := BuildPipeline(r.Context.Device.Handle, r.targets.RenderPass, r.pipelineCache, PipelineConfig{
		Shaders:        r.cfg.Shaders,
		VertexShader:   cfg.VertexShader,
		FragmentShader: cfg.FragmentShader,
		Vertex:         VertexDescription(),
		PushConstantRanges: []core1_0.PushConstantRange{
			{
				StageFlags: core1_0.StageVertex,
				Offset:     0,
				Size:       meshPushConstantsSize,
			},
		},
		SetLayouts:  setLayouts,
		PolygonMode: cfg.PolygonMode,
		CullMode:    cfg.CullMode,
		DepthTest:   true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "material %s", name)
	}
	r.Destroyer.AddPipeline(pipeline.Handle, pipeline.Layout)
	material.Pipeline = pipeline.Handle
	material.Layout = pipeline.Layout

	if texture != nil {
		device := r.Context.Device.Handle
		material.TextureSet, err = AllocateDescriptorSet(device, r.descriptorPool, r.textureSetLayout)
		if err != nil {
			return nil, errors.Wrapf(err, "material %s", name)
		}

		err = WriteTextureDescriptor(device, material.TextureSet, texture)
		if err != nil {
			return nil, errors.Wrapf(err, "material %s", name)
		}
	}

	r.materials[name] = material
	r.logger.Debug("created material", "name", name, "texture", cfg.Texture, "camera", cfg.UseCamera)
	return material, nil
}
