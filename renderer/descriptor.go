package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// CreateDescriptorPool sizes one pool for every set the renderer allocates: one
// camera set per frame slot plus one set per texture.
func CreateDescriptorPool(device core1_0.Device, maxUniformSets, maxTextureSets int) (core1_0.DescriptorPool, error) {
	pool, _, err := device.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: maxUniformSets + maxTextureSets,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: maxUniformSets,
			},
			{
				Type:            core1_0.DescriptorTypeCombinedImageSampler,
				DescriptorCount: maxTextureSets,
			},
		},
	})
	return pool, errors.Wrap(err, "create descriptor pool")
}

func createSingleBindingLayout(device core1_0.Device, descriptorType core1_0.DescriptorType, stages core1_0.ShaderStageFlags) (core1_0.DescriptorSetLayout, error) {
	layout, _, err := device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  descriptorType,
				DescriptorCount: 1,

				StageFlags: stages,
			},
		},
	})
	return layout, err
}

// CreateCameraSetLayout describes set 0: the camera uniform, read by vertex shaders.
func CreateCameraSetLayout(device core1_0.Device) (core1_0.DescriptorSetLayout, error) {
	layout, err := createSingleBindingLayout(device, core1_0.DescriptorTypeUniformBuffer, core1_0.StageVertex)
	return layout, errors.Wrap(err, "create camera set layout")
}

// CreateTextureSetLayout describes a material's sampled texture.
func CreateTextureSetLayout(device core1_0.Device) (core1_0.DescriptorSetLayout, error) {
	layout, err := createSingleBindingLayout(device, core1_0.DescriptorTypeCombinedImageSampler, core1_0.StageFragment)
	return layout, errors.Wrap(err, "create texture set layout")
}

func AllocateDescriptorSet(device core1_0.Device, pool core1_0.DescriptorPool, layout core1_0.DescriptorSetLayout) (core1_0.DescriptorSet, error) {
	sets, _, err := device.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: pool,
		SetLayouts:     []core1_0.DescriptorSetLayout{layout},
	})
	if err != nil {
		return nil, errors.Wrap(err, "allocate descriptor set")
	}

	return sets[0], nil
}

func WriteUniformDescriptor(device core1_0.Device, set core1_0.DescriptorSet, buffer AllocatedBuffer) error {
	return device.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          set,
			DstBinding:      0,
			DstArrayElement: 0,

			DescriptorType: core1_0.DescriptorTypeUniformBuffer,

			BufferInfo: []core1_0.DescriptorBufferInfo{
				{
					Buffer: buffer.Buffer,
					Offset: 0,
					Range:  buffer.Size,
				},
			},
		},
	}, nil)
}

func WriteTextureDescriptor(device core1_0.Device, set core1_0.DescriptorSet, texture *Texture) error {
	return device.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          set,
			DstBinding:      0,
			DstArrayElement: 0,

			DescriptorType: core1_0.DescriptorTypeCombinedImageSampler,

			ImageInfo: []core1_0.DescriptorImageInfo{
				{
					ImageView:   texture.View,
					Sampler:     texture.Sampler,
					ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
				},
			},
		},
	}, nil)
}
