package renderer

import (
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// PipelineConfig is everything that varies between the pipelines the renderer builds.
// Viewport and scissor are dynamic, so pipelines outlive swapchain rebuilds.
type PipelineConfig struct {
	Shaders        fs.FS
	VertexShader   string
	FragmentShader string

	Vertex             VertexInputDescription
	PushConstantRanges []core1_0.PushConstantRange
	SetLayouts         []core1_0.DescriptorSetLayout

	PolygonMode core1_0.PolygonMode
	CullMode    core1_0.CullModeFlags
	DepthTest   bool
}

type Pipeline struct {
	Handle core1_0.Pipeline
	Layout core1_0.PipelineLayout
}

func BuildPipeline(device core1_0.Device, renderPass core1_0.RenderPass, cache core1_0.PipelineCache, cfg PipelineConfig) (Pipeline, error) {
	vertShader, err := createShaderModule(device, cfg.Shaders, cfg.VertexShader)
	if err != nil {
		return Pipeline{}, err
	}
	defer vertShader.Destroy(nil)

	fragShader, err := createShaderModule(device, cfg.Shaders, cfg.FragmentShader)
	if err != nil {
		return Pipeline{}, err
	}
	defer fragShader.Destroy(nil)

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions:   cfg.Vertex.Bindings,
		VertexAttributeDescriptions: cfg.Vertex.Attributes,
	}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	// Placeholders: the real values are set per frame.
	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{{Width: 1, Height: 1, MaxDepth: 1}},
		Scissors:  []core1_0.Rect2D{{Extent: core1_0.Extent2D{Width: 1, Height: 1}}},
	}

	dynamicState := &core1_0.PipelineDynamicStateCreateInfo{
		DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: cfg.PolygonMode,
		CullMode:    cfg.CullMode,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	multisample := &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: core1_0.Samples1,
		MinSampleShading:     1.0,
	}

	depthStencil := &core1_0.PipelineDepthStencilStateCreateInfo{
		DepthTestEnable:  cfg.DepthTest,
		DepthWriteEnable: cfg.DepthTest,
		DepthCompareOp:   core1_0.CompareOpLess,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	layout, _, err := device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts:         cfg.SetLayouts,
		PushConstantRanges: cfg.PushConstantRanges,
	})
	if err != nil {
		return Pipeline{}, errors.Wrap(err, "create pipeline layout")
	}

	pipelines, _, err := device.CreateGraphicsPipelines(cache, nil, []core1_0.GraphicsPipelineCreateInfo{
		{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewport,
			RasterizationState: rasterization,
			MultisampleState:   multisample,
			DepthStencilState:  depthStencil,
			ColorBlendState:    colorBlend,
			DynamicState:       dynamicState,
			Layout:             layout,
			RenderPass:         renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	})
	if err != nil {
		layout.Destroy(nil)
		return Pipeline{}, errors.Wrapf(err, "create pipeline %s/%s", cfg.VertexShader, cfg.FragmentShader)
	}

	return Pipeline{Handle: pipelines[0], Layout: layout}, nil
}
