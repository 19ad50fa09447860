package renderer

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
)

const (
	DefaultFramesInFlight = 2
	DefaultFenceTimeout   = time.Second
	DefaultMaxTextures    = 16
)

var DefaultValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

type Config struct {
	AppName string

	Validation             bool
	ValidationLayers       []string
	InstanceExtensions     []string
	BreakOnValidationError bool

	DeviceExtensions   []string
	RequireDiscreteGPU bool
	Features           core1_0.PhysicalDeviceFeatures

	// FramesInFlight bounds how many frames the CPU may record ahead of the GPU.
	// With one slot, recording and execution are fully serialized.
	FramesInFlight int
	FenceTimeout   time.Duration
	ClearColor     mgl32.Vec4

	// MaxTextures sizes the descriptor pool's texture sets.
	MaxTextures int

	// Shaders resolves the SPIR-V paths named by pipeline configs.
	Shaders           fs.FS
	PipelineCachePath string
}

func DefaultConfig() Config {
	return Config{
		AppName:            "vkframe",
		ValidationLayers:   DefaultValidationLayers,
		DeviceExtensions:   []string{khr_swapchain.ExtensionName},
		RequireDiscreteGPU: true,
		Features: core1_0.PhysicalDeviceFeatures{
			SamplerAnisotropy: true,
			FillModeNonSolid:  true,
		},
		FramesInFlight: DefaultFramesInFlight,
		FenceTimeout:   DefaultFenceTimeout,
		ClearColor:     mgl32.Vec4{0, 0, 0, 1},
		MaxTextures:    DefaultMaxTextures,
	}
}

func (c Config) validate() error {
	if c.FramesInFlight < 1 {
		return errors.Newf("frames in flight must be at least 1, got %d", c.FramesInFlight)
	}
	if c.FenceTimeout <= 0 {
		return errors.Newf("fence timeout must be positive, got %s", c.FenceTimeout)
	}
	if c.MaxTextures < 0 {
		return errors.Newf("max textures cannot be negative, got %d", c.MaxTextures)
	}
	if c.Shaders == nil {
		return errors.New("no shader filesystem configured")
	}
	return nil
}
