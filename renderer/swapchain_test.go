package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_surface"
)

func TestChooseSurfaceFormatPrefersSRGB(t *testing.T) {
	preferred := khr_surface.SurfaceFormat{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}
	other := khr_surface.SurfaceFormat{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear}

	require.Equal(t, preferred, chooseSurfaceFormat([]khr_surface.SurfaceFormat{other, preferred}))
	require.Equal(t, other, chooseSurfaceFormat([]khr_surface.SurfaceFormat{other}))
}

func TestChoosePresentMode(t *testing.T) {
	require.Equal(t, khr_surface.PresentModeMailbox, choosePresentMode([]khr_surface.PresentMode{
		khr_surface.PresentModeFIFO,
		khr_surface.PresentModeMailbox,
	}))
	require.Equal(t, khr_surface.PresentModeFIFO, choosePresentMode([]khr_surface.PresentMode{
		khr_surface.PresentModeImmediate,
	}))
	require.Equal(t, khr_surface.PresentModeFIFO, choosePresentMode(nil))
}

func TestChooseExtentUsesCurrentExtent(t *testing.T) {
	caps := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: 1280, Height: 720},
		MinImageExtent: core1_0.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: core1_0.Extent2D{Width: 4096, Height: 4096},
	}

	require.Equal(t, core1_0.Extent2D{Width: 1280, Height: 720}, chooseExtent(caps, 800, 600))
}

func TestChooseExtentClampsFramebufferSize(t *testing.T) {
	caps := &khr_surface.SurfaceCapabilities{
		CurrentExtent:  core1_0.Extent2D{Width: -1, Height: -1},
		MinImageExtent: core1_0.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: core1_0.Extent2D{Width: 2048, Height: 1024},
	}

	testCases := []struct {
		name          string
		width, height int
		expected      core1_0.Extent2D
	}{
		{name: "inside", width: 800, height: 600, expected: core1_0.Extent2D{Width: 800, Height: 600}},
		{name: "too small", width: 10, height: 20, expected: core1_0.Extent2D{Width: 64, Height: 64}},
		{name: "too large", width: 5000, height: 5000, expected: core1_0.Extent2D{Width: 2048, Height: 1024}},
		{name: "mixed", width: 10, height: 5000, expected: core1_0.Extent2D{Width: 64, Height: 1024}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			extent := chooseExtent(caps, tc.width, tc.height)
			require.Equal(t, tc.expected, extent)
			require.GreaterOrEqual(t, extent.Width, caps.MinImageExtent.Width)
			require.LessOrEqual(t, extent.Width, caps.MaxImageExtent.Width)
			require.GreaterOrEqual(t, extent.Height, caps.MinImageExtent.Height)
			require.LessOrEqual(t, extent.Height, caps.MaxImageExtent.Height)
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	testCases := []struct {
		name     string
		min, max int
		expected int
	}{
		{name: "one above minimum", min: 2, max: 8, expected: 3},
		{name: "capped by maximum", min: 3, max: 3, expected: 3},
		{name: "unbounded", min: 4, max: 0, expected: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			caps := &khr_surface.SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
			count := chooseImageCount(caps)
			require.Equal(t, tc.expected, count)
			require.GreaterOrEqual(t, count, tc.min)
			if tc.max > 0 {
				require.LessOrEqual(t, count, tc.max)
			}
		})
	}
}
