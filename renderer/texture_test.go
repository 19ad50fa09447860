package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRGBAPixelsRepacksSubImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src.SetRGBA(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	sub := src.SubImage(image.Rect(2, 2, 6, 4))
	pixels := rgbaPixels(sub)

	require.Equal(t, image.Rect(0, 0, 4, 2), pixels.Rect)
	require.Len(t, pixels.Pix, 4*2*4)
	require.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, pixels.RGBAAt(1, 0))
}

func TestRGBAPixelsConvertsOtherModels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 200})

	pixels := rgbaPixels(gray)
	require.Equal(t, color.RGBA{R: 200, G: 200, B: 200, A: 255}, pixels.RGBAAt(1, 0))
}

func TestRGBAPixelsKeepsPackedImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	require.Same(t, src, rgbaPixels(src))
}
