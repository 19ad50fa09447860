package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func testAssetFS(t *testing.T) fstest.MapFS {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))

	objData, err := os.ReadFile("testdata/quad.obj")
	require.NoError(t, err)
	mtlData, err := os.ReadFile("testdata/quad.mtl")
	require.NoError(t, err)

	return fstest.MapFS{
		"quad.obj":      {Data: objData},
		"quad.mtl":      {Data: mtlData},
		"red.png":       {Data: buf.Bytes()},
		"mesh.vert.spv": {Data: []byte{0x03, 0x02, 0x23, 0x07}},
		"broken.spv":    {Data: []byte{0x03}},
	}
}

func TestLoadAssets(t *testing.T) {
	assets, err := LoadAssets(context.Background(), testAssetFS(t), []AssetRequest{
		{Kind: AssetShader, Name: "mesh.vert", Path: "mesh.vert.spv"},
		{Kind: AssetMesh, Name: "quad", Path: "quad.obj", MaterialPath: "quad.mtl"},
		{Kind: AssetMesh, Name: "bare quad", Path: "quad.obj"},
		{Kind: AssetImage, Name: "red", Path: "red.png"},
	})
	require.NoError(t, err)

	require.Len(t, assets.Meshes, 2)
	require.Len(t, assets.Meshes["quad"].Vertices, 6)
	require.Len(t, assets.Meshes["bare quad"].Vertices, 6)

	require.Len(t, assets.Images, 1)
	require.Equal(t, image.Rect(0, 0, 4, 2), assets.Images["red"].Bounds())
	r, _, _, _ := assets.Images["red"].At(1, 1).RGBA()
	require.Equal(t, uint32(0xffff), r)
}

func TestLoadAssetsPerRequestFS(t *testing.T) {
	empty := fstest.MapFS{}
	assets, err := LoadAssets(context.Background(), empty, []AssetRequest{
		{Kind: AssetImage, Name: "red", Path: "red.png", FS: testAssetFS(t)},
	})
	require.NoError(t, err)
	require.Contains(t, assets.Images, "red")
}

func TestLoadAssetsFailures(t *testing.T) {
	testCases := []struct {
		name    string
		request AssetRequest
		errMsg  string
	}{
		{name: "broken shader", request: AssetRequest{Kind: AssetShader, Path: "broken.spv"}, errMsg: "load shader broken.spv"},
		{name: "missing mesh", request: AssetRequest{Kind: AssetMesh, Path: "cube.obj"}, errMsg: "load mesh cube.obj"},
		{name: "not an image", request: AssetRequest{Kind: AssetImage, Path: "quad.mtl"}, errMsg: "load image quad.mtl"},
		{name: "unknown kind", request: AssetRequest{Kind: AssetKind(7), Path: "quad.obj"}, errMsg: "unknown asset kind"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadAssets(context.Background(), testAssetFS(t), []AssetRequest{
				{Kind: AssetMesh, Name: "quad", Path: "quad.obj", MaterialPath: "quad.mtl"},
				tc.request,
			})
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestLoadAssetsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadAssets(ctx, testAssetFS(t), []AssetRequest{{Kind: AssetImage, Name: "red", Path: "red.png"}})
	require.ErrorIs(t, err, context.Canceled)
}
