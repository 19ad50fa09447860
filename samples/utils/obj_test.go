package utils

import (
	"os"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestLoadOBJTriangulatesQuad(t *testing.T) {
	objFile, err := os.Open("testdata/quad.obj")
	require.NoError(t, err)
	defer objFile.Close()

	mtlFile, err := os.Open("testdata/quad.mtl")
	require.NoError(t, err)
	defer mtlFile.Close()

	mesh, err := LoadOBJ(objFile, mtlFile)
	require.NoError(t, err)
	require.Len(t, mesh.Vertices, 6)

	var positions []mgl32.Vec3
	for _, vertex := range mesh.Vertices {
		positions = append(positions, vertex.Position)
		require.Equal(t, mgl32.Vec3{0, 0, 1}, vertex.Normal)
		require.Equal(t, mgl32.Vec3{1, 1, 1}, vertex.Color)
	}
	require.Equal(t, []mgl32.Vec3{
		{-1, -1, 0}, {1, -1, 0}, {1, 1, 0},
		{-1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	}, positions)

	// V is flipped.
	require.Equal(t, mgl32.Vec2{0, 1}, mesh.Vertices[0].UV)
	require.Equal(t, mgl32.Vec2{1, 0}, mesh.Vertices[2].UV)
}

func TestLoadOBJWithoutFaces(t *testing.T) {
	_, err := LoadOBJ(strings.NewReader("o empty\nv 0 0 0\n"), strings.NewReader(""))
	require.Error(t, err)
}
