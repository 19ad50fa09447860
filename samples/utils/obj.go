package utils

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/emberforge/vkframe/renderer"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

// LoadOBJ decodes a Wavefront model into an unindexed triangle list. Polygons are
// fanned from their first vertex. Texture V is flipped to match image row order.
func LoadOBJ(objFile, mtlFile io.Reader) (*renderer.Mesh, error) {
	decoder, err := obj.DecodeReader(objFile, mtlFile)
	if err != nil {
		return nil, errors.Wrap(err, "decode obj")
	}

	mesh := &renderer.Mesh{}
	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			if len(face.Vertices) < 3 {
				return nil, errors.Newf("object %s has a face with %d vertices", decodedObj.Name, len(face.Vertices))
			}

			for i := 2; i < len(face.Vertices); i++ {
				mesh.Vertices = append(mesh.Vertices,
					objVertex(decoder, face, 0),
					objVertex(decoder, face, i-1),
					objVertex(decoder, face, i),
				)
			}
		}
	}

	if len(mesh.Vertices) == 0 {
		return nil, errors.New("obj contains no faces")
	}

	return mesh, nil
}

func objVertex(decoder *obj.Decoder, face obj.Face, faceIndex int) renderer.Vertex {
	vertInd := face.Vertices[faceIndex]
	vert := renderer.Vertex{
		Position: mgl32.Vec3{
			decoder.Vertices[vertInd*3],
			decoder.Vertices[vertInd*3+1],
			decoder.Vertices[vertInd*3+2],
		},
		Color: mgl32.Vec3{1, 1, 1},
	}

	// Missing indices decode as an out of range sentinel.
	if normInd := attributeIndex(face.Normals, faceIndex); normInd >= 0 && normInd*3+2 < len(decoder.Normals) {
		vert.Normal = mgl32.Vec3{
			decoder.Normals[normInd*3],
			decoder.Normals[normInd*3+1],
			decoder.Normals[normInd*3+2],
		}
	}

	if uvInd := attributeIndex(face.Uvs, faceIndex); uvInd >= 0 && uvInd*2+1 < len(decoder.Uvs) {
		vert.UV = mgl32.Vec2{
			decoder.Uvs[uvInd*2],
			1.0 - decoder.Uvs[uvInd*2+1],
		}
	}

	return vert
}

func attributeIndex(indices []int, faceIndex int) int {
	if faceIndex >= len(indices) {
		return -1
	}
	return indices[faceIndex]
}
