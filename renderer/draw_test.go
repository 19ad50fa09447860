package renderer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

type fakeDescriptorSet struct {
	core1_0.DescriptorSet
	name string
}

type boundSet struct {
	index int
	set   core1_0.DescriptorSet
}

type fakeRecorder struct {
	calls     []string
	sets      []boundSet
	constants []MeshPushConstants
	extent    core1_0.Extent2D
}

func (r *fakeRecorder) CommandBuffer() core1_0.CommandBuffer { return nil }

func (r *fakeRecorder) SetViewport(extent core1_0.Extent2D) {
	r.extent = extent
	r.calls = append(r.calls, "viewport")
}

func (r *fakeRecorder) BindMaterial(material *Material) {
	r.calls = append(r.calls, "material:"+material.Name)
}

func (r *fakeRecorder) BindMesh(mesh *Mesh) {
	r.calls = append(r.calls, "mesh:"+mesh.Name)
}

func (r *fakeRecorder) BindDescriptorSet(layout core1_0.PipelineLayout, set int, descriptorSet core1_0.DescriptorSet) {
	r.sets = append(r.sets, boundSet{index: set, set: descriptorSet})
	r.calls = append(r.calls, fmt.Sprintf("set:%d", set))
}

func (r *fakeRecorder) PushConstants(layout core1_0.PipelineLayout, stages core1_0.ShaderStageFlags, data []byte) {
	var constants MeshPushConstants
	err := binary.Read(bytes.NewReader(data), common.ByteOrder, &constants)
	if err != nil {
		panic(err)
	}
	r.constants = append(r.constants, constants)
	r.calls = append(r.calls, "push")
}

func (r *fakeRecorder) Draw(vertexCount int) {
	r.calls = append(r.calls, fmt.Sprintf("draw:%d", vertexCount))
}

func (r *fakeRecorder) count(call string) int {
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func testMesh(name string, vertices int) *Mesh {
	return &Mesh{Name: name, Vertices: make([]Vertex, vertices)}
}

func testView() *RenderView {
	view := &RenderView{}
	view.SetCamera(
		mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		mgl32.Perspective(mgl32.DegToRad(70), 16.0/9.0, 0.1, 200),
	)
	return view
}

func TestDrawObjectsBindsOnlyOnChange(t *testing.T) {
	triangle := testMesh("triangle", 3)
	quad := testMesh("quad", 6)
	colored := &Material{Name: "colored"}
	tinted := &Material{Name: "tinted"}

	objects := []RenderObject{
		{Mesh: triangle, Material: colored, Transform: mgl32.Ident4()},
		{Mesh: triangle, Material: colored, Transform: mgl32.Translate3D(1, 0, 0)},
		{Mesh: quad, Material: colored, Transform: mgl32.Translate3D(2, 0, 0)},
		{Mesh: quad, Material: tinted, Transform: mgl32.Translate3D(3, 0, 0)},
		{Mesh: quad, Material: tinted, Transform: mgl32.Translate3D(4, 0, 0)},
	}

	rec := &fakeRecorder{}
	err := DrawObjects(rec, testView(), objects)
	require.NoError(t, err)

	require.Equal(t, []string{
		"material:colored", "push", "mesh:triangle", "draw:3",
		"push", "draw:3",
		"push", "mesh:quad", "draw:6",
		"material:tinted", "push", "draw:6",
		"push", "draw:6",
	}, rec.calls)
}

func TestDrawObjectsRebindCounts(t *testing.T) {
	meshA := testMesh("a", 3)
	meshB := testMesh("b", 3)
	matX := &Material{Name: "x"}
	matY := &Material{Name: "y"}

	rec := &fakeRecorder{}
	err := DrawObjects(rec, testView(), []RenderObject{
		{Mesh: meshA, Material: matX},
		{Mesh: meshA, Material: matX},
		{Mesh: meshB, Material: matX},
		{Mesh: meshA, Material: matY},
	})
	require.NoError(t, err)

	require.Equal(t, 1, rec.count("material:x"))
	require.Equal(t, 1, rec.count("material:y"))
	require.Equal(t, 2, rec.count("mesh:a"))
	require.Equal(t, 1, rec.count("mesh:b"))
	require.Equal(t, 4, rec.count("draw:3"))
}

func TestDrawObjectsCameraFixture(t *testing.T) {
	lookAt := mgl32.LookAtV(mgl32.Vec3{0, 0, -2}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	perspective := mgl32.Perspective(mgl32.DegToRad(70), 800.0/600.0, 0.1, 200)
	transform := mgl32.Translate3D(1, 0, 0)

	view := &RenderView{}
	view.SetCamera(lookAt, perspective)

	rec := &fakeRecorder{}
	err := DrawObjects(rec, view, []RenderObject{
		{Mesh: testMesh("triangle", 3), Material: &Material{Name: "colored"}, Transform: transform},
	})
	require.NoError(t, err)
	require.Len(t, rec.constants, 1)

	flipped := perspective
	flipped[5] *= -1
	expected := flipped.Mul4(lookAt).Mul4(transform)
	require.True(t, expected.ApproxEqualThreshold(rec.constants[0].RenderMatrix, 1e-6),
		"expected %v, pushed %v", expected, rec.constants[0].RenderMatrix)
}

func TestDrawObjectsPushesModelViewProjection(t *testing.T) {
	lookAt := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	perspective := mgl32.Perspective(mgl32.DegToRad(70), 16.0/9.0, 0.1, 200)
	flipped := perspective
	flipped[5] *= -1

	view := &RenderView{}
	view.SetCamera(lookAt, perspective)
	transforms := []mgl32.Mat4{
		mgl32.Ident4(),
		mgl32.Translate3D(1, 2, 3),
		mgl32.HomogRotate3DY(0.5).Mul4(mgl32.Scale3D(2, 2, 2)),
	}

	material := &Material{Name: "colored"}
	mesh := testMesh("triangle", 3)
	var objects []RenderObject
	for i, transform := range transforms {
		objects = append(objects, RenderObject{
			Mesh:      mesh,
			Material:  material,
			Transform: transform,
			Data:      mgl32.Vec4{float32(i), 0, 0, 1},
		})
	}

	rec := &fakeRecorder{}
	require.NoError(t, DrawObjects(rec, view, objects))
	require.Len(t, rec.constants, len(transforms))

	for i, transform := range transforms {
		expected := flipped.Mul4(lookAt).Mul4(transform)
		require.True(t, expected.ApproxEqual(rec.constants[i].RenderMatrix), "object %d", i)
		require.Equal(t, objects[i].Data, rec.constants[i].Data)
	}
}

func TestDrawObjectsDescriptorSets(t *testing.T) {
	view := testView()
	cameraSet := &fakeDescriptorSet{name: "camera"}
	textureSet := &fakeDescriptorSet{name: "texture"}
	view.DescriptorSet = cameraSet

	lit := &Material{Name: "lit", UsesCameraSet: true, TextureSet: textureSet}
	flat := &Material{Name: "flat", TextureSet: textureSet}
	plain := &Material{Name: "plain"}
	mesh := testMesh("quad", 6)

	rec := &fakeRecorder{}
	err := DrawObjects(rec, view, []RenderObject{
		{Mesh: mesh, Material: lit},
		{Mesh: mesh, Material: flat},
		{Mesh: mesh, Material: plain},
	})
	require.NoError(t, err)

	require.Equal(t, []boundSet{
		{index: 0, set: cameraSet},
		{index: 1, set: textureSet},
		{index: 0, set: textureSet},
	}, rec.sets)
}

func TestDrawObjectsRejectsIncompleteObjects(t *testing.T) {
	rec := &fakeRecorder{}
	err := DrawObjects(rec, testView(), []RenderObject{
		{Mesh: testMesh("triangle", 3), Material: &Material{Name: "colored"}},
		{Mesh: testMesh("triangle", 3)},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "render object 1")
	require.Equal(t, 1, rec.count("draw:3"))
}

func TestDrawObjectsEmpty(t *testing.T) {
	rec := &fakeRecorder{}
	require.NoError(t, DrawObjects(rec, testView(), nil))
	require.Empty(t, rec.calls)
}

func TestSortObjectsMinimizesRebinds(t *testing.T) {
	triangle := testMesh("triangle", 3)
	quad := testMesh("quad", 6)
	colored := &Material{Name: "colored"}
	tinted := &Material{Name: "tinted"}
	materials := []*Material{colored, tinted}
	meshes := []*Mesh{triangle, quad}

	var objects []RenderObject
	for i := 0; i < 20; i++ {
		objects = append(objects, RenderObject{
			Mesh:      meshes[i%2],
			Material:  materials[(i/2)%2],
			Transform: mgl32.Translate3D(float32(i), 0, 0),
		})
	}

	unsorted := &fakeRecorder{}
	require.NoError(t, DrawObjects(unsorted, testView(), objects))
	require.Greater(t, unsorted.count("material:colored")+unsorted.count("material:tinted"), 2)

	SortObjects(objects)

	sorted := &fakeRecorder{}
	require.NoError(t, DrawObjects(sorted, testView(), objects))
	require.Equal(t, 1, sorted.count("material:colored"))
	require.Equal(t, 1, sorted.count("material:tinted"))
	require.Equal(t, 2, sorted.count("mesh:triangle"))
	require.Equal(t, 2, sorted.count("mesh:quad"))
	require.Equal(t, 20, sorted.count("push"))

	// Within a material and mesh group input order is kept.
	var xs []float32
	for _, object := range objects[:5] {
		xs = append(xs, object.Transform.Col(3).X())
	}
	require.Equal(t, []float32{0, 4, 8, 12, 16}, xs)
}

func TestSetCameraFlipsOnlyY(t *testing.T) {
	projection := mgl32.Perspective(mgl32.DegToRad(70), 1, 0.1, 100)
	view := &RenderView{}
	view.SetCamera(mgl32.Ident4(), projection)

	expected := projection
	expected[5] = -projection[5]
	require.Equal(t, expected, view.Projection)
	require.Equal(t, mgl32.Ident4(), view.View)
	require.True(t, view.Projection.ApproxEqual(view.ViewProjection()))

	up := view.Projection.Mul4x1(mgl32.Vec4{0, 1, -1, 1})
	require.Less(t, up.Y(), float32(0))
}
