package renderer

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRecordingDestroyer(destroyed *[]Resource) *Destroyer {
	d := NewDestroyer(NewLogger(io.Discard, LevelTrace))
	d.destroy = func(r Resource) {
		*destroyed = append(*destroyed, r)
	}
	return d
}

func TestDestroyAllReversesCreationOrder(t *testing.T) {
	var destroyed []Resource
	d := newRecordingDestroyer(&destroyed)

	d.AddRenderPass(nil)
	d.AddFramebuffers(nil, nil)
	d.AddPipeline(nil, nil)
	d.AddSemaphores(nil)
	d.AddFences(nil)
	require.Equal(t, 7, d.Len())

	d.DestroyAll()

	var kinds []ResourceKind
	var seqs []int
	for _, r := range destroyed {
		kinds = append(kinds, r.Kind)
		seqs = append(seqs, r.seq)
	}
	require.Equal(t, []ResourceKind{
		KindFence,
		KindSemaphore,
		KindPipeline,
		KindPipelineLayout,
		KindFramebuffer,
		KindFramebuffer,
		KindRenderPass,
	}, kinds)
	require.Equal(t, []int{6, 5, 4, 3, 2, 1, 0}, seqs)
	require.Equal(t, 0, d.Len())
}

func TestDestroyAllForgetsDestroyedResources(t *testing.T) {
	var destroyed []Resource
	d := newRecordingDestroyer(&destroyed)

	d.Add(SamplerResource(nil), DescriptorPoolResource(nil))
	d.DestroyAll()
	require.Len(t, destroyed, 2)

	d.DestroyAll()
	require.Len(t, destroyed, 2)

	d.AddImageViews(nil)
	d.DestroyAll()
	require.Len(t, destroyed, 3)
	require.Equal(t, KindImageView, destroyed[2].Kind)
	require.Equal(t, 2, destroyed[2].seq)
}

func TestDestroyerEmpty(t *testing.T) {
	var destroyed []Resource
	d := newRecordingDestroyer(&destroyed)

	d.DestroyAll()
	require.Empty(t, destroyed)
}

func TestResourceKindString(t *testing.T) {
	require.Equal(t, "pipeline layout", KindPipelineLayout.String())
	require.Equal(t, "command pool", KindCommandPool.String())
	require.Equal(t, "unknown", ResourceKind(99).String())
}
