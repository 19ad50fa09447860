package utils

import (
	"testing"

	"github.com/emberforge/vkframe/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func TestPerspectiveDepthRange(t *testing.T) {
	projection := Perspective(mgl32.DegToRad(70), 4.0/3.0, 0.1, 200)

	near := projection.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := projection.Mul4x1(mgl32.Vec4{0, 0, -200, 1})
	require.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	require.InDelta(t, 1, far.Z()/far.W(), 1e-4)

	gl := mgl32.Perspective(mgl32.DegToRad(70), 4.0/3.0, 0.1, 200)
	require.Equal(t, gl[0], projection[0])
	require.Equal(t, gl[5], projection[5])
}

func TestDefaultCameraThroughRenderView(t *testing.T) {
	view, projection := DefaultCamera(mgl32.Vec3{0, 0, 3}, core1_0.Extent2D{Width: 800, Height: 600})

	rv := &renderer.RenderView{}
	rv.SetCamera(view, projection)

	origin := rv.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	depth := origin.Z() / origin.W()
	require.Greater(t, depth, float32(0))
	require.Less(t, depth, float32(1))

	above := rv.ViewProjection().Mul4x1(mgl32.Vec4{0, 1, 0, 1})
	require.Less(t, above.Y()/above.W(), float32(0))
}

func TestDefaultCameraZeroHeight(t *testing.T) {
	_, projection := DefaultCamera(mgl32.Vec3{0, 0, 3}, core1_0.Extent2D{Width: 800})
	require.Equal(t, Perspective(mgl32.DegToRad(70), 1, 0.1, 200), projection)
}

func TestStatsScheduleReportsEachIntervalOnce(t *testing.T) {
	var schedule statsSchedule

	require.False(t, schedule.due(0))
	require.False(t, schedule.due(statsInterval-1))
	require.True(t, schedule.due(statsInterval))

	// A postponed frame leaves the count unchanged.
	require.False(t, schedule.due(statsInterval))
	require.False(t, schedule.due(statsInterval))

	require.False(t, schedule.due(statsInterval+1))
	require.True(t, schedule.due(2*statsInterval))
}
