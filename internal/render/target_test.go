package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/gfx/gfxtest"
)

func TestPushPopRestoresFrame(t *testing.T) {
	r, dev := newTestRenderer(t)
	base := r.Frame()
	assert.Nil(t, base.Target)

	var targets []*gfxtest.RenderTarget
	for i := 0; i < 4; i++ {
		rt := gfxtest.NewRenderTarget(string(rune('a'+i)), 64*(i+1), 32*(i+1))
		targets = append(targets, rt)
		vp := gfx.Box{MinX: float32(i), MaxX: 10, MaxY: 10, MaxZ: 1}
		require.NoError(t, r.PushRenderTarget(rt, vp, gfx.NewRect(5, 5)))
		assert.Same(t, rt, dev.Target())
		assert.Equal(t, vp, dev.Viewport())
	}
	assert.Equal(t, 4, r.TargetDepth())

	for i := 3; i >= 0; i-- {
		assert.Same(t, targets[i], r.Frame().Target)
		require.NoError(t, r.PopRenderTarget())
	}
	assert.Equal(t, base, r.Frame())
	assert.Nil(t, dev.Target())
	assert.Equal(t, base.Viewport, dev.Viewport())
	assert.Equal(t, base.Scissor, dev.Scissor())

	err := r.PopRenderTarget()
	assert.ErrorIs(t, err, ErrStackEmpty)
	assert.Equal(t, KindScope, Classify(err))
}

func TestPushInsideBatchScenario(t *testing.T) {
	r, dev := newTestRenderer(t)
	rt := gfxtest.NewRenderTarget("A", 128, 128)

	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawTriangle(tri(0)))
	require.NoError(t, r.PushRenderTargetFull(rt))
	assert.True(t, r.InScope())
	require.NoError(t, r.DrawTriangle(tri(1)))
	require.NoError(t, r.PopRenderTarget())
	assert.True(t, r.InScope())
	require.NoError(t, r.DrawTriangle(tri(2)))
	require.NoError(t, r.End())

	require.Len(t, dev.Submissions, 3)
	assert.Nil(t, dev.Submissions[0].Target)
	assert.Same(t, rt, dev.Submissions[1].Target)
	assert.Equal(t, gfx.NewBox(128, 128), dev.Submissions[1].Viewport)
	assert.Equal(t, gfx.NewRect(128, 128), dev.Submissions[1].Scissor)
	assert.Nil(t, dev.Submissions[2].Target)
	assert.Equal(t, float32(1), dev.Submissions[1].Vertices[0].X)
}

func TestPushInsideBatchNothingAfterPop(t *testing.T) {
	r, dev := newTestRenderer(t)
	rt := gfxtest.NewRenderTarget("A", 128, 128)

	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawTriangle(tri(0)))
	require.NoError(t, r.PushRenderTargetFull(rt))
	require.NoError(t, r.DrawTriangle(tri(1)))
	require.NoError(t, r.PopRenderTarget())
	require.NoError(t, r.End())

	// the final flush has no geometry and submits nothing
	require.Len(t, dev.Submissions, 2)
	assert.Nil(t, dev.Submissions[0].Target)
	assert.Same(t, rt, dev.Submissions[1].Target)
	assert.Nil(t, dev.Target())
}

func TestPushRejectsBadTargets(t *testing.T) {
	r, dev := newTestRenderer(t)

	assert.ErrorIs(t, r.PushRenderTarget(nil, gfx.Box{}, gfx.Rect{}), ErrUnknownResource)
	released := gfxtest.NewRenderTarget("gone", 8, 8)
	released.Released = true
	assert.ErrorIs(t, r.PushRenderTargetFull(released), ErrUnknownResource)

	assert.Equal(t, 0, r.TargetDepth())
	assert.Equal(t, 0, dev.CallsNamed("SetRenderTarget"))
}

func TestNestedPushOfSameTarget(t *testing.T) {
	r, dev := newTestRenderer(t)
	rt := gfxtest.NewRenderTarget("rt", 8, 8)

	require.NoError(t, r.PushRenderTargetFull(rt))
	require.NoError(t, r.PushRenderTarget(rt, gfx.NewBox(4, 4), gfx.NewRect(4, 4)))
	assert.Equal(t, 2, r.TargetDepth())
	assert.Equal(t, gfx.NewBox(4, 4), dev.Viewport())

	require.NoError(t, r.PopRenderTarget())
	assert.Same(t, rt, dev.Target())
	assert.Equal(t, gfx.NewBox(8, 8), dev.Viewport())
	require.NoError(t, r.PopRenderTarget())
	assert.Nil(t, dev.Target())
}

func TestTextureBoundAsTargetRejected(t *testing.T) {
	r, _ := newTestRenderer(t)
	rt := gfxtest.NewRenderTarget("rt", 32, 32)

	require.NoError(t, r.Begin())
	require.NoError(t, r.PushRenderTargetFull(rt))
	err := r.SetTexture(rt.Texture())
	assert.ErrorIs(t, err, ErrTargetInUse)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, r.DrawState().Texture)

	require.NoError(t, r.PopRenderTarget())
	require.NoError(t, r.SetTexture(rt.Texture()))
	require.NoError(t, r.End())
}

func TestPushTargetThatWasSampled(t *testing.T) {
	r, dev := newTestRenderer(t)
	rt := gfxtest.NewRenderTarget("rt", 32, 32)

	require.NoError(t, r.Begin())
	require.NoError(t, r.PushRenderTargetFull(rt))
	require.NoError(t, r.DrawTriangle(tri(0)))
	require.NoError(t, r.PopRenderTarget())
	require.NoError(t, r.SetTexture(rt.Texture()))
	require.NoError(t, r.DrawQuad(quad(0)))

	// pushing again is fine; sampling it while it is the output is not
	require.NoError(t, r.PushRenderTargetFull(rt))
	require.Len(t, dev.Submissions, 2)
	assert.Same(t, rt, dev.Submissions[1].Texture)
	assert.Nil(t, dev.Submissions[1].Target)

	err := r.DrawQuad(quad(1))
	assert.ErrorIs(t, err, ErrTargetInUse)
	assert.True(t, r.acc.Empty())

	require.NoError(t, r.SetTexture(nil))
	require.NoError(t, r.DrawTriangle(tri(2)))
	require.NoError(t, r.PopRenderTarget())
	require.Len(t, dev.Submissions, 3)
	assert.Same(t, rt, dev.Submissions[2].Target)
	assert.Nil(t, dev.Submissions[2].Texture)
	require.NoError(t, r.End())

	// the pending texture of a closed scope does not block a push
	require.NoError(t, r.PushRenderTargetFull(rt))
	require.NoError(t, r.PopRenderTarget())
}

func TestViewportAndScissorReplaceTop(t *testing.T) {
	r, dev := newTestRenderer(t)
	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawTriangle(tri(0)))

	vp := gfx.Box{MinX: 10, MinY: 10, MaxX: 100, MaxY: 100, MaxZ: 1}
	require.NoError(t, r.SetViewport(vp))
	assert.Len(t, dev.Submissions, 1, "viewport change flushes")
	sc := gfx.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4}
	require.NoError(t, r.SetScissorRect(sc))
	require.NoError(t, r.DrawTriangle(tri(1)))
	require.NoError(t, r.End())

	require.Len(t, dev.Submissions, 2)
	assert.Equal(t, vp, dev.Submissions[1].Viewport)
	assert.Equal(t, sc, dev.Submissions[1].Scissor)
	assert.Equal(t, Frame{Viewport: vp, Scissor: sc}, r.Frame())
}

func TestResizeBase(t *testing.T) {
	r, dev := newTestRenderer(t)
	rt := gfxtest.NewRenderTarget("rt", 16, 16)
	require.NoError(t, r.PushRenderTargetFull(rt))

	vp, sc := gfx.NewBox(1920, 1080), gfx.NewRect(1920, 1080)
	require.NoError(t, r.ResizeBase(vp, sc))
	assert.Same(t, rt, dev.Target(), "resizing the base does not rebind a pushed target")

	require.NoError(t, r.PopRenderTarget())
	assert.Equal(t, vp, dev.Viewport())

	w, h := r.OutputSize()
	assert.Equal(t, [2]float32{1920, 1080}, [2]float32{w, h})
	require.NoError(t, r.PushRenderTargetFull(rt))
	w, h = r.OutputSize()
	assert.Equal(t, [2]float32{16, 16}, [2]float32{w, h})
	require.NoError(t, r.PopRenderTarget())

	vp2 := gfx.NewBox(800, 600)
	require.NoError(t, r.ResizeBase(vp2, gfx.NewRect(800, 600)))
	assert.Equal(t, vp2, dev.Viewport())
}

func TestTargetStack(t *testing.T) {
	s := NewTargetStack(Frame{Viewport: gfx.NewBox(1, 1)})
	assert.Equal(t, 0, s.Depth())
	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrStackEmpty)

	rt := gfxtest.NewRenderTarget("rt", 4, 4)
	s.Push(TargetFrame(rt))
	assert.True(t, s.Contains(rt))
	assert.False(t, s.Contains(gfxtest.NewTexture("x", 1, 1)))
	assert.False(t, s.Contains(nil))

	f, err := s.Pop()
	require.NoError(t, err)
	assert.Same(t, rt, f.Target)
	assert.False(t, s.Contains(rt))
}
