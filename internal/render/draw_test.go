package render

import (
	"slices"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/gfx/gfxtest"
)

func TestDrawModel(t *testing.T) {
	r, dev := newTestRenderer(t)
	mesh := &gfxtest.Mesh{Name: "cube"}
	model := Model{Name: "cube", Mesh: mesh, Lighting: gfx.DefaultLighting()}

	tr := NewTransform(gfx.Vector3{X: 1, Y: 2, Z: 3})
	tr.Scale = gfx.Vector3{X: 2, Y: 2, Z: 2}
	tr.Roll = math32.Pi / 2

	// no scope needed
	require.NoError(t, r.DrawModel(model, tr))
	require.Len(t, dev.Meshes, 1)
	call := dev.Meshes[0]
	assert.Same(t, mesh, call.Mesh)
	assert.Equal(t, tr.Matrix(), call.World)
	p := call.World.Apply(gfx.Vector3{X: 1})
	assert.InDelta(t, 1, p.X, 1e-5)
	assert.InDelta(t, 4, p.Y, 1e-5)
	assert.InDelta(t, 3, p.Z, 1e-5)

	// pending 2D geometry goes first and the 2D state is untouched
	require.NoError(t, r.Begin())
	require.NoError(t, r.SetBlend(gfx.BlendAdd))
	require.NoError(t, r.DrawTriangle(tri(0)))
	before := r.DrawState()
	require.NoError(t, r.DrawModel(model, NewTransform(gfx.Vector3{})))
	assert.Equal(t, before, r.DrawState())
	require.NoError(t, r.End())

	submit := slices.Index(dev.Calls, "Submit")
	last := slices.Index(dev.Calls[submit:], "DrawMesh")
	assert.Greater(t, last, 0)
	assert.Equal(t, 2, r.Stats().Models)

	err := r.DrawModel(Model{Name: "missing"}, tr)
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestTransformQuaternion(t *testing.T) {
	tr := NewTransform(gfx.Vector3{})
	tr.UseQuaternion = true
	tr.Roll = 1 // ignored
	tr.Quaternion = gfx.Vector4{Y: math32.Sin(math32.Pi / 4), W: math32.Cos(math32.Pi / 4)}
	p := tr.Matrix().Apply(gfx.Vector3{X: 1})
	assert.InDelta(t, 0, p.X, 1e-5)
	assert.InDelta(t, -1, p.Z, 1e-5)
}

func TestDrawSprite(t *testing.T) {
	r, dev := newTestRenderer(t)
	tex := gfxtest.NewTexture("sheet", 256, 128)
	s := NewSprite("ship", tex, gfx.Rect{Left: 64, Top: 32, Right: 96, Bottom: 64})
	s.SetColor(0x80FFFFFF)

	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawSprite(s, 100, 50, 0, 1, 2, 0.5))
	require.NoError(t, r.End())

	require.Len(t, dev.Submissions, 1)
	sub := dev.Submissions[0]
	assert.Same(t, tex, sub.Texture)
	assert.Equal(t, gfx.BlendAlpha, sub.State.Blend)
	require.Len(t, sub.Vertices, 4)

	tl, br := sub.Vertices[0], sub.Vertices[2]
	assert.Equal(t, float32(84), tl.X)
	assert.Equal(t, float32(82), tl.Y)
	assert.Equal(t, float32(116), br.X)
	assert.Equal(t, float32(18), br.Y)
	assert.Equal(t, float32(0.5), tl.Z)
	assert.Equal(t, float32(0.25), tl.U)
	assert.Equal(t, float32(0.25), tl.V)
	assert.Equal(t, float32(0.375), br.U)
	assert.Equal(t, float32(0.5), br.V)
	assert.Equal(t, uint32(0x80FFFFFF), tl.Color)
}

func TestDrawSpriteRotated(t *testing.T) {
	r, dev := newTestRenderer(t)
	tex := gfxtest.NewTexture("t", 10, 10)
	s := NewSprite("s", tex, gfx.NewRect(10, 10))

	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawSprite(s, 0, 0, math32.Pi/2, 1, 1, 0))
	require.NoError(t, r.End())

	tl := dev.Submissions[0].Vertices[0]
	// (-5, 5) rotated a quarter turn counter-clockwise
	assert.InDelta(t, -5, tl.X, 1e-5)
	assert.InDelta(t, -5, tl.Y, 1e-5)
}

func TestDrawSpriteValidation(t *testing.T) {
	r, dev := newTestRenderer(t)
	tex := gfxtest.NewTexture("t", 10, 10)
	s := NewSprite("s", tex, gfx.NewRect(10, 10))

	assert.ErrorIs(t, r.DrawSprite(s, 0, 0, 0, 1, 1, 0), ErrScope)
	assert.ErrorIs(t, r.DrawSprite(nil, 0, 0, 0, 1, 1, 0), ErrScope)

	require.NoError(t, r.Begin())
	assert.ErrorIs(t, r.DrawSprite(nil, 0, 0, 0, 1, 1, 0), ErrUnknownResource)

	s.Blend = gfx.BlendState(77)
	assert.ErrorIs(t, r.DrawSprite(s, 0, 0, 0, 1, 1, 0), ErrInvalidArgument)
	assert.Equal(t, DefaultDrawState(), r.DrawState(), "validation happens before any state change")

	tex.Released = true
	s.Blend = gfx.BlendAlpha
	assert.ErrorIs(t, r.DrawSpriteRect(s, 0, 1, 0, 1, 0), ErrUnknownResource)
	require.NoError(t, r.End())
	assert.Empty(t, dev.Submissions)
}

func TestDrawSpriteRectAnd4V(t *testing.T) {
	r, dev := newTestRenderer(t)
	tex := gfxtest.NewTexture("t", 16, 16)
	s := NewSprite("s", tex, gfx.NewRect(16, 16))

	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawSpriteRect(s, -1, 1, -2, 2, 0))
	require.NoError(t, r.DrawSprite4V(s,
		gfx.Vector3{X: 0, Y: 1}, gfx.Vector3{X: 1, Y: 1},
		gfx.Vector3{X: 1, Y: 0}, gfx.Vector3{X: 0, Y: 0}))
	require.NoError(t, r.End())

	require.Len(t, dev.Submissions, 1)
	v := dev.Submissions[0].Vertices
	require.Len(t, v, 8)
	assert.Equal(t, gfx.Vector3{X: -1, Y: 2}, gfx.Vector3{X: v[0].X, Y: v[0].Y, Z: v[0].Z})
	assert.Equal(t, gfx.Vector3{X: 1, Y: -2}, gfx.Vector3{X: v[2].X, Y: v[2].Y, Z: v[2].Z})
	assert.Equal(t, float32(1), v[5].X)
	assert.Equal(t, float32(1), v[6].U)
}

func TestDrawSprite3D(t *testing.T) {
	r, dev := newTestRenderer(t)
	tex := gfxtest.NewTexture("t", 4, 4)
	s := NewSprite("s", tex, gfx.NewRect(4, 4))

	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawSprite3D(s, gfx.Vector3{X: 10, Y: 0, Z: 5}, 0, 0, math32.Pi/2, 1, 1))
	require.NoError(t, r.End())

	// a quarter yaw turns the sprite's x axis onto -z
	tl := dev.Submissions[0].Vertices[0]
	assert.InDelta(t, 10, tl.X, 1e-5)
	assert.InDelta(t, 2, tl.Y, 1e-5)
	assert.InDelta(t, 7, tl.Z, 1e-5)
}

func TestSpriteSequence(t *testing.T) {
	tex := gfxtest.NewTexture("t", 40, 10)
	seq := &SpriteSequence{Name: "anim", Interval: 4}
	for i := 0; i < 4; i++ {
		seq.Frames = append(seq.Frames, NewSprite("f", tex, gfx.Rect{Left: float32(i * 10), Right: float32(i*10 + 10), Bottom: 10}))
	}
	assert.Same(t, seq.Frames[0], seq.Frame(0))
	assert.Same(t, seq.Frames[0], seq.Frame(3))
	assert.Same(t, seq.Frames[1], seq.Frame(4))
	assert.Same(t, seq.Frames[0], seq.Frame(16))
	assert.Same(t, seq.Frames[3], seq.Frame(-4))
	assert.Nil(t, (&SpriteSequence{}).Frame(3))

	r, dev := newTestRenderer(t)
	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawSpriteSequence(seq, 9, 0, 0, 0, 1, 1, 0))
	assert.ErrorIs(t, r.DrawSpriteSequence(&SpriteSequence{}, 0, 0, 0, 0, 1, 1, 0), ErrUnknownResource)
	require.NoError(t, r.End())
	assert.Equal(t, float32(0.5), dev.Submissions[0].Vertices[0].U)
}

func TestDrawTexture(t *testing.T) {
	r, dev := newTestRenderer(t)
	tex := gfxtest.NewTexture("t", 200, 100)

	require.NoError(t, r.Begin())
	vs := [4]gfx.Vertex{
		gfx.NewVertex(0, 0, 0, 0, 0, gfx.White),
		gfx.NewVertex(1, 0, 0, 200, 0, gfx.White),
		gfx.NewVertex(1, 1, 0, 200, 100, gfx.White),
		gfx.NewVertex(0, 1, 0, 50, 25, gfx.White),
	}
	require.NoError(t, r.DrawTexture(tex, gfx.VertexColorAdd, gfx.BlendAdd, vs))
	assert.Equal(t, float32(200), vs[1].U, "caller's vertices are not modified")
	require.NoError(t, r.End())

	sub := dev.Submissions[0]
	assert.Equal(t, gfx.VertexColorAdd, sub.State.VertexColor)
	assert.Equal(t, gfx.BlendAdd, sub.State.Blend)
	assert.Equal(t, float32(1), sub.Vertices[2].U)
	assert.Equal(t, float32(1), sub.Vertices[2].V)
	assert.Equal(t, float32(0.25), sub.Vertices[3].U)
	assert.Equal(t, float32(0.25), sub.Vertices[3].V)
}

func TestCameraAndClears(t *testing.T) {
	r, dev := newTestRenderer(t)
	require.NoError(t, r.Begin())
	require.NoError(t, r.DrawTriangle(tri(0)))

	require.NoError(t, r.SetOrtho(gfx.NewBox(640, 480)))
	assert.Len(t, dev.Submissions, 1, "projection changes flush")
	require.Len(t, dev.Projections, 1)
	assert.Equal(t, gfx.Identity(), dev.Projections[0][0])
	assert.Equal(t, gfx.Ortho(gfx.NewBox(640, 480)), dev.Projections[0][1])

	err := r.SetPerspective(gfx.Vector3{Z: 5}, gfx.Vector3{}, gfx.Vector3{Y: 1}, 1, 1, 10, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	err = r.SetPerspective(gfx.Vector3{Z: 5}, gfx.Vector3{}, gfx.Vector3{Y: 1}, 1, 1, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	require.NoError(t, r.SetPerspective(gfx.Vector3{Z: 5}, gfx.Vector3{}, gfx.Vector3{Y: 1}, 1, 1.5, 0.1, 100))
	assert.Len(t, dev.Projections, 2)

	assert.ErrorIs(t, r.SetOrtho(gfx.Box{}), ErrInvalidArgument)

	require.NoError(t, r.ClearRenderTarget(0xFF102030))
	require.NoError(t, r.ClearDepthBuffer(1))
	require.NoError(t, r.End())
	assert.Equal(t, []uint32{0xFF102030}, dev.Clears)
	assert.Equal(t, []float32{1}, dev.DepthClears)
}

func TestFogFromRange(t *testing.T) {
	assert.Equal(t, gfx.FogDisable, FogFromRange(3, 3, gfx.White).Mode)
	assert.Equal(t, gfx.Fog{Mode: gfx.FogExp, Color: 1, Near: 0.5}, FogFromRange(-1, 0.5, 1))
	assert.Equal(t, gfx.Fog{Mode: gfx.FogExp2, Color: 1, Near: 0.2}, FogFromRange(-2, 0.2, 1))
	assert.Equal(t, gfx.Fog{Mode: gfx.FogLinear, Color: 2, Near: 1, Far: 9}, FogFromRange(1, 9, 2))
}
