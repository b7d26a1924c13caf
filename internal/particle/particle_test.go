package particle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/gfx/gfxtest"
	"stg-renderer/internal/render"
)

func testSprite() *render.Sprite {
	return render.NewSprite("dot", gfxtest.NewTexture("dots", 8, 8), gfx.NewRect(8, 8))
}

func TestValidate(t *testing.T) {
	good := Config{Name: "sparks", Sprite: "dot", Emitters: []Emitter{{Kind: "box", Rate: 10}}}
	require.NoError(t, good.Validate())

	bad := good
	bad.Emitters = []Emitter{{Kind: "cone"}}
	assert.ErrorContains(t, bad.Validate(), "cone")

	bad = good
	bad.Sprite = ""
	assert.ErrorContains(t, bad.Validate(), "no sprite")

	bad = good
	bad.Operators = []Operator{{Kind: "controlpointattract", ControlPoint: ControlPoints}}
	assert.ErrorContains(t, bad.Validate(), "control point")

	bad = good
	bad.Initializers = []Initializer{{Kind: "mass"}}
	assert.ErrorContains(t, bad.Validate(), "mass")
}

func TestSpawnRateAndLimit(t *testing.T) {
	s := New(Config{
		Name:         "sparks",
		MaxCount:     5,
		Emitters:     []Emitter{{Kind: "point", Rate: 10}},
		Initializers: []Initializer{{Kind: "lifetime", Min: Vec3{X: 10}, Max: Vec3{X: 10}}},
	}, testSprite())

	s.Update(0.25)
	assert.Len(t, s.Particles, 2)
	s.Update(1)
	assert.Len(t, s.Particles, 5)
	assert.InDelta(t, 1.25, s.Time(), 1e-6)

	s.Reset()
	assert.Empty(t, s.Particles)
	assert.Zero(t, s.Time())
}

func TestParticlesExpire(t *testing.T) {
	s := New(Config{
		Name:         "puff",
		Emitters:     []Emitter{{Kind: "point", Rate: 4}},
		Initializers: []Initializer{{Kind: "lifetime", Min: Vec3{X: 0.5}, Max: Vec3{X: 0.5}}},
	}, testSprite())
	s.Update(0.25)
	require.Len(t, s.Particles, 1)
	s.Config.Emitters[0].Rate = 0
	s.Update(0.3)
	assert.Empty(t, s.Particles)
}

func TestMovementAndVelocity(t *testing.T) {
	s := New(Config{
		Name:     "fall",
		Emitters: []Emitter{{Kind: "point", Origin: Vec3{X: 100, Y: 50}, Rate: 1}},
		Initializers: []Initializer{
			{Kind: "lifetime", Min: Vec3{X: 10}, Max: Vec3{X: 10}},
			{Kind: "velocity", Min: Vec3{X: 10}, Max: Vec3{X: 10}},
		},
		Operators: []Operator{{Kind: "movement", Gravity: Vec3{Y: -20}}},
	}, testSprite())

	s.Update(1)
	require.Len(t, s.Particles, 1)
	p := s.Particles[0]
	// gravity applies before integration
	assert.InDelta(t, 110, p.Position.X, 1e-4)
	assert.InDelta(t, 30, p.Position.Y, 1e-4)
	assert.InDelta(t, -20, p.Velocity.Y, 1e-4)
}

func TestBoxEmitterSpread(t *testing.T) {
	s := New(Config{
		Name:         "box",
		MaxCount:     200,
		Seed:         7,
		Emitters:     []Emitter{{Kind: "box", DistanceMin: Vec3{X: 5, Y: 5}, DistanceMax: Vec3{X: 10, Y: 10}, Rate: 1000}},
		Initializers: []Initializer{{Kind: "lifetime", Min: Vec3{X: 5}, Max: Vec3{X: 5}}},
	}, testSprite())
	s.Update(0.1)
	require.NotEmpty(t, s.Particles)
	for _, p := range s.Particles {
		ax, ay := p.Position.X, p.Position.Y
		if ax < 0 {
			ax = -ax
		}
		if ay < 0 {
			ay = -ay
		}
		assert.True(t, ax >= 5 && ax <= 10, "x %v", p.Position.X)
		assert.True(t, ay >= 5 && ay <= 10, "y %v", p.Position.Y)
	}
}

func TestAlphaFade(t *testing.T) {
	s := New(Config{
		Name:      "fade",
		Operators: []Operator{{Kind: "alphafade", FadeIn: 0.5, FadeOut: 0.5}},
	}, testSprite())
	p := &Particle{Life: 7.5, MaxLife: 10, InitialAlpha: 1}
	s.applyOperators(p, 0)
	assert.InDelta(t, 0.5, p.Alpha, 1e-5)

	p = &Particle{Life: 1, MaxLife: 10, InitialAlpha: 1}
	s.applyOperators(p, 0)
	assert.InDelta(t, 0.2, p.Alpha, 1e-5)

	s.Config.Operators = nil
	p = &Particle{Life: 5, MaxLife: 10, InitialAlpha: 0.8}
	s.applyOperators(p, 0)
	assert.InDelta(t, 0.8, p.Alpha, 1e-5)
}

func TestSameSeedSameSimulation(t *testing.T) {
	cfg := Config{
		Name:     "seeded",
		Seed:     42,
		Emitters: []Emitter{{Kind: "sphere", DistanceMax: Vec3{X: 20}, Rate: 30}},
		Initializers: []Initializer{
			{Kind: "lifetime", Min: Vec3{X: 1}, Max: Vec3{X: 3}},
			{Kind: "size", Min: Vec3{X: 0.5}, Max: Vec3{X: 2}},
		},
	}
	a, b := New(cfg, testSprite()), New(cfg, testSprite())
	for range 10 {
		a.Update(0.1)
		b.Update(0.1)
	}
	require.Equal(t, len(a.Particles), len(b.Particles))
	for i := range a.Particles {
		assert.Equal(t, *a.Particles[i], *b.Particles[i])
	}
}

func TestDrawBatchesParticles(t *testing.T) {
	dev := gfxtest.NewRecorder()
	r, err := render.New(dev, render.Options{BaseViewport: gfx.NewBox(640, 480), BaseScissor: gfx.NewRect(640, 480)})
	require.NoError(t, err)

	s := New(Config{Name: "p"}, testSprite())
	s.Particles = []*Particle{
		{Position: Vec3{X: 1, Y: 2}, Color: Vec3{X: 1, Y: 0, Z: 0}, Alpha: 1, Size: 1},
		{Position: Vec3{X: 3, Y: 4}, Color: Vec3{X: 0, Y: 1, Z: 0}, Alpha: 0.5, Size: 2},
	}

	require.NoError(t, r.Begin())
	require.NoError(t, s.Draw(r, 100, 100, gfx.VertexColorAdd, gfx.BlendAdd))
	require.NoError(t, r.End())

	require.Len(t, dev.Submissions, 1)
	sub := dev.Submissions[0]
	assert.Len(t, sub.Vertices, 8)
	assert.Equal(t, gfx.BlendAdd, sub.State.Blend)
	assert.Equal(t, gfx.VertexColorAdd, sub.State.VertexColor)
	assert.Equal(t, uint32(0xFFFF0000), sub.Vertices[0].Color)
	assert.Equal(t, uint32(0x8000FF00), sub.Vertices[4].Color)
	// 8px sprite anchored at its center, scaled by size 2
	assert.InDelta(t, 95, sub.Vertices[4].X, 1e-4)
	assert.InDelta(t, 112, sub.Vertices[4].Y, 1e-4)

	// the larger particle dominates: half the 8x8 diagonal times size 2
	b, ok := s.Bounds()
	require.True(t, ok)
	d := float32(4 * 1.4142135)
	assert.InDelta(t, 103-2*d, b.Left, 1e-3)
	assert.InDelta(t, 103+2*d, b.Right, 1e-3)
	assert.InDelta(t, 104-2*d, b.Bottom, 1e-3)
	assert.InDelta(t, 104+2*d, b.Top, 1e-3)

	s.Sprite = nil
	assert.ErrorIs(t, s.Draw(r, 0, 0, gfx.VertexColorMul, gfx.BlendAlpha), render.ErrUnknownResource)
	_, ok = s.Bounds()
	assert.False(t, ok)
}
