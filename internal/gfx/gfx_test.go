package gfx

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want, got Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-5, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-5, "z")
}

func TestNegotiateLevel(t *testing.T) {
	supported := map[Level]bool{LevelGL33: true, LevelGL21: true}
	probe := func(l Level) bool { return supported[l] }

	level, err := NegotiateLevel(DefaultLevels(), probe)
	require.NoError(t, err)
	assert.Equal(t, LevelGL33, level)

	level, err = NegotiateLevel([]Level{LevelGL21, LevelGL33}, probe)
	require.NoError(t, err)
	assert.Equal(t, LevelGL21, level, "caller order wins")

	_, err = NegotiateLevel([]Level{LevelGL43}, probe)
	assert.ErrorIs(t, err, ErrNoSupportedLevel)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" GL3.3 ")
	require.NoError(t, err)
	assert.Equal(t, LevelGL33, level)

	_, err = ParseLevel("unknown")
	assert.Error(t, err)
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "revsub", BlendRevSub.String())
	assert.Equal(t, "BlendState(12)", BlendState(12).String())
	assert.False(t, BlendState(12).Valid())

	s, ok := ParseSamplerState("linear-border-white")
	require.True(t, ok)
	assert.Equal(t, SamplerLinearBorderWhite, s)
	assert.True(t, s.Linear())
	assert.Equal(t, 3, s.Address())
	assert.False(t, SamplerPointClamp.Linear())

	b, ok := ParseBlendState("screen")
	require.True(t, ok)
	assert.Equal(t, BlendScreen, b)
}

func TestARGB(t *testing.T) {
	c := ARGB(0x80, 0x10, 0x20, 0x30)
	assert.Equal(t, uint32(0x80102030), c)
	a, r, g, b := UnpackARGB(c)
	assert.Equal(t, []uint8{0x80, 0x10, 0x20, 0x30}, []uint8{a, r, g, b})
}

func TestTransformOrder(t *testing.T) {
	// scale, then rotate 90 degrees around Z, then translate
	world := Translation(Vector3{X: 10}).
		Mul(RotationRollPitchYaw(math32.Pi/2, 0, 0)).
		Mul(Scaling(Vector3{X: 2, Y: 2, Z: 2}))

	assertVec(t, Vector3{X: 10, Y: 2}, world.Apply(Vector3{X: 1}))
}

func TestRotationQuaternionMatchesEuler(t *testing.T) {
	half := math32.Pi / 4
	q := Vector4{Z: math32.Sin(half), W: math32.Cos(half)}
	p := Vector3{X: 1, Y: 2, Z: 3}
	assertVec(t, RotationZ(math32.Pi/2).Apply(p), RotationQuaternion(q).Apply(p))
	assert.Equal(t, Identity(), RotationQuaternion(Vector4{}))
}

func TestOrthoMapsCorners(t *testing.T) {
	m := Ortho(Box{MinX: 0, MinY: 0, MinZ: 0, MaxX: 640, MaxY: 480, MaxZ: 1})
	assertVec(t, Vector3{X: -1, Y: -1, Z: -1}, m.Apply(Vector3{}))
	assertVec(t, Vector3{X: 1, Y: 1, Z: 1}, m.Apply(Vector3{X: 640, Y: 480, Z: 1}))
	assert.InDelta(t, 0, m.Apply(Vector3{Z: 0.5}).Z, 1e-6)
}

func TestLookAtPerspective(t *testing.T) {
	view := LookAt(Vector3{Z: 5}, Vector3{}, Vector3{Y: 1})
	assertVec(t, Vector3{Z: -5}, view.Apply(Vector3{}))

	proj := Perspective(math32.Pi/2, 1, 1, 100)
	near := proj.Apply(Vector3{Z: -1})
	far := proj.Apply(Vector3{Z: -100})
	assert.InDelta(t, -1, near.Z, 1e-4)
	assert.InDelta(t, 1, far.Z, 1e-4)
}
