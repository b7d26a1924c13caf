package gfx

import "fmt"

// VertexColorBlend controls how the vertex color combines with the texture.
type VertexColorBlend uint8

const (
	VertexColorZero VertexColorBlend = iota // texture only
	VertexColorOne                          // vertex color only
	VertexColorAdd
	VertexColorHue
	VertexColorMul

	vertexColorCount
)

var vertexColorNames = [...]string{"zero", "one", "add", "hue", "mul"}

func (v VertexColorBlend) Valid() bool { return v < vertexColorCount }

func (v VertexColorBlend) String() string {
	if !v.Valid() {
		return fmt.Sprintf("VertexColorBlend(%d)", uint8(v))
	}
	return vertexColorNames[v]
}

// FogMode selects the fog equation.
type FogMode uint8

const (
	FogDisable FogMode = iota
	FogLinear
	FogExp
	FogExp2

	fogModeCount
)

var fogModeNames = [...]string{"disable", "linear", "exp", "exp2"}

func (f FogMode) Valid() bool { return f < fogModeCount }

func (f FogMode) String() string {
	if !f.Valid() {
		return fmt.Sprintf("FogMode(%d)", uint8(f))
	}
	return fogModeNames[f]
}

// Fog is the fog axis of the pipeline state. For linear fog Near and Far are
// the start and end distances; for exponential fog Near is the density and
// Far is ignored.
type Fog struct {
	Mode  FogMode
	Color uint32
	Near  float32
	Far   float32
}

// DepthState toggles the depth test.
type DepthState uint8

const (
	DepthDisable DepthState = iota
	DepthEnable

	depthStateCount
)

func (d DepthState) Valid() bool { return d < depthStateCount }

func (d DepthState) String() string {
	switch d {
	case DepthDisable:
		return "disable"
	case DepthEnable:
		return "enable"
	}
	return fmt.Sprintf("DepthState(%d)", uint8(d))
}

// BlendState is one of the fixed blend equations the device supports.
type BlendState uint8

const (
	BlendDisable BlendState = iota
	BlendAlpha
	BlendOne
	BlendMin
	BlendMax
	BlendMul
	BlendScreen
	BlendAdd
	BlendHue
	BlendSub
	BlendRevSub
	BlendInv

	blendStateCount
)

var blendStateNames = [...]string{
	"disable", "alpha", "one", "min", "max", "mul",
	"screen", "add", "hue", "sub", "revsub", "inv",
}

func (b BlendState) Valid() bool { return b < blendStateCount }

func (b BlendState) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BlendState(%d)", uint8(b))
	}
	return blendStateNames[b]
}

// SamplerState combines a filter with an addressing mode.
type SamplerState uint8

const (
	SamplerPointWrap SamplerState = iota
	SamplerPointClamp
	SamplerPointBorderBlack
	SamplerPointBorderWhite
	SamplerLinearWrap
	SamplerLinearClamp
	SamplerLinearBorderBlack
	SamplerLinearBorderWhite

	samplerStateCount
)

var samplerStateNames = [...]string{
	"point-wrap", "point-clamp", "point-border-black", "point-border-white",
	"linear-wrap", "linear-clamp", "linear-border-black", "linear-border-white",
}

func (s SamplerState) Valid() bool { return s < samplerStateCount }

func (s SamplerState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SamplerState(%d)", uint8(s))
	}
	return samplerStateNames[s]
}

// Linear reports whether the sampler filters linearly.
func (s SamplerState) Linear() bool { return s >= SamplerLinearWrap }

// Address returns the addressing half of the sampler, 0..3 for
// wrap, clamp, border-black and border-white.
func (s SamplerState) Address() int { return int(s) % 4 }

// ParseBlendState looks a blend state up by its String name.
func ParseBlendState(name string) (BlendState, bool) {
	for i, n := range blendStateNames {
		if n == name {
			return BlendState(i), true
		}
	}
	return 0, false
}

// ParseSamplerState looks a sampler state up by its String name.
func ParseSamplerState(name string) (SamplerState, bool) {
	for i, n := range samplerStateNames {
		if n == name {
			return SamplerState(i), true
		}
	}
	return 0, false
}

// ParseVertexColorBlend looks a vertex color blend up by its String name.
func ParseVertexColorBlend(name string) (VertexColorBlend, bool) {
	for i, n := range vertexColorNames {
		if n == name {
			return VertexColorBlend(i), true
		}
	}
	return 0, false
}

// PipelineState is the non-resource part of the state bound for a submission.
type PipelineState struct {
	VertexColor VertexColorBlend
	Fog         Fog
	Depth       DepthState
	Blend       BlendState
}
