// Package gfx defines the vocabulary shared by the 2D batcher and the
// graphics devices it drives: vertex layout, pipeline state enums, resource
// handles and the Device interface itself.
package gfx

// Resource is implemented by every opaque device handle. Handles must be
// comparable (pointer types in practice) because the batcher compares bound
// textures by identity.
type Resource interface {
	// Valid reports whether the handle still refers to a live device object.
	Valid() bool
}

// Texture is a sampled 2D image.
type Texture interface {
	Resource
	Size() (width, height int)
}

// RenderTarget is a texture the device can render into.
type RenderTarget interface {
	Texture
	// Texture returns the handle used to sample the target's contents.
	Texture() Texture
}

// Mesh is pre-built 3D geometry with its own material.
type Mesh interface {
	Resource
}

// ParameterKind is the type of an effect parameter.
type ParameterKind uint8

const (
	ParamFloat ParameterKind = iota
	ParamFloat2
	ParamFloat3
	ParamFloat4
	ParamTexture
)

func (k ParameterKind) String() string {
	switch k {
	case ParamFloat:
		return "float"
	case ParamFloat2:
		return "float2"
	case ParamFloat3:
		return "float3"
	case ParamFloat4:
		return "float4"
	case ParamTexture:
		return "texture2d"
	}
	return "unknown"
}

// ParseParameterKind looks a parameter kind up by its String name.
func ParseParameterKind(name string) (ParameterKind, bool) {
	for k := ParamFloat; k <= ParamTexture; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Components returns the number of floats a vector parameter holds.
func (k ParameterKind) Components() int {
	if k <= ParamFloat4 {
		return int(k) + 1
	}
	return 0
}

// ParameterDesc describes one parameter declared by an effect.
type ParameterDesc struct {
	Name string
	Kind ParameterKind
}

// Effect is a full-screen shader pass.
type Effect interface {
	Resource
	Parameters() []ParameterDesc
}

// EffectValue is a parameter value ready to bind.
type EffectValue struct {
	Name    string
	Kind    ParameterKind
	Floats  [4]float32
	Texture Texture
	Sampler SamplerState
}

// Lighting is the material state applied to a mesh draw.
type Lighting struct {
	AmbientColor      Vector3
	AmbientBrightness float32
	LightDirection    Vector3
	LightColor        Vector3
	LightBrightness   float32
}

// DefaultLighting is full-bright ambient with no directional light.
func DefaultLighting() Lighting {
	return Lighting{
		AmbientColor:      Vector3{X: 1, Y: 1, Z: 1},
		AmbientBrightness: 1,
		LightDirection:    Vector3{X: 0, Y: -1, Z: 0},
	}
}

// Capabilities are the limits a device reports at creation.
type Capabilities struct {
	Level                Level
	MaxVerticesPerSubmit int
	MaxTextureSize       int
}

// Device is the minimal surface the batcher needs from a graphics device.
// Every method is synchronous; errors indicate a device malfunction.
type Device interface {
	Capabilities() Capabilities

	UpdateVertexBuffer(vertices []Vertex) error
	UpdateIndexBuffer(indices []Index) error

	BindPipelineState(state PipelineState) error
	BindTexture(texture Texture) error
	BindSampler(sampler SamplerState) error

	SetViewport(box Box) error
	SetScissor(rect Rect) error
	// SetRenderTarget binds the output; nil selects the back buffer.
	SetRenderTarget(target RenderTarget) error
	SetProjection(view, projection Matrix) error

	Clear(color uint32) error
	ClearDepth(z float32) error

	// Submit draws indexed triangles from the uploaded buffers.
	Submit(vertices, indices Range) error
	// SubmitEffect binds the parameters and draws one full-screen quad.
	SubmitEffect(effect Effect, blend BlendState, values []EffectValue) error
	DrawMesh(mesh Mesh, world Matrix, lighting Lighting) error
}
