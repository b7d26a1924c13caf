// Package gfxtest provides a gfx.Device that records every call instead of
// drawing, plus fake resource handles, for tests of code driving a device.
package gfxtest

import (
	"fmt"
	"slices"

	"stg-renderer/internal/gfx"
)

// Texture is a fake texture handle.
type Texture struct {
	Name          string
	Width, Height int
	Released      bool
}

func NewTexture(name string, w, h int) *Texture {
	return &Texture{Name: name, Width: w, Height: h}
}

func (t *Texture) Valid() bool      { return t != nil && !t.Released }
func (t *Texture) Size() (int, int) { return t.Width, t.Height }
func (t *Texture) String() string   { return "texture:" + t.Name }

// RenderTarget is a fake render target; its sampled texture is itself.
type RenderTarget struct {
	Name          string
	Width, Height int
	Released      bool
}

func NewRenderTarget(name string, w, h int) *RenderTarget {
	return &RenderTarget{Name: name, Width: w, Height: h}
}

func (r *RenderTarget) Valid() bool          { return r != nil && !r.Released }
func (r *RenderTarget) Size() (int, int)     { return r.Width, r.Height }
func (r *RenderTarget) Texture() gfx.Texture { return r }
func (r *RenderTarget) String() string       { return "target:" + r.Name }

// Effect is a fake effect declaring a fixed parameter list.
type Effect struct {
	Name     string
	Params   []gfx.ParameterDesc
	Released bool
}

func NewEffect(name string, params ...gfx.ParameterDesc) *Effect {
	return &Effect{Name: name, Params: params}
}

func (e *Effect) Valid() bool                     { return e != nil && !e.Released }
func (e *Effect) Parameters() []gfx.ParameterDesc { return e.Params }

// Mesh is a fake mesh handle.
type Mesh struct {
	Name     string
	Released bool
}

func (m *Mesh) Valid() bool { return m != nil && !m.Released }

// Submission is one recorded Submit call with the state bound at that moment.
type Submission struct {
	Vertices []gfx.Vertex
	Indices  []gfx.Index
	State    gfx.PipelineState
	Texture  gfx.Texture
	Sampler  gfx.SamplerState
	Target   gfx.RenderTarget
	Viewport gfx.Box
	Scissor  gfx.Rect
}

// Triangles returns the number of triangles drawn.
func (s Submission) Triangles() int { return len(s.Indices) / 3 }

// EffectCall is one recorded SubmitEffect call.
type EffectCall struct {
	Effect gfx.Effect
	Blend  gfx.BlendState
	Values []gfx.EffectValue
	Target gfx.RenderTarget
}

// MeshCall is one recorded DrawMesh call.
type MeshCall struct {
	Mesh     gfx.Mesh
	World    gfx.Matrix
	Lighting gfx.Lighting
	Target   gfx.RenderTarget
}

// Recorder implements gfx.Device by recording calls.
type Recorder struct {
	Caps gfx.Capabilities

	// Fail, when set, is consulted before every call; a non-nil result is
	// returned as the device error.
	Fail func(op string) error

	Calls       []string
	Submissions []Submission
	Effects     []EffectCall
	Meshes      []MeshCall
	Clears      []uint32
	DepthClears []float32
	Projections [][2]gfx.Matrix

	vertices []gfx.Vertex
	indices  []gfx.Index
	state    gfx.PipelineState
	texture  gfx.Texture
	sampler  gfx.SamplerState
	target   gfx.RenderTarget
	viewport gfx.Box
	scissor  gfx.Rect
}

// NewRecorder returns a recorder reporting the full 16-bit batch limit.
func NewRecorder() *Recorder {
	return &Recorder{
		Caps: gfx.Capabilities{
			Level:                gfx.LevelGL33,
			MaxVerticesPerSubmit: gfx.MaxBatchVertices,
			MaxTextureSize:       4096,
		},
	}
}

func (r *Recorder) call(op string) error {
	r.Calls = append(r.Calls, op)
	if r.Fail != nil {
		if err := r.Fail(op); err != nil {
			return err
		}
	}
	return nil
}

// FailOn returns a Fail hook that fails every call named op.
func FailOn(op string, err error) func(string) error {
	return func(got string) error {
		if got == op {
			return err
		}
		return nil
	}
}

// Target returns the currently bound output, nil for the back buffer.
func (r *Recorder) Target() gfx.RenderTarget { return r.target }

// Viewport returns the currently bound viewport.
func (r *Recorder) Viewport() gfx.Box { return r.viewport }

// Scissor returns the currently bound scissor rect.
func (r *Recorder) Scissor() gfx.Rect { return r.scissor }

// CallsNamed counts the recorded calls with the given name.
func (r *Recorder) CallsNamed(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far, keeping the bound state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Submissions = nil
	r.Effects = nil
	r.Meshes = nil
	r.Clears = nil
	r.DepthClears = nil
	r.Projections = nil
}

func (r *Recorder) Capabilities() gfx.Capabilities { return r.Caps }

func (r *Recorder) UpdateVertexBuffer(vertices []gfx.Vertex) error {
	if err := r.call("UpdateVertexBuffer"); err != nil {
		return err
	}
	r.vertices = slices.Clone(vertices)
	return nil
}

func (r *Recorder) UpdateIndexBuffer(indices []gfx.Index) error {
	if err := r.call("UpdateIndexBuffer"); err != nil {
		return err
	}
	r.indices = slices.Clone(indices)
	return nil
}

func (r *Recorder) BindPipelineState(state gfx.PipelineState) error {
	if err := r.call("BindPipelineState"); err != nil {
		return err
	}
	r.state = state
	return nil
}

func (r *Recorder) BindTexture(texture gfx.Texture) error {
	if err := r.call("BindTexture"); err != nil {
		return err
	}
	r.texture = texture
	return nil
}

func (r *Recorder) BindSampler(sampler gfx.SamplerState) error {
	if err := r.call("BindSampler"); err != nil {
		return err
	}
	r.sampler = sampler
	return nil
}

func (r *Recorder) SetViewport(box gfx.Box) error {
	if err := r.call("SetViewport"); err != nil {
		return err
	}
	r.viewport = box
	return nil
}

func (r *Recorder) SetScissor(rect gfx.Rect) error {
	if err := r.call("SetScissor"); err != nil {
		return err
	}
	r.scissor = rect
	return nil
}

func (r *Recorder) SetRenderTarget(target gfx.RenderTarget) error {
	if err := r.call("SetRenderTarget"); err != nil {
		return err
	}
	r.target = target
	return nil
}

func (r *Recorder) SetProjection(view, projection gfx.Matrix) error {
	if err := r.call("SetProjection"); err != nil {
		return err
	}
	r.Projections = append(r.Projections, [2]gfx.Matrix{view, projection})
	return nil
}

func (r *Recorder) Clear(color uint32) error {
	if err := r.call("Clear"); err != nil {
		return err
	}
	r.Clears = append(r.Clears, color)
	return nil
}

func (r *Recorder) ClearDepth(z float32) error {
	if err := r.call("ClearDepth"); err != nil {
		return err
	}
	r.DepthClears = append(r.DepthClears, z)
	return nil
}

func (r *Recorder) Submit(vertices, indices gfx.Range) error {
	if err := r.call("Submit"); err != nil {
		return err
	}
	if vertices.Offset+vertices.Count > len(r.vertices) || indices.Offset+indices.Count > len(r.indices) {
		return fmt.Errorf("submit out of uploaded range: vertices %+v of %d, indices %+v of %d",
			vertices, len(r.vertices), indices, len(r.indices))
	}
	r.Submissions = append(r.Submissions, Submission{
		Vertices: slices.Clone(r.vertices[vertices.Offset : vertices.Offset+vertices.Count]),
		Indices:  slices.Clone(r.indices[indices.Offset : indices.Offset+indices.Count]),
		State:    r.state,
		Texture:  r.texture,
		Sampler:  r.sampler,
		Target:   r.target,
		Viewport: r.viewport,
		Scissor:  r.scissor,
	})
	return nil
}

func (r *Recorder) SubmitEffect(effect gfx.Effect, blend gfx.BlendState, values []gfx.EffectValue) error {
	if err := r.call("SubmitEffect"); err != nil {
		return err
	}
	r.Effects = append(r.Effects, EffectCall{
		Effect: effect,
		Blend:  blend,
		Values: slices.Clone(values),
		Target: r.target,
	})
	return nil
}

func (r *Recorder) DrawMesh(mesh gfx.Mesh, world gfx.Matrix, lighting gfx.Lighting) error {
	if err := r.call("DrawMesh"); err != nil {
		return err
	}
	r.Meshes = append(r.Meshes, MeshCall{Mesh: mesh, World: world, Lighting: lighting, Target: r.target})
	return nil
}

var _ gfx.Device = (*Recorder)(nil)
