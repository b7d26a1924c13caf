// Package rldevice implements gfx.Device on top of raylib's rlgl layer.
// It must be created after the window and used from the main thread.
package rldevice

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

// Options configure device creation.
type Options struct {
	// Levels is the preference order for capability negotiation.
	Levels []gfx.Level
	// MaxTextureSize caps uploads; raylib does not report the GL limit.
	MaxTextureSize int
}

type Device struct {
	caps    gfx.Capabilities
	probed  gfx.Level
	builtin builtinShader
	white   *Texture

	vertices []gfx.Vertex
	indices  []gfx.Index

	pipeline gfx.PipelineState
	bound    *Texture
	sampler  gfx.SamplerState

	target    *RenderTarget
	viewport  gfx.Box
	scissor   bool
	view      gfx.Matrix
	proj      gfx.Matrix
	projected bool

	warnedDepth bool
}

var _ gfx.Device = (*Device)(nil)

// New negotiates a capability level against the running context and loads
// the builtin resources.
func New(opts Options) (*Device, error) {
	levels := opts.Levels
	if len(levels) == 0 {
		levels = gfx.DefaultLevels()
	}
	probed := levelFromVersion(rl.GetVersion())
	level, err := gfx.NegotiateLevel(levels, func(l gfx.Level) bool { return supports(probed, l) })
	if err != nil {
		return nil, fmt.Errorf("rlgl context is %s: %w", probed, err)
	}
	if opts.MaxTextureSize <= 0 {
		opts.MaxTextureSize = 4096
	}

	d := &Device{
		caps: gfx.Capabilities{
			Level:                level,
			MaxVerticesPerSubmit: gfx.MaxBatchVertices,
			MaxTextureSize:       opts.MaxTextureSize,
		},
		probed:  probed,
		sampler: gfx.SamplerLinearClamp,
		view:    gfx.Identity(),
		proj:    gfx.Identity(),
	}

	img := rl.GenImageColor(1, 1, rl.White)
	white := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	d.white = &Texture{Name: "white", tex: white}

	if level > gfx.LevelGL11 {
		if d.builtin, err = loadBuiltin(level); err != nil {
			rl.UnloadTexture(white)
			return nil, err
		}
	} else {
		utils.Warn("Device: %s has no shaders, vertex color and fog modes are ignored", level)
	}

	utils.Info("Device: negotiated %s (context %s)", level, probed)
	return d, nil
}

// Close frees the builtin resources.
func (d *Device) Close() {
	d.builtin.unload()
	rl.UnloadTexture(d.white.tex)
}

func (d *Device) Capabilities() gfx.Capabilities { return d.caps }

func (d *Device) UpdateVertexBuffer(vertices []gfx.Vertex) error {
	d.vertices = append(d.vertices[:0], vertices...)
	return nil
}

func (d *Device) UpdateIndexBuffer(indices []gfx.Index) error {
	d.indices = append(d.indices[:0], indices...)
	return nil
}

func (d *Device) BindPipelineState(state gfx.PipelineState) error {
	if !state.Blend.Valid() || !state.VertexColor.Valid() || !state.Fog.Mode.Valid() {
		return fmt.Errorf("invalid pipeline state %+v", state)
	}
	d.pipeline = state
	return nil
}

func (d *Device) BindTexture(texture gfx.Texture) error {
	tex, err := d.texture(texture)
	if err != nil {
		return err
	}
	d.bound = tex
	return nil
}

func (d *Device) BindSampler(sampler gfx.SamplerState) error {
	if !sampler.Valid() {
		return fmt.Errorf("invalid sampler %v", sampler)
	}
	d.sampler = sampler
	return nil
}

// framebufferHeight is the height of the current output in pixels.
func (d *Device) framebufferHeight() int {
	if d.target != nil {
		_, h := d.target.Size()
		return h
	}
	return rl.GetScreenHeight()
}

func (d *Device) SetViewport(box gfx.Box) error {
	d.viewport = box
	rl.Viewport(glViewport(box, d.framebufferHeight()))
	return nil
}

func (d *Device) SetScissor(rect gfx.Rect) error {
	if d.scissor {
		rl.EndScissorMode()
	}
	rl.BeginScissorMode(scissorRect(rect))
	d.scissor = true
	return nil
}

func (d *Device) SetRenderTarget(target gfx.RenderTarget) error {
	var rt *RenderTarget
	if target != nil {
		var ok bool
		if rt, ok = target.(*RenderTarget); !ok {
			return fmt.Errorf("foreign render target handle %T", target)
		}
		if !rt.Valid() {
			return fmt.Errorf("render target %s was released", rt.Name)
		}
	}
	if d.scissor {
		rl.EndScissorMode()
		d.scissor = false
	}
	if d.target != nil {
		rl.EndTextureMode()
	}
	d.target = rt
	if rt != nil {
		rl.BeginTextureMode(rt.rt)
	}
	return nil
}

func (d *Device) SetProjection(view, projection gfx.Matrix) error {
	d.view, d.proj, d.projected = view, projection, true
	return nil
}

// matrices returns the view and projection for the next draw. Without an
// explicit projection the viewport is mapped y-up. Offscreen output is
// flipped so target textures sample upright.
func (d *Device) matrices() (gfx.Matrix, gfx.Matrix) {
	view, proj := d.view, d.proj
	if !d.projected {
		view, proj = gfx.Identity(), gfx.Ortho(d.viewport)
	}
	if d.target != nil {
		proj = gfx.Scaling(gfx.Vector3{X: 1, Y: -1, Z: 1}).Mul(proj)
	}
	return view, proj
}

// beginPass loads the draw matrices and returns a func restoring the ones
// raylib had set.
func (d *Device) beginPass(view, proj gfx.Matrix) func() {
	rl.DrawRenderBatchActive()
	prevView, prevProj := rl.GetMatrixModelview(), rl.GetMatrixProjection()
	rl.SetMatrixProjection(toMatrix(proj))
	rl.SetMatrixModelview(toMatrix(view))
	return func() {
		rl.DrawRenderBatchActive()
		rl.SetMatrixProjection(prevProj)
		rl.SetMatrixModelview(prevView)
	}
}

func (d *Device) Clear(color uint32) error {
	rl.ClearBackground(toRGBA(color))
	return nil
}

// ClearDepth is covered by Clear, which clears depth with color; rlgl has
// no depth-only clear.
func (d *Device) ClearDepth(z float32) error {
	if !d.warnedDepth {
		utils.Debug("Device: depth-only clear unsupported, depth is cleared with color")
		d.warnedDepth = true
	}
	return nil
}

func (d *Device) Submit(vertices, indices gfx.Range) error {
	if vertices.Offset < 0 || vertices.Offset+vertices.Count > len(d.vertices) {
		return fmt.Errorf("vertex range %+v outside buffer of %d", vertices, len(d.vertices))
	}
	if indices.Offset < 0 || indices.Offset+indices.Count > len(d.indices) {
		return fmt.Errorf("index range %+v outside buffer of %d", indices, len(d.indices))
	}
	base := d.vertices[vertices.Offset : vertices.Offset+vertices.Count]
	idx := d.indices[indices.Offset : indices.Offset+indices.Count]
	for _, k := range idx {
		if int(k) >= len(base) {
			return fmt.Errorf("index %d outside vertex range %+v", k, vertices)
		}
	}
	tex := d.bound
	if tex == nil {
		tex = d.white
	}
	tex.useSampler(d.sampler)

	end := d.beginPass(d.matrices())
	defer end()
	if d.caps.Level > gfx.LevelGL11 {
		d.builtin.apply(d.pipeline)
		defer rl.EndShaderMode()
	}
	beginBlend(d.pipeline.Blend)
	defer endBlend()
	if d.pipeline.Depth == gfx.DepthEnable {
		rl.EnableDepthTest()
		defer rl.DisableDepthTest()
	}
	rl.DisableBackfaceCulling()
	defer rl.EnableBackfaceCulling()

	for i := 0; i+2 < len(idx); i += 3 {
		rl.CheckRenderBatchLimit(3)
		rl.SetTexture(tex.tex.ID)
		rl.Begin(rl.Triangles)
		for _, k := range idx[i : i+3] {
			v := base[k]
			a, r, g, b := gfx.UnpackARGB(v.Color)
			rl.Color4ub(r, g, b, a)
			rl.TexCoord2f(v.U, v.V)
			rl.Vertex3f(v.X, v.Y, v.Z)
		}
		rl.End()
	}
	rl.SetTexture(0)
	// draw before the deferred state resets run
	rl.DrawRenderBatchActive()
	return nil
}

// SubmitEffect draws one quad over the current viewport with the effect
// shader.
func (d *Device) SubmitEffect(effect gfx.Effect, blend gfx.BlendState, values []gfx.EffectValue) error {
	fx, ok := effect.(*Effect)
	if !ok {
		return fmt.Errorf("foreign effect handle %T", effect)
	}
	if !fx.Valid() {
		return fmt.Errorf("effect %s was released", fx.Name)
	}

	end := d.beginPass(gfx.Identity(), gfx.Identity())
	defer end()
	rl.BeginShaderMode(fx.shader)
	defer rl.EndShaderMode()
	for _, v := range values {
		if err := fx.bind(d, v); err != nil {
			return err
		}
	}
	beginBlend(blend)
	defer endBlend()
	rl.DisableBackfaceCulling()
	defer rl.EnableBackfaceCulling()

	// target textures hold their top row at v=0
	top, bottom := float32(0), float32(1)
	if d.target != nil {
		top, bottom = 1, 0
	}
	quad := [6][4]float32{
		{-1, 1, 0, top}, {1, 1, 1, top}, {1, -1, 1, bottom},
		{-1, 1, 0, top}, {1, -1, 1, bottom}, {-1, -1, 0, bottom},
	}
	rl.SetTexture(d.white.tex.ID)
	rl.Begin(rl.Triangles)
	for _, q := range quad {
		rl.Color4ub(255, 255, 255, 255)
		rl.TexCoord2f(q[2], q[3])
		rl.Vertex3f(q[0], q[1], 0)
	}
	rl.End()
	rl.SetTexture(0)
	rl.DrawRenderBatchActive()
	return nil
}

func (d *Device) DrawMesh(mesh gfx.Mesh, world gfx.Matrix, lighting gfx.Lighting) error {
	m, ok := mesh.(*Mesh)
	if !ok {
		return fmt.Errorf("foreign mesh handle %T", mesh)
	}
	if !m.Valid() {
		return fmt.Errorf("mesh %s was released", m.Name)
	}
	end := d.beginPass(d.matrices())
	defer end()
	rl.EnableDepthTest()
	defer rl.DisableDepthTest()

	m.model.Transform = toMatrix(world)
	rl.DrawModel(m.model, rl.Vector3{}, 1, lightingTint(lighting))
	return nil
}
