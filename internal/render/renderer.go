// Package render batches immediate-mode 2D draws into as few device
// submissions as possible while keeping caller order, and manages render
// target switching, post effects and mesh draws around those batches.
package render

import (
	"errors"
	"fmt"
	"strings"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

// Options configures a Renderer.
type Options struct {
	// BaseViewport and BaseScissor describe the back buffer frame.
	BaseViewport gfx.Box
	BaseScissor  gfx.Rect
	// MaxVertices lowers the per-batch vertex limit; 0 uses the device limit.
	MaxVertices int
	// Defaults is the state Begin opens with; nil means DefaultDrawState.
	Defaults *DrawState
}

// Renderer is the batch controller. It is not safe for concurrent use.
type Renderer struct {
	device  gfx.Device
	acc     *Accumulator
	tracker StateTracker
	targets TargetStack
	initial DrawState
	open    bool
	stats   Stats
}

// New creates a renderer driving device. The vertex limit is the smallest of
// gfx.MaxBatchVertices, the device's MaxVerticesPerSubmit and opts.MaxVertices.
func New(device gfx.Device, opts Options) (*Renderer, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidArgument)
	}
	limit := gfx.MaxBatchVertices
	if caps := device.Capabilities(); caps.MaxVerticesPerSubmit > 0 && caps.MaxVerticesPerSubmit < limit {
		limit = caps.MaxVerticesPerSubmit
	}
	if opts.MaxVertices > 0 && opts.MaxVertices < limit {
		limit = opts.MaxVertices
	}
	initial := DefaultDrawState()
	if opts.Defaults != nil {
		if err := opts.Defaults.validate(); err != nil {
			return nil, err
		}
		initial = *opts.Defaults
	}

	r := &Renderer{
		device: device,
		acc:    NewAccumulator(limit),
		targets: NewTargetStack(Frame{
			Viewport: opts.BaseViewport,
			Scissor:  opts.BaseScissor,
		}),
		initial: initial,
	}
	r.tracker.Reset(initial)
	utils.Debug("Render: renderer created (level %v, %d vertices per batch)", device.Capabilities().Level, limit)
	return r, nil
}

func (r *Renderer) Device() gfx.Device { return r.device }

// BatchLimit is the maximum number of vertices in one submission.
func (r *Renderer) BatchLimit() int { return r.acc.Limit() }

// InScope reports whether a batch scope is open.
func (r *Renderer) InScope() bool { return r.open }

// DrawState returns the pending state.
func (r *Renderer) DrawState() DrawState { return r.tracker.Pending }

// Begin opens a batch scope with the default state and binds the current
// output frame.
func (r *Renderer) Begin() error {
	if r.open {
		return scopeError("Begin", true)
	}
	if err := r.bindFrame(r.targets.Top()); err != nil {
		return err
	}
	r.acc.Reset()
	r.tracker.Reset(r.initial)
	r.open = true
	return nil
}

// End flushes the remaining geometry and closes the scope. The scope is
// closed even when the final flush fails.
func (r *Renderer) End() error {
	if !r.open {
		return scopeError("End", false)
	}
	err := r.flush("end")
	r.open = false
	return err
}

// Flush submits the accumulated geometry as one draw call. It is a no-op
// when nothing is pending.
func (r *Renderer) Flush() error {
	return r.flush("explicit")
}

func (r *Renderer) flush(reason string) error {
	if r.acc.Empty() {
		return nil
	}
	err := r.submit()
	if err != nil {
		utils.Error("Render: flush (%s) failed, dropping %d vertices: %v", reason, len(r.acc.Vertices()), err)
	} else {
		utils.Debug("Render: flush (%s) %d vertices, %d indices", reason, len(r.acc.Vertices()), len(r.acc.Indices()))
	}
	r.acc.Reset()
	return err
}

func (r *Renderer) submit() error {
	s := r.tracker.Submitted()
	vertices, indices := r.acc.Vertices(), r.acc.Indices()

	if err := r.device.BindPipelineState(s.Pipeline()); err != nil {
		return deviceError("BindPipelineState", err)
	}
	if err := r.device.BindTexture(s.Texture); err != nil {
		return deviceError("BindTexture", err)
	}
	if err := r.device.BindSampler(s.Sampler); err != nil {
		return deviceError("BindSampler", err)
	}
	if err := r.device.UpdateVertexBuffer(vertices); err != nil {
		return deviceError("UpdateVertexBuffer", err)
	}
	if err := r.device.UpdateIndexBuffer(indices); err != nil {
		return deviceError("UpdateIndexBuffer", err)
	}
	err := r.device.Submit(gfx.Range{Count: len(vertices)}, gfx.Range{Count: len(indices)})
	if err != nil {
		return deviceError("Submit", err)
	}

	r.stats.Submissions++
	r.stats.Vertices += len(vertices)
	r.stats.Indices += len(indices)
	return nil
}

// syncState flushes under the old state when the pending state has diverged
// from the submitted one, then commits the pending state.
func (r *Renderer) syncState() error {
	if r.tracker.Matches(r.tracker.Pending) {
		return nil
	}
	if utils.DebugMode {
		utils.Debug("Render: state change %s", strings.Join(r.tracker.Submitted().Changed(r.tracker.Pending), ", "))
	}
	if err := r.flush("state change"); err != nil {
		return err
	}
	r.tracker.Commit(r.tracker.Pending)
	r.stats.StateChanges++
	return nil
}

// reserve makes room for a draw, flushing once if the batch is full.
func (r *Renderer) reserve(op string, vertexCount, indexCount int) (Reservation, error) {
	if !r.open {
		return Reservation{}, scopeError(op, false)
	}
	if vertexCount > r.acc.Limit() {
		return Reservation{}, fmt.Errorf("%w: %s with %d vertices, limit %d", ErrBatchTooLarge, op, vertexCount, r.acc.Limit())
	}
	// The pending texture may have been pushed as an output since it was bound.
	if r.targets.Contains(r.tracker.Pending.Texture) {
		return Reservation{}, fmt.Errorf("%w: %s samples the current output", ErrTargetInUse, op)
	}
	if err := r.syncState(); err != nil {
		return Reservation{}, err
	}
	res, err := r.acc.Reserve(vertexCount, indexCount)
	if errors.Is(err, ErrCapacityExceeded) {
		if err := r.flush("capacity"); err != nil {
			return Reservation{}, err
		}
		res, err = r.acc.Reserve(vertexCount, indexCount)
	}
	return res, err
}

var (
	triangleIndices = [3]gfx.Index{0, 1, 2}
	quadIndices     = [6]gfx.Index{0, 1, 2, 0, 2, 3}
)

func (r *Renderer) appendGeometry(op string, vertices []gfx.Vertex, indices []gfx.Index) error {
	res, err := r.reserve(op, len(vertices), len(indices))
	if err != nil {
		return err
	}
	copy(res.Vertices, vertices)
	for i, idx := range indices {
		res.Indices[i] = gfx.Index(res.Base + int(idx))
	}
	return nil
}

// DrawTriangle appends one triangle under the pending state.
func (r *Renderer) DrawTriangle(v0, v1, v2 gfx.Vertex) error {
	vertices := [3]gfx.Vertex{v0, v1, v2}
	return r.appendGeometry("DrawTriangle", vertices[:], triangleIndices[:])
}

// DrawQuad appends two triangles, (v0,v1,v2) and (v0,v2,v3).
func (r *Renderer) DrawQuad(v0, v1, v2, v3 gfx.Vertex) error {
	vertices := [4]gfx.Vertex{v0, v1, v2, v3}
	return r.appendGeometry("DrawQuad", vertices[:], quadIndices[:])
}

// DrawRaw appends an indexed triangle list. Indices are relative to
// vertices[0] and must be in range.
func (r *Renderer) DrawRaw(vertices []gfx.Vertex, indices []gfx.Index) error {
	if !r.open {
		return scopeError("DrawRaw", false)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: DrawRaw index count %d is not a multiple of 3", ErrInvalidArgument, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("%w: DrawRaw index %d at %d out of range (%d vertices)", ErrInvalidArgument, idx, i, len(vertices))
		}
	}
	if len(indices) == 0 {
		return nil
	}
	return r.appendGeometry("DrawRaw", vertices, indices)
}

// DrawRequest reserves space for the caller to fill in place. Indices
// written to the reservation must be offset by its Base.
func (r *Renderer) DrawRequest(vertexCount, indexCount int) (Reservation, error) {
	if vertexCount < 0 || indexCount < 0 || indexCount%3 != 0 || (indexCount > 0 && vertexCount == 0) {
		return Reservation{}, fmt.Errorf("%w: DrawRequest %d vertices, %d indices", ErrInvalidArgument, vertexCount, indexCount)
	}
	return r.reserve("DrawRequest", vertexCount, indexCount)
}

func (r *Renderer) checkOpen(op string) error {
	if !r.open {
		return scopeError(op, false)
	}
	return nil
}

// SetVertexColorBlend sets the pending vertex color blend.
func (r *Renderer) SetVertexColorBlend(v gfx.VertexColorBlend) error {
	if err := r.checkOpen("SetVertexColorBlend"); err != nil {
		return err
	}
	if !v.Valid() {
		return fmt.Errorf("%w: vertex color blend %v", ErrInvalidArgument, v)
	}
	r.tracker.Pending.VertexColor = v
	return nil
}

// SetFog sets the pending fog.
func (r *Renderer) SetFog(fog gfx.Fog) error {
	if err := r.checkOpen("SetFog"); err != nil {
		return err
	}
	if !fog.Mode.Valid() {
		return fmt.Errorf("%w: fog mode %v", ErrInvalidArgument, fog.Mode)
	}
	r.tracker.Pending.Fog = fog
	return nil
}

// SetDepth sets the pending depth test state.
func (r *Renderer) SetDepth(d gfx.DepthState) error {
	if err := r.checkOpen("SetDepth"); err != nil {
		return err
	}
	if !d.Valid() {
		return fmt.Errorf("%w: depth state %v", ErrInvalidArgument, d)
	}
	r.tracker.Pending.Depth = d
	return nil
}

// SetBlend sets the pending blend state.
func (r *Renderer) SetBlend(b gfx.BlendState) error {
	if err := r.checkOpen("SetBlend"); err != nil {
		return err
	}
	if !b.Valid() {
		return fmt.Errorf("%w: blend state %v", ErrInvalidArgument, b)
	}
	r.tracker.Pending.Blend = b
	return nil
}

// SetTexture sets the pending texture; nil draws untextured.
func (r *Renderer) SetTexture(tex gfx.Texture) error {
	if err := r.checkOpen("SetTexture"); err != nil {
		return err
	}
	if err := r.checkTexture(tex); err != nil {
		return err
	}
	r.tracker.Pending.Texture = tex
	return nil
}

// SetSampler sets the pending sampler state.
func (r *Renderer) SetSampler(s gfx.SamplerState) error {
	if err := r.checkOpen("SetSampler"); err != nil {
		return err
	}
	if !s.Valid() {
		return fmt.Errorf("%w: sampler state %v", ErrInvalidArgument, s)
	}
	r.tracker.Pending.Sampler = s
	return nil
}

// SetDrawState replaces every axis of the pending state at once.
func (r *Renderer) SetDrawState(s DrawState) error {
	if err := r.checkOpen("SetDrawState"); err != nil {
		return err
	}
	if err := s.validate(); err != nil {
		return err
	}
	if err := r.checkTexture(s.Texture); err != nil {
		return err
	}
	r.tracker.Pending = s
	return nil
}

func (r *Renderer) checkTexture(tex gfx.Texture) error {
	if tex == nil {
		return nil
	}
	if !tex.Valid() {
		return fmt.Errorf("%w: texture handle is no longer valid", ErrUnknownResource)
	}
	if r.targets.Contains(tex) {
		return ErrTargetInUse
	}
	return nil
}
