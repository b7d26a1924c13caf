package render

import (
	"fmt"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

// Frame is one entry of the render target stack. A nil Target is the back
// buffer.
type Frame struct {
	Target   gfx.RenderTarget
	Viewport gfx.Box
	Scissor  gfx.Rect
}

// TargetStack is the stack of output frames. It is never empty: the base
// frame sits below every pushed frame.
type TargetStack struct {
	frames []Frame
}

func NewTargetStack(base Frame) TargetStack {
	return TargetStack{frames: []Frame{base}}
}

func (s *TargetStack) Top() Frame { return s.frames[len(s.frames)-1] }

// Depth is the number of frames pushed above the base frame.
func (s *TargetStack) Depth() int { return len(s.frames) - 1 }

func (s *TargetStack) Push(f Frame) { s.frames = append(s.frames, f) }

func (s *TargetStack) Pop() (Frame, error) {
	if len(s.frames) == 1 {
		return Frame{}, ErrStackEmpty
	}
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = Frame{}
	s.frames = s.frames[:len(s.frames)-1]
	return top, nil
}

// ReplaceTop swaps the viewport and scissor of the top frame.
func (s *TargetStack) ReplaceTop(viewport gfx.Box, scissor gfx.Rect) {
	top := &s.frames[len(s.frames)-1]
	top.Viewport = viewport
	top.Scissor = scissor
}

// SetBase swaps the viewport and scissor of the base frame.
func (s *TargetStack) SetBase(viewport gfx.Box, scissor gfx.Rect) {
	s.frames[0].Viewport = viewport
	s.frames[0].Scissor = scissor
}

// Contains reports whether tex is the output of any frame on the stack.
func (s *TargetStack) Contains(tex gfx.Texture) bool {
	if tex == nil {
		return false
	}
	for _, f := range s.frames {
		if f.Target == nil {
			continue
		}
		if gfx.Texture(f.Target) == tex || f.Target.Texture() == tex {
			return true
		}
	}
	return false
}

// TargetFrame returns a frame covering the whole target.
func TargetFrame(target gfx.RenderTarget) Frame {
	w, h := target.Size()
	return Frame{
		Target:   target,
		Viewport: gfx.NewBox(float32(w), float32(h)),
		Scissor:  gfx.NewRect(float32(w), float32(h)),
	}
}

// PushRenderTarget flushes pending geometry and makes target the output.
// An open batch stays open.
func (r *Renderer) PushRenderTarget(target gfx.RenderTarget, viewport gfx.Box, scissor gfx.Rect) error {
	if target == nil || !target.Valid() {
		return fmt.Errorf("%w: render target", ErrUnknownResource)
	}
	if err := r.flush("push target"); err != nil {
		return err
	}
	r.targets.Push(Frame{Target: target, Viewport: viewport, Scissor: scissor})
	r.stats.TargetSwitches++
	utils.Debug("Render: push target (depth %d)", r.targets.Depth())
	return r.bindFrame(r.targets.Top())
}

// PushRenderTargetFull pushes target with a viewport and scissor covering it.
func (r *Renderer) PushRenderTargetFull(target gfx.RenderTarget) error {
	if target == nil || !target.Valid() {
		return fmt.Errorf("%w: render target", ErrUnknownResource)
	}
	f := TargetFrame(target)
	return r.PushRenderTarget(target, f.Viewport, f.Scissor)
}

// PopRenderTarget flushes and restores the previous frame.
func (r *Renderer) PopRenderTarget() error {
	if r.targets.Depth() == 0 {
		return ErrStackEmpty
	}
	if err := r.flush("pop target"); err != nil {
		return err
	}
	if _, err := r.targets.Pop(); err != nil {
		return err
	}
	r.stats.TargetSwitches++
	utils.Debug("Render: pop target (depth %d)", r.targets.Depth())
	return r.bindFrame(r.targets.Top())
}

// Frame returns the current top of the render target stack.
func (r *Renderer) Frame() Frame { return r.targets.Top() }

// OutputSize is the pixel size of the current output: the top target, or
// the base viewport extent for the back buffer.
func (r *Renderer) OutputSize() (width, height float32) {
	f := r.targets.Top()
	if f.Target != nil {
		w, h := f.Target.Size()
		return float32(w), float32(h)
	}
	base := r.targets.frames[0].Viewport
	return base.MaxX, base.MaxY
}

// TargetDepth is the number of pushed render targets.
func (r *Renderer) TargetDepth() int { return r.targets.Depth() }

// SetViewport replaces the viewport of the current frame.
func (r *Renderer) SetViewport(viewport gfx.Box) error {
	if err := r.flush("viewport"); err != nil {
		return err
	}
	top := r.targets.Top()
	r.targets.ReplaceTop(viewport, top.Scissor)
	return deviceError("SetViewport", r.device.SetViewport(viewport))
}

// SetScissorRect replaces the scissor rect of the current frame.
func (r *Renderer) SetScissorRect(scissor gfx.Rect) error {
	if err := r.flush("scissor"); err != nil {
		return err
	}
	top := r.targets.Top()
	r.targets.ReplaceTop(top.Viewport, scissor)
	return deviceError("SetScissor", r.device.SetScissor(scissor))
}

// ResizeBase updates the back buffer frame, typically after a window
// resize. The device is rebound only when the base frame is on top.
func (r *Renderer) ResizeBase(viewport gfx.Box, scissor gfx.Rect) error {
	if r.targets.Depth() > 0 {
		r.targets.SetBase(viewport, scissor)
		return nil
	}
	if err := r.flush("resize"); err != nil {
		return err
	}
	r.targets.SetBase(viewport, scissor)
	return r.bindFrame(r.targets.Top())
}

func (r *Renderer) bindFrame(f Frame) error {
	if err := r.device.SetRenderTarget(f.Target); err != nil {
		return deviceError("SetRenderTarget", err)
	}
	if err := r.device.SetViewport(f.Viewport); err != nil {
		return deviceError("SetViewport", err)
	}
	return deviceError("SetScissor", r.device.SetScissor(f.Scissor))
}
