package render

import (
	"fmt"

	"stg-renderer/internal/gfx"
)

// SetOrtho flushes and switches to an orthographic projection of box.
func (r *Renderer) SetOrtho(box gfx.Box) error {
	if box.Width() == 0 || box.Height() == 0 || box.MaxZ == box.MinZ {
		return fmt.Errorf("%w: degenerate ortho box %+v", ErrInvalidArgument, box)
	}
	if err := r.flush("projection"); err != nil {
		return err
	}
	return deviceError("SetProjection", r.device.SetProjection(gfx.Identity(), gfx.Ortho(box)))
}

// SetPerspective flushes and switches to a perspective camera. fovy is in
// radians; 0 < znear < zfar is required.
func (r *Renderer) SetPerspective(eye, lookat, up gfx.Vector3, fovy, aspect, znear, zfar float32) error {
	switch {
	case !(znear > 0 && znear < zfar):
		return fmt.Errorf("%w: perspective range [%g, %g]", ErrInvalidArgument, znear, zfar)
	case fovy <= 0 || aspect <= 0:
		return fmt.Errorf("%w: perspective fov %g aspect %g", ErrInvalidArgument, fovy, aspect)
	case eye == lookat:
		return fmt.Errorf("%w: eye and lookat coincide", ErrInvalidArgument)
	}
	if err := r.flush("projection"); err != nil {
		return err
	}
	view := gfx.LookAt(eye, lookat, up)
	proj := gfx.Perspective(fovy, aspect, znear, zfar)
	return deviceError("SetProjection", r.device.SetProjection(view, proj))
}

// ClearRenderTarget flushes and clears the current output to color.
func (r *Renderer) ClearRenderTarget(color uint32) error {
	if err := r.flush("clear"); err != nil {
		return err
	}
	return deviceError("Clear", r.device.Clear(color))
}

// ClearDepthBuffer flushes and clears the depth buffer to z.
func (r *Renderer) ClearDepthBuffer(z float32) error {
	if err := r.flush("clear depth"); err != nil {
		return err
	}
	return deviceError("ClearDepth", r.device.ClearDepth(z))
}
