package render

import (
	"fmt"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/utils"
)

// Model is a mesh with the lighting it is drawn under.
type Model struct {
	Name     string
	Mesh     gfx.Mesh
	Lighting gfx.Lighting
}

// Transform places a model: scale first, then rotation, then translation.
// Angles are radians. When UseQuaternion is set, Quaternion replaces the
// roll/pitch/yaw angles.
type Transform struct {
	Position         gfx.Vector3
	Roll, Pitch, Yaw float32
	Quaternion       gfx.Vector4
	UseQuaternion    bool
	Scale            gfx.Vector3
}

// NewTransform returns a transform at pos with unit scale and no rotation.
func NewTransform(pos gfx.Vector3) Transform {
	return Transform{Position: pos, Scale: gfx.Vector3{X: 1, Y: 1, Z: 1}}
}

// Matrix returns translation * rotation * scale.
func (t Transform) Matrix() gfx.Matrix {
	rotation := gfx.RotationRollPitchYaw(t.Roll, t.Pitch, t.Yaw)
	if t.UseQuaternion {
		rotation = gfx.RotationQuaternion(t.Quaternion)
	}
	return gfx.Translation(t.Position).Mul(rotation).Mul(gfx.Scaling(t.Scale))
}

// DrawModel draws the model's mesh directly, outside batching. Pending 2D
// geometry is flushed first so it stays underneath; the pending 2D state is
// not touched. No batch scope is required.
func (r *Renderer) DrawModel(model Model, t Transform) error {
	if model.Mesh == nil || !model.Mesh.Valid() {
		return fmt.Errorf("%w: model %q", ErrUnknownResource, model.Name)
	}
	if err := r.flush("model"); err != nil {
		return err
	}
	if err := r.device.DrawMesh(model.Mesh, t.Matrix(), model.Lighting); err != nil {
		return deviceError("DrawMesh", err)
	}
	r.stats.Models++
	utils.Debug("Render: model %q at (%.1f, %.1f, %.1f)", model.Name, t.Position.X, t.Position.Y, t.Position.Z)
	return nil
}
