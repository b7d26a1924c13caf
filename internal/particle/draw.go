package particle

import (
	"fmt"

	"github.com/chewxy/math32"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/render"
)

func channel(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

// Tint is the particle's vertex color.
func (p *Particle) Tint() uint32 {
	return gfx.ARGB(channel(p.Alpha), channel(p.Color.X), channel(p.Color.Y), channel(p.Color.Z))
}

// Draw issues one sprite per live particle, offset by (x, y). Particle size
// scales the sprite and y grows upwards like every other sprite draw.
// vc and blend override the sprite's own blend.
func (s *System) Draw(r *render.Renderer, x, y float32, vc gfx.VertexColorBlend, blend gfx.BlendState) error {
	if s.Sprite == nil {
		return fmt.Errorf("%w: particle %s has no sprite", render.ErrUnknownResource, s.Config.Name)
	}
	s.Origin = Vec3{X: x, Y: y}
	sprite := *s.Sprite
	sprite.VertexColor, sprite.Blend = vc, blend
	for _, p := range s.Particles {
		sprite.SetColor(p.Tint())
		if err := r.DrawSprite(&sprite, x+p.Position.X, y+p.Position.Y, p.Rotation, p.Size, p.Size, p.Position.Z); err != nil {
			return err
		}
	}
	return nil
}

// Bounds is the y-up rectangle covering every live particle at the last
// draw origin, allowing for any rotation. ok is false when nothing is live.
func (s *System) Bounds() (r gfx.Rect, ok bool) {
	if s.Sprite == nil || len(s.Particles) == 0 {
		return gfx.Rect{}, false
	}
	w, h := s.Sprite.Rect.Width(), s.Sprite.Rect.Height()
	radius := math32.Sqrt(w*w+h*h) / 2
	for i, p := range s.Particles {
		x, y := s.Origin.X+p.Position.X, s.Origin.Y+p.Position.Y
		d := radius * p.Size
		if i == 0 {
			r = gfx.Rect{Left: x - d, Right: x + d, Bottom: y - d, Top: y + d}
			continue
		}
		r.Left = min(r.Left, x-d)
		r.Right = max(r.Right, x+d)
		r.Bottom = min(r.Bottom, y-d)
		r.Top = max(r.Top, y+d)
	}
	return r, true
}
