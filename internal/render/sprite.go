package render

import (
	"fmt"

	"github.com/chewxy/math32"

	"stg-renderer/internal/gfx"
)

// Sprite is a rectangle of a texture drawn as one quad.
type Sprite struct {
	Name    string
	Texture gfx.Texture
	// Rect is the source rectangle in texture pixels.
	Rect gfx.Rect
	// AnchorX and AnchorY are measured in pixels from the rect's top-left.
	AnchorX, AnchorY float32
	VertexColor      gfx.VertexColorBlend
	Blend            gfx.BlendState
	// Colors are the corner colors: top-left, top-right, bottom-right,
	// bottom-left.
	Colors [4]uint32
}

// NewSprite returns a white, alpha-blended sprite anchored at its center.
func NewSprite(name string, tex gfx.Texture, rect gfx.Rect) *Sprite {
	return &Sprite{
		Name:        name,
		Texture:     tex,
		Rect:        rect,
		AnchorX:     rect.Width() / 2,
		AnchorY:     rect.Height() / 2,
		VertexColor: gfx.VertexColorMul,
		Blend:       gfx.BlendAlpha,
		Colors:      [4]uint32{gfx.White, gfx.White, gfx.White, gfx.White},
	}
}

// SetColor sets all four corner colors.
func (s *Sprite) SetColor(c uint32) {
	s.Colors = [4]uint32{c, c, c, c}
}

// SpriteSequence is an animation cycling through frames every Interval ticks.
type SpriteSequence struct {
	Name     string
	Frames   []*Sprite
	Interval int
}

// Frame returns the frame shown at timer.
func (q *SpriteSequence) Frame(timer int) *Sprite {
	n := len(q.Frames)
	if n == 0 {
		return nil
	}
	interval := max(q.Interval, 1)
	i := (timer / interval) % n
	if i < 0 {
		i += n
	}
	return q.Frames[i]
}

// useTexture validates and then sets the texture and blend for a textured
// draw. Nothing changes when validation fails.
func (r *Renderer) useTexture(op string, tex gfx.Texture, vc gfx.VertexColorBlend, blend gfx.BlendState) (w, h float32, err error) {
	if !r.open {
		return 0, 0, scopeError(op, false)
	}
	if tex == nil {
		return 0, 0, fmt.Errorf("%w: %s without texture", ErrUnknownResource, op)
	}
	if err := r.checkTexture(tex); err != nil {
		return 0, 0, err
	}
	if !vc.Valid() || !blend.Valid() {
		return 0, 0, fmt.Errorf("%w: %s blend %v/%v", ErrInvalidArgument, op, vc, blend)
	}
	tw, th := tex.Size()
	if tw <= 0 || th <= 0 {
		return 0, 0, fmt.Errorf("%w: %s texture size %dx%d", ErrInvalidArgument, op, tw, th)
	}
	r.tracker.Pending.Texture = tex
	r.tracker.Pending.VertexColor = vc
	r.tracker.Pending.Blend = blend
	return float32(tw), float32(th), nil
}

func (r *Renderer) drawSpriteCorners(op string, s *Sprite, corners [4]gfx.Vector3) error {
	if s == nil {
		if !r.open {
			return scopeError(op, false)
		}
		return fmt.Errorf("%w: %s nil sprite", ErrUnknownResource, op)
	}
	tw, th, err := r.useTexture(op, s.Texture, s.VertexColor, s.Blend)
	if err != nil {
		return err
	}
	u0, u1 := s.Rect.Left/tw, s.Rect.Right/tw
	v0, v1 := s.Rect.Top/th, s.Rect.Bottom/th
	uvs := [4][2]float32{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}}

	var vs [4]gfx.Vertex
	for i, c := range corners {
		vs[i] = gfx.NewVertex(c.X, c.Y, c.Z, uvs[i][0], uvs[i][1], s.Colors[i])
	}
	return r.appendGeometry(op, vs[:], quadIndices[:])
}

// DrawSprite draws s centered on its anchor at (x, y), rotated by rot
// radians and scaled. Y grows upwards.
func (r *Renderer) DrawSprite(s *Sprite, x, y, rot, hscale, vscale, z float32) error {
	if s == nil {
		return r.drawSpriteCorners("DrawSprite", nil, [4]gfx.Vector3{})
	}
	left := -s.AnchorX * hscale
	right := (s.Rect.Width() - s.AnchorX) * hscale
	top := s.AnchorY * vscale
	bottom := (s.AnchorY - s.Rect.Height()) * vscale

	local := [4][2]float32{{left, top}, {right, top}, {right, bottom}, {left, bottom}}
	sin, cos := math32.Sin(rot), math32.Cos(rot)
	var corners [4]gfx.Vector3
	for i, p := range local {
		corners[i] = gfx.Vector3{
			X: x + p[0]*cos - p[1]*sin,
			Y: y + p[0]*sin + p[1]*cos,
			Z: z,
		}
	}
	return r.drawSpriteCorners("DrawSprite", s, corners)
}

// DrawSpriteRect stretches s over the rectangle l..r, b..t.
func (r *Renderer) DrawSpriteRect(s *Sprite, left, right, bottom, top, z float32) error {
	return r.drawSpriteCorners("DrawSpriteRect", s, [4]gfx.Vector3{
		{X: left, Y: top, Z: z},
		{X: right, Y: top, Z: z},
		{X: right, Y: bottom, Z: z},
		{X: left, Y: bottom, Z: z},
	})
}

// DrawSprite4V maps s onto four arbitrary corners, clockwise from top-left.
func (r *Renderer) DrawSprite4V(s *Sprite, p1, p2, p3, p4 gfx.Vector3) error {
	return r.drawSpriteCorners("DrawSprite4V", s, [4]gfx.Vector3{p1, p2, p3, p4})
}

// DrawSprite3D places s in space at pos, rotated by roll, pitch and yaw
// radians around its anchor.
func (r *Renderer) DrawSprite3D(s *Sprite, pos gfx.Vector3, roll, pitch, yaw, hscale, vscale float32) error {
	if s == nil {
		return r.drawSpriteCorners("DrawSprite3D", nil, [4]gfx.Vector3{})
	}
	left := -s.AnchorX * hscale
	right := (s.Rect.Width() - s.AnchorX) * hscale
	top := s.AnchorY * vscale
	bottom := (s.AnchorY - s.Rect.Height()) * vscale

	m := gfx.Translation(pos).Mul(gfx.RotationRollPitchYaw(roll, pitch, yaw))
	return r.drawSpriteCorners("DrawSprite3D", s, [4]gfx.Vector3{
		m.Apply(gfx.Vector3{X: left, Y: top}),
		m.Apply(gfx.Vector3{X: right, Y: top}),
		m.Apply(gfx.Vector3{X: right, Y: bottom}),
		m.Apply(gfx.Vector3{X: left, Y: bottom}),
	})
}

// DrawSpriteSequence draws the frame of seq shown at timer.
func (r *Renderer) DrawSpriteSequence(seq *SpriteSequence, timer int, x, y, rot, hscale, vscale, z float32) error {
	if seq == nil || len(seq.Frames) == 0 {
		if !r.open {
			return scopeError("DrawSpriteSequence", false)
		}
		return fmt.Errorf("%w: empty sprite sequence", ErrUnknownResource)
	}
	return r.DrawSprite(seq.Frame(timer), x, y, rot, hscale, vscale, z)
}

// DrawTexture draws a textured quad whose UVs are given in texture pixels.
func (r *Renderer) DrawTexture(tex gfx.Texture, vc gfx.VertexColorBlend, blend gfx.BlendState, vertices [4]gfx.Vertex) error {
	tw, th, err := r.useTexture("DrawTexture", tex, vc, blend)
	if err != nil {
		return err
	}
	for i := range vertices {
		vertices[i].U /= tw
		vertices[i].V /= th
	}
	return r.appendGeometry("DrawTexture", vertices[:], quadIndices[:])
}
