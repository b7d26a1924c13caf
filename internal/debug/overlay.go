// Package debug draws a statistics overlay and particle bounding boxes on
// top of the frame.
package debug

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/particle"
	"stg-renderer/internal/render"
)

// DebugOverlay is toggled with F8; F9 toggles the bounding boxes.
type DebugOverlay struct {
	Visible           bool
	ShowBoundingBoxes bool

	fontHeight int32
	padding    int32
}

func NewDebugOverlay() *DebugOverlay {
	return &DebugOverlay{fontHeight: 16, padding: 8}
}

func (d *DebugOverlay) Update() {
	if rl.IsKeyPressed(rl.KeyF8) {
		d.Visible = !d.Visible
	}
	if d.Visible && rl.IsKeyPressed(rl.KeyF9) {
		d.ShowBoundingBoxes = !d.ShowBoundingBoxes
	}
}

// Frame is what the overlay reports for one frame.
type Frame struct {
	FPS       int32
	Tick      int
	Stats     render.Stats
	BatchSize int
	Resources string
}

// Lines formats the overlay text.
func (f Frame) Lines() []string {
	s := f.Stats
	return []string{
		fmt.Sprintf("FPS %d  tick %d", f.FPS, f.Tick),
		fmt.Sprintf("draws %d  vertices %d  triangles %d", s.Submissions, s.Vertices, s.Indices/3),
		fmt.Sprintf("state changes %d  target switches %d", s.StateChanges, s.TargetSwitches),
		fmt.Sprintf("effects %d  models %d  batch limit %d", s.Effects, s.Models, f.BatchSize),
		f.Resources,
	}
}

// ScreenRect converts a y-up rect in pixels to a y-down raylib rectangle.
func ScreenRect(r gfx.Rect, screenHeight float32) rl.Rectangle {
	return rl.NewRectangle(r.Left, screenHeight-r.Top, r.Right-r.Left, r.Top-r.Bottom)
}

func (d *DebugOverlay) DrawText(text string, x, y, size int32, color rl.Color) {
	rl.DrawText(text, x+1, y+1, size, rl.Black)
	rl.DrawText(text, x, y, size, color)
}

// Draw renders the overlay with raylib after the renderer has flushed.
func (d *DebugOverlay) Draw(f Frame, systems []*particle.System) {
	if !d.Visible {
		return
	}
	if d.ShowBoundingBoxes {
		h := float32(rl.GetScreenHeight())
		for _, s := range systems {
			b, ok := s.Bounds()
			if !ok {
				continue
			}
			rl.DrawRectangleLinesEx(ScreenRect(b, h), 1, rl.NewColor(0, 255, 255, 150))
			o := ScreenRect(gfx.Rect{Left: s.Origin.X - 2, Right: s.Origin.X + 2, Bottom: s.Origin.Y - 2, Top: s.Origin.Y + 2}, h)
			rl.DrawRectangleRec(o, rl.Red)
		}
	}

	lines := f.Lines()
	width := int32(0)
	for _, l := range lines {
		width = max(width, rl.MeasureText(l, d.fontHeight))
	}
	lineHeight := d.fontHeight + 4
	rl.DrawRectangle(0, 0, width+2*d.padding, int32(len(lines))*lineHeight+2*d.padding, rl.NewColor(0, 0, 0, 160))
	for i, l := range lines {
		d.DrawText(l, d.padding, d.padding+int32(i)*lineHeight, d.fontHeight, rl.White)
	}
}
