package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stg-renderer/internal/gfx"
	"stg-renderer/internal/render"
)

func TestFrameLines(t *testing.T) {
	lines := Frame{
		FPS:       60,
		Tick:      12,
		Stats:     render.Stats{Submissions: 3, Vertices: 40, Indices: 60, StateChanges: 2, TargetSwitches: 1},
		BatchSize: 65536,
		Resources: "2 textures",
	}.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, "FPS 60  tick 12", lines[0])
	assert.Equal(t, "draws 3  vertices 40  triangles 20", lines[1])
	assert.Equal(t, "state changes 2  target switches 1", lines[2])
	assert.Contains(t, lines[3], "batch limit 65536")
	assert.Equal(t, "2 textures", lines[4])
}

func TestScreenRectFlipsY(t *testing.T) {
	r := ScreenRect(gfx.Rect{Left: 10, Right: 30, Bottom: 100, Top: 140}, 480)
	assert.Equal(t, float32(10), r.X)
	assert.Equal(t, float32(340), r.Y)
	assert.Equal(t, float32(20), r.Width)
	assert.Equal(t, float32(40), r.Height)
}

func TestOverlayStartsHidden(t *testing.T) {
	d := NewDebugOverlay()
	assert.False(t, d.Visible)
	// hidden overlays draw nothing and need no window
	d.Draw(Frame{}, nil)
}
